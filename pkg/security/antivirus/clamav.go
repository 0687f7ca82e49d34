package antivirus

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"strings"
	"time"
)

// ClamAVScanner streams files to a clamd daemon over TCP or a unix socket.
type ClamAVScanner struct {
	address string
	timeout time.Duration
	dialer  net.Dialer
}

var _ Scanner = (*ClamAVScanner)(nil)

// NewClamAVScanner accepts "host:3310" or "/var/run/clamav/clamd.sock".
func NewClamAVScanner(address string, timeout time.Duration) *ClamAVScanner {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ClamAVScanner{address: address, timeout: timeout}
}

func (c *ClamAVScanner) Name() string {
	return "clamav"
}

func (c *ClamAVScanner) network() string {
	if strings.HasPrefix(c.address, "/") {
		return "unix"
	}
	return "tcp"
}

func (c *ClamAVScanner) dial(ctx context.Context, timeout time.Duration) (net.Conn, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	conn, err := c.dialer.DialContext(ctx, c.network(), c.address)
	if err != nil {
		return nil, err
	}
	_ = conn.SetDeadline(time.Now().Add(timeout))
	return conn, nil
}

// Available sends PING and expects PONG.
func (c *ClamAVScanner) Available(ctx context.Context) bool {
	conn, err := c.dial(ctx, 5*time.Second)
	if err != nil {
		return false
	}
	defer conn.Close()

	if _, err := conn.Write([]byte("zPING\x00")); err != nil {
		return false
	}
	buf := make([]byte, 16)
	n, err := conn.Read(buf)
	if err != nil && err != io.EOF {
		return false
	}
	return strings.HasPrefix(string(buf[:n]), "PONG")
}

// Scan uses zINSTREAM: one size-prefixed chunk followed by a zero-length terminator.
func (c *ClamAVScanner) Scan(ctx context.Context, filename string, data []byte) ScanResult {
	result := ScanResult{ScannerName: c.Name()}

	conn, err := c.dial(ctx, c.timeout)
	if err != nil {
		result.Error = fmt.Errorf("failed to connect to clamd: %w", err)
		return result
	}
	defer conn.Close()

	size := make([]byte, 4)
	binary.BigEndian.PutUint32(size, uint32(len(data)))

	for _, chunk := range [][]byte{[]byte("zINSTREAM\x00"), size, data, {0, 0, 0, 0}} {
		if _, err := conn.Write(chunk); err != nil {
			result.Error = fmt.Errorf("failed to stream %s to clamd: %w", filename, err)
			return result
		}
	}

	reply, err := io.ReadAll(conn)
	if err != nil && len(reply) == 0 {
		result.Error = fmt.Errorf("failed to read clamd response: %w", err)
		return result
	}
	return parseReply(result, string(reply))
}

// parseReply handles "stream: OK", "stream: <name> FOUND" and "... ERROR".
func parseReply(result ScanResult, reply string) ScanResult {
	reply = strings.TrimSpace(strings.TrimRight(reply, "\x00"))
	switch {
	case strings.HasSuffix(reply, "FOUND"):
		result.Infected = true
		if _, threat, ok := strings.Cut(reply, ":"); ok {
			result.ThreatName = strings.TrimSuffix(strings.TrimSpace(threat), " FOUND")
		}
	case strings.HasSuffix(reply, "ERROR"):
		result.Error = fmt.Errorf("scan error: %s", reply)
	case !strings.HasSuffix(reply, "OK"):
		result.Error = fmt.Errorf("unexpected clamd response: %q", reply)
	}
	return result
}
