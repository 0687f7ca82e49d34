package antivirus

import (
	"context"
	"errors"
	"time"
)

var ErrNoScanner = errors.New("no antivirus scanner available")

// ScanResult contains the result of a malware scan
type ScanResult struct {
	Infected    bool
	ThreatName  string
	ScannerName string
	Error       error
}

// Rejected reports whether the upload must be refused. Scan errors count as rejections.
func (r ScanResult) Rejected() bool {
	return r.Infected || r.Error != nil
}

// Scanner is the interface for pluggable antivirus implementations
type Scanner interface {
	Scan(ctx context.Context, filename string, data []byte) ScanResult
	Name() string
	Available(ctx context.Context) bool
}

// NewScanner returns a ClamAV scanner when an address is configured, otherwise a no-op.
func NewScanner(clamAddress string) Scanner {
	if clamAddress == "" {
		return NewNoOpScanner()
	}
	return NewClamAVScanner(clamAddress, 30*time.Second)
}

// NoOpScanner always reports clean. Used when no clamd is configured.
type NoOpScanner struct{}

var _ Scanner = (*NoOpScanner)(nil)

func NewNoOpScanner() *NoOpScanner {
	return &NoOpScanner{}
}

func (n *NoOpScanner) Scan(context.Context, string, []byte) ScanResult {
	return ScanResult{ScannerName: n.Name()}
}

func (n *NoOpScanner) Name() string { return "noop" }

func (n *NoOpScanner) Available(context.Context) bool { return true }

// ChainScanner runs every available scanner and stops at the first rejection.
type ChainScanner struct {
	scanners []Scanner
}

var _ Scanner = (*ChainScanner)(nil)

func NewChainScanner(scanners ...Scanner) *ChainScanner {
	return &ChainScanner{scanners: scanners}
}

func (c *ChainScanner) Scan(ctx context.Context, filename string, data []byte) ScanResult {
	ran := false
	for _, s := range c.scanners {
		if !s.Available(ctx) {
			continue
		}
		ran = true
		if res := s.Scan(ctx, filename, data); res.Rejected() {
			return res
		}
	}
	if !ran {
		return ScanResult{ScannerName: c.Name(), Error: ErrNoScanner}
	}
	return ScanResult{ScannerName: c.Name()}
}

func (c *ChainScanner) Name() string { return "chain" }

func (c *ChainScanner) Available(ctx context.Context) bool {
	for _, s := range c.scanners {
		if s.Available(ctx) {
			return true
		}
	}
	return false
}
