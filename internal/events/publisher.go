package events

import (
	"context"
	"encoding/json"
	"time"

	"go-rise-platform/internal/domain"
	"go-rise-platform/pkg/logger"

	"github.com/nats-io/nats.go"
)

// NATSPublisher publishes domain events as JSON on NATS subjects.
type NATSPublisher struct {
	nc *nats.Conn
}

var _ domain.EventPublisher = (*NATSPublisher)(nil)

func NewNATSPublisher(url string) (*NATSPublisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("rise-api"),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Log.Warn("NATS disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Log.Info("NATS reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, err
	}
	return &NATSPublisher{nc: nc}, nil
}

func (p *NATSPublisher) Publish(_ context.Context, subject string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return p.nc.Publish(subject, data)
}

// Subscribe decodes every message on subject into a fresh T and hands it to handler.
func Subscribe[T any](p *NATSPublisher, subject string, handler func(T)) (*nats.Subscription, error) {
	return p.nc.Subscribe(subject, func(msg *nats.Msg) {
		var v T
		if err := json.Unmarshal(msg.Data, &v); err != nil {
			logger.Log.Warn("Dropping malformed event", "subject", subject, "error", err)
			return
		}
		handler(v)
	})
}

func (p *NATSPublisher) Close() {
	if err := p.nc.Drain(); err != nil {
		p.nc.Close()
	}
}

// NoopPublisher is used when NATS_URL is empty.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, string, any) error { return nil }

// New connects to NATS when url is set and falls back to NoopPublisher otherwise.
// The returned close func is always safe to call.
func New(url string) (domain.EventPublisher, func(), error) {
	if url == "" {
		return NoopPublisher{}, func() {}, nil
	}
	p, err := NewNATSPublisher(url)
	if err != nil {
		return NoopPublisher{}, func() {}, err
	}
	return p, p.Close, nil
}

// PublishAsync fires the event in the background and only logs failures.
func PublishAsync(pub domain.EventPublisher, subject string, payload any) {
	if pub == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := pub.Publish(ctx, subject, payload); err != nil {
			logger.Log.Warn("Failed to publish event", "subject", subject, "error", err)
		}
	}()
}
