package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"go-rise-platform/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu       sync.Mutex
	subjects []string
	done     chan struct{}
}

func (r *recordingPublisher) Publish(_ context.Context, subject string, _ any) error {
	r.mu.Lock()
	r.subjects = append(r.subjects, subject)
	r.mu.Unlock()
	close(r.done)
	return nil
}

func TestNewWithoutURL(t *testing.T) {
	pub, closeFn, err := New("")
	require.NoError(t, err)
	defer closeFn()
	assert.IsType(t, NoopPublisher{}, pub)
	assert.NoError(t, pub.Publish(context.Background(), domain.SubjectRegistrationSubmitted, nil))
}

func TestNewWithUnreachableServer(t *testing.T) {
	pub, closeFn, err := New("nats://127.0.0.1:1")
	assert.Error(t, err)
	assert.IsType(t, NoopPublisher{}, pub)
	closeFn()
}

func TestPublishAsync(t *testing.T) {
	rec := &recordingPublisher{done: make(chan struct{})}
	PublishAsync(rec, domain.SubjectPaymentStatusChanged, domain.PaymentStatusChanged{OrderID: "RYLS-1"})

	select {
	case <-rec.done:
	case <-time.After(time.Second):
		t.Fatal("event was not published")
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	assert.Equal(t, []string{domain.SubjectPaymentStatusChanged}, rec.subjects)

	PublishAsync(nil, "x", nil)
}
