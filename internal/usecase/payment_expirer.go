package usecase

import (
	"context"
	"time"

	"go-rise-platform/internal/domain"
	"go-rise-platform/pkg/logger"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
)

// PaymentExpirer periodically sweeps PENDING payments past their expiry.
type PaymentExpirer struct {
	payments domain.PaymentUsecase
	cron     *cron.Cron
	timeout  time.Duration
}

func NewPaymentExpirer(payments domain.PaymentUsecase, spec string) (*PaymentExpirer, error) {
	if spec == "" {
		return nil, errors.New("payment sweep schedule must not be empty")
	}

	pe := &PaymentExpirer{
		payments: payments,
		cron:     cron.New(),
		timeout:  time.Minute,
	}
	if _, err := pe.cron.AddFunc(spec, pe.Sweep); err != nil {
		return nil, err
	}
	return pe, nil
}

func (pe *PaymentExpirer) Start() {
	pe.cron.Start()
	logger.Log.Info("Payment expirer started")
}

// Stop waits for a running sweep to finish.
func (pe *PaymentExpirer) Stop() {
	<-pe.cron.Stop().Done()
}

func (pe *PaymentExpirer) Sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), pe.timeout)
	defer cancel()

	n, err := pe.payments.ExpireStale(ctx)
	if err != nil {
		logger.Log.Error("Failed to expire stale payments", "error", err)
		return
	}
	if n > 0 {
		logger.Log.Info("Expired stale payments", "count", n)
	}
}
