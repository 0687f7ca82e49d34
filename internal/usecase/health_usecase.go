package usecase

import (
	"context"
	"time"
)

// HealthCheck probes one dependency. A nil error means healthy.
type HealthCheck func(ctx context.Context) error

type HealthReport struct {
	Status    string            `json:"status"`
	Checks    map[string]string `json:"checks"`
	Timestamp time.Time         `json:"timestamp"`
}

type HealthUsecase interface {
	Check(ctx context.Context) HealthReport
}

type healthUsecase struct {
	checks map[string]HealthCheck
}

// NewHealthUsecase takes named checks, e.g. "database", "redis", "storage".
func NewHealthUsecase(checks map[string]HealthCheck) HealthUsecase {
	return &healthUsecase{checks: checks}
}

func (u *healthUsecase) Check(ctx context.Context) HealthReport {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	report := HealthReport{Status: "ok", Checks: map[string]string{}, Timestamp: time.Now().UTC()}
	for name, check := range u.checks {
		if check == nil {
			report.Checks[name] = "disabled"
			continue
		}
		if err := check(ctx); err != nil {
			report.Checks[name] = "error: " + err.Error()
			report.Status = "degraded"
			continue
		}
		report.Checks[name] = "ok"
	}
	return report
}
