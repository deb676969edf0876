package policy

import (
	"context"
	"log/slog"
	"time"

	"github.com/vadim/supportbot/internal/domain/analytics/entity"
	"github.com/vadim/supportbot/internal/domain/analytics/service"
)

// AnalyticsService defines the interface for the analytics service
type AnalyticsService interface {
	BuildReport(ctx context.Context, in service.BuildReportInput) (*entity.Report, error)
}

// Recorder receives report timings
type Recorder interface {
	ObserveReport(rangeName string, elapsed time.Duration, err error)
}

// Policy resolves request parameters for analytics and records outcomes
type Policy struct {
	svc      AnalyticsService
	recorder Recorder
	logger   *slog.Logger
	now      func() time.Time
	timeout  time.Duration
}

// Option configures a Policy
type Option func(*Policy)

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(p *Policy) {
		p.now = now
	}
}

// WithRecorder sets the metrics recorder
func WithRecorder(r Recorder) Option {
	return func(p *Policy) {
		p.recorder = r
	}
}

// WithTimeout bounds report building. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(p *Policy) {
		p.timeout = d
	}
}

// New creates a new analytics policy
func New(svc AnalyticsService, logger *slog.Logger, opts ...Option) *Policy {
	p := &Policy{
		svc:    svc,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// GetAnalyticsInput represents input for getting the analytics report
type GetAnalyticsInput struct {
	// Range is the raw range token from the request
	Range string
	// RequestedBy is the authenticated admin, used for logging only
	RequestedBy string
}

// GetAnalytics builds the report for the requested range
func (p *Policy) GetAnalytics(ctx context.Context, in GetAnalyticsInput) (*entity.Report, error) {
	rng := entity.ParseRange(in.Range)
	started := time.Now()

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	report, err := p.svc.BuildReport(ctx, service.BuildReportInput{
		Range: rng,
		Now:   p.now().UTC(),
	})

	elapsed := time.Since(started)
	if p.recorder != nil {
		p.recorder.ObserveReport(string(rng), elapsed, err)
	}

	if err != nil {
		p.logger.ErrorContext(ctx, "building analytics report",
			"range", rng,
			"requested_by", in.RequestedBy,
			"error", err,
		)
		return nil, err
	}

	p.logger.DebugContext(ctx, "analytics report built",
		"range", rng,
		"requested_by", in.RequestedBy,
		"total_messages", report.TotalMessages,
		"duration", elapsed,
	)
	return report, nil
}
