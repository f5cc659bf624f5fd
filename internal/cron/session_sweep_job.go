package cron

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/Saadasw/BookOrderBackend/pkg/logger"
	"github.com/Saadasw/BookOrderBackend/pkg/metrics"
)

const defaultSweepBatchSize = 500

type expiredSessionSweeper interface {
	DeleteExpired(ctx context.Context, cutoff time.Time, limit int) (int64, error)
	CountLive(ctx context.Context, now time.Time) (int64, error)
}

// SessionSweepJobParams configure the expired session reaper.
type SessionSweepJobParams struct {
	Logger     *logger.Logger
	Repository expiredSessionSweeper
	Metrics    *metrics.CronJobMetrics
	BatchSize  int
}

// NewSessionSweepJob builds the cron job that removes dead verification
// sessions. Reads already treat expired sessions as inert; the sweep only
// bounds storage growth.
func NewSessionSweepJob(params SessionSweepJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("sessions repository required")
	}
	batch := params.BatchSize
	if batch <= 0 {
		batch = defaultSweepBatchSize
	}
	return &sessionSweepJob{
		logg:    params.Logger,
		repo:    params.Repository,
		metrics: params.Metrics,
		batch:   batch,
		now:     time.Now,
	}, nil
}

type sessionSweepJob struct {
	logg    *logger.Logger
	repo    expiredSessionSweeper
	metrics *metrics.CronJobMetrics
	batch   int
	now     func() time.Time
}

func (j *sessionSweepJob) Name() string { return "session-sweep" }

func (j *sessionSweepJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC()

	var errs []error
	var total int64
	for {
		removed, err := j.repo.DeleteExpired(ctx, cutoff, j.batch)
		if err != nil {
			errs = append(errs, fmt.Errorf("delete expired sessions: %w", err))
			break
		}
		total += removed
		if removed < int64(j.batch) {
			break
		}
	}

	j.metrics.AddSwept(j.Name(), int(total))

	live, err := j.repo.CountLive(ctx, cutoff)
	if err != nil {
		errs = append(errs, fmt.Errorf("count live sessions: %w", err))
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":        cutoff,
		"rows_deleted":  total,
		"live_sessions": live,
	})
	j.logg.Info(logCtx, "session sweep complete")

	return multierr.Combine(errs...)
}
