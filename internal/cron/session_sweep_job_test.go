package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Saadasw/BookOrderBackend/pkg/logger"
)

type stubSweeper struct {
	batches   []int64
	calls     int
	limits    []int
	deleteErr error
	countErr  error
	live      int64
}

func (s *stubSweeper) DeleteExpired(ctx context.Context, cutoff time.Time, limit int) (int64, error) {
	s.limits = append(s.limits, limit)
	if s.deleteErr != nil {
		return 0, s.deleteErr
	}
	if s.calls >= len(s.batches) {
		return 0, nil
	}
	removed := s.batches[s.calls]
	s.calls++
	return removed, nil
}

func (s *stubSweeper) CountLive(ctx context.Context, now time.Time) (int64, error) {
	if s.countErr != nil {
		return 0, s.countErr
	}
	return s.live, nil
}

func newTestLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "cron-test"})
}

func TestSessionSweepDrainsInBatches(t *testing.T) {
	sweeper := &stubSweeper{batches: []int64{3, 3, 1}, live: 2}
	job, err := NewSessionSweepJob(SessionSweepJobParams{
		Logger:     newTestLogger(),
		Repository: sweeper,
		BatchSize:  3,
	})
	if err != nil {
		t.Fatalf("NewSessionSweepJob: %v", err)
	}

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sweeper.calls != 3 {
		t.Fatalf("expected 3 delete batches, got %d", sweeper.calls)
	}
	for _, limit := range sweeper.limits {
		if limit != 3 {
			t.Fatalf("expected batch limit 3, got %d", limit)
		}
	}
}

func TestSessionSweepStopsOnShortBatch(t *testing.T) {
	sweeper := &stubSweeper{batches: []int64{2}}
	job, err := NewSessionSweepJob(SessionSweepJobParams{
		Logger:     newTestLogger(),
		Repository: sweeper,
		BatchSize:  5,
	})
	if err != nil {
		t.Fatalf("NewSessionSweepJob: %v", err)
	}

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sweeper.calls != 1 {
		t.Fatalf("expected a single batch, got %d", sweeper.calls)
	}
}

func TestSessionSweepReportsErrors(t *testing.T) {
	sweeper := &stubSweeper{deleteErr: errors.New("db down")}
	job, err := NewSessionSweepJob(SessionSweepJobParams{
		Logger:     newTestLogger(),
		Repository: sweeper,
	})
	if err != nil {
		t.Fatalf("NewSessionSweepJob: %v", err)
	}

	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected delete error to surface")
	}
}

func TestSessionSweepRequiresRepository(t *testing.T) {
	if _, err := NewSessionSweepJob(SessionSweepJobParams{Logger: newTestLogger()}); err == nil {
		t.Fatal("expected missing repository error")
	}
}
