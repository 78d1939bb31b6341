package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"github.com/terraincognita07/cyclelog/internal/services"
)

type backfillRunner interface {
	Run(email string, now time.Time) (services.BackfillResult, error)
}

// BackfillScheduler runs the daily backfill for one user on a cron spec
// evaluated in the backfill timezone.
type BackfillScheduler struct {
	engine *cron.Cron
	runner backfillRunner
	email  string
	spec   string
	logger *logrus.Logger
	now    func() time.Time
}

func NewBackfillScheduler(runner backfillRunner, email string, spec string, location *time.Location, logger *logrus.Logger) *BackfillScheduler {
	if location == nil {
		location = time.UTC
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &BackfillScheduler{
		engine: cron.New(cron.WithLocation(location)),
		runner: runner,
		email:  email,
		spec:   spec,
		logger: logger,
		now:    time.Now,
	}
}

func (s *BackfillScheduler) Start() error {
	if _, err := s.engine.AddFunc(s.spec, func() { s.RunOnce() }); err != nil {
		return fmt.Errorf("schedule backfill %q: %w", s.spec, err)
	}
	s.engine.Start()
	s.logger.WithField("spec", s.spec).Info("backfill scheduler started")
	return nil
}

// Stop prevents new runs and waits for a running job, up to ctx.
func (s *BackfillScheduler) Stop(ctx context.Context) error {
	done := s.engine.Stop()
	select {
	case <-done.Done():
		s.logger.Info("backfill scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunOnce performs one backfill pass. Errors are logged, not returned, so a
// failed night does not stop later runs.
func (s *BackfillScheduler) RunOnce() services.BackfillResult {
	log := s.logger.WithField("email", s.email)
	result, err := s.runner.Run(s.email, s.now())
	switch {
	case errors.Is(err, services.ErrNoPreviousEntry):
		log.Info("backfill skipped: no previous entry")
	case err != nil:
		log.WithError(err).Error("backfill failed")
	default:
		log.WithField("inserted", len(result.Inserted)).Debug("backfill run finished")
	}
	return result
}
