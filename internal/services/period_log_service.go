package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/terraincognita07/cyclelog/internal/cycle"
	"github.com/terraincognita07/cyclelog/internal/models"
)

const defaultCalendarSyncTimeout = 15 * time.Second

type PeriodLogResult struct {
	Entry           models.CycleEntry
	NextPeriodStart *time.Time
	CalendarSynced  bool
	CalendarError   string
}

// PeriodLogService logs a period and then pushes the next predicted cycle to
// the user's calendar. The calendar step never undoes the log write.
type PeriodLogService struct {
	cycles      *CycleService
	calendar    CalendarEventCreator
	syncTimeout time.Duration
	logger      *logrus.Logger
}

// NewPeriodLogService builds the service. calendar may be nil when no calendar
// integration is configured.
func NewPeriodLogService(cycles *CycleService, calendar CalendarEventCreator, syncTimeout time.Duration, logger *logrus.Logger) *PeriodLogService {
	if syncTimeout <= 0 {
		syncTimeout = defaultCalendarSyncTimeout
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &PeriodLogService{
		cycles:      cycles,
		calendar:    calendar,
		syncTimeout: syncTimeout,
		logger:      logger,
	}
}

func (service *PeriodLogService) LogPeriod(ctx context.Context, userID uint, confirmed bool, now time.Time) (PeriodLogResult, error) {
	if !confirmed {
		return PeriodLogResult{}, ErrConfirmationRequired
	}

	entry, err := service.cycles.LogPeriod(userID, now)
	if err != nil {
		return PeriodLogResult{}, err
	}
	result := PeriodLogResult{Entry: entry}

	nextStart, err := service.nextPeriodStart(userID)
	if err != nil {
		service.logger.WithError(err).WithField("user_id", userID).Warn("next period prediction failed")
		result.CalendarError = err.Error()
		return result, nil
	}
	result.NextPeriodStart = &nextStart

	if err := service.syncCalendar(ctx, userID, nextStart); err != nil {
		service.logger.WithError(err).WithFields(logrus.Fields{
			"user_id":      userID,
			"period_start": cycle.FormatDate(nextStart),
		}).Warn("calendar sync failed")
		result.CalendarError = err.Error()
		return result, nil
	}
	result.CalendarSynced = true
	return result, nil
}

func (service *PeriodLogService) nextPeriodStart(userID uint) (time.Time, error) {
	predictor, err := service.cycles.Predictor(userID)
	if err != nil {
		return time.Time{}, err
	}
	if !predictor.Ready() {
		return time.Time{}, ErrNextPeriodUndetermined
	}
	next, ok := predictor.NextPeriodStart(cycle.AddDays(predictor.LastCycleStart(), 1))
	if !ok {
		return time.Time{}, ErrNextPeriodUndetermined
	}
	return next, nil
}

func (service *PeriodLogService) syncCalendar(ctx context.Context, userID uint, nextStart time.Time) error {
	if service.calendar == nil {
		return ErrCalendarNotConnected
	}

	syncCtx, cancel := context.WithTimeout(ctx, service.syncTimeout)
	defer cancel()

	events := BuildCycleEvents(nextStart, service.cycles.Location().String())
	if err := service.calendar.CreateEvents(syncCtx, userID, events); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("calendar sync timed out after %s: %w", service.syncTimeout, err)
		}
		return err
	}
	return nil
}
