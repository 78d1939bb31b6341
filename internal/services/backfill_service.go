package services

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/terraincognita07/cyclelog/internal/cycle"
	"github.com/terraincognita07/cyclelog/internal/models"
)

const (
	BackfillMaxCycleDay    = 35
	BackfillPeriodStartDay = 2
	BackfillPeriodEndDay   = 5
)

type BackfillUserLookup interface {
	FindByEmail(email string) (models.User, bool, error)
}

type BackfillEntryRepository interface {
	Latest(userID uint) (models.CycleEntry, bool, error)
	CreateBatch(entries []models.CycleEntry) error
}

type BackfillResult struct {
	UserID   uint
	LastDate time.Time
	Inserted []models.CycleEntry
}

// NextBackfillDay continues the cycle of previous by one day. The count wraps
// to 1 past BackfillMaxCycleDay and cycle days 2 to 5 count as bleeding.
func NextBackfillDay(previousCycleDay int) (int, bool) {
	cycleDay := previousCycleDay + 1
	if cycleDay > BackfillMaxCycleDay || cycleDay < 1 {
		cycleDay = 1
	}
	isPeriod := cycleDay >= BackfillPeriodStartDay && cycleDay <= BackfillPeriodEndDay
	return cycleDay, isPeriod
}

// PlanBackfill returns the entries that close the gap between last and
// yesterday, one per missing day.
func PlanBackfill(last models.CycleEntry, yesterday time.Time) []models.CycleEntry {
	cursor := cycle.CivilDate(last.Date)
	yesterday = cycle.CivilDate(yesterday)
	if !cursor.Before(yesterday) {
		return nil
	}

	planned := make([]models.CycleEntry, 0, cycle.DaysBetween(cursor, yesterday))
	cycleDay := last.CycleDay
	for cursor.Before(yesterday) {
		cursor = cycle.AddDays(cursor, 1)
		var isPeriod bool
		cycleDay, isPeriod = NextBackfillDay(cycleDay)
		planned = append(planned, models.CycleEntry{
			UserID:   last.UserID,
			Date:     cursor,
			CycleDay: cycleDay,
			IsPeriod: isPeriod,
		})
	}
	return planned
}

// BackfillService fills the days a user did not log, up to yesterday in location.
type BackfillService struct {
	users    BackfillUserLookup
	entries  BackfillEntryRepository
	location *time.Location
	logger   *logrus.Logger
}

func NewBackfillService(users BackfillUserLookup, entries BackfillEntryRepository, location *time.Location, logger *logrus.Logger) *BackfillService {
	if location == nil {
		location = time.UTC
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &BackfillService{
		users:    users,
		entries:  entries,
		location: location,
		logger:   logger,
	}
}

func (service *BackfillService) Run(email string, now time.Time) (BackfillResult, error) {
	user, found, err := service.users.FindByEmail(email)
	if err != nil {
		return BackfillResult{}, fmt.Errorf("load user: %w", err)
	}
	if !found {
		return BackfillResult{}, fmt.Errorf("%w: %s", ErrUserNotFound, email)
	}

	log := service.logger.WithField("user_id", user.ID)
	last, found, err := service.entries.Latest(user.ID)
	if err != nil {
		return BackfillResult{}, fmt.Errorf("load last entry: %w", err)
	}
	if !found {
		log.Info("no previous entries, nothing to backfill")
		return BackfillResult{UserID: user.ID}, ErrNoPreviousEntry
	}

	result := BackfillResult{UserID: user.ID, LastDate: cycle.CivilDate(last.Date)}
	yesterday := cycle.AddDays(cycle.DateIn(now, service.location), -1)
	planned := PlanBackfill(last, yesterday)
	if len(planned) == 0 {
		log.WithField("last_date", cycle.FormatDate(last.Date)).Info("entries are up to date")
		return result, nil
	}

	if err := service.entries.CreateBatch(planned); err != nil {
		return result, fmt.Errorf("insert backfill entries: %w", err)
	}
	result.Inserted = planned
	log.WithFields(logrus.Fields{
		"from":     cycle.FormatDate(planned[0].Date),
		"to":       cycle.FormatDate(planned[len(planned)-1].Date),
		"inserted": len(planned),
	}).Info("backfilled missing entries")
	return result, nil
}
