package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/terraincognita07/cyclelog/internal/cycle"
	"github.com/terraincognita07/cyclelog/internal/db"
	"github.com/terraincognita07/cyclelog/internal/models"
)

type CycleEntryRepository interface {
	ListByUser(userID uint) ([]models.CycleEntry, error)
	ListByUserRange(userID uint, fromStart time.Time, toEnd time.Time) ([]models.CycleEntry, error)
	LastCycleStarts(userID uint, limit int) ([]time.Time, error)
	Latest(userID uint) (models.CycleEntry, bool, error)
	FindByDate(userID uint, day time.Time) (models.CycleEntry, bool, error)
	Create(entry *models.CycleEntry) error
}

// CycleService reads a user's history and feeds it to the prediction engine.
// Today is resolved in location.
type CycleService struct {
	entries  CycleEntryRepository
	location *time.Location
}

func NewCycleService(entries CycleEntryRepository, location *time.Location) *CycleService {
	if location == nil {
		location = time.UTC
	}
	return &CycleService{entries: entries, location: location}
}

func (service *CycleService) Location() *time.Location {
	return service.location
}

// Today is the civil date of now in the service location.
func (service *CycleService) Today(now time.Time) time.Time {
	return cycle.DateIn(now, service.location)
}

// ListEntries returns every logged entry of the user, newest first.
func (service *CycleService) ListEntries(userID uint) ([]models.CycleEntry, error) {
	entries, err := service.entries.ListByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("list cycle entries: %w", err)
	}
	return entries, nil
}

// ListEntriesForMonth returns the entries dated inside the month containing monthDate.
func (service *CycleService) ListEntriesForMonth(userID uint, monthDate time.Time) ([]models.CycleEntry, error) {
	monthStart, monthEnd := cycle.MonthBounds(monthDate)
	entries, err := service.entries.ListByUserRange(userID, monthStart, cycle.AddDays(monthEnd, 1))
	if err != nil {
		return nil, fmt.Errorf("list month entries: %w", err)
	}
	return entries, nil
}

// LastCycleStarts returns the most recent cycle starts, newest first.
func (service *CycleService) LastCycleStarts(userID uint) ([]time.Time, error) {
	starts, err := service.entries.LastCycleStarts(userID, cycle.RecentCycleStartLimit)
	if err != nil {
		return nil, fmt.Errorf("load cycle starts: %w", err)
	}
	for index := range starts {
		starts[index] = cycle.CivilDate(starts[index])
	}
	return starts, nil
}

func (service *CycleService) Predictor(userID uint) (cycle.Predictor, error) {
	starts, err := service.LastCycleStarts(userID)
	if err != nil {
		return cycle.Predictor{}, err
	}
	return cycle.PredictorFromStarts(starts), nil
}

func (service *CycleService) Summary(userID uint) (PredictionSummary, error) {
	starts, err := service.LastCycleStarts(userID)
	if err != nil {
		return PredictionSummary{}, err
	}
	entries, err := service.ListEntries(userID)
	if err != nil {
		return PredictionSummary{}, err
	}
	return BuildPredictionSummary(starts, entries), nil
}

// MonthView builds the calendar for the month containing monthDate. Months
// outside the navigable range around today fail with ErrMonthOutOfRange.
func (service *CycleService) MonthView(userID uint, monthDate time.Time, now time.Time) (MonthView, error) {
	today := service.Today(now)
	if err := ValidateMonthInRange(monthDate, today); err != nil {
		return MonthView{}, err
	}

	predictor, err := service.Predictor(userID)
	if err != nil {
		return MonthView{}, err
	}
	entries, err := service.ListEntriesForMonth(userID, monthDate)
	if err != nil {
		return MonthView{}, err
	}
	return BuildMonthView(monthDate, entries, predictor, today), nil
}

// LogPeriod records today as cycle day 1 with bleeding. The unique index
// still guards against a concurrent insert slipping past the lookup.
func (service *CycleService) LogPeriod(userID uint, now time.Time) (models.CycleEntry, error) {
	today := service.Today(now)
	if _, exists, err := service.entries.FindByDate(userID, today); err != nil {
		return models.CycleEntry{}, fmt.Errorf("load today's entry: %w", err)
	} else if exists {
		return models.CycleEntry{}, ErrCycleEntryExists
	}

	entry := models.CycleEntry{
		UserID:   userID,
		Date:     today,
		CycleDay: 1,
		IsPeriod: true,
	}
	if err := service.entries.Create(&entry); err != nil {
		if errors.Is(err, db.ErrDuplicateEntry) {
			return models.CycleEntry{}, ErrCycleEntryExists
		}
		return models.CycleEntry{}, fmt.Errorf("log period: %w", err)
	}
	return entry, nil
}
