package cycle

import (
	"time"

	"github.com/terraincognita07/cyclelog/internal/models"
)

// EntryKind tells a persisted entry apart from one the predictor made up.
type EntryKind string

const (
	EntryLogged    EntryKind = "logged"
	EntryPredicted EntryKind = "predicted"
)

const (
	predictedMonthCycles = 2
	forecastMonthCycles  = 3
)

// DayEntry is a cycle day shown to the user. EntryID is only set for logged entries.
type DayEntry struct {
	Kind     EntryKind
	EntryID  uint
	Date     time.Time
	CycleDay int
	IsPeriod bool
}

func LoggedEntry(entry models.CycleEntry) DayEntry {
	return DayEntry{
		Kind:     EntryLogged,
		EntryID:  entry.ID,
		Date:     CivilDate(entry.Date),
		CycleDay: entry.CycleDay,
		IsPeriod: entry.IsPeriod,
	}
}

// PredictMonthEntries fills every day of the month containing monthDate with a
// predicted entry. Period days come from the two cycles projected from the month start.
func (predictor Predictor) PredictMonthEntries(monthDate time.Time) []DayEntry {
	if !predictor.Ready() {
		return nil
	}

	monthStart, monthEnd := MonthBounds(monthDate)
	periodDates := DateSet{}
	for _, window := range predictor.ProjectCycles(monthStart, predictedMonthCycles) {
		for _, day := range window.PeriodDates {
			periodDates.Add(day)
		}
	}

	entries := make([]DayEntry, 0, monthEnd.Day())
	for day := monthStart; !day.After(monthEnd); day = AddDays(day, 1) {
		cycleDay, _ := predictor.PredictedCycleDay(day)
		entries = append(entries, DayEntry{
			Kind:     EntryPredicted,
			Date:     day,
			CycleDay: cycleDay,
			IsPeriod: periodDates.Has(day),
		})
	}
	return entries
}

// MonthPredictions holds projected period and PMS dates restricted to one month.
type MonthPredictions struct {
	PeriodDates DateSet
	PMSDates    DateSet
	Ovulation   DateSet
}

func (predictor Predictor) MonthPredictions(monthDate time.Time) MonthPredictions {
	forecast := MonthPredictions{
		PeriodDates: DateSet{},
		PMSDates:    DateSet{},
		Ovulation:   DateSet{},
	}
	if !predictor.Ready() {
		return forecast
	}

	monthStart, monthEnd := MonthBounds(monthDate)
	for _, window := range predictor.ProjectCycles(monthStart, forecastMonthCycles) {
		for _, day := range window.PeriodDates {
			if betweenInclusive(day, monthStart, monthEnd) {
				forecast.PeriodDates.Add(day)
			}
		}
		for _, day := range window.PMSDates {
			if betweenInclusive(day, monthStart, monthEnd) {
				forecast.PMSDates.Add(day)
			}
		}
		if betweenInclusive(window.OvulationDate, monthStart, monthEnd) {
			forecast.Ovulation.Add(window.OvulationDate)
		}
	}
	return forecast
}
