package services

import (
	"time"

	"github.com/terraincognita07/cyclelog/internal/cycle"
	"github.com/terraincognita07/cyclelog/internal/models"
)

const (
	MaxMonthsBack  = 6
	MaxMonthsAhead = 4
)

type CalendarDay struct {
	Date              time.Time
	DateString        string
	Day               int
	InMonth           bool
	IsToday           bool
	Source            cycle.EntryKind
	EntryID           uint
	CycleDay          int
	IsPeriod          bool
	IsPredictedPeriod bool
	IsPMS             bool
	IsOvulation       bool
}

type MonthView struct {
	Month     time.Time
	Weeks     [][]CalendarDay
	PrevMonth *time.Time
	NextMonth *time.Time
}

// ValidateMonthInRange allows six months before today's month up to four after it.
func ValidateMonthInRange(monthDate time.Time, today time.Time) error {
	offset := monthOffset(today, monthDate)
	if offset < -MaxMonthsBack || offset > MaxMonthsAhead {
		return ErrMonthOutOfRange
	}
	return nil
}

func monthOffset(from time.Time, to time.Time) int {
	return (to.Year()-from.Year())*12 + int(to.Month()) - int(from.Month())
}

// BuildMonthView lays the month containing monthDate out as Monday-first weeks.
// Logged entries win over predictions. Unlogged days after today, or after the
// latest logged entry or cycle start, carry the predicted cycle day. Period, PMS and ovulation overlays combine the
// forward projection with markers reconstructed from the logged starts.
func BuildMonthView(monthDate time.Time, entries []models.CycleEntry, predictor cycle.Predictor, today time.Time) MonthView {
	monthStart, monthEnd := cycle.MonthBounds(monthDate)
	today = cycle.CivilDate(today)

	logged := make(map[string]cycle.DayEntry, len(entries))
	predictFrom := cycle.CivilDate(predictor.LastCycleStart())
	for _, entry := range entries {
		day := cycle.LoggedEntry(entry)
		logged[cycle.FormatDate(day.Date)] = day
		if day.Date.After(predictFrom) {
			predictFrom = day.Date
		}
	}
	if today.Before(predictFrom) {
		predictFrom = today
	}

	predicted := make(map[string]cycle.DayEntry)
	for _, day := range predictor.PredictMonthEntries(monthStart) {
		predicted[cycle.FormatDate(day.Date)] = day
	}

	forecast := predictor.MonthPredictions(monthStart)
	markers := cycle.ReconstructMonth(monthStart, entries, predictor.AverageCycleLength())
	pmsDates := cycle.DateSet{}
	pmsDates.Merge(forecast.PMSDates)
	pmsDates.Merge(markers.PMSDates)
	ovulationDates := cycle.DateSet{}
	ovulationDates.Merge(forecast.Ovulation)
	ovulationDates.Merge(markers.OvulationDates)

	gridStart := cycle.AddDays(monthStart, -mondayOffset(monthStart))
	gridEnd := cycle.AddDays(monthEnd, 6-mondayOffset(monthEnd))

	weeks := make([][]CalendarDay, 0, 6)
	week := make([]CalendarDay, 0, 7)
	for day := gridStart; !day.After(gridEnd); day = cycle.AddDays(day, 1) {
		key := cycle.FormatDate(day)
		state := CalendarDay{
			Date:       day,
			DateString: key,
			Day:        day.Day(),
			InMonth:    day.Month() == monthStart.Month(),
			IsToday:    day.Equal(today),
		}

		if state.InMonth {
			if entry, ok := logged[key]; ok {
				state.Source = entry.Kind
				state.EntryID = entry.EntryID
				state.CycleDay = entry.CycleDay
				state.IsPeriod = entry.IsPeriod
			} else if entry, ok := predicted[key]; ok && day.After(predictFrom) {
				state.Source = entry.Kind
				state.CycleDay = entry.CycleDay
				state.IsPredictedPeriod = entry.IsPeriod
			}
			if !state.IsPeriod && forecast.PeriodDates.Has(day) {
				state.IsPredictedPeriod = true
			}
			state.IsPMS = pmsDates.Has(day)
			state.IsOvulation = ovulationDates.Has(day)
		}

		week = append(week, state)
		if len(week) == 7 {
			weeks = append(weeks, week)
			week = make([]CalendarDay, 0, 7)
		}
	}

	view := MonthView{Month: monthStart, Weeks: weeks}
	if previous := monthStart.AddDate(0, -1, 0); ValidateMonthInRange(previous, today) == nil {
		view.PrevMonth = &previous
	}
	if next := monthStart.AddDate(0, 1, 0); ValidateMonthInRange(next, today) == nil {
		view.NextMonth = &next
	}
	return view
}

// mondayOffset is how many days value is past the Monday of its week.
func mondayOffset(value time.Time) int {
	return (int(value.Weekday()) + 6) % 7
}
