package services

import (
	"context"
	"time"

	"github.com/terraincognita07/cyclelog/internal/cycle"
)

type CalendarEventKind string

const (
	CalendarEventPMS    CalendarEventKind = "pms"
	CalendarEventPeriod CalendarEventKind = "period"
)

const pmsEventDays = 3

// CalendarEvent is an all-day event. EndDate is exclusive, as all-day events
// are stored in calendar APIs.
type CalendarEvent struct {
	Kind        CalendarEventKind
	Summary     string
	Description string
	StartDate   time.Time
	EndDate     time.Time
	TimeZone    string
}

// Key identifies the event independently of its text, so re-creating the
// events for the same period start targets the same calendar entries.
func (event CalendarEvent) Key() string {
	return string(event.Kind) + ":" + cycle.FormatDate(event.StartDate)
}

type CalendarEventCreator interface {
	CreateEvents(ctx context.Context, userID uint, events []CalendarEvent) error
}

// BuildCycleEvents returns the PMS event covering the three days before
// periodStart and the period event covering the five days from periodStart.
func BuildCycleEvents(periodStart time.Time, timeZone string) []CalendarEvent {
	start := cycle.CivilDate(periodStart)
	pmsEnd := cycle.AddDays(start, -1)
	pmsStart := cycle.AddDays(pmsEnd, -(pmsEventDays - 1))
	periodEnd := cycle.AddDays(start, cycle.PeriodLength-1)

	return []CalendarEvent{
		{
			Kind:        CalendarEventPMS,
			Summary:     "🧘‍♀️ 8 days before bleeding",
			Description: "PMS window - prepare for upcoming period",
			StartDate:   pmsStart,
			EndDate:     cycle.AddDays(pmsEnd, 1),
			TimeZone:    timeZone,
		},
		{
			Kind:        CalendarEventPeriod,
			Summary:     "🩸 Bleeding",
			Description: "Menstrual period - bleeding phase",
			StartDate:   start,
			EndDate:     cycle.AddDays(periodEnd, 1),
			TimeZone:    timeZone,
		},
	}
}
