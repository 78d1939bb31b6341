package cycle

import (
	"time"

	"github.com/terraincognita07/cyclelog/internal/models"
)

const (
	reconstructionProjectedStarts = 2
	reconstructionHorizonMonths   = 2
)

// MonthMarkers are the PMS and ovulation dates that fall inside one calendar month.
type MonthMarkers struct {
	PMSDates       DateSet
	OvulationDates DateSet
}

func newMonthMarkers() MonthMarkers {
	return MonthMarkers{
		PMSDates:       DateSet{},
		OvulationDates: DateSet{},
	}
}

func (markers MonthMarkers) addWindow(cycleStart time.Time, monthStart time.Time, monthEnd time.Time) {
	window := WindowFor(cycleStart)
	for _, day := range window.PMSDates {
		if betweenInclusive(day, monthStart, monthEnd) {
			markers.PMSDates.Add(day)
		}
	}
	if betweenInclusive(window.OvulationDate, monthStart, monthEnd) {
		markers.OvulationDates.Add(window.OvulationDate)
	}
}

// ReconstructMonth recovers the PMS and ovulation markers that applied to the
// month containing monthDate, anchored on the cycle starts logged in entries.
//
// Each logged start contributes its own window. The latest logged start is then
// projected forward up to two more cycles so a window spilling into a month with
// no logged start is still shown. Projection stops once a start lands more than
// two months past the end of the target month.
func ReconstructMonth(monthDate time.Time, entries []models.CycleEntry, averageCycleLength int) MonthMarkers {
	markers := newMonthMarkers()
	if averageCycleLength <= 0 {
		return markers
	}

	monthStart, monthEnd := MonthBounds(monthDate)
	latestStart := time.Time{}
	for _, entry := range entries {
		if !entry.IsCycleStart() {
			continue
		}
		cycleStart := CivilDate(entry.Date)
		markers.addWindow(cycleStart, monthStart, monthEnd)
		if cycleStart.After(latestStart) {
			latestStart = cycleStart
		}
	}
	if latestStart.IsZero() {
		return markers
	}

	horizon := monthEnd.AddDate(0, reconstructionHorizonMonths, 0)
	projectedStart := latestStart
	for index := 0; index < reconstructionProjectedStarts; index++ {
		projectedStart = AddDays(projectedStart, averageCycleLength)
		if projectedStart.After(horizon) {
			break
		}
		markers.addWindow(projectedStart, monthStart, monthEnd)
	}

	return markers
}
