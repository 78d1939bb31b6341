package services

import (
	"time"

	"github.com/terraincognita07/cyclelog/internal/cycle"
	"github.com/terraincognita07/cyclelog/internal/models"
)

const (
	RecentEntryLimit = 5
	// logButtonMinCycleDay is the cycle day from which logging a new period is offered.
	logButtonMinCycleDay = 20
)

type PredictionSummary struct {
	Ready              bool
	AverageCycleLength int
	LastCycleStart     time.Time
	NextPeriodStart    time.Time
	PMSWindow          cycle.Window
	NextOvulationDate  time.Time
	RecentEntries      []models.CycleEntry
	ShowLogButton      bool
}

// BuildPredictionSummary derives the dashboard figures from newest-first cycle
// starts and newest-first entries. The next cycle is the first projected start
// after the last logged one.
func BuildPredictionSummary(starts []time.Time, entries []models.CycleEntry) PredictionSummary {
	summary := PredictionSummary{
		RecentEntries: recentEntries(entries, RecentEntryLimit),
		ShowLogButton: shouldOfferLogButton(entries),
	}

	predictor := cycle.PredictorFromStarts(starts)
	if !predictor.Ready() {
		return summary
	}

	from := cycle.AddDays(predictor.LastCycleStart(), 1)
	windows := predictor.ProjectCycles(from, 1)
	if len(windows) == 0 {
		return summary
	}
	next := windows[0]

	summary.Ready = true
	summary.AverageCycleLength = predictor.AverageCycleLength()
	summary.LastCycleStart = predictor.LastCycleStart()
	summary.NextPeriodStart = next.CycleStart
	summary.PMSWindow = cycle.Window{
		Start: next.PMSDates[0],
		End:   next.PMSDates[len(next.PMSDates)-1],
	}
	summary.NextOvulationDate = next.OvulationDate
	return summary
}

func recentEntries(entries []models.CycleEntry, limit int) []models.CycleEntry {
	if len(entries) > limit {
		entries = entries[:limit]
	}
	recent := make([]models.CycleEntry, len(entries))
	copy(recent, entries)
	return recent
}

// shouldOfferLogButton looks at the newest entry: it must not be a period day
// and the cycle must be far enough along.
func shouldOfferLogButton(entries []models.CycleEntry) bool {
	if len(entries) == 0 {
		return false
	}
	latest := entries[0]
	return !latest.IsPeriod && latest.CycleDay >= logButtonMinCycleDay
}
