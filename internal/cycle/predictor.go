package cycle

import "time"

const (
	PeriodLength          = 5
	PMSWindowStartOffset  = 8
	PMSWindowEndOffset    = 6
	OvulationOffset       = 14
	defaultProjectedCount = 1
)

// PredictionWindow is one projected cycle. It is derived on demand and never stored.
type PredictionWindow struct {
	CycleStart    time.Time
	PeriodDates   []time.Time
	PMSDates      []time.Time
	OvulationDate time.Time
}

type Window struct {
	Start time.Time
	End   time.Time
}

// WindowFor lays out the period, PMS and ovulation dates anchored on cycleStart.
func WindowFor(cycleStart time.Time) PredictionWindow {
	start := CivilDate(cycleStart)

	periodDates := make([]time.Time, 0, PeriodLength)
	for offset := 0; offset < PeriodLength; offset++ {
		periodDates = append(periodDates, AddDays(start, offset))
	}

	return PredictionWindow{
		CycleStart:    start,
		PeriodDates:   periodDates,
		PMSDates:      pmsDatesFor(start),
		OvulationDate: AddDays(start, -OvulationOffset),
	}
}

func pmsDatesFor(cycleStart time.Time) []time.Time {
	dates := make([]time.Time, 0, PMSWindowStartOffset-PMSWindowEndOffset+1)
	for offset := PMSWindowStartOffset; offset >= PMSWindowEndOffset; offset-- {
		dates = append(dates, AddDays(cycleStart, -offset))
	}
	return dates
}

// Predictor projects cycles forward from the most recent known cycle start.
// The zero value predicts nothing.
type Predictor struct {
	averageCycleLength int
	lastCycleStart     time.Time
}

func NewPredictor(averageCycleLength int, lastCycleStart time.Time) Predictor {
	if !lastCycleStart.IsZero() {
		lastCycleStart = CivilDate(lastCycleStart)
	}
	return Predictor{
		averageCycleLength: averageCycleLength,
		lastCycleStart:     lastCycleStart,
	}
}

// PredictorFromStarts builds a predictor from newest-first cycle starts.
func PredictorFromStarts(starts []time.Time) Predictor {
	averageLength, ok := AverageCycleLength(starts)
	if !ok || len(starts) == 0 {
		return Predictor{}
	}
	return NewPredictor(averageLength, starts[0])
}

// Ready reports whether both inputs are known and the cycle length is usable.
func (predictor Predictor) Ready() bool {
	return predictor.averageCycleLength > 0 && !predictor.lastCycleStart.IsZero()
}

func (predictor Predictor) AverageCycleLength() int {
	return predictor.averageCycleLength
}

func (predictor Predictor) LastCycleStart() time.Time {
	return predictor.lastCycleStart
}

// ProjectCycles returns count windows, the first one starting on or after from.
func (predictor Predictor) ProjectCycles(from time.Time, count int) []PredictionWindow {
	if !predictor.Ready() || count <= 0 {
		return nil
	}

	cycleStart := predictor.firstStartOnOrAfter(from)
	windows := make([]PredictionWindow, 0, count)
	for index := 0; index < count; index++ {
		windows = append(windows, WindowFor(cycleStart))
		cycleStart = AddDays(cycleStart, predictor.averageCycleLength)
	}
	return windows
}

func (predictor Predictor) firstStartOnOrAfter(from time.Time) time.Time {
	target := CivilDate(from)
	cycleStart := predictor.lastCycleStart
	for cycleStart.Before(target) {
		cycleStart = AddDays(cycleStart, predictor.averageCycleLength)
	}
	return cycleStart
}

// PredictedCycleDay steps one day at a time from the last cycle start, wrapping
// back to day 1 after the average length. Dates before the start report day 1.
func (predictor Predictor) PredictedCycleDay(target time.Time) (int, bool) {
	if !predictor.Ready() {
		return 0, false
	}

	day := CivilDate(target)
	cycleDay := 1
	for cursor := predictor.lastCycleStart; cursor.Before(day); cursor = AddDays(cursor, 1) {
		cycleDay++
		if cycleDay > predictor.averageCycleLength {
			cycleDay = 1
		}
	}
	return cycleDay, true
}

func (predictor Predictor) nextWindow(from time.Time) (PredictionWindow, bool) {
	windows := predictor.ProjectCycles(from, defaultProjectedCount)
	if len(windows) == 0 {
		return PredictionWindow{}, false
	}
	return windows[0], true
}

func (predictor Predictor) NextPeriodStart(from time.Time) (time.Time, bool) {
	window, ok := predictor.nextWindow(from)
	if !ok {
		return time.Time{}, false
	}
	return window.CycleStart, true
}

func (predictor Predictor) PMSWindow(from time.Time) (Window, bool) {
	window, ok := predictor.nextWindow(from)
	if !ok {
		return Window{}, false
	}
	return Window{
		Start: window.PMSDates[0],
		End:   window.PMSDates[len(window.PMSDates)-1],
	}, true
}

func (predictor Predictor) NextOvulationDate(from time.Time) (time.Time, bool) {
	window, ok := predictor.nextWindow(from)
	if !ok {
		return time.Time{}, false
	}
	return window.OvulationDate, true
}
