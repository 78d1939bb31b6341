package cycle

import "time"

const (
	// RecentCycleStartLimit caps how many logged cycle starts feed the average.
	RecentCycleStartLimit = 12
	// MaxPlausibleCycleGap drops gaps that almost certainly hide a missed log.
	MaxPlausibleCycleGap = 40
)

// CycleGaps returns the day distance between each adjacent pair of starts,
// in the order the starts were given.
func CycleGaps(starts []time.Time) []int {
	if len(starts) < 2 {
		return nil
	}
	gaps := make([]int, 0, len(starts)-1)
	for index := 0; index+1 < len(starts); index++ {
		gaps = append(gaps, DaysBetween(starts[index], starts[index+1]))
	}
	return gaps
}

// AverageCycleLength estimates the cycle length from newest-first cycle starts.
//
// Gaps longer than MaxPlausibleCycleGap are discarded. The remaining gaps are
// weighted 1, 2, 3, ... in the order they were produced, so the gap between the
// two oldest starts weighs the most. The weighted mean is rounded half up.
// The boolean is false when there is not enough data or the average is below one day.
func AverageCycleLength(starts []time.Time) (int, bool) {
	if len(starts) < 2 {
		return 0, false
	}

	weight := 0
	weightedSum := 0
	weightTotal := 0
	for _, gap := range CycleGaps(starts) {
		if gap > MaxPlausibleCycleGap {
			continue
		}
		weight++
		weightedSum += gap * weight
		weightTotal += weight
	}
	if weightTotal == 0 {
		return 0, false
	}

	average := (2*weightedSum + weightTotal) / (2 * weightTotal)
	if average < 1 {
		return 0, false
	}
	return average, true
}
