package cycle

import (
	"sort"
	"strings"
	"time"
)

// DateLayout is the canonical yyyy-MM-dd representation of a civil date.
const DateLayout = "2006-01-02"

// CivilDate keeps the calendar date shown by value and drops the time of day.
// The result is midnight UTC so that day arithmetic never crosses a DST change.
func CivilDate(value time.Time) time.Time {
	year, month, day := value.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// DateIn returns the civil date value falls on in location.
func DateIn(value time.Time, location *time.Location) time.Time {
	if location == nil {
		location = time.UTC
	}
	return CivilDate(value.In(location))
}

func FormatDate(value time.Time) string {
	return CivilDate(value).Format(DateLayout)
}

func ParseDate(raw string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, strings.TrimSpace(raw), time.UTC)
}

func AddDays(value time.Time, days int) time.Time {
	return CivilDate(value).AddDate(0, 0, days)
}

// DaysBetween is the absolute number of whole days separating a and b.
func DaysBetween(a time.Time, b time.Time) int {
	diff := CivilDate(b).Sub(CivilDate(a)) / (24 * time.Hour)
	if diff < 0 {
		diff = -diff
	}
	return int(diff)
}

func SameDay(a time.Time, b time.Time) bool {
	return CivilDate(a).Equal(CivilDate(b))
}

// MonthBounds returns the first and last civil day of the month containing value.
func MonthBounds(value time.Time) (time.Time, time.Time) {
	year, month, _ := value.Date()
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, -1)
}

func betweenInclusive(day time.Time, start time.Time, end time.Time) bool {
	return !day.Before(start) && !day.After(end)
}

// DateSet holds civil dates keyed by their canonical string form.
type DateSet map[string]struct{}

func (set DateSet) Add(value time.Time) {
	set[FormatDate(value)] = struct{}{}
}

func (set DateSet) Has(value time.Time) bool {
	_, ok := set[FormatDate(value)]
	return ok
}

func (set DateSet) Merge(other DateSet) {
	for key := range other {
		set[key] = struct{}{}
	}
}

// Sorted lists the set in ascending date order.
func (set DateSet) Sorted() []string {
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
