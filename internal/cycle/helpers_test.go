package cycle

import (
	"testing"
	"time"

	"github.com/terraincognita07/cyclelog/internal/models"
)

func mustParseDay(t *testing.T, raw string) time.Time {
	t.Helper()
	day, err := ParseDate(raw)
	if err != nil {
		t.Fatalf("parse day %q: %v", raw, err)
	}
	return day
}

// startsFromGaps walks back from newest by each gap in turn and returns newest-first starts.
func startsFromGaps(t *testing.T, newest string, gaps ...int) []time.Time {
	t.Helper()
	starts := []time.Time{mustParseDay(t, newest)}
	for _, gap := range gaps {
		starts = append(starts, AddDays(starts[len(starts)-1], -gap))
	}
	return starts
}

func makeEntry(t *testing.T, raw string, cycleDay int, isPeriod bool) models.CycleEntry {
	t.Helper()
	return models.CycleEntry{
		UserID:   1,
		Date:     mustParseDay(t, raw),
		CycleDay: cycleDay,
		IsPeriod: isPeriod,
	}
}

func formatDates(days []time.Time) []string {
	formatted := make([]string, 0, len(days))
	for _, day := range days {
		formatted = append(formatted, FormatDate(day))
	}
	return formatted
}

func assertDates(t *testing.T, label string, got []string, want ...string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected %s %v, got %v", label, want, got)
	}
	for index := range want {
		if got[index] != want[index] {
			t.Fatalf("expected %s %v, got %v", label, want, got)
		}
	}
}
