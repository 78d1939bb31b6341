package services

import (
	"errors"
	"testing"

	"github.com/terraincognita07/cyclelog/internal/cycle"
	"github.com/terraincognita07/cyclelog/internal/models"
)

func findCalendarDay(t *testing.T, view MonthView, raw string) CalendarDay {
	t.Helper()
	for _, week := range view.Weeks {
		for _, day := range week {
			if day.DateString == raw {
				return day
			}
		}
	}
	t.Fatalf("day %s not in view", raw)
	return CalendarDay{}
}

func TestBuildMonthViewGrid(t *testing.T) {
	predictor := cycle.NewPredictor(28, mustParseDay(t, "2023-01-01"))
	entries := []models.CycleEntry{
		makeEntry(t, "2023-02-01", 4, true),
		makeEntry(t, "2023-02-02", 5, true),
	}
	entries[0].ID = 7

	view := BuildMonthView(mustParseDay(t, "2023-02-14"), entries, predictor, mustParseDay(t, "2023-02-10"))

	if len(view.Weeks) != 5 {
		t.Fatalf("expected 5 weeks, got %d", len(view.Weeks))
	}
	first := view.Weeks[0][0]
	if first.DateString != "2023-01-30" || first.InMonth {
		t.Fatalf("expected grid to start on Monday 2023-01-30 outside the month, got %+v", first)
	}
	if last := view.Weeks[4][6]; last.DateString != "2023-03-05" {
		t.Fatalf("expected grid to end on Sunday 2023-03-05, got %s", last.DateString)
	}

	logged := findCalendarDay(t, view, "2023-02-01")
	if logged.Source != cycle.EntryLogged || logged.EntryID != 7 || logged.CycleDay != 4 || !logged.IsPeriod {
		t.Fatalf("unexpected logged day %+v", logged)
	}

	unlogged := findCalendarDay(t, view, "2023-02-05")
	if unlogged.Source != cycle.EntryPredicted || unlogged.CycleDay != 8 {
		t.Fatalf("expected a predicted day after the latest entry, got %+v", unlogged)
	}

	if today := findCalendarDay(t, view, "2023-02-10"); !today.IsToday {
		t.Fatalf("expected 2023-02-10 to be today")
	}

	future := findCalendarDay(t, view, "2023-02-20")
	if future.Source != cycle.EntryPredicted || future.CycleDay != 23 {
		t.Fatalf("unexpected predicted day %+v", future)
	}
	if !future.IsPMS {
		t.Fatalf("expected 2023-02-20 to be in the pms window")
	}

	if period := findCalendarDay(t, view, "2023-02-26"); !period.IsPredictedPeriod || period.IsPeriod || period.CycleDay != 1 {
		t.Fatalf("unexpected predicted period day %+v", period)
	}
	if ovulation := findCalendarDay(t, view, "2023-02-12"); !ovulation.IsOvulation {
		t.Fatalf("expected ovulation on 2023-02-12")
	}

	if outside := findCalendarDay(t, view, "2023-03-01"); outside.IsPredictedPeriod || outside.Source != "" {
		t.Fatalf("expected no overlays outside the month, got %+v", outside)
	}

	if view.PrevMonth == nil || cycle.FormatDate(*view.PrevMonth) != "2023-01-01" {
		t.Fatalf("expected previous month link, got %v", view.PrevMonth)
	}
	if view.NextMonth == nil || cycle.FormatDate(*view.NextMonth) != "2023-03-01" {
		t.Fatalf("expected next month link, got %v", view.NextMonth)
	}
}

func TestBuildMonthViewLeavesGapsBeforeLatestEntry(t *testing.T) {
	predictor := cycle.NewPredictor(28, mustParseDay(t, "2023-01-01"))
	entries := []models.CycleEntry{
		makeEntry(t, "2023-02-01", 4, true),
		makeEntry(t, "2023-02-08", 11, false),
	}

	view := BuildMonthView(mustParseDay(t, "2023-02-01"), entries, predictor, mustParseDay(t, "2023-02-10"))

	if gap := findCalendarDay(t, view, "2023-02-05"); gap.Source != "" || gap.CycleDay != 0 {
		t.Fatalf("expected no data between logged entries, got %+v", gap)
	}
	if day := findCalendarDay(t, view, "2023-02-09"); day.Source != cycle.EntryPredicted || day.CycleDay != 12 {
		t.Fatalf("expected predicted day 12 before backfill, got %+v", day)
	}
}

func TestBuildMonthViewPastMonthAfterLastStart(t *testing.T) {
	predictor := cycle.NewPredictor(28, mustParseDay(t, "2023-01-10"))

	view := BuildMonthView(mustParseDay(t, "2023-01-01"), nil, predictor, mustParseDay(t, "2023-02-10"))

	if before := findCalendarDay(t, view, "2023-01-05"); before.Source != "" {
		t.Fatalf("expected no prediction before the last cycle start, got %+v", before)
	}
	if after := findCalendarDay(t, view, "2023-01-15"); after.Source != cycle.EntryPredicted || after.CycleDay != 6 {
		t.Fatalf("expected predicted day 6, got %+v", after)
	}
}

func TestBuildMonthViewWithoutPredictor(t *testing.T) {
	entries := []models.CycleEntry{makeEntry(t, "2023-02-03", 1, true)}

	view := BuildMonthView(mustParseDay(t, "2023-02-01"), entries, cycle.Predictor{}, mustParseDay(t, "2023-02-10"))

	if day := findCalendarDay(t, view, "2023-02-20"); day.Source != "" || day.IsPMS || day.IsPredictedPeriod {
		t.Fatalf("expected no predictions without history, got %+v", day)
	}
	if day := findCalendarDay(t, view, "2023-02-03"); day.Source != cycle.EntryLogged {
		t.Fatalf("expected logged entry to be shown, got %+v", day)
	}
}

func TestBuildMonthViewNavigationEdges(t *testing.T) {
	today := mustParseDay(t, "2023-02-10")

	oldest := BuildMonthView(mustParseDay(t, "2022-08-01"), nil, cycle.Predictor{}, today)
	if oldest.PrevMonth != nil {
		t.Fatalf("expected no previous link six months back")
	}
	newest := BuildMonthView(mustParseDay(t, "2023-06-01"), nil, cycle.Predictor{}, today)
	if newest.NextMonth != nil {
		t.Fatalf("expected no next link four months ahead")
	}
}

func TestValidateMonthInRange(t *testing.T) {
	today := mustParseDay(t, "2023-02-10")
	cases := map[string]bool{
		"2022-07-31": false,
		"2022-08-01": true,
		"2023-02-28": true,
		"2023-06-30": true,
		"2023-07-01": false,
	}
	for raw, allowed := range cases {
		err := ValidateMonthInRange(mustParseDay(t, raw), today)
		if allowed && err != nil {
			t.Fatalf("expected %s to be allowed, got %v", raw, err)
		}
		if !allowed && !errors.Is(err, ErrMonthOutOfRange) {
			t.Fatalf("expected %s to be rejected, got %v", raw, err)
		}
	}
}
