package api

import (
	"time"

	"github.com/terraincognita07/cyclelog/internal/cycle"
	"github.com/terraincognita07/cyclelog/internal/models"
	"github.com/terraincognita07/cyclelog/internal/services"
)

type userView struct {
	ID                 uint   `json:"id"`
	Email              string `json:"email"`
	MustChangePassword bool   `json:"must_change_password"`
}

type entryView struct {
	ID       uint   `json:"id"`
	Date     string `json:"date"`
	CycleDay int    `json:"cycle_day"`
	IsPeriod bool   `json:"is_period"`
}

type windowView struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type predictionsView struct {
	AverageCycleLength *int        `json:"average_cycle_length"`
	LastCycleStart     *string     `json:"last_cycle_start"`
	NextPeriodStart    *string     `json:"next_period_start"`
	PMSWindow          *windowView `json:"pms_window"`
	NextOvulationDate  *string     `json:"next_ovulation_date"`
	RecentEntries      []entryView `json:"recent_entries"`
	ShowLogButton      bool        `json:"show_log_button"`
	Message            string      `json:"message,omitempty"`
}

type calendarDayView struct {
	Date              string `json:"date"`
	Day               int    `json:"day"`
	InMonth           bool   `json:"in_month"`
	IsToday           bool   `json:"is_today"`
	Source            string `json:"source,omitempty"`
	CycleDay          *int   `json:"cycle_day"`
	IsPeriod          bool   `json:"is_period"`
	IsPredictedPeriod bool   `json:"is_predicted_period"`
	IsPMS             bool   `json:"is_pms"`
	IsOvulation       bool   `json:"is_ovulation"`
}

type monthView struct {
	Month     string              `json:"month"`
	Weeks     [][]calendarDayView `json:"weeks"`
	PrevMonth *string             `json:"prev_month"`
	NextMonth *string             `json:"next_month"`
}

type periodLogView struct {
	Entry           entryView `json:"entry"`
	NextPeriodStart *string   `json:"next_period_start"`
	CalendarSynced  bool      `json:"calendar_synced"`
	CalendarError   string    `json:"calendar_error,omitempty"`
}

func newUserView(user *models.User) userView {
	return userView{ID: user.ID, Email: user.Email, MustChangePassword: user.MustChangePassword}
}

func newEntryView(entry models.CycleEntry) entryView {
	return entryView{
		ID:       entry.ID,
		Date:     cycle.FormatDate(entry.Date),
		CycleDay: entry.CycleDay,
		IsPeriod: entry.IsPeriod,
	}
}

func newEntryViews(entries []models.CycleEntry) []entryView {
	views := make([]entryView, 0, len(entries))
	for _, entry := range entries {
		views = append(views, newEntryView(entry))
	}
	return views
}

func dateString(value time.Time) *string {
	formatted := cycle.FormatDate(value)
	return &formatted
}

func monthString(value *time.Time) *string {
	if value == nil {
		return nil
	}
	formatted := value.Format("2006-01")
	return &formatted
}

func newPredictionsView(summary services.PredictionSummary) predictionsView {
	view := predictionsView{
		RecentEntries: newEntryViews(summary.RecentEntries),
		ShowLogButton: summary.ShowLogButton,
	}
	if !summary.Ready {
		view.Message = "not enough data"
		return view
	}

	average := summary.AverageCycleLength
	view.AverageCycleLength = &average
	view.LastCycleStart = dateString(summary.LastCycleStart)
	view.NextPeriodStart = dateString(summary.NextPeriodStart)
	view.PMSWindow = &windowView{
		Start: cycle.FormatDate(summary.PMSWindow.Start),
		End:   cycle.FormatDate(summary.PMSWindow.End),
	}
	view.NextOvulationDate = dateString(summary.NextOvulationDate)
	return view
}

func newMonthView(month services.MonthView) monthView {
	weeks := make([][]calendarDayView, 0, len(month.Weeks))
	for _, week := range month.Weeks {
		days := make([]calendarDayView, 0, len(week))
		for _, day := range week {
			view := calendarDayView{
				Date:              day.DateString,
				Day:               day.Day,
				InMonth:           day.InMonth,
				IsToday:           day.IsToday,
				Source:            string(day.Source),
				IsPeriod:          day.IsPeriod,
				IsPredictedPeriod: day.IsPredictedPeriod,
				IsPMS:             day.IsPMS,
				IsOvulation:       day.IsOvulation,
			}
			if day.CycleDay > 0 {
				cycleDay := day.CycleDay
				view.CycleDay = &cycleDay
			}
			days = append(days, view)
		}
		weeks = append(weeks, days)
	}

	return monthView{
		Month:     month.Month.Format("2006-01"),
		Weeks:     weeks,
		PrevMonth: monthString(month.PrevMonth),
		NextMonth: monthString(month.NextMonth),
	}
}

func newPeriodLogView(result services.PeriodLogResult) periodLogView {
	view := periodLogView{
		Entry:          newEntryView(result.Entry),
		CalendarSynced: result.CalendarSynced,
		CalendarError:  result.CalendarError,
	}
	if result.NextPeriodStart != nil {
		view.NextPeriodStart = dateString(*result.NextPeriodStart)
	}
	return view
}
