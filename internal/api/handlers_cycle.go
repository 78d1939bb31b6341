package api

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/cyclelog/internal/services"
)

type periodLogInput struct {
	Confirm bool `json:"confirm"`
}

func (handler *Handler) ListEntries(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	entries, err := handler.cycles.ListEntries(user.ID)
	if err != nil {
		handler.logger.WithError(err).WithField("user_id", user.ID).Error("list entries failed")
		return apiError(c, fiber.StatusInternalServerError, "failed to load entries")
	}
	return c.JSON(fiber.Map{"entries": newEntryViews(entries)})
}

func (handler *Handler) Predictions(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	summary, err := handler.cycles.Summary(user.ID)
	if err != nil {
		handler.logger.WithError(err).WithField("user_id", user.ID).Error("build predictions failed")
		return apiError(c, fiber.StatusInternalServerError, "failed to load predictions")
	}
	return c.JSON(newPredictionsView(summary))
}

func (handler *Handler) CalendarMonth(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	year, yearOK := parseIntParam(c, "year")
	month, monthOK := parseIntParam(c, "month")
	if !yearOK || !monthOK || month < 1 || month > 12 || year < 1 {
		return apiError(c, fiber.StatusBadRequest, "invalid month")
	}

	monthDate := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	view, err := handler.cycles.MonthView(user.ID, monthDate, handler.now())
	if errors.Is(err, services.ErrMonthOutOfRange) {
		return apiError(c, fiber.StatusBadRequest, err.Error())
	}
	if err != nil {
		handler.logger.WithError(err).WithField("user_id", user.ID).Error("build month view failed")
		return apiError(c, fiber.StatusInternalServerError, "failed to load calendar")
	}
	return c.JSON(newMonthView(view))
}

// LogPeriod records today as the first day of a new cycle. The calendar sync
// outcome is part of the success payload.
func (handler *Handler) LogPeriod(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	confirmed, err := periodLogConfirmed(c)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	result, err := handler.periods.LogPeriod(c.UserContext(), user.ID, confirmed, handler.now())
	switch {
	case errors.Is(err, services.ErrConfirmationRequired):
		return apiError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrCycleEntryExists):
		return apiError(c, fiber.StatusConflict, err.Error())
	case err != nil:
		handler.logger.WithError(err).WithField("user_id", user.ID).Error("log period failed")
		return apiError(c, fiber.StatusInternalServerError, "failed to log period")
	}
	return c.Status(fiber.StatusCreated).JSON(newPeriodLogView(result))
}

// periodLogConfirmed reads confirm from a JSON body, a form field or the query.
func periodLogConfirmed(c *fiber.Ctx) (bool, error) {
	body := c.Body()
	if strings.Contains(strings.ToLower(c.Get(fiber.HeaderContentType)), fiber.MIMEApplicationJSON) && len(body) > 0 {
		var input periodLogInput
		if err := json.Unmarshal(body, &input); err != nil {
			return false, err
		}
		return input.Confirm, nil
	}
	return parseBoolField(c.FormValue("confirm")) || parseBoolField(c.Query("confirm")), nil
}
