package api

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/cyclelog/internal/google"
)

func (handler *Handler) GoogleStatus(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	if handler.calendar == nil {
		return c.JSON(fiber.Map{"configured": false, "connected": false})
	}

	connected, err := handler.calendar.Connected(user.ID)
	if err != nil {
		handler.logger.WithError(err).WithField("user_id", user.ID).Error("load calendar status failed")
		return apiError(c, fiber.StatusInternalServerError, "failed to load calendar status")
	}
	return c.JSON(fiber.Map{"configured": true, "connected": connected})
}

// GoogleConnect returns the consent URL. The client navigates there and
// Google sends the browser back to /oauth/callback.
func (handler *Handler) GoogleConnect(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	if handler.calendar == nil {
		return apiError(c, fiber.StatusNotFound, "google calendar is not configured")
	}

	state, err := handler.states.Issue(user.ID)
	if err != nil {
		handler.logger.WithError(err).Error("issue oauth state failed")
		return apiError(c, fiber.StatusInternalServerError, "failed to start google authorization")
	}
	return c.JSON(fiber.Map{"url": handler.calendar.AuthURL(state)})
}

func (handler *Handler) GoogleDisconnect(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	if handler.calendar == nil {
		return apiError(c, fiber.StatusNotFound, "google calendar is not configured")
	}

	if err := handler.calendar.Disconnect(user.ID); err != nil {
		handler.logger.WithError(err).WithField("user_id", user.ID).Error("google disconnect failed")
		return apiError(c, fiber.StatusInternalServerError, "failed to disconnect google calendar")
	}
	return c.JSON(fiber.Map{"connected": false})
}

func (handler *Handler) OAuthCallback(c *fiber.Ctx) error {
	if handler.calendar == nil {
		return apiError(c, fiber.StatusNotFound, "google calendar is not configured")
	}
	if reason := strings.TrimSpace(c.Query("error")); reason != "" {
		return apiError(c, fiber.StatusBadRequest, "google authorization denied: "+reason)
	}

	userID, err := handler.states.Verify(c.Query("state"))
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, err.Error())
	}

	code := strings.TrimSpace(c.Query("code"))
	if code == "" {
		return apiError(c, fiber.StatusBadRequest, "authorization code is required")
	}

	log := handler.logger.WithField("user_id", userID)
	if err := handler.calendar.ExchangeAndStore(c.UserContext(), userID, code); err != nil {
		if errors.Is(err, google.ErrNoRefreshToken) {
			return apiError(c, fiber.StatusBadRequest, err.Error())
		}
		log.WithError(err).Error("google token exchange failed")
		return apiError(c, fiber.StatusInternalServerError, "failed to connect google calendar")
	}
	return c.JSON(fiber.Map{"connected": true})
}
