package services

import "errors"

var (
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrPasswordChangeRequired = errors.New("password change required")
	ErrUserNotFound           = errors.New("user not found")
	ErrEmailTaken             = errors.New("email already registered")
	ErrCycleEntryExists       = errors.New("cycle entry already exists for this date")
	ErrConfirmationRequired   = errors.New("period log must be confirmed")
	ErrCalendarNotConnected   = errors.New("google calendar not connected")
	ErrMonthOutOfRange        = errors.New("month outside navigable range")
	ErrNoPreviousEntry        = errors.New("no previous cycle entry")
	ErrNextPeriodUndetermined = errors.New("next period cannot be predicted yet")
)
