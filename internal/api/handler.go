package api

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/terraincognita07/cyclelog/internal/google"
	"github.com/terraincognita07/cyclelog/internal/services"
)

const (
	defaultAuthTokenTTL = 7 * 24 * time.Hour
	loginAttemptLimit   = 8
	loginAttemptWindow  = 15 * time.Minute
)

// CalendarConnector is the Google consent flow as seen by the HTTP layer.
type CalendarConnector interface {
	AuthURL(state string) string
	ExchangeAndStore(ctx context.Context, userID uint, code string) error
	Connected(userID uint) (bool, error)
	Disconnect(userID uint) error
}

type Handler struct {
	auth         *services.AuthService
	cycles       *services.CycleService
	periods      *services.PeriodLogService
	calendar     CalendarConnector
	states       *google.StateSigner
	secretKey    []byte
	cookieSecure bool
	loginLimiter *attemptLimiter
	logger       *logrus.Logger
	now          func() time.Time
}

// Options carries the collaborators of a Handler. Calendar is nil when
// Google integration is not configured.
type Options struct {
	Auth         *services.AuthService
	Cycles       *services.CycleService
	Periods      *services.PeriodLogService
	Calendar     CalendarConnector
	SecretKey    string
	CookieSecure bool
	Logger       *logrus.Logger
}

func NewHandler(options Options) (*Handler, error) {
	if options.Auth == nil || options.Cycles == nil || options.Periods == nil {
		return nil, errors.New("auth, cycle and period services are required")
	}
	if options.SecretKey == "" {
		return nil, errors.New("secret key is required")
	}
	logger := options.Logger
	if logger == nil {
		logger = logrus.New()
	}

	secret := []byte(options.SecretKey)
	return &Handler{
		auth:         options.Auth,
		cycles:       options.Cycles,
		periods:      options.Periods,
		calendar:     options.Calendar,
		states:       google.NewStateSigner(secret),
		secretKey:    secret,
		cookieSecure: options.CookieSecure,
		loginLimiter: newAttemptLimiter(),
		logger:       logger,
		now:          time.Now,
	}, nil
}
