package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

const (
	minSecretKeyLength         = 32
	defaultPort                = "8080"
	defaultBackfillTimeZone    = "Europe/London"
	defaultBackfillCron        = "15 0 * * *"
	defaultCalendarSyncTimeout = 15 * time.Second
)

var insecureSecretKeys = map[string]struct{}{
	"change_me_in_production":                    {},
	"replace_with_at_least_32_random_characters": {},
}

// Scope names the command a configuration is validated for.
type Scope int

const (
	ScopeServe Scope = iota
	ScopeBackfill
	// ScopeAdmin covers the user management commands, which only need the database.
	ScopeAdmin
)

type Config struct {
	AppEnv       string
	LogLevel     string
	Port         string
	DBPath       string
	TimeZone     string
	SecretKey    string
	CookieSecure bool

	BackfillUserEmail string
	BackfillTimeZone  string
	BackfillCron      string

	GoogleClientID        string
	GoogleClientSecret    string
	GoogleRedirectURL     string
	GoogleCalendarID      string
	GoogleAuthURL         string
	GoogleTokenURL        string
	GoogleCalendarBaseURL string

	CalendarSyncTimeout time.Duration

	parseErrors []error
}

// MissingKeysError lists every required key that has no value.
type MissingKeysError struct {
	Keys []string
}

func (err *MissingKeysError) Error() string {
	return "missing required configuration: " + strings.Join(err.Keys, ", ")
}

// Load reads the environment after merging an optional .env file. Values that
// fail to parse are reported by Validate together with everything else.
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:    strings.ToLower(getEnv("APP_ENV", "development")),
		LogLevel:  strings.ToLower(getEnv("LOG_LEVEL", "info")),
		Port:      getEnv("PORT", defaultPort),
		DBPath:    getEnv("DB_PATH", filepath.Join("data", "cyclelog.db")),
		TimeZone:  getEnv("TZ", "UTC"),
		SecretKey: strings.TrimSpace(os.Getenv("SECRET_KEY")),

		BackfillUserEmail: strings.TrimSpace(os.Getenv("BACKFILL_USER_EMAIL")),
		BackfillTimeZone:  getEnv("BACKFILL_TIMEZONE", defaultBackfillTimeZone),
		BackfillCron:      getEnv("BACKFILL_CRON", defaultBackfillCron),

		GoogleClientID:        strings.TrimSpace(os.Getenv("GOOGLE_CLIENT_ID")),
		GoogleClientSecret:    strings.TrimSpace(os.Getenv("GOOGLE_CLIENT_SECRET")),
		GoogleRedirectURL:     strings.TrimSpace(os.Getenv("GOOGLE_REDIRECT_URL")),
		GoogleCalendarID:      getEnv("GOOGLE_CALENDAR_ID", "primary"),
		GoogleAuthURL:         os.Getenv("GOOGLE_AUTH_URL"),
		GoogleTokenURL:        os.Getenv("GOOGLE_TOKEN_URL"),
		GoogleCalendarBaseURL: os.Getenv("GOOGLE_CALENDAR_BASE_URL"),
	}

	secure, err := getBoolEnv("COOKIE_SECURE", false)
	if err != nil {
		cfg.parseErrors = append(cfg.parseErrors, err)
	}
	cfg.CookieSecure = secure

	timeout, err := getDurationEnv("CALENDAR_SYNC_TIMEOUT", defaultCalendarSyncTimeout)
	if err != nil {
		cfg.parseErrors = append(cfg.parseErrors, err)
	}
	cfg.CalendarSyncTimeout = timeout

	return cfg
}

// Validate checks everything scope needs in one pass.
func (cfg *Config) Validate(scope Scope) error {
	var missing []string
	invalid := append([]error(nil), cfg.parseErrors...)

	if _, err := time.LoadLocation(cfg.TimeZone); err != nil {
		invalid = append(invalid, fmt.Errorf("invalid TZ %q: %w", cfg.TimeZone, err))
	}

	switch scope {
	case ScopeServe:
		if cfg.SecretKey == "" {
			missing = append(missing, "SECRET_KEY")
		} else if err := validateSecretKey(cfg.SecretKey); err != nil {
			invalid = append(invalid, err)
		}
		if err := validatePort(cfg.Port); err != nil {
			invalid = append(invalid, err)
		}
		if cfg.googleAnySet() {
			if cfg.GoogleClientID == "" {
				missing = append(missing, "GOOGLE_CLIENT_ID")
			}
			if cfg.GoogleClientSecret == "" {
				missing = append(missing, "GOOGLE_CLIENT_SECRET")
			}
			if cfg.GoogleRedirectURL == "" {
				missing = append(missing, "GOOGLE_REDIRECT_URL")
			}
		}
		if cfg.CalendarSyncTimeout <= 0 {
			invalid = append(invalid, errors.New("CALENDAR_SYNC_TIMEOUT must be positive"))
		}
	case ScopeBackfill:
		if cfg.BackfillUserEmail == "" {
			missing = append(missing, "BACKFILL_USER_EMAIL")
		}
		if _, err := time.LoadLocation(cfg.BackfillTimeZone); err != nil {
			invalid = append(invalid, fmt.Errorf("invalid BACKFILL_TIMEZONE %q: %w", cfg.BackfillTimeZone, err))
		}
		if _, err := cron.ParseStandard(cfg.BackfillCron); err != nil {
			invalid = append(invalid, fmt.Errorf("invalid BACKFILL_CRON %q: %w", cfg.BackfillCron, err))
		}
	case ScopeAdmin:
	default:
		return fmt.Errorf("unknown configuration scope %d", scope)
	}

	var errs []error
	if len(missing) > 0 {
		errs = append(errs, &MissingKeysError{Keys: missing})
	}
	return errors.Join(append(errs, invalid...)...)
}

func (cfg *Config) IsProduction() bool {
	return cfg.AppEnv == "production"
}

// GoogleEnabled reports whether calendar sync is configured.
func (cfg *Config) GoogleEnabled() bool {
	return cfg.GoogleClientID != "" && cfg.GoogleClientSecret != "" && cfg.GoogleRedirectURL != ""
}

func (cfg *Config) Location() (*time.Location, error) {
	return time.LoadLocation(cfg.TimeZone)
}

func (cfg *Config) BackfillLocation() (*time.Location, error) {
	return time.LoadLocation(cfg.BackfillTimeZone)
}

func (cfg *Config) googleAnySet() bool {
	return cfg.GoogleClientID != "" || cfg.GoogleClientSecret != "" || cfg.GoogleRedirectURL != ""
}

func validateSecretKey(secret string) error {
	if _, insecure := insecureSecretKeys[strings.ToLower(secret)]; insecure {
		return errors.New("SECRET_KEY uses an insecure placeholder value")
	}
	if len(secret) < minSecretKeyLength {
		return fmt.Errorf("SECRET_KEY must be at least %d characters", minSecretKeyLength)
	}
	return nil
}

func validatePort(raw string) error {
	port, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("invalid PORT %q: must be between 1 and 65535", raw)
	}
	return nil
}

func getEnv(key string, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func getBoolEnv(key string, fallback bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return value, nil
}

func getDurationEnv(key string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		return fallback, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return value, nil
}
