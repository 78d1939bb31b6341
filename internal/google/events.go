package google

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker/v2"
	"github.com/terraincognita07/cyclelog/internal/cycle"
	"github.com/terraincognita07/cyclelog/internal/services"
	"golang.org/x/oauth2"
)

const (
	DefaultCalendarBaseURL = "https://www.googleapis.com/calendar/v3"
	DefaultCalendarID      = "primary"
	defaultHTTPTimeout     = 15 * time.Second
	breakerFailureLimit    = 3
	breakerOpenTimeout     = 30 * time.Second
)

// ErrCalendarUnavailable is returned while the circuit breaker is open.
var ErrCalendarUnavailable = errors.New("google calendar temporarily unavailable")

// eventNamespace scopes the deterministic event ids of this application.
var eventNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://cyclelog.app/calendar-events"))

type tokenSourceProvider interface {
	TokenSource(ctx context.Context, userID uint) (oauth2.TokenSource, error)
}

// EventClient writes all-day cycle events to Google Calendar.
type EventClient struct {
	tokens      tokenSourceProvider
	baseURL     string
	calendarID  string
	httpTimeout time.Duration
	transport   http.RoundTripper
	breaker     *gobreaker.CircuitBreaker[struct{}]
	logger      *logrus.Logger
}

func NewEventClient(tokens tokenSourceProvider, logger *logrus.Logger) *EventClient {
	if logger == nil {
		logger = logrus.New()
	}
	client := &EventClient{
		tokens:      tokens,
		baseURL:     DefaultCalendarBaseURL,
		calendarID:  DefaultCalendarID,
		httpTimeout: defaultHTTPTimeout,
		transport:   http.DefaultTransport,
		logger:      logger,
	}
	client.breaker = gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        "google-calendar",
		MaxRequests: 1,
		Timeout:     breakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= breakerFailureLimit
		},
		IsSuccessful: isBreakerSuccess,
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("circuit breaker state changed")
		},
	})
	return client
}

// WithBaseURL points the client at another Calendar API root.
func (c *EventClient) WithBaseURL(baseURL string) *EventClient {
	if baseURL != "" {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
	return c
}

func (c *EventClient) WithCalendarID(calendarID string) *EventClient {
	if calendarID != "" {
		c.calendarID = calendarID
	}
	return c
}

// EventID derives the Google event id of event for userID. Ids only use the
// base32hex alphabet Google accepts.
func EventID(userID uint, event services.CalendarEvent) string {
	name := strconv.FormatUint(uint64(userID), 10) + "/" + event.Key()
	return strings.ReplaceAll(uuid.NewSHA1(eventNamespace, []byte(name)).String(), "-", "")
}

// CreateEvents creates or updates each event. Failures are collected so one
// bad event does not hide the outcome of the others.
func (c *EventClient) CreateEvents(ctx context.Context, userID uint, events []services.CalendarEvent) error {
	if c.tokens == nil {
		return ErrOAuthNotConfigured
	}
	tokenSource, err := c.tokens.TokenSource(ctx, userID)
	if err != nil {
		return err
	}

	client := &http.Client{
		Timeout: c.httpTimeout,
		Transport: &oauthTransport{
			base:   c.transport,
			source: tokenSource,
		},
	}

	var errs []error
	for _, event := range events {
		payload := toGoogleEvent(EventID(userID, event), event)
		_, err := c.breaker.Execute(func() (struct{}, error) {
			return struct{}{}, c.upsertEvent(ctx, client, payload)
		})
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			errs = append(errs, fmt.Errorf("%s event: %w", event.Kind, ErrCalendarUnavailable))
			continue
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("%s event: %w", event.Kind, err))
			continue
		}
		c.logger.WithFields(logrus.Fields{
			"user_id":  userID,
			"event_id": payload.ID,
			"start":    payload.Start.Date,
		}).Info("calendar event written")
	}
	return errors.Join(errs...)
}

type eventDate struct {
	Date     string `json:"date"`
	TimeZone string `json:"timeZone,omitempty"`
}

type googleEvent struct {
	ID          string    `json:"id"`
	Summary     string    `json:"summary"`
	Description string    `json:"description,omitempty"`
	Start       eventDate `json:"start"`
	End         eventDate `json:"end"`
}

func toGoogleEvent(id string, event services.CalendarEvent) googleEvent {
	return googleEvent{
		ID:          id,
		Summary:     event.Summary,
		Description: event.Description,
		Start:       eventDate{Date: cycle.FormatDate(event.StartDate), TimeZone: event.TimeZone},
		End:         eventDate{Date: cycle.FormatDate(event.EndDate), TimeZone: event.TimeZone},
	}
}

// upsertEvent inserts the event and falls back to an update when the id
// already exists, so a retried sync converges on the same calendar entries.
func (c *EventClient) upsertEvent(ctx context.Context, client *http.Client, event googleEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	insertURL := fmt.Sprintf("%s/calendars/%s/events", c.baseURL, url.PathEscape(c.calendarID))
	resp, err := send(ctx, client, http.MethodPost, insertURL, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusConflict {
		updateURL := insertURL + "/" + url.PathEscape(event.ID)
		updateResp, err := send(ctx, client, http.MethodPut, updateURL, body)
		if err != nil {
			return err
		}
		defer updateResp.Body.Close()
		if updateResp.StatusCode >= 200 && updateResp.StatusCode < 300 {
			return nil
		}
		return responseError(updateResp)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	return responseError(resp)
}

func send(ctx context.Context, client *http.Client, method string, target string, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return client.Do(req)
}

// StatusError is a non-2xx answer from the Calendar API.
type StatusError struct {
	StatusCode int
	Body       string
}

func (err *StatusError) Error() string {
	return fmt.Sprintf("calendar request failed: status=%d body=%s", err.StatusCode, err.Body)
}

func responseError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
}

// isBreakerSuccess keeps client-side problems (bad request, revoked grant,
// cancelled context) from opening the breaker.
func isBreakerSuccess(err error) bool {
	if err == nil {
		return true
	}
	if errors.Is(err, context.Canceled) {
		return true
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode < 500 && statusErr.StatusCode != http.StatusTooManyRequests
	}
	var retrieveErr *oauth2.RetrieveError
	return errors.As(err, &retrieveErr)
}

type oauthTransport struct {
	base   http.RoundTripper
	source oauth2.TokenSource
}

func (t *oauthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	token, err := t.source.Token()
	if err != nil {
		return nil, err
	}
	clone := req.Clone(req.Context())
	clone.Header.Set("Authorization", "Bearer "+token.AccessToken)
	return t.base.RoundTrip(clone)
}
