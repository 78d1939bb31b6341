package google

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/terraincognita07/cyclelog/internal/services"
	"golang.org/x/oauth2"
)

type recordedRequest struct {
	Method string
	Path   string
	Auth   string
	Event  googleEvent
}

type calendarStub struct {
	mu       sync.Mutex
	requests []recordedRequest
	respond  func(r *http.Request) int
}

func (stub *calendarStub) handler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var event googleEvent
		require.NoError(t, json.NewDecoder(r.Body).Decode(&event))

		stub.mu.Lock()
		stub.requests = append(stub.requests, recordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Auth:   r.Header.Get("Authorization"),
			Event:  event,
		})
		stub.mu.Unlock()

		status := http.StatusOK
		if stub.respond != nil {
			status = stub.respond(r)
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{}`))
	})
}

func newStubbedClient(t *testing.T, stub *calendarStub) *EventClient {
	t.Helper()
	server := httptest.NewServer(stub.handler(t))
	t.Cleanup(server.Close)

	provider := stubTokenSourceProvider{token: &oauth2.Token{AccessToken: "access-token", TokenType: "Bearer"}}
	return NewEventClient(provider, quietLogger()).WithBaseURL(server.URL)
}

func cycleEvents() []services.CalendarEvent {
	return services.BuildCycleEvents(time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC), "Europe/Berlin")
}

func TestCreateEventsPostsAllDayEvents(t *testing.T) {
	stub := &calendarStub{}
	client := newStubbedClient(t, stub)

	require.NoError(t, client.CreateEvents(context.Background(), 1, cycleEvents()))

	require.Len(t, stub.requests, 2)
	pms := stub.requests[0]
	assert.Equal(t, http.MethodPost, pms.Method)
	assert.Equal(t, "/calendars/primary/events", pms.Path)
	assert.Equal(t, "Bearer access-token", pms.Auth)
	assert.Equal(t, "2024-03-07", pms.Event.Start.Date)
	assert.Equal(t, "2024-03-10", pms.Event.End.Date)
	assert.Equal(t, "Europe/Berlin", pms.Event.Start.TimeZone)

	period := stub.requests[1]
	assert.Equal(t, "🩸 Bleeding", period.Event.Summary)
	assert.Equal(t, "2024-03-10", period.Event.Start.Date)
	assert.Equal(t, "2024-03-15", period.Event.End.Date)
}

func TestCreateEventsUpdatesOnConflict(t *testing.T) {
	stub := &calendarStub{respond: func(r *http.Request) int {
		if r.Method == http.MethodPost {
			return http.StatusConflict
		}
		return http.StatusOK
	}}
	client := newStubbedClient(t, stub).WithCalendarID("family")

	events := cycleEvents()[:1]
	require.NoError(t, client.CreateEvents(context.Background(), 1, events))

	require.Len(t, stub.requests, 2)
	assert.Equal(t, http.MethodPut, stub.requests[1].Method)
	assert.Equal(t, "/calendars/family/events/"+EventID(1, events[0]), stub.requests[1].Path)
}

func TestEventIDIsStablePerUserAndKey(t *testing.T) {
	events := cycleEvents()

	first := EventID(1, events[0])
	assert.Equal(t, first, EventID(1, events[0]))
	assert.NotEqual(t, first, EventID(2, events[0]))
	assert.NotEqual(t, first, EventID(1, events[1]))
	assert.Len(t, first, 32)
	assert.False(t, strings.ContainsAny(first, "-wxyz"))
}

func TestCreateEventsReportsStatusErrors(t *testing.T) {
	stub := &calendarStub{respond: func(*http.Request) int { return http.StatusBadRequest }}
	client := newStubbedClient(t, stub)

	err := client.CreateEvents(context.Background(), 1, cycleEvents())

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusBadRequest, statusErr.StatusCode)
	assert.Len(t, stub.requests, 2)
}

func TestCreateEventsOpensBreakerAfterServerErrors(t *testing.T) {
	stub := &calendarStub{respond: func(*http.Request) int { return http.StatusBadGateway }}
	client := newStubbedClient(t, stub)

	require.Error(t, client.CreateEvents(context.Background(), 1, cycleEvents()))
	err := client.CreateEvents(context.Background(), 1, cycleEvents())

	assert.ErrorIs(t, err, ErrCalendarUnavailable)
	assert.Len(t, stub.requests, breakerFailureLimit)
}

func TestCreateEventsWithoutConnection(t *testing.T) {
	client := NewEventClient(stubTokenSourceProvider{err: services.ErrCalendarNotConnected}, quietLogger())

	err := client.CreateEvents(context.Background(), 1, cycleEvents())
	assert.ErrorIs(t, err, services.ErrCalendarNotConnected)
}
