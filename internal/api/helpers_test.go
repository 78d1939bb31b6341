package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/terraincognita07/cyclelog/internal/cycle"
	"github.com/terraincognita07/cyclelog/internal/db"
	"github.com/terraincognita07/cyclelog/internal/models"
	"github.com/terraincognita07/cyclelog/internal/services"
	"golang.org/x/crypto/bcrypt"
)

const (
	testSecretKey = "0123456789abcdef0123456789abcdef"
	testPassword  = "StrongPass1"
)

var testNow = time.Date(2024, time.March, 10, 9, 0, 0, 0, time.UTC)

type recordingCalendar struct {
	mu     sync.Mutex
	users  []uint
	events []services.CalendarEvent
}

func (calendar *recordingCalendar) CreateEvents(_ context.Context, userID uint, events []services.CalendarEvent) error {
	calendar.mu.Lock()
	defer calendar.mu.Unlock()
	calendar.users = append(calendar.users, userID)
	calendar.events = append(calendar.events, events...)
	return nil
}

type stubConnector struct {
	exchangedUser uint
	exchangedCode string
	exchangeErr   error
	connected     bool
}

func (connector *stubConnector) AuthURL(state string) string {
	return "https://accounts.example.test/auth?state=" + state
}

func (connector *stubConnector) ExchangeAndStore(_ context.Context, userID uint, code string) error {
	connector.exchangedUser = userID
	connector.exchangedCode = code
	return connector.exchangeErr
}

func (connector *stubConnector) Connected(uint) (bool, error) {
	return connector.connected, nil
}

func (connector *stubConnector) Disconnect(uint) error {
	connector.connected = false
	return nil
}

type testEnv struct {
	app       *fiber.App
	handler   *Handler
	repos     *db.Repositories
	calendar  *recordingCalendar
	connector *stubConnector
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	database, err := db.OpenSQLite(filepath.Join(t.TempDir(), "cyclelog-api.db"), nil)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := database.DB()
	if err != nil {
		t.Fatalf("open sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	repos := db.NewRepositories(database)
	calendar := &recordingCalendar{}
	connector := &stubConnector{}
	cycles := services.NewCycleService(repos.CycleEntries, time.UTC)

	handler, err := NewHandler(Options{
		Auth:      services.NewAuthService(repos.Users),
		Cycles:    cycles,
		Periods:   services.NewPeriodLogService(cycles, calendar, time.Second, logger),
		Calendar:  connector,
		SecretKey: testSecretKey,
		Logger:    logger,
	})
	if err != nil {
		t.Fatalf("init handler: %v", err)
	}
	handler.now = func() time.Time { return testNow }

	app := fiber.New()
	RegisterRoutes(app, handler)
	return &testEnv{app: app, handler: handler, repos: repos, calendar: calendar, connector: connector}
}

func (env *testEnv) createUser(t *testing.T, email string, mustChangePassword bool) models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := models.User{Email: email, PasswordHash: string(hash)}
	if err := env.repos.Users.Create(&user); err != nil {
		t.Fatalf("create user: %v", err)
	}
	if mustChangePassword {
		if err := env.repos.Users.UpdatePassword(user.ID, string(hash), true); err != nil {
			t.Fatalf("flag password change: %v", err)
		}
		user.MustChangePassword = true
	}
	return user
}

func (env *testEnv) seedStart(t *testing.T, userID uint, date string) {
	t.Helper()

	day, err := cycle.ParseDate(date)
	if err != nil {
		t.Fatalf("parse %q: %v", date, err)
	}
	entry := models.CycleEntry{UserID: userID, Date: day, CycleDay: 1, IsPeriod: true}
	if err := env.repos.CycleEntries.Create(&entry); err != nil {
		t.Fatalf("seed entry %s: %v", date, err)
	}
}

func (env *testEnv) login(t *testing.T, email string, password string) (*http.Response, *http.Cookie) {
	t.Helper()

	body := `{"email":"` + email + `","password":"` + password + `"}`
	response := env.do(t, http.MethodPost, "/api/auth/login", body, nil)
	return response, responseCookie(response.Cookies(), authCookieName)
}

func (env *testEnv) do(t *testing.T, method string, path string, body string, cookie *http.Cookie) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	request := httptest.NewRequest(method, path, reader)
	if body != "" {
		request.Header.Set("Content-Type", "application/json")
	}
	if cookie != nil {
		request.Header.Set("Cookie", cookie.Name+"="+cookie.Value)
	}

	response, err := env.app.Test(request, -1)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	t.Cleanup(func() {
		_ = response.Body.Close()
	})
	return response
}

func decodeJSON(t *testing.T, response *http.Response) map[string]any {
	t.Helper()

	payload := map[string]any{}
	if err := json.NewDecoder(response.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response body: %v", err)
	}
	return payload
}

func responseCookie(cookies []*http.Cookie, name string) *http.Cookie {
	for _, cookie := range cookies {
		if cookie != nil && cookie.Name == name {
			return cookie
		}
	}
	return nil
}

func assertStatus(t *testing.T, response *http.Response, expected int) {
	t.Helper()
	if response.StatusCode != expected {
		body, _ := io.ReadAll(response.Body)
		t.Fatalf("expected status %d, got %d: %s", expected, response.StatusCode, body)
	}
}
