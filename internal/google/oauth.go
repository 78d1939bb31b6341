package google

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/terraincognita07/cyclelog/internal/models"
	"github.com/terraincognita07/cyclelog/internal/services"
	"golang.org/x/oauth2"
)

const (
	CalendarScope   = "https://www.googleapis.com/auth/calendar"
	DefaultAuthURL  = "https://accounts.google.com/o/oauth2/v2/auth"
	DefaultTokenURL = "https://oauth2.googleapis.com/token"
)

var (
	ErrNoRefreshToken     = errors.New("no refresh token received from google")
	ErrOAuthNotConfigured = errors.New("google oauth is not configured")
)

type TokenRepository interface {
	FindByUser(userID uint) (models.GoogleToken, bool, error)
	Save(token *models.GoogleToken) error
	Delete(userID uint) error
}

type OAuthSettings struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	AuthURL      string
	TokenURL     string
}

// OAuthService drives the consent flow and hands out token sources backed by
// the stored refresh token.
type OAuthService struct {
	config *oauth2.Config
	tokens TokenRepository
	logger *logrus.Logger
	now    func() time.Time
}

func NewOAuthService(settings OAuthSettings, tokens TokenRepository, logger *logrus.Logger) (*OAuthService, error) {
	if settings.ClientID == "" || settings.ClientSecret == "" || settings.RedirectURL == "" {
		return nil, ErrOAuthNotConfigured
	}
	if tokens == nil {
		return nil, errors.New("google token repository is required")
	}
	if settings.AuthURL == "" {
		settings.AuthURL = DefaultAuthURL
	}
	if settings.TokenURL == "" {
		settings.TokenURL = DefaultTokenURL
	}
	if logger == nil {
		logger = logrus.New()
	}

	return &OAuthService{
		config: &oauth2.Config{
			ClientID:     settings.ClientID,
			ClientSecret: settings.ClientSecret,
			Endpoint: oauth2.Endpoint{
				AuthURL:  settings.AuthURL,
				TokenURL: settings.TokenURL,
			},
			RedirectURL: settings.RedirectURL,
			Scopes:      []string{CalendarScope},
		},
		tokens: tokens,
		logger: logger,
		now:    time.Now,
	}, nil
}

// AuthURL asks for offline access and forces the consent screen so Google
// always returns a refresh token.
func (s *OAuthService) AuthURL(state string) string {
	return s.config.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// ExchangeAndStore trades the callback code for tokens and persists them.
func (s *OAuthService) ExchangeAndStore(ctx context.Context, userID uint, code string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return errors.New("authorization code is required")
	}

	token, err := s.config.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("exchange authorization code: %w", err)
	}
	if token.RefreshToken == "" || token.AccessToken == "" {
		return ErrNoRefreshToken
	}

	if err := s.tokens.Save(toModel(userID, token, s.now())); err != nil {
		return fmt.Errorf("store google tokens: %w", err)
	}
	s.logger.WithField("user_id", userID).Info("google calendar connected")
	return nil
}

func (s *OAuthService) Connected(userID uint) (bool, error) {
	_, found, err := s.tokens.FindByUser(userID)
	if err != nil {
		return false, fmt.Errorf("load google tokens: %w", err)
	}
	return found, nil
}

// Disconnect forgets the stored tokens. Events already written stay in the calendar.
func (s *OAuthService) Disconnect(userID uint) error {
	if err := s.tokens.Delete(userID); err != nil {
		return fmt.Errorf("delete google tokens: %w", err)
	}
	s.logger.WithField("user_id", userID).Info("google calendar disconnected")
	return nil
}

// TokenSource refreshes the access token when it expires and writes the
// refreshed token back to storage.
func (s *OAuthService) TokenSource(ctx context.Context, userID uint) (oauth2.TokenSource, error) {
	stored, found, err := s.tokens.FindByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("load google tokens: %w", err)
	}
	if !found {
		return nil, services.ErrCalendarNotConnected
	}

	token := fromModel(stored)
	return &persistingTokenSource{
		base:    s.config.TokenSource(ctx, token),
		userID:  userID,
		last:    token.AccessToken,
		refresh: token.RefreshToken,
		service: s,
	}, nil
}

type persistingTokenSource struct {
	mu      sync.Mutex
	base    oauth2.TokenSource
	userID  uint
	last    string
	refresh string
	service *OAuthService
}

func (source *persistingTokenSource) Token() (*oauth2.Token, error) {
	token, err := source.base.Token()
	if err != nil {
		return nil, err
	}

	source.mu.Lock()
	defer source.mu.Unlock()
	if token.AccessToken == source.last {
		return token, nil
	}
	source.last = token.AccessToken

	stored := toModel(source.userID, token, source.service.now())
	if stored.RefreshToken == "" {
		stored.RefreshToken = source.refresh
	}
	if err := source.service.tokens.Save(stored); err != nil {
		source.service.logger.WithError(err).WithField("user_id", source.userID).Warn("persist refreshed google token failed")
	}
	return token, nil
}

func toModel(userID uint, token *oauth2.Token, now time.Time) *models.GoogleToken {
	stored := &models.GoogleToken{
		UserID:       userID,
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		TokenType:    token.TokenType,
		UpdatedAt:    now.UTC(),
	}
	if !token.Expiry.IsZero() {
		expiry := token.Expiry.UTC()
		stored.Expiry = &expiry
	}
	return stored
}

func fromModel(stored models.GoogleToken) *oauth2.Token {
	token := &oauth2.Token{
		AccessToken:  stored.AccessToken,
		RefreshToken: stored.RefreshToken,
		TokenType:    stored.TokenType,
	}
	if stored.Expiry != nil {
		token.Expiry = *stored.Expiry
	}
	return token
}
