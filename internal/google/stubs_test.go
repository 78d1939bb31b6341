package google

import (
	"context"
	"io"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/terraincognita07/cyclelog/internal/models"
	"golang.org/x/oauth2"
)

type memoryTokenRepo struct {
	mu     sync.Mutex
	tokens map[uint]models.GoogleToken
	saves  int
}

func newMemoryTokenRepo() *memoryTokenRepo {
	return &memoryTokenRepo{tokens: map[uint]models.GoogleToken{}}
}

func (repo *memoryTokenRepo) FindByUser(userID uint) (models.GoogleToken, bool, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	token, ok := repo.tokens[userID]
	return token, ok, nil
}

func (repo *memoryTokenRepo) Save(token *models.GoogleToken) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	repo.tokens[token.UserID] = *token
	repo.saves++
	return nil
}

func (repo *memoryTokenRepo) Delete(userID uint) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	delete(repo.tokens, userID)
	return nil
}

type stubTokenSourceProvider struct {
	token *oauth2.Token
	err   error
}

func (provider stubTokenSourceProvider) TokenSource(context.Context, uint) (oauth2.TokenSource, error) {
	if provider.err != nil {
		return nil, provider.err
	}
	return oauth2.StaticTokenSource(provider.token), nil
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
