package google

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/terraincognita07/cyclelog/internal/security"
)

const stateTTL = 10 * time.Minute

var ErrInvalidState = errors.New("invalid oauth state")

type stateClaims struct {
	UserID uint `json:"uid"`
	jwt.RegisteredClaims
}

// StateSigner issues and checks the OAuth state parameter. The state is a
// short-lived HS256 token naming the user that started the flow.
type StateSigner struct {
	secret []byte
	now    func() time.Time
}

func NewStateSigner(secret []byte) *StateSigner {
	return &StateSigner{secret: secret, now: time.Now}
}

func (signer *StateSigner) Issue(userID uint) (string, error) {
	nonce, err := security.Nonce()
	if err != nil {
		return "", fmt.Errorf("generate state nonce: %w", err)
	}

	now := signer.now()
	claims := stateClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        nonce,
			Subject:   "google-oauth-state",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(stateTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(signer.secret)
}

// Verify returns the user the state was issued for.
func (signer *StateSigner) Verify(raw string) (uint, error) {
	claims := &stateClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (any, error) {
		return signer.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithSubject("google-oauth-state"),
		jwt.WithTimeFunc(signer.now),
	)
	if err != nil || !token.Valid || claims.UserID == 0 {
		return 0, ErrInvalidState
	}
	return claims.UserID, nil
}
