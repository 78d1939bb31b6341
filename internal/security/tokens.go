package security

import (
	"crypto/rand"
	"errors"
	"math/big"
	"strings"
)

const (
	temporaryPasswordAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz23456789"
	nonceAlphabet             = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	minTemporaryPasswordLen   = 8
	nonceLength               = 32
	maxPasswordAttempts       = 64
)

var (
	errPasswordGeneration = errors.New("could not generate a mixed-class password")
	errInvalidLength      = errors.New("length must be positive")
)

// TemporaryPassword returns a random password without look-alike characters
// that contains an upper-case letter, a lower-case letter and a digit.
func TemporaryPassword(length int) (string, error) {
	if length < minTemporaryPasswordLen {
		length = minTemporaryPasswordLen
	}

	for attempt := 0; attempt < maxPasswordAttempts; attempt++ {
		candidate, err := randomString(length, temporaryPasswordAlphabet)
		if err != nil {
			return "", err
		}
		if hasMixedClasses(candidate) {
			return candidate, nil
		}
	}
	return "", errPasswordGeneration
}

// Nonce returns an alphanumeric value for one-time use, such as an OAuth state.
func Nonce() (string, error) {
	return randomString(nonceLength, nonceAlphabet)
}

func hasMixedClasses(value string) bool {
	return strings.ContainsAny(value, "ABCDEFGHJKLMNPQRSTUVWXYZ") &&
		strings.ContainsAny(value, "abcdefghijkmnopqrstuvwxyz") &&
		strings.ContainsAny(value, "23456789")
}

// randomString draws length characters uniformly from alphabet using crypto/rand.
func randomString(length int, alphabet string) (string, error) {
	if length <= 0 {
		return "", errInvalidLength
	}

	size := big.NewInt(int64(len(alphabet)))
	var builder strings.Builder
	builder.Grow(length)
	for builder.Len() < length {
		index, err := rand.Int(rand.Reader, size)
		if err != nil {
			return "", err
		}
		builder.WriteByte(alphabet[index.Int64()])
	}
	return builder.String(), nil
}
