package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ==========================
// Token service
// ==========================

// Verification failures. The HTTP boundary collapses all of these into one
// generic 401 so clients cannot tell which check failed.
var (
	ErrMalformed        = errors.New("token is malformed")
	ErrInvalidSignature = errors.New("token signature is invalid")
	ErrExpired          = errors.New("token is expired")
)

// Service issues and verifies signed bearer tokens. Tokens are stateless:
// verification needs only the secret and the clock, so there is no shared
// mutable state and no server-side revocation.
type Service struct {
	secret []byte
	expiry time.Duration
}

func NewService(secret []byte, expiry time.Duration) *Service {
	return &Service{secret: secret, expiry: expiry}
}

// Issue returns a signed HS256 token whose subject is the user id and whose
// expiry is now + the configured duration.
func (s *Service) Issue(userID int64) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(userID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify checks signature and expiry and returns the subject user id.
// Failures map to ErrMalformed, ErrInvalidSignature, or ErrExpired.
func (s *Service) Verify(tokenString string) (int64, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return 0, ErrExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return 0, ErrInvalidSignature
		default:
			return 0, ErrMalformed
		}
	}
	if !token.Valid {
		return 0, ErrMalformed
	}

	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0, ErrMalformed
	}
	return id, nil
}
