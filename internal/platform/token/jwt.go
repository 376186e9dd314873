// Package token issues and validates the caller-facing JWT credentials.
// The subject claim names the calling system; the engine never infers the
// caller from anything else.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"registrar/pkg/domain"
	dErrors "registrar/pkg/domain-errors"
)

// Claims are the claims carried by a caller access token.
type Claims struct {
	jwt.RegisteredClaims
}

// Service signs and validates caller tokens with an HMAC key.
type Service struct {
	signingKey []byte
	issuer     string
	audience   string
}

// NewService constructs a token service.
func NewService(signingKey, issuer, audience string) *Service {
	return &Service{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		audience:   audience,
	}
}

// Generate issues a token for the given caller. Used by provisioning tooling
// and tests; production callers receive tokens out of band.
func (s *Service) Generate(callerID domain.CallerID, expiresIn time.Duration) (string, error) {
	now := time.Now()
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   callerID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.issuer,
			Audience:  []string{s.audience},
		},
	})
	return t.SignedString(s.signingKey)
}

// ValidateCaller parses and validates a token and returns the caller it
// names. All failures map to CodeUnauthorized.
func (s *Service) ValidateCaller(tokenString string) (domain.CallerID, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", dErrors.New(dErrors.CodeUnauthorized, "token has expired")
		}
		return "", dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	if !parsed.Valid {
		return "", dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok {
		return "", dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	callerID, err := domain.ParseCallerID(claims.Subject)
	if err != nil {
		return "", dErrors.New(dErrors.CodeUnauthorized, "token subject is not a valid caller")
	}
	return callerID, nil
}
