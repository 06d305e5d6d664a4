// Package auth verifies the bearer JWT a proposer attaches to a
// transaction or block submission: Component C of the engine's
// request-validation core.
package auth

import (
	"errors"
	"strings"

	"github.com/golang-jwt/jwt/v4"

	"github.com/gradecoin/network/internal/apierr"
	"github.com/gradecoin/network/pkg/models"
)

const bearerPrefix = "Bearer "

// Authenticate verifies rawHeader ("Bearer <jwt>") against the proposer's
// registered RSA public key (PEM) and returns the decoded Claims. A header
// without the "Bearer " prefix is MissingAuthorization; every other failure
// mode maps to one of the distinct JWT error kinds.
func Authenticate(rawHeader string, proposerPublicKeyPEM string) (*models.Claims, *apierr.Error) {
	if !strings.HasPrefix(rawHeader, bearerPrefix) {
		return nil, apierr.New(apierr.MissingAuthorization)
	}
	rawToken := strings.TrimPrefix(rawHeader, bearerPrefix)

	decodingKey, err := jwt.ParseRSAPublicKeyFromPEM([]byte(proposerPublicKeyPEM))
	if err != nil {
		return nil, apierr.New(apierr.JwtKeyInvalid)
	}

	claims := &models.Claims{}
	_, err = jwt.ParseWithClaims(rawToken, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return decodingKey, nil
	}, jwt.WithValidMethods([]string{"RS256"}))

	if err != nil {
		var validationErr *jwt.ValidationError
		if errors.As(err, &validationErr) {
			switch {
			case validationErr.Errors&jwt.ValidationErrorExpired != 0:
				return nil, apierr.New(apierr.JwtExpired)
			case validationErr.Errors&jwt.ValidationErrorMalformed != 0:
				return nil, apierr.New(apierr.JwtInvalid)
			}
		}
		return nil, apierr.New(apierr.JwtOther)
	}

	return claims, nil
}
