// Package auth issues and checks the bearer tokens handed to enrolled devices.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/trainingportal/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the device id in the registered subject.
type Claims struct {
	jwt.RegisteredClaims
}

func GenerateToken(deviceID string, secretKey []byte, validityDuration time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   deviceID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validityDuration)),
		},
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// GetDeviceIDFromToken returns common.ErrTokenExpired for expired tokens and
// an error matching common.ErrInvalidToken for anything else that fails.
func GetDeviceIDFromToken(tokenString string, secretKey []byte) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", common.ErrTokenExpired
		}
		return "", fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	if !token.Valid || claims.Subject == "" {
		return "", common.ErrInvalidToken
	}

	return claims.Subject, nil
}
