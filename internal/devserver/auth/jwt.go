// Package auth issues and verifies the reference server's session tokens
// and hashes passwords.
package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/dmitrijs2005/chirp/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the registered claims plus the login session the token
// belongs to. Subject holds the user id.
type Claims struct {
	jwt.RegisteredClaims
	SessionID string `json:"sid"`
}

// GenerateToken signs an HS256 token for userID bound to sessionID.
func GenerateToken(userID int64, sessionID string, secretKey []byte, validityDuration time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validityDuration)),
		},
		SessionID: sessionID,
	})
	return token.SignedString(secretKey)
}

// ParseToken verifies tokenString and returns the user and session ids.
// Every failure matches common.ErrInvalidToken; expiry additionally matches
// jwt.ErrTokenExpired.
func ParseToken(tokenString string, secretKey []byte) (int64, string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return 0, "", errors.Join(common.ErrInvalidToken, err)
	}
	if !token.Valid {
		return 0, "", common.ErrInvalidToken
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0, "", errors.Join(common.ErrInvalidToken, err)
	}
	return userID, claims.SessionID, nil
}
