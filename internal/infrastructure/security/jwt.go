// Package security provides JWT token utilities
package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/fundroad/fundroad-go/internal/domain/user"
)

var ErrInvalidToken = errors.New("invalid token")

// ValidateJWT validates an HS256 token and returns its claims. Tokens signed
// with any other algorithm are rejected.
func ValidateJWT(tokenString, jwtSecret string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(jwtSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, ErrInvalidToken
}

// GetSessionFromClaims extracts the authenticated session from JWT claims.
func GetSessionFromClaims(claims jwt.MapClaims) (*user.Session, error) {
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	email, _ := claims["email"].(string)

	session := &user.Session{UserID: sub, Email: email}
	if exp, ok := claims["exp"].(float64); ok {
		session.ExpiresAt = time.Unix(int64(exp), 0).UTC()
	}
	return session, nil
}

// GenerateSessionToken creates a JWT token for an authenticated user.
func GenerateSessionToken(u *user.User, jwtSecret string, ttl time.Duration) (string, time.Time, error) {
	if jwtSecret == "" {
		return "", time.Time{}, errors.New("jwt secret is not configured")
	}
	now := time.Now().UTC()
	expiresAt := now.Add(ttl)

	claims := jwt.MapClaims{
		"sub":   u.ID,
		"email": u.Email,
		"iat":   now.Unix(),
		"exp":   expiresAt.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	result, err := token.SignedString([]byte(jwtSecret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session token: %w", err)
	}
	return result, time.Unix(expiresAt.Unix(), 0).UTC(), nil
}
