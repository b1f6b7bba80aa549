package jwt

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/FranciscoSoares0/WatchMatch-Backend/internal/config"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for any token that fails signature, expiry or
// claim checks. Callers are not told which check failed.
var ErrInvalidToken = errors.New("invalid token")

// GenerateAccessToken creates a new short-lived access JWT for a user ID.
func GenerateAccessToken(userID uint) (string, time.Time, error) {
	return generate(userID, config.AppConfig.JWTAccessSecret, config.AppConfig.AccessTokenTTL())
}

// GenerateRefreshToken creates a new refresh JWT for a user ID, signed with
// its own secret and lifetime.
func GenerateRefreshToken(userID uint) (string, time.Time, error) {
	return generate(userID, config.AppConfig.JWTRefreshSecret, config.AppConfig.RefreshTokenTTL())
}

// ParseAccessToken validates an access token and returns the user ID it carries.
func ParseAccessToken(tokenString string) (uint, error) {
	return parse(tokenString, config.AppConfig.JWTAccessSecret)
}

// ParseRefreshToken validates a refresh token and returns the user ID it carries.
func ParseRefreshToken(tokenString string) (uint, error) {
	return parse(tokenString, config.AppConfig.JWTRefreshSecret)
}

// HashRefreshToken digests a refresh token for at-rest storage. SHA-256
// rather than bcrypt: the token already carries full entropy, and bcrypt
// rejects inputs longer than 72 bytes.
func HashRefreshToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func generate(userID uint, secret string, ttl time.Duration) (string, time.Time, error) {
	expiresAt := time.Now().Add(ttl)

	claims := jwt.MapClaims{
		"sub": userID,
		"exp": expiresAt.Unix(),
		"iat": time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

func parse(tokenString, secret string) (uint, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return 0, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, ErrInvalidToken
	}

	userIDFloat, ok := claims["sub"].(float64)
	if !ok {
		return 0, ErrInvalidToken
	}

	return uint(userIDFloat), nil
}
