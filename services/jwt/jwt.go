package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"
)

const (
	AccessTokenValidity  = time.Hour * 24
	RefreshTokenValidity = time.Hour * 24 * 7
)

// GenerateTokenPair returns a signed access and refresh token for a user.
func GenerateTokenPair(email string, secret string, userID uint) (string, string, error) {
	if secret == "" {
		return "", "", errors.New("JWT secret key is missing")
	}

	accessClaims := jwt.MapClaims{
		"id":    userID,
		"email": email,
		"type":  "access",
		"exp":   time.Now().Add(AccessTokenValidity).Unix(),
	}
	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims).SignedString([]byte(secret))
	if err != nil {
		return "", "", err
	}

	refreshClaims := jwt.MapClaims{
		"id":    userID,
		"email": email,
		"type":  "refresh",
		"exp":   time.Now().Add(RefreshTokenValidity).Unix(),
	}
	refreshToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, refreshClaims).SignedString([]byte(secret))
	if err != nil {
		return "", "", err
	}

	return accessToken, refreshToken, nil
}

// ValidateAndGetClaims parses a signed token and returns its claims.
func ValidateAndGetClaims(tokenString string, secret string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// GeneratePasswordResetToken issues a short-lived token embedding the
// user id, valid for one hour.
func GeneratePasswordResetToken(userID uint, secret string) (string, error) {
	if secret == "" {
		return "", errors.New("JWT secret key is missing")
	}

	resetTokenClaims := jwt.MapClaims{
		"id":   userID,
		"exp":  time.Now().Add(time.Hour * 1).Unix(),
		"type": "password_reset_token",
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, resetTokenClaims).SignedString([]byte(secret))
}

// GenerateState issues the OAuth state parameter as a short-lived token.
func GenerateState(secret string) (string, error) {
	claims := jwt.MapClaims{
		"exp":  time.Now().Add(time.Minute * 10).Unix(),
		"type": "oauth_state",
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// VerifyState checks the OAuth state parameter signature and expiry.
func VerifyState(state string, secret string) bool {
	token, err := jwt.Parse(state, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	return err == nil && token.Valid
}
