package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

var ErrInvalidToken = errors.New("invalid token")

// IssuePlayerToken signs an HS256 token that lets its bearer drive the home
// side of one match.
func IssuePlayerToken(secret, gameToken string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", errors.New("jwt secret not configured")
	}
	exp := time.Now().Add(ttl)
	claims := jwt.MapClaims{
		"game_token": gameToken,
		"role":       "player",
		"iat":        time.Now().Unix(),
		"exp":        exp.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParsePlayerToken validates a player token and returns the match it was
// issued for.
func ParsePlayerToken(secret, tokenString string) (string, error) {
	if secret == "" || tokenString == "" {
		return "", ErrInvalidToken
	}
	parsed, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || !parsed.Valid {
		return "", ErrInvalidToken
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}
	if role, _ := claims["role"].(string); role != "player" {
		return "", ErrInvalidToken
	}
	gameToken, ok := claims["game_token"].(string)
	if !ok || gameToken == "" {
		return "", ErrInvalidToken
	}
	return gameToken, nil
}
