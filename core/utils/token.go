package utils

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"cfp-api/core/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type TokenClaims struct {
	UserID   uuid.UUID `json:"user_id"`
	Email    *string   `json:"email,omitempty"`
	Username *string   `json:"username,omitempty"`
	Scope    string    `json:"scope"`
	jwt.RegisteredClaims
}

// DisplayName is the name shown next to reviews and slots.
func (c *TokenClaims) DisplayName() string {
	if c.Username != nil && *c.Username != "" {
		return *c.Username
	}
	if c.Email != nil {
		return *c.Email
	}
	return c.UserID.String()
}

func jwtSettings() (config.JWTConfig, error) {
	cfg, ok := config.GetSafe()
	if !ok {
		return config.JWTConfig{}, errors.New("config not initialized")
	}
	if cfg.JWT.Secret == "" {
		return config.JWTConfig{}, errors.New("jwt secret is not configured")
	}
	return cfg.JWT, nil
}

func GenerateToken(userID uuid.UUID, email, username *string, scope string) (string, error) {
	settings, err := jwtSettings()
	if err != nil {
		return "", err
	}

	now := time.Now()
	claims := TokenClaims{
		UserID:   userID,
		Email:    email,
		Username: username,
		Scope:    scope,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    settings.Issuer,
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(settings.AccessTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(settings.Secret))
}

func ValidateAndParseToken(tokenString string) (*TokenClaims, error) {
	settings, err := jwtSettings()
	if err != nil {
		return nil, err
	}

	claims := &TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(settings.Secret), nil
	}, jwt.WithIssuer(settings.Issuer))
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// GetTokenFromHeader strips the Bearer prefix from an Authorization header.
func GetTokenFromHeader(header string) (string, error) {
	if header == "" {
		return "", errors.New("missing authorization header")
	}
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || strings.TrimSpace(token) == "" {
		return "", errors.New("invalid authorization header format")
	}
	return strings.TrimSpace(token), nil
}
