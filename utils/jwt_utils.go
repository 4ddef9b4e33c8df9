package utils

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"dwellmetrics/api/models"
)

const tokenIssuer = "dwellmetrics-api"

// Claims embeds jwt.RegisteredClaims for the standard fields.
type Claims struct {
	UserID int    `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and validates HS256 session tokens.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret []byte, ttl time.Duration) *TokenIssuer {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &TokenIssuer{secret: secret, ttl: ttl, now: time.Now}
}

// TTL is the lifetime of issued tokens.
func (t *TokenIssuer) TTL() time.Duration { return t.ttl }

// GenerateJWT generates a new JWT token for a given user.
func (t *TokenIssuer) GenerateJWT(user *models.User) (string, error) {
	if len(t.secret) == 0 {
		return "", errors.New("jwt secret is not configured")
	}
	now := t.now()
	role := user.Role
	if role == "" {
		role = models.RoleUser
	}

	claims := &Claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
			Subject:   strconv.Itoa(user.ID),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// ValidateJWT parses and validates a JWT token string.
func (t *TokenIssuer) ValidateJWT(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.secret, nil
	}, jwt.WithIssuer(tokenIssuer), jwt.WithTimeFunc(t.now))
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("token is not valid")
	}
	return claims, nil
}
