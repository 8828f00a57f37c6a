package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const tokenIssuer = "SmartMenuAPI"

var ErrInvalidToken = errors.New("invalid or expired token")

type CustomClaims struct {
	UserID       uint   `json:"user_id"`
	Role         string `json:"role"`
	RestaurantID string `json:"restaurant_id"`
	jwt.RegisteredClaims
}

// TokenManager issues and validates HS256 tokens and consults the
// blacklist on every parse.
type TokenManager struct {
	secret    []byte
	ttl       time.Duration
	blacklist *TokenBlacklist
}

func NewTokenManager(secret string, ttl time.Duration, blacklist *TokenBlacklist) *TokenManager {
	if blacklist == nil {
		blacklist = NewTokenBlacklist()
	}
	return &TokenManager{secret: []byte(secret), ttl: ttl, blacklist: blacklist}
}

func (m *TokenManager) GenerateToken(userID uint, role, restaurantID string) (string, error) {
	now := time.Now()
	claims := &CustomClaims{
		UserID:       userID,
		Role:         role,
		RestaurantID: restaurantID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

func (m *TokenManager) ParseToken(tokenString string) (*CustomClaims, error) {
	if m.blacklist.Contains(tokenString) {
		return nil, ErrInvalidToken
	}

	token, err := jwt.ParseWithClaims(tokenString, &CustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(tokenIssuer))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*CustomClaims)
	if !ok || claims.UserID == 0 {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

// Revoke blacklists the token until its own expiry.
func (m *TokenManager) Revoke(tokenString string, claims *CustomClaims) {
	ttl := m.ttl
	if claims != nil && claims.ExpiresAt != nil {
		ttl = time.Until(claims.ExpiresAt.Time)
	}
	m.blacklist.Add(tokenString, ttl)
}
