package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/pratik-mahalle/linkboost/internal/domain/user"
)

// Claims is the bearer token payload issued by the auth service
type Claims struct {
	UserID string                 `json:"uid"`
	Email  string                 `json:"email"`
	Tier   user.SubscriptionLevel `json:"tier"`
	jwt.RegisteredClaims
}

// MintToken signs an HS256 access token. The API only verifies tokens; minting
// is used by tests and local tooling.
func MintToken(userID, email string, tier user.SubscriptionLevel, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: userID,
		Email:  email,
		Tier:   tier,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	})
	return token.SignedString([]byte(secret))
}

// ParseClaims verifies the signature and expiry and returns the claims
func ParseClaims(tokenStr, secret string) (*Claims, error) {
	t, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	c, ok := t.Claims.(*Claims)
	if !ok || !t.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	if c.UserID == "" {
		c.UserID = c.Subject
	}
	if c.UserID == "" {
		return nil, errors.New("token has no user id")
	}
	if c.Tier == "" {
		c.Tier = user.LevelFree
	}
	return c, nil
}
