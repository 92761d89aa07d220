package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"chirp/apperr"
)

// TokenIssuer issues and verifies the opaque credentials handed to clients.
// The rest of the system only ever sees the user key it resolves to.
type TokenIssuer interface {
	Issue(userID string) (string, error)
	Verify(token string) (string, error)
}

type Claims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// JWTIssuer signs HS256 tokens carrying the user key.
type JWTIssuer struct {
	secret []byte
	ttl    time.Duration
}

func NewJWTIssuer(secret string, ttl time.Duration) *JWTIssuer {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &JWTIssuer{secret: []byte(secret), ttl: ttl}
}

func (j *JWTIssuer) Issue(userID string) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(j.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(j.secret)
	if err != nil {
		return "", apperr.Wrap(apperr.Transient, "sign token", err)
	}
	return signed, nil
}

func (j *JWTIssuer) Verify(tokenString string) (string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.secret, nil
	})
	if err != nil || !token.Valid {
		return "", apperr.New(apperr.Unauthenticated, "invalid token")
	}
	return claims.UserID, nil
}
