package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	AccessTTL  = 15 * time.Minute
	RefreshTTL = 7 * 24 * time.Hour
)

var ErrInvalidToken = errors.New("invalid token")

type AccessClaims struct {
	jwt.RegisteredClaims
}

type RefreshClaims struct {
	Typ string `json:"typ"`
	jwt.RegisteredClaims
}

// TokenService signs and verifies the bearer tokens. The identity claim is
// the username. Access and refresh tokens are signed with separate secrets
// and refresh tokens additionally carry the "typ" class flag.
type TokenService struct {
	JWTSecret     []byte
	RefreshSecret []byte
}

func (t *TokenService) SignAccessToken(username string) (string, error) {
	claims := AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(AccessTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.JWTSecret)
}

func (t *TokenService) SignRefreshToken(username string) (string, error) {
	claims := RefreshClaims{
		Typ: "refresh",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(RefreshTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.RefreshSecret)
}

func (t *TokenService) ParseAccessToken(raw string) (*AccessClaims, error) {
	var claims AccessClaims
	tkn, err := jwt.ParseWithClaims(raw, &claims, func(tk *jwt.Token) (any, error) {
		if tk.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected sign method")
		}
		return t.JWTSecret, nil
	})
	if err != nil || !tkn.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}

func (t *TokenService) ParseRefreshToken(raw string) (*RefreshClaims, error) {
	var claims RefreshClaims
	tkn, err := jwt.ParseWithClaims(raw, &claims, func(tk *jwt.Token) (any, error) {
		if tk.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected sign method")
		}
		return t.RefreshSecret, nil
	})
	if err != nil || !tkn.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Typ != "refresh" || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}
