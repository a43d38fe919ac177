package authsvc

import (
	"crypto/rand"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type TokenIssuer struct {
	key    []byte
	issuer string
	ttl    time.Duration
}

// NewTokenIssuer signs with the given HS256 secret; an empty secret gets
// a random per-process key, which invalidates tokens on restart — fine
// for development, set JWT_SECRET for anything else.
func NewTokenIssuer(secret, issuer string, ttl time.Duration) *TokenIssuer {
	key := []byte(secret)
	if len(key) == 0 {
		key = make([]byte, 32)
		_, _ = rand.Read(key)
	}
	return &TokenIssuer{key: key, issuer: issuer, ttl: ttl}
}

func (t *TokenIssuer) Issue(userID string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": userID,
		"iss": t.issuer,
		"iat": now.Unix(),
		"exp": now.Add(t.ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.key)
}

// Parse returns the subject (user id) of a valid token.
func (t *TokenIssuer) Parse(tok string) (string, error) {
	if tok == "" {
		return "", errors.New("missing token")
	}
	parsed, err := jwt.Parse(tok, func(*jwt.Token) (interface{}, error) {
		return t.key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid {
		return "", errors.New("invalid token")
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("bad claims")
	}
	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", errors.New("bad claims")
	}
	return sub, nil
}
