package auth

import (
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const DefaultTokenTTL = 30 * 24 * time.Hour

var (
	ErrNotInitialized = errors.New("auth: token secret not initialized")
	ErrInvalidToken   = errors.New("invalid token")
)

var (
	mu     sync.RWMutex
	secret []byte
	ttl    = DefaultTokenTTL
)

type Claims struct {
	UserID int64 `json:"uid"`
	jwt.RegisteredClaims
}

// Init sets the HMAC secret and token lifetime used by GenerateToken and
// ValidateToken. A non-positive lifetime keeps the default.
func Init(jwtSecret string, tokenTTL time.Duration) {
	mu.Lock()
	defer mu.Unlock()
	secret = []byte(jwtSecret)
	if tokenTTL > 0 {
		ttl = tokenTTL
	}
}

func GenerateToken(userID int64) (string, error) {
	mu.RLock()
	key, lifetime := secret, ttl
	mu.RUnlock()
	if len(key) == 0 {
		return "", ErrNotInitialized
	}

	now := time.Now()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(lifetime)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
}

func ValidateToken(tokenStr string) (*Claims, error) {
	mu.RLock()
	key := secret
	mu.RUnlock()
	if len(key) == 0 {
		return nil, ErrNotInitialized
	}

	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		return key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, errors.Join(ErrInvalidToken, err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID <= 0 {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
