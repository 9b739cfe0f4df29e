package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/sharath018/temple-waste-backend/internal/apperr"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"

	resetTokenPrefix = "reset_token:"
	revokedPrefix    = "revoked:"
	resetTokenTTL    = 15 * time.Minute
)

// Claims is the JWT body for both access and refresh tokens.
type Claims struct {
	Role string `json:"role"`
	Type string `json:"typ"`
	jwt.RegisteredClaims
}

type tokenIssuer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

func (ti *tokenIssuer) secret(typ string) []byte {
	if typ == tokenTypeRefresh {
		return ti.refreshSecret
	}
	return ti.accessSecret
}

func (ti *tokenIssuer) issue(userID, role, typ string) (string, time.Time, error) {
	ttl := ti.accessTTL
	if typ == tokenTypeRefresh {
		ttl = ti.refreshTTL
	}
	now := ti.now()
	exp := now.Add(ttl)
	claims := Claims{
		Role: role,
		Type: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(ti.secret(typ))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

func (ti *tokenIssuer) pair(userID, role string) (TokenPair, error) {
	access, exp, err := ti.issue(userID, role, tokenTypeAccess)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, _, err := ti.issue(userID, role, tokenTypeRefresh)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh, ExpiresAt: exp}, nil
}

// parse verifies signature, expiry and token type. Every failure is
// Unauthenticated.
func (ti *tokenIssuer) parse(raw, typ string) (*Claims, error) {
	if raw == "" {
		return nil, apperr.New(apperr.KindUnauthenticated, "missing session token")
	}
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return ti.secret(typ), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(ti.now))
	if err != nil || !token.Valid {
		return nil, apperr.Wrap(apperr.KindUnauthenticated, err, "invalid session token")
	}
	if claims.Type != typ || claims.Subject == "" || claims.ID == "" {
		return nil, apperr.New(apperr.KindUnauthenticated, "invalid session token")
	}
	return claims, nil
}

// TokenStore keeps short-lived side state: reset tokens and revoked token ids.
// Get returns an apperr NotFound error for a missing or expired key.
type TokenStore interface {
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
}

type RedisTokenStore struct {
	rdb *redis.Client
}

func NewRedisTokenStore(rdb *redis.Client) *RedisTokenStore {
	return &RedisTokenStore{rdb: rdb}
}

func (s *RedisTokenStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := s.rdb.Set(ctx, key, value, ttl).Err(); err != nil {
		return apperr.Wrap(apperr.KindTransient, err, "token store unavailable")
	}
	return nil
}

func (s *RedisTokenStore) Get(ctx context.Context, key string) (string, error) {
	v, err := s.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", apperr.NotFound("token not found")
	}
	if err != nil {
		return "", apperr.Wrap(apperr.KindTransient, err, "token store unavailable")
	}
	return v, nil
}

func (s *RedisTokenStore) Delete(ctx context.Context, key string) error {
	if err := s.rdb.Del(ctx, key).Err(); err != nil {
		return apperr.Wrap(apperr.KindTransient, err, "token store unavailable")
	}
	return nil
}

// MemoryTokenStore is the single-process fallback used when REDIS_ADDR is
// unset.
type MemoryTokenStore struct {
	mu    sync.Mutex
	items map[string]memoryItem
	now   func() time.Time
}

type memoryItem struct {
	value   string
	expires time.Time
}

func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{items: map[string]memoryItem{}, now: time.Now}
}

func (s *MemoryTokenStore) Set(_ context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key] = memoryItem{value: value, expires: s.now().Add(ttl)}
	return nil
}

func (s *MemoryTokenStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.items[key]
	if !ok || !s.now().Before(it.expires) {
		delete(s.items, key)
		return "", apperr.NotFound("token not found")
	}
	return it.value, nil
}

func (s *MemoryTokenStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, key)
	return nil
}
