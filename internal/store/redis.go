package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"job-portal/internal/domain"
)

// redisKV es el subconjunto de *redis.Client que usa el store.
type redisKV interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	MSet(ctx context.Context, values ...interface{}) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	HGet(ctx context.Context, key, field string) *redis.StringCmd
	HSet(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
}

type redisStore struct {
	client  redisKV
	prefix  string
	timeout time.Duration
}

// NewRedisStore comparte el perfil de sesion entre replicas del portal.
func NewRedisStore(client *redis.Client, namespace string) CredentialStore {
	if client == nil {
		return nil
	}
	return newRedisStore(client, namespace)
}

func newRedisStore(client redisKV, namespace string) *redisStore {
	namespace = strings.TrimSpace(namespace)
	if namespace == "" {
		namespace = "default"
	}
	return &redisStore{
		client:  client,
		prefix:  "portal:session:" + namespace + ":",
		timeout: 500 * time.Millisecond,
	}
}

func (s *redisStore) tokenKey() string   { return s.prefix + "token" }
func (s *redisStore) userKey() string    { return s.prefix + "user" }
func (s *redisStore) companyKey() string { return s.prefix + "company" }

func (s *redisStore) Load(ctx context.Context) (domain.Credentials, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	token, err := s.client.Get(ctx, s.tokenKey()).Result()
	if errors.Is(err, redis.Nil) {
		return domain.Credentials{}, false, nil
	}
	if err != nil {
		return domain.Credentials{}, false, err
	}
	raw, err := s.client.Get(ctx, s.userKey()).Result()
	if errors.Is(err, redis.Nil) {
		return domain.Credentials{}, false, nil
	}
	if err != nil {
		return domain.Credentials{}, false, err
	}
	var user domain.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return domain.Credentials{}, false, fmt.Errorf("decode cached user: %w", err)
	}
	return domain.Credentials{Token: token, User: user}, true, nil
}

func (s *redisStore) Save(ctx context.Context, token string, user domain.User) error {
	if strings.TrimSpace(token) == "" {
		return ErrEmptyToken
	}
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode cached user: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	// Token y usuario se escriben en un solo MSET para que nunca queden desparejados.
	return s.client.MSet(ctx, s.tokenKey(), token, s.userKey(), string(raw)).Err()
}

func (s *redisStore) Clear(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.client.Del(ctx, s.tokenKey(), s.userKey(), s.companyKey()).Err()
}

func (s *redisStore) CacheCompanyName(ctx context.Context, userID, name string) error {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(name) == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.client.HSet(ctx, s.companyKey(), userID, name).Err()
}

func (s *redisStore) CachedCompanyName(ctx context.Context, userID string) (string, bool, error) {
	if strings.TrimSpace(userID) == "" {
		return "", false, nil
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	name, err := s.client.HGet(ctx, s.companyKey(), userID).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return name, name != "", nil
}
