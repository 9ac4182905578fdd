package devapi

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

type mockRedisEvaler struct {
	lastScript string
	lastKeys   []string
	lastArgs   []interface{}
	result     int64
	err        error
}

func (m *mockRedisEvaler) Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd {
	m.lastScript = script
	m.lastKeys = keys
	m.lastArgs = args
	cmd := redis.NewCmd(ctx)
	if m.err != nil {
		cmd.SetErr(m.err)
		return cmd
	}
	cmd.SetVal(m.result)
	return cmd
}

type mockRedisKV struct {
	lastSetKey string
	lastSetVal interface{}
	lastSetTTL time.Duration
	lastExists []string
	lastDel    []string

	setErr    error
	existsErr error
	existsN   int64
}

func (m *mockRedisKV) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	m.lastSetKey = key
	m.lastSetVal = value
	m.lastSetTTL = expiration
	cmd := redis.NewStatusCmd(ctx)
	if m.setErr != nil {
		cmd.SetErr(m.setErr)
		return cmd
	}
	cmd.SetVal("OK")
	return cmd
}

func (m *mockRedisKV) Exists(ctx context.Context, keys ...string) *redis.IntCmd {
	m.lastExists = keys
	cmd := redis.NewIntCmd(ctx)
	if m.existsErr != nil {
		cmd.SetErr(m.existsErr)
		return cmd
	}
	cmd.SetVal(m.existsN)
	return cmd
}

func (m *mockRedisKV) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	m.lastDel = keys
	cmd := redis.NewIntCmd(ctx)
	cmd.SetVal(int64(len(keys)))
	return cmd
}

func TestRedisOTPRateLimiterAllow(t *testing.T) {
	t.Run("nil receiver fail-open", func(t *testing.T) {
		var l *redisOTPRateLimiter
		if !l.Allow("user@example.com") {
			t.Fatalf("expected fail-open for nil limiter")
		}
	})

	t.Run("empty key rejected", func(t *testing.T) {
		l := newRedisOTPRateLimiter(&mockRedisEvaler{result: 1}, time.Minute, 3)
		if l.Allow("   ") {
			t.Fatalf("expected empty key to be rejected")
		}
	})

	t.Run("allow within max", func(t *testing.T) {
		mock := &mockRedisEvaler{result: 2}
		l := newRedisOTPRateLimiter(mock, 2*time.Minute, 3)
		if !l.Allow(" User@Example.com ") {
			t.Fatalf("expected allow when count <= max")
		}
		if len(mock.lastKeys) != 1 || mock.lastKeys[0] != "portal:otp:rl:user@example.com" {
			t.Fatalf("unexpected key normalization, got %+v", mock.lastKeys)
		}
		if len(mock.lastArgs) != 1 || mock.lastArgs[0] != 120 {
			t.Fatalf("expected TTL seconds=120, got %+v", mock.lastArgs)
		}
		if mock.lastScript != redisOTPAllowScript {
			t.Fatalf("expected script to match")
		}
	})

	t.Run("deny over max", func(t *testing.T) {
		l := newRedisOTPRateLimiter(&mockRedisEvaler{result: 4}, time.Minute, 3)
		if l.Allow("user@example.com") {
			t.Fatalf("expected deny when count > max")
		}
	})

	t.Run("redis error fail-open", func(t *testing.T) {
		l := newRedisOTPRateLimiter(&mockRedisEvaler{err: errors.New("redis down")}, time.Minute, 3)
		if !l.Allow("user@example.com") {
			t.Fatalf("expected fail-open on redis errors")
		}
	})
}

func TestRedisTokenStore(t *testing.T) {
	mock := &mockRedisKV{existsN: 1}
	s := newRedisTokenStore(mock)

	if err := s.Store("jti-1", "user-1", time.Hour); err != nil {
		t.Fatalf("store: %v", err)
	}
	if mock.lastSetKey != "portal:token:jti-1" || mock.lastSetVal != "user-1" || mock.lastSetTTL != time.Hour {
		t.Fatalf("unexpected set: key=%s val=%v ttl=%s", mock.lastSetKey, mock.lastSetVal, mock.lastSetTTL)
	}

	ok, err := s.Exists("jti-1")
	if err != nil || !ok {
		t.Fatalf("expected exists, got %v %v", ok, err)
	}

	if err := s.Revoke("jti-1"); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if len(mock.lastDel) != 1 || mock.lastDel[0] != "portal:token:jti-1" {
		t.Fatalf("unexpected del keys: %+v", mock.lastDel)
	}

	mock.existsErr = errors.New("redis down")
	if _, err := s.Exists("jti-1"); err == nil {
		t.Fatalf("expected exists error")
	}

	if ok, _ := s.Exists(" "); ok {
		t.Fatalf("blank jti must not exist")
	}
}

func TestNewRedisConstructorsRejectNilClient(t *testing.T) {
	if NewRedisTokenStore(nil) != nil {
		t.Fatalf("expected nil token store")
	}
	if NewRedisOTPRateLimiter(nil, time.Minute, 3) != nil {
		t.Fatalf("expected nil limiter")
	}
}
