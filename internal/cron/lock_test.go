package cron

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

type stubRedisStore struct {
	data map[string]string
}

func newStubRedisStore() *stubRedisStore {
	return &stubRedisStore{data: map[string]string{}}
}

func (s *stubRedisStore) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	if _, exists := s.data[key]; exists {
		return false, nil
	}
	s.data[key] = value.(string)
	return true, nil
}

func (s *stubRedisStore) Get(ctx context.Context, key string) (string, error) {
	value, ok := s.data[key]
	if !ok {
		return "", redis.Nil
	}
	return value, nil
}

func (s *stubRedisStore) Del(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(s.data, key)
	}
	return nil
}

func TestRedisLockMutualExclusion(t *testing.T) {
	store := newStubRedisStore()
	ctx := context.Background()

	first, err := NewRedisLock(store, "bob:lock:session-sweep", time.Minute)
	if err != nil {
		t.Fatalf("NewRedisLock: %v", err)
	}
	second, err := NewRedisLock(store, "bob:lock:session-sweep", time.Minute)
	if err != nil {
		t.Fatalf("NewRedisLock: %v", err)
	}

	ok, err := first.Acquire(ctx)
	if err != nil || !ok {
		t.Fatalf("first acquire = %v, %v", ok, err)
	}
	ok, err = second.Acquire(ctx)
	if err != nil {
		t.Fatalf("second acquire: %v", err)
	}
	if ok {
		t.Fatal("second holder must not acquire a held lock")
	}

	if err := first.Release(ctx); err != nil {
		t.Fatalf("release: %v", err)
	}
	ok, err = second.Acquire(ctx)
	if err != nil || !ok {
		t.Fatalf("acquire after release = %v, %v", ok, err)
	}
}

func TestRedisLockReleaseOnlyByOwner(t *testing.T) {
	store := newStubRedisStore()
	ctx := context.Background()

	holder, err := NewRedisLock(store, "bob:lock:session-sweep", time.Minute)
	if err != nil {
		t.Fatalf("NewRedisLock: %v", err)
	}
	stranger, err := NewRedisLock(store, "bob:lock:session-sweep", time.Minute)
	if err != nil {
		t.Fatalf("NewRedisLock: %v", err)
	}

	if ok, err := holder.Acquire(ctx); err != nil || !ok {
		t.Fatalf("acquire = %v, %v", ok, err)
	}
	// stranger never acquired; releasing must leave the lock intact
	if err := stranger.Release(ctx); err != nil {
		t.Fatalf("stranger release: %v", err)
	}
	if _, held := store.data["bob:lock:session-sweep"]; !held {
		t.Fatal("lock vanished after a non-owner release")
	}

	if err := holder.Release(ctx); err != nil {
		t.Fatalf("owner release: %v", err)
	}
	if _, held := store.data["bob:lock:session-sweep"]; held {
		t.Fatal("lock survived owner release")
	}
}

func TestRedisLockValidation(t *testing.T) {
	if _, err := NewRedisLock(nil, "key", time.Minute); err == nil {
		t.Fatal("expected error for nil client")
	}
	if _, err := NewRedisLock(newStubRedisStore(), "", time.Minute); err == nil {
		t.Fatal("expected error for empty key")
	}
}
