package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type cachedEvaluation struct {
	ID         uint    `json:"id"`
	USN        string  `json:"usn"`
	Percentage float64 `json:"percentage"`
}

func setupTestCache(t *testing.T) (*CacheHelper, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewCacheHelper(client, EvaluationCacheConfig.Prefix), mr
}

func TestGetSetRoundtrip(t *testing.T) {
	helper, _ := setupTestCache(t)
	ctx := context.Background()

	stored := cachedEvaluation{ID: 7, USN: "1AB19CS001", Percentage: 81.5}
	if err := helper.Set(ctx, "usn:1AB19CS001", stored, time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	var loaded cachedEvaluation
	if err := helper.Get(ctx, "usn:1AB19CS001", &loaded); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if loaded != stored {
		t.Errorf("Get() = %+v, want %+v", loaded, stored)
	}
}

func TestGetMiss(t *testing.T) {
	helper, _ := setupTestCache(t)

	var dest cachedEvaluation
	err := helper.Get(context.Background(), "usn:missing", &dest)
	if err != ErrCacheNotFound {
		t.Errorf("Get() error = %v, want ErrCacheNotFound", err)
	}
}

func TestKeysArePrefixed(t *testing.T) {
	helper, mr := setupTestCache(t)

	if err := helper.Set(context.Background(), "usn:1AB19CS001", 1, time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if !mr.Exists("evaluation:usn:1AB19CS001") {
		t.Errorf("stored keys = %v, want evaluation: prefix", mr.Keys())
	}
}

func TestSetHonorsTTL(t *testing.T) {
	helper, mr := setupTestCache(t)
	ctx := context.Background()

	if err := helper.Set(ctx, "usn:1AB19CS001", 1, time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	mr.FastForward(2 * time.Minute)

	var dest int
	if err := helper.Get(ctx, "usn:1AB19CS001", &dest); err != ErrCacheNotFound {
		t.Errorf("Get() after TTL = %v, want ErrCacheNotFound", err)
	}
}

func TestNilClientDegradesGracefully(t *testing.T) {
	helper := NewCacheHelper(nil, "")
	ctx := context.Background()

	if err := helper.Set(ctx, "k", 1, time.Minute); err != nil {
		t.Errorf("Set() with nil client = %v, want nil", err)
	}
	if err := helper.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete() with nil client = %v, want nil", err)
	}
	if err := helper.InvalidatePattern(ctx, "*"); err != nil {
		t.Errorf("InvalidatePattern() with nil client = %v, want nil", err)
	}

	var dest int
	if err := helper.Get(ctx, "k", &dest); err != ErrCacheNotAvailable {
		t.Errorf("Get() with nil client = %v, want ErrCacheNotAvailable", err)
	}
	if _, err := helper.Exists(ctx, "k"); err != ErrCacheNotAvailable {
		t.Errorf("Exists() with nil client = %v, want ErrCacheNotAvailable", err)
	}
}

func TestDeleteMultipleKeys(t *testing.T) {
	helper, mr := setupTestCache(t)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		if err := helper.Set(ctx, fmt.Sprintf("usn:%d", i), i, time.Minute); err != nil {
			t.Fatal(err)
		}
	}

	if err := helper.Delete(ctx, "usn:1", "usn:2"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	if mr.Exists("evaluation:usn:1") || mr.Exists("evaluation:usn:2") {
		t.Error("deleted keys still present")
	}
	if !mr.Exists("evaluation:usn:3") {
		t.Error("untouched key was deleted")
	}
}

func TestInvalidatePattern(t *testing.T) {
	helper, mr := setupTestCache(t)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		if err := helper.Set(ctx, fmt.Sprintf("list:%d", i), i, time.Minute); err != nil {
			t.Fatal(err)
		}
	}
	if err := helper.Set(ctx, "usn:1AB19CS001", 1, time.Minute); err != nil {
		t.Fatal(err)
	}

	if err := helper.InvalidatePattern(ctx, "list:*"); err != nil {
		t.Fatalf("InvalidatePattern() error = %v", err)
	}

	for i := 1; i <= 5; i++ {
		if mr.Exists(fmt.Sprintf("evaluation:list:%d", i)) {
			t.Errorf("evaluation:list:%d survived invalidation", i)
		}
	}
	if !mr.Exists("evaluation:usn:1AB19CS001") {
		t.Error("non-matching key was invalidated")
	}
}

func TestExists(t *testing.T) {
	helper, _ := setupTestCache(t)
	ctx := context.Background()

	if err := helper.Set(ctx, "usn:1AB19CS001", 1, time.Minute); err != nil {
		t.Fatal(err)
	}

	found, err := helper.Exists(ctx, "usn:1AB19CS001")
	if err != nil || !found {
		t.Errorf("Exists() = %v, %v, want true", found, err)
	}

	found, err = helper.Exists(ctx, "usn:other")
	if err != nil || found {
		t.Errorf("Exists() for missing key = %v, %v, want false", found, err)
	}
}

func TestCacheOrExecute(t *testing.T) {
	helper, _ := setupTestCache(t)
	ctx := context.Background()

	fetches := 0
	fetch := func() (interface{}, error) {
		fetches++
		return cachedEvaluation{ID: 9, USN: "1AB19CS001"}, nil
	}

	var first cachedEvaluation
	if err := helper.CacheOrExecute(ctx, "usn:1AB19CS001", &first, time.Minute, fetch); err != nil {
		t.Fatalf("CacheOrExecute() error = %v", err)
	}
	if first.ID != 9 {
		t.Errorf("first result = %+v", first)
	}
	if fetches != 1 {
		t.Fatalf("fetches = %d, want 1", fetches)
	}

	// The cache write happens off the request path
	waitForKey(t, helper, "usn:1AB19CS001")

	var second cachedEvaluation
	if err := helper.CacheOrExecute(ctx, "usn:1AB19CS001", &second, time.Minute, fetch); err != nil {
		t.Fatalf("CacheOrExecute() second call error = %v", err)
	}
	if fetches != 1 {
		t.Errorf("fetches = %d, want 1 (second call served from cache)", fetches)
	}
	if second != first {
		t.Errorf("second result = %+v, want %+v", second, first)
	}
}

func TestCacheOrExecuteFetchFailure(t *testing.T) {
	helper, _ := setupTestCache(t)

	var dest cachedEvaluation
	err := helper.CacheOrExecute(context.Background(), "usn:1AB19CS001", &dest, time.Minute, func() (interface{}, error) {
		return nil, fmt.Errorf("db down")
	})
	if err == nil {
		t.Fatal("CacheOrExecute() error = nil, want fetch failure")
	}
}

func waitForKey(t *testing.T, helper *CacheHelper, key string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if found, err := helper.Exists(context.Background(), key); err == nil && found {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("cache entry never appeared")
}

func TestCacheManagerPrefixes(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	cm := NewCacheManager(client)
	ctx := context.Background()

	if err := cm.Evaluation.Set(ctx, "k", 1, time.Minute); err != nil {
		t.Fatal(err)
	}
	if err := cm.Dashboard.Set(ctx, "k", 1, time.Minute); err != nil {
		t.Fatal(err)
	}
	if err := cm.Stats.Set(ctx, "k", 1, time.Minute); err != nil {
		t.Fatal(err)
	}
	if err := cm.Exists.Set(ctx, "k", 1, time.Minute); err != nil {
		t.Fatal(err)
	}

	for _, key := range []string{"evaluation:k", "dashboard:k", "stats:k", "exists:k"} {
		if !mr.Exists(key) {
			t.Errorf("missing key %s, stored keys = %v", key, mr.Keys())
		}
	}

	if err := cm.HealthCheck(ctx); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}
}

func TestCacheManagerNilClient(t *testing.T) {
	cm := NewCacheManager(nil)

	if err := cm.HealthCheck(context.Background()); err != ErrCacheNotAvailable {
		t.Errorf("HealthCheck() = %v, want ErrCacheNotAvailable", err)
	}
	if err := cm.ClearAll(context.Background()); err != nil {
		t.Errorf("ClearAll() = %v, want nil", err)
	}
}
