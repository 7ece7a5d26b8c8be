package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func newTestHelper(t *testing.T) *CacheHelper {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewCacheHelper(client, "test")
}

func TestCacheHelper_SetGet(t *testing.T) {
	helper := newTestHelper(t)
	ctx := context.Background()

	want := payload{Name: "quiz", Count: 3}
	if err := helper.Set(ctx, "k1", want, time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	var got payload
	if err := helper.Get(ctx, "k1", &got); err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}

	if err := helper.Get(ctx, "absent", &got); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("expected ErrCacheMiss, got %v", err)
	}

	if err := helper.Delete(ctx, "k1"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if err := helper.Get(ctx, "k1", &got); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("expected miss after delete, got %v", err)
	}
}

func TestCacheHelper_CacheOrExecute(t *testing.T) {
	helper := newTestHelper(t)
	ctx := context.Background()

	calls := 0
	loader := func() (interface{}, error) {
		calls++
		return payload{Name: "loaded", Count: calls}, nil
	}

	var first payload
	if err := helper.CacheOrExecute(ctx, "k", &first, time.Minute, loader); err != nil {
		t.Fatalf("first call failed: %v", err)
	}

	var second payload
	if err := helper.CacheOrExecute(ctx, "k", &second, time.Minute, loader); err != nil {
		t.Fatalf("second call failed: %v", err)
	}

	if calls != 1 {
		t.Errorf("loader must run once, ran %d times", calls)
	}
	if second != first {
		t.Errorf("cached value differs: %+v vs %+v", second, first)
	}
}

func TestCacheHelper_LoaderErrorPassesThrough(t *testing.T) {
	helper := newTestHelper(t)

	wantErr := errors.New("db down")
	var dest payload
	err := helper.CacheOrExecute(context.Background(), "k", &dest, time.Minute, func() (interface{}, error) {
		return nil, wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Errorf("expected loader error, got %v", err)
	}
}

func TestCacheHelper_NilClient(t *testing.T) {
	helper := NewCacheHelper(nil, "test")
	ctx := context.Background()

	if err := helper.Set(ctx, "k", payload{}, time.Minute); err != nil {
		t.Errorf("set on nil client must no-op, got %v", err)
	}

	var dest payload
	if err := helper.Get(ctx, "k", &dest); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("get on nil client must miss, got %v", err)
	}

	// Every call falls through to the loader.
	calls := 0
	for i := 0; i < 2; i++ {
		if err := helper.CacheOrExecute(ctx, "k", &dest, time.Minute, func() (interface{}, error) {
			calls++
			return payload{Count: calls}, nil
		}); err != nil {
			t.Fatalf("call %d failed: %v", i+1, err)
		}
	}
	if calls != 2 {
		t.Errorf("expected loader on every call, ran %d times", calls)
	}
}

func TestCacheManager_HealthCheck(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	cm := NewCacheManager(client)
	if err := cm.HealthCheck(context.Background()); err != nil {
		t.Errorf("health check failed: %v", err)
	}

	disabled := NewCacheManager(nil)
	if err := disabled.HealthCheck(context.Background()); err != nil {
		t.Errorf("disabled cache must report healthy, got %v", err)
	}
}
