package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

// storeHarness is a Store under test plus a way to move its clock forward.
type storeHarness struct {
	store   Store
	advance func(d time.Duration)
}

// runStoreContract exercises the behaviour every Store must share.
func runStoreContract(t *testing.T, newHarness func(t *testing.T) storeHarness) {
	t.Run("miss on never written", func(t *testing.T) {
		h := newHarness(t)
		_, err := h.store.Get(context.Background(), "KEY1", "absent")
		if !errors.Is(err, ErrCacheMiss) {
			t.Errorf("Get() error = %v, want ErrCacheMiss", err)
		}
	})

	t.Run("set then get", func(t *testing.T) {
		h := newHarness(t)
		ctx := context.Background()

		if err := h.store.Set(ctx, "KEY1", "k", []byte("<eveapi/>"), 300*time.Second); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
		got, err := h.store.Get(ctx, "KEY1", "k")
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if string(got) != "<eveapi/>" {
			t.Errorf("Get() = %q, want %q", got, "<eveapi/>")
		}
	})

	t.Run("expires after ttl", func(t *testing.T) {
		h := newHarness(t)
		ctx := context.Background()

		if err := h.store.Set(ctx, "KEY1", "k", []byte("v"), 300*time.Second); err != nil {
			t.Fatalf("Set() error = %v", err)
		}

		h.advance(299 * time.Second)
		if _, err := h.store.Get(ctx, "KEY1", "k"); err != nil {
			t.Fatalf("Get() before expiry error = %v", err)
		}

		h.advance(time.Second)
		if _, err := h.store.Get(ctx, "KEY1", "k"); !errors.Is(err, ErrCacheMiss) {
			t.Errorf("Get() after expiry error = %v, want ErrCacheMiss", err)
		}
	})

	t.Run("upsert overwrites", func(t *testing.T) {
		h := newHarness(t)
		ctx := context.Background()

		if err := h.store.Set(ctx, "KEY1", "k", []byte("first"), time.Minute); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
		if err := h.store.Set(ctx, "KEY1", "k", []byte("second"), time.Hour); err != nil {
			t.Fatalf("Set() error = %v", err)
		}

		got, err := h.store.Get(ctx, "KEY1", "k")
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if string(got) != "second" {
			t.Errorf("Get() = %q, want %q", got, "second")
		}

		// The second write also replaced the expiry.
		h.advance(2 * time.Minute)
		if _, err := h.store.Get(ctx, "KEY1", "k"); err != nil {
			t.Errorf("Get() after first ttl error = %v, want hit", err)
		}
	})

	t.Run("silos do not collide", func(t *testing.T) {
		h := newHarness(t)
		ctx := context.Background()

		if err := h.store.Set(ctx, "KEY1", "same", []byte("one"), time.Minute); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
		if err := h.store.Set(ctx, "KEY2", "same", []byte("two"), time.Minute); err != nil {
			t.Fatalf("Set() error = %v", err)
		}

		for silo, want := range map[string]string{"KEY1": "one", "KEY2": "two"} {
			got, err := h.store.Get(ctx, silo, "same")
			if err != nil {
				t.Fatalf("Get(%s) error = %v", silo, err)
			}
			if string(got) != want {
				t.Errorf("Get(%s) = %q, want %q", silo, got, want)
			}
		}
	})

	t.Run("purge is scoped to one silo", func(t *testing.T) {
		h := newHarness(t)
		ctx := context.Background()

		for _, key := range []string{"a", "b", "c"} {
			if err := h.store.Set(ctx, "KEY1", key, []byte(key), time.Minute); err != nil {
				t.Fatalf("Set() error = %v", err)
			}
			if err := h.store.Set(ctx, "KEY2", key, []byte(key), time.Minute); err != nil {
				t.Fatalf("Set() error = %v", err)
			}
		}

		if err := h.store.Purge(ctx, "KEY1"); err != nil {
			t.Fatalf("Purge() error = %v", err)
		}

		for _, key := range []string{"a", "b", "c"} {
			if _, err := h.store.Get(ctx, "KEY1", key); !errors.Is(err, ErrCacheMiss) {
				t.Errorf("Get(KEY1, %s) error = %v, want ErrCacheMiss", key, err)
			}
			if _, err := h.store.Get(ctx, "KEY2", key); err != nil {
				t.Errorf("Get(KEY2, %s) error = %v, want hit", key, err)
			}
		}
	})

	t.Run("purge does not touch a silo sharing a prefix", func(t *testing.T) {
		h := newHarness(t)
		ctx := context.Background()

		for _, silo := range []string{"KEY1", "KEY1/sub", "KEY10"} {
			if err := h.store.Set(ctx, silo, "k", []byte(silo), time.Minute); err != nil {
				t.Fatalf("Set(%s) error = %v", silo, err)
			}
		}

		if err := h.store.Purge(ctx, "KEY1"); err != nil {
			t.Fatalf("Purge() error = %v", err)
		}

		if _, err := h.store.Get(ctx, "KEY1", "k"); !errors.Is(err, ErrCacheMiss) {
			t.Errorf("Get(KEY1) error = %v, want ErrCacheMiss", err)
		}
		for _, silo := range []string{"KEY1/sub", "KEY10"} {
			got, err := h.store.Get(ctx, silo, "k")
			if err != nil {
				t.Errorf("Get(%s) error = %v, want hit", silo, err)
				continue
			}
			if string(got) != silo {
				t.Errorf("Get(%s) = %q, want %q", silo, got, silo)
			}
		}
	})

	t.Run("purge of empty silo", func(t *testing.T) {
		h := newHarness(t)
		ctx := context.Background()

		if err := h.store.Set(ctx, "KEY2", "k", []byte("v"), time.Minute); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
		if err := h.store.Purge(ctx, "KEY1"); err != nil {
			t.Errorf("Purge() error = %v, want nil", err)
		}
		if _, err := h.store.Get(ctx, "KEY2", "k"); err != nil {
			t.Errorf("Get() error = %v, want hit", err)
		}
	})

	t.Run("non-positive ttl rejected", func(t *testing.T) {
		h := newHarness(t)
		ctx := context.Background()

		for _, ttl := range []time.Duration{0, -time.Second} {
			if err := h.store.Set(ctx, "KEY1", "k", []byte("v"), ttl); !errors.Is(err, ErrInvalidTTL) {
				t.Errorf("Set(ttl=%v) error = %v, want ErrInvalidTTL", ttl, err)
			}
		}
		if _, err := h.store.Get(ctx, "KEY1", "k"); !errors.Is(err, ErrCacheMiss) {
			t.Errorf("Get() error = %v, want ErrCacheMiss", err)
		}
	})
}
