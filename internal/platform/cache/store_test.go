package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestStore_SetGetDelete(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	ctx := t.Context()

	store.Set(ctx, "squad:1", "alpha")
	if v, ok := store.Get(ctx, "squad:1"); !ok || v != "alpha" {
		t.Fatalf("get after set = (%v, %v)", v, ok)
	}

	store.Delete(ctx, "squad:1")
	if _, ok := store.Get(ctx, "squad:1"); ok {
		t.Fatal("expected miss after delete")
	}
}

func TestStore_DeletePrefix(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	ctx := t.Context()

	store.Set(ctx, "squads:list:0", 1)
	store.Set(ctx, "squads:list:20", 2)
	store.Set(ctx, "squad:7", 3)

	store.DeletePrefix(ctx, "squads:list:")

	if _, ok := store.Get(ctx, "squads:list:0"); ok {
		t.Fatal("expected prefix entry to be dropped")
	}
	if _, ok := store.Get(ctx, "squad:7"); !ok {
		t.Fatal("expected unrelated entry to survive")
	}
}

func TestStore_GetOrLoad_SharesLoad(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	var calls atomic.Int32

	loader := func(context.Context) (any, error) {
		calls.Add(1)
		time.Sleep(20 * time.Millisecond)
		return "value", nil
	}

	const workers = 16
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			<-start
			v, err := store.GetOrLoad(context.Background(), "same-key", loader)
			if err != nil {
				t.Errorf("load: %v", err)
				return
			}
			if v != "value" {
				t.Errorf("load = %v, want value", v)
			}
		}()
	}

	close(start)
	wg.Wait()

	if got := calls.Load(); got != 1 {
		t.Fatalf("loader called %d times, want 1", got)
	}
}

func TestStore_GetOrLoad_ErrorIsNotCached(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	boom := errors.New("boom")
	var calls atomic.Int32

	loader := func(context.Context) (any, error) {
		if calls.Add(1) == 1 {
			return nil, boom
		}
		return "recovered", nil
	}

	if _, err := store.GetOrLoad(t.Context(), "key", loader); !errors.Is(err, boom) {
		t.Fatalf("first load = %v, want boom", err)
	}

	v, err := store.GetOrLoad(t.Context(), "key", loader)
	if err != nil {
		t.Fatalf("second load: %v", err)
	}
	if v != "recovered" {
		t.Fatalf("second load = %v, want recovered", v)
	}
}
