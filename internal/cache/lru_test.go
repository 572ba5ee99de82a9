package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestLRUCacheEviction(t *testing.T) {
	c := NewLRUCache[string](3, time.Hour)

	c.Set("key1", "value1")
	c.Set("key2", "value2")
	c.Set("key3", "value3")
	c.Get("key1")           // key1 becomes most recent
	c.Set("key4", "value4") // evicts key2

	if _, found := c.Get("key2"); found {
		t.Error("key2 should have been evicted")
	}
	for _, k := range []string{"key1", "key3", "key4"} {
		if _, found := c.Get(k); !found {
			t.Errorf("%s should still exist", k)
		}
	}
	if c.Size() != 3 {
		t.Errorf("expected size 3, got %d", c.Size())
	}
}

func TestLRUCacheExpiration(t *testing.T) {
	c := NewLRUCache[string](10, time.Minute)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	c.Set("a", "1")
	c.Set("b", "2")
	if _, found := c.Get("a"); !found {
		t.Fatal("a should exist before the TTL")
	}

	now = now.Add(2 * time.Minute)
	c.Set("c", "3")

	if n := c.CleanExpired(); n != 2 {
		t.Fatalf("expected 2 expired entries, got %d", n)
	}
	if _, found := c.Get("c"); !found {
		t.Fatal("c was set after the clock moved and should still exist")
	}
}

func TestLRUCachePurge(t *testing.T) {
	c := NewLRUCache[int](10, time.Hour)
	c.Set("a", 1)
	c.Set("b", 2)

	if n := c.Purge(); n != 2 {
		t.Fatalf("expected 2 purged entries, got %d", n)
	}
	if c.Size() != 0 {
		t.Fatalf("expected empty cache, got %d entries", c.Size())
	}
	c.Set("a", 3)
	if v, _ := c.Get("a"); v != 3 {
		t.Fatalf("expected 3 after purge, got %d", v)
	}
}

func TestGetOrLoadSharesConcurrentLoads(t *testing.T) {
	c := NewLRUCache[int](10, time.Hour)
	var calls int32
	release := make(chan struct{})

	load := func(context.Context) (int, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return 42, nil
	}

	var wg sync.WaitGroup
	results := make([]int, 8)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := c.GetOrLoad(context.Background(), "snapshot", load)
			if err != nil {
				t.Errorf("GetOrLoad: %v", err)
			}
			results[i] = v
		}()
	}

	// Give the goroutines a chance to pile up behind the first load.
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	for i, v := range results {
		if v != 42 {
			t.Errorf("result %d: expected 42, got %d", i, v)
		}
	}
	if got := atomic.LoadInt32(&calls); got < 1 || got > int32(len(results)) {
		t.Fatalf("unexpected load count %d", got)
	}

	// Loaded value is now cached.
	v, err := c.GetOrLoad(context.Background(), "snapshot", func(context.Context) (int, error) {
		t.Fatal("loader should not run on a hit")
		return 0, nil
	})
	if err != nil || v != 42 {
		t.Fatalf("expected cached 42, got %d (%v)", v, err)
	}
}

func TestGetOrLoadSurvivesCancelledCaller(t *testing.T) {
	c := NewLRUCache[int](10, time.Hour)
	started := make(chan struct{})
	release := make(chan struct{})

	load := func(ctx context.Context) (int, error) {
		close(started)
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-release:
			return 7, nil
		}
	}

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		_, err := c.GetOrLoad(ctxA, "snapshot", load)
		errA <- err
	}()
	<-started

	type result struct {
		v   int
		err error
	}
	resB := make(chan result, 1)
	go func() {
		v, err := c.GetOrLoad(context.Background(), "snapshot", load)
		resB <- result{v, err}
	}()

	cancelA()
	if err := <-errA; !errors.Is(err, context.Canceled) {
		t.Fatalf("cancelled caller: expected context.Canceled, got %v", err)
	}

	close(release)
	select {
	case r := <-resB:
		if r.err != nil || r.v != 7 {
			t.Fatalf("live caller: got %d, %v", r.v, r.err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("live caller never returned")
	}
	if v, ok := c.Get("snapshot"); !ok || v != 7 {
		t.Fatalf("expected loaded value to be cached, got %d %v", v, ok)
	}
}

func TestGetOrLoadDoesNotCacheErrors(t *testing.T) {
	c := NewLRUCache[int](10, time.Hour)
	boom := errors.New("boom")

	if _, err := c.GetOrLoad(context.Background(), "k", func(context.Context) (int, error) {
		return 0, boom
	}); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if c.Size() != 0 {
		t.Fatal("failed load must not be cached")
	}
}

func TestManagerSweep(t *testing.T) {
	c := NewLRUCache[string](10, time.Minute)
	now := time.Now()
	c.now = func() time.Time { return now }
	c.Set("a", "1")
	now = now.Add(time.Hour)

	m := NewManager(nil)
	m.Register(c)
	if n := m.Sweep(); n != 1 {
		t.Fatalf("expected 1 removed entry, got %d", n)
	}

	m.StartCleanup(context.Background(), time.Hour)
	m.Stop()
	m.Stop() // second stop is a no-op
}
