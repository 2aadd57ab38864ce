package bridge

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	transcriptstore "voicebroker/internal/infrastructure/transcript"
)

func newTestCache(idleTTL, sweepInterval time.Duration) *Cache {
	return NewCache(&fakeProvider{}, transcriptstore.NewMemoryStore(), idleTTL, sweepInterval, zerolog.Nop())
}

func TestCache_GetOrCreate_SingleBridgeUnderConcurrency(t *testing.T) {
	c := newTestCache(time.Minute, time.Minute)
	defer c.Stop()
	ctx := context.Background()

	const workers = 50
	bridges := make([]*Bridge, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			b, err := c.GetOrCreate(ctx, "sess_race", "t1", "alloy")
			if err != nil {
				t.Errorf("GetOrCreate() error = %v", err)
				return
			}
			bridges[i] = b
		}(i)
	}
	wg.Wait()

	for i := 1; i < workers; i++ {
		if bridges[i] != bridges[0] {
			t.Fatalf("worker %d got a distinct bridge", i)
		}
	}
}

func TestCache_GetOrCreate_EvictionRaceYieldsSingleActiveBridge(t *testing.T) {
	// A nanosecond idle window makes every Get evict, so creations race
	// against slot removal constantly.
	c := newTestCache(time.Nanosecond, time.Hour)
	defer c.Stop()
	ctx := context.Background()

	stop := make(chan struct{})
	var getters sync.WaitGroup
	for i := 0; i < 4; i++ {
		getters.Add(1)
		go func() {
			defer getters.Done()
			for {
				select {
				case <-stop:
					return
				default:
					c.Get("sess_evict")
				}
			}
		}()
	}

	const workers = 8
	const iterations = 2000
	results := make([][]*Bridge, workers)
	var creators sync.WaitGroup
	for i := 0; i < workers; i++ {
		creators.Add(1)
		go func(i int) {
			defer creators.Done()
			for n := 0; n < iterations; n++ {
				b, err := c.GetOrCreate(ctx, "sess_evict", "t1", "alloy")
				if err != nil {
					t.Errorf("GetOrCreate() error = %v", err)
					return
				}
				results[i] = append(results[i], b)
			}
		}(i)
	}
	creators.Wait()
	close(stop)
	getters.Wait()

	active := make(map[*Bridge]struct{})
	for _, bridges := range results {
		for _, b := range bridges {
			if b.Active() {
				active[b] = struct{}{}
			}
		}
	}
	if len(active) > 1 {
		t.Fatalf("%d distinct bridges simultaneously active for one session ID", len(active))
	}
}

func TestCache_GetMissAndHit(t *testing.T) {
	c := newTestCache(time.Minute, time.Minute)
	defer c.Stop()

	if _, ok := c.Get("sess_absent"); ok {
		t.Error("Get() hit for absent session")
	}

	created, err := c.GetOrCreate(context.Background(), "sess_a", "t1", "alloy")
	if err != nil {
		t.Fatalf("GetOrCreate() error = %v", err)
	}
	got, ok := c.Get("sess_a")
	if !ok {
		t.Fatal("Get() miss after create")
	}
	if got != created {
		t.Error("Get() returned a different bridge")
	}
}

func TestCache_IdleExpiryOnGet(t *testing.T) {
	c := newTestCache(20*time.Millisecond, time.Hour)
	defer c.Stop()

	b, err := c.GetOrCreate(context.Background(), "sess_idle", "t1", "alloy")
	if err != nil {
		t.Fatalf("GetOrCreate() error = %v", err)
	}

	time.Sleep(40 * time.Millisecond)

	if _, ok := c.Get("sess_idle"); ok {
		t.Error("Get() hit past the idle window")
	}
	if b.Active() {
		t.Error("expired bridge still active")
	}
}

func TestCache_GetOrCreate_ReplacesExpiredBridge(t *testing.T) {
	c := newTestCache(20*time.Millisecond, time.Hour)
	defer c.Stop()
	ctx := context.Background()

	first, err := c.GetOrCreate(ctx, "sess_r", "t1", "alloy")
	if err != nil {
		t.Fatalf("GetOrCreate() error = %v", err)
	}

	time.Sleep(40 * time.Millisecond)

	second, err := c.GetOrCreate(ctx, "sess_r", "t1", "alloy")
	if err != nil {
		t.Fatalf("GetOrCreate() error = %v", err)
	}
	if second == first {
		t.Error("expired bridge was reused")
	}
	if first.Active() {
		t.Error("replaced bridge left active")
	}
	if !second.Active() {
		t.Error("replacement bridge inactive")
	}
}

func TestCache_SweepEvictsIdleBridges(t *testing.T) {
	c := newTestCache(20*time.Millisecond, 10*time.Millisecond)
	defer c.Stop()
	ctx := context.Background()

	b, err := c.GetOrCreate(ctx, "sess_sweep", "t1", "alloy")
	if err != nil {
		t.Fatalf("GetOrCreate() error = %v", err)
	}
	c.Start(ctx)

	deadline := time.After(500 * time.Millisecond)
	for {
		c.mu.Lock()
		_, present := c.entries["sess_sweep"]
		c.mu.Unlock()
		if !present {
			break
		}
		select {
		case <-deadline:
			t.Fatal("sweep did not evict the idle bridge")
		case <-time.After(5 * time.Millisecond):
		}
	}

	if b.Active() {
		t.Error("swept bridge still active")
	}
}

func TestCache_Delete(t *testing.T) {
	c := newTestCache(time.Minute, time.Minute)
	defer c.Stop()

	if c.Delete("sess_none") {
		t.Error("Delete() reported a removal for an absent session")
	}

	b, err := c.GetOrCreate(context.Background(), "sess_d", "t1", "alloy")
	if err != nil {
		t.Fatalf("GetOrCreate() error = %v", err)
	}
	if !c.Delete("sess_d") {
		t.Error("Delete() missed an existing bridge")
	}
	if b.Active() {
		t.Error("deleted bridge still active")
	}
	if _, ok := c.Get("sess_d"); ok {
		t.Error("Get() hit after Delete")
	}
}

func TestCache_StopClosesAllBridges(t *testing.T) {
	c := newTestCache(time.Minute, time.Minute)
	ctx := context.Background()

	b1, _ := c.GetOrCreate(ctx, "sess_1", "t1", "alloy")
	b2, _ := c.GetOrCreate(ctx, "sess_2", "t1", "alloy")
	c.Start(ctx)
	c.Stop()
	c.Stop() // idempotent

	if b1.Active() || b2.Active() {
		t.Error("bridges still active after Stop")
	}
}
