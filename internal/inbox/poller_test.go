package inbox

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/byro/cli/internal/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testInterval = 5 * time.Millisecond

func collect(t *testing.T, ch <-chan api.InboxItem, timeout time.Duration) []api.InboxItem {
	t.Helper()
	var got []api.InboxItem
	deadline := time.After(timeout)
	for {
		select {
		case it, ok := <-ch:
			if !ok {
				return got
			}
			got = append(got, it)
		case <-deadline:
			t.Fatal("poll watch did not finish in time")
		}
	}
}

func TestPollerStopsOnEveryTerminalStatus(t *testing.T) {
	for _, terminal := range []api.Status{api.StatusReview, api.StatusDone, api.StatusError} {
		t.Run(string(terminal), func(t *testing.T) {
			backend := &fakeBackend{}
			var calls int32
			backend.getFunc = func(ctx context.Context, id string) (*api.InboxItem, error) {
				n := atomic.AddInt32(&calls, 1)
				if n < 3 {
					it := item(id, api.StatusProcessing)
					return &it, nil
				}
				it := item(id, terminal)
				return &it, nil
			}

			p := NewPoller(backend, testInterval, nil)
			ch := p.Watch(context.Background(), item("a", api.StatusProcessing))
			got := collect(t, ch, time.Second)

			require.NotEmpty(t, got)
			assert.Equal(t, terminal, got[len(got)-1].Status)
			// No further fetches after the terminal status arrived.
			settled := atomic.LoadInt32(&calls)
			time.Sleep(5 * testInterval)
			assert.Equal(t, settled, atomic.LoadInt32(&calls))
		})
	}
}

func TestPollerNeverOverlapsRequests(t *testing.T) {
	backend := &fakeBackend{}
	var inFlight, maxInFlight, calls int32
	backend.getFunc = func(ctx context.Context, id string) (*api.InboxItem, error) {
		n := atomic.AddInt32(&inFlight, 1)
		defer atomic.AddInt32(&inFlight, -1)
		for {
			prev := atomic.LoadInt32(&maxInFlight)
			if n <= prev || atomic.CompareAndSwapInt32(&maxInFlight, prev, n) {
				break
			}
		}
		// Each fetch takes several intervals; ticks must be absorbed,
		// not queued into concurrent requests.
		time.Sleep(3 * testInterval)
		if atomic.AddInt32(&calls, 1) >= 4 {
			it := item(id, api.StatusReview)
			return &it, nil
		}
		it := item(id, api.StatusProcessing)
		return &it, nil
	}

	p := NewPoller(backend, testInterval, nil)
	ch := p.Watch(context.Background(), item("a", api.StatusProcessing))
	collect(t, ch, 5*time.Second)

	assert.Equal(t, int32(1), atomic.LoadInt32(&maxInFlight))
}

func TestPollerRetriesTransientFailures(t *testing.T) {
	backend := &fakeBackend{}
	var calls int32
	backend.getFunc = func(ctx context.Context, id string) (*api.InboxItem, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			return nil, errors.New("connection refused")
		}
		it := item(id, api.StatusReview)
		it.AIPayload = map[string]any{"title": "ABC Corp Invoice"}
		return &it, nil
	}

	p := NewPoller(backend, testInterval, nil)
	ch := p.Watch(context.Background(), item("a", api.StatusProcessing))
	got := collect(t, ch, time.Second)

	// The failure is invisible: no error surfaces, no status flips to
	// error, the next tick simply retries.
	require.Len(t, got, 1)
	assert.Equal(t, api.StatusReview, got[0].Status)
	assert.Equal(t, "ABC Corp Invoice", got[0].PayloadString("title"))
}

func TestPollerCancelStopsWatch(t *testing.T) {
	backend := &fakeBackend{}
	backend.getFunc = func(ctx context.Context, id string) (*api.InboxItem, error) {
		it := item(id, api.StatusProcessing)
		return &it, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	p := NewPoller(backend, testInterval, nil)
	ch := p.Watch(ctx, item("a", api.StatusProcessing))

	// Let a few ticks happen, then deselect.
	time.Sleep(4 * testInterval)
	cancel()

	done := make(chan struct{})
	go func() {
		for range ch {
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("watch channel not closed after cancel")
	}

	backend.mu.Lock()
	settled := backend.getCalls
	backend.mu.Unlock()
	time.Sleep(5 * testInterval)
	backend.mu.Lock()
	assert.Equal(t, settled, backend.getCalls, "no fetches after cancellation")
	backend.mu.Unlock()
}

func TestPollerIgnoresNonProcessingItems(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	backend := &fakeBackend{}
	backend.getFunc = func(ctx context.Context, id string) (*api.InboxItem, error) {
		mu.Lock()
		calls++
		mu.Unlock()
		it := item(id, api.StatusReview)
		return &it, nil
	}

	p := NewPoller(backend, testInterval, nil)
	for _, s := range []api.Status{api.StatusReview, api.StatusDone, api.StatusError} {
		ch := p.Watch(context.Background(), item("a", s))
		_, ok := <-ch
		assert.False(t, ok, "channel should be closed immediately for %s", s)
	}

	time.Sleep(3 * testInterval)
	mu.Lock()
	assert.Zero(t, calls)
	mu.Unlock()
}
