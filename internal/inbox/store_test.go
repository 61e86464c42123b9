package inbox

import (
	"context"
	"sync"
	"testing"

	"github.com/byro/cli/internal/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBackend serves scripted list responses and counts calls.
type fakeBackend struct {
	mu        sync.Mutex
	lists     [][]api.InboxItem
	listCalls int
	getFunc   func(ctx context.Context, id string) (*api.InboxItem, error)
	getCalls  int
}

func (f *fakeBackend) ListInbox(ctx context.Context) ([]api.InboxItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	idx := f.listCalls
	f.listCalls++
	if idx >= len(f.lists) {
		idx = len(f.lists) - 1
	}
	return f.lists[idx], nil
}

func (f *fakeBackend) GetInboxItem(ctx context.Context, id string) (*api.InboxItem, error) {
	f.mu.Lock()
	f.getCalls++
	fn := f.getFunc
	f.mu.Unlock()
	return fn(ctx, id)
}

func item(id string, status api.Status) api.InboxItem {
	return api.InboxItem{
		ID:               id,
		Status:           status,
		OriginalFilename: id + ".pdf",
		FilePath:         "uploads/" + id + ".pdf",
	}
}

func TestStoreCachesUntilInvalidated(t *testing.T) {
	backend := &fakeBackend{lists: [][]api.InboxItem{
		{item("a", api.StatusReview)},
	}}
	store := NewStore(backend)

	_, err := store.Items(context.Background())
	require.NoError(t, err)
	_, err = store.Items(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, backend.listCalls, "second read must hit the cache")

	store.Invalidate()
	_, err = store.Items(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, backend.listCalls, "invalidation must force a full re-fetch")
}

func TestStoreReflectsBackendAfterCommitInvalidation(t *testing.T) {
	backend := &fakeBackend{lists: [][]api.InboxItem{
		{item("a", api.StatusReview)},
		{item("a", api.StatusDone)},
	}}
	store := NewStore(backend)

	items, err := store.Items(context.Background())
	require.NoError(t, err)
	require.Equal(t, api.StatusReview, items[0].Status)

	// A successful commit invalidates; the next read reflects the
	// backend's new status, not the stale review record.
	store.Invalidate()
	items, err = store.Items(context.Background())
	require.NoError(t, err)
	assert.Equal(t, api.StatusDone, items[0].Status)
}

func TestStoreSelectAndActive(t *testing.T) {
	backend := &fakeBackend{lists: [][]api.InboxItem{
		{item("a", api.StatusProcessing), item("b", api.StatusReview)},
	}}
	store := NewStore(backend)
	_, err := store.Items(context.Background())
	require.NoError(t, err)

	sel, ok := store.Select("b")
	require.True(t, ok)
	assert.Equal(t, "b", sel.ID)

	active := store.Active()
	require.NotNil(t, active)
	assert.Equal(t, "b", active.ID)

	// Returned records are copies; mutating them must not leak into the store.
	active.Status = api.StatusError
	assert.Equal(t, api.StatusReview, store.Active().Status)

	_, ok = store.Select("nope")
	assert.False(t, ok)

	store.Deselect()
	assert.Nil(t, store.Active())
}

func TestStoreApplyOnlyTouchesActiveItem(t *testing.T) {
	backend := &fakeBackend{lists: [][]api.InboxItem{
		{item("a", api.StatusProcessing), item("b", api.StatusProcessing)},
	}}
	store := NewStore(backend)
	_, err := store.Items(context.Background())
	require.NoError(t, err)

	_, ok := store.Select("a")
	require.True(t, ok)

	// A stale poll result for a different item is dropped.
	other := item("b", api.StatusReview)
	assert.False(t, store.Apply(&other))
	assert.Equal(t, api.StatusProcessing, store.Active().Status)

	fresh := item("a", api.StatusReview)
	fresh.AIPayload = map[string]any{"title": "ABC Corp Invoice"}
	assert.True(t, store.Apply(&fresh))

	active := store.Active()
	assert.Equal(t, api.StatusReview, active.Status)
	assert.Equal(t, "ABC Corp Invoice", active.PayloadString("title"))

	assert.False(t, store.Apply(nil))
}

func TestStoreReselectPreservesPolledData(t *testing.T) {
	backend := &fakeBackend{lists: [][]api.InboxItem{
		{item("a", api.StatusProcessing), item("b", api.StatusReview)},
	}}
	store := NewStore(backend)
	_, err := store.Items(context.Background())
	require.NoError(t, err)

	_, ok := store.Select("a")
	require.True(t, ok)

	fresh := item("a", api.StatusReview)
	fresh.AIPayload = map[string]any{"title": "Kept"}
	require.True(t, store.Apply(&fresh))

	// Select B, then come back to A: the polled data must survive the
	// detour instead of reverting to the pre-poll record.
	_, ok = store.Select("b")
	require.True(t, ok)
	again, ok := store.Select("a")
	require.True(t, ok)

	assert.Equal(t, api.StatusReview, again.Status)
	assert.Equal(t, "Kept", again.PayloadString("title"))
}
