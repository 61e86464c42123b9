// Package inbox owns the client-side triage state: the cached inbox
// list, the single active-item slot, and the status poll loop.
package inbox

import (
	"context"
	"fmt"
	"sync"

	"github.com/byro/cli/internal/api"
)

// Backend is the slice of the API client the inbox state depends on.
type Backend interface {
	ListInbox(ctx context.Context) ([]api.InboxItem, error)
	GetInboxItem(ctx context.Context, id string) (*api.InboxItem, error)
}

// Store is the single source of truth for inbox items. It caches the
// server-ordered list until explicitly invalidated and holds at most one
// active item. The store is the only writer of the active slot; poll
// results and selections both go through it.
type Store struct {
	mu      sync.Mutex
	backend Backend
	items   []api.InboxItem
	loaded  bool
	active  *api.InboxItem
}

// NewStore creates a store backed by the given API client.
func NewStore(backend Backend) *Store {
	return &Store{backend: backend}
}

// Items returns the inbox list, fetching from the backend when the cache
// is empty or has been invalidated. Order is the server's; the client
// never reorders.
func (s *Store) Items(ctx context.Context) ([]api.InboxItem, error) {
	s.mu.Lock()
	if s.loaded {
		items := make([]api.InboxItem, len(s.items))
		copy(items, s.items)
		s.mu.Unlock()
		return items, nil
	}
	s.mu.Unlock()

	items, err := s.backend.ListInbox(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load inbox: %w", err)
	}

	s.mu.Lock()
	s.items = items
	s.loaded = true
	out := make([]api.InboxItem, len(items))
	copy(out, items)
	s.mu.Unlock()
	return out, nil
}

// Invalidate drops the cached list. The next Items call re-fetches the
// whole collection; successful uploads and commits must call this rather
// than splicing locally.
func (s *Store) Invalidate() {
	s.mu.Lock()
	s.items = nil
	s.loaded = false
	s.mu.Unlock()
}

// Select makes the item with the given id active, from the cached list.
// Returns false when the id is not in the cache.
func (s *Store) Select(id string) (*api.InboxItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == id {
			item := s.items[i]
			s.active = &item
			out := item
			return &out, true
		}
	}
	return nil, false
}

// Deselect clears the active slot.
func (s *Store) Deselect() {
	s.mu.Lock()
	s.active = nil
	s.mu.Unlock()
}

// Active returns a copy of the active item, or nil when none is selected.
func (s *Store) Active() *api.InboxItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil {
		return nil
	}
	out := *s.active
	return &out
}

// Apply replaces the active item wholesale with a fresh record from the
// backend. The update is dropped when the active selection has moved to
// a different item in the meantime. The cached list entry is refreshed
// too so a re-selection sees the newest known state.
func (s *Store) Apply(item *api.InboxItem) bool {
	if item == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil || s.active.ID != item.ID {
		return false
	}
	fresh := *item
	s.active = &fresh
	for i := range s.items {
		if s.items[i].ID == item.ID {
			s.items[i] = *item
			break
		}
	}
	return true
}
