// Package cache is a read-through cache over the backend's time entry
// collection, keyed by query parameters. Mutations are applied to cached
// snapshots optimistically and rolled back when the backend rejects them;
// after a confirmed mutation the affected snapshots are invalidated, since
// the backend remains the source of truth.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tallysheet/tally/internal/model"
)

// Backend is the slice of the backend client the cache reads through to.
type Backend interface {
	ListEntries(ctx context.Context, userID, from, to string) ([]model.TimeEntry, error)
	CreateEntry(ctx context.Context, e model.TimeEntry) (model.TimeEntry, error)
	UpdateEntry(ctx context.Context, id string, e model.TimeEntry) (model.TimeEntry, error)
	DeleteEntry(ctx context.Context, id string) error
}

// Query identifies one cached snapshot. Empty From/To leave that bound open.
type Query struct {
	UserID string
	From   string
	To     string
}

func (q Query) matches(e model.TimeEntry) bool {
	if e.UserID != q.UserID {
		return false
	}
	if q.From != "" && e.Date < q.From {
		return false
	}
	if q.To != "" && e.Date > q.To {
		return false
	}
	return true
}

type snapshot struct {
	entries   []model.TimeEntry
	fetchedAt time.Time
}

// pendingMutation records the snapshots an optimistic update touched so a
// rejected mutation can be undone.
type pendingMutation struct {
	userID string
	prev   map[Query]snapshot
}

// Store holds the cached snapshots and the in-flight mutations.
type Store struct {
	backend Backend
	ttl     time.Duration
	log     *zap.Logger

	mu      sync.Mutex
	data    map[Query]snapshot
	pending map[string]pendingMutation

	now func() time.Time
}

// New creates a Store over the given backend. Snapshots older than ttl are
// re-fetched on the next read.
func New(b Backend, ttl time.Duration, log *zap.Logger) *Store {
	return &Store{
		backend: b,
		ttl:     ttl,
		log:     log,
		data:    map[Query]snapshot{},
		pending: map[string]pendingMutation{},
		now:     time.Now,
	}
}

// Entries returns the entries for q, serving a fresh cached snapshot when
// one exists and reading through to the backend otherwise. The returned
// slice is a copy; callers may not see each other's mutations.
func (s *Store) Entries(ctx context.Context, q Query) ([]model.TimeEntry, error) {
	s.mu.Lock()
	if snap, ok := s.data[q]; ok && s.now().Sub(snap.fetchedAt) < s.ttl {
		out := copyEntries(snap.entries)
		s.mu.Unlock()
		return out, nil
	}
	s.mu.Unlock()

	entries, err := s.backend.ListEntries(ctx, q.UserID, q.From, q.To)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.data[q] = snapshot{entries: copyEntries(entries), fetchedAt: s.now()}
	s.mu.Unlock()
	return entries, nil
}

// CreateEntry stores a new entry through the backend. Matching snapshots
// show the entry immediately and are restored if the backend rejects it.
func (s *Store) CreateEntry(ctx context.Context, e model.TimeEntry) (model.TimeEntry, error) {
	mutID := s.begin(e.UserID, func(q Query, snap *snapshot) bool {
		if !q.matches(e) {
			return false
		}
		snap.entries = append(snap.entries, e)
		return true
	})

	created, err := s.backend.CreateEntry(ctx, e)
	if err != nil {
		s.rollback(mutID)
		return model.TimeEntry{}, err
	}
	s.commit(mutID)
	return created, nil
}

// UpdateEntry overwrites an entry through the backend, with the same
// optimistic-update contract as CreateEntry.
func (s *Store) UpdateEntry(ctx context.Context, id string, e model.TimeEntry) (model.TimeEntry, error) {
	mutID := s.begin(e.UserID, func(q Query, snap *snapshot) bool {
		touched := false
		for i := range snap.entries {
			if snap.entries[i].ID == id {
				updated := e
				updated.ID = id
				snap.entries[i] = updated
				touched = true
			}
		}
		return touched
	})

	updated, err := s.backend.UpdateEntry(ctx, id, e)
	if err != nil {
		s.rollback(mutID)
		return model.TimeEntry{}, err
	}
	s.commit(mutID)
	return updated, nil
}

// DeleteEntry removes an entry through the backend, with the same
// optimistic-update contract as CreateEntry.
func (s *Store) DeleteEntry(ctx context.Context, userID, id string) error {
	mutID := s.begin(userID, func(q Query, snap *snapshot) bool {
		kept := snap.entries[:0:0]
		touched := false
		for _, e := range snap.entries {
			if e.ID == id {
				touched = true
				continue
			}
			kept = append(kept, e)
		}
		if touched {
			snap.entries = kept
		}
		return touched
	})

	if err := s.backend.DeleteEntry(ctx, id); err != nil {
		s.rollback(mutID)
		return err
	}
	s.commit(mutID)
	return nil
}

// Invalidate drops every cached snapshot for the user.
func (s *Store) Invalidate(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for q := range s.data {
		if q.UserID == userID {
			delete(s.data, q)
		}
	}
}

// PendingMutations reports how many optimistic updates are awaiting backend
// confirmation.
func (s *Store) PendingMutations() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// begin applies an optimistic update to the user's snapshots and records
// their previous contents under a fresh mutation ID.
func (s *Store) begin(userID string, apply func(Query, *snapshot) bool) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	mut := pendingMutation{userID: userID, prev: map[Query]snapshot{}}
	for q, snap := range s.data {
		if q.UserID != userID {
			continue
		}
		work := snapshot{entries: copyEntries(snap.entries), fetchedAt: snap.fetchedAt}
		if apply(q, &work) {
			mut.prev[q] = snap
			s.data[q] = work
		}
	}

	id := uuid.NewString()
	s.pending[id] = mut
	return id
}

// rollback restores the snapshots recorded for the mutation.
func (s *Store) rollback(mutID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	mut, ok := s.pending[mutID]
	if !ok {
		return
	}
	for q, snap := range mut.prev {
		s.data[q] = snap
	}
	delete(s.pending, mutID)
	if s.log != nil {
		s.log.Warn("rolled back optimistic update",
			zap.String("mutation", mutID),
			zap.Int("snapshots", len(mut.prev)))
	}
}

// commit drops the mutation record and invalidates the user's snapshots so
// the next read re-fetches server-assigned state.
func (s *Store) commit(mutID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	mut, ok := s.pending[mutID]
	if !ok {
		return
	}
	delete(s.pending, mutID)
	for q := range s.data {
		if q.UserID == mut.userID {
			delete(s.data, q)
		}
	}
}

func copyEntries(entries []model.TimeEntry) []model.TimeEntry {
	out := make([]model.TimeEntry, len(entries))
	copy(out, entries)
	return out
}
