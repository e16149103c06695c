package chat

import (
	"sort"
	"sync"
)

// Entry is one online identity and the connection it currently lives on.
type Entry struct {
	UserID      string `json:"user_id"`
	ConnID      string `json:"conn_id"`
	DisplayName string `json:"display_name"`
}

// Registry is the source of truth for "who is online and on which
// connection". At most one entry per user: a second register for the
// same user overwrites the first (last-connection-wins); the earlier
// connection stays open but is no longer a directed-send target.
//
// The interface exists so a shared external implementation can replace
// the in-memory one without touching Router or Tracker.
type Registry interface {
	// Register binds userID to connID and reports whether the user was
	// already online (reconnect).
	Register(userID, connID, displayName string) (replaced bool)
	// Unregister removes the entry holding connID. If the user has since
	// reconnected on a newer connection the call is a no-op: a late
	// disconnect from a stale connection must not evict the live one.
	Unregister(connID string) (Entry, bool)
	Lookup(userID string) (Entry, bool)
	Size() int
	// ListAll snapshots the online set, ordered by user id.
	ListAll() []Entry
}

type memoryRegistry struct {
	mu     sync.RWMutex
	byUser map[string]Entry
	byConn map[string]string // conn_id -> user_id, keyed for stale-safe removal
}

func NewMemoryRegistry() Registry {
	return &memoryRegistry{
		byUser: make(map[string]Entry),
		byConn: make(map[string]string),
	}
}

func (r *memoryRegistry) Register(userID, connID, displayName string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	prev, replaced := r.byUser[userID]
	if replaced {
		delete(r.byConn, prev.ConnID)
	}
	r.byUser[userID] = Entry{UserID: userID, ConnID: connID, DisplayName: displayName}
	r.byConn[connID] = userID
	return replaced
}

func (r *memoryRegistry) Unregister(connID string) (Entry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	userID, ok := r.byConn[connID]
	if !ok {
		return Entry{}, false
	}
	e := r.byUser[userID]
	delete(r.byUser, userID)
	delete(r.byConn, connID)
	return e, true
}

func (r *memoryRegistry) Lookup(userID string) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.byUser[userID]
	return e, ok
}

func (r *memoryRegistry) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byUser)
}

func (r *memoryRegistry) ListAll() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Entry, 0, len(r.byUser))
	for _, e := range r.byUser {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out
}
