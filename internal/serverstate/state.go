package serverstate

import "sync"

// State is the shared server lifecycle snapshot. When a Redis store is
// configured, replicas observe each other's status and drain flag
// through it.
type State struct {
	Status   string `json:"status"`
	Draining bool   `json:"draining"`
}

// Store persists the server state.
type Store interface {
	Load() State
	Store(State)
}

type memoryStore struct {
	mu sync.RWMutex
	st State
}

// NewMemoryStore returns an in-process Store.
func NewMemoryStore() Store {
	return &memoryStore{st: State{Status: "not_ready"}}
}

func (m *memoryStore) Load() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.st
}

func (m *memoryStore) Store(s State) {
	m.mu.Lock()
	m.st = s
	m.mu.Unlock()
}

var active Store = NewMemoryStore()

// UseStore swaps the backing store. Intended for startup and tests.
func UseStore(s Store) {
	active = s
}

// SetState sets the server state string, preserving the drain flag.
func SetState(s string) {
	st := active.Load()
	st.Status = s
	active.Store(st)
}

// GetState returns the current server state.
func GetState() string {
	st := active.Load()
	if st.Status == "" {
		return "unknown"
	}
	return st.Status
}

// MarkReady marks the server ready to accept sessions, clearing any
// drain flag a previous run left in a shared store.
func MarkReady() {
	active.Store(State{Status: "ready"})
}

// StartDrain marks the server as draining. The flag persists through
// the store, so every replica sharing it stops accepting new sessions.
func StartDrain() {
	active.Store(State{Status: "draining", Draining: true})
}

// IsDraining reports whether the server is draining.
func IsDraining() bool {
	return active.Load().Draining
}
