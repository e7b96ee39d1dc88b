package handlers

import (
	"sync"

	"github.com/google/uuid"

	"github.com/eternal-forge/eternal-forge/internal/sim/draw"
	"github.com/eternal-forge/eternal-forge/internal/sim/goldfish"
)

// SessionStore holds simulator sessions in memory, keyed by UUID. Sessions
// are persisted as serializable state snapshots and restored into a fresh
// simulator on every access, so concurrent requests never share a live
// simulator. Sessions live until explicitly deleted or the server restarts.
type SessionStore struct {
	mu       sync.Mutex
	draw     map[string]*draw.State
	goldfish map[string]*goldfish.State
}

// NewSessionStore creates an empty session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		draw:     make(map[string]*draw.State),
		goldfish: make(map[string]*goldfish.State),
	}
}

// CreateDraw registers a draw simulator and returns its session ID.
func (s *SessionStore) CreateDraw(sim *draw.Simulator) string {
	id := uuid.NewString()
	s.mu.Lock()
	s.draw[id] = sim.Snapshot()
	s.mu.Unlock()
	return id
}

// Draw restores the draw simulator for the given session ID.
func (s *SessionStore) Draw(id string) (*draw.Simulator, bool) {
	s.mu.Lock()
	state, ok := s.draw[id]
	s.mu.Unlock()
	if !ok {
		return nil, false
	}

	// Stored states came from Snapshot, so Restore cannot reject them.
	sim, err := draw.Restore(state, nil)
	if err != nil {
		return nil, false
	}
	return sim, true
}

// SaveDraw persists the simulator's current state back into the session.
func (s *SessionStore) SaveDraw(id string, sim *draw.Simulator) {
	s.mu.Lock()
	s.draw[id] = sim.Snapshot()
	s.mu.Unlock()
}

// DeleteDraw removes a draw session. Returns false if it didn't exist.
func (s *SessionStore) DeleteDraw(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.draw[id]; !ok {
		return false
	}
	delete(s.draw, id)
	return true
}

// CreateGoldfish registers a goldfish simulator and returns its session ID.
func (s *SessionStore) CreateGoldfish(sim *goldfish.Simulator) string {
	id := uuid.NewString()
	s.mu.Lock()
	s.goldfish[id] = sim.Snapshot()
	s.mu.Unlock()
	return id
}

// Goldfish restores the goldfish simulator for the given session ID.
func (s *SessionStore) Goldfish(id string) (*goldfish.Simulator, bool) {
	s.mu.Lock()
	state, ok := s.goldfish[id]
	s.mu.Unlock()
	if !ok {
		return nil, false
	}

	sim, err := goldfish.Restore(state, nil)
	if err != nil {
		return nil, false
	}
	return sim, true
}

// SaveGoldfish persists the simulator's current state back into the session.
func (s *SessionStore) SaveGoldfish(id string, sim *goldfish.Simulator) {
	s.mu.Lock()
	s.goldfish[id] = sim.Snapshot()
	s.mu.Unlock()
}

// DeleteGoldfish removes a goldfish session. Returns false if it didn't exist.
func (s *SessionStore) DeleteGoldfish(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.goldfish[id]; !ok {
		return false
	}
	delete(s.goldfish, id)
	return true
}
