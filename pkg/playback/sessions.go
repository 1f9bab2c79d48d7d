package playback

import "sync"

// Sessions keeps the sessions of a long-running server by ID.
type Sessions struct {
	engine *Engine

	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewSessions(engine *Engine) *Sessions {
	return &Sessions{
		engine:   engine,
		sessions: make(map[string]*Session),
	}
}

// Start opens and registers a session. Sessions that cannot start are
// not registered.
func (r *Sessions) Start(storyID string) (*Session, error) {
	s, err := r.engine.Start(storyID)
	if err != nil {
		return s, err
	}
	r.mu.Lock()
	r.sessions[s.ID()] = s
	r.mu.Unlock()
	return s, nil
}

func (r *Sessions) Get(id string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	return s, ok
}

func (r *Sessions) Delete(id string) {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
}

// Len returns the number of registered sessions.
func (r *Sessions) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Engine returns the engine sessions are started on.
func (r *Sessions) Engine() *Engine {
	return r.engine
}
