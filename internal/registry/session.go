package registry

import "sync"

// Session holds the backend-assigned session identifier for one workflow
// instance. The backend creates it lazily on first contact; once adopted it
// is reused for every subsequent call and cleared only by Reset.
type Session struct {
	mu sync.Mutex
	id string
}

func NewSession() *Session {
	return &Session{}
}

// Get returns the current session id and whether one has been adopted.
// It never triggers network activity.
func (s *Session) Get() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id, s.id != ""
}

// GetOrEmpty returns the current session id, or the empty string when none
// exists yet.
func (s *Session) GetOrEmpty() string {
	id, _ := s.Get()
	return id
}

// Adopt stores id as the session id. Adopting the same id twice is a no-op;
// a different id overwrites, since the backend is the source of truth.
// Empty ids are ignored.
func (s *Session) Adopt(id string) {
	if id == "" {
		return
	}
	s.mu.Lock()
	s.id = id
	s.mu.Unlock()
}

// Reset clears the session id.
func (s *Session) Reset() {
	s.mu.Lock()
	s.id = ""
	s.mu.Unlock()
}
