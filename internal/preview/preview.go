// Package preview tracks the single active trailer preview per session.
// The browser opens a preview before the trailer fetch resolves, so the
// store has to make sure a slow fetch for an old preview can never
// overwrite a newer one.
package preview

import (
	"sync"
	"time"

	"github.com/Kayushan/JSTREAM/internal/catalog"
	"github.com/Kayushan/JSTREAM/internal/trailer"
)

// State is the lifecycle of a preview.
type State string

const (
	StateLoading State = "loading"
	StateReady   State = "ready"
	StateError   State = "error"
)

// Preview is the active preview for one session.
type Preview struct {
	Generation int               `json:"generation"`
	MediaType  catalog.MediaType `json:"media_type"`
	TmdbID     int               `json:"tmdb_id"`
	State      State             `json:"state"`
	Trailer    *trailer.Trailer  `json:"trailer,omitempty"`
	Error      string            `json:"error,omitempty"`
	OpenedAt   time.Time         `json:"opened_at"`
}

type entry struct {
	generation int
	preview    *Preview
}

// Store holds at most one active preview per session. Open bumps the
// session's generation; results delivered for an older generation are
// dropped, so opening preview B while A is still fetching can never end
// with A's trailer shown under B.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*entry
}

// NewStore creates an empty preview store.
func NewStore() *Store {
	return &Store{sessions: make(map[string]*entry)}
}

// Open starts a new preview for a session and returns its generation.
// Any previous preview for the session is discarded.
func (s *Store) Open(sessionID string, mediaType catalog.MediaType, tmdbID int) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.sessions[sessionID]
	if e == nil {
		e = &entry{}
		s.sessions[sessionID] = e
	}
	e.generation++
	e.preview = &Preview{
		Generation: e.generation,
		MediaType:  mediaType,
		TmdbID:     tmdbID,
		State:      StateLoading,
		OpenedAt:   time.Now().UTC(),
	}
	return e.generation
}

// SetTrailer delivers a fetch result for a generation. Stale deliveries
// (an older generation, or a closed preview) are dropped and reported
// as false.
func (s *Store) SetTrailer(sessionID string, generation int, t *trailer.Trailer) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.sessions[sessionID]
	if e == nil || e.preview == nil || e.generation != generation {
		return false
	}
	e.preview.State = StateReady
	e.preview.Trailer = t
	return true
}

// SetError records a failed fetch for a generation, subject to the same
// staleness rule as SetTrailer.
func (s *Store) SetError(sessionID string, generation int, message string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.sessions[sessionID]
	if e == nil || e.preview == nil || e.generation != generation {
		return false
	}
	e.preview.State = StateError
	e.preview.Error = message
	return true
}

// Get returns the session's active preview, or nil.
func (s *Store) Get(sessionID string) *Preview {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.sessions[sessionID]
	if e == nil || e.preview == nil {
		return nil
	}
	copied := *e.preview
	return &copied
}

// Close discards the session's active preview. The generation keeps
// counting so in-flight fetches for the closed preview stay dead.
func (s *Store) Close(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e := s.sessions[sessionID]; e != nil {
		e.generation++
		e.preview = nil
	}
}

// Drop forgets a session entirely. Used when the session is revoked.
func (s *Store) Drop(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
}
