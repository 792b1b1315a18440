package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/guilhermegouw/bioexplorer/internal/debug"
	"github.com/guilhermegouw/bioexplorer/internal/storage"
)

// DefaultKey is the medium key holding the session collection.
const DefaultKey = "bioexplorer-chat-sessions"

// QuotaHint is shown to the user when saving fails for lack of space.
const QuotaHint = "Storage is full. Clear old chats to keep saving."

// ErrQuotaExceeded is returned by Save when the medium is full.
// The in-memory collection is unaffected.
var ErrQuotaExceeded = storage.ErrQuotaExceeded

// Store owns the session collection and the active-session pointer, and
// synchronizes the collection with a storage medium.
//
// The collection is ordered most-recent-first by insertion. The in-memory
// collection is authoritative regardless of persistence outcomes.
type Store struct {
	medium   storage.Medium
	key      string
	sessions []*Session
	activeID string
	mu       sync.RWMutex
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithKey overrides the medium key, e.g. to scope history to one user.
func WithKey(key string) StoreOption {
	return func(s *Store) {
		s.key = key
	}
}

// NewStore creates an empty store backed by medium.
func NewStore(medium storage.Medium, opts ...StoreOption) *Store {
	s := &Store{
		medium: medium,
		key:    DefaultKey,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load replaces the in-memory collection with the persisted one.
//
// A missing record yields an empty collection and no error. A malformed
// record is deleted from the medium, the collection is reset to empty, and a
// *CorruptError is returned as a diagnostic. Load never applies part of a
// corrupt record. The active pointer is cleared.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions = nil
	s.activeID = ""

	data, err := s.medium.Get(ctx, s.key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil
		}
		debug.Error("store", err, "reading sessions")
		return fmt.Errorf("reading sessions: %w", err)
	}

	sessions, err := Decode(data)
	if err != nil {
		var corrupt *CorruptError
		if errors.As(err, &corrupt) {
			debug.Error("store", err, "discarding corrupt sessions")
			if delErr := s.medium.Delete(ctx, s.key); delErr != nil {
				debug.Error("store", delErr, "deleting corrupt sessions")
			}
		}
		return err
	}

	s.sessions = sessions
	debug.Event("store", "load", fmt.Sprintf("sessions=%d", len(sessions)))
	return nil
}

// Save persists the full collection. An empty collection is never written,
// so a transient empty state cannot clobber saved history.
func (s *Store) Save(ctx context.Context) error {
	s.mu.RLock()
	if len(s.sessions) == 0 {
		s.mu.RUnlock()
		return nil
	}
	data, err := Encode(s.sessions)
	s.mu.RUnlock()
	if err != nil {
		return err
	}

	if err := s.medium.Put(ctx, s.key, data); err != nil {
		debug.Error("store", err, "saving sessions")
		if errors.Is(err, storage.ErrQuotaExceeded) {
			return fmt.Errorf("saving sessions: %w", ErrQuotaExceeded)
		}
		return fmt.Errorf("saving sessions: %w", err)
	}
	return nil
}

// Purge drops every session and removes the persisted record.
// This is the recovery path offered when storage is full.
func (s *Store) Purge(ctx context.Context) error {
	s.mu.Lock()
	s.sessions = nil
	s.activeID = ""
	s.mu.Unlock()

	if err := s.medium.Delete(ctx, s.key); err != nil {
		return fmt.Errorf("purging sessions: %w", err)
	}
	return nil
}

// SetActive points the active selection at id. The id is not validated; an
// unknown id simply yields no active session.
func (s *Store) SetActive(id string) {
	s.mu.Lock()
	s.activeID = id
	s.mu.Unlock()
}

// ActiveID returns the active pointer, which may reference no session.
func (s *Store) ActiveID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeID
}

// Active returns a copy of the active session.
func (s *Store) Active() (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getLocked(s.activeID)
}

// Get returns a copy of the session with the given id.
func (s *Store) Get(id string) (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getLocked(id)
}

func (s *Store) getLocked(id string) (*Session, bool) {
	if id == "" {
		return nil, false
	}
	for _, sess := range s.sessions {
		if sess.ID == id {
			return sess.Clone(), true
		}
	}
	return nil, false
}

// Sessions returns copies of all sessions in collection order.
func (s *Store) Sessions() []*Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Session, len(s.sessions))
	for i, sess := range s.sessions {
		out[i] = sess.Clone()
	}
	return out
}

// Insert adds a session at the front of the collection.
func (s *Store) Insert(sess *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = append([]*Session{sess.Clone()}, s.sessions...)
}

// Remove deletes the session with the given id. The active pointer is left
// untouched; restoring it is the caller's decision.
func (s *Store) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, sess := range s.sessions {
		if sess.ID == id {
			s.sessions = append(s.sessions[:i:i], s.sessions[i+1:]...)
			return true
		}
	}
	return false
}

// Update applies fn to the stored session with the given id.
// It reports whether the session exists.
func (s *Store) Update(id string, fn func(*Session)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, sess := range s.sessions {
		if sess.ID == id {
			fn(sess)
			return true
		}
	}
	return false
}
