package booking

import (
	"context"
	"sync"
	"time"

	"salonflow/models"
)

// MemorySessionStore is a process-local SessionStore used in development and
// tests. It applies the same TTL and migration semantics as the Redis store.
type MemorySessionStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[string]memorySession
	now      func() time.Time
}

type memorySession struct {
	data      models.BookingSession
	expiresAt time.Time
}

func NewMemorySessionStore(ttl time.Duration) *MemorySessionStore {
	return &MemorySessionStore{
		ttl:      ttl,
		sessions: make(map[string]memorySession),
		now:      time.Now,
	}
}

func (s *MemorySessionStore) Get(_ context.Context, customerID string) (*models.BookingSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.sessions[customerID]
	if !ok || s.now().After(entry.expiresAt) {
		delete(s.sessions, customerID)
		return nil, ErrSessionNotFound
	}
	session := models.MigrateSession(entry.data)
	return &session, nil
}

func (s *MemorySessionStore) Save(_ context.Context, session *models.BookingSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.CustomerID] = memorySession{
		data:      *session,
		expiresAt: s.now().Add(s.ttl),
	}
	return nil
}

func (s *MemorySessionStore) Delete(_ context.Context, customerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, customerID)
	return nil
}
