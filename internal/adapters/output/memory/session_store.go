package memory

import (
	"sync"
	"sync/atomic"
	"time"

	"tarot-reading/internal/domain"
	"tarot-reading/internal/ports/output"
)

// Compile-time check to ensure MemorySessionStore implements SessionStore interface
var _ output.SessionStore = (*MemorySessionStore)(nil)

// MemorySessionStore struct - Output adapter for in-memory session storage
// Uses sync.Map for thread-safe concurrent access to reading sessions.
// Sessions live only as long as the process.
type MemorySessionStore struct {
	sessions sync.Map // session ID -> *entry
	timeout  time.Duration
}

// entry tracks expiry apart from the session so the purge sweep never reads
// session fields owned by the caller's per-session lock
type entry struct {
	session    *domain.ReadingSession
	lastAccess atomic.Int64 // unix nanos
}

func newEntry(session *domain.ReadingSession, at time.Time) *entry {
	e := &entry{session: session}
	e.lastAccess.Store(at.UnixNano())
	return e
}

func (e *entry) expired(timeout time.Duration, now time.Time) bool {
	return now.Sub(time.Unix(0, e.lastAccess.Load())) > timeout
}

// NewMemorySessionStore creates a new in-memory session store.
// timeout: idle duration after which sessions expire
func NewMemorySessionStore(timeout time.Duration) *MemorySessionStore {
	return &MemorySessionStore{
		timeout: timeout,
	}
}

// GetTimeout returns the configured session timeout duration.
// This value is used when creating new reading sessions.
func (m *MemorySessionStore) GetTimeout() time.Duration {
	return m.timeout
}

// GetSession retrieves a reading session by identifier.
// Returns nil if the session does not exist or has expired. Expired sessions
// are deleted (lazy cleanup). LastAccessTime is updated for valid sessions.
func (m *MemorySessionStore) GetSession(sessionID string) (*domain.ReadingSession, error) {
	value, exists := m.sessions.Load(sessionID)
	if !exists {
		return nil, nil
	}

	e, ok := value.(*entry)
	if !ok || e.session == nil {
		// If data is malformed, delete and return nil
		m.sessions.CompareAndDelete(sessionID, value)
		return nil, nil
	}

	now := time.Now()
	if e.expired(m.timeout, now) {
		m.sessions.CompareAndDelete(sessionID, value)
		return nil, nil
	}

	e.lastAccess.Store(now.UnixNano())
	e.session.LastAccessTime = now

	return e.session, nil
}

// UpdateSession creates or updates a reading session.
// The session's LastAccessTime is updated to the current time before storing.
func (m *MemorySessionStore) UpdateSession(session *domain.ReadingSession) error {
	now := time.Now()
	session.LastAccessTime = now
	m.sessions.Store(session.ID, newEntry(session, now))
	return nil
}

// DeleteSession removes a reading session.
// This operation is idempotent - deleting a non-existent session does not return an error.
func (m *MemorySessionStore) DeleteSession(sessionID string) error {
	m.sessions.Delete(sessionID)
	return nil
}

// PurgeExpired deletes every expired session and returns how many were removed.
// An entry replaced while the sweep runs is left alone.
func (m *MemorySessionStore) PurgeExpired() int {
	removed := 0
	now := time.Now()
	m.sessions.Range(func(key, value any) bool {
		e, ok := value.(*entry)
		if (!ok || e.expired(m.timeout, now)) && m.sessions.CompareAndDelete(key, value) {
			removed++
		}
		return true
	})
	return removed
}
