package output

import (
	"time"

	"tarot-reading/internal/domain"
)

// SessionStore interface - Output port
// Keeps one ReadingSession per opaque session identifier (cookie UUID or LINE user ID).
// Implementations must be thread-safe for concurrent access.
type SessionStore interface {
	// GetSession retrieves a reading session by identifier.
	// Returns nil if the session does not exist or has expired; expired
	// sessions are removed lazily and LastAccessTime is refreshed for live ones.
	// Returns an error only if there is a storage access failure.
	GetSession(sessionID string) (*domain.ReadingSession, error)

	// UpdateSession creates or overwrites the session stored under session.ID
	UpdateSession(session *domain.ReadingSession) error

	// DeleteSession removes a session. Deleting a missing session is not an error.
	DeleteSession(sessionID string) error

	// GetTimeout returns the idle timeout given to new sessions
	GetTimeout() time.Duration
}
