package capture

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrSessionNotFound is returned when a session lookup matches no live
// session.
var ErrSessionNotFound = errors.New("session not found")

// Manager owns the live sessions of a kiosk deployment. Sessions live in
// memory only: a restart drops them, which for a walk-up kiosk just means
// the current customer starts over.
type Manager struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*Session

	resetDelay time.Duration
	notify     func(sessionID uuid.UUID, kind JobKind)
	logger     *slog.Logger
}

// NewManager creates a session manager. resetDelay is how long the
// thank-you screen stays up before the session resets for the next
// customer. notify is threaded into every session's job tracker.
func NewManager(resetDelay time.Duration, notify func(sessionID uuid.UUID, kind JobKind), logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		sessions:   make(map[uuid.UUID]*Session),
		resetDelay: resetDelay,
		notify:     notify,
		logger:     logger.With(slog.String("component", "session_manager")),
	}
}

// Create starts a new session on the preferences screen.
func (m *Manager) Create() *Session {
	s := NewSession(m.logger, m.notify)

	m.mu.Lock()
	m.sessions[s.ID()] = s
	count := len(m.sessions)
	m.mu.Unlock()

	m.logger.Info("session created",
		slog.String("session_id", s.ID().String()),
		slog.Int("live_sessions", count))
	return s
}

// Get retrieves a live session by ID.
// Returns ErrSessionNotFound if the session does not exist.
func (m *Manager) Get(id uuid.UUID) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// ScheduleReset arms the thank-you timer: after the configured delay the
// session resets to the preferences screen for the next customer.
func (m *Manager) ScheduleReset(id uuid.UUID) {
	s, err := m.Get(id)
	if err != nil {
		return
	}

	m.logger.Debug("thank-you reset scheduled",
		slog.String("session_id", id.String()),
		slog.Duration("delay", m.resetDelay))

	time.AfterFunc(m.resetDelay, s.Reset)
}

// Purge drops sessions that have not been touched for maxAge. Kiosk clients
// normally reuse one session forever, but abandoned sessions from crashed
// clients would otherwise accumulate.
func (m *Manager) Purge(maxAge time.Duration) int {
	cutoff := time.Now().UTC().Add(-maxAge)

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, s := range m.sessions {
		if s.View().UpdatedAt.Before(cutoff) {
			delete(m.sessions, id)
			removed++
		}
	}

	if removed > 0 {
		m.logger.Info("purged stale sessions",
			slog.Int("removed", removed),
			slog.Int("live_sessions", len(m.sessions)))
	}
	return removed
}
