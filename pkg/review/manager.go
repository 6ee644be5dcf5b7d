package review

import (
	"sync"

	"github.com/google/uuid"

	"github.com/Ramsey-B/aster/pkg/events"
	"github.com/Ramsey-B/aster/pkg/metrics"
	"github.com/Ramsey-B/aster/pkg/models"
)

// Manager is the in-memory registry of live review sessions. Sessions are
// tenant-scoped; a session is only reachable under the tenant it was
// created for.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	sink     events.Sink
}

func NewManager(sink events.Sink) *Manager {
	if sink == nil {
		sink = events.NopSink{}
	}
	return &Manager{
		sessions: make(map[string]*Session),
		sink:     sink,
	}
}

// Create builds a session from a batch of raw matches and registers it
func (m *Manager) Create(tenantID string, raw []models.RawMatch) *Session {
	session := NewSession(uuid.NewString(), tenantID, raw, m.sink)

	m.mu.Lock()
	m.sessions[session.ID] = session
	m.mu.Unlock()

	metrics.ReviewSessionsActive.Inc()
	return session
}

// Get returns the session by id, or nil when unknown or owned by a
// different tenant.
func (m *Manager) Get(tenantID, id string) *Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, ok := m.sessions[id]
	if !ok || session.TenantID != tenantID {
		return nil
	}
	return session
}

// Delete discards a session. Deleting an unknown id is a no-op.
func (m *Manager) Delete(tenantID, id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[id]
	if !ok || session.TenantID != tenantID {
		return
	}
	delete(m.sessions, id)
	metrics.ReviewSessionsActive.Dec()
}

// List returns the tenant's sessions in unspecified order
func (m *Manager) List(tenantID string) []*Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Session, 0)
	for _, session := range m.sessions {
		if session.TenantID == tenantID {
			out = append(out, session)
		}
	}
	return out
}
