package schedule

import (
	"context"
	"fmt"
	"sync"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
)

// Manager hands out one Service per faculty member, creating sessions
// lazily. A fresh session gets an initial source refresh before it is ever
// read from.
type Manager struct {
	newSession func(facultyID string) *Service
	logger     core.Logger

	mu       sync.Mutex
	sessions map[string]*Service
}

func NewManager(newSession func(facultyID string) *Service, logger core.Logger) *Manager {
	return &Manager{
		newSession: newSession,
		logger:     logger,
		sessions:   make(map[string]*Service),
	}
}

// Session returns the faculty member's session, creating and priming it on
// first access.
func (m *Manager) Session(ctx context.Context, facultyID string) (*Service, error) {
	m.mu.Lock()
	svc, ok := m.sessions[facultyID]
	if !ok {
		svc = m.newSession(facultyID)
		m.sessions[facultyID] = svc
	}
	m.mu.Unlock()

	if !ok {
		if err := svc.Refresh(ctx); err != nil {
			// drop the unprimed session so the next request retries the prime
			m.mu.Lock()
			if m.sessions[facultyID] == svc {
				delete(m.sessions, facultyID)
			}
			m.mu.Unlock()
			return nil, errors.Wrap(err, "priming session")
		}
	}
	return svc, nil
}

// RefreshAll re-runs the source adapters of every live session; used by the
// periodic refresh loop. Failures are logged per session, never propagated.
func (m *Manager) RefreshAll(ctx context.Context) {
	m.mu.Lock()
	sessions := make([]*Service, 0, len(m.sessions))
	for _, svc := range m.sessions {
		sessions = append(sessions, svc)
	}
	m.mu.Unlock()

	for _, svc := range sessions {
		if err := svc.Refresh(ctx); err != nil {
			m.logger.Error(fmt.Sprintf("refreshing session %q: %v", svc.FacultyID(), err), err)
		}
	}
}
