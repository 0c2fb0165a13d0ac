package state

import (
	"sync"

	"github.com/m3rciful/p2pbot/core/logger"
	tghelpers "github.com/m3rciful/p2pbot/core/telegram/helpers"
	"log/slog"

	tele "gopkg.in/telebot.v4"
)

type memoryManager struct {
	mu       sync.RWMutex
	sessions map[int64]*Session
}

// NewMemoryManager builds a process-local Manager. Sessions do not
// survive a restart, which is acceptable for short conversation flows.
func NewMemoryManager() Manager {
	return &memoryManager{sessions: make(map[int64]*Session)}
}

// ensure returns the user's session, creating an idle one if missing.
// Callers must hold the write lock.
func (m *memoryManager) ensure(userID int64) *Session {
	sess, ok := m.sessions[userID]
	if !ok {
		sess = &Session{State: StateIdle}
		m.sessions[userID] = sess
	}
	return sess
}

// Get returns the stored session, or a detached idle one.
func (m *memoryManager) Get(userID int64) *Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if sess, ok := m.sessions[userID]; ok {
		return sess
	}
	return &Session{State: StateIdle}
}

// SetDraft attaches the in-progress flow draft to the user's session.
func (m *memoryManager) SetDraft(userID int64, draft any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ensure(userID).Draft = draft
}

// Draft returns the current flow draft, if one is set.
func (m *memoryManager) Draft(userID int64) (any, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sess, ok := m.sessions[userID]
	if !ok || sess.Draft == nil {
		return nil, false
	}
	return sess.Draft, true
}

// ClearDraft drops the draft but keeps the session.
func (m *memoryManager) ClearDraft(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if sess, ok := m.sessions[userID]; ok {
		sess.Draft = nil
	}
}

// Clear removes the user's session entirely.
func (m *memoryManager) Clear(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, userID)
}

// SetState moves the user to the given conversation step.
func (m *memoryManager) SetState(userID int64, st State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ensure(userID).State = st
}

// GetState returns the user's current step, or StateIdle.
func (m *memoryManager) GetState(userID int64) State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if sess, ok := m.sessions[userID]; ok {
		return sess.State
	}
	return StateIdle
}

// ClearState returns the user to idle without touching the draft.
func (m *memoryManager) ClearState(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if sess, ok := m.sessions[userID]; ok {
		sess.State = StateIdle
	}
}

// HasState reports whether the user is in a non-idle step.
func (m *memoryManager) HasState(userID int64) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sess, ok := m.sessions[userID]
	return ok && sess.State != StateIdle
}

// InProgress is an alias of HasState kept for readability at call sites.
func (m *memoryManager) InProgress(userID int64) bool {
	return m.HasState(userID)
}

// ManagerHandler dispatches the update to the handler registered for
// the user's current step. Updates in unregistered steps are swallowed.
func (m *memoryManager) ManagerHandler(c tele.Context) error {
	userID := c.Sender().ID
	current := m.GetState(userID)
	ctx := tghelpers.BuildContext(c)
	logger.Debug(ctx, "tg", "fsm.manager",
		slog.String("status", "ok"),
		slog.Int64("user_id", userID),
		slog.String("state", string(current)),
	)

	if handler, ok := handlers[current]; ok {
		return handler(c)
	}
	return nil
}
