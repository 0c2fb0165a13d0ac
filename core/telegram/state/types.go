package state

import tele "gopkg.in/telebot.v4"

// State identifies a finite-state-machine step used in conversations.
type State string

const (
	// StateIdle indicates there is no active conversation with the user.
	StateIdle State = "idle"
)

// Session stores conversation state and an in-progress flow draft for a user.
// Draft holds a flow-specific struct set by the handler that starts the flow;
// DraftAs recovers it with its concrete type.
type Session struct {
	State State
	Draft any
}

// Manager orchestrates user sessions and FSM state transitions.
type Manager interface {
	Get(userID int64) *Session
	SetDraft(userID int64, draft any)
	Draft(userID int64) (any, bool)
	ClearDraft(userID int64)
	Clear(userID int64)

	// Dialog state
	SetState(userID int64, st State)
	GetState(userID int64) State
	HasState(userID int64) bool
	ClearState(userID int64)

	InProgress(userID int64) bool
	ManagerHandler(c tele.Context) error
}

// DraftAs retrieves the current draft for a user as a concrete type.
func DraftAs[T any](mgr Manager, userID int64) (T, bool) {
	var zero T
	if mgr == nil {
		return zero, false
	}
	raw, ok := mgr.Draft(userID)
	if !ok {
		return zero, false
	}
	v, ok := raw.(T)
	if !ok {
		return zero, false
	}
	return v, true
}
