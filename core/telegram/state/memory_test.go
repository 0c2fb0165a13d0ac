package state

import "testing"

type testDraft struct {
	Amount string
	Dest   string
}

func TestMemoryManagerStateTransitions(t *testing.T) {
	mgr := NewMemoryManager()
	const userID int64 = 42

	if mgr.GetState(userID) != StateIdle {
		t.Fatalf("expected idle state for unknown user")
	}
	if mgr.InProgress(userID) {
		t.Fatalf("unknown user must not be in progress")
	}

	mgr.SetState(userID, State("deal_amount"))
	if got := mgr.GetState(userID); got != State("deal_amount") {
		t.Fatalf("state = %s, expected deal_amount", got)
	}
	if !mgr.InProgress(userID) {
		t.Fatalf("user with active state must be in progress")
	}

	mgr.ClearState(userID)
	if mgr.GetState(userID) != StateIdle {
		t.Fatalf("expected idle state after ClearState")
	}
}

func TestMemoryManagerDraftLifecycle(t *testing.T) {
	mgr := NewMemoryManager()
	const userID int64 = 7

	if _, ok := mgr.Draft(userID); ok {
		t.Fatalf("unexpected draft for fresh user")
	}

	mgr.SetDraft(userID, &testDraft{Amount: "12.50", Dest: "card"})
	draft, ok := DraftAs[*testDraft](mgr, userID)
	if !ok {
		t.Fatalf("expected typed draft")
	}
	if draft.Amount != "12.50" || draft.Dest != "card" {
		t.Fatalf("draft mismatch: %+v", draft)
	}

	// wrong type must not match
	if _, ok := DraftAs[string](mgr, userID); ok {
		t.Fatalf("DraftAs must fail for mismatched type")
	}

	mgr.ClearDraft(userID)
	if _, ok := mgr.Draft(userID); ok {
		t.Fatalf("draft must be gone after ClearDraft")
	}
}

func TestMemoryManagerClearDropsSession(t *testing.T) {
	mgr := NewMemoryManager()
	const userID int64 = 9

	mgr.SetState(userID, State("register_name"))
	mgr.SetDraft(userID, &testDraft{Dest: "wallet"})
	mgr.Clear(userID)

	if mgr.GetState(userID) != StateIdle {
		t.Fatalf("expected idle state after Clear")
	}
	if _, ok := mgr.Draft(userID); ok {
		t.Fatalf("expected no draft after Clear")
	}
}
