package gamesession

import (
	"testing"
)

func TestSessionRecoversOnceFromInvalidatedResume(t *testing.T) {
	sess, store, client, rec, adventureID, token := newTestSession(t)

	if err := sess.HandleInput("the story continues quietly", false); err != nil {
		t.Fatalf("seed input: %v", err)
	}
	waitUntilIdle(t, sess)

	handle, err := store.Load(adventureID, token)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	snap := handle.Snapshot()
	if snap.AgentSessionID == nil || *snap.AgentSessionID == "" {
		t.Fatal("expected an agent session id to have been recorded")
	}
	sessionID := *snap.AgentSessionID

	client.RejectNextResume(sessionID)

	if err := sess.HandleInput("what happens next?", false); err != nil {
		t.Fatalf("handle input: %v", err)
	}
	waitUntilIdle(t, sess)

	statuses := rec.snapshotToolStatuses()
	sawReconnecting := false
	for _, s := range statuses {
		if s == "Reconnecting…" {
			sawReconnecting = true
		}
	}
	if !sawReconnecting {
		t.Fatalf("expected a Reconnecting… tool_status during recovery, got %v", statuses)
	}

	if len(rec.snapshotErrors()) != 0 {
		t.Fatalf("recovery should succeed transparently, got errors: %v", rec.snapshotErrors())
	}

	handle2, err := store.Load(adventureID, token)
	if err != nil {
		t.Fatalf("reload after recovery: %v", err)
	}
	snap2 := handle2.Snapshot()
	if snap2.AgentSessionID == nil || *snap2.AgentSessionID == sessionID {
		t.Fatal("expected a fresh agent session id after recovery")
	}
}

func TestRecoveryCounterResetsAfterCleanCompletion(t *testing.T) {
	sess, _, _, _, _, _ := newTestSession(t)

	if err := sess.HandleInput("seed", false); err != nil {
		t.Fatalf("seed input: %v", err)
	}
	waitUntilIdle(t, sess)

	sess.mu.Lock()
	attempt := sess.recoveryAttempt
	sess.mu.Unlock()
	if attempt != 0 {
		t.Fatalf("expected recoveryAttempt reset to 0 after a clean turn, got %d", attempt)
	}
}
