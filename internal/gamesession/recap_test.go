package gamesession

import (
	"testing"
)

func TestHandleRecapRefusesWithTooLittleHistory(t *testing.T) {
	sess, _, _, rec, _, _ := newTestSession(t)

	sess.HandleRecap()

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.recapErrors) != 1 {
		t.Fatalf("expected a single recap error, got %v", rec.recapErrors)
	}
	if rec.recapStarted {
		t.Fatal("recap should not have started")
	}
}

func TestHandleRecapClearsHistoryAndFeedsCannedPrompt(t *testing.T) {
	sess, store, _, rec, adventureID, token := newTestSession(t)

	for i := 0; i < 10; i++ {
		if err := sess.HandleInput("another beat in the story", false); err != nil {
			t.Fatalf("seed input %d: %v", i, err)
		}
		waitUntilIdle(t, sess)
	}
	var beforeID string
	if id := sess.handle.Snapshot().AgentSessionID; id != nil {
		beforeID = *id
	}

	sess.HandleRecap()
	waitUntilIdle(t, sess)

	rec.mu.Lock()
	started, complete := rec.recapStarted, rec.recapComplete
	rec.mu.Unlock()
	if !started || !complete {
		t.Fatalf("expected recap_started and recap_complete, got started=%v complete=%v", started, complete)
	}

	handle, err := store.Load(adventureID, token)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	// Recap clears the old agent session id; the canned recap turn then
	// starts a fresh conversation whose new id is persisted.
	snap := handle.Snapshot()
	if snap.AgentSessionID != nil && *snap.AgentSessionID == beforeID {
		t.Fatal("expected agent session id cleared by recap")
	}

	hist := handle.History()
	if hist.Summary == nil || hist.Summary.Text == "" {
		t.Fatal("expected a rolling summary to have been produced")
	}
	// The canned recap turn runs as a system prompt, same as the forced
	// save, so it narrates a greeting without re-appending to history.
	if len(hist.Entries) != 0 {
		t.Fatalf("expected history to stay cleared after recap, got %d entries: %+v", len(hist.Entries), hist.Entries)
	}
}
