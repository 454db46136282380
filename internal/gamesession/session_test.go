package gamesession

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/corvran/adventure-gm/internal/adventure"
	"github.com/corvran/adventure-gm/internal/agentclient"
	"github.com/corvran/adventure-gm/internal/imagesvc"
	"github.com/corvran/adventure-gm/internal/panels"
)

// recorder collects every event a session emits, guarded by its own lock
// since the queue processor runs on a background goroutine.
type recorder struct {
	mu             sync.Mutex
	chunks         []string
	responseEnds   []string
	toolStatuses   []string
	errors         []string
	themeChanges   []adventure.Theme
	recapStarted   bool
	recapComplete  bool
	recapErrors    []string
	panelsCreated  []panels.Panel
}

func newRecorderEvents(r *recorder) Events {
	return Events{
		GMResponseChunk: func(messageID, text string) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.chunks = append(r.chunks, text)
		},
		GMResponseEnd: func(messageID string) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.responseEnds = append(r.responseEnds, messageID)
		},
		ToolStatus: func(active bool, description string) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.toolStatuses = append(r.toolStatuses, description)
		},
		Error: func(code, message string, retryable bool, details string) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.errors = append(r.errors, code)
		},
		ThemeChange: func(theme adventure.Theme) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.themeChanges = append(r.themeChanges, theme)
		},
		RecapStarted: func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.recapStarted = true
		},
		RecapComplete: func(h adventure.History, sum *adventure.Summary) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.recapComplete = true
		},
		RecapError: func(reason string) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.recapErrors = append(r.recapErrors, reason)
		},
		PanelCreate: func(p panels.Panel) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.panelsCreated = append(r.panelsCreated, p)
		},
	}
}

func (r *recorder) snapshotErrors() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.errors))
	copy(out, r.errors)
	return out
}

func (r *recorder) snapshotResponseEnds() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.responseEnds))
	copy(out, r.responseEnds)
	return out
}

func (r *recorder) snapshotToolStatuses() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.toolStatuses))
	copy(out, r.toolStatuses)
	return out
}

// newTestSession builds a fully initialized session rooted at a temp
// project directory, backed by a MockClient.
func newTestSession(t *testing.T) (*Session, *adventure.Store, *agentclient.MockClient, *recorder, string, string) {
	t.Helper()
	projectDir := t.TempDir()
	adventuresDir := t.TempDir()

	store := adventure.NewStore(adventuresDir, nil)
	handle, err := store.Create()
	if err != nil {
		t.Fatalf("create adventure: %v", err)
	}
	snap := handle.Snapshot()

	client := agentclient.NewMockClient()
	rec := &recorder{}
	events := newRecorderEvents(rec)

	cfg := DefaultConfig()
	cfg.InputTimeout = 5 * time.Second

	sess := New(store, client, imagesvc.NoOpService{}, projectDir, cfg, events)
	if err := sess.Initialize(context.Background(), snap.ID, snap.SessionToken); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	return sess, store, client, rec, snap.ID, snap.SessionToken
}

// waitUntilIdle polls until the session's queue has drained, bounding test
// flakiness without sleeping a fixed duration.
func waitUntilIdle(t *testing.T, s *Session) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		s.mu.Lock()
		idle := !s.isProcessing && len(s.queue) == 0
		s.mu.Unlock()
		if idle {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("session never returned to idle")
}
