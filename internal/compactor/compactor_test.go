package compactor

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/corvran/adventure-gm/internal/adventure"
	"github.com/corvran/adventure-gm/internal/agentclient"
)

func makeEntries(n int, contentLen int) []adventure.Entry {
	entries := make([]adventure.Entry, n)
	base := time.Now().UTC()
	for i := 0; i < n; i++ {
		entries[i] = adventure.Entry{
			ID:        string(rune('a' + i)),
			Timestamp: base.Add(time.Duration(i) * time.Second),
			Type:      adventure.EntryPlayerInput,
			Content:   strings.Repeat("x", contentLen),
		}
	}
	return entries
}

func TestCutPointKeepsMinimumCount(t *testing.T) {
	entries := makeEntries(15, 10)   // 15 entries * 10 chars = 150
	cut := cutPoint(entries, 10, 50) // floor=10 entries (100 chars) wins over the 50-char budget
	if len(entries)-cut != 10 {
		t.Fatalf("expected 10 retained, got %d", len(entries)-cut)
	}
}

func TestCutPointNothingToArchive(t *testing.T) {
	entries := makeEntries(5, 10)
	cut := cutPoint(entries, 10, 1000000)
	if cut != 0 {
		t.Fatalf("expected 0, got %d", cut)
	}
}

func TestCutPointRespectsCharBudgetBeyondFloor(t *testing.T) {
	entries := makeEntries(20, 100) // 20 entries * 100 chars = 2000
	cut := cutPoint(entries, 5, 600) // floor=5 entries (500 chars), room for 1 more
	retained := len(entries) - cut
	if retained < 5 {
		t.Fatalf("floor violated: retained %d", retained)
	}
	if retained > 6 {
		t.Fatalf("char budget not respected: retained %d", retained)
	}
}

func TestRunNoArchiveNeeded(t *testing.T) {
	dir := t.TempDir()
	hist := adventure.History{Entries: makeEntries(3, 10)}
	mock := agentclient.NewMockClient()
	res := Run(context.Background(), mock, dir, hist, DefaultConfig())
	if !res.Success {
		t.Fatalf("expected success, got error %q", res.Error)
	}
	if len(res.RetainedEntries) != 3 {
		t.Fatalf("expected all 3 entries retained, got %d", len(res.RetainedEntries))
	}
	if res.ArchivePath != "" {
		t.Fatalf("expected no archive written, got %q", res.ArchivePath)
	}
}

func TestRunArchivesAndSummarizes(t *testing.T) {
	dir := t.TempDir()
	hist := adventure.History{Entries: makeEntries(20, 100)}
	mock := agentclient.NewMockClient()
	cfg := Config{RetainedCount: 5, TargetRetainedCharCount: 600}
	res := Run(context.Background(), mock, dir, hist, cfg)
	if !res.Success {
		t.Fatalf("expected success, got error %q", res.Error)
	}
	if res.ArchivePath == "" {
		t.Fatal("expected archive path to be set")
	}
	if res.Summary == nil || res.Summary.Text == "" {
		t.Fatal("expected non-empty summary")
	}
	if res.EntriesArchived == 0 {
		t.Fatal("expected some entries archived")
	}
}

func TestRunRecapCollapsesToEmpty(t *testing.T) {
	dir := t.TempDir()
	hist := adventure.History{Entries: makeEntries(12, 20)}
	mock := agentclient.NewMockClient()
	res := Run(context.Background(), mock, dir, hist, Config{RetainedCount: 0, TargetRetainedCharCount: 0})
	if !res.Success {
		t.Fatalf("expected success, got %q", res.Error)
	}
	if len(res.RetainedEntries) != 0 {
		t.Fatalf("expected recap to collapse to empty retained entries, got %d", len(res.RetainedEntries))
	}
	if res.Summary == nil {
		t.Fatal("expected summary")
	}
}
