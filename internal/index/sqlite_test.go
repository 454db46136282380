package index

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/corvran/adventure-gm/internal/adventure"
)

func TestSQLiteUpsertThenList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.db")
	s, err := OpenSQLite(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	now := time.Now().UTC().Truncate(time.Second)
	row := adventure.IndexRow{
		ID:           "adv-1",
		CreatedAt:    now,
		LastActiveAt: now,
		Scene:        "a dim tavern",
		Theme:        "ominous",
		PlayerRef:    "players/rin",
		WorldRef:     "worlds/ashfall",
	}
	if err := s.UpsertAdventure(row); err != nil {
		t.Fatal(err)
	}

	rows, err := s.List(context.Background(), now.Add(-time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0].ID != "adv-1" {
		t.Fatalf("unexpected rows: %+v", rows)
	}
}

func TestSQLiteUpsertUpdatesExistingRow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.db")
	s, err := OpenSQLite(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	now := time.Now().UTC().Truncate(time.Second)
	base := adventure.IndexRow{ID: "adv-2", CreatedAt: now, LastActiveAt: now, Scene: "start"}
	if err := s.UpsertAdventure(base); err != nil {
		t.Fatal(err)
	}
	updated := base
	updated.Scene = "a collapsing bridge"
	updated.LastActiveAt = now.Add(time.Minute)
	if err := s.UpsertAdventure(updated); err != nil {
		t.Fatal(err)
	}

	rows, err := s.List(context.Background(), now.Add(-time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected upsert to update in place, got %d rows", len(rows))
	}
	if rows[0].Scene != "a collapsing bridge" {
		t.Fatalf("expected updated scene, got %q", rows[0].Scene)
	}
}

func TestOpenSelectsSQLiteWithoutPostgresDSN(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.db")
	store, err := Open("", path)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	if _, ok := store.(*SQLiteStore); !ok {
		t.Fatalf("expected *SQLiteStore, got %T", store)
	}
}
