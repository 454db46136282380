// Package index implements the Adventure Index: a denormalized read model
// over adventures, write-through from the State Store and never the source
// of truth. Nothing in this module rebuilds it from the JSON files on disk.
package index

import (
	"context"
	"time"

	"github.com/corvran/adventure-gm/internal/adventure"
)

// Row is one adventure's denormalized read-model entry.
type Row struct {
	ID           string
	CreatedAt    time.Time
	LastActiveAt time.Time
	Scene        string
	Theme        string
	PlayerRef    string
	WorldRef     string
}

// Store is the Adventure Index's storage contract, implemented by both
// the embedded SQLite backend and the optional Postgres backend.
type Store interface {
	adventure.IndexWriter
	List(ctx context.Context, since time.Time) ([]Row, error)
	Close() error
}

func toRow(r adventure.IndexRow) Row {
	return Row{
		ID:           r.ID,
		CreatedAt:    r.CreatedAt,
		LastActiveAt: r.LastActiveAt,
		Scene:        r.Scene,
		Theme:        r.Theme,
		PlayerRef:    r.PlayerRef,
		WorldRef:     r.WorldRef,
	}
}
