package adventure

// IndexWriter receives a denormalized row every time the state store
// persists, so the supplemental Adventure Index (internal/index) can stay
// in sync without being the source of truth. A nil IndexWriter is valid —
// the store simply skips the write-through.
type IndexWriter interface {
	UpsertAdventure(row IndexRow) error
}

// IndexRow is the projection written through to the Adventure Index.
type IndexRow struct {
	ID           string
	CreatedAt    string
	LastActiveAt string
	Scene        string
	Theme        string
	PlayerRef    string
	WorldRef     string
}

func (a *Adventure) toIndexRow() IndexRow {
	row := IndexRow{
		ID:           a.ID,
		CreatedAt:    a.CreatedAt.Format(rfc3339),
		LastActiveAt: a.LastActiveAt.Format(rfc3339),
		Scene:        a.CurrentScene.Description,
		Theme:        a.CurrentTheme.Mood + "/" + a.CurrentTheme.Genre,
	}
	if a.PlayerRef != nil {
		row.PlayerRef = *a.PlayerRef
	}
	if a.WorldRef != nil {
		row.WorldRef = *a.WorldRef
	}
	return row
}

const rfc3339 = "2006-01-02T15:04:05.999999999Z07:00"
