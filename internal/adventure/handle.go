package adventure

import (
	"time"

	"github.com/google/uuid"
)

// Snapshot returns a copy of the current adventure record.
func (h *Handle) Snapshot() Adventure {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.adventure
}

// History returns a copy of the current narrative history.
func (h *Handle) History() History {
	h.mu.Lock()
	defer h.mu.Unlock()
	entries := make([]Entry, len(h.history.Entries))
	copy(entries, h.history.Entries)
	out := History{Entries: entries}
	if h.history.Summary != nil {
		s := *h.history.Summary
		out.Summary = &s
	}
	return out
}

// Dir returns the adventure's on-disk directory.
func (h *Handle) Dir() string { return h.dir }

// AppendHistory appends one entry and persists the whole history file.
// Entry.ID and Entry.Timestamp are assigned here so ordering is always
// monotonic regardless of caller clock skew.
func (h *Handle) AppendHistory(entryType EntryType, content string) (Entry, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ts := time.Now().UTC()
	if len(h.history.Entries) > 0 {
		last := h.history.Entries[len(h.history.Entries)-1].Timestamp
		if !ts.After(last) {
			ts = last.Add(time.Nanosecond)
		}
	}
	entry := Entry{ID: uuid.NewString(), Timestamp: ts, Type: entryType, Content: content}
	h.history.Entries = append(h.history.Entries, entry)
	if err := h.persistHistory(); err != nil {
		return Entry{}, err
	}
	return entry, nil
}

// ReplaceHistory overwrites the whole history (used by recap/compaction).
func (h *Handle) ReplaceHistory(hist History) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.history = hist
	if h.history.Entries == nil {
		h.history.Entries = []Entry{}
	}
	return h.persistHistory()
}

// UpdateScene sets the current scene and persists.
func (h *Handle) UpdateScene(scene Scene) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.adventure.CurrentScene = scene
	return h.persistState()
}

// UpdateTheme sets the current theme and persists.
func (h *Handle) UpdateTheme(theme Theme) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.adventure.CurrentTheme = theme
	return h.persistState()
}

// UpdatePlayerRef sets the bound player reference and persists.
func (h *Handle) UpdatePlayerRef(ref string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.adventure.PlayerRef = &ref
	return h.persistState()
}

// UpdateWorldRef sets the bound world reference and persists.
func (h *Handle) UpdateWorldRef(ref string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.adventure.WorldRef = &ref
	return h.persistState()
}

// UpdateAgentSessionID persists the resumable agent-session handle.
func (h *Handle) UpdateAgentSessionID(id string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.adventure.AgentSessionID = &id
	return h.persistState()
}

// ClearAgentSessionID drops the resumable handle (used during recovery and
// recap, forcing a fresh agent conversation).
func (h *Handle) ClearAgentSessionID() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.adventure.AgentSessionID = nil
	return h.persistState()
}

// UpdateXPStyle persists the player's XP presentation preference.
func (h *Handle) UpdateXPStyle(style XPStyle) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.adventure.XPStyle = &style
	return h.persistState()
}

// MarkCompactionPending flips the compaction bit, checked by the session's
// queue processor at drain time.
func (h *Handle) MarkCompactionPending(pending bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.compactionPending = pending
}

// IsCompactionPending reports the current compaction bit.
func (h *Handle) IsCompactionPending() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.compactionPending
}

// RunPendingCompaction clears the bit and returns whether one was actually
// pending, letting the caller decide whether to invoke the compactor.
func (h *Handle) RunPendingCompaction() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	was := h.compactionPending
	h.compactionPending = false
	return was
}
