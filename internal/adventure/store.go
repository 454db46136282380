package adventure

import (
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/corvran/adventure-gm/internal/filestore"
	"github.com/corvran/adventure-gm/internal/pathsafe"
)

const (
	stateFile   = "state.json"
	historyFile = "history.json"
)

// Store owns every Adventure record and its narrative history. Sessions
// hold only a borrowed *Handle; all mutation goes through Handle methods so
// persistence and the in-memory snapshot never drift apart.
type Store struct {
	mu      sync.RWMutex
	dir     string
	index   IndexWriter
	handles map[string]*Handle
}

// NewStore opens a store rooted at adventuresDir. indexWriter may be nil.
func NewStore(adventuresDir string, indexWriter IndexWriter) *Store {
	return &Store{
		dir:     adventuresDir,
		index:   indexWriter,
		handles: make(map[string]*Handle),
	}
}

// Handle is a single adventure's in-memory state plus its narrative log,
// guarded by its own lock so concurrent callers on the same adventure never
// interleave partial mutations. The spec's single-writer-per-adventure rule
// is enforced by the session that owns a Handle, not by the Handle itself.
type Handle struct {
	mu        sync.Mutex
	store     *Store
	dir       string
	adventure Adventure
	history   History
	compactionPending bool
}

// Create mints a new adventure: fresh id/token, default scene, empty
// history, persisted atomically before it is returned.
func (s *Store) Create() (*Handle, error) {
	now := time.Now().UTC()
	id := uuid.NewString()
	token := uuid.NewString()

	h := &Handle{
		store: s,
		dir:   filepath.Join(s.dir, id),
		adventure: Adventure{
			ID:           id,
			SessionToken: token,
			CreatedAt:    now,
			LastActiveAt: now,
			CurrentScene: defaultScene(),
			CurrentTheme: defaultTheme(),
		},
		history: History{Entries: []Entry{}},
	}
	if err := h.persistState(); err != nil {
		return nil, err
	}
	if err := h.persistHistory(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.handles[id] = h
	s.mu.Unlock()
	return h, nil
}

// Load validates id, resolves its sandbox path, reads state.json and
// history.json (or returns the cached in-memory Handle if this process
// already has it open), and verifies token in constant time.
func (s *Store) Load(id, token string) (*Handle, error) {
	if ok, _ := pathsafe.ValidateAdventureID(id); !ok {
		return nil, &ErrNotFound{ID: id}
	}

	s.mu.RLock()
	h, cached := s.handles[id]
	s.mu.RUnlock()
	if cached {
		h.mu.Lock()
		tok := h.adventure.SessionToken
		h.mu.Unlock()
		if !constantTimeEqual(tok, token) {
			return nil, &ErrInvalidToken{ID: id}
		}
		return h, nil
	}

	dir := pathsafe.SafeResolve(s.dir, id)
	if dir == "" {
		return nil, &ErrNotFound{ID: id}
	}

	statePath := filepath.Join(dir, stateFile)
	raw, err := os.ReadFile(statePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &ErrNotFound{ID: id}
		}
		return nil, fmt.Errorf("adventure: read state for %s: %w", id, err)
	}
	var adv Adventure
	if err := json.Unmarshal(raw, &adv); err != nil {
		return nil, &ErrCorrupted{Path: statePath, Err: err}
	}
	if !constantTimeEqual(adv.SessionToken, token) {
		return nil, &ErrInvalidToken{ID: id}
	}

	hist := History{Entries: []Entry{}}
	histRaw, err := os.ReadFile(filepath.Join(dir, historyFile))
	switch {
	case err == nil:
		if jerr := json.Unmarshal(histRaw, &hist); jerr != nil {
			return nil, &ErrCorrupted{Path: filepath.Join(dir, historyFile), Err: jerr}
		}
	case os.IsNotExist(err):
		// missing history is treated as empty
	default:
		return nil, fmt.Errorf("adventure: read history for %s: %w", id, err)
	}
	if hist.Entries == nil {
		hist.Entries = []Entry{}
	}

	h = &Handle{store: s, dir: dir, adventure: adv, history: hist}
	s.mu.Lock()
	s.handles[id] = h
	s.mu.Unlock()
	return h, nil
}

// LoadMetadata reads only {id, createdAt, lastActiveAt, currentScene} from
// state.json without any token validation, for the public metadata
// endpoint.
func (s *Store) LoadMetadata(id string) (*Metadata, error) {
	dir := pathsafe.SafeResolve(s.dir, id)
	if dir == "" {
		return nil, &ErrNotFound{ID: id}
	}
	path := filepath.Join(dir, stateFile)
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &ErrNotFound{ID: id}
		}
		return nil, fmt.Errorf("adventure: read metadata for %s: %w", id, err)
	}
	var adv Adventure
	if err := json.Unmarshal(raw, &adv); err != nil {
		return nil, &ErrCorrupted{Path: path, Err: err}
	}
	return &Metadata{
		ID:           adv.ID,
		CreatedAt:    adv.CreatedAt,
		LastActiveAt: adv.LastActiveAt,
		CurrentScene: adv.CurrentScene,
	}, nil
}

func constantTimeEqual(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func (h *Handle) persistState() error {
	h.adventure.LastActiveAt = time.Now().UTC()
	data, err := json.MarshalIndent(h.adventure, "", "  ")
	if err != nil {
		return fmt.Errorf("adventure: marshal state for %s: %w", h.adventure.ID, err)
	}
	if err := filestore.WriteFile(h.dir, stateFile, data); err != nil {
		return err
	}
	if h.store.index != nil {
		_ = h.store.index.UpsertAdventure(h.adventure.toIndexRow())
	}
	return nil
}

func (h *Handle) persistHistory() error {
	data, err := json.MarshalIndent(h.history, "", "  ")
	if err != nil {
		return fmt.Errorf("adventure: marshal history for %s: %w", h.adventure.ID, err)
	}
	return filestore.WriteFile(h.dir, historyFile, data)
}
