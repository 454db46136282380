// Package templates implements CRUD over the players/<slug>/ and
// worlds/<slug>/ template trees: the Character and World Managers.
package templates

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/corvran/adventure-gm/internal/filestore"
	"github.com/corvran/adventure-gm/internal/pathsafe"
)

// Manager is shared CRUD logic parameterized by a fixed template file set
// and the file whose first H1 supplies the display name.
type Manager struct {
	root        string            // e.g. <PROJECT_DIR>/players
	kind        string            // "players" or "worlds"
	templates   map[string]string // filename -> fixed content
	primaryFile string            // file whose H1 is the display name
	sortByName  bool              // worlds sort by display name; players by slug
}

// Ref is a bound reference plus its human-facing display name.
type Ref struct {
	Slug        string
	DisplayName string
}

// NewPlayerManager builds the Character Manager rooted at <root>/players.
func NewPlayerManager(projectDir string) *Manager {
	return &Manager{
		root: filepath.Join(projectDir, "players"),
		kind: "players",
		templates: map[string]string{
			"sheet.md": defaultCharacterSheet,
			"state.md": defaultCharacterState,
		},
		primaryFile: "sheet.md",
		sortByName:  false,
	}
}

// NewWorldManager builds the World Manager rooted at <root>/worlds.
func NewWorldManager(projectDir string) *Manager {
	return &Manager{
		root: filepath.Join(projectDir, "worlds"),
		kind: "worlds",
		templates: map[string]string{
			"world_state.md": defaultWorldState,
			"locations.md":   defaultLocations,
			"characters.md":  defaultWorldCharacters,
			"quests.md":      defaultQuests,
			"art-style.md":   defaultArtStyle,
		},
		primaryFile: "world_state.md",
		sortByName:  true,
	}
}

// Create generates a unique slug from name, creates its directory (mode
// 0o700), and writes every fixed template file (mode 0o600 via filestore).
func (m *Manager) Create(name string) (Ref, error) {
	slug := pathsafe.GenerateSlug(name, m.root)
	if err := m.writeTemplates(slug); err != nil {
		return Ref{}, err
	}
	return Ref{Slug: slug, DisplayName: m.displayName(slug, name)}, nil
}

// CreateAtSlug writes the template set at an exact slug without collision
// probing — used to restore a previously saved reference.
func (m *Manager) CreateAtSlug(slug string) (Ref, error) {
	if ok, reason := pathsafe.ValidateSlug(slug); !ok {
		return Ref{}, errInvalidSlug(reason)
	}
	if err := m.writeTemplates(slug); err != nil {
		return Ref{}, err
	}
	return Ref{Slug: slug, DisplayName: m.displayName(slug, slug)}, nil
}

func (m *Manager) writeTemplates(slug string) error {
	dir := filepath.Join(m.root, slug)
	if err := filestore.MkdirAll(dir); err != nil {
		return err
	}
	for name, content := range m.templates {
		if err := filestore.WriteFile(dir, name, []byte(content)); err != nil {
			return err
		}
	}
	return nil
}

// Exists reports whether slug names a real, valid directory under root.
func (m *Manager) Exists(slug string) bool {
	if ok, _ := pathsafe.ValidateSlug(slug); !ok {
		return false
	}
	info, err := os.Stat(filepath.Join(m.root, slug))
	return err == nil && info.IsDir()
}

// List enumerates valid-slug subdirectories, skipping hidden or invalid
// entries, sorted by slug (players) or display name (worlds).
func (m *Manager) List() []Ref {
	entries, err := os.ReadDir(m.root)
	if err != nil {
		return nil
	}
	var refs []Ref
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if ok, _ := pathsafe.ValidateSlug(e.Name()); !ok {
			continue
		}
		refs = append(refs, Ref{Slug: e.Name(), DisplayName: m.displayName(e.Name(), e.Name())})
	}
	if m.sortByName {
		sort.Slice(refs, func(i, j int) bool { return refs[i].DisplayName < refs[j].DisplayName })
	} else {
		sort.Slice(refs, func(i, j int) bool { return refs[i].Slug < refs[j].Slug })
	}
	return refs
}

// GetRef returns the relative reference string (e.g. "players/hero") only
// after validating slug safety; otherwise "".
func (m *Manager) GetRef(slug string) string {
	if !m.Exists(slug) {
		return ""
	}
	return filepath.Join(m.kind, slug)
}

// displayName reads the first H1 ("# Title") from the primary file,
// falling back to fallback (typically the slug or original name) when the
// file is missing, empty, or has no heading.
func (m *Manager) displayName(slug, fallback string) string {
	data, err := filestore.ReadFile(filepath.Join(m.root, slug), m.primaryFile)
	if err != nil {
		return fallback
	}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "# ") {
			name := strings.TrimSpace(strings.TrimPrefix(line, "# "))
			if name != "" {
				return name
			}
		}
	}
	return fallback
}

type errInvalidSlug string

func (e errInvalidSlug) Error() string { return "templates: invalid slug: " + string(e) }
