package panels

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/corvran/adventure-gm/internal/pathsafe"
)

// Emitter is the capability struct the hook calls into — a set of function
// values supplied at construction, per the design notes' "avoid global
// state" guidance, rather than a callback registered on a shared session
// object.
type Emitter struct {
	OnCreate  func(Panel)
	OnUpdate  func(id, content string)
	OnDismiss func(id string)
}

// Hook reconciles the panel registry against files written under
// <playerRef>/panels/ in response to post-tool-call events.
type Hook struct {
	Registry   *Registry
	PanelsDir  string // absolute path to <playerRef>/panels
	Emit       Emitter
	// ValidationErrors accumulates front-matter validation failures for the
	// current turn; the session drains and clears this between turns and
	// feeds it into the next GM system prompt, never to the client.
	ValidationErrors []string
}

var bashDeletionHint = regexp.MustCompile(`\b(rm|delete|mv)\b`)

// Process inspects one completed tool call and updates the registry,
// invoking Emit callbacks for any resulting panel_create/update/dismiss.
func (h *Hook) Process(toolName string, input map[string]any) {
	switch toolName {
	case "Write", "write_file":
		h.processWrite(input)
	case "Bash", "bash", "shell":
		h.processBash(input)
	}
}

// ScanExisting walks PanelsDir at session-initialize time and feeds every
// existing .md file through the same path processWrite takes for a fresh
// write, rebuilding the registry and firing OnCreate for each.
func (h *Hook) ScanExisting() {
	entries, err := os.ReadDir(h.PanelsDir)
	if err != nil {
		return
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") {
			continue
		}
		h.processWrite(map[string]any{"file_path": filepath.Join(h.PanelsDir, e.Name())})
	}
}

func (h *Hook) processWrite(input map[string]any) {
	path, _ := input["file_path"].(string)
	id, ok := h.panelIDFromPath(path)
	if !ok {
		return
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		h.ValidationErrors = append(h.ValidationErrors, "panel "+id+": could not read file: "+err.Error())
		return
	}
	fm, body, err := ParseFrontMatter(string(raw))
	if err != nil {
		h.ValidationErrors = append(h.ValidationErrors, "panel "+id+": "+err.Error())
		return
	}

	createdAt := fileBirthTime(path)
	if h.Registry.Known(id) {
		p, updErr := h.Registry.Update(id, body)
		if updErr != nil {
			h.ValidationErrors = append(h.ValidationErrors, "panel "+id+": "+updErr.Error())
			return
		}
		if h.Emit.OnUpdate != nil {
			h.Emit.OnUpdate(p.ID, p.Content)
		}
		return
	}

	p := Panel{
		ID:         id,
		Title:      fm.Title,
		Content:    body,
		Position:   fm.Position,
		Priority:   fm.Priority,
		Persistent: true,
		CreatedAt:  createdAt,
	}
	if err := h.Registry.Create(p); err != nil {
		h.ValidationErrors = append(h.ValidationErrors, "panel "+id+": "+err.Error())
		return
	}
	if h.Emit.OnCreate != nil {
		h.Emit.OnCreate(p)
	}
}

func (h *Hook) processBash(input map[string]any) {
	cmd, _ := input["command"].(string)
	if cmd == "" {
		return
	}
	if strings.Contains(cmd, "panels/") && bashDeletionHint.MatchString(cmd) {
		if id, ok := panelIDFromBashTarget(cmd); ok {
			if h.Registry.Dismiss(id) && h.Emit.OnDismiss != nil {
				h.Emit.OnDismiss(id)
			}
		}
	}
	// Always re-verify every known panel file still exists; this catches
	// rm -rf, find -delete, mv panels/... that the lexical parse above
	// misses.
	if bashDeletionHint.MatchString(cmd) || strings.Contains(cmd, "panels/") {
		h.reconcileMissingFiles()
	}
}

func (h *Hook) reconcileMissingFiles() {
	for _, p := range h.Registry.List() {
		path := filepath.Join(h.PanelsDir, p.ID+".md")
		if _, err := os.Stat(path); os.IsNotExist(err) {
			if h.Registry.Dismiss(p.ID) && h.Emit.OnDismiss != nil {
				h.Emit.OnDismiss(p.ID)
			}
		}
	}
}

// panelIDFromPath checks that path is <PanelsDir>/<id>.md for a valid slug
// id, returning the id.
func (h *Hook) panelIDFromPath(path string) (string, bool) {
	if path == "" {
		return "", false
	}
	dir := filepath.Dir(path)
	if filepath.Clean(dir) != filepath.Clean(h.PanelsDir) {
		return "", false
	}
	base := filepath.Base(path)
	if !strings.HasSuffix(base, ".md") {
		return "", false
	}
	id := strings.TrimSuffix(base, ".md")
	if ok, _ := pathsafe.ValidateSlug(id); !ok {
		return "", false
	}
	if len(id) > 32 {
		return "", false
	}
	return id, true
}

// panelIDFromBashTarget extracts a plausible panel id from a deletion
// command's lexical target, e.g. "rm players/hero/panels/weather.md".
func panelIDFromBashTarget(cmd string) (string, bool) {
	fields := strings.Fields(cmd)
	for _, f := range fields {
		if strings.Contains(f, "panels/") && strings.HasSuffix(f, ".md") {
			base := filepath.Base(f)
			id := strings.TrimSuffix(base, ".md")
			if ok, _ := pathsafe.ValidateSlug(id); ok {
				return id, true
			}
		}
	}
	return "", false
}

func fileBirthTime(path string) time.Time {
	info, err := os.Stat(path)
	if err != nil {
		return time.Now().UTC()
	}
	return info.ModTime()
}
