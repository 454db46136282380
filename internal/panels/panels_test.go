package panels

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFrontMatterRoundTrip(t *testing.T) {
	raw := "---\ntitle: Weather Status\nposition: sidebar\npriority: medium\n---\nClear\n"
	fm, body, err := ParseFrontMatter(raw)
	if err != nil {
		t.Fatal(err)
	}
	if fm.Title != "Weather Status" || fm.Position != PositionSidebar || fm.Priority != "medium" {
		t.Fatalf("got %+v", fm)
	}
	if body != "Clear\n" {
		t.Fatalf("got body %q", body)
	}
}

func TestFrontMatterRejectsMissingTitle(t *testing.T) {
	raw := "---\nposition: sidebar\n---\nbody\n"
	if _, _, err := ParseFrontMatter(raw); err == nil {
		t.Fatal("expected error for missing title")
	}
}

func TestFrontMatterRejectsBadPosition(t *testing.T) {
	raw := "---\ntitle: X\nposition: nowhere\n---\nbody\n"
	if _, _, err := ParseFrontMatter(raw); err == nil {
		t.Fatal("expected error for invalid position")
	}
}

func TestRegistryCapacity(t *testing.T) {
	r := NewRegistry()
	for i := 0; i < maxPanels; i++ {
		p := Panel{ID: string(rune('a' + i)), Title: "t", Position: PositionSidebar}
		if err := r.Create(p); err != nil {
			t.Fatalf("unexpected error at panel %d: %v", i, err)
		}
	}
	over := Panel{ID: "overflow", Title: "t", Position: PositionSidebar}
	if err := r.Create(over); err == nil {
		t.Fatal("expected panel limit error")
	}
}

func TestPanelLifecycleFromFileWrites(t *testing.T) {
	playerDir := t.TempDir()
	panelsDir := filepath.Join(playerDir, "panels")
	if err := os.MkdirAll(panelsDir, 0o700); err != nil {
		t.Fatal(err)
	}

	reg := NewRegistry()
	var created, updated, dismissed []string
	hook := &Hook{
		Registry:  reg,
		PanelsDir: panelsDir,
		Emit: Emitter{
			OnCreate:  func(p Panel) { created = append(created, p.ID) },
			OnUpdate:  func(id, content string) { updated = append(updated, id) },
			OnDismiss: func(id string) { dismissed = append(dismissed, id) },
		},
	}

	weatherPath := filepath.Join(panelsDir, "weather.md")
	write := func(body string) {
		content := "---\ntitle: Weather Status\nposition: sidebar\npriority: medium\n---\n" + body
		if err := os.WriteFile(weatherPath, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}
	}

	write("Clear")
	hook.Process("Write", map[string]any{"file_path": weatherPath})
	if len(created) != 1 || created[0] != "weather" {
		t.Fatalf("expected create, got created=%v", created)
	}
	p, ok := reg.Get("weather")
	if !ok || p.Content != "Clear" || !p.Persistent {
		t.Fatalf("unexpected panel state: %+v", p)
	}

	write("Storm")
	hook.Process("Write", map[string]any{"file_path": weatherPath})
	if len(updated) != 1 || updated[0] != "weather" {
		t.Fatalf("expected update, got updated=%v", updated)
	}

	if err := os.Remove(weatherPath); err != nil {
		t.Fatal(err)
	}
	hook.Process("Bash", map[string]any{"command": "rm " + weatherPath})
	if len(dismissed) != 1 || dismissed[0] != "weather" {
		t.Fatalf("expected dismiss, got dismissed=%v", dismissed)
	}
	if reg.Len() != 0 {
		t.Fatalf("expected empty registry, got %d", reg.Len())
	}
}

func TestBashReconciliationCatchesBroadDeletion(t *testing.T) {
	playerDir := t.TempDir()
	panelsDir := filepath.Join(playerDir, "panels")
	os.MkdirAll(panelsDir, 0o700)
	reg := NewRegistry()
	reg.Create(Panel{ID: "weather", Title: "t", Position: PositionSidebar})

	var dismissed []string
	hook := &Hook{
		Registry:  reg,
		PanelsDir: panelsDir,
		Emit:      Emitter{OnDismiss: func(id string) { dismissed = append(dismissed, id) }},
	}
	// File never existed on disk under panelsDir (simulating rm -rf having
	// already run); the reconciliation pass should still catch it.
	hook.Process("Bash", map[string]any{"command": "rm -rf " + panelsDir})
	if len(dismissed) != 1 || dismissed[0] != "weather" {
		t.Fatalf("expected reconciliation dismiss, got %v", dismissed)
	}
}
