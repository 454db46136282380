package toolhost

import (
	"testing"

	"github.com/corvran/adventure-gm/internal/panels"
	"github.com/corvran/adventure-gm/internal/templates"
)

func testCaps() Capabilities {
	return Capabilities{
		SetTheme: func(mood, genre, region, prompt string, force bool) (string, error) {
			return "https://example.com/bg.png", nil
		},
		SetXPStyle: func(style string) error { return nil },
		SetCharacter: func(name string, isNew bool) (string, error) {
			return "players/" + name, nil
		},
		SetWorld: func(name string, isNew bool) (string, error) {
			return "worlds/" + name, nil
		},
		ListCharacters: func() []templates.Ref {
			return []templates.Ref{{Slug: "hero", DisplayName: "Hero"}}
		},
		ListWorlds: func() []templates.Ref { return nil },
		CreatePanel: func(id, title, content string, position panels.Position, persistent bool) error {
			return nil
		},
		UpdatePanel:  func(id, content string) error { return nil },
		DismissPanel: func(id string) error { return nil },
		ListPanels:   func() []panels.Panel { return nil },
	}
}

func TestDispatchSetTheme(t *testing.T) {
	d := NewDispatcher(testCaps())
	r := d.Call("set_theme", map[string]any{"mood": "ominous", "genre": "high-fantasy", "region": "forest"})
	if r.IsError {
		t.Fatalf("unexpected error result: %s", r.ForLLM)
	}
}

func TestDispatchUnknownTool(t *testing.T) {
	d := NewDispatcher(testCaps())
	r := d.Call("does_not_exist", nil)
	if !r.IsError {
		t.Fatal("expected error for unknown tool")
	}
}

func TestDispatchErrorTranslatesToTextualError(t *testing.T) {
	caps := testCaps()
	caps.SetXPStyle = func(style string) error { return errBoom }
	d := NewDispatcher(caps)
	r := d.Call("set_xp_style", map[string]any{"xp_style": "frequent"})
	if !r.IsError {
		t.Fatal("expected error result")
	}
}

func TestDispatchListCharactersEmpty(t *testing.T) {
	caps := testCaps()
	caps.ListCharacters = func() []templates.Ref { return nil }
	d := NewDispatcher(caps)
	r := d.Call("list_characters", nil)
	if r.IsError {
		t.Fatal("unexpected error")
	}
	if r.ForLLM != "No characters exist yet." {
		t.Fatalf("got %q", r.ForLLM)
	}
}

type boomErr struct{}

func (boomErr) Error() string { return "boom" }

var errBoom = boomErr{}
