package toolhost

import (
	"fmt"
	"strings"

	"github.com/corvran/adventure-gm/internal/panels"
)

// Dispatcher routes named tool calls to Capabilities handlers. One
// Dispatcher instance is owned by a single in-flight agent query, so its
// handlers run single-threaded — no locking required (§4.5).
type Dispatcher struct {
	caps Capabilities
}

// NewDispatcher builds a dispatcher bound to one session's capabilities.
func NewDispatcher(caps Capabilities) *Dispatcher {
	return &Dispatcher{caps: caps}
}

// Call invokes the named tool with the given arguments, translating any
// handler error into a textual "Error: <msg>" result the agent can see and
// retry.
func (d *Dispatcher) Call(name string, args map[string]any) *Result {
	switch name {
	case "set_theme":
		return d.setTheme(args)
	case "set_xp_style":
		return d.setXPStyle(args)
	case "set_character":
		return d.setCharacter(args)
	case "set_world":
		return d.setWorld(args)
	case "list_characters":
		return d.listCharacters()
	case "list_worlds":
		return d.listWorlds()
	case "create_panel":
		return d.createPanel(args)
	case "update_panel":
		return d.updatePanel(args)
	case "dismiss_panel":
		return d.dismissPanel(args)
	case "list_panels":
		return d.listPanels()
	default:
		return ErrorResult(fmt.Sprintf("unknown tool %q", name))
	}
}

func str(args map[string]any, key string) string {
	v, _ := args[key].(string)
	return v
}

func boolArg(args map[string]any, key string) bool {
	v, _ := args[key].(bool)
	return v
}

func (d *Dispatcher) setTheme(args map[string]any) *Result {
	mood, genre, region := str(args, "mood"), str(args, "genre"), str(args, "region")
	prompt := str(args, "image_prompt")
	force := boolArg(args, "force_generate")
	url, err := d.caps.SetTheme(mood, genre, region, prompt, force)
	if err != nil {
		return ErrorResult(err.Error())
	}
	msg := fmt.Sprintf("Theme set to %s/%s/%s.", mood, genre, region)
	if url != "" {
		msg += " Background image updated."
	}
	return NewResult(msg)
}

func (d *Dispatcher) setXPStyle(args map[string]any) *Result {
	if err := d.caps.SetXPStyle(str(args, "xp_style")); err != nil {
		return ErrorResult(err.Error())
	}
	return NewResult("XP style updated.")
}

func (d *Dispatcher) setCharacter(args map[string]any) *Result {
	ref, err := d.caps.SetCharacter(str(args, "name"), boolArg(args, "is_new"))
	if err != nil {
		return ErrorResult(err.Error())
	}
	return NewResult("Character bound: " + ref)
}

func (d *Dispatcher) setWorld(args map[string]any) *Result {
	ref, err := d.caps.SetWorld(str(args, "name"), boolArg(args, "is_new"))
	if err != nil {
		return ErrorResult(err.Error())
	}
	return NewResult("World bound: " + ref)
}

func (d *Dispatcher) listCharacters() *Result {
	refs := d.caps.ListCharacters()
	var b strings.Builder
	for _, r := range refs {
		fmt.Fprintf(&b, "%s (%s)\n", r.DisplayName, r.Slug)
	}
	if b.Len() == 0 {
		return NewResult("No characters exist yet.")
	}
	return NewResult(b.String())
}

func (d *Dispatcher) listWorlds() *Result {
	refs := d.caps.ListWorlds()
	var b strings.Builder
	for _, r := range refs {
		fmt.Fprintf(&b, "%s (%s)\n", r.DisplayName, r.Slug)
	}
	if b.Len() == 0 {
		return NewResult("No worlds exist yet.")
	}
	return NewResult(b.String())
}

func (d *Dispatcher) createPanel(args map[string]any) *Result {
	id := str(args, "id")
	position := panels.Position(str(args, "position"))
	if position == "" {
		position = panels.PositionSidebar
	}
	persistent := boolArg(args, "persistent")
	if err := d.caps.CreatePanel(id, str(args, "title"), str(args, "content"), position, persistent); err != nil {
		return ErrorResult(err.Error())
	}
	return NewResult("Panel created.")
}

func (d *Dispatcher) updatePanel(args map[string]any) *Result {
	if err := d.caps.UpdatePanel(str(args, "id"), str(args, "content")); err != nil {
		return ErrorResult(err.Error())
	}
	return NewResult("Panel updated.")
}

func (d *Dispatcher) dismissPanel(args map[string]any) *Result {
	if err := d.caps.DismissPanel(str(args, "id")); err != nil {
		return ErrorResult(err.Error())
	}
	return NewResult("Panel dismissed.")
}

func (d *Dispatcher) listPanels() *Result {
	list := d.caps.ListPanels()
	var b strings.Builder
	for _, p := range list {
		fmt.Fprintf(&b, "%s: %s (%s)\n", p.ID, p.Title, p.Position)
	}
	if b.Len() == 0 {
		return NewResult("No active panels.")
	}
	return NewResult(b.String())
}
