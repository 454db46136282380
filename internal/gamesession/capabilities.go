package gamesession

import (
	"fmt"

	"github.com/corvran/adventure-gm/internal/adventure"
	"github.com/corvran/adventure-gm/internal/agentclient"
	"github.com/corvran/adventure-gm/internal/panels"
	"github.com/corvran/adventure-gm/internal/templates"
	"github.com/corvran/adventure-gm/internal/toolhost"
)

// buildCapabilities wires the toolhost.Capabilities struct to this
// session's own state, so the ten MCP tools the agent can call act
// directly on the session's adventure, panel registry, and managers.
func (s *Session) buildCapabilities() toolhost.Capabilities {
	return toolhost.Capabilities{
		SetTheme:        s.toolSetTheme,
		SetXPStyle:      s.toolSetXPStyle,
		SetCharacter:    s.toolSetCharacter,
		SetWorld:        s.toolSetWorld,
		ListCharacters:  s.toolListCharacters,
		ListWorlds:      s.toolListWorlds,
		CreatePanel:     s.toolCreatePanel,
		UpdatePanel:     s.toolUpdatePanel,
		DismissPanel:    s.toolDismissPanel,
		ListPanels:      s.toolListPanels,
	}
}

func (s *Session) toolSetTheme(mood, genre, region, imagePrompt string, forceGenerate bool) (string, error) {
	return s.applyTheme(mood, genre, region, imagePrompt, forceGenerate)
}

func (s *Session) toolSetXPStyle(style string) error {
	return s.handle.UpdateXPStyle(adventure.XPStyle(style))
}

func (s *Session) toolSetCharacter(name string, isNew bool) (string, error) {
	var slug string
	if isNew {
		r, err := s.playerMgr.Create(name)
		if err != nil {
			return "", err
		}
		slug = r.Slug
	} else {
		slug = name
		if !s.playerMgr.Exists(slug) {
			return "", fmt.Errorf("character %q not found", name)
		}
	}
	ref := s.playerMgr.GetRef(slug)
	if ref == "" {
		return "", fmt.Errorf("character %q has an unsafe slug", name)
	}
	if err := s.handle.UpdatePlayerRef(ref); err != nil {
		return "", err
	}
	return ref, nil
}

func (s *Session) toolSetWorld(name string, isNew bool) (string, error) {
	var slug string
	if isNew {
		r, err := s.worldMgr.Create(name)
		if err != nil {
			return "", err
		}
		slug = r.Slug
	} else {
		slug = name
		if !s.worldMgr.Exists(slug) {
			return "", fmt.Errorf("world %q not found", name)
		}
	}
	ref := s.worldMgr.GetRef(slug)
	if ref == "" {
		return "", fmt.Errorf("world %q has an unsafe slug", name)
	}
	if err := s.handle.UpdateWorldRef(ref); err != nil {
		return "", err
	}
	return ref, nil
}

func (s *Session) toolListCharacters() []templates.Ref {
	return s.playerMgr.List()
}

func (s *Session) toolListWorlds() []templates.Ref {
	return s.worldMgr.List()
}

func (s *Session) toolCreatePanel(id, title, content string, position panels.Position, persistent bool) error {
	p := panels.Panel{ID: id, Title: title, Content: content, Position: position, Persistent: persistent}
	if err := s.panelReg.Create(p); err != nil {
		return err
	}
	s.emitPanelCreate(p)
	return nil
}

func (s *Session) toolUpdatePanel(id, content string) error {
	p, err := s.panelReg.Update(id, content)
	if err != nil {
		return err
	}
	s.emitPanelUpdate(p.ID, p.Content)
	return nil
}

func (s *Session) toolDismissPanel(id string) error {
	if !s.panelReg.Dismiss(id) {
		return fmt.Errorf("panel %q not found", id)
	}
	s.emitPanelDismiss(id)
	return nil
}

func (s *Session) toolListPanels() []panels.Panel {
	return s.panelReg.List()
}

// dispatcherAdapter satisfies agentclient.ToolCaller using a
// toolhost.Dispatcher, keeping the two packages decoupled at compile time.
type dispatcherAdapter struct {
	d *toolhost.Dispatcher
}

func (a dispatcherAdapter) Call(name string, args map[string]any) *agentclient.ToolResult {
	r := a.d.Call(name, args)
	return &agentclient.ToolResult{ForLLM: r.ForLLM, IsError: r.IsError}
}
