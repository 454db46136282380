package toolhost

import (
	"github.com/corvran/adventure-gm/internal/panels"
	"github.com/corvran/adventure-gm/internal/templates"
)

// Capabilities is the set of function values the dispatcher calls into for
// each tool's side effect — a capability struct passed in at construction,
// per the design notes, so the dispatcher never reaches into session
// internals or global state directly.
type Capabilities struct {
	SetTheme       func(mood, genre, region, imagePrompt string, forceGenerate bool) (backgroundURL string, err error)
	SetXPStyle     func(style string) error
	SetCharacter   func(name string, isNew bool) (ref string, err error)
	SetWorld       func(name string, isNew bool) (ref string, err error)
	ListCharacters func() []templates.Ref
	ListWorlds     func() []templates.Ref

	CreatePanel  func(id, title, content string, position panels.Position, persistent bool) error
	UpdatePanel  func(id, content string) error
	DismissPanel func(id string) error
	ListPanels   func() []panels.Panel
}
