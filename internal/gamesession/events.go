package gamesession

import (
	"github.com/corvran/adventure-gm/internal/adventure"
	"github.com/corvran/adventure-gm/internal/panels"
)

// Events is the capability struct a session emits client-facing frames
// through. The connection hub wires each field to an actual websocket
// write; tests wire them to recording stubs. Kept independent of
// pkg/protocol's envelope shape so the session never imports the
// transport layer directly.
type Events struct {
	Pong            func()
	AdventureLoaded func(history adventure.History)
	ThemeChange     func(theme adventure.Theme)
	GMResponseStart func(messageID string)
	GMResponseChunk func(messageID, text string)
	GMResponseEnd   func(messageID string)
	ToolStatus      func(active bool, description string)
	PanelCreate     func(p panels.Panel)
	PanelUpdate     func(id, content string)
	PanelDismiss    func(id string)
	RecapStarted    func()
	RecapComplete   func(history adventure.History, summary *adventure.Summary)
	RecapError      func(reason string)
	Error           func(code, message string, retryable bool, technicalDetails string)
}

func (e Events) emitToolStatus(active bool, description string) {
	if e.ToolStatus != nil {
		e.ToolStatus(active, description)
	}
}

func (e Events) emitError(code, message string, retryable bool, technicalDetails string) {
	if e.Error != nil {
		e.Error(code, message, retryable, technicalDetails)
	}
}

func (e Events) emitRecapError(reason string) {
	if e.RecapError != nil {
		e.RecapError(reason)
	}
}
