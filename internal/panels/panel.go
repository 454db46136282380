// Package panels implements the Panel Registry and the post-tool-call file
// hook that derives/reconciles panels from files the agent writes under
// <playerRef>/panels/.
package panels

import "time"

// Position is where a panel is displayed.
type Position string

const (
	PositionSidebar Position = "sidebar"
	PositionHeader  Position = "header"
	PositionOverlay Position = "overlay"
)

const (
	maxPanels        = 5
	maxContentBytes  = 2 * 1024
)

// Panel is a GM-derived UI card.
type Panel struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	Position   Position  `json:"position"`
	Priority   string    `json:"priority,omitempty"`
	Persistent bool      `json:"persistent"`
	CreatedAt  time.Time `json:"createdAt"`
}
