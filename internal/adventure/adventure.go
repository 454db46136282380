// Package adventure implements the State Store: atomic persistence of the
// per-adventure JSON record and its append-only narrative log, with
// constant-time token comparison and path-traversal defense delegated to
// pathsafe.
package adventure

import "time"

// XPStyle is the player's preferred experience-point presentation.
type XPStyle string

const (
	XPFrequent   XPStyle = "frequent"
	XPMilestone  XPStyle = "milestone"
	XPCombatPlus XPStyle = "combat-plus"
)

// Scene is the short description of where the story currently stands.
type Scene struct {
	Description string `json:"description"`
	Location    string `json:"location"`
}

// Theme is the active mood/genre/region/background tuple.
type Theme struct {
	Mood            string  `json:"mood"`
	Genre           string  `json:"genre"`
	Region          string  `json:"region"`
	BackgroundURL   *string `json:"backgroundUrl"`
}

// Adventure is the durable per-player unit of state.
type Adventure struct {
	ID             string   `json:"id"`
	SessionToken   string   `json:"sessionToken"`
	AgentSessionID *string  `json:"agentSessionId"`
	CreatedAt      time.Time `json:"createdAt"`
	LastActiveAt   time.Time `json:"lastActiveAt"`
	CurrentScene   Scene    `json:"currentScene"`
	CurrentTheme   Theme    `json:"currentTheme"`
	PlayerRef      *string  `json:"playerRef"`
	WorldRef       *string  `json:"worldRef"`
	XPStyle        *XPStyle `json:"xpStyle"`
}

// Metadata is the subset of an Adventure exposed without token validation by
// the public metadata endpoint.
type Metadata struct {
	ID           string    `json:"id"`
	CreatedAt    time.Time `json:"createdAt"`
	LastActiveAt time.Time `json:"lastActiveAt"`
	CurrentScene Scene     `json:"currentScene"`
}

func defaultTheme() Theme {
	return Theme{Mood: "calm", Genre: "high-fantasy", Region: "village"}
}

func defaultScene() Scene {
	return Scene{Description: "Unknown", Location: "an uncertain place"}
}
