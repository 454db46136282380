// Package gamesession is the Game Session (C7): the heart of the system,
// mediating between one duplex client connection and the agent, owning
// the single-writer discipline over its adventure's state and history.
package gamesession

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/corvran/adventure-gm/internal/adventure"
	"github.com/corvran/adventure-gm/internal/agentclient"
	"github.com/corvran/adventure-gm/internal/compactor"
	"github.com/corvran/adventure-gm/internal/imagesvc"
	"github.com/corvran/adventure-gm/internal/panels"
	"github.com/corvran/adventure-gm/internal/sanitize"
	"github.com/corvran/adventure-gm/internal/templates"
	"github.com/corvran/adventure-gm/internal/toolhost"
	"github.com/corvran/adventure-gm/pkg/protocol"
)

// Config tunes one session's behavior.
type Config struct {
	InputTimeout   time.Duration
	CompactionCfg  compactor.Config
	ThemeDebounce  time.Duration
	RecapMinHistory int
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{
		InputTimeout:    90 * time.Second,
		CompactionCfg:   compactor.DefaultConfig(),
		ThemeDebounce:   time.Second,
		RecapMinHistory: 10,
	}
}

// ClassifiedError is returned by Initialize so the connection hub can map
// it straight onto a protocol error code and close reason.
type ClassifiedError struct {
	Code ErrorCode
	Err  error
}

func (e *ClassifiedError) Error() string { return e.Err.Error() }
func (e *ClassifiedError) Unwrap() error { return e.Err }

// ErrorCode mirrors the subset of protocol error codes a session can
// produce during initialization.
type ErrorCode = protocol.ErrorCode

// Session is one live game session bound to a single adventure and
// connection. All processing within a session is strictly sequential;
// only explicit I/O boundaries suspend it.
type Session struct {
	store      *adventure.Store
	client     agentclient.Client
	imageSvc   imagesvc.Service
	projectDir string
	cfg        Config
	events     Events

	handle *adventure.Handle

	playerMgr *templates.Manager
	worldMgr  *templates.Manager

	panelReg  *panels.Registry
	panelHook *panels.Hook
	watcher   *panels.Watcher

	dispatcher *toolhost.Dispatcher

	mu             sync.Mutex
	queue          []queueItem
	isProcessing   bool
	recoveryAttempt int
	cancelCurrent   func()

	themeMu   sync.Mutex
	lastTheme struct {
		mood string
		at   time.Time
	}
}

type queueItem struct {
	text         string
	isSystemPrompt bool
}

// New constructs a session bound to store/client/imageSvc, emitting
// client-facing frames through events. Initialize must be called before
// any input is accepted.
func New(store *adventure.Store, client agentclient.Client, imageSvc imagesvc.Service, projectDir string, cfg Config, events Events) *Session {
	s := &Session{
		store:      store,
		client:     client,
		imageSvc:   imageSvc,
		projectDir: projectDir,
		cfg:        cfg,
		events:     events,
	}
	s.panelReg = panels.NewRegistry()
	return s
}

// Initialize loads adventure state, resolves the project directory,
// instantiates character/world managers, auto-creates missing referenced
// directories, and rebuilds the panel registry from existing files.
func (s *Session) Initialize(ctx context.Context, adventureID, token string) error {
	if s.projectDir == "" {
		return &ClassifiedError{Code: protocol.ErrGM, Err: fmt.Errorf("PROJECT_DIR is not configured")}
	}
	if info, err := os.Stat(s.projectDir); err != nil || !info.IsDir() {
		return &ClassifiedError{Code: protocol.ErrGM, Err: fmt.Errorf("PROJECT_DIR %q does not exist", s.projectDir)}
	}

	handle, err := s.store.Load(adventureID, token)
	if err != nil {
		switch err.(type) {
		case *adventure.ErrNotFound:
			return &ClassifiedError{Code: protocol.ErrAdventureNotFound, Err: err}
		case *adventure.ErrInvalidToken:
			return &ClassifiedError{Code: protocol.ErrInvalidToken, Err: err}
		case *adventure.ErrCorrupted:
			return &ClassifiedError{Code: protocol.ErrStateCorrupted, Err: err}
		default:
			return &ClassifiedError{Code: protocol.ErrGM, Err: err}
		}
	}
	s.handle = handle

	s.playerMgr = templates.NewPlayerManager(s.projectDir)
	s.worldMgr = templates.NewWorldManager(s.projectDir)

	snap := handle.Snapshot()
	if snap.PlayerRef != nil && *snap.PlayerRef != "" {
		slug := refSlug(*snap.PlayerRef)
		if !s.playerMgr.Exists(slug) {
			if _, err := s.playerMgr.CreateAtSlug(slug); err != nil {
				return &ClassifiedError{Code: protocol.ErrGM, Err: fmt.Errorf("recreate missing player dir: %w", err)}
			}
		}
	}
	if snap.WorldRef != nil && *snap.WorldRef != "" {
		slug := refSlug(*snap.WorldRef)
		if !s.worldMgr.Exists(slug) {
			if _, err := s.worldMgr.CreateAtSlug(slug); err != nil {
				return &ClassifiedError{Code: protocol.ErrGM, Err: fmt.Errorf("recreate missing world dir: %w", err)}
			}
		}
	}

	caps := s.buildCapabilities()
	s.dispatcher = toolhost.NewDispatcher(caps)

	s.panelHook = &panels.Hook{
		Registry:  s.panelReg,
		PanelsDir: s.panelsDir(),
		Emit: panels.Emitter{
			OnCreate:  func(p panels.Panel) { s.emitPanelCreate(p) },
			OnUpdate:  func(id, content string) { s.emitPanelUpdate(id, content) },
			OnDismiss: func(id string) { s.emitPanelDismiss(id) },
		},
	}
	s.rescanPanels()

	if watcher, err := panels.NewWatcher(s.panelsDir(), s.panelHook); err == nil {
		s.watcher = watcher
	}

	if s.events.AdventureLoaded != nil {
		s.events.AdventureLoaded(handle.History())
	}
	if s.events.ThemeChange != nil {
		s.events.ThemeChange(snap.CurrentTheme)
	}
	return nil
}

// Close releases the session's background resources (the panel watcher).
func (s *Session) Close() {
	if s.watcher != nil {
		s.watcher.Close()
	}
}

func (s *Session) panelsDir() string {
	if s.handle == nil {
		return ""
	}
	snap := s.handle.Snapshot()
	if snap.PlayerRef == nil {
		return ""
	}
	return s.projectDir + string(os.PathSeparator) + *snap.PlayerRef + string(os.PathSeparator) + "panels"
}

func (s *Session) rescanPanels() {
	if s.panelsDir() == "" {
		return
	}
	s.panelHook.ScanExisting()
}

func refSlug(ref string) string {
	for i := len(ref) - 1; i >= 0; i-- {
		if ref[i] == '/' {
			return ref[i+1:]
		}
	}
	return ref
}

func (s *Session) emitPanelCreate(p panels.Panel) {
	if s.events.PanelCreate != nil {
		s.events.PanelCreate(p)
	}
}
func (s *Session) emitPanelUpdate(id, content string) {
	if s.events.PanelUpdate != nil {
		s.events.PanelUpdate(id, content)
	}
}
func (s *Session) emitPanelDismiss(id string) {
	if s.events.PanelDismiss != nil {
		s.events.PanelDismiss(id)
	}
}
