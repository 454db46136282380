// Package gateway implements the Connection Hub (C8): the websocket
// front door that accepts one connection per (adventureId, token) pair,
// drives a bound Game Session, and tears everything down cleanly on
// shutdown. Grounded on the teacher pack's gateway.Server/Client split,
// generalized from its bus-broadcast model to one session per connection.
package gateway

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/corvran/adventure-gm/internal/adventure"
	"github.com/corvran/adventure-gm/internal/agentclient"
	"github.com/corvran/adventure-gm/internal/config"
	"github.com/corvran/adventure-gm/internal/gamesession"
	"github.com/corvran/adventure-gm/internal/imagesvc"
	"github.com/corvran/adventure-gm/internal/panels"
	"github.com/corvran/adventure-gm/pkg/protocol"
)

const (
	heartbeatInterval = 30 * time.Second
	heartbeatTimeout  = 60 * time.Second
	shutdownDrain     = 100 * time.Millisecond
)

// Hub owns the websocket upgrade endpoint and the table of active
// connections, keyed on (adventureId, token).
type Hub struct {
	cfg      *config.Config
	store    *adventure.Store
	client   agentclient.Client
	imageSvc imagesvc.Service

	upgrader websocket.Upgrader
	limiter  *connLimiter

	mu        sync.RWMutex
	conns     map[string]*Conn
	draining  bool

	heartbeatStop chan struct{}
}

// NewHub wires a connection hub against the session engine's collaborators.
func NewHub(cfg *config.Config, store *adventure.Store, client agentclient.Client, imageSvc imagesvc.Service) *Hub {
	h := &Hub{
		cfg:      cfg,
		store:    store,
		client:   client,
		imageSvc: imageSvc,
		conns:    make(map[string]*Conn),
		limiter:  newConnLimiter(5, 10),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

func (h *Hub) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return false
	}
	for _, allowed := range h.cfg.AllowedOrigins {
		if origin == allowed || allowed == "*" {
			return true
		}
	}
	slog.Warn("gateway: origin rejected", "origin", origin)
	return false
}

// ServeWS is the /ws HTTP handler implementing the accept flow (§4.8).
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	draining := h.draining
	active := len(h.conns)
	h.mu.RUnlock()
	if draining {
		http.Error(w, "server shutting down", http.StatusServiceUnavailable)
		return
	}

	adventureID := r.URL.Query().Get("adventureId")
	token := r.URL.Query().Get("token")
	if adventureID == "" || token == "" {
		http.Error(w, "adventureId and token are required", http.StatusBadRequest)
		return
	}

	if active >= h.cfg.MaxConnections {
		conn, err := h.upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		writeErrorFrame(conn, protocol.ErrGM, "Server at capacity, please try again shortly.", true, "")
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(protocol.CloseCapacity, "at capacity"), time.Now().Add(time.Second))
		conn.Close()
		return
	}

	wsConn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("gateway: upgrade failed", "error", err)
		return
	}

	c := newConn(wsConn, h, adventureID, token)
	h.register(c)
	go c.initializeAndRun()
}

func (h *Hub) register(c *Conn) {
	h.mu.Lock()
	h.conns[c.id] = c
	h.mu.Unlock()
}

func (h *Hub) unregister(c *Conn) {
	h.mu.Lock()
	delete(h.conns, c.id)
	h.mu.Unlock()
	h.limiter.forget(c.id)
}

// StartHeartbeat launches the 30s scan that closes stale connections;
// returns a stop function.
func (h *Hub) StartHeartbeat() func() {
	ticker := time.NewTicker(heartbeatInterval)
	stop := make(chan struct{})
	go func() {
		for {
			select {
			case <-ticker.C:
				h.sweepStale()
			case <-stop:
				ticker.Stop()
				return
			}
		}
	}()
	return func() { close(stop) }
}

func (h *Hub) sweepStale() {
	h.mu.RLock()
	snapshot := make([]*Conn, 0, len(h.conns))
	for _, c := range h.conns {
		snapshot = append(snapshot, c)
	}
	h.mu.RUnlock()

	cutoff := time.Now().Add(-heartbeatTimeout)
	for _, c := range snapshot {
		if c.lastPing().Before(cutoff) {
			c.closeWithCode(protocol.CloseHeartbeatTimeout, "Heartbeat timeout")
		}
	}
}

// Shutdown refuses new connections, stops the heartbeat, and drains all
// active connections per §4.8's shutdown sequence.
func (h *Hub) Shutdown(ctx context.Context, stopHeartbeat func()) {
	h.mu.Lock()
	h.draining = true
	snapshot := make([]*Conn, 0, len(h.conns))
	for _, c := range h.conns {
		snapshot = append(snapshot, c)
	}
	h.mu.Unlock()

	if stopHeartbeat != nil {
		stopHeartbeat()
	}

	for _, c := range snapshot {
		c.closeWithCode(websocket.CloseGoingAway, "server shutting down")
	}
	time.Sleep(shutdownDrain)
}

// buildSession constructs the gamesession.Session this connection will own,
// wiring its Events straight onto websocket writes.
func (h *Hub) buildSession(c *Conn) *gamesession.Session {
	events := gamesession.Events{
		Pong: func() { c.send(protocol.Envelope{Type: protocol.TypePong}) },
		AdventureLoaded: func(history adventure.History) {
			c.send(protocol.Envelope{Type: protocol.TypeAdventureLoaded, Payload: map[string]any{
				"adventureId": c.adventureID,
				"history":     history,
			}})
		},
		ThemeChange: func(theme adventure.Theme) {
			c.send(protocol.Envelope{Type: protocol.TypeThemeChange, Payload: theme})
		},
		GMResponseStart: func(messageID string) {
			c.send(protocol.Envelope{Type: protocol.TypeGMResponseStart, Payload: map[string]any{"messageId": messageID}})
		},
		GMResponseChunk: func(messageID, text string) {
			c.send(protocol.Envelope{Type: protocol.TypeGMResponseChunk, Payload: map[string]any{"messageId": messageID, "text": text}})
		},
		GMResponseEnd: func(messageID string) {
			c.send(protocol.Envelope{Type: protocol.TypeGMResponseEnd, Payload: map[string]any{"messageId": messageID}})
		},
		ToolStatus: func(active bool, description string) {
			state := protocol.ToolStatusIdle
			if active {
				state = protocol.ToolStatusActive
			}
			c.send(protocol.Envelope{Type: protocol.TypeToolStatus, Payload: map[string]any{"state": state, "description": description}})
		},
		PanelCreate: func(p panels.Panel) { c.send(protocol.Envelope{Type: protocol.TypePanelCreate, Payload: p}) },
		RecapStarted: func() { c.send(protocol.Envelope{Type: protocol.TypeRecapStarted}) },
		RecapComplete: func(history adventure.History, summary *adventure.Summary) {
			c.send(protocol.Envelope{Type: protocol.TypeRecapComplete, Payload: map[string]any{"history": history, "summary": summary}})
		},
		RecapError: func(reason string) {
			c.send(protocol.Envelope{Type: protocol.TypeRecapError, Payload: map[string]any{"reason": reason}})
		},
		Error: func(code, message string, retryable bool, technicalDetails string) {
			writeErrorFrame(c.conn, protocol.ErrorCode(code), message, retryable, technicalDetails)
		},
	}
	// PanelUpdate/PanelDismiss need their own (id, content)/(id) shapes,
	// which the generic PanelCreate closure above can't express — wired
	// separately so each keeps its own argument list.
	events.PanelUpdate = func(id, content string) {
		c.send(protocol.Envelope{Type: protocol.TypePanelUpdate, Payload: map[string]any{"id": id, "content": content}})
	}
	events.PanelDismiss = func(id string) {
		c.send(protocol.Envelope{Type: protocol.TypePanelDismiss, Payload: map[string]any{"id": id}})
	}

	return gamesession.New(h.store, h.client, h.imageSvc, h.cfg.ProjectDir, gamesession.DefaultConfig(), events)
}
