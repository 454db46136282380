package gateway

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/corvran/adventure-gm/internal/gamesession"
	"github.com/corvran/adventure-gm/pkg/protocol"
)

// Conn is one accepted websocket connection and the Game Session bound to
// it once initialization succeeds.
type Conn struct {
	id          string
	adventureID string
	token       string
	conn        *websocket.Conn
	hub         *Hub

	writeMu sync.Mutex

	mu      sync.Mutex
	session *gamesession.Session
	ready   bool
	ping    time.Time
}

func newConn(wsConn *websocket.Conn, h *Hub, adventureID, token string) *Conn {
	return &Conn{
		id:          adventureID + "|" + token,
		adventureID: adventureID,
		token:       token,
		conn:        wsConn,
		hub:         h,
		ping:        time.Now(),
	}
}

func (c *Conn) lastPing() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ping
}

func (c *Conn) touchPing() {
	c.mu.Lock()
	c.ping = time.Now()
	c.mu.Unlock()
}

// send writes one frame, serializing concurrent writers from the session's
// event callbacks and the read loop's pong replies.
func (c *Conn) send(env protocol.Envelope) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.conn.WriteJSON(env); err != nil {
		slog.Warn("gateway: write failed", "conn", c.id, "error", err)
	}
}

func (c *Conn) closeWithCode(code int, reason string) {
	c.writeMu.Lock()
	c.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), time.Now().Add(time.Second))
	c.writeMu.Unlock()
	c.conn.Close()
}

// initializeAndRun performs the async session initialize (§4.8 step 4)
// then, on success, runs the per-connection read loop until close.
func (c *Conn) initializeAndRun() {
	defer func() {
		c.hub.unregister(c)
		c.mu.Lock()
		sess := c.session
		c.mu.Unlock()
		if sess != nil {
			sess.Close()
		}
		c.conn.Close()
	}()

	sess := c.hub.buildSession(c)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := sess.Initialize(ctx, c.adventureID, c.token); err != nil {
		code, message, details := classifyInitError(err)
		writeErrorFrame(c.conn, code, message, false, details)
		c.closeWithCode(protocol.CloseAuthFailure, "initialization failed")
		return
	}

	c.mu.Lock()
	c.session = sess
	c.ready = true
	c.mu.Unlock()

	c.readLoop()
}

func classifyInitError(err error) (protocol.ErrorCode, string, string) {
	if ce, ok := err.(*gamesession.ClassifiedError); ok {
		switch ce.Code {
		case protocol.ErrAdventureNotFound:
			return protocol.ErrAdventureNotFound, "Adventure not found.", ce.Error()
		case protocol.ErrInvalidToken:
			return protocol.ErrInvalidToken, "Invalid session token.", ce.Error()
		case protocol.ErrStateCorrupted:
			return protocol.ErrStateCorrupted, "Adventure state is corrupted.", ce.Error()
		}
	}
	return protocol.ErrGM, "Failed to start the session.", err.Error()
}

type inboundFrame struct {
	Type string          `json:"type"`
	Text string          `json:"text,omitempty"`
}

// readLoop parses inbound frames and type-dispatches per §4.8's
// per-connection runtime table.
func (c *Conn) readLoop() {
	c.touchPing()
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var frame inboundFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			slog.Warn("gateway: malformed frame", "conn", c.id, "error", err)
			continue
		}

		switch frame.Type {
		case protocol.TypePing:
			c.touchPing()
			c.send(protocol.Envelope{Type: protocol.TypePong})
		case protocol.TypePlayerInput:
			c.handlePlayerInput(frame.Text)
		case protocol.TypeStartAdventure:
			// legacy no-op
		default:
			slog.Debug("gateway: ignored unknown frame type", "conn", c.id, "type", frame.Type)
		}
	}
}

func (c *Conn) handlePlayerInput(text string) {
	c.mu.Lock()
	ready, sess := c.ready, c.session
	c.mu.Unlock()
	if !ready || sess == nil {
		writeErrorFrame(c.conn, protocol.ErrGM, "Session is not ready yet.", true, "")
		return
	}
	if !c.hub.limiter.allow(c.id) {
		writeErrorFrame(c.conn, protocol.ErrRateLimit, "Slow down a little.", true, "")
		return
	}
	if err := sess.HandleInput(text, false); err != nil {
		writeErrorFrame(c.conn, protocol.ErrGM, "Input was rejected.", false, err.Error())
	}
}

func writeErrorFrame(conn *websocket.Conn, code protocol.ErrorCode, message string, retryable bool, details string) {
	env := protocol.Envelope{Type: protocol.TypeError, Payload: protocol.ErrorPayload{
		Code: code, Message: message, Retryable: retryable, TechnicalDetails: details,
	}}
	conn.WriteJSON(env)
}
