// Package httpapi implements the REST surface around the Connection Hub:
// adventure creation/metadata, liveness, the Adventure Index admin listing,
// and static asset serving. Grounded on the teacher's internal/http handler
// style (struct + RegisterRoutes(mux), Go 1.22 method-pattern routes).
package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/corvran/adventure-gm/internal/adventure"
	"github.com/corvran/adventure-gm/internal/gateway"
	"github.com/corvran/adventure-gm/internal/index"
)

// Handler wires the session engine's HTTP endpoints (§6.3) onto a mux.
type Handler struct {
	store      *adventure.Store
	indexStore index.Store
	hub        *gateway.Hub
	staticRoot string
}

// New builds the HTTP handler. indexStore may be nil, in which case
// /admin/adventures reports 503 rather than panicking.
func New(store *adventure.Store, indexStore index.Store, hub *gateway.Hub, staticRoot string) *Handler {
	return &Handler{store: store, indexStore: indexStore, hub: hub, staticRoot: staticRoot}
}

// RegisterRoutes registers every endpoint from §6.3 onto mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /adventure/new", h.handleNewAdventure)
	mux.HandleFunc("GET /adventure/{id}", h.handleAdventureMetadata)
	mux.HandleFunc("GET /api/health", h.handleHealth)
	mux.HandleFunc("GET /admin/adventures", h.handleAdventureIndex)
	mux.HandleFunc("/ws", h.hub.ServeWS)

	if h.staticRoot != "" {
		mux.Handle("/backgrounds/", http.StripPrefix("/backgrounds/",
			http.FileServer(http.Dir(h.staticRoot+"/backgrounds"))))
		mux.Handle("/", http.FileServer(http.Dir(h.staticRoot)))
	}
}

func (h *Handler) handleNewAdventure(w http.ResponseWriter, r *http.Request) {
	handle, err := h.store.Create()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create adventure"})
		return
	}
	snap := handle.Snapshot()
	writeJSON(w, http.StatusCreated, map[string]string{
		"adventureId":  snap.ID,
		"sessionToken": snap.SessionToken,
	})
}

func (h *Handler) handleAdventureMetadata(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	meta, err := h.store.LoadMetadata(id)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "adventure not found"})
		return
	}
	writeJSON(w, http.StatusOK, meta)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// handleAdventureIndex serves the supplemental admin read-model listing
// (?since=RFC3339), backed by the Adventure Index rather than the State
// Store itself.
func (h *Handler) handleAdventureIndex(w http.ResponseWriter, r *http.Request) {
	if h.indexStore == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "adventure index not configured"})
		return
	}
	since := time.Time{}
	if raw := r.URL.Query().Get("since"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "since must be RFC3339"})
			return
		}
		since = t
	}
	rows, err := h.indexStore.List(r.Context(), since)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list adventures"})
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
