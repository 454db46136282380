package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/corvran/adventure-gm/internal/adventure"
	"github.com/corvran/adventure-gm/internal/agentclient"
	"github.com/corvran/adventure-gm/internal/config"
	"github.com/corvran/adventure-gm/internal/gateway"
	"github.com/corvran/adventure-gm/internal/imagesvc"
)

func newTestHandler(t *testing.T) (*Handler, *adventure.Store) {
	t.Helper()
	store := adventure.NewStore(t.TempDir(), nil)
	cfg := config.Default()
	cfg.ProjectDir = t.TempDir()
	hub := gateway.NewHub(cfg, store, agentclient.NewMockClient(), imagesvc.NoOpService{})
	return New(store, nil, hub, ""), store
}

func TestHealthEndpoint(t *testing.T) {
	h, _ := newTestHandler(t)
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Body.String() != "ok" {
		t.Fatalf("unexpected body %q", rec.Body.String())
	}
}

func TestNewAdventureThenMetadata(t *testing.T) {
	h, _ := newTestHandler(t)
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)

	req := httptest.NewRequest(http.MethodPost, "/adventure/new", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var created map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created["adventureId"] == "" || created["sessionToken"] == "" {
		t.Fatalf("expected adventureId and sessionToken, got %+v", created)
	}

	metaReq := httptest.NewRequest(http.MethodGet, "/adventure/"+created["adventureId"], nil)
	metaRec := httptest.NewRecorder()
	mux.ServeHTTP(metaRec, metaReq)
	if metaRec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", metaRec.Code, metaRec.Body.String())
	}

	var meta adventure.Metadata
	if err := json.Unmarshal(metaRec.Body.Bytes(), &meta); err != nil {
		t.Fatalf("decode metadata: %v", err)
	}
	if meta.ID != created["adventureId"] {
		t.Fatalf("expected id %s, got %s", created["adventureId"], meta.ID)
	}
}

func TestAdventureMetadataNotFound(t *testing.T) {
	h, _ := newTestHandler(t)
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)

	req := httptest.NewRequest(http.MethodGet, "/adventure/does-not-exist", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestAdventureIndexUnconfiguredReturns503(t *testing.T) {
	h, _ := newTestHandler(t)
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)

	req := httptest.NewRequest(http.MethodGet, "/admin/adventures", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}
