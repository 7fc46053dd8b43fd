package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sportseed/internal/config"
	"sportseed/internal/repository"
)

func TestSeasonParam(t *testing.T) {
	s := &Server{cfg: &config.Config{Season: 2025}}

	r := httptest.NewRequest("GET", "/api/v1/standings", nil)
	assert.Equal(t, 2025, s.seasonParam(r), "Missing parameter falls back to configured season")

	r = httptest.NewRequest("GET", "/api/v1/standings?season=2024", nil)
	assert.Equal(t, 2024, s.seasonParam(r))

	r = httptest.NewRequest("GET", "/api/v1/standings?season=twenty", nil)
	assert.Equal(t, 2025, s.seasonParam(r), "Unparseable parameter falls back")
}

func TestWriteJSON(t *testing.T) {
	w := httptest.NewRecorder()
	writeJSON(w, 200, map[string]any{"status": "ok"})

	assert.Equal(t, 200, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestStatusForError(t *testing.T) {
	missing := fmt.Errorf("standing not found: team=XX season=2025: %w", repository.ErrNotFound)
	assert.Equal(t, http.StatusNotFound, statusForError(missing))

	assert.Equal(t, http.StatusInternalServerError, statusForError(errors.New("connection refused")),
		"Connectivity failures are not the client's fault")
}

func TestNewServerAddr(t *testing.T) {
	s := NewServer(&config.Config{APIPort: 8080, Season: 2025}, nil)
	assert.Equal(t, ":8080", s.http.Addr)
}
