// Package api serves the read-only query endpoints over the seeded tables.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"sportseed/internal/config"
	"sportseed/internal/repository"
)

// Server wraps the HTTP query API
type Server struct {
	cfg  *config.Config
	db   *repository.Database
	http *http.Server
}

// NewServer builds the query API server and its routes
func NewServer(cfg *config.Config, db *repository.Database) *Server {
	s := &Server{cfg: cfg, db: db}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/api/v1/standings", s.handleStandings)
	mux.HandleFunc("/api/v1/standings/conferences", s.handleConferenceSummary)
	mux.HandleFunc("/api/v1/schedule/weeks", s.handleWeekSummary)
	mux.HandleFunc("/api/v1/schedule/teams", s.handleTeamSummary)

	s.http = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.APIPort),
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return s
}

// Start serves requests until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	log.Info().Str("addr", s.http.Addr).Msg("Query API listening")
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("query api server failed: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.db.Health(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"pool":   s.db.PoolStats(),
	})
}

func (s *Server) handleStandings(w http.ResponseWriter, r *http.Request) {
	season := s.seasonParam(r)
	conference := r.URL.Query().Get("conference")

	if team := r.URL.Query().Get("team"); team != "" {
		standing, err := s.db.Standings.GetByTeam(r.Context(), season, team)
		if err != nil {
			writeError(w, statusForError(err), err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"season": season, "standing": standing})
		return
	}

	standings, err := s.db.Standings.List(r.Context(), season, conference)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"season":    season,
		"count":     len(standings),
		"standings": standings,
	})
}

func (s *Server) handleConferenceSummary(w http.ResponseWriter, r *http.Request) {
	season := s.seasonParam(r)

	summaries, err := s.db.Standings.ConferenceSummary(r.Context(), season)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"season": season, "conferences": summaries})
}

func (s *Server) handleWeekSummary(w http.ResponseWriter, r *http.Request) {
	season := s.seasonParam(r)

	summaries, err := s.db.Schedule.WeekSummary(r.Context(), season)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"season": season, "weeks": summaries})
}

func (s *Server) handleTeamSummary(w http.ResponseWriter, r *http.Request) {
	season := s.seasonParam(r)

	summaries, err := s.db.Schedule.TeamSummary(r.Context(), season)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"season": season, "teams": summaries})
}

// seasonParam reads the season query parameter, falling back to the
// configured default season.
func (s *Server) seasonParam(r *http.Request) int {
	if raw := r.URL.Query().Get("season"); raw != "" {
		if season, err := strconv.Atoi(raw); err == nil {
			return season
		}
		log.Warn().Str("season", raw).Msg("Ignoring unparseable season parameter")
	}
	return s.cfg.Season
}

// statusForError maps repository errors to HTTP statuses. Only a missing
// row is the client's problem; everything else is ours.
func statusForError(err error) int {
	if errors.Is(err, repository.ErrNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	log.Error().Err(err).Int("status", status).Msg("Request failed")
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
