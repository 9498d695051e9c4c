// Package server exposes the leaderboard over a JSON API. Read routes are
// public; every mutating route sits behind the admin passphrase gate.
// Handlers validate command arguments before the store is invoked; the store
// re-validates defensively.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"
	"github.com/rs/zerolog"

	"pvp-leaderboard/internal/config"
	"pvp-leaderboard/internal/domain"
	"pvp-leaderboard/internal/middleware"
	"pvp-leaderboard/internal/season"
	"pvp-leaderboard/internal/seed"
	"pvp-leaderboard/internal/service"
	"pvp-leaderboard/internal/store"
)

const maxImportBytes = 8 << 20

type Server struct {
	svc    *service.LeaderboardService
	cfg    *config.Config
	logger zerolog.Logger
}

func NewServer(svc *service.LeaderboardService, cfg *config.Config, logger zerolog.Logger) *Server {
	return &Server{svc: svc, cfg: cfg, logger: logger}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID(s.logger))

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})
	r.Use(c.Handler)

	r.Get("/health", s.health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/players", s.listPlayers)
		r.Get("/players/{id}", s.getPlayer)
		r.Get("/matches", s.listMatches)
		r.Get("/championships", s.listChampionships)
		r.Get("/leaderboard", s.leaderboard)
		r.Get("/seasons/current", s.currentSeason)

		r.Group(func(r chi.Router) {
			r.Use(middleware.AdminGate(s.cfg.AdminPassphrase, s.logger))

			r.Post("/players", s.addPlayer)
			r.Patch("/players/{id}", s.updatePlayer)
			r.Patch("/players/{id}/stats", s.overrideStats)
			r.Delete("/players/{id}", s.deletePlayer)
			r.Post("/matches", s.recordMatch)
			r.Post("/championships", s.addChampionship)
			r.Delete("/championships/{id}", s.deleteChampionship)
			r.Get("/export", s.exportData)
			r.Post("/import", s.importData)
		})
	})

	return r
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) listPlayers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Players())
}

func (s *Server) getPlayer(w http.ResponseWriter, r *http.Request) {
	player, err := s.svc.Player(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found", "player not found")
		return
	}
	writeJSON(w, http.StatusOK, player)
}

func (s *Server) listMatches(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Matches())
}

func (s *Server) listChampionships(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Championships())
}

func (s *Server) leaderboard(w http.ResponseWriter, r *http.Request) {
	seasonKey := r.URL.Query().Get("season")
	if seasonKey == "" {
		seasonKey = season.Current(time.Now()).Key()
	}
	category := domain.Category(r.URL.Query().Get("category"))
	if category == "" {
		category = domain.CategoryOverall
	}

	entries, err := s.svc.Leaderboard(seasonKey, category)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	if entries == nil {
		entries = []store.LeaderboardEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) currentSeason(w http.ResponseWriter, r *http.Request) {
	current := s.svc.CurrentSeason(time.Now())
	writeJSON(w, http.StatusOK, map[string]any{
		"season": current,
		"key":    current.Key(),
	})
}

func (s *Server) addPlayer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid JSON body")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "bad_request", "name is required")
		return
	}

	player, err := s.svc.AddPlayer(req.Name)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, player)
}

func (s *Server) updatePlayer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        *string     `json:"name"`
		DisplayName *string     `json:"displayName"`
		SkinName    *string     `json:"skinName"`
		Era         *domain.Era `json:"era"`
		Location    *string     `json:"location"`
		PrimeTime   *string     `json:"primeTime"`
		CustomRank  *string     `json:"customRank"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid JSON body")
		return
	}

	player, err := s.svc.UpdatePlayer(chi.URLParam(r, "id"), store.PlayerPatch{
		Name:        req.Name,
		DisplayName: req.DisplayName,
		SkinName:    req.SkinName,
		Era:         req.Era,
		Location:    req.Location,
		PrimeTime:   req.PrimeTime,
		CustomRank:  req.CustomRank,
	})
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, player)
}

func (s *Server) overrideStats(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SeasonKey  string          `json:"seasonKey"`
		Category   domain.Category `json:"category"`
		Elo        *float64        `json:"elo"`
		Tier       *domain.Tier    `json:"tier"`
		ManualRank *int            `json:"manualRank"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid JSON body")
		return
	}
	if req.SeasonKey == "" || req.Category == "" {
		writeError(w, http.StatusBadRequest, "bad_request", "seasonKey and category are required")
		return
	}

	player, err := s.svc.OverrideStats(chi.URLParam(r, "id"), req.SeasonKey, req.Category, store.StatsOverride{
		Elo:        req.Elo,
		Tier:       req.Tier,
		ManualRank: req.ManualRank,
	})
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, player)
}

func (s *Server) deletePlayer(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeletePlayer(chi.URLParam(r, "id")); err != nil {
		s.writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) recordMatch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		WinnerID       string            `json:"winnerId"`
		ParticipantIDs []string          `json:"participantIds"`
		BattleType     domain.BattleType `json:"battleType"`
		Category       domain.Category   `json:"category"`
		Location       string            `json:"location"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid JSON body")
		return
	}
	if req.WinnerID == "" || len(req.ParticipantIDs) < 2 {
		writeError(w, http.StatusBadRequest, "bad_request", "a winner and at least 2 participants are required")
		return
	}
	winnerListed := false
	for _, id := range req.ParticipantIDs {
		if id == req.WinnerID {
			winnerListed = true
			break
		}
	}
	if !winnerListed {
		writeError(w, http.StatusBadRequest, "bad_request", "winner must be among the participants")
		return
	}

	match, err := s.svc.RecordMatch(req.WinnerID, req.ParticipantIDs, req.BattleType, req.Category, req.Location)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, match)
}

func (s *Server) addChampionship(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SeasonKey string `json:"seasonKey"`
		Name      string `json:"name"`
		WinnerID  string `json:"winnerId"`
		SecondID  string `json:"secondId"`
		ThirdID   string `json:"thirdId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid JSON body")
		return
	}
	if req.Name == "" || req.WinnerID == "" || req.SeasonKey == "" {
		writeError(w, http.StatusBadRequest, "bad_request", "seasonKey, name and winnerId are required")
		return
	}

	champ, err := s.svc.AddChampionship(req.SeasonKey, req.Name, req.WinnerID, req.SecondID, req.ThirdID)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, champ)
}

func (s *Server) deleteChampionship(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteChampionship(chi.URLParam(r, "id")); err != nil {
		s.writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) exportData(w http.ResponseWriter, r *http.Request) {
	data, err := s.svc.Export()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", "failed to build export")
		return
	}
	filename := fmt.Sprintf("blacksheep_backup_%s.json", season.Current(time.Now()).Key())
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (s *Server) importData(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxImportBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "failed to read upload")
		return
	}

	if err := s.svc.Import(data); err != nil {
		if errors.Is(err, seed.ErrMissingPlayers) {
			writeError(w, http.StatusBadRequest, "bad_request", "import requires a players array")
			return
		}
		writeError(w, http.StatusBadRequest, "bad_request", "import is not valid JSON")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "imported"})
}

func (s *Server) writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrPlayerNotFound), errors.Is(err, store.ErrChampionshipNotFound):
		writeError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, store.ErrInvalidMatch), errors.Is(err, store.ErrInvalidChampionship), errors.Is(err, store.ErrInvalidPlayer):
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
	default:
		s.logger.Error().Err(err).Msg("unexpected store error")
		writeError(w, http.StatusInternalServerError, "internal", "internal error")
	}
}
