package api

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/botirk38/playersim/internal/validation"
	"github.com/botirk38/playersim/stats"
	"github.com/botirk38/playersim/types"
	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"
)

const maxBodyBytes = 1 << 20

// SimilarRequest is the body of POST /api/v1/similar. Absent fields take
// the configured defaults; an explicit empty list is kept as empty.
type SimilarRequest struct {
	Player              string    `json:"player" validate:"required"`
	ExcludedPositions   *[]string `json:"excluded_positions"`
	MinMatches          *int      `json:"min_matches" validate:"omitempty,gte=0"`
	AllowedCompetitions []string  `json:"allowed_competitions"`
	ResultCount         *int      `json:"result_count" validate:"omitempty,gte=0"`
}

// filter merges the request over defaults.
func (req SimilarRequest) filter(defaults types.FilterConfig) types.FilterConfig {
	cfg := defaults
	if req.ExcludedPositions != nil {
		cfg.ExcludedPositions = *req.ExcludedPositions
	}
	if req.MinMatches != nil {
		cfg.MinMatches = *req.MinMatches
	}
	if req.AllowedCompetitions != nil {
		cfg.AllowedCompetitions = req.AllowedCompetitions
	}
	if req.ResultCount != nil {
		cfg.ResultCount = *req.ResultCount
	}
	return cfg
}

// OptionsResponse lists the values the filters accept.
type OptionsResponse struct {
	Positions    []string `json:"positions"`
	Competitions []string `json:"competitions"`
}

// HealthCheck returns service health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "playersim",
	})
}

// ListPlayers returns every player name in label order.
func (h *Handler) ListPlayers(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string][]string{"players": h.retriever.Names()})
}

// GetPlayer returns one player's profile.
func (h *Handler) GetPlayer(w http.ResponseWriter, r *http.Request) {
	profile, err := h.retriever.Profile(pathName(r))
	if err != nil {
		h.respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, profile)
}

// GetOptions returns the position and competition option lists.
func (h *Handler) GetOptions(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, OptionsResponse{
		Positions:    h.retriever.Positions(),
		Competitions: h.retriever.Competitions(),
	})
}

// FindSimilar retrieves the players most similar to the requested one.
func (h *Handler) FindSimilar(w http.ResponseWriter, r *http.Request) {
	var req SimilarRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}
	if err := validation.ValidateStruct(&req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.retriever.Retrieve(r.Context(), req.Player, req.filter(h.defaults))
	if err != nil {
		h.respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

// GlobalStats returns dataset-wide statistics.
func (h *Handler) GlobalStats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.global)
}

// PlayerStats returns statistics for one player.
func (h *Handler) PlayerStats(w http.ResponseWriter, r *http.Request) {
	ps, err := stats.ForPlayer(h.records, pathName(r))
	if err != nil {
		h.respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, ps)
}

// TeamStats returns statistics for one team.
func (h *Handler) TeamStats(w http.ResponseWriter, r *http.Request) {
	name := pathName(r)
	ts, ok := stats.ForTeam(h.records, name)
	if !ok {
		respondError(w, http.StatusNotFound, "team not found: "+name)
		return
	}
	respondJSON(w, http.StatusOK, ts)
}

// pathName returns the {name} parameter. chi matches on the raw path when
// the URL carries escapes such as %2F, so those are decoded here.
func pathName(r *http.Request) string {
	name := chi.URLParam(r, "name")
	if r.URL.RawPath == "" {
		return name
	}
	if decoded, err := url.PathUnescape(name); err == nil {
		return decoded
	}
	return name
}

// respondErr maps domain errors to status codes.
func (h *Handler) respondErr(w http.ResponseWriter, err error) {
	var verr *validation.RequestValidationError
	switch {
	case errors.Is(err, types.ErrUnknownPlayer):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &verr):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error().Err(err).Msg("request failed")
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// respondError writes an error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
