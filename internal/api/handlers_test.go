package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/botirk38/playersim"
	"github.com/botirk38/playersim/embeddings"
	"github.com/botirk38/playersim/index"
	"github.com/botirk38/playersim/types"
	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

func testRouter(t *testing.T, cfg Config) http.Handler {
	t.Helper()
	r := func(match, player, team, pos, comp string) types.PlayerRecord {
		return types.PlayerRecord{
			MatchID: match, PlayerName: player, TeamName: team,
			PositionName: pos, CompetitionName: comp, SeasonName: "2010/2011",
		}
	}
	records := []types.PlayerRecord{
		r("1", "Xavi", "Barcelona", "Center Midfield", "La Liga"),
		r("1", "Iniesta", "Barcelona", "Left Center Midfield", "La Liga"),
		r("2", "Iniesta", "Barcelona", "Left Center Midfield", "La Liga"),
		r("3", "Casillas", "Real Madrid", "Goalkeeper", "La Liga"),
		r("4", "Diego Forlan", "Uruguay", "Center Forward", "World Cup"),
	}
	idx, err := index.Build(records, map[string]int{"Xavi": 0, "Iniesta": 1, "Casillas": 2, "Diego Forlan": 3})
	if err != nil {
		t.Fatalf("Failed to build index: %v", err)
	}
	store, _ := embeddings.NewStore([][]float64{{1, 0}, {1, 0.1}, {1, 0.05}, {0, 1}})
	ret, err := playersim.New(idx, store)
	if err != nil {
		t.Fatalf("Failed to create retriever: %v", err)
	}

	defaults := types.FilterConfig{ExcludedPositions: []string{"Goalkeeper"}, MinMatches: 1, ResultCount: 5}
	return NewRouter(NewHandler(ret, records, defaults, zerolog.Nop()), cfg)
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthCheck(t *testing.T) {
	rec := do(t, testRouter(t, Config{}), http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Expected JSON content type, got %s", ct)
	}
}

func TestFindSimilar(t *testing.T) {
	h := testRouter(t, Config{})

	tests := []struct {
		name      string
		body      string
		wantCode  int
		wantNames []string
	}{
		{"Defaults", `{"player": "Xavi"}`, http.StatusOK, []string{"Iniesta", "Diego Forlan"}},
		{"ExplicitEmptyExclusions", `{"player": "Xavi", "excluded_positions": []}`, http.StatusOK, []string{"Casillas", "Iniesta", "Diego Forlan"}},
		{"MinMatches", `{"player": "Xavi", "min_matches": 2}`, http.StatusOK, []string{"Iniesta"}},
		{"Competitions", `{"player": "Xavi", "allowed_competitions": ["World Cup"]}`, http.StatusOK, []string{"Diego Forlan"}},
		{"ResultCount", `{"player": "Xavi", "result_count": 1}`, http.StatusOK, []string{"Iniesta"}},
		{"UnknownPlayer", `{"player": "Messi"}`, http.StatusNotFound, nil},
		{"MissingPlayer", `{}`, http.StatusBadRequest, nil},
		{"NegativeCount", `{"player": "Xavi", "result_count": -1}`, http.StatusBadRequest, nil},
		{"UnknownField", `{"player": "Xavi", "top_k": 3}`, http.StatusBadRequest, nil},
		{"Malformed", `{"player":`, http.StatusBadRequest, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/api/v1/similar", tt.body)
			if rec.Code != tt.wantCode {
				t.Fatalf("Expected %d, got %d: %s", tt.wantCode, rec.Code, rec.Body.String())
			}
			if tt.wantCode != http.StatusOK {
				var body map[string]string
				if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil || body["error"] == "" {
					t.Errorf("Expected error body, got %s", rec.Body.String())
				}
				return
			}

			var resp playersim.Response
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("Failed to decode response: %v", err)
			}
			if resp.Query.Name != "Xavi" {
				t.Errorf("Expected query Xavi, got %s", resp.Query.Name)
			}
			if len(resp.Results) != len(tt.wantNames) {
				t.Fatalf("Expected %v, got %+v", tt.wantNames, resp.Results)
			}
			for i, want := range tt.wantNames {
				if resp.Results[i].Name != want {
					t.Errorf("Result %d: expected %s, got %s", i, want, resp.Results[i].Name)
				}
			}
		})
	}
}

func TestPlayerRoutes(t *testing.T) {
	h := testRouter(t, Config{})

	rec := do(t, h, http.MethodGet, "/api/v1/players", "")
	var list map[string][]string
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("Failed to decode players: %v", err)
	}
	if len(list["players"]) != 4 || list["players"][0] != "Xavi" {
		t.Errorf("Unexpected players: %v", list)
	}

	rec = do(t, h, http.MethodGet, "/api/v1/players/Diego%20Forlan", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var profile types.PlayerProfile
	if err := json.Unmarshal(rec.Body.Bytes(), &profile); err != nil {
		t.Fatalf("Failed to decode profile: %v", err)
	}
	if profile.Name != "Diego Forlan" || profile.Clubs[0] != "Uruguay" {
		t.Errorf("Unexpected profile: %+v", profile)
	}

	if rec := do(t, h, http.MethodGet, "/api/v1/players/Messi", ""); rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", rec.Code)
	}

	rec = do(t, h, http.MethodGet, "/api/v1/options", "")
	var opts OptionsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &opts); err != nil {
		t.Fatalf("Failed to decode options: %v", err)
	}
	if len(opts.Positions) != 4 || len(opts.Competitions) != 2 {
		t.Errorf("Unexpected options: %+v", opts)
	}
}

func TestStatsRoutes(t *testing.T) {
	h := testRouter(t, Config{})

	rec := do(t, h, http.MethodGet, "/api/v1/stats", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"unique_matches":4`) {
		t.Errorf("Unexpected global stats: %d %s", rec.Code, rec.Body.String())
	}

	rec = do(t, h, http.MethodGet, "/api/v1/stats/players/Iniesta", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"unique_matches":2`) {
		t.Errorf("Unexpected player stats: %d %s", rec.Code, rec.Body.String())
	}
	if rec := do(t, h, http.MethodGet, "/api/v1/stats/players/Messi", ""); rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown player, got %d", rec.Code)
	}

	rec = do(t, h, http.MethodGet, "/api/v1/stats/teams/Barcelona", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"appearances_by_player"`) {
		t.Errorf("Unexpected team stats: %d %s", rec.Code, rec.Body.String())
	}
	if rec := do(t, h, http.MethodGet, "/api/v1/stats/teams/Ajax", ""); rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown team, got %d", rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	h := testRouter(t, Config{})
	do(t, h, http.MethodGet, "/health", "")

	rec := do(t, h, http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "playersim_api_requests_total") {
		t.Error("Expected API request counter in metrics output")
	}
}

func TestRateLimit(t *testing.T) {
	h := testRouter(t, Config{RateLimit: 2})

	var last int
	for i := 0; i < 3; i++ {
		last = do(t, h, http.MethodGet, "/api/v1/players", "").Code
	}
	if last != http.StatusTooManyRequests {
		t.Errorf("Expected 429 after exceeding the limit, got %d", last)
	}

	// Health is outside the limited group.
	if code := do(t, h, http.MethodGet, "/health", "").Code; code != http.StatusOK {
		t.Errorf("Expected health to bypass rate limit, got %d", code)
	}
}
