package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pvp-leaderboard/internal/config"
	"pvp-leaderboard/internal/domain"
	"pvp-leaderboard/internal/repository"
	"pvp-leaderboard/internal/service"
	"pvp-leaderboard/internal/store"
)

const testPassphrase = "test-pass"

type memPersister struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

func (m *memPersister) Save(ctx context.Context, key string, body []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[key] = body
	return nil
}

func (m *memPersister) Load(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	body, ok := m.blobs[key]
	if !ok || len(body) == 0 {
		return nil, repository.ErrNoBlob
	}
	return body, nil
}

func newTestServer(t *testing.T) (*httptest.Server, *service.LeaderboardService) {
	t.Helper()

	st := store.New(zerolog.Nop(), func() time.Time {
		return time.Date(2026, time.August, 31, 12, 0, 0, 0, time.UTC)
	})
	cfg := &config.Config{AdminPassphrase: testPassphrase}
	svc := service.NewLeaderboardService(st, &memPersister{blobs: make(map[string][]byte)}, cfg, zerolog.Nop())
	require.NoError(t, svc.Load(context.Background()))

	srv := httptest.NewServer(NewServer(svc, cfg, zerolog.Nop()).Router())
	t.Cleanup(srv.Close)
	return srv, svc
}

func doJSON(t *testing.T, method, url, body string, admin bool) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if admin {
		req.Header.Set("X-Admin-Key", testPassphrase)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)
	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestListPlayersIsPublic(t *testing.T) {
	srv, svc := newTestServer(t)
	resp, err := http.Get(srv.URL + "/api/v1/players")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var players []domain.Player
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&players))
	assert.Len(t, players, len(svc.Players()))
}

func TestAdminGateRejectsWithoutPassphrase(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/v1/players", `{"name":"Intruder"}`, false)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/v1/players", strings.NewReader(`{"name":"Intruder"}`))
	require.NoError(t, err)
	req.Header.Set("X-Admin-Key", "wrong")
	wrong, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer wrong.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, wrong.StatusCode)
}

func TestAddPlayerRequiresName(t *testing.T) {
	srv, _ := newTestServer(t)
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/v1/players", `{}`, true)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAddPlayerCreates(t *testing.T) {
	srv, svc := newTestServer(t)
	before := len(svc.Players())

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/v1/players", `{"name":"Rookie"}`, true)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var player domain.Player
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&player))
	assert.Equal(t, "Rookie", player.Name)
	assert.Len(t, svc.Players(), before+1)
}

func TestRecordMatchRejectsWinnerOutsideParticipants(t *testing.T) {
	srv, svc := newTestServer(t)
	players := svc.Players()
	require.GreaterOrEqual(t, len(players), 2)

	body := `{"winnerId":"outsider","participantIds":["` + players[0].ID + `","` + players[1].ID + `"],"battleType":"DUEL","category":"DIAMOND"}`
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/v1/matches", body, true)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Empty(t, svc.Matches())
}

func TestRecordMatchHappyPath(t *testing.T) {
	srv, svc := newTestServer(t)
	players := svc.Players()
	require.GreaterOrEqual(t, len(players), 2)

	body := `{"winnerId":"` + players[0].ID + `","participantIds":["` + players[0].ID + `","` + players[1].ID + `"],"battleType":"DUEL","category":"NETHERITE","location":"arena"}`
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/v1/matches", body, true)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var match domain.Match
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&match))
	assert.Equal(t, players[0].ID, match.WinnerID)
	assert.Greater(t, match.EloGain, 0.0)
	assert.Len(t, svc.Matches(), 1)
}

func TestImportMissingPlayersKey(t *testing.T) {
	srv, svc := newTestServer(t)
	before := len(svc.Players())

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/v1/import", `{"champs":[]}`, true)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Len(t, svc.Players(), before, "rejected import leaves state untouched")
}

func TestExportHasAttachmentFilename(t *testing.T) {
	srv, _ := newTestServer(t)

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/v1/export", nil)
	require.NoError(t, err)
	req.Header.Set("X-Admin-Key", testPassphrase)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "blacksheep_backup_")

	var doc map[string]json.RawMessage
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&doc))
	assert.Contains(t, doc, "players")
	assert.NotContains(t, doc, "matches")
}

func TestLeaderboardEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/v1/leaderboard?season=2025-WINTER&category=AXE_SHIELD")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var entries []store.LeaderboardEntry
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&entries))
	for i := 1; i < len(entries); i++ {
		assert.GreaterOrEqual(t, entries[i-1].Stats.Elo, entries[i].Stats.Elo)
	}

	bad, err := http.Get(srv.URL + "/api/v1/leaderboard?season=banana")
	require.NoError(t, err)
	defer bad.Body.Close()
	assert.Equal(t, http.StatusBadRequest, bad.StatusCode)
}
