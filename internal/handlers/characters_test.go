package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ringo-rp/ringobot/internal/storage"
	"github.com/ringo-rp/ringobot/pkg/ledger"
)

func newTestStore(t *testing.T) *storage.SQLiteStore {
	t.Helper()

	store, err := storage.OpenSQLite(filepath.Join(t.TempDir(), "test.db"), testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestCharacterHandler_RegisterAndGet(t *testing.T) {
	store := newTestStore(t)
	handler := NewCharacterHandler(store, testLogger())

	rr := postJSON(t, handler, "/v1/characters", RegisterCharacterRequest{
		PlayerID: "alice", Name: "Ringo", GuildID: "g1",
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var c ledger.Character
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&c))
	assert.Equal(t, "Ringo", c.Name)
	assert.Equal(t, 0, c.Points)

	// Duplicate registration conflicts.
	rr = postJSON(t, handler, "/v1/characters", RegisterCharacterRequest{
		PlayerID: "alice", Name: "Otra",
	})
	assert.Equal(t, http.StatusConflict, rr.Code)

	req := httptest.NewRequest(http.MethodGet, "/v1/characters/alice", nil)
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	req = httptest.NewRequest(http.MethodGet, "/v1/characters/nobody", nil)
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestCharacterHandler_PointsAndHistory(t *testing.T) {
	store := newTestStore(t)
	handler := NewCharacterHandler(store, testLogger())

	rr := postJSON(t, handler, "/v1/characters", RegisterCharacterRequest{PlayerID: "alice", Name: "Ringo"})
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = postJSON(t, handler, "/v1/characters/alice/points", AdjustPointsRequest{Delta: 25, Reason: "event"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var c ledger.Character
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&c))
	assert.Equal(t, 25, c.Points)

	// Overdraft clamps at zero.
	rr = postJSON(t, handler, "/v1/characters/alice/points", AdjustPointsRequest{Delta: -100})
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&c))
	assert.Equal(t, 0, c.Points)

	// Zero delta is rejected.
	rr = postJSON(t, handler, "/v1/characters/alice/points", AdjustPointsRequest{Delta: 0})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	req := httptest.NewRequest(http.MethodGet, "/v1/characters/alice/history", nil)
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var history []ledger.Entry
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&history))
	require.Len(t, history, 2)
	assert.Equal(t, -100, history[0].Delta)
}

func TestCharacterHandler_Delete(t *testing.T) {
	store := newTestStore(t)
	handler := NewCharacterHandler(store, testLogger())

	rr := postJSON(t, handler, "/v1/characters", RegisterCharacterRequest{PlayerID: "alice", Name: "Ringo"})
	require.Equal(t, http.StatusCreated, rr.Code)

	req := httptest.NewRequest(http.MethodDelete, "/v1/characters/alice", nil)
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	req = httptest.NewRequest(http.MethodDelete, "/v1/characters/alice", nil)
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestLeaderboardHandler(t *testing.T) {
	store := newTestStore(t)
	chars := NewCharacterHandler(store, testLogger())
	handler := NewLeaderboardHandler(store, testLogger())

	for _, reg := range []RegisterCharacterRequest{
		{PlayerID: "alice", Name: "Ringo", GuildID: "g1"},
		{PlayerID: "bob", Name: "Apolo", GuildID: "g1"},
	} {
		rr := postJSON(t, chars, "/v1/characters", reg)
		require.Equal(t, http.StatusCreated, rr.Code)
	}
	rr := postJSON(t, chars, "/v1/characters/bob/points", AdjustPointsRequest{Delta: 40})
	require.Equal(t, http.StatusOK, rr.Code)

	req := httptest.NewRequest(http.MethodGet, "/v1/leaderboard?guild_id=g1", nil)
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var board []ledger.Character
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&board))
	require.Len(t, board, 2)
	assert.Equal(t, "Apolo", board[0].Name)

	req = httptest.NewRequest(http.MethodPost, "/v1/leaderboard", nil)
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}
