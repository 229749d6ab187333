package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/ringo-rp/ringobot/pkg/ledger"
)

// CharacterStore is the slice of storage the character endpoints need.
type CharacterStore interface {
	RegisterCharacter(ctx context.Context, playerID, name, guildID string) (*ledger.Character, error)
	GetCharacter(ctx context.Context, playerID string) (*ledger.Character, error)
	AdjustPoints(ctx context.Context, playerID string, delta int, reason, actorID string) (*ledger.Character, error)
	PointHistory(ctx context.Context, playerID string, limit int) ([]ledger.Entry, error)
	DeleteCharacter(ctx context.Context, playerID string) error
	Leaderboard(ctx context.Context, guildID string, limit int) ([]ledger.Character, error)
}

type CharacterHandler struct {
	store  CharacterStore
	logger *slog.Logger
}

func NewCharacterHandler(store CharacterStore, logger *slog.Logger) *CharacterHandler {
	return &CharacterHandler{store: store, logger: logger}
}

type RegisterCharacterRequest struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
	GuildID  string `json:"guild_id,omitempty"`
}

type AdjustPointsRequest struct {
	Delta   int    `json:"delta"`
	Reason  string `json:"reason,omitempty"`
	ActorID string `json:"actor_id,omitempty"`
}

// ServeHTTP handles character operations
// Routes:
// POST   /v1/characters               - Register a character
// GET    /v1/characters/{id}          - Read a character
// DELETE /v1/characters/{id}          - Delete a character
// POST   /v1/characters/{id}/points   - Adjust the point balance
// GET    /v1/characters/{id}/history  - Point audit history
func (h *CharacterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/characters"), "/")

	if path == "" {
		if r.Method != http.MethodPost {
			writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: POST")
			return
		}
		h.handleRegister(w, r)
		return
	}

	playerID, rest, _ := strings.Cut(path, "/")
	switch {
	case rest == "" && r.Method == http.MethodGet:
		h.handleGet(w, r, playerID)
	case rest == "" && r.Method == http.MethodDelete:
		h.handleDelete(w, r, playerID)
	case rest == "points" && r.Method == http.MethodPost:
		h.handlePoints(w, r, playerID)
	case rest == "history" && r.Method == http.MethodGet:
		h.handleHistory(w, r, playerID)
	default:
		writeError(w, h.logger, http.StatusNotFound, "Unknown character endpoint")
	}
}

func (h *CharacterHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req RegisterCharacterRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.PlayerID == "" || strings.TrimSpace(req.Name) == "" {
		writeError(w, h.logger, http.StatusBadRequest, "player_id and name are required")
		return
	}

	c, err := h.store.RegisterCharacter(r.Context(), req.PlayerID, req.Name, req.GuildID)
	if errors.Is(err, ledger.ErrAlreadyRegistered) {
		writeError(w, h.logger, http.StatusConflict, "Player already has a character")
		return
	}
	if err != nil {
		h.logger.Error("Failed to register character", "player_id", req.PlayerID, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to register character")
		return
	}
	writeJSON(w, h.logger, http.StatusCreated, c)
}

func (h *CharacterHandler) handleGet(w http.ResponseWriter, r *http.Request, playerID string) {
	c, err := h.store.GetCharacter(r.Context(), playerID)
	if errors.Is(err, ledger.ErrNotFound) {
		writeError(w, h.logger, http.StatusNotFound, "Character not found")
		return
	}
	if err != nil {
		h.logger.Error("Failed to load character", "player_id", playerID, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load character")
		return
	}
	writeJSON(w, h.logger, http.StatusOK, c)
}

func (h *CharacterHandler) handleDelete(w http.ResponseWriter, r *http.Request, playerID string) {
	err := h.store.DeleteCharacter(r.Context(), playerID)
	if errors.Is(err, ledger.ErrNotFound) {
		writeError(w, h.logger, http.StatusNotFound, "Character not found")
		return
	}
	if err != nil {
		h.logger.Error("Failed to delete character", "player_id", playerID, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to delete character")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CharacterHandler) handlePoints(w http.ResponseWriter, r *http.Request, playerID string) {
	var req AdjustPointsRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Delta == 0 {
		writeError(w, h.logger, http.StatusBadRequest, "delta must be non-zero")
		return
	}

	c, err := h.store.AdjustPoints(r.Context(), playerID, req.Delta, req.Reason, req.ActorID)
	if errors.Is(err, ledger.ErrNotFound) {
		writeError(w, h.logger, http.StatusNotFound, "Character not found")
		return
	}
	if err != nil {
		h.logger.Error("Failed to adjust points", "player_id", playerID, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to adjust points")
		return
	}
	writeJSON(w, h.logger, http.StatusOK, c)
}

func (h *CharacterHandler) handleHistory(w http.ResponseWriter, r *http.Request, playerID string) {
	limit := parseLimit(r.URL.Query().Get("limit"))
	history, err := h.store.PointHistory(r.Context(), playerID, limit)
	if errors.Is(err, ledger.ErrNotFound) {
		writeError(w, h.logger, http.StatusNotFound, "Character not found")
		return
	}
	if err != nil {
		h.logger.Error("Failed to load history", "player_id", playerID, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load history")
		return
	}
	if history == nil {
		history = []ledger.Entry{}
	}
	writeJSON(w, h.logger, http.StatusOK, history)
}

// LeaderboardHandler handles GET /v1/leaderboard.
type LeaderboardHandler struct {
	store  CharacterStore
	logger *slog.Logger
}

func NewLeaderboardHandler(store CharacterStore, logger *slog.Logger) *LeaderboardHandler {
	return &LeaderboardHandler{store: store, logger: logger}
}

func (h *LeaderboardHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: GET")
		return
	}

	limit := parseLimit(r.URL.Query().Get("limit"))
	board, err := h.store.Leaderboard(r.Context(), r.URL.Query().Get("guild_id"), limit)
	if err != nil {
		h.logger.Error("Failed to load leaderboard", "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load leaderboard")
		return
	}
	if board == nil {
		board = []ledger.Character{}
	}
	writeJSON(w, h.logger, http.StatusOK, board)
}

// parseLimit turns a query value into a limit, zero meaning store default.
func parseLimit(raw string) int {
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
