package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/ringo-rp/ringobot/internal/storage"
	"github.com/ringo-rp/ringobot/pkg/gacha"
	"github.com/ringo-rp/ringobot/pkg/ledger"
)

// GachaStore is the slice of storage the gacha endpoints need. Point
// deduction goes through the same character store the ledger uses.
type GachaStore interface {
	GetCharacter(ctx context.Context, playerID string) (*ledger.Character, error)
	AdjustPoints(ctx context.Context, playerID string, delta int, reason, actorID string) (*ledger.Character, error)
	SaveRoll(ctx context.Context, playerID string, result gacha.RollResult) (*storage.RollRecord, error)
	Inventory(ctx context.Context, playerID string) ([]storage.InventoryItem, error)
	RollHistory(ctx context.Context, playerID string, limit int) ([]storage.RollRecord, error)
}

type GachaHandler struct {
	store  GachaStore
	logger *slog.Logger

	mu     sync.Mutex
	roller *gacha.Roller
}

func NewGachaHandler(store GachaStore, roller *gacha.Roller, logger *slog.Logger) *GachaHandler {
	return &GachaHandler{store: store, roller: roller, logger: logger}
}

type GachaRollRequest struct {
	PlayerID string `json:"player_id"`
	Pulls    int    `json:"pulls"`
}

type GachaRollResponse struct {
	Prizes         []gacha.Prize  `json:"prizes"`
	Cost           int            `json:"cost"`
	Type           gacha.RollType `json:"roll_type"`
	GuaranteeFired bool           `json:"guarantee_fired"`
	Balance        int            `json:"balance"`
}

// ServeHTTP handles gacha operations
// Routes:
// POST /v1/gacha/roll            - Spend points on a pull
// GET  /v1/gacha/inventory/{id}  - Player's stacked prizes
// GET  /v1/gacha/history/{id}    - Player's archived pulls
func (h *GachaHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/gacha"), "/")
	op, playerID, _ := strings.Cut(path, "/")

	switch {
	case op == "roll" && r.Method == http.MethodPost:
		h.handleRoll(w, r)
	case op == "inventory" && playerID != "" && r.Method == http.MethodGet:
		h.handleInventory(w, r, playerID)
	case op == "history" && playerID != "" && r.Method == http.MethodGet:
		h.handleHistory(w, r, playerID)
	default:
		writeError(w, h.logger, http.StatusNotFound, "Unknown gacha endpoint")
	}
}

// handleRoll charges the pull cost before drawing. The character name
// drives the special-prize substitution.
func (h *GachaHandler) handleRoll(w http.ResponseWriter, r *http.Request) {
	var req GachaRollRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.PlayerID == "" {
		writeError(w, h.logger, http.StatusBadRequest, "player_id is required")
		return
	}

	cost, err := gacha.Cost(req.Pulls)
	if err != nil {
		writeError(w, h.logger, http.StatusBadRequest, err.Error())
		return
	}

	c, err := h.store.GetCharacter(r.Context(), req.PlayerID)
	if errors.Is(err, ledger.ErrNotFound) {
		writeError(w, h.logger, http.StatusNotFound, "Character not found")
		return
	}
	if err != nil {
		h.logger.Error("Failed to load character", "player_id", req.PlayerID, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load character")
		return
	}

	if c.Points < cost {
		writeError(w, h.logger, http.StatusPaymentRequired, gacha.ErrInsufficientPoints.Error())
		return
	}

	c, err = h.store.AdjustPoints(r.Context(), req.PlayerID, -cost, "gacha roll", req.PlayerID)
	if err != nil {
		h.logger.Error("Failed to charge roll", "player_id", req.PlayerID, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to charge roll")
		return
	}

	h.mu.Lock()
	result, err := h.roller.Roll(req.Pulls, c.Name)
	h.mu.Unlock()
	if err != nil {
		h.refund(r.Context(), req.PlayerID, cost)
		writeError(w, h.logger, http.StatusBadRequest, err.Error())
		return
	}

	if _, err := h.store.SaveRoll(r.Context(), req.PlayerID, result); err != nil {
		h.logger.Error("Failed to save roll", "player_id", req.PlayerID, "error", err)
		h.refund(r.Context(), req.PlayerID, cost)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to save roll")
		return
	}

	h.logger.Info("gacha roll", "player_id", req.PlayerID, "type", result.Type,
		"cost", result.Cost, "guarantee", result.GuaranteeFired)
	writeJSON(w, h.logger, http.StatusOK, GachaRollResponse{
		Prizes:         result.Prizes,
		Cost:           result.Cost,
		Type:           result.Type,
		GuaranteeFired: result.GuaranteeFired,
		Balance:        c.Points,
	})
}

// refund returns the pull cost after a charge whose roll never landed.
func (h *GachaHandler) refund(ctx context.Context, playerID string, cost int) {
	if _, err := h.store.AdjustPoints(ctx, playerID, cost, "gacha refund", playerID); err != nil {
		h.logger.Error("Failed to refund roll", "player_id", playerID, "cost", cost, "error", err)
	}
}

func (h *GachaHandler) handleInventory(w http.ResponseWriter, r *http.Request, playerID string) {
	inv, err := h.store.Inventory(r.Context(), playerID)
	if err != nil {
		h.logger.Error("Failed to load inventory", "player_id", playerID, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load inventory")
		return
	}
	if inv == nil {
		inv = []storage.InventoryItem{}
	}
	writeJSON(w, h.logger, http.StatusOK, inv)
}

func (h *GachaHandler) handleHistory(w http.ResponseWriter, r *http.Request, playerID string) {
	limit := parseLimit(r.URL.Query().Get("limit"))
	history, err := h.store.RollHistory(r.Context(), playerID, limit)
	if err != nil {
		h.logger.Error("Failed to load roll history", "player_id", playerID, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load roll history")
		return
	}
	if history == nil {
		history = []storage.RollRecord{}
	}
	writeJSON(w, h.logger, http.StatusOK, history)
}
