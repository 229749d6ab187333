package handlers

import (
	"log/slog"
	"net/http"
	"sort"
	"strings"

	"github.com/ringo-rp/ringobot/pkg/escape"
)

type EscapeHandler struct {
	engine *escape.Engine
	logger *slog.Logger
}

func NewEscapeHandler(engine *escape.Engine, logger *slog.Logger) *EscapeHandler {
	return &EscapeHandler{engine: engine, logger: logger}
}

type EscapeActionRequest struct {
	PlayerID string `json:"player_id"`
	Room     string `json:"room,omitempty"`
	Choice   string `json:"choice,omitempty"`
	Item     string `json:"item,omitempty"`
	ItemA    string `json:"item_a,omitempty"`
	ItemB    string `json:"item_b,omitempty"`
	Stat     string `json:"stat,omitempty"`
}

type EscapeMessageResponse struct {
	Message string `json:"message"`
}

type EscapeOptionsResponse struct {
	Options []string `json:"options"`
}

type EscapeInventoryResponse struct {
	Items []escape.Item `json:"items"`
}

// ServeHTTP handles escape-room operations
// Routes:
// GET  /v1/escape/rooms               - List loaded rooms
// POST /v1/escape/join                - Enter a room
// POST /v1/escape/investigate         - Resolve a choice
// POST /v1/escape/equip               - Hold an inventory item
// POST /v1/escape/combine             - Combine two inventory items
// POST /v1/escape/check               - Stat check with the room sheet
// GET  /v1/escape/options/{player}    - Choices at the current spot
// GET  /v1/escape/inventory/{player}  - Shared room inventory
func (h *EscapeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/escape"), "/")
	op, player, _ := strings.Cut(path, "/")

	switch {
	case op == "rooms" && r.Method == http.MethodGet:
		h.handleRooms(w)
	case op == "options" && player != "" && r.Method == http.MethodGet:
		h.handleOptions(w, r, player)
	case op == "inventory" && player != "" && r.Method == http.MethodGet:
		h.handleInventory(w, r, player)
	case r.Method == http.MethodPost:
		h.handleAction(w, r, op)
	default:
		writeError(w, h.logger, http.StatusNotFound, "Unknown escape endpoint")
	}
}

func (h *EscapeHandler) handleRooms(w http.ResponseWriter) {
	rooms := h.engine.Rooms()
	sort.Strings(rooms)
	writeJSON(w, h.logger, http.StatusOK, map[string][]string{"rooms": rooms})
}

func (h *EscapeHandler) handleOptions(w http.ResponseWriter, r *http.Request, player string) {
	options, err := h.engine.Options(r.Context(), player)
	if err != nil {
		h.logger.Error("Failed to list options", "player", player, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to list options")
		return
	}
	if options == nil {
		options = []string{}
	}
	writeJSON(w, h.logger, http.StatusOK, EscapeOptionsResponse{Options: options})
}

func (h *EscapeHandler) handleInventory(w http.ResponseWriter, r *http.Request, player string) {
	items, err := h.engine.RoomInventory(r.Context(), player)
	if err != nil {
		h.logger.Error("Failed to load room inventory", "player", player, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load room inventory")
		return
	}
	if items == nil {
		items = []escape.Item{}
	}
	writeJSON(w, h.logger, http.StatusOK, EscapeInventoryResponse{Items: items})
}

// handleAction runs the engine operation named by the path. Business
// outcomes come back as messages; only storage failures are 500s.
func (h *EscapeHandler) handleAction(w http.ResponseWriter, r *http.Request, op string) {
	var req EscapeActionRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.PlayerID == "" {
		writeError(w, h.logger, http.StatusBadRequest, "player_id is required")
		return
	}

	var msg string
	var err error
	switch op {
	case "join":
		if req.Room == "" {
			writeError(w, h.logger, http.StatusBadRequest, "room is required")
			return
		}
		msg, err = h.engine.Join(r.Context(), req.PlayerID, req.Room)
	case "investigate":
		if req.Choice == "" {
			writeError(w, h.logger, http.StatusBadRequest, "choice is required")
			return
		}
		msg, err = h.engine.Investigate(r.Context(), req.PlayerID, req.Choice)
	case "equip":
		if req.Item == "" {
			writeError(w, h.logger, http.StatusBadRequest, "item is required")
			return
		}
		msg, err = h.engine.Equip(r.Context(), req.PlayerID, req.Item)
	case "combine":
		if req.ItemA == "" || req.ItemB == "" {
			writeError(w, h.logger, http.StatusBadRequest, "item_a and item_b are required")
			return
		}
		msg, err = h.engine.Combine(r.Context(), req.PlayerID, req.ItemA, req.ItemB)
	case "check":
		if req.Stat == "" {
			writeError(w, h.logger, http.StatusBadRequest, "stat is required")
			return
		}
		msg, err = h.engine.StatCheck(r.Context(), req.PlayerID, req.Stat)
	default:
		writeError(w, h.logger, http.StatusNotFound, "Unknown escape action")
		return
	}

	if err != nil {
		h.logger.Error("Escape action failed", "action", op, "player", req.PlayerID, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Escape action failed")
		return
	}
	writeJSON(w, h.logger, http.StatusOK, EscapeMessageResponse{Message: msg})
}
