package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/ringo-rp/ringobot/pkg/quest"
)

// QuestStore is the slice of storage the quest board endpoints need.
type QuestStore interface {
	CreateQuest(ctx context.Context, playerID string) (*quest.Quest, error)
	GetQuest(ctx context.Context, id uuid.UUID) (*quest.Quest, error)
	AssignQuest(ctx context.Context, id uuid.UUID, description, reward string) (*quest.Quest, error)
	CompleteQuest(ctx context.Context, id uuid.UUID, playerID string) (*quest.Quest, error)
	ApproveQuest(ctx context.Context, id uuid.UUID, actorID string) (*quest.Quest, int, error)
	RejectQuest(ctx context.Context, id uuid.UUID) (*quest.Quest, error)
	AbandonQuest(ctx context.Context, id uuid.UUID, playerID string) (*quest.Quest, error)
	PendingQuests(ctx context.Context) ([]quest.Quest, error)
	PlayerQuests(ctx context.Context, playerID string) ([]quest.Quest, error)
}

type QuestHandler struct {
	store  QuestStore
	logger *slog.Logger
}

func NewQuestHandler(store QuestStore, logger *slog.Logger) *QuestHandler {
	return &QuestHandler{store: store, logger: logger}
}

type CreateQuestRequest struct {
	PlayerID string `json:"player_id"`
}

type AssignQuestRequest struct {
	Description string `json:"description"`
	Reward      string `json:"reward"`
}

type QuestActionRequest struct {
	PlayerID string `json:"player_id,omitempty"`
	ActorID  string `json:"actor_id,omitempty"`
}

type ApproveQuestResponse struct {
	Quest         *quest.Quest `json:"quest"`
	PointsAwarded int          `json:"points_awarded"`
}

// ServeHTTP handles quest board operations
// Routes:
// POST /v1/quests                - Request a quest
// GET  /v1/quests?player=        - List a player's quests
// GET  /v1/quests/pending        - List pending requests
// GET  /v1/quests/{id}           - Read one quest
// POST /v1/quests/{id}/assign    - Fill in description and reward
// POST /v1/quests/{id}/complete  - Player claims completion
// POST /v1/quests/{id}/approve   - Accept and award points
// POST /v1/quests/{id}/reject    - Send back to active
// POST /v1/quests/{id}/abandon   - Give up
func (h *QuestHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/quests"), "/")

	switch {
	case path == "" && r.Method == http.MethodPost:
		h.handleCreate(w, r)
		return
	case path == "" && r.Method == http.MethodGet:
		h.handleList(w, r)
		return
	case path == "pending" && r.Method == http.MethodGet:
		h.handlePending(w, r)
		return
	}

	idStr, action, _ := strings.Cut(path, "/")
	id, err := uuid.Parse(idStr)
	if err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid quest ID format")
		return
	}

	if action == "" {
		if r.Method != http.MethodGet {
			writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: GET")
			return
		}
		h.handleGet(w, r, id)
		return
	}

	if r.Method != http.MethodPost {
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: POST")
		return
	}
	h.handleAction(w, r, id, action)
}

func (h *QuestHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateQuestRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.PlayerID == "" {
		writeError(w, h.logger, http.StatusBadRequest, "player_id is required")
		return
	}

	q, err := h.store.CreateQuest(r.Context(), req.PlayerID)
	if errors.Is(err, quest.ErrPendingExists) {
		writeError(w, h.logger, http.StatusConflict, "Player already has a pending quest request")
		return
	}
	if err != nil {
		h.logger.Error("Failed to create quest", "player_id", req.PlayerID, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to create quest")
		return
	}
	writeJSON(w, h.logger, http.StatusCreated, q)
}

func (h *QuestHandler) handleList(w http.ResponseWriter, r *http.Request) {
	playerID := r.URL.Query().Get("player")
	if playerID == "" {
		writeError(w, h.logger, http.StatusBadRequest, "player query parameter is required")
		return
	}

	quests, err := h.store.PlayerQuests(r.Context(), playerID)
	if err != nil {
		h.logger.Error("Failed to list quests", "player_id", playerID, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to list quests")
		return
	}
	if quests == nil {
		quests = []quest.Quest{}
	}
	writeJSON(w, h.logger, http.StatusOK, quests)
}

func (h *QuestHandler) handlePending(w http.ResponseWriter, r *http.Request) {
	quests, err := h.store.PendingQuests(r.Context())
	if err != nil {
		h.logger.Error("Failed to list pending quests", "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to list pending quests")
		return
	}
	if quests == nil {
		quests = []quest.Quest{}
	}
	writeJSON(w, h.logger, http.StatusOK, quests)
}

func (h *QuestHandler) handleGet(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	q, err := h.store.GetQuest(r.Context(), id)
	if errors.Is(err, quest.ErrNotFound) {
		writeError(w, h.logger, http.StatusNotFound, "Quest not found")
		return
	}
	if err != nil {
		h.logger.Error("Failed to load quest", "quest_id", id, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load quest")
		return
	}
	writeJSON(w, h.logger, http.StatusOK, q)
}

func (h *QuestHandler) handleAction(w http.ResponseWriter, r *http.Request, id uuid.UUID, action string) {
	switch action {
	case "assign":
		var req AssignQuestRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, h.logger, http.StatusBadRequest, "Invalid request body")
			return
		}
		if strings.TrimSpace(req.Description) == "" {
			writeError(w, h.logger, http.StatusBadRequest, "description is required")
			return
		}
		q, err := h.store.AssignQuest(r.Context(), id, req.Description, req.Reward)
		h.respond(w, q, err)

	case "complete":
		var req QuestActionRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, h.logger, http.StatusBadRequest, "Invalid request body")
			return
		}
		q, err := h.store.CompleteQuest(r.Context(), id, req.PlayerID)
		h.respond(w, q, err)

	case "approve":
		var req QuestActionRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, h.logger, http.StatusBadRequest, "Invalid request body")
			return
		}
		q, awarded, err := h.store.ApproveQuest(r.Context(), id, req.ActorID)
		if err != nil {
			h.respond(w, nil, err)
			return
		}
		writeJSON(w, h.logger, http.StatusOK, ApproveQuestResponse{Quest: q, PointsAwarded: awarded})

	case "reject":
		q, err := h.store.RejectQuest(r.Context(), id)
		h.respond(w, q, err)

	case "abandon":
		var req QuestActionRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, h.logger, http.StatusBadRequest, "Invalid request body")
			return
		}
		q, err := h.store.AbandonQuest(r.Context(), id, req.PlayerID)
		h.respond(w, q, err)

	default:
		writeError(w, h.logger, http.StatusNotFound, "Unknown quest action")
	}
}

// respond maps quest domain errors onto HTTP statuses.
func (h *QuestHandler) respond(w http.ResponseWriter, q *quest.Quest, err error) {
	var invalid quest.ErrInvalidTransition
	switch {
	case err == nil:
		writeJSON(w, h.logger, http.StatusOK, q)
	case errors.Is(err, quest.ErrNotFound):
		writeError(w, h.logger, http.StatusNotFound, "Quest not found")
	case errors.Is(err, quest.ErrNotQuestOwner):
		writeError(w, h.logger, http.StatusForbidden, "Quest belongs to another player")
	case errors.As(err, &invalid):
		writeError(w, h.logger, http.StatusConflict, err.Error())
	default:
		h.logger.Error("Quest operation failed", "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Quest operation failed")
	}
}
