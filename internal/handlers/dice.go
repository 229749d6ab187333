package handlers

import (
	"errors"
	"log/slog"
	"math/rand"
	"net/http"
	"sync"

	"github.com/ringo-rp/ringobot/pkg/dice"
)

type DiceHandler struct {
	logger *slog.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

func NewDiceHandler(rng *rand.Rand, logger *slog.Logger) *DiceHandler {
	return &DiceHandler{logger: logger, rng: rng}
}

type DiceRollRequest struct {
	Notation string `json:"notation"`
	Modifier int    `json:"modifier,omitempty"`
}

type DiceRollResponse struct {
	Notation string   `json:"notation"`
	Values   []int    `json:"values"`
	Symbols  []string `json:"symbols"`
	Modifier int      `json:"modifier,omitempty"`
	Total    int      `json:"total"`
	Fate     bool     `json:"fate,omitempty"`
}

// ServeHTTP handles POST /v1/dice/roll.
func (h *DiceHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: POST")
		return
	}

	var req DiceRollRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}

	n, err := dice.Parse(req.Notation)
	if err != nil {
		var formatErr dice.ErrFormat
		var boundsErr dice.ErrBounds
		if errors.As(err, &formatErr) || errors.As(err, &boundsErr) {
			writeError(w, h.logger, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to parse notation")
		return
	}

	h.mu.Lock()
	roll := n.Roll(h.rng)
	h.mu.Unlock()

	h.logger.Debug("dice rolled", "notation", req.Notation, "total", roll.Total())
	writeJSON(w, h.logger, http.StatusOK, DiceRollResponse{
		Notation: req.Notation,
		Values:   roll.Values,
		Symbols:  roll.Symbols(),
		Modifier: req.Modifier,
		Total:    roll.Total() + req.Modifier,
		Fate:     roll.Fate,
	})
}
