package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/ringo-rp/ringobot/pkg/replies"
)

type RepliesHandler struct {
	matcher *replies.Matcher
	logger  *slog.Logger
}

func NewRepliesHandler(matcher *replies.Matcher, logger *slog.Logger) *RepliesHandler {
	return &RepliesHandler{matcher: matcher, logger: logger}
}

type ReplyRequest struct {
	Message string `json:"message"`
}

type ReplyResponse struct {
	Reply   string `json:"reply,omitempty"`
	Matched bool   `json:"matched"`
}

// ServeHTTP handles POST /v1/replies.
func (h *RepliesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: POST")
		return
	}

	var req ReplyRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, h.logger, http.StatusBadRequest, "Message is required")
		return
	}

	reply, matched := h.matcher.Reply(req.Message)
	writeJSON(w, h.logger, http.StatusOK, ReplyResponse{Reply: reply, Matched: matched})
}
