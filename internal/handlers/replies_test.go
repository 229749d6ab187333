package handlers

import (
	"encoding/json"
	"math/rand"
	"net/http"
	"testing"

	"github.com/ringo-rp/ringobot/pkg/replies"
)

func TestRepliesHandler_ServeHTTP(t *testing.T) {
	matcher := replies.NewMatcher(rand.New(rand.NewSource(1)), replies.DefaultRules("RingoBot"))
	handler := NewRepliesHandler(matcher, testLogger())

	rr := postJSON(t, handler, "/v1/replies", ReplyRequest{Message: "hola RingoBot"})
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}

	var resp ReplyResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if !resp.Matched || resp.Reply == "" {
		t.Errorf("expected a matched reply, got %+v", resp)
	}
}

func TestRepliesHandler_NoMatch(t *testing.T) {
	matcher := replies.NewMatcher(rand.New(rand.NewSource(1)), replies.DefaultRules("RingoBot"))
	handler := NewRepliesHandler(matcher, testLogger())

	rr := postJSON(t, handler, "/v1/replies", ReplyRequest{Message: "the weather is fine"})
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}

	var resp ReplyResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Matched {
		t.Errorf("expected no match, got %+v", resp)
	}
}

func TestRepliesHandler_EmptyMessage(t *testing.T) {
	matcher := replies.NewMatcher(rand.New(rand.NewSource(1)), replies.DefaultRules("RingoBot"))
	handler := NewRepliesHandler(matcher, testLogger())

	rr := postJSON(t, handler, "/v1/replies", ReplyRequest{Message: "   "})
	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rr.Code)
	}
}
