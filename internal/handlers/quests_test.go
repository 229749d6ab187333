package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ringo-rp/ringobot/pkg/quest"
)

func TestQuestHandler_FullLifecycle(t *testing.T) {
	store := newTestStore(t)
	quests := NewQuestHandler(store, testLogger())
	chars := NewCharacterHandler(store, testLogger())

	rr := postJSON(t, chars, "/v1/characters", RegisterCharacterRequest{PlayerID: "alice", Name: "Ringo"})
	require.Equal(t, http.StatusCreated, rr.Code)

	// Request a quest.
	rr = postJSON(t, quests, "/v1/quests", CreateQuestRequest{PlayerID: "alice"})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var q quest.Quest
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&q))
	assert.Equal(t, quest.StatusPending, q.Status)

	// Second pending request conflicts.
	rr = postJSON(t, quests, "/v1/quests", CreateQuestRequest{PlayerID: "alice"})
	assert.Equal(t, http.StatusConflict, rr.Code)

	base := fmt.Sprintf("/v1/quests/%s", q.ID)

	rr = postJSON(t, quests, base+"/assign", AssignQuestRequest{
		Description: "Recover the relic", Reward: "15 PC and a potion",
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	// Wrong player cannot complete.
	rr = postJSON(t, quests, base+"/complete", QuestActionRequest{PlayerID: "bob"})
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = postJSON(t, quests, base+"/complete", QuestActionRequest{PlayerID: "alice"})
	require.Equal(t, http.StatusOK, rr.Code)

	rr = postJSON(t, quests, base+"/approve", QuestActionRequest{ActorID: "admin"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var approved ApproveQuestResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&approved))
	assert.Equal(t, quest.StatusApproved, approved.Quest.Status)
	assert.Equal(t, 15, approved.PointsAwarded)

	// Approving twice violates the state machine.
	rr = postJSON(t, quests, base+"/approve", QuestActionRequest{ActorID: "admin"})
	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestQuestHandler_RejectAndAbandon(t *testing.T) {
	store := newTestStore(t)
	quests := NewQuestHandler(store, testLogger())

	rr := postJSON(t, quests, "/v1/quests", CreateQuestRequest{PlayerID: "alice"})
	require.Equal(t, http.StatusCreated, rr.Code)
	var q quest.Quest
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&q))

	base := fmt.Sprintf("/v1/quests/%s", q.ID)
	rr = postJSON(t, quests, base+"/assign", AssignQuestRequest{Description: "Scout", Reward: "5 PC"})
	require.Equal(t, http.StatusOK, rr.Code)
	rr = postJSON(t, quests, base+"/complete", QuestActionRequest{PlayerID: "alice"})
	require.Equal(t, http.StatusOK, rr.Code)

	// Rejection sends it back to active.
	rr = postJSON(t, quests, base+"/reject", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&q))
	assert.Equal(t, quest.StatusActive, q.Status)

	rr = postJSON(t, quests, base+"/abandon", QuestActionRequest{PlayerID: "alice"})
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&q))
	assert.Equal(t, quest.StatusAbandoned, q.Status)
}

func TestQuestHandler_Listings(t *testing.T) {
	store := newTestStore(t)
	quests := NewQuestHandler(store, testLogger())

	rr := postJSON(t, quests, "/v1/quests", CreateQuestRequest{PlayerID: "alice"})
	require.Equal(t, http.StatusCreated, rr.Code)

	req := httptest.NewRequest(http.MethodGet, "/v1/quests/pending", nil)
	rr = httptest.NewRecorder()
	quests.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var pending []quest.Quest
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&pending))
	assert.Len(t, pending, 1)

	req = httptest.NewRequest(http.MethodGet, "/v1/quests?player=alice", nil)
	rr = httptest.NewRecorder()
	quests.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var mine []quest.Quest
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&mine))
	assert.Len(t, mine, 1)

	// Listing without a player filter is an error.
	req = httptest.NewRequest(http.MethodGet, "/v1/quests", nil)
	rr = httptest.NewRecorder()
	quests.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestQuestHandler_InvalidID(t *testing.T) {
	store := newTestStore(t)
	quests := NewQuestHandler(store, testLogger())

	rr := postJSON(t, quests, "/v1/quests/not-a-uuid/approve", QuestActionRequest{})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
