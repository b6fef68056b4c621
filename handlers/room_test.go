package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ferminhg/poker-planning/db"
	"github.com/ferminhg/poker-planning/models"
)

func newTestRouter(t *testing.T) (*gin.Engine, *clockwork.FakeClock) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	clock := clockwork.NewFakeClockAt(time.UnixMilli(1_700_000_000_000))
	store := db.NewFallbackStore(nil, db.NewMemoryStore(clock, models.RoomTTL))

	router := gin.New()
	NewRoomHandler(store, clock).Register(router)
	return router, clock
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestGetAbsentRoomReturns404WithNullBody(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/room/r1", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "null", w.Body.String())
}

func TestSaveRejectsNonObjectBody(t *testing.T) {
	router, _ := newTestRouter(t)

	for _, body := range []string{"null", "[1,2]", `"text"`, "5", "{invalid"} {
		w := doJSON(t, router, http.MethodPost, "/room/r1", []byte(body))
		assert.Equal(t, http.StatusBadRequest, w.Code, "body %q", body)
	}
}

func TestSaveStampsServerTimeAndRoundTrips(t *testing.T) {
	router, clock := newTestRouter(t)

	candidate := models.RoomState{
		ID:              "spoofed-id",
		CurrentStory:    "estimate the login flow",
		LastUpdated:     42,
		MaxParticipants: 4,
		Participants:    []models.Participant{{ID: "u1", Name: "Alice", HasVoted: false}},
	}
	body, err := json.Marshal(candidate)
	require.NoError(t, err)

	w := doJSON(t, router, http.MethodPost, "/room/r1", body)
	require.Equal(t, http.StatusOK, w.Code)

	var result struct {
		Success bool             `json:"success"`
		State   models.RoomState `json:"state"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.True(t, result.Success)
	assert.Equal(t, "r1", result.State.ID, "room id comes from the URL")
	assert.Equal(t, models.TimeMillis(clock.Now()), result.State.LastUpdated)

	// Read back: equal to the write's returned state, not the candidate.
	w = doJSON(t, router, http.MethodGet, "/room/r1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var fetched models.RoomState
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &fetched))
	assert.Equal(t, result.State, fetched)
}

func TestSaveTruncatesParticipantsAtCapacity(t *testing.T) {
	router, _ := newTestRouter(t)

	candidate := models.RoomState{MaxParticipants: 2}
	for _, id := range []string{"a", "b", "c", "d"} {
		candidate.Participants = append(candidate.Participants, models.Participant{ID: id, Name: id})
	}
	body, _ := json.Marshal(candidate)

	w := doJSON(t, router, http.MethodPost, "/room/r1", body)
	require.Equal(t, http.StatusOK, w.Code)

	var result struct {
		State models.RoomState `json:"state"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	require.Len(t, result.State.Participants, 2)
	assert.Equal(t, "a", result.State.Participants[0].ID)
}

func TestSavePreservesStoredCreatedAt(t *testing.T) {
	router, clock := newTestRouter(t)

	body, _ := json.Marshal(models.RoomState{MaxParticipants: 4})
	w := doJSON(t, router, http.MethodPost, "/room/r1", body)
	require.Equal(t, http.StatusOK, w.Code)
	firstWrite := models.TimeMillis(clock.Now())

	clock.Advance(5 * time.Minute)

	// Second write tries to rewrite room age; the stored value wins.
	body, _ = json.Marshal(models.RoomState{MaxParticipants: 4, CreatedAt: 1})
	w = doJSON(t, router, http.MethodPost, "/room/r1", body)
	require.Equal(t, http.StatusOK, w.Code)

	var result struct {
		State models.RoomState `json:"state"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, firstWrite, result.State.CreatedAt)
	assert.Greater(t, result.State.LastUpdated, firstWrite)
}

func TestDeleteIsIdempotent(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodDelete, "/room/never-written", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true}`, w.Body.String())

	body, _ := json.Marshal(models.RoomState{MaxParticipants: 4})
	doJSON(t, router, http.MethodPost, "/room/r1", body)

	w = doJSON(t, router, http.MethodDelete, "/room/r1", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodGet, "/room/r1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealth(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
