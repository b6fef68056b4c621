package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/ferminhg/poker-planning/db"
	"github.com/ferminhg/poker-planning/models"
)

// RoomHandler serves the room resource. This boundary is the only
// place where candidate states are normalized and the TTL is refreshed;
// clients must adopt the returned state, not their candidate.
type RoomHandler struct {
	store db.Store
	clock clockwork.Clock
}

// NewRoomHandler creates a new RoomHandler
func NewRoomHandler(store db.Store, clock clockwork.Clock) *RoomHandler {
	return &RoomHandler{
		store: store,
		clock: clock,
	}
}

// GetRoom returns the current room state, or a 404 with a null body
// when the room has never been written. Absence is a normal state.
func (h *RoomHandler) GetRoom(c *gin.Context) {
	roomID := c.Param("id")

	state, err := h.store.Get(c.Request.Context(), roomID)
	if err != nil {
		log.Error().Err(err).Str("room_id", roomID).Msg("failed to read room")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if state == nil {
		c.JSON(http.StatusNotFound, nil)
		return
	}

	c.JSON(http.StatusOK, state)
}

// SaveRoom validates and normalizes a candidate state, persists it with
// a refreshed TTL, and returns the persisted (server-authoritative)
// state.
func (h *RoomHandler) SaveRoom(c *gin.Context) {
	roomID := c.Param("id")

	var candidate *models.RoomState
	if err := c.ShouldBindJSON(&candidate); err != nil || candidate == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid room state"})
		return
	}

	// CreatedAt survives from the stored state, not from whatever the
	// client sent.
	existing, err := h.store.Get(c.Request.Context(), roomID)
	if err != nil {
		log.Error().Err(err).Str("room_id", roomID).Msg("failed to read room before write")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	state := models.Normalize(roomID, candidate, existing, h.clock.Now())

	if err := h.store.Set(c.Request.Context(), roomID, state); err != nil {
		log.Error().Err(err).Str("room_id", roomID).Msg("failed to save room")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "state": state})
}

// DeleteRoom removes a room. Deleting an absent room succeeds.
func (h *RoomHandler) DeleteRoom(c *gin.Context) {
	roomID := c.Param("id")

	if err := h.store.Delete(c.Request.Context(), roomID); err != nil {
		log.Error().Err(err).Str("room_id", roomID).Msg("failed to delete room")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Register mounts the room resource and health probe on a router.
func (h *RoomHandler) Register(router *gin.Engine) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	room := router.Group("/room/:id")
	{
		room.GET("", h.GetRoom)
		room.POST("", h.SaveRoom)
		room.DELETE("", h.DeleteRoom)
	}
}
