// Package http serves the read-only JSON endpoints: room listings for
// lobby refreshes that do not want to hold a websocket, and health checks.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hamspncr/CSCI3280-Project/internal/store"
)

// RoomHandler serves room snapshots over plain HTTP.
type RoomHandler struct {
	rooms *store.RoomStore
}

// NewRoomHandler creates a RoomHandler.
func NewRoomHandler(rooms *store.RoomStore) *RoomHandler {
	if rooms == nil {
		panic("RoomStore cannot be nil for RoomHandler")
	}
	return &RoomHandler{rooms: rooms}
}

// ListRooms returns every room snapshot keyed by room id.
func (h *RoomHandler) ListRooms(c *gin.Context) {
	c.JSON(http.StatusOK, h.rooms.ListRooms())
}

// GetRoom returns one room snapshot or 404.
func (h *RoomHandler) GetRoom(c *gin.Context) {
	snap, ok := h.rooms.GetRoom(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Room not found"})
		return
	}
	c.JSON(http.StatusOK, snap)
}

// Healthz reports process liveness.
func Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
