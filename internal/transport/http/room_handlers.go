package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/nexuschat/nexuschat-server/internal/core"
	"github.com/nexuschat/nexuschat-server/internal/proto"
)

// ErrorResponse represents an error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// RoomsResponse lists the configured rooms.
type RoomsResponse struct {
	Rooms       []string `json:"rooms"`
	DefaultRoom string   `json:"defaultRoom"`
}

// MessagesResponse is the message window of one room.
type MessagesResponse struct {
	Room     string          `json:"room"`
	Messages []proto.Message `json:"messages"`
}

// RoomHandlers provides read-only HTTP handlers for rooms.
type RoomHandlers struct {
	hub *core.Hub
	log *zerolog.Logger
}

// NewRoomHandlers creates a new room handlers instance.
func NewRoomHandlers(hub *core.Hub, logger *zerolog.Logger) *RoomHandlers {
	return &RoomHandlers{
		hub: hub,
		log: logger,
	}
}

// ListRooms returns the room allow-list.
// GET /api/rooms
func (h *RoomHandlers) ListRooms(c *gin.Context) {
	rooms := h.hub.Rooms()
	c.JSON(http.StatusOK, RoomsResponse{
		Rooms:       rooms.Rooms(),
		DefaultRoom: rooms.Default(),
	})
}

// GetMessages returns the newest messages of a room.
// GET /api/rooms/:room/messages
func (h *RoomHandlers) GetMessages(c *gin.Context) {
	room := c.Param("room")

	msgs, err := h.hub.FetchWindow(c.Request.Context(), room)
	if err != nil {
		if errors.Is(err, core.ErrValidation) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "room not found"})
			return
		}
		h.log.Error().Err(err).Str("room", room).Msg("failed to fetch messages")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	c.JSON(http.StatusOK, MessagesResponse{
		Room:     room,
		Messages: messagesToProto(msgs),
	})
}
