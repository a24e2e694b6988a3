package handlers

import (
	"net/http"
	"strconv"

	"github.com/Piero-design/VETAQP/models"
	"github.com/Piero-design/VETAQP/services"
	"github.com/labstack/echo/v4"
)

// ChatHandler is the REST surface around the chat rooms: inbox, history,
// read bookkeeping. The live connection is handled by the websocket
// handler.
type ChatHandler struct {
	chatService *services.ChatService
}

func NewChatHandler(chatService *services.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

func roomIDParam(c echo.Context, name string) (uint, bool) {
	id64, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		return 0, false
	}
	return uint(id64), true
}

// ListVeterinarians returns the staff a client can open a room with.
func (h *ChatHandler) ListVeterinarians(c echo.Context) error {
	vets, err := h.chatService.ListVeterinarians()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to fetch veterinarians",
		})
	}
	return c.JSON(http.StatusOK, vets)
}

// CreateRoom opens the client's room with a veterinarian. Recreating an
// existing pair hands back the existing room.
func (h *ChatHandler) CreateRoom(c echo.Context) error {
	user := c.Get("user").(*models.User)

	var req struct {
		VeterinarianID uint `json:"veterinarian_id"`
	}
	if err := c.Bind(&req); err != nil || req.VeterinarianID == 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	room, err := h.chatService.CreateRoom(user, req.VeterinarianID)
	if err != nil {
		switch err {
		case services.ErrNotVeterinarian:
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		default:
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to create room"})
		}
	}
	return c.JSON(http.StatusCreated, room)
}

func (h *ChatHandler) ListRooms(c echo.Context) error {
	user := c.Get("user").(*models.User)
	rooms, err := h.chatService.ListRooms(user)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to fetch rooms"})
	}
	return c.JSON(http.StatusOK, rooms)
}

func (h *ChatHandler) GetRoom(c echo.Context) error {
	user := c.Get("user").(*models.User)
	roomID, ok := roomIDParam(c, "roomId")
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid room ID"})
	}

	room, err := h.chatService.GetRoom(roomID, user)
	if err != nil {
		return chatServiceError(c, err)
	}

	messages, err := h.chatService.ListMessages(roomID, user)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to fetch messages"})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"room":     room,
		"messages": messages,
	})
}

// UpdateRoom only accepts the is_active flag; rooms are closed, not
// deleted.
func (h *ChatHandler) UpdateRoom(c echo.Context) error {
	user := c.Get("user").(*models.User)
	roomID, ok := roomIDParam(c, "roomId")
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid room ID"})
	}

	var req struct {
		IsActive *bool `json:"is_active"`
	}
	if err := c.Bind(&req); err != nil || req.IsActive == nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	room, err := h.chatService.SetActive(roomID, user, *req.IsActive)
	if err != nil {
		return chatServiceError(c, err)
	}
	return c.JSON(http.StatusOK, room)
}

func (h *ChatHandler) GetMessages(c echo.Context) error {
	user := c.Get("user").(*models.User)
	roomID, ok := roomIDParam(c, "roomId")
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid room ID"})
	}

	messages, err := h.chatService.ListMessages(roomID, user)
	if err != nil {
		return chatServiceError(c, err)
	}
	return c.JSON(http.StatusOK, messages)
}

func (h *ChatHandler) MarkAsRead(c echo.Context) error {
	user := c.Get("user").(*models.User)
	roomID, ok := roomIDParam(c, "roomId")
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid room ID"})
	}

	updated, err := h.chatService.MarkAllRead(roomID, user)
	if err != nil {
		return chatServiceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"updated_count": updated,
	})
}

func (h *ChatHandler) UnreadCount(c echo.Context) error {
	user := c.Get("user").(*models.User)
	count, err := h.chatService.TotalUnread(user)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to count unread messages"})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"unread_count": count,
	})
}

func chatServiceError(c echo.Context, err error) error {
	switch err {
	case services.ErrRoomNotFound:
		return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
	case services.ErrAccessDenied:
		return c.JSON(http.StatusForbidden, map[string]string{"error": err.Error()})
	default:
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "chat operation failed"})
	}
}
