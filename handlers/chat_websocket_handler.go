package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/Piero-design/VETAQP/chat"
	"github.com/Piero-design/VETAQP/models"
	"github.com/Piero-design/VETAQP/redis"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// ChatWebSocketHandler bridges the websocket transport to the chat
// protocol consumer. One consumer per connection; the hub is shared.
type ChatWebSocketHandler struct {
	store chat.RoomStore
	hub   chat.BroadcastGroup
	redis *redis.RedisClient
}

func NewChatWebSocketHandler(db *gorm.DB, redisClient *redis.RedisClient) *ChatWebSocketHandler {
	return &ChatWebSocketHandler{
		store: chat.NewRoomStore(db),
		hub:   chat.NewHub(),
		redis: redisClient,
	}
}

// HandleWebSocket runs the connect transition before upgrading, so a
// refused principal is turned away with a plain HTTP status and never
// sees a frame.
func (h *ChatWebSocketHandler) HandleWebSocket(c echo.Context) error {
	roomID64, err := strconv.ParseUint(c.Param("roomId"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid room ID"})
	}
	roomID := uint(roomID64)
	user := c.Get("user").(*models.User)

	consumer := chat.NewConsumer(h.store, h.hub)
	if err := consumer.Connect(user.ID, user.Username, roomID); err != nil {
		switch {
		case errors.Is(err, chat.ErrAccessDenied):
			return c.JSON(http.StatusForbidden, map[string]string{"error": "access denied"})
		case errors.Is(err, chat.ErrUnauthenticated):
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		default:
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to join room"})
		}
	}

	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		consumer.Disconnect()
		return err
	}

	if h.redis != nil {
		err := h.redis.AddOnlineUser(context.Background(), roomID, redis.OnlineUser{
			UserID:   user.ID,
			Username: user.Username,
			IsStaff:  user.IsStaff,
		})
		if err != nil {
			log.Printf("Failed to record presence: %v", err)
		}
	}

	go h.writePump(ws, consumer.Session())
	h.readPump(ws, consumer, roomID, user.ID)

	return nil
}

func (h *ChatWebSocketHandler) readPump(ws *websocket.Conn, consumer *chat.Consumer, roomID, userID uint) {
	defer func() {
		consumer.Disconnect()
		ws.Close()
		if h.redis != nil {
			if err := h.redis.RemoveOnlineUser(context.Background(), roomID, userID); err != nil {
				log.Printf("Failed to clear presence: %v", err)
			}
		}
	}()

	ws.SetReadDeadline(time.Now().Add(60 * time.Second))
	ws.SetPongHandler(func(string) error {
		ws.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		consumer.HandleRaw(data)
	}
}

func (h *ChatWebSocketHandler) writePump(ws *websocket.Conn, session *chat.Session) {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		ws.Close()
	}()

	for {
		select {
		case frame := <-session.Send:
			ws.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := ws.WriteJSON(frame); err != nil {
				log.Printf("WriteJSON error: %v", err)
				return
			}

		case <-session.Done():
			// Left the room or evicted by the hub; tell the peer.
			ws.SetWriteDeadline(time.Now().Add(10 * time.Second))
			ws.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case <-ticker.C:
			ws.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// GetOnlineUsers lists the room's current presence set.
func (h *ChatWebSocketHandler) GetOnlineUsers(c echo.Context) error {
	roomID64, err := strconv.ParseUint(c.Param("roomId"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid room ID"})
	}

	users := []redis.OnlineUser{}
	if h.redis != nil {
		users, err = h.redis.GetOnlineUsers(c.Request().Context(), uint(roomID64))
		if err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{
				"error": "failed to fetch online users",
			})
		}
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"room_id": roomID64,
		"count":   len(users),
		"users":   users,
	})
}
