package chat

import (
	"encoding/json"
	"time"

	"github.com/Piero-design/VETAQP/models"
)

const (
	FrameChatMessage = "chat_message"
	FrameMarkAsRead  = "mark_as_read"
	FrameMessageRead = "message_read"
	FrameError       = "error"
)

// InboundFrame is one decoded client frame. Type selects which of the other
// fields is meaningful.
type InboundFrame struct {
	Type      string `json:"type"`
	Message   string `json:"message,omitempty"`
	MessageID uint   `json:"message_id,omitempty"`
}

// DecodeInbound parses a raw websocket payload. Unknown types are not an
// error here; the consumer answers those with an error frame.
func DecodeInbound(data []byte) (InboundFrame, error) {
	var f InboundFrame
	if err := json.Unmarshal(data, &f); err != nil {
		return InboundFrame{}, err
	}
	return f, nil
}

// Frame is one server → client protocol message.
type Frame struct {
	Type           string `json:"type"`
	Message        string `json:"message,omitempty"`
	SenderID       uint   `json:"sender_id,omitempty"`
	SenderUsername string `json:"sender_username,omitempty"`
	MessageID      uint   `json:"message_id,omitempty"`
	Timestamp      string `json:"timestamp,omitempty"`
	IsRead         *bool  `json:"is_read,omitempty"`
}

func NewChatMessageFrame(msg *models.ChatMessage, senderName string) Frame {
	isRead := msg.IsRead
	return Frame{
		Type:           FrameChatMessage,
		Message:        msg.Message,
		SenderID:       msg.SenderID,
		SenderUsername: senderName,
		MessageID:      msg.ID,
		Timestamp:      msg.Timestamp.Format(time.RFC3339),
		IsRead:         &isRead,
	}
}

func NewMessageReadFrame(messageID uint) Frame {
	return Frame{Type: FrameMessageRead, MessageID: messageID}
}

func NewErrorFrame(text string) Frame {
	return Frame{Type: FrameError, Message: text}
}
