package chat

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/Piero-design/VETAQP/models"
)

func TestDecodeInbound(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    InboundFrame
		wantErr bool
	}{
		{
			name:    "chat message",
			payload: `{"type": "chat_message", "message": "Hello"}`,
			want:    InboundFrame{Type: FrameChatMessage, Message: "Hello"},
		},
		{
			name:    "mark as read",
			payload: `{"type": "mark_as_read", "message_id": 42}`,
			want:    InboundFrame{Type: FrameMarkAsRead, MessageID: 42},
		},
		{
			name:    "unknown type decodes fine",
			payload: `{"type": "typing"}`,
			want:    InboundFrame{Type: "typing"},
		},
		{
			name:    "invalid json",
			payload: `{"type": `,
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeInbound([]byte(tt.payload))
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr = %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("frame = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestChatMessageFrameWireFormat(t *testing.T) {
	ts := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	frame := NewChatMessageFrame(&models.ChatMessage{
		ID:        7,
		RoomID:    roomID,
		SenderID:  clientID,
		Message:   "Hello",
		Timestamp: ts,
	}, "carla")

	data, err := json.Marshal(frame)
	if err != nil {
		t.Fatal(err)
	}
	payload := string(data)
	for _, want := range []string{
		`"type":"chat_message"`,
		`"message":"Hello"`,
		`"sender_id":1`,
		`"sender_username":"carla"`,
		`"message_id":7`,
		`"timestamp":"2026-03-14T09:26:53Z"`,
		`"is_read":false`,
	} {
		if !strings.Contains(payload, want) {
			t.Errorf("payload %s missing %s", payload, want)
		}
	}
}

func TestErrorFrameOmitsUnsetFields(t *testing.T) {
	data, err := json.Marshal(NewErrorFrame("boom"))
	if err != nil {
		t.Fatal(err)
	}
	if got := string(data); got != `{"type":"error","message":"boom"}` {
		t.Errorf("payload = %s", got)
	}
}
