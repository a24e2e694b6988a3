package chat

import (
	"testing"
	"time"
)

// Full two-party exchange: client and veterinarian on a real hub, with the
// exact delivery and read-receipt flow the protocol promises.
func TestClientAndVeterinarianExchange(t *testing.T) {
	store := newFakeStore()
	store.addRoom(roomID, clientID, vetID)
	hub := NewHub()

	client := NewConsumer(store, hub)
	if err := client.Connect(clientID, "carla", roomID); err != nil {
		t.Fatalf("client connect: %v", err)
	}
	vet := NewConsumer(store, hub)
	if err := vet.Connect(vetID, "dr-ramos", roomID); err != nil {
		t.Fatalf("vet connect: %v", err)
	}

	// Client greets; both joined sessions get the echo.
	client.HandleFrame(InboundFrame{Type: FrameChatMessage, Message: "Hello"})

	got := recvFrame(t, vet.Session())
	if got.Type != FrameChatMessage || got.Message != "Hello" || got.SenderID != clientID {
		t.Fatalf("vet received %+v, want Hello from client", got)
	}
	if got.SenderUsername != "carla" {
		t.Errorf("sender_username = %q, want carla", got.SenderUsername)
	}
	echo := recvFrame(t, client.Session())
	if echo.MessageID != got.MessageID {
		t.Errorf("sender echo carries id %d, counterpart saw %d", echo.MessageID, got.MessageID)
	}

	// Vet replies.
	vet.HandleFrame(InboundFrame{Type: FrameChatMessage, Message: "Hi"})

	reply := recvFrame(t, client.Session())
	if reply.Message != "Hi" || reply.SenderID != vetID {
		t.Fatalf("client received %+v, want Hi from vet", reply)
	}
	recvFrame(t, vet.Session()) // vet's own echo

	// Client confirms reading the vet's message; both sessions learn it.
	client.HandleFrame(InboundFrame{Type: FrameMarkAsRead, MessageID: reply.MessageID})

	for name, s := range map[string]*Session{"client": client.Session(), "vet": vet.Session()} {
		f := recvFrame(t, s)
		if f.Type != FrameMessageRead || f.MessageID != reply.MessageID {
			t.Errorf("%s received %+v, want message_read %d", name, f, reply.MessageID)
		}
	}
	if !store.messages[reply.MessageID].IsRead {
		t.Error("vet's message should be read in the store")
	}

	client.Disconnect()
	vet.Disconnect()
}

// Connecting marks the counterpart's backlog as read in bulk.
func TestReconnectReadsBacklog(t *testing.T) {
	store := newFakeStore()
	store.addRoom(roomID, clientID, vetID)
	hub := NewHub()

	client := NewConsumer(store, hub)
	if err := client.Connect(clientID, "carla", roomID); err != nil {
		t.Fatalf("client connect: %v", err)
	}
	client.HandleFrame(InboundFrame{Type: FrameChatMessage, Message: "are you there?"})
	recvFrame(t, client.Session())
	client.Disconnect()

	// Vet connects later; the client's backlog flips to read.
	vet := NewConsumer(store, hub)
	if err := vet.Connect(vetID, "dr-ramos", roomID); err != nil {
		t.Fatalf("vet connect: %v", err)
	}
	for _, msg := range store.messages {
		if msg.SenderID == clientID && !msg.IsRead {
			t.Error("client's backlog should be read after the vet connects")
		}
	}
	vet.Disconnect()
}

// A consumer whose session was dropped for falling behind must keep
// tolerating inbound frames; its local error frames are discarded instead
// of being sent to the dead session.
func TestFrameAfterEvictionIsHarmless(t *testing.T) {
	store := newFakeStore()
	store.addRoom(roomID, clientID, vetID)
	hub := NewHub()

	client := NewConsumer(store, hub)
	if err := client.Connect(clientID, "carla", roomID); err != nil {
		t.Fatalf("client connect: %v", err)
	}

	// Never drain: overflow the buffer and one more to trip eviction.
	session := client.Session()
	for i := 0; i < cap(session.Send)+1; i++ {
		hub.Publish(roomID, NewMessageReadFrame(uint(i + 1)))
	}
	select {
	case <-session.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("session was never evicted")
	}

	// Both paths that answer with a local error frame.
	client.HandleRaw([]byte(`{"type":"chat_message","message":"   "}`))
	client.HandleRaw([]byte("not json"))

	client.Disconnect()
}
