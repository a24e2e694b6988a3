package chat

import (
	"errors"
	"log"
	"strings"
)

// State of one connection's protocol lifecycle.
type State int

const (
	StateConnecting State = iota
	StateJoined
	StateClosed
)

var (
	ErrUnauthenticated = errors.New("connection is not authenticated")
	ErrAccessDenied    = errors.New("not a participant of this room")
)

// Consumer drives the chat protocol for a single connection: Connecting on
// creation, Joined after a successful Connect, Closed after Disconnect. The
// transport feeds it raw frames one at a time; frames from different
// connections run on their own consumers concurrently.
type Consumer struct {
	store   RoomStore
	group   BroadcastGroup
	session *Session
	state   State
}

func NewConsumer(store RoomStore, group BroadcastGroup) *Consumer {
	return &Consumer{store: store, group: group, state: StateConnecting}
}

// Connect authorizes the principal against the room and joins the broadcast
// group. Opening the chat counts as reading everything the counterpart sent,
// so all their unread messages are flipped as a side effect. Inactive rooms
// still connect; is_active is advisory only.
func (c *Consumer) Connect(userID uint, username string, roomID uint) error {
	if userID == 0 {
		c.state = StateClosed
		return ErrUnauthenticated
	}

	room, err := c.store.GetRoom(roomID)
	if err != nil {
		c.state = StateClosed
		if errors.Is(err, ErrRoomNotFound) {
			return ErrAccessDenied
		}
		return err
	}
	if !room.IsParticipant(userID) {
		c.state = StateClosed
		return ErrAccessDenied
	}

	c.session = NewSession(userID, username, roomID)
	c.group.Join(roomID, c.session)
	c.state = StateJoined

	if _, err := c.store.MarkAllRead(roomID, userID); err != nil {
		// Not fatal for the connection; the client can still mark
		// messages individually.
		log.Printf("chat: mark-all-read on connect failed for room %d: %v", roomID, err)
	}
	return nil
}

// Session is nil until Connect succeeds.
func (c *Consumer) Session() *Session { return c.session }

func (c *Consumer) State() State { return c.state }

// HandleRaw decodes one inbound payload. A payload that is not valid JSON
// gets a local error frame and the connection stays open.
func (c *Consumer) HandleRaw(data []byte) {
	frame, err := DecodeInbound(data)
	if err != nil {
		c.sendLocal(NewErrorFrame("invalid message format"))
		return
	}
	c.HandleFrame(frame)
}

// HandleFrame runs one inbound frame through the state machine.
func (c *Consumer) HandleFrame(frame InboundFrame) {
	if c.state != StateJoined {
		return
	}

	switch frame.Type {
	case FrameChatMessage:
		c.handleChatMessage(frame.Message)
	case FrameMarkAsRead:
		c.handleMarkAsRead(frame.MessageID)
	default:
		c.sendLocal(NewErrorFrame("unknown message type"))
	}
}

func (c *Consumer) handleChatMessage(body string) {
	body = strings.TrimSpace(body)
	if body == "" {
		c.sendLocal(NewErrorFrame("message cannot be empty"))
		return
	}

	msg, err := c.store.CreateMessage(c.session.RoomID, c.session.UserID, body)
	if err != nil {
		log.Printf("chat: failed to save message in room %d: %v", c.session.RoomID, err)
		c.sendLocal(NewErrorFrame("message could not be saved, please retry"))
		return
	}

	c.group.Publish(c.session.RoomID, NewChatMessageFrame(msg, c.session.Username))
}

func (c *Consumer) handleMarkAsRead(messageID uint) {
	if messageID == 0 {
		c.sendLocal(NewErrorFrame("message_id is required"))
		return
	}

	flipped, err := c.store.MarkOneRead(c.session.RoomID, messageID, c.session.UserID)
	if err != nil {
		switch {
		case errors.Is(err, ErrMessageNotFound):
			// Unknown id, nothing to do.
		case errors.Is(err, ErrWrongRoom):
			c.sendLocal(NewErrorFrame("message does not belong to this room"))
		default:
			log.Printf("chat: failed to mark message %d read: %v", messageID, err)
			c.sendLocal(NewErrorFrame("could not mark message as read, please retry"))
		}
		return
	}
	if !flipped {
		// Own message or already read: no state change, no broadcast.
		return
	}

	c.group.Publish(c.session.RoomID, NewMessageReadFrame(messageID))
}

// Disconnect leaves the broadcast group. Safe to call repeatedly and safe
// when Connect never succeeded.
func (c *Consumer) Disconnect() {
	if c.state == StateJoined {
		c.group.Leave(c.session.RoomID, c.session)
	}
	c.state = StateClosed
}

// sendLocal queues a frame for this session only, never the room. Dropped
// when the session is gone, already closed, or its buffer is full.
func (c *Consumer) sendLocal(frame Frame) {
	if c.session == nil || c.session.Closed() {
		return
	}
	select {
	case c.session.Send <- frame:
	default:
	}
}
