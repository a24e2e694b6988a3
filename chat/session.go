package chat

import (
	"sync"

	"github.com/google/uuid"
)

// Session is the in-memory state of one live connection: who is connected,
// to which room, and the outbound frame queue the transport drains. It is
// created at connect and thrown away at disconnect; a reconnect builds a
// fresh one.
type Session struct {
	ID       string
	UserID   uint
	Username string
	RoomID   uint
	Send     chan Frame

	done      chan struct{}
	closeOnce sync.Once
}

func NewSession(userID uint, username string, roomID uint) *Session {
	return &Session{
		ID:       uuid.New().String(),
		UserID:   userID,
		Username: username,
		RoomID:   roomID,
		Send:     make(chan Frame, 256),
		done:     make(chan struct{}),
	}
}

// Close marks the session finished and wakes its transport. The Send
// channel is never closed; writers check Closed instead, so a late frame
// cannot panic the sender.
func (s *Session) Close() {
	s.closeOnce.Do(func() { close(s.done) })
}

// Done is closed once the session has been removed from its room.
func (s *Session) Done() <-chan struct{} { return s.done }

func (s *Session) Closed() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}
