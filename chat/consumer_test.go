package chat

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Piero-design/VETAQP/models"
)

type fakeStore struct {
	mu        sync.Mutex
	rooms     map[uint]*models.ChatRoom
	messages  map[uint]*models.ChatMessage
	nextID    uint
	createErr error
	markErr   error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		rooms:    make(map[uint]*models.ChatRoom),
		messages: make(map[uint]*models.ChatMessage),
	}
}

func (f *fakeStore) addRoom(id, userID, vetID uint) *models.ChatRoom {
	room := &models.ChatRoom{ID: id, UserID: userID, VeterinarianID: vetID, IsActive: true}
	f.rooms[id] = room
	return room
}

func (f *fakeStore) addMessage(roomID, senderID uint, body string, read bool) *models.ChatMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	msg := &models.ChatMessage{
		ID:        f.nextID,
		RoomID:    roomID,
		SenderID:  senderID,
		Message:   body,
		IsRead:    read,
		Timestamp: time.Now(),
	}
	f.messages[msg.ID] = msg
	return msg
}

func (f *fakeStore) GetRoom(roomID uint) (*models.ChatRoom, error) {
	room, ok := f.rooms[roomID]
	if !ok {
		return nil, ErrRoomNotFound
	}
	return room, nil
}

func (f *fakeStore) IsParticipant(roomID, userID uint) (bool, error) {
	room, ok := f.rooms[roomID]
	if !ok {
		return false, nil
	}
	return room.IsParticipant(userID), nil
}

func (f *fakeStore) CreateMessage(roomID, senderID uint, body string) (*models.ChatMessage, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.addMessage(roomID, senderID, body, false), nil
}

func (f *fakeStore) MarkAllRead(roomID, excludingSenderID uint) (int64, error) {
	if f.markErr != nil {
		return 0, f.markErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, msg := range f.messages {
		if msg.RoomID == roomID && !msg.IsRead && msg.SenderID != excludingSenderID {
			msg.IsRead = true
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) MarkOneRead(roomID, messageID, readerID uint) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	msg, ok := f.messages[messageID]
	if !ok {
		return false, ErrMessageNotFound
	}
	if msg.RoomID != roomID {
		return false, ErrWrongRoom
	}
	if msg.SenderID == readerID || msg.IsRead {
		return false, nil
	}
	msg.IsRead = true
	return true, nil
}

type published struct {
	roomID uint
	frame  Frame
}

type recorderGroup struct {
	joined []*Session
	left   []*Session
	frames []published
}

func (r *recorderGroup) Join(roomID uint, s *Session)  { r.joined = append(r.joined, s) }
func (r *recorderGroup) Leave(roomID uint, s *Session) { r.left = append(r.left, s) }
func (r *recorderGroup) Publish(roomID uint, frame Frame) {
	r.frames = append(r.frames, published{roomID: roomID, frame: frame})
}

const (
	clientID = uint(1)
	vetID    = uint(2)
	roomID   = uint(10)
)

func joinedConsumer(t *testing.T, store *fakeStore, group *recorderGroup, userID uint) *Consumer {
	t.Helper()
	c := NewConsumer(store, group)
	if err := c.Connect(userID, "tester", roomID); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	return c
}

func drainLocal(s *Session) []Frame {
	var frames []Frame
	for {
		select {
		case f := <-s.Send:
			frames = append(frames, f)
		default:
			return frames
		}
	}
}

func TestConnectAccessPolicy(t *testing.T) {
	tests := []struct {
		name    string
		userID  uint
		wantErr error
	}{
		{"client is allowed", clientID, nil},
		{"veterinarian is allowed", vetID, nil},
		{"stranger is refused", 99, ErrAccessDenied},
		{"unauthenticated is refused", 0, ErrUnauthenticated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			store.addRoom(roomID, clientID, vetID)
			group := &recorderGroup{}
			c := NewConsumer(store, group)

			err := c.Connect(tt.userID, "tester", roomID)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Connect error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				if c.State() != StateClosed {
					t.Errorf("state = %v, want Closed", c.State())
				}
				if len(group.joined) != 0 {
					t.Errorf("refused connect joined the group")
				}
			} else if c.State() != StateJoined {
				t.Errorf("state = %v, want Joined", c.State())
			}
		})
	}
}

func TestConnectMissingRoomRefused(t *testing.T) {
	c := NewConsumer(newFakeStore(), &recorderGroup{})
	if err := c.Connect(clientID, "tester", roomID); !errors.Is(err, ErrAccessDenied) {
		t.Fatalf("Connect error = %v, want ErrAccessDenied", err)
	}
}

func TestConnectMarksCounterpartMessagesRead(t *testing.T) {
	store := newFakeStore()
	store.addRoom(roomID, clientID, vetID)
	fromVet := store.addMessage(roomID, vetID, "hola", false)
	fromVet2 := store.addMessage(roomID, vetID, "sigues ahi?", false)
	own := store.addMessage(roomID, clientID, "un momento", false)

	joinedConsumer(t, store, &recorderGroup{}, clientID)

	if !fromVet.IsRead || !fromVet2.IsRead {
		t.Error("counterpart messages were not marked read on connect")
	}
	if own.IsRead {
		t.Error("own message must not be marked read on connect")
	}
}

func TestConnectAllowedOnInactiveRoom(t *testing.T) {
	store := newFakeStore()
	room := store.addRoom(roomID, clientID, vetID)
	room.IsActive = false
	group := &recorderGroup{}

	c := joinedConsumer(t, store, group, clientID)

	// Inactive rooms still accept sends.
	c.HandleFrame(InboundFrame{Type: FrameChatMessage, Message: "still there?"})
	if len(group.frames) != 1 {
		t.Fatalf("published %d frames, want 1", len(group.frames))
	}
}

func TestSendMessagePersistsAndBroadcasts(t *testing.T) {
	store := newFakeStore()
	store.addRoom(roomID, clientID, vetID)
	group := &recorderGroup{}
	c := joinedConsumer(t, store, group, clientID)

	c.HandleFrame(InboundFrame{Type: FrameChatMessage, Message: "  Hello  "})

	if len(store.messages) != 1 {
		t.Fatalf("store has %d messages, want 1", len(store.messages))
	}
	var msg *models.ChatMessage
	for _, m := range store.messages {
		msg = m
	}
	if msg.SenderID != clientID || msg.RoomID != roomID || msg.IsRead {
		t.Errorf("persisted message = %+v, want sender %d room %d unread", msg, clientID, roomID)
	}
	if msg.Message != "Hello" {
		t.Errorf("body = %q, want trimmed %q", msg.Message, "Hello")
	}

	if len(group.frames) != 1 {
		t.Fatalf("published %d frames, want 1", len(group.frames))
	}
	frame := group.frames[0].frame
	if frame.Type != FrameChatMessage || frame.MessageID != msg.ID || frame.SenderID != clientID {
		t.Errorf("broadcast frame = %+v", frame)
	}
	if frame.IsRead == nil || *frame.IsRead {
		t.Error("broadcast frame must carry is_read=false")
	}
	if _, err := time.Parse(time.RFC3339, frame.Timestamp); err != nil {
		t.Errorf("timestamp %q is not RFC3339: %v", frame.Timestamp, err)
	}
}

func TestSendWhitespaceBodyRejected(t *testing.T) {
	store := newFakeStore()
	store.addRoom(roomID, clientID, vetID)
	group := &recorderGroup{}
	c := joinedConsumer(t, store, group, clientID)

	c.HandleFrame(InboundFrame{Type: FrameChatMessage, Message: "   \n\t "})

	if len(store.messages) != 0 {
		t.Error("whitespace-only body must not be persisted")
	}
	if len(group.frames) != 0 {
		t.Error("whitespace-only body must not be broadcast")
	}
	local := drainLocal(c.Session())
	if len(local) != 1 || local[0].Type != FrameError {
		t.Fatalf("local frames = %+v, want one error frame", local)
	}
	if c.State() != StateJoined {
		t.Error("validation failure must not close the connection")
	}
}

func TestSendPersistenceFailureSurfacesError(t *testing.T) {
	store := newFakeStore()
	store.addRoom(roomID, clientID, vetID)
	group := &recorderGroup{}
	c := joinedConsumer(t, store, group, clientID)
	store.createErr = &PersistenceError{Op: "create message", Err: errors.New("connection reset")}

	c.HandleFrame(InboundFrame{Type: FrameChatMessage, Message: "Hello"})

	if len(group.frames) != 0 {
		t.Error("failed persist must not broadcast")
	}
	local := drainLocal(c.Session())
	if len(local) != 1 || local[0].Type != FrameError {
		t.Fatalf("local frames = %+v, want one error frame", local)
	}
	if c.State() != StateJoined {
		t.Error("persistence failure must not close the connection")
	}
}

func TestMarkAsReadOwnMessageIsNoop(t *testing.T) {
	store := newFakeStore()
	store.addRoom(roomID, clientID, vetID)
	group := &recorderGroup{}
	c := joinedConsumer(t, store, group, clientID)
	own := store.addMessage(roomID, clientID, "mine", false)

	c.HandleFrame(InboundFrame{Type: FrameMarkAsRead, MessageID: own.ID})

	if own.IsRead {
		t.Error("own message must stay unread")
	}
	if len(group.frames) != 0 {
		t.Error("own-message mark_as_read must not broadcast")
	}
}

func TestMarkAsReadCounterpartFlipsOnce(t *testing.T) {
	store := newFakeStore()
	store.addRoom(roomID, clientID, vetID)
	group := &recorderGroup{}
	c := joinedConsumer(t, store, group, clientID)
	msg := store.addMessage(roomID, vetID, "from vet", false)

	c.HandleFrame(InboundFrame{Type: FrameMarkAsRead, MessageID: msg.ID})
	c.HandleFrame(InboundFrame{Type: FrameMarkAsRead, MessageID: msg.ID})

	if !msg.IsRead {
		t.Error("counterpart message should be read")
	}
	if len(group.frames) != 1 {
		t.Fatalf("published %d message_read frames, want exactly 1", len(group.frames))
	}
	if got := group.frames[0].frame; got.Type != FrameMessageRead || got.MessageID != msg.ID {
		t.Errorf("broadcast frame = %+v", got)
	}
}

func TestMarkAsReadForeignRoomRejected(t *testing.T) {
	store := newFakeStore()
	store.addRoom(roomID, clientID, vetID)
	store.addRoom(11, clientID, 3)
	group := &recorderGroup{}
	c := joinedConsumer(t, store, group, clientID)
	foreign := store.addMessage(11, 3, "elsewhere", false)

	c.HandleFrame(InboundFrame{Type: FrameMarkAsRead, MessageID: foreign.ID})

	if foreign.IsRead {
		t.Error("message in another room must not be flipped")
	}
	if len(group.frames) != 0 {
		t.Error("nothing may be broadcast")
	}
	local := drainLocal(c.Session())
	if len(local) != 1 || local[0].Type != FrameError {
		t.Fatalf("local frames = %+v, want one error frame", local)
	}
}

func TestMarkAsReadUnknownIDIgnored(t *testing.T) {
	store := newFakeStore()
	store.addRoom(roomID, clientID, vetID)
	group := &recorderGroup{}
	c := joinedConsumer(t, store, group, clientID)

	c.HandleFrame(InboundFrame{Type: FrameMarkAsRead, MessageID: 404})

	if len(group.frames) != 0 || len(drainLocal(c.Session())) != 0 {
		t.Error("unknown message id should be a silent no-op")
	}
}

func TestMalformedPayloadKeepsConnectionOpen(t *testing.T) {
	store := newFakeStore()
	store.addRoom(roomID, clientID, vetID)
	group := &recorderGroup{}
	c := joinedConsumer(t, store, group, clientID)

	c.HandleRaw([]byte("{not json"))

	local := drainLocal(c.Session())
	if len(local) != 1 || local[0].Type != FrameError {
		t.Fatalf("local frames = %+v, want one error frame", local)
	}
	if c.State() != StateJoined {
		t.Fatal("decode failure must not close the connection")
	}

	// Still able to send afterwards.
	c.HandleFrame(InboundFrame{Type: FrameChatMessage, Message: "still here"})
	if len(group.frames) != 1 {
		t.Error("connection should still deliver after a decode failure")
	}
}

func TestUnknownFrameTypeAnswersLocally(t *testing.T) {
	store := newFakeStore()
	store.addRoom(roomID, clientID, vetID)
	group := &recorderGroup{}
	c := joinedConsumer(t, store, group, clientID)

	c.HandleFrame(InboundFrame{Type: "typing"})

	if len(group.frames) != 0 {
		t.Error("unknown frame type must not broadcast")
	}
	if local := drainLocal(c.Session()); len(local) != 1 || local[0].Type != FrameError {
		t.Fatalf("local frames = %+v, want one error frame", local)
	}
}

func TestDisconnectIsIdempotent(t *testing.T) {
	store := newFakeStore()
	store.addRoom(roomID, clientID, vetID)
	group := &recorderGroup{}
	c := joinedConsumer(t, store, group, clientID)

	c.Disconnect()
	c.Disconnect()

	if len(group.left) != 1 {
		t.Errorf("left the group %d times, want 1", len(group.left))
	}
	if c.State() != StateClosed {
		t.Errorf("state = %v, want Closed", c.State())
	}

	// Never-joined consumer.
	c2 := NewConsumer(store, group)
	c2.Disconnect()
	c2.Disconnect()
	if len(group.left) != 1 {
		t.Error("disconnecting an unjoined consumer must not touch the group")
	}
}

func TestFramesIgnoredAfterDisconnect(t *testing.T) {
	store := newFakeStore()
	store.addRoom(roomID, clientID, vetID)
	group := &recorderGroup{}
	c := joinedConsumer(t, store, group, clientID)
	c.Disconnect()

	c.HandleFrame(InboundFrame{Type: FrameChatMessage, Message: "too late"})

	if len(store.messages) != 0 || len(group.frames) != 0 {
		t.Error("closed consumer must not persist or broadcast")
	}
}

// The read flip must be observed by exactly one caller when several mark
// the same message at once, so message_read broadcasts once.
func TestMarkOneReadFlipsExactlyOnceUnderConcurrency(t *testing.T) {
	store := newFakeStore()
	store.addRoom(roomID, clientID, vetID)
	msg := store.addMessage(roomID, clientID, "hello", false)

	const readers = 16
	var wg sync.WaitGroup
	var flips int64
	for i := 0; i < readers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			flipped, err := store.MarkOneRead(roomID, msg.ID, vetID)
			if err != nil {
				t.Errorf("MarkOneRead: %v", err)
				return
			}
			if flipped {
				atomic.AddInt64(&flips, 1)
			}
		}()
	}
	wg.Wait()

	if flips != 1 {
		t.Fatalf("flips = %d, want exactly 1", flips)
	}
	if !store.messages[msg.ID].IsRead {
		t.Error("message should end up read")
	}
}
