package chat

import (
	"log"
	"sync"
)

// BroadcastGroup fans one frame out to every session currently joined to a
// room, the publisher included. Membership is process-local; nothing is
// buffered for sessions that are not connected.
type BroadcastGroup interface {
	Join(roomID uint, s *Session)
	Leave(roomID uint, s *Session)
	Publish(roomID uint, frame Frame)
}

// Hub is the production BroadcastGroup. Join and Leave mutate room
// membership synchronously, so a session is eligible for delivery the
// moment Join returns. Publishes funnel through one dispatch goroutine per
// room, which is what preserves per-room publish order.
type Hub struct {
	rooms map[uint]*hubRoom
	mu    sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{rooms: make(map[uint]*hubRoom)}
}

type hubRoom struct {
	id        uint
	sessions  map[string]*Session
	mu        sync.RWMutex
	broadcast chan Frame
}

func (h *Hub) getOrCreateRoom(roomID uint) *hubRoom {
	h.mu.Lock()
	defer h.mu.Unlock()

	if room, exists := h.rooms[roomID]; exists {
		return room
	}

	room := &hubRoom{
		id:        roomID,
		sessions:  make(map[string]*Session),
		broadcast: make(chan Frame, 256),
	}
	h.rooms[roomID] = room

	go room.run()

	return room
}

func (h *Hub) Join(roomID uint, s *Session) {
	room := h.getOrCreateRoom(roomID)
	room.mu.Lock()
	room.sessions[s.ID] = s
	room.mu.Unlock()
}

// Leave removes the session and signals its transport to shut down. The
// Send channel stays open; a frame already in flight is simply dropped.
func (h *Hub) Leave(roomID uint, s *Session) {
	h.mu.RLock()
	room, exists := h.rooms[roomID]
	h.mu.RUnlock()
	if exists {
		room.mu.Lock()
		delete(room.sessions, s.ID)
		room.mu.Unlock()
	}
	s.Close()
}

func (h *Hub) Publish(roomID uint, frame Frame) {
	h.getOrCreateRoom(roomID).broadcast <- frame
}

// run is the room's dispatch loop.
func (room *hubRoom) run() {
	for frame := range room.broadcast {
		room.mu.RLock()
		sessions := make([]*Session, 0, len(room.sessions))
		for _, s := range room.sessions {
			sessions = append(sessions, s)
		}
		room.mu.RUnlock()

		for _, s := range sessions {
			select {
			case s.Send <- frame:
			default:
				// Slow consumer, drop it from the room.
				log.Printf("chat: session %s send buffer full, evicting from room %d", s.ID, room.id)
				room.mu.Lock()
				delete(room.sessions, s.ID)
				room.mu.Unlock()
				s.Close()
			}
		}
	}
}
