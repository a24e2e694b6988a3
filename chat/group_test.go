package chat

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func recvFrame(t *testing.T, s *Session) Frame {
	t.Helper()
	select {
	case f, ok := <-s.Send:
		if !ok {
			t.Fatal("send channel closed while waiting for a frame")
		}
		return f
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a frame")
	}
	return Frame{}
}

func expectNoFrame(t *testing.T, s *Session) {
	t.Helper()
	select {
	case f := <-s.Send:
		t.Fatalf("unexpected frame delivered: %+v", f)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubFanOutIncludesPublisher(t *testing.T) {
	hub := NewHub()
	a := NewSession(1, "a", 10)
	b := NewSession(2, "b", 10)
	hub.Join(10, a)
	hub.Join(10, b)

	hub.Publish(10, NewMessageReadFrame(7))

	for _, s := range []*Session{a, b} {
		f := recvFrame(t, s)
		if f.Type != FrameMessageRead || f.MessageID != 7 {
			t.Errorf("frame = %+v, want message_read 7", f)
		}
	}
}

func TestHubRoomsAreIsolated(t *testing.T) {
	hub := NewHub()
	a := NewSession(1, "a", 10)
	other := NewSession(2, "b", 11)
	hub.Join(10, a)
	hub.Join(11, other)

	hub.Publish(10, NewErrorFrame("only room 10"))

	recvFrame(t, a)
	expectNoFrame(t, other)
}

func TestHubPublishOrderPreserved(t *testing.T) {
	hub := NewHub()
	s := NewSession(1, "a", 10)
	hub.Join(10, s)

	const n = 50
	for i := 1; i <= n; i++ {
		hub.Publish(10, NewMessageReadFrame(uint(i)))
	}

	for i := 1; i <= n; i++ {
		f := recvFrame(t, s)
		if f.MessageID != uint(i) {
			t.Fatalf("frame %d arrived with id %d, order not preserved", i, f.MessageID)
		}
	}
}

func TestHubLeaveStopsDeliveryAndSignalsDone(t *testing.T) {
	hub := NewHub()
	s := NewSession(1, "a", 10)
	hub.Join(10, s)
	hub.Leave(10, s)

	select {
	case <-s.Done():
	default:
		t.Fatal("leave should signal the session's done channel")
	}

	hub.Publish(10, NewErrorFrame("after leave"))
	expectNoFrame(t, s)
}

// A session must be eligible for delivery the moment Join returns; there is
// no grace period for the dispatch loop to catch up.
func TestHubJoinThenImmediatePublish(t *testing.T) {
	hub := NewHub()
	for i := uint(1); i <= 500; i++ {
		s := NewSession(i, fmt.Sprintf("u%d", i), i)
		hub.Join(i, s)
		hub.Publish(i, NewMessageReadFrame(i))

		f := recvFrame(t, s)
		if f.MessageID != i {
			t.Fatalf("join %d lost its first publish, got %+v", i, f)
		}
	}
}

func TestHubLeaveUnknownRoomIsNoop(t *testing.T) {
	hub := NewHub()
	hub.Leave(99, NewSession(1, "a", 99))
}

func TestHubEvictsSlowConsumer(t *testing.T) {
	hub := NewHub()
	slow := NewSession(1, "slow", 10)
	hub.Join(10, slow)

	// Never drained: overflow the buffer and one more to trip eviction.
	for i := 0; i < cap(slow.Send)+1; i++ {
		hub.Publish(10, NewMessageReadFrame(uint(i + 1)))
	}

	select {
	case <-slow.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("slow consumer was never evicted")
	}

	// The hub must keep serving the room after the eviction. The fresh
	// session may still catch stragglers from the overflow batch, so
	// drain until the marker frame arrives.
	fresh := NewSession(2, "fresh", 10)
	hub.Join(10, fresh)
	hub.Publish(10, NewMessageReadFrame(999))

	deadline := time.After(2 * time.Second)
	for {
		select {
		case f := <-fresh.Send:
			if f.MessageID == 999 {
				return
			}
		case <-deadline:
			t.Fatal("room stopped delivering after evicting a slow consumer")
		}
	}
}

func TestHubConcurrentAccess(t *testing.T) {
	hub := NewHub()
	var wg sync.WaitGroup
	for r := uint(1); r <= 4; r++ {
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func(roomID uint, n int) {
				defer wg.Done()
				s := NewSession(uint(n), fmt.Sprintf("u%d", n), roomID)
				hub.Join(roomID, s)
				hub.Publish(roomID, NewErrorFrame("ping"))
				hub.Leave(roomID, s)
			}(r, i)
		}
	}
	wg.Wait()
}
