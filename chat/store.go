package chat

import (
	"errors"
	"fmt"

	"github.com/Piero-design/VETAQP/models"
	"gorm.io/gorm"
)

var (
	ErrRoomNotFound    = errors.New("chat room not found")
	ErrMessageNotFound = errors.New("chat message not found")
	ErrWrongRoom       = errors.New("message does not belong to this room")
)

// PersistenceError wraps a storage failure so the consumer can answer the
// sender with an error frame instead of silently dropping the operation.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("chat persistence failure during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// RoomStore is the persistence surface the protocol handler needs. The
// production implementation sits on gorm; tests inject a fake.
type RoomStore interface {
	// GetRoom fetches a room by id, ErrRoomNotFound when absent.
	GetRoom(roomID uint) (*models.ChatRoom, error)
	// IsParticipant reports whether userID may act on roomID.
	IsParticipant(roomID, userID uint) (bool, error)
	// CreateMessage persists a new unread message and returns it with its
	// id and timestamp assigned.
	CreateMessage(roomID, senderID uint, body string) (*models.ChatMessage, error)
	// MarkAllRead flips every unread message in the room not sent by
	// excludingSenderID and returns how many rows changed.
	MarkAllRead(roomID, excludingSenderID uint) (int64, error)
	// MarkOneRead flips one message read. It returns true only when the
	// flag actually changed: marking your own message, or one already
	// read, is a no-op. ErrWrongRoom when the message belongs elsewhere.
	MarkOneRead(roomID, messageID, readerID uint) (bool, error)
}

type gormRoomStore struct {
	db *gorm.DB
}

func NewRoomStore(db *gorm.DB) RoomStore {
	return &gormRoomStore{db: db}
}

func (s *gormRoomStore) GetRoom(roomID uint) (*models.ChatRoom, error) {
	var room models.ChatRoom
	if err := s.db.First(&room, roomID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, &PersistenceError{Op: "get room", Err: err}
	}
	return &room, nil
}

func (s *gormRoomStore) IsParticipant(roomID, userID uint) (bool, error) {
	room, err := s.GetRoom(roomID)
	if err != nil {
		if errors.Is(err, ErrRoomNotFound) {
			return false, nil
		}
		return false, err
	}
	return room.IsParticipant(userID), nil
}

func (s *gormRoomStore) CreateMessage(roomID, senderID uint, body string) (*models.ChatMessage, error) {
	msg := models.ChatMessage{
		RoomID:   roomID,
		SenderID: senderID,
		Message:  body,
		IsRead:   false,
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&msg).Error; err != nil {
			return err
		}
		// Bump the room so it sorts to the top of the inbox.
		return tx.Model(&models.ChatRoom{}).Where("id = ?", roomID).
			Update("updated_at", msg.Timestamp).Error
	})
	if err != nil {
		return nil, &PersistenceError{Op: "create message", Err: err}
	}
	return &msg, nil
}

func (s *gormRoomStore) MarkAllRead(roomID, excludingSenderID uint) (int64, error) {
	res := s.db.Model(&models.ChatMessage{}).
		Where("room_id = ? AND is_read = ? AND sender_id <> ?", roomID, false, excludingSenderID).
		Update("is_read", true)
	if res.Error != nil {
		return 0, &PersistenceError{Op: "mark all read", Err: res.Error}
	}
	return res.RowsAffected, nil
}

func (s *gormRoomStore) MarkOneRead(roomID, messageID, readerID uint) (bool, error) {
	var msg models.ChatMessage
	if err := s.db.First(&msg, messageID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, ErrMessageNotFound
		}
		return false, &PersistenceError{Op: "mark one read", Err: err}
	}
	if msg.RoomID != roomID {
		return false, ErrWrongRoom
	}
	if msg.SenderID == readerID || msg.IsRead {
		return false, nil
	}
	// Guarded update: with two concurrent readers only one sees a row
	// change, so the flip broadcasts exactly once.
	res := s.db.Model(&models.ChatMessage{}).
		Where("id = ? AND is_read = ?", messageID, false).
		Update("is_read", true)
	if res.Error != nil {
		return false, &PersistenceError{Op: "mark one read", Err: res.Error}
	}
	return res.RowsAffected > 0, nil
}

