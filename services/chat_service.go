package services

import (
	"errors"
	"time"

	"github.com/Piero-design/VETAQP/models"
	"gorm.io/gorm"
)

var (
	ErrRoomNotFound    = errors.New("chat room not found")
	ErrAccessDenied    = errors.New("access denied")
	ErrNotVeterinarian = errors.New("selected user is not a veterinarian")
)

// ChatService covers the REST side of the chat: room management, history
// and unread bookkeeping. The live protocol lives in the chat package.
type ChatService struct {
	db *gorm.DB
}

func NewChatService(db *gorm.DB) *ChatService {
	return &ChatService{db: db}
}

// RoomSummary is one inbox row.
type RoomSummary struct {
	models.ChatRoom
	UserUsername         string     `json:"user_username"`
	VeterinarianUsername string     `json:"veterinarian_username"`
	VeterinarianName     string     `json:"veterinarian_name"`
	LastMessageText      string     `json:"last_message_text,omitempty"`
	LastMessageTime      *time.Time `json:"last_message_time,omitempty"`
	UnreadCount          int64      `json:"unread_count"`
}

// MessageView is a message joined with its sender's names.
type MessageView struct {
	models.ChatMessage
	SenderUsername string `json:"sender_username"`
	SenderName     string `json:"sender_name"`
}

// CreateRoom opens (or reopens) the single room between a client and a
// veterinarian. Two simultaneous creates for the same pair race on the
// unique index; the loser gets the winner's row back instead of an error.
func (s *ChatService) CreateRoom(user *models.User, veterinarianID uint) (*models.ChatRoom, error) {
	var vet models.User
	if err := s.db.First(&vet, veterinarianID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotVeterinarian
		}
		return nil, err
	}
	if !vet.IsStaff {
		return nil, ErrNotVeterinarian
	}

	var existing models.ChatRoom
	err := s.db.Where("user_id = ? AND veterinarian_id = ?", user.ID, veterinarianID).
		First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	room := models.ChatRoom{
		UserID:         user.ID,
		VeterinarianID: veterinarianID,
		IsActive:       true,
	}
	if err := s.db.Create(&room).Error; err != nil {
		// Lost the race on the unique pair index.
		if lookupErr := s.db.Where("user_id = ? AND veterinarian_id = ?", user.ID, veterinarianID).
			First(&existing).Error; lookupErr == nil {
			return &existing, nil
		}
		return nil, err
	}
	return &room, nil
}

// ListRooms returns the caller's inbox, newest activity first. Staff see
// the rooms where they are the veterinarian.
func (s *ChatService) ListRooms(user *models.User) ([]RoomSummary, error) {
	var rooms []models.ChatRoom
	query := s.db.Order("updated_at DESC")
	if user.IsStaff {
		query = query.Where("veterinarian_id = ?", user.ID)
	} else {
		query = query.Where("user_id = ?", user.ID)
	}
	if err := query.Find(&rooms).Error; err != nil {
		return nil, err
	}

	summaries := make([]RoomSummary, 0, len(rooms))
	for _, room := range rooms {
		summary := RoomSummary{ChatRoom: room}

		var names struct {
			UserUsername string
			VetUsername  string
			VetFirst     string
			VetLast      string
		}
		err := s.db.Table("chat_rooms").
			Select("cu.username AS user_username, vu.username AS vet_username, vu.first_name AS vet_first, vu.last_name AS vet_last").
			Joins("JOIN users cu ON cu.id = chat_rooms.user_id").
			Joins("JOIN users vu ON vu.id = chat_rooms.veterinarian_id").
			Where("chat_rooms.id = ?", room.ID).
			Scan(&names).Error
		if err == nil {
			summary.UserUsername = names.UserUsername
			summary.VeterinarianUsername = names.VetUsername
			vet := models.User{Username: names.VetUsername, FirstName: names.VetFirst, LastName: names.VetLast}
			summary.VeterinarianName = vet.DisplayName()
		}

		var last models.ChatMessage
		if err := s.db.Where("room_id = ?", room.ID).
			Order("timestamp DESC").First(&last).Error; err == nil {
			text := last.Message
			if len(text) > 50 {
				text = text[:50] + "..."
			}
			summary.LastMessageText = text
			ts := last.Timestamp
			summary.LastMessageTime = &ts
		}

		s.db.Model(&models.ChatMessage{}).
			Where("room_id = ? AND is_read = ? AND sender_id <> ?", room.ID, false, user.ID).
			Count(&summary.UnreadCount)

		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// GetRoom loads a room the caller participates in.
func (s *ChatService) GetRoom(roomID uint, user *models.User) (*models.ChatRoom, error) {
	var room models.ChatRoom
	if err := s.db.First(&room, roomID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	if !room.IsParticipant(user.ID) {
		return nil, ErrAccessDenied
	}
	return &room, nil
}

// SetActive flips the room's active flag; rooms are closed, never deleted.
func (s *ChatService) SetActive(roomID uint, user *models.User, active bool) (*models.ChatRoom, error) {
	room, err := s.GetRoom(roomID, user)
	if err != nil {
		return nil, err
	}
	room.IsActive = active
	if err := s.db.Model(room).Update("is_active", active).Error; err != nil {
		return nil, err
	}
	return room, nil
}

// ListMessages returns the room's full history in timestamp order.
func (s *ChatService) ListMessages(roomID uint, user *models.User) ([]MessageView, error) {
	if _, err := s.GetRoom(roomID, user); err != nil {
		return nil, err
	}

	var messages []MessageView
	err := s.db.Table("chat_messages").
		Select("chat_messages.*, users.username AS sender_username, TRIM(CONCAT(users.first_name, ' ', users.last_name)) AS sender_name").
		Joins("LEFT JOIN users ON users.id = chat_messages.sender_id").
		Where("chat_messages.room_id = ?", roomID).
		Order("chat_messages.timestamp ASC").
		Scan(&messages).Error
	if err != nil {
		return nil, err
	}
	for i := range messages {
		if messages[i].SenderName == "" {
			messages[i].SenderName = messages[i].SenderUsername
		}
	}
	return messages, nil
}

// MarkAllRead flips everything the counterpart sent and reports the count.
func (s *ChatService) MarkAllRead(roomID uint, user *models.User) (int64, error) {
	if _, err := s.GetRoom(roomID, user); err != nil {
		return 0, err
	}
	res := s.db.Model(&models.ChatMessage{}).
		Where("room_id = ? AND is_read = ? AND sender_id <> ?", roomID, false, user.ID).
		Update("is_read", true)
	return res.RowsAffected, res.Error
}

// TotalUnread counts unread counterpart messages across the caller's
// active rooms.
func (s *ChatService) TotalUnread(user *models.User) (int64, error) {
	participantColumn := "chat_rooms.user_id"
	if user.IsStaff {
		participantColumn = "chat_rooms.veterinarian_id"
	}

	var count int64
	err := s.db.Table("chat_messages").
		Joins("JOIN chat_rooms ON chat_rooms.id = chat_messages.room_id").
		Where(participantColumn+" = ? AND chat_rooms.is_active = ?", user.ID, true).
		Where("chat_messages.is_read = ? AND chat_messages.sender_id <> ?", false, user.ID).
		Count(&count).Error
	return count, err
}

// ListVeterinarians lists the staff users a client can open a room with.
func (s *ChatService) ListVeterinarians() ([]models.User, error) {
	var vets []models.User
	err := s.db.Where("is_staff = ? AND is_active = ?", true, true).Find(&vets).Error
	return vets, err
}
