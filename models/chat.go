package models

import "time"

// ChatRoom is a 1:1 conversation between a client and a veterinarian.
// Closing a room flips IsActive; rooms are never deleted.
type ChatRoom struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	UserID         uint      `json:"user_id" gorm:"uniqueIndex:idx_room_pair"`
	VeterinarianID uint      `json:"veterinarian_id" gorm:"uniqueIndex:idx_room_pair"`
	IsActive       bool      `json:"is_active" gorm:"default:true"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	User         User `json:"-" gorm:"foreignKey:UserID"`
	Veterinarian User `json:"-" gorm:"foreignKey:VeterinarianID"`
}

// IsParticipant reports whether userID is one of the room's two principals.
func (r *ChatRoom) IsParticipant(userID uint) bool {
	return r.UserID == userID || r.VeterinarianID == userID
}

type ChatMessage struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	RoomID    uint      `json:"room_id" gorm:"index:idx_msg_room_ts"`
	SenderID  uint      `json:"sender_id"`
	Message   string    `json:"message" gorm:"type:text"`
	IsRead    bool      `json:"is_read" gorm:"default:false"`
	Timestamp time.Time `json:"timestamp" gorm:"autoCreateTime;index:idx_msg_room_ts"`

	Sender User `json:"-" gorm:"foreignKey:SenderID"`
}
