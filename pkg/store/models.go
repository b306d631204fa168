package store

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"

	"github.com/ConstantineIIII/WhatsappClone/pkg/domain"
)

// UserModel is the GORM mapping for users.
type UserModel struct {
	ID                string `gorm:"primaryKey;size:64"`
	Username          string `gorm:"size:30;uniqueIndex;not null"`
	Email             string `gorm:"size:255;uniqueIndex;not null"`
	FullName          string `gorm:"size:100;not null"`
	Bio               string `gorm:"size:500"`
	PhoneNumber       string `gorm:"size:32"`
	StatusMessage     string `gorm:"size:255"`
	ProfilePictureKey string `gorm:"size:255"`
	PasswordHash      string `gorm:"size:255;not null"`
	IsAdmin           bool   `gorm:"not null;default:false"`
	IsBanned          bool   `gorm:"not null;default:false;index"`
	BanReason         string `gorm:"size:500"`
	IsOnline          bool   `gorm:"not null;default:false"`
	LastSeen          *time.Time
	CreatedAt         time.Time `gorm:"index"`
	UpdatedAt         time.Time
}

func (UserModel) TableName() string { return "users" }

// ChatModel is the GORM mapping for chats. PairKey is the normalized
// "min:max" participant pair for non-group chats; the unique index is
// what makes duplicate 1:1 creation race-safe.
type ChatModel struct {
	ID        string  `gorm:"primaryKey;size:64"`
	Name      string  `gorm:"size:100"`
	IsGroup   bool    `gorm:"not null;default:false"`
	PairKey   *string `gorm:"size:130;uniqueIndex"`
	CreatedBy string  `gorm:"size:64;index;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time `gorm:"index"`
}

func (ChatModel) TableName() string { return "chats" }

// ParticipantModel is the GORM mapping for chat memberships.
type ParticipantModel struct {
	ChatID   string    `gorm:"primaryKey;size:64"`
	UserID   string    `gorm:"primaryKey;size:64;index"`
	IsAdmin  bool      `gorm:"not null;default:false"`
	JoinedAt time.Time `gorm:"not null"`
}

func (ParticipantModel) TableName() string { return "chat_participants" }

// MessageModel is the GORM mapping for messages.
type MessageModel struct {
	ID        string `gorm:"primaryKey;size:64"`
	ChatID    string `gorm:"size:64;index:idx_messages_chat_created,priority:1;not null"`
	SenderID  string `gorm:"size:64;index;not null"`
	Content   string `gorm:"type:text;not null"`
	Type      string `gorm:"size:16;not null;default:text"`
	MediaURL  string `gorm:"size:512"`
	MediaMeta datatypes.JSON
	ReplyToID *string `gorm:"size:64"`
	IsEdited  bool    `gorm:"not null;default:false"`
	CreatedAt time.Time `gorm:"index:idx_messages_chat_created,priority:2"`
	UpdatedAt time.Time
}

func (MessageModel) TableName() string { return "messages" }

// MessageStatusModel is the GORM mapping for per-recipient markers.
type MessageStatusModel struct {
	MessageID string `gorm:"primaryKey;size:64"`
	UserID    string `gorm:"primaryKey;size:64;index"`
	Status    string `gorm:"size:16;not null"`
	UpdatedAt time.Time
}

func (MessageStatusModel) TableName() string { return "message_statuses" }

// SessionModel is the GORM mapping for issued-token records.
type SessionModel struct {
	ID         string `gorm:"primaryKey;size:64"`
	UserID     string `gorm:"size:64;index;not null"`
	TokenID    string `gorm:"size:64;uniqueIndex;not null"`
	DeviceInfo string `gorm:"size:512"`
	IPAddress  string `gorm:"size:64"`
	IsActive   bool   `gorm:"not null;default:true;index"`
	CreatedAt  time.Time `gorm:"index"`
	ExpiresAt  time.Time
}

func (SessionModel) TableName() string { return "user_sessions" }

func userToDomain(m UserModel) domain.User {
	return domain.User{
		ID:                m.ID,
		Username:          m.Username,
		Email:             m.Email,
		FullName:          m.FullName,
		Bio:               m.Bio,
		PhoneNumber:       m.PhoneNumber,
		StatusMessage:     m.StatusMessage,
		ProfilePictureURL: m.ProfilePictureKey,
		PasswordHash:      m.PasswordHash,
		IsAdmin:           m.IsAdmin,
		IsBanned:          m.IsBanned,
		BanReason:         m.BanReason,
		IsOnline:          m.IsOnline,
		LastSeen:          m.LastSeen,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}

func userFromDomain(u domain.User) UserModel {
	return UserModel{
		ID:                u.ID,
		Username:          u.Username,
		Email:             u.Email,
		FullName:          u.FullName,
		Bio:               u.Bio,
		PhoneNumber:       u.PhoneNumber,
		StatusMessage:     u.StatusMessage,
		ProfilePictureKey: u.ProfilePictureURL,
		PasswordHash:      u.PasswordHash,
		IsAdmin:           u.IsAdmin,
		IsBanned:          u.IsBanned,
		BanReason:         u.BanReason,
		IsOnline:          u.IsOnline,
		LastSeen:          u.LastSeen,
		CreatedAt:         u.CreatedAt,
		UpdatedAt:         u.UpdatedAt,
	}
}

func chatToDomain(m ChatModel) domain.Chat {
	return domain.Chat{
		ID:        m.ID,
		Name:      m.Name,
		IsGroup:   m.IsGroup,
		CreatedBy: m.CreatedBy,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func messageToDomain(m MessageModel) domain.Message {
	out := domain.Message{
		ID:        m.ID,
		ChatID:    m.ChatID,
		SenderID:  m.SenderID,
		Content:   m.Content,
		Type:      domain.MessageType(m.Type),
		MediaURL:  m.MediaURL,
		IsEdited:  m.IsEdited,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
	if m.ReplyToID != nil {
		out.ReplyToID = *m.ReplyToID
	}
	if len(m.MediaMeta) > 0 {
		meta := map[string]string{}
		if err := json.Unmarshal(m.MediaMeta, &meta); err == nil {
			out.MediaMeta = meta
		}
	}
	return out
}

func messageFromDomain(msg domain.Message) MessageModel {
	m := MessageModel{
		ID:        msg.ID,
		ChatID:    msg.ChatID,
		SenderID:  msg.SenderID,
		Content:   msg.Content,
		Type:      string(msg.Type),
		MediaURL:  msg.MediaURL,
		IsEdited:  msg.IsEdited,
		CreatedAt: msg.CreatedAt,
		UpdatedAt: msg.UpdatedAt,
	}
	if msg.ReplyToID != "" {
		m.ReplyToID = &msg.ReplyToID
	}
	if len(msg.MediaMeta) > 0 {
		if raw, err := json.Marshal(msg.MediaMeta); err == nil {
			m.MediaMeta = datatypes.JSON(raw)
		}
	}
	return m
}

func sessionToDomain(m SessionModel) domain.Session {
	return domain.Session{
		ID:         m.ID,
		UserID:     m.UserID,
		TokenID:    m.TokenID,
		DeviceInfo: m.DeviceInfo,
		IPAddress:  m.IPAddress,
		IsActive:   m.IsActive,
		CreatedAt:  m.CreatedAt,
		ExpiresAt:  m.ExpiresAt,
	}
}
