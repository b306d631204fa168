package domain

import "time"

// MessageType enumerates supported message payload kinds.
type MessageType string

const (
	MessageText  MessageType = "text"
	MessageImage MessageType = "image"
	MessageVideo MessageType = "video"
	MessageAudio MessageType = "audio"
	MessageFile  MessageType = "file"
)

// ValidMessageType reports whether t is a known message type.
func ValidMessageType(t MessageType) bool {
	switch t {
	case MessageText, MessageImage, MessageVideo, MessageAudio, MessageFile:
		return true
	}
	return false
}

// Per-recipient delivery markers.
const (
	StatusDelivered = "delivered"
	StatusRead      = "read"
)

// User is an account in the messaging system.
type User struct {
	ID                string     `json:"id"`
	Username          string     `json:"username"`
	Email             string     `json:"email"`
	FullName          string     `json:"fullName"`
	Bio               string     `json:"bio,omitempty"`
	PhoneNumber       string     `json:"phoneNumber,omitempty"`
	StatusMessage     string     `json:"statusMessage,omitempty"`
	ProfilePictureURL string     `json:"profilePictureUrl,omitempty"`
	PasswordHash      string     `json:"-"`
	IsAdmin           bool       `json:"isAdmin"`
	IsBanned          bool       `json:"isBanned"`
	BanReason         string     `json:"banReason,omitempty"`
	IsOnline          bool       `json:"isOnline"`
	LastSeen          *time.Time `json:"lastSeen,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

// PublicProfile strips fields not meant for other users.
func (u User) PublicProfile() User {
	return User{
		ID:                u.ID,
		Username:          u.Username,
		FullName:          u.FullName,
		Bio:               u.Bio,
		ProfilePictureURL: u.ProfilePictureURL,
		IsOnline:          u.IsOnline,
		LastSeen:          u.LastSeen,
	}
}

// Chat is a conversation container, either 1:1 or group.
type Chat struct {
	ID        string    `json:"id"`
	Name      string    `json:"name,omitempty"`
	IsGroup   bool      `json:"isGroup"`
	CreatedBy string    `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Participant is a chat membership with an optional per-chat admin role.
type Participant struct {
	ChatID   string    `json:"chatId"`
	UserID   string    `json:"userId"`
	IsAdmin  bool      `json:"isAdmin"`
	JoinedAt time.Time `json:"joinedAt"`

	// Denormalized user fields for listing responses.
	Username          string     `json:"username,omitempty"`
	FullName          string     `json:"fullName,omitempty"`
	ProfilePictureURL string     `json:"profilePictureUrl,omitempty"`
	IsOnline          bool       `json:"isOnline"`
	LastSeen          *time.Time `json:"lastSeen,omitempty"`
}

// ChatSummary is a chat enriched with feed metadata for the sidebar listing.
type ChatSummary struct {
	Chat
	CreatedByName    string        `json:"createdByName,omitempty"`
	ParticipantCount int           `json:"participantCount"`
	Participants     []Participant `json:"participants,omitempty"`
	LastMessage      string        `json:"lastMessage,omitempty"`
	LastMessageTime  *time.Time    `json:"lastMessageTime,omitempty"`
	UnreadCount      int           `json:"unreadCount"`
}

// Message is a single chat message.
type Message struct {
	ID        string            `json:"id"`
	ChatID    string            `json:"chatId"`
	SenderID  string            `json:"senderId"`
	Content   string            `json:"content"`
	Type      MessageType       `json:"messageType"`
	MediaURL  string            `json:"mediaUrl,omitempty"`
	MediaMeta map[string]string `json:"mediaMeta,omitempty"`
	ReplyToID string            `json:"replyToId,omitempty"`
	IsEdited  bool              `json:"isEdited"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`

	// Denormalized sender fields for feed responses.
	SenderUsername string `json:"senderUsername,omitempty"`
	SenderName     string `json:"senderName,omitempty"`
	SenderAvatar   string `json:"senderAvatar,omitempty"`
	// Viewer-specific read state, populated on feed fetches.
	ViewerStatus string `json:"messageStatus,omitempty"`
}

// MessageStatus is the per-recipient delivery/read marker for a message.
type MessageStatus struct {
	MessageID string    `json:"messageId"`
	UserID    string    `json:"userId"`
	Status    string    `json:"status"`
	UpdatedAt time.Time `json:"updatedAt"`
	Username  string    `json:"username,omitempty"`
	FullName  string    `json:"fullName,omitempty"`
}

// Session records an issued bearer token for audit and invalidation.
type Session struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	TokenID    string    `json:"-"`
	DeviceInfo string    `json:"deviceInfo,omitempty"`
	IPAddress  string    `json:"ipAddress,omitempty"`
	IsActive   bool      `json:"isActive"`
	CreatedAt  time.Time `json:"createdAt"`
	ExpiresAt  time.Time `json:"expiresAt"`
}
