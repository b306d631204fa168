package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ConstantineIIII/WhatsappClone/pkg/domain"
)

// Sentinel errors shared by all Store implementations.
var (
	ErrDuplicateEmail    = errors.New("email already registered")
	ErrDuplicateUsername = errors.New("username already taken")
	ErrAlreadyMember     = errors.New("user is already a participant")
)

// ListUsersQuery filters and orders the admin user listing.
type ListUsersQuery struct {
	Page   int
	Limit  int
	Search string
	SortBy string
	Order  string
}

// MessagePage selects a slice of a chat feed.
type MessagePage struct {
	Page   int
	Limit  int
	Before *time.Time
}

// Store is the persistence interface for the messaging backend.
type Store interface {
	// Users
	CreateUser(ctx context.Context, u domain.User) error
	GetUser(ctx context.Context, id string) (domain.User, bool, error)
	GetUserByEmail(ctx context.Context, email string) (domain.User, bool, error)
	GetUserByUsername(ctx context.Context, username string) (domain.User, bool, error)
	UpdateUserFields(ctx context.Context, id string, fields map[string]any) error
	SetUserPresence(ctx context.Context, id string, online bool, lastSeen time.Time) error
	DeleteUser(ctx context.Context, id string) error
	// SetUserBan flips the ban flag and, when banning, deactivates all
	// active sessions in the same transaction. Returns the sessions it
	// deactivated so callers can revoke the corresponding tokens.
	SetUserBan(ctx context.Context, id string, banned bool, reason string) ([]domain.Session, error)

	// Chats
	CreateChat(ctx context.Context, chat domain.Chat, participants []domain.Participant, pairKey string) (domain.Chat, bool, error)
	GetChat(ctx context.Context, id string) (domain.Chat, bool, error)
	ListChats(ctx context.Context, userID string, page, limit int) ([]domain.ChatSummary, int64, error)
	UpdateChatFields(ctx context.Context, chatID string, fields map[string]any) error
	TouchChat(ctx context.Context, chatID string, at time.Time) error
	DeleteChat(ctx context.Context, chatID string) error
	GetMembership(ctx context.Context, chatID, userID string) (domain.Participant, bool, error)
	ListParticipants(ctx context.Context, chatID string) ([]domain.Participant, error)
	AddParticipant(ctx context.Context, p domain.Participant) error
	RemoveParticipant(ctx context.Context, chatID, userID string) error
	CountChatAdmins(ctx context.Context, chatID string) (int64, error)
	CountParticipants(ctx context.Context, chatID string) (int64, error)

	// Messages
	CreateMessage(ctx context.Context, msg domain.Message) error
	GetMessage(ctx context.Context, id string) (domain.Message, bool, error)
	ListMessages(ctx context.Context, chatID, viewerID string, page MessagePage) ([]domain.Message, error)
	UpdateMessageContent(ctx context.Context, id, content string) error
	DeleteMessage(ctx context.Context, id string) error
	MarkMessagesRead(ctx context.Context, userID string, messageIDs []string) error
	MessageStatuses(ctx context.Context, messageID string) ([]domain.MessageStatus, error)
	SearchMessages(ctx context.Context, userID, query, chatID string, limit int) ([]domain.Message, error)

	// Sessions
	CreateSession(ctx context.Context, s domain.Session) error
	DeactivateSession(ctx context.Context, tokenID string) error
	ListSessions(ctx context.Context, userID string, page, limit int) ([]domain.Session, int64, error)

	// Admin aggregates
	ListUsers(ctx context.Context, q ListUsersQuery) ([]domain.User, int64, error)
	CountUsers(ctx context.Context) (int64, error)
	CountActiveUsers(ctx context.Context, since time.Time) (int64, error)
	CountBannedUsers(ctx context.Context) (int64, error)
	CountAdminUsers(ctx context.Context) (int64, error)
	CountUsersSince(ctx context.Context, since time.Time) (int64, error)
	CountChats(ctx context.Context) (int64, error)
	CountGroupChats(ctx context.Context) (int64, error)
	CountMessages(ctx context.Context) (int64, error)
	CountMessagesSince(ctx context.Context, since time.Time) (int64, error)
	CountUserChats(ctx context.Context, userID string) (int64, error)
	CountUserMessages(ctx context.Context, userID string) (int64, error)
	CountUserSessions(ctx context.Context, userID string) (int64, error)
	RecentUserMessages(ctx context.Context, userID string, limit int) ([]domain.Message, error)
	UserGrowth(ctx context.Context, days int) ([]domain.GrowthPoint, error)
	RecentUsers(ctx context.Context, limit int) ([]domain.User, error)
	TopSenders(ctx context.Context, limit int) ([]domain.TopSender, error)

	Ping(ctx context.Context) error
	Close() error
}

// PairKey normalizes an unordered user pair into the unique key stored
// on non-group chats.
func PairKey(a, b string) string {
	if strings.Compare(a, b) > 0 {
		a, b = b, a
	}
	return a + ":" + b
}
