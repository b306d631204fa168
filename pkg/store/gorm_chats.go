package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/ConstantineIIII/WhatsappClone/pkg/domain"
)

// CreateChat inserts the chat and its participants in one transaction.
// For non-group chats the pair key is unique; on conflict the existing
// chat is returned with created=false instead of an error.
func (s *GormStore) CreateChat(ctx context.Context, chat domain.Chat, participants []domain.Participant, pairKey string) (domain.Chat, bool, error) {
	m := ChatModel{
		ID:        chat.ID,
		Name:      chat.Name,
		IsGroup:   chat.IsGroup,
		CreatedBy: chat.CreatedBy,
		CreatedAt: chat.CreatedAt,
		UpdatedAt: chat.UpdatedAt,
	}
	now := time.Now().UTC()
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
		m.UpdatedAt = now
	}
	if !chat.IsGroup && pairKey != "" {
		m.PairKey = &pairKey
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&m).Error; err != nil {
			return err
		}
		for _, p := range participants {
			pm := ParticipantModel{
				ChatID:   m.ID,
				UserID:   p.UserID,
				IsAdmin:  p.IsAdmin,
				JoinedAt: now,
			}
			if err := tx.Create(&pm).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err == nil {
		return chatToDomain(m), true, nil
	}
	if !isUniqueViolation(err) || m.PairKey == nil {
		return domain.Chat{}, false, err
	}
	var existing ChatModel
	if ferr := s.db.WithContext(ctx).First(&existing, "pair_key = ?", pairKey).Error; ferr != nil {
		return domain.Chat{}, false, err
	}
	return chatToDomain(existing), false, nil
}

func (s *GormStore) GetChat(ctx context.Context, id string) (domain.Chat, bool, error) {
	var m ChatModel
	err := s.db.WithContext(ctx).First(&m, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Chat{}, false, nil
	}
	if err != nil {
		return domain.Chat{}, false, err
	}
	return chatToDomain(m), true, nil
}

// ListChats returns the user's chats ordered by last activity, each
// enriched with participants, last message, and unread count.
func (s *GormStore) ListChats(ctx context.Context, userID string, page, limit int) ([]domain.ChatSummary, int64, error) {
	page, limit = normalizePage(page, limit)
	base := s.db.WithContext(ctx).
		Model(&ChatModel{}).
		Joins("JOIN chat_participants cp ON cp.chat_id = chats.id").
		Where("cp.user_id = ?", userID)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var chats []ChatModel
	if err := base.
		Order("chats.updated_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&chats).Error; err != nil {
		return nil, 0, err
	}
	if len(chats) == 0 {
		return []domain.ChatSummary{}, total, nil
	}

	chatIDs := make([]string, 0, len(chats))
	for _, c := range chats {
		chatIDs = append(chatIDs, c.ID)
	}

	participants, err := s.participantsForChats(ctx, chatIDs)
	if err != nil {
		return nil, 0, err
	}
	lastMessages, err := s.lastMessagesForChats(ctx, chatIDs)
	if err != nil {
		return nil, 0, err
	}
	unread, err := s.unreadCountsForChats(ctx, chatIDs, userID)
	if err != nil {
		return nil, 0, err
	}

	out := make([]domain.ChatSummary, 0, len(chats))
	for _, c := range chats {
		summary := domain.ChatSummary{
			Chat:         chatToDomain(c),
			Participants: participants[c.ID],
			UnreadCount:  unread[c.ID],
		}
		summary.ParticipantCount = len(summary.Participants)
		if last, ok := lastMessages[c.ID]; ok {
			summary.LastMessage = last.Content
			t := last.CreatedAt
			summary.LastMessageTime = &t
		}
		out = append(out, summary)
	}
	return out, total, nil
}

func (s *GormStore) participantsForChats(ctx context.Context, chatIDs []string) (map[string][]domain.Participant, error) {
	var rows []struct {
		ParticipantModel
		Username          string
		FullName          string
		ProfilePictureKey string
		IsOnline          bool
		LastSeen          *time.Time
	}
	err := s.db.WithContext(ctx).
		Table("chat_participants").
		Select("chat_participants.*, users.username, users.full_name, users.profile_picture_key, users.is_online, users.last_seen").
		Joins("JOIN users ON users.id = chat_participants.user_id").
		Where("chat_participants.chat_id IN ?", chatIDs).
		Order("chat_participants.joined_at ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string][]domain.Participant, len(chatIDs))
	for _, r := range rows {
		out[r.ChatID] = append(out[r.ChatID], domain.Participant{
			ChatID:            r.ChatID,
			UserID:            r.UserID,
			IsAdmin:           r.ParticipantModel.IsAdmin,
			JoinedAt:          r.JoinedAt,
			Username:          r.Username,
			FullName:          r.FullName,
			ProfilePictureURL: r.ProfilePictureKey,
			IsOnline:          r.IsOnline,
			LastSeen:          r.LastSeen,
		})
	}
	return out, nil
}

func (s *GormStore) lastMessagesForChats(ctx context.Context, chatIDs []string) (map[string]MessageModel, error) {
	var rows []MessageModel
	err := s.db.WithContext(ctx).
		Raw(`SELECT DISTINCT ON (chat_id) *
		     FROM messages
		     WHERE chat_id IN ?
		     ORDER BY chat_id, created_at DESC`, chatIDs).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]MessageModel, len(rows))
	for _, r := range rows {
		out[r.ChatID] = r
	}
	return out, nil
}

// unreadCountsForChats counts messages from other senders that have no
// read marker row for the user.
func (s *GormStore) unreadCountsForChats(ctx context.Context, chatIDs []string, userID string) (map[string]int, error) {
	var rows []struct {
		ChatID string
		Count  int
	}
	err := s.db.WithContext(ctx).
		Raw(`SELECT m.chat_id AS chat_id, COUNT(*) AS count
		     FROM messages m
		     WHERE m.chat_id IN ?
		       AND m.sender_id <> ?
		       AND NOT EXISTS (
		         SELECT 1 FROM message_statuses ms
		         WHERE ms.message_id = m.id AND ms.user_id = ? AND ms.status = ?
		       )
		     GROUP BY m.chat_id`, chatIDs, userID, userID, domain.StatusRead).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]int, len(rows))
	for _, r := range rows {
		out[r.ChatID] = r.Count
	}
	return out, nil
}

func (s *GormStore) UpdateChatFields(ctx context.Context, chatID string, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	fields["updated_at"] = time.Now().UTC()
	return s.db.WithContext(ctx).
		Model(&ChatModel{}).
		Where("id = ?", chatID).
		Updates(fields).Error
}

func (s *GormStore) TouchChat(ctx context.Context, chatID string, at time.Time) error {
	return s.db.WithContext(ctx).
		Model(&ChatModel{}).
		Where("id = ?", chatID).
		Update("updated_at", at).Error
}

// DeleteChat removes the chat and everything hanging off it.
func (s *GormStore) DeleteChat(ctx context.Context, chatID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("message_id IN (?)",
			tx.Model(&MessageModel{}).Select("id").Where("chat_id = ?", chatID),
		).Delete(&MessageStatusModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("chat_id = ?", chatID).Delete(&MessageModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("chat_id = ?", chatID).Delete(&ParticipantModel{}).Error; err != nil {
			return err
		}
		return tx.Delete(&ChatModel{}, "id = ?", chatID).Error
	})
}

func (s *GormStore) GetMembership(ctx context.Context, chatID, userID string) (domain.Participant, bool, error) {
	var m ParticipantModel
	err := s.db.WithContext(ctx).
		First(&m, "chat_id = ? AND user_id = ?", chatID, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Participant{}, false, nil
	}
	if err != nil {
		return domain.Participant{}, false, err
	}
	return domain.Participant{
		ChatID:   m.ChatID,
		UserID:   m.UserID,
		IsAdmin:  m.IsAdmin,
		JoinedAt: m.JoinedAt,
	}, true, nil
}

func (s *GormStore) ListParticipants(ctx context.Context, chatID string) ([]domain.Participant, error) {
	byChat, err := s.participantsForChats(ctx, []string{chatID})
	if err != nil {
		return nil, err
	}
	participants := byChat[chatID]
	if participants == nil {
		participants = []domain.Participant{}
	}
	return participants, nil
}

func (s *GormStore) AddParticipant(ctx context.Context, p domain.Participant) error {
	m := ParticipantModel{
		ChatID:   p.ChatID,
		UserID:   p.UserID,
		IsAdmin:  p.IsAdmin,
		JoinedAt: p.JoinedAt,
	}
	if m.JoinedAt.IsZero() {
		m.JoinedAt = time.Now().UTC()
	}
	if err := s.db.WithContext(ctx).Create(&m).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyMember
		}
		return err
	}
	return nil
}

func (s *GormStore) RemoveParticipant(ctx context.Context, chatID, userID string) error {
	return s.db.WithContext(ctx).
		Where("chat_id = ? AND user_id = ?", chatID, userID).
		Delete(&ParticipantModel{}).Error
}

func (s *GormStore) CountChatAdmins(ctx context.Context, chatID string) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).
		Model(&ParticipantModel{}).
		Where("chat_id = ? AND is_admin = ?", chatID, true).
		Count(&n).Error
	return n, err
}

func (s *GormStore) CountParticipants(ctx context.Context, chatID string) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).
		Model(&ParticipantModel{}).
		Where("chat_id = ?", chatID).
		Count(&n).Error
	return n, err
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique")
}
