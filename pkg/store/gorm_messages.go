package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ConstantineIIII/WhatsappClone/pkg/domain"
)

type messageRow struct {
	MessageModel
	SenderUsername    string
	SenderName        string
	ProfilePictureKey string
	ViewerStatus      *string
}

func (r messageRow) toDomain() domain.Message {
	msg := messageToDomain(r.MessageModel)
	msg.SenderUsername = r.SenderUsername
	msg.SenderName = r.SenderName
	msg.SenderAvatar = r.ProfilePictureKey
	if r.ViewerStatus != nil {
		msg.ViewerStatus = *r.ViewerStatus
	}
	return msg
}

func (s *GormStore) CreateMessage(ctx context.Context, msg domain.Message) error {
	m := messageFromDomain(msg)
	now := time.Now().UTC()
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
		m.UpdatedAt = now
	}
	return s.db.WithContext(ctx).Create(&m).Error
}

func (s *GormStore) GetMessage(ctx context.Context, id string) (domain.Message, bool, error) {
	var m MessageModel
	err := s.db.WithContext(ctx).First(&m, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Message{}, false, nil
	}
	if err != nil {
		return domain.Message{}, false, err
	}
	return messageToDomain(m), true, nil
}

// ListMessages fetches a feed page newest-first, then reverses it so
// the response reads chronologically. Sender fields and the viewer's
// read state come along in one query.
func (s *GormStore) ListMessages(ctx context.Context, chatID, viewerID string, page MessagePage) ([]domain.Message, error) {
	p, limit := normalizePage(page.Page, page.Limit)
	q := s.db.WithContext(ctx).
		Table("messages").
		Select(`messages.*,
		        users.username AS sender_username,
		        users.full_name AS sender_name,
		        users.profile_picture_key,
		        ms.status AS viewer_status`).
		Joins("JOIN users ON users.id = messages.sender_id").
		Joins("LEFT JOIN message_statuses ms ON ms.message_id = messages.id AND ms.user_id = ?", viewerID).
		Where("messages.chat_id = ?", chatID)
	if page.Before != nil {
		q = q.Where("messages.created_at < ?", *page.Before)
	}

	var rows []messageRow
	if err := q.Order("messages.created_at DESC").
		Offset((p - 1) * limit).
		Limit(limit).
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]domain.Message, len(rows))
	for i, r := range rows {
		out[len(rows)-1-i] = r.toDomain()
	}
	return out, nil
}

func (s *GormStore) UpdateMessageContent(ctx context.Context, id, content string) error {
	return s.db.WithContext(ctx).
		Model(&MessageModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"content":    content,
			"is_edited":  true,
			"updated_at": time.Now().UTC(),
		}).Error
}

func (s *GormStore) DeleteMessage(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("message_id = ?", id).Delete(&MessageStatusModel{}).Error; err != nil {
			return err
		}
		return tx.Delete(&MessageModel{}, "id = ?", id).Error
	})
}

// MarkMessagesRead upserts a read marker per message for the user.
func (s *GormStore) MarkMessagesRead(ctx context.Context, userID string, messageIDs []string) error {
	if len(messageIDs) == 0 {
		return nil
	}
	now := time.Now().UTC()
	rows := make([]MessageStatusModel, 0, len(messageIDs))
	for _, id := range messageIDs {
		rows = append(rows, MessageStatusModel{
			MessageID: id,
			UserID:    userID,
			Status:    domain.StatusRead,
			UpdatedAt: now,
		})
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "message_id"}, {Name: "user_id"}},
			DoUpdates: clause.Assignments(map[string]any{"status": domain.StatusRead, "updated_at": now}),
		}).
		Create(&rows).Error
}

func (s *GormStore) MessageStatuses(ctx context.Context, messageID string) ([]domain.MessageStatus, error) {
	var rows []struct {
		MessageStatusModel
		Username string
		FullName string
	}
	err := s.db.WithContext(ctx).
		Table("message_statuses").
		Select("message_statuses.*, users.username, users.full_name").
		Joins("JOIN users ON users.id = message_statuses.user_id").
		Where("message_statuses.message_id = ?", messageID).
		Order("message_statuses.updated_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]domain.MessageStatus, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.MessageStatus{
			MessageID: r.MessageID,
			UserID:    r.UserID,
			Status:    r.Status,
			UpdatedAt: r.UpdatedAt,
			Username:  r.Username,
			FullName:  r.FullName,
		})
	}
	return out, nil
}

// SearchMessages matches message content case-insensitively across the
// user's chats, newest first. An optional chat filter narrows the scope.
func (s *GormStore) SearchMessages(ctx context.Context, userID, query, chatID string, limit int) ([]domain.Message, error) {
	if limit < 1 || limit > 100 {
		limit = 50
	}
	q := s.db.WithContext(ctx).
		Table("messages").
		Select(`messages.*,
		        users.username AS sender_username,
		        users.full_name AS sender_name,
		        users.profile_picture_key`).
		Joins("JOIN users ON users.id = messages.sender_id").
		Joins("JOIN chat_participants cp ON cp.chat_id = messages.chat_id AND cp.user_id = ?", userID).
		Where("messages.content ILIKE ?", "%"+query+"%")
	if chatID != "" {
		q = q.Where("messages.chat_id = ?", chatID)
	}

	var rows []messageRow
	if err := q.Order("messages.created_at DESC").Limit(limit).Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Message, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out, nil
}
