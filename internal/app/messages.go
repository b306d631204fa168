package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ConstantineIIII/WhatsappClone/internal/util"
	"github.com/ConstantineIIII/WhatsappClone/pkg/cache"
	"github.com/ConstantineIIII/WhatsappClone/pkg/domain"
	"github.com/ConstantineIIII/WhatsappClone/pkg/store"
)

const (
	maxContentLength = 5000
	editWindow       = 15 * time.Minute
	deleteWindow     = 60 * time.Minute
)

// SendMessageInput is the send payload.
type SendMessageInput struct {
	ChatID    string
	Content   string
	Type      domain.MessageType
	MediaURL  string
	MediaMeta map[string]string
	ReplyToID string
}

// FeedQuery selects a page of a chat feed.
type FeedQuery struct {
	Page   int
	Limit  int
	Before *time.Time
}

// SendMessage validates and stores a message, bumps the chat's
// activity, and seeds the cache.
func (a *App) SendMessage(ctx context.Context, senderID string, in SendMessageInput) (domain.Message, error) {
	if _, _, err := a.requireMembership(ctx, in.ChatID, senderID); err != nil {
		return domain.Message{}, err
	}

	if in.Type == "" {
		in.Type = domain.MessageText
	}
	if !domain.ValidMessageType(in.Type) {
		return domain.Message{}, BadRequest("invalid message type")
	}
	in.Content = strings.TrimSpace(in.Content)
	if len(in.Content) > maxContentLength {
		return domain.Message{}, BadRequest("message content exceeds 5000 characters")
	}
	if in.Content == "" && in.MediaURL == "" {
		return domain.Message{}, BadRequest("message requires content or media")
	}
	if in.Type != domain.MessageText && in.MediaURL == "" {
		return domain.Message{}, BadRequest("media messages require a media url")
	}

	if in.ReplyToID != "" {
		parent, ok, err := a.Store.GetMessage(ctx, in.ReplyToID)
		if err != nil {
			return domain.Message{}, fmt.Errorf("lookup reply target: %w", err)
		}
		if !ok || parent.ChatID != in.ChatID {
			return domain.Message{}, BadRequest("reply target not found in this chat")
		}
	}

	now := a.now()
	msg := domain.Message{
		ID:        util.NewID(),
		ChatID:    in.ChatID,
		SenderID:  senderID,
		Content:   in.Content,
		Type:      in.Type,
		MediaURL:  in.MediaURL,
		MediaMeta: in.MediaMeta,
		ReplyToID: in.ReplyToID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := a.Store.CreateMessage(ctx, msg); err != nil {
		return domain.Message{}, fmt.Errorf("create message: %w", err)
	}
	if err := a.Store.TouchChat(ctx, in.ChatID, now); err != nil {
		return domain.Message{}, fmt.Errorf("touch chat: %w", err)
	}

	if sender, ok, err := a.Store.GetUser(ctx, senderID); err == nil && ok {
		msg.SenderUsername = sender.Username
		msg.SenderName = sender.FullName
		msg.SenderAvatar = sender.ProfilePictureURL
	}
	if err := a.Cache.SetMessage(ctx, msg); err != nil {
		a.Log.Warn("message cache write failed", "error", err, "message_id", msg.ID)
	}
	return msg, nil
}

// Feed returns a chronological page of a chat and marks the returned
// messages read for the viewer.
func (a *App) Feed(ctx context.Context, userID, chatID string, q FeedQuery) ([]domain.Message, error) {
	if _, _, err := a.requireMembership(ctx, chatID, userID); err != nil {
		return nil, err
	}
	msgs, err := a.Store.ListMessages(ctx, chatID, userID, store.MessagePage{
		Page:   q.Page,
		Limit:  q.Limit,
		Before: q.Before,
	})
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	var toMark []string
	for i, m := range msgs {
		if m.SenderID != userID && m.ViewerStatus != domain.StatusRead {
			toMark = append(toMark, m.ID)
			msgs[i].ViewerStatus = domain.StatusRead
		}
	}
	if len(toMark) > 0 {
		if err := a.Store.MarkMessagesRead(ctx, userID, toMark); err != nil {
			return nil, fmt.Errorf("mark messages read: %w", err)
		}
	}
	return msgs, nil
}

// EditMessage updates content. Sender-only, within the edit window.
func (a *App) EditMessage(ctx context.Context, userID, messageID, content string) (domain.Message, error) {
	msg, err := a.getMessage(ctx, messageID)
	if err != nil {
		return domain.Message{}, err
	}
	if msg.SenderID != userID {
		return domain.Message{}, Forbidden("only the sender can edit a message")
	}
	if a.now().Sub(msg.CreatedAt) > editWindow {
		return domain.Message{}, BadRequest("messages can only be edited within 15 minutes")
	}
	content = strings.TrimSpace(content)
	if content == "" || len(content) > maxContentLength {
		return domain.Message{}, BadRequest("message content must be 1-5000 characters")
	}

	if err := a.Store.UpdateMessageContent(ctx, messageID, content); err != nil {
		return domain.Message{}, fmt.Errorf("update message: %w", err)
	}
	msg.Content = content
	msg.IsEdited = true
	msg.UpdatedAt = a.now()
	if err := a.Cache.SetMessage(ctx, msg); err != nil {
		a.Log.Warn("message cache write failed", "error", err, "message_id", messageID)
	}
	return msg, nil
}

// DeleteMessage removes a message. The sender may delete within the
// delete window; chat admins and the chat creator may delete anytime.
func (a *App) DeleteMessage(ctx context.Context, userID, messageID string) error {
	msg, err := a.getMessage(ctx, messageID)
	if err != nil {
		return err
	}
	chat, membership, err := a.requireMembership(ctx, msg.ChatID, userID)
	if err != nil {
		return err
	}

	privileged := membership.IsAdmin || chat.CreatedBy == userID
	switch {
	case privileged:
	case msg.SenderID != userID:
		return Forbidden("only the sender or a chat admin can delete a message")
	case a.now().Sub(msg.CreatedAt) > deleteWindow:
		return BadRequest("messages can only be deleted within 60 minutes")
	}

	if err := a.Store.DeleteMessage(ctx, messageID); err != nil {
		return fmt.Errorf("delete message: %w", err)
	}
	if err := a.Cache.DeleteMessage(ctx, messageID); err != nil {
		a.Log.Warn("message cache delete failed", "error", err, "message_id", messageID)
	}
	return nil
}

// MessageStatusList returns per-recipient markers. Member-only.
func (a *App) MessageStatusList(ctx context.Context, userID, messageID string) ([]domain.MessageStatus, error) {
	msg, err := a.getMessage(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if _, _, err := a.requireMembership(ctx, msg.ChatID, userID); err != nil {
		return nil, err
	}
	return a.Store.MessageStatuses(ctx, messageID)
}

// MarkRead records a read marker for one message.
func (a *App) MarkRead(ctx context.Context, userID, messageID string) error {
	msg, err := a.getMessage(ctx, messageID)
	if err != nil {
		return err
	}
	if _, _, err := a.requireMembership(ctx, msg.ChatID, userID); err != nil {
		return err
	}
	if msg.SenderID == userID {
		return nil
	}
	if err := a.Store.MarkMessagesRead(ctx, userID, []string{messageID}); err != nil {
		return fmt.Errorf("mark read: %w", err)
	}
	return nil
}

// SearchMessages matches content across the caller's chats.
func (a *App) SearchMessages(ctx context.Context, userID, query, chatID string, limit int) ([]domain.Message, error) {
	query = strings.TrimSpace(query)
	if len(query) < 2 {
		return nil, BadRequest("search query must be at least 2 characters")
	}
	if chatID != "" {
		if _, _, err := a.requireMembership(ctx, chatID, userID); err != nil {
			return nil, err
		}
	}
	msgs, err := a.Store.SearchMessages(ctx, userID, query, chatID, limit)
	if err != nil {
		return nil, fmt.Errorf("search messages: %w", err)
	}
	return msgs, nil
}

// getMessage reads through the cache, falling back to the store.
func (a *App) getMessage(ctx context.Context, id string) (domain.Message, error) {
	if msg, err := a.Cache.GetMessage(ctx, id); err == nil {
		return msg, nil
	} else if err != cache.ErrMiss {
		a.Log.Warn("message cache read failed", "error", err, "message_id", id)
	}
	msg, ok, err := a.Store.GetMessage(ctx, id)
	if err != nil {
		return domain.Message{}, fmt.Errorf("lookup message: %w", err)
	}
	if !ok {
		return domain.Message{}, NotFound("message not found")
	}
	return msg, nil
}
