package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/ConstantineIIII/WhatsappClone/internal/util"
	"github.com/ConstantineIIII/WhatsappClone/pkg/domain"
	"github.com/ConstantineIIII/WhatsappClone/pkg/store"
)

// CreateChatInput is the chat creation payload.
type CreateChatInput struct {
	Name           string
	IsGroup        bool
	ParticipantIDs []string
}

// CreateChatResult reports the chat and whether it already existed.
// For 1:1 chats the pair key makes creation idempotent: a duplicate
// request gets the existing chat back instead of a second copy.
type CreateChatResult struct {
	Chat    domain.ChatSummary
	Existed bool
}

// ListChats returns the user's chat summaries ordered by last activity.
func (a *App) ListChats(ctx context.Context, userID string, page, limit int) ([]domain.ChatSummary, int64, error) {
	chats, total, err := a.Store.ListChats(ctx, userID, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("list chats: %w", err)
	}
	return chats, total, nil
}

// CreateChat creates a 1:1 or group chat with the creator as a member.
func (a *App) CreateChat(ctx context.Context, creatorID string, in CreateChatInput) (CreateChatResult, error) {
	memberIDs := dedupeIDs(in.ParticipantIDs, creatorID)

	if in.IsGroup {
		in.Name = strings.TrimSpace(in.Name)
		if n := len(in.Name); n < 1 || n > 100 {
			return CreateChatResult{}, BadRequest("group chat requires a name of 1-100 characters")
		}
		if len(memberIDs) < 2 {
			return CreateChatResult{}, BadRequest("group chat requires at least one other participant")
		}
	} else {
		if len(memberIDs) != 2 {
			return CreateChatResult{}, BadRequest("direct chat requires exactly one other participant")
		}
	}

	var otherName string
	for _, id := range memberIDs {
		u, ok, err := a.Store.GetUser(ctx, id)
		if err != nil {
			return CreateChatResult{}, fmt.Errorf("lookup participant: %w", err)
		}
		if !ok {
			return CreateChatResult{}, BadRequest("participant not found: " + id)
		}
		if !in.IsGroup && id != creatorID {
			otherName = u.FullName
		}
	}

	name := in.Name
	pairKey := ""
	if !in.IsGroup {
		if name == "" {
			name = otherName
		}
		pairKey = store.PairKey(memberIDs[0], memberIDs[1])
	}

	now := a.now()
	chat := domain.Chat{
		ID:        util.NewID(),
		Name:      name,
		IsGroup:   in.IsGroup,
		CreatedBy: creatorID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	participants := make([]domain.Participant, 0, len(memberIDs))
	for _, id := range memberIDs {
		participants = append(participants, domain.Participant{
			ChatID:  chat.ID,
			UserID:  id,
			IsAdmin: id == creatorID,
		})
	}

	created, isNew, err := a.Store.CreateChat(ctx, chat, participants, pairKey)
	if err != nil {
		return CreateChatResult{}, fmt.Errorf("create chat: %w", err)
	}
	summary, err := a.chatSummary(ctx, created)
	if err != nil {
		return CreateChatResult{}, err
	}
	return CreateChatResult{Chat: summary, Existed: !isNew}, nil
}

// GetChat returns chat details for a member.
func (a *App) GetChat(ctx context.Context, userID, chatID string) (domain.ChatSummary, error) {
	chat, _, err := a.requireMembership(ctx, chatID, userID)
	if err != nil {
		return domain.ChatSummary{}, err
	}
	return a.chatSummary(ctx, chat)
}

func (a *App) chatSummary(ctx context.Context, chat domain.Chat) (domain.ChatSummary, error) {
	participants, err := a.Store.ListParticipants(ctx, chat.ID)
	if err != nil {
		return domain.ChatSummary{}, fmt.Errorf("list participants: %w", err)
	}
	return domain.ChatSummary{
		Chat:             chat,
		Participants:     participants,
		ParticipantCount: len(participants),
	}, nil
}

// UpdateChatInput carries the partial update; nil fields are left
// untouched.
type UpdateChatInput struct {
	Name    *string
	IsGroup *bool
}

// UpdateChat applies a partial update to a chat's name and group flag.
// Chat admins and the creator may update.
func (a *App) UpdateChat(ctx context.Context, userID, chatID string, in UpdateChatInput) (domain.ChatSummary, error) {
	chat, membership, err := a.requireMembership(ctx, chatID, userID)
	if err != nil {
		return domain.ChatSummary{}, err
	}
	if !membership.IsAdmin && chat.CreatedBy != userID {
		return domain.ChatSummary{}, Forbidden("only chat admins can update the chat")
	}

	fields := map[string]any{}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if n := len(name); n < 1 || n > 100 {
			return domain.ChatSummary{}, BadRequest("chat name must be 1-100 characters")
		}
		fields["name"] = name
		chat.Name = name
	}
	if in.IsGroup != nil {
		fields["is_group"] = *in.IsGroup
		chat.IsGroup = *in.IsGroup
	}
	if len(fields) == 0 {
		return domain.ChatSummary{}, BadRequest("no fields to update")
	}

	if err := a.Store.UpdateChatFields(ctx, chatID, fields); err != nil {
		return domain.ChatSummary{}, fmt.Errorf("update chat: %w", err)
	}
	return a.chatSummary(ctx, chat)
}

// AddParticipant adds a user to a group chat. Admin-only.
func (a *App) AddParticipant(ctx context.Context, actorID, chatID, targetID string, isAdmin bool) error {
	chat, membership, err := a.requireMembership(ctx, chatID, actorID)
	if err != nil {
		return err
	}
	if !chat.IsGroup {
		return BadRequest("cannot add participants to a direct chat")
	}
	if !membership.IsAdmin && chat.CreatedBy != actorID {
		return Forbidden("only chat admins can add participants")
	}
	if _, ok, err := a.Store.GetUser(ctx, targetID); err != nil {
		return fmt.Errorf("lookup user: %w", err)
	} else if !ok {
		return NotFound("user not found")
	}
	err = a.Store.AddParticipant(ctx, domain.Participant{
		ChatID:   chatID,
		UserID:   targetID,
		IsAdmin:  isAdmin,
		JoinedAt: a.now(),
	})
	if err == store.ErrAlreadyMember {
		return Conflict("user is already a participant")
	}
	if err != nil {
		return fmt.Errorf("add participant: %w", err)
	}
	return nil
}

// RemoveParticipant removes a member. Allowed for chat admins, the
// creator, or the member removing themselves. A group must keep at
// least one admin.
func (a *App) RemoveParticipant(ctx context.Context, actorID, chatID, targetID string) error {
	chat, actorMembership, err := a.requireMembership(ctx, chatID, actorID)
	if err != nil {
		return err
	}
	if !chat.IsGroup {
		return BadRequest("cannot remove participants from a direct chat")
	}
	if actorID != targetID && !actorMembership.IsAdmin && chat.CreatedBy != actorID {
		return Forbidden("only chat admins can remove participants")
	}
	target, ok, err := a.Store.GetMembership(ctx, chatID, targetID)
	if err != nil {
		return fmt.Errorf("lookup membership: %w", err)
	}
	if !ok {
		return NotFound("user is not a participant")
	}
	if err := a.guardSoleAdmin(ctx, chatID, target); err != nil {
		return err
	}
	if err := a.Store.RemoveParticipant(ctx, chatID, targetID); err != nil {
		return fmt.Errorf("remove participant: %w", err)
	}
	return a.deleteChatIfEmpty(ctx, chatID)
}

// LeaveChat removes the caller. Leaving a direct chat deletes it.
func (a *App) LeaveChat(ctx context.Context, userID, chatID string) error {
	chat, membership, err := a.requireMembership(ctx, chatID, userID)
	if err != nil {
		return err
	}
	if !chat.IsGroup {
		if err := a.Store.DeleteChat(ctx, chatID); err != nil {
			return fmt.Errorf("delete chat: %w", err)
		}
		return nil
	}
	if err := a.guardSoleAdmin(ctx, chatID, membership); err != nil {
		return err
	}
	if err := a.Store.RemoveParticipant(ctx, chatID, userID); err != nil {
		return fmt.Errorf("leave chat: %w", err)
	}
	return a.deleteChatIfEmpty(ctx, chatID)
}

// guardSoleAdmin rejects removing the only admin while other members
// remain.
func (a *App) guardSoleAdmin(ctx context.Context, chatID string, target domain.Participant) error {
	if !target.IsAdmin {
		return nil
	}
	admins, err := a.Store.CountChatAdmins(ctx, chatID)
	if err != nil {
		return fmt.Errorf("count admins: %w", err)
	}
	if admins > 1 {
		return nil
	}
	members, err := a.Store.CountParticipants(ctx, chatID)
	if err != nil {
		return fmt.Errorf("count participants: %w", err)
	}
	if members > 1 {
		return BadRequest("cannot remove the only admin of a group chat")
	}
	return nil
}

func (a *App) deleteChatIfEmpty(ctx context.Context, chatID string) error {
	members, err := a.Store.CountParticipants(ctx, chatID)
	if err != nil {
		return fmt.Errorf("count participants: %w", err)
	}
	if members == 0 {
		if err := a.Store.DeleteChat(ctx, chatID); err != nil {
			return fmt.Errorf("delete empty chat: %w", err)
		}
	}
	return nil
}

// requireMembership loads the chat and the caller's membership in one
// place so every chat/message operation applies the same checks.
func (a *App) requireMembership(ctx context.Context, chatID, userID string) (domain.Chat, domain.Participant, error) {
	chat, ok, err := a.Store.GetChat(ctx, chatID)
	if err != nil {
		return domain.Chat{}, domain.Participant{}, fmt.Errorf("lookup chat: %w", err)
	}
	if !ok {
		return domain.Chat{}, domain.Participant{}, NotFound("chat not found")
	}
	membership, ok, err := a.Store.GetMembership(ctx, chatID, userID)
	if err != nil {
		return domain.Chat{}, domain.Participant{}, fmt.Errorf("lookup membership: %w", err)
	}
	if !ok {
		return domain.Chat{}, domain.Participant{}, Forbidden("you are not a participant of this chat")
	}
	return chat, membership, nil
}

func dedupeIDs(ids []string, always string) []string {
	seen := map[string]bool{always: true}
	out := []string{always}
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
