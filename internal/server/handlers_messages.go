package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/ConstantineIIII/WhatsappClone/internal/app"
	"github.com/ConstantineIIII/WhatsappClone/pkg/domain"
)

// handleMessageGet dispatches the two-segment GET routes:
// /api/messages/chat/{chatId} (feed) and /api/messages/{id}/status.
func (s *Server) handleMessageGet(w http.ResponseWriter, r *http.Request) {
	first, second := r.PathValue("first"), r.PathValue("second")
	switch {
	case first == "chat":
		s.handleFeed(w, r, second)
	case second == "status":
		s.handleMessageStatus(w, r, first)
	default:
		writeError(w, app.NotFound("not found"))
	}
}

func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request, chatID string) {
	user, _ := userFrom(r.Context())
	page, limit := pageParams(r)
	q := app.FeedQuery{Page: page, Limit: limit}
	if raw := r.URL.Query().Get("before"); raw != "" {
		before, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeError(w, app.BadRequest("before must be an RFC 3339 timestamp"))
			return
		}
		q.Before = &before
	}
	msgs, err := s.app.Feed(r.Context(), user.ID, chatID, q)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, map[string]any{"messages": msgs})
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	user, _ := userFrom(r.Context())
	var body struct {
		ChatID    string            `json:"chatId"`
		Content   string            `json:"content"`
		Type      string            `json:"messageType"`
		MediaURL  string            `json:"mediaUrl"`
		MediaMeta map[string]string `json:"mediaMeta"`
		ReplyToID string            `json:"replyToId"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}
	msg, err := s.app.SendMessage(r.Context(), user.ID, app.SendMessageInput{
		ChatID:    body.ChatID,
		Content:   body.Content,
		Type:      domain.MessageType(body.Type),
		MediaURL:  body.MediaURL,
		MediaMeta: body.MediaMeta,
		ReplyToID: body.ReplyToID,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusCreated, msg)
}

func (s *Server) handleEditMessage(w http.ResponseWriter, r *http.Request) {
	user, _ := userFrom(r.Context())
	var body struct {
		Content string `json:"content"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}
	msg, err := s.app.EditMessage(r.Context(), user.ID, r.PathValue("id"), body.Content)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, msg)
}

func (s *Server) handleDeleteMessage(w http.ResponseWriter, r *http.Request) {
	user, _ := userFrom(r.Context())
	if err := s.app.DeleteMessage(r.Context(), user.ID, r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "message deleted")
}

func (s *Server) handleMessageStatus(w http.ResponseWriter, r *http.Request, messageID string) {
	user, _ := userFrom(r.Context())
	statuses, err := s.app.MessageStatusList(r.Context(), user.ID, messageID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, map[string]any{"statuses": statuses})
}

func (s *Server) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	user, _ := userFrom(r.Context())
	if err := s.app.MarkRead(r.Context(), user.ID, r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "marked as read")
}

func (s *Server) handleSearchMessages(w http.ResponseWriter, r *http.Request) {
	user, _ := userFrom(r.Context())
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	msgs, err := s.app.SearchMessages(
		r.Context(),
		user.ID,
		r.URL.Query().Get("q"),
		r.URL.Query().Get("chatId"),
		limit,
	)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, map[string]any{"messages": msgs})
}
