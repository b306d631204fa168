package server

import (
	"net/http"
	"strconv"

	"github.com/ConstantineIIII/WhatsappClone/internal/app"
)

func pageParams(r *http.Request) (int, int) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	return page, limit
}

func (s *Server) handleListChats(w http.ResponseWriter, r *http.Request) {
	user, _ := userFrom(r.Context())
	page, limit := pageParams(r)
	chats, total, err := s.app.ListChats(r.Context(), user.ID, page, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, map[string]any{
		"chats": chats,
		"total": total,
	})
}

func (s *Server) handleCreateChat(w http.ResponseWriter, r *http.Request) {
	user, _ := userFrom(r.Context())
	var body struct {
		Name           string   `json:"name"`
		IsGroup        bool     `json:"isGroup"`
		ParticipantIDs []string `json:"participantIds"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}
	result, err := s.app.CreateChat(r.Context(), user.ID, app.CreateChatInput{
		Name:           body.Name,
		IsGroup:        body.IsGroup,
		ParticipantIDs: body.ParticipantIDs,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	if result.Existed {
		writeJSON(w, http.StatusConflict, envelope{
			Success: false,
			Message: "chat already exists",
			Data:    result.Chat,
		})
		return
	}
	writeData(w, http.StatusCreated, result.Chat)
}

func (s *Server) handleGetChat(w http.ResponseWriter, r *http.Request) {
	user, _ := userFrom(r.Context())
	chat, err := s.app.GetChat(r.Context(), user.ID, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, chat)
}

func (s *Server) handleUpdateChat(w http.ResponseWriter, r *http.Request) {
	user, _ := userFrom(r.Context())
	var body struct {
		Name    *string `json:"name"`
		IsGroup *bool   `json:"isGroup"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}
	chat, err := s.app.UpdateChat(r.Context(), user.ID, r.PathValue("id"), app.UpdateChatInput{
		Name:    body.Name,
		IsGroup: body.IsGroup,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, chat)
}

func (s *Server) handleAddParticipant(w http.ResponseWriter, r *http.Request) {
	user, _ := userFrom(r.Context())
	var body struct {
		UserID  string `json:"userId"`
		IsAdmin bool   `json:"isAdmin"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}
	if err := s.app.AddParticipant(r.Context(), user.ID, r.PathValue("id"), body.UserID, body.IsAdmin); err != nil {
		writeError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "participant added")
}

func (s *Server) handleRemoveParticipant(w http.ResponseWriter, r *http.Request) {
	user, _ := userFrom(r.Context())
	err := s.app.RemoveParticipant(r.Context(), user.ID, r.PathValue("id"), r.PathValue("userId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "participant removed")
}

func (s *Server) handleLeaveChat(w http.ResponseWriter, r *http.Request) {
	user, _ := userFrom(r.Context())
	if err := s.app.LeaveChat(r.Context(), user.ID, r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "left chat")
}
