package server

import (
	"net/http"

	"github.com/ConstantineIIII/WhatsappClone/internal/app"
	"github.com/ConstantineIIII/WhatsappClone/pkg/store"
)

func (s *Server) handleAdminListUsers(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)
	users, total, err := s.app.AdminListUsers(r.Context(), store.ListUsersQuery{
		Page:   page,
		Limit:  limit,
		Search: r.URL.Query().Get("search"),
		SortBy: r.URL.Query().Get("sortBy"),
		Order:  r.URL.Query().Get("order"),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, map[string]any{
		"users": users,
		"total": total,
	})
}

func (s *Server) handleAdminUserDetail(w http.ResponseWriter, r *http.Request) {
	detail, err := s.app.AdminUserDetail(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, detail)
}

func (s *Server) handleAdminUpdateUser(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username *string `json:"username"`
		Email    *string `json:"email"`
		FullName *string `json:"fullName"`
		IsAdmin  *bool   `json:"isAdmin"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}
	user, err := s.app.AdminUpdateUser(r.Context(), r.PathValue("id"), app.AdminUpdateUserInput{
		Username: body.Username,
		Email:    body.Email,
		FullName: body.FullName,
		IsAdmin:  body.IsAdmin,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, user)
}

func (s *Server) handleAdminDeleteUser(w http.ResponseWriter, r *http.Request) {
	actor, _ := userFrom(r.Context())
	if err := s.app.AdminDeleteUser(r.Context(), actor.ID, r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "user deleted")
}

func (s *Server) handleAdminBan(w http.ResponseWriter, r *http.Request) {
	actor, _ := userFrom(r.Context())
	var body struct {
		Banned bool   `json:"banned"`
		Reason string `json:"reason"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}
	if err := s.app.SetBan(r.Context(), actor.ID, r.PathValue("id"), body.Banned, body.Reason); err != nil {
		writeError(w, err)
		return
	}
	if body.Banned {
		writeMessage(w, http.StatusOK, "user banned")
		return
	}
	writeMessage(w, http.StatusOK, "user unbanned")
}

func (s *Server) handleAdminStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.app.Stats(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, stats)
}

func (s *Server) handleAdminLogs(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)
	sessions, total, err := s.app.Logs(r.Context(), r.URL.Query().Get("userId"), page, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, map[string]any{
		"sessions": sessions,
		"total":    total,
	})
}

func (s *Server) handleAdminDashboard(w http.ResponseWriter, r *http.Request) {
	dash, err := s.app.Dashboard(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, dash)
}
