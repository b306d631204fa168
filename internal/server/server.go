package server

import (
	"log/slog"
	"net/http"

	"github.com/ConstantineIIII/WhatsappClone/internal/app"
	"github.com/ConstantineIIII/WhatsappClone/internal/ratelimit"
	"github.com/ConstantineIIII/WhatsappClone/internal/util"
)

// Server owns the HTTP surface.
type Server struct {
	app     *app.App
	limiter *ratelimit.FixedWindowLimiter
	log     *slog.Logger
}

// New builds a Server. The limiter may be nil.
func New(a *app.App, limiter *ratelimit.FixedWindowLimiter, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{app: a, limiter: limiter, log: log}
}

// Handler assembles the route table and the middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)

	// Auth
	mux.HandleFunc("POST /api/auth/register", s.rateLimited(s.handleRegister))
	mux.HandleFunc("POST /api/auth/login", s.rateLimited(s.handleLogin))
	mux.HandleFunc("POST /api/auth/logout", s.authenticate(s.handleLogout))
	mux.HandleFunc("POST /api/auth/refresh", s.rateLimited(s.authenticate(s.handleRefresh)))
	mux.HandleFunc("GET /api/auth/profile", s.authenticate(s.handleGetProfile))
	mux.HandleFunc("PUT /api/auth/profile", s.authenticate(s.handleUpdateProfile))
	mux.HandleFunc("PUT /api/auth/change-password", s.authenticate(s.handleChangePassword))

	// Chats
	mux.HandleFunc("GET /api/chats", s.authenticate(s.stampOnline(s.handleListChats)))
	mux.HandleFunc("POST /api/chats", s.authenticate(s.stampOnline(s.handleCreateChat)))
	mux.HandleFunc("GET /api/chats/{id}", s.authenticate(s.stampOnline(s.handleGetChat)))
	mux.HandleFunc("PUT /api/chats/{id}", s.authenticate(s.stampOnline(s.handleUpdateChat)))
	mux.HandleFunc("POST /api/chats/{id}/participants", s.authenticate(s.stampOnline(s.handleAddParticipant)))
	mux.HandleFunc("DELETE /api/chats/{id}/participants/{userId}", s.authenticate(s.stampOnline(s.handleRemoveParticipant)))
	mux.HandleFunc("POST /api/chats/{id}/leave", s.authenticate(s.stampOnline(s.handleLeaveChat)))

	// Messages. The feed route /api/messages/chat/{chatId} and the
	// status route /api/messages/{id}/status are ambiguous to ServeMux,
	// so the two-segment GETs go through one dispatcher.
	mux.HandleFunc("POST /api/messages", s.authenticate(s.stampOnline(s.handleSendMessage)))
	mux.HandleFunc("GET /api/messages/search", s.authenticate(s.stampOnline(s.handleSearchMessages)))
	mux.HandleFunc("PUT /api/messages/{id}", s.authenticate(s.stampOnline(s.handleEditMessage)))
	mux.HandleFunc("DELETE /api/messages/{id}", s.authenticate(s.stampOnline(s.handleDeleteMessage)))
	mux.HandleFunc("GET /api/messages/{first}/{second}", s.authenticate(s.stampOnline(s.handleMessageGet)))
	mux.HandleFunc("POST /api/messages/{id}/read", s.authenticate(s.stampOnline(s.handleMarkRead)))

	// Users
	mux.HandleFunc("GET /api/users/profile", s.authenticate(s.handleGetProfile))
	mux.HandleFunc("PUT /api/users/profile", s.authenticate(s.handleUpdateProfile))
	mux.HandleFunc("POST /api/users/profile-picture", s.authenticate(s.handleUploadAvatar))
	mux.HandleFunc("DELETE /api/users/profile-picture", s.authenticate(s.handleDeleteAvatar))
	mux.HandleFunc("GET /api/users/{id}", s.optionalAuth(s.handlePublicProfile))

	// Admin
	mux.HandleFunc("GET /api/admin/users", s.adminOnly(s.handleAdminListUsers))
	mux.HandleFunc("GET /api/admin/users/{id}", s.adminOnly(s.handleAdminUserDetail))
	mux.HandleFunc("PUT /api/admin/users/{id}", s.adminOnly(s.handleAdminUpdateUser))
	mux.HandleFunc("DELETE /api/admin/users/{id}", s.adminOnly(s.handleAdminDeleteUser))
	mux.HandleFunc("POST /api/admin/users/{id}/ban", s.adminOnly(s.handleAdminBan))
	mux.HandleFunc("GET /api/admin/stats", s.adminOnly(s.handleAdminStats))
	mux.HandleFunc("GET /api/admin/logs", s.adminOnly(s.handleAdminLogs))
	mux.HandleFunc("GET /api/admin/dashboard", s.adminOnly(s.handleAdminDashboard))

	var handler http.Handler = mux
	handler = util.WithCORS(handler)
	handler = util.WithSecurityHeaders(handler)
	handler = util.WithRequestLog(handler)
	handler = util.WithRequestID(handler)
	return handler
}
