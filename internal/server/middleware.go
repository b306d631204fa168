package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/ConstantineIIII/WhatsappClone/internal/app"
	"github.com/ConstantineIIII/WhatsappClone/internal/util"
	"github.com/ConstantineIIII/WhatsappClone/pkg/domain"
	"github.com/ConstantineIIII/WhatsappClone/pkg/token"
)

type contextKey string

const (
	userContextKey   contextKey = "auth_user"
	claimsContextKey contextKey = "auth_claims"
)

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func userFrom(ctx context.Context) (domain.User, bool) {
	u, ok := ctx.Value(userContextKey).(domain.User)
	return u, ok
}

func claimsFrom(ctx context.Context) (token.Claims, bool) {
	c, ok := ctx.Value(claimsContextKey).(token.Claims)
	return c, ok
}

// authenticate verifies the bearer token, loads the account, and
// rejects banned users. The user and claims land in the context.
func (s *Server) authenticate(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := bearerToken(r)
		if raw == "" {
			writeError(w, app.Unauthorized("authorization token required"))
			return
		}
		claims, err := s.app.Tokens.Verify(raw)
		if err != nil {
			s.log.Warn("security_event", "event", "invalid_token", "ip", util.ClientIP(r))
			writeError(w, app.Unauthorized("invalid or expired token"))
			return
		}
		user, ok, err := s.app.Store.GetUser(r.Context(), claims.UserID)
		if err != nil {
			writeError(w, err)
			return
		}
		if !ok {
			writeError(w, app.Unauthorized("account no longer exists"))
			return
		}
		if user.IsBanned {
			s.log.Warn("security_event", "event", "banned_access_attempt", "user_id", user.ID)
			writeError(w, app.Forbidden("account is banned"))
			return
		}
		ctx := context.WithValue(r.Context(), userContextKey, user)
		ctx = context.WithValue(ctx, claimsContextKey, claims)
		next(w, r.WithContext(ctx))
	}
}

// adminOnly wraps authenticate and requires the admin flag.
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return s.authenticate(func(w http.ResponseWriter, r *http.Request) {
		user, _ := userFrom(r.Context())
		if !user.IsAdmin {
			s.log.Warn("security_event", "event", "admin_access_denied", "user_id", user.ID)
			writeError(w, app.Forbidden("admin access required"))
			return
		}
		next(w, r)
	})
}

// optionalAuth attaches the user when a valid token is present but
// lets the request through either way.
func (s *Server) optionalAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := bearerToken(r)
		if raw == "" {
			next(w, r)
			return
		}
		claims, err := s.app.Tokens.Verify(raw)
		if err != nil {
			next(w, r)
			return
		}
		user, ok, err := s.app.Store.GetUser(r.Context(), claims.UserID)
		if err != nil || !ok || user.IsBanned {
			next(w, r)
			return
		}
		ctx := context.WithValue(r.Context(), userContextKey, user)
		ctx = context.WithValue(ctx, claimsContextKey, claims)
		next(w, r.WithContext(ctx))
	}
}

// stampOnline refreshes the caller's presence on chat and message
// traffic. Best-effort only.
func (s *Server) stampOnline(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if user, ok := userFrom(r.Context()); ok {
			if err := s.app.TouchPresence(r.Context(), user.ID); err != nil {
				s.log.Warn("presence update failed", "error", err, "user_id", user.ID)
			}
		}
		next(w, r)
	}
}

// rateLimited applies the fixed-window limiter per client IP. With no
// limiter configured, requests pass through.
func (s *Server) rateLimited(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.limiter != nil && !s.limiter.Allow(util.ClientIP(r)) {
			s.log.Warn("security_event", "event", "rate_limited", "ip", util.ClientIP(r), "path", r.URL.Path)
			writeJSON(w, http.StatusTooManyRequests, envelope{
				Success: false,
				Message: "too many requests, slow down",
			})
			return
		}
		next(w, r)
	}
}
