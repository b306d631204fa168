package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ConstantineIIII/WhatsappClone/pkg/domain"
	"github.com/ConstantineIIII/WhatsappClone/pkg/store"
)

const activeUserWindow = 7 * 24 * time.Hour

// AdminUpdateUserInput is the admin-side partial user update.
type AdminUpdateUserInput struct {
	Username *string
	Email    *string
	FullName *string
	IsAdmin  *bool
}

// AdminListUsers is the paginated user listing with search and sort.
func (a *App) AdminListUsers(ctx context.Context, q store.ListUsersQuery) ([]domain.User, int64, error) {
	users, total, err := a.Store.ListUsers(ctx, q)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	return users, total, nil
}

// AdminUserDetail loads a user plus activity counts, queried in
// parallel.
func (a *App) AdminUserDetail(ctx context.Context, userID string) (domain.UserDetail, error) {
	user, ok, err := a.Store.GetUser(ctx, userID)
	if err != nil {
		return domain.UserDetail{}, fmt.Errorf("lookup user: %w", err)
	}
	if !ok {
		return domain.UserDetail{}, NotFound("user not found")
	}

	detail := domain.UserDetail{User: user}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		detail.ChatCount, err = a.Store.CountUserChats(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		detail.MessageCount, err = a.Store.CountUserMessages(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		detail.SessionCount, err = a.Store.CountUserSessions(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		detail.RecentMessages, err = a.Store.RecentUserMessages(gctx, userID, 10)
		return err
	})
	if err := g.Wait(); err != nil {
		return domain.UserDetail{}, fmt.Errorf("user detail: %w", err)
	}
	return detail, nil
}

// AdminUpdateUser applies a partial update, including the admin flag.
func (a *App) AdminUpdateUser(ctx context.Context, userID string, in AdminUpdateUserInput) (domain.User, error) {
	if _, ok, err := a.Store.GetUser(ctx, userID); err != nil {
		return domain.User{}, fmt.Errorf("lookup user: %w", err)
	} else if !ok {
		return domain.User{}, NotFound("user not found")
	}

	fields := map[string]any{}
	if in.Username != nil {
		username := strings.TrimSpace(*in.Username)
		if !usernameRe.MatchString(username) {
			return domain.User{}, BadRequest("username must be 3-30 alphanumeric characters")
		}
		fields["username"] = username
	}
	if in.Email != nil {
		email := strings.TrimSpace(strings.ToLower(*in.Email))
		if !emailRe.MatchString(email) {
			return domain.User{}, BadRequest("email is invalid")
		}
		fields["email"] = email
	}
	if in.FullName != nil {
		name := strings.TrimSpace(*in.FullName)
		if n := len(name); n < 2 || n > 100 {
			return domain.User{}, BadRequest("full name must be 2-100 characters")
		}
		fields["full_name"] = name
	}
	if in.IsAdmin != nil {
		fields["is_admin"] = *in.IsAdmin
	}
	if len(fields) == 0 {
		return domain.User{}, BadRequest("no fields to update")
	}

	if err := a.Store.UpdateUserFields(ctx, userID, fields); err != nil {
		switch err {
		case store.ErrDuplicateEmail:
			return domain.User{}, Conflict("email already registered")
		case store.ErrDuplicateUsername:
			return domain.User{}, Conflict("username already taken")
		}
		return domain.User{}, fmt.Errorf("update user: %w", err)
	}
	user, _, err := a.Store.GetUser(ctx, userID)
	if err != nil {
		return domain.User{}, fmt.Errorf("reload user: %w", err)
	}
	return user, nil
}

// AdminDeleteUser removes an account and everything attached to it.
func (a *App) AdminDeleteUser(ctx context.Context, actorID, userID string) error {
	if actorID == userID {
		return BadRequest("cannot delete your own account")
	}
	if _, ok, err := a.Store.GetUser(ctx, userID); err != nil {
		return fmt.Errorf("lookup user: %w", err)
	} else if !ok {
		return NotFound("user not found")
	}
	if err := a.Store.DeleteUser(ctx, userID); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	a.Log.Info("security_event", "event", "user_deleted", "user_id", userID, "actor_id", actorID)
	return nil
}

// SetBan bans or unbans a user. Banning deactivates the user's
// sessions transactionally and revokes their outstanding tokens.
func (a *App) SetBan(ctx context.Context, actorID, userID string, banned bool, reason string) error {
	if actorID == userID {
		return BadRequest("cannot ban your own account")
	}
	if _, ok, err := a.Store.GetUser(ctx, userID); err != nil {
		return fmt.Errorf("lookup user: %w", err)
	} else if !ok {
		return NotFound("user not found")
	}

	sessions, err := a.Store.SetUserBan(ctx, userID, banned, strings.TrimSpace(reason))
	if err != nil {
		return fmt.Errorf("set ban: %w", err)
	}
	for _, sess := range sessions {
		if err := a.Tokens.RevokeID(sess.TokenID, time.Until(sess.ExpiresAt)); err != nil {
			a.Log.Warn("token revocation failed", "error", err, "user_id", userID)
		}
	}
	a.Log.Info("security_event", "event", "ban_changed",
		"user_id", userID, "actor_id", actorID, "banned", banned, "sessions_revoked", len(sessions))
	return nil
}

// Stats gathers the platform aggregates, all queried in parallel.
func (a *App) Stats(ctx context.Context) (domain.AdminStats, error) {
	now := a.now()
	today := now.Truncate(24 * time.Hour)

	var stats domain.AdminStats
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		stats.TotalUsers, err = a.Store.CountUsers(gctx)
		return err
	})
	g.Go(func() (err error) {
		stats.ActiveUsers, err = a.Store.CountActiveUsers(gctx, now.Add(-activeUserWindow))
		return err
	})
	g.Go(func() (err error) {
		stats.BannedUsers, err = a.Store.CountBannedUsers(gctx)
		return err
	})
	g.Go(func() (err error) {
		stats.AdminUsers, err = a.Store.CountAdminUsers(gctx)
		return err
	})
	g.Go(func() (err error) {
		stats.NewUsersToday, err = a.Store.CountUsersSince(gctx, today)
		return err
	})
	g.Go(func() (err error) {
		stats.TotalChats, err = a.Store.CountChats(gctx)
		return err
	})
	g.Go(func() (err error) {
		stats.GroupChats, err = a.Store.CountGroupChats(gctx)
		return err
	})
	g.Go(func() (err error) {
		stats.TotalMessages, err = a.Store.CountMessages(gctx)
		return err
	})
	g.Go(func() (err error) {
		stats.MessagesToday, err = a.Store.CountMessagesSince(gctx, today)
		return err
	})
	if err := g.Wait(); err != nil {
		return domain.AdminStats{}, fmt.Errorf("stats: %w", err)
	}
	return stats, nil
}

// Logs lists session records, optionally for one user.
func (a *App) Logs(ctx context.Context, userID string, page, limit int) ([]domain.Session, int64, error) {
	sessions, total, err := a.Store.ListSessions(ctx, userID, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, total, nil
}

// Dashboard assembles the admin landing payload.
func (a *App) Dashboard(ctx context.Context) (domain.Dashboard, error) {
	dash := domain.Dashboard{GeneratedAt: a.now()}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		dash.Stats, err = a.Stats(gctx)
		return err
	})
	g.Go(func() (err error) {
		dash.UserGrowth, err = a.Store.UserGrowth(gctx, 30)
		return err
	})
	g.Go(func() (err error) {
		dash.RecentUsers, err = a.Store.RecentUsers(gctx, 5)
		return err
	})
	g.Go(func() (err error) {
		dash.TopSenders, err = a.Store.TopSenders(gctx, 5)
		return err
	})
	if err := g.Wait(); err != nil {
		return domain.Dashboard{}, fmt.Errorf("dashboard: %w", err)
	}
	return dash, nil
}

// Health pings the durable store and the cache.
func (a *App) Health(ctx context.Context) domain.ServiceHealth {
	health := domain.ServiceHealth{
		Status:   "ok",
		Services: map[string]string{},
	}
	if err := a.Store.Ping(ctx); err != nil {
		health.Status = "degraded"
		health.Services["database"] = "down"
	} else {
		health.Services["database"] = "up"
	}
	if err := a.Cache.Ping(ctx); err != nil {
		health.Services["cache"] = "down"
	} else {
		health.Services["cache"] = "up"
	}
	return health
}
