package app

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/ConstantineIIII/WhatsappClone/internal/util"
	"github.com/ConstantineIIII/WhatsappClone/pkg/auth"
	"github.com/ConstantineIIII/WhatsappClone/pkg/domain"
	"github.com/ConstantineIIII/WhatsappClone/pkg/store"
)

var (
	usernameRe = regexp.MustCompile(`^[a-zA-Z0-9]{3,30}$`)
	emailRe    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneRe    = regexp.MustCompile(`^\+?[0-9\s\-()]{7,20}$`)
)

// RegisterInput is the signup payload.
type RegisterInput struct {
	Username    string
	Email       string
	Password    string
	FullName    string
	PhoneNumber string
}

// SessionInfo carries per-request client details into session records.
type SessionInfo struct {
	DeviceInfo string
	IPAddress  string
}

// AuthResult is the outcome of register/login/refresh.
type AuthResult struct {
	User  domain.User `json:"user"`
	Token string      `json:"token"`
}

func (in *RegisterInput) validate() []string {
	var problems []string
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	in.FullName = strings.TrimSpace(in.FullName)
	in.PhoneNumber = strings.TrimSpace(in.PhoneNumber)

	if !usernameRe.MatchString(in.Username) {
		problems = append(problems, "username must be 3-30 alphanumeric characters")
	}
	if !emailRe.MatchString(in.Email) {
		problems = append(problems, "email is invalid")
	}
	if err := auth.ValidatePassword(in.Password); err != nil {
		problems = append(problems, err.Error())
	}
	if n := len(in.FullName); n < 2 || n > 100 {
		problems = append(problems, "full name must be 2-100 characters")
	}
	if in.PhoneNumber != "" && !phoneRe.MatchString(in.PhoneNumber) {
		problems = append(problems, "phone number is invalid")
	}
	return problems
}

// Register creates an account and signs the user straight in.
func (a *App) Register(ctx context.Context, in RegisterInput, info SessionInfo) (AuthResult, error) {
	if problems := in.validate(); len(problems) > 0 {
		return AuthResult{}, BadRequest("validation failed", problems...)
	}

	digest, err := auth.HashPassword(in.Password)
	if err != nil {
		return AuthResult{}, fmt.Errorf("hash password: %w", err)
	}
	now := a.now()
	user := domain.User{
		ID:           util.NewID(),
		Username:     in.Username,
		Email:        in.Email,
		FullName:     in.FullName,
		PhoneNumber:  in.PhoneNumber,
		PasswordHash: digest,
		IsOnline:     true,
		LastSeen:     &now,
		CreatedAt:    now,
	}
	if err := a.Store.CreateUser(ctx, user); err != nil {
		switch err {
		case store.ErrDuplicateEmail:
			return AuthResult{}, Conflict("email already registered")
		case store.ErrDuplicateUsername:
			return AuthResult{}, Conflict("username already taken")
		}
		return AuthResult{}, fmt.Errorf("create user: %w", err)
	}

	result, err := a.issueSession(ctx, user, info)
	if err != nil {
		return AuthResult{}, err
	}
	a.Log.Info("security_event", "event", "user_registered", "user_id", user.ID, "ip", info.IPAddress)
	return result, nil
}

// Login verifies credentials and issues a session token. Failures stay
// deliberately vague about which part was wrong.
func (a *App) Login(ctx context.Context, email, password string, info SessionInfo) (AuthResult, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	user, ok, err := a.Store.GetUserByEmail(ctx, email)
	if err != nil {
		return AuthResult{}, fmt.Errorf("lookup user: %w", err)
	}
	if !ok || !auth.CheckPassword(password, user.PasswordHash) {
		a.Log.Warn("security_event", "event", "login_failed", "email", email, "ip", info.IPAddress)
		return AuthResult{}, Unauthorized("invalid email or password")
	}
	if user.IsBanned {
		a.Log.Warn("security_event", "event", "banned_login_attempt", "user_id", user.ID, "ip", info.IPAddress)
		msg := "account is banned"
		if user.BanReason != "" {
			msg = "account is banned: " + user.BanReason
		}
		return AuthResult{}, Forbidden(msg)
	}

	now := a.now()
	if err := a.Store.SetUserPresence(ctx, user.ID, true, now); err != nil {
		return AuthResult{}, fmt.Errorf("update presence: %w", err)
	}
	user.IsOnline = true
	user.LastSeen = &now

	result, err := a.issueSession(ctx, user, info)
	if err != nil {
		return AuthResult{}, err
	}
	a.Log.Info("security_event", "event", "login", "user_id", user.ID, "ip", info.IPAddress)
	return result, nil
}

func (a *App) issueSession(ctx context.Context, user domain.User, info SessionInfo) (AuthResult, error) {
	signed, jti, err := a.Tokens.New(user.ID, user.Email)
	if err != nil {
		return AuthResult{}, fmt.Errorf("sign token: %w", err)
	}
	sess := domain.Session{
		ID:         util.NewID(),
		UserID:     user.ID,
		TokenID:    jti,
		DeviceInfo: info.DeviceInfo,
		IPAddress:  info.IPAddress,
		IsActive:   true,
		CreatedAt:  a.now(),
		ExpiresAt:  a.now().Add(a.Tokens.TTL()),
	}
	if err := a.Store.CreateSession(ctx, sess); err != nil {
		return AuthResult{}, fmt.Errorf("record session: %w", err)
	}
	return AuthResult{User: user, Token: signed}, nil
}

// Logout deactivates the session, revokes the token, and clears the
// online flag.
func (a *App) Logout(ctx context.Context, userID, tokenID string, expires time.Time) error {
	if err := a.Store.DeactivateSession(ctx, tokenID); err != nil {
		return fmt.Errorf("deactivate session: %w", err)
	}
	if err := a.Tokens.RevokeID(tokenID, time.Until(expires)); err != nil {
		a.Log.Warn("token revocation failed", "error", err, "user_id", userID)
	}
	if err := a.Store.SetUserPresence(ctx, userID, false, a.now()); err != nil {
		return fmt.Errorf("update presence: %w", err)
	}
	a.Log.Info("security_event", "event", "logout", "user_id", userID)
	return nil
}

// Refresh rotates the session: new token, new session record, and the
// old token revoked for its remaining lifetime.
func (a *App) Refresh(ctx context.Context, userID, tokenID string, expires time.Time, info SessionInfo) (AuthResult, error) {
	user, ok, err := a.Store.GetUser(ctx, userID)
	if err != nil {
		return AuthResult{}, fmt.Errorf("lookup user: %w", err)
	}
	if !ok {
		return AuthResult{}, Unauthorized("account no longer exists")
	}
	if user.IsBanned {
		return AuthResult{}, Forbidden("account is banned")
	}

	result, err := a.issueSession(ctx, user, info)
	if err != nil {
		return AuthResult{}, err
	}
	if err := a.Store.DeactivateSession(ctx, tokenID); err != nil {
		return AuthResult{}, fmt.Errorf("deactivate session: %w", err)
	}
	if err := a.Tokens.RevokeID(tokenID, time.Until(expires)); err != nil {
		a.Log.Warn("token revocation failed", "error", err, "user_id", userID)
	}
	return result, nil
}

// ChangePassword verifies the current password before storing the new
// digest.
func (a *App) ChangePassword(ctx context.Context, userID, current, next string) error {
	user, ok, err := a.Store.GetUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("lookup user: %w", err)
	}
	if !ok {
		return NotFound("user not found")
	}
	if !auth.CheckPassword(current, user.PasswordHash) {
		return Unauthorized("current password is incorrect")
	}
	if err := auth.ValidatePassword(next); err != nil {
		return BadRequest(err.Error())
	}
	digest, err := auth.HashPassword(next)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := a.Store.UpdateUserFields(ctx, userID, map[string]any{"password_hash": digest}); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	a.Log.Info("security_event", "event", "password_changed", "user_id", userID)
	return nil
}
