package app

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/ConstantineIIII/WhatsappClone/internal/util"
	"github.com/ConstantineIIII/WhatsappClone/pkg/domain"
)

const (
	maxAvatarBytes = 5 << 20
	avatarURLTTL   = time.Hour
)

// UpdateProfileInput is a partial profile update; nil fields are left
// untouched.
type UpdateProfileInput struct {
	FullName      *string
	Bio           *string
	PhoneNumber   *string
	StatusMessage *string
}

// Profile returns the caller's own account.
func (a *App) Profile(ctx context.Context, userID string) (domain.User, error) {
	user, ok, err := a.Store.GetUser(ctx, userID)
	if err != nil {
		return domain.User{}, fmt.Errorf("lookup user: %w", err)
	}
	if !ok {
		return domain.User{}, NotFound("user not found")
	}
	a.resolveAvatar(ctx, &user)
	return user, nil
}

// UpdateProfile applies a partial update to the caller's profile.
func (a *App) UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput) (domain.User, error) {
	fields := map[string]any{}
	if in.FullName != nil {
		name := strings.TrimSpace(*in.FullName)
		if n := len(name); n < 2 || n > 100 {
			return domain.User{}, BadRequest("full name must be 2-100 characters")
		}
		fields["full_name"] = name
	}
	if in.Bio != nil {
		if len(*in.Bio) > 500 {
			return domain.User{}, BadRequest("bio must be at most 500 characters")
		}
		fields["bio"] = strings.TrimSpace(*in.Bio)
	}
	if in.PhoneNumber != nil {
		phone := strings.TrimSpace(*in.PhoneNumber)
		if phone != "" && !phoneRe.MatchString(phone) {
			return domain.User{}, BadRequest("phone number is invalid")
		}
		fields["phone_number"] = phone
	}
	if in.StatusMessage != nil {
		if len(*in.StatusMessage) > 255 {
			return domain.User{}, BadRequest("status message must be at most 255 characters")
		}
		fields["status_message"] = strings.TrimSpace(*in.StatusMessage)
	}
	if len(fields) == 0 {
		return domain.User{}, BadRequest("no profile fields to update")
	}
	if err := a.Store.UpdateUserFields(ctx, userID, fields); err != nil {
		return domain.User{}, fmt.Errorf("update profile: %w", err)
	}
	return a.Profile(ctx, userID)
}

// PublicProfile returns the fields any user may see about another.
func (a *App) PublicProfile(ctx context.Context, userID string) (domain.User, error) {
	user, ok, err := a.Store.GetUser(ctx, userID)
	if err != nil {
		return domain.User{}, fmt.Errorf("lookup user: %w", err)
	}
	if !ok {
		return domain.User{}, NotFound("user not found")
	}
	a.resolveAvatar(ctx, &user)
	return user.PublicProfile(), nil
}

// UploadProfilePicture stores the image and swaps the user's avatar
// key. The old object is removed best-effort.
func (a *App) UploadProfilePicture(ctx context.Context, userID string, r io.Reader, size int64, contentType, filename string) (string, error) {
	if a.Objects == nil {
		return "", BadRequest("profile picture uploads are not enabled")
	}
	if !strings.HasPrefix(contentType, "image/") {
		return "", BadRequest("profile picture must be an image")
	}
	if size <= 0 || size > maxAvatarBytes {
		return "", BadRequest("profile picture must be at most 5 MB")
	}
	user, ok, err := a.Store.GetUser(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("lookup user: %w", err)
	}
	if !ok {
		return "", NotFound("user not found")
	}

	key := "avatars/" + userID + "/" + util.NewID() + path.Ext(filename)
	if err := a.Objects.Put(ctx, key, r, size, contentType); err != nil {
		return "", fmt.Errorf("store avatar: %w", err)
	}
	if err := a.Store.UpdateUserFields(ctx, userID, map[string]any{"profile_picture_key": key}); err != nil {
		return "", fmt.Errorf("update avatar key: %w", err)
	}
	if old := user.ProfilePictureURL; old != "" && !strings.HasPrefix(old, "http") {
		if err := a.Objects.Delete(ctx, old); err != nil {
			a.Log.Warn("old avatar delete failed", "error", err, "user_id", userID)
		}
	}

	url, err := a.Objects.PresignGet(ctx, key, avatarURLTTL)
	if err != nil {
		a.Log.Warn("avatar presign failed", "error", err, "user_id", userID)
		return key, nil
	}
	return url, nil
}

// DeleteProfilePicture removes the avatar object and clears the key.
func (a *App) DeleteProfilePicture(ctx context.Context, userID string) error {
	user, ok, err := a.Store.GetUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("lookup user: %w", err)
	}
	if !ok {
		return NotFound("user not found")
	}
	if user.ProfilePictureURL == "" {
		return nil
	}
	if a.Objects != nil && !strings.HasPrefix(user.ProfilePictureURL, "http") {
		if err := a.Objects.Delete(ctx, user.ProfilePictureURL); err != nil {
			a.Log.Warn("avatar delete failed", "error", err, "user_id", userID)
		}
	}
	return a.Store.UpdateUserFields(ctx, userID, map[string]any{"profile_picture_key": ""})
}

// TouchPresence stamps the user online. Called from middleware on
// authenticated traffic; failures are the caller's to ignore.
func (a *App) TouchPresence(ctx context.Context, userID string) error {
	return a.Store.SetUserPresence(ctx, userID, true, a.now())
}

// resolveAvatar swaps a stored object key for a presigned URL. Errors
// leave the key in place.
func (a *App) resolveAvatar(ctx context.Context, user *domain.User) {
	key := user.ProfilePictureURL
	if a.Objects == nil || key == "" || strings.HasPrefix(key, "http") {
		return
	}
	url, err := a.Objects.PresignGet(ctx, key, avatarURLTTL)
	if err != nil {
		a.Log.Warn("avatar presign failed", "error", err, "user_id", user.ID)
		return
	}
	user.ProfilePictureURL = url
}
