package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ConstantineIIII/WhatsappClone/pkg/domain"
)

// GormStore is the Postgres-backed Store.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore opens the database and runs auto-migration.
func NewGormStore(dsn string) (*GormStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.AutoMigrate(
		&UserModel{},
		&ChatModel{},
		&ParticipantModel{},
		&MessageModel{},
		&MessageStatusModel{},
		&SessionModel{},
	); err != nil {
		return nil, fmt.Errorf("auto-migrate: %w", err)
	}
	return &GormStore{db: db}, nil
}

// Ping verifies database connectivity.
func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the underlying connection pool.
func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *GormStore) CreateUser(ctx context.Context, u domain.User) error {
	m := userFromDomain(u)
	now := time.Now().UTC()
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	m.UpdatedAt = now
	if err := s.db.WithContext(ctx).Create(&m).Error; err != nil {
		return translateUserConflict(err)
	}
	return nil
}

func (s *GormStore) GetUser(ctx context.Context, id string) (domain.User, bool, error) {
	var m UserModel
	err := s.db.WithContext(ctx).First(&m, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.User{}, false, nil
	}
	if err != nil {
		return domain.User{}, false, err
	}
	return userToDomain(m), true, nil
}

func (s *GormStore) GetUserByEmail(ctx context.Context, email string) (domain.User, bool, error) {
	var m UserModel
	err := s.db.WithContext(ctx).First(&m, "lower(email) = lower(?)", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.User{}, false, nil
	}
	if err != nil {
		return domain.User{}, false, err
	}
	return userToDomain(m), true, nil
}

func (s *GormStore) GetUserByUsername(ctx context.Context, username string) (domain.User, bool, error) {
	var m UserModel
	err := s.db.WithContext(ctx).First(&m, "lower(username) = lower(?)", username).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.User{}, false, nil
	}
	if err != nil {
		return domain.User{}, false, err
	}
	return userToDomain(m), true, nil
}

func (s *GormStore) UpdateUserFields(ctx context.Context, id string, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	fields["updated_at"] = time.Now().UTC()
	err := s.db.WithContext(ctx).
		Model(&UserModel{}).
		Where("id = ?", id).
		Updates(fields).Error
	return translateUserConflict(err)
}

func (s *GormStore) SetUserPresence(ctx context.Context, id string, online bool, lastSeen time.Time) error {
	return s.db.WithContext(ctx).
		Model(&UserModel{}).
		Where("id = ?", id).
		Updates(map[string]any{"is_online": online, "last_seen": lastSeen}).Error
}

func (s *GormStore) DeleteUser(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&SessionModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&MessageStatusModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("message_id IN (?)",
			tx.Model(&MessageModel{}).Select("id").Where("sender_id = ?", id),
		).Delete(&MessageStatusModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("sender_id = ?", id).Delete(&MessageModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&ParticipantModel{}).Error; err != nil {
			return err
		}
		return tx.Delete(&UserModel{}, "id = ?", id).Error
	})
}

// SetUserBan flips the ban flag; banning also deactivates every active
// session in the same transaction and reports which ones.
func (s *GormStore) SetUserBan(ctx context.Context, id string, banned bool, reason string) ([]domain.Session, error) {
	var deactivated []domain.Session
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		fields := map[string]any{
			"is_banned":  banned,
			"ban_reason": reason,
			"updated_at": time.Now().UTC(),
		}
		if banned {
			fields["is_online"] = false
		}
		if err := tx.Model(&UserModel{}).Where("id = ?", id).Updates(fields).Error; err != nil {
			return err
		}
		if !banned {
			return nil
		}
		var sessions []SessionModel
		if err := tx.Where("user_id = ? AND is_active = ?", id, true).Find(&sessions).Error; err != nil {
			return err
		}
		if len(sessions) == 0 {
			return nil
		}
		if err := tx.Model(&SessionModel{}).
			Where("user_id = ? AND is_active = ?", id, true).
			Update("is_active", false).Error; err != nil {
			return err
		}
		for _, m := range sessions {
			deactivated = append(deactivated, sessionToDomain(m))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deactivated, nil
}

func (s *GormStore) CreateSession(ctx context.Context, sess domain.Session) error {
	m := SessionModel{
		ID:         sess.ID,
		UserID:     sess.UserID,
		TokenID:    sess.TokenID,
		DeviceInfo: sess.DeviceInfo,
		IPAddress:  sess.IPAddress,
		IsActive:   sess.IsActive,
		CreatedAt:  sess.CreatedAt,
		ExpiresAt:  sess.ExpiresAt,
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	return s.db.WithContext(ctx).Create(&m).Error
}

func (s *GormStore) DeactivateSession(ctx context.Context, tokenID string) error {
	return s.db.WithContext(ctx).
		Model(&SessionModel{}).
		Where("token_id = ?", tokenID).
		Update("is_active", false).Error
}

func (s *GormStore) ListSessions(ctx context.Context, userID string, page, limit int) ([]domain.Session, int64, error) {
	page, limit = normalizePage(page, limit)
	q := s.db.WithContext(ctx).Model(&SessionModel{})
	if userID != "" {
		q = q.Where("user_id = ?", userID)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var models []SessionModel
	if err := q.Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, err
	}
	out := make([]domain.Session, 0, len(models))
	for _, m := range models {
		out = append(out, sessionToDomain(m))
	}
	return out, total, nil
}

func translateUserConflict(err error) error {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "username"):
		if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique") {
			return ErrDuplicateUsername
		}
	case strings.Contains(msg, "email"):
		if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique") {
			return ErrDuplicateEmail
		}
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateEmail
	}
	return err
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}
