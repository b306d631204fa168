package store

import (
	"context"
	"time"

	"github.com/ConstantineIIII/WhatsappClone/pkg/domain"
)

var userSortColumns = map[string]string{
	"created_at": "created_at",
	"username":   "username",
	"email":      "email",
	"last_seen":  "last_seen",
}

// ListUsers is the admin listing with search, sort, and pagination.
func (s *GormStore) ListUsers(ctx context.Context, q ListUsersQuery) ([]domain.User, int64, error) {
	page, limit := normalizePage(q.Page, q.Limit)
	query := s.db.WithContext(ctx).Model(&UserModel{})
	if q.Search != "" {
		pattern := "%" + q.Search + "%"
		query = query.Where(
			"username ILIKE ? OR email ILIKE ? OR full_name ILIKE ?",
			pattern, pattern, pattern,
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	column, ok := userSortColumns[q.SortBy]
	if !ok {
		column = "created_at"
	}
	direction := "DESC"
	if q.Order == "asc" {
		direction = "ASC"
	}

	var models []UserModel
	if err := query.
		Order(column + " " + direction).
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, err
	}
	out := make([]domain.User, 0, len(models))
	for _, m := range models {
		out = append(out, userToDomain(m))
	}
	return out, total, nil
}

func (s *GormStore) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&UserModel{}).Count(&n).Error
	return n, err
}

func (s *GormStore) CountActiveUsers(ctx context.Context, since time.Time) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).
		Model(&UserModel{}).
		Where("is_online = ? OR last_seen >= ?", true, since).
		Count(&n).Error
	return n, err
}

func (s *GormStore) CountBannedUsers(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).
		Model(&UserModel{}).
		Where("is_banned = ?", true).
		Count(&n).Error
	return n, err
}

func (s *GormStore) CountAdminUsers(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).
		Model(&UserModel{}).
		Where("is_admin = ?", true).
		Count(&n).Error
	return n, err
}

func (s *GormStore) CountUsersSince(ctx context.Context, since time.Time) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).
		Model(&UserModel{}).
		Where("created_at >= ?", since).
		Count(&n).Error
	return n, err
}

func (s *GormStore) CountChats(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&ChatModel{}).Count(&n).Error
	return n, err
}

func (s *GormStore) CountGroupChats(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).
		Model(&ChatModel{}).
		Where("is_group = ?", true).
		Count(&n).Error
	return n, err
}

func (s *GormStore) CountMessages(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&MessageModel{}).Count(&n).Error
	return n, err
}

func (s *GormStore) CountMessagesSince(ctx context.Context, since time.Time) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).
		Model(&MessageModel{}).
		Where("created_at >= ?", since).
		Count(&n).Error
	return n, err
}

func (s *GormStore) CountUserChats(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).
		Model(&ParticipantModel{}).
		Where("user_id = ?", userID).
		Count(&n).Error
	return n, err
}

func (s *GormStore) CountUserMessages(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).
		Model(&MessageModel{}).
		Where("sender_id = ?", userID).
		Count(&n).Error
	return n, err
}

func (s *GormStore) CountUserSessions(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).
		Model(&SessionModel{}).
		Where("user_id = ?", userID).
		Count(&n).Error
	return n, err
}

func (s *GormStore) RecentUserMessages(ctx context.Context, userID string, limit int) ([]domain.Message, error) {
	if limit < 1 || limit > 50 {
		limit = 10
	}
	var models []MessageModel
	err := s.db.WithContext(ctx).
		Where("sender_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	out := make([]domain.Message, 0, len(models))
	for _, m := range models {
		out = append(out, messageToDomain(m))
	}
	return out, nil
}

// UserGrowth buckets signups per day over the trailing window. Days
// with no signups are filled with zeros so charts get a full series.
func (s *GormStore) UserGrowth(ctx context.Context, days int) ([]domain.GrowthPoint, error) {
	if days < 1 || days > 365 {
		days = 30
	}
	start := time.Now().UTC().AddDate(0, 0, -days+1).Truncate(24 * time.Hour)

	var rows []struct {
		Day   time.Time
		Count int64
	}
	err := s.db.WithContext(ctx).
		Raw(`SELECT date_trunc('day', created_at) AS day, COUNT(*) AS count
		     FROM users
		     WHERE created_at >= ?
		     GROUP BY day
		     ORDER BY day ASC`, start).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.Day.UTC().Format("2006-01-02")] = r.Count
	}
	out := make([]domain.GrowthPoint, 0, days)
	for i := 0; i < days; i++ {
		date := start.AddDate(0, 0, i).Format("2006-01-02")
		out = append(out, domain.GrowthPoint{Date: date, Count: counts[date]})
	}
	return out, nil
}

func (s *GormStore) RecentUsers(ctx context.Context, limit int) ([]domain.User, error) {
	if limit < 1 || limit > 50 {
		limit = 5
	}
	var models []UserModel
	err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	out := make([]domain.User, 0, len(models))
	for _, m := range models {
		out = append(out, userToDomain(m))
	}
	return out, nil
}

func (s *GormStore) TopSenders(ctx context.Context, limit int) ([]domain.TopSender, error) {
	if limit < 1 || limit > 50 {
		limit = 5
	}
	var rows []domain.TopSender
	err := s.db.WithContext(ctx).
		Raw(`SELECT m.sender_id AS user_id, u.username, u.full_name, COUNT(*) AS message_count
		     FROM messages m
		     JOIN users u ON u.id = m.sender_id
		     GROUP BY m.sender_id, u.username, u.full_name
		     ORDER BY message_count DESC
		     LIMIT ?`, limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
