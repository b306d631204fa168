package domain

import "time"

// AdminStats is the platform-wide aggregate snapshot.
type AdminStats struct {
	TotalUsers    int64 `json:"totalUsers"`
	ActiveUsers   int64 `json:"activeUsers"`
	BannedUsers   int64 `json:"bannedUsers"`
	AdminUsers    int64 `json:"adminUsers"`
	NewUsersToday int64 `json:"newUsersToday"`
	TotalChats    int64 `json:"totalChats"`
	GroupChats    int64 `json:"groupChats"`
	TotalMessages int64 `json:"totalMessages"`
	MessagesToday int64 `json:"messagesToday"`
}

// GrowthPoint is one day of the signup growth series.
type GrowthPoint struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

// TopSender ranks a user by message volume.
type TopSender struct {
	UserID       string `json:"userId"`
	Username     string `json:"username"`
	FullName     string `json:"fullName"`
	MessageCount int64  `json:"messageCount"`
}

// UserDetail is a user enriched with activity counts for the admin view.
type UserDetail struct {
	User
	ChatCount      int64     `json:"chatCount"`
	MessageCount   int64     `json:"messageCount"`
	SessionCount   int64     `json:"sessionCount"`
	RecentMessages []Message `json:"recentMessages,omitempty"`
}

// Dashboard is the admin landing-page payload.
type Dashboard struct {
	Stats       AdminStats    `json:"stats"`
	UserGrowth  []GrowthPoint `json:"userGrowth"`
	RecentUsers []User        `json:"recentUsers"`
	TopSenders  []TopSender   `json:"topSenders"`
	GeneratedAt time.Time     `json:"generatedAt"`
}

// ServiceHealth is the per-dependency health report.
type ServiceHealth struct {
	Status   string            `json:"status"`
	Services map[string]string `json:"services"`
}
