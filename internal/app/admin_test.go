package app

import (
	"context"
	"net/http"
	"testing"

	"github.com/ConstantineIIII/WhatsappClone/pkg/store"
)

func TestStats(t *testing.T) {
	f := newChatFixture(t)
	f.send(t, f.alice.ID, "one")
	f.send(t, f.bob.ID, "two")

	stats, err := f.app.Stats(context.Background())
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalUsers != 2 {
		t.Fatalf("expected 2 users, got %d", stats.TotalUsers)
	}
	if stats.TotalChats != 1 || stats.GroupChats != 0 {
		t.Fatalf("unexpected chat counts: %+v", stats)
	}
	if stats.TotalMessages != 2 || stats.MessagesToday != 2 {
		t.Fatalf("unexpected message counts: %+v", stats)
	}
	if stats.NewUsersToday != 2 {
		t.Fatalf("expected 2 signups today, got %d", stats.NewUsersToday)
	}
}

func TestDashboard(t *testing.T) {
	f := newChatFixture(t)
	f.send(t, f.alice.ID, "one")
	f.send(t, f.alice.ID, "two")
	f.send(t, f.bob.ID, "three")

	dash, err := f.app.Dashboard(context.Background())
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if len(dash.UserGrowth) != 30 {
		t.Fatalf("expected a 30-day growth series, got %d points", len(dash.UserGrowth))
	}
	if dash.UserGrowth[29].Count != 2 {
		t.Fatalf("expected 2 signups on the last day, got %d", dash.UserGrowth[29].Count)
	}
	if len(dash.TopSenders) != 2 || dash.TopSenders[0].UserID != f.alice.ID {
		t.Fatalf("unexpected top senders: %+v", dash.TopSenders)
	}
	if len(dash.RecentUsers) != 2 {
		t.Fatalf("expected 2 recent users, got %d", len(dash.RecentUsers))
	}
}

func TestAdminUserDetail(t *testing.T) {
	f := newChatFixture(t)
	f.send(t, f.alice.ID, "one")
	f.send(t, f.alice.ID, "two")

	detail, err := f.app.AdminUserDetail(context.Background(), f.alice.ID)
	if err != nil {
		t.Fatalf("detail: %v", err)
	}
	if detail.ChatCount != 1 || detail.MessageCount != 2 {
		t.Fatalf("unexpected counts: %+v", detail)
	}
	if detail.SessionCount != 1 {
		t.Fatalf("expected 1 session from registration, got %d", detail.SessionCount)
	}
	if len(detail.RecentMessages) != 2 {
		t.Fatalf("expected 2 recent messages, got %d", len(detail.RecentMessages))
	}

	_, err = f.app.AdminUserDetail(context.Background(), "missing")
	wantStatus(t, err, http.StatusNotFound)
}

func TestAdminUpdateUserConflicts(t *testing.T) {
	a, _ := newTestApp(t)
	alice := registerUser(t, a, "alice", "alice@example.com")
	registerUser(t, a, "bob", "bob@example.com")

	taken := "bob@example.com"
	_, err := a.AdminUpdateUser(context.Background(), alice.ID, AdminUpdateUserInput{Email: &taken})
	wantStatus(t, err, http.StatusConflict)

	promote := true
	updated, err := a.AdminUpdateUser(context.Background(), alice.ID, AdminUpdateUserInput{IsAdmin: &promote})
	if err != nil {
		t.Fatalf("promote: %v", err)
	}
	if !updated.IsAdmin {
		t.Fatal("expected alice to be admin")
	}
}

func TestAdminDeleteUser(t *testing.T) {
	f := newChatFixture(t)
	f.send(t, f.bob.ID, "doomed message")

	err := f.app.AdminDeleteUser(context.Background(), f.alice.ID, f.alice.ID)
	wantStatus(t, err, http.StatusBadRequest)

	if err := f.app.AdminDeleteUser(context.Background(), f.alice.ID, f.bob.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := f.app.Profile(context.Background(), f.bob.ID); err == nil {
		t.Fatal("bob should be gone")
	}
	// Bob's messages go with him.
	feed, err := f.app.Feed(context.Background(), f.alice.ID, f.chatID, FeedQuery{})
	if err != nil {
		t.Fatalf("feed: %v", err)
	}
	if len(feed) != 0 {
		t.Fatalf("expected empty feed, got %d messages", len(feed))
	}
}

func TestAdminListUsersSearch(t *testing.T) {
	a, _ := newTestApp(t)
	registerUser(t, a, "alice", "alice@example.com")
	registerUser(t, a, "bob", "bob@example.com")

	users, total, err := a.AdminListUsers(context.Background(), store.ListUsersQuery{Search: "ali"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 1 || len(users) != 1 || users[0].Username != "alice" {
		t.Fatalf("unexpected search result: total=%d users=%+v", total, users)
	}
}

func TestLogsListSessions(t *testing.T) {
	a, _ := newTestApp(t)
	user := registerUser(t, a, "alice", "alice@example.com")
	if _, err := a.Login(context.Background(), "alice@example.com", "password123", SessionInfo{}); err != nil {
		t.Fatalf("login: %v", err)
	}

	sessions, total, err := a.Logs(context.Background(), user.ID, 1, 20)
	if err != nil {
		t.Fatalf("logs: %v", err)
	}
	if total != 2 || len(sessions) != 2 {
		t.Fatalf("expected 2 sessions (register + login), got %d", total)
	}
}
