package app

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/ConstantineIIII/WhatsappClone/pkg/domain"
)

type chatFixture struct {
	app   *App
	store interface {
		CreateMessage(ctx context.Context, msg domain.Message) error
	}
	alice  domain.User
	bob    domain.User
	chatID string
}

func newChatFixture(t *testing.T) chatFixture {
	t.Helper()
	a, st := newTestApp(t)
	alice := registerUser(t, a, "alice", "alice@example.com")
	bob := registerUser(t, a, "bob", "bob@example.com")
	chat, err := a.CreateChat(context.Background(), alice.ID, CreateChatInput{
		ParticipantIDs: []string{bob.ID},
	})
	if err != nil {
		t.Fatalf("create chat: %v", err)
	}
	return chatFixture{app: a, store: st, alice: alice, bob: bob, chatID: chat.Chat.ID}
}

func (f chatFixture) send(t *testing.T, senderID, content string) domain.Message {
	t.Helper()
	msg, err := f.app.SendMessage(context.Background(), senderID, SendMessageInput{
		ChatID:  f.chatID,
		Content: content,
	})
	if err != nil {
		t.Fatalf("send %q: %v", content, err)
	}
	return msg
}

// seed inserts a message with a backdated timestamp, bypassing the app
// layer so window checks can be exercised.
func (f chatFixture) seed(t *testing.T, senderID string, age time.Duration) domain.Message {
	t.Helper()
	created := time.Now().UTC().Add(-age)
	msg := domain.Message{
		ID:        "seeded-" + created.Format("150405.000000000"),
		ChatID:    f.chatID,
		SenderID:  senderID,
		Content:   "seeded message",
		Type:      domain.MessageText,
		CreatedAt: created,
		UpdatedAt: created,
	}
	if err := f.store.CreateMessage(context.Background(), msg); err != nil {
		t.Fatalf("seed message: %v", err)
	}
	return msg
}

func TestSendMessageValidation(t *testing.T) {
	f := newChatFixture(t)
	eve := registerUser(t, f.app, "eve", "eve@example.com")

	_, err := f.app.SendMessage(context.Background(), eve.ID, SendMessageInput{
		ChatID:  f.chatID,
		Content: "let me in",
	})
	wantStatus(t, err, http.StatusForbidden)

	_, err = f.app.SendMessage(context.Background(), f.alice.ID, SendMessageInput{
		ChatID: f.chatID,
	})
	wantStatus(t, err, http.StatusBadRequest)

	_, err = f.app.SendMessage(context.Background(), f.alice.ID, SendMessageInput{
		ChatID:  f.chatID,
		Content: "hello",
		Type:    "sticker",
	})
	wantStatus(t, err, http.StatusBadRequest)

	_, err = f.app.SendMessage(context.Background(), f.alice.ID, SendMessageInput{
		ChatID: f.chatID,
		Type:   domain.MessageImage,
	})
	wantStatus(t, err, http.StatusBadRequest)
}

func TestReplyMustBeInSameChat(t *testing.T) {
	f := newChatFixture(t)
	carol := registerUser(t, f.app, "carol", "carol@example.com")
	other, err := f.app.CreateChat(context.Background(), f.alice.ID, CreateChatInput{
		ParticipantIDs: []string{carol.ID},
	})
	if err != nil {
		t.Fatalf("create other chat: %v", err)
	}
	foreign, err := f.app.SendMessage(context.Background(), f.alice.ID, SendMessageInput{
		ChatID:  other.Chat.ID,
		Content: "elsewhere",
	})
	if err != nil {
		t.Fatalf("send foreign: %v", err)
	}

	_, err = f.app.SendMessage(context.Background(), f.alice.ID, SendMessageInput{
		ChatID:    f.chatID,
		Content:   "replying across chats",
		ReplyToID: foreign.ID,
	})
	wantStatus(t, err, http.StatusBadRequest)

	local := f.send(t, f.bob.ID, "reply to me")
	reply, err := f.app.SendMessage(context.Background(), f.alice.ID, SendMessageInput{
		ChatID:    f.chatID,
		Content:   "a reply",
		ReplyToID: local.ID,
	})
	if err != nil {
		t.Fatalf("reply: %v", err)
	}
	if reply.ReplyToID != local.ID {
		t.Fatalf("expected reply-to %s, got %s", local.ID, reply.ReplyToID)
	}
}

func TestEditWindow(t *testing.T) {
	f := newChatFixture(t)

	fresh := f.send(t, f.alice.ID, "typo here")
	edited, err := f.app.EditMessage(context.Background(), f.alice.ID, fresh.ID, "typo fixed")
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	if !edited.IsEdited || edited.Content != "typo fixed" {
		t.Fatalf("unexpected edit result: %+v", edited)
	}

	// Only the sender may edit.
	_, err = f.app.EditMessage(context.Background(), f.bob.ID, fresh.ID, "hijacked")
	wantStatus(t, err, http.StatusForbidden)

	// Past the window the edit is rejected as a bad request, not a
	// permission failure.
	stale := f.seed(t, f.alice.ID, 16*time.Minute)
	_, err = f.app.EditMessage(context.Background(), f.alice.ID, stale.ID, "too late")
	wantStatus(t, err, http.StatusBadRequest)
}

func TestDeleteWindow(t *testing.T) {
	f := newChatFixture(t)

	fresh := f.send(t, f.bob.ID, "delete me")
	if err := f.app.DeleteMessage(context.Background(), f.bob.ID, fresh.ID); err != nil {
		t.Fatalf("delete fresh: %v", err)
	}

	stale := f.seed(t, f.bob.ID, 61*time.Minute)
	err := f.app.DeleteMessage(context.Background(), f.bob.ID, stale.ID)
	wantStatus(t, err, http.StatusBadRequest)

	// The chat creator can delete regardless of age.
	if err := f.app.DeleteMessage(context.Background(), f.alice.ID, stale.ID); err != nil {
		t.Fatalf("creator delete: %v", err)
	}
	_, err = f.app.EditMessage(context.Background(), f.bob.ID, stale.ID, "gone")
	wantStatus(t, err, http.StatusNotFound)
}

func TestFeedMarksMessagesRead(t *testing.T) {
	f := newChatFixture(t)
	f.send(t, f.alice.ID, "first")
	f.send(t, f.alice.ID, "second")

	chats, _, err := f.app.ListChats(context.Background(), f.bob.ID, 1, 20)
	if err != nil {
		t.Fatalf("list chats: %v", err)
	}
	if chats[0].UnreadCount != 2 {
		t.Fatalf("expected 2 unread, got %d", chats[0].UnreadCount)
	}

	feed, err := f.app.Feed(context.Background(), f.bob.ID, f.chatID, FeedQuery{})
	if err != nil {
		t.Fatalf("feed: %v", err)
	}
	if len(feed) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(feed))
	}
	if feed[0].Content != "first" || feed[1].Content != "second" {
		t.Fatalf("feed should be chronological, got %q then %q", feed[0].Content, feed[1].Content)
	}
	for _, m := range feed {
		if m.ViewerStatus != domain.StatusRead {
			t.Fatalf("message %s should be marked read", m.ID)
		}
	}

	chats, _, err = f.app.ListChats(context.Background(), f.bob.ID, 1, 20)
	if err != nil {
		t.Fatalf("list chats after feed: %v", err)
	}
	if chats[0].UnreadCount != 0 {
		t.Fatalf("expected 0 unread after reading, got %d", chats[0].UnreadCount)
	}
}

func TestOwnMessagesAreNeverUnread(t *testing.T) {
	f := newChatFixture(t)
	f.send(t, f.alice.ID, "from alice")

	chats, _, err := f.app.ListChats(context.Background(), f.alice.ID, 1, 20)
	if err != nil {
		t.Fatalf("list chats: %v", err)
	}
	if chats[0].UnreadCount != 0 {
		t.Fatalf("sender's own message counted as unread: %d", chats[0].UnreadCount)
	}
}

func TestMessageStatusVisibility(t *testing.T) {
	f := newChatFixture(t)
	msg := f.send(t, f.alice.ID, "status check")

	if err := f.app.MarkRead(context.Background(), f.bob.ID, msg.ID); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	statuses, err := f.app.MessageStatusList(context.Background(), f.alice.ID, msg.ID)
	if err != nil {
		t.Fatalf("statuses: %v", err)
	}
	if len(statuses) != 1 || statuses[0].UserID != f.bob.ID || statuses[0].Status != domain.StatusRead {
		t.Fatalf("unexpected statuses: %+v", statuses)
	}

	eve := registerUser(t, f.app, "eve", "eve@example.com")
	_, err = f.app.MessageStatusList(context.Background(), eve.ID, msg.ID)
	wantStatus(t, err, http.StatusForbidden)
}

func TestSearchMessages(t *testing.T) {
	f := newChatFixture(t)
	f.send(t, f.alice.ID, "the quarterly report is ready")
	f.send(t, f.bob.ID, "unrelated chatter")

	_, err := f.app.SearchMessages(context.Background(), f.alice.ID, "q", "", 0)
	wantStatus(t, err, http.StatusBadRequest)

	results, err := f.app.SearchMessages(context.Background(), f.alice.ID, "QUARTERLY", "", 0)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 1 || results[0].Content != "the quarterly report is ready" {
		t.Fatalf("unexpected results: %+v", results)
	}

	// Search is scoped to the caller's chats.
	eve := registerUser(t, f.app, "eve", "eve@example.com")
	results, err = f.app.SearchMessages(context.Background(), eve.ID, "quarterly", "", 0)
	if err != nil {
		t.Fatalf("search as outsider: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("outsider should see nothing, got %+v", results)
	}
}
