package app

import (
	"context"
	"net/http"
	"testing"
)

func TestCreateDirectChatDefaults(t *testing.T) {
	a, _ := newTestApp(t)
	alice := registerUser(t, a, "alice", "alice@example.com")
	bob := registerUser(t, a, "bob", "bob@example.com")

	result, err := a.CreateChat(context.Background(), alice.ID, CreateChatInput{
		ParticipantIDs: []string{bob.ID},
	})
	if err != nil {
		t.Fatalf("create chat: %v", err)
	}
	if result.Existed {
		t.Fatal("first creation should not report an existing chat")
	}
	if result.Chat.Name != bob.FullName {
		t.Fatalf("direct chat should default to the other participant's name, got %q", result.Chat.Name)
	}
	if result.Chat.ParticipantCount != 2 {
		t.Fatalf("expected 2 participants, got %d", result.Chat.ParticipantCount)
	}
}

func TestDirectChatIsIdempotent(t *testing.T) {
	a, _ := newTestApp(t)
	alice := registerUser(t, a, "alice", "alice@example.com")
	bob := registerUser(t, a, "bob", "bob@example.com")

	first, err := a.CreateChat(context.Background(), alice.ID, CreateChatInput{
		ParticipantIDs: []string{bob.ID},
	})
	if err != nil {
		t.Fatalf("create chat: %v", err)
	}

	// Same pair from the other side must resolve to the same chat.
	second, err := a.CreateChat(context.Background(), bob.ID, CreateChatInput{
		ParticipantIDs: []string{alice.ID},
	})
	if err != nil {
		t.Fatalf("duplicate create: %v", err)
	}
	if !second.Existed {
		t.Fatal("duplicate creation should report the existing chat")
	}
	if second.Chat.ID != first.Chat.ID {
		t.Fatalf("expected chat %s, got %s", first.Chat.ID, second.Chat.ID)
	}
}

func TestDirectChatRequiresExactlyOneOther(t *testing.T) {
	a, _ := newTestApp(t)
	alice := registerUser(t, a, "alice", "alice@example.com")
	bob := registerUser(t, a, "bob", "bob@example.com")
	carol := registerUser(t, a, "carol", "carol@example.com")

	_, err := a.CreateChat(context.Background(), alice.ID, CreateChatInput{
		ParticipantIDs: []string{bob.ID, carol.ID},
	})
	wantStatus(t, err, http.StatusBadRequest)

	_, err = a.CreateChat(context.Background(), alice.ID, CreateChatInput{})
	wantStatus(t, err, http.StatusBadRequest)
}

func TestCreateChatRejectsUnknownParticipant(t *testing.T) {
	a, _ := newTestApp(t)
	alice := registerUser(t, a, "alice", "alice@example.com")

	_, err := a.CreateChat(context.Background(), alice.ID, CreateChatInput{
		ParticipantIDs: []string{"no-such-user"},
	})
	wantStatus(t, err, http.StatusBadRequest)
}

func TestGroupChatRequiresName(t *testing.T) {
	a, _ := newTestApp(t)
	alice := registerUser(t, a, "alice", "alice@example.com")
	bob := registerUser(t, a, "bob", "bob@example.com")

	_, err := a.CreateChat(context.Background(), alice.ID, CreateChatInput{
		IsGroup:        true,
		ParticipantIDs: []string{bob.ID},
	})
	wantStatus(t, err, http.StatusBadRequest)
}

func TestGroupCreatorIsSoleAdmin(t *testing.T) {
	a, _ := newTestApp(t)
	alice := registerUser(t, a, "alice", "alice@example.com")
	bob := registerUser(t, a, "bob", "bob@example.com")

	result, err := a.CreateChat(context.Background(), alice.ID, CreateChatInput{
		Name:           "team",
		IsGroup:        true,
		ParticipantIDs: []string{bob.ID},
	})
	if err != nil {
		t.Fatalf("create group: %v", err)
	}
	admins := 0
	for _, p := range result.Chat.Participants {
		if p.IsAdmin {
			admins++
			if p.UserID != alice.ID {
				t.Fatalf("unexpected admin %s", p.UserID)
			}
		}
	}
	if admins != 1 {
		t.Fatalf("expected exactly one admin, got %d", admins)
	}
}

func TestNonMemberCannotSeeChat(t *testing.T) {
	a, _ := newTestApp(t)
	alice := registerUser(t, a, "alice", "alice@example.com")
	bob := registerUser(t, a, "bob", "bob@example.com")
	eve := registerUser(t, a, "eve", "eve@example.com")

	result, err := a.CreateChat(context.Background(), alice.ID, CreateChatInput{
		ParticipantIDs: []string{bob.ID},
	})
	if err != nil {
		t.Fatalf("create chat: %v", err)
	}
	_, err = a.GetChat(context.Background(), eve.ID, result.Chat.ID)
	wantStatus(t, err, http.StatusForbidden)
}

func TestAddParticipantRules(t *testing.T) {
	a, _ := newTestApp(t)
	alice := registerUser(t, a, "alice", "alice@example.com")
	bob := registerUser(t, a, "bob", "bob@example.com")
	carol := registerUser(t, a, "carol", "carol@example.com")

	group, err := a.CreateChat(context.Background(), alice.ID, CreateChatInput{
		Name:           "team",
		IsGroup:        true,
		ParticipantIDs: []string{bob.ID},
	})
	if err != nil {
		t.Fatalf("create group: %v", err)
	}

	// Non-admin member cannot add.
	err = a.AddParticipant(context.Background(), bob.ID, group.Chat.ID, carol.ID, false)
	wantStatus(t, err, http.StatusForbidden)

	if err := a.AddParticipant(context.Background(), alice.ID, group.Chat.ID, carol.ID, false); err != nil {
		t.Fatalf("add participant: %v", err)
	}
	// Adding twice conflicts.
	err = a.AddParticipant(context.Background(), alice.ID, group.Chat.ID, carol.ID, false)
	wantStatus(t, err, http.StatusConflict)
}

func TestAddParticipantAsAdmin(t *testing.T) {
	a, _ := newTestApp(t)
	alice := registerUser(t, a, "alice", "alice@example.com")
	bob := registerUser(t, a, "bob", "bob@example.com")
	carol := registerUser(t, a, "carol", "carol@example.com")
	dave := registerUser(t, a, "dave", "dave@example.com")

	group, err := a.CreateChat(context.Background(), alice.ID, CreateChatInput{
		Name:           "team",
		IsGroup:        true,
		ParticipantIDs: []string{bob.ID},
	})
	if err != nil {
		t.Fatalf("create group: %v", err)
	}

	if err := a.AddParticipant(context.Background(), alice.ID, group.Chat.ID, carol.ID, true); err != nil {
		t.Fatalf("add admin participant: %v", err)
	}
	// The admin flag must stick: carol can now add members herself.
	if err := a.AddParticipant(context.Background(), carol.ID, group.Chat.ID, dave.ID, false); err != nil {
		t.Fatalf("admin-added participant should be able to add: %v", err)
	}
}

func TestSoleAdminCannotBeRemoved(t *testing.T) {
	a, _ := newTestApp(t)
	alice := registerUser(t, a, "alice", "alice@example.com")
	bob := registerUser(t, a, "bob", "bob@example.com")

	group, err := a.CreateChat(context.Background(), alice.ID, CreateChatInput{
		Name:           "team",
		IsGroup:        true,
		ParticipantIDs: []string{bob.ID},
	})
	if err != nil {
		t.Fatalf("create group: %v", err)
	}

	err = a.RemoveParticipant(context.Background(), alice.ID, group.Chat.ID, alice.ID)
	wantStatus(t, err, http.StatusBadRequest)

	err = a.LeaveChat(context.Background(), alice.ID, group.Chat.ID)
	wantStatus(t, err, http.StatusBadRequest)

	// Non-admin member can leave freely.
	if err := a.LeaveChat(context.Background(), bob.ID, group.Chat.ID); err != nil {
		t.Fatalf("bob leave: %v", err)
	}
	// With nobody else left, the admin may leave and the chat goes away.
	if err := a.LeaveChat(context.Background(), alice.ID, group.Chat.ID); err != nil {
		t.Fatalf("alice leave: %v", err)
	}
	_, err = a.GetChat(context.Background(), alice.ID, group.Chat.ID)
	wantStatus(t, err, http.StatusNotFound)
}

func TestLeaveDirectChatDeletesIt(t *testing.T) {
	a, _ := newTestApp(t)
	alice := registerUser(t, a, "alice", "alice@example.com")
	bob := registerUser(t, a, "bob", "bob@example.com")

	chat, err := a.CreateChat(context.Background(), alice.ID, CreateChatInput{
		ParticipantIDs: []string{bob.ID},
	})
	if err != nil {
		t.Fatalf("create chat: %v", err)
	}
	if err := a.LeaveChat(context.Background(), alice.ID, chat.Chat.ID); err != nil {
		t.Fatalf("leave: %v", err)
	}
	_, err = a.GetChat(context.Background(), bob.ID, chat.Chat.ID)
	wantStatus(t, err, http.StatusNotFound)
}

func TestUpdateChat(t *testing.T) {
	a, _ := newTestApp(t)
	alice := registerUser(t, a, "alice", "alice@example.com")
	bob := registerUser(t, a, "bob", "bob@example.com")

	group, err := a.CreateChat(context.Background(), alice.ID, CreateChatInput{
		Name:           "team",
		IsGroup:        true,
		ParticipantIDs: []string{bob.ID},
	})
	if err != nil {
		t.Fatalf("create group: %v", err)
	}

	name := "bob's team"
	_, err = a.UpdateChat(context.Background(), bob.ID, group.Chat.ID, UpdateChatInput{Name: &name})
	wantStatus(t, err, http.StatusForbidden)

	_, err = a.UpdateChat(context.Background(), alice.ID, group.Chat.ID, UpdateChatInput{})
	wantStatus(t, err, http.StatusBadRequest)

	name = "renamed team"
	renamed, err := a.UpdateChat(context.Background(), alice.ID, group.Chat.ID, UpdateChatInput{Name: &name})
	if err != nil {
		t.Fatalf("rename: %v", err)
	}
	if renamed.Name != "renamed team" {
		t.Fatalf("expected renamed chat, got %q", renamed.Name)
	}
}

func TestUpdateChatGroupFlagAndDirectRename(t *testing.T) {
	a, _ := newTestApp(t)
	alice := registerUser(t, a, "alice", "alice@example.com")
	bob := registerUser(t, a, "bob", "bob@example.com")

	direct, err := a.CreateChat(context.Background(), alice.ID, CreateChatInput{
		ParticipantIDs: []string{bob.ID},
	})
	if err != nil {
		t.Fatalf("create direct: %v", err)
	}

	// The creator may rename a direct chat and promote it to a group.
	name := "project"
	isGroup := true
	updated, err := a.UpdateChat(context.Background(), alice.ID, direct.Chat.ID, UpdateChatInput{
		Name:    &name,
		IsGroup: &isGroup,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "project" || !updated.IsGroup {
		t.Fatalf("unexpected chat after update: %+v", updated.Chat)
	}

	fetched, err := a.GetChat(context.Background(), bob.ID, direct.Chat.ID)
	if err != nil {
		t.Fatalf("get chat: %v", err)
	}
	if !fetched.IsGroup {
		t.Fatal("group flag update should persist")
	}
}
