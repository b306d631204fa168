package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ConstantineIIII/WhatsappClone/pkg/domain"
)

// MemoryStore is an in-memory Store used in tests and local runs
// without Postgres. Semantics mirror GormStore.
type MemoryStore struct {
	mu           sync.RWMutex
	users        map[string]domain.User
	chats        map[string]domain.Chat
	pairKeys     map[string]string // pair key -> chat id
	participants map[string]map[string]domain.Participant
	messages     map[string]domain.Message
	statuses     map[string]map[string]domain.MessageStatus
	sessions     map[string]domain.Session
}

// NewMemoryStore builds an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:        make(map[string]domain.User),
		chats:        make(map[string]domain.Chat),
		pairKeys:     make(map[string]string),
		participants: make(map[string]map[string]domain.Participant),
		messages:     make(map[string]domain.Message),
		statuses:     make(map[string]map[string]domain.MessageStatus),
		sessions:     make(map[string]domain.Session),
	}
}

func (s *MemoryStore) Ping(context.Context) error { return nil }
func (s *MemoryStore) Close() error               { return nil }

func (s *MemoryStore) CreateUser(_ context.Context, u domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return ErrDuplicateEmail
		}
		if strings.EqualFold(existing.Username, u.Username) {
			return ErrDuplicateUsername
		}
	}
	now := time.Now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	s.users[u.ID] = u
	return nil
}

func (s *MemoryStore) GetUser(_ context.Context, id string) (domain.User, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	return u, ok, nil
}

func (s *MemoryStore) GetUserByEmail(_ context.Context, email string) (domain.User, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return u, true, nil
		}
	}
	return domain.User{}, false, nil
}

func (s *MemoryStore) GetUserByUsername(_ context.Context, username string) (domain.User, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Username, username) {
			return u, true, nil
		}
	}
	return domain.User{}, false, nil
}

func (s *MemoryStore) UpdateUserFields(_ context.Context, id string, fields map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil
	}
	for key, value := range fields {
		switch key {
		case "full_name":
			u.FullName, _ = value.(string)
		case "bio":
			u.Bio, _ = value.(string)
		case "phone_number":
			u.PhoneNumber, _ = value.(string)
		case "status_message":
			u.StatusMessage, _ = value.(string)
		case "email":
			email, _ := value.(string)
			for otherID, other := range s.users {
				if otherID != id && strings.EqualFold(other.Email, email) {
					return ErrDuplicateEmail
				}
			}
			u.Email = email
		case "username":
			username, _ := value.(string)
			for otherID, other := range s.users {
				if otherID != id && strings.EqualFold(other.Username, username) {
					return ErrDuplicateUsername
				}
			}
			u.Username = username
		case "password_hash":
			u.PasswordHash, _ = value.(string)
		case "profile_picture_key":
			u.ProfilePictureURL, _ = value.(string)
		case "is_admin":
			u.IsAdmin, _ = value.(bool)
		case "is_online":
			u.IsOnline, _ = value.(bool)
		}
	}
	u.UpdatedAt = time.Now().UTC()
	s.users[id] = u
	return nil
}

func (s *MemoryStore) SetUserPresence(_ context.Context, id string, online bool, lastSeen time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil
	}
	u.IsOnline = online
	u.LastSeen = &lastSeen
	s.users[id] = u
	return nil
}

func (s *MemoryStore) DeleteUser(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, id)
	for sid, sess := range s.sessions {
		if sess.UserID == id {
			delete(s.sessions, sid)
		}
	}
	for _, members := range s.participants {
		delete(members, id)
	}
	for mid, msg := range s.messages {
		if msg.SenderID == id {
			delete(s.messages, mid)
			delete(s.statuses, mid)
		}
	}
	for _, byUser := range s.statuses {
		delete(byUser, id)
	}
	return nil
}

func (s *MemoryStore) SetUserBan(_ context.Context, id string, banned bool, reason string) ([]domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	u.IsBanned = banned
	u.BanReason = reason
	if banned {
		u.IsOnline = false
	}
	u.UpdatedAt = time.Now().UTC()
	s.users[id] = u
	if !banned {
		return nil, nil
	}
	var deactivated []domain.Session
	for sid, sess := range s.sessions {
		if sess.UserID == id && sess.IsActive {
			sess.IsActive = false
			s.sessions[sid] = sess
			deactivated = append(deactivated, sess)
		}
	}
	return deactivated, nil
}

func (s *MemoryStore) CreateChat(_ context.Context, chat domain.Chat, participants []domain.Participant, pairKey string) (domain.Chat, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !chat.IsGroup && pairKey != "" {
		if existingID, ok := s.pairKeys[pairKey]; ok {
			return s.chats[existingID], false, nil
		}
	}
	now := time.Now().UTC()
	if chat.CreatedAt.IsZero() {
		chat.CreatedAt = now
		chat.UpdatedAt = now
	}
	s.chats[chat.ID] = chat
	if !chat.IsGroup && pairKey != "" {
		s.pairKeys[pairKey] = chat.ID
	}
	members := make(map[string]domain.Participant, len(participants))
	for _, p := range participants {
		p.ChatID = chat.ID
		p.JoinedAt = now
		members[p.UserID] = p
	}
	s.participants[chat.ID] = members
	return chat, true, nil
}

func (s *MemoryStore) GetChat(_ context.Context, id string) (domain.Chat, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.chats[id]
	return c, ok, nil
}

func (s *MemoryStore) ListChats(_ context.Context, userID string, page, limit int) ([]domain.ChatSummary, int64, error) {
	page, limit = normalizePage(page, limit)
	s.mu.RLock()
	defer s.mu.RUnlock()

	var chats []domain.Chat
	for id, members := range s.participants {
		if _, ok := members[userID]; ok {
			chats = append(chats, s.chats[id])
		}
	}
	sort.Slice(chats, func(i, j int) bool {
		return chats[i].UpdatedAt.After(chats[j].UpdatedAt)
	})
	total := int64(len(chats))

	start := (page - 1) * limit
	if start > len(chats) {
		start = len(chats)
	}
	end := start + limit
	if end > len(chats) {
		end = len(chats)
	}

	out := make([]domain.ChatSummary, 0, end-start)
	for _, c := range chats[start:end] {
		summary := domain.ChatSummary{
			Chat:         c,
			Participants: s.participantList(c.ID),
			UnreadCount:  s.unreadCount(c.ID, userID),
		}
		summary.ParticipantCount = len(summary.Participants)
		if last, ok := s.lastMessage(c.ID); ok {
			summary.LastMessage = last.Content
			t := last.CreatedAt
			summary.LastMessageTime = &t
		}
		out = append(out, summary)
	}
	return out, total, nil
}

// callers hold s.mu
func (s *MemoryStore) participantList(chatID string) []domain.Participant {
	members := s.participants[chatID]
	out := make([]domain.Participant, 0, len(members))
	for _, p := range members {
		if u, ok := s.users[p.UserID]; ok {
			p.Username = u.Username
			p.FullName = u.FullName
			p.ProfilePictureURL = u.ProfilePictureURL
			p.IsOnline = u.IsOnline
			p.LastSeen = u.LastSeen
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].JoinedAt.Equal(out[j].JoinedAt) {
			return out[i].UserID < out[j].UserID
		}
		return out[i].JoinedAt.Before(out[j].JoinedAt)
	})
	return out
}

// callers hold s.mu
func (s *MemoryStore) lastMessage(chatID string) (domain.Message, bool) {
	var last domain.Message
	found := false
	for _, m := range s.messages {
		if m.ChatID != chatID {
			continue
		}
		if !found || m.CreatedAt.After(last.CreatedAt) {
			last = m
			found = true
		}
	}
	return last, found
}

// callers hold s.mu
func (s *MemoryStore) unreadCount(chatID, userID string) int {
	count := 0
	for id, m := range s.messages {
		if m.ChatID != chatID || m.SenderID == userID {
			continue
		}
		st, ok := s.statuses[id][userID]
		if !ok || st.Status != domain.StatusRead {
			count++
		}
	}
	return count
}

func (s *MemoryStore) UpdateChatFields(_ context.Context, chatID string, fields map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.chats[chatID]
	if !ok {
		return nil
	}
	for key, value := range fields {
		switch key {
		case "name":
			c.Name, _ = value.(string)
		case "is_group":
			c.IsGroup, _ = value.(bool)
		}
	}
	c.UpdatedAt = time.Now().UTC()
	s.chats[chatID] = c
	return nil
}

func (s *MemoryStore) TouchChat(_ context.Context, chatID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.chats[chatID]
	if !ok {
		return nil
	}
	c.UpdatedAt = at
	s.chats[chatID] = c
	return nil
}

func (s *MemoryStore) DeleteChat(_ context.Context, chatID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.chats, chatID)
	delete(s.participants, chatID)
	for key, id := range s.pairKeys {
		if id == chatID {
			delete(s.pairKeys, key)
		}
	}
	for id, m := range s.messages {
		if m.ChatID == chatID {
			delete(s.messages, id)
			delete(s.statuses, id)
		}
	}
	return nil
}

func (s *MemoryStore) GetMembership(_ context.Context, chatID, userID string) (domain.Participant, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.participants[chatID][userID]
	return p, ok, nil
}

func (s *MemoryStore) ListParticipants(_ context.Context, chatID string) ([]domain.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.participantList(chatID), nil
}

func (s *MemoryStore) AddParticipant(_ context.Context, p domain.Participant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	members, ok := s.participants[p.ChatID]
	if !ok {
		members = make(map[string]domain.Participant)
		s.participants[p.ChatID] = members
	}
	if _, exists := members[p.UserID]; exists {
		return ErrAlreadyMember
	}
	if p.JoinedAt.IsZero() {
		p.JoinedAt = time.Now().UTC()
	}
	members[p.UserID] = p
	return nil
}

func (s *MemoryStore) RemoveParticipant(_ context.Context, chatID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.participants[chatID], userID)
	return nil
}

func (s *MemoryStore) CountChatAdmins(_ context.Context, chatID string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for _, p := range s.participants[chatID] {
		if p.IsAdmin {
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) CountParticipants(_ context.Context, chatID string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.participants[chatID])), nil
}

func (s *MemoryStore) CreateMessage(_ context.Context, msg domain.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = now
		msg.UpdatedAt = now
	}
	s.messages[msg.ID] = msg
	return nil
}

func (s *MemoryStore) GetMessage(_ context.Context, id string) (domain.Message, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.messages[id]
	return m, ok, nil
}

func (s *MemoryStore) ListMessages(_ context.Context, chatID, viewerID string, page MessagePage) ([]domain.Message, error) {
	p, limit := normalizePage(page.Page, page.Limit)
	s.mu.RLock()
	defer s.mu.RUnlock()

	var msgs []domain.Message
	for _, m := range s.messages {
		if m.ChatID != chatID {
			continue
		}
		if page.Before != nil && !m.CreatedAt.Before(*page.Before) {
			continue
		}
		msgs = append(msgs, m)
	}
	sort.Slice(msgs, func(i, j int) bool {
		return msgs[i].CreatedAt.After(msgs[j].CreatedAt)
	})

	start := (p - 1) * limit
	if start > len(msgs) {
		start = len(msgs)
	}
	end := start + limit
	if end > len(msgs) {
		end = len(msgs)
	}
	pageMsgs := msgs[start:end]

	out := make([]domain.Message, len(pageMsgs))
	for i, m := range pageMsgs {
		if u, ok := s.users[m.SenderID]; ok {
			m.SenderUsername = u.Username
			m.SenderName = u.FullName
			m.SenderAvatar = u.ProfilePictureURL
		}
		if st, ok := s.statuses[m.ID][viewerID]; ok {
			m.ViewerStatus = st.Status
		}
		out[len(pageMsgs)-1-i] = m
	}
	return out, nil
}

func (s *MemoryStore) UpdateMessageContent(_ context.Context, id, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.messages[id]
	if !ok {
		return nil
	}
	m.Content = content
	m.IsEdited = true
	m.UpdatedAt = time.Now().UTC()
	s.messages[id] = m
	return nil
}

func (s *MemoryStore) DeleteMessage(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.messages, id)
	delete(s.statuses, id)
	return nil
}

func (s *MemoryStore) MarkMessagesRead(_ context.Context, userID string, messageIDs []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	for _, id := range messageIDs {
		byUser, ok := s.statuses[id]
		if !ok {
			byUser = make(map[string]domain.MessageStatus)
			s.statuses[id] = byUser
		}
		byUser[userID] = domain.MessageStatus{
			MessageID: id,
			UserID:    userID,
			Status:    domain.StatusRead,
			UpdatedAt: now,
		}
	}
	return nil
}

func (s *MemoryStore) MessageStatuses(_ context.Context, messageID string) ([]domain.MessageStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	byUser := s.statuses[messageID]
	out := make([]domain.MessageStatus, 0, len(byUser))
	for _, st := range byUser {
		if u, ok := s.users[st.UserID]; ok {
			st.Username = u.Username
			st.FullName = u.FullName
		}
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

func (s *MemoryStore) SearchMessages(_ context.Context, userID, query, chatID string, limit int) ([]domain.Message, error) {
	if limit < 1 || limit > 100 {
		limit = 50
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	needle := strings.ToLower(query)
	var out []domain.Message
	for _, m := range s.messages {
		if chatID != "" && m.ChatID != chatID {
			continue
		}
		if _, member := s.participants[m.ChatID][userID]; !member {
			continue
		}
		if !strings.Contains(strings.ToLower(m.Content), needle) {
			continue
		}
		if u, ok := s.users[m.SenderID]; ok {
			m.SenderUsername = u.Username
			m.SenderName = u.FullName
			m.SenderAvatar = u.ProfilePictureURL
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) CreateSession(_ context.Context, sess domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = time.Now().UTC()
	}
	s.sessions[sess.ID] = sess
	return nil
}

func (s *MemoryStore) DeactivateSession(_ context.Context, tokenID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, sess := range s.sessions {
		if sess.TokenID == tokenID {
			sess.IsActive = false
			s.sessions[id] = sess
		}
	}
	return nil
}

func (s *MemoryStore) ListSessions(_ context.Context, userID string, page, limit int) ([]domain.Session, int64, error) {
	page, limit = normalizePage(page, limit)
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Session
	for _, sess := range s.sessions {
		if userID != "" && sess.UserID != userID {
			continue
		}
		out = append(out, sess)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	total := int64(len(out))

	start := (page - 1) * limit
	if start > len(out) {
		start = len(out)
	}
	end := start + limit
	if end > len(out) {
		end = len(out)
	}
	return out[start:end], total, nil
}

func (s *MemoryStore) ListUsers(_ context.Context, q ListUsersQuery) ([]domain.User, int64, error) {
	page, limit := normalizePage(q.Page, q.Limit)
	s.mu.RLock()
	defer s.mu.RUnlock()

	needle := strings.ToLower(q.Search)
	var out []domain.User
	for _, u := range s.users {
		if needle != "" &&
			!strings.Contains(strings.ToLower(u.Username), needle) &&
			!strings.Contains(strings.ToLower(u.Email), needle) &&
			!strings.Contains(strings.ToLower(u.FullName), needle) {
			continue
		}
		out = append(out, u)
	}
	asc := q.Order == "asc"
	sort.Slice(out, func(i, j int) bool {
		var less bool
		switch q.SortBy {
		case "username":
			less = out[i].Username < out[j].Username
		case "email":
			less = out[i].Email < out[j].Email
		default:
			less = out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		if asc {
			return less
		}
		return !less
	})
	total := int64(len(out))

	start := (page - 1) * limit
	if start > len(out) {
		start = len(out)
	}
	end := start + limit
	if end > len(out) {
		end = len(out)
	}
	return out[start:end], total, nil
}

func (s *MemoryStore) CountUsers(context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.users)), nil
}

func (s *MemoryStore) CountActiveUsers(_ context.Context, since time.Time) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for _, u := range s.users {
		if u.IsOnline || (u.LastSeen != nil && !u.LastSeen.Before(since)) {
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) CountBannedUsers(context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for _, u := range s.users {
		if u.IsBanned {
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) CountAdminUsers(context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for _, u := range s.users {
		if u.IsAdmin {
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) CountUsersSince(_ context.Context, since time.Time) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for _, u := range s.users {
		if !u.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) CountChats(context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.chats)), nil
}

func (s *MemoryStore) CountGroupChats(context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for _, c := range s.chats {
		if c.IsGroup {
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) CountMessages(context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.messages)), nil
}

func (s *MemoryStore) CountMessagesSince(_ context.Context, since time.Time) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for _, m := range s.messages {
		if !m.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) CountUserChats(_ context.Context, userID string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for _, members := range s.participants {
		if _, ok := members[userID]; ok {
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) CountUserMessages(_ context.Context, userID string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for _, m := range s.messages {
		if m.SenderID == userID {
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) CountUserSessions(_ context.Context, userID string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for _, sess := range s.sessions {
		if sess.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) RecentUserMessages(_ context.Context, userID string, limit int) ([]domain.Message, error) {
	if limit < 1 || limit > 50 {
		limit = 10
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Message
	for _, m := range s.messages {
		if m.SenderID == userID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) UserGrowth(_ context.Context, days int) ([]domain.GrowthPoint, error) {
	if days < 1 || days > 365 {
		days = 30
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	start := time.Now().UTC().AddDate(0, 0, -days+1).Truncate(24 * time.Hour)
	counts := make(map[string]int64)
	for _, u := range s.users {
		if u.CreatedAt.Before(start) {
			continue
		}
		counts[u.CreatedAt.UTC().Format("2006-01-02")]++
	}
	out := make([]domain.GrowthPoint, 0, days)
	for i := 0; i < days; i++ {
		date := start.AddDate(0, 0, i).Format("2006-01-02")
		out = append(out, domain.GrowthPoint{Date: date, Count: counts[date]})
	}
	return out, nil
}

func (s *MemoryStore) RecentUsers(_ context.Context, limit int) ([]domain.User, error) {
	if limit < 1 || limit > 50 {
		limit = 5
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) TopSenders(_ context.Context, limit int) ([]domain.TopSender, error) {
	if limit < 1 || limit > 50 {
		limit = 5
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[string]int64)
	for _, m := range s.messages {
		counts[m.SenderID]++
	}
	out := make([]domain.TopSender, 0, len(counts))
	for id, n := range counts {
		sender := domain.TopSender{UserID: id, MessageCount: n}
		if u, ok := s.users[id]; ok {
			sender.Username = u.Username
			sender.FullName = u.FullName
		}
		out = append(out, sender)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].MessageCount == out[j].MessageCount {
			return out[i].UserID < out[j].UserID
		}
		return out[i].MessageCount > out[j].MessageCount
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

var _ Store = (*MemoryStore)(nil)
var _ Store = (*GormStore)(nil)
