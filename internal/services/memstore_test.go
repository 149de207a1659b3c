package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"vibe-social-backend/internal/models"
	"vibe-social-backend/internal/repository"
)

// In-memory store fakes mirroring the pgx repositories' behavior,
// including the unique-constraint duplicates they surface.

type memUserStore struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func newMemUserStore() *memUserStore {
	return &memUserStore{users: make(map[string]*models.User)}
}

func (s *memUserStore) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.WalletAddress == user.WalletAddress {
			return repository.ErrDuplicate
		}
	}
	cp := *user
	s.users[user.ID] = &cp
	return nil
}

func (s *memUserStore) GetByID(_ context.Context, id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *memUserStore) GetByWallet(_ context.Context, walletAddress string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.WalletAddress == walletAddress {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *memUserStore) GetByIDs(_ context.Context, ids []string) (map[string]*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make(map[string]*models.User, len(ids))
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			cp := *u
			result[id] = &cp
		}
	}
	return result, nil
}

func (s *memUserStore) UpdateProfile(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *user
	s.users[user.ID] = &cp
	return nil
}

type memFriendshipStore struct {
	mu    sync.Mutex
	edges []*models.Friendship
}

func newMemFriendshipStore() *memFriendshipStore {
	return &memFriendshipStore{}
}

func pairKey(a, b string) [2]string {
	if a < b {
		return [2]string{a, b}
	}
	return [2]string{b, a}
}

func (s *memFriendshipStore) Create(_ context.Context, f *models.Friendship) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := pairKey(f.RequesterID, f.ReceiverID)
	for _, e := range s.edges {
		if pairKey(e.RequesterID, e.ReceiverID) == key {
			return repository.ErrDuplicate
		}
	}
	cp := *f
	s.edges = append(s.edges, &cp)
	return nil
}

func (s *memFriendshipStore) GetBetween(_ context.Context, userA, userB string) (*models.Friendship, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := pairKey(userA, userB)
	for _, e := range s.edges {
		if pairKey(e.RequesterID, e.ReceiverID) == key {
			cp := *e
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *memFriendshipStore) ListByUser(_ context.Context, userID, status string) ([]*models.Friendship, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []*models.Friendship
	for _, e := range s.edges {
		if e.RequesterID != userID && e.ReceiverID != userID {
			continue
		}
		if status != "" && e.Status != status {
			continue
		}
		cp := *e
		result = append(result, &cp)
	}
	return result, nil
}

func (s *memFriendshipStore) ListPendingReceived(_ context.Context, userID string) ([]*models.Friendship, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []*models.Friendship
	for _, e := range s.edges {
		if e.ReceiverID == userID && e.Status == models.FriendshipPending {
			cp := *e
			result = append(result, &cp)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (s *memFriendshipStore) ListTouching(_ context.Context, userIDs []string) ([]*models.Friendship, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	set := make(map[string]bool, len(userIDs))
	for _, id := range userIDs {
		set[id] = true
	}
	var result []*models.Friendship
	for _, e := range s.edges {
		if set[e.RequesterID] || set[e.ReceiverID] {
			cp := *e
			result = append(result, &cp)
		}
	}
	return result, nil
}

func (s *memFriendshipStore) UpdateStatus(_ context.Context, id, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.edges {
		if e.ID == id {
			e.Status = status
			return nil
		}
	}
	return repository.ErrNotFound
}

func (s *memFriendshipStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, e := range s.edges {
		if e.ID == id {
			s.edges = append(s.edges[:i], s.edges[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (s *memFriendshipStore) CountPendingReceived(_ context.Context, userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, e := range s.edges {
		if e.ReceiverID == userID && e.Status == models.FriendshipPending {
			count++
		}
	}
	return count, nil
}

type memPostStore struct {
	mu    sync.Mutex
	posts map[string]*models.Post
}

func newMemPostStore() *memPostStore {
	return &memPostStore{posts: make(map[string]*models.Post)}
}

func (s *memPostStore) Create(_ context.Context, post *models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *post
	s.posts[post.ID] = &cp
	return nil
}

func (s *memPostStore) GetByID(_ context.Context, id string) (*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *memPostStore) ListFeed(_ context.Context, authorIDs, postIDs []string, now time.Time, cursor *time.Time, limit int) ([]*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	authors := make(map[string]bool, len(authorIDs))
	for _, id := range authorIDs {
		authors[id] = true
	}
	included := make(map[string]bool, len(postIDs))
	for _, id := range postIDs {
		included[id] = true
	}

	var result []*models.Post
	for _, p := range s.posts {
		if p.TargetUserID != nil {
			continue
		}
		if !authors[p.UserID] && !included[p.ID] {
			continue
		}
		if p.ExpiresAt != nil && p.ExpiresAt.Before(now) {
			continue
		}
		if cursor != nil && !p.CreatedAt.Before(*cursor) {
			continue
		}
		cp := *p
		result = append(result, &cp)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (s *memPostStore) ListWall(_ context.Context, userID string, limit int) ([]*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []*models.Post
	for _, p := range s.posts {
		onWall := p.TargetUserID != nil && *p.TargetUserID == userID
		ownFeatured := p.TargetUserID == nil && p.UserID == userID && p.IsFeatured
		if !onWall && !ownFeatured {
			continue
		}
		cp := *p
		result = append(result, &cp)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (s *memPostStore) SetFeatured(_ context.Context, id string, featured bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[id]
	if !ok {
		return repository.ErrNotFound
	}
	p.IsFeatured = featured
	return nil
}

func (s *memPostStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.posts[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.posts, id)
	return nil
}

type memEngagementStore struct {
	mu         sync.Mutex
	attendance []*models.EventAttendee
	reactions  []*models.Reaction
	comments   []*models.PostComment
	stacks     []*models.PostStack
}

func newMemEngagementStore() *memEngagementStore {
	return &memEngagementStore{}
}

func (s *memEngagementStore) GetAttendance(_ context.Context, userID, postID string) (*models.EventAttendee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.attendance {
		if a.UserID == userID && a.PostID == postID {
			cp := *a
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *memEngagementStore) CreateAttendance(_ context.Context, a *models.EventAttendee) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.attendance {
		if e.UserID == a.UserID && e.PostID == a.PostID {
			return repository.ErrDuplicate
		}
	}
	cp := *a
	s.attendance = append(s.attendance, &cp)
	return nil
}

func (s *memEngagementStore) UpdateAttendance(_ context.Context, a *models.EventAttendee) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.attendance {
		if e.ID == a.ID {
			e.Status = a.Status
			e.CreatedAt = a.CreatedAt
			return nil
		}
	}
	return repository.ErrNotFound
}

func (s *memEngagementStore) DeleteAttendance(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, e := range s.attendance {
		if e.ID == id {
			s.attendance = append(s.attendance[:i], s.attendance[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (s *memEngagementStore) ListGoingAttendees(_ context.Context, postID string, limit int) ([]*models.EventAttendee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []*models.EventAttendee
	for _, a := range s.attendance {
		if a.PostID == postID && a.Status == models.AttendanceGoing {
			cp := *a
			result = append(result, &cp)
		}
	}
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (s *memEngagementStore) ListAttendedPostIDs(_ context.Context, userIDs []string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	set := make(map[string]bool, len(userIDs))
	for _, id := range userIDs {
		set[id] = true
	}
	seen := make(map[string]bool)
	var result []string
	for _, a := range s.attendance {
		if set[a.UserID] && !seen[a.PostID] {
			seen[a.PostID] = true
			result = append(result, a.PostID)
		}
	}
	return result, nil
}

func (s *memEngagementStore) GetReaction(_ context.Context, userID, postID, emoji string) (*models.Reaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.reactions {
		if r.UserID == userID && r.PostID == postID && r.Emoji == emoji {
			cp := *r
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *memEngagementStore) CreateReaction(_ context.Context, reaction *models.Reaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.reactions {
		if r.UserID == reaction.UserID && r.PostID == reaction.PostID && r.Emoji == reaction.Emoji {
			return repository.ErrDuplicate
		}
	}
	cp := *reaction
	s.reactions = append(s.reactions, &cp)
	return nil
}

func (s *memEngagementStore) DeleteReaction(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range s.reactions {
		if r.ID == id {
			s.reactions = append(s.reactions[:i], s.reactions[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (s *memEngagementStore) ListReactions(_ context.Context, postID string) ([]*models.Reaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []*models.Reaction
	for _, r := range s.reactions {
		if r.PostID == postID {
			cp := *r
			result = append(result, &cp)
		}
	}
	return result, nil
}

func (s *memEngagementStore) CreateComment(_ context.Context, c *models.PostComment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *c
	s.comments = append(s.comments, &cp)
	return nil
}

func (s *memEngagementStore) ListComments(_ context.Context, postID string) ([]*models.PostComment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []*models.PostComment
	for _, c := range s.comments {
		if c.PostID == postID {
			cp := *c
			result = append(result, &cp)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (s *memEngagementStore) CreateStack(_ context.Context, st *models.PostStack) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *st
	s.stacks = append(s.stacks, &cp)
	return nil
}

func (s *memEngagementStore) ListStacks(_ context.Context, postID string, limit int) ([]*models.PostStack, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []*models.PostStack
	for _, st := range s.stacks {
		if st.PostID == postID {
			cp := *st
			result = append(result, &cp)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

type memInviteStore struct {
	mu      sync.Mutex
	invites []*models.Invite
}

func newMemInviteStore() *memInviteStore {
	return &memInviteStore{}
}

func (s *memInviteStore) Create(_ context.Context, invite *models.Invite) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, i := range s.invites {
		if i.Code == invite.Code {
			return repository.ErrDuplicate
		}
	}
	cp := *invite
	s.invites = append(s.invites, &cp)
	return nil
}

func (s *memInviteStore) GetByCode(_ context.Context, code string) (*models.Invite, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, i := range s.invites {
		if i.Code == code {
			cp := *i
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *memInviteStore) ListActiveByCreator(_ context.Context, creatorID string, now time.Time) ([]*models.Invite, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []*models.Invite
	for _, i := range s.invites {
		if i.CreatorID != creatorID || i.Status != models.InviteActive {
			continue
		}
		if i.ExpiresAt != nil && i.ExpiresAt.Before(now) {
			continue
		}
		cp := *i
		result = append(result, &cp)
	}
	return result, nil
}

func (s *memInviteStore) SetStatus(_ context.Context, id, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, i := range s.invites {
		if i.ID == id {
			i.Status = status
			return nil
		}
	}
	return repository.ErrNotFound
}

type memMessageStore struct {
	mu       sync.Mutex
	messages []*models.Message
}

func newMemMessageStore() *memMessageStore {
	return &memMessageStore{}
}

func (s *memMessageStore) Create(_ context.Context, m *models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *m
	s.messages = append(s.messages, &cp)
	return nil
}

func (s *memMessageStore) ListByUser(_ context.Context, userID string) ([]*models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []*models.Message
	for _, m := range s.messages {
		if m.SenderID == userID || m.ReceiverID == userID {
			cp := *m
			result = append(result, &cp)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (s *memMessageStore) ListThread(_ context.Context, userA, userB string) ([]*models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []*models.Message
	for _, m := range s.messages {
		between := (m.SenderID == userA && m.ReceiverID == userB) ||
			(m.SenderID == userB && m.ReceiverID == userA)
		if between {
			cp := *m
			result = append(result, &cp)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (s *memMessageStore) MarkRead(_ context.Context, senderID, receiverID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.messages {
		if m.SenderID == senderID && m.ReceiverID == receiverID {
			m.IsRead = true
		}
	}
	return nil
}

func (s *memMessageStore) CountUnread(_ context.Context, receiverID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, m := range s.messages {
		if m.ReceiverID == receiverID && !m.IsRead {
			count++
		}
	}
	return count, nil
}

type capturedEvent struct {
	userID string
	event  Event
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []capturedEvent
}

func (n *fakeNotifier) Notify(userID string, event Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, capturedEvent{userID: userID, event: event})
}

func (n *fakeNotifier) sentTo(userID string) []Event {
	n.mu.Lock()
	defer n.mu.Unlock()
	var result []Event
	for _, e := range n.events {
		if e.userID == userID {
			result = append(result, e.event)
		}
	}
	return result
}
