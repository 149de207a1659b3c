package services

import (
	"context"
	"time"

	"vibe-social-backend/internal/models"
)

// Store interfaces consumed by the services. The pgx repositories in
// internal/repository satisfy them; tests use in-memory fakes.

// UserStore persists users
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByWallet(ctx context.Context, walletAddress string) (*models.User, error)
	GetByIDs(ctx context.Context, ids []string) (map[string]*models.User, error)
	UpdateProfile(ctx context.Context, user *models.User) error
}

// FriendshipStore persists friendship edges
type FriendshipStore interface {
	Create(ctx context.Context, f *models.Friendship) error
	GetBetween(ctx context.Context, userA, userB string) (*models.Friendship, error)
	ListByUser(ctx context.Context, userID, status string) ([]*models.Friendship, error)
	ListPendingReceived(ctx context.Context, userID string) ([]*models.Friendship, error)
	ListTouching(ctx context.Context, userIDs []string) ([]*models.Friendship, error)
	UpdateStatus(ctx context.Context, id, status string) error
	Delete(ctx context.Context, id string) error
	CountPendingReceived(ctx context.Context, userID string) (int, error)
}

// PostStore persists posts
type PostStore interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id string) (*models.Post, error)
	ListFeed(ctx context.Context, authorIDs, postIDs []string, now time.Time, cursor *time.Time, limit int) ([]*models.Post, error)
	ListWall(ctx context.Context, userID string, limit int) ([]*models.Post, error)
	SetFeatured(ctx context.Context, id string, featured bool) error
	Delete(ctx context.Context, id string) error
}

// EngagementStore persists attendance, reactions, comments and stacks
type EngagementStore interface {
	GetAttendance(ctx context.Context, userID, postID string) (*models.EventAttendee, error)
	CreateAttendance(ctx context.Context, a *models.EventAttendee) error
	UpdateAttendance(ctx context.Context, a *models.EventAttendee) error
	DeleteAttendance(ctx context.Context, id string) error
	ListGoingAttendees(ctx context.Context, postID string, limit int) ([]*models.EventAttendee, error)
	ListAttendedPostIDs(ctx context.Context, userIDs []string) ([]string, error)
	GetReaction(ctx context.Context, userID, postID, emoji string) (*models.Reaction, error)
	CreateReaction(ctx context.Context, reaction *models.Reaction) error
	DeleteReaction(ctx context.Context, id string) error
	ListReactions(ctx context.Context, postID string) ([]*models.Reaction, error)
	CreateComment(ctx context.Context, c *models.PostComment) error
	ListComments(ctx context.Context, postID string) ([]*models.PostComment, error)
	CreateStack(ctx context.Context, s *models.PostStack) error
	ListStacks(ctx context.Context, postID string, limit int) ([]*models.PostStack, error)
}

// InviteStore persists invites
type InviteStore interface {
	Create(ctx context.Context, invite *models.Invite) error
	GetByCode(ctx context.Context, code string) (*models.Invite, error)
	ListActiveByCreator(ctx context.Context, creatorID string, now time.Time) ([]*models.Invite, error)
	SetStatus(ctx context.Context, id, status string) error
}

// MessageStore persists messages
type MessageStore interface {
	Create(ctx context.Context, m *models.Message) error
	ListByUser(ctx context.Context, userID string) ([]*models.Message, error)
	ListThread(ctx context.Context, userA, userB string) ([]*models.Message, error)
	MarkRead(ctx context.Context, senderID, receiverID string) error
	CountUnread(ctx context.Context, receiverID string) (int, error)
}

// Notifier pushes realtime events to connected users. Delivery is
// best-effort; an offline user simply misses the event.
type Notifier interface {
	Notify(userID string, event Event)
}
