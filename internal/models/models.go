package models

import "time"

// Post types
const (
	PostTypeText      = "text"
	PostTypeImage     = "image"
	PostTypeEvent     = "event"
	PostTypeBroadcast = "broadcast"
)

// Friendship statuses
const (
	FriendshipPending  = "pending"
	FriendshipAccepted = "accepted"
)

// Attendance status. "not going" is represented by row deletion.
const (
	AttendanceGoing = "going"
)

// Invite statuses
const (
	InviteActive = "active"
	InviteUsed   = "used"
)

// Message types
const (
	MessageTypeText    = "text"
	MessageTypeImage   = "image"
	MessageTypePayment = "payment"
)

// User represents a wallet-authenticated user
type User struct {
	ID            string    `json:"id"`
	WalletAddress string    `json:"wallet_address"`
	DisplayName   *string   `json:"display_name"`
	Bio           *string   `json:"bio"`
	AvatarURL     *string   `json:"avatar_url"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// UserSummary is the projection of a user embedded in posts, messages etc.
type UserSummary struct {
	ID            string  `json:"id"`
	WalletAddress string  `json:"wallet_address,omitempty"`
	DisplayName   *string `json:"display_name"`
	AvatarURL     *string `json:"avatar_url"`
}

// Summary returns the embeddable projection of a user
func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:            u.ID,
		WalletAddress: u.WalletAddress,
		DisplayName:   u.DisplayName,
		AvatarURL:     u.AvatarURL,
	}
}

// Friendship represents an edge between two users. While pending,
// RequesterID and ReceiverID record who sent the request; after
// acceptance the direction carries no meaning.
type Friendship struct {
	ID          string    `json:"id"`
	RequesterID string    `json:"requester_id"`
	ReceiverID  string    `json:"receiver_id"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// Other returns the endpoint of the edge that is not userID
func (f *Friendship) Other(userID string) string {
	if f.RequesterID == userID {
		return f.ReceiverID
	}
	return f.RequesterID
}

// Post represents a feed, wall, event or broadcast post
type Post struct {
	ID              string     `json:"id"`
	UserID          string     `json:"user_id"`
	TargetUserID    *string    `json:"target_user_id"`
	ReferencePostID *string    `json:"reference_post_id"`
	Content         *string    `json:"content"`
	Type            string     `json:"type"`
	MediaURL        *string    `json:"media_url"`
	Vibe            *string    `json:"vibe"`
	EventDate       *time.Time `json:"event_date"`
	EventLocation   *string    `json:"event_location"`
	ExpiresAt       *time.Time `json:"expires_at"`
	IsFeatured      bool       `json:"is_featured"`
	CreatedAt       time.Time  `json:"created_at"`
}

// EventAttendee marks a user as going to an event post
type EventAttendee struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	PostID    string    `json:"post_id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// Reaction is an emoji toggle on a post, unique per (user, post, emoji)
type Reaction struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	PostID    string    `json:"post_id"`
	Emoji     string    `json:"emoji"`
	CreatedAt time.Time `json:"created_at"`
}

// PostComment is a GIF comment on a post, append-only
type PostComment struct {
	ID        string    `json:"id"`
	PostID    string    `json:"post_id"`
	UserID    string    `json:"user_id"`
	MediaURL  string    `json:"media_url"`
	CreatedAt time.Time `json:"created_at"`
}

// PostStack is a user-contributed media item attached to a post
type PostStack struct {
	ID        string    `json:"id"`
	PostID    string    `json:"post_id"`
	UserID    string    `json:"user_id"`
	MediaURL  string    `json:"media_url"`
	CreatedAt time.Time `json:"created_at"`
}

// Invite is a shareable friend-invite code
type Invite struct {
	ID        string     `json:"id"`
	Code      string     `json:"code"`
	CreatorID string     `json:"creator_id"`
	Status    string     `json:"status"`
	ExpiresAt *time.Time `json:"expires_at"`
	CreatedAt time.Time  `json:"created_at"`
}

// Message is a direct message between two users. Amount and
// TransactionHash are set for payment messages only; the hash is an
// opaque external reference, never checked against chain state.
type Message struct {
	ID              string    `json:"id"`
	SenderID        string    `json:"sender_id"`
	ReceiverID      string    `json:"receiver_id"`
	Content         *string   `json:"content"`
	Type            string    `json:"type"`
	MediaURL        *string   `json:"media_url"`
	Amount          *string   `json:"amount"`
	TransactionHash *string   `json:"transaction_hash"`
	IsRead          bool      `json:"is_read"`
	CreatedAt       time.Time `json:"created_at"`
}
