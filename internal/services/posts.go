package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"vibe-social-backend/internal/models"
	"vibe-social-backend/internal/repository"

	"github.com/google/uuid"
)

const (
	feedDefaultLimit  = 20
	feedMaxLimit      = 50
	wallLimit         = 50
	feedStackLimit    = 5
	detailStackLimit  = 20
	attendeeListLimit = 10
	attendeeScanLimit = 500
	broadcastTitleLen = 30
)

// PostsService handles posts, visibility, attendance, reactions,
// comments and stacks
type PostsService struct {
	posts       PostStore
	engagement  EngagementStore
	friendships FriendshipStore
	users       UserStore
}

// NewPostsService creates a new posts service
func NewPostsService(posts PostStore, engagement EngagementStore, friendships FriendshipStore, users UserStore) *PostsService {
	return &PostsService{
		posts:       posts,
		engagement:  engagement,
		friendships: friendships,
		users:       users,
	}
}

// CreatePostInput carries the fields of a new post. TargetUserID must
// already be resolved to a canonical ID.
type CreatePostInput struct {
	Content       *string
	Type          string
	MediaURL      *string
	Vibe          *string
	EventDate     *time.Time
	EventLocation *string
	ExpiresAt     *time.Time
	TargetUserID  *string
}

// ReactionView is a reaction with its user attached
type ReactionView struct {
	models.Reaction
	User models.UserSummary `json:"user"`
}

// StackView is a stack item with its contributor attached
type StackView struct {
	models.PostStack
	User models.UserSummary `json:"user"`
}

// AttendeeView is a going-attendance row with its user attached
type AttendeeView struct {
	models.EventAttendee
	User models.UserSummary `json:"user"`
}

// CommentView is a comment with its author attached
type CommentView struct {
	models.PostComment
	User models.UserSummary `json:"user"`
}

// ReferenceView is the event a broadcast post points at
type ReferenceView struct {
	ID         string  `json:"id"`
	Content    *string `json:"content"`
	Type       string  `json:"type"`
	AuthorName *string `json:"author_name"`
}

// PostView is a post hydrated for responses
type PostView struct {
	models.Post
	Author        models.UserSummary `json:"author"`
	Reactions     []ReactionView     `json:"reactions"`
	Stacks        []StackView        `json:"stacks"`
	Attendees     []AttendeeView     `json:"attendees"`
	ReferencePost *ReferenceView     `json:"reference_post,omitempty"`
}

// FeedPage is one page of the feed
type FeedPage struct {
	Posts      []*PostView `json:"posts"`
	NextCursor *time.Time  `json:"next_cursor"`
}

// EventPreview is the limited public projection of an event post.
// The location is withheld.
type EventPreview struct {
	ID        string             `json:"id"`
	Content   *string            `json:"content"`
	MediaURL  *string            `json:"media_url"`
	EventDate *time.Time         `json:"event_date"`
	Vibe      *string            `json:"vibe"`
	Author    models.UserSummary `json:"author"`
}

// CreatePost creates a feed, wall or event post. Wall posts require
// an existing friendship edge with the target.
func (s *PostsService) CreatePost(ctx context.Context, caller *models.User, input CreatePostInput) (*PostView, error) {
	if (input.Content == nil || *input.Content == "") && (input.MediaURL == nil || *input.MediaURL == "") {
		return nil, fmt.Errorf("%w: content or media required", ErrInvalid)
	}

	postType := input.Type
	if postType == "" {
		postType = models.PostTypeText
	}

	if input.TargetUserID != nil && *input.TargetUserID != caller.ID {
		if _, err := s.users.GetByID(ctx, *input.TargetUserID); err != nil {
			return nil, err
		}
		if _, err := s.friendships.GetBetween(ctx, caller.ID, *input.TargetUserID); err != nil {
			if errors.Is(err, ErrNotFound) {
				return nil, fmt.Errorf("%w: must be friends to post on wall", ErrForbidden)
			}
			return nil, err
		}
	}

	post := &models.Post{
		ID:            uuid.New().String(),
		UserID:        caller.ID,
		TargetUserID:  input.TargetUserID,
		Content:       input.Content,
		Type:          postType,
		MediaURL:      input.MediaURL,
		Vibe:          input.Vibe,
		EventDate:     input.EventDate,
		EventLocation: input.EventLocation,
		ExpiresAt:     input.ExpiresAt,
		CreatedAt:     time.Now(),
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}
	return s.hydrate(ctx, post, detailStackLimit)
}

// GetPost fetches a post gated by the +1 protocol: the author, a
// friend of the author, a going-attendee, or a friend of an attendee
// may view; event-only for the attendee rules.
func (s *PostsService) GetPost(ctx context.Context, caller *models.User, postID string) (*PostView, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeView(ctx, caller, post); err != nil {
		return nil, err
	}
	return s.hydrate(ctx, post, detailStackLimit)
}

func (s *PostsService) authorizeView(ctx context.Context, caller *models.User, post *models.Post) error {
	if post.UserID == caller.ID {
		return nil
	}

	friendIDs, err := s.friendIDs(ctx, caller.ID)
	if err != nil {
		return err
	}
	if friendIDs[post.UserID] {
		return nil
	}

	if post.Type == models.PostTypeEvent {
		attendees, err := s.engagement.ListGoingAttendees(ctx, post.ID, attendeeScanLimit)
		if err != nil {
			return err
		}
		for _, a := range attendees {
			if a.UserID == caller.ID || friendIDs[a.UserID] {
				return nil
			}
		}
	}

	return fmt.Errorf("%w: must be friends with the host or an attendee", ErrForbidden)
}

// ListFeed returns one page of the caller's feed: posts authored by
// the caller or their friends, plus events anyone in that set is
// attending. Wall posts and expired posts never appear.
func (s *PostsService) ListFeed(ctx context.Context, caller *models.User, cursor *time.Time, limit int) (*FeedPage, error) {
	if limit <= 0 {
		limit = feedDefaultLimit
	}
	if limit > feedMaxLimit {
		limit = feedMaxLimit
	}

	friendIDs, err := s.friendIDs(ctx, caller.ID)
	if err != nil {
		return nil, err
	}
	authorIDs := make([]string, 0, len(friendIDs)+1)
	authorIDs = append(authorIDs, caller.ID)
	for id := range friendIDs {
		authorIDs = append(authorIDs, id)
	}

	attendedPostIDs, err := s.engagement.ListAttendedPostIDs(ctx, authorIDs)
	if err != nil {
		return nil, err
	}

	// limit+1 fetch: the extra row's timestamp becomes the cursor.
	posts, err := s.posts.ListFeed(ctx, authorIDs, attendedPostIDs, time.Now(), cursor, limit+1)
	if err != nil {
		return nil, err
	}

	page := &FeedPage{}
	if len(posts) > limit {
		next := posts[limit].CreatedAt
		page.NextCursor = &next
		posts = posts[:limit]
	}

	page.Posts = make([]*PostView, 0, len(posts))
	for _, post := range posts {
		view, err := s.hydrate(ctx, post, feedStackLimit)
		if err != nil {
			return nil, err
		}
		page.Posts = append(page.Posts, view)
	}
	return page, nil
}

// ListWall returns posts written on a user's wall plus the owner's
// own featured feed posts, newest first, capped at 50
func (s *PostsService) ListWall(ctx context.Context, ownerID string) ([]*PostView, error) {
	posts, err := s.posts.ListWall(ctx, ownerID, wallLimit)
	if err != nil {
		return nil, err
	}
	result := make([]*PostView, 0, len(posts))
	for _, post := range posts {
		view, err := s.hydrate(ctx, post, feedStackLimit)
		if err != nil {
			return nil, err
		}
		result = append(result, view)
	}
	return result, nil
}

// SetFeatured toggles the featured flag. Wall posts may only be
// featured by the wall owner, feed posts only by the author.
func (s *PostsService) SetFeatured(ctx context.Context, caller *models.User, postID string, featured bool) (*models.Post, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	canToggle := false
	if post.TargetUserID != nil {
		canToggle = *post.TargetUserID == caller.ID
	} else {
		canToggle = post.UserID == caller.ID
	}
	if !canToggle {
		return nil, fmt.Errorf("%w: cannot feature this post", ErrForbidden)
	}

	if err := s.posts.SetFeatured(ctx, postID, featured); err != nil {
		return nil, err
	}
	post.IsFeatured = featured
	return post, nil
}

// DeletePost removes a post. The author or the wall target may delete.
func (s *PostsService) DeletePost(ctx context.Context, caller *models.User, postID string) error {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return err
	}

	isAuthor := post.UserID == caller.ID
	isWallOwner := post.TargetUserID != nil && *post.TargetUserID == caller.ID
	if !isAuthor && !isWallOwner {
		return fmt.Errorf("%w: cannot delete this post", ErrForbidden)
	}
	return s.posts.Delete(ctx, postID)
}

// ToggleReaction adds the reaction if absent and removes it if
// present. Returns "added" or "removed".
func (s *PostsService) ToggleReaction(ctx context.Context, caller *models.User, postID, emoji string) (string, error) {
	if emoji == "" {
		return "", fmt.Errorf("%w: emoji required", ErrInvalid)
	}

	existing, err := s.engagement.GetReaction(ctx, caller.ID, postID, emoji)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return "", err
	}
	if existing != nil {
		if err := s.engagement.DeleteReaction(ctx, existing.ID); err != nil {
			return "", err
		}
		return "removed", nil
	}

	reaction := &models.Reaction{
		ID:        uuid.New().String(),
		UserID:    caller.ID,
		PostID:    postID,
		Emoji:     emoji,
		CreatedAt: time.Now(),
	}
	if err := s.engagement.CreateReaction(ctx, reaction); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return "added", nil
		}
		return "", err
	}
	return "added", nil
}

// SetAttendance marks the caller going or not going to an event. A
// broadcast post is created only when the attendance state actually
// changes; repeating the current state is a no-op.
func (s *PostsService) SetAttendance(ctx context.Context, caller *models.User, postID, status string) error {
	if status != "going" && status != "not_going" {
		return fmt.Errorf("%w: invalid status %q", ErrInvalid, status)
	}

	event, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if event.Type != models.PostTypeEvent {
		return fmt.Errorf("event: %w", ErrNotFound)
	}

	existing, err := s.engagement.GetAttendance(ctx, caller.ID, postID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}

	if status == "going" {
		if existing != nil && existing.Status == models.AttendanceGoing {
			return nil
		}
		if existing == nil {
			a := &models.EventAttendee{
				ID:        uuid.New().String(),
				UserID:    caller.ID,
				PostID:    postID,
				Status:    models.AttendanceGoing,
				CreatedAt: time.Now(),
			}
			if err := s.engagement.CreateAttendance(ctx, a); err != nil {
				if errors.Is(err, repository.ErrDuplicate) {
					return nil
				}
				return err
			}
		} else {
			existing.Status = models.AttendanceGoing
			existing.CreatedAt = time.Now()
			if err := s.engagement.UpdateAttendance(ctx, existing); err != nil {
				return err
			}
		}
		return s.createBroadcast(ctx, caller, event, true)
	}

	// not_going
	if existing == nil {
		return nil
	}
	if err := s.engagement.DeleteAttendance(ctx, existing.ID); err != nil {
		return err
	}
	return s.createBroadcast(ctx, caller, event, false)
}

func (s *PostsService) createBroadcast(ctx context.Context, caller *models.User, event *models.Post, going bool) error {
	title := "an event"
	if event.Content != nil && *event.Content != "" {
		title = strings.SplitN(*event.Content, "\n", 2)[0]
		if runes := []rune(title); len(runes) > broadcastTitleLen {
			title = string(runes[:broadcastTitleLen])
		}
	}

	name := "Someone"
	if caller.DisplayName != nil && *caller.DisplayName != "" {
		name = *caller.DisplayName
	}

	var content string
	var vibe *string
	if going {
		content = fmt.Sprintf("%s is going to %s...", name, title)
		vibe = event.Vibe
	} else {
		content = fmt.Sprintf("%s is no longer going to %s.", name, title)
		sad := "sad"
		vibe = &sad
	}

	broadcast := &models.Post{
		ID:              uuid.New().String(),
		UserID:          caller.ID,
		Type:            models.PostTypeBroadcast,
		Content:         &content,
		ReferencePostID: &event.ID,
		Vibe:            vibe,
		CreatedAt:       time.Now(),
	}
	return s.posts.Create(ctx, broadcast)
}

// AddComment appends a GIF comment to a post
func (s *PostsService) AddComment(ctx context.Context, caller *models.User, postID, mediaURL string) (*CommentView, error) {
	if mediaURL == "" {
		return nil, fmt.Errorf("%w: media url required", ErrInvalid)
	}
	if _, err := s.posts.GetByID(ctx, postID); err != nil {
		return nil, err
	}

	comment := &models.PostComment{
		ID:        uuid.New().String(),
		PostID:    postID,
		UserID:    caller.ID,
		MediaURL:  mediaURL,
		CreatedAt: time.Now(),
	}
	if err := s.engagement.CreateComment(ctx, comment); err != nil {
		return nil, err
	}
	return &CommentView{PostComment: *comment, User: caller.Summary()}, nil
}

// ListComments returns a post's comments with their authors, newest
// first
func (s *PostsService) ListComments(ctx context.Context, postID string) ([]CommentView, error) {
	comments, err := s.engagement.ListComments(ctx, postID)
	if err != nil {
		return nil, err
	}

	userIDs := make([]string, 0, len(comments))
	for _, c := range comments {
		userIDs = append(userIDs, c.UserID)
	}
	users, err := s.users.GetByIDs(ctx, userIDs)
	if err != nil {
		return nil, err
	}

	result := make([]CommentView, 0, len(comments))
	for _, c := range comments {
		view := CommentView{PostComment: *c}
		if u, ok := users[c.UserID]; ok {
			view.User = u.Summary()
		}
		result = append(result, view)
	}
	return result, nil
}

// AddStack appends a media item to a post's stack
func (s *PostsService) AddStack(ctx context.Context, caller *models.User, postID, mediaURL string) (*StackView, error) {
	if postID == "" || mediaURL == "" {
		return nil, fmt.Errorf("%w: post id and media url required", ErrInvalid)
	}
	if _, err := s.posts.GetByID(ctx, postID); err != nil {
		return nil, err
	}

	stack := &models.PostStack{
		ID:        uuid.New().String(),
		PostID:    postID,
		UserID:    caller.ID,
		MediaURL:  mediaURL,
		CreatedAt: time.Now(),
	}
	if err := s.engagement.CreateStack(ctx, stack); err != nil {
		return nil, err
	}
	return &StackView{PostStack: *stack, User: caller.Summary()}, nil
}

// PublicEventPreview returns the unauthenticated projection of an
// event post
func (s *PostsService) PublicEventPreview(ctx context.Context, postID string) (*EventPreview, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.Type != models.PostTypeEvent {
		return nil, fmt.Errorf("event: %w", ErrNotFound)
	}

	preview := &EventPreview{
		ID:        post.ID,
		Content:   post.Content,
		MediaURL:  post.MediaURL,
		EventDate: post.EventDate,
		Vibe:      post.Vibe,
	}
	if author, err := s.users.GetByID(ctx, post.UserID); err == nil {
		summary := author.Summary()
		summary.WalletAddress = ""
		preview.Author = summary
	}
	return preview, nil
}

// friendIDs returns the caller's accepted friends as a set
func (s *PostsService) friendIDs(ctx context.Context, userID string) (map[string]bool, error) {
	edges, err := s.friendships.ListByUser(ctx, userID, models.FriendshipAccepted)
	if err != nil {
		return nil, err
	}
	ids := make(map[string]bool, len(edges))
	for _, f := range edges {
		ids[f.Other(userID)] = true
	}
	return ids, nil
}

func (s *PostsService) hydrate(ctx context.Context, post *models.Post, stackLimit int) (*PostView, error) {
	view := &PostView{
		Post:      *post,
		Reactions: []ReactionView{},
		Stacks:    []StackView{},
		Attendees: []AttendeeView{},
	}

	reactions, err := s.engagement.ListReactions(ctx, post.ID)
	if err != nil {
		return nil, err
	}
	stacks, err := s.engagement.ListStacks(ctx, post.ID, stackLimit)
	if err != nil {
		return nil, err
	}

	var attendees []*models.EventAttendee
	if post.Type == models.PostTypeEvent {
		attendees, err = s.engagement.ListGoingAttendees(ctx, post.ID, attendeeListLimit)
		if err != nil {
			return nil, err
		}
	}

	userIDs := []string{post.UserID}
	for _, r := range reactions {
		userIDs = append(userIDs, r.UserID)
	}
	for _, st := range stacks {
		userIDs = append(userIDs, st.UserID)
	}
	for _, a := range attendees {
		userIDs = append(userIDs, a.UserID)
	}

	var reference *models.Post
	if post.ReferencePostID != nil {
		reference, err = s.posts.GetByID(ctx, *post.ReferencePostID)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return nil, err
		}
		if reference != nil {
			userIDs = append(userIDs, reference.UserID)
		}
	}

	users, err := s.users.GetByIDs(ctx, userIDs)
	if err != nil {
		return nil, err
	}

	if author, ok := users[post.UserID]; ok {
		view.Author = author.Summary()
	}
	for _, r := range reactions {
		rv := ReactionView{Reaction: *r}
		if u, ok := users[r.UserID]; ok {
			rv.User = u.Summary()
		}
		view.Reactions = append(view.Reactions, rv)
	}
	for _, st := range stacks {
		sv := StackView{PostStack: *st}
		if u, ok := users[st.UserID]; ok {
			sv.User = u.Summary()
		}
		view.Stacks = append(view.Stacks, sv)
	}
	for _, a := range attendees {
		av := AttendeeView{EventAttendee: *a}
		if u, ok := users[a.UserID]; ok {
			av.User = u.Summary()
		}
		view.Attendees = append(view.Attendees, av)
	}
	if reference != nil {
		rv := &ReferenceView{
			ID:      reference.ID,
			Content: reference.Content,
			Type:    reference.Type,
		}
		if u, ok := users[reference.UserID]; ok {
			rv.AuthorName = u.DisplayName
		}
		view.ReferencePost = rv
	}
	return view, nil
}
