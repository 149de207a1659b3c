package repository

import (
	"context"
	"errors"
	"fmt"

	"vibe-social-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// EngagementRepository handles attendance, reactions, comments and
// stacks attached to posts
type EngagementRepository struct {
	db *pgxpool.Pool
}

// NewEngagementRepository creates a new engagement repository
func NewEngagementRepository(db *pgxpool.Pool) *EngagementRepository {
	return &EngagementRepository{db: db}
}

// GetAttendance retrieves the attendance row for a (user, post) pair
func (r *EngagementRepository) GetAttendance(ctx context.Context, userID, postID string) (*models.EventAttendee, error) {
	query := `
		SELECT id, user_id, post_id, status, created_at
		FROM event_attendees
		WHERE user_id = $1 AND post_id = $2
	`
	var a models.EventAttendee
	err := r.db.QueryRow(ctx, query, userID, postID).Scan(
		&a.ID, &a.UserID, &a.PostID, &a.Status, &a.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("attendance: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get attendance: %w", err)
	}
	return &a, nil
}

// CreateAttendance inserts an attendance row. The unique index on
// (user_id, post_id) rejects duplicates as ErrDuplicate.
func (r *EngagementRepository) CreateAttendance(ctx context.Context, a *models.EventAttendee) error {
	query := `
		INSERT INTO event_attendees (id, user_id, post_id, status, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.Exec(ctx, query, a.ID, a.UserID, a.PostID, a.Status, a.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("attendance exists: %w", ErrDuplicate)
		}
		return fmt.Errorf("failed to create attendance: %w", err)
	}
	return nil
}

// UpdateAttendance sets the status of an attendance row and bumps its
// timestamp
func (r *EngagementRepository) UpdateAttendance(ctx context.Context, a *models.EventAttendee) error {
	query := `UPDATE event_attendees SET status = $1, created_at = $2 WHERE id = $3`
	result, err := r.db.Exec(ctx, query, a.Status, a.CreatedAt, a.ID)
	if err != nil {
		return fmt.Errorf("failed to update attendance: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("attendance %s: %w", a.ID, ErrNotFound)
	}
	return nil
}

// DeleteAttendance removes an attendance row
func (r *EngagementRepository) DeleteAttendance(ctx context.Context, id string) error {
	query := `DELETE FROM event_attendees WHERE id = $1`
	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete attendance: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("attendance %s: %w", id, ErrNotFound)
	}
	return nil
}

// ListGoingAttendees retrieves going-attendance rows for a post
func (r *EngagementRepository) ListGoingAttendees(ctx context.Context, postID string, limit int) ([]*models.EventAttendee, error) {
	query := `
		SELECT id, user_id, post_id, status, created_at
		FROM event_attendees
		WHERE post_id = $1 AND status = $2
		ORDER BY created_at
		LIMIT $3
	`
	rows, err := r.db.Query(ctx, query, postID, models.AttendanceGoing, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendees: %w", err)
	}
	defer rows.Close()

	var result []*models.EventAttendee
	for rows.Next() {
		var a models.EventAttendee
		if err := rows.Scan(&a.ID, &a.UserID, &a.PostID, &a.Status, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan attendee: %w", err)
		}
		result = append(result, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating attendees: %w", err)
	}
	return result, nil
}

// ListAttendedPostIDs retrieves the distinct post IDs any of the given
// users has an attendance row for
func (r *EngagementRepository) ListAttendedPostIDs(ctx context.Context, userIDs []string) ([]string, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	query := `SELECT DISTINCT post_id FROM event_attendees WHERE user_id = ANY($1)`
	rows, err := r.db.Query(ctx, query, userIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list attended posts: %w", err)
	}
	defer rows.Close()

	var result []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan post id: %w", err)
		}
		result = append(result, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating post ids: %w", err)
	}
	return result, nil
}

// GetReaction retrieves the reaction row for (user, post, emoji)
func (r *EngagementRepository) GetReaction(ctx context.Context, userID, postID, emoji string) (*models.Reaction, error) {
	query := `
		SELECT id, user_id, post_id, emoji, created_at
		FROM reactions
		WHERE user_id = $1 AND post_id = $2 AND emoji = $3
	`
	var reaction models.Reaction
	err := r.db.QueryRow(ctx, query, userID, postID, emoji).Scan(
		&reaction.ID, &reaction.UserID, &reaction.PostID, &reaction.Emoji, &reaction.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("reaction: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get reaction: %w", err)
	}
	return &reaction, nil
}

// CreateReaction inserts a reaction row
func (r *EngagementRepository) CreateReaction(ctx context.Context, reaction *models.Reaction) error {
	query := `
		INSERT INTO reactions (id, user_id, post_id, emoji, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.Exec(ctx, query,
		reaction.ID, reaction.UserID, reaction.PostID, reaction.Emoji, reaction.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("reaction exists: %w", ErrDuplicate)
		}
		return fmt.Errorf("failed to create reaction: %w", err)
	}
	return nil
}

// DeleteReaction removes a reaction row
func (r *EngagementRepository) DeleteReaction(ctx context.Context, id string) error {
	query := `DELETE FROM reactions WHERE id = $1`
	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete reaction: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("reaction %s: %w", id, ErrNotFound)
	}
	return nil
}

// ListReactions retrieves all reactions on a post
func (r *EngagementRepository) ListReactions(ctx context.Context, postID string) ([]*models.Reaction, error) {
	query := `
		SELECT id, user_id, post_id, emoji, created_at
		FROM reactions
		WHERE post_id = $1
		ORDER BY created_at
	`
	rows, err := r.db.Query(ctx, query, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reactions: %w", err)
	}
	defer rows.Close()

	var result []*models.Reaction
	for rows.Next() {
		var reaction models.Reaction
		if err := rows.Scan(
			&reaction.ID, &reaction.UserID, &reaction.PostID, &reaction.Emoji, &reaction.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan reaction: %w", err)
		}
		result = append(result, &reaction)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reactions: %w", err)
	}
	return result, nil
}

// CreateComment appends a GIF comment to a post
func (r *EngagementRepository) CreateComment(ctx context.Context, c *models.PostComment) error {
	query := `
		INSERT INTO post_comments (id, post_id, user_id, media_url, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.Exec(ctx, query, c.ID, c.PostID, c.UserID, c.MediaURL, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}
	return nil
}

// ListComments retrieves comments on a post, newest first
func (r *EngagementRepository) ListComments(ctx context.Context, postID string) ([]*models.PostComment, error) {
	query := `
		SELECT id, post_id, user_id, media_url, created_at
		FROM post_comments
		WHERE post_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	var result []*models.PostComment
	for rows.Next() {
		var c models.PostComment
		if err := rows.Scan(&c.ID, &c.PostID, &c.UserID, &c.MediaURL, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		result = append(result, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating comments: %w", err)
	}
	return result, nil
}

// CreateStack appends a stack item to a post
func (r *EngagementRepository) CreateStack(ctx context.Context, s *models.PostStack) error {
	query := `
		INSERT INTO post_stacks (id, post_id, user_id, media_url, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.Exec(ctx, query, s.ID, s.PostID, s.UserID, s.MediaURL, s.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create stack item: %w", err)
	}
	return nil
}

// ListStacks retrieves stack items on a post, oldest first, capped
func (r *EngagementRepository) ListStacks(ctx context.Context, postID string, limit int) ([]*models.PostStack, error) {
	query := `
		SELECT id, post_id, user_id, media_url, created_at
		FROM post_stacks
		WHERE post_id = $1
		ORDER BY created_at
		LIMIT $2
	`
	rows, err := r.db.Query(ctx, query, postID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list stack items: %w", err)
	}
	defer rows.Close()

	var result []*models.PostStack
	for rows.Next() {
		var s models.PostStack
		if err := rows.Scan(&s.ID, &s.PostID, &s.UserID, &s.MediaURL, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan stack item: %w", err)
		}
		result = append(result, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating stack items: %w", err)
	}
	return result, nil
}
