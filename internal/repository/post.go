package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"vibe-social-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostRepository handles database operations for posts
type PostRepository struct {
	db *pgxpool.Pool
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *pgxpool.Pool) *PostRepository {
	return &PostRepository{db: db}
}

const postColumns = `id, user_id, target_user_id, reference_post_id, content, type,
		media_url, vibe, event_date, event_location, expires_at, is_featured, created_at`

// Create creates a new post
func (r *PostRepository) Create(ctx context.Context, post *models.Post) error {
	query := `
		INSERT INTO posts (id, user_id, target_user_id, reference_post_id, content, type,
			media_url, vibe, event_date, event_location, expires_at, is_featured, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := r.db.Exec(ctx, query,
		post.ID, post.UserID, post.TargetUserID, post.ReferencePostID, post.Content,
		post.Type, post.MediaURL, post.Vibe, post.EventDate, post.EventLocation,
		post.ExpiresAt, post.IsFeatured, post.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}
	return nil
}

// GetByID retrieves a post by ID
func (r *PostRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE id = $1`
	var post models.Post
	err := r.db.QueryRow(ctx, query, id).Scan(
		&post.ID, &post.UserID, &post.TargetUserID, &post.ReferencePostID, &post.Content,
		&post.Type, &post.MediaURL, &post.Vibe, &post.EventDate, &post.EventLocation,
		&post.ExpiresAt, &post.IsFeatured, &post.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("post: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	return &post, nil
}

// ListFeed retrieves the feed candidate set: posts authored by any of
// authorIDs or referenced by attendance (postIDs), excluding wall
// posts and posts expired as of now, older than cursor when given,
// newest first, capped at limit.
func (r *PostRepository) ListFeed(ctx context.Context, authorIDs, postIDs []string, now time.Time, cursor *time.Time, limit int) ([]*models.Post, error) {
	query := `
		SELECT ` + postColumns + `
		FROM posts
		WHERE (user_id = ANY($1) OR id = ANY($2))
		  AND target_user_id IS NULL
		  AND (expires_at IS NULL OR expires_at > $3)
		  AND ($4::timestamptz IS NULL OR created_at < $4)
		ORDER BY created_at DESC
		LIMIT $5
	`
	rows, err := r.db.Query(ctx, query, authorIDs, postIDs, now, cursor, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list feed: %w", err)
	}
	return scanPosts(rows)
}

// ListWall retrieves posts written on a user's wall plus the user's
// own featured feed posts, newest first
func (r *PostRepository) ListWall(ctx context.Context, userID string, limit int) ([]*models.Post, error) {
	query := `
		SELECT ` + postColumns + `
		FROM posts
		WHERE target_user_id = $1
		   OR (user_id = $1 AND target_user_id IS NULL AND is_featured = true)
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list wall: %w", err)
	}
	return scanPosts(rows)
}

// SetFeatured toggles the featured flag of a post
func (r *PostRepository) SetFeatured(ctx context.Context, id string, featured bool) error {
	query := `UPDATE posts SET is_featured = $1 WHERE id = $2`
	result, err := r.db.Exec(ctx, query, featured, id)
	if err != nil {
		return fmt.Errorf("failed to update post: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("post %s: %w", id, ErrNotFound)
	}
	return nil
}

// Delete removes a post
func (r *PostRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM posts WHERE id = $1`
	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("post %s: %w", id, ErrNotFound)
	}
	return nil
}

func scanPosts(rows pgx.Rows) ([]*models.Post, error) {
	defer rows.Close()

	var result []*models.Post
	for rows.Next() {
		var post models.Post
		if err := rows.Scan(
			&post.ID, &post.UserID, &post.TargetUserID, &post.ReferencePostID, &post.Content,
			&post.Type, &post.MediaURL, &post.Vibe, &post.EventDate, &post.EventLocation,
			&post.ExpiresAt, &post.IsFeatured, &post.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		result = append(result, &post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating posts: %w", err)
	}
	return result, nil
}
