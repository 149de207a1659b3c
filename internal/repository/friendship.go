package repository

import (
	"context"
	"errors"
	"fmt"

	"vibe-social-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// FriendshipRepository handles database operations for friendships
type FriendshipRepository struct {
	db *pgxpool.Pool
}

// NewFriendshipRepository creates a new friendship repository
func NewFriendshipRepository(db *pgxpool.Pool) *FriendshipRepository {
	return &FriendshipRepository{db: db}
}

const friendshipColumns = `id, requester_id, receiver_id, status, created_at`

// Create inserts a friendship edge. A unique index over the unordered
// pair (LEAST/GREATEST of the two IDs) rejects a second edge for the
// same pair in either direction; that surfaces as ErrDuplicate.
func (r *FriendshipRepository) Create(ctx context.Context, f *models.Friendship) error {
	query := `
		INSERT INTO friendships (id, requester_id, receiver_id, status, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.Exec(ctx, query, f.ID, f.RequesterID, f.ReceiverID, f.Status, f.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("friendship exists: %w", ErrDuplicate)
		}
		return fmt.Errorf("failed to create friendship: %w", err)
	}
	return nil
}

// GetBetween retrieves the single edge between two users, in either
// direction and any status
func (r *FriendshipRepository) GetBetween(ctx context.Context, userA, userB string) (*models.Friendship, error) {
	query := `
		SELECT ` + friendshipColumns + `
		FROM friendships
		WHERE (requester_id = $1 AND receiver_id = $2)
		   OR (requester_id = $2 AND receiver_id = $1)
	`
	var f models.Friendship
	err := r.db.QueryRow(ctx, query, userA, userB).Scan(
		&f.ID, &f.RequesterID, &f.ReceiverID, &f.Status, &f.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("friendship: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get friendship: %w", err)
	}
	return &f, nil
}

// ListByUser retrieves all edges touching a user, filtered by status
// when status is non-empty
func (r *FriendshipRepository) ListByUser(ctx context.Context, userID, status string) ([]*models.Friendship, error) {
	query := `
		SELECT ` + friendshipColumns + `
		FROM friendships
		WHERE (requester_id = $1 OR receiver_id = $1)
		  AND ($2 = '' OR status = $2)
	`
	rows, err := r.db.Query(ctx, query, userID, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list friendships: %w", err)
	}
	return scanFriendships(rows)
}

// ListPendingReceived retrieves pending requests where the user is the
// receiver
func (r *FriendshipRepository) ListPendingReceived(ctx context.Context, userID string) ([]*models.Friendship, error) {
	query := `
		SELECT ` + friendshipColumns + `
		FROM friendships
		WHERE receiver_id = $1 AND status = $2
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query, userID, models.FriendshipPending)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending requests: %w", err)
	}
	return scanFriendships(rows)
}

// ListTouching retrieves all edges where either endpoint is in the
// given user set, any status
func (r *FriendshipRepository) ListTouching(ctx context.Context, userIDs []string) ([]*models.Friendship, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	query := `
		SELECT ` + friendshipColumns + `
		FROM friendships
		WHERE requester_id = ANY($1) OR receiver_id = ANY($1)
	`
	rows, err := r.db.Query(ctx, query, userIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list friendships: %w", err)
	}
	return scanFriendships(rows)
}

// UpdateStatus sets the status of a friendship
func (r *FriendshipRepository) UpdateStatus(ctx context.Context, id, status string) error {
	query := `UPDATE friendships SET status = $1 WHERE id = $2`
	result, err := r.db.Exec(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update friendship: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("friendship %s: %w", id, ErrNotFound)
	}
	return nil
}

// Delete removes a friendship row
func (r *FriendshipRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM friendships WHERE id = $1`
	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete friendship: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("friendship %s: %w", id, ErrNotFound)
	}
	return nil
}

// CountPendingReceived counts pending requests addressed to a user
func (r *FriendshipRepository) CountPendingReceived(ctx context.Context, userID string) (int, error) {
	query := `SELECT COUNT(*) FROM friendships WHERE receiver_id = $1 AND status = $2`
	var count int
	if err := r.db.QueryRow(ctx, query, userID, models.FriendshipPending).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count pending requests: %w", err)
	}
	return count, nil
}

func scanFriendships(rows pgx.Rows) ([]*models.Friendship, error) {
	defer rows.Close()

	var result []*models.Friendship
	for rows.Next() {
		var f models.Friendship
		if err := rows.Scan(&f.ID, &f.RequesterID, &f.ReceiverID, &f.Status, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan friendship: %w", err)
		}
		result = append(result, &f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating friendships: %w", err)
	}
	return result, nil
}
