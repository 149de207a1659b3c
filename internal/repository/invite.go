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

// InviteRepository handles database operations for invites
type InviteRepository struct {
	db *pgxpool.Pool
}

// NewInviteRepository creates a new invite repository
func NewInviteRepository(db *pgxpool.Pool) *InviteRepository {
	return &InviteRepository{db: db}
}

// Create creates a new invite
func (r *InviteRepository) Create(ctx context.Context, invite *models.Invite) error {
	query := `
		INSERT INTO invites (id, code, creator_id, status, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.Exec(ctx, query,
		invite.ID, invite.Code, invite.CreatorID, invite.Status, invite.ExpiresAt, invite.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("invite code collision: %w", ErrDuplicate)
		}
		return fmt.Errorf("failed to create invite: %w", err)
	}
	return nil
}

// GetByCode retrieves an invite by its code
func (r *InviteRepository) GetByCode(ctx context.Context, code string) (*models.Invite, error) {
	query := `
		SELECT id, code, creator_id, status, expires_at, created_at
		FROM invites
		WHERE code = $1
	`
	var invite models.Invite
	err := r.db.QueryRow(ctx, query, code).Scan(
		&invite.ID, &invite.Code, &invite.CreatorID, &invite.Status,
		&invite.ExpiresAt, &invite.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("invite: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get invite: %w", err)
	}
	return &invite, nil
}

// ListActiveByCreator retrieves a creator's active, unexpired invites,
// newest first
func (r *InviteRepository) ListActiveByCreator(ctx context.Context, creatorID string, now time.Time) ([]*models.Invite, error) {
	query := `
		SELECT id, code, creator_id, status, expires_at, created_at
		FROM invites
		WHERE creator_id = $1
		  AND status = $2
		  AND (expires_at IS NULL OR expires_at > $3)
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query, creatorID, models.InviteActive, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list invites: %w", err)
	}
	defer rows.Close()

	var result []*models.Invite
	for rows.Next() {
		var invite models.Invite
		if err := rows.Scan(
			&invite.ID, &invite.Code, &invite.CreatorID, &invite.Status,
			&invite.ExpiresAt, &invite.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan invite: %w", err)
		}
		result = append(result, &invite)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating invites: %w", err)
	}
	return result, nil
}

// SetStatus updates the status of an invite
func (r *InviteRepository) SetStatus(ctx context.Context, id, status string) error {
	query := `UPDATE invites SET status = $1 WHERE id = $2`
	result, err := r.db.Exec(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update invite: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("invite %s: %w", id, ErrNotFound)
	}
	return nil
}
