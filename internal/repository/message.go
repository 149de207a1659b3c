package repository

import (
	"context"
	"fmt"

	"vibe-social-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// MessageRepository handles database operations for messages
type MessageRepository struct {
	db *pgxpool.Pool
}

// NewMessageRepository creates a new message repository
func NewMessageRepository(db *pgxpool.Pool) *MessageRepository {
	return &MessageRepository{db: db}
}

const messageColumns = `id, sender_id, receiver_id, content, type, media_url,
		amount, transaction_hash, is_read, created_at`

// Create appends a message
func (r *MessageRepository) Create(ctx context.Context, m *models.Message) error {
	query := `
		INSERT INTO messages (id, sender_id, receiver_id, content, type, media_url,
			amount, transaction_hash, is_read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.Exec(ctx, query,
		m.ID, m.SenderID, m.ReceiverID, m.Content, m.Type, m.MediaURL,
		m.Amount, m.TransactionHash, m.IsRead, m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}
	return nil
}

// ListByUser retrieves all messages a user sent or received, newest
// first
func (r *MessageRepository) ListByUser(ctx context.Context, userID string) ([]*models.Message, error) {
	query := `
		SELECT ` + messageColumns + `
		FROM messages
		WHERE sender_id = $1 OR receiver_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return scanMessages(rows)
}

// ListThread retrieves the full history between two users, oldest
// first
func (r *MessageRepository) ListThread(ctx context.Context, userA, userB string) ([]*models.Message, error) {
	query := `
		SELECT ` + messageColumns + `
		FROM messages
		WHERE (sender_id = $1 AND receiver_id = $2)
		   OR (sender_id = $2 AND receiver_id = $1)
		ORDER BY created_at
	`
	rows, err := r.db.Query(ctx, query, userA, userB)
	if err != nil {
		return nil, fmt.Errorf("failed to list thread: %w", err)
	}
	return scanMessages(rows)
}

// MarkRead flips is_read on all unread messages from sender to
// receiver in one statement
func (r *MessageRepository) MarkRead(ctx context.Context, senderID, receiverID string) error {
	query := `
		UPDATE messages
		SET is_read = true
		WHERE sender_id = $1 AND receiver_id = $2 AND is_read = false
	`
	if _, err := r.db.Exec(ctx, query, senderID, receiverID); err != nil {
		return fmt.Errorf("failed to mark messages read: %w", err)
	}
	return nil
}

// CountUnread counts unread messages addressed to a user
func (r *MessageRepository) CountUnread(ctx context.Context, receiverID string) (int, error) {
	query := `SELECT COUNT(*) FROM messages WHERE receiver_id = $1 AND is_read = false`
	var count int
	if err := r.db.QueryRow(ctx, query, receiverID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count unread messages: %w", err)
	}
	return count, nil
}

func scanMessages(rows pgx.Rows) ([]*models.Message, error) {
	defer rows.Close()

	var result []*models.Message
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(
			&m.ID, &m.SenderID, &m.ReceiverID, &m.Content, &m.Type, &m.MediaURL,
			&m.Amount, &m.TransactionHash, &m.IsRead, &m.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		result = append(result, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating messages: %w", err)
	}
	return result, nil
}
