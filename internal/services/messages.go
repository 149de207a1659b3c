package services

import (
	"context"
	"fmt"
	"time"

	"vibe-social-backend/internal/models"

	"github.com/google/uuid"
)

// MessagesService handles direct messages between users
type MessagesService struct {
	messages MessageStore
	users    UserStore
	notifier Notifier
}

// NewMessagesService creates a new messages service
func NewMessagesService(messages MessageStore, users UserStore, notifier Notifier) *MessagesService {
	return &MessagesService{
		messages: messages,
		users:    users,
		notifier: notifier,
	}
}

// Conversation is the latest message exchanged with one counterparty
type Conversation struct {
	User        models.UserSummary `json:"user"`
	LastMessage *models.Message    `json:"last_message"`
}

// ThreadMessage is a message with its sender attached
type ThreadMessage struct {
	models.Message
	Sender models.UserSummary `json:"sender"`
}

// SendMessageInput carries the fields of a new message. Amount is
// decimal text; the transaction hash is stored as-is.
type SendMessageInput struct {
	ReceiverID      string
	Content         *string
	Type            string
	MediaURL        *string
	Amount          *string
	TransactionHash *string
}

// Send appends a message and notifies the receiver if connected
func (s *MessagesService) Send(ctx context.Context, caller *models.User, input SendMessageInput) (*models.Message, error) {
	if input.ReceiverID == "" {
		return nil, fmt.Errorf("%w: receiver required", ErrInvalid)
	}
	if _, err := s.users.GetByID(ctx, input.ReceiverID); err != nil {
		return nil, err
	}

	msgType := input.Type
	if msgType == "" {
		msgType = models.MessageTypeText
	}

	m := &models.Message{
		ID:              uuid.New().String(),
		SenderID:        caller.ID,
		ReceiverID:      input.ReceiverID,
		Content:         input.Content,
		Type:            msgType,
		MediaURL:        input.MediaURL,
		Amount:          input.Amount,
		TransactionHash: input.TransactionHash,
		CreatedAt:       time.Now(),
	}
	if err := s.messages.Create(ctx, m); err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.Notify(input.ReceiverID, Event{
			Type: EventMessageReceived,
			Data: m,
		})
	}
	return m, nil
}

// ListConversations reduces the caller's messages to one entry per
// counterparty, keeping the most recent message of each
func (s *MessagesService) ListConversations(ctx context.Context, caller *models.User) ([]Conversation, error) {
	all, err := s.messages.ListByUser(ctx, caller.ID)
	if err != nil {
		return nil, err
	}

	// Newest-first input: the first message seen per counterparty is
	// the latest one.
	order := make([]string, 0)
	latest := make(map[string]*models.Message)
	for _, m := range all {
		other := m.SenderID
		if m.SenderID == caller.ID {
			other = m.ReceiverID
		}
		if _, seen := latest[other]; !seen {
			latest[other] = m
			order = append(order, other)
		}
	}

	users, err := s.users.GetByIDs(ctx, order)
	if err != nil {
		return nil, err
	}

	result := make([]Conversation, 0, len(order))
	for _, id := range order {
		u, ok := users[id]
		if !ok {
			continue
		}
		result = append(result, Conversation{
			User:        u.Summary(),
			LastMessage: latest[id],
		})
	}
	return result, nil
}

// Thread returns the full history with one counterparty, oldest first
func (s *MessagesService) Thread(ctx context.Context, caller *models.User, otherID string) ([]ThreadMessage, error) {
	history, err := s.messages.ListThread(ctx, caller.ID, otherID)
	if err != nil {
		return nil, err
	}

	users, err := s.users.GetByIDs(ctx, []string{caller.ID, otherID})
	if err != nil {
		return nil, err
	}

	result := make([]ThreadMessage, 0, len(history))
	for _, m := range history {
		tm := ThreadMessage{Message: *m}
		if u, ok := users[m.SenderID]; ok {
			tm.Sender = u.Summary()
		}
		result = append(result, tm)
	}
	return result, nil
}

// MarkRead flips every unread message from sender to caller in one
// statement
func (s *MessagesService) MarkRead(ctx context.Context, caller *models.User, senderID string) error {
	return s.messages.MarkRead(ctx, senderID, caller.ID)
}

// CountUnread counts unread messages addressed to the caller
func (s *MessagesService) CountUnread(ctx context.Context, userID string) (int, error) {
	return s.messages.CountUnread(ctx, userID)
}
