package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"vibe-social-backend/internal/models"
	"vibe-social-backend/internal/repository"

	"github.com/google/uuid"
)

const discoveryLimit = 10

// FriendsService handles the friend graph: requests, responses,
// status checks and friend-of-friend discovery
type FriendsService struct {
	friendships FriendshipStore
	users       UserStore
	notifier    Notifier
}

// NewFriendsService creates a new friends service
func NewFriendsService(friendships FriendshipStore, users UserStore, notifier Notifier) *FriendsService {
	return &FriendsService{
		friendships: friendships,
		users:       users,
		notifier:    notifier,
	}
}

// DiscoveredUser is a friend-of-friend candidate with its mutual count
type DiscoveredUser struct {
	models.UserSummary
	MutualFriends int `json:"mutual_friends"`
}

// Overview bundles the caller's friends with discovery candidates
type Overview struct {
	Friends   []models.UserSummary `json:"friends"`
	Discovery []DiscoveredUser     `json:"discovery"`
}

// PendingRequest is an incoming request with requester details
type PendingRequest struct {
	ID        string             `json:"id"`
	Requester models.UserSummary `json:"requester"`
	CreatedAt time.Time          `json:"created_at"`
}

// SendRequest creates a pending friendship from caller to target.
// Fails on self-targeting and when any edge already exists between
// the pair, in either direction and any status.
func (s *FriendsService) SendRequest(ctx context.Context, caller *models.User, targetID string) error {
	if targetID == caller.ID {
		return fmt.Errorf("%w: cannot add yourself", ErrSelf)
	}
	if _, err := s.users.GetByID(ctx, targetID); err != nil {
		return err
	}

	existing, err := s.friendships.GetBetween(ctx, caller.ID, targetID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	if existing != nil {
		return fmt.Errorf("%w: %s", ErrAlreadyExists, existing.Status)
	}

	f := &models.Friendship{
		ID:          uuid.New().String(),
		RequesterID: caller.ID,
		ReceiverID:  targetID,
		Status:      models.FriendshipPending,
		CreatedAt:   time.Now(),
	}
	if err := s.friendships.Create(ctx, f); err != nil {
		// Both sides requesting at once: the unique pair index
		// rejects the loser.
		if errors.Is(err, repository.ErrDuplicate) {
			return fmt.Errorf("%w: pending", ErrAlreadyExists)
		}
		return err
	}

	if s.notifier != nil {
		s.notifier.Notify(targetID, Event{
			Type: EventFriendRequest,
			Data: caller.Summary(),
		})
	}
	return nil
}

// Respond accepts or rejects a pending request. Only valid when a
// pending edge exists with otherID as requester and caller as
// receiver; the requester cannot accept their own request.
func (s *FriendsService) Respond(ctx context.Context, caller *models.User, otherID, action string) error {
	if action != "accept" && action != "reject" {
		return fmt.Errorf("%w: unknown action %q", ErrInvalid, action)
	}

	f, err := s.friendships.GetBetween(ctx, otherID, caller.ID)
	if err != nil {
		return err
	}
	if f.Status != models.FriendshipPending || f.RequesterID != otherID || f.ReceiverID != caller.ID {
		return fmt.Errorf("pending request: %w", ErrNotFound)
	}

	if action == "accept" {
		return s.friendships.UpdateStatus(ctx, f.ID, models.FriendshipAccepted)
	}
	return s.friendships.Delete(ctx, f.ID)
}

// StatusOf reports the relationship between caller and other as one
// of none, friends, sent, received
func (s *FriendsService) StatusOf(ctx context.Context, caller *models.User, otherID string) (string, error) {
	if otherID == "" || otherID == caller.ID {
		return "none", nil
	}

	f, err := s.friendships.GetBetween(ctx, caller.ID, otherID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "none", nil
		}
		return "", err
	}

	switch f.Status {
	case models.FriendshipAccepted:
		return "friends", nil
	case models.FriendshipPending:
		if f.RequesterID == caller.ID {
			return "sent", nil
		}
		return "received", nil
	}
	return "none", nil
}

// FriendIDs returns the IDs of the caller's accepted friends
func (s *FriendsService) FriendIDs(ctx context.Context, userID string) ([]string, error) {
	edges, err := s.friendships.ListByUser(ctx, userID, models.FriendshipAccepted)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(edges))
	for _, f := range edges {
		ids = append(ids, f.Other(userID))
	}
	return ids, nil
}

// Overview returns the caller's friends and friend-of-friend
// discovery candidates ranked by mutual-friend count, capped at 10.
// Candidates never include the caller or an existing direct friend.
func (s *FriendsService) Overview(ctx context.Context, caller *models.User) (*Overview, error) {
	friendIDs, err := s.FriendIDs(ctx, caller.ID)
	if err != nil {
		return nil, err
	}

	direct := make(map[string]bool, len(friendIDs))
	for _, id := range friendIDs {
		direct[id] = true
	}

	// Second hop: every edge touching a direct friend counts as a
	// connecting edge, regardless of its status.
	edges, err := s.friendships.ListTouching(ctx, friendIDs)
	if err != nil {
		return nil, err
	}

	mutualCounts := make(map[string]int)
	for _, f := range edges {
		other := f.RequesterID
		if direct[f.RequesterID] {
			other = f.ReceiverID
		}
		if other == caller.ID || direct[other] {
			continue
		}
		mutualCounts[other]++
	}

	candidateIDs := make([]string, 0, len(mutualCounts))
	for id := range mutualCounts {
		candidateIDs = append(candidateIDs, id)
	}
	sort.Slice(candidateIDs, func(i, j int) bool {
		a, b := candidateIDs[i], candidateIDs[j]
		if mutualCounts[a] != mutualCounts[b] {
			return mutualCounts[a] > mutualCounts[b]
		}
		return a < b
	})
	if len(candidateIDs) > discoveryLimit {
		candidateIDs = candidateIDs[:discoveryLimit]
	}

	users, err := s.users.GetByIDs(ctx, append(append([]string{}, friendIDs...), candidateIDs...))
	if err != nil {
		return nil, err
	}

	overview := &Overview{
		Friends:   make([]models.UserSummary, 0, len(friendIDs)),
		Discovery: make([]DiscoveredUser, 0, len(candidateIDs)),
	}
	for _, id := range friendIDs {
		if u, ok := users[id]; ok {
			overview.Friends = append(overview.Friends, u.Summary())
		}
	}
	for _, id := range candidateIDs {
		u, ok := users[id]
		if !ok {
			continue
		}
		overview.Discovery = append(overview.Discovery, DiscoveredUser{
			UserSummary:   u.Summary(),
			MutualFriends: mutualCounts[id],
		})
	}
	return overview, nil
}

// ListPendingRequests returns incoming pending requests with
// requester details, newest first
func (s *FriendsService) ListPendingRequests(ctx context.Context, caller *models.User) ([]PendingRequest, error) {
	pending, err := s.friendships.ListPendingReceived(ctx, caller.ID)
	if err != nil {
		return nil, err
	}

	requesterIDs := make([]string, 0, len(pending))
	for _, f := range pending {
		requesterIDs = append(requesterIDs, f.RequesterID)
	}
	users, err := s.users.GetByIDs(ctx, requesterIDs)
	if err != nil {
		return nil, err
	}

	result := make([]PendingRequest, 0, len(pending))
	for _, f := range pending {
		u, ok := users[f.RequesterID]
		if !ok {
			continue
		}
		result = append(result, PendingRequest{
			ID:        f.ID,
			Requester: u.Summary(),
			CreatedAt: f.CreatedAt,
		})
	}
	return result, nil
}

// CountPendingReceived counts incoming pending requests
func (s *FriendsService) CountPendingReceived(ctx context.Context, userID string) (int, error) {
	return s.friendships.CountPendingReceived(ctx, userID)
}
