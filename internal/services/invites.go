package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"vibe-social-backend/internal/models"
	"vibe-social-backend/internal/repository"

	"github.com/google/uuid"
)

const (
	inviteCodeBytes  = 6
	inviteTTLDays    = 7
	inviteMaxRetries = 5
)

// InvitesService handles shareable friend-invite codes. A code stays
// active after redemption and can be redeemed by any number of
// distinct users until the creator revokes it.
type InvitesService struct {
	invites     InviteStore
	friendships FriendshipStore
	users       UserStore
}

// NewInvitesService creates a new invites service
func NewInvitesService(invites InviteStore, friendships FriendshipStore, users UserStore) *InvitesService {
	return &InvitesService{
		invites:     invites,
		friendships: friendships,
		users:       users,
	}
}

// InvitePreview is the unauthenticated projection of an invite
type InvitePreview struct {
	Code      string     `json:"code"`
	ExpiresAt *time.Time `json:"expires_at"`
	Creator   struct {
		ID          string  `json:"id"`
		DisplayName *string `json:"display_name"`
		AvatarURL   *string `json:"avatar_url"`
		Bio         *string `json:"bio"`
	} `json:"creator"`
}

// Create generates a new invite code with a 7-day expiry
func (s *InvitesService) Create(ctx context.Context, caller *models.User) (*models.Invite, error) {
	expiresAt := time.Now().AddDate(0, 0, inviteTTLDays)

	for i := 0; i < inviteMaxRetries; i++ {
		buf := make([]byte, inviteCodeBytes)
		if _, err := rand.Read(buf); err != nil {
			return nil, fmt.Errorf("failed to generate invite code: %w", err)
		}

		invite := &models.Invite{
			ID:        uuid.New().String(),
			Code:      hex.EncodeToString(buf),
			CreatorID: caller.ID,
			Status:    models.InviteActive,
			ExpiresAt: &expiresAt,
			CreatedAt: time.Now(),
		}
		err := s.invites.Create(ctx, invite)
		if err == nil {
			return invite, nil
		}
		if !errors.Is(err, repository.ErrDuplicate) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("failed to generate unique invite code after %d attempts", inviteMaxRetries)
}

// List returns the caller's active, unexpired invites
func (s *InvitesService) List(ctx context.Context, caller *models.User) ([]*models.Invite, error) {
	return s.invites.ListActiveByCreator(ctx, caller.ID, time.Now())
}

// Preview returns invite details with limited creator info for the
// invite landing page
func (s *InvitesService) Preview(ctx context.Context, code string) (*InvitePreview, error) {
	invite, err := s.activeInvite(ctx, code)
	if err != nil {
		return nil, err
	}

	creator, err := s.users.GetByID(ctx, invite.CreatorID)
	if err != nil {
		return nil, err
	}

	preview := &InvitePreview{
		Code:      invite.Code,
		ExpiresAt: invite.ExpiresAt,
	}
	preview.Creator.ID = creator.ID
	preview.Creator.DisplayName = creator.DisplayName
	preview.Creator.AvatarURL = creator.AvatarURL
	preview.Creator.Bio = creator.Bio
	return preview, nil
}

// Redeem creates an accepted friendship between the redeemer and the
// invite's creator, bypassing the pending state. Redeeming when a
// friendship already exists succeeds without change. The code is not
// consumed.
func (s *InvitesService) Redeem(ctx context.Context, caller *models.User, code string) error {
	invite, err := s.activeInvite(ctx, code)
	if err != nil {
		return err
	}
	if invite.CreatorID == caller.ID {
		return fmt.Errorf("%w: cannot accept your own invite", ErrSelf)
	}

	_, err = s.friendships.GetBetween(ctx, caller.ID, invite.CreatorID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrNotFound) {
		return err
	}

	f := &models.Friendship{
		ID:          uuid.New().String(),
		RequesterID: caller.ID,
		ReceiverID:  invite.CreatorID,
		Status:      models.FriendshipAccepted,
		CreatedAt:   time.Now(),
	}
	if err := s.friendships.Create(ctx, f); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil
		}
		return err
	}
	return nil
}

// Revoke deactivates an invite; creator only
func (s *InvitesService) Revoke(ctx context.Context, caller *models.User, code string) error {
	invite, err := s.invites.GetByCode(ctx, code)
	if err != nil {
		return err
	}
	if invite.CreatorID != caller.ID {
		return fmt.Errorf("%w: not the invite creator", ErrForbidden)
	}
	return s.invites.SetStatus(ctx, invite.ID, models.InviteUsed)
}

func (s *InvitesService) activeInvite(ctx context.Context, code string) (*models.Invite, error) {
	invite, err := s.invites.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if invite.Status != models.InviteActive {
		return nil, fmt.Errorf("%w: invite revoked", ErrGone)
	}
	if invite.ExpiresAt != nil && invite.ExpiresAt.Before(time.Now()) {
		return nil, fmt.Errorf("%w: invite expired", ErrGone)
	}
	return invite, nil
}
