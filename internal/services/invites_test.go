package services

import (
	"context"
	"testing"
	"time"

	"vibe-social-backend/internal/models"
	"vibe-social-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type invitesFixture struct {
	svc         *InvitesService
	invites     *memInviteStore
	friendships *memFriendshipStore
	users       *memUserStore
}

func newInvitesFixture() *invitesFixture {
	invites := newMemInviteStore()
	friendships := newMemFriendshipStore()
	users := newMemUserStore()
	return &invitesFixture{
		svc:         NewInvitesService(invites, friendships, users),
		invites:     invites,
		friendships: friendships,
		users:       users,
	}
}

func TestCreateInvite(t *testing.T) {
	fx := newInvitesFixture()
	ctx := context.Background()
	alice := seedUser(t, fx.users, "0xalice", strPtr("alice"))

	invite, err := fx.svc.Create(ctx, alice)
	require.NoError(t, err)
	assert.Len(t, invite.Code, inviteCodeBytes*2)
	assert.Equal(t, models.InviteActive, invite.Status)
	require.NotNil(t, invite.ExpiresAt)
	assert.WithinDuration(t, time.Now().AddDate(0, 0, inviteTTLDays), *invite.ExpiresAt, time.Minute)
}

// collidingInviteStore rejects the first insert as a code collision.
type collidingInviteStore struct {
	*memInviteStore
	collided bool
}

func (s *collidingInviteStore) Create(ctx context.Context, invite *models.Invite) error {
	if !s.collided {
		s.collided = true
		return repository.ErrDuplicate
	}
	return s.memInviteStore.Create(ctx, invite)
}

func TestCreateInviteRetriesOnCollision(t *testing.T) {
	users := newMemUserStore()
	store := &collidingInviteStore{memInviteStore: newMemInviteStore()}
	svc := NewInvitesService(store, newMemFriendshipStore(), users)
	alice := seedUser(t, users, "0xalice", strPtr("alice"))

	invite, err := svc.Create(context.Background(), alice)
	require.NoError(t, err)
	assert.NotEmpty(t, invite.Code)
}

func TestListInvites(t *testing.T) {
	fx := newInvitesFixture()
	ctx := context.Background()
	alice := seedUser(t, fx.users, "0xalice", strPtr("alice"))

	active, err := fx.svc.Create(ctx, alice)
	require.NoError(t, err)

	revoked, err := fx.svc.Create(ctx, alice)
	require.NoError(t, err)
	require.NoError(t, fx.svc.Revoke(ctx, alice, revoked.Code))

	past := time.Now().Add(-time.Hour)
	require.NoError(t, fx.invites.Create(ctx, &models.Invite{
		ID:        uuid.New().String(),
		Code:      "expiredcode1",
		CreatorID: alice.ID,
		Status:    models.InviteActive,
		ExpiresAt: &past,
		CreatedAt: past,
	}))

	invites, err := fx.svc.List(ctx, alice)
	require.NoError(t, err)
	require.Len(t, invites, 1)
	assert.Equal(t, active.Code, invites[0].Code)
}

func TestInvitePreview(t *testing.T) {
	fx := newInvitesFixture()
	ctx := context.Background()
	alice := seedUser(t, fx.users, "0xalice", strPtr("alice"))
	alice.Bio = strPtr("party host")
	require.NoError(t, fx.users.UpdateProfile(ctx, alice))

	invite, err := fx.svc.Create(ctx, alice)
	require.NoError(t, err)

	preview, err := fx.svc.Preview(ctx, invite.Code)
	require.NoError(t, err)
	assert.Equal(t, invite.Code, preview.Code)
	assert.Equal(t, alice.ID, preview.Creator.ID)
	assert.Equal(t, "alice", *preview.Creator.DisplayName)
	assert.Equal(t, "party host", *preview.Creator.Bio)

	_, err = fx.svc.Preview(ctx, "nosuchcode00")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRedeemCreatesAcceptedFriendship(t *testing.T) {
	fx := newInvitesFixture()
	ctx := context.Background()
	alice := seedUser(t, fx.users, "0xalice", strPtr("alice"))
	bob := seedUser(t, fx.users, "0xbob", strPtr("bob"))

	invite, err := fx.svc.Create(ctx, alice)
	require.NoError(t, err)

	require.NoError(t, fx.svc.Redeem(ctx, bob, invite.Code))

	f, err := fx.friendships.GetBetween(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, models.FriendshipAccepted, f.Status)
}

func TestRedeemIsMultiUse(t *testing.T) {
	fx := newInvitesFixture()
	ctx := context.Background()
	alice := seedUser(t, fx.users, "0xalice", strPtr("alice"))
	bob := seedUser(t, fx.users, "0xbob", strPtr("bob"))
	carol := seedUser(t, fx.users, "0xcarol", strPtr("carol"))

	invite, err := fx.svc.Create(ctx, alice)
	require.NoError(t, err)

	require.NoError(t, fx.svc.Redeem(ctx, bob, invite.Code))
	require.NoError(t, fx.svc.Redeem(ctx, carol, invite.Code))

	_, err = fx.friendships.GetBetween(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	_, err = fx.friendships.GetBetween(ctx, alice.ID, carol.ID)
	require.NoError(t, err)

	stored, err := fx.invites.GetByCode(ctx, invite.Code)
	require.NoError(t, err)
	assert.Equal(t, models.InviteActive, stored.Status)
}

func TestRedeemRejectsSelf(t *testing.T) {
	fx := newInvitesFixture()
	ctx := context.Background()
	alice := seedUser(t, fx.users, "0xalice", strPtr("alice"))

	invite, err := fx.svc.Create(ctx, alice)
	require.NoError(t, err)

	require.ErrorIs(t, fx.svc.Redeem(ctx, alice, invite.Code), ErrSelf)
}

func TestRedeemWithExistingEdgeIsNoOp(t *testing.T) {
	fx := newInvitesFixture()
	ctx := context.Background()
	alice := seedUser(t, fx.users, "0xalice", strPtr("alice"))
	bob := seedUser(t, fx.users, "0xbob", strPtr("bob"))

	pendingEdge(t, fx.friendships, bob, alice)

	invite, err := fx.svc.Create(ctx, alice)
	require.NoError(t, err)
	require.NoError(t, fx.svc.Redeem(ctx, bob, invite.Code))

	// The pending request is left as-is, not upgraded.
	f, err := fx.friendships.GetBetween(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, models.FriendshipPending, f.Status)
}

func TestRevoke(t *testing.T) {
	fx := newInvitesFixture()
	ctx := context.Background()
	alice := seedUser(t, fx.users, "0xalice", strPtr("alice"))
	bob := seedUser(t, fx.users, "0xbob", strPtr("bob"))

	invite, err := fx.svc.Create(ctx, alice)
	require.NoError(t, err)

	require.ErrorIs(t, fx.svc.Revoke(ctx, bob, invite.Code), ErrForbidden)
	require.NoError(t, fx.svc.Revoke(ctx, alice, invite.Code))

	_, err = fx.svc.Preview(ctx, invite.Code)
	require.ErrorIs(t, err, ErrGone)
	require.ErrorIs(t, fx.svc.Redeem(ctx, bob, invite.Code), ErrGone)
}

func TestRedeemExpired(t *testing.T) {
	fx := newInvitesFixture()
	ctx := context.Background()
	alice := seedUser(t, fx.users, "0xalice", strPtr("alice"))
	bob := seedUser(t, fx.users, "0xbob", strPtr("bob"))

	past := time.Now().Add(-time.Hour)
	require.NoError(t, fx.invites.Create(ctx, &models.Invite{
		ID:        uuid.New().String(),
		Code:      "expiredcode1",
		CreatorID: alice.ID,
		Status:    models.InviteActive,
		ExpiresAt: &past,
		CreatedAt: past,
	}))

	require.ErrorIs(t, fx.svc.Redeem(ctx, bob, "expiredcode1"), ErrGone)
}
