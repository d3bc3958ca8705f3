package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/pulse/pkg/cryptox"
)

func TestInviteService_InviteAndAccept(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	creator := env.signup(t, "owner@example.com")

	results, err := env.invites.InviteUsers(ctx, creator, []string{"a@x.com", "b@x.com", "A@x.com"})
	require.NoError(t, err)
	require.Len(t, results, 2)
	require.Equal(t, "a@x.com", results[0].Email)
	require.Equal(t, "b@x.com", results[1].Email)

	for _, r := range results {
		require.NoError(t, r.Err)
		u, err := env.users.GetUserByID(ctx, r.UserID, false)
		require.NoError(t, err)
		require.False(t, u.IsActive)
		require.False(t, u.IsCreator)
		require.Equal(t, creator.OwnCompanyID, u.CompanyID)
		require.NotEmpty(t, u.InviteHash)
		require.NotNil(t, u.InviteExpiresAt)
	}

	tokenA := env.mailer.tokenFor(t, "a@x.com")
	tokenB := env.mailer.tokenFor(t, "b@x.com")
	require.NotEmpty(t, tokenA)
	require.NotEmpty(t, tokenB)
	require.NotEqual(t, tokenA, tokenB)
	require.Equal(t, 2, env.mailer.count())

	t.Run("notification content", func(t *testing.T) {
		env.mailer.mu.Lock()
		msg := env.mailer.sent[0]
		env.mailer.mu.Unlock()

		require.Equal(t, "Pulse Invite", msg.Subject)
		require.Equal(t, "Welcome to Pulse, "+msg.To, msg.Data["message"])
		require.Contains(t, msg.HTMLBody, msg.Data["inviteKey"])
	})

	t.Run("placeholder credential is not guessable", func(t *testing.T) {
		a, err := env.users.GetUserByID(ctx, results[0].UserID, false)
		require.NoError(t, err)
		b, err := env.users.GetUserByID(ctx, results[1].UserID, false)
		require.NoError(t, err)
		require.NotEqual(t, a.PasswordHash, b.PasswordHash)
		require.Error(t, cryptox.VerifyPassword("", a.PasswordHash))
	})

	t.Run("lookup by token", func(t *testing.T) {
		u, err := env.invites.GetInvite(ctx, tokenA)
		require.NoError(t, err)
		require.Equal(t, results[0].UserID, u.ID)

		_, err = env.invites.GetInvite(ctx, "not-a-token")
		require.ErrorIs(t, err, ErrInviteNotFound)
	})

	au, err := env.invites.AcceptInvite(ctx, tokenA, "new-password", "Alice", "Able")
	require.NoError(t, err)
	require.Equal(t, results[0].UserID, au.User.ID)
	require.True(t, au.User.IsActive)
	require.Equal(t, "Alice", au.User.FirstName)
	require.NotEmpty(t, au.Token)

	claims, err := env.verifier.Verify(au.Token)
	require.NoError(t, err)
	require.Equal(t, au.User.ID, claims.Subject)

	t.Run("only the invitee is activated", func(t *testing.T) {
		b, err := env.users.GetUserByID(ctx, results[1].UserID, false)
		require.NoError(t, err)
		require.False(t, b.IsActive)
	})

	t.Run("token is consumed", func(t *testing.T) {
		_, err := env.invites.AcceptInvite(ctx, tokenA, "again", "A", "A")
		require.ErrorIs(t, err, ErrInviteNotFound)
		_, err = env.invites.GetInvite(ctx, tokenA)
		require.ErrorIs(t, err, ErrInviteNotFound)
	})

	t.Run("accepted user can sign in", func(t *testing.T) {
		_, err := env.users.Authenticate(ctx, "a@x.com", "new-password")
		require.NoError(t, err)
	})
}

func TestInviteService_IndependentOutcomes(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	creator := env.signup(t, "owner@example.com")
	env.mailer.failFor("bounce@x.com")

	results, err := env.invites.InviteUsers(ctx, creator, []string{
		"ok@x.com",
		"bounce@x.com",
		"owner@example.com",
		"not an address",
	})
	require.NoError(t, err)
	require.Len(t, results, 4)

	require.NoError(t, results[0].Err)
	require.NotEmpty(t, results[0].UserID)

	// delivery failed but the user was kept
	require.ErrorIs(t, results[1].Err, errDeliveryFailed)
	require.NotEmpty(t, results[1].UserID)
	_, err = env.users.GetUserByID(ctx, results[1].UserID, false)
	require.NoError(t, err)

	require.ErrorIs(t, results[2].Err, ErrUserAlreadyExists)
	require.Empty(t, results[2].UserID)

	require.ErrorIs(t, results[3].Err, ErrInvalidRequest)

	require.Equal(t, 1, env.mailer.count())
}

func TestInviteService_Guard(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	creator := env.signup(t, "owner@example.com")
	member := env.member(t, creator, "member@example.com")

	_, err := env.invites.InviteUsers(ctx, member, []string{"friend@x.com"})
	require.ErrorIs(t, err, ErrNotOwner)

	_, err = env.invites.InviteUsers(ctx, creator, []string{" ", ""})
	require.ErrorIs(t, err, ErrInvalidRequest)
}

func TestInviteService_Expiry(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	creator := env.signup(t, "owner@example.com")
	env.invites.TTL = time.Millisecond

	results, err := env.invites.InviteUsers(ctx, creator, []string{"late@x.com"})
	require.NoError(t, err)
	require.NoError(t, results[0].Err)
	token := env.mailer.tokenFor(t, "late@x.com")

	time.Sleep(5 * time.Millisecond)

	_, err = env.invites.GetInvite(ctx, token)
	require.ErrorIs(t, err, ErrInviteNotFound)
	_, err = env.invites.AcceptInvite(ctx, token, "pw", "L", "L")
	require.ErrorIs(t, err, ErrInviteNotFound)

	t.Run("housekeeping removes the expired invitee", func(t *testing.T) {
		hk := NewHousekeepingService(env.store, discardLogger(), time.Hour)
		require.Equal(t, int64(1), hk.Cleanup(ctx))

		_, err := env.users.GetUserByID(ctx, results[0].UserID, false)
		require.ErrorIs(t, err, ErrUserNotFound)

		require.Zero(t, hk.Cleanup(ctx))
	})
}
