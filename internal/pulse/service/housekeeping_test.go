package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestHousekeepingService_KeepsLiveInvitations(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	creator := env.signup(t, "owner@example.com")
	results, err := env.invites.InviteUsers(ctx, creator, []string{"fresh@x.com"})
	require.NoError(t, err)

	hk := NewHousekeepingService(env.store, discardLogger(), 0)
	require.Equal(t, time.Hour, hk.Interval)
	require.Zero(t, hk.Cleanup(ctx))

	_, err = env.users.GetUserByID(ctx, results[0].UserID, false)
	require.NoError(t, err)

	_, err = env.users.GetUserByID(ctx, creator.ID, true)
	require.NoError(t, err)
}

func TestHousekeepingService_StartStop(t *testing.T) {
	env := newTestEnv(t)

	hk := NewHousekeepingService(env.store, discardLogger(), 10*time.Millisecond)
	hk.Start()
	time.Sleep(25 * time.Millisecond)
	hk.Stop()
}
