package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/pulse/internal/pulse/domain"
)

func TestAuthorize(t *testing.T) {
	t.Parallel()

	creator := domain.User{ID: "u1", IsCreator: true, OwnCompanyID: "c1"}

	t.Run("creator holds every permission", func(t *testing.T) {
		for _, p := range []Permission{PermManageRoles, PermReadRoles, PermInviteUsers} {
			require.NoError(t, Authorize(creator, p))
		}
	})

	t.Run("non creator is rejected", func(t *testing.T) {
		require.ErrorIs(t, Authorize(domain.User{ID: "u2", CompanyID: "c1"}, PermReadRoles), ErrNotOwner)
	})

	t.Run("creator without company is rejected", func(t *testing.T) {
		require.ErrorIs(t, Authorize(domain.User{ID: "u3", IsCreator: true}, PermReadRoles), ErrNotOwner)
	})

	t.Run("unknown permission is rejected", func(t *testing.T) {
		require.ErrorIs(t, Authorize(creator, Permission("billing:manage")), ErrNotOwner)
	})
}

func TestErrSubRoleNotFoundMatchesRoleNotFound(t *testing.T) {
	t.Parallel()
	require.ErrorIs(t, ErrSubRoleNotFound, ErrRoleNotFound)
	require.NotErrorIs(t, ErrRoleNotFound, ErrSubRoleNotFound)
}

func TestRolesService_CreateAndGet(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	c1 := env.signup(t, "owner1@example.com")
	c2 := env.signup(t, "owner2@example.com")

	role, err := env.roles.CreateRole(ctx, c1, "  Manager ", true)
	require.NoError(t, err)
	require.NotEmpty(t, role.ID)
	require.Equal(t, "Manager", role.Name)
	require.True(t, role.IsLeader)
	require.Equal(t, c1.OwnCompanyID, role.CompanyID)
	require.Empty(t, role.Members)
	require.Empty(t, role.SubRoles)

	t.Run("visible to its company", func(t *testing.T) {
		got, err := env.roles.GetRole(ctx, c1, role.ID)
		require.NoError(t, err)
		require.Equal(t, role.ID, got.ID)
		require.Equal(t, role.Name, got.Name)
		require.NotNil(t, got.SubRoles)
		require.NotNil(t, got.Members)
	})

	t.Run("hidden from other companies", func(t *testing.T) {
		_, err := env.roles.GetRole(ctx, c2, role.ID)
		require.ErrorIs(t, err, ErrRoleNotFound)
	})

	t.Run("listed with sub-roles", func(t *testing.T) {
		sr, err := env.roles.CreateSubRole(ctx, c1, role.ID, "Reviewer")
		require.NoError(t, err)

		_, err = env.roles.CreateRole(ctx, c1, "Staff", false)
		require.NoError(t, err)

		roles, total, err := env.roles.ListRoles(ctx, c1)
		require.NoError(t, err)
		require.Equal(t, 2, total)
		require.Len(t, roles, 2)
		require.Equal(t, role.ID, roles[0].ID)
		require.Equal(t, []string{sr.ID}, subRoleIDs(roles[0].SubRoles))
		require.Empty(t, roles[1].SubRoles)

		other, total, err := env.roles.ListRoles(ctx, c2)
		require.NoError(t, err)
		require.Zero(t, total)
		require.Empty(t, other)
	})

	t.Run("blank name is rejected", func(t *testing.T) {
		_, err := env.roles.CreateRole(ctx, c1, "   ", false)
		require.ErrorIs(t, err, ErrInvalidRequest)
	})

	t.Run("non creator is rejected before any lookup", func(t *testing.T) {
		m := env.member(t, c1, "member@example.com")
		_, err := env.roles.CreateRole(ctx, m, "Sneaky", false)
		require.ErrorIs(t, err, ErrNotOwner)
		_, err = env.roles.GetRole(ctx, m, "does-not-exist")
		require.ErrorIs(t, err, ErrNotOwner)
	})
}

func TestRolesService_Update(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	c1 := env.signup(t, "owner1@example.com")
	c2 := env.signup(t, "owner2@example.com")

	role, err := env.roles.CreateRole(ctx, c1, "Manager", true)
	require.NoError(t, err)

	updated, err := env.roles.UpdateRole(ctx, c1, role.ID, "Lead", false)
	require.NoError(t, err)
	require.Equal(t, "Lead", updated.Name)
	require.False(t, updated.IsLeader)

	_, err = env.roles.UpdateRole(ctx, c2, role.ID, "Hijacked", true)
	require.ErrorIs(t, err, ErrRoleNotFound)

	got, err := env.roles.GetRole(ctx, c1, role.ID)
	require.NoError(t, err)
	require.Equal(t, "Lead", got.Name)

	t.Run("sub-role", func(t *testing.T) {
		sr, err := env.roles.CreateSubRole(ctx, c1, role.ID, "Reviewer")
		require.NoError(t, err)

		renamed, err := env.roles.UpdateSubRole(ctx, c1, sr.ID, "Approver")
		require.NoError(t, err)
		require.Equal(t, "Approver", renamed.Name)
		require.Equal(t, role.ID, renamed.ParentRoleID)

		_, err = env.roles.UpdateSubRole(ctx, c2, sr.ID, "Hijacked")
		require.ErrorIs(t, err, ErrSubRoleNotFound)

		got, err := env.roles.GetSubRole(ctx, c1, sr.ID)
		require.NoError(t, err)
		require.Equal(t, "Approver", got.Name)
	})
}

func TestRolesService_CreateSubRole(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	c1 := env.signup(t, "owner1@example.com")
	c2 := env.signup(t, "owner2@example.com")

	role, err := env.roles.CreateRole(ctx, c1, "Manager", true)
	require.NoError(t, err)

	t.Run("parent in another company", func(t *testing.T) {
		_, err := env.roles.CreateSubRole(ctx, c2, role.ID, "Reviewer")
		require.ErrorIs(t, err, ErrRoleNotFound)
	})

	t.Run("missing parent", func(t *testing.T) {
		_, err := env.roles.CreateSubRole(ctx, c1, "missing", "Reviewer")
		require.ErrorIs(t, err, ErrRoleNotFound)
	})

	t.Run("sub-role lookup is company scoped", func(t *testing.T) {
		sr, err := env.roles.CreateSubRole(ctx, c1, role.ID, "Reviewer")
		require.NoError(t, err)

		_, err = env.roles.GetSubRole(ctx, c2, sr.ID)
		require.ErrorIs(t, err, ErrSubRoleNotFound)
		require.ErrorIs(t, err, ErrRoleNotFound)
	})
}

func TestRolesService_Delete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	c1 := env.signup(t, "owner1@example.com")
	c2 := env.signup(t, "owner2@example.com")
	u1 := env.member(t, c1, "u1@example.com")

	role, err := env.roles.CreateRole(ctx, c1, "Manager", true)
	require.NoError(t, err)
	sr, err := env.roles.CreateSubRole(ctx, c1, role.ID, "Reviewer")
	require.NoError(t, err)

	_, err = env.roles.AssignRole(ctx, c1, u1.ID, role.ID)
	require.NoError(t, err)
	_, err = env.roles.AssignSubRole(ctx, c1, u1.ID, sr.ID)
	require.NoError(t, err)

	t.Run("missing role is a no-op", func(t *testing.T) {
		require.NoError(t, env.roles.DeleteRole(ctx, c1, "missing"))
		require.NoError(t, env.roles.DeleteSubRole(ctx, c1, "missing"))
	})

	t.Run("other company cannot delete", func(t *testing.T) {
		require.NoError(t, env.roles.DeleteSubRole(ctx, c2, sr.ID))
		require.NoError(t, env.roles.DeleteRole(ctx, c2, role.ID))

		_, err := env.roles.GetRole(ctx, c1, role.ID)
		require.NoError(t, err)
		_, err = env.roles.GetSubRole(ctx, c1, sr.ID)
		require.NoError(t, err)
	})

	t.Run("deleting a role cascades", func(t *testing.T) {
		require.NoError(t, env.roles.DeleteRole(ctx, c1, role.ID))

		_, err := env.roles.GetRole(ctx, c1, role.ID)
		require.ErrorIs(t, err, ErrRoleNotFound)
		_, err = env.roles.GetSubRole(ctx, c1, sr.ID)
		require.ErrorIs(t, err, ErrSubRoleNotFound)

		u, err := env.users.GetUserByCompanyAndID(ctx, c1.OwnCompanyID, u1.ID)
		require.NoError(t, err)
		require.Empty(t, u.Roles)
		require.Empty(t, u.SubRoles)
	})

	t.Run("deleting a sub-role keeps the parent", func(t *testing.T) {
		parent, err := env.roles.CreateRole(ctx, c1, "Staff", false)
		require.NoError(t, err)
		child, err := env.roles.CreateSubRole(ctx, c1, parent.ID, "Trainee")
		require.NoError(t, err)
		_, err = env.roles.AssignRole(ctx, c1, u1.ID, parent.ID)
		require.NoError(t, err)
		_, err = env.roles.AssignSubRole(ctx, c1, u1.ID, child.ID)
		require.NoError(t, err)

		require.NoError(t, env.roles.DeleteSubRole(ctx, c1, child.ID))

		u, err := env.users.GetUserByCompanyAndID(ctx, c1.OwnCompanyID, u1.ID)
		require.NoError(t, err)
		require.Equal(t, []string{parent.ID}, roleIDs(u.Roles))
		require.Empty(t, u.SubRoles)

		got, err := env.roles.GetRole(ctx, c1, parent.ID)
		require.NoError(t, err)
		require.Empty(t, got.SubRoles)
	})
}
