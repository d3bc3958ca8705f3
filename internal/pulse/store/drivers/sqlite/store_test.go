package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/pulse/internal/pulse/domain"
	"github.com/aussiebroadwan/pulse/internal/pulse/store"
	"github.com/aussiebroadwan/pulse/pkg/idx"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.ApplyMigrations())
	return s
}

type fixture struct {
	company domain.Company
	creator domain.User
}

func seedCompany(t *testing.T, s *Store, email string) fixture {
	t.Helper()
	ctx := context.Background()

	c := domain.Company{ID: idx.New().String(), Name: "Company " + email}
	require.NoError(t, s.Companies().CreateCompany(ctx, c))

	u := domain.User{
		ID:           idx.New().String(),
		Email:        email,
		PasswordHash: "x",
		CompanyID:    c.ID,
		OwnCompanyID: c.ID,
		IsCreator:    true,
		IsActive:     true,
	}
	require.NoError(t, s.Users().CreateUser(ctx, u))
	return fixture{company: c, creator: u}
}

func seedUser(t *testing.T, s *Store, companyID, email string) domain.User {
	t.Helper()

	u := domain.User{
		ID:           idx.New().String(),
		Email:        email,
		PasswordHash: "x",
		CompanyID:    companyID,
		IsActive:     true,
	}
	require.NoError(t, s.Users().CreateUser(context.Background(), u))
	return u
}

func seedRole(t *testing.T, s *Store, companyID, name string) domain.Role {
	t.Helper()

	r := domain.Role{ID: idx.New().String(), CompanyID: companyID, Name: name}
	require.NoError(t, s.Roles().CreateRole(context.Background(), r))
	return r
}

func seedSubRole(t *testing.T, s *Store, parentID, name string) domain.SubRole {
	t.Helper()

	sr := domain.SubRole{ID: idx.New().String(), ParentRoleID: parentID, Name: name}
	require.NoError(t, s.SubRoles().CreateSubRole(context.Background(), sr))
	return sr
}

func TestApplyMigrationsIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.ApplyMigrations())
	require.NoError(t, s.Ping(context.Background()))
}

func TestCompanies(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created := time.Date(2024, 3, 1, 10, 30, 0, 123456789, time.UTC)
	c := domain.Company{ID: idx.New().String(), Name: "Acme", IsMulti: true, CreatedAt: created, UpdatedAt: created}
	require.NoError(t, s.Companies().CreateCompany(ctx, c))

	got, err := s.Companies().GetCompanyByID(ctx, c.ID)
	require.NoError(t, err)
	require.Equal(t, "Acme", got.Name)
	require.True(t, got.IsMulti)
	require.True(t, created.Equal(got.CreatedAt), "got %s", got.CreatedAt)

	_, err = s.Companies().GetCompanyByID(ctx, "missing")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestUsers(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	f := seedCompany(t, s, "owner@example.com")

	t.Run("email is unique ignoring case", func(t *testing.T) {
		err := s.Users().CreateUser(ctx, domain.User{
			ID:           idx.New().String(),
			Email:        "OWNER@example.com",
			PasswordHash: "x",
			CompanyID:    f.company.ID,
		})
		require.ErrorIs(t, err, store.ErrAlreadyExists)
	})

	t.Run("lookups", func(t *testing.T) {
		u, err := s.Users().GetUserByEmail(ctx, "owner@example.com")
		require.NoError(t, err)
		require.Equal(t, f.creator.ID, u.ID)
		require.Equal(t, f.company.ID, u.OwnCompanyID)
		require.Nil(t, u.InviteExpiresAt)

		_, err = s.Users().GetUserByCompanyAndID(ctx, "other", f.creator.ID)
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("update profile", func(t *testing.T) {
		u := f.creator
		u.FirstName = "Olive"
		u.Phone = "123"
		u.City = "Perth"
		u.Language = "en-AU"
		birthday := time.Date(1990, time.March, 14, 0, 0, 0, 0, time.UTC)
		u.Birthday = &birthday
		require.NoError(t, s.Users().UpdateProfile(ctx, u))

		got, err := s.Users().GetUserByID(ctx, u.ID, true)
		require.NoError(t, err)
		require.Equal(t, "Olive", got.FirstName)
		require.Equal(t, "123", got.Phone)
		require.Equal(t, "Perth", got.City)
		require.Equal(t, "en-AU", got.Language)
		require.Empty(t, got.Hobby)
		require.NotNil(t, got.Birthday)
		require.True(t, birthday.Equal(*got.Birthday))

		u.Birthday = nil
		require.NoError(t, s.Users().UpdateProfile(ctx, u))
		got, err = s.Users().GetUserByID(ctx, u.ID, true)
		require.NoError(t, err)
		require.Nil(t, got.Birthday)

		u.ID = "missing"
		require.ErrorIs(t, s.Users().UpdateProfile(ctx, u), store.ErrNotFound)
	})
}

func TestPendingInvitations(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	f := seedCompany(t, s, "owner@example.com")

	now := time.Now().UTC()
	live := now.Add(time.Hour)
	expired := now.Add(-time.Minute)

	pending := domain.User{
		ID: idx.New().String(), Email: "live@example.com", PasswordHash: "x",
		CompanyID: f.company.ID, InviteHash: "hash-live", InviteExpiresAt: &live,
	}
	stale := domain.User{
		ID: idx.New().String(), Email: "stale@example.com", PasswordHash: "x",
		CompanyID: f.company.ID, InviteHash: "hash-stale", InviteExpiresAt: &expired,
	}
	require.NoError(t, s.Users().CreateUser(ctx, pending))
	require.NoError(t, s.Users().CreateUser(ctx, stale))

	got, err := s.Users().GetPendingUserByInviteHash(ctx, "hash-live", now)
	require.NoError(t, err)
	require.Equal(t, pending.ID, got.ID)
	require.NotNil(t, got.InviteExpiresAt)
	require.WithinDuration(t, live, *got.InviteExpiresAt, time.Microsecond)

	_, err = s.Users().GetPendingUserByInviteHash(ctx, "hash-stale", now)
	require.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.Users().GetUserByID(ctx, pending.ID, true)
	require.ErrorIs(t, err, store.ErrNotFound)

	t.Run("activation consumes the invite", func(t *testing.T) {
		pending.PasswordHash = "real"
		pending.FirstName = "Lee"
		require.NoError(t, s.Users().ActivateInvitedUser(ctx, pending))
		require.ErrorIs(t, s.Users().ActivateInvitedUser(ctx, pending), store.ErrNotFound)

		u, err := s.Users().GetUserByID(ctx, pending.ID, true)
		require.NoError(t, err)
		require.True(t, u.IsActive)
		require.Empty(t, u.InviteHash)
		require.Nil(t, u.InviteExpiresAt)
		require.Equal(t, "real", u.PasswordHash)

		_, err = s.Users().GetPendingUserByInviteHash(ctx, "hash-live", now)
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("expired invitations are removed", func(t *testing.T) {
		n, err := s.Users().DeleteExpiredInvitations(ctx, now)
		require.NoError(t, err)
		require.Equal(t, int64(1), n)

		_, err = s.Users().GetUserByID(ctx, stale.ID, false)
		require.ErrorIs(t, err, store.ErrNotFound)
		_, err = s.Users().GetUserByID(ctx, f.creator.ID, true)
		require.NoError(t, err)
	})
}

func TestRolesAndMemberships(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	f := seedCompany(t, s, "owner@example.com")
	other := seedCompany(t, s, "other@example.com")
	u := seedUser(t, s, f.company.ID, "u@example.com")

	manager := seedRole(t, s, f.company.ID, "Manager")
	staff := seedRole(t, s, f.company.ID, "Staff")
	reviewer := seedSubRole(t, s, manager.ID, "Reviewer")
	seedRole(t, s, other.company.ID, "Foreign")

	t.Run("list is company scoped", func(t *testing.T) {
		roles, total, err := s.Roles().ListRolesByCompany(ctx, f.company.ID)
		require.NoError(t, err)
		require.Equal(t, 2, total)
		require.Equal(t, manager.ID, roles[0].ID)
		require.Len(t, roles[0].SubRoles, 1)
		require.Equal(t, reviewer.ID, roles[0].SubRoles[0].ID)
		require.Equal(t, staff.ID, roles[1].ID)
		require.Empty(t, roles[1].SubRoles)
	})

	t.Run("update is company scoped", func(t *testing.T) {
		r := manager
		r.Name = "Lead"
		r.IsLeader = true
		require.NoError(t, s.Roles().UpdateRole(ctx, r))

		r.CompanyID = other.company.ID
		require.ErrorIs(t, s.Roles().UpdateRole(ctx, r), store.ErrNotFound)

		got, err := s.Roles().GetRoleByCompanyAndID(ctx, f.company.ID, manager.ID)
		require.NoError(t, err)
		require.Equal(t, "Lead", got.Name)
		require.True(t, got.IsLeader)
	})

	t.Run("edges are idempotent and visible from both sides", func(t *testing.T) {
		m := s.Memberships()
		require.NoError(t, m.AddUserRole(ctx, u.ID, manager.ID))
		require.NoError(t, m.AddUserRole(ctx, u.ID, manager.ID))
		require.NoError(t, m.AddUserSubRole(ctx, u.ID, reviewer.ID))
		require.NoError(t, m.AddUserSubRole(ctx, u.ID, reviewer.ID))

		got, err := s.Users().GetUserByCompanyAndID(ctx, f.company.ID, u.ID)
		require.NoError(t, err)
		require.Len(t, got.Roles, 1)
		require.Len(t, got.SubRoles, 1)
		require.Equal(t, manager.ID, got.SubRoles[0].ParentRoleID)

		detail, err := s.Roles().GetRoleDetail(ctx, f.company.ID, manager.ID)
		require.NoError(t, err)
		require.Len(t, detail.Members, 1)
		require.Equal(t, u.Email, detail.Members[0].Email)

		sr, err := s.SubRoles().GetSubRoleByCompanyAndID(ctx, f.company.ID, reviewer.ID)
		require.NoError(t, err)
		require.Len(t, sr.Members, 1)

		_, err = s.SubRoles().GetSubRoleByCompanyAndID(ctx, other.company.ID, reviewer.ID)
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("parent held by user", func(t *testing.T) {
		parent, err := s.Roles().GetParentRoleHeldByUser(ctx, reviewer.ID, u.ID)
		require.NoError(t, err)
		require.Equal(t, manager.ID, parent.ID)

		stranger := seedUser(t, s, f.company.ID, "stranger@example.com")
		_, err = s.Roles().GetParentRoleHeldByUser(ctx, reviewer.ID, stranger.ID)
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("removing a missing edge is a no-op", func(t *testing.T) {
		require.NoError(t, s.Memberships().RemoveUserRole(ctx, u.ID, staff.ID))
		require.NoError(t, s.Memberships().RemoveUserSubRole(ctx, u.ID, "missing"))
	})

	t.Run("deleting a role cascades", func(t *testing.T) {
		require.NoError(t, s.Roles().DeleteRole(ctx, manager.ID))

		got, err := s.Users().GetUserByCompanyAndID(ctx, f.company.ID, u.ID)
		require.NoError(t, err)
		require.Empty(t, got.Roles)
		require.Empty(t, got.SubRoles)

		_, err = s.SubRoles().GetSubRoleByCompanyAndID(ctx, f.company.ID, reviewer.ID)
		require.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestWithTx(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	f := seedCompany(t, s, "owner@example.com")

	t.Run("rolls back on error", func(t *testing.T) {
		r := domain.Role{ID: idx.New().String(), CompanyID: f.company.ID, Name: "Temp"}
		err := s.WithTx(ctx, func(tx store.Tx) error {
			require.NoError(t, tx.Roles().CreateRole(ctx, r))
			return store.ErrAlreadyExists
		})
		require.ErrorIs(t, err, store.ErrAlreadyExists)

		_, err = s.Roles().GetRoleByCompanyAndID(ctx, f.company.ID, r.ID)
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("commits on success", func(t *testing.T) {
		r := domain.Role{ID: idx.New().String(), CompanyID: f.company.ID, Name: "Kept"}
		require.NoError(t, s.WithTx(ctx, func(tx store.Tx) error {
			return tx.Roles().CreateRole(ctx, r)
		}))

		_, err := s.Roles().GetRoleByCompanyAndID(ctx, f.company.ID, r.ID)
		require.NoError(t, err)
	})

	t.Run("nested transactions are refused", func(t *testing.T) {
		err := s.WithTx(ctx, func(tx store.Tx) error {
			return tx.WithTx(ctx, func(store.Tx) error { return nil })
		})
		require.Error(t, err)
	})

	t.Run("foreign keys are enforced", func(t *testing.T) {
		err := s.Roles().CreateRole(ctx, domain.Role{ID: idx.New().String(), CompanyID: "missing", Name: "Orphan"})
		require.Error(t, err)
	})
}
