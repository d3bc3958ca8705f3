package http

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/pulse/internal/pulse/service"
	"github.com/aussiebroadwan/pulse/internal/pulse/store/drivers/sqlite"
	"github.com/aussiebroadwan/pulse/pkg/cryptox"
	"github.com/aussiebroadwan/pulse/pkg/jwtx"
	"github.com/aussiebroadwan/pulse/pkg/mailx"
	"github.com/aussiebroadwan/pulse/pkg/pulsesdk"
)

const testIssuer = "https://pulse.test"

// inbox keeps the invite token mailed to each address.
type inbox struct {
	mu     sync.Mutex
	tokens map[string]string
}

func (i *inbox) Send(_ context.Context, msg mailx.Message) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.tokens == nil {
		i.tokens = map[string]string{}
	}
	i.tokens[msg.To] = msg.Data["inviteKey"]
	return nil
}

func (i *inbox) token(t *testing.T, email string) string {
	t.Helper()
	i.mu.Lock()
	defer i.mu.Unlock()
	tok, ok := i.tokens[email]
	require.True(t, ok, "no invite mailed to %s", email)
	return tok
}

func newTestServer(t *testing.T) (*pulsesdk.Client, *inbox) {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	pemBytes, err := cryptox.GenerateEd25519Key()
	require.NoError(t, err)
	key, err := cryptox.ParseEd25519Key(pemBytes)
	require.NoError(t, err)
	signer, err := jwtx.NewSignerEdDSA("", key)
	require.NoError(t, err)
	keys := jwtx.NewKeySet()
	require.NoError(t, keys.AddSigner(signer))

	mail := &inbox{}
	tokens := &service.TokenService{Signer: signer, Issuer: testIssuer}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	r := NewRouter(keys, jwtx.NewVerifierEdDSA(keys, testIssuer, []string{service.Audience}), "test", st, logger)
	r.UserService = &service.UserService{Store: st, Tokens: tokens}
	r.RolesService = &service.RolesService{Store: st}
	r.InviteService = &service.InviteService{Store: st, Mailer: mail, Tokens: tokens}
	r.ApplyRoutes()

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return pulsesdk.NewClient(srv.URL), mail
}

func signup(t *testing.T, c *pulsesdk.Client, email string) *pulsesdk.Session {
	t.Helper()
	s, err := c.Signup(context.Background(), pulsesdk.SignupRequest{
		Email:       email,
		Password:    "correct horse battery staple",
		FirstName:   "Ada",
		LastName:    "Owner",
		CompanyName: "Acme",
	})
	require.NoError(t, err)
	return s
}

func requireAPIError(t *testing.T, err error, status int, code string) {
	t.Helper()
	var apiErr *pulsesdk.APIError
	require.True(t, errors.As(err, &apiErr), "expected APIError, got %v", err)
	require.Equal(t, status, apiErr.StatusCode)
	require.Equal(t, code, apiErr.Code)
}

func TestUsersEndpoints(t *testing.T) {
	ctx := context.Background()
	c, mail := newTestServer(t)

	owner := signup(t, c, "ada@example.com")
	require.True(t, owner.User().IsCreator)
	require.Equal(t, owner.User().CompanyID, owner.User().OwnCompanyID)

	t.Run("duplicate signup", func(t *testing.T) {
		_, err := c.Signup(ctx, pulsesdk.SignupRequest{Email: "ADA@example.com", Password: "x", CompanyName: "Other"})
		requireAPIError(t, err, http.StatusBadRequest, pulsesdk.ErrorCodeUserAlreadyExists)
	})

	t.Run("authenticate", func(t *testing.T) {
		s, err := c.Authenticate(ctx, "ada@example.com", "correct horse battery staple")
		require.NoError(t, err)
		require.Equal(t, owner.User().ID, s.User().ID)

		_, err = c.Authenticate(ctx, "ada@example.com", "wrong")
		requireAPIError(t, err, http.StatusBadRequest, pulsesdk.ErrorCodeIncorrectCredential)

		_, err = c.Authenticate(ctx, "nobody@example.com", "wrong")
		requireAPIError(t, err, http.StatusNotFound, pulsesdk.ErrorCodeUserNotFound)
	})

	t.Run("me and settings", func(t *testing.T) {
		me, err := owner.Me(ctx)
		require.NoError(t, err)
		require.Equal(t, "ada@example.com", me.Email)

		updated, err := owner.UpdateSettings(ctx, pulsesdk.SettingsRequest{Phone: "+61 400 000 000"})
		require.NoError(t, err)
		require.Equal(t, "+61 400 000 000", updated.Phone)
		require.Equal(t, "Ada", updated.FirstName)

		updated, err = owner.UpdateSettings(ctx, pulsesdk.SettingsRequest{
			Profile: pulsesdk.Profile{City: "London", Birthday: "1815-12-10"},
		})
		require.NoError(t, err)
		require.Equal(t, "London", updated.City)
		require.Equal(t, "1815-12-10", updated.Birthday)
		require.Equal(t, "+61 400 000 000", updated.Phone)

		_, err = owner.UpdateSettings(ctx, pulsesdk.SettingsRequest{
			Profile: pulsesdk.Profile{Birthday: "December 10"},
		})
		requireAPIError(t, err, http.StatusBadRequest, pulsesdk.ErrorCodeInvalidRequest)
	})

	t.Run("invite and accept", func(t *testing.T) {
		res, err := owner.InviteUsers(ctx, "bob@example.com", "not-an-address")
		require.NoError(t, err)
		require.Len(t, res.Results, 2)
		require.NotEmpty(t, res.Results[0].UserID)
		require.Empty(t, res.Results[0].Error)
		require.Equal(t, pulsesdk.ErrorCodeInvalidRequest, res.Results[1].Error)

		token := mail.token(t, "bob@example.com")
		pending, err := c.GetInvite(ctx, token)
		require.NoError(t, err)
		require.False(t, pending.IsActive)
		require.Equal(t, owner.User().CompanyID, pending.CompanyID)

		bob, err := c.AcceptInvite(ctx, pulsesdk.AcceptInviteRequest{
			Invite: token, Password: "bob-password", FirstName: "Bob", LastName: "Member",
		})
		require.NoError(t, err)
		require.True(t, bob.User().IsActive)
		require.False(t, bob.User().IsCreator)

		_, err = c.GetInvite(ctx, token)
		requireAPIError(t, err, http.StatusNotFound, pulsesdk.ErrorCodeInviteNotFound)

		_, err = bob.InviteUsers(ctx, "carol@example.com")
		requireAPIError(t, err, http.StatusForbidden, pulsesdk.ErrorCodeNotOwner)
	})
}

func TestRolesEndpoints(t *testing.T) {
	ctx := context.Background()
	c, mail := newTestServer(t)

	owner := signup(t, c, "ada@example.com")
	_, err := owner.InviteUsers(ctx, "bob@example.com")
	require.NoError(t, err)
	bob, err := c.AcceptInvite(ctx, pulsesdk.AcceptInviteRequest{
		Invite: mail.token(t, "bob@example.com"), Password: "bob-password",
	})
	require.NoError(t, err)
	bobID := bob.User().ID

	role, err := owner.CreateRole(ctx, pulsesdk.RoleRequest{Name: "Engineering", IsLeader: true})
	require.NoError(t, err)
	require.Empty(t, role.Members)
	require.Empty(t, role.SubRoles)

	sub, err := owner.CreateSubRole(ctx, role.ID, pulsesdk.SubRoleRequest{Name: "Backend"})
	require.NoError(t, err)
	require.Equal(t, role.ID, sub.ParentRoleID)

	t.Run("members cannot manage roles", func(t *testing.T) {
		_, err := bob.CreateRole(ctx, pulsesdk.RoleRequest{Name: "Rogue"})
		requireAPIError(t, err, http.StatusForbidden, pulsesdk.ErrorCodeNotOwner)

		_, err = bob.ListRoles(ctx)
		requireAPIError(t, err, http.StatusForbidden, pulsesdk.ErrorCodeNotOwner)
	})

	t.Run("members are refused before assignment bodies are validated", func(t *testing.T) {
		_, err := bob.AssignRole(ctx, "", "")
		requireAPIError(t, err, http.StatusForbidden, pulsesdk.ErrorCodeNotOwner)

		_, err = bob.RemoveRole(ctx, "", "")
		requireAPIError(t, err, http.StatusForbidden, pulsesdk.ErrorCodeNotOwner)

		_, err = bob.AssignSubRole(ctx, "", "")
		requireAPIError(t, err, http.StatusForbidden, pulsesdk.ErrorCodeNotOwner)

		_, err = bob.RemoveSubRole(ctx, "", "")
		requireAPIError(t, err, http.StatusForbidden, pulsesdk.ErrorCodeNotOwner)
	})

	t.Run("owner still gets bad request for empty assignment ids", func(t *testing.T) {
		_, err := owner.AssignRole(ctx, "", "")
		requireAPIError(t, err, http.StatusBadRequest, pulsesdk.ErrorCodeInvalidRequest)

		_, err = owner.AssignSubRole(ctx, "", "")
		requireAPIError(t, err, http.StatusBadRequest, pulsesdk.ErrorCodeInvalidRequest)
	})

	t.Run("sub-role requires parent role", func(t *testing.T) {
		_, err := owner.AssignSubRole(ctx, bobID, sub.ID)
		requireAPIError(t, err, http.StatusNotFound, pulsesdk.ErrorCodeNoParentRole)
	})

	t.Run("assign and cascade removal", func(t *testing.T) {
		u, err := owner.AssignRole(ctx, bobID, role.ID)
		require.NoError(t, err)
		require.Len(t, u.Roles, 1)

		u, err = owner.AssignSubRole(ctx, bobID, sub.ID)
		require.NoError(t, err)
		require.Len(t, u.SubRoles, 1)

		got, err := owner.GetRole(ctx, role.ID)
		require.NoError(t, err)
		require.Len(t, got.Members, 1)
		require.Len(t, got.SubRoles, 1)

		u, err = owner.RemoveRole(ctx, bobID, role.ID)
		require.NoError(t, err)
		require.Empty(t, u.Roles)
		require.Empty(t, u.SubRoles)

		gotSub, err := owner.GetSubRole(ctx, sub.ID)
		require.NoError(t, err)
		require.Empty(t, gotSub.Members)
	})

	t.Run("update and list", func(t *testing.T) {
		updated, err := owner.UpdateRole(ctx, role.ID, pulsesdk.RoleRequest{Name: "Platform"})
		require.NoError(t, err)
		require.Equal(t, "Platform", updated.Name)
		require.False(t, updated.IsLeader)

		renamed, err := owner.UpdateSubRole(ctx, sub.ID, pulsesdk.SubRoleRequest{Name: "APIs"})
		require.NoError(t, err)
		require.Equal(t, "APIs", renamed.Name)

		list, err := owner.ListRoles(ctx)
		require.NoError(t, err)
		require.Equal(t, 1, list.Total)
		require.Len(t, list.Roles[0].SubRoles, 1)
	})

	t.Run("missing ids", func(t *testing.T) {
		_, err := owner.AssignRole(ctx, "", role.ID)
		requireAPIError(t, err, http.StatusBadRequest, pulsesdk.ErrorCodeInvalidRequest)

		_, err = owner.GetRole(ctx, "missing")
		requireAPIError(t, err, http.StatusNotFound, pulsesdk.ErrorCodeRoleNotFound)

		_, err = owner.GetSubRole(ctx, "missing")
		requireAPIError(t, err, http.StatusNotFound, pulsesdk.ErrorCodeSubRoleNotFound)
	})

	t.Run("other tenants cannot see roles", func(t *testing.T) {
		other := signup(t, c, "eve@example.com")
		_, err := other.GetRole(ctx, role.ID)
		requireAPIError(t, err, http.StatusNotFound, pulsesdk.ErrorCodeRoleNotFound)

		_, err = other.AssignRole(ctx, bobID, role.ID)
		requireAPIError(t, err, http.StatusNotFound, pulsesdk.ErrorCodeUserNotFound)
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		require.NoError(t, owner.DeleteSubRole(ctx, sub.ID))
		require.NoError(t, owner.DeleteSubRole(ctx, sub.ID))
		require.NoError(t, owner.DeleteRole(ctx, role.ID))
		require.NoError(t, owner.DeleteRole(ctx, role.ID))

		list, err := owner.ListRoles(ctx)
		require.NoError(t, err)
		require.Zero(t, list.Total)
	})
}

func TestAuthRequired(t *testing.T) {
	c, _ := newTestServer(t)

	_, err := c.NewSession("not-a-token").ListRoles(context.Background())
	var apiErr *pulsesdk.APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
}

func TestSystemEndpoints(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestServer(t)

	live, err := c.GetLiveness(ctx)
	require.NoError(t, err)
	require.Equal(t, "ok", live.Status)
	require.Equal(t, "test", live.Version)

	ready, err := c.GetReadiness(ctx)
	require.NoError(t, err)
	require.Equal(t, "ok", ready.Status)
	require.NotNil(t, ready.Checks)
	require.Equal(t, "ok", ready.Checks.Database)

	jwks, err := c.GetJWKS(ctx)
	require.NoError(t, err)
	require.Len(t, jwks.Keys, 1)
}
