package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/pulse/internal/pulse/domain"
	"github.com/aussiebroadwan/pulse/internal/pulse/store"
	"github.com/aussiebroadwan/pulse/internal/pulse/store/drivers/sqlite"
	"github.com/aussiebroadwan/pulse/pkg/cryptox"
	"github.com/aussiebroadwan/pulse/pkg/jwtx"
	"github.com/aussiebroadwan/pulse/pkg/mailx"
)

const testIssuer = "https://pulse.test"

type testEnv struct {
	store    store.Store
	tokens   *TokenService
	verifier jwtx.Verifier
	users    *UserService
	roles    *RolesService
	invites  *InviteService
	mailer   *recordingMailer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.ApplyMigrations())

	return newTestEnvWithStore(t, s)
}

func newTestEnvWithStore(t *testing.T, s store.Store) *testEnv {
	t.Helper()

	pemBytes, err := cryptox.GenerateEd25519Key()
	require.NoError(t, err)
	key, err := cryptox.ParseEd25519Key(pemBytes)
	require.NoError(t, err)
	signer, err := jwtx.NewSignerEdDSA("", key)
	require.NoError(t, err)

	keys := jwtx.NewKeySet()
	require.NoError(t, keys.AddSigner(signer))

	tokens := &TokenService{Signer: signer, Issuer: testIssuer}
	mailer := &recordingMailer{}

	return &testEnv{
		store:    s,
		tokens:   tokens,
		verifier: jwtx.NewVerifierEdDSA(keys, testIssuer, []string{Audience}),
		users:    &UserService{Store: s, Tokens: tokens},
		roles:    &RolesService{Store: s},
		invites:  &InviteService{Store: s, Mailer: mailer, Tokens: tokens},
		mailer:   mailer,
	}
}

// signup creates a company and returns its creator.
func (e *testEnv) signup(t *testing.T, email string) domain.User {
	t.Helper()

	au, err := e.users.Signup(context.Background(), SignupInput{
		Email:       email,
		Password:    "correct horse battery staple",
		FirstName:   "Test",
		LastName:    "Creator",
		CompanyName: "Company of " + email,
	})
	require.NoError(t, err)
	return au.User
}

// member invites email into the creator's company, accepts the invite and
// returns the now active user.
func (e *testEnv) member(t *testing.T, creator domain.User, email string) domain.User {
	t.Helper()
	ctx := context.Background()

	results, err := e.invites.InviteUsers(ctx, creator, []string{email})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.NoError(t, results[0].Err)

	au, err := e.invites.AcceptInvite(ctx, e.mailer.tokenFor(t, email), "member-password", "Member", "User")
	require.NoError(t, err)
	return au.User
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []mailx.Message
	fail map[string]bool
}

var errDeliveryFailed = errors.New("delivery failed")

func (m *recordingMailer) Send(ctx context.Context, msg mailx.Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail[msg.To] {
		return errDeliveryFailed
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *recordingMailer) failFor(emails ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail == nil {
		m.fail = map[string]bool{}
	}
	for _, e := range emails {
		m.fail[e] = true
	}
}

func (m *recordingMailer) tokenFor(t *testing.T, email string) string {
	t.Helper()

	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.sent) - 1; i >= 0; i-- {
		if m.sent[i].To == email {
			return m.sent[i].Data["inviteKey"]
		}
	}
	t.Fatalf("no invite sent to %s", email)
	return ""
}

func (m *recordingMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

func roleIDs(roles []domain.Role) []string {
	ids := make([]string, 0, len(roles))
	for _, r := range roles {
		ids = append(ids, r.ID)
	}
	return ids
}

func subRoleIDs(subRoles []domain.SubRole) []string {
	ids := make([]string, 0, len(subRoles))
	for _, sr := range subRoles {
		ids = append(ids, sr.ID)
	}
	return ids
}
