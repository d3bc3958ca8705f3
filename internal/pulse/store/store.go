package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/pulse/internal/pulse/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers implement it and
// expose one sub-repository per aggregate. Repositories obtained from a Tx
// run inside that transaction; repositories obtained from the root Store run
// in autocommit mode.
type Store interface {
	Companies() Companies
	Users() Users
	Roles() Roles
	SubRoles() SubRoles
	Memberships() Memberships

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx runs fn inside a transaction. The transaction commits when fn
	// returns nil and rolls back otherwise. This is the unit of work every
	// multi-step mutation goes through: reads inside fn see the state the
	// writes will be applied to, and nothing fn writes is visible until the
	// commit succeeds.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases the underlying database handle.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Companies interface {
	// CreateCompany inserts a new company (id is provided by the app via ULID).
	CreateCompany(ctx context.Context, c domain.Company) error

	// GetCompanyByID returns a company by id.
	GetCompanyByID(ctx context.Context, id string) (domain.Company, error)
}

type Users interface {
	// CreateUser inserts a new user.
	CreateUser(ctx context.Context, u domain.User) error

	// GetUserByID returns a user by id. With activeOnly set, inactive
	// (invited, not yet accepted) users are reported as not found.
	GetUserByID(ctx context.Context, id string, activeOnly bool) (domain.User, error)

	// GetUserByCompanyAndID returns a user working in companyID with its
	// Roles and SubRoles loaded.
	GetUserByCompanyAndID(ctx context.Context, companyID, id string) (domain.User, error)

	// GetUserByEmail is used by signup and password authentication.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// GetPendingUserByInviteHash returns the inactive user whose invite
	// fingerprint matches and has not expired at now.
	GetPendingUserByInviteHash(ctx context.Context, hash string, now time.Time) (domain.User, error)

	// UpdateProfile writes first/last name, email and phone.
	UpdateProfile(ctx context.Context, u domain.User) error

	// ActivateInvitedUser stores the credential and names chosen on invite
	// acceptance, marks the user active and clears the invite fingerprint.
	// It returns ErrNotFound when the invite was consumed concurrently.
	ActivateInvitedUser(ctx context.Context, u domain.User) error

	// DeleteExpiredInvitations removes inactive users whose invite expired
	// before now. It returns the number of rows removed.
	DeleteExpiredInvitations(ctx context.Context, now time.Time) (int64, error)
}

type Roles interface {
	// CreateRole inserts a new role.
	CreateRole(ctx context.Context, r domain.Role) error

	// UpdateRole writes name and is_leader.
	UpdateRole(ctx context.Context, r domain.Role) error

	// GetRoleByCompanyAndID returns the bare role row scoped to companyID.
	GetRoleByCompanyAndID(ctx context.Context, companyID, id string) (domain.Role, error)

	// GetRoleDetail returns the role scoped to companyID with Members and
	// SubRoles loaded.
	GetRoleDetail(ctx context.Context, companyID, id string) (domain.Role, error)

	// ListRolesByCompany returns every role of the company with SubRoles
	// loaded, together with the total count.
	ListRolesByCompany(ctx context.Context, companyID string) ([]domain.Role, int, error)

	// GetParentRoleHeldByUser returns the parent role of subRoleID if userID
	// currently holds it.
	GetParentRoleHeldByUser(ctx context.Context, subRoleID, userID string) (domain.Role, error)

	// DeleteRole removes a role. Sub-roles and membership edges cascade.
	DeleteRole(ctx context.Context, id string) error
}

type SubRoles interface {
	// CreateSubRole inserts a new sub-role under its parent role.
	CreateSubRole(ctx context.Context, sr domain.SubRole) error

	// UpdateSubRole writes the name.
	UpdateSubRole(ctx context.Context, sr domain.SubRole) error

	// GetSubRoleByCompanyAndID returns the sub-role whose parent role belongs
	// to companyID, with Members loaded.
	GetSubRoleByCompanyAndID(ctx context.Context, companyID, id string) (domain.SubRole, error)

	// DeleteSubRole removes a sub-role. Membership edges cascade.
	DeleteSubRole(ctx context.Context, id string) error
}

// Memberships manages the user<->role and user<->sub-role join rows. Each
// edge is stored once, so adding or removing it updates both sides of the
// relation at the same time. Adding an existing edge and removing a missing
// one are no-ops.
type Memberships interface {
	AddUserRole(ctx context.Context, userID, roleID string) error
	RemoveUserRole(ctx context.Context, userID, roleID string) error
	AddUserSubRole(ctx context.Context, userID, subRoleID string) error
	RemoveUserSubRole(ctx context.Context, userID, subRoleID string) error
}
