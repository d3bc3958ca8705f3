package domain

import "time"

// Role belongs to exactly one company. SubRoles and Members are only
// populated by the store lookups that say they load them.
type Role struct {
	ID        string
	CompanyID string
	Name      string
	IsLeader  bool
	SubRoles  []SubRole
	Members   []Member
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SubRole is a child of a single parent role. Nesting stops here; a sub-role
// never has children of its own.
type SubRole struct {
	ID           string
	ParentRoleID string
	Name         string
	Members      []Member
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Member is the summary of a user holding a role or sub-role.
type Member struct {
	UserID    string
	Email     string
	FirstName string
	LastName  string
}
