package domain

import "time"

type User struct {
	ID           string
	Email        string
	FirstName    string
	LastName     string
	Phone        string
	PasswordHash string // argon2id PHC string

	City       string
	Hobby      string
	SocialLink string
	Language   string
	Birthday   *time.Time // Calendar date, nil when unknown

	CompanyID    string // Working company
	OwnCompanyID string // Company the user created, empty unless IsCreator
	IsCreator    bool
	IsActive     bool

	InviteHash      string     // Fingerprint of the pending invite token, empty once accepted
	InviteExpiresAt *time.Time // Nil when there is no pending invite

	// Loaded by the tenant scoped lookup only.
	Roles    []Role
	SubRoles []SubRole

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HoldsRole reports whether roleID is among the user's loaded roles.
func (u User) HoldsRole(roleID string) bool {
	for _, r := range u.Roles {
		if r.ID == roleID {
			return true
		}
	}
	return false
}

// SubRolesOf returns the loaded sub-roles of the user whose parent is roleID.
func (u User) SubRolesOf(roleID string) []SubRole {
	var out []SubRole
	for _, sr := range u.SubRoles {
		if sr.ParentRoleID == roleID {
			out = append(out, sr)
		}
	}
	return out
}
