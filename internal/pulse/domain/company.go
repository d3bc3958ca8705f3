package domain

import "time"

// Company is the tenant boundary. Roles, and the users working in it, hang
// off a company.
type Company struct {
	ID        string
	Name      string
	IsMulti   bool // Multi-company account flag chosen at signup
	CreatedAt time.Time
	UpdatedAt time.Time
}
