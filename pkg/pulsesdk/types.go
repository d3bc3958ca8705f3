package pulsesdk

import (
	"time"

	"github.com/aussiebroadwan/pulse/pkg/httpx"
	"github.com/aussiebroadwan/pulse/pkg/jwtx"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse = httpx.ErrorResponse

// ============================================================================
// Users
// ============================================================================

// SignupRequest creates a company together with its creator.
type SignupRequest struct {
	Email          string `json:"email"`
	Password       string `json:"password"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	Phone          string `json:"phone,omitempty"`
	CompanyName    string `json:"company_name"`
	IsMultiCompany bool   `json:"is_multi_company"`
	Profile
}

// Profile holds the optional profile fields. Birthday is a calendar date in
// YYYY-MM-DD form.
type Profile struct {
	City       string `json:"city,omitempty"`
	Hobby      string `json:"hobby,omitempty"`
	SocialLink string `json:"social_link,omitempty"`
	Birthday   string `json:"birthday,omitempty"`
	Language   string `json:"language,omitempty"`
}

// AuthRequest is a password authentication attempt.
type AuthRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SettingsRequest updates profile fields. Empty fields are left unchanged.
type SettingsRequest struct {
	Email     string `json:"email,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Profile
}

// AuthResponse is returned by signup, auth and accept-invite.
type AuthResponse struct {
	// AccessToken is the EdDSA signed JWT to send as a bearer token
	AccessToken string `json:"access_token"`

	// TokenType is always "Bearer"
	TokenType string `json:"token_type"`

	// ExpiresIn is the token lifetime in seconds
	ExpiresIn int `json:"expires_in"`

	User UserResponse `json:"user"`
}

// UserResponse is the public view of a user.
type UserResponse struct {
	ID           string            `json:"id"`
	Email        string            `json:"email"`
	FirstName    string            `json:"first_name"`
	LastName     string            `json:"last_name"`
	Phone        string            `json:"phone,omitempty"`
	CompanyID    string            `json:"company_id"`
	OwnCompanyID string            `json:"own_company_id,omitempty"`
	IsCreator    bool              `json:"is_creator"`
	IsActive     bool              `json:"is_active"`
	Roles        []RoleSummary     `json:"roles,omitempty"`
	SubRoles     []SubRoleResponse `json:"sub_roles,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	Profile
}

// InviteRequest lists the addresses to invite into the caller's company.
type InviteRequest struct {
	Emails []string `json:"emails"`
}

// InviteResult is the outcome for one invited address. Error is empty on
// success.
type InviteResult struct {
	Email  string `json:"email"`
	UserID string `json:"user_id,omitempty"`
	Error  string `json:"error,omitempty"`
}

type InviteResponse struct {
	Results []InviteResult `json:"results"`
}

// AcceptInviteRequest redeems an invite token.
type AcceptInviteRequest struct {
	Invite    string `json:"invite"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// ============================================================================
// Roles
// ============================================================================

// RoleRequest creates or updates a role.
type RoleRequest struct {
	Name     string `json:"name"`
	IsLeader bool   `json:"is_leader"`
}

// SubRoleRequest creates or updates a sub-role.
type SubRoleRequest struct {
	Name string `json:"name"`
}

// MemberResponse summarises a user holding a role or sub-role.
type MemberResponse struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// RoleSummary is a role without its members, as listed on a user.
type RoleSummary struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	IsLeader bool   `json:"is_leader"`
}

type RoleResponse struct {
	ID        string            `json:"id"`
	CompanyID string            `json:"company_id"`
	Name      string            `json:"name"`
	IsLeader  bool              `json:"is_leader"`
	Members   []MemberResponse  `json:"members"`
	SubRoles  []SubRoleResponse `json:"sub_roles"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

type SubRoleResponse struct {
	ID           string           `json:"id"`
	ParentRoleID string           `json:"parent_role_id"`
	Name         string           `json:"name"`
	Members      []MemberResponse `json:"members,omitempty"`
}

type ListRolesResponse struct {
	Roles []RoleResponse `json:"roles"`
	Total int            `json:"total"`
}

// RoleAssignmentRequest adds or removes a role on a user.
type RoleAssignmentRequest struct {
	UserID string `json:"user_id"`
	RoleID string `json:"role_id"`
}

// SubRoleAssignmentRequest adds or removes a sub-role on a user.
type SubRoleAssignmentRequest struct {
	UserID    string `json:"user_id"`
	SubRoleID string `json:"sub_role_id"`
}

// ============================================================================
// System
// ============================================================================

// HealthResponse is returned by /livez and /readyz.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

type HealthChecks struct {
	Database string `json:"database"`
	Signer   string `json:"signer"`
}

// JWKS is the public key set tokens can be verified against.
type JWKS = jwtx.JWKS
