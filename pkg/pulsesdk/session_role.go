package pulsesdk

import (
	"context"
	"net/http"
	"net/url"
)

// CreateRole adds a role to the caller's company.
func (s *Session) CreateRole(ctx context.Context, req RoleRequest) (*RoleResponse, error) {
	return s.roleRequest(ctx, http.MethodPost, "/v1/roles", req, http.StatusCreated)
}

// ListRoles lists the roles of the caller's company with their sub-roles.
func (s *Session) ListRoles(ctx context.Context) (*ListRolesResponse, error) {
	resp, err := s.do(ctx, http.MethodGet, "/v1/roles", nil)
	if err != nil {
		return nil, err
	}

	var out ListRolesResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetRole returns a role with its members and sub-roles.
func (s *Session) GetRole(ctx context.Context, roleID string) (*RoleResponse, error) {
	return s.roleRequest(ctx, http.MethodGet, "/v1/roles/"+url.PathEscape(roleID), nil, http.StatusOK)
}

// UpdateRole renames a role and sets its leader flag.
func (s *Session) UpdateRole(ctx context.Context, roleID string, req RoleRequest) (*RoleResponse, error) {
	return s.roleRequest(ctx, http.MethodPut, "/v1/roles/"+url.PathEscape(roleID), req, http.StatusOK)
}

// DeleteRole removes a role. Deleting an unknown role succeeds.
func (s *Session) DeleteRole(ctx context.Context, roleID string) error {
	resp, err := s.do(ctx, http.MethodDelete, "/v1/roles/"+url.PathEscape(roleID), nil)
	if err != nil {
		return err
	}
	return checkStatusNoContent(resp)
}

// CreateSubRole adds a sub-role under roleID.
func (s *Session) CreateSubRole(ctx context.Context, roleID string, req SubRoleRequest) (*SubRoleResponse, error) {
	return s.subRoleRequest(ctx, http.MethodPost, "/v1/roles/"+url.PathEscape(roleID)+"/sub-roles", req, http.StatusCreated)
}

// GetSubRole returns a sub-role with its members.
func (s *Session) GetSubRole(ctx context.Context, subRoleID string) (*SubRoleResponse, error) {
	return s.subRoleRequest(ctx, http.MethodGet, "/v1/sub-roles/"+url.PathEscape(subRoleID), nil, http.StatusOK)
}

// UpdateSubRole renames a sub-role.
func (s *Session) UpdateSubRole(ctx context.Context, subRoleID string, req SubRoleRequest) (*SubRoleResponse, error) {
	return s.subRoleRequest(ctx, http.MethodPut, "/v1/sub-roles/"+url.PathEscape(subRoleID), req, http.StatusOK)
}

// DeleteSubRole removes a sub-role. Deleting an unknown sub-role succeeds.
func (s *Session) DeleteSubRole(ctx context.Context, subRoleID string) error {
	resp, err := s.do(ctx, http.MethodDelete, "/v1/sub-roles/"+url.PathEscape(subRoleID), nil)
	if err != nil {
		return err
	}
	return checkStatusNoContent(resp)
}

// AssignRole gives a user a role and returns the updated user.
func (s *Session) AssignRole(ctx context.Context, userID, roleID string) (*UserResponse, error) {
	return s.userRequest(ctx, http.MethodPost, "/v1/roles/assignments", RoleAssignmentRequest{UserID: userID, RoleID: roleID})
}

// RemoveRole takes a role, and its sub-roles, away from a user.
func (s *Session) RemoveRole(ctx context.Context, userID, roleID string) (*UserResponse, error) {
	return s.userRequest(ctx, http.MethodDelete, "/v1/roles/assignments", RoleAssignmentRequest{UserID: userID, RoleID: roleID})
}

// AssignSubRole gives a user a sub-role. The user must hold the parent role.
func (s *Session) AssignSubRole(ctx context.Context, userID, subRoleID string) (*UserResponse, error) {
	return s.userRequest(ctx, http.MethodPost, "/v1/sub-roles/assignments", SubRoleAssignmentRequest{UserID: userID, SubRoleID: subRoleID})
}

// RemoveSubRole takes a sub-role away from a user.
func (s *Session) RemoveSubRole(ctx context.Context, userID, subRoleID string) (*UserResponse, error) {
	return s.userRequest(ctx, http.MethodDelete, "/v1/sub-roles/assignments", SubRoleAssignmentRequest{UserID: userID, SubRoleID: subRoleID})
}

func (s *Session) roleRequest(ctx context.Context, method, path string, body any, expected int) (*RoleResponse, error) {
	resp, err := s.do(ctx, method, path, body)
	if err != nil {
		return nil, err
	}

	var role RoleResponse
	if err := decodeJSON(resp, &role, expected); err != nil {
		return nil, err
	}
	return &role, nil
}

func (s *Session) subRoleRequest(ctx context.Context, method, path string, body any, expected int) (*SubRoleResponse, error) {
	resp, err := s.do(ctx, method, path, body)
	if err != nil {
		return nil, err
	}

	var sr SubRoleResponse
	if err := decodeJSON(resp, &sr, expected); err != nil {
		return nil, err
	}
	return &sr, nil
}

func (s *Session) userRequest(ctx context.Context, method, path string, body any) (*UserResponse, error) {
	resp, err := s.do(ctx, method, path, body)
	if err != nil {
		return nil, err
	}

	var user UserResponse
	if err := decodeJSON(resp, &user, http.StatusOK); err != nil {
		return nil, err
	}
	return &user, nil
}
