package http

import (
	"net/http"

	"github.com/aussiebroadwan/pulse/internal/pulse/service"
	"github.com/aussiebroadwan/pulse/pkg/httpx"
	"github.com/aussiebroadwan/pulse/pkg/pulsesdk"
)

// HandleAssignRole godoc
//
//	@Summary		Assign role
//	@Description	Gives a user of the caller's company a role. Assigning a held role is a no-op.
//	@Tags			Assignments
//	@Accept			json
//	@Produce		json
//	@Param			request	body		pulsesdk.RoleAssignmentRequest	true	"Assignment"
//	@Success		200		{object}	pulsesdk.UserResponse
//	@Failure		403		{object}	pulsesdk.ErrorResponse	"not_owner"
//	@Failure		404		{object}	pulsesdk.ErrorResponse	"user_not_found, role_not_found"
//	@Security		BearerAuth
//	@Router			/v1/roles/assignments [post].
func (h *RolesHandler) HandleAssignRole(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r, h.UserService)
	if !ok {
		return
	}
	if err := service.Authorize(actor, service.PermManageRoles); err != nil {
		writeServiceError(w, r, err)
		return
	}

	var req pulsesdk.RoleAssignmentRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, "Invalid JSON body")
		return
	}
	if req.UserID == "" || req.RoleID == "" {
		writeBadRequest(w, "user_id and role_id are required")
		return
	}

	user, err := h.RolesService.AssignRole(r.Context(), actor, req.UserID, req.RoleID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toUserResponse(user))
}

// HandleRemoveRole godoc
//
//	@Summary		Remove role
//	@Description	Takes a role away from a user together with every sub-role of that role the user holds.
//	@Tags			Assignments
//	@Accept			json
//	@Produce		json
//	@Param			request	body		pulsesdk.RoleAssignmentRequest	true	"Assignment"
//	@Success		200		{object}	pulsesdk.UserResponse
//	@Failure		403		{object}	pulsesdk.ErrorResponse	"not_owner"
//	@Failure		404		{object}	pulsesdk.ErrorResponse	"user_not_found, role_not_found"
//	@Security		BearerAuth
//	@Router			/v1/roles/assignments [delete].
func (h *RolesHandler) HandleRemoveRole(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r, h.UserService)
	if !ok {
		return
	}
	if err := service.Authorize(actor, service.PermManageRoles); err != nil {
		writeServiceError(w, r, err)
		return
	}

	var req pulsesdk.RoleAssignmentRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, "Invalid JSON body")
		return
	}
	if req.UserID == "" || req.RoleID == "" {
		writeBadRequest(w, "user_id and role_id are required")
		return
	}

	user, err := h.RolesService.RemoveRole(r.Context(), actor, req.UserID, req.RoleID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toUserResponse(user))
}

// HandleAssignSubRole godoc
//
//	@Summary		Assign sub-role
//	@Description	Gives a user a sub-role. The user must already hold the parent role.
//	@Tags			Assignments
//	@Accept			json
//	@Produce		json
//	@Param			request	body		pulsesdk.SubRoleAssignmentRequest	true	"Assignment"
//	@Success		200		{object}	pulsesdk.UserResponse
//	@Failure		403		{object}	pulsesdk.ErrorResponse	"not_owner"
//	@Failure		404		{object}	pulsesdk.ErrorResponse	"user_not_found, sub_role_not_found, no_parent_role"
//	@Security		BearerAuth
//	@Router			/v1/sub-roles/assignments [post].
func (h *RolesHandler) HandleAssignSubRole(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r, h.UserService)
	if !ok {
		return
	}
	if err := service.Authorize(actor, service.PermManageRoles); err != nil {
		writeServiceError(w, r, err)
		return
	}

	var req pulsesdk.SubRoleAssignmentRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, "Invalid JSON body")
		return
	}
	if req.UserID == "" || req.SubRoleID == "" {
		writeBadRequest(w, "user_id and sub_role_id are required")
		return
	}

	user, err := h.RolesService.AssignSubRole(r.Context(), actor, req.UserID, req.SubRoleID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toUserResponse(user))
}

// HandleRemoveSubRole godoc
//
//	@Summary		Remove sub-role
//	@Tags			Assignments
//	@Accept			json
//	@Produce		json
//	@Param			request	body		pulsesdk.SubRoleAssignmentRequest	true	"Assignment"
//	@Success		200		{object}	pulsesdk.UserResponse
//	@Failure		403		{object}	pulsesdk.ErrorResponse	"not_owner"
//	@Failure		404		{object}	pulsesdk.ErrorResponse	"user_not_found, sub_role_not_found"
//	@Security		BearerAuth
//	@Router			/v1/sub-roles/assignments [delete].
func (h *RolesHandler) HandleRemoveSubRole(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r, h.UserService)
	if !ok {
		return
	}
	if err := service.Authorize(actor, service.PermManageRoles); err != nil {
		writeServiceError(w, r, err)
		return
	}

	var req pulsesdk.SubRoleAssignmentRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, "Invalid JSON body")
		return
	}
	if req.UserID == "" || req.SubRoleID == "" {
		writeBadRequest(w, "user_id and sub_role_id are required")
		return
	}

	user, err := h.RolesService.RemoveSubRole(r.Context(), actor, req.UserID, req.SubRoleID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toUserResponse(user))
}
