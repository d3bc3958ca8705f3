package http

import (
	"net/http"

	"github.com/aussiebroadwan/pulse/internal/pulse/service"
	"github.com/aussiebroadwan/pulse/pkg/httpx"
	"github.com/aussiebroadwan/pulse/pkg/pulsesdk"
)

// RolesHandler serves roles, sub-roles and membership assignments. Every
// endpoint acts on the company the caller created.
type RolesHandler struct {
	RolesService *service.RolesService
	UserService  *service.UserService
}

// HandleCreate godoc
//
//	@Summary		Create role
//	@Tags			Roles
//	@Accept			json
//	@Produce		json
//	@Param			request	body		pulsesdk.RoleRequest	true	"Role"
//	@Success		201		{object}	pulsesdk.RoleResponse
//	@Failure		400		{object}	pulsesdk.ErrorResponse
//	@Failure		401		{object}	pulsesdk.ErrorResponse
//	@Failure		403		{object}	pulsesdk.ErrorResponse	"not_owner"
//	@Security		BearerAuth
//	@Router			/v1/roles [post].
func (h *RolesHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r, h.UserService)
	if !ok {
		return
	}

	var req pulsesdk.RoleRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, "Invalid JSON body")
		return
	}

	role, err := h.RolesService.CreateRole(r.Context(), actor, req.Name, req.IsLeader)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toRoleResponse(role))
}

// HandleList godoc
//
//	@Summary		List roles
//	@Description	Lists the roles of the caller's company, each with its sub-roles.
//	@Tags			Roles
//	@Produce		json
//	@Success		200	{object}	pulsesdk.ListRolesResponse
//	@Failure		401	{object}	pulsesdk.ErrorResponse
//	@Failure		403	{object}	pulsesdk.ErrorResponse	"not_owner"
//	@Security		BearerAuth
//	@Router			/v1/roles [get].
func (h *RolesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r, h.UserService)
	if !ok {
		return
	}

	roles, total, err := h.RolesService.ListRoles(r.Context(), actor)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := pulsesdk.ListRolesResponse{
		Roles: make([]pulsesdk.RoleResponse, len(roles)),
		Total: total,
	}
	for i, role := range roles {
		out.Roles[i] = toRoleResponse(role)
	}

	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleGet godoc
//
//	@Summary		Get role
//	@Description	Returns a role with its members and sub-roles.
//	@Tags			Roles
//	@Produce		json
//	@Param			id	path		string	true	"Role ID"
//	@Success		200	{object}	pulsesdk.RoleResponse
//	@Failure		401	{object}	pulsesdk.ErrorResponse
//	@Failure		403	{object}	pulsesdk.ErrorResponse	"not_owner"
//	@Failure		404	{object}	pulsesdk.ErrorResponse	"role_not_found"
//	@Security		BearerAuth
//	@Router			/v1/roles/{id} [get].
func (h *RolesHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r, h.UserService)
	if !ok {
		return
	}

	role, err := h.RolesService.GetRole(r.Context(), actor, r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toRoleResponse(role))
}

// HandleUpdate godoc
//
//	@Summary		Update role
//	@Tags			Roles
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string					true	"Role ID"
//	@Param			request	body		pulsesdk.RoleRequest	true	"Role"
//	@Success		200		{object}	pulsesdk.RoleResponse
//	@Failure		400		{object}	pulsesdk.ErrorResponse
//	@Failure		403		{object}	pulsesdk.ErrorResponse	"not_owner"
//	@Failure		404		{object}	pulsesdk.ErrorResponse	"role_not_found"
//	@Security		BearerAuth
//	@Router			/v1/roles/{id} [put].
func (h *RolesHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r, h.UserService)
	if !ok {
		return
	}

	var req pulsesdk.RoleRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, "Invalid JSON body")
		return
	}

	role, err := h.RolesService.UpdateRole(r.Context(), actor, r.PathValue("id"), req.Name, req.IsLeader)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toRoleResponse(role))
}

// HandleDelete godoc
//
//	@Summary		Delete role
//	@Description	Deletes a role, its sub-roles and all their assignments. Unknown roles are ignored.
//	@Tags			Roles
//	@Param			id	path	string	true	"Role ID"
//	@Success		204
//	@Failure		403	{object}	pulsesdk.ErrorResponse	"not_owner"
//	@Security		BearerAuth
//	@Router			/v1/roles/{id} [delete].
func (h *RolesHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r, h.UserService)
	if !ok {
		return
	}

	if err := h.RolesService.DeleteRole(r.Context(), actor, r.PathValue("id")); err != nil {
		writeServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleCreateSubRole godoc
//
//	@Summary		Create sub-role
//	@Tags			Sub-roles
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string					true	"Parent role ID"
//	@Param			request	body		pulsesdk.SubRoleRequest	true	"Sub-role"
//	@Success		201		{object}	pulsesdk.SubRoleResponse
//	@Failure		400		{object}	pulsesdk.ErrorResponse
//	@Failure		403		{object}	pulsesdk.ErrorResponse	"not_owner"
//	@Failure		404		{object}	pulsesdk.ErrorResponse	"role_not_found"
//	@Security		BearerAuth
//	@Router			/v1/roles/{id}/sub-roles [post].
func (h *RolesHandler) HandleCreateSubRole(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r, h.UserService)
	if !ok {
		return
	}

	var req pulsesdk.SubRoleRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, "Invalid JSON body")
		return
	}

	sr, err := h.RolesService.CreateSubRole(r.Context(), actor, r.PathValue("id"), req.Name)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toSubRoleResponse(sr))
}

// HandleGetSubRole godoc
//
//	@Summary		Get sub-role
//	@Tags			Sub-roles
//	@Produce		json
//	@Param			id	path		string	true	"Sub-role ID"
//	@Success		200	{object}	pulsesdk.SubRoleResponse
//	@Failure		403	{object}	pulsesdk.ErrorResponse	"not_owner"
//	@Failure		404	{object}	pulsesdk.ErrorResponse	"sub_role_not_found"
//	@Security		BearerAuth
//	@Router			/v1/sub-roles/{id} [get].
func (h *RolesHandler) HandleGetSubRole(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r, h.UserService)
	if !ok {
		return
	}

	sr, err := h.RolesService.GetSubRole(r.Context(), actor, r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toSubRoleResponse(sr))
}

// HandleUpdateSubRole godoc
//
//	@Summary		Update sub-role
//	@Tags			Sub-roles
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string					true	"Sub-role ID"
//	@Param			request	body		pulsesdk.SubRoleRequest	true	"Sub-role"
//	@Success		200		{object}	pulsesdk.SubRoleResponse
//	@Failure		400		{object}	pulsesdk.ErrorResponse
//	@Failure		403		{object}	pulsesdk.ErrorResponse	"not_owner"
//	@Failure		404		{object}	pulsesdk.ErrorResponse	"sub_role_not_found"
//	@Security		BearerAuth
//	@Router			/v1/sub-roles/{id} [put].
func (h *RolesHandler) HandleUpdateSubRole(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r, h.UserService)
	if !ok {
		return
	}

	var req pulsesdk.SubRoleRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, "Invalid JSON body")
		return
	}

	sr, err := h.RolesService.UpdateSubRole(r.Context(), actor, r.PathValue("id"), req.Name)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toSubRoleResponse(sr))
}

// HandleDeleteSubRole godoc
//
//	@Summary		Delete sub-role
//	@Description	Deletes a sub-role and its assignments. Unknown sub-roles are ignored.
//	@Tags			Sub-roles
//	@Param			id	path	string	true	"Sub-role ID"
//	@Success		204
//	@Failure		403	{object}	pulsesdk.ErrorResponse	"not_owner"
//	@Security		BearerAuth
//	@Router			/v1/sub-roles/{id} [delete].
func (h *RolesHandler) HandleDeleteSubRole(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r, h.UserService)
	if !ok {
		return
	}

	if err := h.RolesService.DeleteSubRole(r.Context(), actor, r.PathValue("id")); err != nil {
		writeServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
