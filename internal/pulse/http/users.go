package http

import (
	"net/http"

	"github.com/aussiebroadwan/pulse/internal/pulse/service"
	"github.com/aussiebroadwan/pulse/pkg/httpx"
	"github.com/aussiebroadwan/pulse/pkg/pulsesdk"
)

type UsersHandler struct {
	UserService   *service.UserService
	InviteService *service.InviteService
}

// HandleSignup godoc
//
//	@Summary		Sign up
//	@Description	Creates a company together with its creator and returns an access token for the creator.
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Param			request	body		pulsesdk.SignupRequest	true	"Signup request"
//	@Success		201		{object}	pulsesdk.AuthResponse
//	@Failure		400		{object}	pulsesdk.ErrorResponse	"invalid_request, user_already_exists"
//	@Failure		429		{object}	pulsesdk.ErrorResponse
//	@Router			/v1/users/signup [post].
func (h *UsersHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var req pulsesdk.SignupRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, "Invalid JSON body")
		return
	}

	au, err := h.UserService.Signup(r.Context(), service.SignupInput{
		Email:          req.Email,
		Password:       req.Password,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Phone:          req.Phone,
		CompanyName:    req.CompanyName,
		IsMultiCompany: req.IsMultiCompany,
		ProfileInput:   toProfileInput(req.Profile),
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toAuthResponse(au))
}

// HandleAuth godoc
//
//	@Summary		Authenticate
//	@Description	Exchanges an email and password for an access token.
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Param			request	body		pulsesdk.AuthRequest	true	"Credentials"
//	@Success		200		{object}	pulsesdk.AuthResponse
//	@Failure		400		{object}	pulsesdk.ErrorResponse	"invalid_request, incorrect_credential"
//	@Failure		404		{object}	pulsesdk.ErrorResponse	"user_not_found"
//	@Failure		429		{object}	pulsesdk.ErrorResponse
//	@Router			/v1/users/auth [post].
func (h *UsersHandler) HandleAuth(w http.ResponseWriter, r *http.Request) {
	var req pulsesdk.AuthRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, "Invalid JSON body")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeBadRequest(w, "email and password are required")
		return
	}

	au, err := h.UserService.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toAuthResponse(au))
}

// HandleMe godoc
//
//	@Summary		Current user
//	@Description	Returns the authenticated user with its roles and sub-roles.
//	@Tags			Users
//	@Produce		json
//	@Success		200	{object}	pulsesdk.UserResponse
//	@Failure		401	{object}	pulsesdk.ErrorResponse
//	@Security		BearerAuth
//	@Router			/v1/users/me [get].
func (h *UsersHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r, h.UserService)
	if !ok {
		return
	}

	full, err := h.UserService.GetUserByCompanyAndID(r.Context(), user.CompanyID, user.ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toUserResponse(full))
}

// HandleSettings godoc
//
//	@Summary		Update profile
//	@Description	Updates the authenticated user's profile. Omitted fields are left unchanged.
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Param			request	body		pulsesdk.SettingsRequest	true	"Profile fields"
//	@Success		200		{object}	pulsesdk.UserResponse
//	@Failure		400		{object}	pulsesdk.ErrorResponse
//	@Failure		401		{object}	pulsesdk.ErrorResponse
//	@Security		BearerAuth
//	@Router			/v1/users/settings [put].
func (h *UsersHandler) HandleSettings(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r, h.UserService)
	if !ok {
		return
	}

	var req pulsesdk.SettingsRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, "Invalid JSON body")
		return
	}

	updated, err := h.UserService.UpdateSettings(r.Context(), user, service.SettingsInput{
		Email:        req.Email,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Phone:        req.Phone,
		ProfileInput: toProfileInput(req.Profile),
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toUserResponse(updated))
}

// HandleInvite godoc
//
//	@Summary		Invite users
//	@Description	Creates an inactive user in the caller's company for every address and emails each an invite token.
//	@Description	Each address is handled independently; per address failures are reported in the results.
//	@Tags			Invitations
//	@Accept			json
//	@Produce		json
//	@Param			request	body		pulsesdk.InviteRequest	true	"Addresses to invite"
//	@Success		200		{object}	pulsesdk.InviteResponse
//	@Failure		400		{object}	pulsesdk.ErrorResponse
//	@Failure		401		{object}	pulsesdk.ErrorResponse
//	@Failure		403		{object}	pulsesdk.ErrorResponse	"not_owner"
//	@Security		BearerAuth
//	@Router			/v1/users/invite [post].
func (h *UsersHandler) HandleInvite(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r, h.UserService)
	if !ok {
		return
	}

	var req pulsesdk.InviteRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, "Invalid JSON body")
		return
	}

	results, err := h.InviteService.InviteUsers(r.Context(), user, req.Emails)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := pulsesdk.InviteResponse{Results: make([]pulsesdk.InviteResult, len(results))}
	for i, res := range results {
		out.Results[i] = pulsesdk.InviteResult{Email: res.Email, UserID: res.UserID}
		if res.Err != nil {
			out.Results[i].Error = inviteErrorCode(res.Err)
		}
	}

	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleGetInvite godoc
//
//	@Summary		Look up an invite
//	@Description	Returns the pending user an invite token belongs to.
//	@Tags			Invitations
//	@Produce		json
//	@Param			invite	query		string	true	"Invite token"
//	@Success		200		{object}	pulsesdk.UserResponse
//	@Failure		404		{object}	pulsesdk.ErrorResponse	"invite_not_found"
//	@Router			/v1/users/invite [get].
func (h *UsersHandler) HandleGetInvite(w http.ResponseWriter, r *http.Request) {
	user, err := h.InviteService.GetInvite(r.Context(), r.URL.Query().Get("invite"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toUserResponse(user))
}

// HandleAcceptInvite godoc
//
//	@Summary		Accept an invite
//	@Description	Sets the password and names of an invited user, activates it and returns an access token.
//	@Description	The invite token cannot be used again afterwards.
//	@Tags			Invitations
//	@Accept			json
//	@Produce		json
//	@Param			request	body		pulsesdk.AcceptInviteRequest	true	"Accept request"
//	@Success		200		{object}	pulsesdk.AuthResponse
//	@Failure		400		{object}	pulsesdk.ErrorResponse
//	@Failure		404		{object}	pulsesdk.ErrorResponse	"invite_not_found"
//	@Router			/v1/users/accept-invite [post].
func (h *UsersHandler) HandleAcceptInvite(w http.ResponseWriter, r *http.Request) {
	var req pulsesdk.AcceptInviteRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, "Invalid JSON body")
		return
	}

	au, err := h.InviteService.AcceptInvite(r.Context(), req.Invite, req.Password, req.FirstName, req.LastName)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toAuthResponse(au))
}
