package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/aussiebroadwan/pulse/internal/pulse/service"
	"github.com/aussiebroadwan/pulse/pkg/httpx"
	"github.com/aussiebroadwan/pulse/pkg/pulsesdk"
	"github.com/aussiebroadwan/pulse/pkg/slogx"
)

// serviceErrors maps service sentinels to responses. Order matters:
// ErrSubRoleNotFound also matches ErrRoleNotFound.
var serviceErrors = []struct {
	err    error
	status int
	code   string
	desc   string
}{
	{service.ErrNotOwner, http.StatusForbidden, pulsesdk.ErrorCodeNotOwner, "Only the company creator may do this"},
	{service.ErrSubRoleNotFound, http.StatusNotFound, pulsesdk.ErrorCodeSubRoleNotFound, "Sub-role not found"},
	{service.ErrRoleNotFound, http.StatusNotFound, pulsesdk.ErrorCodeRoleNotFound, "Role not found"},
	{service.ErrUserNotFound, http.StatusNotFound, pulsesdk.ErrorCodeUserNotFound, "User not found"},
	{service.ErrNoParentRole, http.StatusNotFound, pulsesdk.ErrorCodeNoParentRole, "User does not hold the parent role"},
	{service.ErrInviteNotFound, http.StatusNotFound, pulsesdk.ErrorCodeInviteNotFound, "Invite not found or expired"},
	{service.ErrIncorrectCredential, http.StatusBadRequest, pulsesdk.ErrorCodeIncorrectCredential, "Incorrect password"},
	{service.ErrUserAlreadyExists, http.StatusBadRequest, pulsesdk.ErrorCodeUserAlreadyExists, "A user with this email already exists"},
	{service.ErrInvalidRequest, http.StatusBadRequest, pulsesdk.ErrorCodeInvalidRequest, "Invalid request"},
}

// writeServiceError writes the response for an error returned by a service.
// Anything unknown is logged and reported as a server error.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	for _, e := range serviceErrors {
		if errors.Is(err, e.err) {
			httpx.WriteError(w, e.status, e.code, e.desc)
			return
		}
	}

	slogx.FromContext(r.Context()).Error("request failed", slog.Any("error", err))
	httpx.WriteError(w, http.StatusInternalServerError, pulsesdk.ErrorCodeServerError, "Internal server error")
}

func writeBadRequest(w http.ResponseWriter, desc string) {
	httpx.WriteError(w, http.StatusBadRequest, pulsesdk.ErrorCodeInvalidRequest, desc)
}

// inviteErrorCode is the per recipient error reported by the invite
// endpoint.
func inviteErrorCode(err error) string {
	for _, e := range serviceErrors {
		if errors.Is(err, e.err) {
			return e.code
		}
	}
	return pulsesdk.ErrorCodeDeliveryFailed
}
