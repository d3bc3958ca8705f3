package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/aussiebroadwan/pulse/internal/pulse/domain"
	"github.com/aussiebroadwan/pulse/internal/pulse/service"
	"github.com/aussiebroadwan/pulse/pkg/httpx"
	"github.com/aussiebroadwan/pulse/pkg/pulsesdk"
	"github.com/aussiebroadwan/pulse/pkg/slogx"
)

// currentUser loads the active user behind the verified token. It writes a
// 401 and returns false when the token subject is unknown or no longer
// active.
func currentUser(w http.ResponseWriter, r *http.Request, users *service.UserService) (domain.User, bool) {
	ctx := r.Context()

	claims, ok := httpx.ClaimsFromContext(ctx)
	if !ok || claims.Subject == "" {
		httpx.WriteError(w, http.StatusUnauthorized, pulsesdk.ErrorCodeInvalidToken, "Authentication required")
		return domain.User{}, false
	}

	user, err := users.GetUserByID(ctx, claims.Subject, true)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			httpx.WriteError(w, http.StatusUnauthorized, pulsesdk.ErrorCodeInvalidToken, "User no longer exists")
			return domain.User{}, false
		}
		slogx.FromContext(ctx).Error("failed to load current user", slog.Any("error", err))
		httpx.WriteError(w, http.StatusInternalServerError, pulsesdk.ErrorCodeServerError, "Internal server error")
		return domain.User{}, false
	}
	return user, true
}
