package http

import (
	"net/http"
	"time"

	"github.com/aussiebroadwan/pulse/internal/pulse/store"
	"github.com/aussiebroadwan/pulse/pkg/httpx"
	"github.com/aussiebroadwan/pulse/pkg/jwtx"
	"github.com/aussiebroadwan/pulse/pkg/pulsesdk"
)

// LivezHandler godoc
//
//	@Summary		Liveness probe
//	@Description	Always returns 200 OK while the process is serving requests.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	pulsesdk.HealthResponse	"status, uptime, version"
//	@Router			/livez [get].
func LivezHandler(startTime time.Time, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, pulsesdk.HealthResponse{
			Status:  "ok",
			Uptime:  time.Since(startTime).String(),
			Version: version,
		})
	}
}

// ReadyzHandler godoc
//
//	@Summary		Readiness probe
//	@Description	Reports whether the database answers and a signing key is loaded.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	pulsesdk.HealthResponse	"status, uptime, version, checks"
//	@Failure		503	{object}	pulsesdk.HealthResponse	"service not ready"
//	@Router			/readyz [get].
func ReadyzHandler(startTime time.Time, version string, st store.Store, keys *jwtx.KeySet) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := &pulsesdk.HealthChecks{Database: "ok", Signer: "ok"}
		status, code := "ok", http.StatusOK

		if err := st.Ping(r.Context()); err != nil {
			checks.Database = "error: " + err.Error()
			status, code = "degraded", http.StatusServiceUnavailable
		}
		if !keys.IsReady() {
			checks.Signer = "error: no keys loaded"
			status, code = "degraded", http.StatusServiceUnavailable
		}

		httpx.WriteJSON(w, code, pulsesdk.HealthResponse{
			Status:  status,
			Uptime:  time.Since(startTime).String(),
			Version: version,
			Checks:  checks,
		})
	}
}
