package http

import (
	"net/http"

	"github.com/aussiebroadwan/pulse/pkg/httpx"
	"github.com/aussiebroadwan/pulse/pkg/jwtx"
)

// JWKSHandler exposes the public keys access tokens are signed with.
//
//	@Summary		Get JWKS
//	@Description	Returns the JSON Web Key Set used to verify access tokens.
//	@Tags			well-known
//	@Produce		json
//	@Success		200	{object}	pulsesdk.JWKS	"The JSON Web Key Set"
//	@Router			/.well-known/jwks.json [get].
func JWKSHandler(keys *jwtx.KeySet) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, keys.PublicJWKS())
	}
}
