package app

import (
	"fmt"
	"log/slog"

	"github.com/aussiebroadwan/pulse/pkg/cryptox"
	"github.com/aussiebroadwan/pulse/pkg/jwtx"
)

// Keys bundles the signer tokens are issued with and the verifier the
// authentication middleware checks them against.
type Keys struct {
	KeySet   *jwtx.KeySet
	Signer   jwtx.Signer
	Verifier jwtx.Verifier
}

// InitKeys loads the Ed25519 signing key from cfg.SigningKeyFile, generating
// and persisting one on first start so issued tokens survive restarts.
func InitKeys(cfg Config, audience []string, logger *slog.Logger) (*Keys, error) {
	priv, err := cryptox.LoadOrGenerateEd25519Key(cfg.SigningKeyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load signing key: %w", err)
	}

	signer, err := jwtx.NewSignerEdDSA("", priv)
	if err != nil {
		return nil, fmt.Errorf("failed to create signer: %w", err)
	}

	keys := jwtx.NewKeySet()
	if err := keys.AddSigner(signer); err != nil {
		return nil, fmt.Errorf("failed to register signer: %w", err)
	}

	logger.Info("signing key loaded",
		"kid", signer.KID(),
		"issuer", cfg.Issuer,
		"file", cfg.SigningKeyFile,
	)

	return &Keys{
		KeySet:   keys,
		Signer:   signer,
		Verifier: jwtx.NewVerifierEdDSA(keys, cfg.Issuer, audience),
	}, nil
}
