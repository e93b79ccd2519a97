package app

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/ithesk/qraxer/pkg/cryptox"
	"github.com/ithesk/qraxer/pkg/jwtx"
	"github.com/ithesk/qraxer/pkg/qrsig"
)

// Keys are the secrets the service signs and seals with.
type Keys struct {
	Signer    *jwtx.HS256Signer
	Verifier  *jwtx.HS256Verifier
	QR        *qrsig.Validator
	Sealer    *cryptox.Sealer
	Ephemeral []string // names of secrets generated for this process only
}

// vaultPurpose separates the vault key from any other use of VAULT_KEY.
const vaultPurpose = "qraxer odoo credentials v1"

// InitKeys builds the signing material from cfg. Secrets left empty are
// replaced by random ones, which is only allowed outside production (see
// Config.Validate): tokens, printed codes and stored credentials then stop
// working on restart.
func InitKeys(cfg Config, logger *slog.Logger) (*Keys, error) {
	keys := &Keys{}

	jwtSecret := []byte(cfg.JWTSecret)
	if len(jwtSecret) == 0 {
		s, err := cryptox.GenerateToken(cryptox.TokenSize256)
		if err != nil {
			return nil, fmt.Errorf("generate jwt secret: %w", err)
		}
		jwtSecret = []byte(s)
		keys.Ephemeral = append(keys.Ephemeral, "JWT_SECRET")
	}
	signer, err := jwtx.NewSignerHS256(jwtSecret)
	if err != nil {
		return nil, err
	}
	keys.Signer = signer
	keys.Verifier = jwtx.NewVerifierHS256(jwtSecret, cfg.JWTIssuer, 30*time.Second)

	qrSecret := []byte(cfg.QRHMACSecret)
	if len(qrSecret) == 0 {
		s, err := cryptox.GenerateToken(cryptox.TokenSize256)
		if err != nil {
			return nil, fmt.Errorf("generate qr secret: %w", err)
		}
		qrSecret = []byte(s)
		keys.Ephemeral = append(keys.Ephemeral, "QR_HMAC_SECRET")
	}
	keys.QR = qrsig.NewValidator(qrSecret, cfg.SimpleQRAllowed())
	keys.QR.Expiration = time.Duration(cfg.QRExpirationMinutes) * time.Minute
	keys.QR.ClockSkew = cfg.QRClockSkew

	if cfg.VaultKey != "" {
		keys.Sealer, err = cryptox.NewSealer([]byte(cfg.VaultKey), vaultPurpose)
	} else {
		keys.Sealer, err = cryptox.NewEphemeralSealer(vaultPurpose)
		keys.Ephemeral = append(keys.Ephemeral, "VAULT_KEY")
	}
	if err != nil {
		return nil, fmt.Errorf("init credential vault key: %w", err)
	}

	for _, name := range keys.Ephemeral {
		logger.Warn("secret not configured, using a random one for this process", "setting", name)
	}
	logger.Info("keys initialized",
		"qr_expiration", keys.QR.Expiration,
		"qr_clock_skew", keys.QR.ClockSkew,
		"allow_simple_qr", keys.QR.AllowSimple,
	)
	return keys, nil
}
