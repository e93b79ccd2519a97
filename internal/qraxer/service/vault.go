package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ithesk/qraxer/internal/qraxer/store/kv"
	"github.com/ithesk/qraxer/pkg/cryptox"
	"github.com/ithesk/qraxer/pkg/odoorpc"
)

const vaultKeyPrefix = "cred:"

// CredentialVault keeps the Odoo credentials of logged in technicians,
// sealed, so per-user proxies can log in again after Odoo expires a
// session. It implements odoorpc.CredentialSource.
type CredentialVault struct {
	KV     kv.Store
	Sealer *cryptox.Sealer
	// TTL bounds how long credentials are kept; it should match the
	// refresh token lifetime.
	TTL time.Duration
}

func NewCredentialVault(store kv.Store, sealer *cryptox.Sealer, ttl time.Duration) *CredentialVault {
	return &CredentialVault{KV: store, Sealer: sealer, TTL: ttl}
}

// Remember seals creds for identity, replacing earlier ones.
func (v *CredentialVault) Remember(ctx context.Context, identity string, creds odoorpc.Credentials) error {
	plain, err := json.Marshal(creds)
	if err != nil {
		return err
	}
	sealed, err := v.Sealer.Seal(plain, []byte(identity))
	if err != nil {
		return fmt.Errorf("vault: seal: %w", err)
	}
	return v.KV.Set(ctx, vaultKeyPrefix+identity, sealed, v.TTL)
}

// Credentials returns the stored credentials or odoorpc.ErrNoCredentials.
func (v *CredentialVault) Credentials(ctx context.Context, identity string) (odoorpc.Credentials, error) {
	sealed, err := v.KV.Get(ctx, vaultKeyPrefix+identity)
	if errors.Is(err, kv.ErrNotFound) {
		return odoorpc.Credentials{}, odoorpc.ErrNoCredentials
	}
	if err != nil {
		return odoorpc.Credentials{}, err
	}

	plain, err := v.Sealer.Open(sealed, []byte(identity))
	if err != nil {
		// Sealed under another key, e.g. after VAULT_KEY rotation.
		return odoorpc.Credentials{}, fmt.Errorf("%w: %w", odoorpc.ErrNoCredentials, err)
	}

	var creds odoorpc.Credentials
	if err := json.Unmarshal(plain, &creds); err != nil {
		return odoorpc.Credentials{}, fmt.Errorf("vault: decode: %w", err)
	}
	return creds, nil
}

// Touch restarts the TTL of the credentials of identity. It returns
// odoorpc.ErrNoCredentials when none are stored.
func (v *CredentialVault) Touch(ctx context.Context, identity string) error {
	sealed, err := v.KV.Get(ctx, vaultKeyPrefix+identity)
	if errors.Is(err, kv.ErrNotFound) {
		return odoorpc.ErrNoCredentials
	}
	if err != nil {
		return err
	}
	return v.KV.Set(ctx, vaultKeyPrefix+identity, sealed, v.TTL)
}

func (v *CredentialVault) Forget(ctx context.Context, identity string) error {
	return v.KV.Delete(ctx, vaultKeyPrefix+identity)
}

var _ odoorpc.CredentialSource = (*CredentialVault)(nil)
