package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/ithesk/qraxer/internal/qraxer/domain"
	"github.com/ithesk/qraxer/internal/qraxer/store"
	"github.com/ithesk/qraxer/pkg/cryptox"
	"github.com/ithesk/qraxer/pkg/idx"
	"github.com/ithesk/qraxer/pkg/jwtx"
	"github.com/ithesk/qraxer/pkg/odoorpc"
	"github.com/ithesk/qraxer/pkg/slogx"
)

// LoginObserver is notified of every login attempt.
type LoginObserver interface {
	ObserveLogin(ok bool)
}

// AuthService logs technicians in against Odoo and issues the access and
// refresh tokens of this API.
type AuthService struct {
	Repair *odoorpc.Proxy
	// Catalog is logged in with the same credentials. Optional.
	Catalog *odoorpc.Proxy
	Vault   *CredentialVault
	Store   store.Store
	Signer  jwtx.Signer

	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration

	Observer LoginObserver
	Now      func() time.Time
}

func (s *AuthService) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

// Login authenticates username against Odoo and returns a token pair.
func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.TokenPair, error) {
	l := slogx.FromContext(ctx)
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, invalidInput("username", "is required")
	}
	if password == "" {
		return nil, invalidInput("password", "is required")
	}

	creds := odoorpc.Credentials{Login: username, Password: password}
	sess, err := s.Repair.Authenticate(ctx, username, creds)
	if err != nil {
		s.observe(false)
		return nil, err
	}
	if sess == nil {
		s.observe(false)
		l.Info("odoo rejected login", slog.String("identity", username))
		return nil, ErrInvalidCredentials
	}
	s.observe(true)

	if s.Catalog != nil {
		if cs, err := s.Catalog.Authenticate(ctx, username, creds); err != nil || cs == nil {
			l.Warn("catalog login failed, product lookups will re-authenticate",
				slog.String("identity", username), slog.Any("error", err))
		}
	}

	if s.Vault != nil {
		if err := s.Vault.Remember(ctx, username, creds); err != nil {
			l.Warn("failed to store credentials, expired sessions will require a new login",
				slog.String("identity", username), slog.Any("error", err))
		}
	}

	user := domain.User{ID: sess.UID, Username: username, Name: sess.DisplayName}
	return s.issue(ctx, user)
}

// Refresh rotates refreshToken and returns a new pair. The Odoo session
// is restored from the vault when it is gone; the token is only rotated
// once the session is back, so a failed restore leaves it usable.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return nil, ErrInvalidRefresh
	}
	now := s.now()
	hash := cryptox.FingerprintToken(refreshToken)

	old, err := s.Store.RefreshTokens().GetRefreshTokenByHash(ctx, hash)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidRefresh
		}
		return nil, err
	}
	if !old.Usable(now) {
		return nil, ErrInvalidRefresh
	}

	if err := s.ensureSession(ctx, old.Username); err != nil {
		return nil, err
	}

	newRaw, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return nil, err
	}
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		rt, err := tx.RefreshTokens().GetRefreshTokenByHash(ctx, hash)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInvalidRefresh
			}
			return err
		}
		// Rotated by a concurrent refresh.
		if !rt.Usable(now) {
			return ErrInvalidRefresh
		}

		if err := tx.RefreshTokens().RevokeRefreshToken(ctx, hash, now); err != nil {
			return err
		}
		return tx.RefreshTokens().CreateRefreshToken(ctx, domain.RefreshToken{
			ID:          idx.New().String(),
			UserID:      rt.UserID,
			Username:    rt.Username,
			DisplayName: rt.DisplayName,
			TokenHash:   cryptox.FingerprintToken(newRaw),
			CreatedAt:   now,
			ExpiresAt:   now.Add(s.RefreshTTL),
		})
	})
	if err != nil {
		return nil, err
	}

	if s.Vault != nil {
		if err := s.Vault.Touch(ctx, old.Username); err != nil {
			slogx.FromContext(ctx).Warn("failed to extend stored credentials",
				slog.String("identity", old.Username), slog.Any("error", err))
		}
	}

	uid, _ := strconv.ParseInt(old.UserID, 10, 64)
	user := domain.User{ID: uid, Username: old.Username, Name: old.DisplayName}
	access, err := s.signAccess(user, now)
	if err != nil {
		return nil, err
	}
	return &domain.TokenPair{
		AccessToken:  access,
		RefreshToken: newRaw,
		User:         user,
		ExpiresIn:    int64(s.AccessTTL / time.Second),
	}, nil
}

// Logout revokes refreshToken, or every refresh token of the actor when it
// is empty, and drops the actor's Odoo sessions and stored credentials.
func (s *AuthService) Logout(ctx context.Context, actor Actor, refreshToken string) error {
	l := slogx.FromContext(ctx)
	now := s.now()

	var err error
	if refreshToken != "" {
		err = s.revokeOwn(ctx, actor, cryptox.FingerprintToken(refreshToken), now)
	} else {
		err = s.Store.RefreshTokens().RevokeAllUserRefreshTokens(ctx, actor.ID, now)
	}
	if err != nil {
		return err
	}

	if err := s.Repair.RemoveSession(ctx, actor.Login); err != nil {
		l.Warn("failed to remove repair session", slog.String("identity", actor.Login), slog.Any("error", err))
	}
	if s.Catalog != nil {
		if err := s.Catalog.RemoveSession(ctx, actor.Login); err != nil {
			l.Warn("failed to remove catalog session", slog.String("identity", actor.Login), slog.Any("error", err))
		}
	}
	if s.Vault != nil {
		if err := s.Vault.Forget(ctx, actor.Login); err != nil {
			l.Warn("failed to forget credentials", slog.String("identity", actor.Login), slog.Any("error", err))
		}
	}
	return nil
}

// revokeOwn revokes hash when it belongs to actor. Unknown tokens are
// ignored so logout stays idempotent.
func (s *AuthService) revokeOwn(ctx context.Context, actor Actor, hash string, now time.Time) error {
	rt, err := s.Store.RefreshTokens().GetRefreshTokenByHash(ctx, hash)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if rt.UserID != actor.ID {
		return ErrInvalidRefresh
	}
	return s.Store.RefreshTokens().RevokeRefreshToken(ctx, hash, now)
}

// Me reads the actor's user record from Odoo.
func (s *AuthService) Me(ctx context.Context, actor Actor) (domain.User, error) {
	uid, err := strconv.ParseInt(actor.ID, 10, 64)
	if err != nil {
		return domain.User{}, invalidInput("sub", "not an odoo uid")
	}

	var rows []struct {
		ID    int64        `json:"id"`
		Name  odoorpc.Text `json:"name"`
		Login odoorpc.Text `json:"login"`
	}
	if err := s.Repair.Read(ctx, actor.Login, "res.users", []int64{uid}, []string{"name", "login"}, &rows); err != nil {
		return domain.User{}, err
	}
	if len(rows) == 0 {
		return domain.User{}, notFound("user %d", uid)
	}
	return domain.User{ID: rows[0].ID, Username: rows[0].Login.String(), Name: rows[0].Name.String()}, nil
}

func (s *AuthService) ensureSession(ctx context.Context, identity string) error {
	_, err := s.Repair.Session(ctx, identity)
	if err == nil {
		return nil
	}
	if !errors.Is(err, odoorpc.ErrSessionNotFound) {
		return err
	}
	if s.Vault == nil {
		return odoorpc.ErrSessionNotFound
	}

	creds, err := s.Vault.Credentials(ctx, identity)
	if err != nil {
		return fmt.Errorf("%w: %w", odoorpc.ErrSessionNotFound, err)
	}
	sess, err := s.Repair.Authenticate(ctx, identity, creds)
	if err != nil {
		return err
	}
	if sess == nil {
		// Password changed in Odoo.
		_ = s.Vault.Forget(ctx, identity)
		return ErrInvalidCredentials
	}
	slogx.FromContext(ctx).Info("restored odoo session on refresh", slog.String("identity", identity))
	return nil
}

func (s *AuthService) issue(ctx context.Context, user domain.User) (*domain.TokenPair, error) {
	now := s.now()
	access, err := s.signAccess(user, now)
	if err != nil {
		return nil, err
	}

	raw, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return nil, err
	}
	err = s.Store.RefreshTokens().CreateRefreshToken(ctx, domain.RefreshToken{
		ID:          idx.New().String(),
		UserID:      strconv.FormatInt(user.ID, 10),
		Username:    user.Username,
		DisplayName: user.Name,
		TokenHash:   cryptox.FingerprintToken(raw),
		CreatedAt:   now,
		ExpiresAt:   now.Add(s.RefreshTTL),
	})
	if err != nil {
		return nil, err
	}

	return &domain.TokenPair{
		AccessToken:  access,
		RefreshToken: raw,
		User:         user,
		ExpiresIn:    int64(s.AccessTTL / time.Second),
	}, nil
}

// signAccess puts the login used as session identity in the username
// claim; handlers use it to pick the Odoo session.
func (s *AuthService) signAccess(user domain.User, now time.Time) (string, error) {
	claims := jwtx.NewAccessClaims(strconv.FormatInt(user.ID, 10), user.Username, user.Name, s.Issuer, s.AccessTTL, now)
	return s.Signer.Sign(claims)
}

func (s *AuthService) observe(ok bool) {
	if s.Observer != nil {
		s.Observer.ObserveLogin(ok)
	}
}
