package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ithesk/qraxer/internal/testutil/odootest"
	"github.com/ithesk/qraxer/pkg/jwtx"
	"github.com/ithesk/qraxer/pkg/odoorpc"
)

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("issues tokens and opens sessions", func(t *testing.T) {
		f := newFixture(t)
		pair, err := f.auth.Login(ctx, " tech ", techPass)
		require.NoError(t, err)

		require.NotEmpty(t, pair.AccessToken)
		require.NotEmpty(t, pair.RefreshToken)
		require.Equal(t, int64(8*60*60), pair.ExpiresIn)
		require.Equal(t, int64(techUID), pair.User.ID)
		require.Equal(t, techLogin, pair.User.Username)
		require.Equal(t, techName, pair.User.Name)

		v := jwtx.NewVerifierHS256(testJWTSecret, testIssuer, 0).WithClock(func() time.Time { return f.now })
		claims, err := v.Verify(pair.AccessToken)
		require.NoError(t, err)
		require.Equal(t, "7", claims.Subject)
		require.Equal(t, techLogin, claims.Username)

		_, err = f.repair.Session(ctx, techLogin)
		require.NoError(t, err)
		_, err = f.catalog.Session(ctx, techLogin)
		require.NoError(t, err)

		creds, err := f.vault.Credentials(ctx, techLogin)
		require.NoError(t, err)
		require.Equal(t, techPass, creds.Password)
	})

	t.Run("wrong password", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.auth.Login(ctx, techLogin, "nope")
		require.ErrorIs(t, err, ErrInvalidCredentials)

		_, err = f.repair.Session(ctx, techLogin)
		require.ErrorIs(t, err, odoorpc.ErrSessionNotFound)
		_, err = f.vault.Credentials(ctx, techLogin)
		require.ErrorIs(t, err, odoorpc.ErrNoCredentials)
	})

	t.Run("missing fields", func(t *testing.T) {
		f := newFixture(t)
		var verr *ValidationError

		_, err := f.auth.Login(ctx, "  ", techPass)
		require.ErrorAs(t, err, &verr)
		require.Equal(t, "username", verr.Field)

		_, err = f.auth.Login(ctx, techLogin, "")
		require.ErrorAs(t, err, &verr)
		require.Equal(t, "password", verr.Field)
		require.Zero(t, f.odoo.Auths())
	})

	t.Run("odoo down", func(t *testing.T) {
		f := newFixture(t)
		f.odoo.Close()
		_, err := f.auth.Login(ctx, techLogin, techPass)
		var terr *odoorpc.TransportError
		require.ErrorAs(t, err, &terr)
	})
}

func TestAuthService_Refresh(t *testing.T) {
	ctx := context.Background()

	t.Run("rotates the refresh token", func(t *testing.T) {
		f := newFixture(t)
		first, err := f.auth.Login(ctx, techLogin, techPass)
		require.NoError(t, err)

		f.now = f.now.Add(time.Minute)
		second, err := f.auth.Refresh(ctx, first.RefreshToken)
		require.NoError(t, err)
		require.NotEqual(t, first.RefreshToken, second.RefreshToken)
		require.Equal(t, first.User, second.User)

		_, err = f.auth.Refresh(ctx, first.RefreshToken)
		require.ErrorIs(t, err, ErrInvalidRefresh, "a rotated token cannot be reused")

		_, err = f.auth.Refresh(ctx, second.RefreshToken)
		require.NoError(t, err)
	})

	t.Run("unknown and empty tokens", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.auth.Refresh(ctx, "")
		require.ErrorIs(t, err, ErrInvalidRefresh)
		_, err = f.auth.Refresh(ctx, "not-a-token")
		require.ErrorIs(t, err, ErrInvalidRefresh)
	})

	t.Run("expired token", func(t *testing.T) {
		f := newFixture(t)
		pair, err := f.auth.Login(ctx, techLogin, techPass)
		require.NoError(t, err)

		f.now = f.now.Add(jwtx.DefaultRefreshTokenTTL + time.Second)
		_, err = f.auth.Refresh(ctx, pair.RefreshToken)
		require.ErrorIs(t, err, ErrInvalidRefresh)
	})

	t.Run("restores a lost odoo session from the vault", func(t *testing.T) {
		f := newFixture(t)
		pair, err := f.auth.Login(ctx, techLogin, techPass)
		require.NoError(t, err)
		require.NoError(t, f.repair.RemoveSession(ctx, techLogin))
		auths := f.odoo.Auths()

		_, err = f.auth.Refresh(ctx, pair.RefreshToken)
		require.NoError(t, err)
		require.Equal(t, auths+1, f.odoo.Auths())
		_, err = f.repair.Session(ctx, techLogin)
		require.NoError(t, err)
	})

	t.Run("odoo unreachable keeps the refresh token", func(t *testing.T) {
		f := newFixture(t)
		pair, err := f.auth.Login(ctx, techLogin, techPass)
		require.NoError(t, err)
		require.NoError(t, f.repair.RemoveSession(ctx, techLogin))

		down, err := odoorpc.New(odoorpc.Config{
			Name:        "repair",
			BaseURL:     "http://127.0.0.1:1",
			DB:          odootest.DefaultDB,
			Mode:        odoorpc.PerIdentity,
			Credentials: f.vault,
			Timeout:     time.Second,
		})
		require.NoError(t, err)
		f.auth.Repair = down

		_, err = f.auth.Refresh(ctx, pair.RefreshToken)
		var terr *odoorpc.TransportError
		require.ErrorAs(t, err, &terr)

		f.auth.Repair = f.repair
		next, err := f.auth.Refresh(ctx, pair.RefreshToken)
		require.NoError(t, err)
		require.NotEqual(t, pair.RefreshToken, next.RefreshToken)
	})

	t.Run("keeps credentials while the user keeps refreshing", func(t *testing.T) {
		f := newFixture(t)
		pair, err := f.auth.Login(ctx, techLogin, techPass)
		require.NoError(t, err)

		// Two refreshes spanning more than the vault TTL.
		f.now = f.now.Add(jwtx.DefaultRefreshTokenTTL - time.Hour)
		pair, err = f.auth.Refresh(ctx, pair.RefreshToken)
		require.NoError(t, err)
		f.now = f.now.Add(2 * time.Hour)
		_, err = f.auth.Refresh(ctx, pair.RefreshToken)
		require.NoError(t, err)

		creds, err := f.vault.Credentials(ctx, techLogin)
		require.NoError(t, err)
		require.Equal(t, techPass, creds.Password)
	})

	t.Run("no session and no credentials", func(t *testing.T) {
		f := newFixture(t)
		pair, err := f.auth.Login(ctx, techLogin, techPass)
		require.NoError(t, err)
		require.NoError(t, f.repair.RemoveSession(ctx, techLogin))
		require.NoError(t, f.vault.Forget(ctx, techLogin))

		_, err = f.auth.Refresh(ctx, pair.RefreshToken)
		require.ErrorIs(t, err, odoorpc.ErrSessionNotFound)
	})

	t.Run("password changed in odoo", func(t *testing.T) {
		f := newFixture(t)
		pair, err := f.auth.Login(ctx, techLogin, techPass)
		require.NoError(t, err)
		require.NoError(t, f.repair.RemoveSession(ctx, techLogin))
		f.odoo.SetPassword(techLogin, "rotated")

		_, err = f.auth.Refresh(ctx, pair.RefreshToken)
		require.ErrorIs(t, err, ErrInvalidCredentials)
		_, err = f.vault.Credentials(ctx, techLogin)
		require.ErrorIs(t, err, odoorpc.ErrNoCredentials)
	})
}

func TestAuthService_Logout(t *testing.T) {
	ctx := context.Background()

	t.Run("revokes and forgets", func(t *testing.T) {
		f := newFixture(t)
		pair, err := f.auth.Login(ctx, techLogin, techPass)
		require.NoError(t, err)

		require.NoError(t, f.auth.Logout(ctx, f.tech(), pair.RefreshToken))

		_, err = f.auth.Refresh(ctx, pair.RefreshToken)
		require.ErrorIs(t, err, ErrInvalidRefresh)
		_, err = f.repair.Session(ctx, techLogin)
		require.ErrorIs(t, err, odoorpc.ErrSessionNotFound)
		_, err = f.catalog.Session(ctx, techLogin)
		require.ErrorIs(t, err, odoorpc.ErrSessionNotFound)
		_, err = f.vault.Credentials(ctx, techLogin)
		require.ErrorIs(t, err, odoorpc.ErrNoCredentials)
	})

	t.Run("without a token revokes every device", func(t *testing.T) {
		f := newFixture(t)
		a, err := f.auth.Login(ctx, techLogin, techPass)
		require.NoError(t, err)
		b, err := f.auth.Login(ctx, techLogin, techPass)
		require.NoError(t, err)

		require.NoError(t, f.auth.Logout(ctx, f.tech(), ""))

		_, err = f.auth.Refresh(ctx, a.RefreshToken)
		require.ErrorIs(t, err, ErrInvalidRefresh)
		_, err = f.auth.Refresh(ctx, b.RefreshToken)
		require.ErrorIs(t, err, ErrInvalidRefresh)
	})

	t.Run("someone else's token", func(t *testing.T) {
		f := newFixture(t)
		pair, err := f.auth.Login(ctx, techLogin, techPass)
		require.NoError(t, err)

		err = f.auth.Logout(ctx, Actor{ID: "2", Login: "admin"}, pair.RefreshToken)
		require.ErrorIs(t, err, ErrInvalidRefresh)

		_, err = f.auth.Refresh(ctx, pair.RefreshToken)
		require.NoError(t, err)
	})

	t.Run("unknown token is ignored", func(t *testing.T) {
		f := newFixture(t)
		f.login(t)
		require.NoError(t, f.auth.Logout(ctx, f.tech(), "whatever"))
	})
}

func TestAuthService_Me(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	actor := f.login(t)

	f.odoo.Result("res.users", "read", []map[string]any{{"id": techUID, "name": techName, "login": techLogin}})
	user, err := f.auth.Me(ctx, actor)
	require.NoError(t, err)
	require.Equal(t, int64(techUID), user.ID)
	require.Equal(t, techName, user.Name)

	f.odoo.Result("res.users", "read", []map[string]any{})
	_, err = f.auth.Me(ctx, actor)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestAuthService_ReauthenticatesFromVault(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	actor := f.login(t)
	f.serveRepairs(repairRow(1, "RO/0001", "draft"))
	auths := f.odoo.Auths()

	f.odoo.ExpireSessions()
	repairs, err := f.repairs.Recent(ctx, actor, 10)
	require.NoError(t, err)
	require.Len(t, repairs, 1)
	require.Equal(t, auths+1, f.odoo.Auths())
}
