package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ithesk/qraxer/internal/testutil/odootest"
	"github.com/ithesk/qraxer/pkg/qraxersdk"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type testEnv struct {
	odoo   *odootest.Server
	app    *Application
	client *qraxersdk.Client
	url    string

	mu    sync.Mutex
	state string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{odoo: odootest.New(t), state: "confirmed"}
	env.odoo.AddUser("tech", "secret", 7, "Jane Tech")
	env.odoo.AddUser("admin", "admin", 2, "Administrator")

	env.odoo.Handle("repair.order", "search_read", func(c odootest.Call) (any, *odootest.Fault) {
		env.mu.Lock()
		defer env.mu.Unlock()
		return []map[string]any{{
			"id":             42,
			"name":           "RO/00042",
			"state":          env.state,
			"partner_id":     []any{3, "Acme"},
			"product_id":     false,
			"lot_id":         false,
			"user_id":        []any{7, "Jane Tech"},
			"internal_notes": false,
			"schedule_date":  false,
			"create_date":    "2026-03-30 10:00:00",
			"write_date":     "2026-03-31 11:00:00",
		}}, nil
	})
	env.odoo.Handle("repair.order", "write", func(c odootest.Call) (any, *odootest.Fault) {
		vals, _ := c.Args[1].(map[string]any)
		env.mu.Lock()
		env.state, _ = vals["state"].(string)
		env.mu.Unlock()
		return true, nil
	})
	env.odoo.Result("repair.order", "message_post", 1)

	cfg := DefaultConfig()
	cfg.LogLevel = "error"
	cfg.DatabaseFile = filepath.Join(t.TempDir(), "qraxer.db")
	cfg.OdooURL = env.odoo.URL
	cfg.OdooDB = odootest.DefaultDB
	cfg.OdooAdminUser = "admin"
	cfg.OdooAdminPassword = "admin"
	cfg.QRHMACSecret = "qr-secret"
	cfg.fillDerived()

	app, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })
	env.app = app

	srv := httptest.NewServer(app.Handler())
	t.Cleanup(srv.Close)
	env.url = srv.URL
	env.client = qraxersdk.NewClient(srv.URL)
	return env
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DatabaseFile = filepath.Join(t.TempDir(), "qraxer.db")

	_, err := New(cfg)
	require.ErrorContains(t, err, "ODOO_URL is required")
}

func TestApplication_Health(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	live, err := env.client.GetLiveness(ctx)
	require.NoError(t, err)
	require.Equal(t, "ok", live.Status)
	require.Equal(t, BuildVersion, live.Version)

	ready, err := env.client.GetReadiness(ctx)
	require.NoError(t, err)
	require.Equal(t, "ok", ready.Status)
}

func TestApplication_RequiresToken(t *testing.T) {
	env := newTestEnv(t)

	resp, err := http.Get(env.url + "/repair/checkin/pending")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestApplication_LoginRejected(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.client.Login(context.Background(), "tech", "wrong")
	require.ErrorIs(t, err, qraxersdk.ErrInvalidCredentials)
}

func TestApplication_RepairFlow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	sess, err := env.client.Login(ctx, "tech", "secret")
	require.NoError(t, err)
	require.Equal(t, "tech", sess.User().Username)
	require.Equal(t, int64(7), sess.User().ID)

	me, err := sess.Me(ctx)
	require.NoError(t, err)
	require.Equal(t, "Jane Tech", me.Name)

	// bare codes are accepted outside production
	scan, err := sess.Scan(ctx, "00042")
	require.NoError(t, err)
	require.Equal(t, "RO/00042", scan.Repair.Name)
	require.NotEmpty(t, scan.AvailableStates)

	qr, err := sess.GenerateQR(ctx, "RO/00042")
	require.NoError(t, err)
	require.Equal(t, 60, qr.ExpiresInMinutes)

	change, err := sess.UpdateState(ctx, qraxersdk.UpdateStateRequest{
		QRContent: qr.QRContent,
		NewState:  "under_repair",
		Note:      "bench 3",
	})
	require.NoError(t, err)
	require.True(t, change.Success)
	require.Equal(t, "confirmed", change.OldState)
	require.Equal(t, "under_repair", change.NewState)
	require.Len(t, env.odoo.CallsTo("repair.order", "message_post"), 1)

	_, err = sess.UpdateState(ctx, qraxersdk.UpdateStateRequest{QRContent: qr.QRContent, NewState: "draft"})
	require.ErrorIs(t, err, qraxersdk.ErrForbidden)

	n, err := sess.Checkin(ctx, qr.QRContent)
	require.NoError(t, err)
	require.Equal(t, "RO/00042", n.RepairCode)
	require.Equal(t, "7", n.TechnicianID)

	pending, err := sess.PendingCheckins(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	answered, err := sess.RespondCheckin(ctx, n.ID, "on my way")
	require.NoError(t, err)
	require.Equal(t, "on my way", answered.Response)

	_, err = sess.RespondCheckin(ctx, n.ID, "again")
	require.ErrorIs(t, err, qraxersdk.ErrConflict)

	_, err = sess.Scan(ctx, "00042|1|deadbeef")
	require.ErrorIs(t, err, qraxersdk.ErrInvalidQR)

	require.NoError(t, sess.Logout(ctx))
	require.ErrorIs(t, sess.Refresh(ctx), qraxersdk.ErrInvalidToken)
}

func TestApplication_Metrics(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.client.Login(context.Background(), "tech", "secret")
	require.NoError(t, err)

	resp, err := http.Get(env.url + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.True(t, strings.Contains(string(body), `qraxer_logins_total{outcome="success"} 1`))
}
