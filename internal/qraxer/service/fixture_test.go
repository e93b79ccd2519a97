package service

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ithesk/qraxer/internal/qraxer/events"
	"github.com/ithesk/qraxer/internal/qraxer/notify"
	"github.com/ithesk/qraxer/internal/qraxer/store/drivers/sqlite"
	"github.com/ithesk/qraxer/internal/qraxer/store/kv"
	"github.com/ithesk/qraxer/internal/testutil/odootest"
	"github.com/ithesk/qraxer/pkg/cryptox"
	"github.com/ithesk/qraxer/pkg/jwtx"
	"github.com/ithesk/qraxer/pkg/odoorpc"
	"github.com/ithesk/qraxer/pkg/qrsig"
)

const (
	testIssuer = "qraxer-test"
	techLogin  = "tech"
	techPass   = "secret"
	techUID    = 7
	techName   = "Jane Tech"
)

var (
	testJWTSecret = []byte(strings.Repeat("j", jwtx.MinSecretLength))
	testQRSecret  = []byte("qr-secret")
)

type recordedEvents struct {
	mu       sync.Mutex
	states   []events.RepairStateChanged
	checkins []events.RepairCheckedIn
	err      error
}

func (r *recordedEvents) PublishStateChanged(_ context.Context, e events.RepairStateChanged) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, e)
	return r.err
}

func (r *recordedEvents) PublishCheckin(_ context.Context, e events.RepairCheckedIn) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checkins = append(r.checkins, e)
	return r.err
}

type fixture struct {
	odoo      *odootest.Server
	repair    *odoorpc.Proxy
	catalog   *odoorpc.Proxy
	inventory *odoorpc.Proxy
	vaultKV   *kv.Memory
	vault     *CredentialVault
	store     *sqlite.Store
	events    *recordedEvents
	validator *qrsig.Validator
	now       time.Time

	auth      *AuthService
	repairs   *RepairService
	checkins  *CheckinService
	stock     *InventoryService
	products  *ProductService
	customers *ClientService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		odoo:    odootest.New(t),
		vaultKV: kv.NewMemory(),
		events:  &recordedEvents{},
		now:     time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC),
	}
	f.vaultKV.WithClock(func() time.Time { return f.now })
	f.odoo.AddUser(techLogin, techPass, techUID, techName)
	f.odoo.AddUser("admin", "admin", 2, "Administrator")

	sealer, err := cryptox.NewSealer([]byte("vault-key-material"), "odoo-credentials")
	require.NoError(t, err)
	f.vault = NewCredentialVault(f.vaultKV, sealer, jwtx.DefaultRefreshTokenTTL)

	newProxy := func(name string, mode odoorpc.Mode, creds odoorpc.CredentialSource) *odoorpc.Proxy {
		p, err := odoorpc.New(odoorpc.Config{
			Name:        name,
			BaseURL:     f.odoo.URL,
			DB:          odootest.DefaultDB,
			Mode:        mode,
			Credentials: creds,
			Timeout:     5 * time.Second,
		})
		require.NoError(t, err)
		return p
	}
	f.repair = newProxy("repair", odoorpc.PerIdentity, f.vault)
	f.catalog = newProxy("catalog", odoorpc.PerIdentity, f.vault)
	f.inventory = newProxy("inventory", odoorpc.Shared, odoorpc.StaticCredentials{Login: "admin", Password: "admin"})

	f.store, err = sqlite.NewStore("file:" + filepath.Join(t.TempDir(), "qraxer.db") + "?_busy_timeout=5000")
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.store.Close() })
	require.NoError(t, f.store.ApplyMigrations())

	signer, err := jwtx.NewSignerHS256(testJWTSecret)
	require.NoError(t, err)

	clock := func() time.Time { return f.now }
	f.validator = qrsig.NewValidator(testQRSecret, true)
	f.validator.Now = clock

	f.auth = &AuthService{
		Repair:     f.repair,
		Catalog:    f.catalog,
		Vault:      f.vault,
		Store:      f.store,
		Signer:     signer,
		Issuer:     testIssuer,
		AccessTTL:  jwtx.DefaultAccessTokenTTL,
		RefreshTTL: jwtx.DefaultRefreshTokenTTL,
		Now:        clock,
	}
	f.repairs = &RepairService{Proxy: f.repair, Validator: f.validator, Events: f.events, Now: clock}
	f.checkins = &CheckinService{Repairs: f.repairs, Ring: notify.NewRing(notify.DefaultCapacity), Events: f.events, Now: clock}
	f.stock = &InventoryService{Proxy: f.inventory}
	f.products = &ProductService{Proxy: f.catalog}
	f.customers = &ClientService{Proxy: f.repair}
	return f
}

func (f *fixture) tech() Actor {
	return Actor{ID: "7", Login: techLogin, Name: techName}
}

// login authenticates the technician the way the login endpoint does.
func (f *fixture) login(t *testing.T) Actor {
	t.Helper()
	_, err := f.auth.Login(context.Background(), techLogin, techPass)
	require.NoError(t, err)
	return f.tech()
}

func (f *fixture) signed(t *testing.T, code string) string {
	t.Helper()
	content, err := f.validator.Generate(code)
	require.NoError(t, err)
	return content
}

func repairRow(id int64, name, state string) map[string]any {
	return map[string]any{
		"id":             id,
		"name":           name,
		"state":          state,
		"partner_id":     []any{3, "Acme Repairs"},
		"product_id":     []any{12, "Laptop"},
		"lot_id":         false,
		"user_id":        []any{techUID, techName},
		"internal_notes": false,
		"schedule_date":  false,
		"create_date":    "2026-03-30 10:00:00",
		"write_date":     "2026-03-31 11:00:00",
	}
}

// serveRepairs answers repair.order search_read from rows, matching the
// first domain leaf on name or id.
func (f *fixture) serveRepairs(rows ...map[string]any) {
	f.odoo.Handle("repair.order", "search_read", func(c odootest.Call) (any, *odootest.Fault) {
		dom := c.Domain()
		if len(dom) == 0 {
			return rows, nil
		}
		leaf, _ := dom[0].([]any)
		out := []map[string]any{}
		for _, r := range rows {
			switch leaf[0] {
			case "name":
				if r["name"] == leaf[2] {
					out = append(out, r)
				}
			case "id":
				if float64(r["id"].(int64)) == leaf[2] {
					out = append(out, r)
				}
			}
		}
		return out, nil
	})
}
