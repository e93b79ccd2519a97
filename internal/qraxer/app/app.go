package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/redis/go-redis/v9"

	"github.com/ithesk/qraxer/internal/qraxer/events"
	httpapi "github.com/ithesk/qraxer/internal/qraxer/http"
	"github.com/ithesk/qraxer/internal/qraxer/metrics"
	"github.com/ithesk/qraxer/internal/qraxer/notify"
	"github.com/ithesk/qraxer/internal/qraxer/service"
	"github.com/ithesk/qraxer/internal/qraxer/store"
	"github.com/ithesk/qraxer/internal/qraxer/store/drivers/sqlite"
	"github.com/ithesk/qraxer/internal/qraxer/store/kv"
	"github.com/ithesk/qraxer/pkg/httpx"
	"github.com/ithesk/qraxer/pkg/odoorpc"
	"github.com/ithesk/qraxer/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application holds the QRaxer API with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db      store.Store
	keys    *Keys
	metrics *metrics.Metrics
	redis   *redis.Client // nil without REDIS_URL

	// Odoo proxies
	repairProxy    *odoorpc.Proxy
	catalogProxy   *odoorpc.Proxy
	inventoryProxy *odoorpc.Proxy

	vault     *service.CredentialVault
	publisher *events.Publisher
	memoryKV  *kv.Memory // set when credentials are kept in process
	stopTail  context.CancelFunc

	// Services
	authService         *service.AuthService
	repairService       *service.RepairService
	checkinService      *service.CheckinService
	inventoryService    *service.InventoryService
	productService      *service.ProductService
	clientService       *service.ClientService
	housekeepingService *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New validates cfg and builds the application.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "qraxer",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	keys, err := InitKeys(app.cfg, app.logger)
	if err != nil {
		_ = app.db.Close()
		return nil, fmt.Errorf("failed to initialize keys: %w", err)
	}
	app.keys = keys
	app.metrics = metrics.New()

	if err := app.initBackends(); err != nil {
		_ = app.closeBackends()
		return nil, err
	}
	if err := app.initProxies(); err != nil {
		_ = app.closeBackends()
		return nil, err
	}

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Handler is the fully wired HTTP handler.
func (app *Application) Handler() http.Handler { return app.router }

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("qraxer starting",
		"port", app.cfg.Port,
		"version", BuildVersion,
		"odoo_url", app.cfg.OdooURL,
		"odoo_db", app.cfg.OdooDB,
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.housekeepingService.Stop()
			_ = app.closeBackends()
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down qraxer...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.closeBackends(); err != nil {
		return err
	}

	app.logger.Info("qraxer stopped")
	return nil
}

// Close releases everything New acquired without touching the HTTP
// server. Used when the handler is served by something else.
func (app *Application) Close() error {
	return app.closeBackends()
}

// initDatabase initializes the database and applies migrations
func (app *Application) initDatabase() error {
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(dsn)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

// initBackends picks Redis or in-process storage for the credential vault
// and the event stream.
func (app *Application) initBackends() error {
	var (
		vaultKV kv.Store
		pub     message.Publisher
	)

	if app.cfg.RedisURL != "" {
		opts, err := redis.ParseURL(app.cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("invalid REDIS_URL: %w", err)
		}
		app.redis = redis.NewClient(opts)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := app.redis.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("failed to reach redis: %w", err)
		}

		vaultKV = kv.NewRedis(app.redis, "qraxer:")
		pub, err = events.NewRedisStream(app.redis, app.logger)
		if err != nil {
			return err
		}
		app.logger.Info("using redis for sessions, credentials and events")
	} else {
		app.memoryKV = kv.NewMemory()
		vaultKV = app.memoryKV

		ch := events.NewInMemory(app.logger)
		ctx, cancel := context.WithCancel(context.Background())
		if err := events.Tail(ctx, ch, app.logger); err != nil {
			cancel()
			_ = ch.Close()
			return err
		}
		app.stopTail = cancel
		pub = ch
		app.logger.Info("using in-process sessions, credentials and events")
	}

	app.publisher = events.NewPublisher(pub)
	app.vault = service.NewCredentialVault(vaultKV, app.keys.Sealer, app.cfg.JWTRefreshExpiresIn)
	return nil
}

func (app *Application) sessionStore(name string) odoorpc.SessionStore {
	if app.redis == nil {
		return odoorpc.NewMemoryStore()
	}
	return odoorpc.NewRedisStore(app.redis, "qraxer:odoo:"+name+":", app.cfg.JWTRefreshExpiresIn)
}

func (app *Application) initProxies() error {
	var err error

	app.repairProxy, err = odoorpc.New(odoorpc.Config{
		Name:        "repair",
		BaseURL:     app.cfg.OdooURL,
		DB:          app.cfg.OdooDB,
		Mode:        odoorpc.PerIdentity,
		Store:       app.sessionStore("repair"),
		Credentials: app.vault,
		Timeout:     app.cfg.OdooTimeout,
		Observer:    app.metrics,
	})
	if err != nil {
		return fmt.Errorf("repair proxy: %w", err)
	}

	app.catalogProxy, err = odoorpc.New(odoorpc.Config{
		Name:        "catalog",
		BaseURL:     app.cfg.OdooCatalogURL,
		DB:          app.cfg.OdooCatalogDB,
		Mode:        odoorpc.PerIdentity,
		Store:       app.sessionStore("catalog"),
		Credentials: app.vault,
		Timeout:     app.cfg.OdooTimeout,
		Observer:    app.metrics,
	})
	if err != nil {
		return fmt.Errorf("catalog proxy: %w", err)
	}

	app.inventoryProxy, err = odoorpc.New(odoorpc.Config{
		Name:    "inventory",
		BaseURL: app.cfg.OdooURL,
		DB:      app.cfg.OdooDB,
		Mode:    odoorpc.Shared,
		Store:   app.sessionStore("inventory"),
		Credentials: odoorpc.StaticCredentials{
			Login:    app.cfg.OdooAdminUser,
			Password: app.cfg.OdooAdminPassword,
		},
		Timeout:  app.cfg.OdooTimeout,
		Observer: app.metrics,
	})
	if err != nil {
		return fmt.Errorf("inventory proxy: %w", err)
	}

	return nil
}

// initServices initializes all business logic services
func (app *Application) initServices() {
	app.authService = &service.AuthService{
		Repair:     app.repairProxy,
		Catalog:    app.catalogProxy,
		Vault:      app.vault,
		Store:      app.db,
		Signer:     app.keys.Signer,
		Issuer:     app.cfg.JWTIssuer,
		AccessTTL:  app.cfg.JWTExpiresIn,
		RefreshTTL: app.cfg.JWTRefreshExpiresIn,
		Observer:   app.metrics,
	}

	app.repairService = &service.RepairService{
		Proxy:     app.repairProxy,
		Validator: app.keys.QR,
		Events:    app.publisher,
		QR:        app.metrics,
	}
	app.checkinService = &service.CheckinService{
		Repairs:  app.repairService,
		Ring:     notify.NewRing(notify.DefaultCapacity),
		Events:   app.publisher,
		Observer: app.metrics,
	}
	app.inventoryService = &service.InventoryService{Proxy: app.inventoryProxy}
	app.productService = &service.ProductService{Proxy: app.catalogProxy}
	app.clientService = &service.ClientService{Proxy: app.repairProxy}

	var sweepers []service.Sweeper
	if app.memoryKV != nil {
		sweepers = append(sweepers, app.memoryKV)
	}
	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
		sweepers...,
	)
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.keys.Verifier,
		BuildVersion,
		app.db,
		app.logger,
	)

	router.Metrics = app.metrics.Handler()
	router.APILimit = app.cfg.APILimit()
	if app.redis != nil {
		router.SessionsCheck = func(ctx context.Context) error {
			return app.redis.Ping(ctx).Err()
		}
	}
	router.Use(httpx.CORS(app.cfg.CORSOrigins))

	router.AuthService = app.authService
	router.RepairService = app.repairService
	router.CheckinService = app.checkinService
	router.InventoryService = app.inventoryService
	router.ProductService = app.productService
	router.ClientService = app.clientService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}

func (app *Application) closeBackends() error {
	var errs []error

	if app.stopTail != nil {
		app.stopTail()
	}
	if app.publisher != nil {
		if err := app.publisher.Close(); err != nil {
			app.logger.Error("error closing event publisher", "error", err)
			errs = append(errs, err)
		}
	}
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error("error closing redis client", "error", err)
			errs = append(errs, err)
		}
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database", "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
