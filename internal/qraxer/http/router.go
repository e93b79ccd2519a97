package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/ithesk/qraxer/internal/qraxer/service"
	"github.com/ithesk/qraxer/internal/qraxer/store"
	"github.com/ithesk/qraxer/pkg/httpx"
	"github.com/ithesk/qraxer/pkg/jwtx"
	"github.com/ithesk/qraxer/pkg/slogx"

	_ "github.com/ithesk/qraxer/api/qraxer" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier     jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	store        store.Store

	// SessionsCheck reports the health of the session backend on /readyz.
	// Optional.
	SessionsCheck func(context.Context) error
	// Metrics serves /metrics when set.
	Metrics http.Handler

	LoginLimit httpx.RateLimitConfig
	APILimit   httpx.RateLimitConfig

	AuthService      *service.AuthService
	RepairService    *service.RepairService
	CheckinService   *service.CheckinService
	InventoryService *service.InventoryService
	ProductService   *service.ProductService
	ClientService    *service.ClientService
}

func NewRouter(
	verifier jwtx.Verifier,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
		LoginLimit:   httpx.LoginLimit,
		APILimit:     httpx.DefaultAPILimit,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

// Use appends global middleware. It runs after the request logger.
func (r *Router) Use(m ...httpx.Middleware) {
	r.middlewares = append(r.middlewares, m...)
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerRepairs()
	r.registerCheckins()
	r.registerInventory()
	r.registerProducts()
	r.registerClients()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			QRaxer API
//	@version		0.1.0
//	@description	Field-service backend for technicians. Scans signed repair QR codes, moves repair orders through their states and counts inventory, proxying every call to Odoo over JSON-RPC.
//	@description
//	@description				Access tokens are HS256 JWTs; refresh tokens are opaque and rotate on every use.
//
//	@host						localhost:3001
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// secured requires a bearer token and applies the per-user limit.
func (r *Router) secured(h http.Handler) http.Handler {
	return httpx.Chain(h,
		httpx.AuthnMiddleware(r.verifier),
		httpx.RateLimitByUser(r.APILimit),
	)
}

func (r *Router) registerAuth() {
	h := &AuthHandler{AuthService: r.AuthService}

	// Login is limited by IP and username to slow down password guessing.
	r.Mux.Handle("POST /auth/login",
		httpx.Chain(http.HandlerFunc(h.HandleLogin),
			httpx.RateLimitByIPAndJSONField(r.LoginLimit, "username"),
		),
	)
	r.Mux.Handle("POST /auth/refresh",
		httpx.Chain(http.HandlerFunc(h.HandleRefresh),
			httpx.RateLimitByIP(r.LoginLimit),
		),
	)
	r.Mux.Handle("POST /auth/logout", r.secured(actorHandlerFunc(h.HandleLogout)))
	r.Mux.Handle("GET /auth/me", r.secured(actorHandlerFunc(h.HandleMe)))
}

func (r *Router) registerRepairs() {
	h := &RepairHandler{RepairService: r.RepairService}

	r.Mux.Handle("GET /repair/states", r.secured(http.HandlerFunc(h.HandleStates)))
	r.Mux.Handle("POST /repair/scan", r.secured(actorHandlerFunc(h.HandleScan)))
	r.Mux.Handle("POST /repair/update-state", r.secured(actorHandlerFunc(h.HandleUpdateState)))
	r.Mux.Handle("POST /repair/generate-qr", r.secured(http.HandlerFunc(h.HandleGenerateQR)))
	r.Mux.Handle("POST /repair/create", r.secured(actorHandlerFunc(h.HandleCreate)))
	r.Mux.Handle("GET /repair/recent", r.secured(actorHandlerFunc(h.HandleRecent)))
}

func (r *Router) registerCheckins() {
	h := &CheckinHandler{CheckinService: r.CheckinService}

	r.Mux.Handle("POST /repair/checkin", r.secured(actorHandlerFunc(h.HandleCheckin)))
	r.Mux.Handle("GET /repair/checkin/pending", r.secured(http.HandlerFunc(h.HandlePending)))
	r.Mux.Handle("POST /repair/checkin/respond", r.secured(actorHandlerFunc(h.HandleRespond)))
}

func (r *Router) registerInventory() {
	h := &InventoryHandler{InventoryService: r.InventoryService}

	r.Mux.Handle("GET /inventory/locations", r.secured(http.HandlerFunc(h.HandleLocations)))
	r.Mux.Handle("GET /inventory/product", r.secured(http.HandlerFunc(h.HandleProduct)))
	r.Mux.Handle("GET /inventory/quants", r.secured(http.HandlerFunc(h.HandleQuants)))
	r.Mux.Handle("POST /inventory/count", r.secured(http.HandlerFunc(h.HandleCount)))
}

func (r *Router) registerProducts() {
	h := &ProductHandler{ProductService: r.ProductService}

	r.Mux.Handle("GET /products/search", r.secured(actorHandlerFunc(h.HandleSearch)))
	r.Mux.Handle("GET /products/barcode/{barcode}", r.secured(actorHandlerFunc(h.HandleByBarcode)))
}

func (r *Router) registerClients() {
	h := &ClientHandler{ClientService: r.ClientService}

	r.Mux.Handle("GET /clients/search", r.secured(actorHandlerFunc(h.HandleSearch)))
	r.Mux.Handle("POST /clients", r.secured(actorHandlerFunc(h.HandleCreate)))
}

func (r *Router) registerSystem() {
	// Probes are polled often; they stay outside the rate limits.
	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.store, r.SessionsCheck))

	if r.Metrics != nil {
		r.Mux.Handle("GET /metrics", r.Metrics)
	}
}
