package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/arise-roster/internal/api/handler"
	"github.com/mcoot/arise-roster/internal/api/middleware"
	"github.com/mcoot/arise-roster/internal/realtime"
	"github.com/mcoot/arise-roster/internal/services/accounts"
	"github.com/mcoot/arise-roster/internal/services/activity"
	"github.com/mcoot/arise-roster/internal/services/auth"
	"github.com/mcoot/arise-roster/internal/services/roster"
	"github.com/mcoot/arise-roster/internal/services/spreadsheet"
	"github.com/mcoot/arise-roster/internal/storage"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger             *slog.Logger
	Storage            storage.Storage
	StorageType        string
	AuthService        *auth.Service
	AccountsService    *accounts.Service
	RosterService      *roster.Service
	ActivityService    *activity.Service
	SpreadsheetService *spreadsheet.Service
	Hub                *realtime.Hub

	AllowedOrigins []string
	SecureCookies  bool
	MaxUploadSize  int64
	LoginRateLimit middleware.RateLimitConfig
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	maxUpload := cfg.MaxUploadSize
	if maxUpload <= 0 {
		maxUpload = spreadsheet.MaxUploadSize
	}

	// Create handlers
	authHandler := handler.NewAuthHandler(cfg.AuthService, cfg.SecureCookies)
	playerHandler := handler.NewPlayerHandler(cfg.RosterService)
	accountsHandler := handler.NewAccountsHandler(cfg.AccountsService)
	statsHandler := handler.NewStatsHandler(cfg.RosterService, cfg.SpreadsheetService, maxUpload)
	activityHandler := handler.NewActivityHandler(cfg.ActivityService)
	liveHandler := handler.NewLiveHandler(cfg.Hub, cfg.AllowedOrigins, cfg.Logger)
	healthHandler := handler.NewHealthHandler(cfg.Storage, cfg.StorageType, cfg.Hub, cfg.Logger)

	// Create middleware
	authMiddleware := middleware.Auth(cfg.AuthService)
	optionalAuthMiddleware := middleware.OptionalAuth(cfg.AuthService)
	loginLimiter := middleware.NewRateLimiter(cfg.LoginRateLimit, cfg.Logger)

	public := func(h http.HandlerFunc) http.Handler { return optionalAuthMiddleware(h) }
	protected := func(h http.HandlerFunc) http.Handler { return authMiddleware(h) }

	// API subrouter with common middleware
	api := r.PathPrefix("/api").Subrouter()
	api.Use(middleware.Recovery(cfg.Logger))
	api.Use(middleware.Logging(cfg.Logger))

	// Auth routes
	api.Handle("/auth/login", loginLimiter.Middleware(http.HandlerFunc(authHandler.Login))).Methods(http.MethodPost)
	api.HandleFunc("/auth/logout", authHandler.Logout).Methods(http.MethodPost)
	api.Handle("/auth/me", protected(authHandler.Me)).Methods(http.MethodGet)

	// Roster routes; reads are public and scoped when an assistant session is present
	api.Handle("/player/search", public(playerHandler.Search)).Methods(http.MethodGet)
	api.Handle("/player", protected(playerHandler.Create)).Methods(http.MethodPost)
	api.Handle("/player/{id}", public(playerHandler.Get)).Methods(http.MethodGet)
	api.Handle("/player/{id}", protected(playerHandler.Update)).Methods(http.MethodPut)
	api.Handle("/player/{id}", protected(playerHandler.Delete)).Methods(http.MethodDelete)

	// Account routes (admin only, enforced by the service)
	api.Handle("/accounts", protected(accountsHandler.List)).Methods(http.MethodGet)
	api.Handle("/accounts", protected(accountsHandler.Create)).Methods(http.MethodPost)
	api.Handle("/accounts/{id}", protected(accountsHandler.Update)).Methods(http.MethodPut)
	api.Handle("/accounts/{id}", protected(accountsHandler.Delete)).Methods(http.MethodDelete)

	// Stats and spreadsheet routes
	api.Handle("/stats/summary", public(statsHandler.Summary)).Methods(http.MethodGet)
	api.Handle("/stats/export/excel", protected(statsHandler.Export)).Methods(http.MethodGet)
	api.Handle("/stats/import/excel", protected(statsHandler.Import)).Methods(http.MethodPost)

	// Activity log routes
	api.Handle("/activity/recent", protected(activityHandler.Recent)).Methods(http.MethodGet)
	api.Handle("/activity/log", protected(activityHandler.Log)).Methods(http.MethodPost)

	// Live change channel
	api.Handle("/events", public(liveHandler.Events)).Methods(http.MethodGet)
	api.Handle("/ws", public(liveHandler.WebSocket)).Methods(http.MethodGet)

	// Health check endpoint (no auth)
	api.HandleFunc("/health", healthHandler.Health).Methods(http.MethodGet)

	// CORS wraps the whole router so preflight requests are answered
	// before route method matching
	return middleware.CORS(cfg.AllowedOrigins)(r)
}
