package main

import (
	"errors"
	"net/http"
	"time"

	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/diewo77/medicaments-api/auth"
	"github.com/diewo77/medicaments-api/gate"
	"github.com/diewo77/medicaments-api/httpx"
	"github.com/diewo77/medicaments-api/internal/policy"
)

// App is the main application handler that sets up all routes.
type App struct {
	mux       *http.ServeMux
	routerCfg *RouterConfig
	log       *zap.Logger
	handler   http.Handler
}

// NewApp creates a new application with all routes configured.
func NewApp(routerCfg *RouterConfig, log *zap.Logger) *App {
	app := &App{
		mux:       http.NewServeMux(),
		routerCfg: routerCfg,
		log:       log,
	}
	app.setupRoutes()
	// outermost first: logging sees the final status, recovery catches handler
	// panics, CORS answers preflights, the gateway binds the bearer token
	app.handler = app.withLogging(app.withRecover(app.withCORS(routerCfg.Gateway.Middleware(app.mux))))
	return app
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.handler.ServeHTTP(w, r)
}

// setupRoutes configures all application routes.
func (a *App) setupRoutes() {
	// ─────────────────────────────────────────────────────────────────────────
	// Public routes (no auth required)
	// ─────────────────────────────────────────────────────────────────────────
	ah := a.routerCfg.AuthHandler
	ph := a.routerCfg.ProductHandler

	a.mux.HandleFunc("GET /health", a.health)
	a.mux.HandleFunc("POST /api/auth/register", ah.Register)
	a.mux.HandleFunc("POST /api/auth/login", ah.Login)
	a.mux.HandleFunc("GET /api/products", ph.List)
	a.mux.HandleFunc("GET /api/products/{id}", ph.Get)

	// ─────────────────────────────────────────────────────────────────────────
	// Authenticated routes
	// ─────────────────────────────────────────────────────────────────────────
	ch := a.routerCfg.ClientHandler

	a.mux.Handle("POST /api/auth/logout", a.requireAuth(http.HandlerFunc(ah.Logout)))
	a.mux.Handle("GET /api/clients/profile", a.requireAuth(http.HandlerFunc(ch.Profile)))
	a.mux.Handle("PUT /api/clients/profile", a.requireAuth(http.HandlerFunc(ch.UpdateProfile)))
	a.mux.Handle("PUT /api/clients/change-password", a.requireAuth(http.HandlerFunc(ch.ChangePassword)))

	// Catalog mutations - require product:create, product:update, product:delete
	a.mux.Handle("POST /api/products",
		a.requireAuth(a.requirePermission(policy.ResourceProduct, gate.ActionCreate)(http.HandlerFunc(ph.Create))))
	a.mux.Handle("PUT /api/products/{id}",
		a.requireAuth(a.requirePermission(policy.ResourceProduct, gate.ActionUpdate)(http.HandlerFunc(ph.Update))))
	a.mux.Handle("DELETE /api/products/{id}",
		a.requireAuth(a.requirePermission(policy.ResourceProduct, gate.ActionDelete)(http.HandlerFunc(ph.Delete))))

	// Shopping lists - ownership is checked per list by the service
	sh := a.routerCfg.ShoppingListHandler
	a.mux.Handle("POST /api/shopping-lists", a.requireAuth(http.HandlerFunc(sh.Create)))
	a.mux.Handle("GET /api/shopping-lists", a.requireAuth(http.HandlerFunc(sh.List)))
	a.mux.Handle("GET /api/shopping-lists/{id}", a.requireAuth(http.HandlerFunc(sh.Get)))
	a.mux.Handle("DELETE /api/shopping-lists/{id}", a.requireAuth(http.HandlerFunc(sh.Delete)))
	a.mux.Handle("POST /api/shopping-lists/{id}/items", a.requireAuth(http.HandlerFunc(sh.AddItem)))
	a.mux.Handle("DELETE /api/shopping-lists/{id}/items/{itemId}", a.requireAuth(http.HandlerFunc(sh.RemoveItem)))
	a.mux.Handle("PATCH /api/shopping-lists/{id}/status", a.requireAuth(http.HandlerFunc(sh.SetStatus)))

	a.mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSONError(w, http.StatusNotFound, "route_not_found", nil)
	})
}

// ─────────────────────────────────────────────────────────────────────────────
// Middleware
// ─────────────────────────────────────────────────────────────────────────────

// requireAuth wraps a handler to require a verified bearer token.
func (a *App) requireAuth(next http.Handler) http.Handler {
	return auth.RequireAuth(next)
}

// requirePermission wraps a handler to require a resource-level permission
// for the caller's role.
func (a *App) requirePermission(resource string, action gate.Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, _ := auth.IdentityFromContext(r.Context())
			err := a.routerCfg.Gate.Authorize(r.Context(), policy.SubjectFrom(id), action, resource, nil)
			switch {
			case err == nil:
				next.ServeHTTP(w, r)
			case errors.Is(err, gate.ErrUnauthorized):
				httpx.JSONError(w, http.StatusUnauthorized, "authentication_required", nil)
			default:
				httpx.JSONError(w, http.StatusForbidden, "forbidden", nil)
			}
		})
	}
}

// withCORS lets browser frontends on the configured origins call the API.
func (a *App) withCORS(next http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins: a.routerCfg.CORSOrigins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete,
		},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         600,
	}).Handler(next)
}

// statusRecorder captures the status code written by the wrapped handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (a *App) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		a.log.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)))
	})
}

func (a *App) withRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				a.log.Error("panic serving request", zap.Any("panic", rec), zap.String("path", r.URL.Path))
				httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (a *App) health(w http.ResponseWriter, r *http.Request) {
	if err := a.routerCfg.DB.WithContext(r.Context()).Exec("SELECT 1").Error; err != nil {
		httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "OK", "message": "API Médicaments fonctionne!"})
}
