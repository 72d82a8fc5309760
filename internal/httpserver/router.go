package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"vaultadmin/internal/auth"
	"vaultadmin/internal/httpserver/handlers"
	"vaultadmin/internal/httpserver/middleware"
	"vaultadmin/internal/models"
	"vaultadmin/internal/response"
	"vaultadmin/internal/services/account"
	"vaultadmin/internal/services/audit"
	"vaultadmin/internal/services/catalog"
	"vaultadmin/internal/services/dashboard"
)

const banner = "Your server is up and running.... for admin-service "

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Deps struct {
	Store     Pinger
	Accounts  *account.Service
	Audit     *audit.Service
	Dashboard *dashboard.Service
	Catalog   *catalog.Service
}

func NewRouter(d Deps, lg *zap.SugaredLogger) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID, chimw.RealIP, middleware.RequestLogger(lg), middleware.Recoverer(lg), middleware.Metrics)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusNotFound, "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, http.StatusOK, response.Envelope{Success: true, Message: banner})
	})
	r.Get("/healthz", health(d.Store, lg))
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/login", handlers.Login(d.Accounts, lg))
	r.Post("/logout", handlers.Logout(d.Accounts, lg))
	r.Get("/login-history/{userId}", handlers.LoginHistory(d.Accounts, lg))
	r.Put("/change-password/{userId}", handlers.ChangePassword(d.Accounts, lg))

	r.Group(func(internal chi.Router) {
		internal.Use(auth.InternalOnly)
		internal.Post("/audit-logs", handlers.CreateAuditLog(d.Audit, lg))
	})

	r.Group(func(admin chi.Router) {
		admin.Use(auth.PropagateIdentity, auth.RequireRole(models.RoleAdmin))
		admin.Get("/audit-logs", handlers.ListAuditLogs(d.Audit, lg))
		admin.Get("/audit-logs/stats", handlers.AuditLogStats(d.Audit, lg))

		admin.Route("/games", func(games chi.Router) {
			games.Post("/", handlers.CreateGame(d.Catalog, lg))
			games.Get("/", handlers.ListGames(d.Catalog, lg))
			games.Get("/{id}", handlers.GetGame(d.Catalog, lg))
			games.Put("/{id}", handlers.UpdateGame(d.Catalog, lg))
			games.Delete("/{id}", handlers.DeleteGame(d.Catalog, lg))
		})
	})

	r.Group(func(dash chi.Router) {
		dash.Use(auth.PropagateIdentity, auth.RequireSubject, auth.RequireRole(models.RoleAdmin))
		dash.Get("/dashboard/stats", handlers.DashboardStats(d.Dashboard, lg))
	})
	return r
}

func health(st Pinger, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := st.Ping(ctx); err != nil {
			lg.Warnw("health check failed", "error", err)
			response.Error(w, http.StatusServiceUnavailable, "Store unavailable")
			return
		}
		response.Success(w, http.StatusOK, "ok", nil)
	}
}
