// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	dashboardfeature "github.com/deskhubhq/deskhub/internal/app/features/dashboard"
	healthfeature "github.com/deskhubhq/deskhub/internal/app/features/health"
	loginfeature "github.com/deskhubhq/deskhub/internal/app/features/login"
	logoutfeature "github.com/deskhubhq/deskhub/internal/app/features/logout"
	projectsfeature "github.com/deskhubhq/deskhub/internal/app/features/projects"
	ticketsfeature "github.com/deskhubhq/deskhub/internal/app/features/tickets"
	credentialstore "github.com/deskhubhq/deskhub/internal/app/store/credentials"
	loginstore "github.com/deskhubhq/deskhub/internal/app/store/logins"
	projectstore "github.com/deskhubhq/deskhub/internal/app/store/projects"
	ticketstore "github.com/deskhubhq/deskhub/internal/app/store/tickets"
	userstore "github.com/deskhubhq/deskhub/internal/app/store/users"
	"github.com/deskhubhq/deskhub/internal/app/system/auth"
	"github.com/deskhubhq/deskhub/internal/app/system/authz"
	"github.com/deskhubhq/deskhub/internal/app/system/inflight"
	"github.com/deskhubhq/deskhub/internal/app/system/membership"
	"github.com/deskhubhq/deskhub/internal/app/system/metrics"
	"github.com/deskhubhq/deskhub/internal/app/system/signin"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. DeskHub applies session middleware and
// request metrics globally, then mounts feature routers for authentication,
// project/member administration, the ticket API, and admin dashboards.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Create the session manager using app config.
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	db := deps.MongoDatabase

	// Re-read the user on each request so role changes and member removals
	// take effect immediately instead of riding out the cookie.
	sessionMgr.SetUserFetcher(userstore.NewFetcher(db))

	users := userstore.New(db)
	projects := projectstore.New(db)
	tickets := ticketstore.New(db)
	creds := credentialstore.New(db)
	logins := loginstore.New(db)

	reconciler := signin.NewReconciler(users, creds, logger)
	synchronizer := membership.NewSynchronizer(users, projects, logger)
	guard := inflight.NewGuard()
	feed := ticketstore.NewFeed()

	r := chi.NewRouter()

	// Global auth middleware: loads SessionUser into context if logged in.
	// This makes the current user available to all handlers via auth.CurrentUser(r).
	r.Use(sessionMgr.LoadSessionUser)
	r.Use(metrics.Instrument)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Prometheus scrape endpoint
	r.Handle("/metrics", metrics.Handler())

	// Authentication
	loginHandler := loginfeature.NewHandler(reconciler, sessionMgr, guard, logins, logger)
	r.Mount("/login", loginfeature.Routes(loginHandler))

	logoutHandler := logoutfeature.NewHandler(sessionMgr, logger)
	r.Mount("/logout", logoutfeature.Routes(logoutHandler))

	// Project and member administration (admin only)
	projectsHandler := projectsfeature.NewHandler(projects, synchronizer, guard, logger)
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireSignedIn)
		r.Use(auth.RequireRole(authz.RoleAdmin))
		r.Mount("/projects", projectsfeature.Routes(projectsHandler))
	})

	// Ticket API; creation is public, the rest is scoped per role inside.
	ticketsHandler := ticketsfeature.NewHandler(tickets, feed, guard, appCfg.MaxAttachmentBytes, logger)
	r.Mount("/tickets", ticketsfeature.Routes(ticketsHandler))

	// Admin dashboard stats
	dashboardHandler := dashboardfeature.NewHandler(users, projects, tickets, logins, logger)
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireSignedIn)
		r.Use(auth.RequireRole(authz.RoleAdmin))
		r.Mount("/dashboard", dashboardfeature.Routes(dashboardHandler))
	})

	return r, nil
}
