// internal/app/bootstrap/routes.go
package bootstrap

import (
	"context"
	"net/http"
	"time"

	contactfeature "github.com/dalemusser/coconsult/internal/app/features/contact"
	errorsfeature "github.com/dalemusser/coconsult/internal/app/features/errors"
	filemanagerfeature "github.com/dalemusser/coconsult/internal/app/features/filemanager"
	healthfeature "github.com/dalemusser/coconsult/internal/app/features/health"
	homefeature "github.com/dalemusser/coconsult/internal/app/features/home"
	loginfeature "github.com/dalemusser/coconsult/internal/app/features/login"
	logoutfeature "github.com/dalemusser/coconsult/internal/app/features/logout"
	newsletterfeature "github.com/dalemusser/coconsult/internal/app/features/newsletter"
	profilefeature "github.com/dalemusser/coconsult/internal/app/features/profile"
	appresources "github.com/dalemusser/coconsult/internal/app/resources"
	"github.com/dalemusser/coconsult/internal/app/store/audit"
	"github.com/dalemusser/coconsult/internal/app/store/inquiries"
	"github.com/dalemusser/coconsult/internal/app/store/ratelimit"
	"github.com/dalemusser/coconsult/internal/app/store/subscribers"
	"github.com/dalemusser/coconsult/internal/app/system/auditlog"
	"github.com/dalemusser/coconsult/internal/app/system/auth"
	"github.com/dalemusser/coconsult/internal/app/system/authapi"
	"github.com/dalemusser/coconsult/internal/app/system/fileapi"
	"github.com/dalemusser/coconsult/internal/app/system/network"
	"github.com/dalemusser/coconsult/internal/app/system/timeouts"
	"github.com/dalemusser/coconsult/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/middleware"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/csrf"
	"go.uber.org/zap"
)

// requestTimeout bounds every request except the event stream.
const requestTimeout = 30 * time.Second

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. The router serves the marketing site,
// the contact and newsletter forms, the auth pages and the file manager.
// All browser routes share session loading and CSRF protection; only the
// server-sent event stream is mounted outside the request timeout.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Create the session manager using app config.
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// Initialize and boot the template engine once at startup.
	// Dev mode enables template reloading for faster iteration.
	eng := templates.New(coreCfg.Env == "dev")
	if err := eng.Boot(logger); err != nil {
		logger.Error("template engine boot failed", zap.Error(err))
		return nil, err
	}
	templates.UseEngine(eng, logger)

	// Flash notices are read through the session manager.
	viewdata.Init(sessionMgr)

	// Remote calls share one timeout setting.
	timeouts.SetRemote(appCfg.RemoteTimeout)

	// Create error logger for handlers.
	errLog := errorsfeature.NewErrorLogger(logger)

	// Create audit store and logger for security event tracking.
	auditLogger := auditlog.New(audit.New(deps.MongoDatabase), logger, auditlog.Config{
		Auth:    appCfg.AuditLogAuth,
		Contact: appCfg.AuditLogContact,
	})

	// Contact form stamps are signed with a key derived from the session key.
	stamper, err := contactfeature.NewStamper(appCfg.SessionKey, nil)
	if err != nil {
		logger.Error("contact stamp signer init failed", zap.Error(err))
		return nil, err
	}

	// Remote services
	fileClient := fileapi.New(fileapi.Config{BaseURL: appCfg.FileAPIURL, Timeout: appCfg.RemoteTimeout}, logger)
	authClient := authapi.New(appCfg.AuthAPIURL, appCfg.RemoteTimeout, logger)

	r := chi.NewRouter()

	// ─────────────────────────────────────────────────────────────────────────────
	// Global Middleware (applies to ALL routes)
	// ─────────────────────────────────────────────────────────────────────────────

	r.Use(chimw.RequestID)
	r.Use(network.ProxyHeaders(appCfg.TrustProxyHeaders))

	// CORS middleware: must be early in the chain to handle preflight requests.
	r.Use(middleware.CORSFromConfig(coreCfg))

	// Security headers middleware: adds X-Frame-Options, X-Content-Type-Options, etc.
	r.Use(middleware.SecurityHeadersFromConfig(coreCfg))

	// Session middleware: loads SessionUser into context if logged in.
	r.Use(sessionMgr.LoadSessionUser)

	// CSRF protection. Forms post the hidden gorilla.csrf.Token field; the
	// file manager script sends the X-CSRF-Token header.
	r.Use(csrfMiddleware(appCfg, secure, logger))

	// ─────────────────────────────────────────────────────────────────────────────
	// Long-lived routes (no request timeout)
	// ─────────────────────────────────────────────────────────────────────────────

	fileManagerHandler := filemanagerfeature.NewHandler(fileClient, deps.Bus, sessionMgr, errLog, logger)
	r.Method(http.MethodGet, "/filemanager/events", filemanagerfeature.EventsHandler(fileManagerHandler))

	// ─────────────────────────────────────────────────────────────────────────────
	// Routes
	// ─────────────────────────────────────────────────────────────────────────────

	errorsHandler := errorsfeature.NewHandler()

	r.Group(func(r chi.Router) {
		// Request timeout middleware: prevents requests from hanging indefinitely.
		r.Use(chimw.Timeout(requestTimeout))

		// Health check endpoints for load balancers and orchestrators.
		// The remote services and Redis only degrade the full check.
		healthDeps := []healthfeature.Dependency{
			{Name: "file_api", Ping: fileClient.Ping},
			{Name: "auth_api", Ping: authClient.Ping},
		}
		if deps.Redis != nil {
			healthDeps = append(healthDeps, healthfeature.Dependency{
				Name: "redis",
				Ping: func(ctx context.Context) error { return deps.Redis.Ping(ctx).Err() },
			})
		}
		healthHandler := healthfeature.NewHandler(deps.MongoClient, logger, healthDeps...)
		if taskRunner != nil {
			healthHandler.ReportJobs(taskRunner.Status)
		}
		r.Mount("/health", healthfeature.Routes(healthHandler))
		healthfeature.MountRootEndpoints(r, healthHandler)

		// Static assets with pre-compressed file support (gzip/brotli)
		// /static/* serves files from disk (static directory)
		r.Handle("/static/*", fileserver.Handler("/static", "static"))

		// /assets/* serves embedded assets (bundled into the binary)
		r.Handle("/assets/*", appresources.AssetsHandler("/assets"))

		// Contact form; the landing page embeds its first step.
		contactHandler := contactfeature.NewHandler(
			inquiries.New(deps.MongoDatabase),
			deps.Email,
			stamper,
			auditLogger,
			errLog,
			contactfeature.Config{
				MinFillTime: appCfg.ContactMinFillTime,
				HourlyLimit: appCfg.ContactHourlyLimit,
			},
			logger,
		)
		r.Mount("/contact", contactfeature.Routes(contactHandler))

		// Public pages
		homeHandler := homefeature.NewHandler(contactHandler, logger)
		r.Get("/", homeHandler.Index)

		// Newsletter sign-up (footer form)
		newsletterHandler := newsletterfeature.NewHandler(subscribers.New(deps.MongoDatabase), deps.Email, auditLogger, errLog, logger)
		r.Mount("/newsletter", newsletterfeature.Routes(newsletterHandler))

		// Authentication against the remote auth service.
		// Failed attempts are counted per email (login) and per IP (registration).
		var limiter loginfeature.Limiter
		if appCfg.RateLimitEnabled {
			limiter = ratelimit.New(deps.MongoDatabase, rateLimits(appCfg))
		}
		loginHandler := loginfeature.NewHandler(authClient, limiter, sessionMgr, errLog, auditLogger, logger)
		r.Mount("/login", loginfeature.Routes(loginHandler))
		r.Mount("/register", loginfeature.RegisterRoutes(loginHandler))

		logoutHandler := logoutfeature.NewHandler(sessionMgr, auditLogger, logger)
		r.Mount("/logout", logoutfeature.Routes(logoutHandler))

		profileHandler := profilefeature.NewHandler(logger)
		r.Mount("/profile", profilefeature.Routes(profileHandler, sessionMgr))

		// File manager (signed-in users)
		filemanagerfeature.Mount(r, fileManagerHandler)

		// Error pages
		r.Get("/forbidden", errorsHandler.Forbidden)
		r.Get("/unauthorized", errorsHandler.Unauthorized)
	})

	// 404 catch-all for unmatched routes
	r.NotFound(errorsHandler.NotFound)

	return r, nil
}

// csrfMiddleware builds the gorilla/csrf protection for browser routes.
func csrfMiddleware(appCfg AppConfig, secure bool, logger *zap.Logger) func(http.Handler) http.Handler {
	csrfOpts := []csrf.Option{
		csrf.Secure(secure),
		csrf.Path("/"),
		csrf.CookieName("coconsult_csrf"),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			logger.Warn("CSRF validation failed",
				zap.String("path", req.URL.Path),
				zap.String("method", req.Method),
				zap.String("reason", csrf.FailureReason(req).Error()),
			)
			http.Error(w, "CSRF token invalid or missing", http.StatusForbidden)
		})),
	}
	// In dev mode, trust localhost origins for CSRF validation.
	if !secure {
		csrfOpts = append(csrfOpts, csrf.TrustedOrigins([]string{
			"localhost:8080",
			"localhost:3000",
			"127.0.0.1:8080",
			"127.0.0.1:3000",
		}))
	}
	if appCfg.SessionDomain != "" {
		csrfOpts = append(csrfOpts, csrf.Domain(appCfg.SessionDomain))
	}
	return csrf.Protect([]byte(appCfg.CSRFKey), csrfOpts...)
}
