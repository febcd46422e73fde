// internal/app/bootstrap/routes.go
package bootstrap

import (
	"crypto/sha256"
	"net/http"

	chatfeature "github.com/dalemusser/studyhub/internal/app/features/chat"
	errorsfeature "github.com/dalemusser/studyhub/internal/app/features/errors"
	groupsfeature "github.com/dalemusser/studyhub/internal/app/features/groups"
	healthfeature "github.com/dalemusser/studyhub/internal/app/features/health"
	homefeature "github.com/dalemusser/studyhub/internal/app/features/home"
	loginfeature "github.com/dalemusser/studyhub/internal/app/features/login"
	logoutfeature "github.com/dalemusser/studyhub/internal/app/features/logout"
	registerfeature "github.com/dalemusser/studyhub/internal/app/features/register"
	tasksfeature "github.com/dalemusser/studyhub/internal/app/features/tasks"
	"github.com/dalemusser/studyhub/internal/app/lifecycle"
	userstore "github.com/dalemusser/studyhub/internal/app/store/users"
	"github.com/dalemusser/studyhub/internal/app/system/auth"
	"github.com/dalemusser/studyhub/internal/app/system/flash"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/csrf"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed.
//
// StudyHub initializes the template engine, applies session middleware,
// and mounts the feature routers: home, auth, the group list and forms,
// and each group's chat and tasks.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// Re-check the session identity on each request so deleted accounts
	// stop working immediately.
	sessionMgr.SetUserFetcher(userstore.NewFetcher(deps.StudyHubMongoDatabase))

	fl := flash.New(sessionMgr.Store(), sessionMgr.Name())

	// Initialize and boot the template engine once at startup.
	// Dev mode enables template reloading for faster iteration.
	eng := templates.New(coreCfg.Env == "dev")
	if err := eng.Boot(logger); err != nil {
		logger.Error("template engine boot failed", zap.Error(err))
		return nil, err
	}
	templates.UseEngine(eng, logger)

	errLog := errorsfeature.NewErrorLogger(logger)
	svc := lifecycle.New(deps.StudyHubMongoDatabase, deps.Files, logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	// CSRF tokens for every form post. Outside prod the app is served over
	// plain http, so requests are marked to skip the TLS referer check.
	csrfKey := sha256.Sum256([]byte("csrf:" + appCfg.SessionKey))
	if !secure {
		r.Use(markPlaintext)
	}
	r.Use(csrf.Protect(csrfKey[:],
		csrf.Secure(secure),
		csrf.Path("/"),
		csrf.SameSite(csrf.SameSiteLaxMode),
	))

	// Global auth middleware: loads SessionUser into context if logged in.
	r.Use(sessionMgr.LoadSessionUser)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.StudyHubMongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Static assets with pre-compressed file support (gzip/brotli)
	r.Handle("/static/*", fileserver.Handler("/static", "public"))

	// Public pages
	homeHandler := homefeature.NewHandler(fl, logger)
	r.Mount("/", homefeature.Routes(homeHandler))

	// Authentication
	registerHandler := registerfeature.NewHandler(deps.StudyHubMongoDatabase, sessionMgr, fl, errLog, logger)
	r.Mount("/register", registerfeature.Routes(registerHandler))

	loginHandler := loginfeature.NewHandler(deps.StudyHubMongoDatabase, sessionMgr, fl, errLog, logger)
	r.Mount("/login", loginfeature.Routes(loginHandler))

	logoutHandler := logoutfeature.NewHandler(sessionMgr, logger)
	r.Mount("/logout", logoutfeature.Routes(logoutHandler, sessionMgr))

	// Error pages
	errorsHandler := errorsfeature.NewHandler()
	r.Get("/forbidden", errorsHandler.Forbidden)
	r.NotFound(errorsHandler.NotFound)

	// Study groups, with each group's chat and tasks mounted beneath
	chatHandler := chatfeature.NewHandler(svc, fl, errLog, appCfg.UploadMaxBytes, logger)
	tasksHandler := tasksfeature.NewHandler(svc, fl, errLog, logger)
	groupsHandler := groupsfeature.NewHandler(svc, fl, errLog, logger)
	r.Mount("/groups", groupsfeature.Routes(groupsHandler, sessionMgr, map[string]http.Handler{
		"chat":  chatfeature.Routes(chatHandler),
		"tasks": tasksfeature.Routes(tasksHandler),
	}))

	return r, nil
}

func markPlaintext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, csrf.PlaintextHTTPRequest(r))
	})
}
