package api

import (
	"log/slog"
	"net/http"

	_ "github.com/rohits-web03/sharelink/docs"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/rohits-web03/sharelink/internal/api/handlers"
	"github.com/rohits-web03/sharelink/internal/api/middleware"
	"github.com/rohits-web03/sharelink/internal/ratelimit"
	"github.com/rohits-web03/sharelink/internal/services"
	"github.com/rs/cors"
)

// RouterDeps are the pieces SetupRouter wires together.
type RouterDeps struct {
	Handlers *handlers.Handler
	Sessions *services.SessionManager
	Shared   *services.SharedVolumeService
	Limiter  *ratelimit.Limiter
	Cors     cors.Options
	Upload   bool
	Logger   *slog.Logger
}

// SetupRouter builds the full HTTP handler. Feature and auth gates run
// before rate limiting so rejected requests never consume quota.
func SetupRouter(d RouterDeps) http.Handler {
	h := d.Handlers
	mainMux := http.NewServeMux()

	admin := middleware.RequireAdmin(d.Sessions)
	limit := func(c ratelimit.Class) func(http.Handler) http.Handler {
		return middleware.RateLimit(d.Limiter, c, d.Logger)
	}
	uploadGate := middleware.RequireEnabled(func() bool { return d.Upload }, http.StatusForbidden, "Uploads are disabled")
	sharedGate := middleware.RequireEnabled(d.Shared.Enabled, http.StatusNotFound, "Shared volume is not enabled")

	// ---------- PUBLIC ROUTES ----------
	mainMux.HandleFunc("GET /health", h.Health)
	mainMux.HandleFunc("/docs/", httpSwagger.WrapHandler)

	mainMux.Handle("GET /download/{token}", middleware.Chain(http.HandlerFunc(h.Download), limit(ratelimit.Download)))

	apiMux := http.NewServeMux()
	apiMux.HandleFunc("GET /config", h.PublicConfig)
	apiMux.HandleFunc("GET /version", h.Version)
	apiMux.Handle("GET /links/{token}", middleware.Chain(http.HandlerFunc(h.GetLink), limit(ratelimit.API)))

	authMux := http.NewServeMux()
	authMux.Handle("POST /login", middleware.Chain(http.HandlerFunc(h.Login), limit(ratelimit.Login)))
	authMux.HandleFunc("POST /logout", h.Logout)
	authMux.HandleFunc("GET /status", h.AuthStatus)
	apiMux.Handle("/auth/", http.StripPrefix("/auth", authMux))

	// ---------- PROTECTED ROUTES ----------
	apiMux.Handle("POST /upload", middleware.Chain(http.HandlerFunc(h.Upload), uploadGate, admin, limit(ratelimit.Upload)))
	apiMux.Handle("POST /links", middleware.Chain(http.HandlerFunc(h.CreateLink), admin, limit(ratelimit.API)))

	sharedMux := http.NewServeMux()
	sharedMux.HandleFunc("GET /browse", h.BrowseShared)
	sharedMux.HandleFunc("POST /link", h.CreateSharedLink)
	sharedMux.HandleFunc("GET /check-link", h.CheckSharedLink)
	apiMux.Handle("/shared/", middleware.Chain(
		http.StripPrefix("/shared", sharedMux),
		sharedGate, admin, limit(ratelimit.API),
	))

	adminMux := http.NewServeMux()
	adminMux.HandleFunc("GET /files", h.ListFiles)
	adminMux.HandleFunc("DELETE /files/{id}", h.DeleteFile)
	adminMux.HandleFunc("GET /stats", h.Stats)
	adminMux.HandleFunc("GET /audit", h.AuditLogs)
	apiMux.Handle("/admin/", middleware.Chain(
		http.StripPrefix("/admin", adminMux),
		admin, limit(ratelimit.API),
	))

	mainMux.Handle("/api/v1/", http.StripPrefix("/api/v1", apiMux))

	d.Logger.Info("router initialized")
	return middleware.Chain(mainMux,
		middleware.Logger(d.Logger),
		middleware.Recover(d.Logger),
		middleware.SecurityHeaders,
		cors.New(d.Cors).Handler,
	)
}
