package main

import (
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/ycwei/img2md/internal/auth"
	"github.com/ycwei/img2md/internal/config"
	"github.com/ycwei/img2md/internal/handlers"
	"github.com/ycwei/img2md/internal/middleware"
	"github.com/ycwei/img2md/internal/repo"
)

// newRouter wires repositories, the auth service and the conversion gateway
// into the HTTP API. The gateway comes in as an interface so tests can swap in
// a fake model.
func newRouter(database *sql.DB, cfg config.Config, gateway handlers.Generator) http.Handler {
	users := repo.NewUserRepo(database)
	histories := repo.NewHistoryRepo(database)
	authSvc := auth.NewService(users, []byte(cfg.JWTSecret), time.Duration(cfg.JWTExpireHours)*time.Hour)

	authHandler := &handlers.AuthHandler{Users: users, Auth: authSvc}
	uploadHandler := &handlers.UploadHandler{Histories: histories, Gateway: gateway, MaxMemory: cfg.MaxUploadBytes}
	historyHandler := &handlers.HistoryHandler{Histories: histories}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestLog)
	r.Use(middleware.Prometheus)
	r.Use(middleware.SecurityHeaders(false))
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, "ok")
	})
	r.Get("/ready", func(w http.ResponseWriter, r *http.Request) {
		if err := database.PingContext(r.Context()); err != nil {
			handlers.JSONError(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		fmt.Fprintln(w, "ready")
	})
	r.Handle("/metrics", promhttp.Handler())

	// Public auth routes, rate limited against credential stuffing.
	authLimiter := middleware.AuthRateLimiter()
	r.Group(func(r chi.Router) {
		r.Use(authLimiter.Middleware)
		r.Use(middleware.MaxBytes(middleware.DefaultMaxBodyBytes))
		r.Post("/register", authHandler.Register)
		r.Post("/token", authHandler.Token)
	})

	// Protected routes.
	uploadLimiter := middleware.UploadRateLimiter()
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(authSvc))
		r.Get("/users/me", authHandler.Me)
		r.With(uploadLimiter.Middleware, middleware.MaxBytes(cfg.MaxUploadBytes)).
			Post("/upload", uploadHandler.Upload)
		r.Get("/history", historyHandler.List)
		r.Delete("/history/{id}", historyHandler.Delete)
	})

	return r
}
