package main

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/bookshelf-app/bookshelf/internal/auth"
	"github.com/bookshelf-app/bookshelf/internal/config"
	"github.com/bookshelf-app/bookshelf/internal/handlers"
	"github.com/bookshelf-app/bookshelf/internal/middleware"
	"github.com/bookshelf-app/bookshelf/internal/repo"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// newRouter wires repositories, the token service, and all routes. Split out
// from main so tests can build the full API against a mock database.
func newRouter(database *sql.DB, cfg config.Config) http.Handler {
	userRepo := repo.NewUserRepo(database)
	bookRepo := repo.NewBookRepo(database)
	reviewRepo := repo.NewReviewRepo(database)
	commentRepo := repo.NewCommentRepo(database)

	tokens := auth.NewService(
		[]byte(cfg.JWTSecret),
		time.Duration(cfg.JWTExpireHours)*time.Hour,
	)

	authHandler := &handlers.AuthHandler{Users: userRepo, Tokens: tokens}
	bookHandler := &handlers.BookHandler{Books: bookRepo}
	reviewHandler := &handlers.ReviewHandler{Reviews: reviewRepo, Books: bookRepo}
	commentHandler := &handlers.CommentHandler{Comments: commentRepo, Reviews: reviewRepo}
	userHandler := &handlers.UserHandler{Users: userRepo}

	requireUser := middleware.RequireUser(tokens, userRepo)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.RequestLog)
	r.Use(middleware.Recoverer)
	r.Use(middleware.SecurityHeaders(cfg.TLSCertFile != ""))
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))
	r.Use(middleware.Prometheus)
	r.Use(middleware.MaxBytes(middleware.DefaultMaxBodyBytes))

	// Ops endpoints
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Get("/ready", func(w http.ResponseWriter, r *http.Request) {
		if err := database.PingContext(r.Context()); err != nil {
			handlers.JSONError(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		// Auth: register/login are rate limited per IP; /me is gated.
		r.Route("/auth", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(middleware.AuthRateLimiter().Middleware)
				r.Post("/register", authHandler.Register)
				r.Post("/login", authHandler.Login)
			})
			r.Group(func(r chi.Router) {
				r.Use(requireUser)
				r.Get("/me", authHandler.Me)
			})
		})

		r.Route("/books", func(r chi.Router) {
			r.Get("/", bookHandler.List)
			r.Get("/{id}", bookHandler.Get)
			r.Get("/{id}/reviews", reviewHandler.ListByBook)

			r.Group(func(r chi.Router) {
				r.Use(requireUser)
				r.Post("/", bookHandler.Create)
				r.Put("/{id}", bookHandler.Update)
				r.Delete("/{id}", bookHandler.Delete)
				r.Post("/{id}/reviews", reviewHandler.Create)
			})
		})

		r.Route("/reviews", func(r chi.Router) {
			r.Get("/{id}", reviewHandler.Get)
			r.Get("/{id}/comments", commentHandler.ListByReview)

			r.Group(func(r chi.Router) {
				r.Use(requireUser)
				r.Put("/{id}", reviewHandler.Update)
				r.Delete("/{id}", reviewHandler.Delete)
				r.Post("/{id}/like", reviewHandler.Like)
				r.Delete("/{id}/like", reviewHandler.Unlike)
				r.Post("/{id}/comments", commentHandler.Create)
			})
		})

		r.Route("/comments", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(requireUser)
				r.Delete("/{id}", commentHandler.Delete)
			})
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/{id}", userHandler.GetProfile)

			r.Group(func(r chi.Router) {
				r.Use(requireUser)
				r.Put("/me", userHandler.UpdateMe)
			})
		})
	})

	return r
}
