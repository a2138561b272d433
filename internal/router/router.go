// Package router sets up all HTTP routes and middleware chains for the
// blog API. Reads are public; writes sit behind RequireAuth, and the
// credential endpoints are rate limited per client IP.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"inkpress/internal/handlers"
	"inkpress/internal/middleware"
)

// Handlers bundles the handler groups mounted under /api.
type Handlers struct {
	Posts      *handlers.Posts
	Categories *handlers.Categories
	Auth       *handlers.Auth
	Upload     *handlers.Upload
}

// Options configures the cross-cutting parts of the router.
type Options struct {
	CORSOrigins []string

	// HSTS adds Strict-Transport-Security to every response.
	HSTS bool

	// AuthLimiter throttles register and login. Nil disables throttling.
	AuthLimiter *middleware.RateLimiter

	// UploadDir, when set, is served read-only at UploadURLPrefix.
	UploadDir       string
	UploadURLPrefix string
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(auth middleware.Authenticator, h Handlers, opts Options) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders(opts.HSTS))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	// Health check, no auth.
	r.Get("/health", healthHandler)

	if opts.UploadDir != "" && opts.UploadURLPrefix != "" {
		prefix := opts.UploadURLPrefix + "/"
		r.Handle(prefix+"*", http.StripPrefix(prefix, noDirListing(http.FileServer(http.Dir(opts.UploadDir)))))
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.LoadIdentity(auth))

		r.Get("/health", healthHandler)

		// Public reads.
		r.Get("/posts", h.Posts.List)
		r.Get("/posts/{id}", h.Posts.Get)
		r.Get("/categories", h.Categories.List)

		// Credentials, rate limited.
		r.Group(func(r chi.Router) {
			if opts.AuthLimiter != nil {
				r.Use(opts.AuthLimiter.Middleware)
			}
			r.Post("/auth/register", h.Auth.Register)
			r.Post("/auth/login", h.Auth.Login)
		})

		// Authenticated writes. Ownership is checked by the post service.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)

			r.Post("/posts", h.Posts.Create)
			r.Put("/posts/{id}", h.Posts.Update)
			r.Delete("/posts/{id}", h.Posts.Delete)
			r.Post("/posts/{id}/comments", h.Posts.AddComment)

			r.Post("/categories", h.Categories.Create)

			r.Post("/auth/logout", h.Auth.Logout)
			r.Get("/auth/me", h.Auth.Me)

			r.Post("/upload", h.Upload.Image)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, `{"message":"Route not found"}`)
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, `{"status":"ok"}`)
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(body))
}

// noDirListing hides directory indexes of the upload tree.
func noDirListing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || r.URL.Path[len(r.URL.Path)-1] == '/' {
			http.NotFound(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}
