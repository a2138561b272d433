// Package main is the entry point for the inkpress blog API server.
// It loads configuration, connects to services, sets up routing, and starts
// the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"inkpress/internal/cache"
	"inkpress/internal/config"
	"inkpress/internal/database"
	"inkpress/internal/handlers"
	"inkpress/internal/middleware"
	"inkpress/internal/router"
	"inkpress/internal/seed"
	"inkpress/internal/service"
	"inkpress/internal/session"
	"inkpress/internal/storage"
	"inkpress/internal/store"
	"inkpress/internal/store/memory"
	"inkpress/internal/token"
)

func main() {
	// A missing .env file is normal outside development.
	_ = godotenv.Load()

	// Load configuration from environment variables.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Structured logger: text in development, JSON elsewhere.
	var handler slog.Handler
	if cfg.IsDev() {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	} else {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	slog.SetDefault(slog.New(handler))

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
		"store", cfg.StoreBackend,
	)

	// Persistence: PostgreSQL, or the in-memory store for demos and tests.
	repos, db := openStore(context.Background(), cfg)
	if db != nil {
		defer db.Close()
	}

	// Connect to Valkey (Redis-compatible cache + session registry).
	// Development falls back to in-process sessions without caching.
	var (
		sessions     service.SessionRegistry
		respCache    *cache.ResponseCache
		valkeyClient *redis.Client
	)
	valkeyClient, err = cache.ConnectValkey(context.Background(), cache.ValkeyOptions{
		Addr:     cfg.ValkeyAddr(),
		Password: cfg.ValkeyPassword,
		DB:       cfg.ValkeyDB,
	})
	switch {
	case err == nil:
		defer valkeyClient.Close()
		sessions = session.NewStore(valkeyClient, cfg.TokenTTL)
		respCache = cache.NewResponseCache(valkeyClient, cfg.CacheTTL)
	case cfg.IsDev():
		slog.Warn("valkey unavailable, using in-memory sessions and no response cache", "error", err)
		sessions = session.NewMemoryStore(cfg.TokenTTL)
	default:
		slog.Error("failed to connect to valkey", "error", err)
		os.Exit(1)
	}

	issuer, err := token.NewIssuer(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		slog.Error("failed to initialize token issuer", "error", err)
		os.Exit(1)
	}

	accounts := service.NewAccounts(repos.Users, sessions, issuer)
	accounts.SetCost(cfg.BcryptCost)

	// Seed development data (no-op if data already exists).
	if cfg.IsDev() || cfg.Seed {
		if err := seed.Run(context.Background(), repos, accounts); err != nil {
			slog.Error("failed to seed database", "error", err)
			os.Exit(1)
		}
	}

	// Uploads go to S3-compatible object storage when configured,
	// otherwise to local disk served by the router.
	opts := router.Options{CORSOrigins: cfg.CORSOrigins, HSTS: !cfg.IsDev()}
	var uploader handlers.Uploader
	if cfg.S3Enabled() {
		s3, err := storage.NewS3(cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, cfg.S3PublicURL)
		if err != nil {
			slog.Error("failed to initialize S3 storage", "error", err)
			os.Exit(1)
		}
		if s3 == nil {
			slog.Error("S3_BUCKET is set but S3_ENDPOINT, S3_ACCESS_KEY or S3_SECRET_KEY is missing")
			os.Exit(1)
		}
		uploader = s3
		slog.Info("s3 storage connected", "endpoint", cfg.S3Endpoint, "bucket", cfg.S3Bucket)
	} else {
		local, err := storage.NewLocal(cfg.UploadDir, cfg.UploadURLPrefix)
		if err != nil {
			slog.Error("failed to initialize upload directory", "error", err)
			os.Exit(1)
		}
		uploader = local
		opts.UploadDir = local.Dir()
		opts.UploadURLPrefix = cfg.UploadURLPrefix
		slog.Info("storing uploads on local disk", "dir", local.Dir())
	}

	rl := middleware.NewRateLimiter(cfg.RateLimitAuth, time.Minute)
	defer rl.Stop()
	opts.AuthLimiter = rl

	h := router.Handlers{
		Posts:      handlers.NewPosts(service.NewPosts(repos.Posts, repos.Categories), respCache),
		Categories: handlers.NewCategories(service.NewCategories(repos.Categories), respCache),
		Auth:       handlers.NewAuth(accounts),
		Upload:     handlers.NewUpload(uploader),
	}

	// Set up the Chi router with all middleware and routes.
	r := router.New(accounts, h, opts)

	// Create the HTTP server with sensible timeouts. Uploads of up to 10 MB
	// need a longer read timeout than plain JSON requests.
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	// Give active requests up to 30 seconds to complete.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}

// openStore connects the configured persistence backend. The returned
// *sql.DB is nil for the memory backend.
func openStore(ctx context.Context, cfg *config.Config) (service.Repositories, *sql.DB) {
	if cfg.StoreBackend == config.BackendMemory {
		slog.Warn("using in-memory store, data is lost on restart")
		mem := memory.New()
		return service.Repositories{Users: mem.Users(), Categories: mem.Categories(), Posts: mem.Posts()}, nil
	}

	db, err := database.Connect(ctx, cfg.DSN(), database.PoolOptions{MaxOpen: cfg.DBMaxConns})
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	// Run pending migrations.
	if _, err := database.Migrate(ctx, db); err != nil {
		db.Close()
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	return service.Repositories{
		Users:      store.NewUserStore(db),
		Categories: store.NewCategoryStore(db),
		Posts:      store.NewPostStore(db),
	}, db
}
