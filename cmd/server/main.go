package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/phonolite/phonolite/internal/config"
	"github.com/phonolite/phonolite/internal/constants"
	"github.com/phonolite/phonolite/internal/handlers"
	"github.com/phonolite/phonolite/internal/httpclient"
	"github.com/phonolite/phonolite/internal/logger"
	"github.com/phonolite/phonolite/internal/provider"
	"github.com/phonolite/phonolite/internal/provider/local"
	"github.com/phonolite/phonolite/internal/provider/remote"
	"github.com/phonolite/phonolite/internal/repo"
)

func main() {
	cfg := config.Load()

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	// Initialize Logger
	appLogger := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})

	// Initialize repository DB (album structure oracle)
	db, err := repo.Open(cfg.RepoDBPath)
	if err != nil {
		appLogger.Error("Failed to open repository DB", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Build backends from config
	backendCfgs, err := cfg.LoadBackends()
	if err != nil {
		appLogger.Error("Failed to load backend table", "error", err)
		os.Exit(1)
	}
	backends, err := buildBackends(backendCfgs, db)
	if err != nil {
		appLogger.Error("Failed to initialize backends", "error", err)
		os.Exit(1)
	}

	// Initialize Provider Manager
	manager, err := provider.NewManager(backends, cfg.CacheCapacity, appLogger.WithComponent("provider"))
	if err != nil {
		appLogger.Error("Failed to initialize provider manager", "error", err)
		os.Exit(1)
	}

	// Initialize Router
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Routes
	h := handlers.NewHandler(manager, appLogger)
	h.RegisterRoutes(r)

	// Start Server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		log.Printf("Server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting")
}

// buildBackends instantiates every configured backend. Remote backends
// share one rate-limited HTTP client.
func buildBackends(cfgs []config.Backend, db *repo.DB) ([]provider.Backend, error) {
	client := httpclient.NewClient(nil, 0)
	ctx := context.Background()

	var backends []provider.Backend
	for _, c := range cfgs {
		var (
			p   provider.Provider
			err error
		)
		switch c.Kind {
		case config.KindLocal:
			p, err = local.New(c.Root)
		case config.KindStrict:
			layer := c.Layer
			if layer == 0 {
				layer = constants.DefaultStrictLayer
			}
			p, err = local.NewStrict(c.Root, layer, db)
		case config.KindDrive:
			p, err = remote.NewDrive(ctx, c.URL, c.Auth, client, remoteTimeout(c))
		case config.KindProxy:
			p = remote.NewProxy(c.URL, c.Auth, client, remoteTimeout(c))
		}
		if err != nil {
			return nil, err
		}
		backends = append(backends, provider.Backend{
			Name:     c.Name,
			Priority: c.Priority,
			Provider: p,
		})
	}
	return backends, nil
}

func remoteTimeout(c config.Backend) time.Duration {
	if c.TimeoutSeconds > 0 {
		return time.Duration(c.TimeoutSeconds) * time.Second
	}
	return constants.DefaultRemoteTimeout
}
