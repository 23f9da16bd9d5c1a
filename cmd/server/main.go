package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stwalsh4118/randwise/api/internal/config"
	"github.com/stwalsh4118/randwise/api/internal/content"
	"github.com/stwalsh4118/randwise/api/internal/database"
	apierrors "github.com/stwalsh4118/randwise/api/internal/errors"
	"github.com/stwalsh4118/randwise/api/internal/forms"
	"github.com/stwalsh4118/randwise/api/internal/handlers"
	"github.com/stwalsh4118/randwise/api/internal/logger"
	"github.com/stwalsh4118/randwise/api/internal/middleware"
	"github.com/stwalsh4118/randwise/api/internal/repository"
	"github.com/stwalsh4118/randwise/api/internal/search"
	"github.com/stwalsh4118/randwise/api/internal/services"
)

const (
	shutdownTimeout = 30 * time.Second
	indexMaxAge     = time.Hour
)

func main() {
	// Load configuration from environment variables
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize structured logger
	log := logger.New(cfg.Server.Env)
	log.Info("Starting Randwise API", map[string]interface{}{
		"version":       handlers.APIVersion,
		"environment":   cfg.Server.Env,
		"port":          cfg.Server.Port,
		"state_backend": cfg.State.Backend,
	})

	forms.RegisterValidators()

	ctx := context.Background()
	var checkers []handlers.Checker

	// Calculator state store
	var stateRepo repository.StateRepository
	switch cfg.State.Backend {
	case config.StateBackendPostgres:
		db, err := database.Open(ctx, cfg.Database)
		if err != nil {
			log.Fatal("Failed to open state database", err, map[string]interface{}{
				"host": cfg.Database.Host,
				"port": cfg.Database.Port,
				"name": cfg.Database.Name,
			})
		}
		defer db.Close()

		log.Info("Database connection established", map[string]interface{}{
			"host":     cfg.Database.Host,
			"port":     cfg.Database.Port,
			"database": cfg.Database.Name,
			"pool_min": cfg.Database.PoolMin,
			"pool_max": cfg.Database.PoolMax,
		})
		stateRepo = repository.NewStateRepository(db)
		checkers = append(checkers, db)
	default:
		log.Warn("Using in-memory calculator state, state is lost on restart", map[string]interface{}{
			"idle_expiry": cfg.State.IdleExpiry.String(),
		})
		memoryRepo := repository.NewStateRepositoryMemory(cfg.State.IdleExpiry)
		defer memoryRepo.Stop()
		stateRepo = memoryRepo
	}

	// Search index cache
	var cache repository.Cache
	if cfg.Redis.Addr != "" {
		redisCache := repository.NewRedisCache(cfg.Redis)
		defer func() {
			if err := redisCache.Close(); err != nil {
				log.Error("Failed to close redis client", err, nil)
			}
		}()

		pingCtx, cancel := context.WithTimeout(ctx, handlers.HealthCheckTimeout)
		if err := redisCache.Ping(pingCtx); err != nil {
			log.Warn("Redis not reachable at startup, search index will rebuild per request until it is", map[string]interface{}{
				"addr":  cfg.Redis.Addr,
				"error": err.Error(),
			})
		}
		cancel()

		cache = redisCache
		checkers = append(checkers, redisCache)
	} else {
		cache = repository.NewMemoryCache()
	}

	// Initialize service layer
	sources := []content.Source{
		content.NewBlogSource(os.DirFS(filepath.Join(cfg.Content.Dir, "blog"))),
		content.CalculatorSource{},
		content.DatasetSource{},
	}
	searchOpts := search.DefaultOptions()
	searchOpts.Threshold = cfg.Search.Threshold
	searchOpts.Limit = cfg.Search.Limit
	searchOpts.MinTokenLength = cfg.Search.MinTokenLength

	calculatorService := services.NewCalculatorService(log, time.Now)
	stateService := services.NewStateService(stateRepo, calculatorService, log)
	searchService := services.NewSearchService(sources, cache, cfg.Search.CacheTTL, searchOpts, log)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(cfg.Server.Env, checkers...)
	calculatorHandler := handlers.NewCalculatorHandler(calculatorService)
	stateHandler := handlers.NewStateHandler(stateService)
	referenceHandler := handlers.NewReferenceHandler()
	searchHandler := handlers.NewSearchHandler(searchService)

	limiter := middleware.NewRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window)
	defer limiter.Stop()

	// Setup Gin router
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// The rate limiter keys on the client IP; forwarding headers are only
	// believed from configured proxies.
	if err := router.SetTrustedProxies(cfg.Server.TrustedProxies); err != nil {
		log.Fatal("Invalid TRUSTED_PROXIES", err, map[string]interface{}{
			"trusted_proxies": cfg.Server.TrustedProxies,
		})
	}

	// Add middleware in order: RequestID -> Logger -> Recovery -> CORS
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))
	router.Use(middleware.Recovery(log))
	router.Use(middleware.CORS(cfg.CORS.Origins))

	// Register health check routes
	router.GET("/health", healthHandler.Health)
	router.GET("/health/ready", healthHandler.Ready)
	router.GET("/api/v1/info", healthHandler.Info)

	// Register API v1 routes
	v1 := router.Group("/api/v1", middleware.RateLimit(limiter, apierrors.TooManyRequests))
	{
		v1.GET("/calculators", calculatorHandler.List)
		v1.GET("/calculators/:name", calculatorHandler.Calculate)

		state := v1.Group("/calculators/:name/state", middleware.Session())
		{
			state.GET("", stateHandler.Get)
			state.PUT("", stateHandler.Put)
			state.DELETE("", stateHandler.Delete)
		}

		v1.GET("/tax-years", referenceHandler.TaxYears)
		v1.GET("/data", referenceHandler.Datasets)
		v1.GET("/data/:slug", referenceHandler.Dataset)

		v1.GET("/search/index", middleware.CacheControl(indexMaxAge, indexMaxAge), searchHandler.Index)
		v1.GET("/search", searchHandler.Search)
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server listening", map[string]interface{}{
			"port": cfg.Server.Port,
			"addr": srv.Addr,
		})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start", err, nil)
		}
	}()

	// Wait for interrupt signal (SIGINT or SIGTERM)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	// Graceful shutdown
	log.Info("Shutting down server...", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", err, map[string]interface{}{
			"timeout": shutdownTimeout.String(),
		})
	}

	log.Info("Server exited", nil)
}
