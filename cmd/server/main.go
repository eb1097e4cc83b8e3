package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cashflow_tracker/internal/config"
	"cashflow_tracker/internal/handler"
	"cashflow_tracker/internal/log"
	"cashflow_tracker/internal/middleware"
	"cashflow_tracker/internal/repository"
	"cashflow_tracker/internal/service"
	"cashflow_tracker/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := log.New(log.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	log.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Database Connection ---
	dbPool, err := config.ConnectDB(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer dbPool.Close()

	if err := config.RunMigrations(dbPool); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	logger.Info("Migrations applied", log.FieldOperation, log.OpStartup)

	// --- Login rate limiter ---
	limiter, closeLimiter, err := newLoginLimiter(ctx, cfg.RateLimit, logger)
	if err != nil {
		return err
	}
	defer closeLimiter()

	// --- Utilities, repositories, services, handlers ---
	jwtUtil := utils.NewJWTUtil(cfg.JWT.Secret, cfg.JWT.ExpirationHours)

	userRepo := repository.NewUserRepository(dbPool)
	transactionRepo := repository.NewTransactionRepository(dbPool)
	categoryRepo := repository.NewCategoryRepository(dbPool)

	authService := service.NewAuthService(userRepo, jwtUtil, cfg.Database.QueryTimeout, logger)
	transactionService := service.NewTransactionService(transactionRepo, cfg.Database.QueryTimeout, logger)
	categoryService := service.NewCategoryService(categoryRepo)

	authHandler := handler.NewAuthHandler(authService)
	transactionHandler := handler.NewTransactionHandler(transactionService)
	categoryHandler := handler.NewCategoryHandler(categoryService)

	// --- Setup Gin Router ---
	gin.SetMode(cfg.Server.GinMode)
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestID(), log.RequestLogger(logger), middleware.CORS(cfg.CORSOrigins))

	jwtAuthMW := middleware.JWTAuthMiddleware(jwtUtil)
	loginMW := middleware.RateLimit(limiter, logger)

	apiGroup := router.Group("/api/v1")
	authHandler.RegisterAuthRoutes(apiGroup, loginMW, jwtAuthMW)
	transactionHandler.RegisterTransactionRoutes(apiGroup, jwtAuthMW)
	categoryHandler.RegisterCategoryRoutes(apiGroup, jwtAuthMW)

	router.GET("/health", healthHandler(dbPool))

	// --- Start Server ---
	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// --- Graceful Shutdown ---
	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	case <-ctx.Done():
	}
	logger.Info("Shutting down server", log.FieldOperation, log.OpShutdown)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	logger.Info("Server exiting")
	return nil
}

// newLoginLimiter returns a Redis-backed limiter when REDIS_URL is set,
// otherwise a process-local one.
func newLoginLimiter(ctx context.Context, cfg config.RateLimitConfig, logger *log.Logger) (middleware.Limiter, func(), error) {
	if cfg.RedisURL == "" {
		logger.Info("Using in-memory login rate limiter", "limit", cfg.Limit, "window", cfg.Window.String())
		return middleware.NewMemoryLimiter(cfg.Limit, cfg.Window), func() {}, nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("Redis not reachable at startup, limiter will fail open until it is", log.FieldError, err)
	}
	logger.Info("Using Redis login rate limiter", "limit", cfg.Limit, "window", cfg.Window.String())
	closeFn := func() { _ = client.Close() }
	return middleware.NewRedisLimiter(client, "cashflow:login:", cfg.Limit, cfg.Window), closeFn, nil
}

func healthHandler(dbPool *pgxpool.Pool) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := dbPool.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error", "db": "unhealthy"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": "healthy"})
	}
}
