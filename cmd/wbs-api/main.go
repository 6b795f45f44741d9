package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"wbs/internal/api"
	"wbs/internal/auth"
	"wbs/internal/config"
	"wbs/internal/credential"
	"wbs/internal/jobs"
	"wbs/internal/model"
	"wbs/internal/notify"
	"wbs/internal/pipeline"
	"wbs/internal/pubsub"
	"wbs/internal/schema"
	"wbs/internal/store"
	"wbs/internal/ws"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	// Check for migrate command
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		if err := runMigrations(); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
		os.Exit(0)
	}

	// Check for goose migrate command
	if len(os.Args) > 1 && os.Args[1] == "goose-migrate" {
		if err := runGooseMigrations(); err != nil {
			log.Fatalf("Goose migration failed: %v", err)
		}
		os.Exit(0)
	}

	if len(os.Args) > 1 && os.Args[1] != "serve" {
		log.Fatalf("Unknown command: %s (use 'serve', 'migrate' or 'goose-migrate')", os.Args[1])
	}

	// Initialize logger
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	cfg := config.Load()

	// Storage backend
	var st store.Store
	switch cfg.DBMode {
	case "postgres":
		pg, err := store.NewPostgres(cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("Failed to connect to database", zap.Error(err))
		}
		st = pg
	default:
		logger.Info("Using in-memory storage, reports will not survive restarts")
		st = store.NewMemory()
	}
	defer st.Close()

	// Redis is optional: without it the bus stays in-process and the SLA
	// watchdog is unavailable.
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			logger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
	}

	// Pub/sub bus
	bus := pubsub.New(rdb, logger)

	// Notification transports
	var emailSender, waSender notify.Sender
	if cfg.Email.Enabled {
		emailSender = notify.NewEmailSender(cfg.Email.SMTPHost, cfg.Email.SMTPPort,
			cfg.Email.SMTPUser, cfg.Email.SMTPPass, cfg.Email.From)
	}
	if cfg.WAHA.Enabled {
		waSender = notify.NewWhatsAppSender(cfg.WAHA.APIURL, cfg.WAHA.Session, cfg.WAHA.APIKey)
	}
	notifier := notify.New(emailSender, waSender, logger)

	ensureAdminUser(st, logger)

	// Core pipeline
	creds := credential.NewManager(st)
	pipe := pipeline.New(st, creds, notifier, bus, logger)

	// Background jobs need Redis
	if rdb != nil {
		jobServer, jobClient := jobs.NewJobServer(cfg.RedisAddr, st, notifier, bus, logger)
		go func() {
			if err := jobServer.Start(); err != nil {
				logger.Fatal("Job server failed", zap.Error(err))
			}
		}()
		defer jobServer.Stop()
		pipe.SetJobClient(pipeline.NewAsynqJobClient(jobClient))
	}

	// WebSocket hub
	hub := ws.NewHub(logger)
	go hub.Run()
	bus.SetWSHub(hub)

	jwtConfig := auth.NewJWTConfig(cfg.JWTSecret)
	schemaComp := schema.NewCompilerWithCache(64)

	// HTTP router
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	// Timeout middleware - skip for WebSocket upgrades
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if req.Header.Get("Upgrade") == "websocket" {
				next.ServeHTTP(w, req)
				return
			}
			middleware.Timeout(60 * time.Second)(next).ServeHTTP(w, req)
		})
	})

	r.Mount("/", api.Routes(api.Dependencies{
		Pipeline: pipe,
		Store:    st,
		Auth:     jwtConfig,
		Schema:   schemaComp,
		Hub:      hub,
		Notifier: notifier,
		Log:      logger,
	}))

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: r,
	}

	logger.Info("Starting server",
		zap.String("addr", cfg.Addr),
		zap.String("db_mode", cfg.DBMode))
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server stopped")
}

// ensureAdminUser seeds the default admin account on first start. The
// password comes from ADMIN_PASSWORD and must be changed in production.
func ensureAdminUser(st store.Store, logger *zap.Logger) {
	ctx := context.Background()
	if _, err := st.GetUserByUsername(ctx, "admin"); err == nil {
		return
	}

	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "admin123"
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		logger.Warn("Failed to hash admin password", zap.Error(err))
		return
	}

	u := &model.User{
		Username:     "admin",
		PasswordHash: hash,
		FullName:     "Administrator",
		Role:         "admin",
		Unit:         "Satuan Pengawasan Internal (SPI)",
		IsActive:     true,
	}
	if err := st.CreateUser(ctx, u); err != nil {
		logger.Warn("Failed to seed admin user", zap.Error(err))
		return
	}
	logger.Info("Seeded default admin account, change ADMIN_PASSWORD before production use")
}
