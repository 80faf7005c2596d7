package main

import (
	"context"
	"database/sql"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"inkwell/internal/config"
	"inkwell/internal/handler"
	"inkwell/internal/middleware"
	"inkwell/internal/migrations"
	"inkwell/internal/notify"
	"inkwell/internal/repository/postgres"
	postgresVer "inkwell/internal/repository/postgres/versioning"
	serviceVer "inkwell/internal/service/versioning"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/pressly/goose/v3"
	"github.com/rs/cors"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// Setup structured logging
	logLevel := slog.LevelInfo
	if cfg.Environment == "dev" || cfg.Debug {
		logLevel = slog.LevelDebug
	}

	var logOut io.Writer = os.Stdout
	if cfg.LogDir != "" {
		logFile, err := config.SetupLogFile(cfg.LogDir, 10)
		if err != nil {
			log.Fatalf("Failed to create log file: %v", err)
		}
		defer logFile.Close()
		logOut = io.MultiWriter(os.Stdout, logFile)
	}

	logger := slog.New(slog.NewJSONHandler(logOut, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"lock_ttl", cfg.LockTTL.String(),
	)

	ctx := context.Background()

	// Run migrations over database/sql; the pgx pool below serves requests
	if err := runMigrations(ctx, cfg.DatabaseURL); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	logger.Info("migrations applied")

	// Create pgx connection pool
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}
	defer pool.Close()

	logger.Info("database connected",
		"max_conns", 25,
		"min_conns", 5,
	)

	// Create repositories
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Logger: logger,
	}
	docRepo := postgresVer.NewDocumentRepository(repoConfig)
	versionRepo := postgresVer.NewVersionRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool, logger)

	// Realtime event hub (best-effort fan-out to websocket subscribers)
	allowedOrigins := strings.Split(cfg.CORSOrigins, ",")
	hub := notify.NewHub(originChecker(allowedOrigins), logger)

	// Create services
	projector := serviceVer.NewProjector()
	docService := serviceVer.NewDocumentService(docRepo, logger)
	versionService := serviceVer.NewVersionService(docRepo, versionRepo, txManager, projector, hub, logger)
	lockManager := serviceVer.NewLockManager(docRepo, txManager, cfg.LockTTL, hub, logger)
	milestoneService := serviceVer.NewMilestoneService(docRepo, versionRepo, logger)
	restoreService := serviceVer.NewRestoreService(versionRepo, versionService, logger)

	// Create handlers
	docHandler := handler.NewDocumentHandler(docService, logger)
	versionHandler := handler.NewVersionHandler(versionService, milestoneService, restoreService, logger)
	lockHandler := handler.NewLockHandler(lockManager, logger)
	eventsHandler := handler.NewEventsHandler(hub, docService, logger)

	logger.Info("services initialized")

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", docHandler.HealthCheck)

	// Document routes
	mux.HandleFunc("POST /api/documents", docHandler.CreateDocument)
	mux.HandleFunc("GET /api/documents", docHandler.ListDocuments)
	mux.HandleFunc("GET /api/documents/{id}", docHandler.GetDocument)
	mux.HandleFunc("DELETE /api/documents/{id}", docHandler.DeleteDocument)

	// Version history routes
	mux.HandleFunc("POST /api/documents/{id}/versions", versionHandler.CreateVersion)
	mux.HandleFunc("GET /api/documents/{id}/versions", versionHandler.ListVersions)
	mux.HandleFunc("GET /api/versions/{id}", versionHandler.GetVersion)
	mux.HandleFunc("GET /api/documents/{id}/diff", versionHandler.CompareVersions)
	mux.HandleFunc("POST /api/documents/{id}/versions/{versionId}/restore", versionHandler.RestoreVersion)

	// Milestone routes
	mux.HandleFunc("PUT /api/versions/{id}/milestone", versionHandler.MarkMilestone)
	mux.HandleFunc("DELETE /api/versions/{id}/milestone", versionHandler.UnmarkMilestone)
	mux.HandleFunc("GET /api/documents/{id}/milestones", versionHandler.ListMilestones)

	// Edit lock routes
	mux.HandleFunc("POST /api/documents/{id}/lock", lockHandler.AcquireLock)
	mux.HandleFunc("DELETE /api/documents/{id}/lock", lockHandler.ReleaseLock)
	mux.HandleFunc("POST /api/documents/{id}/force-unlock", lockHandler.ForceUnlock)

	// Realtime event subscription (websocket)
	mux.HandleFunc("GET /api/documents/{id}/events", eventsHandler.Subscribe)

	// Build middleware chain
	var root http.Handler = mux

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → Recovery → Identity → Routes
	root = middleware.Identity()(root)
	root = middleware.Recovery(logger)(root)

	// CORS - Must be outermost to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "X-User-Id"},
		AllowCredentials: true,
	})
	root = corsHandler.Handler(root)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      root,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // Disabled to allow long-lived websocket subscriptions
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// runMigrations applies the embedded goose migrations
func runMigrations(ctx context.Context, databaseURL string) error {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}

	return goose.UpContext(ctx, db, ".")
}

// originChecker allows websocket upgrades only from configured origins.
// Requests without an Origin header (non-browser clients) are allowed.
func originChecker(allowed []string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, a := range allowed {
			if a == "*" || strings.EqualFold(strings.TrimSpace(a), origin) {
				return true
			}
		}
		return false
	}
}
