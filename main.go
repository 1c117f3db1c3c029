package main

import (
	"context"
	"encoding/base64"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
	"google.golang.org/api/option"

	"luckyDrawAPI/handlers"
	"luckyDrawAPI/internal/config"
	"luckyDrawAPI/internal/store"
	"luckyDrawAPI/middleware"
	"luckyDrawAPI/services"
)

var (
	cfg                *config.Config
	dbPool             *pgxpool.Pool
	claimStore         store.Store
	claimService       *services.ClaimService
	leaderboardService *services.LeaderboardService
)

func init() {
	var err error
	cfg, err = config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration: ", err)
	}

	if cfg.LogFormat == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	claimStore, err = newStore(ctx, cfg)
	if err != nil {
		log.Fatal("Failed to initialize store: ", err)
	}
	log.Printf("Store backend: %s", cfg.StoreBackend)

	claimService = services.NewClaimService(claimStore, cfg.Prizes)
	leaderboardService = services.NewLeaderboardService(claimStore, cfg.LeaderboardLimit)

	middleware.InitPrometheus(services.Collectors()...)
}

// newStore builds the configured backend. A backend missing its endpoint still starts:
// every request then fails with a configuration error.
func newStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.StoreBackend {
	case config.BackendMemory:
		return store.NewMemoryStore(), nil

	case config.BackendAppsScript:
		if cfg.AppsScriptURL == "" {
			log.Error("GOOGLE_APPS_SCRIPT_URL not configured")
			return store.Unconfigured("GOOGLE_APPS_SCRIPT_URL not configured"), nil
		}
		return store.NewAppsScriptStore(cfg.AppsScriptURL, &http.Client{}, cfg.Location), nil

	case config.BackendSheets:
		if cfg.SheetsSpreadsheetID == "" {
			log.Error("SHEETS_SPREADSHEET_ID not configured")
			return store.Unconfigured("SHEETS_SPREADSHEET_ID not configured"), nil
		}
		var opts []option.ClientOption
		switch {
		case cfg.SheetsCredentialsJSON != "":
			decoded, err := base64.StdEncoding.DecodeString(cfg.SheetsCredentialsJSON)
			if err != nil {
				return nil, err
			}
			opts = append(opts, option.WithCredentialsJSON(decoded))
			log.Println("Sheets: using credentials from SHEETS_CREDENTIALS_JSON")
		case cfg.SheetsCredentialsFile != "":
			opts = append(opts, option.WithCredentialsFile(cfg.SheetsCredentialsFile))
			log.Printf("Sheets: using credentials file %s", cfg.SheetsCredentialsFile)
		default:
			log.Println("Sheets: using application default credentials")
		}
		return store.NewSheetsStore(ctx, cfg.SheetsSpreadsheetID, cfg.SheetsSheetName, cfg.Location, opts...)

	case config.BackendPostgres:
		if cfg.DatabaseURL == "" {
			log.Error("DATABASE_URL not configured")
			return store.Unconfigured("DATABASE_URL not configured"), nil
		}

		poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		poolConfig.MaxConns = 10
		poolConfig.MinConns = 1
		poolConfig.MaxConnLifetime = time.Hour
		poolConfig.MaxConnIdleTime = 30 * time.Minute
		poolConfig.HealthCheckPeriod = time.Minute

		dbPool, err = pgxpool.NewWithConfig(ctx, poolConfig)
		if err != nil {
			return nil, err
		}
		if err := dbPool.Ping(ctx); err != nil {
			return nil, err
		}
		log.Println("Successfully connected to Postgres")

		pg := store.NewPostgresStore(dbPool)
		if err := pg.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		return pg, nil
	}

	return store.Unconfigured("unknown backend " + cfg.StoreBackend), nil
}

func main() {
	defer func() {
		if dbPool != nil {
			log.Println("Closing database connection pool...")
			dbPool.Close()
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, cfg.TrustedProxies...)
	go rateLimiter.CleanupVisitors(ctx, time.Minute, 3*time.Minute)

	router := handlers.NewRouter(handlers.RouterConfig{
		Draw:           handlers.NewDrawHandler(claimService, cfg.Prizes, cfg.Location, cfg.RequestTimeout),
		Leaderboard:    handlers.NewLeaderboardHandler(leaderboardService, cfg.Location, cfg.RequestTimeout),
		Health:         handlers.NewHealthHandler(claimStore, "lucky-draw-api"),
		RateLimiter:    rateLimiter,
		MetricsUser:    cfg.MetricsUser,
		MetricsPass:    cfg.MetricsPass,
		AllowedOrigins: cfg.AllowedOrigins,
		StaticDir:      cfg.StaticDir,
	})

	server := http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Starting server on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Error starting server: ", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server shutdown complete")
}
