package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"chdash/adapters/chart"
	"chdash/adapters/excel"
	"chdash/adapters/postgres"
	"chdash/adapters/remote"
	"chdash/internal"
	"chdash/internal/auth"
	"chdash/internal/config"
	"chdash/internal/dashboard"
	"chdash/internal/dataset"
	"chdash/internal/errors"
	"chdash/internal/migration"
	"chdash/ports"
	"chdash/ui"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
)

// initDatabase connects to Postgres and applies the schema
func initDatabase(ctx context.Context, appConfig *config.Config) (*sqlx.DB, error) {
	db, err := postgres.ConnectPostgres(ctx, appConfig.Database.URL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to database")
	}

	migrator := migration.NewRunner()
	if err := migrator.Run(ctx, db); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "database migration failed")
	}
	return db, nil
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	internal.DefaultLogger.SetLevel(internal.ParseLogLevel(appConfig.LogLevel))
	logger := internal.DefaultLogger.With("Main")
	gin.SetMode(appConfig.Server.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pgSource := postgres.NewSource(postgres.ConnectPostgres)
	defer pgSource.Close()

	loader := dataset.NewLoader(appConfig.Data.CacheTTL,
		remote.NewCSVReader(appConfig.Data.FetchTimeout),
		excel.NewFileSource(),
		pgSource,
	).WithFetchTimeout(appConfig.Data.FetchTimeout)

	var views ports.ViewRecorder
	if appConfig.Database.Enabled() {
		db, err := initDatabase(ctx, appConfig)
		if err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		defer db.Close()
		views = postgres.NewViewRepository(db)
		logger.Info("Recording dashboard views to Postgres")
	}

	// A failed warm-up is not fatal: the first request retries the load.
	warmCtx, cancel := context.WithTimeout(ctx, appConfig.Data.FetchTimeout)
	if err := loader.Preload(warmCtx, appConfig.Data.SourceURL); err != nil {
		logger.Warn("Dataset preload failed: %v", err)
	}
	cancel()

	svc := dashboard.NewService(loader, appConfig.Data.SourceURL, chart.NewDefaultRenderer(), views)
	sessions := auth.NewSessions(auth.NewPassphraseAuthenticator(appConfig.Auth.Passphrase), appConfig.Auth.SessionTTL)

	server, err := ui.NewServer(svc, sessions)
	if err != nil {
		log.Fatalf("Failed to initialize server: %v", err)
	}

	servers := []*http.Server{{
		Addr:              ":" + appConfig.Server.Port,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}}
	if appConfig.Admin.Enabled {
		servers = append(servers, &http.Server{
			Addr:              ":" + appConfig.Admin.Port,
			Handler:           ui.NewAdmin(loader, appConfig.Data.SourceURL).Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		})
	}

	for _, srv := range servers {
		go func() {
			logger.Info("Listening on %s", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("Server on %s failed: %v", srv.Addr, err)
				stop()
			}
		}()
	}

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, srv := range servers {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Shutdown of %s: %v", srv.Addr, err)
		}
	}
}
