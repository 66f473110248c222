// Package bootstrap wires configuration, database, repositories, services
// and the ops router into runnable units shared by daemon and one-shot mode.
package bootstrap

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	appControllers "github.com/yigit/canvasmirror/internal/app/controllers"
	appMigrations "github.com/yigit/canvasmirror/internal/app/migrations"
	appRepos "github.com/yigit/canvasmirror/internal/app/repositories"
	appRoutes "github.com/yigit/canvasmirror/internal/app/routes"
	appServices "github.com/yigit/canvasmirror/internal/app/services"
	"github.com/yigit/canvasmirror/internal/canvas"
	"github.com/yigit/canvasmirror/internal/config"
	"github.com/yigit/canvasmirror/internal/db"
	"github.com/yigit/canvasmirror/internal/pkg/helpers"
	"github.com/yigit/canvasmirror/internal/pkg/logger"
	"github.com/yigit/canvasmirror/internal/pkg/notify"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	SyncService      appServices.SyncService // Interface type
	CanvasClient     *canvas.Client
	Notifier         notify.Notifier
	StatusController *appControllers.StatusController
	Repos            *appRepos.Repositories
	Logger           zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := config.GetEnv("CONFIG_PATH", filepath.Join("configs", "config.yaml"))
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.LogLevel(strings.ToLower(cfg.Logging.Level))
	prettyLog := strings.ToLower(cfg.Logging.Format) == "text"

	logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: prettyLog,
	})

	lgr := log.Logger
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection and runs migrations.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := database.Ping(ctx); err != nil {
		lgr.Error().Err(err).Msg("Failed to ping database")
		database.Close()
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	lgr.Info().Msg("Running database migrations...")
	migrator := appMigrations.NewMigrator(database)

	migrationsDir := config.GetEnv("MIGRATIONS_DIR", "migrations")
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		lgr.Error().Str("path", migrationsDir).Msg("Migrations directory not found")
		database.Close()
		return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	if err := migrator.MigrateFromDirectory(context.Background(), migrationsDir); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		database.Close()
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}

	lgr.Info().Msg("Database migrations successfully applied.")
	return database, nil
}

// BuildDependencies initializes the canvas client, repositories, services
// and controllers.
func BuildDependencies(cfg *config.Config, database *db.PostgresDB, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}

	deps.Repos = appRepos.NewRepositories(database.Pool)

	deps.CanvasClient = canvas.NewClient(canvas.Config{
		BaseURL:                cfg.Canvas.BaseURL,
		Token:                  cfg.Canvas.APIToken,
		PerPage:                cfg.Canvas.PerPage,
		Timeout:                helpers.ParseDuration(cfg.Canvas.RequestTimeout, 30*time.Second),
		MaxAttempts:            cfg.Canvas.MaxAttempts,
		RetryBaseDelay:         helpers.ParseDuration(cfg.Canvas.RetryBaseDelay, time.Second),
		AnnouncementWindowDays: cfg.Canvas.AnnouncementWindowDays,
		FetchConcurrency:       cfg.Sync.FetchConcurrency,
	})

	deps.Notifier = notify.NewSMTPNotifier(notify.SMTPConfig{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
		To:       cfg.SMTP.To,
		UseTLS:   cfg.SMTP.UseTLS,
	}, lgr)

	deps.SyncService = appServices.NewSyncService(
		deps.CanvasClient,
		appServices.StoresFromRepositories(deps.Repos),
		cfg.Sync.PersistConcurrency,
	)

	deps.StatusController = appControllers.NewStatusController(database, deps.Repos.SyncRunRepository)

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if strings.ToLower(cfg.Server.Mode) == "debug" {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	} else {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	}

	router := gin.New()

	appRoutes.SetupRouter(router, deps.StatusController)

	return router
}
