package main

import (
	"context"
	"os"

	"github.com/rs/zerolog"

	"github.com/yigit/canvasmirror/internal/bootstrap"
	"github.com/yigit/canvasmirror/internal/config"
	"github.com/yigit/canvasmirror/internal/pkg/logger"
	"github.com/yigit/canvasmirror/internal/server"
)

func main() {
	cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger()
	if err != nil {
		// Use the default logger setup by the logger package's init
		logger.Error().Err(err).Msg("Failed to initialize application")
		os.Exit(1)
	}

	// SYNC_INTERVAL > 0 runs the daemon; otherwise a single pass.
	if cfg.SyncInterval() > 0 {
		srv, err := server.NewServer(cfg, lgr)
		if err != nil {
			lgr.Error().Err(err).Msg("Failed to initialize server")
			os.Exit(1)
		}

		if err := srv.Run(); err != nil {
			lgr.Error().Err(err).Msg("Server execution failed or shutdown encountered errors")
			os.Exit(1)
		}

		lgr.Info().Msg("Application finished gracefully.")
		os.Exit(0)
	}

	os.Exit(runOnce(cfg, lgr))
}

// runOnce executes a single sync pass. The exit code is 1 only when the pass
// could not run at all; a pass that stored part of the snapshot still exits 0.
func runOnce(cfg *config.Config, lgr zerolog.Logger) int {
	database, err := bootstrap.SetupDatabase(cfg, lgr)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to setup database")
		return 1
	}
	defer database.Close()

	deps, err := bootstrap.BuildDependencies(cfg, database, lgr)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to setup dependencies")
		return 1
	}

	report, err := deps.SyncService.Run(context.Background())
	if err != nil {
		lgr.Error().Err(err).Msg("Sync pass failed")
		if notifyErr := deps.Notifier.NotifyFailure(report, err); notifyErr != nil {
			lgr.Error().Err(notifyErr).Msg("Failed to send failure notification")
		}
		return 1
	}

	if report.HasErrors() {
		lgr.Warn().Int("failed", len(report.Errors)).Msg("Sync pass finished with record-level errors")
		if notifyErr := deps.Notifier.NotifyFailure(report, nil); notifyErr != nil {
			lgr.Error().Err(notifyErr).Msg("Failed to send failure notification")
		}
	}
	return 0
}
