// Package server runs daemon mode: a periodic sync scheduler next to a
// small ops HTTP server, with coordinated graceful shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yigit/canvasmirror/internal/app/models"
	"github.com/yigit/canvasmirror/internal/bootstrap"
	"github.com/yigit/canvasmirror/internal/config"
	"github.com/yigit/canvasmirror/internal/db"
)

// Server holds the state for daemon mode.
type Server struct {
	config   *config.Config
	router   *gin.Engine
	database *db.PostgresDB
	deps     *bootstrap.Dependencies
	logger   zerolog.Logger
	http     *http.Server

	cancelScheduler context.CancelFunc
	schedulerDone   chan struct{}
}

// NewServer creates and initializes a new server instance by calling bootstrap functions.
func NewServer(cfg *config.Config, lgr zerolog.Logger) (*Server, error) {
	database, err := bootstrap.SetupDatabase(cfg, lgr)
	if err != nil {
		return nil, fmt.Errorf("failed to setup database: %w", err)
	}

	deps, err := bootstrap.BuildDependencies(cfg, database, lgr)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to setup dependencies: %w", err)
	}

	router := bootstrap.SetupRouter(cfg, deps, lgr)

	s := &Server{
		config:   cfg,
		router:   router,
		database: database,
		deps:     deps,
		logger:   lgr,
	}

	return s, nil
}

// Run starts the ops HTTP server and the sync scheduler, then blocks until
// an OS signal or a server error triggers shutdown.
func (s *Server) Run() error {
	if s.config.SyncInterval() <= 0 {
		return fmt.Errorf("daemon mode requires a positive sync interval, got %s", s.config.SyncInterval())
	}

	s.logger.Info().Str("port", s.config.Server.Port).Msg("Starting server...")

	s.http = &http.Server{
		Addr:         ":" + s.config.Server.Port,
		Handler:      s.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info().Str("addr", s.http.Addr).Msg("HTTP server listening")
		serverErrors <- s.http.ListenAndServe()
	}()

	schedulerCtx, cancel := context.WithCancel(context.Background())
	s.cancelScheduler = cancel
	s.schedulerDone = make(chan struct{})
	go func() {
		defer close(s.schedulerDone)
		s.runScheduler(schedulerCtx)
	}()

	osSignals := make(chan os.Signal, 1)
	signal.Notify(osSignals, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			s.Shutdown(context.Background())
			return fmt.Errorf("error starting server: %w", err)
		}
	case sig := <-osSignals:
		s.logger.Info().Str("signal", sig.String()).Msg("Received OS signal, initiating shutdown...")
	}

	return s.Shutdown(context.Background())
}

// runScheduler runs one sync pass immediately and then on every tick until
// the context is canceled.
func (s *Server) runScheduler(ctx context.Context) {
	interval := s.config.SyncInterval()
	s.logger.Info().Dur("interval", interval).Msg("Sync scheduler started")

	s.runSyncPass(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("Sync scheduler stopped")
			return
		case <-ticker.C:
			s.runSyncPass(ctx)
		}
	}
}

// runSyncPass executes one sync pass and sends a notification when the pass
// failed or stored only part of the snapshot.
func (s *Server) runSyncPass(ctx context.Context) {
	report, err := s.deps.SyncService.Run(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		s.logger.Error().Err(err).Msg("Sync pass failed")
		s.notifyFailure(report, err)
		return
	}
	if report.HasErrors() {
		s.notifyFailure(report, nil)
	}
}

// notifyFailure sends the failure summary. Notification problems are logged
// and never escalate into the run outcome.
func (s *Server) notifyFailure(report *models.SyncReport, runErr error) {
	if err := s.deps.Notifier.NotifyFailure(report, runErr); err != nil {
		s.logger.Error().Err(err).Msg("Failed to send failure notification")
	}
}

// Shutdown gracefully stops the scheduler, the HTTP server and the database.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	shutdownError := false

	// Stop the scheduler first and wait for an in-flight pass to finish.
	if s.cancelScheduler != nil {
		s.logger.Info().Msg("Stopping sync scheduler...")
		s.cancelScheduler()
		select {
		case <-s.schedulerDone:
			s.logger.Info().Msg("Sync scheduler stopped cleanly.")
		case <-ctx.Done():
			s.logger.Warn().Msg("Timed out waiting for sync scheduler to stop")
			shutdownError = true
		}
	}

	if s.http != nil {
		s.logger.Info().Msg("Shutting down HTTP server...")
		if err := s.http.Shutdown(ctx); err != nil {
			s.logger.Error().Err(err).Msg("HTTP server shutdown error")
			shutdownError = true
		} else {
			s.logger.Info().Msg("HTTP server gracefully stopped.")
		}
	}

	if s.database != nil {
		s.logger.Info().Msg("Closing database connection pool...")
		s.database.Close()
		s.logger.Info().Msg("Database connection pool closed.")
	}

	s.logger.Info().Msg("Server shutdown process complete.")
	if shutdownError {
		return errors.New("server shutdown completed with errors")
	}
	return nil
}
