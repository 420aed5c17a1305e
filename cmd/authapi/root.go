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

	"github.com/alfagnish/authapi/internal/config"
	"github.com/alfagnish/authapi/internal/logging"
	"github.com/alfagnish/authapi/internal/metrics"
	"github.com/alfagnish/authapi/internal/server"
	"github.com/alfagnish/authapi/internal/users"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Version set at compile time
var Version = "0.0.0"

func newRootCmd() *cobra.Command {
	cfg := config.Load()

	cmd := &cobra.Command{
		Use:           "authapi",
		Short:         "Login and user lookup HTTP service",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			logger := newLogger(cfg)
			if err := run(cmd.Context(), cfg, logger); err != nil {
				logger.WithError(err).Error("authapi exited")
				return err
			}
			return nil
		},
	}

	bindFlags(cmd.Flags(), cfg)
	cmd.AddCommand(newVersionCmd())
	return cmd
}

// bindFlags registers flags whose defaults are the values already loaded from
// the environment, so an explicit flag wins over the environment.
func bindFlags(fs *pflag.FlagSet, cfg *config.Config) {
	fs.StringVar(&cfg.ListenAddr, "listen", cfg.ListenAddr, "HTTP listen address")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (trace, debug, info, warn, error)")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log format (json or text)")
	fs.BoolVar(&cfg.Debug, "debug", cfg.Debug, "debug logging and /debug profiler")
	fs.DurationVar(&cfg.ShutdownTimeout, "shutdown-timeout", cfg.ShutdownTimeout, "grace period for in-flight requests on shutdown")
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), Version)
		},
	}
}

func newLogger(cfg *config.Config) *logrus.Logger {
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	if cfg.Debug {
		logger.SetLevel(logrus.DebugLevel)
	}
	return logger
}

func run(ctx context.Context, cfg *config.Config, logger *logrus.Logger) error {
	// 1. Build the read-only user table.
	dir := users.NewDirectory(users.Seed())
	logger.WithField("users", dir.Len()).Info("user directory loaded")

	// 2. Set up the chi router with all handlers.
	handler := server.New(cfg, dir, metrics.New(), logger)

	// 3. Start the HTTP server.
	srv := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM.
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.WithFields(logrus.Fields{
			"listen": cfg.ListenAddr,
			"debug":  cfg.Debug,
		}).Info("authapi listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen on %s: %w", cfg.ListenAddr, err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}

	logger.Info("authapi stopped")
	return nil
}
