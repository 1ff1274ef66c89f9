package commands

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/spherical/text-extractor/internal/api"
	"github.com/spherical/text-extractor/internal/app"
)

var serveOrigins []string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the extraction API over HTTP",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringSliceVar(&serveOrigins, "allowed-origins", []string{"*"}, "origins allowed by CORS")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := loadApp(false, app.Options{})
	if err != nil {
		return err
	}
	defer a.Close()
	cfg := a.Config
	logger := a.Logger

	if a.ConfigMissing {
		logger.Warn().Msg("No API key configured; extraction requests will be refused")
	}

	router := api.NewRouter(a, api.RouterConfig{
		RequestTimeout: cfg.Server.WriteTimeout,
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
		AllowedOrigins: serveOrigins,
	})

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("HTTP server listening")
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("Server error")
			return err
		}
	case sig := <-shutdown:
		logger.Info().Str("signal", sig.String()).Msg("Shutdown signal received")
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulShutdown)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("Graceful shutdown failed")
		if err := srv.Close(); err != nil {
			logger.Error().Err(err).Msg("Forced shutdown failed")
		}
	}

	logger.Info().Msg("Server stopped")
	return nil
}
