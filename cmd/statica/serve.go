package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/sagarc03/statica/config"
	"github.com/sagarc03/statica/filesystem"
	statichttp "github.com/sagarc03/statica/http"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  `Serve the configured directory over HTTP until interrupted.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("dir", ".", "directory to serve (env: STATICA_STORAGE_PATH)")
	serveCmd.Flags().String("host", "localhost", "listen host")
	serveCmd.Flags().Int("port", 3000, "listen port")
	serveCmd.Flags().String("mode", "compat", "protocol mode (compat, strict)")
	serveCmd.Flags().Int("max-age", 10, "Cache-Control max-age in seconds")
	serveCmd.Flags().Bool("compress", true, "enable gzip/deflate responses")
	serveCmd.Flags().Bool("listing", true, "render directory listings")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}

	handlerConfig, err := cfg.HandlerConfig()
	if err != nil {
		return err
	}

	info, err := os.Stat(cfg.Storage.Path)
	if err != nil {
		return fmt.Errorf("stat storage directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("storage path is not a directory: %s", cfg.Storage.Path)
	}

	root, err := os.OpenRoot(cfg.Storage.Path)
	if err != nil {
		return fmt.Errorf("open storage root: %w", err)
	}
	defer func() { _ = root.Close() }()

	storage := filesystem.NewFileStorage(root)
	handler := statichttp.NewHandler(&handlerConfig, storage)

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		ErrorLog:          slog.NewLogLogger(slog.Default().Handler(), slog.LevelWarn),
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		slog.Info("starting server",
			"addr", server.Addr,
			"root", cfg.Storage.Path,
			"mode", handlerConfig.Mode,
			"compression", handlerConfig.Compression.Enabled,
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-ctx.Done()

		slog.Info("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		return nil
	})

	return eg.Wait()
}
