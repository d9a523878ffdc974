package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"pdfchat/internal/api"
	"pdfchat/internal/config"
	"pdfchat/internal/retrieval"
	"pdfchat/internal/storage"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the bundled development backend (foreground)",
	Long: `Run the bundled development backend (foreground).

A self-contained stand-in for the production retrieval service: PDFs are
ingested into a local SQLite store and questions are answered by keyword
retrieval over the stored pages. Useful for exercising the client
without external infrastructure.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

func runServe() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logLevel := slog.LevelInfo
	if strings.EqualFold(cfg.Log.Level, "debug") {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := storage.Open(cfg.Serve.DataDir)
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: closing storage: %v\n", err)
		}
	}()

	handler := api.NewServer(api.ServerDeps{
		Store:         store,
		Retriever:     retrieval.NewRetriever(store, cfg.Retrieval.TopK),
		SnippetLength: cfg.Retrieval.SnippetLength,
	})

	addr := fmt.Sprintf("127.0.0.1:%d", cfg.Serve.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("pdfchat backend listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		fmt.Fprintln(os.Stderr, "shutting down...")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
