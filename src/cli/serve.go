package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/spf13/cobra"

	"github.com/username/tradeledger/src/assistant"
	"github.com/username/tradeledger/src/config"
	"github.com/username/tradeledger/src/handlers"
	"github.com/username/tradeledger/src/logger"
	"github.com/username/tradeledger/src/services"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Serve exposes the ledger pipeline over HTTP:

  POST /api/upload   multipart "file" field with a .csv export
  POST /api/query    {"query": "...", "ledger_id": "..."} or {"query": "...", "data": {"processed_csv": "..."}}
  GET  /             health check

The listen address defaults to :PORT from the environment.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVarP(&serveAddr, "addr", "a", "", "listen address (default \":\" + PORT)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.L.Info("Trade ledger server starting...")

	logger.L.Info("Initializing result cache...", "ttl", config.Cfg.ResultCacheTTL)
	resultCache := cache.New(config.Cfg.ResultCacheTTL, services.CacheCleanupInterval)

	logger.L.Info("Initializing services and handlers...")
	ledgerService := services.NewDefaultLedgerService(pipeline, resultCache, config.Cfg.ResultCacheTTL)
	queryService := services.NewQueryService(ledgerService, makeAssistant(ctx))

	router := handlers.NewRouter(
		handlers.NewUploadHandler(ledgerService, config.Cfg.MaxUploadSizeBytes),
		handlers.NewQueryHandler(queryService, config.Cfg.MaxUploadSizeBytes),
		handlers.RouterConfig{
			AllowedOrigins:     config.Cfg.AllowedOrigins,
			RequestTimeout:     config.Cfg.RequestTimeout,
			QueryRatePerMinute: config.Cfg.QueryRatePerMinute,
			QueryRateBurst:     config.Cfg.QueryRateBurst,
		},
	)

	addr := serveAddr
	if addr == "" {
		addr = ":" + config.Cfg.Port
	}
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: config.Cfg.RequestTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.L.Info("Server starting", "address", addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.L.Error("Failed to start server", "error", err)
			return err
		}
	case <-ctx.Done():
		logger.L.Info("Shutdown signal received, draining connections...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.L.Error("Server shutdown failed", "error", err)
			return err
		}
		if err := logger.Shutdown(shutdownCtx); err != nil {
			logger.L.Warn("Failed to flush traces", "error", err)
		}
	}

	logger.L.Info("Server stopped gracefully.")
	return nil
}

// makeAssistant is replaced in tests.
var makeAssistant = newAssistant

// newAssistant returns the configured query assistant, or nil when no API key is set
// so that queries report the assistant as unavailable.
func newAssistant(ctx context.Context) assistant.Assistant {
	a, err := assistant.NewGeminiAssistant(ctx, config.Cfg.GeminiAPIKey, config.Cfg.GeminiModel)
	if err != nil {
		if errors.Is(err, assistant.ErrNotConfigured) {
			logger.L.Warn("Query assistant not configured, /api/query will return 503")
		} else {
			logger.L.Error("Failed to create query assistant", "error", err)
		}
		return nil
	}
	return a
}
