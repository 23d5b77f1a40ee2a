// Command docqa-web serves the interactive question-answering form. It
// wires the same pipeline as the docqa CLI behind a web UI, keeps a
// short-lived history of runs, and supports an autocert TLS path for
// production deployments.
package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/serillon/docqa/config"
	"github.com/serillon/docqa/handlers"
	"github.com/serillon/docqa/loader"
	"github.com/serillon/docqa/logging"
	"github.com/serillon/docqa/pipeline"
	"github.com/serillon/docqa/server"
	"github.com/serillon/docqa/services/embedding_service"
	"github.com/serillon/docqa/services/llm_service"
	"github.com/serillon/docqa/vectorstore"
)

const (
	runRecordRetention = 24 * time.Hour
	cleanupInterval    = time.Hour
	shutdownTimeout    = 30 * time.Second
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger, err := initLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	ctx := context.Background()

	embedder := embedding_service.NewOpenAIEmbeddingService(
		cfg.EmbeddingBaseURL, cfg.EmbeddingAPIKey, cfg.EmbeddingModel, logger)

	store, err := vectorstore.New(ctx, cfg, embedder, logger)
	if err != nil {
		log.Fatalf("Failed to initialize vector store: %v", err)
	}
	defer store.Close()

	llm := llm_service.NewOpenRouterService(
		cfg.OpenRouterBaseURL, cfg.OpenRouterAPIKey, cfg.LLMModel, logger)

	p := pipeline.New(cfg, loader.New(logger), store, llm, logger)

	runStore := pipeline.NewRunStore(logger)
	runStore.StartCleanup(runRecordRetention, cleanupInterval)
	defer runStore.StopCleanup()

	askHandler := handlers.NewAskHandler(p, runStore, logger)
	runsHandler := handlers.NewRunsHandler(runStore, logger)

	r := server.SetupRoutes(askHandler, runsHandler)
	n := server.SetupNegroni(r)

	serverCfg := server.Config{
		Domains:      cfg.Domains,
		CertCacheDir: cfg.CertCacheDir,
		HTTPPort:     cfg.HTTPPort,
		HTTPSPort:    cfg.HTTPSPort,
	}

	var servers []*http.Server
	serverErrors := make(chan error, 2)

	if cfg.Environment == "production" {
		httpsServer, redirectServer := server.NewProductionServers(n, serverCfg)
		servers = []*http.Server{httpsServer, redirectServer}

		go func() {
			logger.Info("Serving HTTPS", slog.String("addr", httpsServer.Addr))
			serverErrors <- httpsServer.ListenAndServeTLS("", "")
		}()
		go func() {
			serverErrors <- redirectServer.ListenAndServe()
		}()
	} else {
		srv := server.NewDevelopmentServer(n, serverCfg)
		servers = []*http.Server{srv}

		go func() {
			logger.Info("Serving HTTP", slog.String("addr", srv.Addr))
			serverErrors <- srv.ListenAndServe()
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	case sig := <-quit:
		logger.Info("Shutting down", slog.String("signal", sig.String()))
		server.Shutdown(servers, shutdownTimeout, logger)
	}

	logger.Info("Server stopped")
}

func initLogger(cfg config.Config) (*slog.Logger, error) {
	fileHandler, err := logging.NewDailyFileHandler(cfg.LogDir, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})
	if err != nil {
		return nil, err
	}
	return slog.New(fileHandler), nil
}
