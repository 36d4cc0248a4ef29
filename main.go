package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SaiNageswarS/doc-filler/appconfig"
	"github.com/SaiNageswarS/doc-filler/blankfill"
	"github.com/SaiNageswarS/doc-filler/docconv"
	"github.com/SaiNageswarS/doc-filler/llm"
	"github.com/SaiNageswarS/doc-filler/pipeline"
	"github.com/SaiNageswarS/doc-filler/services"
	"github.com/SaiNageswarS/doc-filler/store"
	"github.com/SaiNageswarS/go-api-boot/dotenv"
	"github.com/SaiNageswarS/go-api-boot/logger"
	"go.uber.org/zap"
)

func main() {
	dotenv.LoadEnv()

	// load config file
	ccfgg, err := appconfig.Load("config.ini")
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	llmClient, err := llm.ProvideClient(ccfgg)
	if err != nil {
		logger.Fatal("Failed to create LLM client", zap.Error(err))
	}

	calls := &blankfill.CallCounter{}
	filler := blankfill.NewFiller(blankfill.NewCompletionClient(llmClient, calls))
	converter := docconv.New()

	var execOpts []pipeline.ExecutorOption
	if ccfgg.LLMProvider != appconfig.ProviderOpenAI {
		execOpts = append(execOpts, pipeline.IgnoreBlockModels())
	}
	executor := pipeline.NewExecutor(converter, filler, execOpts...)

	pipelines, closeStore, err := provideStore(ccfgg)
	if err != nil {
		logger.Fatal("Failed to open pipeline store", zap.Error(err))
	}
	defer closeStore()

	router := services.NewRouter(ccfgg.Origins(),
		services.ProvideDocumentService(converter, filler, ccfgg.MaxUploadBytes()),
		services.ProvidePipelineService(executor, pipelines, ccfgg.MaxUploadBytes()),
	)

	srv := &http.Server{
		Addr:              ccfgg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx := getCancellableContext()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Graceful shutdown failed", zap.Error(err))
		}
	}()

	logger.Info("Starting HTTP server", zap.String("addr", srv.Addr), zap.String("provider", ccfgg.LLMProvider))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("HTTP server failed", zap.Error(err))
	}
	logger.Info("Server stopped", zap.Int64("llmCalls", calls.Count()))
}

func provideStore(cfg *appconfig.AppConfig) (store.Store, func(), error) {
	if cfg.PipelineStore == appconfig.StoreSQLite {
		s, err := store.OpenSQLiteStore(cfg.PipelineDB)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil
	}

	s, err := store.NewFileStore(cfg.PipelineDir)
	if err != nil {
		return nil, nil, err
	}
	return s, func() {}, nil
}

func getCancellableContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sig
		cancel()
	}()

	return ctx
}
