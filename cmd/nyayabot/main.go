package main

import (
	"context"
	"errors"
	"flag"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"nyayabot/internal/config"
	"nyayabot/internal/embedding"
	"nyayabot/internal/generate"
	"nyayabot/internal/logger"
	"nyayabot/internal/retriever"
	"nyayabot/internal/server"
	"nyayabot/internal/service"
	"nyayabot/internal/summarizer"
	"nyayabot/internal/translate"
	"nyayabot/internal/vectorstore"
	"nyayabot/internal/vectorstore/file"
	"nyayabot/internal/vectorstore/qdrant"
)

func main() {
	_ = godotenv.Load()

	var cfgPath string
	flag.StringVar(&cfgPath, "config", "config.yaml", "Path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		logger.New("error").Fatal("failed to load config", "path", cfgPath, "error", err)
	}
	log := logger.New(cfg.LogLevel)

	// All model and index state is loaded here, once, and shared read-only
	// across requests for the process lifetime.
	store, err := openStore(cfg)
	if err != nil {
		log.Fatal("failed to open vector index", "error", err)
	}
	log.Info("vector index loaded", "backend", cfg.Index.Backend, "chunks", store.Count(), "dimension", store.Dimension())

	embedder, err := embedding.NewOpenAIClient(cfg.Embedder)
	if err != nil {
		log.Fatal("failed to create embedding client", "error", err)
	}
	ret, err := retriever.New(embedder, store)
	if err != nil {
		log.Fatal("failed to create retriever", "error", err)
	}
	gen, err := generate.New(cfg.Generator)
	if err != nil {
		log.Fatal("failed to create generator", "error", err)
	}
	if cfg.Generator.ReducedPrecision {
		log.Info("generator running in reduced-precision mode", "model", cfg.Generator.Model)
	}
	translator, err := translate.New(translate.NewDetector(), translate.NewClient(cfg.Translator), cfg.Translator.CacheSize)
	if err != nil {
		log.Fatal("failed to create translator", "error", err)
	}
	qa, err := service.New(translator, ret, gen, summarizer.NewFrequencySummarizer(), store, cfg.Retrieval.DefaultTopK)
	if err != nil {
		log.Fatal("failed to create qa service", "error", err)
	}

	srv := server.New(qa, time.Duration(cfg.Server.RequestTimeoutSecs)*time.Second)
	httpServer := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: srv.Router(),
		BaseContext: func(_ net.Listener) context.Context {
			return logger.ContextWithLogger(context.Background(), log)
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("listening", "address", cfg.Server.Address)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown failed", "error", err)
	}
}

func openStore(cfg *config.AppConfig) (vectorstore.Storage, error) {
	switch cfg.Index.Backend {
	case "file", "":
		return file.Open(cfg.Index.Dir, cfg.Embedder.Model)
	case "qdrant":
		if cfg.Index.Qdrant == nil {
			return nil, errors.New("qdrant backend selected but index.qdrant config is missing")
		}
		return qdrant.Open(context.Background(), qdrant.Config{
			URL:        cfg.Index.Qdrant.URL,
			APIKey:     os.Getenv(cfg.Index.Qdrant.APIKeyEnv),
			Collection: cfg.Index.Qdrant.Collection,
			Timeout:    time.Duration(cfg.Index.Qdrant.TimeoutSecs) * time.Second,
		})
	default:
		return nil, errors.New("unknown index backend " + cfg.Index.Backend)
	}
}
