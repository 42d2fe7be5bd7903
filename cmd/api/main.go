package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	"github.com/pcheng/weather-qna/backend/internal/config"
	"github.com/pcheng/weather-qna/backend/internal/handler"
	"github.com/pcheng/weather-qna/backend/internal/logger"
	"github.com/pcheng/weather-qna/backend/internal/metrics"
	aiservice "github.com/pcheng/weather-qna/backend/internal/service/ai"
	authservice "github.com/pcheng/weather-qna/backend/internal/service/auth"
	chatstore "github.com/pcheng/weather-qna/backend/internal/service/chat"
	"github.com/pcheng/weather-qna/backend/internal/service/qa"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// A missing .env falls through to the process environment.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		bootstrap := logger.New(logger.Config{Level: "info"})
		bootstrap.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.New(logger.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty})

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	store, closeStore, err := newStore(cfg.Storage, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize conversation store")
	}
	defer closeStore()

	authSvc := authservice.NewService(cfg.Auth.SessionTTL)

	var responder qa.Responder
	if cfg.AI.Enabled() {
		aiSvc, err := aiservice.NewService(ctx, cfg.AI, log)
		if err != nil {
			log.Warn().Err(err).Msg("failed to initialize LLM service, answering in fallback mode")
		} else {
			responder = aiSvc
			log.Info().Str("model", cfg.AI.Model).Msg("LLM service initialized")
		}
	} else {
		log.Info().Msg("no LLM credential configured, answering in fallback mode")
	}

	qaSvc := qa.NewService(store, responder, cfg.AI.Timeout, m, log)
	router := handler.NewRouter(authSvc, qaSvc, reg, log)

	startServer(ctx, cfg.Server, router, log)
}

func newStore(cfg config.StorageConfig, log zerolog.Logger) (chatstore.Store, func(), error) {
	if cfg.Path == "" {
		log.Info().Msg("no STORAGE_PATH configured, conversations kept in memory")
		return chatstore.NewMemoryStore(), func() {}, nil
	}

	store, err := chatstore.NewSQLiteStore(cfg.Path)
	if err != nil {
		return nil, nil, err
	}
	log.Info().Str("path", cfg.Path).Msg("sqlite conversation store opened")
	return store, func() { _ = store.Close() }, nil
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler, log zerolog.Logger) {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Info().Str("addr", serverCfg.Addr).Msg("weather-qna backend listening")
	if err := runServer(ctx, srv); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
	log.Info().Msg("server stopped")
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
