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
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"churnd/internal/artifact"
	"churnd/internal/cfg"
	"churnd/internal/churn"
	"churnd/internal/metrics"
	"churnd/internal/server"
	"churnd/internal/storage"
)

func main() {
	// .env is a development convenience; absence is not an error.
	_ = godotenv.Load()

	c, err := cfg.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}
	configureLogging(c.LogLevel)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	m := metrics.New()
	mw := metrics.NewWrapper(m)

	bundle, err := artifact.Load(c.ArtifactPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", c.ArtifactPath).Msg("artifact load failed")
	}
	if trained := bundle.TrainingTime(); !trained.IsZero() {
		m.ModelAge.Set(time.Since(trained).Seconds())
	}

	transformer := churn.NewTransformer(bundle.Encoders, bundle.Scaler, bundle.FeatureNames, len(bundle.FeatureNames), mw)
	predictor := churn.NewWithMetrics(transformer, bundle.Classifier(), c.Risk, mw)

	store := initializeStorage(c)
	if store != nil {
		defer store.Close()
	}

	srv := server.New(predictor, bundle, store, c.Port, c.MaxBatchSize, c.RequestTimeout)

	go func() {
		if err := srv.Start(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server failed")
			cancel()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
	log.Info().Msg("shutdown complete")
}

// initializeStorage opens prediction history when DATA_PATH is
// configured. The service runs without history rather than refusing to
// start over a storage problem.
func initializeStorage(c cfg.Settings) *storage.Store {
	if c.DataPath == "" {
		return nil
	}
	store, err := storage.New(c.DataPath)
	if err != nil {
		log.Warn().Err(err).Str("data_path", c.DataPath).Msg("failed to open prediction history, continuing without it")
		return nil
	}
	log.Info().Str("data_path", c.DataPath).Msg("prediction history enabled")
	return store
}

func configureLogging(level string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
}
