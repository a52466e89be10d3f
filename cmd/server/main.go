// Command server runs the recipe assistant HTTP API.
//
// Startup order: load .env, parse configuration, configure logging and
// tracing, open and migrate the SQLite catalog, import the Markdown seed
// recipes, build the completion client, then serve until SIGINT/SIGTERM with
// graceful shutdown.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-recipe-assistant/internal/config"
	httpapi "github.com/tbourn/go-recipe-assistant/internal/http"
	"github.com/tbourn/go-recipe-assistant/internal/llm"
	"github.com/tbourn/go-recipe-assistant/internal/observability"
	"github.com/tbourn/go-recipe-assistant/internal/repo"
	"github.com/tbourn/go-recipe-assistant/internal/seed"
	"github.com/tbourn/go-recipe-assistant/internal/sysutil"
)

const version = "1.0.0"

func main() {
	_ = godotenv.Load()

	cfg := config.MustLoad()

	sysutil.SetLogLevel(cfg.LogLevel)
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	ctx := context.Background()

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("otel setup failed")
	}

	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open database failed")
	}

	if n, err := seed.ImportDir(ctx, db, cfg.SeedPath); err != nil {
		log.Fatal().Err(err).Str("dir", cfg.SeedPath).Msg("seed import failed")
	} else if n > 0 {
		log.Info().Int("recipes", n).Msg("catalog seeded")
	}
	if stats, err := repo.Stats(ctx, db); err == nil {
		log.Info().Int64("total", stats.Total).Msg("catalog ready")
	}

	completer, err := llm.NewClient(llm.ClientConfig{
		BaseURL:     cfg.Gen.BaseURL,
		APIKey:      cfg.Gen.APIKey,
		Model:       cfg.Gen.Model,
		MaxTokens:   cfg.Gen.MaxTokens,
		Temperature: cfg.Gen.Temperature,
		Timeout:     cfg.Gen.Timeout,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("completion client setup failed")
	}

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	httpapi.RegisterRoutes(r, db, completer, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}
	if err := shutdownOTel(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("otel shutdown")
	}
}
