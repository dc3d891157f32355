package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/loja-escolar/backend/internal/auth"
	"github.com/loja-escolar/backend/internal/catalog"
	"github.com/loja-escolar/backend/internal/checkout"
	"github.com/loja-escolar/backend/internal/config"
	"github.com/loja-escolar/backend/internal/db"
	"github.com/loja-escolar/backend/internal/transport"
	"github.com/loja-escolar/backend/internal/user"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	log.Logger = log.With().Str("service", "loja-backend").Logger()

	// Money fields go out as JSON numbers, matching the existing clients.
	decimal.MarshalJSONWithoutQuotes = true

	log.Info().Msg("Loja Escolar backend starting...")

	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	ctx := context.Background()

	postgres, err := db.New(ctx, cfg.Postgres)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer postgres.Close()

	tokens, err := auth.NewManager(cfg.Auth.Secret, cfg.Auth.TokenTTL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to configure auth")
	}

	catalogSvc := catalog.NewService(catalog.NewRepository(postgres.Pool))
	checkoutSvc := checkout.NewService(checkout.NewStore(postgres.Pool))
	userSvc := user.NewService(user.NewRepository(postgres.Pool))

	router := transport.NewRouter(catalogSvc, checkoutSvc, userSvc, tokens, cfg.Upload.AvatarDir)

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.App.Port).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	log.Info().Msg("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Shutdown failed")
	}
	log.Info().Msg("Server stopped")
}
