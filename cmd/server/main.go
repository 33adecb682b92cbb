package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"nft-ledger/internal/config"
	"nft-ledger/internal/constants"
	fxmodules "nft-ledger/internal/fx"
	"nft-ledger/internal/logger"
	"nft-ledger/internal/middleware"
	"nft-ledger/internal/scheduler"
	"nft-ledger/internal/server"

	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

func main() {
	fx.New(
		fxmodules.Module,
		fx.Invoke(runServer),
	).Run()
}

func runServer(
	lc fx.Lifecycle,
	cardanoServer *server.CardanoServer,
	sweeper *scheduler.AllowlistSweeper,
	cfg *config.Config,
	db *sql.DB,
	log zerolog.Logger,
) {
	level := logger.ApplyLevel(cfg.LogLevel)
	log.Info().Str("level", level.String()).Msg("log level applied")

	mux := http.NewServeMux()
	cardanoServer.Register(mux)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{middleware.RequestIDHeader},
		AllowCredentials: true,
	})

	handler := middleware.RequestID(log)(middleware.Recover(c.Handler(mux)))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.ServerPort),
		Handler:           handler,
		ReadHeaderTimeout: constants.ExternalAPITimeout,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info().Str("addr", srv.Addr).Msg("server starting")
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatal().Err(err).Msg("server failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("server shutdown failed")
				return err
			}

			if err := sweeper.Stop(); err != nil {
				log.Warn().Err(err).Msg("error stopping allowlist sweeper")
			}
			if err := db.Close(); err != nil {
				log.Warn().Err(err).Msg("error closing database connection")
			}
			log.Info().Msg("server stopped gracefully")
			return nil
		},
	})
}
