package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kiosco/internal/config"
	"kiosco/internal/infra"
	"kiosco/internal/repository"
	"kiosco/internal/router"
	"kiosco/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Structured logger — dev: pretty, prod: JSON
	if cfg.Env != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL, cfg.InstalarRPC)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL, cfg.WorkerPoolSize)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Worker processors are wired here so the pool reaches the same
	// infrastructure as the HTTP services.
	productoRepo := repository.NewProductoRepository(db)
	cierreRepo := repository.NewCierreRepository(db)
	alertas := worker.NewAlertasRedis(rdb)

	pool := worker.NewPool(rdb)
	pool.Registrar(worker.QueueVentas, worker.TipoVentaLiquidada, worker.NewObservadorVentas(productoRepo, alertas))
	pool.Registrar(worker.QueueEmail, worker.TipoEmailCierre, worker.NewEmailWorker(
		cierreRepo,
		infra.NewCierrePDF(cfg.NombreNegocio, "", cfg.Location()),
		infra.NewMailer(cfg),
		infra.NewDisyuntor(infra.ConfigDisyuntorSMTP()),
		cfg.NombreNegocio,
	))
	pool.Start(ctx, cfg.WorkerPoolSize)
	worker.StartAlertasCron(ctx, worker.AlertasCronConfig{Productos: productoRepo, Alertas: alertas})

	r := router.New(ctx, cfg, db, rdb)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("%s backend listening on :%d", cfg.NombreNegocio, cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
	cancel()
	pool.Wait()
	if err := rdb.Close(); err != nil {
		log.Warn().Err(err).Msg("redis close")
	}
	log.Info().Msg("server exited")
}
