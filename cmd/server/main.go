package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"arelyz/internal/config"
	"arelyz/internal/infra"
	"arelyz/internal/repository"
	"arelyz/internal/router"
	"arelyz/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Structured logger: pretty in dev, JSON in prod
	zerolog.TimeFieldFormat = time.RFC3339
	if cfg.Env != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	loc, err := cfg.Location()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid time zone")
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	// Worker handlers are wired here (composition root) so that the pool
	// has full access to all infrastructure dependencies.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mailer := infra.NewMailer(cfg)
	mailerCB := infra.NewCircuitBreaker(infra.DefaultCBConfig())
	dispatcher := worker.NewDispatcher(rdb)

	ownerEmail := cfg.OwnerEmail
	if !mailer.Enabled() {
		ownerEmail = ""
	}
	exportW := worker.NewExportWorker(repository.NewArqueoRepository(db), dispatcher, worker.ExportWorkerConfig{
		StoragePath: cfg.ExportStoragePath,
		Negocio:     cfg.BusinessName,
		OwnerEmail:  ownerEmail,
		Location:    loc,
	})
	emailW := worker.NewEmailWorker(mailer, mailerCB)

	worker.NewPool(rdb,
		worker.Route{Queue: worker.QueueArqueoExport, Handler: exportW, Attempts: 2},
		worker.Route{Queue: worker.QueueEmail, Handler: emailW, Attempts: 3},
	).Start(ctx, cfg.WorkerPoolSize)

	r := router.New(cfg, router.Deps{
		DB:       db,
		Redis:    rdb,
		Exports:  dispatcher,
		MailerCB: mailerCB,
		Location: loc,
	})

	srv := &http.Server{
		Addr:        fmt.Sprintf(":%d", cfg.Port),
		Handler:     r,
		ReadTimeout: 10 * time.Second,
		// the accept request waits for the close transaction
		WriteTimeout: cfg.ArqueoCommitTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Str("timezone", loc.String()).Msgf("%s backend listening on :%d", cfg.BusinessName, cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ArqueoCommitTimeout+5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server exited")
}
