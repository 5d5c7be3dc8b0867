package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/wolfpen/backend/internal/config"
	"github.com/wolfpen/backend/internal/directory"
	"github.com/wolfpen/backend/internal/httpapi"
	"github.com/wolfpen/backend/internal/logging"
)

func main() {
	cfg := config.Load()
	log := logging.New(cfg.LogFile)
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	d := directory.New(ctx, directory.Options{
		DayLength:    cfg.DayLength,
		TotalDays:    cfg.TotalDays,
		TickRate:     cfg.TickRate,
		StartTimeout: cfg.StartTimeout,
		GrassCount:   cfg.GrassCount,
		PenCount:     cfg.PenCount,
	}, log)
	defer d.Shutdown()

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: httpapi.SetupRoutes(d, cfg, log),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("listening", zap.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatal("server error", zap.Error(err))
	}
}
