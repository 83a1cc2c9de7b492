package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	webAdapter "purchase-ledger/internal/adapters/web"
	"purchase-ledger/internal/bootstrap"
	"purchase-ledger/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", slog.Any("error", err))
		os.Exit(1)
	}
	logger := config.NewLogger(cfg)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := bootstrap.Open(ctx, cfg, logger)
	if err != nil {
		logger.Error("startup", slog.Any("error", err))
		os.Exit(1)
	}
	defer rt.Close()

	if cfg.JWTSecret == "" {
		logger.Warn("JWT_SECRET is not set; API routes are unauthenticated")
	}

	server := &http.Server{
		Addr: cfg.HTTPAddr,
		Handler: webAdapter.NewHandler(rt.Service, webAdapter.Options{
			AllowedOrigins:     cfg.AllowedOrigins,
			JWTSecret:          cfg.JWTSecret,
			RateLimitPerMinute: cfg.RateLimitPerMinute,
			Production:         cfg.IsProduction(),
			Logger:             logger,
		}),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting http server", slog.String("addr", cfg.HTTPAddr), slog.String("store", cfg.StoreDriver))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("http server", slog.Any("error", err))
		rt.Close()
		os.Exit(1)
	}
}
