// Package main boots the order stock service HTTP server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fairyhunter13/order-stock-service/internal/config"
	"github.com/fairyhunter13/order-stock-service/internal/fx"
	httpapi "github.com/fairyhunter13/order-stock-service/internal/http"
	"github.com/fairyhunter13/order-stock-service/internal/obs"
	"github.com/fairyhunter13/order-stock-service/internal/order"
	"github.com/fairyhunter13/order-stock-service/internal/store"
)

func main() {
	cfg := config.Load()
	obs.InitLogger()
	obs.Logger.Info("service_starting")

	st := store.New()
	rates := fx.New(cfg)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rates.Start(ctx, cfg.RateRefresh)

	svc := order.NewService(st, rates)
	app := httpapi.NewApp(cfg, st, svc, rates)
	mux := httpapi.NewRouter(app)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		obs.Logger.Info("http_listen", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			obs.Logger.Error("http_server_error", "error", err)
			os.Exit(1)
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	s := <-sigc
	obs.Logger.Info("shutdown_signal", "signal", s.String())

	ctxSrv, cancelSrv := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancelSrv()
	if err := srv.Shutdown(ctxSrv); err != nil {
		obs.Logger.Error("http_shutdown_error", "error", err)
	}
	rates.Stop()
	obs.Logger.Info("service_stopped")
}
