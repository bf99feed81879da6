package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/BetterCallFirewall/SecurityCenter/internal/config"
	"github.com/BetterCallFirewall/SecurityCenter/internal/driven"
	"github.com/BetterCallFirewall/SecurityCenter/internal/metrics"
	"github.com/BetterCallFirewall/SecurityCenter/internal/web"
	"github.com/BetterCallFirewall/SecurityCenter/internal/websocket"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func serveCmd() *cobra.Command {
	var listenFlag string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, websocket progress feed and metrics endpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			if listenFlag != "" {
				cfg.Web.ListenAddr = listenFlag
			}
			return serve(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&listenFlag, "listen", "", "API listen address (overrides WEB_LISTEN_ADDR)")
	return cmd
}

func serve(parent context.Context, cfg *config.Config) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	m, err := metrics.New()
	if err != nil {
		return err
	}

	hub := websocket.NewHub()
	go hub.Run()
	defer hub.Stop()

	orchestrator, err := buildOrchestrator(ctx, cfg, driven.WithNotifier(hub), driven.WithRecorder(m))
	if err != nil {
		return err
	}

	store, err := newStore(cfg.Storage)
	if err != nil {
		return err
	}
	defer store.Close()

	resolver, closeResolver, err := newResolver(ctx, cfg.Subscription)
	if err != nil {
		return fmt.Errorf("connecting to profile database: %w", err)
	}
	defer closeResolver()

	api := web.NewServer(cfg.Web, orchestrator, store, resolver, hub)

	var metricsServer *http.Server
	if cfg.Metrics.ListenAddr != "" {
		metricsServer = m.NewServer(cfg.Metrics.ListenAddr)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := api.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("api server: %w", err)
		}
		return nil
	})

	if metricsServer != nil {
		g.Go(func() error {
			log.Printf("📈 Metrics listening on %s/metrics", cfg.Metrics.ListenAddr)
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
	}

	// Graceful shutdown on signal or when one server fails
	g.Go(func() error {
		<-gctx.Done()
		log.Printf("🛑 Shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		err := api.Stop(shutdownCtx)
		if metricsServer != nil {
			err = errors.Join(err, metricsServer.Shutdown(shutdownCtx))
		}
		return err
	})

	return g.Wait()
}
