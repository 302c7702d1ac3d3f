package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"vxlinks/internal/bot"
	"vxlinks/internal/config"
	"vxlinks/internal/delivery"
	"vxlinks/internal/discord"
	"vxlinks/internal/guildconfig"
	"vxlinks/internal/logging"
	"vxlinks/internal/metrics"
	"vxlinks/internal/pipeline"
	"vxlinks/internal/rewrite"
)

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Connect to Discord and process messages until interrupted",
		Args:  cobra.NoArgs,
		RunE:  runBot,
	}
}

func runBot(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	backend, err := openBackend(cfg)
	if err != nil {
		return err
	}
	store := guildconfig.NewStore(backend, m, log.Named("store"))
	defer func() {
		if err := store.Close(); err != nil {
			log.Warn("close store", zap.Error(err))
		}
	}()

	session, err := discord.NewSession(cfg.Token)
	if err != nil {
		return err
	}
	client := discord.NewClient(session)
	dispatcher := delivery.NewDispatcher(client, delivery.Timing{
		ConfirmDelay:    cfg.ConfirmDelay,
		ResuppressDelay: cfg.ResuppressDelay,
	}, m, log.Named("delivery"))
	pl := pipeline.New(store, rewrite.New(), client, dispatcher, m, log.Named("pipeline"))
	b := bot.New(session, pl, store, client, log.Named("bot"))

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("starting",
		zap.String("version", bot.Version),
		zap.String("store", cfg.StoreDriver),
		zap.String("path", cfg.StorePath))

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return b.Run(ctx) })
	if cfg.MetricsAddr != "" {
		g.Go(func() error { return serveMetrics(ctx, cfg.MetricsAddr, reg, log) })
	}
	return g.Wait()
}

func openBackend(cfg *config.Config) (guildconfig.Backend, error) {
	switch cfg.StoreDriver {
	case config.DriverSQLite:
		b, err := guildconfig.NewSQLiteBackend(cfg.StorePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return b, nil
	default:
		return guildconfig.NewFileBackend(cfg.StorePath), nil
	}
}

func serveMetrics(ctx context.Context, addr string, reg *prometheus.Registry, log *zap.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info("metrics listening", zap.String("addr", addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("metrics server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown metrics server: %w", err)
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("metrics server: %w", err)
	}
	return nil
}
