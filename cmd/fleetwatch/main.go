// Command fleetwatch serves cached health for a fleet of containerised
// services.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jonwraymond/fleetwatch/api"
	"github.com/jonwraymond/fleetwatch/auth"
	"github.com/jonwraymond/fleetwatch/cache"
	"github.com/jonwraymond/fleetwatch/config"
	"github.com/jonwraymond/fleetwatch/fleet"
	"github.com/jonwraymond/fleetwatch/observe"
	"github.com/jonwraymond/fleetwatch/registry"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		log.Fatalf("fleetwatch: %v", err)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("fleetwatch", flag.ContinueOnError)
	fs.SetOutput(stdout)
	var (
		configFile = fs.String("config", "", "path to configuration file")
		envPrefix  = fs.String("env-prefix", config.DefaultEnvPrefix, "environment variable prefix")
		checkOnly  = fs.Bool("check", false, "validate the configuration and exit")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.NewLoader(*envPrefix, *configFile).Load(ctx)
	if err != nil {
		return err
	}

	resolver, err := cfg.SecretResolver()
	if err != nil {
		return err
	}
	defer resolver.Close()

	reg, err := registry.Load(ctx, cfg.Services, resolver)
	if err != nil {
		return err
	}
	if *checkOnly {
		fmt.Fprintf(stdout, "configuration ok: %d services, %d layers\n", reg.Len(), len(cfg.Layers))
		return nil
	}

	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)
	oc := cfg.Observe()
	oc.Metrics.Registerer = promRegistry
	obs, err := observe.NewObserver(ctx, oc)
	if err != nil {
		return fmt.Errorf("observe: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = obs.Shutdown(shutdownCtx)
	}()
	tel, err := observe.NewTelemetry(obs)
	if err != nil {
		return err
	}
	logger := tel.Logger

	rt, err := cfg.Docker.Client(logger)
	if err != nil {
		return err
	}
	defer rt.Close()

	store := cache.NewMemoryStore(cfg.Cache.Policy())
	janitor := cache.NewJanitor(store, cache.JanitorConfig{
		Interval:  cfg.Cache.CleanupInterval,
		Telemetry: tel,
	})
	if err := janitor.Start(ctx); err != nil {
		return err
	}
	defer janitor.Stop()

	monitor, err := fleet.New(reg, rt, cache.NewAccessor(store, cache.WithTelemetry(tel)), fleet.Config{
		Probe:               cfg.Probe.Options(),
		MaxConcurrentProbes: cfg.Probe.MaxConcurrent,
		ProbeWait:           cfg.Probe.ProbeWait(),
		DiscoveryPrefix:     cfg.Docker.DiscoveryPrefix,
		Telemetry:           tel,
	})
	if err != nil {
		return err
	}

	guard, err := auth.NewGuard(cfg.Auth, logger)
	if err != nil {
		return err
	}
	if !guard.Enabled() {
		logger.Warn(ctx, "no credentials configured; cache mutation routes are open")
	}

	handler, err := api.NewHandler(api.Config{
		Monitor:   monitor,
		Layers:    cfg.Layers,
		Guard:     guard,
		Discovery: cfg.Docker.Discovery,
		Metrics:   promhttp.HandlerFor(promRegistry, promhttp.HandlerOpts{}),
		Logger:    logger,
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "fleetwatch starting",
		observe.F("addr", cfg.Server.Addr()),
		observe.F("services", reg.Len()),
		observe.F("cleanup_interval", cfg.Cache.CleanupInterval.String()),
	)

	srv := api.NewServer(api.ServerConfig{
		Addr:              cfg.Server.Addr(),
		ShutdownTimeout:   cfg.Server.ShutdownTimeout,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		Logger:            logger,
	}, handler.Router())
	if err := srv.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info(context.Background(), "fleetwatch stopped")
	return nil
}
