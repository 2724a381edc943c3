package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	stateline "github.com/stateline-dev/stateline"
	httpAdapter "github.com/stateline-dev/stateline/internal/adapters/http"
	"github.com/stateline-dev/stateline/internal/config"
	"github.com/stateline-dev/stateline/internal/logging"
	"github.com/stateline-dev/stateline/internal/observability"
	redisAdapter "github.com/stateline-dev/stateline/pkg/adapters/redis"
	"github.com/stateline-dev/stateline/pkg/ports"

	backend "github.com/redis/go-redis/v9"
	"github.com/stateline-dev/stateline/pkg/adapters/memory"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the workflow HTTP server",
	Long:  `Starts the Stateline service in server mode, exposing the workflow JSON API over HTTP plus a Prometheus /metrics endpoint.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfgPath, _ := cmd.Flags().GetString("config")
		port, _ := cmd.Flags().GetString("port")

		cfg := config.Default()
		if cfgPath != "" {
			var err error
			cfg, err = config.Load(cfgPath)
			if err != nil {
				return err
			}
		}
		if port != "" {
			cfg.ListenAddr = ":" + port
		}

		level, err := cfg.SlogLevel()
		if err != nil {
			return err
		}
		logger := logging.New(level)

		metrics := observability.NewMetrics(prometheus.DefaultRegisterer)

		store, locker, cleanup, err := buildStore(cfg)
		if err != nil {
			return err
		}
		defer cleanup()

		opts := []stateline.Option{
			stateline.WithLogger(logger),
			stateline.WithLifecycleHooks(metrics.Hooks()),
		}
		if locker != nil {
			opts = append(opts, stateline.WithLocker(locker))
		}
		svc := stateline.New(store, opts...)

		handler := httpAdapter.NewHandler(svc, logger)

		srv := &http.Server{
			Addr:    cfg.ListenAddr,
			Handler: handler,
		}
		metricsSrv := &http.Server{
			Addr:    cfg.MetricsAddr,
			Handler: promhttp.Handler(),
		}

		// Channel to listen for errors coming from the listeners.
		serverErrors := make(chan error, 2)

		go func() {
			logger.Info("Starting Stateline server", "addr", srv.Addr, "store", string(cfg.Store))
			serverErrors <- srv.ListenAndServe()
		}()
		go func() {
			logger.Info("Starting metrics server", "addr", metricsSrv.Addr)
			serverErrors <- metricsSrv.ListenAndServe()
		}()

		// Channel to listen for interrupt or terminate signals.
		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			return fmt.Errorf("server error: %w", err)

		case sig := <-shutdown:
			logger.Info("Start shutdown", "signal", sig.String())

			// Give outstanding requests a deadline for completion.
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				logger.Warn("Graceful shutdown did not complete", "err", err)
				if err := srv.Close(); err != nil {
					logger.Error("Error killing server", "err", err)
				}
			}
			_ = metricsSrv.Close()
			logger.Info("Stateline server stopped gracefully")
			return nil
		}
	},
}

// buildStore constructs the configured store backend. For redis it also
// returns a distributed locker so replicas serialize per-instance execution.
func buildStore(cfg config.Config) (ports.Store, ports.DistributedLocker, func(), error) {
	switch cfg.Store {
	case config.StoreRedis:
		client := backend.NewClient(&backend.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		storeOpts := []redisAdapter.Option{redisAdapter.WithPrefix(cfg.Redis.Prefix)}
		if cfg.Redis.TTL > 0 {
			storeOpts = append(storeOpts, redisAdapter.WithTTL(time.Duration(cfg.Redis.TTL)))
		}
		store := redisAdapter.NewFromClient(client, storeOpts...)
		locker := redisAdapter.NewLocker(client, cfg.Redis.Prefix)
		return store, locker, func() { _ = store.Close() }, nil

	case config.StoreMemory:
		return memory.NewStore(), nil, func() {}, nil

	default:
		return nil, nil, nil, fmt.Errorf("unknown store backend %q", cfg.Store)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "", "Port to listen on (overrides config)")
}
