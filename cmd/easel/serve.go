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

	"github.com/aretw0/easel/internal/cli"
	httpAdapter "github.com/aretw0/easel/pkg/adapters/http"
	"github.com/aretw0/easel/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Hosts documents from the configured store and exposes them as a JSON API,
with server-sent change events and a websocket for pointer gestures.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup(cmd)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("addr") {
			cfg.Server.Addr, _ = cmd.Flags().GetString("addr")
		}

		backend, err := cli.OpenBackend(cfg)
		if err != nil {
			return err
		}
		defer backend.Close()

		hooks := observability.LogHooks(logger)
		var handlerOpts []httpAdapter.Option
		if cfg.Server.Metrics {
			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
			metrics, err := observability.NewMetrics(reg)
			if err != nil {
				return err
			}
			hooks = hooks.Merge(metrics.Hooks())
			handlerOpts = append(handlerOpts, httpAdapter.WithMetrics(reg))
		}
		handlerOpts = append(handlerOpts, httpAdapter.WithLogger(logger))

		sessions := backend.Sessions(cfg, logger, hooks)
		handler, err := httpAdapter.NewHandler(sessions, handlerOpts...)
		if err != nil {
			return err
		}

		srv := &http.Server{
			Addr:    cfg.Server.Addr,
			Handler: handler,
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)
		go func() {
			logger.Info("starting easel server", "addr", srv.Addr, "store", cfg.Store.Driver)
			serverErrors <- srv.ListenAndServe()
		}()

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			return fmt.Errorf("server error: %w", err)

		case sig := <-shutdown:
			logger.Info("start shutdown", "signal", sig.String())

			// Give outstanding requests a deadline for completion.
			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				logger.Error("graceful shutdown did not complete", "timeout", shutdownTimeout, "error", err)
				if err := srv.Close(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("error killing server: %w", err)
				}
			}
			logger.Info("easel server stopped gracefully")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("addr", "a", ":8080", "Address to listen on")
}
