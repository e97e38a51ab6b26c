package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpAdapter "github.com/aretw0/sessionscope/internal/adapters/http"
	"github.com/aretw0/sessionscope/internal/logging"
	"github.com/aretw0/sessionscope/pkg/session"
	"github.com/aretw0/sessionscope/pkg/singleton"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP session host",
	Long:  `Starts an HTTP server that binds a session to every request and serves /session, /visits and /metrics.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(cmd)
		if err != nil {
			fmt.Printf("Error loading config: %v\n", err)
			os.Exit(1)
		}

		logger := logging.New(logging.ParseLevel(cfg.LogLevel))
		b := openBackends(cfg)
		defer func() {
			if err := b.close(); err != nil {
				logger.Warn("failed to close session index", "err", err)
			}
		}()

		opts := []session.Option{
			session.WithLogger(logger),
			session.WithTTL(cfg.Session.TTL),
			session.WithSweepInterval(cfg.Session.SweepInterval),
		}
		if b.locker != nil {
			opts = append(opts, session.WithLocker(b.locker))
		}
		mgr := session.NewManager(b.index, opts...)

		accessor := singleton.NewAccessor(singleton.WithLogger(logger))
		handler := httpAdapter.NewHandler(mgr,
			httpAdapter.WithAccessor(accessor),
			httpAdapter.WithCookieName(cfg.Session.CookieName),
			httpAdapter.WithSecureCookie(cfg.Session.SecureCookie),
			httpAdapter.WithLogger(logger),
		)

		srv := &http.Server{
			Addr:              cfg.Addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		}

		sweepCtx, stopSweep := context.WithCancel(context.Background())
		defer stopSweep()
		go mgr.Run(sweepCtx)

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)

		go func() {
			logger.Info("starting sessionscope server",
				"addr", srv.Addr,
				"store", cfg.Store.Backend,
				"session_ttl", cfg.Session.TTL,
			)
			serverErrors <- srv.ListenAndServe()
		}()

		// Channel to listen for interrupt or terminate signals.
		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			logger.Error("server error", "err", err)
			os.Exit(1)

		case sig := <-shutdown:
			logger.Info("start shutdown", "signal", sig.String())

			// Give outstanding requests a deadline for completion.
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				logger.Warn("graceful shutdown did not complete", "timeout", 5*time.Second, "err", err)
				if err := srv.Close(); err != nil {
					logger.Error("error killing server", "err", err)
				}
			}
			logger.Info("sessionscope server stopped gracefully")
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", ":8080", "Address to listen on")
	serveCmd.Flags().Duration("ttl", 0, "Session idle TTL (overrides config)")
}
