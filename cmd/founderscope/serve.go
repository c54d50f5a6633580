package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/use-agent/founderscope/api"
	"github.com/use-agent/founderscope/store"
)

var (
	serveData string
	serveLive bool
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the stored companies over HTTP",
	Long:  "Serves the JSON store over the HTTP API. With --live a browser session is launched and POST /api/v1/scrape is enabled.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if serveData != "" {
			cfg.Store.Path = serveData
		}
		if servePort > 0 {
			cfg.Server.Port = servePort
		}

		st, err := store.Load(cfg.Store.Path)
		if err != nil {
			return eris.Wrap(err, "serve: load store")
		}

		deps := api.Deps{Store: st, StartTime: time.Now()}
		if serveLive {
			env, err := startLive(ctx, cfg, st, nil)
			if err != nil {
				return eris.Wrap(err, "serve: start session")
			}
			defer env.Close()
			deps.Scraper = env.Scraper
			deps.Gatherer = env.Registry
		} else {
			deps.Gatherer = prometheus.NewRegistry()
		}

		router := api.NewRouter(ctx, deps, cfg)
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		srv := &http.Server{
			Addr:              addr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			slog.Info("HTTP server listening", "addr", addr, "live", serveLive, "companies", st.Len())
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			if err != nil {
				return eris.Wrap(err, "serve: listen")
			}
		case <-ctx.Done():
			slog.Info("shutdown signal received")
		}

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("HTTP server forced shutdown", "error", err)
		} else {
			slog.Info("HTTP server drained gracefully")
		}

		// Scrapes made through the API land in the store; keep them.
		if serveLive {
			if err := st.Save(cfg.Store.Path); err != nil {
				return eris.Wrap(err, "serve: save store")
			}
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveData, "data", "", "JSON store path (default from config)")
	serveCmd.Flags().BoolVar(&serveLive, "live", false, "launch a browser session and enable scraping")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "listen port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
