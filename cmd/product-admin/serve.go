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

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Sternrassler/product-admin/internal/render"
	"github.com/Sternrassler/product-admin/pkg/logging"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the product list as an HTML page",
		Example: `  product-admin serve --port 8080
  PRODUCTS_API_URL=https://shop.example.com product-admin serve`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
	cmd.Flags().IntVar(&opts.port, "port", 0, "HTTP listen port (env PORT)")
	return cmd
}

func runServe(ctx context.Context, opts *rootOptions) error {
	cfg := opts.cfg
	logger := logging.NewLogger("http")

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	productsClient, redisClient, err := newClient(ctx, cfg)
	if err != nil {
		return err
	}
	defer productsClient.Close()
	if redisClient != nil {
		defer redisClient.Close()
	}

	renderer, err := render.New()
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr: cfg.Addr(),
		Handler: newRouter(&server{
			fetcher:  productsClient,
			renderer: renderer,
			redis:    redisClient,
			logger:   logger,
		}),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		// Covers every retry attempt of one fetch.
		WriteTimeout: time.Duration(cfg.MaxAttempts+1) * cfg.RequestTimeout,
		IdleTimeout:  60 * time.Second,
	}

	logger.Info().
		Str("addr", srv.Addr).
		Str("api_url", cfg.APIURL).
		Str("user_agent", cfg.UserAgent).
		Bool("rate_limit_gate", redisClient != nil).
		Msg("Starting product admin server")

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		logger.Info().Msg("Shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}
