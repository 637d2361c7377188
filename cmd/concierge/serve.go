package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	xlog "github.com/avvvet/concierge-intent/internal/log"
	"github.com/avvvet/concierge-intent/internal/transport"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP chat endpoint (and the NATS responder when enabled)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(os.Stdout)
			if err != nil {
				return err
			}
			logger := xlog.WithComponent("server")
			logger.Info().
				Str("hotel", cfg.HotelName).
				Bool("demo_mode", cfg.DemoMode).
				Str("llm_provider", cfg.LLMProvider).
				Str("model", cfg.CompletionModel()).
				Msg("Starting concierge service")

			a := buildApp(cfg)
			defer a.Close()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			httpServer := transport.NewHTTPServer(cfg, a.handler, xlog.WithComponent("http"))

			var nats *transport.NATSTransport
			if cfg.NatsEnabled {
				nats, err = transport.NewNATSTransport(cfg, a.handler, xlog.WithComponent("nats"))
				if err != nil {
					return err
				}
				defer nats.Close()
				if err := nats.Start(); err != nil {
					return err
				}
			}

			g, gctx := errgroup.WithContext(ctx)
			g.Go(httpServer.Start)
			g.Go(func() error {
				<-gctx.Done()
				logger.Info().Msg("Shutting down gracefully")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				return httpServer.Shutdown(shutdownCtx)
			})

			if err := g.Wait(); err != nil {
				return err
			}
			logger.Info().Msg("Concierge service stopped")
			return nil
		},
	}
}
