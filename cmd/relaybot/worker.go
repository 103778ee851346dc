package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yourusername/anon-relay-bot/config"
	httpdelivery "github.com/yourusername/anon-relay-bot/internal/delivery/http"
	applog "github.com/yourusername/anon-relay-bot/internal/log"
)

func newWorkerCmd(envFile *string) *cobra.Command {
	var slot int

	cmd := &cobra.Command{
		Use:    "worker",
		Short:  "HTTP worker jarayoni (koordinator ishga tushiradi)",
		Hidden: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runWorker(ctx, *envFile, slot)
		},
	}

	cmd.Flags().IntVar(&slot, "slot", 0, "Pool ichidagi slot raqami")
	return cmd
}

func runWorker(ctx context.Context, envFile string, slot int) error {
	cfg, err := config.Load(envFile)
	if err != nil {
		return err
	}
	logger := applog.New(cfg.LogLevel, "worker")
	sub := logger.With().Int("slot", slot).Logger()

	if err := httpdelivery.Serve(ctx, cfg.Addr(), &sub); err != nil {
		sub.Error().Err(err).Msg("worker HTTP server xatosi")
		return err
	}
	return nil
}
