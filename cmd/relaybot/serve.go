package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yourusername/anon-relay-bot/config"
	"github.com/yourusername/anon-relay-bot/internal/app"
	applog "github.com/yourusername/anon-relay-bot/internal/log"
	"github.com/yourusername/anon-relay-bot/internal/supervisor"
)

const serveLong = `Koordinator jarayoni: Telegram polling, debounce, keep-alive va HTTP worker pool.

Worker restart siyosati: to'xtagan har bir worker o'rniga bittasi ishga
tushiriladi. Crash-loop bo'lmasligi uchun RESTART_WINDOW (standart 1m) ichida
ko'pi bilan RESTART_BUDGET (standart 10) restart qilinadi; budjet tugasa
restart kechiktiriladi, lekin hech qachon bekor qilinmaydi.
RESTART_BUDGET=0 cheklovni o'chiradi: har chiqishda darhol restart.`

func newServeCmd(envFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Koordinator: bot polling, keep-alive va worker pool",
		Long:  serveLong,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), *envFile)
		},
	}
}

func runServe(parent context.Context, envFile string) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(envFile)
	if err != nil {
		return err
	}
	logger := applog.New(cfg.LogLevel, "coordinator")

	spawner, err := supervisor.NewExecSpawner(workerArgs(envFile)...)
	if err != nil {
		return err
	}

	application, err := app.New(cfg, app.Options{Spawner: spawner}, logger)
	if err != nil {
		logger.Error().Err(err).Msg("koordinatorni ishga tushirib bo'lmadi")
		return err
	}

	logger.Info().Str("addr", cfg.Addr()).Msg("relay bot ishga tushdi")
	if err := application.Run(ctx); err != nil {
		logger.Error().Err(err).Msg("koordinator xato bilan to'xtadi")
		return err
	}
	return nil
}

// workerArgs worker jarayoni buyrug'i; slot raqamini spawner qo'shadi
func workerArgs(envFile string) []string {
	args := []string{"worker"}
	if envFile != "" {
		args = append(args, "--env-file", envFile)
	}
	return args
}
