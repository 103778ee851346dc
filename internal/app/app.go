package app

import (
	"context"
	"fmt"
	"runtime"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/yourusername/anon-relay-bot/config"
	delivery "github.com/yourusername/anon-relay-bot/internal/delivery/telegram"
	"github.com/yourusername/anon-relay-bot/internal/domain/entity"
	"github.com/yourusername/anon-relay-bot/internal/domain/repository"
	"github.com/yourusername/anon-relay-bot/internal/infrastructure/keepalive"
	"github.com/yourusername/anon-relay-bot/internal/infrastructure/ratelimit"
	"github.com/yourusername/anon-relay-bot/internal/infrastructure/storage"
	"github.com/yourusername/anon-relay-bot/internal/infrastructure/telegram"
	"github.com/yourusername/anon-relay-bot/internal/retry"
	"github.com/yourusername/anon-relay-bot/internal/supervisor"
	"github.com/yourusername/anon-relay-bot/internal/usecase"
)

// Options tashqi bog'liqliklar; bo'sh qiymatlar production standartlari
type Options struct {
	// APIEndpoint tgbotapi endpoint formati, bo'sh bo'lsa api.telegram.org
	APIEndpoint string
	// Spawner worker jarayonlarini yaratadi; nil bo'lsa worker pool ishlamaydi
	Spawner supervisor.Spawner
}

// App koordinator jarayoni: bot, debounce, keep-alive va worker pool
type App struct {
	cfg      *config.Config
	handler  *delivery.BotHandler
	limiter  *ratelimit.Debouncer
	pinger   *keepalive.Pinger
	pool     *supervisor.Supervisor
	contacts repository.ContactRepository
	logger   *zerolog.Logger
}

// New koordinatorni yig'adi. Bot tokeni tekshiriladi (getMe).
func New(cfg *config.Config, opts Options, logger *zerolog.Logger) (*App, error) {
	if err := cfg.ValidateBot(); err != nil {
		return nil, err
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	broadcast, err := entity.ParseTarget(cfg.BroadcastChannel)
	if err != nil {
		return nil, fmt.Errorf("BROADCAST_CHANNEL noto'g'ri: %w", err)
	}

	bot, err := telegram.NewBot(cfg.TelegramToken, opts.APIEndpoint)
	if err != nil {
		return nil, err
	}
	logger.Info().Str("bot", bot.Self.UserName).Msg("bot ulandi")

	contacts, err := openContacts(cfg.ContactsDBPath)
	if err != nil {
		return nil, err
	}
	if cfg.ContactsDBPath != "" {
		logger.Info().Str("db_path", cfg.ContactsDBPath).Msg("kontaktlar bazasi ochildi")
	}

	messenger := telegram.NewMessenger(bot)
	texts := usecase.Texts{OwnerName: cfg.OwnerName, Location: loc}

	relay := usecase.NewRelayUseCase(messenger, contacts, usecase.RelayOptions{
		Broadcast: broadcast,
		Texts:     texts,
		AckRetry:  retry.Policy{Attempts: cfg.AckRetries, Delay: cfg.AckRetryDelay},
	}, logger)
	admin := usecase.NewAdminUseCase(messenger, contacts, usecase.AdminOptions{
		AdminID:   cfg.AdminID,
		Broadcast: broadcast,
		Texts:     texts,
	}, logger)

	limiter := ratelimit.New(cfg.DebounceWindow, cfg.RateLimitTTL)
	router := delivery.NewRouter(limiter, relay, admin, bot.Self.UserName, logger)
	handler := delivery.NewBotHandler(bot, router, delivery.HandlerOptions{
		PollTimeout:     cfg.PollTimeout,
		ConflictBackoff: cfg.ConflictBackoff,
	}, logger)

	a := &App{
		cfg:      cfg,
		handler:  handler,
		limiter:  limiter,
		pinger:   keepalive.New(cfg.KeepAliveURL, cfg.KeepAliveInterval, nil, logger),
		contacts: contacts,
		logger:   logger,
	}

	if opts.Spawner != nil {
		a.pool = supervisor.New(opts.Spawner, supervisor.Options{
			Size:          supervisor.PoolSize(cfg.WorkerCount, runtime.NumCPU()),
			RestartBudget: cfg.RestartBudget,
			RestartWindow: cfg.RestartWindow,
		}, logger)
	}

	return a, nil
}

func openContacts(dbPath string) (repository.ContactRepository, error) {
	if dbPath == "" {
		return storage.NewMemoryContactRepository(), nil
	}
	repo, err := storage.NewSQLiteContactRepository(dbPath)
	if err != nil {
		return nil, fmt.Errorf("init contacts: %w", err)
	}
	return repo, nil
}

// Run barcha komponentlarni ishga tushiradi va ctx tugaguncha bloklaydi.
// Polling yoki worker pool xatosi boshqalarni ham to'xtatadi.
func (a *App) Run(ctx context.Context) error {
	defer a.cleanup()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return a.handler.Start(gctx)
	})
	g.Go(func() error {
		a.limiter.Run(gctx, a.cfg.RateLimitSweep, a.logger)
		return nil
	})
	g.Go(func() error {
		a.pinger.Run(gctx)
		return nil
	})
	if a.pool != nil {
		g.Go(func() error {
			return a.pool.Run(gctx)
		})
	}

	return g.Wait()
}

// WorkerCount ishlayotgan workerlar soni
func (a *App) WorkerCount() int {
	if a.pool == nil {
		return 0
	}
	return a.pool.Size()
}

func (a *App) cleanup() {
	if err := a.contacts.Close(); err != nil {
		a.logger.Error().Err(err).Msg("kontaktlar bazasini yopishda xato")
	}
	a.logger.Info().Msg("koordinator to'xtadi")
}
