package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/yourusername/anon-relay-bot/internal/domain/entity"
	"github.com/yourusername/anon-relay-bot/internal/domain/repository"
	"github.com/yourusername/anon-relay-bot/internal/retry"
)

// RelayUseCase foydalanuvchi xabarlarini kanalga uzatish
type RelayUseCase interface {
	// RelayMessage oddiy xabarni kanalga yuborish va foydalanuvchiga tasdiq berish
	RelayMessage(ctx context.Context, msg entity.InboundMessage) error

	// RegisterUser /start: kanalga yangi foydalanuvchi haqida xabar va salomlashish
	RegisterUser(ctx context.Context, msg entity.InboundMessage) error

	// SendHelp /help matnini yuborish
	SendHelp(ctx context.Context, msg entity.InboundMessage) error
}

// RelayOptions relay sozlamalari
type RelayOptions struct {
	Broadcast entity.ChatTarget
	Texts     Texts
	AckRetry  retry.Policy
	Now       func() time.Time
}

type relayUseCase struct {
	messenger   repository.Messenger
	contactRepo repository.ContactRepository
	opts        RelayOptions
	logger      *zerolog.Logger
}

// NewRelayUseCase yangi RelayUseCase yaratish. contactRepo nil bo'lishi mumkin.
func NewRelayUseCase(
	messenger repository.Messenger,
	contactRepo repository.ContactRepository,
	opts RelayOptions,
	logger *zerolog.Logger,
) RelayUseCase {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &relayUseCase{
		messenger:   messenger,
		contactRepo: contactRepo,
		opts:        opts,
		logger:      logger,
	}
}

// RelayMessage ikkala yuborish birga boshlanadi; birortasi xato bersa tasdiq
// retry siyosati bo'yicha qayta yuboriladi.
func (u *relayUseCase) RelayMessage(ctx context.Context, msg entity.InboundMessage) error {
	u.touchContact(ctx, msg)

	notice := entity.OutboundMessage{
		Target: u.opts.Broadcast,
		Text:   u.opts.Texts.RelayNotice(msg, u.opts.Now()),
	}
	ack := entity.OutboundMessage{
		Target:    entity.ChatByID(msg.ChatID),
		Text:      u.opts.Texts.Acknowledgment(),
		ParseMode: entity.ParseModeHTML,
	}

	var g errgroup.Group
	g.Go(func() error { return u.messenger.Send(ctx, notice) })
	g.Go(func() error { return u.messenger.Send(ctx, ack) })

	err := g.Wait()
	if err == nil {
		return nil
	}

	u.logger.Warn().Err(err).Int64("chat_id", msg.ChatID).Str("msg_id", msg.ID).Msg("relay yuborishda xatolik, tasdiq qayta yuboriladi")

	plainAck := entity.OutboundMessage{Target: ack.Target, Text: ack.Text}
	err = retry.Do(ctx, u.opts.AckRetry, func(ctx context.Context) error {
		return u.messenger.Send(ctx, plainAck)
	}, func(n int, err error) {
		u.logger.Warn().Err(err).Int("attempt", n).Int64("chat_id", msg.ChatID).Msg("tasdiq retry muvaffaqiyatsiz")
	})
	if err != nil {
		return fmt.Errorf("acknowledgment retry failed: %w", err)
	}

	u.logger.Info().Int64("chat_id", msg.ChatID).Msg("tasdiq retry orqali yuborildi")
	return nil
}

// RegisterUser kanal xabari xatosi yutib yuboriladi, salomlashish baribir yuboriladi
func (u *relayUseCase) RegisterUser(ctx context.Context, msg entity.InboundMessage) error {
	u.touchContact(ctx, msg)

	notice := entity.OutboundMessage{
		Target: u.opts.Broadcast,
		Text:   u.opts.Texts.NewUserNotice(msg, u.opts.Now()),
	}
	if err := u.messenger.Send(ctx, notice); err != nil {
		u.logger.Error().Err(err).Int64("chat_id", msg.ChatID).Msg("yangi foydalanuvchi xabarini yuborishda xatolik")
	}

	greeting := entity.OutboundMessage{
		Target:    entity.ChatByID(msg.ChatID),
		Text:      u.opts.Texts.Greeting(),
		ParseMode: entity.ParseModeHTML,
	}
	if err := u.messenger.Send(ctx, greeting); err != nil {
		return fmt.Errorf("failed to send greeting: %w", err)
	}
	return nil
}

// SendHelp /help matnini yuborish
func (u *relayUseCase) SendHelp(ctx context.Context, msg entity.InboundMessage) error {
	help := entity.OutboundMessage{
		Target:    entity.ChatByID(msg.ChatID),
		Text:      u.opts.Texts.Help(),
		ParseMode: entity.ParseModeHTML,
	}
	if err := u.messenger.Send(ctx, help); err != nil {
		return fmt.Errorf("failed to send help: %w", err)
	}
	return nil
}

func (u *relayUseCase) touchContact(ctx context.Context, msg entity.InboundMessage) {
	if u.contactRepo == nil {
		return
	}
	if err := u.contactRepo.Touch(ctx, entity.ContactFromMessage(msg)); err != nil {
		u.logger.Warn().Err(err).Int64("chat_id", msg.ChatID).Msg("kontaktni saqlab bo'lmadi")
	}
}
