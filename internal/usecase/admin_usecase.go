package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/yourusername/anon-relay-bot/internal/domain/entity"
	"github.com/yourusername/anon-relay-bot/internal/domain/repository"
)

const defaultContactListLimit = 20

// AdminUseCase admin bilan bog'liq business logic
type AdminUseCase interface {
	// IsAdmin foydalanuvchi admin ekanligini tekshirish
	IsAdmin(userID int64) bool

	// Reply /reply <chat_id> <matn> kommandasini bajarish
	Reply(ctx context.Context, msg entity.InboundMessage) error

	// RejectNonAdmin admin bo'lmagan foydalanuvchiga rad javobi
	RejectNonAdmin(ctx context.Context, msg entity.InboundMessage) error

	// ListContacts /users: oxirgi faol foydalanuvchilar ro'yxati,
	// /users <chat_id>: bitta foydalanuvchi haqida batafsil
	ListContacts(ctx context.Context, msg entity.InboundMessage) error
}

// AdminOptions admin sozlamalari
type AdminOptions struct {
	AdminID      int64
	Broadcast    entity.ChatTarget
	Texts        Texts
	ContactLimit int
	Now          func() time.Time
}

type adminUseCase struct {
	messenger   repository.Messenger
	contactRepo repository.ContactRepository
	opts        AdminOptions
	logger      *zerolog.Logger
}

// NewAdminUseCase yangi AdminUseCase yaratish
func NewAdminUseCase(
	messenger repository.Messenger,
	contactRepo repository.ContactRepository,
	opts AdminOptions,
	logger *zerolog.Logger,
) AdminUseCase {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.ContactLimit <= 0 {
		opts.ContactLimit = defaultContactListLimit
	}
	return &adminUseCase{
		messenger:   messenger,
		contactRepo: contactRepo,
		opts:        opts,
		logger:      logger,
	}
}

// IsAdmin aniq ID mosligi
func (u *adminUseCase) IsAdmin(userID int64) bool {
	return u.opts.AdminID != 0 && userID == u.opts.AdminID
}

// Reply foydalanuvchiga javob va kanalga audit nusxasi birga yuboriladi.
// Ikkalasi tranzaksiya emas: biri o'tib, ikkinchisi yiqilishi mumkin.
func (u *adminUseCase) Reply(ctx context.Context, msg entity.InboundMessage) error {
	adminChat := entity.ChatByID(msg.ChatID)

	fields, body := splitCommand(msg.Text, 2)
	if len(fields) < 2 || body == "" {
		return u.send(ctx, adminChat, msgReplyUsage)
	}

	target, err := entity.ParseTarget(fields[1])
	if err != nil {
		u.logger.Warn().Err(err).Str("target", fields[1]).Msg("reply manzili noto'g'ri")
		return u.send(ctx, adminChat, msgReplyFailed)
	}

	var g errgroup.Group
	g.Go(func() error {
		return u.messenger.Send(ctx, entity.OutboundMessage{Target: target, Text: body})
	})
	g.Go(func() error {
		return u.messenger.Send(ctx, entity.OutboundMessage{
			Target: u.opts.Broadcast,
			Text:   u.opts.Texts.ReplyAudit(target, body, u.opts.Now()),
		})
	})

	if err := g.Wait(); err != nil {
		u.logger.Error().Err(err).Str("target", target.String()).Str("msg_id", msg.ID).Msg("reply yuborishda xatolik")
		return u.send(ctx, adminChat, msgReplyFailed)
	}

	u.logger.Info().Str("target", target.String()).Str("msg_id", msg.ID).Msg("admin javobi yuborildi")
	return u.send(ctx, adminChat, msgReplySent)
}

// RejectNonAdmin admin bo'lmagan foydalanuvchiga rad javobi
func (u *adminUseCase) RejectNonAdmin(ctx context.Context, msg entity.InboundMessage) error {
	return u.send(ctx, entity.ChatByID(msg.ChatID), msgAdminOnly)
}

// ListContacts /users yoki /users <chat_id>
func (u *adminUseCase) ListContacts(ctx context.Context, msg entity.InboundMessage) error {
	adminChat := entity.ChatByID(msg.ChatID)
	if u.contactRepo == nil {
		return u.send(ctx, adminChat, msgNoContacts)
	}

	if fields, _ := splitCommand(msg.Text, 2); len(fields) == 2 {
		return u.showContact(ctx, adminChat, fields[1])
	}

	contacts, err := u.contactRepo.List(ctx, u.opts.ContactLimit)
	if err != nil {
		u.logger.Error().Err(err).Msg("kontaktlar ro'yxatini olishda xatolik")
		return u.send(ctx, adminChat, msgContactsFail)
	}
	total, err := u.contactRepo.Count(ctx)
	if err != nil {
		total = len(contacts)
	}

	return u.send(ctx, adminChat, u.opts.Texts.ContactList(contacts, total))
}

func (u *adminUseCase) showContact(ctx context.Context, adminChat entity.ChatTarget, rawID string) error {
	chatID, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return u.send(ctx, adminChat, msgUsersUsage)
	}

	contact, err := u.contactRepo.Get(ctx, chatID)
	if errors.Is(err, repository.ErrContactNotFound) {
		return u.send(ctx, adminChat, msgContactMissing)
	}
	if err != nil {
		u.logger.Error().Err(err).Int64("target_chat_id", chatID).Msg("kontaktni olishda xatolik")
		return u.send(ctx, adminChat, msgContactsFail)
	}
	return u.send(ctx, adminChat, u.opts.Texts.ContactDetail(*contact))
}

func (u *adminUseCase) send(ctx context.Context, target entity.ChatTarget, text string) error {
	if err := u.messenger.Send(ctx, entity.OutboundMessage{Target: target, Text: text}); err != nil {
		return fmt.Errorf("failed to send message to %s: %w", target, err)
	}
	return nil
}

// splitCommand matndan dastlabki n ta so'zni va qolgan qismini (ichki bo'shliqlar
// saqlangan holda) ajratadi.
func splitCommand(text string, n int) ([]string, string) {
	rest := strings.TrimSpace(text)
	fields := make([]string, 0, n)
	for len(fields) < n && rest != "" {
		end := strings.IndexFunc(rest, unicode.IsSpace)
		if end < 0 {
			fields = append(fields, rest)
			rest = ""
			break
		}
		fields = append(fields, rest[:end])
		rest = strings.TrimLeftFunc(rest[end:], unicode.IsSpace)
	}
	return fields, strings.TrimSpace(rest)
}
