package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/yourusername/anon-relay-bot/internal/domain/entity"
)

const (
	defaultPollTimeout     = 60
	defaultConflictBackoff = 5 * time.Second
	defaultErrorBackoff    = 3 * time.Second
)

// UpdateSource Telegram getUpdates; *tgbotapi.BotAPI buni bajaradi
type UpdateSource interface {
	GetUpdates(config tgbotapi.UpdateConfig) ([]tgbotapi.Update, error)
}

// Dispatcher bitta kiruvchi xabarni qayta ishlaydi
type Dispatcher interface {
	Dispatch(ctx context.Context, msg entity.InboundMessage)
}

// HandlerOptions polling sozlamalari
type HandlerOptions struct {
	PollTimeout     int
	ConflictBackoff time.Duration
	ErrorBackoff    time.Duration
	Now             func() time.Time
}

// BotHandler Telegram bot handler: long polling va xabarlarni tarqatish
type BotHandler struct {
	source     UpdateSource
	dispatcher Dispatcher
	opts       HandlerOptions
	logger     *zerolog.Logger

	offset   int
	inflight sync.WaitGroup
}

// NewBotHandler yangi bot handler yaratish
func NewBotHandler(source UpdateSource, dispatcher Dispatcher, opts HandlerOptions, logger *zerolog.Logger) *BotHandler {
	if opts.PollTimeout <= 0 {
		opts.PollTimeout = defaultPollTimeout
	}
	if opts.ConflictBackoff <= 0 {
		opts.ConflictBackoff = defaultConflictBackoff
	}
	if opts.ErrorBackoff <= 0 {
		opts.ErrorBackoff = defaultErrorBackoff
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &BotHandler{
		source:     source,
		dispatcher: dispatcher,
		opts:       opts,
		logger:     logger,
	}
}

// Start ctx tugaguncha polling. Qaytishdan oldin ishlayotgan handlerlarni kutadi.
func (h *BotHandler) Start(ctx context.Context) error {
	h.logger.Info().Msg("bot polling boshlandi")
	defer h.inflight.Wait()

	for {
		if ctx.Err() != nil {
			h.logger.Info().Msg("bot to'xtatilmoqda...")
			return nil
		}

		updates, err := h.poll(ctx)
		if err != nil {
			wait := h.opts.ErrorBackoff
			if isConflict(err) {
				// boshqa instans xuddi shu token bilan polling qilmoqda
				h.logger.Warn().Err(err).Dur("backoff", h.opts.ConflictBackoff).Msg("polling conflict (409), polling to'xtatildi")
				wait = h.opts.ConflictBackoff
			} else {
				h.logger.Error().Err(err).Dur("backoff", wait).Msg("polling xatosi")
			}
			if !sleep(ctx, wait) {
				h.logger.Info().Msg("bot to'xtatilmoqda...")
				return nil
			}
			if isConflict(err) {
				h.logger.Info().Msg("polling qayta boshlanmoqda")
			}
			continue
		}

		for _, update := range updates {
			if update.UpdateID >= h.offset {
				h.offset = update.UpdateID + 1
			}
			h.handleUpdate(ctx, update)
		}
	}
}

func (h *BotHandler) poll(ctx context.Context) ([]tgbotapi.Update, error) {
	u := tgbotapi.NewUpdate(h.offset)
	u.Timeout = h.opts.PollTimeout

	type result struct {
		updates []tgbotapi.Update
		err     error
	}
	done := make(chan result, 1)
	go func() {
		updates, err := h.source.GetUpdates(u)
		done <- result{updates, err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-done:
		return r.updates, r.err
	}
}

// handleUpdate har bir xabar alohida goroutine da ishlanadi
func (h *BotHandler) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	msg, ok := toInbound(update.Message, h.opts.Now())
	if !ok {
		return
	}

	handlerCtx := context.WithoutCancel(ctx)
	h.inflight.Add(1)
	go func() {
		defer h.inflight.Done()
		defer func() {
			if r := recover(); r != nil {
				h.logger.Error().
					Str("panic", fmt.Sprint(r)).
					Str("stack", string(debug.Stack())).
					Int64("chat_id", msg.ChatID).
					Msg("xabarni qayta ishlashda kutilmagan xatolik")
			}
		}()
		h.dispatcher.Dispatch(handlerCtx, msg)
	}()
}

// toInbound matn, caption yoki media belgisidan kiruvchi xabar yasaydi.
// Servis xabarlari (a'zo qo'shildi va h.k.) tashlab yuboriladi.
func toInbound(m *tgbotapi.Message, now time.Time) (entity.InboundMessage, bool) {
	if m == nil || m.Chat == nil {
		return entity.InboundMessage{}, false
	}

	text, media := m.Text, ""
	if text == "" {
		media = mediaKind(m)
		text = strings.TrimSpace(m.Caption)
		switch {
		case media == "" && text == "":
			return entity.InboundMessage{}, false
		case media == "":
			media = "caption"
		case text == "":
			text = "[" + media + "]"
		default:
			text = "[" + media + "] " + text
		}
	}

	msg := entity.InboundMessage{
		ID:         uuid.New().String(),
		ChatID:     m.Chat.ID,
		Text:       text,
		Media:      media,
		ReceivedAt: now,
	}
	if m.From != nil {
		msg.Sender = entity.Sender{
			ID:           m.From.ID,
			FirstName:    m.From.FirstName,
			LastName:     m.From.LastName,
			Username:     m.From.UserName,
			LanguageCode: m.From.LanguageCode,
		}
	}
	return msg, true
}

func mediaKind(m *tgbotapi.Message) string {
	switch {
	case len(m.Photo) > 0:
		return "photo"
	case m.Video != nil:
		return "video"
	case m.VideoNote != nil:
		return "video_note"
	case m.Voice != nil:
		return "voice"
	case m.Audio != nil:
		return "audio"
	case m.Animation != nil:
		return "animation"
	case m.Document != nil:
		return "document"
	case m.Sticker != nil:
		return "sticker"
	case m.Contact != nil:
		return "contact"
	case m.Venue != nil:
		return "venue"
	case m.Location != nil:
		return "location"
	case m.Poll != nil:
		return "poll"
	case m.Dice != nil:
		return "dice"
	}
	return ""
}

func isConflict(err error) bool {
	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusConflict
	}
	var valErr tgbotapi.Error
	if errors.As(err, &valErr) {
		return valErr.Code == http.StatusConflict
	}
	return false
}

func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
