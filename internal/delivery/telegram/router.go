package telegram

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/yourusername/anon-relay-bot/internal/domain/entity"
	"github.com/yourusername/anon-relay-bot/internal/domain/repository"
	"github.com/yourusername/anon-relay-bot/internal/usecase"
)

const (
	cmdStart = "/start"
	cmdHelp  = "/help"
	cmdReply = "/reply"
	cmdUsers = "/users"
)

// Router kiruvchi xabarni debounce dan o'tkazib, kommanda yoki relay ga yo'naltiradi
type Router struct {
	limiter repository.RateLimiter
	relay   usecase.RelayUseCase
	admin   usecase.AdminUseCase
	botName string
	logger  *zerolog.Logger
}

// NewRouter yangi Router. botName "@relay_bot" kabi suffikslarni tanish uchun.
func NewRouter(
	limiter repository.RateLimiter,
	relay usecase.RelayUseCase,
	admin usecase.AdminUseCase,
	botName string,
	logger *zerolog.Logger,
) *Router {
	return &Router{
		limiter: limiter,
		relay:   relay,
		admin:   admin,
		botName: strings.TrimPrefix(botName, "@"),
		logger:  logger,
	}
}

// Dispatch bitta xabarni qayta ishlash. Xatolar loglanadi, yuqoriga chiqmaydi.
func (r *Router) Dispatch(ctx context.Context, msg entity.InboundMessage) {
	if !r.limiter.ShouldProcess(msg.ChatID, msg.ReceivedAt) {
		r.logger.Debug().Int64("chat_id", msg.ChatID).Msg("debounce: xabar tashlab yuborildi")
		return
	}

	var command string
	isCommand := false
	if msg.IsText() {
		command, isCommand = parseCommand(msg.Text, r.botName)
	}
	if !isCommand {
		if err := r.relay.RelayMessage(ctx, msg); err != nil {
			r.logger.Error().Err(err).Int64("chat_id", msg.ChatID).Str("msg_id", msg.ID).Msg("xabarni relay qilishda xatolik")
		}
		return
	}

	var err error
	switch command {
	case cmdStart:
		err = r.relay.RegisterUser(ctx, msg)
	case cmdHelp:
		err = r.relay.SendHelp(ctx, msg)
	case cmdReply:
		if r.admin.IsAdmin(msg.Sender.ID) {
			err = r.admin.Reply(ctx, msg)
		} else {
			err = r.admin.RejectNonAdmin(ctx, msg)
		}
	case cmdUsers:
		if r.admin.IsAdmin(msg.Sender.ID) {
			err = r.admin.ListContacts(ctx, msg)
		} else {
			err = r.admin.RejectNonAdmin(ctx, msg)
		}
	default:
		r.logger.Debug().Str("command", command).Int64("chat_id", msg.ChatID).Msg("noma'lum kommanda")
		return
	}

	if err != nil {
		r.logger.Error().Err(err).Str("command", command).Int64("chat_id", msg.ChatID).Str("msg_id", msg.ID).Msg("kommandani bajarishda xatolik")
	}
}

// parseCommand matnning birinchi so'zi "/" bilan boshlansa kommanda hisoblanadi.
// "/start@relay_bot" shakli faqat o'z botimiz nomi bilan qabul qilinadi.
func parseCommand(text, botName string) (string, bool) {
	fields := strings.Fields(text)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return "", false
	}

	command := fields[0]
	if at := strings.IndexByte(command, '@'); at > 0 {
		mention := command[at+1:]
		command = command[:at]
		if botName != "" && !strings.EqualFold(mention, botName) {
			return "", true
		}
	}
	return command, true
}
