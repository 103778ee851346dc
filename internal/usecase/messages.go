package usecase

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/yourusername/anon-relay-bot/internal/domain/entity"
)

const timestampLayout = "02.01.2006, 15:04:05"

const (
	msgAdminOnly      = "Bu kommanda faqat admin uchun."
	msgReplyUsage     = "Usage: /reply [chat_id] [message]\nExample: /reply 123456789 Hello, how can I help you?"
	msgReplySent      = "Reply sent successfully!"
	msgReplyFailed    = "Error sending reply. Please check the chat ID."
	msgNoContacts     = "Hozircha foydalanuvchilar yo'q."
	msgContactsFail   = "Foydalanuvchilar ro'yxatini olib bo'lmadi."
	msgUsersUsage     = "Usage: /users [chat_id]"
	msgContactMissing = "Bu chat ID bo'yicha foydalanuvchi topilmadi."
	helpText          = "Bot kommandalari:\n\n/start - Ishga tushirish\n/help - Yordam olish"
)

// Texts foydalanuvchiga ko'rinadigan matnlar
type Texts struct {
	OwnerName string
	Location  *time.Location
}

func (t Texts) stamp(ts time.Time) string {
	loc := t.Location
	if loc == nil {
		loc = time.Local
	}
	return ts.In(loc).Format(timestampLayout)
}

func (t Texts) owner() string {
	if strings.TrimSpace(t.OwnerName) == "" {
		return "Admin"
	}
	return html.EscapeString(t.OwnerName)
}

// Acknowledgment relay qilingan xabar uchun tasdiq
func (t Texts) Acknowledgment() string {
	return fmt.Sprintf("Xabaringiz anonim tarzda %sga yetkazildi! Tez orada javob olasiz.", t.owner())
}

// Greeting /start javobi
func (t Texts) Greeting() string {
	return fmt.Sprintf("Assalomu alaykum! Siz %s bilan aloqaga chiqdingiz. Xabaringizni qoldiring, tez orada javob olasiz.", t.owner())
}

// Help /help javobi
func (t Texts) Help() string {
	return helpText
}

// RelayNotice kanalga yuboriladigan yangi xabar yozuvi
func (t Texts) RelayNotice(msg entity.InboundMessage, at time.Time) string {
	var sb strings.Builder
	sb.WriteString("Yangi Xabar:\n\n")
	sb.WriteString(fmt.Sprintf("👤 Foydalanuvchi linki: @%s\n", msg.Sender.Handle()))
	sb.WriteString(fmt.Sprintf("📱 Chat ID: %d\n", msg.ChatID))
	sb.WriteString(fmt.Sprintf("👤 Ism: %s\n", msg.Sender.FullName()))
	sb.WriteString(fmt.Sprintf("💬 Xabar: %s\n", msg.Text))
	sb.WriteString(fmt.Sprintf("⏰ Vaqt: %s", t.stamp(at)))
	return sb.String()
}

// NewUserNotice /start bosgan foydalanuvchi haqida yozuv
func (t Texts) NewUserNotice(msg entity.InboundMessage, at time.Time) string {
	locale := msg.Sender.LanguageCode
	if locale == "" {
		locale = "Aniqlanmadi"
	}

	var sb strings.Builder
	sb.WriteString("🆕 Yangi Foydalanuvchi!\n\n")
	sb.WriteString(fmt.Sprintf("👤 Username: @%s\n", msg.Sender.Handle()))
	sb.WriteString(fmt.Sprintf("📱 Chat ID: %d\n", msg.ChatID))
	sb.WriteString(fmt.Sprintf("👤 Ism: %s\n", msg.Sender.FullName()))
	sb.WriteString(fmt.Sprintf("📍 Tili: %s\n", locale))
	sb.WriteString(fmt.Sprintf("⏰ Qo'shilgan vaqt: %s", t.stamp(at)))
	return sb.String()
}

// ReplyAudit admin javobining kanaldagi nusxasi
func (t Texts) ReplyAudit(target entity.ChatTarget, body string, at time.Time) string {
	var sb strings.Builder
	sb.WriteString("Admin Javobi:\n\n")
	sb.WriteString(fmt.Sprintf("📱 Chat ID: %sga\n", target))
	sb.WriteString(fmt.Sprintf("💬 Reply: %s\n", body))
	sb.WriteString(fmt.Sprintf("⏰ Vaqt: %s", t.stamp(at)))
	return sb.String()
}

// ContactList /users javobi
func (t Texts) ContactList(contacts []entity.Contact, total int) string {
	if len(contacts) == 0 {
		return msgNoContacts
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("👥 Foydalanuvchilar: %d ta (oxirgi %d)\n\n", total, len(contacts)))
	for i, c := range contacts {
		handle := c.Username
		if handle == "" {
			handle = "Anonymous"
		}
		name := strings.TrimSpace(c.FirstName + " " + c.LastName)
		sb.WriteString(fmt.Sprintf("%d. @%s | %d | %s | %d ta xabar | %s\n",
			i+1, handle, c.ChatID, name, c.Messages, t.stamp(c.LastSeen)))
	}
	return strings.TrimRight(sb.String(), "\n")
}

// ContactDetail /users <chat_id> javobi
func (t Texts) ContactDetail(c entity.Contact) string {
	handle := c.Username
	if handle == "" {
		handle = "Anonymous"
	}
	locale := c.LanguageCode
	if locale == "" {
		locale = "Aniqlanmadi"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("👤 Foydalanuvchi linki: @%s\n", handle))
	sb.WriteString(fmt.Sprintf("📱 Chat ID: %d\n", c.ChatID))
	sb.WriteString(fmt.Sprintf("👤 Ism: %s\n", strings.TrimSpace(c.FirstName+" "+c.LastName)))
	sb.WriteString(fmt.Sprintf("🌐 Til: %s\n", locale))
	sb.WriteString(fmt.Sprintf("💬 Xabarlar: %d ta\n", c.Messages))
	sb.WriteString(fmt.Sprintf("🕐 Birinchi: %s\n", t.stamp(c.FirstSeen)))
	sb.WriteString(fmt.Sprintf("⏰ Oxirgi: %s", t.stamp(c.LastSeen)))
	return sb.String()
}
