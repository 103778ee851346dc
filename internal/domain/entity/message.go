package entity

import (
	"strings"
	"time"
)

// Sender xabar yuboruvchi foydalanuvchi
type Sender struct {
	ID           int64
	FirstName    string
	LastName     string
	Username     string
	LanguageCode string
}

// Handle @username yoki "Anonymous"
func (s Sender) Handle() string {
	if s.Username == "" {
		return "Anonymous"
	}
	return s.Username
}

// FullName ism va familiya
func (s Sender) FullName() string {
	return strings.TrimSpace(s.FirstName + " " + s.LastName)
}

// InboundMessage bitta handler chaqiruvi davomida yashaydigan kiruvchi xabar
type InboundMessage struct {
	ID         string
	ChatID     int64
	Sender     Sender
	Text       string
	// Media "photo", "voice" kabi; oddiy matnli xabarda bo'sh
	Media      string
	ReceivedAt time.Time
}

// IsText faqat matnli xabar kommanda bo'lishi mumkin
func (m InboundMessage) IsText() bool {
	return m.Media == ""
}

// ParseMode Telegram formatlash rejimi
type ParseMode string

const (
	ParseModeNone ParseMode = ""
	ParseModeHTML ParseMode = "HTML"
)

// OutboundMessage kanal yoki chatga yuboriladigan xabar
type OutboundMessage struct {
	Target    ChatTarget
	Text      string
	ParseMode ParseMode
}
