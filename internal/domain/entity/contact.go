package entity

import "time"

// Contact botga yozgan foydalanuvchi haqidagi yozuv (xabar matni saqlanmaydi)
type Contact struct {
	ChatID       int64
	Username     string
	FirstName    string
	LastName     string
	LanguageCode string
	FirstSeen    time.Time
	LastSeen     time.Time
	Messages     int
}

// ContactFromMessage kiruvchi xabardan kontakt yozuvini tuzish
func ContactFromMessage(msg InboundMessage) Contact {
	return Contact{
		ChatID:       msg.ChatID,
		Username:     msg.Sender.Username,
		FirstName:    msg.Sender.FirstName,
		LastName:     msg.Sender.LastName,
		LanguageCode: msg.Sender.LanguageCode,
		FirstSeen:    msg.ReceivedAt,
		LastSeen:     msg.ReceivedAt,
		Messages:     1,
	}
}
