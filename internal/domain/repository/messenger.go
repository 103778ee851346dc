package repository

import (
	"context"

	"github.com/yourusername/anon-relay-bot/internal/domain/entity"
)

// Messenger xabar yuborish transporti uchun interface
type Messenger interface {
	// Send xabarni chat yoki kanalga yuborish
	Send(ctx context.Context, msg entity.OutboundMessage) error
}
