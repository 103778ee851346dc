package repository

import (
	"context"
	"errors"

	"github.com/yourusername/anon-relay-bot/internal/domain/entity"
)

// ErrContactNotFound chat ID bo'yicha kontakt yo'q
var ErrContactNotFound = errors.New("kontakt topilmadi")

// ContactRepository foydalanuvchilar ro'yxati bilan ishlash uchun interface
type ContactRepository interface {
	// Touch kontaktni qo'shish yoki oxirgi faollikni yangilash
	Touch(ctx context.Context, contact entity.Contact) error

	// Get chat ID bo'yicha kontaktni olish; yo'q bo'lsa ErrContactNotFound
	Get(ctx context.Context, chatID int64) (*entity.Contact, error)

	// List oxirgi faol kontaktlar (limit <= 0 bo'lsa hammasi)
	List(ctx context.Context, limit int) ([]entity.Contact, error)

	// Count jami kontaktlar soni
	Count(ctx context.Context) (int, error)

	// Close resurslarni bo'shatish
	Close() error
}
