package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/yourusername/anon-relay-bot/internal/domain/entity"
	"github.com/yourusername/anon-relay-bot/internal/domain/repository"
)

type memoryContactRepository struct {
	mu       sync.RWMutex
	contacts map[int64]*entity.Contact
}

// NewMemoryContactRepository in-memory kontakt repository yaratish
func NewMemoryContactRepository() repository.ContactRepository {
	return &memoryContactRepository{
		contacts: make(map[int64]*entity.Contact),
	}
}

// Touch kontaktni qo'shish yoki yangilash
func (m *memoryContactRepository) Touch(ctx context.Context, contact entity.Contact) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.contacts[contact.ChatID]
	if !ok {
		c := contact
		if c.Messages <= 0 {
			c.Messages = 1
		}
		if c.FirstSeen.IsZero() {
			c.FirstSeen = c.LastSeen
		}
		m.contacts[contact.ChatID] = &c
		return nil
	}

	mergeContact(existing, contact)
	return nil
}

// mergeContact bo'sh bo'lmagan maydonlarni ko'chiradi
func mergeContact(dst *entity.Contact, src entity.Contact) {
	if src.Username != "" {
		dst.Username = src.Username
	}
	if src.FirstName != "" {
		dst.FirstName = src.FirstName
	}
	if src.LastName != "" {
		dst.LastName = src.LastName
	}
	if src.LanguageCode != "" {
		dst.LanguageCode = src.LanguageCode
	}
	if src.LastSeen.After(dst.LastSeen) {
		dst.LastSeen = src.LastSeen
	}
	if n := src.Messages; n > 0 {
		dst.Messages += n
	} else {
		dst.Messages++
	}
}

// Get chat ID bo'yicha kontaktni olish
func (m *memoryContactRepository) Get(ctx context.Context, chatID int64) (*entity.Contact, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.contacts[chatID]
	if !ok {
		return nil, fmt.Errorf("chat %d: %w", chatID, repository.ErrContactNotFound)
	}
	out := *c
	return &out, nil
}

// List oxirgi faollik bo'yicha kamayish tartibida
func (m *memoryContactRepository) List(ctx context.Context, limit int) ([]entity.Contact, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	all := make([]entity.Contact, 0, len(m.contacts))
	for _, c := range m.contacts {
		all = append(all, *c)
	}

	sort.Slice(all, func(i, j int) bool {
		if all[i].LastSeen.Equal(all[j].LastSeen) {
			return all[i].ChatID < all[j].ChatID
		}
		return all[i].LastSeen.After(all[j].LastSeen)
	})

	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

// Count jami kontaktlar
func (m *memoryContactRepository) Count(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.contacts), nil
}

// Close in-memory uchun hech narsa qilmaydi
func (m *memoryContactRepository) Close() error {
	return nil
}
