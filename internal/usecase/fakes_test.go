package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/yourusername/anon-relay-bot/internal/domain/entity"
	"github.com/yourusername/anon-relay-bot/internal/domain/repository"
	"github.com/yourusername/anon-relay-bot/internal/infrastructure/storage"
	"github.com/yourusername/anon-relay-bot/internal/log"
)

var (
	errSend     = errors.New("telegram: Bad Request")
	fixedNow    = time.Date(2025, 3, 8, 14, 30, 0, 0, time.UTC)
	broadcastTo = entity.ChatTarget{Username: "@relay_feed"}
)

type fakeMessenger struct {
	mu   sync.Mutex
	sent []entity.OutboundMessage
	// failures[target]: shu manzilga yuborish necha marta xato berishi
	failures map[string]int
}

func newFakeMessenger() *fakeMessenger {
	return &fakeMessenger{failures: make(map[string]int)}
}

func (f *fakeMessenger) failNext(target entity.ChatTarget, times int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[target.String()] = times
}

func (f *fakeMessenger) Send(_ context.Context, msg entity.OutboundMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.sent = append(f.sent, msg)
	key := msg.Target.String()
	if f.failures[key] > 0 {
		f.failures[key]--
		return errSend
	}
	return nil
}

func (f *fakeMessenger) messages() []entity.OutboundMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]entity.OutboundMessage, len(f.sent))
	copy(out, f.sent)
	return out
}

func (f *fakeMessenger) sentTo(target entity.ChatTarget) []entity.OutboundMessage {
	var out []entity.OutboundMessage
	for _, m := range f.messages() {
		if m.Target == target {
			out = append(out, m)
		}
	}
	return out
}

func testTexts() Texts {
	return Texts{OwnerName: "Abdurahmon", Location: time.UTC}
}

func inbound(chatID int64, text string) entity.InboundMessage {
	return entity.InboundMessage{
		ID:     "test-msg",
		ChatID: chatID,
		Sender: entity.Sender{
			ID:           chatID,
			FirstName:    "Ali",
			LastName:     "Valiyev",
			Username:     "ali_v",
			LanguageCode: "uz",
		},
		Text:       text,
		ReceivedAt: fixedNow,
	}
}

func newContacts() repository.ContactRepository {
	return storage.NewMemoryContactRepository()
}

var nopLogger = log.Nop()
