package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// DefaultWindow per-chat debounce oynasi
const DefaultWindow = time.Second

// Debouncer har bir chat uchun oxirgi qayta ishlangan vaqtni saqlaydi va
// oyna ichida kelgan keyingi xabarlarni tashlab yuboradi.
type Debouncer struct {
	mu       sync.Mutex
	lastSeen map[int64]time.Time
	window   time.Duration
	ttl      time.Duration
}

// New yangi Debouncer. ttl dan uzoq jim turgan yozuvlar Sweep da o'chiriladi.
func New(window, ttl time.Duration) *Debouncer {
	if window <= 0 {
		window = DefaultWindow
	}
	if ttl < window {
		ttl = window
	}
	return &Debouncer{
		lastSeen: make(map[int64]time.Time),
		window:   window,
		ttl:      ttl,
	}
}

// ShouldProcess xabarni qayta ishlash kerakmi. Qabul qilinsa now yoziladi.
func (d *Debouncer) ShouldProcess(chatID int64, now time.Time) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if last, ok := d.lastSeen[chatID]; ok && now.Sub(last) < d.window {
		return false
	}
	d.lastSeen[chatID] = now
	return true
}

// Sweep ttl dan eski yozuvlarni o'chiradi va o'chirilganlar sonini qaytaradi.
func (d *Debouncer) Sweep(now time.Time) int {
	d.mu.Lock()
	defer d.mu.Unlock()

	cutoff := now.Add(-d.ttl)
	removed := 0
	for chatID, last := range d.lastSeen {
		if last.Before(cutoff) {
			delete(d.lastSeen, chatID)
			removed++
		}
	}
	return removed
}

// Len saqlanayotgan chatlar soni
func (d *Debouncer) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.lastSeen)
}

// Run ctx tugaguncha har interval da Sweep chaqiradi.
func (d *Debouncer) Run(ctx context.Context, interval time.Duration, logger *zerolog.Logger) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if removed := d.Sweep(now); removed > 0 && logger != nil {
				logger.Debug().Int("removed", removed).Int("remaining", d.Len()).Msg("eski debounce yozuvlari tozalandi")
			}
		}
	}
}
