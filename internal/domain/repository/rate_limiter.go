package repository

import "time"

// RateLimiter chat bo'yicha debounce
type RateLimiter interface {
	ShouldProcess(chatID int64, now time.Time) bool
}
