package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Policy muvaffaqiyatsiz chaqiruv necha marta va qancha kutib qayta
// bajarilishi. Attempts birinchi chaqiruvni emas, faqat retrylarni sanaydi.
type Policy struct {
	Attempts   int
	Delay      time.Duration
	Multiplier float64
	MaxDelay   time.Duration
}

// ErrExhausted barcha retrylar muvaffaqiyatsiz bo'lganda oxirgi xatoni o'raydi
var ErrExhausted = errors.New("retries exhausted")

// Backoff n-retry oldidan kutish vaqti (n 1 dan boshlanadi)
func (p Policy) Backoff(n int) time.Duration {
	d := p.Delay
	if d <= 0 {
		return 0
	}
	for i := 1; i < n && p.Multiplier > 1; i++ {
		d = time.Duration(float64(d) * p.Multiplier)
		if p.MaxDelay > 0 && d >= p.MaxDelay {
			return p.MaxDelay
		}
	}
	if p.MaxDelay > 0 && d > p.MaxDelay {
		d = p.MaxDelay
	}
	return d
}

// Do fn ni ko'pi bilan p.Attempts marta chaqiradi, har n-retry oldidan
// Backoff(n) kutadi. onRetry har bir muvaffaqiyatsiz retryni ko'radi (loglash uchun).
func Do(ctx context.Context, p Policy, fn func(ctx context.Context) error, onRetry func(n int, err error)) error {
	if fn == nil {
		return nil
	}
	if p.Attempts <= 0 {
		return fmt.Errorf("%w: no retries configured", ErrExhausted)
	}

	var last error
	for n := 1; n <= p.Attempts; n++ {
		if wait := p.Backoff(n); wait > 0 {
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}

		err := fn(ctx)
		if err == nil {
			return nil
		}
		last = err
		if onRetry != nil {
			onRetry(n, err)
		}
	}
	return fmt.Errorf("%w after %d attempt(s): %w", ErrExhausted, p.Attempts, last)
}
