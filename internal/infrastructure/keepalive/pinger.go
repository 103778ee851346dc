package keepalive

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// DefaultInterval hosting platformasi jarayonni uxlatib qo'ymasligi uchun
const DefaultInterval = 49 * time.Second

// Pinger belgilangan URL ga davriy GET so'rov yuboradi
type Pinger struct {
	url      string
	interval time.Duration
	client   *http.Client
	logger   *zerolog.Logger
}

// New yangi Pinger. client nil bo'lsa standart klient ishlatiladi.
func New(url string, interval time.Duration, client *http.Client, logger *zerolog.Logger) *Pinger {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if client == nil {
		client = &http.Client{Timeout: interval}
	}
	return &Pinger{
		url:      url,
		interval: interval,
		client:   client,
		logger:   logger,
	}
}

// Run ctx tugaguncha har interval da Ping. Xatolar faqat loglanadi.
func (p *Pinger) Run(ctx context.Context) {
	if p.url == "" {
		p.logger.Info().Msg("keep-alive o'chirilgan: KEEP_ALIVE_URL berilmagan")
		return
	}

	p.logger.Info().Str("url", p.url).Dur("interval", p.interval).Msg("keep-alive ishga tushdi")
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.logger.Debug().Str("url", p.url).Msg("keep-alive so'rovi yuborilmoqda")
			status, err := p.Ping(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				p.logger.Error().Err(err).Str("url", p.url).Msg("keep-alive so'rovi muvaffaqiyatsiz")
				continue
			}
			ev := p.logger.Info()
			if status >= http.StatusBadRequest {
				ev = p.logger.Warn()
			}
			ev.Int("status", status).Msg("keep-alive so'rovi bajarildi")
		}
	}
}

// Ping bitta GET so'rov; javob tanasi o'qib tashlanadi.
func (p *Pinger) Ping(ctx context.Context) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("http get: %w", err)
	}
	defer resp.Body.Close()

	if _, err := io.Copy(io.Discard, resp.Body); err != nil {
		return resp.StatusCode, fmt.Errorf("read body: %w", err)
	}
	return resp.StatusCode, nil
}
