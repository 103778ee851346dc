package http

import (
	"context"
	"errors"
	"fmt"
	"net"
	stdhttp "net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 5 * time.Second
)

// NewEngine har qanday yo'l va metodga 200 text/plain javob qaytaradigan engine
func NewEngine(pid int, logger *zerolog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(LoggerMiddleware(logger))
	r.Any("/*path", statusHandler(pid))
	return r
}

func statusHandler(pid int) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.String(stdhttp.StatusOK, "Server is running on worker PID: %d\n", pid)
	}
}

// LoggerMiddleware so'rovlarni zerolog orqali loglaydi
func LoggerMiddleware(logger *zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("HTTP so'rov")
	}
}

// Listen SO_REUSEPORT bilan tinglash: bir nechta worker bitta portni bo'lishadi
func Listen(ctx context.Context, addr string) (net.Listener, error) {
	lc := net.ListenConfig{Control: reusePortControl}
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", addr, err)
	}
	return ln, nil
}

// Serve ctx tugaguncha HTTP javob beradi, keyin serverni yumshoq to'xtatadi
func Serve(ctx context.Context, addr string, logger *zerolog.Logger) error {
	ln, err := Listen(ctx, addr)
	if err != nil {
		return err
	}
	return ServeListener(ctx, ln, logger)
}

// ServeListener tayyor listener ustida Serve
func ServeListener(ctx context.Context, ln net.Listener, logger *zerolog.Logger) error {
	server := &stdhttp.Server{
		Handler:           NewEngine(os.Getpid(), logger),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", ln.Addr().String()).Msg("worker HTTP server tinglamoqda")
		if err := server.Serve(ln); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		logger.Info().Msg("worker HTTP server to'xtatilmoqda")
		if err := server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return <-serverErr
	}
}
