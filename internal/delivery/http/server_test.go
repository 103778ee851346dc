package http

import (
	"context"
	"fmt"
	"io"
	stdhttp "net/http"
	"net/http/httptest"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/yourusername/anon-relay-bot/internal/log"
)

func TestEngineAnswersAnyPathAndMethod(t *testing.T) {
	engine := NewEngine(4242, log.Nop())

	cases := []struct {
		method string
		path   string
	}{
		{stdhttp.MethodGet, "/"},
		{stdhttp.MethodGet, "/healthz"},
		{stdhttp.MethodPost, "/some/deep/path"},
		{stdhttp.MethodDelete, "/x"},
		{stdhttp.MethodPut, "/"},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, req)

		if rec.Code != stdhttp.StatusOK {
			t.Errorf("%s %s status = %d, want 200", tc.method, tc.path, rec.Code)
		}
		if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
			t.Errorf("%s %s content-type = %q, want text/plain", tc.method, tc.path, ct)
		}
		if body := rec.Body.String(); body != "Server is running on worker PID: 4242\n" {
			t.Errorf("%s %s body = %q", tc.method, tc.path, body)
		}
	}
}

func TestServeListenerStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	ln, err := Listen(ctx, "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}

	errc := make(chan error, 1)
	go func() { errc <- ServeListener(ctx, ln, log.Nop()) }()

	url := fmt.Sprintf("http://%s/ping", ln.Addr())
	var resp *stdhttp.Response
	deadline := time.Now().Add(2 * time.Second)
	for {
		resp, err = stdhttp.Get(url)
		if err == nil || time.Now().After(deadline) {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if !strings.HasPrefix(string(body), "Server is running on worker PID:") {
		t.Errorf("body = %q", body)
	}

	cancel()
	select {
	case err := <-errc:
		if err != nil {
			t.Errorf("ServeListener returned %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestListenSharesPort(t *testing.T) {
	if runtime.GOOS != "linux" && runtime.GOOS != "darwin" && runtime.GOOS != "freebsd" {
		t.Skip("SO_REUSEPORT not available")
	}

	first, err := Listen(context.Background(), "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer first.Close()

	second, err := Listen(context.Background(), first.Addr().String())
	if err != nil {
		t.Fatalf("second Listen on %s: %v", first.Addr(), err)
	}
	second.Close()
}
