package telegram

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/yourusername/anon-relay-bot/internal/domain/entity"
)

const getMeResponse = `{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"relay","username":"relay_bot"}}`

type sentForm struct {
	chatID    string
	text      string
	parseMode string
}

// fakeAPI getMe va sendMessage ga javob beradigan test server
type fakeAPI struct {
	mu     sync.Mutex
	sent   []sentForm
	failOn string
}

func (f *fakeAPI) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/getMe"):
			w.Write([]byte(getMeResponse))
		case strings.HasSuffix(r.URL.Path, "/sendMessage"):
			r.ParseForm()
			form := sentForm{
				chatID:    r.FormValue("chat_id"),
				text:      r.FormValue("text"),
				parseMode: r.FormValue("parse_mode"),
			}
			f.mu.Lock()
			f.sent = append(f.sent, form)
			f.mu.Unlock()

			if form.chatID == f.failOn {
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte(`{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`))
				return
			}
			w.Write([]byte(`{"ok":true,"result":{"message_id":1,"date":0,"chat":{"id":1,"type":"private"}}}`))
		default:
			t.Errorf("unexpected path: %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}
}

func newTestMessenger(t *testing.T, api *fakeAPI) *botMessenger {
	t.Helper()
	server := httptest.NewServer(api.handler(t))
	t.Cleanup(server.Close)

	bot, err := NewBot("test-token", server.URL+"/bot%s/%s")
	if err != nil {
		t.Fatalf("NewBot: %v", err)
	}
	return NewMessenger(bot).(*botMessenger)
}

func TestMessengerSendToChat(t *testing.T) {
	api := &fakeAPI{}
	m := newTestMessenger(t, api)

	err := m.Send(context.Background(), entity.OutboundMessage{
		Target:    entity.ChatByID(555),
		Text:      "Hello there",
		ParseMode: entity.ParseModeHTML,
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}

	if len(api.sent) != 1 {
		t.Fatalf("sent %d, want 1", len(api.sent))
	}
	got := api.sent[0]
	if got.chatID != "555" || got.text != "Hello there" || got.parseMode != "HTML" {
		t.Errorf("sent %+v", got)
	}
}

func TestMessengerSendToChannel(t *testing.T) {
	api := &fakeAPI{}
	m := newTestMessenger(t, api)

	err := m.Send(context.Background(), entity.OutboundMessage{
		Target: entity.ChatTarget{Username: "@relay_feed"},
		Text:   "notice",
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if got := api.sent[0]; got.chatID != "@relay_feed" || got.parseMode != "" {
		t.Errorf("sent %+v", got)
	}
}

func TestMessengerSendAPIError(t *testing.T) {
	api := &fakeAPI{failOn: "404"}
	m := newTestMessenger(t, api)

	err := m.Send(context.Background(), entity.OutboundMessage{Target: entity.ChatByID(404), Text: "x"})
	if err == nil {
		t.Fatal("expected error for API error response")
	}
	if !strings.Contains(err.Error(), "chat not found") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestMessengerSendCancelled(t *testing.T) {
	api := &fakeAPI{}
	m := newTestMessenger(t, api)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := m.Send(ctx, entity.OutboundMessage{Target: entity.ChatByID(1), Text: "x"}); err == nil {
		t.Error("Send with cancelled context = nil error")
	}
	if len(api.sent) != 0 {
		t.Errorf("cancelled send reached the API")
	}
}

func TestNewBotRejectsBadToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"ok":false,"error_code":401,"description":"Unauthorized"}`))
	}))
	defer server.Close()

	if _, err := NewBot("bad", server.URL+"/bot%s/%s"); err == nil {
		t.Error("NewBot(bad token) = nil error")
	}
}
