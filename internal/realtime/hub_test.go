package realtime

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pratik-mahalle/linkboost/internal/auth"
	"github.com/pratik-mahalle/linkboost/internal/domain/user"
	"github.com/pratik-mahalle/linkboost/internal/pkg/logger"
)

const secret = "ws-secret"

func startHub(t *testing.T) (*Hub, string) {
	t.Helper()
	hub := NewHub(secret, nil, logger.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	srv := httptest.NewServer(hub)
	t.Cleanup(func() {
		cancel()
		srv.Close()
	})
	return hub, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, url, userID string) *websocket.Conn {
	t.Helper()
	tok, err := auth.MintToken(userID, userID+"@example.com", user.LevelBasic, secret, time.Hour)
	if err != nil {
		t.Fatalf("failed to mint token: %v", err)
	}
	conn, _, err := websocket.DefaultDialer.Dial(url+"?token="+tok, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	var hello Message
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if err := conn.ReadJSON(&hello); err != nil {
		t.Fatalf("failed to read hello: %v", err)
	}
	if hello.Type != TypeConnected || hello.UserID != userID {
		t.Fatalf("unexpected hello: %+v", hello)
	}
	return conn
}

func TestHub_RejectsMissingToken(t *testing.T) {
	_, url := startHub(t)

	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatal("expected dial to fail")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401, got %v", resp)
	}
}

func TestHub_PublishTargetsUser(t *testing.T) {
	hub, url := startHub(t)
	alice := dial(t, url, "alice")

	hub.Publish("bob", TypeMetricRecorded, map[string]string{"kind": "profile"})
	hub.Publish("alice", TypeMetricRecorded, map[string]string{"kind": "engagement"})

	var msg struct {
		Type   string            `json:"type"`
		UserID string            `json:"userId"`
		Data   map[string]string `json:"data"`
	}
	_ = alice.SetReadDeadline(time.Now().Add(2 * time.Second))
	if err := alice.ReadJSON(&msg); err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if msg.UserID != "alice" || msg.Data["kind"] != "engagement" {
		t.Errorf("received someone else's message: %+v", msg)
	}

	hub.Broadcast("health.report", map[string]string{"status": "healthy"})
	_ = alice.SetReadDeadline(time.Now().Add(2 * time.Second))
	if err := alice.ReadJSON(&msg); err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if msg.Type != "health.report" {
		t.Errorf("type: got %v want %v", msg.Type, "health.report")
	}

	if hub.ClientCount() != 1 {
		t.Errorf("clients: got %v want %v", hub.ClientCount(), 1)
	}
}

func TestOriginChecker(t *testing.T) {
	check := originChecker([]string{"https://app.example.com/"})

	tests := []struct {
		origin string
		host   string
		want   bool
	}{
		{"", "api.example.com", true},
		{"https://app.example.com", "api.example.com", true},
		{"https://evil.example.com", "api.example.com", false},
		{"http://api.example.com", "api.example.com", true},
	}
	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodGet, "/ws", nil)
		r.Host = tt.host
		if tt.origin != "" {
			r.Header.Set("Origin", tt.origin)
		}
		if got := check(r); got != tt.want {
			t.Errorf("origin %q: got %v want %v", tt.origin, got, tt.want)
		}
	}
}
