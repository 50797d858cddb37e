package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/example/roombot/internal/config"
	"github.com/example/roombot/internal/policy"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	dir := t.TempDir()

	rooms := filepath.Join(dir, "rooms.yaml")
	doc := "rooms:\n  - code: A\n    name: 회의실 A\n    capacity: 6\n  - code: B\n    name: 회의실 B\n    capacity: 10\n"
	if err := os.WriteFile(rooms, []byte(doc), 0o600); err != nil {
		t.Fatalf("write rooms file: %v", err)
	}

	return config.Config{
		SQLiteDSN:          filepath.Join(dir, "roombot.db"),
		WebhookToken:       "hook",
		TriggerWords:       []string{"회의실봇"},
		Policy:             policy.Default(),
		RateLimitPerMinute: 30,
		CompletionSchedule: "*/5 * * * *",
		RoomsFile:          rooms,
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewApp_ServesWebhook(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	a, err := newApp(ctx, testConfig(t), discardLogger(), prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("newApp returned error: %v", err)
	}
	a.start()
	t.Cleanup(func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.close(closeCtx); err != nil {
			t.Errorf("close returned error: %v", err)
		}
	})

	body, _ := json.Marshal(map[string]string{
		"token":       "hook",
		"writerName":  "Alice",
		"writerEmail": "alice@example.com",
		"text":        "회의실봇 목록",
	})
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewReader(body)))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Body string `json:"body"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !strings.Contains(resp.Body, "회의실 A") || !strings.Contains(resp.Body, "회의실 B") {
		t.Fatalf("expected seeded rooms in reply, got %q", resp.Body)
	}

	rec = httptest.NewRecorder()
	a.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rec.Body.String(), "roombot_commands_total") {
		t.Fatalf("expected command metrics to be exposed, got %q", rec.Body.String())
	}
}

func TestNewApp_ReseedingIsIdempotent(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		a, err := newApp(ctx, cfg, discardLogger(), prometheus.NewRegistry())
		if err != nil {
			t.Fatalf("newApp run %d returned error: %v", i+1, err)
		}
		rooms, err := a.storage.ListRooms(ctx)
		if err != nil {
			t.Fatalf("list rooms: %v", err)
		}
		if len(rooms) != 2 {
			t.Fatalf("run %d: expected 2 rooms, got %d", i+1, len(rooms))
		}
		if err := a.close(ctx); err != nil {
			t.Fatalf("close returned error: %v", err)
		}
	}
}

func TestNewApp_FailsOnBadInputs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{name: "missing rooms file", mutate: func(c *config.Config) { c.RoomsFile = filepath.Join(t.TempDir(), "none.yaml") }},
		{name: "missing calendar credentials", mutate: func(c *config.Config) { c.CalendarCredentialsFile = filepath.Join(t.TempDir(), "key.json") }},
		{name: "invalid schedule", mutate: func(c *config.Config) { c.CompletionSchedule = "never" }},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cfg := testConfig(t)
			tc.mutate(&cfg)
			if _, err := newApp(context.Background(), cfg, discardLogger(), prometheus.NewRegistry()); err == nil {
				t.Fatal("expected newApp to fail")
			}
		})
	}
}
