package notifications_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"hopper/internal/config"
	"hopper/internal/notifications"
)

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = ""
	svc := notifications.NewService(&cfg)
	if err := svc.BatchCompleted(context.Background(), "/uploads/a", 3); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
}

type capturedRequest struct {
	title    string
	tags     string
	priority string
	body     string
}

func captureServer(t *testing.T, captured *capturedRequest) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("unexpected method: %s", r.Method)
		}
		captured.title = r.Header.Get("Title")
		captured.tags = r.Header.Get("Tags")
		captured.priority = r.Header.Get("Priority")
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Fatalf("read body: %v", err)
		}
		captured.body = string(body)
		_ = r.Body.Close()
		w.WriteHeader(http.StatusOK)
	}))
}

func TestNtfyServiceFormatsPayloads(t *testing.T) {
	tests := []struct {
		name           string
		send           func(svc notifications.Service) error
		expectTitle    string
		expectMessage  string
		expectTags     string
		expectPriority string
	}{
		{
			name: "session started",
			send: func(svc notifications.Service) error {
				return svc.SessionStarted(context.Background(), "/mnt/uploads")
			},
			expectTitle:   "Hopper - Watching",
			expectMessage: "Watching /mnt/uploads for uploads",
			expectTags:    "hopper,session,started",
		},
		{
			name: "session stopped",
			send: func(svc notifications.Service) error {
				return svc.SessionStopped(context.Background())
			},
			expectTitle:   "Hopper - Stopped",
			expectMessage: "Upload watching stopped",
			expectTags:    "hopper,session,stopped",
		},
		{
			name: "batch started",
			send: func(svc notifications.Service) error {
				return svc.BatchStarted(context.Background(), "/mnt/uploads/shoot-a")
			},
			expectTitle:   "Hopper - Upload Started",
			expectMessage: "📤 Upload started: /mnt/uploads/shoot-a",
			expectTags:    "hopper,upload,started",
		},
		{
			name: "batch completed",
			send: func(svc notifications.Service) error {
				return svc.BatchCompleted(context.Background(), "/mnt/uploads/shoot-a", 4)
			},
			expectTitle:    "Hopper - Upload Complete",
			expectMessage:  "✅ Upload complete: 4 files in /mnt/uploads/shoot-a",
			expectTags:     "hopper,upload,completed",
			expectPriority: "high",
		},
		{
			name: "test notification",
			send: func(svc notifications.Service) error {
				return svc.TestNotification(context.Background())
			},
			expectTitle:    "Hopper - Test",
			expectMessage:  "🧪 Notification system test",
			expectTags:     "hopper,test",
			expectPriority: "low",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var captured capturedRequest
			server := captureServer(t, &captured)
			defer server.Close()

			cfg := config.Default()
			cfg.Notifications.NtfyTopic = server.URL
			cfg.Notifications.RequestTimeout = 5

			svc := notifications.NewService(&cfg)
			if err := tc.send(svc); err != nil {
				t.Fatalf("notification returned error: %v", err)
			}

			if captured.title != tc.expectTitle {
				t.Fatalf("expected title %q, got %q", tc.expectTitle, captured.title)
			}
			if captured.body != tc.expectMessage {
				t.Fatalf("expected message %q, got %q", tc.expectMessage, captured.body)
			}
			if captured.tags != tc.expectTags {
				t.Fatalf("expected tags %q, got %q", tc.expectTags, captured.tags)
			}
			if captured.priority != tc.expectPriority {
				t.Fatalf("expected priority %q, got %q", tc.expectPriority, captured.priority)
			}
		})
	}
}

func TestNtfyServiceHonorsToggles(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("unexpected call for suppressed notification: %s", r.URL.String())
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	cfg.Notifications.NotifyOnStart = false
	cfg.Notifications.NotifyOnComplete = false

	svc := notifications.NewService(&cfg)
	if err := svc.BatchStarted(context.Background(), "/mnt/uploads/a"); err != nil {
		t.Fatalf("expected suppressed batch start to return nil, got %v", err)
	}
	if err := svc.BatchCompleted(context.Background(), "/mnt/uploads/a", 2); err != nil {
		t.Fatalf("expected suppressed batch complete to return nil, got %v", err)
	}
}

func TestNtfyServiceResolvesTopicAgainstBaseURL(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = "hopper-alerts"
	cfg.Notifications.NtfyBaseURL = server.URL + "/"

	svc := notifications.NewService(&cfg)
	if err := svc.TestNotification(context.Background()); err != nil {
		t.Fatalf("notification returned error: %v", err)
	}
	if gotPath != "/hopper-alerts" {
		t.Fatalf("expected topic path /hopper-alerts, got %q", gotPath)
	}
}

func TestNtfyServiceReportsHTTPFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "topic not allowed", http.StatusForbidden)
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL

	svc := notifications.NewService(&cfg)
	if err := svc.TestNotification(context.Background()); err == nil {
		t.Fatal("expected error for HTTP failure status")
	}
}
