package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"hopper/internal/config"
)

const userAgent = "Hopper/0.1.0"

// Service defines the notification surface exposed to the daemon.
type Service interface {
	SessionStarted(ctx context.Context, folder string) error
	SessionStopped(ctx context.Context) error
	BatchStarted(ctx context.Context, folder string) error
	BatchCompleted(ctx context.Context, folder string, fileCount int) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	// Topics may be bare names resolved against the base URL, or full URLs
	// for self-hosted servers.
	endpoint := topic
	if !strings.Contains(topic, "://") {
		base := strings.TrimSpace(cfg.Notifications.NtfyBaseURL)
		if base == "" {
			base = "https://ntfy.sh"
		}
		endpoint = strings.TrimRight(base, "/") + "/" + topic
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client := &http.Client{Timeout: timeout}
	return &ntfyService{
		endpoint:         endpoint,
		client:           client,
		notifyOnStart:    cfg.Notifications.NotifyOnStart,
		notifyOnComplete: cfg.Notifications.NotifyOnComplete,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint         string
	client           *http.Client
	notifyOnStart    bool
	notifyOnComplete bool
}

func (n *ntfyService) SessionStarted(ctx context.Context, folder string) error {
	folder = strings.TrimSpace(folder)
	data := payload{
		title:   "Hopper - Watching",
		message: fmt.Sprintf("Watching %s for uploads", folder),
		tags:    []string{"hopper", "session", "started"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) SessionStopped(ctx context.Context) error {
	data := payload{
		title:   "Hopper - Stopped",
		message: "Upload watching stopped",
		tags:    []string{"hopper", "session", "stopped"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) BatchStarted(ctx context.Context, folder string) error {
	if !n.notifyOnStart {
		return nil
	}
	folder = strings.TrimSpace(folder)
	data := payload{
		title:   "Hopper - Upload Started",
		message: fmt.Sprintf("📤 Upload started: %s", folder),
		tags:    []string{"hopper", "upload", "started"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) BatchCompleted(ctx context.Context, folder string, fileCount int) error {
	if !n.notifyOnComplete {
		return nil
	}
	folder = strings.TrimSpace(folder)
	data := payload{
		title:    "Hopper - Upload Complete",
		message:  fmt.Sprintf("✅ Upload complete: %d files in %s", fileCount, folder),
		tags:     []string{"hopper", "upload", "completed"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Hopper - Test",
		message:  "🧪 Notification system test",
		tags:     []string{"hopper", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) SessionStarted(context.Context, string) error      { return nil }
func (noopService) SessionStopped(context.Context) error              { return nil }
func (noopService) BatchStarted(context.Context, string) error        { return nil }
func (noopService) BatchCompleted(context.Context, string, int) error { return nil }
func (noopService) TestNotification(context.Context) error            { return nil }
