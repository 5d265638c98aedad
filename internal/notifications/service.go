package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"gifsmith/internal/config"
)

const userAgent = "Gifsmith-Go/0.1.0"

// Service defines the notification surface exposed to export components.
type Service interface {
	NotifyExportCompleted(ctx context.Context, source string, succeeded, failed int) error
	NotifyExportFailed(ctx context.Context, source string, err error) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

func (n *ntfyService) NotifyExportCompleted(ctx context.Context, source string, succeeded, failed int) error {
	source = strings.TrimSpace(source)
	total := succeeded + failed
	var title, message string
	if failed == 0 {
		title = "Gifsmith - Export Complete"
		message = fmt.Sprintf("Exported %s for %d %s", source, total, pluralPlatforms(total))
	} else {
		title = "Gifsmith - Export Complete (with errors)"
		message = fmt.Sprintf("Exported %s: %d succeeded, %d failed", source, succeeded, failed)
	}
	data := payload{
		title:   title,
		message: message,
		tags:    []string{"gifsmith", "export", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyExportFailed(ctx context.Context, source string, err error) error {
	source = strings.TrimSpace(source)
	detail := "unknown"
	if err != nil {
		detail = strings.TrimSpace(err.Error())
	}
	data := payload{
		title:    "Gifsmith - Export Failed",
		message:  fmt.Sprintf("Export of %s failed: %s", source, detail),
		tags:     []string{"gifsmith", "export", "failed"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Gifsmith - Test",
		message:  "Notification system test",
		tags:     []string{"gifsmith", "test"},
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

func pluralPlatforms(count int) string {
	if count == 1 {
		return "platform"
	}
	return "platforms"
}

type noopService struct{}

func (noopService) NotifyExportCompleted(context.Context, string, int, int) error { return nil }
func (noopService) NotifyExportFailed(context.Context, string, error) error       { return nil }
func (noopService) TestNotification(context.Context) error                        { return nil }
