package notifications_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"gifsmith/internal/notifications"
	"gifsmith/internal/testsupport"
)

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Notifications.NtfyTopic = ""
	svc := notifications.NewService(cfg)
	if err := svc.NotifyExportCompleted(context.Background(), "clip.mp4", 3, 0); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
}

func newServer(t *testing.T) (*httptest.Server, *http.Request, *string) {
	t.Helper()
	var captured http.Request
	var body string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = *r
		data, _ := io.ReadAll(r.Body)
		body = string(data)
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)
	return server, &captured, &body
}

func TestNtfyServiceFormatsPayloads(t *testing.T) {
	server, captured, body := newServer(t)
	cfg := testsupport.NewConfig(t, testsupport.WithNtfyTopic(server.URL))
	svc := notifications.NewService(cfg)

	if err := svc.NotifyExportCompleted(context.Background(), "clip.mp4", 2, 1); err != nil {
		t.Fatalf("NotifyExportCompleted: %v", err)
	}
	if got := captured.Header.Get("Title"); got != "Gifsmith - Export Complete (with errors)" {
		t.Fatalf("unexpected title: %q", got)
	}
	if !strings.Contains(*body, "2 succeeded, 1 failed") {
		t.Fatalf("unexpected body: %q", *body)
	}
	if got := captured.Header.Get("Tags"); got != "gifsmith,export,completed" {
		t.Fatalf("unexpected tags: %q", got)
	}
}

func TestNtfyServiceMarksFailuresHighPriority(t *testing.T) {
	server, captured, body := newServer(t)
	cfg := testsupport.NewConfig(t, testsupport.WithNtfyTopic(server.URL))
	svc := notifications.NewService(cfg)

	if err := svc.NotifyExportFailed(context.Background(), "clip.mp4", errors.New("no video stream")); err != nil {
		t.Fatalf("NotifyExportFailed: %v", err)
	}
	if got := captured.Header.Get("Priority"); got != "high" {
		t.Fatalf("unexpected priority: %q", got)
	}
	if !strings.Contains(*body, "no video stream") {
		t.Fatalf("unexpected body: %q", *body)
	}
}

func TestNtfyServiceSurfacesHTTPErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "topic not found", http.StatusNotFound)
	}))
	t.Cleanup(server.Close)

	cfg := testsupport.NewConfig(t, testsupport.WithNtfyTopic(server.URL))
	svc := notifications.NewService(cfg)
	err := svc.TestNotification(context.Background())
	if err == nil || !strings.Contains(err.Error(), "404") {
		t.Fatalf("expected status error, got %v", err)
	}
}
