package notify

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/dgnsrekt/deltagraph/internal/config"
	"github.com/dgnsrekt/deltagraph/internal/snapshot"
)

type captured struct {
	path    string
	headers http.Header
	body    string
}

func newNtfyServer(t *testing.T, status int) (*httptest.Server, *captured) {
	t.Helper()
	got := &captured{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		got.path = r.URL.Path
		got.headers = r.Header.Clone()
		got.body = string(body)
		w.WriteHeader(status)
	}))
	t.Cleanup(server.Close)
	return server, got
}

func testConfig(serverURL string) config.NotifyConfig {
	return config.NotifyConfig{
		Enabled:  true,
		Server:   serverURL + "/",
		Topic:    "deltagraph",
		Priority: "default",
		Tags:     "package",
		Token:    "secret",
	}
}

func TestSendSuccess(t *testing.T) {
	server, got := newNtfyServer(t, http.StatusOK)
	client := NewClient(testConfig(server.URL), zap.NewNop())

	result := &snapshot.BatchResult{CaptureID: "abc", Total: 2, Success: 2, Bytes: 512}
	if err := client.SendSuccess(context.Background(), result, 3*time.Second); err != nil {
		t.Fatalf("SendSuccess failed: %v", err)
	}

	if got.path != "/deltagraph" {
		t.Errorf("expected topic path /deltagraph, got %s", got.path)
	}
	if h := got.headers.Get("Title"); h != "Snapshot Complete: 2 symbols" {
		t.Errorf("unexpected title %q", h)
	}
	if h := got.headers.Get("Tags"); h != "package,white_check_mark" {
		t.Errorf("unexpected tags %q", h)
	}
	if h := got.headers.Get("Authorization"); h != "Bearer secret" {
		t.Errorf("unexpected authorization %q", h)
	}
	if !strings.Contains(got.body, "Capture: abc") || !strings.Contains(got.body, "Bytes: 512") {
		t.Errorf("unexpected body %q", got.body)
	}
}

func TestSendFailure(t *testing.T) {
	server, got := newNtfyServer(t, http.StatusOK)
	client := NewClient(testConfig(server.URL), zap.NewNop())

	result := &snapshot.BatchResult{
		Total:  5,
		Failed: 5,
		Errors: []string{"A: boom", "B: boom", "C: boom", "D: boom", "E: boom"},
	}
	if err := client.SendFailure(context.Background(), result, time.Second, errors.New("5 snapshots failed")); err != nil {
		t.Fatalf("SendFailure failed: %v", err)
	}

	if h := got.headers.Get("Priority"); h != "high" {
		t.Errorf("failures should be high priority, got %q", h)
	}
	if !strings.Contains(got.body, "Error: 5 snapshots failed") {
		t.Errorf("body should carry the batch error, got %q", got.body)
	}
	if strings.Contains(got.body, "D: boom") || !strings.Contains(got.body, "... and 2 more errors") {
		t.Errorf("body should list only the first three errors, got %q", got.body)
	}
}

func TestSendRejectedStatus(t *testing.T) {
	server, _ := newNtfyServer(t, http.StatusForbidden)
	client := NewClient(testConfig(server.URL), zap.NewNop())

	err := client.SendSuccess(context.Background(), &snapshot.BatchResult{}, time.Second)
	if err == nil || !strings.Contains(err.Error(), "403") {
		t.Errorf("expected status error, got %v", err)
	}
}

func TestNew(t *testing.T) {
	if _, ok := New(config.NotifyConfig{}, zap.NewNop()).(*NoopNotifier); !ok {
		t.Error("disabled config should produce a NoopNotifier")
	}
	if _, ok := New(testConfig("http://localhost"), zap.NewNop()).(*Client); !ok {
		t.Error("enabled config should produce a Client")
	}
}
