package capture

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"ddlcal/internal/config"
)

func TestOptionsDefaults(t *testing.T) {
	if _, err := (Options{OutputPath: "x.png"}).withDefaults(); err == nil {
		t.Fatalf("expected missing URL error")
	}
	if _, err := (Options{URL: "http://x"}).withDefaults(); err == nil {
		t.Fatalf("expected missing output error")
	}

	o, err := Options{URL: "http://x", OutputPath: "x.png"}.withDefaults()
	if err != nil {
		t.Fatalf("withDefaults: %v", err)
	}
	if o.Width != DefaultWidth || o.Height != DefaultHeight || o.Timeout != DefaultTimeoutSec*time.Second {
		t.Fatalf("defaults not applied: %+v", o)
	}
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Listen = "127.0.0.1:9999"
	cfg.BasicAuth = &config.BasicAuthConfig{Username: "u", Password: "p"}

	o := OptionsFromConfig(cfg)
	if o.URL != "http://127.0.0.1:9999/calendar" {
		t.Fatalf("url = %q", o.URL)
	}
	if o.OutputPath != cfg.Capture.Output {
		t.Fatalf("output = %q", o.OutputPath)
	}
	if got := o.authHeader(); got != "Basic dTpw" {
		t.Fatalf("auth header = %q", got)
	}
	if got := (Options{}).authHeader(); got != "" {
		t.Fatalf("auth header without credentials = %q", got)
	}
}

func TestWriteFileAtomic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "preview.png")
	if err := writeFileAtomic(path, []byte("one")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := writeFileAtomic(path, []byte("two")); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "two" {
		t.Fatalf("content = %q", data)
	}
	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Fatalf("temp files left behind: %d entries", len(entries))
	}
}

func TestNewSchedulerRejectsBadSpec(t *testing.T) {
	_, err := NewScheduler(context.Background(), "not a schedule", time.UTC, func(context.Context) error { return nil })
	if err == nil {
		t.Fatalf("expected parse error")
	}
	if _, err := ScheduleCapture(context.Background(), "@every 1m", time.UTC, Options{}); err == nil {
		t.Fatalf("expected options error")
	}
}

func TestSchedulerRunsJob(t *testing.T) {
	ran := make(chan struct{}, 1)
	s, err := NewScheduler(context.Background(), "@every 1s", time.UTC, func(context.Context) error {
		select {
		case ran <- struct{}{}:
		default:
		}
		return nil
	})
	if err != nil {
		t.Fatalf("NewScheduler: %v", err)
	}
	s.Start()
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		s.Stop(ctx)
	}()

	if s.Next().IsZero() {
		t.Fatalf("next run not scheduled")
	}
	select {
	case <-ran:
	case <-time.After(5 * time.Second):
		t.Fatalf("job did not run")
	}
}
