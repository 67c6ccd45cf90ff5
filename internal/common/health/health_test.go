package health

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestCheck(t *testing.T) {
	Init("test")

	resp := Check(context.Background(), map[string]Checker{
		"valkey": func(context.Context) error { return nil },
	})
	if resp.Status != "ok" || resp.Checks["valkey"] != "ok" {
		t.Fatalf("unexpected response: %+v", resp)
	}

	resp = Check(context.Background(), map[string]Checker{
		"valkey": func(context.Context) error { return errors.New("down") },
	})
	if resp.Status != "degraded" || resp.Checks["valkey"] != "down" {
		t.Fatalf("expected degraded, got %+v", resp)
	}
}

func TestFormatDuration(t *testing.T) {
	if got := formatDuration(90*time.Minute + 1400*time.Millisecond); got != "1h30m1s" {
		t.Fatalf("unexpected format: %s", got)
	}
}
