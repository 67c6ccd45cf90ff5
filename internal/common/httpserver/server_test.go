package httpserver

import (
	"context"
	"net"
	"net/http"
	"testing"
	"time"
)

func TestNewServer_Defaults(t *testing.T) {
	server := NewServer(":0", nil, ServerOptions{})
	if server.ReadHeaderTimeout != 5*time.Second {
		t.Fatalf("expected default read header timeout, got %v", server.ReadHeaderTimeout)
	}
	if server.Handler == nil {
		t.Fatal("expected non-nil handler")
	}
}

func TestServe_ShutsDownOnCancel(t *testing.T) {
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen failed: %v", err)
	}
	addr := lis.Addr().String()
	_ = lis.Close()

	mux := http.NewServeMux()
	mux.HandleFunc("/ping", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	server := NewServer(addr, mux, ServerOptions{UseH2C: true, TraceOperation: "test"})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Serve(ctx, server, time.Second) }()

	deadline := time.Now().Add(2 * time.Second)
	for {
		resp, err := http.Get("http://" + addr + "/ping")
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode != http.StatusNoContent {
				t.Fatalf("unexpected status %d", resp.StatusCode)
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("server did not start: %v", err)
		}
		time.Sleep(20 * time.Millisecond)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("serve returned error: %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("serve did not return after cancel")
	}
}
