package lua

import (
	"context"
	"testing"

	"github.com/park285/llm-kakao-bots/hideseek-go/internal/common/testhelper"
)

const echoScript = `return ARGV[1]`

func TestRegistry_ExecAndPreload(t *testing.T) {
	client, _ := testhelper.NewMiniredisClient(t)
	ctx := context.Background()

	registry := NewRegistry([]Script{{Name: "echo", Source: echoScript}})
	if err := registry.Preload(ctx, client); err != nil {
		t.Fatalf("preload failed: %v", err)
	}

	resp, err := registry.Exec(ctx, client, "echo", nil, []string{"hello"})
	if err != nil {
		t.Fatalf("exec failed: %v", err)
	}
	got, err := resp.ToString()
	if err != nil || got != "hello" {
		t.Fatalf("unexpected result %q err=%v", got, err)
	}

	if _, err := registry.Exec(ctx, client, "missing", nil, nil); err == nil {
		t.Fatal("expected unknown script error")
	}
	if len(registry.Names()) != 1 {
		t.Fatalf("unexpected names: %v", registry.Names())
	}
}
