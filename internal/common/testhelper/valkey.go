package testhelper

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/valkey-io/valkey-go"

	"github.com/park285/llm-kakao-bots/hideseek-go/internal/common/valkeyx"
)

// TestOpTimeout: 테스트 어댑터의 per-call timeout
const TestOpTimeout = 2 * time.Second

// NewMiniredisClient: 인메모리 miniredis 위에 실제 valkey-go 클라이언트를 연결합니다.
// 테스트 종료 시 클라이언트와 서버가 자동으로 정리됩니다.
func NewMiniredisClient(t *testing.T) (valkey.Client, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}

	client, err := valkeyx.NewClient(valkeyx.Config{
		Addr:              mr.Addr(),
		DisableCache:      true,
		ForceSingleClient: true,
	})
	if err != nil {
		mr.Close()
		t.Fatalf("valkey client create failed: %v", err)
	}

	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})
	return client, mr
}

// NewTestAdapter: miniredis 기반 저장소 어댑터를 생성합니다.
func NewTestAdapter(t *testing.T) (*valkeyx.Adapter, *miniredis.Miniredis) {
	t.Helper()
	client, mr := NewMiniredisClient(t)
	return valkeyx.NewAdapter(client, TestOpTimeout), mr
}

// DiscardLogger: 출력을 버리는 테스트용 로거를 반환합니다.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
