package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"strconv"

	"github.com/valkey-io/valkey-go"

	commonconfig "github.com/park285/llm-kakao-bots/hideseek-go/internal/common/config"
	"github.com/park285/llm-kakao-bots/hideseek-go/internal/common/valkeyx"
)

// ToValkeyConfig: 데이터 저장소 연결을 위한 Valkey 설정 객체를 생성합니다.
// 워커 간 stale read 를 막기 위해 클라이언트 사이드 캐싱은 항상 비활성화합니다.
func ToValkeyConfig(cfg commonconfig.RedisConfig) valkeyx.Config {
	return valkeyx.Config{
		Addr:         net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  cfg.DialTimeout,
		WriteTimeout: cfg.WriteTimeout,
		PoolSize:     cfg.PoolSize,
		DisableCache: true,
		UseTLS:       cfg.UseTLS,
	}
}

// NewAndPingValkeyClient: Valkey 클라이언트를 생성하고 Ping 테스트를 통해 연결성을 확인합니다.
// 연결 실패 시 생성된 리소스를 정리하고 에러를 반환합니다.
func NewAndPingValkeyClient(
	ctx context.Context,
	cfg commonconfig.RedisConfig,
	logger *slog.Logger,
) (valkey.Client, func(), error) {
	client, err := valkeyx.NewClient(ToValkeyConfig(cfg))
	if err != nil {
		return nil, nil, fmt.Errorf("create valkey client failed: %w", err)
	}

	closeFn := func() {
		client.Close()
		logger.Debug("valkey_client_closed")
	}

	pingCtx := ctx
	if cfg.DialTimeout > 0 {
		var cancel context.CancelFunc
		pingCtx, cancel = context.WithTimeout(ctx, cfg.DialTimeout)
		defer cancel()
	}
	if pingErr := valkeyx.Ping(pingCtx, client); pingErr != nil {
		closeFn()
		return nil, nil, fmt.Errorf("valkey ping failed: %w", pingErr)
	}

	return client, closeFn, nil
}
