// Package processinglock: 여러 인스턴스 사이에서 같은 작업이 동시에 돌지 않도록 Valkey 락을 관리한다.
package processinglock

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/valkey-io/valkey-go"

	"github.com/park285/llm-kakao-bots/hideseek-go/internal/common/valkeyx"
)

// KeyFunc: 작업 이름을 락 키로 바꾼다.
type KeyFunc func(name string) string

// releaseScript: 자신이 잡은 락일 때만 삭제한다.
var releaseScript = valkey.NewLuaScript(`
if redis.call('GET', KEYS[1]) == ARGV[1] then
  return redis.call('DEL', KEYS[1])
end
return 0
`)

// Service: SET NX 기반 작업 락. 토큰을 값으로 저장해 다른 인스턴스의 락을 풀지 않는다.
type Service struct {
	client  valkey.Client
	logger  *slog.Logger
	keyFunc KeyFunc
	ttl     time.Duration
	owner   string
}

// New: 새로운 Service 인스턴스를 생성합니다. ttl 은 락 보유자가 죽었을 때 자동 해제까지의 시간이다.
func New(client valkey.Client, logger *slog.Logger, keyFunc KeyFunc, ttl time.Duration) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		client:  client,
		logger:  logger,
		keyFunc: keyFunc,
		ttl:     ttl,
		owner:   uuid.NewString(),
	}
}

// Acquire: 락을 잡는다. 이미 다른 보유자가 있으면 false 를 반환한다. (에러 아님)
func (s *Service) Acquire(ctx context.Context, name string) (bool, error) {
	key := s.keyFunc(name)
	cmd := s.client.B().Set().Key(key).Value(s.owner).Nx().Px(s.ttl).Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		if valkeyx.IsNil(err) {
			s.logger.Debug("processing_lock_busy", "name", name)
			return false, nil
		}
		return false, valkeyx.WrapStorageError("lock_acquire", err)
	}
	s.logger.Debug("processing_lock_acquired", "name", name)
	return true, nil
}

// Release: 자신이 잡은 락을 해제한다. 만료되었거나 다른 보유자로 넘어간 락은 건드리지 않는다.
func (s *Service) Release(ctx context.Context, name string) error {
	key := s.keyFunc(name)
	if err := releaseScript.Exec(ctx, s.client, []string{key}, []string{s.owner}).Error(); err != nil {
		return valkeyx.WrapStorageError("lock_release", err)
	}
	s.logger.Debug("processing_lock_released", "name", name)
	return nil
}

// IsHeld: 누구든 락을 보유 중인지 확인한다.
func (s *Service) IsHeld(ctx context.Context, name string) (bool, error) {
	cmd := s.client.B().Exists().Key(s.keyFunc(name)).Build()
	n, err := s.client.Do(ctx, cmd).AsInt64()
	if err != nil {
		return false, valkeyx.WrapStorageError("lock_exists", err)
	}
	return n > 0, nil
}
