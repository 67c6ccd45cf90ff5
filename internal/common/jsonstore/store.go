// Package jsonstore: 레코드를 JSON 으로 직렬화하여 키-값 저장소에 보관하는 제네릭 저장소를 제공한다.
package jsonstore

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	json "github.com/goccy/go-json"

	"github.com/park285/llm-kakao-bots/hideseek-go/internal/common/valkeyx"
)

// KeyFunc: 레코드 ID로 저장소 키를 생성하는 함수 타입입니다.
type KeyFunc func(id string) string

// ValidateFunc: 저장 전/조회 후 레코드를 검증하는 함수 타입입니다.
type ValidateFunc[T any] func(record *T) error

// Config: 저장소 생성에 필요한 설정 정보입니다.
type Config[T any] struct {
	// Name: 로그에 남길 레코드 종류 (예: "game_session")
	Name     string
	KeyFunc  KeyFunc
	TTL      time.Duration
	Validate ValidateFunc[T]
}

// Store: 레코드 종류별로 키 프리픽스/TTL/검증 규칙만 주입받아 동일한 저장 로직을 재사용하는 제네릭 저장소입니다.
// 모든 쓰기는 Set 직후 SetTTL 을 호출한다.
type Store[T any] struct {
	adapter  *valkeyx.Adapter
	logger   *slog.Logger
	name     string
	keyFunc  KeyFunc
	ttl      time.Duration
	validate ValidateFunc[T]
}

// New: 새로운 제네릭 저장소 인스턴스를 생성합니다.
func New[T any](adapter *valkeyx.Adapter, logger *slog.Logger, cfg Config[T]) *Store[T] {
	if logger == nil {
		logger = slog.Default()
	}
	name := cfg.Name
	if name == "" {
		name = "record"
	}
	return &Store[T]{
		adapter:  adapter,
		logger:   logger,
		name:     name,
		keyFunc:  cfg.KeyFunc,
		ttl:      cfg.TTL,
		validate: cfg.Validate,
	}
}

// Save: 레코드를 검증한 뒤 JSON 으로 직렬화하여 저장하고 TTL 을 설정합니다.
func (s *Store[T]) Save(ctx context.Context, id string, record *T) error {
	return s.SaveKey(ctx, s.keyFunc(id), record)
}

// SaveKey: 이미 계산된 키로 레코드를 저장합니다.
func (s *Store[T]) SaveKey(ctx context.Context, key string, record *T) error {
	payload, err := s.encode(record)
	if err != nil {
		return err
	}

	if err := s.adapter.Set(ctx, key, payload); err != nil {
		return fmt.Errorf("%s save failed: %w", s.name, err)
	}
	if _, err := s.adapter.SetTTL(ctx, key, s.ttl); err != nil {
		return fmt.Errorf("%s set ttl failed: %w", s.name, err)
	}

	s.logger.Debug("record_saved", "kind", s.name, "key", key)
	return nil
}

// Create: 키가 비어 있을 때만 레코드를 저장합니다. 이미 있으면 덮어쓰지 않고 false.
func (s *Store[T]) Create(ctx context.Context, id string, record *T) (bool, error) {
	return s.CreateKey(ctx, s.keyFunc(id), record)
}

// CreateKey: 이미 계산된 키로 Create 를 수행합니다. 값과 TTL 은 SET NX PX 한 번으로 기록된다.
func (s *Store[T]) CreateKey(ctx context.Context, key string, record *T) (bool, error) {
	payload, err := s.encode(record)
	if err != nil {
		return false, err
	}

	created, err := s.adapter.SetNX(ctx, key, payload, s.ttl)
	if err != nil {
		return false, fmt.Errorf("%s create failed: %w", s.name, err)
	}
	if !created {
		s.logger.Debug("record_exists", "kind", s.name, "key", key)
		return false, nil
	}

	s.logger.Debug("record_created", "kind", s.name, "key", key)
	return true, nil
}

func (s *Store[T]) encode(record *T) ([]byte, error) {
	if record == nil {
		return nil, fmt.Errorf("%s save: nil record", s.name)
	}
	if s.validate != nil {
		if err := s.validate(record); err != nil {
			return nil, err
		}
	}

	payload, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("%s marshal failed: %w", s.name, err)
	}
	return payload, nil
}

// Load: 저장된 레코드를 조회합니다.
// 데이터가 없거나 만료된 경우 nil 을 반환합니다.
// 역직렬화 또는 검증에 실패한 레코드는 경고 로그를 남기고 없는 것으로 취급합니다.
func (s *Store[T]) Load(ctx context.Context, id string) (*T, error) {
	return s.LoadKey(ctx, s.keyFunc(id))
}

// LoadKey: 이미 계산된 키로 레코드를 조회합니다.
func (s *Store[T]) LoadKey(ctx context.Context, key string) (*T, error) {
	raw, ok, err := s.adapter.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("%s load failed: %w", s.name, err)
	}
	if !ok {
		return nil, nil
	}
	return s.Decode(key, raw), nil
}

// Decode: 원시 바이트를 레코드로 복원합니다. 손상된 레코드는 nil.
func (s *Store[T]) Decode(key string, raw []byte) *T {
	var record T
	if err := json.Unmarshal(raw, &record); err != nil {
		s.logger.Warn("record_corrupt", "kind", s.name, "key", key, "err", err)
		return nil
	}
	if s.validate != nil {
		if err := s.validate(&record); err != nil {
			s.logger.Warn("record_invalid", "kind", s.name, "key", key, "err", err)
			return nil
		}
	}
	return &record
}

// Delete: 레코드를 삭제합니다. 실제로 삭제되었으면 true.
func (s *Store[T]) Delete(ctx context.Context, id string) (bool, error) {
	key := s.keyFunc(id)
	n, err := s.adapter.Delete(ctx, key)
	if err != nil {
		return false, fmt.Errorf("%s delete failed: %w", s.name, err)
	}
	s.logger.Debug("record_deleted", "kind", s.name, "key", key, "deleted", n)
	return n > 0, nil
}

// Exists: 레코드가 존재하는지 확인합니다.
func (s *Store[T]) Exists(ctx context.Context, id string) (bool, error) {
	ok, err := s.adapter.Exists(ctx, s.keyFunc(id))
	if err != nil {
		return false, fmt.Errorf("%s exists failed: %w", s.name, err)
	}
	return ok, nil
}

// RefreshTTL: 레코드의 TTL 을 연장합니다.
func (s *Store[T]) RefreshTTL(ctx context.Context, id string) (bool, error) {
	ok, err := s.adapter.SetTTL(ctx, s.keyFunc(id), s.ttl)
	if err != nil {
		return false, fmt.Errorf("%s refresh ttl failed: %w", s.name, err)
	}
	return ok, nil
}

// Key: 레코드 ID 에 대응하는 저장소 키를 반환합니다.
func (s *Store[T]) Key(id string) string {
	return s.keyFunc(id)
}

// TTL: 설정된 TTL을 반환합니다.
func (s *Store[T]) TTL() time.Duration {
	return s.ttl
}

// Adapter: 내부 저장소 어댑터를 반환합니다.
func (s *Store[T]) Adapter() *valkeyx.Adapter {
	return s.adapter
}
