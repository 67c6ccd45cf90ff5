package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/park285/llm-kakao-bots/hideseek-go/internal/common/jsonstore"
	"github.com/park285/llm-kakao-bots/hideseek-go/internal/common/valkeyx"
	hsconfig "github.com/park285/llm-kakao-bots/hideseek-go/internal/hideseek/config"
	"github.com/park285/llm-kakao-bots/hideseek-go/internal/hideseek/model"
	"github.com/park285/llm-kakao-bots/hideseek-go/internal/hideseek/validation"
)

var errNilRecord = errors.New("nil record")

// PlayerStore: PlayerProfile 저장소. 모든 쓰기에서 TTL(90일)을 다시 설정하여 비활성 기준 만료를 구현한다.
type PlayerStore struct {
	players *jsonstore.Store[model.PlayerProfile]
}

// NewPlayerStore: 새로운 PlayerStore 인스턴스를 생성합니다.
func NewPlayerStore(adapter *valkeyx.Adapter, validator *validation.Validator, logger *slog.Logger) *PlayerStore {
	return &PlayerStore{
		players: jsonstore.New(adapter, logger, jsonstore.Config[model.PlayerProfile]{
			Name:     "player_profile",
			KeyFunc:  PlayerKey,
			TTL:      hsconfig.PlayerTTL,
			Validate: validator.ValidateProfile,
		}),
	}
}

// Get: 프로필을 조회합니다. (없으면 nil)
func (s *PlayerStore) Get(ctx context.Context, userID string) (*model.PlayerProfile, error) {
	profile, err := s.players.Load(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get player: %w", err)
	}
	return profile, nil
}

// Save: 프로필 전체를 덮어쓰고 TTL 을 갱신합니다.
func (s *PlayerStore) Save(ctx context.Context, profile *model.PlayerProfile) error {
	if profile == nil {
		return fmt.Errorf("save player: %w", errNilRecord)
	}
	if err := s.players.Save(ctx, profile.UserID, profile); err != nil {
		return fmt.Errorf("save player: %w", err)
	}
	return nil
}

// Delete: 프로필을 삭제합니다. (관리자 작업)
func (s *PlayerStore) Delete(ctx context.Context, userID string) (bool, error) {
	deleted, err := s.players.Delete(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("delete player: %w", err)
	}
	return deleted, nil
}
