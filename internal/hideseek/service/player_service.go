package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/park285/llm-kakao-bots/hideseek-go/internal/hideseek/model"
	"github.com/park285/llm-kakao-bots/hideseek-go/internal/hideseek/redis"
	"github.com/park285/llm-kakao-bots/hideseek-go/internal/hideseek/validation"
)

// RankUpdate: UpdateAfterGuess 결과. 등급이 바뀐 경우에만 PreviousRank/NewRank 가 채워진다.
type RankUpdate struct {
	Profile      *model.PlayerProfile `json:"profile"`
	RankChanged  bool                 `json:"rankChanged"`
	PreviousRank *model.Rank          `json:"previousRank,omitempty"`
	NewRank      *model.Rank          `json:"newRank,omitempty"`
}

// PlayerService: 플레이어 프로필 생성/갱신과 등급 재계산.
// 같은 플레이어의 동시 갱신은 마지막 쓰기가 이긴다. (잠금 없음)
type PlayerService struct {
	store  *redis.PlayerStore
	clock  Clock
	logger *slog.Logger
}

// NewPlayerService: 새로운 PlayerService 를 생성합니다.
func NewPlayerService(store *redis.PlayerStore, clock Clock, logger *slog.Logger) *PlayerService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PlayerService{store: store, clock: clock, logger: logger}
}

// GetPlayer: 프로필을 조회합니다. (없으면 nil)
func (s *PlayerService) GetPlayer(ctx context.Context, userID string) (*model.PlayerProfile, error) {
	profile, err := s.store.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get player: %w", err)
	}
	return profile, nil
}

// GetOrCreatePlayer: 기존 프로필을 반환하거나(이름이 바뀌었으면 갱신) 0 통계 프로필을 새로 만듭니다.
func (s *PlayerService) GetOrCreatePlayer(ctx context.Context, userID, username string) (*model.PlayerProfile, error) {
	username = validation.NormalizeUsername(username)

	profile, err := s.GetPlayer(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile != nil {
		if username == "" || username == profile.Username {
			return profile, nil
		}
		profile.Username = username
		if err := s.store.Save(ctx, profile); err != nil {
			return nil, fmt.Errorf("refresh username: %w", err)
		}
		return profile, nil
	}

	now := s.clock.nowMillis()
	profile = &model.PlayerProfile{
		UserID:     userID,
		Username:   username,
		Rank:       model.RankRookie,
		JoinedAt:   now,
		LastActive: now,
	}
	if err := s.store.Save(ctx, profile); err != nil {
		return nil, fmt.Errorf("create player: %w", err)
	}
	s.logger.Info("player_created", "user_id", userID)
	return profile, nil
}

// UpdateAfterGuess: 누적 카운터를 올리고 비율/등급을 다시 계산해 저장합니다.
// 등급은 항상 쓰기 시점에 재계산되며, 여러 단계를 건너뛰어도 최종 등급만 반환합니다.
func (s *PlayerService) UpdateAfterGuess(ctx context.Context, userID, username string, isCorrect bool) (*RankUpdate, error) {
	profile, err := s.GetOrCreatePlayer(ctx, userID, username)
	if err != nil {
		return nil, fmt.Errorf("update after guess: %w", err)
	}

	previous := profile.Rank
	ApplyGuess(profile, isCorrect, s.clock.nowMillis())

	if err := s.store.Save(ctx, profile); err != nil {
		return nil, fmt.Errorf("update after guess: %w", err)
	}

	update := &RankUpdate{Profile: profile}
	if profile.Rank != previous {
		prev, next := previous, profile.Rank
		update.RankChanged = true
		update.PreviousRank = &prev
		update.NewRank = &next
		s.logger.Info("player_rank_changed", "user_id", userID, "from", prev.String(), "to", next.String())
	}
	return update, nil
}

// ApplyGuess: 프로필에 추측 1건을 반영하는 순수 갱신 함수
func ApplyGuess(profile *model.PlayerProfile, isCorrect bool, nowMillis int64) {
	profile.TotalGuesses++
	if isCorrect {
		profile.SuccessfulGuesses++
	}
	profile.SuccessRate = model.SuccessRate(profile.TotalGuesses, profile.SuccessfulGuesses)
	profile.Rank = model.RankFor(profile.TotalGuesses, profile.SuccessfulGuesses, profile.SuccessRate)
	if nowMillis > profile.LastActive {
		profile.LastActive = nowMillis
	}
}

// ImportPlayer: 이전 저장소에서 읽은 프로필을 현재 저장소로 옮깁니다. 비율과 등급은 다시 계산합니다.
func (s *PlayerService) ImportPlayer(ctx context.Context, profile *model.PlayerProfile) (*model.PlayerProfile, error) {
	if profile == nil {
		return nil, errors.New("import player: nil profile")
	}
	imported := *profile
	imported.Username = validation.NormalizeUsername(imported.Username)
	imported.SuccessRate = model.SuccessRate(imported.TotalGuesses, imported.SuccessfulGuesses)
	imported.Rank = model.RankFor(imported.TotalGuesses, imported.SuccessfulGuesses, imported.SuccessRate)

	if err := s.store.Save(ctx, &imported); err != nil {
		return nil, fmt.Errorf("import player: %w", err)
	}
	s.logger.Info("player_imported", "user_id", imported.UserID, "rank", imported.Rank.String())
	return &imported, nil
}

// DeletePlayer: 프로필을 삭제합니다. (관리자 작업)
func (s *PlayerService) DeletePlayer(ctx context.Context, userID string) (bool, error) {
	deleted, err := s.store.Delete(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("delete player: %w", err)
	}
	if deleted {
		s.logger.Info("player_deleted", "user_id", userID)
	}
	return deleted, nil
}
