package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/park285/llm-kakao-bots/hideseek-go/internal/common/jsonstore"
	"github.com/park285/llm-kakao-bots/hideseek-go/internal/common/valkeyx"
	hsconfig "github.com/park285/llm-kakao-bots/hideseek-go/internal/hideseek/config"
	"github.com/park285/llm-kakao-bots/hideseek-go/internal/hideseek/model"
	"github.com/park285/llm-kakao-bots/hideseek-go/internal/hideseek/validation"
)

// ErrGuessKeyTaken: 같은 (gameID, userID, timestamp) 키에 이미 추측이 기록되어 있다.
var ErrGuessKeyTaken = errors.New("guess key already taken")

// GuessStore: GuessData 레코드와 게임별 인덱스 SET 을 관리하는 저장소.
// 조회는 인덱스 SET 을 기준으로 하고, 정리 서비스가 SCAN 으로 인덱스를 보정한다.
type GuessStore struct {
	guesses *jsonstore.Store[model.GuessData]
	adapter *valkeyx.Adapter
	logger  *slog.Logger
}

// NewGuessStore: 새로운 GuessStore 인스턴스를 생성합니다.
func NewGuessStore(adapter *valkeyx.Adapter, validator *validation.Validator, logger *slog.Logger) *GuessStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &GuessStore{
		guesses: jsonstore.New(adapter, logger, jsonstore.Config[model.GuessData]{
			Name: "guess",
			KeyFunc: func(key string) string {
				return key
			},
			TTL:      hsconfig.GuessTTL,
			Validate: validator.ValidateGuess,
		}),
		adapter: adapter,
		logger:  logger,
	}
}

// Append: 추측 1건을 저장하고 인덱스 SET 에 키를 추가합니다. 레코드와 인덱스 모두 TTL 을 설정합니다.
// 기록된 추측은 불변이다. 키가 이미 있으면 덮어쓰지 않고 ErrGuessKeyTaken 을 반환합니다.
func (s *GuessStore) Append(ctx context.Context, guess *model.GuessData) error {
	if guess == nil {
		return fmt.Errorf("append guess: %w", errNilRecord)
	}
	key := GuessKey(guess.GameID, guess.UserID, guess.Timestamp)
	created, err := s.guesses.CreateKey(ctx, key, guess)
	if err != nil {
		return fmt.Errorf("append guess: %w", err)
	}
	if !created {
		return fmt.Errorf("append guess %s: %w", key, ErrGuessKeyTaken)
	}

	indexKey := GuessIndexKey(guess.GameID)
	if _, err := s.adapter.SAdd(ctx, indexKey, key); err != nil {
		return fmt.Errorf("append guess index: %w", err)
	}
	if _, err := s.adapter.SetTTL(ctx, indexKey, hsconfig.GuessTTL); err != nil {
		return fmt.Errorf("guess index set ttl: %w", err)
	}
	return nil
}

// ListByGame: 게임의 모든 추측을 인덱스 순서(키 오름차순)로 반환합니다.
// 인덱스에는 있지만 레코드가 만료/손상된 항목은 건너뜁니다.
func (s *GuessStore) ListByGame(ctx context.Context, gameID string) ([]model.GuessData, error) {
	members, err := s.adapter.SMembers(ctx, GuessIndexKey(gameID))
	if err != nil {
		return nil, fmt.Errorf("list guesses: %w", err)
	}
	if len(members) == 0 {
		return []model.GuessData{}, nil
	}
	sort.Strings(members)

	raws, err := s.adapter.GetMany(ctx, members)
	if err != nil {
		return nil, fmt.Errorf("list guesses: %w", err)
	}

	out := make([]model.GuessData, 0, len(raws))
	skipped := 0
	for i, raw := range raws {
		if raw == nil {
			skipped++
			continue
		}
		guess := s.guesses.Decode(members[i], raw)
		if guess == nil || guess.GameID != gameID {
			skipped++
			continue
		}
		out = append(out, *guess)
	}
	if skipped > 0 {
		s.logger.Debug("guess_index_stale_members", "game_id", gameID, "skipped", skipped)
	}
	return out, nil
}

// CountByPlayer: 게임에서 특정 플레이어의 (만료되지 않은) 추측 수를 반환합니다.
func (s *GuessStore) CountByPlayer(ctx context.Context, gameID, userID string) (int, error) {
	members, err := s.adapter.SMembers(ctx, GuessIndexKey(gameID))
	if err != nil {
		return 0, fmt.Errorf("count player guesses: %w", err)
	}
	keys := make([]string, 0, len(members))
	for _, member := range members {
		parts, ok := ParseGuessKey(member)
		if ok && parts.GameID == gameID && parts.UserID == userID {
			keys = append(keys, member)
		}
	}
	if len(keys) == 0 {
		return 0, nil
	}

	ttls, err := s.adapter.TTLs(ctx, keys)
	if err != nil {
		return 0, fmt.Errorf("count player guesses: %w", err)
	}
	count := 0
	for _, ttl := range ttls {
		if ttl != valkeyx.TTLMissing {
			count++
		}
	}
	return count, nil
}

// DeleteByGame: 게임의 모든 추측과 인덱스를 삭제합니다.
// 인덱스 멤버와 SCAN 결과의 합집합을 지우므로 인덱스가 누락한 키도 제거됩니다.
func (s *GuessStore) DeleteByGame(ctx context.Context, gameID string) (bool, error) {
	indexKey := GuessIndexKey(gameID)
	members, err := s.adapter.SMembers(ctx, indexKey)
	if err != nil {
		return false, fmt.Errorf("delete guesses: %w", err)
	}
	scanned, err := s.adapter.Scan(ctx, GuessPattern(gameID), valkeyx.DefaultScanCount)
	if err != nil {
		return false, fmt.Errorf("delete guesses: %w", err)
	}

	seen := make(map[string]struct{}, len(members)+len(scanned)+1)
	keys := make([]string, 0, len(members)+len(scanned)+1)
	for _, key := range append(append(members, scanned...), indexKey) {
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}

	n, err := s.adapter.Delete(ctx, keys...)
	if err != nil {
		return false, fmt.Errorf("delete guesses: %w", err)
	}
	s.logger.Info("guesses_deleted", "game_id", gameID, "deleted_keys", n)
	return n > 0, nil
}
