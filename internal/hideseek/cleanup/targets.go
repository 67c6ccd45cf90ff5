package cleanup

import (
	"context"
	"strings"
	"time"

	"github.com/park285/llm-kakao-bots/hideseek-go/internal/common/valkeyx"
	hsconfig "github.com/park285/llm-kakao-bots/hideseek-go/internal/hideseek/config"
	"github.com/park285/llm-kakao-bots/hideseek-go/internal/hideseek/redis"
)

// parentFunc: 키가 속한 게임 ID 를 찾는다. 판단할 수 없으면 ok=false (고아 검사 생략)
type parentFunc func(ctx context.Context, s *sweep, key string) (gameID string, ok bool, err error)

// target: 정리 대상 키 패턴과 기본 TTL
type target struct {
	name    string
	pattern string
	ttl     time.Duration
	parent  parentFunc

	// index: 멤버가 가리키는 키가 사라졌는지 검사해 SREM 한다.
	index bool
}

// defaultTargets: 세션, 매핑, 추측, 인덱스, 프로필, 쿨다운 키.
// 이전 버전 키는 접두사가 없어 다른 서비스와 겹칠 수 있으므로 legacy 일 때만 포함한다.
func defaultTargets(legacy bool) []target {
	targets := []target{
		{name: "sessions", pattern: valkeyx.Pattern(hsconfig.RedisKeyGame), ttl: hsconfig.SessionTTL},
		{name: "post_mappings", pattern: valkeyx.Pattern(hsconfig.RedisKeyPost), ttl: hsconfig.PostTTL, parent: postMappingParent},
		{name: "guesses", pattern: valkeyx.Pattern(hsconfig.RedisKeyGuess), ttl: hsconfig.GuessTTL, parent: guessParent},
		{name: "guess_indexes", pattern: valkeyx.Pattern(hsconfig.RedisKeyGuessIndex), ttl: hsconfig.GuessTTL, parent: indexParent, index: true},
		{name: "players", pattern: valkeyx.Pattern(hsconfig.RedisKeyPlayer), ttl: hsconfig.PlayerTTL},
		{name: "guess_limits", pattern: valkeyx.Pattern(hsconfig.RedisKeyGuessLimit), ttl: hsconfig.GuessLimitRepairTTL},
	}
	if !legacy {
		return targets
	}
	return append(targets, []target{
		{name: "legacy_sessions", pattern: valkeyx.Pattern(hsconfig.LegacyKeyGame), ttl: hsconfig.SessionTTL},
		{name: "legacy_post_mappings", pattern: valkeyx.Pattern(hsconfig.LegacyKeyPost), ttl: hsconfig.PostTTL},
		{name: "legacy_players", pattern: valkeyx.Pattern(hsconfig.LegacyKeyPlayer), ttl: hsconfig.PlayerTTL},
	}...)
}

func postMappingParent(ctx context.Context, s *sweep, key string) (string, bool, error) {
	raw, ok, err := s.adapter.Get(ctx, key)
	if err != nil || !ok {
		return "", false, err
	}
	gameID := strings.TrimSpace(string(raw))
	return gameID, gameID != "", nil
}

func guessParent(_ context.Context, _ *sweep, key string) (string, bool, error) {
	parts, ok := redis.ParseGuessKey(key)
	if !ok {
		return "", false, nil
	}
	return parts.GameID, true, nil
}

func indexParent(_ context.Context, _ *sweep, key string) (string, bool, error) {
	parts, ok := valkeyx.SplitKey(key, hsconfig.RedisKeyGuessIndex)
	if !ok || len(parts) != 1 {
		return "", false, nil
	}
	return parts[0], true, nil
}
