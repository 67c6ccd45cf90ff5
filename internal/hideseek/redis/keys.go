// Package redis 는 숨바꼭질 레코드를 Valkey 에 저장하는 저장소들과 키 생성 함수를 정의한다.
package redis

import (
	"strconv"

	"github.com/park285/llm-kakao-bots/hideseek-go/internal/common/valkeyx"
	hsconfig "github.com/park285/llm-kakao-bots/hideseek-go/internal/hideseek/config"
)

// GameKey 는 게임 세션 저장용 키를 생성한다.
// 형식: hs:game:{gameID}
func GameKey(gameID string) string {
	return valkeyx.BuildKey(hsconfig.RedisKeyGame, gameID)
}

// PostKey 는 postID → gameID 매핑 저장용 키를 생성한다.
// 형식: hs:post:{postID}
func PostKey(postID string) string {
	return valkeyx.BuildKey(hsconfig.RedisKeyPost, postID)
}

// GuessKey 는 추측 1건 저장용 키를 생성한다.
// 형식: hs:guess:{gameID}:{userID}:{timestampMillis}
func GuessKey(gameID, userID string, timestamp int64) string {
	return valkeyx.BuildKey3(hsconfig.RedisKeyGuess, gameID, userID, strconv.FormatInt(timestamp, 10))
}

// GuessPattern 은 게임의 모든 추측 키에 매칭되는 SCAN 패턴이다.
// 형식: hs:guess:{gameID}:*
func GuessPattern(gameID string) string {
	return valkeyx.Pattern(valkeyx.BuildKey(hsconfig.RedisKeyGuess, gameID))
}

// GuessIndexKey 는 게임별 추측 키 인덱스 SET 키를 생성한다.
// 형식: hs:guesses:{gameID}
func GuessIndexKey(gameID string) string {
	return valkeyx.BuildKey(hsconfig.RedisKeyGuessIndex, gameID)
}

// PlayerKey 는 플레이어 프로필 저장용 키를 생성한다.
// 형식: hs:player:{userID}
func PlayerKey(userID string) string {
	return valkeyx.BuildKey(hsconfig.RedisKeyPlayer, userID)
}

// GuessLimitKey 는 추측 쿨다운 키를 생성한다.
// 형식: hs:guess_limit:{gameID}:{userID}
func GuessLimitKey(gameID, userID string) string {
	return valkeyx.BuildKey2(hsconfig.RedisKeyGuessLimit, gameID, userID)
}

// LockKey 는 인스턴스 간 작업 락 키를 생성한다.
// 형식: hs:lock:{name}
func LockKey(name string) string {
	return valkeyx.BuildKey(hsconfig.RedisKeyLock, name)
}

// LegacyGameKey 는 이전 버전 세션 키다. 형식: game:{gameID}
func LegacyGameKey(gameID string) string {
	return valkeyx.BuildKey(hsconfig.LegacyKeyGame, gameID)
}

// legacyPostKey 형식: post:{postID}
func legacyPostKey(postID string) string {
	return valkeyx.BuildKey(hsconfig.LegacyKeyPost, postID)
}

// legacyPlayerKey 형식: player:{userID}
func legacyPlayerKey(userID string) string {
	return valkeyx.BuildKey(hsconfig.LegacyKeyPlayer, userID)
}

// GuessKeyParts: 추측 키를 구성하는 세그먼트
type GuessKeyParts struct {
	GameID    string
	UserID    string
	Timestamp int64
}

// ParseGuessKey 는 hs:guess:{gameID}:{userID}:{ts} 키를 분해한다.
func ParseGuessKey(key string) (GuessKeyParts, bool) {
	parts, ok := valkeyx.SplitKey(key, hsconfig.RedisKeyGuess)
	if !ok || len(parts) != 3 || parts[0] == "" || parts[1] == "" {
		return GuessKeyParts{}, false
	}
	ts, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return GuessKeyParts{}, false
	}
	return GuessKeyParts{GameID: parts[0], UserID: parts[1], Timestamp: ts}, true
}
