package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/park285/llm-kakao-bots/hideseek-go/internal/common/lua"
	"github.com/park285/llm-kakao-bots/hideseek-go/internal/common/valkeyx"
)

// guessCooldownSource: 쿨다운 키가 없으면 PX 로 설정하고 {1, 0}, 있으면 {0, 남은 ms} 를 반환한다.
const guessCooldownSource = `
if redis.call('SET', KEYS[1], '1', 'NX', 'PX', ARGV[1]) then
  return {1, 0}
end
return {0, redis.call('PTTL', KEYS[1])}
`

// GuessCooldownScript: Registry 에 등록할 쿨다운 스크립트 정의
var GuessCooldownScript = lua.Script{
	Name:   lua.ScriptGuessCooldown,
	Source: guessCooldownSource,
}

// GuessCooldown: (gameID, userID) 단위 추측 쿨다운. 확인과 설정을 Lua 로 원자적으로 수행한다.
type GuessCooldown struct {
	adapter  *valkeyx.Adapter
	registry *lua.Registry
	window   time.Duration
}

// NewGuessCooldown: 새로운 GuessCooldown 을 생성합니다. window<=0 이면 항상 허용합니다.
func NewGuessCooldown(adapter *valkeyx.Adapter, registry *lua.Registry, window time.Duration) *GuessCooldown {
	return &GuessCooldown{adapter: adapter, registry: registry, window: window}
}

// Window: 설정된 쿨다운 길이
func (c *GuessCooldown) Window() time.Duration {
	return c.window
}

// Acquire: 추측이 허용되는지 확인하고, 허용되면 쿨다운을 시작합니다.
// 반환: (허용 여부, 남은 대기 시간, 에러)
func (c *GuessCooldown) Acquire(ctx context.Context, gameID, userID string) (bool, time.Duration, error) {
	millis := c.window.Milliseconds()
	if millis <= 0 {
		return true, 0, nil
	}

	ctx, cancel := c.adapter.CallContext(ctx)
	defer cancel()

	resp, err := c.registry.Exec(ctx, c.adapter.Client(), lua.ScriptGuessCooldown,
		[]string{GuessLimitKey(gameID, userID)},
		[]string{strconv.FormatInt(millis, 10)},
	)
	if err != nil {
		return false, 0, valkeyx.WrapStorageError("guess_cooldown", err)
	}
	allowed, remaining, err := parseCooldownReply(resp)
	if err != nil {
		return false, 0, valkeyx.WrapStorageError("guess_cooldown", err)
	}
	return allowed, remaining, nil
}

// parseCooldownReply: 스크립트 응답 {허용(0|1), 남은 ms} 를 해석한다.
func parseCooldownReply(resp valkey.ValkeyResult) (bool, time.Duration, error) {
	values, err := resp.ToArray()
	if err != nil {
		return false, 0, fmt.Errorf("cooldown script reply: %w", err)
	}
	if len(values) != 2 {
		return false, 0, fmt.Errorf("cooldown script reply: expected 2 values, got %d", len(values))
	}
	allowed, err := values[0].AsInt64()
	if err != nil {
		return false, 0, fmt.Errorf("cooldown script allowed flag: %w", err)
	}
	if allowed == 1 {
		return true, 0, nil
	}
	remaining, err := values[1].AsInt64()
	if err != nil {
		return false, 0, fmt.Errorf("cooldown script remaining ttl: %w", err)
	}
	// PTTL 은 키가 막 만료된 경우 음수를 돌려준다.
	return false, time.Duration(max(remaining, 0)) * time.Millisecond, nil
}
