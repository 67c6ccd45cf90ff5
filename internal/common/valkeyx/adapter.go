package valkeyx

import (
	"context"
	"errors"
	"time"

	"github.com/valkey-io/valkey-go"
)

// TTL 조회 결과의 특수 값 (Redis TTL 명령 규약)
const (
	// TTLNoExpiry: 키는 존재하지만 만료 시간이 설정되지 않음
	TTLNoExpiry int64 = -1
	// TTLMissing: 키가 존재하지 않음
	TTLMissing int64 = -2
)

// DefaultScanCount: SCAN 한 번에 요청하는 키 개수 힌트
const DefaultScanCount int64 = 200

// Adapter: get/set/delete/exists/expire 원시 명령만 노출하는 얇은 저장소 래퍼다.
// 비즈니스 로직이 없고 TTL 을 암묵적으로 설정하지 않는다. (Set 이후 SetTTL 은 호출자 책임)
// 모든 호출은 설정된 per-call timeout 을 가지며, 실패는 StorageError 로 감싸진다.
type Adapter struct {
	client    valkey.Client
	opTimeout time.Duration
}

// NewAdapter: 공유 Valkey 클라이언트 위에 어댑터를 생성한다. opTimeout<=0 이면 호출자 컨텍스트만 사용한다.
func NewAdapter(client valkey.Client, opTimeout time.Duration) *Adapter {
	return &Adapter{client: client, opTimeout: opTimeout}
}

// Client: 내부 Valkey 클라이언트를 반환한다. (Lua 실행 등 확장 기능용)
func (a *Adapter) Client() valkey.Client {
	return a.client
}

// OpTimeout: 설정된 per-call timeout 을 반환한다.
func (a *Adapter) OpTimeout() time.Duration {
	return a.opTimeout
}

// CallContext: per-call timeout 이 적용된 컨텍스트를 만든다. (Lua 스크립트 등 Adapter 밖에서 실행하는 명령용)
func (a *Adapter) CallContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.opTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, a.opTimeout)
}

func (a *Adapter) callCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return a.CallContext(ctx)
}

// Get: 키의 값을 조회한다. 키가 없으면 ok=false 를 반환한다. (에러 아님)
func (a *Adapter) Get(ctx context.Context, key string) ([]byte, bool, error) {
	ctx, cancel := a.callCtx(ctx)
	defer cancel()

	raw, err := a.client.Do(ctx, a.client.B().Get().Key(key).Build()).AsBytes()
	if err != nil {
		if IsNil(err) {
			return nil, false, nil
		}
		return nil, false, WrapStorageError("get", err)
	}
	return raw, true, nil
}

// GetMany: 여러 키를 파이프라인(DoMulti)으로 조회한다. 결과 순서는 keys 와 같고 없는 키는 nil 이다.
func (a *Adapter) GetMany(ctx context.Context, keys []string) ([][]byte, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	ctx, cancel := a.callCtx(ctx)
	defer cancel()

	cmds := make(valkey.Commands, 0, len(keys))
	for _, key := range keys {
		cmds = append(cmds, a.client.B().Get().Key(key).Build())
	}

	results := a.client.DoMulti(ctx, cmds...)
	values := make([][]byte, len(results))
	for i, resp := range results {
		raw, err := resp.AsBytes()
		if err != nil {
			if IsNil(err) {
				continue
			}
			return nil, WrapStorageError("get_multi", err)
		}
		values[i] = raw
	}
	return values, nil
}

// Set: 키에 값을 저장한다. TTL 은 설정하지 않는다.
func (a *Adapter) Set(ctx context.Context, key string, value []byte) error {
	ctx, cancel := a.callCtx(ctx)
	defer cancel()

	cmd := a.client.B().Set().Key(key).Value(valkey.BinaryString(value)).Build()
	if err := a.client.Do(ctx, cmd).Error(); err != nil {
		return WrapStorageError("set", err)
	}
	return nil
}

// SetNX: 키가 없을 때만 값을 기록한다. ttl > 0 이면 TTL 도 같은 명령으로 건다. 이미 있으면 false.
func (a *Adapter) SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	ctx, cancel := a.callCtx(ctx)
	defer cancel()

	var cmd valkey.Completed
	if ttl > 0 {
		cmd = a.client.B().Set().Key(key).Value(valkey.BinaryString(value)).Nx().Px(ttl).Build()
	} else {
		cmd = a.client.B().Set().Key(key).Value(valkey.BinaryString(value)).Nx().Build()
	}
	if err := a.client.Do(ctx, cmd).Error(); err != nil {
		if IsNil(err) {
			return false, nil
		}
		return false, WrapStorageError("set_nx", err)
	}
	return true, nil
}

// Delete: 키들을 삭제하고 실제로 삭제된 개수를 반환한다.
func (a *Adapter) Delete(ctx context.Context, keys ...string) (int64, error) {
	if len(keys) == 0 {
		return 0, nil
	}
	ctx, cancel := a.callCtx(ctx)
	defer cancel()

	n, err := a.client.Do(ctx, a.client.B().Del().Key(keys...).Build()).AsInt64()
	if err != nil {
		return 0, WrapStorageError("delete", err)
	}
	return n, nil
}

// Exists: 키 존재 여부를 확인한다.
func (a *Adapter) Exists(ctx context.Context, key string) (bool, error) {
	ctx, cancel := a.callCtx(ctx)
	defer cancel()

	n, err := a.client.Do(ctx, a.client.B().Exists().Key(key).Build()).AsInt64()
	if err != nil {
		return false, WrapStorageError("exists", err)
	}
	return n > 0, nil
}

// SetTTL: 키에 만료 시간을 설정한다. 키가 없으면 false 를 반환한다.
// 1초 미만의 양수 TTL 은 1초로 올림한다.
func (a *Adapter) SetTTL(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		return false, WrapStorageError("set_ttl", errors.New("ttl must be positive"))
	}
	seconds := int64(ttl / time.Second)
	if seconds == 0 {
		seconds = 1
	}

	ctx, cancel := a.callCtx(ctx)
	defer cancel()

	ok, err := a.client.Do(ctx, a.client.B().Expire().Key(key).Seconds(seconds).Build()).AsBool()
	if err != nil {
		return false, WrapStorageError("set_ttl", err)
	}
	return ok, nil
}

// TTL: 키의 남은 만료 시간(초)을 반환한다. TTLNoExpiry / TTLMissing 특수 값을 그대로 전달한다.
func (a *Adapter) TTL(ctx context.Context, key string) (int64, error) {
	ctx, cancel := a.callCtx(ctx)
	defer cancel()

	ttl, err := a.client.Do(ctx, a.client.B().Ttl().Key(key).Build()).AsInt64()
	if err != nil {
		return 0, WrapStorageError("ttl", err)
	}
	return ttl, nil
}

// TTLs: 여러 키의 TTL 을 파이프라인(DoMulti)으로 한 번에 조회한다. 결과 순서는 keys 와 같다.
func (a *Adapter) TTLs(ctx context.Context, keys []string) ([]int64, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	ctx, cancel := a.callCtx(ctx)
	defer cancel()

	cmds := make(valkey.Commands, 0, len(keys))
	for _, key := range keys {
		cmds = append(cmds, a.client.B().Ttl().Key(key).Build())
	}

	results := a.client.DoMulti(ctx, cmds...)
	ttls := make([]int64, len(results))
	for i, resp := range results {
		ttl, err := resp.AsInt64()
		if err != nil {
			return nil, WrapStorageError("ttl_multi", err)
		}
		ttls[i] = ttl
	}
	return ttls, nil
}

// Scan: 패턴에 매칭되는 모든 키를 SCAN 커서 루프로 수집한다. (KEYS 명령 미사용)
// 커서 한 번의 왕복마다 per-call timeout 이 적용된다.
func (a *Adapter) Scan(ctx context.Context, pattern string, count int64) ([]string, error) {
	return a.ScanLimit(ctx, pattern, count, 0)
}

// ScanLimit: Scan 과 같지만 limit 개 이상 모이면 커서 순회를 멈춘다. limit<=0 이면 전체.
func (a *Adapter) ScanLimit(ctx context.Context, pattern string, count int64, limit int) ([]string, error) {
	if count <= 0 {
		count = DefaultScanCount
	}

	seen := make(map[string]struct{})
	keys := make([]string, 0)
	var cursor uint64
	for {
		entry, err := a.scanPage(ctx, cursor, pattern, count)
		if err != nil {
			return nil, err
		}
		// SCAN 은 같은 키를 여러 번 돌려줄 수 있다.
		for _, key := range entry.Elements {
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			keys = append(keys, key)
		}
		if limit > 0 && len(keys) >= limit {
			return keys[:limit], nil
		}
		cursor = entry.Cursor
		if cursor == 0 {
			return keys, nil
		}
		if err := ctx.Err(); err != nil {
			return nil, WrapStorageError("scan", err)
		}
	}
}

func (a *Adapter) scanPage(ctx context.Context, cursor uint64, pattern string, count int64) (valkey.ScanEntry, error) {
	ctx, cancel := a.callCtx(ctx)
	defer cancel()

	cmd := a.client.B().Scan().Cursor(cursor).Match(pattern).Count(count).Build()
	entry, err := a.client.Do(ctx, cmd).AsScanEntry()
	if err != nil {
		return valkey.ScanEntry{}, WrapStorageError("scan", err)
	}
	return entry, nil
}

// SAdd: 인덱스 SET 에 멤버를 추가한다. TTL 은 설정하지 않는다.
func (a *Adapter) SAdd(ctx context.Context, key string, members ...string) (int64, error) {
	if len(members) == 0 {
		return 0, nil
	}
	ctx, cancel := a.callCtx(ctx)
	defer cancel()

	n, err := a.client.Do(ctx, a.client.B().Sadd().Key(key).Member(members...).Build()).AsInt64()
	if err != nil {
		return 0, WrapStorageError("sadd", err)
	}
	return n, nil
}

// SMembers: 인덱스 SET 의 모든 멤버를 반환한다. 키가 없으면 빈 슬라이스.
func (a *Adapter) SMembers(ctx context.Context, key string) ([]string, error) {
	ctx, cancel := a.callCtx(ctx)
	defer cancel()

	members, err := a.client.Do(ctx, a.client.B().Smembers().Key(key).Build()).AsStrSlice()
	if err != nil {
		if IsNil(err) {
			return []string{}, nil
		}
		return nil, WrapStorageError("smembers", err)
	}
	return members, nil
}

// SRem: 인덱스 SET 에서 멤버를 제거한다.
func (a *Adapter) SRem(ctx context.Context, key string, members ...string) (int64, error) {
	if len(members) == 0 {
		return 0, nil
	}
	ctx, cancel := a.callCtx(ctx)
	defer cancel()

	n, err := a.client.Do(ctx, a.client.B().Srem().Key(key).Member(members...).Build()).AsInt64()
	if err != nil {
		return 0, WrapStorageError("srem", err)
	}
	return n, nil
}

// Ping: 연결 상태를 점검한다.
func (a *Adapter) Ping(ctx context.Context) error {
	ctx, cancel := a.callCtx(ctx)
	defer cancel()

	if err := Ping(ctx, a.client); err != nil {
		return WrapStorageError("ping", err)
	}
	return nil
}
