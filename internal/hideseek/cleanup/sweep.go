package cleanup

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/park285/llm-kakao-bots/hideseek-go/internal/common/valkeyx"
	"github.com/park285/llm-kakao-bots/hideseek-go/internal/hideseek/redis"
)

// ttlBatchSize: TTL 파이프라인 한 번에 조회하는 키 수
const ttlBatchSize = 500

// sweepCounts: 시도 1회의 처리 결과
type sweepCounts struct {
	scanned  int
	deleted  int
	repaired int
	pruned   int
}

func (c *sweepCounts) add(other sweepCounts) {
	c.scanned += other.scanned
	c.deleted += other.deleted
	c.repaired += other.repaired
	c.pruned += other.pruned
}

// sweep: 정리 시도 1회의 상태. 대상 패턴들을 동시에 처리하므로 게임 존재 캐시는 잠금으로 보호한다.
type sweep struct {
	adapter         *valkeyx.Adapter
	logger          *slog.Logger
	scanCount       int64
	nearExpiry      time.Duration
	proactiveDelete bool
	concurrency     int

	mu    sync.Mutex
	games map[string]bool
}

// run: 모든 대상을 동시에 처리하고 합계를 반환한다. 실패한 대상의 에러는 모두 합쳐서 반환한다.
func (s *sweep) run(ctx context.Context, targets []target) (sweepCounts, error) {
	concurrency := s.concurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	var (
		mu    sync.Mutex
		total sweepCounts
	)
	p := pool.New().WithContext(ctx).WithMaxGoroutines(concurrency)
	for _, t := range targets {
		p.Go(func(ctx context.Context) error {
			counts, err := s.sweepTarget(ctx, t)
			mu.Lock()
			total.add(counts)
			mu.Unlock()
			if err != nil {
				return fmt.Errorf("%s: %w", t.name, err)
			}
			return nil
		})
	}
	err := p.Wait()
	return total, err
}

func (s *sweep) sweepTarget(ctx context.Context, t target) (sweepCounts, error) {
	var counts sweepCounts

	keys, err := s.adapter.Scan(ctx, t.pattern, s.scanCount)
	if err != nil {
		return counts, err
	}
	counts.scanned = len(keys)

	for start := 0; start < len(keys); start += ttlBatchSize {
		end := min(start+ttlBatchSize, len(keys))
		batch := keys[start:end]

		ttls, err := s.adapter.TTLs(ctx, batch)
		if err != nil {
			return counts, err
		}
		for i, key := range batch {
			if err := s.sweepKey(ctx, t, key, ttls[i], &counts); err != nil {
				return counts, fmt.Errorf("key %s: %w", key, err)
			}
		}
	}

	if counts.deleted > 0 || counts.repaired > 0 || counts.pruned > 0 {
		s.logger.Info("cleanup_target_swept",
			"target", t.name,
			"scanned", counts.scanned,
			"deleted", counts.deleted,
			"repaired", counts.repaired,
			"pruned", counts.pruned,
		)
	}
	return counts, nil
}

// sweepKey: 고아 → 삭제, TTL 없음 → 기본 TTL 복구, 만료 임박 → (설정 시) 선제 삭제
func (s *sweep) sweepKey(ctx context.Context, t target, key string, ttl int64, counts *sweepCounts) error {
	if ttl == valkeyx.TTLMissing {
		return nil
	}

	if t.parent != nil {
		gameID, ok, err := t.parent(ctx, s, key)
		if err != nil {
			return err
		}
		if ok {
			exists, err := s.gameExists(ctx, gameID)
			if err != nil {
				return err
			}
			if !exists {
				n, err := s.adapter.Delete(ctx, key)
				if err != nil {
					return err
				}
				counts.deleted += int(n)
				s.logger.Debug("cleanup_orphan_deleted", "target", t.name, "key", key, "game_id", gameID)
				return nil
			}
		}
	}

	switch {
	case ttl == valkeyx.TTLNoExpiry:
		// TTL 누락은 버그 신호다. 데이터는 지우지 않고 기본 TTL 을 붙인다.
		ok, err := s.adapter.SetTTL(ctx, key, t.ttl)
		if err != nil {
			return err
		}
		if ok {
			counts.repaired++
			s.logger.Warn("cleanup_ttl_repaired", "target", t.name, "key", key, "ttl", t.ttl.String())
		}
	case s.proactiveDelete && ttl > 0 && time.Duration(ttl)*time.Second <= s.nearExpiry:
		n, err := s.adapter.Delete(ctx, key)
		if err != nil {
			return err
		}
		counts.deleted += int(n)
		return nil
	}

	if t.index {
		pruned, err := s.pruneIndex(ctx, key)
		if err != nil {
			return err
		}
		counts.pruned += pruned
	}
	return nil
}

// pruneIndex: 인덱스 SET 에서 이미 사라진 추측 키를 제거한다.
func (s *sweep) pruneIndex(ctx context.Context, indexKey string) (int, error) {
	members, err := s.adapter.SMembers(ctx, indexKey)
	if err != nil || len(members) == 0 {
		return 0, err
	}
	ttls, err := s.adapter.TTLs(ctx, members)
	if err != nil {
		return 0, err
	}
	stale := make([]string, 0)
	for i, member := range members {
		if _, ok := redis.ParseGuessKey(member); !ok || ttls[i] == valkeyx.TTLMissing {
			stale = append(stale, member)
		}
	}
	if len(stale) == 0 {
		return 0, nil
	}
	n, err := s.adapter.SRem(ctx, indexKey, stale...)
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// gameExists: 현재/이전 세션 키 중 하나라도 있으면 존재로 본다. 시도 단위로 캐시한다.
func (s *sweep) gameExists(ctx context.Context, gameID string) (bool, error) {
	s.mu.Lock()
	cached, hit := s.games[gameID]
	s.mu.Unlock()
	if hit {
		return cached, nil
	}

	exists, err := s.adapter.Exists(ctx, redis.GameKey(gameID))
	if err != nil {
		return false, err
	}
	if !exists {
		exists, err = s.adapter.Exists(ctx, redis.LegacyGameKey(gameID))
		if err != nil {
			return false, err
		}
	}

	s.mu.Lock()
	s.games[gameID] = exists
	s.mu.Unlock()
	return exists, nil
}
