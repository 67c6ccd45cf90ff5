// Package cleanup 는 숨바꼭질 키의 만료/정리 서비스를 제공한다.
// TTL 이 빠진 키는 복구하고, 만료 임박 키와 부모 게임이 사라진 고아 키를 삭제한다.
package cleanup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"

	"github.com/park285/llm-kakao-bots/hideseek-go/internal/common/valkeyx"
	hsconfig "github.com/park285/llm-kakao-bots/hideseek-go/internal/hideseek/config"
)

const (
	jobName = "hideseek_cleanup"

	// maxRetryDelayFactor: 재시도 대기시간 상한 (RetryDelay 의 배수)
	maxRetryDelayFactor = 4
)

// Service: 만료/정리 서비스. 실행은 한 번에 하나씩 직렬화된다.
type Service struct {
	adapter *valkeyx.Adapter
	cfg     hsconfig.CleanupConfig
	archive Archive
	metrics *Metrics
	lock    RunLock
	logger  *slog.Logger
	targets []target
	now     func() time.Time

	runMu sync.Mutex

	mu      sync.RWMutex
	state   State
	history []CleanupResult
	totals  runTotals
}

type runTotals struct {
	runs      int
	succeeded int
	failed    int
	duration  time.Duration
	last      *CleanupResult
}

// New: 정리 서비스를 생성한다. archive 와 metrics 는 nil 이어도 된다.
func New(adapter *valkeyx.Adapter, cfg hsconfig.CleanupConfig, archive Archive, metrics *Metrics, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = hsconfig.DefaultCleanupMaxAttempts
	}
	if cfg.HistorySize <= 0 {
		cfg.HistorySize = hsconfig.DefaultCleanupHistorySize
	}
	if cfg.ScanCount <= 0 {
		cfg.ScanCount = hsconfig.DefaultCleanupScanCount
	}
	return &Service{
		adapter: adapter,
		cfg:     cfg,
		archive: archive,
		metrics: metrics,
		logger:  logger,
		targets: defaultTargets(cfg.LegacyKeys),
		now:     time.Now,
		state:   StateIdle,
		history: make([]CleanupResult, 0, cfg.HistorySize),
	}
}

// WithRunLock: 주기 실행 전에 잡을 분산 락을 설정한다. 강제 실행은 락을 쓰지 않는다.
func (s *Service) WithRunLock(lock RunLock) *Service {
	s.lock = lock
	return s
}

// State: 현재 상태를 반환한다.
func (s *Service) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Service) setState(state State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

// Run: 주기 실행 스케줄러를 띄우고 ctx 가 취소될 때까지 블록한다.
func (s *Service) Run(ctx context.Context) error {
	if !s.cfg.Enabled {
		s.logger.Info("cleanup_disabled")
		<-ctx.Done()
		return nil
	}

	sched, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("create cleanup scheduler failed: %w", err)
	}
	_, err = sched.NewJob(
		gocron.DurationJob(s.cfg.Interval),
		gocron.NewTask(func() {
			s.runScheduled(ctx)
		}),
		gocron.WithName(jobName),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		_ = sched.Shutdown()
		return fmt.Errorf("register cleanup job failed: %w", err)
	}

	sched.Start()
	s.logger.Info("cleanup_scheduler_started", "interval", s.cfg.Interval.String())

	<-ctx.Done()
	if err := sched.Shutdown(); err != nil {
		return fmt.Errorf("shutdown cleanup scheduler failed: %w", err)
	}
	s.logger.Info("cleanup_scheduler_stopped")
	return nil
}

// ForceCleanup: 즉시 1회 실행한다. 진행 중인 실행이 있으면 끝날 때까지 기다린다.
// 실패도 결과로 기록될 뿐 에러로 전파되지 않는다.
func (s *Service) ForceCleanup(ctx context.Context) CleanupResult {
	return s.run(ctx, TriggerForced)
}

// runScheduled: 락을 잡은 인스턴스만 실행한다. 락을 못 잡으면 기록 없이 건너뛴다.
func (s *Service) runScheduled(ctx context.Context) {
	if s.lock == nil {
		s.run(ctx, TriggerScheduled)
		return
	}

	acquired, err := s.lock.Acquire(ctx, jobName)
	if err != nil {
		s.logger.Warn("cleanup_lock_failed", "err", err)
		return
	}
	if !acquired {
		s.metrics.observeSkipped()
		s.logger.Info("cleanup_run_skipped", "reason", "lock held by another instance")
		return
	}
	defer func() {
		if err := s.lock.Release(context.WithoutCancel(ctx), jobName); err != nil {
			s.logger.Warn("cleanup_lock_release_failed", "err", err)
		}
	}()

	s.run(ctx, TriggerScheduled)
}

func (s *Service) run(ctx context.Context, trigger Trigger) CleanupResult {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	s.setState(StateRunning)
	defer s.setState(StateIdle)

	started := s.now()
	result := CleanupResult{
		RunID:     uuid.New(),
		Trigger:   trigger,
		StartedAt: started,
		Errors:    []string{},
	}

	var total sweepCounts
	attempt := func() error {
		result.Attempts++
		counts, err := s.newSweep().run(ctx, s.targets)
		total.add(counts)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("attempt %d: %v", result.Attempts, err))
			return err
		}
		return nil
	}
	notify := func(err error, wait time.Duration) {
		s.logger.Warn("cleanup_attempt_failed",
			"run_id", result.RunID.String(),
			"attempt", result.Attempts,
			"retry_in", wait.String(),
			"err", err,
		)
	}
	err := backoff.RetryNotify(attempt, s.retryPolicy(ctx), notify)

	result.Duration = s.now().Sub(started)
	result.ScannedKeys = total.scanned
	result.DeletedKeys = total.deleted
	result.RepairedKeys = total.repaired
	result.PrunedMembers = total.pruned
	if err != nil {
		result.Status = StatusFailed
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			result.Errors = append(result.Errors, err.Error())
		}
		s.logger.Error("cleanup_run_failed",
			"run_id", result.RunID.String(),
			"trigger", string(trigger),
			"attempts", result.Attempts,
			"err", err,
		)
	} else {
		result.Status = StatusSucceeded
		s.logger.Info("cleanup_run_completed",
			"run_id", result.RunID.String(),
			"trigger", string(trigger),
			"attempts", result.Attempts,
			"scanned", result.ScannedKeys,
			"deleted", result.DeletedKeys,
			"repaired", result.RepairedKeys,
			"pruned", result.PrunedMembers,
			"duration", result.Duration.String(),
		)
	}

	s.record(result)
	s.metrics.observe(result)
	if s.archive != nil {
		if err := s.archive.SaveRun(context.WithoutCancel(ctx), result); err != nil {
			s.logger.Warn("cleanup_archive_failed", "run_id", result.RunID.String(), "err", err)
		}
	}
	return result
}

// retryPolicy: RetryDelay 에서 시작해 2배씩 늘고 RetryDelay*4 에서 멈추는 대기. 총 시도는 MaxAttempts 회.
func (s *Service) retryPolicy(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.cfg.RetryDelay
	b.MaxInterval = s.cfg.RetryDelay * maxRetryDelayFactor
	b.Multiplier = 2.0
	b.RandomizationFactor = 0
	b.MaxElapsedTime = 0
	b.Reset()

	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(s.cfg.MaxAttempts-1)), ctx)
}

func (s *Service) newSweep() *sweep {
	return &sweep{
		adapter:         s.adapter,
		logger:          s.logger,
		scanCount:       s.cfg.ScanCount,
		nearExpiry:      s.cfg.NearExpiryWindow,
		proactiveDelete: s.cfg.ProactiveDelete,
		concurrency:     s.cfg.Concurrency,
		games:           make(map[string]bool),
	}
}

func (s *Service) record(result CleanupResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.history) >= s.cfg.HistorySize {
		copy(s.history, s.history[1:])
		s.history = s.history[:len(s.history)-1]
	}
	s.history = append(s.history, result)

	s.totals.runs++
	if result.Status == StatusSucceeded {
		s.totals.succeeded++
	} else {
		s.totals.failed++
	}
	s.totals.duration += result.Duration
	last := result
	s.totals.last = &last
}

// History: 메모리에 보관된 최근 실행 결과를 최신순으로 반환한다. limit<=0 이면 전체.
func (s *Service) History(limit int) []CleanupResult {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.history)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]CleanupResult, 0, n)
	for i := len(s.history) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, s.history[i])
	}
	return out
}

// ArchivedHistory: 아카이브가 있으면 영구 보관된 실행 기록을, 없으면 메모리 기록을 반환한다.
func (s *Service) ArchivedHistory(ctx context.Context, limit int) ([]CleanupResult, error) {
	if s.archive == nil {
		return s.History(limit), nil
	}
	runs, err := s.archive.RecentRuns(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("load archived cleanup runs failed: %w", err)
	}
	return runs, nil
}

// Statistics: 누적 실행 통계를 반환한다.
func (s *Service) Statistics() Statistics {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := Statistics{
		TotalRuns:      s.totals.runs,
		SuccessfulRuns: s.totals.succeeded,
		FailedRuns:     s.totals.failed,
	}
	if s.totals.runs > 0 {
		stats.SuccessRate = float64(s.totals.succeeded) / float64(s.totals.runs)
		stats.AverageDurationMS = float64(s.totals.duration.Milliseconds()) / float64(s.totals.runs)
	}
	if s.totals.last != nil {
		last := *s.totals.last
		stats.LastRun = &last
	}
	return stats
}

// HealthCheck: 연결 지연과 TTL 준수율을 점검한다.
func (s *Service) HealthCheck(ctx context.Context) Health {
	health := Health{
		Status:          HealthHealthy,
		TTLCompliance:   1,
		Recommendations: []string{},
	}

	start := time.Now()
	err := s.adapter.Ping(ctx)
	health.LatencyMS = time.Since(start).Milliseconds()
	health.CheckedAt = s.now()
	if err != nil {
		health.Status = HealthError
		health.TTLCompliance = 0
		health.Recommendations = append(health.Recommendations, "valkey is unreachable: check connectivity and credentials")
		return health
	}

	if s.cfg.LatencyWarn > 0 && time.Duration(health.LatencyMS)*time.Millisecond >= s.cfg.LatencyWarn {
		health.Status = HealthWarning
		health.Recommendations = append(health.Recommendations,
			fmt.Sprintf("valkey latency %dms exceeds %dms", health.LatencyMS, s.cfg.LatencyWarn.Milliseconds()))
	}

	compliance, sampled, err := s.sampleTTLCompliance(ctx)
	if err != nil {
		health.Status = HealthWarning
		health.Recommendations = append(health.Recommendations, "ttl sampling failed: "+err.Error())
	} else {
		health.TTLCompliance = compliance
		health.SampledKeys = sampled
		if compliance < 1 {
			health.Status = HealthWarning
			health.Recommendations = append(health.Recommendations,
				fmt.Sprintf("%.0f%% of sampled keys have a ttl: force a cleanup run to repair the rest", compliance*100))
		}
	}

	if last := s.Statistics().LastRun; last != nil && last.Status == StatusFailed {
		health.Status = HealthWarning
		health.Recommendations = append(health.Recommendations, "last cleanup run failed: inspect cleanup history")
	}
	return health
}

// sampleTTLCompliance: hs:* 키 일부를 표본으로 TTL 이 설정된 비율을 계산한다.
func (s *Service) sampleTTLCompliance(ctx context.Context) (float64, int, error) {
	sampleSize := s.cfg.TTLSampleSize
	if sampleSize <= 0 {
		sampleSize = hsconfig.DefaultCleanupTTLSampleSize
	}
	keys, err := s.adapter.ScanLimit(ctx, valkeyx.Pattern(hsconfig.RedisKeyPrefix), s.cfg.ScanCount, sampleSize)
	if err != nil {
		return 0, 0, err
	}
	ttls, err := s.adapter.TTLs(ctx, keys)
	if err != nil {
		return 0, 0, err
	}

	sampled, compliant := 0, 0
	for _, ttl := range ttls {
		if ttl == valkeyx.TTLMissing {
			continue
		}
		sampled++
		if ttl != valkeyx.TTLNoExpiry {
			compliant++
		}
	}
	if sampled == 0 {
		return 1, 0, nil
	}
	return float64(compliant) / float64(sampled), sampled, nil
}
