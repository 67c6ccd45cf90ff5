package cleanup

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// State: 정리 서비스 상태 (Idle → Running → Idle)
type State string

// StateIdle 등: 서비스 상태 상수
const (
	StateIdle    State = "idle"
	StateRunning State = "running"
)

// Status: 정리 실행 1회의 결과 상태
type Status string

// StatusSucceeded 등: 실행 결과 상수
const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Trigger: 실행 계기
type Trigger string

// TriggerScheduled 등: 실행 계기 상수
const (
	TriggerScheduled Trigger = "scheduled"
	TriggerForced    Trigger = "forced"
)

// HealthStatus: 헬스 체크 결과 단계
type HealthStatus string

// HealthHealthy 등: 헬스 단계 상수
const (
	HealthHealthy HealthStatus = "healthy"
	HealthWarning HealthStatus = "warning"
	HealthError   HealthStatus = "error"
)

// CleanupResult: 정리 실행 1회의 결과. 여러 시도에 걸친 누적값이다.
type CleanupResult struct {
	RunID         uuid.UUID     `json:"runId"`
	Trigger       Trigger       `json:"trigger"`
	StartedAt     time.Time     `json:"startedAt"`
	Duration      time.Duration `json:"duration"`
	Status        Status        `json:"status"`
	Attempts      int           `json:"attempts"`
	ScannedKeys   int           `json:"scannedKeys"`
	DeletedKeys   int           `json:"deletedKeys"`
	RepairedKeys  int           `json:"repairedKeys"`
	PrunedMembers int           `json:"prunedMembers"`
	Errors        []string      `json:"errors"`
}

// Statistics: 프로세스 시작 이후 누적 실행 통계
type Statistics struct {
	TotalRuns         int            `json:"totalRuns"`
	SuccessfulRuns    int            `json:"successfulRuns"`
	FailedRuns        int            `json:"failedRuns"`
	SuccessRate       float64        `json:"successRate"`
	AverageDurationMS float64        `json:"averageDurationMs"`
	LastRun           *CleanupResult `json:"lastRun,omitempty"`
}

// Health: 저장소 연결/TTL 준수 상태 점검 결과
type Health struct {
	Status          HealthStatus `json:"status"`
	LatencyMS       int64        `json:"latencyMs"`
	TTLCompliance   float64      `json:"ttlCompliance"`
	SampledKeys     int          `json:"sampledKeys"`
	Recommendations []string     `json:"recommendations"`
	CheckedAt       time.Time    `json:"checkedAt"`
}

// Archive: 실행 결과를 영구 보관하는 저장소 (선택)
type Archive interface {
	SaveRun(ctx context.Context, result CleanupResult) error
	RecentRuns(ctx context.Context, limit int) ([]CleanupResult, error)
}

// RunLock: 여러 인스턴스 중 하나만 주기 실행을 하도록 막는 분산 락 (선택)
type RunLock interface {
	Acquire(ctx context.Context, name string) (bool, error)
	Release(ctx context.Context, name string) error
}
