// Package health: 서비스 상태 정보
package health

import (
	"context"
	"runtime"
	"sync"
	"time"
)

var (
	startTime time.Time
	version   = "dev"
	initOnce  sync.Once
)

// Init: 서비스 시작 시 호출 (버전 정보 설정)
func Init(v string) {
	initOnce.Do(func() {
		startTime = time.Now()
		if v != "" {
			version = v
		}
	})
}

// Checker: 의존 컴포넌트 상태 점검 함수. nil 이면 정상.
type Checker func(ctx context.Context) error

// Response: /health 엔드포인트 표준 응답
type Response struct {
	Status     string            `json:"status"`
	Version    string            `json:"version"`
	Uptime     string            `json:"uptime"`
	Goroutines int               `json:"goroutines"`
	Checks     map[string]string `json:"checks,omitempty"`
}

// Get: 현재 상태 반환
func Get() Response {
	return Response{
		Status:     "ok",
		Version:    version,
		Uptime:     formatDuration(time.Since(startTime)),
		Goroutines: runtime.NumGoroutine(),
	}
}

// Check: 등록된 점검 함수를 실행하여 상태를 반환한다. 하나라도 실패하면 status=degraded.
func Check(ctx context.Context, checks map[string]Checker) Response {
	resp := Get()
	if len(checks) == 0 {
		return resp
	}
	resp.Checks = make(map[string]string, len(checks))
	for name, check := range checks {
		if err := check(ctx); err != nil {
			resp.Checks[name] = err.Error()
			resp.Status = "degraded"
			continue
		}
		resp.Checks[name] = "ok"
	}
	return resp
}

// formatDuration: Duration을 초 단위로 반올림한 문자열로 변환
func formatDuration(d time.Duration) string {
	return d.Round(time.Second).String()
}
