// Package httpapi 는 운영용 HTTP 엔드포인트(헬스, 지표, 정리 관리, 게임 모더레이션)를 등록한다.
package httpapi

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/park285/llm-kakao-bots/hideseek-go/internal/common/health"
	"github.com/park285/llm-kakao-bots/hideseek-go/internal/hideseek/cleanup"
	"github.com/park285/llm-kakao-bots/hideseek-go/internal/hideseek/facade"
)

// Admin API 에러 코드
const (
	adminErrorUnauthorized   = "UNAUTHORIZED"
	adminErrorInvalidRequest = "INVALID_REQUEST"
	adminErrorInternalError  = "INTERNAL_ERROR"
	adminErrorNotFound       = "NOT_FOUND"
	adminErrorForbidden      = "FORBIDDEN"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// Deps: 라우트가 사용하는 의존성
type Deps struct {
	Cleanup    *cleanup.Service
	Games      *facade.Facade
	Checks     map[string]health.Checker
	Gatherer   prometheus.Gatherer
	AdminToken string
}

// Register: 운영 HTTP 라우트 등록. AdminToken 이 비어 있으면 /admin 라우트는 등록하지 않는다.
func Register(mux *http.ServeMux, deps Deps, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}

	// GET /health - 헬스체크 (의존 컴포넌트 포함)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		resp := health.Check(r.Context(), deps.Checks)
		status := http.StatusOK
		if resp.Status != "ok" {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, resp, logger)
	})

	// GET /metrics - Prometheus 지표
	if deps.Gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	if strings.TrimSpace(deps.AdminToken) == "" {
		logger.Warn("admin_routes_disabled", "reason", "missing admin token")
		return
	}
	admin := &adminHandler{cleanup: deps.Cleanup, games: deps.Games, token: deps.AdminToken, logger: logger}

	if deps.Cleanup != nil {
		registerCleanupRoutes(mux, admin)
	}
	if deps.Games != nil {
		registerGameRoutes(mux, admin)
	}

	logger.Info("hideseek_http_api_registered",
		"cleanup_routes", deps.Cleanup != nil,
		"game_routes", deps.Games != nil,
	)
}

func registerCleanupRoutes(mux *http.ServeMux, admin *adminHandler) {
	// POST /admin/cleanup - 즉시 정리 실행
	mux.HandleFunc("POST /admin/cleanup", admin.guard(admin.handleForceCleanup))
	// GET /admin/cleanup/history?limit=20&source=archive - 실행 기록
	mux.HandleFunc("GET /admin/cleanup/history", admin.guard(admin.handleHistory))
	// GET /admin/cleanup/stats - 누적 통계
	mux.HandleFunc("GET /admin/cleanup/stats", admin.guard(admin.handleStats))
	// GET /admin/cleanup/health - 저장소 상태 점검
	mux.HandleFunc("GET /admin/cleanup/health", admin.guard(admin.handleHealth))
}

type adminHandler struct {
	cleanup *cleanup.Service
	games   *facade.Facade
	token   string
	logger  *slog.Logger
}

// guard: X-API-Key 헤더가 관리자 토큰과 일치하는지 확인한다.
func (h *adminHandler) guard(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		provided := r.Header.Get(headerAPIKey)
		if subtle.ConstantTimeCompare([]byte(provided), []byte(h.token)) != 1 {
			writeError(w, http.StatusUnauthorized, adminErrorUnauthorized, "invalid api key", h.logger)
			return
		}
		next(w, r)
	}
}

// CleanupStateResponse: 통계와 현재 상태를 함께 담는 응답 DTO
type CleanupStateResponse struct {
	State      cleanup.State      `json:"state"`
	Statistics cleanup.Statistics `json:"statistics"`
}

func (h *adminHandler) handleForceCleanup(w http.ResponseWriter, r *http.Request) {
	// 요청이 끊겨도 시작한 정리는 끝까지 수행한다.
	result := h.cleanup.ForceCleanup(context.WithoutCancel(r.Context()))
	h.logger.Info("admin_cleanup_forced", "run_id", result.RunID.String(), "status", string(result.Status))
	writeJSON(w, http.StatusOK, result, h.logger)
}

func (h *adminHandler) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r.URL.Query().Get("limit"))
	if err != nil {
		writeError(w, http.StatusBadRequest, adminErrorInvalidRequest, err.Error(), h.logger)
		return
	}

	if r.URL.Query().Get("source") == "archive" {
		runs, err := h.cleanup.ArchivedHistory(r.Context(), limit)
		if err != nil {
			h.logger.Error("admin_cleanup_history_failed", "err", err)
			writeError(w, http.StatusInternalServerError, adminErrorInternalError, "failed to load archived history", h.logger)
			return
		}
		writeJSON(w, http.StatusOK, runs, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, h.cleanup.History(limit), h.logger)
}

func (h *adminHandler) handleStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, CleanupStateResponse{
		State:      h.cleanup.State(),
		Statistics: h.cleanup.Statistics(),
	}, h.logger)
}

func (h *adminHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	result := h.cleanup.HealthCheck(r.Context())
	status := http.StatusOK
	if result.Status == cleanup.HealthError {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, result, h.logger)
}

var errInvalidLimit = errors.New("limit must be a positive integer")

func parseLimit(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return defaultHistoryLimit, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return 0, errInvalidLimit
	}
	return min(limit, maxHistoryLimit), nil
}
