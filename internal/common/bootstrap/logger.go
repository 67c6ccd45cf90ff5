package bootstrap

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"gopkg.in/natefinch/lumberjack.v2"

	commonconfig "github.com/park285/llm-kakao-bots/hideseek-go/internal/common/config"
)

// NewLogger: 기본 slog 로거를 생성합니다. (stdout, tint 핸들러 사용)
// LOG_LEVEL 환경 변수(debug/info/warn/error)로 레벨을 조정할 수 있습니다.
func NewLogger() *slog.Logger {
	return slog.New(tint.NewHandler(os.Stdout, &tint.Options{
		Level:      ParseLevel(commonconfig.StringFromEnv("LOG_LEVEL", "info")),
		TimeFormat: time.RFC3339,
		AddSource:  true,
	}))
}

// ParseLevel: 문자열 로그 레벨을 slog.Level 로 변환한다. 알 수 없는 값은 Info.
func ParseLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// EnableFileLogging: 파일 로깅을 활성화하고, 파일과 stdout에 동시에 출력하는 로거를 반환합니다.
// enableOTel이 true면 로그에 trace_id/span_id가 자동으로 추가됩니다.
// cfg.Dir 이 비어 있으면 (nil, nil).
func EnableFileLogging(cfg commonconfig.LogConfig, fileName string, enableOTel bool) (*slog.Logger, error) {
	logDir := strings.TrimSpace(cfg.Dir)
	if logDir == "" {
		return nil, nil
	}
	if cfg.MaxSizeMB <= 0 || cfg.MaxBackups <= 0 || cfg.MaxAgeDays <= 0 {
		return nil, fmt.Errorf("invalid log config: size=%d backups=%d age_days=%d", cfg.MaxSizeMB, cfg.MaxBackups, cfg.MaxAgeDays)
	}

	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, fmt.Errorf("create log dir failed: %w", err)
	}

	logFile := rotatingFile(cfg, filepath.Join(logDir, fileName), 1)
	// combined.log: 같은 호스트의 모든 서비스 로그가 모인다
	combinedLogFile := rotatingFile(cfg, filepath.Join(logDir, "combined.log"), 3)

	w := io.MultiWriter(os.Stdout, logFile, combinedLogFile)

	var handler slog.Handler = tint.NewHandler(w, &tint.Options{
		Level:      ParseLevel(commonconfig.StringFromEnv("LOG_LEVEL", "info")),
		TimeFormat: time.RFC3339,
		AddSource:  true,
		NoColor:    true,
	})
	if enableOTel {
		handler = withTraceCorrelation(handler)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	logger.Info("file_logging_enabled",
		slog.String("path", logFile.Filename),
		slog.String("combined", combinedLogFile.Filename),
		slog.Bool("otel_correlation", enableOTel),
	)
	return logger, nil
}

func rotatingFile(cfg commonconfig.LogConfig, path string, sizeFactor int) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    cfg.MaxSizeMB * sizeFactor, // megabytes
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays, // days
		Compress:   cfg.Compress,
	}
}
