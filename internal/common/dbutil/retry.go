// Package dbutil: gorm 데이터베이스 연결 유틸리티
package dbutil

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	commonconfig "github.com/park285/llm-kakao-bots/hideseek-go/internal/common/config"
)

// RetryConfig: DB 연결 재시도 설정
type RetryConfig struct {
	MaxAttempts int           // 최대 시도 횟수 (기본: 5)
	BaseDelay   time.Duration // 초기 대기 시간 (기본: 2초)
	MaxDelay    time.Duration // 최대 대기 시간 (기본: 30초)
}

// DefaultRetryConfig: 기본 재시도 설정
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 5,
		BaseDelay:   2 * time.Second,
		MaxDelay:    30 * time.Second,
	}
}

// OpenFunc: DB 연결을 시도하는 함수 타입
type OpenFunc func(ctx context.Context) (*gorm.DB, *sql.DB, error)

// OpenWithRetry: exponential backoff로 DB 연결을 재시도합니다.
// 스키마 마이그레이션이 끝나기 전에 앱이 먼저 뜨는 경우를 흡수한다.
func OpenWithRetry(
	ctx context.Context,
	openFn OpenFunc,
	cfg RetryConfig,
	log *slog.Logger,
) (*gorm.DB, *sql.DB, error) {
	defaults := DefaultRetryConfig()
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaults.MaxAttempts
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = defaults.BaseDelay
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = defaults.MaxDelay
	}
	if log == nil {
		log = slog.Default()
	}

	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = cfg.BaseDelay
	expo.MaxInterval = cfg.MaxDelay
	expo.Multiplier = 2
	expo.RandomizationFactor = 0
	expo.MaxElapsedTime = 0
	policy := backoff.WithContext(backoff.WithMaxRetries(expo, uint64(cfg.MaxAttempts-1)), ctx)

	var (
		db      *gorm.DB
		sqlDB   *sql.DB
		attempt int
	)
	operation := func() error {
		attempt++
		var err error
		db, sqlDB, err = openFn(ctx)
		return err
	}
	notify := func(err error, delay time.Duration) {
		log.Warn("db_connect_retry",
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", cfg.MaxAttempts),
			slog.Duration("delay", delay),
			slog.Any("error", err),
		)
	}

	if err := backoff.RetryNotify(operation, policy, notify); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, nil, fmt.Errorf("db connect cancelled: %w", ctxErr)
		}
		return nil, nil, fmt.Errorf("db connect failed after %d attempts: %w", attempt, err)
	}
	if attempt > 1 {
		log.Info("db_connect_success_after_retry", slog.Int("attempts", attempt))
	}
	return db, sqlDB, nil
}

// PostgresDSN: 접속 설정으로 DSN 을 만든다. SocketPath 가 있으면 UDS 디렉터리를 host 로 쓴다.
func PostgresDSN(cfg commonconfig.PostgresConfig) string {
	host := cfg.Host
	if cfg.SocketPath != "" {
		host = cfg.SocketPath
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode,
	)
}

// OpenPostgres: gorm postgres 드라이버로 연결하고 Ping 으로 확인한다.
func OpenPostgres(cfg commonconfig.PostgresConfig) OpenFunc {
	return func(ctx context.Context) (*gorm.DB, *sql.DB, error) {
		db, err := gorm.Open(postgres.Open(PostgresDSN(cfg)), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Warn),
		})
		if err != nil {
			return nil, nil, fmt.Errorf("gorm open failed: %w", err)
		}

		sqlDB, err := db.DB()
		if err != nil {
			return nil, nil, fmt.Errorf("get sql db failed: %w", err)
		}

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := sqlDB.PingContext(pingCtx); err != nil {
			_ = sqlDB.Close()
			return nil, nil, fmt.Errorf("db ping failed: %w", err)
		}
		return db, sqlDB, nil
	}
}
