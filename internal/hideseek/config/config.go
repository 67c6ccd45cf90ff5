// Package config: hideseek 서비스 설정을 환경 변수로부터 로드한다.
package config

import (
	"fmt"
	"time"

	commonconfig "github.com/park285/llm-kakao-bots/hideseek-go/internal/common/config"
)

// ServerConfig: HTTP 서버 설정 (포트 등) alias
type ServerConfig = commonconfig.ServerConfig

// ServerTuningConfig: 서버 튜닝 설정 (Timeouts, Limits 등) alias
type ServerTuningConfig = commonconfig.ServerTuningConfig

// RedisConfig: Valkey 저장소 연결 설정 alias
type RedisConfig = commonconfig.RedisConfig

// PostgresConfig: 정리 실행 이력 보관용 PostgreSQL 설정 alias
type PostgresConfig = commonconfig.PostgresConfig

// LogConfig: 파일 로그 설정 alias
type LogConfig = commonconfig.LogConfig

// ArchiveConfig: 정리 실행 이력의 DB 보관 여부
type ArchiveConfig struct {
	Enabled bool
}

// GameConfig: 게임 규칙/추측 정책 설정
type GameConfig struct {
	SuccessThreshold    float64
	MaxGuessesPerPlayer int
	GuessCooldown       time.Duration
	AllowCreatorGuess   bool
	// CatalogPath: 비어있으면 내장 맵 카탈로그를 사용
	CatalogPath string
}

// CleanupConfig: 만료/정리 서비스 설정
type CleanupConfig struct {
	Enabled          bool
	Interval         time.Duration
	MaxAttempts      int
	RetryDelay       time.Duration
	NearExpiryWindow time.Duration
	ProactiveDelete  bool
	// DistributedLock: 여러 인스턴스가 떠 있을 때 주기 실행을 한 곳에서만 하도록 Valkey 락을 잡는다.
	DistributedLock bool
	// LegacyKeys: 접두사 없는 이전 버전 키(game:*, post:*, player:*)도 정리한다. 전용 DB 에서만 켠다.
	LegacyKeys    bool
	LatencyWarn   time.Duration
	ScanCount     int64
	Concurrency   int
	HistorySize   int
	TTLSampleSize int
}

// FacadeConfig: 데이터 접근 파사드 설정
type FacadeConfig struct {
	OperationTimeout time.Duration
}

// Config: 전체 애플리케이션 설정 구조체
type Config struct {
	Server       ServerConfig
	ServerTuning ServerTuningConfig
	Redis        RedisConfig
	Postgres     PostgresConfig
	Archive      ArchiveConfig
	Log          LogConfig
	Telemetry    commonconfig.TelemetryConfig
	Game         GameConfig
	Cleanup      CleanupConfig
	Facade       FacadeConfig
	AdminToken   string
}

// LoadFromEnv: 환경 변수로부터 전체 애플리케이션 설정을 로드합니다.
func LoadFromEnv() (*Config, error) {
	server, err := commonconfig.ReadServerConfigFromEnv(DefaultServerPort)
	if err != nil {
		return nil, fmt.Errorf("read server config failed: %w", err)
	}
	serverTuning, err := commonconfig.ReadServerTuningConfigFromEnv()
	if err != nil {
		return nil, fmt.Errorf("read server tuning config failed: %w", err)
	}
	redisCfg, err := readRedisConfig()
	if err != nil {
		return nil, err
	}
	postgres, err := commonconfig.ReadPostgresConfigFromEnv("hideseek", "hideseek_app")
	if err != nil {
		return nil, fmt.Errorf("read postgres config failed: %w", err)
	}
	archiveEnabled, err := commonconfig.BoolFromEnv("CLEANUP_ARCHIVE_ENABLED", false)
	if err != nil {
		return nil, fmt.Errorf("read CLEANUP_ARCHIVE_ENABLED failed: %w", err)
	}
	logCfg, err := commonconfig.ReadLogConfigFromEnv()
	if err != nil {
		return nil, fmt.Errorf("read log config failed: %w", err)
	}
	telemetry, err := commonconfig.ReadTelemetryConfigFromEnv("hideseek")
	if err != nil {
		return nil, fmt.Errorf("read telemetry config: %w", err)
	}
	game, err := readGameConfig()
	if err != nil {
		return nil, err
	}
	cleanup, err := readCleanupConfig()
	if err != nil {
		return nil, err
	}
	facadeTimeout, err := commonconfig.DurationMillisFromEnv("FACADE_OPERATION_TIMEOUT_MS", DefaultFacadeTimeoutMillis)
	if err != nil {
		return nil, fmt.Errorf("read FACADE_OPERATION_TIMEOUT_MS failed: %w", err)
	}

	return &Config{
		Server:       server,
		ServerTuning: serverTuning,
		Redis:        redisCfg,
		Postgres:     postgres,
		Archive:      ArchiveConfig{Enabled: archiveEnabled},
		Log:          logCfg,
		Telemetry:    telemetry,
		Game:         game,
		Cleanup:      cleanup,
		Facade:       FacadeConfig{OperationTimeout: facadeTimeout},
		AdminToken:   commonconfig.StringFromEnv("ADMIN_TOKEN", ""),
	}, nil
}

func readRedisConfig() (RedisConfig, error) {
	cfg, err := commonconfig.ReadRedisConfigFromEnv(commonconfig.RedisConfigEnvOptions{
		HostKeys:               []string{"HIDESEEK_REDIS_HOST", "REDIS_HOST", "CACHE_HOST"},
		PortKeys:               []string{"HIDESEEK_REDIS_PORT", "REDIS_PORT", "CACHE_PORT"},
		PasswordKeys:           []string{"HIDESEEK_REDIS_PASSWORD", "REDIS_PASSWORD", "CACHE_PASSWORD"},
		DefaultHost:            "localhost",
		DefaultPort:            6379,
		DefaultOpTimeoutMillis: DefaultRedisOpTimeoutMillis,
		DefaultPoolSize:        0,
	})
	if err != nil {
		return RedisConfig{}, fmt.Errorf("read redis config failed: %w", err)
	}
	return cfg, nil
}

func readGameConfig() (GameConfig, error) {
	threshold, err := commonconfig.Float64FromEnv("GUESS_SUCCESS_THRESHOLD", DefaultSuccessThreshold)
	if err != nil {
		return GameConfig{}, fmt.Errorf("read GUESS_SUCCESS_THRESHOLD failed: %w", err)
	}
	if threshold < 0 || threshold > 1 {
		return GameConfig{}, fmt.Errorf("invalid GUESS_SUCCESS_THRESHOLD: %v", threshold)
	}
	maxGuesses, err := commonconfig.IntFromEnv("GUESS_MAX_PER_PLAYER", DefaultMaxGuessesPerPlayer)
	if err != nil {
		return GameConfig{}, fmt.Errorf("read GUESS_MAX_PER_PLAYER failed: %w", err)
	}
	if maxGuesses < 0 {
		return GameConfig{}, fmt.Errorf("invalid GUESS_MAX_PER_PLAYER: %d", maxGuesses)
	}
	cooldown, err := commonconfig.DurationMillisFromEnv("GUESS_COOLDOWN_MS", DefaultGuessCooldown.Milliseconds())
	if err != nil {
		return GameConfig{}, fmt.Errorf("read GUESS_COOLDOWN_MS failed: %w", err)
	}
	allowCreator, err := commonconfig.BoolFromEnv("GUESS_ALLOW_CREATOR", false)
	if err != nil {
		return GameConfig{}, fmt.Errorf("read GUESS_ALLOW_CREATOR failed: %w", err)
	}

	return GameConfig{
		SuccessThreshold:    threshold,
		MaxGuessesPerPlayer: maxGuesses,
		GuessCooldown:       cooldown,
		AllowCreatorGuess:   allowCreator,
		CatalogPath:         commonconfig.StringFromEnv("HIDESEEK_MAP_CATALOG_PATH", ""),
	}, nil
}

func readCleanupConfig() (CleanupConfig, error) {
	enabled, err := commonconfig.BoolFromEnv("CLEANUP_ENABLED", true)
	if err != nil {
		return CleanupConfig{}, fmt.Errorf("read CLEANUP_ENABLED failed: %w", err)
	}
	interval, err := commonconfig.DurationSecondsFromEnv("CLEANUP_INTERVAL_SECONDS", DefaultCleanupIntervalSeconds)
	if err != nil {
		return CleanupConfig{}, fmt.Errorf("read CLEANUP_INTERVAL_SECONDS failed: %w", err)
	}
	if interval <= 0 {
		return CleanupConfig{}, fmt.Errorf("invalid CLEANUP_INTERVAL_SECONDS: %v", interval)
	}
	maxAttempts, err := commonconfig.IntFromEnv("CLEANUP_MAX_ATTEMPTS", DefaultCleanupMaxAttempts)
	if err != nil {
		return CleanupConfig{}, fmt.Errorf("read CLEANUP_MAX_ATTEMPTS failed: %w", err)
	}
	if maxAttempts <= 0 {
		return CleanupConfig{}, fmt.Errorf("invalid CLEANUP_MAX_ATTEMPTS: %d", maxAttempts)
	}
	retryDelay, err := commonconfig.DurationMillisFromEnv("CLEANUP_RETRY_DELAY_MS", DefaultCleanupRetryDelayMillis)
	if err != nil {
		return CleanupConfig{}, fmt.Errorf("read CLEANUP_RETRY_DELAY_MS failed: %w", err)
	}
	nearExpiry, err := commonconfig.DurationSecondsFromEnv("CLEANUP_NEAR_EXPIRY_SECONDS", DefaultCleanupNearExpirySeconds)
	if err != nil {
		return CleanupConfig{}, fmt.Errorf("read CLEANUP_NEAR_EXPIRY_SECONDS failed: %w", err)
	}
	proactive, err := commonconfig.BoolFromEnv("CLEANUP_PROACTIVE_DELETE", true)
	if err != nil {
		return CleanupConfig{}, fmt.Errorf("read CLEANUP_PROACTIVE_DELETE failed: %w", err)
	}
	distributedLock, err := commonconfig.BoolFromEnv("CLEANUP_DISTRIBUTED_LOCK", true)
	if err != nil {
		return CleanupConfig{}, fmt.Errorf("read CLEANUP_DISTRIBUTED_LOCK failed: %w", err)
	}
	legacyKeys, err := commonconfig.BoolFromEnv("CLEANUP_LEGACY_KEYS", false)
	if err != nil {
		return CleanupConfig{}, fmt.Errorf("read CLEANUP_LEGACY_KEYS failed: %w", err)
	}
	latencyWarn, err := commonconfig.DurationMillisFromEnv("CLEANUP_LATENCY_WARN_MS", DefaultCleanupLatencyWarnMillis)
	if err != nil {
		return CleanupConfig{}, fmt.Errorf("read CLEANUP_LATENCY_WARN_MS failed: %w", err)
	}
	scanCount, err := commonconfig.Int64FromEnv("CLEANUP_SCAN_COUNT", DefaultCleanupScanCount)
	if err != nil {
		return CleanupConfig{}, fmt.Errorf("read CLEANUP_SCAN_COUNT failed: %w", err)
	}
	concurrency, err := commonconfig.IntFromEnv("CLEANUP_CONCURRENCY", DefaultCleanupConcurrency)
	if err != nil {
		return CleanupConfig{}, fmt.Errorf("read CLEANUP_CONCURRENCY failed: %w", err)
	}
	historySize, err := commonconfig.IntFromEnv("CLEANUP_HISTORY_SIZE", DefaultCleanupHistorySize)
	if err != nil {
		return CleanupConfig{}, fmt.Errorf("read CLEANUP_HISTORY_SIZE failed: %w", err)
	}
	sampleSize, err := commonconfig.IntFromEnv("CLEANUP_TTL_SAMPLE_SIZE", DefaultCleanupTTLSampleSize)
	if err != nil {
		return CleanupConfig{}, fmt.Errorf("read CLEANUP_TTL_SAMPLE_SIZE failed: %w", err)
	}

	return CleanupConfig{
		Enabled:          enabled,
		Interval:         interval,
		MaxAttempts:      maxAttempts,
		RetryDelay:       retryDelay,
		NearExpiryWindow: nearExpiry,
		ProactiveDelete:  proactive,
		DistributedLock:  distributedLock,
		LegacyKeys:       legacyKeys,
		LatencyWarn:      latencyWarn,
		ScanCount:        scanCount,
		Concurrency:      concurrency,
		HistorySize:      historySize,
		TTLSampleSize:    sampleSize,
	}, nil
}
