package config

import (
	"fmt"
	"strings"
)

// ReadServerConfigFromEnv: HTTP 서버 호스트와 포트 설정을 환경 변수에서 읽어옵니다.
func ReadServerConfigFromEnv(defaultPort int) (ServerConfig, error) {
	serverPort, err := IntFromEnv("SERVER_PORT", defaultPort)
	if err != nil {
		return ServerConfig{}, fmt.Errorf("read SERVER_PORT failed: %w", err)
	}

	return ServerConfig{
		Host: StringFromEnv("SERVER_HOST", "0.0.0.0"),
		Port: serverPort,
	}, nil
}

// ReadServerTuningConfigFromEnv: HTTP 서버 튜닝 설정(Timeouts, Limits)을 환경 변수에서 읽어옵니다.
func ReadServerTuningConfigFromEnv() (ServerTuningConfig, error) {
	readHeaderTimeout, err := DurationSecondsFromEnv("SERVER_READ_HEADER_TIMEOUT_SECONDS", 5)
	if err != nil {
		return ServerTuningConfig{}, fmt.Errorf("read SERVER_READ_HEADER_TIMEOUT_SECONDS failed: %w", err)
	}

	// 0을 주면 비활성화
	idleTimeout, err := DurationSecondsFromEnv("SERVER_IDLE_TIMEOUT_SECONDS", 90)
	if err != nil {
		return ServerTuningConfig{}, fmt.Errorf("read SERVER_IDLE_TIMEOUT_SECONDS failed: %w", err)
	}

	maxHeaderBytes, err := IntFromEnv("SERVER_MAX_HEADER_BYTES", 1<<20) // 1MiB
	if err != nil {
		return ServerTuningConfig{}, fmt.Errorf("read SERVER_MAX_HEADER_BYTES failed: %w", err)
	}
	if maxHeaderBytes < 0 {
		return ServerTuningConfig{}, fmt.Errorf("invalid SERVER_MAX_HEADER_BYTES: %d", maxHeaderBytes)
	}

	return ServerTuningConfig{
		ReadHeaderTimeout: readHeaderTimeout,
		IdleTimeout:       idleTimeout,
		MaxHeaderBytes:    maxHeaderBytes,
	}, nil
}

// RedisConfigEnvOptions: Redis 설정 읽기에 사용할 환경 변수 키 및 기본값 옵션입니다.
type RedisConfigEnvOptions struct {
	HostKeys     []string
	PortKeys     []string
	PasswordKeys []string

	DefaultHost string
	DefaultPort int

	DefaultOpTimeoutMillis int64
	DefaultPoolSize        int
}

// ReadRedisConfigFromEnv: Redis(Valkey) 연결 설정을 환경 변수에서 읽어옵니다.
// 여러 환경 변수 키 중 첫 번째로 값이 존재하는 것을 사용합니다.
func ReadRedisConfigFromEnv(opts RedisConfigEnvOptions) (RedisConfig, error) {
	port, err := IntFromEnvFirstNonEmpty(opts.PortKeys, opts.DefaultPort)
	if err != nil {
		return RedisConfig{}, fmt.Errorf("read redis port failed: %w", err)
	}
	db, err := IntFromEnv("REDIS_DB", 0)
	if err != nil {
		return RedisConfig{}, fmt.Errorf("read REDIS_DB failed: %w", err)
	}
	useTLS, err := BoolFromEnv("REDIS_TLS", false)
	if err != nil {
		return RedisConfig{}, fmt.Errorf("read REDIS_TLS failed: %w", err)
	}
	dialTimeout, err := DurationMillisFromEnv("REDIS_DIAL_TIMEOUT_MS", 10_000)
	if err != nil {
		return RedisConfig{}, fmt.Errorf("read REDIS_DIAL_TIMEOUT_MS failed: %w", err)
	}
	writeTimeout, err := DurationMillisFromEnv("REDIS_WRITE_TIMEOUT_MS", 3_000)
	if err != nil {
		return RedisConfig{}, fmt.Errorf("read REDIS_WRITE_TIMEOUT_MS failed: %w", err)
	}
	opTimeout, err := DurationMillisFromEnv("REDIS_OP_TIMEOUT_MS", opts.DefaultOpTimeoutMillis)
	if err != nil {
		return RedisConfig{}, fmt.Errorf("read REDIS_OP_TIMEOUT_MS failed: %w", err)
	}
	poolSize, err := IntFromEnv("REDIS_POOL_SIZE", opts.DefaultPoolSize)
	if err != nil {
		return RedisConfig{}, fmt.Errorf("read REDIS_POOL_SIZE failed: %w", err)
	}

	return RedisConfig{
		Host:     StringFromEnvFirstNonEmpty(opts.HostKeys, opts.DefaultHost),
		Port:     port,
		Password: StringFromEnvFirstNonEmpty(opts.PasswordKeys, ""),
		DB:       db,
		UseTLS:   useTLS,

		DialTimeout:  dialTimeout,
		WriteTimeout: writeTimeout,
		OpTimeout:    opTimeout,

		PoolSize: poolSize,
	}, nil
}

// ReadPostgresConfigFromEnv: PostgreSQL 접속 설정을 환경 변수에서 읽어옵니다.
func ReadPostgresConfigFromEnv(defaultName, defaultUser string) (PostgresConfig, error) {
	port, err := IntFromEnv("DB_PORT", 5432)
	if err != nil {
		return PostgresConfig{}, fmt.Errorf("read DB_PORT failed: %w", err)
	}

	return PostgresConfig{
		Host:       StringFromEnv("DB_HOST", "localhost"),
		Port:       port,
		SocketPath: StringFromEnv("DB_SOCKET_PATH", ""),
		Name:       StringFromEnv("DB_NAME", defaultName),
		User:       StringFromEnv("DB_USER", defaultUser),
		Password:   StringFromEnv("DB_PASSWORD", ""),
		SSLMode:    StringFromEnv("DB_SSLMODE", "disable"),
	}, nil
}

// ReadLogConfigFromEnv: 로그 파일 출력 설정(디렉터리, 크기, 백업 수)을 환경 변수에서 읽어옵니다.
func ReadLogConfigFromEnv() (LogConfig, error) {
	dir := StringFromEnv("LOG_DIR", "")
	if strings.TrimSpace(dir) == "" {
		return LogConfig{Dir: ""}, nil
	}

	maxSizeMB, err := IntFromEnv("LOG_FILE_MAX_SIZE_MB", 1)
	if err != nil {
		return LogConfig{}, fmt.Errorf("read LOG_FILE_MAX_SIZE_MB failed: %w", err)
	}
	maxBackups, err := IntFromEnv("LOG_FILE_MAX_BACKUPS", 30)
	if err != nil {
		return LogConfig{}, fmt.Errorf("read LOG_FILE_MAX_BACKUPS failed: %w", err)
	}
	maxAgeDays, err := IntFromEnv("LOG_FILE_MAX_AGE_DAYS", 7)
	if err != nil {
		return LogConfig{}, fmt.Errorf("read LOG_FILE_MAX_AGE_DAYS failed: %w", err)
	}
	if maxSizeMB <= 0 || maxBackups <= 0 || maxAgeDays <= 0 {
		return LogConfig{}, fmt.Errorf(
			"invalid log rotation size=%d backups=%d age=%d",
			maxSizeMB, maxBackups, maxAgeDays,
		)
	}

	compress, err := BoolFromEnv("LOG_FILE_COMPRESS", true)
	if err != nil {
		return LogConfig{}, fmt.Errorf("read LOG_FILE_COMPRESS failed: %w", err)
	}

	return LogConfig{
		Dir:        dir,
		MaxSizeMB:  maxSizeMB,
		MaxBackups: maxBackups,
		MaxAgeDays: maxAgeDays,
		Compress:   compress,
	}, nil
}

// ReadTelemetryConfigFromEnv: OpenTelemetry 설정을 환경 변수에서 읽습니다.
func ReadTelemetryConfigFromEnv(defaultServiceName string) (TelemetryConfig, error) {
	enabled, err := BoolFromEnv("OTEL_ENABLED", false)
	if err != nil {
		return TelemetryConfig{}, fmt.Errorf("read OTEL_ENABLED failed: %w", err)
	}
	insecure, err := BoolFromEnv("OTEL_EXPORTER_OTLP_INSECURE", true)
	if err != nil {
		return TelemetryConfig{}, fmt.Errorf("read OTEL_EXPORTER_OTLP_INSECURE failed: %w", err)
	}
	sampleRate, err := Float64FromEnv("OTEL_SAMPLE_RATE", 1.0)
	if err != nil {
		return TelemetryConfig{}, fmt.Errorf("read OTEL_SAMPLE_RATE failed: %w", err)
	}

	return TelemetryConfig{
		Enabled:        enabled,
		ServiceName:    StringFromEnv("OTEL_SERVICE_NAME", defaultServiceName),
		ServiceVersion: StringFromEnv("OTEL_SERVICE_VERSION", "1.0.0"),
		Environment:    StringFromEnv("OTEL_ENVIRONMENT", "production"),
		OTLPEndpoint:   StringFromEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "jaeger:4317"),
		OTLPInsecure:   insecure,
		SampleRate:     sampleRate,
	}, nil
}
