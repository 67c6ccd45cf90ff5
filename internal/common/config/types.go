package config

import "time"

// ServerConfig: HTTP 서버 주소/포트 설정입니다.
type ServerConfig struct {
	Host string // 서버 바인딩 호스트
	Port int    // 서버 리스닝 포트
}

// RedisConfig: Redis/Valkey 저장소 연결 설정입니다.
type RedisConfig struct {
	Host     string // 서버 호스트
	Port     int    // 서버 포트
	Password string // 인증 패스워드
	DB       int    // 사용할 DB 번호
	UseTLS   bool

	DialTimeout  time.Duration // 연결 타임아웃
	WriteTimeout time.Duration // 쓰기 타임아웃
	// OpTimeout: 저장소 명령 1회당 타임아웃 (초과 시 실패와 동일하게 취급)
	OpTimeout time.Duration

	PoolSize int // 블로킹 커넥션 풀 크기
}

// PostgresConfig: PostgreSQL 데이터베이스 설정
type PostgresConfig struct {
	Host       string
	Port       int
	SocketPath string // UDS 경로 (비어있으면 TCP 사용)
	Name       string
	User       string
	Password   string
	SSLMode    string
}

// LogConfig: 파일 로그 로테이션 설정입니다.
type LogConfig struct {
	Dir string // 로그 파일 디렉터리

	MaxSizeMB  int  // 단일 파일 최대 크기 (MB)
	MaxBackups int  // 보관할 백업 파일 수
	MaxAgeDays int  // 백업 파일 보관 일수
	Compress   bool // 백업 파일 압축 여부
}

// ServerTuningConfig: HTTP 서버 튜닝 설정(Timeouts, Limits)입니다.
type ServerTuningConfig struct {
	ReadHeaderTimeout time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int
}

// TelemetryConfig: OpenTelemetry 분산 추적 설정입니다.
type TelemetryConfig struct {
	Enabled        bool
	ServiceName    string
	ServiceVersion string
	Environment    string
	OTLPEndpoint   string
	OTLPInsecure   bool
	SampleRate     float64
}
