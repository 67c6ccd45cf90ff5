package config

import "time"

// ServiceName 는 로그/트레이스에 쓰는 서비스 이름이다.
const ServiceName = "hideseek"

// RedisKeyPrefix 는 Redis 키 상수 목록이다.
// 형식: hs:<entity>:<id>[:<sub>[:<ts>]]
const (
	RedisKeyPrefix     = "hs"
	RedisKeyGame       = RedisKeyPrefix + ":game"
	RedisKeyPost       = RedisKeyPrefix + ":post"
	RedisKeyGuess      = RedisKeyPrefix + ":guess"
	RedisKeyGuessIndex = RedisKeyPrefix + ":guesses"
	RedisKeyPlayer     = RedisKeyPrefix + ":player"
	RedisKeyGuessLimit = RedisKeyPrefix + ":guess_limit"
	RedisKeyLock       = RedisKeyPrefix + ":lock"

	// 이전 버전 키 (읽기 전용)
	LegacyKeyGame   = "game"
	LegacyKeyPost   = "post"
	LegacyKeyPlayer = "player"
)

// SessionTTL 는 레코드별 TTL 상수 목록이다.
const (
	SessionTTL = 30 * 24 * time.Hour
	PostTTL    = SessionTTL
	GuessTTL   = 30 * 24 * time.Hour
	PlayerTTL  = 90 * 24 * time.Hour

	// GuessLimitRepairTTL: TTL 없이 남은 쿨다운 키에 부여하는 TTL
	GuessLimitRepairTTL = time.Minute
)

// DefaultSuccessThreshold: 정규화 좌표 공간에서 정답으로 인정하는 최대 거리
const DefaultSuccessThreshold = 0.1

// 게임 정책 기본값
const (
	DefaultGuessCooldown       = 3 * time.Second
	DefaultMaxGuessesPerPlayer = 0 // 0 = 무제한
)

// 정리(cleanup) 서비스 기본값
const (
	DefaultCleanupIntervalSeconds   = 24 * 60 * 60
	DefaultCleanupMaxAttempts       = 3
	DefaultCleanupRetryDelayMillis  = 5_000
	DefaultCleanupNearExpirySeconds = 3600
	DefaultCleanupLatencyWarnMillis = 500
	DefaultCleanupScanCount         = 500
	DefaultCleanupConcurrency       = 4
	DefaultCleanupHistorySize       = 100
	DefaultCleanupTTLSampleSize     = 50
)

// 서버 기본값
const (
	DefaultServerPort             = 40270
	DefaultRedisOpTimeoutMillis   = 2_000
	DefaultFacadeTimeoutMillis    = 5_000
	DefaultShutdownTimeoutSeconds = 10
)
