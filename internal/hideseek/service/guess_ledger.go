// Package service: 숨바꼭질 도메인 로직 (추측 채점/집계, 플레이어 등급).
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"

	cerrors "github.com/park285/llm-kakao-bots/hideseek-go/internal/common/errors"
	hsconfig "github.com/park285/llm-kakao-bots/hideseek-go/internal/hideseek/config"
	"github.com/park285/llm-kakao-bots/hideseek-go/internal/hideseek/model"
	"github.com/park285/llm-kakao-bots/hideseek-go/internal/hideseek/redis"
	"github.com/park285/llm-kakao-bots/hideseek-go/internal/hideseek/validation"
)

// maxTimestampBumps: 같은 밀리초에 같은 플레이어의 키가 겹칠 때 타임스탬프를 올려보는 최대 횟수
const maxTimestampBumps = 5

// GuessLedgerConfig: 추측 원장 설정
type GuessLedgerConfig struct {
	// SuccessThreshold: 정답으로 인정하는 최대 거리 (0 이면 기본값)
	SuccessThreshold float64
	Clock            Clock
}

// RecordGuessParams: 추측 기록 입력값. TrueSpot 은 세션의 실제 숨은 위치다.
type RecordGuessParams struct {
	GameID    string
	UserID    string
	Username  string
	ObjectKey string
	RelX      float64
	RelY      float64
	TrueSpot  model.HidingSpot
}

// GuessLedger: 추측 기록/채점 및 게임별 통계 계산
type GuessLedger struct {
	store     *redis.GuessStore
	threshold float64
	clock     Clock
	logger    *slog.Logger
}

// NewGuessLedger: 새로운 GuessLedger 를 생성합니다.
func NewGuessLedger(store *redis.GuessStore, cfg GuessLedgerConfig, logger *slog.Logger) *GuessLedger {
	if logger == nil {
		logger = slog.Default()
	}
	threshold := cfg.SuccessThreshold
	if threshold <= 0 {
		threshold = hsconfig.DefaultSuccessThreshold
	}
	return &GuessLedger{store: store, threshold: threshold, clock: cfg.Clock, logger: logger}
}

// SuccessThreshold: 적용 중인 정답 거리 임계값
func (l *GuessLedger) SuccessThreshold() float64 {
	return l.threshold
}

// Distance: 정규화 좌표 공간의 유클리드 거리
func Distance(x1, y1, x2, y2 float64) float64 {
	return math.Hypot(x1-x2, y1-y2)
}

// Score: 거리와 정답 여부를 계산한다. 오브젝트가 다르면 거리와 무관하게 오답이다.
func (l *GuessLedger) Score(objectKey string, relX, relY float64, truth model.HidingSpot) (float64, bool) {
	distance := Distance(relX, relY, truth.RelX, truth.RelY)
	return distance, objectKey == truth.ObjectKey && distance <= l.threshold
}

// RecordGuess: 추측을 채점/검증한 뒤 (gameID, userID, timestamp) 키로 저장합니다.
// 각 추측은 독립적인 append 이므로 이전 추측을 읽지 않습니다.
// 같은 플레이어가 같은 밀리초에 여러 번 제출하면 비어 있는 다음 밀리초 키를 원자적으로 차지한다.
func (l *GuessLedger) RecordGuess(ctx context.Context, params RecordGuessParams) (*model.GuessData, error) {
	distance, correct := l.Score(params.ObjectKey, params.RelX, params.RelY, params.TrueSpot)

	guess := &model.GuessData{
		GameID:    params.GameID,
		UserID:    params.UserID,
		Username:  validation.NormalizeUsername(params.Username),
		ObjectKey: params.ObjectKey,
		RelX:      params.RelX,
		RelY:      params.RelY,
		Timestamp: l.clock.nowMillis(),
		Distance:  distance,
		IsCorrect: correct,
	}
	if err := l.append(ctx, guess); err != nil {
		return nil, fmt.Errorf("record guess: %w", err)
	}

	l.logger.Info("guess_recorded",
		"game_id", guess.GameID,
		"user_id", guess.UserID,
		"object_key", guess.ObjectKey,
		"timestamp", guess.Timestamp,
		"distance", guess.Distance,
		"correct", guess.IsCorrect,
	)
	return guess, nil
}

// append: 키 충돌 시에만 타임스탬프를 1ms 씩 올린다. 시도 횟수를 다 쓰면 덮어쓰지 않고 StorageError.
func (l *GuessLedger) append(ctx context.Context, guess *model.GuessData) error {
	first := guess.Timestamp
	for i := 0; i <= maxTimestampBumps; i++ {
		err := l.store.Append(ctx, guess)
		if err == nil {
			return nil
		}
		if !errors.Is(err, redis.ErrGuessKeyTaken) {
			return err
		}
		guess.Timestamp++
	}

	l.logger.Warn("guess_timestamp_exhausted",
		"game_id", guess.GameID,
		"user_id", guess.UserID,
		"first_timestamp", first,
		"attempts", maxTimestampBumps+1,
	)
	return cerrors.StorageError{
		Operation: "append_guess",
		Err:       fmt.Errorf("timestamps %d..%d already taken: %w", first, first+maxTimestampBumps, redis.ErrGuessKeyTaken),
	}
}

// GetGameGuesses: 게임의 추측을 최신순으로 반환합니다. (동일 시각은 userID 순)
func (l *GuessLedger) GetGameGuesses(ctx context.Context, gameID string) ([]model.GuessData, error) {
	guesses, err := l.store.ListByGame(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("get game guesses: %w", err)
	}
	sort.SliceStable(guesses, func(i, j int) bool {
		if guesses[i].Timestamp != guesses[j].Timestamp {
			return guesses[i].Timestamp > guesses[j].Timestamp
		}
		return guesses[i].UserID < guesses[j].UserID
	})
	return guesses, nil
}

// GetGuessStatistics: 저장된 추측으로부터 통계를 다시 계산합니다.
// 추측이 없으면 모든 값이 0 인 통계를 반환합니다. (에러 아님)
func (l *GuessLedger) GetGuessStatistics(ctx context.Context, gameID string) (model.GuessStatistics, error) {
	guesses, err := l.GetGameGuesses(ctx, gameID)
	if err != nil {
		return model.GuessStatistics{}, fmt.Errorf("get guess statistics: %w", err)
	}
	return Aggregate(guesses), nil
}

// Aggregate: 추측 목록의 순수 집계 함수. 같은 입력 순서에 대해 같은 결과를 낸다.
func Aggregate(guesses []model.GuessData) model.GuessStatistics {
	if len(guesses) == 0 {
		return model.GuessStatistics{}
	}
	users := make(map[string]struct{}, len(guesses))
	correct := 0
	var sum float64
	for _, g := range guesses {
		users[g.UserID] = struct{}{}
		if g.IsCorrect {
			correct++
		}
		sum += g.Distance
	}
	return model.GuessStatistics{
		TotalGuesses:    len(guesses),
		CorrectGuesses:  correct,
		UniqueGuessers:  len(users),
		AverageDistance: sum / float64(len(guesses)),
	}
}

// DeleteGameGuesses: 게임의 모든 추측을 삭제합니다. (게임 삭제 시)
func (l *GuessLedger) DeleteGameGuesses(ctx context.Context, gameID string) (bool, error) {
	deleted, err := l.store.DeleteByGame(ctx, gameID)
	if err != nil {
		return false, fmt.Errorf("delete game guesses: %w", err)
	}
	return deleted, nil
}

// CountPlayerGuesses: 게임에서 플레이어가 제출한 추측 수 (추측 정책 검사용)
func (l *GuessLedger) CountPlayerGuesses(ctx context.Context, gameID, userID string) (int, error) {
	n, err := l.store.CountByPlayer(ctx, gameID, userID)
	if err != nil {
		return 0, fmt.Errorf("count player guesses: %w", err)
	}
	return n, nil
}
