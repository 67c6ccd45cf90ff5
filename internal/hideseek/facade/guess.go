package facade

import (
	"context"
	"fmt"
	"sort"

	"go.opentelemetry.io/otel/attribute"

	cerrors "github.com/park285/llm-kakao-bots/hideseek-go/internal/common/errors"
	"github.com/park285/llm-kakao-bots/hideseek-go/internal/hideseek/model"
	"github.com/park285/llm-kakao-bots/hideseek-go/internal/hideseek/service"
	"github.com/park285/llm-kakao-bots/hideseek-go/internal/hideseek/validation"
)

// SubmitGuessParams: 추측 제출 입력값
type SubmitGuessParams struct {
	GameID    string  `json:"gameId"`
	ObjectKey string  `json:"objectKey"`
	RelX      float64 `json:"relX"`
	RelY      float64 `json:"relY"`
}

// GuessOutcome: 추측 제출 결과 (저장된 추측과 갱신된 프로필/등급 변화)
type GuessOutcome struct {
	Guess  *model.GuessData    `json:"guess"`
	Player *service.RankUpdate `json:"player"`
}

// SubmitGuess: 세션 조회 → 추측 정책 → 채점/저장 → 프로필 갱신 순서로 처리한다.
// 정책 위반은 저장 전에 ValidationError(field=guess) 또는 AuthorizationError 로 거절된다.
func (f *Facade) SubmitGuess(ctx context.Context, identity model.Identity, params SubmitGuessParams) (outcome *GuessOutcome, err error) {
	ctx, end := f.begin(ctx, "SubmitGuess",
		attribute.String("hideseek.game_id", params.GameID),
		attribute.String("hideseek.user_id", identity.UserID),
	)
	defer func() { end(err) }()

	if err := f.validator.ValidateIdentifier("userId", identity.UserID); err != nil {
		return nil, err
	}
	session, err := f.readSession(ctx, params.GameID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, cerrors.NotFoundError{Entity: "game", ID: params.GameID}
	}
	if !session.IsActive {
		return nil, cerrors.ValidationError{Field: "gameId", Reason: "game is not active"}
	}
	if session.Creator == identity.UserID && !f.policy.AllowCreatorGuess {
		return nil, cerrors.AuthorizationError{UserID: identity.UserID, Reason: "creator cannot guess own game"}
	}

	if err := f.validator.ValidateGuessObject(session.MapKey, params.ObjectKey); err != nil {
		return nil, err
	}
	username := validation.NormalizeUsername(identity.Username)
	if err := f.validator.ValidateGuess(&model.GuessData{
		GameID:    session.GameID,
		UserID:    identity.UserID,
		Username:  username,
		ObjectKey: params.ObjectKey,
		RelX:      params.RelX,
		RelY:      params.RelY,
	}); err != nil {
		return nil, err
	}

	if err := f.checkGuessPolicy(ctx, session.GameID, identity.UserID); err != nil {
		return nil, err
	}

	// 이전 버전 프로필이 있으면 누적 통계를 이어가도록 먼저 옮긴다.
	if _, err := f.getOrCreatePlayer(ctx, identity); err != nil {
		return nil, err
	}

	guess, err := f.ledger.RecordGuess(ctx, service.RecordGuessParams{
		GameID:    session.GameID,
		UserID:    identity.UserID,
		Username:  username,
		ObjectKey: params.ObjectKey,
		RelX:      params.RelX,
		RelY:      params.RelY,
		TrueSpot:  session.HidingSpot,
	})
	if err != nil {
		return nil, err
	}

	update, err := f.players.UpdateAfterGuess(ctx, identity.UserID, username, guess.IsCorrect)
	if err != nil {
		f.logger.Warn("player_update_after_guess_failed",
			"game_id", session.GameID,
			"user_id", identity.UserID,
			"err", err,
		)
		return nil, err
	}
	return &GuessOutcome{Guess: guess, Player: update}, nil
}

// checkGuessPolicy: 추측 횟수 제한과 쿨다운을 검사한다. 쿨다운은 통과 시점에 시작된다.
func (f *Facade) checkGuessPolicy(ctx context.Context, gameID, userID string) error {
	if limit := f.policy.MaxGuessesPerPlayer; limit > 0 {
		count, err := f.ledger.CountPlayerGuesses(ctx, gameID, userID)
		if err != nil {
			return err
		}
		if count >= limit {
			return cerrors.ValidationError{Field: "guess", Reason: fmt.Sprintf("guess limit reached (%d per game)", limit)}
		}
	}
	if f.limiter == nil {
		return nil
	}
	allowed, wait, err := f.limiter.Acquire(ctx, gameID, userID)
	if err != nil {
		return err
	}
	if !allowed {
		return cerrors.ValidationError{Field: "guess", Reason: fmt.Sprintf("cooldown active, retry in %dms", wait.Milliseconds())}
	}
	return nil
}

// GuesserSummary: 대시보드의 플레이어별 추측 요약
type GuesserSummary struct {
	UserID       string  `json:"userId"`
	Username     string  `json:"username"`
	Guesses      int     `json:"guesses"`
	Correct      int     `json:"correct"`
	BestDistance float64 `json:"bestDistance"`
	FoundAt      int64   `json:"foundAt,omitempty"`
}

// CreatorDashboard: 출제자용 게임 현황
type CreatorDashboard struct {
	Game       *model.GameSession    `json:"game"`
	Statistics model.GuessStatistics `json:"statistics"`
	Guessers   []GuesserSummary      `json:"guessers"`
	Recent     []model.GuessData     `json:"recent"`
}

// dashboardRecentLimit: 대시보드에 싣는 최근 추측 수
const dashboardRecentLimit = 20

// GetCreatorDashboard: 게임 통계와 플레이어별 요약을 한 번에 반환한다. 출제자나 운영자만 볼 수 있고, 게임이 없으면 nil.
func (f *Facade) GetCreatorDashboard(ctx context.Context, identity model.Identity, gameID string) (dashboard *CreatorDashboard, err error) {
	ctx, end := f.begin(ctx, "GetCreatorDashboard", attribute.String("hideseek.game_id", gameID))
	defer func() { end(err) }()

	session, err := f.readSession(ctx, gameID)
	if err != nil || session == nil {
		return nil, err
	}
	if !canManage(identity, session) {
		return nil, cerrors.AuthorizationError{UserID: identity.UserID, Reason: "only the creator or a moderator can view the dashboard"}
	}

	guesses, err := f.ledger.GetGameGuesses(ctx, gameID)
	if err != nil {
		return nil, err
	}
	recent := guesses
	if len(recent) > dashboardRecentLimit {
		recent = recent[:dashboardRecentLimit]
	}
	return &CreatorDashboard{
		Game:       session,
		Statistics: service.Aggregate(guesses),
		Guessers:   SummarizeGuessers(guesses),
		Recent:     recent,
	}, nil
}

// SummarizeGuessers: 플레이어별 추측 수/정답 수/최단 거리를 집계한다.
// 정답자를 먼저(먼저 찾은 순), 그 다음 최단 거리 순으로 정렬한다.
func SummarizeGuessers(guesses []model.GuessData) []GuesserSummary {
	byUser := make(map[string]*GuesserSummary)
	order := make([]string, 0)
	for _, g := range guesses {
		summary, ok := byUser[g.UserID]
		if !ok {
			summary = &GuesserSummary{UserID: g.UserID, Username: g.Username, BestDistance: g.Distance}
			byUser[g.UserID] = summary
			order = append(order, g.UserID)
		}
		summary.Guesses++
		if g.Distance < summary.BestDistance {
			summary.BestDistance = g.Distance
		}
		if g.IsCorrect {
			summary.Correct++
			if summary.FoundAt == 0 || g.Timestamp < summary.FoundAt {
				summary.FoundAt = g.Timestamp
			}
		}
	}

	out := make([]GuesserSummary, 0, len(order))
	for _, userID := range order {
		out = append(out, *byUser[userID])
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if (a.Correct > 0) != (b.Correct > 0) {
			return a.Correct > 0
		}
		if a.Correct > 0 && a.FoundAt != b.FoundAt {
			return a.FoundAt < b.FoundAt
		}
		if a.BestDistance != b.BestDistance {
			return a.BestDistance < b.BestDistance
		}
		return a.UserID < b.UserID
	})
	return out
}
