// Package facade 는 요청 계층이 사용하는 숨바꼭질 데이터 접근 API 를 제공한다.
// 읽기는 현재 저장소 → 이전 버전 저장소 순서로 시도하고, 없는 레코드는 에러가 아닌 nil 로 표현한다.
package facade

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	cerrors "github.com/park285/llm-kakao-bots/hideseek-go/internal/common/errors"
	"github.com/park285/llm-kakao-bots/hideseek-go/internal/hideseek/model"
	"github.com/park285/llm-kakao-bots/hideseek-go/internal/hideseek/redis"
	"github.com/park285/llm-kakao-bots/hideseek-go/internal/hideseek/service"
	"github.com/park285/llm-kakao-bots/hideseek-go/internal/hideseek/validation"
)

const tracerName = "hideseek-go/facade"

// GuessLimiter: (게임, 플레이어) 단위 추측 쿨다운
type GuessLimiter interface {
	Acquire(ctx context.Context, gameID, userID string) (bool, time.Duration, error)
}

// GuessPolicy: 추측 허용 정책. 저장소가 아니라 Facade 가 강제한다.
type GuessPolicy struct {
	// MaxGuessesPerPlayer: 게임당 플레이어 최대 추측 수 (0 이면 무제한)
	MaxGuessesPerPlayer int
	// AllowCreatorGuess: 출제자가 자기 게임에 추측할 수 있는지
	AllowCreatorGuess bool
}

// Dependencies: Facade 가 조합하는 저장소/서비스
type Dependencies struct {
	Sessions  *redis.SessionStore
	Ledger    *service.GuessLedger
	Players   *service.PlayerService
	Validator *validation.Validator
	// Limiter: nil 이면 쿨다운 없음
	Limiter GuessLimiter
	// Strategies: 읽기 전략 목록. 비어 있으면 현재 저장소만 읽는다.
	Strategies []ReadStrategy
}

// Config: Facade 동작 설정
type Config struct {
	Policy           GuessPolicy
	OperationTimeout time.Duration
}

// Facade: 세션/추측/플레이어 저장소를 하나의 API 로 묶는다.
type Facade struct {
	sessions   *redis.SessionStore
	ledger     *service.GuessLedger
	players    *service.PlayerService
	validator  *validation.Validator
	limiter    GuessLimiter
	strategies []ReadStrategy
	policy     GuessPolicy
	timeout    time.Duration
	tracer     trace.Tracer
	logger     *slog.Logger
}

// New: 새로운 Facade 를 생성합니다.
func New(deps Dependencies, cfg Config, logger *slog.Logger) *Facade {
	if logger == nil {
		logger = slog.Default()
	}
	strategies := deps.Strategies
	if len(strategies) == 0 {
		strategies = []ReadStrategy{NewCanonicalStrategy(deps.Sessions, deps.Players)}
	}
	return &Facade{
		sessions:   deps.Sessions,
		ledger:     deps.Ledger,
		players:    deps.Players,
		validator:  deps.Validator,
		limiter:    deps.Limiter,
		strategies: strategies,
		policy:     cfg.Policy,
		timeout:    cfg.OperationTimeout,
		tracer:     otel.Tracer(tracerName),
		logger:     logger,
	}
}

// Policy: 적용 중인 추측 정책
func (f *Facade) Policy() GuessPolicy {
	return f.policy
}

// begin: 작업 타임아웃과 span 을 시작한다. 반환된 함수는 반드시 작업 에러와 함께 호출해야 한다.
func (f *Facade) begin(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	ctx, span := f.tracer.Start(ctx, "Facade."+op, trace.WithAttributes(attrs...))
	cancel := context.CancelFunc(func() {})
	if f.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
	}
	return ctx, func(err error) {
		cancel()
		switch {
		case err == nil:
			span.SetStatus(codes.Ok, "")
		case cerrors.IsExpectedUserBehavior(err):
			span.SetAttributes(attribute.String("hideseek.rejection", err.Error()))
		default:
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}
}

// CreateGameParams: 게임 생성 입력값
type CreateGameParams struct {
	MapKey     string           `json:"mapKey"`
	HidingSpot model.HidingSpot `json:"hidingSpot"`
	PostID     string           `json:"postId,omitempty"`
	PostURL    string           `json:"postUrl,omitempty"`
}

// CreateGame: 호출자를 출제자로 하는 새 게임을 만든다. gameID 는 UUID 로 발급한다.
func (f *Facade) CreateGame(ctx context.Context, identity model.Identity, params CreateGameParams) (session *model.GameSession, err error) {
	ctx, end := f.begin(ctx, "CreateGame", attribute.String("hideseek.map_key", params.MapKey))
	defer func() { end(err) }()

	if err := f.validator.ValidateIdentifier("creator", identity.UserID); err != nil {
		return nil, err
	}
	return f.sessions.CreateSession(ctx, redis.CreateSessionParams{
		GameID:     uuid.NewString(),
		Creator:    identity.UserID,
		MapKey:     params.MapKey,
		HidingSpot: params.HidingSpot,
		PostID:     params.PostID,
		PostURL:    params.PostURL,
	})
}

// GetGame: 게임을 조회한다. 없으면 nil.
func (f *Facade) GetGame(ctx context.Context, gameID string) (session *model.GameSession, err error) {
	ctx, end := f.begin(ctx, "GetGame", attribute.String("hideseek.game_id", gameID))
	defer func() { end(err) }()

	return f.readSession(ctx, gameID)
}

func (f *Facade) readSession(ctx context.Context, gameID string) (*model.GameSession, error) {
	if err := f.validator.ValidateIdentifier("gameId", gameID); err != nil {
		return nil, err
	}
	session, _, err := readFirst(f.strategies, func(s ReadStrategy) (*model.GameSession, error) {
		return s.GetSession(ctx, gameID)
	})
	if err != nil {
		return nil, fmt.Errorf("get game: %w", err)
	}
	return session, nil
}

// GetGameByPostID: 게시물 ID 로 게임을 조회한다. 없으면 nil.
func (f *Facade) GetGameByPostID(ctx context.Context, postID string) (session *model.GameSession, err error) {
	ctx, end := f.begin(ctx, "GetGameByPostID", attribute.String("hideseek.post_id", postID))
	defer func() { end(err) }()

	if err := f.validator.ValidateIdentifier("postId", postID); err != nil {
		return nil, err
	}
	session, _, err = readFirst(f.strategies, func(s ReadStrategy) (*model.GameSession, error) {
		return s.GetSessionByPostID(ctx, postID)
	})
	if err != nil {
		return nil, fmt.Errorf("get game by post: %w", err)
	}
	return session, nil
}

// AttachPost: 게시 후 전달받은 postID/postURL 을 게임에 기록한다. 출제자만 가능하다.
// 이전 버전 저장소에서 읽은 게임은 현재 저장소로 옮겨 기록된다.
func (f *Facade) AttachPost(ctx context.Context, identity model.Identity, gameID, postID, postURL string) (session *model.GameSession, err error) {
	ctx, end := f.begin(ctx, "AttachPost", attribute.String("hideseek.game_id", gameID))
	defer func() { end(err) }()

	session, err = f.readSession(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, cerrors.NotFoundError{Entity: "game", ID: gameID}
	}
	if session.Creator != identity.UserID {
		return nil, cerrors.AuthorizationError{UserID: identity.UserID, Reason: "only the creator can attach a post"}
	}

	session.PostID = postID
	session.PostURL = postURL
	if err := f.sessions.UpdateSession(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// IsCreator: userID 가 게임의 출제자인지 확인한다. 게임이 없으면 false.
func (f *Facade) IsCreator(ctx context.Context, gameID, userID string) (ok bool, err error) {
	ctx, end := f.begin(ctx, "IsCreator", attribute.String("hideseek.game_id", gameID))
	defer func() { end(err) }()

	session, err := f.readSession(ctx, gameID)
	if err != nil || session == nil {
		return false, err
	}
	return session.Creator == userID, nil
}

// GetGameGuesses: 게임의 추측 목록(최신순)을 반환한다. 출제자나 운영자만 볼 수 있다.
func (f *Facade) GetGameGuesses(ctx context.Context, identity model.Identity, gameID string) (guesses []model.GuessData, err error) {
	ctx, end := f.begin(ctx, "GetGameGuesses", attribute.String("hideseek.game_id", gameID))
	defer func() { end(err) }()

	session, err := f.readSession(ctx, gameID)
	if err != nil || session == nil {
		return nil, err
	}
	if !canManage(identity, session) {
		return nil, cerrors.AuthorizationError{UserID: identity.UserID, Reason: "only the creator or a moderator can view guesses"}
	}
	return f.ledger.GetGameGuesses(ctx, gameID)
}

// GetGameStatistics: 게임 추측 집계. 추측이 없으면 0 값이다.
func (f *Facade) GetGameStatistics(ctx context.Context, gameID string) (stats model.GuessStatistics, err error) {
	ctx, end := f.begin(ctx, "GetGameStatistics", attribute.String("hideseek.game_id", gameID))
	defer func() { end(err) }()

	if err := f.validator.ValidateIdentifier("gameId", gameID); err != nil {
		return model.GuessStatistics{}, err
	}
	return f.ledger.GetGuessStatistics(ctx, gameID)
}

// DeleteGame: 게임과 추측 기록을 삭제한다. 출제자나 운영자만 가능하며, 게임이 없으면 false.
func (f *Facade) DeleteGame(ctx context.Context, identity model.Identity, gameID string) (deleted bool, err error) {
	ctx, end := f.begin(ctx, "DeleteGame", attribute.String("hideseek.game_id", gameID))
	defer func() { end(err) }()

	session, err := f.readSession(ctx, gameID)
	if err != nil || session == nil {
		return false, err
	}
	if !canManage(identity, session) {
		return false, cerrors.AuthorizationError{UserID: identity.UserID, Reason: "only the creator or a moderator can delete a game"}
	}

	guessesDeleted, err := f.ledger.DeleteGameGuesses(ctx, gameID)
	if err != nil {
		return false, err
	}
	sessionDeleted, err := f.sessions.DeleteSession(ctx, gameID)
	if err != nil {
		return false, err
	}
	f.logger.Info("game_deleted", "game_id", gameID, "by", identity.UserID, "moderator", identity.IsModerator)
	return sessionDeleted || guessesDeleted, nil
}

// GetPlayer: 플레이어 프로필을 조회한다. 없으면 nil.
func (f *Facade) GetPlayer(ctx context.Context, userID string) (profile *model.PlayerProfile, err error) {
	ctx, end := f.begin(ctx, "GetPlayer", attribute.String("hideseek.user_id", userID))
	defer func() { end(err) }()

	profile, _, err = f.readPlayer(ctx, userID)
	return profile, err
}

func (f *Facade) readPlayer(ctx context.Context, userID string) (*model.PlayerProfile, string, error) {
	if err := f.validator.ValidateIdentifier("userId", userID); err != nil {
		return nil, "", err
	}
	profile, source, err := readFirst(f.strategies, func(s ReadStrategy) (*model.PlayerProfile, error) {
		return s.GetPlayer(ctx, userID)
	})
	if err != nil {
		return nil, "", fmt.Errorf("get player: %w", err)
	}
	return profile, source, nil
}

// GetOrCreatePlayer: 프로필을 반환하거나 새로 만든다. 이전 버전 저장소에만 있으면 현재 저장소로 옮긴다.
func (f *Facade) GetOrCreatePlayer(ctx context.Context, identity model.Identity) (profile *model.PlayerProfile, err error) {
	ctx, end := f.begin(ctx, "GetOrCreatePlayer", attribute.String("hideseek.user_id", identity.UserID))
	defer func() { end(err) }()

	return f.getOrCreatePlayer(ctx, identity)
}

func (f *Facade) getOrCreatePlayer(ctx context.Context, identity model.Identity) (*model.PlayerProfile, error) {
	existing, source, err := f.readPlayer(ctx, identity.UserID)
	if err != nil {
		return nil, err
	}
	if existing != nil && source != StrategyCanonical {
		if _, err := f.players.ImportPlayer(ctx, existing); err != nil {
			return nil, err
		}
	}
	return f.players.GetOrCreatePlayer(ctx, identity.UserID, identity.Username)
}

// GetRankProgression: 다음 등급까지의 진행도. 프로필이 없으면 nil.
func (f *Facade) GetRankProgression(ctx context.Context, userID string) (progression *service.RankProgression, err error) {
	ctx, end := f.begin(ctx, "GetRankProgression", attribute.String("hideseek.user_id", userID))
	defer func() { end(err) }()

	profile, _, err := f.readPlayer(ctx, userID)
	if err != nil || profile == nil {
		return nil, err
	}
	result := service.CalculateRankProgression(*profile)
	return &result, nil
}

func canManage(identity model.Identity, session *model.GameSession) bool {
	return identity.IsModerator || (identity.UserID != "" && identity.UserID == session.Creator)
}
