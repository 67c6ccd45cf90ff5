package facade

import (
	"context"
	"fmt"

	"github.com/park285/llm-kakao-bots/hideseek-go/internal/hideseek/model"
	"github.com/park285/llm-kakao-bots/hideseek-go/internal/hideseek/redis"
	"github.com/park285/llm-kakao-bots/hideseek-go/internal/hideseek/service"
)

// 읽기 전략 이름
const (
	StrategyCanonical = "canonical"
	StrategyLegacy    = "legacy"
)

// ReadStrategy: 레코드를 읽는 방법 하나. 레코드가 없으면 (nil, nil) 을 반환한다.
// Facade 는 전략 목록을 순서대로 시도하고 처음 찾은 결과에서 멈춘다.
type ReadStrategy interface {
	Name() string
	GetSession(ctx context.Context, gameID string) (*model.GameSession, error)
	GetSessionByPostID(ctx context.Context, postID string) (*model.GameSession, error)
	GetPlayer(ctx context.Context, userID string) (*model.PlayerProfile, error)
}

type canonicalStrategy struct {
	sessions *redis.SessionStore
	players  *service.PlayerService
}

// NewCanonicalStrategy: 현재 hs:* 저장소를 읽는 전략
func NewCanonicalStrategy(sessions *redis.SessionStore, players *service.PlayerService) ReadStrategy {
	return canonicalStrategy{sessions: sessions, players: players}
}

func (s canonicalStrategy) Name() string { return StrategyCanonical }

func (s canonicalStrategy) GetSession(ctx context.Context, gameID string) (*model.GameSession, error) {
	return s.sessions.GetSession(ctx, gameID)
}

func (s canonicalStrategy) GetSessionByPostID(ctx context.Context, postID string) (*model.GameSession, error) {
	return s.sessions.GetSessionByPostID(ctx, postID)
}

func (s canonicalStrategy) GetPlayer(ctx context.Context, userID string) (*model.PlayerProfile, error) {
	return s.players.GetPlayer(ctx, userID)
}

type legacyStrategy struct {
	reader *redis.LegacyReader
}

// NewLegacyStrategy: 이전 버전 키(game:*, post:*, player:*)를 읽는 전략. 쓰기는 하지 않는다.
func NewLegacyStrategy(reader *redis.LegacyReader) ReadStrategy {
	return legacyStrategy{reader: reader}
}

func (s legacyStrategy) Name() string { return StrategyLegacy }

func (s legacyStrategy) GetSession(ctx context.Context, gameID string) (*model.GameSession, error) {
	return s.reader.GetSession(ctx, gameID)
}

func (s legacyStrategy) GetSessionByPostID(ctx context.Context, postID string) (*model.GameSession, error) {
	return s.reader.GetSessionByPostID(ctx, postID)
}

func (s legacyStrategy) GetPlayer(ctx context.Context, userID string) (*model.PlayerProfile, error) {
	return s.reader.GetPlayer(ctx, userID)
}

// readFirst: 전략을 순서대로 시도해 처음 찾은 레코드와 전략 이름을 반환한다.
// 인프라 실패는 즉시 반환하고 다음 전략으로 넘어가지 않는다.
func readFirst[T any](strategies []ReadStrategy, read func(ReadStrategy) (*T, error)) (*T, string, error) {
	for _, strategy := range strategies {
		value, err := read(strategy)
		if err != nil {
			return nil, "", fmt.Errorf("%s read failed: %w", strategy.Name(), err)
		}
		if value != nil {
			return value, strategy.Name(), nil
		}
	}
	return nil, "", nil
}
