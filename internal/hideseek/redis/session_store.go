package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	cerrors "github.com/park285/llm-kakao-bots/hideseek-go/internal/common/errors"
	"github.com/park285/llm-kakao-bots/hideseek-go/internal/common/jsonstore"
	"github.com/park285/llm-kakao-bots/hideseek-go/internal/common/valkeyx"
	hsconfig "github.com/park285/llm-kakao-bots/hideseek-go/internal/hideseek/config"
	"github.com/park285/llm-kakao-bots/hideseek-go/internal/hideseek/model"
	"github.com/park285/llm-kakao-bots/hideseek-go/internal/hideseek/validation"
)

// CreateSessionParams: 세션 생성 입력값. CreatedAt 이 0 이면 현재 시각(ms)을 사용한다.
type CreateSessionParams struct {
	GameID     string
	Creator    string
	MapKey     string
	HidingSpot model.HidingSpot
	PostID     string
	PostURL    string
	CreatedAt  int64
}

// SessionStore: GameSession 과 PostMapping 을 독점 소유하는 저장소
type SessionStore struct {
	sessions *jsonstore.Store[model.GameSession]
	adapter  *valkeyx.Adapter
	logger   *slog.Logger
}

// NewSessionStore: 새로운 SessionStore 인스턴스를 생성합니다.
func NewSessionStore(adapter *valkeyx.Adapter, validator *validation.Validator, logger *slog.Logger) *SessionStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionStore{
		sessions: jsonstore.New(adapter, logger, jsonstore.Config[model.GameSession]{
			Name:     "game_session",
			KeyFunc:  GameKey,
			TTL:      hsconfig.SessionTTL,
			Validate: validator.ValidateSession,
		}),
		adapter: adapter,
		logger:  logger,
	}
}

// CreateSession: 세션을 검증/저장하고 TTL(30일)을 설정합니다. postID 가 있으면 매핑도 같은 TTL 로 기록합니다.
// gameID 는 생성 후 불변이므로 이미 있는 세션은 덮어쓰지 않고 ValidationError(gameId) 를 반환합니다.
func (s *SessionStore) CreateSession(ctx context.Context, params CreateSessionParams) (*model.GameSession, error) {
	createdAt := params.CreatedAt
	if createdAt == 0 {
		createdAt = time.Now().UnixMilli()
	}
	session := &model.GameSession{
		GameID:     strings.TrimSpace(params.GameID),
		Creator:    strings.TrimSpace(params.Creator),
		MapKey:     strings.TrimSpace(params.MapKey),
		HidingSpot: params.HidingSpot,
		CreatedAt:  createdAt,
		IsActive:   true,
		PostID:     strings.TrimSpace(params.PostID),
		PostURL:    strings.TrimSpace(params.PostURL),
	}

	created, err := s.sessions.Create(ctx, session.GameID, session)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	if !created {
		return nil, cerrors.ValidationError{Field: "gameId", Reason: "already exists"}
	}
	if session.PostID != "" {
		if err := s.writePostMapping(ctx, session.PostID, session.GameID); err != nil {
			return nil, fmt.Errorf("create session: %w", err)
		}
	}

	s.logger.Info("session_created", "game_id", session.GameID, "map_key", session.MapKey, "creator", session.Creator)
	return session, nil
}

// GetSession: 세션을 조회합니다. (없거나 손상된 경우 nil)
func (s *SessionStore) GetSession(ctx context.Context, gameID string) (*model.GameSession, error) {
	session, err := s.sessions.Load(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return session, nil
}

// GetSessionByPostID: 매핑 → 세션 순서로 두 번 읽습니다.
// 매핑은 있지만 세션이 없으면(TTL 차이) nil 을 반환합니다.
func (s *SessionStore) GetSessionByPostID(ctx context.Context, postID string) (*model.GameSession, error) {
	gameID, err := s.ResolvePostID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if gameID == "" {
		return nil, nil
	}
	session, err := s.GetSession(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		s.logger.Debug("post_mapping_dangling", "post_id", postID, "game_id", gameID)
	}
	return session, nil
}

// ResolvePostID: postID 에 매핑된 gameID 를 반환합니다. 없으면 빈 문자열.
func (s *SessionStore) ResolvePostID(ctx context.Context, postID string) (string, error) {
	raw, ok, err := s.adapter.Get(ctx, PostKey(postID))
	if err != nil {
		return "", fmt.Errorf("resolve post mapping: %w", err)
	}
	if !ok {
		return "", nil
	}
	return strings.TrimSpace(string(raw)), nil
}

// UpdateSession: 전체 레코드를 덮어씁니다. 검증과 TTL 을 다시 적용하고, postID 가 있으면 매핑도 갱신합니다.
// postID 가 바뀌면 이 게임을 가리키던 이전 매핑은 지웁니다.
func (s *SessionStore) UpdateSession(ctx context.Context, session *model.GameSession) error {
	if session == nil {
		return errors.New("update session: nil session")
	}
	previous, err := s.GetSession(ctx, session.GameID)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	if err := s.sessions.Save(ctx, session.GameID, session); err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	if session.PostID != "" {
		if err := s.writePostMapping(ctx, session.PostID, session.GameID); err != nil {
			return fmt.Errorf("update session: %w", err)
		}
	}
	if previous != nil && previous.PostID != "" && previous.PostID != session.PostID {
		if err := s.dropPostMapping(ctx, previous.PostID, session.GameID); err != nil {
			return fmt.Errorf("update session: %w", err)
		}
	}
	s.logger.Info("session_updated", "game_id", session.GameID, "post_id", session.PostID)
	return nil
}

// IsCreator: 세션 생성자인지 확인합니다. 세션이 없으면 false. (에러 아님)
func (s *SessionStore) IsCreator(ctx context.Context, gameID, userID string) (bool, error) {
	session, err := s.GetSession(ctx, gameID)
	if err != nil {
		return false, err
	}
	return session != nil && session.Creator == userID, nil
}

// DeleteSession: 세션과 (이 게임을 가리키는) 포스트 매핑을 삭제합니다. 세션이 실제로 삭제되었으면 true.
func (s *SessionStore) DeleteSession(ctx context.Context, gameID string) (bool, error) {
	session, err := s.GetSession(ctx, gameID)
	if err != nil {
		return false, err
	}
	if session != nil && session.PostID != "" {
		if err := s.dropPostMapping(ctx, session.PostID, gameID); err != nil {
			return false, fmt.Errorf("delete session: %w", err)
		}
	}

	deleted, err := s.sessions.Delete(ctx, gameID)
	if err != nil {
		return false, fmt.Errorf("delete session: %w", err)
	}
	s.logger.Info("session_deleted", "game_id", gameID, "deleted", deleted)
	return deleted, nil
}

func (s *SessionStore) writePostMapping(ctx context.Context, postID, gameID string) error {
	key := PostKey(postID)
	if err := s.adapter.Set(ctx, key, []byte(gameID)); err != nil {
		return fmt.Errorf("write post mapping: %w", err)
	}
	if _, err := s.adapter.SetTTL(ctx, key, hsconfig.PostTTL); err != nil {
		return fmt.Errorf("post mapping set ttl: %w", err)
	}
	return nil
}

// dropPostMapping: 매핑이 아직 gameID 를 가리킬 때만 삭제한다. 다른 게임에 재사용된 postID 는 건드리지 않는다.
func (s *SessionStore) dropPostMapping(ctx context.Context, postID, gameID string) error {
	mapped, err := s.ResolvePostID(ctx, postID)
	if err != nil {
		return err
	}
	if mapped != gameID {
		return nil
	}
	if _, err := s.adapter.Delete(ctx, PostKey(postID)); err != nil {
		return fmt.Errorf("delete post mapping: %w", err)
	}
	s.logger.Debug("post_mapping_dropped", "post_id", postID, "game_id", gameID)
	return nil
}
