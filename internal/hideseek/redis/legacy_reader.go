package redis

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/park285/llm-kakao-bots/hideseek-go/internal/common/valkeyx"
	"github.com/park285/llm-kakao-bots/hideseek-go/internal/hideseek/model"
	"github.com/park285/llm-kakao-bots/hideseek-go/internal/hideseek/validation"
)

// legacySpot: 이전 버전의 숨을 위치 형식 ({"object","x","y"})
type legacySpot struct {
	Object string  `json:"object"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

// legacySession: 현재 형식과 이전 형식(id/creatorId/map/hiding/created)을 모두 수용한다.
type legacySession struct {
	GameID     string            `json:"gameId"`
	Creator    string            `json:"creator"`
	MapKey     string            `json:"mapKey"`
	HidingSpot *model.HidingSpot `json:"hidingSpot"`
	CreatedAt  int64             `json:"createdAt"`
	IsActive   *bool             `json:"isActive"`
	PostID     string            `json:"postId"`
	PostURL    string            `json:"postUrl"`

	ID        string      `json:"id"`
	CreatorID string      `json:"creatorId"`
	Map       string      `json:"map"`
	Hiding    *legacySpot `json:"hiding"`
	Created   int64       `json:"created"`
}

func (l legacySession) toModel() model.GameSession {
	session := model.GameSession{
		GameID:    firstNonEmpty(l.GameID, l.ID),
		Creator:   firstNonEmpty(l.Creator, l.CreatorID),
		MapKey:    firstNonEmpty(l.MapKey, l.Map),
		CreatedAt: l.CreatedAt,
		IsActive:  true,
		PostID:    l.PostID,
		PostURL:   l.PostURL,
	}
	if session.CreatedAt == 0 {
		session.CreatedAt = l.Created
	}
	if l.IsActive != nil {
		session.IsActive = *l.IsActive
	}
	switch {
	case l.HidingSpot != nil:
		session.HidingSpot = *l.HidingSpot
	case l.Hiding != nil:
		session.HidingSpot = model.HidingSpot{ObjectKey: l.Hiding.Object, RelX: l.Hiding.X, RelY: l.Hiding.Y}
	}
	return session
}

// legacyPlayer: 이전 버전 프로필. 비율/등급은 저장값을 믿지 않고 다시 계산한다.
type legacyPlayer struct {
	UserID            string `json:"userId"`
	ID                string `json:"id"`
	Username          string `json:"username"`
	Name              string `json:"name"`
	TotalGuesses      int    `json:"totalGuesses"`
	SuccessfulGuesses int    `json:"successfulGuesses"`
	CorrectGuesses    int    `json:"correctGuesses"`
	JoinedAt          int64  `json:"joinedAt"`
	Joined            int64  `json:"joined"`
	LastActive        int64  `json:"lastActive"`
}

func (l legacyPlayer) toModel() model.PlayerProfile {
	successful := l.SuccessfulGuesses
	if successful == 0 {
		successful = l.CorrectGuesses
	}
	joined := l.JoinedAt
	if joined == 0 {
		joined = l.Joined
	}
	lastActive := l.LastActive
	if lastActive == 0 {
		lastActive = joined
	}
	rate := model.SuccessRate(l.TotalGuesses, successful)
	return model.PlayerProfile{
		UserID:            firstNonEmpty(l.UserID, l.ID),
		Username:          validation.NormalizeUsername(firstNonEmpty(l.Username, l.Name)),
		Rank:              model.RankFor(l.TotalGuesses, successful, rate),
		TotalGuesses:      l.TotalGuesses,
		SuccessfulGuesses: successful,
		SuccessRate:       rate,
		JoinedAt:          joined,
		LastActive:        lastActive,
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}

// LegacyReader: 이전 키(game:, post:, player:)와 레코드 형식을 읽는 읽기 전용 저장소.
// 마이그레이션 기간의 폴백 조회에만 쓰이며 절대 쓰지 않는다.
type LegacyReader struct {
	adapter   *valkeyx.Adapter
	validator *validation.Validator
	logger    *slog.Logger
}

// NewLegacyReader: 새로운 LegacyReader 를 생성합니다.
func NewLegacyReader(adapter *valkeyx.Adapter, validator *validation.Validator, logger *slog.Logger) *LegacyReader {
	if logger == nil {
		logger = slog.Default()
	}
	return &LegacyReader{adapter: adapter, validator: validator, logger: logger}
}

// GetSession: game:{gameID} 를 읽어 현재 모델로 변환합니다. 없거나 검증 실패 시 nil.
func (r *LegacyReader) GetSession(ctx context.Context, gameID string) (*model.GameSession, error) {
	key := LegacyGameKey(gameID)
	raw, ok, err := r.adapter.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("legacy get session: %w", err)
	}
	if !ok {
		return nil, nil
	}

	var legacy legacySession
	if err := json.Unmarshal(raw, &legacy); err != nil {
		r.logger.Warn("legacy_record_corrupt", "key", key, "err", err)
		return nil, nil
	}
	session := legacy.toModel()
	if session.GameID == "" {
		session.GameID = gameID
	}
	if err := r.validator.ValidateSession(&session); err != nil {
		r.logger.Warn("legacy_record_invalid", "key", key, "err", err)
		return nil, nil
	}
	return &session, nil
}

// GetSessionByPostID: post:{postID} 매핑을 따라 이전 세션을 읽습니다.
func (r *LegacyReader) GetSessionByPostID(ctx context.Context, postID string) (*model.GameSession, error) {
	raw, ok, err := r.adapter.Get(ctx, legacyPostKey(postID))
	if err != nil {
		return nil, fmt.Errorf("legacy resolve post: %w", err)
	}
	if !ok {
		return nil, nil
	}
	gameID := strings.Trim(strings.TrimSpace(string(raw)), `"`)
	if gameID == "" {
		return nil, nil
	}
	return r.GetSession(ctx, gameID)
}

// GetPlayer: player:{userID} 를 읽어 현재 모델로 변환합니다. 없거나 검증 실패 시 nil.
func (r *LegacyReader) GetPlayer(ctx context.Context, userID string) (*model.PlayerProfile, error) {
	key := legacyPlayerKey(userID)
	raw, ok, err := r.adapter.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("legacy get player: %w", err)
	}
	if !ok {
		return nil, nil
	}

	var legacy legacyPlayer
	if err := json.Unmarshal(raw, &legacy); err != nil {
		r.logger.Warn("legacy_record_corrupt", "key", key, "err", err)
		return nil, nil
	}
	profile := legacy.toModel()
	if profile.UserID == "" {
		profile.UserID = userID
	}
	if err := r.validator.ValidateProfile(&profile); err != nil {
		r.logger.Warn("legacy_record_invalid", "key", key, "err", err)
		return nil, nil
	}
	return &profile, nil
}
