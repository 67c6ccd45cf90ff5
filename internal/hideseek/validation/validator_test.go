package validation

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cerrors "github.com/park285/llm-kakao-bots/hideseek-go/internal/common/errors"
	"github.com/park285/llm-kakao-bots/hideseek-go/internal/hideseek/catalog"
	"github.com/park285/llm-kakao-bots/hideseek-go/internal/hideseek/model"
)

func newValidator(t *testing.T) *Validator {
	t.Helper()
	cat, err := catalog.Load()
	require.NoError(t, err)
	return New(cat)
}

func validSession() *model.GameSession {
	return &model.GameSession{
		GameID:     "g1",
		Creator:    "creator",
		MapKey:     "octmap",
		HidingSpot: model.HidingSpot{ObjectKey: "pumpkin", RelX: 0.5, RelY: 0.3},
		CreatedAt:  1700000000000,
		IsActive:   true,
	}
}

func requireField(t *testing.T, err error, field string) {
	t.Helper()
	var vErr cerrors.ValidationError
	require.True(t, errors.As(err, &vErr), "expected ValidationError, got %v", err)
	assert.Equal(t, field, vErr.Field, "reason=%s", vErr.Reason)
}

func TestValidateSession_Valid(t *testing.T) {
	v := newValidator(t)
	require.NoError(t, v.ValidateSession(validSession()))
}

func TestValidateSession_CoordinateBoundaries(t *testing.T) {
	v := newValidator(t)

	for _, value := range []float64{0.0, 1.0} {
		s := validSession()
		s.HidingSpot.RelX = value
		s.HidingSpot.RelY = value
		assert.NoError(t, v.ValidateSession(s), "value=%v", value)
	}

	for _, value := range []float64{1.0001, -0.0001, math.NaN()} {
		s := validSession()
		s.HidingSpot.RelX = value
		requireField(t, v.ValidateSession(s), "hidingSpot.relX")

		s = validSession()
		s.HidingSpot.RelY = value
		requireField(t, v.ValidateSession(s), "hidingSpot.relY")
	}
}

func TestValidateSession_Rejects(t *testing.T) {
	v := newValidator(t)

	tests := []struct {
		name   string
		mutate func(*model.GameSession)
		field  string
	}{
		{name: "bad object key", mutate: func(s *model.GameSession) { s.HidingSpot.ObjectKey = "pump kin" }, field: "hidingSpot.objectKey"},
		{name: "object not in map", mutate: func(s *model.GameSession) { s.HidingSpot.ObjectKey = "snowman" }, field: "hidingSpot.objectKey"},
		{name: "unknown map", mutate: func(s *model.GameSession) { s.MapKey = "moon" }, field: "mapKey"},
		{name: "missing game id", mutate: func(s *model.GameSession) { s.GameID = "" }, field: "gameId"},
		{name: "game id with separator", mutate: func(s *model.GameSession) { s.GameID = "g:1" }, field: "gameId"},
		{name: "creator with wildcard", mutate: func(s *model.GameSession) { s.Creator = "u*" }, field: "creator"},
		{name: "post id with space", mutate: func(s *model.GameSession) { s.PostID = "t3 abc" }, field: "postId"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validSession()
			tt.mutate(s)
			requireField(t, v.ValidateSession(s), tt.field)
		})
	}

	requireField(t, v.ValidateSession(nil), "session")
}

func TestValidateHidingSpot(t *testing.T) {
	v := newValidator(t)

	require.NoError(t, v.ValidateHidingSpot("octmap", model.HidingSpot{ObjectKey: "bush", RelX: 1, RelY: 0}))
	requireField(t, v.ValidateHidingSpot("octmap", model.HidingSpot{ObjectKey: "bush", RelX: 1.0001}), "hidingSpot.relX")
	requireField(t, v.ValidateHidingSpot("octmap", model.HidingSpot{ObjectKey: "igloo"}), "hidingSpot.objectKey")
	requireField(t, v.ValidateHidingSpot("", model.HidingSpot{ObjectKey: "bush"}), "mapKey")
}

func TestValidateGuessObject(t *testing.T) {
	v := newValidator(t)

	require.NoError(t, v.ValidateGuessObject("octmap", "bush"))
	requireField(t, v.ValidateGuessObject("octmap", "sled"), "objectKey")
	requireField(t, v.ValidateGuessObject("octmap", "bad key"), "objectKey")
}

func TestValidateGuess(t *testing.T) {
	v := newValidator(t)
	guess := &model.GuessData{
		GameID:    "g1",
		UserID:    "u1",
		Username:  "seeker",
		ObjectKey: "pumpkin",
		RelX:      0.5,
		RelY:      0.3,
		Timestamp: 1,
		Distance:  0,
		IsCorrect: true,
	}
	require.NoError(t, v.ValidateGuess(guess))

	bad := *guess
	bad.Distance = math.Inf(1)
	requireField(t, v.ValidateGuess(&bad), "distance")

	bad = *guess
	bad.Distance = -0.1
	requireField(t, v.ValidateGuess(&bad), "distance")

	bad = *guess
	bad.RelY = -0.0001
	requireField(t, v.ValidateGuess(&bad), "relY")

	bad = *guess
	bad.Username = "e\u0301" // NFD
	requireField(t, v.ValidateGuess(&bad), "username")
}

func TestValidateProfile(t *testing.T) {
	v := newValidator(t)
	profile := &model.PlayerProfile{
		UserID:            "u1",
		Username:          "seeker",
		Rank:              model.RankSeeker,
		TotalGuesses:      10,
		SuccessfulGuesses: 9,
		SuccessRate:       0.9,
	}
	require.NoError(t, v.ValidateProfile(profile))

	zero := &model.PlayerProfile{UserID: "u2", Rank: model.RankRookie}
	require.NoError(t, v.ValidateProfile(zero))

	bad := *profile
	bad.SuccessfulGuesses = 11
	requireField(t, v.ValidateProfile(&bad), "successfulGuesses")

	bad = *profile
	bad.SuccessRate = 0.89
	requireField(t, v.ValidateProfile(&bad), "successRate")

	bad = *profile
	bad.Rank = model.RankLegend
	requireField(t, v.ValidateProfile(&bad), "rank")

	bad = *profile
	bad.TotalGuesses = -1
	requireField(t, v.ValidateProfile(&bad), "totalGuesses")
}

func TestValidateIdentifier(t *testing.T) {
	v := newValidator(t)

	require.NoError(t, v.ValidateIdentifier("userId", "user-123"))
	requireField(t, v.ValidateIdentifier("userId", ""), "userId")
	requireField(t, v.ValidateIdentifier("gameId", "a b"), "gameId")
	requireField(t, v.ValidateIdentifier("postId", "p[1]"), "postId")
}

func TestNormalizeUsername(t *testing.T) {
	assert.Equal(t, "\u00e9", NormalizeUsername("  e\u0301 "))
	assert.True(t, cerrors.IsValidation(cerrors.ValidationError{Field: "x"}))
}
