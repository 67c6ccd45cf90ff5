package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/park285/llm-kakao-bots/hideseek-go/internal/hideseek/model"
)

func TestGetOrCreatePlayer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.players.GetOrCreatePlayer(ctx, "u1", "  alice ")
	require.NoError(t, err)
	assert.Equal(t, "alice", created.Username)
	assert.Equal(t, model.RankRookie, created.Rank)
	assert.Zero(t, created.TotalGuesses)
	assert.Equal(t, created.JoinedAt, created.LastActive)

	same, err := f.players.GetOrCreatePlayer(ctx, "u1", "")
	require.NoError(t, err)
	assert.Equal(t, created.JoinedAt, same.JoinedAt)
	assert.Equal(t, "alice", same.Username)

	renamed, err := f.players.GetOrCreatePlayer(ctx, "u1", "alice2")
	require.NoError(t, err)
	assert.Equal(t, "alice2", renamed.Username)

	stored, err := f.players.GetPlayer(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "alice2", stored.Username)

	missing, err := f.players.GetPlayer(ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestUpdateAfterGuess_TenGuessesNineCorrect(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var last *RankUpdate
	for i := 0; i < 10; i++ {
		update, err := f.players.UpdateAfterGuess(ctx, "u1", "alice", i != 3)
		require.NoError(t, err)
		last = update

		p := update.Profile
		assert.LessOrEqual(t, p.SuccessfulGuesses, p.TotalGuesses)
		assert.Equal(t, model.SuccessRate(p.TotalGuesses, p.SuccessfulGuesses), p.SuccessRate)
		assert.Equal(t, model.RankFor(p.TotalGuesses, p.SuccessfulGuesses, p.SuccessRate), p.Rank)
	}

	profile, err := f.players.GetPlayer(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 10, profile.TotalGuesses)
	assert.Equal(t, 9, profile.SuccessfulGuesses)
	assert.Equal(t, 0.9, profile.SuccessRate)
	assert.Equal(t, model.RankFor(10, 9, 0.9), profile.Rank)
	assert.Equal(t, model.RankSeeker, profile.Rank)
	assert.Equal(t, *last.Profile, *profile)
}

func TestUpdateAfterGuess_ReportsRankChange(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var changes []RankUpdate
	for i := 0; i < 5; i++ {
		update, err := f.players.UpdateAfterGuess(ctx, "u1", "alice", true)
		require.NoError(t, err)
		if update.RankChanged {
			changes = append(changes, *update)
		} else {
			assert.Nil(t, update.PreviousRank)
			assert.Nil(t, update.NewRank)
		}
	}

	require.Len(t, changes, 1)
	assert.Equal(t, model.RankRookie, *changes[0].PreviousRank)
	assert.Equal(t, model.RankSeeker, *changes[0].NewRank)
}

func TestApplyGuess_JumpsDirectlyToFinalTier(t *testing.T) {
	profile := &model.PlayerProfile{
		UserID:            "u1",
		Rank:              model.RankSeeker,
		TotalGuesses:      20,
		SuccessfulGuesses: 14,
		SuccessRate:       0.7,
	}
	ApplyGuess(profile, true, 10)
	assert.Equal(t, model.RankTracker, profile.Rank)
	assert.Equal(t, int64(10), profile.LastActive)

	jump := &model.PlayerProfile{UserID: "u2", TotalGuesses: 49, SuccessfulGuesses: 39}
	jump.SuccessRate = model.SuccessRate(49, 39)
	ApplyGuess(jump, true, 0)
	assert.Equal(t, model.RankDetective, jump.Rank)
}

func TestDeletePlayer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.players.GetOrCreatePlayer(ctx, "u1", "alice")
	require.NoError(t, err)

	deleted, err := f.players.DeletePlayer(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = f.players.DeletePlayer(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestImportPlayer_RecomputesDerivedFields(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	legacy := &model.PlayerProfile{
		UserID:            "u1",
		Username:          "émile",
		Rank:              model.RankLegend,
		TotalGuesses:      20,
		SuccessfulGuesses: 18,
		SuccessRate:       0.1,
		JoinedAt:          1_600_000_000_000,
		LastActive:        1_600_000_000_000,
	}

	imported, err := f.players.ImportPlayer(ctx, legacy)
	require.NoError(t, err)
	assert.Equal(t, model.RankTracker, imported.Rank)
	assert.InDelta(t, 0.9, imported.SuccessRate, 1e-9)
	assert.Equal(t, "émile", imported.Username)

	stored, err := f.players.GetPlayer(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, *imported, *stored)

	_, err = f.players.ImportPlayer(ctx, nil)
	assert.Error(t, err)
}
