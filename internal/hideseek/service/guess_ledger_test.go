package service

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cerrors "github.com/park285/llm-kakao-bots/hideseek-go/internal/common/errors"
	"github.com/park285/llm-kakao-bots/hideseek-go/internal/hideseek/model"
	"github.com/park285/llm-kakao-bots/hideseek-go/internal/hideseek/redis"
)

func TestRecordGuess_ExactHit(t *testing.T) {
	f := newFixture(t)

	guess, err := f.ledger.RecordGuess(context.Background(), guessParams("u1", "pumpkin", 0.50, 0.30))
	require.NoError(t, err)
	assert.True(t, guess.IsCorrect)
	assert.Equal(t, 0.0, guess.Distance)
	assert.True(t, f.mr.Exists("hs:guess:g1:u1:1700000000000"))
}

func TestRecordGuess_FarAway(t *testing.T) {
	f := newFixture(t)

	guess, err := f.ledger.RecordGuess(context.Background(), guessParams("u1", "pumpkin", 0.90, 0.90))
	require.NoError(t, err)

	want := math.Sqrt(0.4*0.4 + 0.6*0.6)
	assert.InDelta(t, want, guess.Distance, 1e-12)
	assert.Equal(t, guess.Distance <= f.ledger.SuccessThreshold(), guess.IsCorrect)
	assert.False(t, guess.IsCorrect)
}

func TestRecordGuess_WrongObjectAtRightPlace(t *testing.T) {
	f := newFixture(t)

	guess, err := f.ledger.RecordGuess(context.Background(), guessParams("u1", "bush", 0.50, 0.30))
	require.NoError(t, err)
	assert.False(t, guess.IsCorrect)
	assert.Equal(t, 0.0, guess.Distance)
}

func TestRecordGuess_ThresholdBoundary(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	inside, err := f.ledger.RecordGuess(ctx, guessParams("u1", "pumpkin", 0.50, 0.39))
	require.NoError(t, err)
	assert.True(t, inside.IsCorrect)

	outside, err := f.ledger.RecordGuess(ctx, guessParams("u2", "pumpkin", 0.50, 0.41))
	require.NoError(t, err)
	assert.False(t, outside.IsCorrect)
}

func TestRecordGuess_RejectsOutOfRange(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, x := range []float64{1.0001, -0.0001} {
		_, err := f.ledger.RecordGuess(ctx, guessParams("u1", "pumpkin", x, 0.5))
		require.Error(t, err)
		assert.True(t, cerrors.IsValidation(err), "x=%v err=%v", x, err)
	}
	for _, x := range []float64{0.0, 1.0} {
		_, err := f.ledger.RecordGuess(ctx, guessParams("u1", "pumpkin", x, x))
		assert.NoError(t, err, "x=%v", x)
	}
}

func TestRecordGuess_SameMillisecondDoesNotCollide(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	frozen := f.clock.now
	f.ledger.clock = func() time.Time { return frozen }

	first, err := f.ledger.RecordGuess(ctx, guessParams("u1", "pumpkin", 0.1, 0.1))
	require.NoError(t, err)
	second, err := f.ledger.RecordGuess(ctx, guessParams("u1", "pumpkin", 0.2, 0.2))
	require.NoError(t, err)

	assert.Equal(t, first.Timestamp+1, second.Timestamp)
	guesses, err := f.ledger.GetGameGuesses(ctx, "g1")
	require.NoError(t, err)
	assert.Len(t, guesses, 2)
}

func TestRecordGuess_BurstBeyondBumpBudgetKeepsStoredGuesses(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	frozen := f.clock.now
	f.ledger.clock = func() time.Time { return frozen }

	xs := []float64{0.0, 0.1, 0.2, 0.3, 0.4, 0.5}
	for i, x := range xs {
		guess, err := f.ledger.RecordGuess(ctx, guessParams("u1", "pumpkin", x, 0.3))
		require.NoError(t, err)
		assert.Equal(t, frozen.UnixMilli()+int64(i), guess.Timestamp)
	}

	// 같은 밀리초의 7번째 추측은 기존 기록을 덮지 않고 실패한다.
	_, err := f.ledger.RecordGuess(ctx, guessParams("u1", "pumpkin", 0.6, 0.3))
	require.Error(t, err)
	assert.True(t, cerrors.IsStorage(err), "got %v", err)
	assert.True(t, errors.Is(err, redis.ErrGuessKeyTaken))

	guesses, err := f.ledger.GetGameGuesses(ctx, "g1")
	require.NoError(t, err)
	require.Len(t, guesses, len(xs))
	for _, g := range guesses {
		idx := int(g.Timestamp - frozen.UnixMilli())
		assert.InDelta(t, xs[idx], g.RelX, 1e-9, "timestamp %d", g.Timestamp)
	}
}

func TestRecordGuess_ConcurrentSameMillisecondGetDistinctKeys(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	frozen := f.clock.now
	f.ledger.clock = func() time.Time { return frozen }

	const workers = 4
	var (
		wg         sync.WaitGroup
		mu         sync.Mutex
		timestamps = make(map[int64]bool)
		errs       []error
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(x float64) {
			defer wg.Done()
			guess, err := f.ledger.RecordGuess(ctx, guessParams("u1", "pumpkin", x, 0.3))
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			timestamps[guess.Timestamp] = true
		}(float64(i) / 10)
	}
	wg.Wait()

	require.Empty(t, errs)
	assert.Len(t, timestamps, workers)
	guesses, err := f.ledger.GetGameGuesses(ctx, "g1")
	require.NoError(t, err)
	assert.Len(t, guesses, workers)
}

func TestGetGameGuesses_NewestFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, user := range []string{"u1", "u2", "u3"} {
		_, err := f.ledger.RecordGuess(ctx, guessParams(user, "pumpkin", 0.2, 0.2))
		require.NoError(t, err)
	}

	guesses, err := f.ledger.GetGameGuesses(ctx, "g1")
	require.NoError(t, err)
	require.Len(t, guesses, 3)
	assert.Equal(t, "u3", guesses[0].UserID)
	assert.Equal(t, "u1", guesses[2].UserID)
	assert.Greater(t, guesses[0].Timestamp, guesses[1].Timestamp)
}

func TestGetGuessStatistics_ThreeGuessersOneCorrect(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.ledger.RecordGuess(ctx, guessParams("u1", "pumpkin", 0.50, 0.30))
	require.NoError(t, err)
	_, err = f.ledger.RecordGuess(ctx, guessParams("u2", "bush", 0.10, 0.60))
	require.NoError(t, err)
	_, err = f.ledger.RecordGuess(ctx, guessParams("u3", "pumpkin", 0.90, 0.90))
	require.NoError(t, err)

	stats, err := f.ledger.GetGuessStatistics(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalGuesses)
	assert.Equal(t, 1, stats.CorrectGuesses)
	assert.Equal(t, 3, stats.UniqueGuessers)
	assert.LessOrEqual(t, stats.CorrectGuesses, stats.TotalGuesses)

	again, err := f.ledger.GetGuessStatistics(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, stats, again)
}

func TestGetGuessStatistics_Empty(t *testing.T) {
	f := newFixture(t)

	stats, err := f.ledger.GetGuessStatistics(context.Background(), "nothing")
	require.NoError(t, err)
	assert.Equal(t, model.GuessStatistics{}, stats)
}

func TestGetGuessStatistics_AverageCoversAllGuesses(t *testing.T) {
	stats := Aggregate([]model.GuessData{
		{UserID: "u1", Distance: 0, IsCorrect: true},
		{UserID: "u1", Distance: 0.5},
		{UserID: "u2", Distance: 1.0},
	})
	assert.Equal(t, 3, stats.TotalGuesses)
	assert.Equal(t, 2, stats.UniqueGuessers)
	assert.InDelta(t, 0.5, stats.AverageDistance, 1e-12)
}

func TestStoredGuessInvariant(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	points := [][2]float64{{0, 0}, {1, 1}, {0.5, 0.3}, {0.55, 0.35}, {0.2, 0.9}}
	for i, p := range points {
		object := "pumpkin"
		if i%2 == 1 {
			object = "bush"
		}
		_, err := f.ledger.RecordGuess(ctx, guessParams("u1", object, p[0], p[1]))
		require.NoError(t, err)
	}

	guesses, err := f.ledger.GetGameGuesses(ctx, "g1")
	require.NoError(t, err)
	require.Len(t, guesses, len(points))
	for _, g := range guesses {
		assert.GreaterOrEqual(t, g.Distance, 0.0)
		if g.IsCorrect {
			assert.Equal(t, octmapPumpkin.ObjectKey, g.ObjectKey)
		}
	}
}

func TestDeleteGameGuesses(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.ledger.RecordGuess(ctx, guessParams("u1", "pumpkin", 0.5, 0.3))
	require.NoError(t, err)

	n, err := f.ledger.CountPlayerGuesses(ctx, "g1", "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	deleted, err := f.ledger.DeleteGameGuesses(ctx, "g1")
	require.NoError(t, err)
	assert.True(t, deleted)

	stats, err := f.ledger.GetGuessStatistics(ctx, "g1")
	require.NoError(t, err)
	assert.Zero(t, stats.TotalGuesses)
}

func TestRecordGuess_StorageFailure(t *testing.T) {
	f := newFixture(t)
	f.mr.SetError("ERR injected failure")
	defer f.mr.SetError("")

	_, err := f.ledger.RecordGuess(context.Background(), guessParams("u1", "pumpkin", 0.5, 0.3))
	assert.True(t, cerrors.IsStorage(err), "got %v", err)
}
