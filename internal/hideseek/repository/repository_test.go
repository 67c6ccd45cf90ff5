package repository

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/park285/llm-kakao-bots/hideseek-go/internal/hideseek/cleanup"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// :memory: DB 는 커넥션마다 별개이므로 하나로 고정한다.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	repo := New(db)
	require.NoError(t, repo.AutoMigrate(context.Background()))
	return repo
}

func sampleResult(startedAt time.Time, status cleanup.Status) cleanup.CleanupResult {
	return cleanup.CleanupResult{
		RunID:         uuid.New(),
		Trigger:       cleanup.TriggerScheduled,
		StartedAt:     startedAt,
		Duration:      1500 * time.Millisecond,
		Status:        status,
		Attempts:      2,
		ScannedKeys:   10,
		DeletedKeys:   3,
		RepairedKeys:  1,
		PrunedMembers: 4,
		Errors:        []string{"attempt 1: injected"},
	}
}

func TestSaveAndLoadRuns(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	older := sampleResult(base, cleanup.StatusFailed)
	newer := sampleResult(base.Add(time.Hour), cleanup.StatusSucceeded)
	newer.Errors = nil
	require.NoError(t, repo.SaveRun(ctx, older))
	require.NoError(t, repo.SaveRun(ctx, newer))

	runs, err := repo.RecentRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	assert.Equal(t, newer.RunID, runs[0].RunID)
	assert.Equal(t, cleanup.StatusSucceeded, runs[0].Status)
	assert.Empty(t, runs[0].Errors)

	got := runs[1]
	assert.Equal(t, older.RunID, got.RunID)
	assert.Equal(t, cleanup.TriggerScheduled, got.Trigger)
	assert.Equal(t, cleanup.StatusFailed, got.Status)
	assert.True(t, older.StartedAt.Equal(got.StartedAt))
	assert.Equal(t, older.Duration, got.Duration)
	assert.Equal(t, 2, got.Attempts)
	assert.Equal(t, 10, got.ScannedKeys)
	assert.Equal(t, 3, got.DeletedKeys)
	assert.Equal(t, 1, got.RepairedKeys)
	assert.Equal(t, 4, got.PrunedMembers)
	assert.Equal(t, []string{"attempt 1: injected"}, got.Errors)
}

func TestRecentRunsLimit(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)

	for i := range 5 {
		require.NoError(t, repo.SaveRun(ctx, sampleResult(base.Add(time.Duration(i)*time.Minute), cleanup.StatusSucceeded)))
	}

	runs, err := repo.RecentRuns(ctx, 3)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.True(t, runs[0].StartedAt.After(runs[1].StartedAt))

	all, err := repo.RecentRuns(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 5)
}

func TestSaveRunIsIdempotent(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	result := sampleResult(time.Now().UTC(), cleanup.StatusSucceeded)
	require.NoError(t, repo.SaveRun(ctx, result))
	require.NoError(t, repo.SaveRun(ctx, result))

	runs, err := repo.RecentRuns(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestNilRepository(t *testing.T) {
	var repo *Repository
	assert.Error(t, repo.AutoMigrate(context.Background()))
	assert.Error(t, repo.SaveRun(context.Background(), cleanup.CleanupResult{}))
	_, err := repo.RecentRuns(context.Background(), 1)
	assert.Error(t, err)
}

func TestArchiveWiredIntoCleanup(t *testing.T) {
	repo := newTestRepository(t)

	var archive cleanup.Archive = repo
	result := sampleResult(time.Now().UTC(), cleanup.StatusSucceeded)
	require.NoError(t, archive.SaveRun(context.Background(), result))

	runs, err := archive.RecentRuns(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, result.RunID, runs[0].RunID)
}
