// Package repository 는 정리 실행 기록을 PostgreSQL(GORM)에 보관한다.
package repository

import (
	"context"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/park285/llm-kakao-bots/hideseek-go/internal/hideseek/cleanup"
)

// Repository: GORM 기반 정리 실행 아카이브. cleanup.Archive 를 구현한다.
type Repository struct {
	db *gorm.DB
}

var _ cleanup.Archive = (*Repository)(nil)

// New: 새로운 Repository 인스턴스를 생성한다.
func New(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// AutoMigrate: 자동으로 DB 테이블 스키마를 마이그레이션한다.
func (r *Repository) AutoMigrate(ctx context.Context) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("db is nil")
	}
	if err := r.db.WithContext(ctx).AutoMigrate(&CleanupRun{}); err != nil {
		return fmt.Errorf("auto migrate failed: %w", err)
	}
	return nil
}

// SaveRun: 실행 결과를 기록한다. 같은 RunID 는 한 번만 저장된다.
func (r *Repository) SaveRun(ctx context.Context, result cleanup.CleanupResult) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("db is nil")
	}

	errs := result.Errors
	if errs == nil {
		errs = []string{}
	}
	errorsJSON, err := json.Marshal(errs)
	if err != nil {
		return fmt.Errorf("marshal cleanup errors failed: %w", err)
	}

	entity := CleanupRun{
		RunID:         result.RunID.String(),
		Trigger:       string(result.Trigger),
		Status:        string(result.Status),
		StartedAt:     result.StartedAt.UTC(),
		DurationMS:    result.Duration.Milliseconds(),
		Attempts:      result.Attempts,
		ScannedKeys:   result.ScannedKeys,
		DeletedKeys:   result.DeletedKeys,
		RepairedKeys:  result.RepairedKeys,
		PrunedMembers: result.PrunedMembers,
		ErrorsJSON:    string(errorsJSON),
	}

	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "run_id"}},
		DoNothing: true,
	}).Create(&entity).Error; err != nil {
		return fmt.Errorf("save cleanup run failed: %w", err)
	}
	return nil
}

// RecentRuns: 최근 실행 기록을 최신순으로 조회한다. limit<=0 이면 전체.
func (r *Repository) RecentRuns(ctx context.Context, limit int) ([]cleanup.CleanupResult, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("db is nil")
	}

	query := r.db.WithContext(ctx).Order("started_at DESC").Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var rows []CleanupRun
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load cleanup runs failed: %w", err)
	}

	results := make([]cleanup.CleanupResult, 0, len(rows))
	for _, row := range rows {
		result, err := toResult(row)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	return results, nil
}

func toResult(row CleanupRun) (cleanup.CleanupResult, error) {
	runID, err := uuid.Parse(row.RunID)
	if err != nil {
		return cleanup.CleanupResult{}, fmt.Errorf("parse run id %q failed: %w", row.RunID, err)
	}
	errs := []string{}
	if row.ErrorsJSON != "" {
		if err := json.Unmarshal([]byte(row.ErrorsJSON), &errs); err != nil {
			return cleanup.CleanupResult{}, fmt.Errorf("unmarshal cleanup errors failed: %w", err)
		}
	}
	return cleanup.CleanupResult{
		RunID:         runID,
		Trigger:       cleanup.Trigger(row.Trigger),
		StartedAt:     row.StartedAt,
		Duration:      time.Duration(row.DurationMS) * time.Millisecond,
		Status:        cleanup.Status(row.Status),
		Attempts:      row.Attempts,
		ScannedKeys:   row.ScannedKeys,
		DeletedKeys:   row.DeletedKeys,
		RepairedKeys:  row.RepairedKeys,
		PrunedMembers: row.PrunedMembers,
		Errors:        errs,
	}, nil
}
