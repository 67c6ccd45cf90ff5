package repository

import "time"

// CleanupRun: 정리 실행 1회의 보관 기록
type CleanupRun struct {
	ID            uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	RunID         string    `gorm:"column:run_id;not null;uniqueIndex"`
	Trigger       string    `gorm:"column:run_trigger;not null"`
	Status        string    `gorm:"column:status;not null;index"`
	StartedAt     time.Time `gorm:"column:started_at;not null;index"`
	DurationMS    int64     `gorm:"column:duration_ms;not null;default:0"`
	Attempts      int       `gorm:"column:attempts;not null;default:0"`
	ScannedKeys   int       `gorm:"column:scanned_keys;not null;default:0"`
	DeletedKeys   int       `gorm:"column:deleted_keys;not null;default:0"`
	RepairedKeys  int       `gorm:"column:repaired_keys;not null;default:0"`
	PrunedMembers int       `gorm:"column:pruned_members;not null;default:0"`
	ErrorsJSON    string    `gorm:"column:errors_json;type:text;not null;default:'[]'"`
	CreatedAt     time.Time `gorm:"column:created_at;not null;autoCreateTime"`
}

func (CleanupRun) TableName() string { return "hideseek_cleanup_runs" }
