package dbsource

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
)

const (
	StatusOK    = "ok"
	StatusError = "error"
)

// SyncRun is one recorded synchronization.
type SyncRun struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	RayID       string    `gorm:"size:64" json:"ray_id,omitempty"`
	Worksheet   string    `gorm:"size:255;index" json:"worksheet"`
	Mode        string    `gorm:"size:32" json:"mode"`
	DryRun      bool      `json:"dry_run"`
	CellUpdates int       `json:"cell_updates"`
	Swaps       int       `json:"swaps"`
	Deletes     int       `json:"deletes"`
	Adds        int       `json:"adds"`
	Snapshot    string    `gorm:"size:512" json:"snapshot,omitempty"`
	Status      string    `gorm:"size:16" json:"status"`
	Error       string    `gorm:"type:text" json:"error,omitempty"`
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at"`
}

// TableName overrides the default table name.
func (SyncRun) TableName() string {
	return "sync_runs"
}

// Finish stamps the run with its outcome.
func (r *SyncRun) Finish(err error) {
	r.FinishedAt = time.Now()
	r.Status = StatusOK
	if err != nil {
		r.Status = StatusError
		r.Error = err.Error()
	}
}

// Journal records synchronization runs in the database.
type Journal struct {
	db *gorm.DB
}

// NewJournal creates a journal over db.
func NewJournal(db *gorm.DB) *Journal {
	return &Journal{db: db}
}

// Migrate creates or updates the sync_runs table.
func (j *Journal) Migrate(ctx context.Context) error {
	if err := j.db.WithContext(ctx).AutoMigrate(&SyncRun{}); err != nil {
		return fmt.Errorf("failed to migrate sync_runs: %w", err)
	}
	return nil
}

// Record stores run.
func (j *Journal) Record(ctx context.Context, run *SyncRun) error {
	if err := j.db.WithContext(ctx).Create(run).Error; err != nil {
		return fmt.Errorf("failed to record sync run: %w", err)
	}
	return nil
}

// Recent returns the newest runs, optionally filtered by worksheet.
func (j *Journal) Recent(ctx context.Context, worksheet string, limit int) ([]SyncRun, error) {
	if limit <= 0 {
		limit = 20
	}
	q := j.db.WithContext(ctx).Order("id DESC").Limit(limit)
	if worksheet != "" {
		q = q.Where("worksheet = ?", worksheet)
	}
	var runs []SyncRun
	if err := q.Find(&runs).Error; err != nil {
		return nil, fmt.Errorf("failed to list sync runs: %w", err)
	}
	return runs, nil
}
