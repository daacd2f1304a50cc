package ledger

import (
	"time"

	"github.com/google/uuid"
)

// Run status values recorded in the cleaning_runs table.
const (
	StatusCompleted = "COMPLETED"
	StatusFailed    = "FAILED"
)

// CleaningRun is one row of the run ledger. Every invocation of the
// pipeline, successful or not, leaves exactly one record behind so that
// operators can audit what was read, what was dropped, and why.
type CleaningRun struct {
	ID                string    `gorm:"column:id;primaryKey"`
	SourceObject      string    `gorm:"column:source_object"`
	OutputBaseDir     string    `gorm:"column:output_base_dir"`
	Status            string    `gorm:"column:status"`
	ErrorKind         string    `gorm:"column:error_kind"`
	ErrorMessage      string    `gorm:"column:error_message"`
	RowsRead          int       `gorm:"column:rows_read"`
	RowsDisqualified  int       `gorm:"column:rows_disqualified"`
	RowsWritten       int       `gorm:"column:rows_written"`
	CellsNulled       int       `gorm:"column:cells_nulled"`
	PartitionsWritten int       `gorm:"column:partitions_written"`
	StartedAt         time.Time `gorm:"column:started_at"`
	FinishedAt        time.Time `gorm:"column:finished_at"`
}

// TableName overrides the GORM default table name.
func (CleaningRun) TableName() string {
	return "cleaning_runs"
}

// NewCleaningRun creates a run record with a fresh UUID and the start
// time stamped. The caller fills in the outcome fields before saving.
func NewCleaningRun(sourceObject, outputBaseDir string) *CleaningRun {
	return &CleaningRun{
		ID:            uuid.New().String(),
		SourceObject:  sourceObject,
		OutputBaseDir: outputBaseDir,
		StartedAt:     time.Now().UTC(),
	}
}

// Duration returns the wall-clock time the run took.
func (r *CleaningRun) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
