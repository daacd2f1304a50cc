package ledger

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/tidewell/aisclean/internal/support/exception"
)

// Repository persists and retrieves cleaning run records.
type Repository interface {
	// Save inserts a run record.
	Save(ctx context.Context, run *CleaningRun) error
	// FindByID retrieves a run record by its UUID.
	FindByID(ctx context.Context, id string) (*CleaningRun, error)
	// ListRecent returns the most recent run records, newest first.
	ListRecent(ctx context.Context, limit int) ([]CleaningRun, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a GORM-backed ledger repository.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Save(ctx context.Context, run *CleaningRun) error {
	if err := r.db.WithContext(ctx).Create(run).Error; err != nil {
		return fmt.Errorf("failed to save cleaning run '%s': %w", run.ID, err)
	}
	return nil
}

func (r *gormRepository) FindByID(ctx context.Context, id string) (*CleaningRun, error) {
	var run CleaningRun
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&run).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, exception.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find cleaning run '%s': %w", id, err)
	}
	return &run, nil
}

func (r *gormRepository) ListRecent(ctx context.Context, limit int) ([]CleaningRun, error) {
	var runs []CleaningRun
	err := r.db.WithContext(ctx).Order("started_at DESC").Limit(limit).Find(&runs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list cleaning runs: %w", err)
	}
	return runs, nil
}

// noopRepository is used when the ledger is disabled by configuration.
type noopRepository struct{}

// NewNoopRepository creates a Repository that discards all writes.
func NewNoopRepository() Repository {
	return &noopRepository{}
}

func (noopRepository) Save(ctx context.Context, run *CleaningRun) error { return nil }

func (noopRepository) FindByID(ctx context.Context, id string) (*CleaningRun, error) {
	return nil, exception.ErrNotFound
}

func (noopRepository) ListRecent(ctx context.Context, limit int) ([]CleaningRun, error) {
	return nil, nil
}
