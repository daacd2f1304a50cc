package ledger_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/tidewell/aisclean/internal/ledger"
	"github.com/tidewell/aisclean/internal/support/exception"
)

// setupMockRepository sets up a GORM connection backed by sqlmock.
func setupMockRepository(t *testing.T) (ledger.Repository, sqlmock.Sqlmock, func()) {
	sqlDB, mock, err := sqlmock.New()
	assert.NoError(t, err)

	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	assert.NoError(t, err)

	cleanup := func() {
		mock.ExpectClose()
		sqlDB.Close()
	}
	return ledger.NewRepository(gormDB), mock, cleanup
}

func TestRepository_Save(t *testing.T) {
	repo, mock, cleanup := setupMockRepository(t)
	defer cleanup()

	run := ledger.NewCleaningRun("vessel-telemetry-raw/input.csv", "telemetry")
	run.Status = ledger.StatusCompleted
	run.RowsRead = 10
	run.RowsDisqualified = 2
	run.RowsWritten = 8
	run.CellsNulled = 3
	run.PartitionsWritten = 2
	run.FinishedAt = run.StartedAt.Add(1500 * time.Millisecond)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `cleaning_runs`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := repo.Save(context.Background(), run)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_FindByID(t *testing.T) {
	repo, mock, cleanup := setupMockRepository(t)
	defer cleanup()

	started := time.Date(2023, 11, 14, 10, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{
		"id", "source_object", "output_base_dir", "status", "error_kind", "error_message",
		"rows_read", "rows_disqualified", "rows_written", "cells_nulled", "partitions_written",
		"started_at", "finished_at",
	}).AddRow(
		"run-1", "raw/input.csv", "telemetry", ledger.StatusFailed, "MalformedInputError", "input file is empty",
		0, 0, 0, 0, 0,
		started, started.Add(time.Second),
	)

	mock.ExpectQuery("SELECT (.+) FROM `cleaning_runs`").
		WithArgs("run-1", 1).
		WillReturnRows(rows)

	run, err := repo.FindByID(context.Background(), "run-1")
	assert.NoError(t, err)
	assert.Equal(t, ledger.StatusFailed, run.Status)
	assert.Equal(t, "MalformedInputError", run.ErrorKind)
	assert.Equal(t, time.Second, run.Duration())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_FindByID_NotFound(t *testing.T) {
	repo, mock, cleanup := setupMockRepository(t)
	defer cleanup()

	mock.ExpectQuery("SELECT (.+) FROM `cleaning_runs`").
		WithArgs("absent", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	run, err := repo.FindByID(context.Background(), "absent")
	assert.Nil(t, run)
	assert.ErrorIs(t, err, exception.ErrNotFound)
}

func TestRepository_ListRecent(t *testing.T) {
	repo, mock, cleanup := setupMockRepository(t)
	defer cleanup()

	started := time.Date(2023, 11, 14, 10, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "status", "started_at", "finished_at"}).
		AddRow("run-2", ledger.StatusCompleted, started.Add(time.Hour), started.Add(time.Hour)).
		AddRow("run-1", ledger.StatusCompleted, started, started)

	mock.ExpectQuery("SELECT (.+) FROM `cleaning_runs` ORDER BY started_at DESC").
		WillReturnRows(rows)

	runs, err := repo.ListRecent(context.Background(), 10)
	assert.NoError(t, err)
	assert.Equal(t, 2, len(runs))
	assert.Equal(t, "run-2", runs[0].ID)
}

func TestNoopRepository(t *testing.T) {
	repo := ledger.NewNoopRepository()

	assert.NoError(t, repo.Save(context.Background(), ledger.NewCleaningRun("src", "out")))

	_, err := repo.FindByID(context.Background(), "any")
	assert.ErrorIs(t, err, exception.ErrNotFound)

	runs, err := repo.ListRecent(context.Background(), 5)
	assert.NoError(t, err)
	assert.Nil(t, runs)
}

func TestNewCleaningRun_AssignsIdentity(t *testing.T) {
	a := ledger.NewCleaningRun("src", "out")
	b := ledger.NewCleaningRun("src", "out")

	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.False(t, a.StartedAt.IsZero())
	assert.Equal(t, "src", a.SourceObject)
}
