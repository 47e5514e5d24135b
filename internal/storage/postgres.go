package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"callscribe/pkg/logger"
	"callscribe/pkg/model"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"
)

// RunRecord is one archived batch run.
type RunRecord struct {
	ID           uuid.UUID
	LanguageMode string
	MinSpeakers  int
	MaxSpeakers  int
	TotalRows    int
	Succeeded    int
	Empty        int
	Failed       int
	StartedAt    time.Time
	FinishedAt   time.Time
}

// Archive persists completed runs and their per-row results in Postgres.
type Archive struct {
	pool *pgxpool.Pool
}

// NewArchive connects to Postgres and applies pending migrations.
func NewArchive(databaseURL string) (*Archive, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(context.Background()); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("Database connection established")

	if err := runMigrations(databaseURL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Archive{pool: pool}, nil
}

func runMigrations(databaseURL string) error {
	migrationsPath, err := filepath.Abs("migrations")
	if err != nil {
		return fmt.Errorf("failed to get migrations path: %w", err)
	}
	migrationsURL := fmt.Sprintf("file://%s", filepath.ToSlash(migrationsPath))

	logger.Info("Running migrations", zap.String("path", migrationsURL))

	connConfig, err := pgx.ParseConfig(databaseURL)
	if err != nil {
		return fmt.Errorf("failed to parse database URL: %w", err)
	}
	db := stdlib.OpenDB(*connConfig)
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create postgres driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(migrationsURL, "postgres", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer m.Close()

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if err == migrate.ErrNoChange {
		logger.Info("No new migrations to apply")
	} else {
		logger.Info("Migrations applied successfully")
	}

	return nil
}

// Close releases the connection pool.
func (a *Archive) Close() {
	a.pool.Close()
}

// SaveRun archives a completed run with its rows under the caller's run ID,
// the same ID the published row events carry. Report entries and rows are
// index-aligned, both in input order.
func (a *Archive) SaveRun(
	ctx context.Context,
	runID uuid.UUID,
	job model.Job,
	report *model.BatchReport,
	rows []model.Row,
	startedAt, finishedAt time.Time,
) error {
	if len(report.Entries) != len(rows) {
		return fmt.Errorf("report has %d entries for %d rows", len(report.Entries), len(rows))
	}

	succeeded, empty, failed := report.Counts()

	tx, err := a.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	runQuery := `
		INSERT INTO runs (
			id, language_mode, min_speakers, max_speakers,
			total_rows, succeeded, empty, failed, started_at, finished_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10
		)`

	_, err = tx.Exec(ctx, runQuery,
		runID,
		string(job.Language),
		job.MinSpeakers,
		job.MaxSpeakers,
		len(rows),
		succeeded,
		empty,
		failed,
		startedAt,
		finishedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	rowQuery := `
		INSERT INTO row_results (
			id, run_id, row_index, label, recording_url,
			status, detail, transcript, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9
		)`

	for i, entry := range report.Entries {
		_, err = tx.Exec(ctx, rowQuery,
			uuid.New(),
			runID,
			rows[i].Index,
			entry.Label,
			rows[i].RecordingURL,
			entry.Outcome.Status(),
			entry.Outcome.Detail(),
			rows[i].Transcript,
			finishedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert row result %d: %w", rows[i].Index, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}

	logger.Info("Run archived",
		zap.String("run_id", runID.String()),
		zap.Int("rows", len(rows)))

	return nil
}

// GetRun retrieves an archived run by ID.
func (a *Archive) GetRun(ctx context.Context, id uuid.UUID) (*RunRecord, error) {
	query := `
		SELECT id, language_mode, min_speakers, max_speakers,
		       total_rows, succeeded, empty, failed, started_at, finished_at
		FROM runs
		WHERE id = $1`

	var run RunRecord
	row := a.pool.QueryRow(ctx, query, id)

	err := row.Scan(
		&run.ID,
		&run.LanguageMode,
		&run.MinSpeakers,
		&run.MaxSpeakers,
		&run.TotalRows,
		&run.Succeeded,
		&run.Empty,
		&run.Failed,
		&run.StartedAt,
		&run.FinishedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("run not found")
		}
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	return &run, nil
}
