// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"finetune.quickstart/pkg/models"
	_ "modernc.org/sqlite"
)

// LedgerFileName is the database file created inside the state directory
const LedgerFileName = "ledger.db"

// ClientRunIDKey is the job metadata key carrying the id generated at submit time
const ClientRunIDKey = models.MetadataClientRunID

// JobRecord is the ledger's copy of a submitted or observed job
type JobRecord struct {
	ID             string           `json:"id" yaml:"id"`
	BaseModel      string           `json:"model" yaml:"model"`
	TrainingFile   string           `json:"training_file" yaml:"training_file"`
	Status         models.JobStatus `json:"status" yaml:"status"`
	FineTunedModel string           `json:"fine_tuned_model,omitempty" yaml:"fine_tuned_model,omitempty"`
	ClientRunID    string           `json:"client_run_id,omitempty" yaml:"client_run_id,omitempty"`
	CreatedAt      time.Time        `json:"created_at" yaml:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at" yaml:"updated_at"`
}

// FileRecord is the ledger's copy of an uploaded file handle
type FileRecord struct {
	ID         string    `json:"id" yaml:"id"`
	Filename   string    `json:"filename" yaml:"filename"`
	Bytes      int64     `json:"bytes" yaml:"bytes"`
	Purpose    string    `json:"purpose" yaml:"purpose"`
	UploadedAt time.Time `json:"uploaded_at" yaml:"uploaded_at"`
}

// Store is a local SQLite record of files and jobs. It is a cache: the remote
// service stays authoritative.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open creates the state directory if needed and opens the ledger inside it
func Open(ctx context.Context, dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create state directory %s: %w", dir, err)
	}

	dsn := filepath.Join(dir, LedgerFileName) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open ledger: %w", err)
	}

	store := &Store{db: db, now: time.Now}
	if err := store.createTables(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// Close releases the database handle
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createTables(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS files (
		id TEXT PRIMARY KEY,
		filename TEXT NOT NULL DEFAULT '',
		bytes INTEGER NOT NULL DEFAULT 0,
		purpose TEXT NOT NULL DEFAULT '',
		uploaded_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS jobs (
		id TEXT PRIMARY KEY,
		base_model TEXT NOT NULL DEFAULT '',
		training_file TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		fine_tuned_model TEXT NOT NULL DEFAULT '',
		client_run_id TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_jobs_created_at ON jobs(created_at);
	`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create ledger tables: %w", err)
	}
	return nil
}

// SaveFile records an uploaded file
func (s *Store) SaveFile(ctx context.Context, file *models.UploadedFile) error {
	uploadedAt := file.CreatedAt
	if uploadedAt.IsZero() {
		uploadedAt = s.now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO files (id, filename, bytes, purpose, uploaded_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			filename = excluded.filename,
			bytes = excluded.bytes,
			purpose = excluded.purpose`,
		file.ID, file.Filename, file.Bytes, file.Purpose, uploadedAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to record file %s: %w", file.ID, err)
	}
	return nil
}

// SaveJob records a job, or refreshes the status of one already recorded
func (s *Store) SaveJob(ctx context.Context, job *models.FineTuningJob) error {
	createdAt := job.CreatedAt
	if createdAt.IsZero() {
		createdAt = s.now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO jobs (id, base_model, training_file, status, fine_tuned_model, client_run_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			fine_tuned_model = excluded.fine_tuned_model,
			client_run_id = COALESCE(NULLIF(excluded.client_run_id, ''), jobs.client_run_id),
			updated_at = excluded.updated_at`,
		job.ID, job.BaseModel, job.TrainingFile, string(job.Status), job.FineTunedModel,
		job.Metadata[ClientRunIDKey], createdAt.Unix(), s.now().Unix())
	if err != nil {
		return fmt.Errorf("failed to record job %s: %w", job.ID, err)
	}
	return nil
}

// ListJobs returns recorded jobs, newest first. limit <= 0 returns all.
func (s *Store) ListJobs(ctx context.Context, limit int) ([]JobRecord, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+jobColumns+`
		FROM jobs
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query jobs: %w", err)
	}
	defer rows.Close()

	var jobs []JobRecord
	for rows.Next() {
		record, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *record)
	}
	return jobs, rows.Err()
}

// GetJob returns one recorded job, or nil when it is not in the ledger
func (s *Store) GetJob(ctx context.Context, jobID string) (*JobRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = ?`, jobID)
	record, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return record, err
}

const jobColumns = "id, base_model, training_file, status, fine_tuned_model, client_run_id, created_at, updated_at"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*JobRecord, error) {
	var (
		record               JobRecord
		status               string
		createdAt, updatedAt int64
	)
	err := row.Scan(&record.ID, &record.BaseModel, &record.TrainingFile, &status,
		&record.FineTunedModel, &record.ClientRunID, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read job row: %w", err)
	}
	record.Status = models.JobStatus(status)
	record.CreatedAt = time.Unix(createdAt, 0).UTC()
	record.UpdatedAt = time.Unix(updatedAt, 0).UTC()
	return &record, nil
}

// ListFiles returns recorded files, newest first. limit <= 0 returns all.
func (s *Store) ListFiles(ctx context.Context, limit int) ([]FileRecord, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, filename, bytes, purpose, uploaded_at
		FROM files
		ORDER BY uploaded_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query files: %w", err)
	}
	defer rows.Close()

	var files []FileRecord
	for rows.Next() {
		var (
			record     FileRecord
			uploadedAt int64
		)
		if err := rows.Scan(&record.ID, &record.Filename, &record.Bytes, &record.Purpose, &uploadedAt); err != nil {
			return nil, fmt.Errorf("failed to read file row: %w", err)
		}
		record.UploadedAt = time.Unix(uploadedAt, 0).UTC()
		files = append(files, record)
	}
	return files, rows.Err()
}
