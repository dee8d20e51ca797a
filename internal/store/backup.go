package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dukerupert/dietdesk/internal/model"
)

// BackupStore keeps the local index of snapshots uploaded to object storage.
type BackupStore struct {
	db *sql.DB
}

func NewBackupStore(db *sql.DB) *BackupStore {
	return &BackupStore{db: db}
}

const backupCols = `id, filename, s3_key, size_bytes, food_items, diet_plans, diet_orders,
	status, error_message, started_at, completed_at, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBackup(row rowScanner) (*model.Backup, error) {
	var (
		b                      model.Backup
		errMsg                 sql.NullString
		startedAt, completedAt sql.NullTime
	)
	err := row.Scan(
		&b.ID, &b.Filename, &b.S3Key, &b.SizeBytes,
		&b.Counts.FoodItems, &b.Counts.DietPlans, &b.Counts.DietOrders,
		&b.Status, &errMsg, &startedAt, &completedAt, &b.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	b.ErrorMessage = errMsg.String
	if startedAt.Valid {
		b.StartedAt = &startedAt.Time
	}
	if completedAt.Valid {
		b.CompletedAt = &completedAt.Time
	}
	return &b, nil
}

// Create records a pending snapshot under the given object key.
func (s *BackupStore) Create(filename, s3Key string) (*model.Backup, error) {
	now := time.Now().UTC()
	result, err := s.db.Exec(
		`INSERT INTO backups (filename, s3_key, status, started_at, created_at) VALUES (?, ?, ?, ?, ?)`,
		filename, s3Key, model.BackupStatusPending, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("create backup: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return &model.Backup{
		ID:        id,
		Filename:  filename,
		S3Key:     s3Key,
		Status:    model.BackupStatusPending,
		StartedAt: &now,
		CreatedAt: now,
	}, nil
}

// GetByID returns nil, nil when no such backup exists.
func (s *BackupStore) GetByID(id int64) (*model.Backup, error) {
	b, err := scanBackup(s.db.QueryRow(`SELECT `+backupCols+` FROM backups WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get backup %d: %w", id, err)
	}
	return b, nil
}

// List returns at most limit backups, newest first.
func (s *BackupStore) List(limit int) ([]model.Backup, error) {
	rows, err := s.db.Query(`SELECT `+backupCols+` FROM backups ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list backups: %w", err)
	}
	defer rows.Close()

	backups := []model.Backup{}
	for rows.Next() {
		b, err := scanBackup(rows)
		if err != nil {
			return nil, fmt.Errorf("scan backup: %w", err)
		}
		backups = append(backups, *b)
	}
	return backups, rows.Err()
}

// UpdateStatus moves a backup to status. An empty errorMsg clears the
// stored message.
func (s *BackupStore) UpdateStatus(id int64, status model.BackupStatus, errorMsg string) error {
	msg := sql.NullString{String: errorMsg, Valid: errorMsg != ""}
	if _, err := s.db.Exec(`UPDATE backups SET status = ?, error_message = ? WHERE id = ?`, status, msg, id); err != nil {
		return fmt.Errorf("update backup %d status: %w", id, err)
	}
	return nil
}

// MarkCompleted stores the uploaded size and the record counts of the
// snapshot.
func (s *BackupStore) MarkCompleted(id, sizeBytes int64, counts model.SnapshotCounts) error {
	_, err := s.db.Exec(
		`UPDATE backups
		 SET status = ?, size_bytes = ?, food_items = ?, diet_plans = ?, diet_orders = ?,
		     error_message = NULL, completed_at = ?
		 WHERE id = ?`,
		model.BackupStatusCompleted, sizeBytes,
		counts.FoodItems, counts.DietPlans, counts.DietOrders,
		time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("complete backup %d: %w", id, err)
	}
	return nil
}

// DeleteOlderThan removes backups created before the cutoff and returns
// their object keys so the objects can be deleted too.
func (s *BackupStore) DeleteOlderThan(before time.Time) ([]string, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.Query(`SELECT s3_key FROM backups WHERE created_at < ?`, before)
	if err != nil {
		return nil, fmt.Errorf("select old backups: %w", err)
	}
	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan s3 key: %w", err)
		}
		keys = append(keys, key)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if _, err := tx.Exec(`DELETE FROM backups WHERE created_at < ?`, before); err != nil {
		return nil, fmt.Errorf("delete old backups: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return keys, nil
}

// LatestCompleted returns the most recently finished snapshot, or nil.
func (s *BackupStore) LatestCompleted() (*model.Backup, error) {
	b, err := scanBackup(s.db.QueryRow(
		`SELECT `+backupCols+` FROM backups WHERE status = ? ORDER BY completed_at DESC, id DESC LIMIT 1`,
		model.BackupStatusCompleted,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest completed backup: %w", err)
	}
	return b, nil
}
