// Package backup takes encrypted snapshots of the dietdesk collections and
// keeps them in S3-compatible object storage.
package backup

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/dukerupert/dietdesk/internal/model"
	"github.com/dukerupert/dietdesk/internal/store"
)

// ErrNotConfigured is returned when object storage or the passphrase is missing.
var ErrNotConfigured = errors.New("backup not configured")

// ErrNotFound is returned for an unknown backup id.
var ErrNotFound = errors.New("backup not found")

// s3Client is an interface for testability.
type s3Client interface {
	PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, input *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, input *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Config holds S3-compatible storage configuration.
type S3Config struct {
	Endpoint  string
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
}

func (c S3Config) complete() bool {
	return c.Bucket != "" && c.AccessKey != "" && c.SecretKey != ""
}

type Config struct {
	S3         S3Config
	Passphrase string
	// Interval between scheduled snapshots. Zero disables the schedule.
	Interval time.Duration
	// RetentionDays bounds the age of kept snapshots. Zero keeps everything.
	RetentionDays int
	KeyPrefix     string
}

type State string

const (
	StateIdle     State = "idle"
	StateRunning  State = "running"
	StateDisabled State = "disabled"
	StateError    State = "error"
)

type Status struct {
	State      State      `json:"state"`
	LastBackup *time.Time `json:"last_backup,omitempty"`
	Error      string     `json:"error,omitempty"`
	InProgress bool       `json:"in_progress"`
}

// StatusCallback is called whenever the backup state changes.
type StatusCallback func(Status)

type Manager struct {
	mu       sync.RWMutex
	cfg      Config
	status   Status
	callback StatusCallback

	collections Collections
	backupStore *store.BackupStore
	client      s3Client
	logger      *slog.Logger

	// run serialises snapshot runs and restores.
	run sync.Mutex

	cancel context.CancelFunc
	done   chan struct{}
}

func NewManager(cfg Config, cols Collections, bs *store.BackupStore, callback StatusCallback, logger *slog.Logger) *Manager {
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = "dietdesk"
	}
	m := &Manager{
		cfg:         cfg,
		collections: cols,
		backupStore: bs,
		callback:    callback,
		logger:      logger.With("component", "backup"),
		status:      Status{State: StateDisabled},
	}
	if cfg.S3.complete() && cfg.Passphrase != "" {
		m.client = newS3Client(cfg.S3)
		m.status.State = StateIdle
	}
	if bs != nil {
		if last, err := bs.LatestCompleted(); err != nil {
			m.logger.Warn("load last backup", "error", err)
		} else if last != nil {
			m.status.LastBackup = last.CompletedAt
		}
	}
	return m
}

func newS3Client(cfg S3Config) *s3.Client {
	opts := s3.Options{
		Region:       cfg.Region,
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		UsePathStyle: true,
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}
	return s3.New(opts)
}

// Enabled reports whether snapshots can be taken.
func (m *Manager) Enabled() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.client != nil
}

// Start begins the scheduled snapshot loop. It does nothing when the
// manager is disabled or no interval is configured.
func (m *Manager) Start(ctx context.Context) {
	m.mu.Lock()
	if m.status.State == StateDisabled || m.cfg.Interval <= 0 {
		m.mu.Unlock()
		return
	}
	interval := m.cfg.Interval
	ctx, m.cancel = context.WithCancel(ctx)
	m.done = make(chan struct{})
	done := m.done
	m.mu.Unlock()

	m.logger.Info("scheduled backups enabled", "interval", interval)
	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.scheduled(ctx)
			}
		}
	}()
}

// Stop gracefully stops the backup manager.
func (m *Manager) Stop() {
	m.mu.RLock()
	cancel := m.cancel
	done := m.done
	m.mu.RUnlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

// Status returns the current backup status.
func (m *Manager) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

func (m *Manager) setStatus(s Status) {
	m.mu.Lock()
	m.status = s
	m.mu.Unlock()
	if m.callback != nil {
		m.callback(s)
	}
}

func (m *Manager) scheduled(ctx context.Context) {
	if _, err := m.RunNow(ctx); err != nil {
		m.logger.Error("scheduled backup failed", "error", err)
	}
	if err := m.Cleanup(ctx); err != nil {
		m.logger.Error("backup cleanup failed", "error", err)
	}
}

// RunNow takes a snapshot, encrypts it and uploads it. It returns the id of
// the backup record.
func (m *Manager) RunNow(ctx context.Context) (int64, error) {
	m.mu.RLock()
	client := m.client
	bucket := m.cfg.S3.Bucket
	passphrase := m.cfg.Passphrase
	prefix := m.cfg.KeyPrefix
	m.mu.RUnlock()

	if client == nil {
		return 0, ErrNotConfigured
	}

	m.run.Lock()
	defer m.run.Unlock()

	m.setStatus(Status{State: StateRunning, InProgress: true})

	now := time.Now().UTC()
	filename := fmt.Sprintf("snapshot-%s-%s.json.enc", now.Format("2006-01-02T150405Z"), uuid.NewString()[:8])
	s3Key := prefix + "/" + filename

	record, err := m.backupStore.Create(filename, s3Key)
	if err != nil {
		m.setStatus(Status{State: StateError, Error: err.Error()})
		return 0, fmt.Errorf("create backup record: %w", err)
	}
	fail := func(err error) (int64, error) {
		if uerr := m.backupStore.UpdateStatus(record.ID, model.BackupStatusFailed, err.Error()); uerr != nil {
			m.logger.Error("mark backup failed", "id", record.ID, "error", uerr)
		}
		m.setStatus(Status{State: StateError, Error: err.Error()})
		return 0, err
	}

	if err := m.backupStore.UpdateStatus(record.ID, model.BackupStatusUploading, ""); err != nil {
		return fail(fmt.Errorf("mark uploading: %w", err))
	}

	snap := m.collections.take()
	plaintext, err := encodeSnapshot(snap)
	if err != nil {
		return fail(err)
	}
	encrypted, err := Encrypt(plaintext, passphrase)
	if err != nil {
		return fail(fmt.Errorf("encrypt: %w", err))
	}

	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(s3Key),
		Body:          bytes.NewReader(encrypted),
		ContentLength: aws.Int64(int64(len(encrypted))),
	})
	if err != nil {
		return fail(fmt.Errorf("upload to s3: %w", err))
	}

	if err := m.backupStore.MarkCompleted(record.ID, int64(len(encrypted)), snap.counts()); err != nil {
		return fail(fmt.Errorf("mark completed: %w", err))
	}

	m.logger.Info("backup completed", "id", record.ID, "key", s3Key, "bytes", len(encrypted))
	done := time.Now().UTC()
	m.setStatus(Status{State: StateIdle, LastBackup: &done})
	return record.ID, nil
}

// Restore downloads and decrypts a snapshot and replaces every collection
// with its content. Nothing is replaced unless the snapshot decrypts and
// parses cleanly.
func (m *Manager) Restore(ctx context.Context, backupID int64) error {
	m.mu.RLock()
	client := m.client
	bucket := m.cfg.S3.Bucket
	passphrase := m.cfg.Passphrase
	m.mu.RUnlock()

	if client == nil {
		return ErrNotConfigured
	}

	m.run.Lock()
	defer m.run.Unlock()

	record, err := m.backupStore.GetByID(backupID)
	if err != nil {
		return fmt.Errorf("get backup: %w", err)
	}
	if record == nil {
		return fmt.Errorf("backup %d: %w", backupID, ErrNotFound)
	}
	if record.Status != model.BackupStatusCompleted {
		return fmt.Errorf("backup %d is %s, not completed", backupID, record.Status)
	}

	result, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(record.S3Key),
	})
	if err != nil {
		return fmt.Errorf("download from s3: %w", err)
	}
	defer result.Body.Close()

	encrypted, err := io.ReadAll(result.Body)
	if err != nil {
		return fmt.Errorf("read snapshot: %w", err)
	}
	plaintext, err := Decrypt(encrypted, passphrase)
	if err != nil {
		return fmt.Errorf("decrypt backup: %w", err)
	}
	snap, err := decodeSnapshot(plaintext)
	if err != nil {
		return err
	}

	m.collections.replace(snap)
	m.logger.Info("backup restored", "id", backupID, "taken_at", snap.TakenAt,
		"food_items", len(snap.FoodItems), "diet_plans", len(snap.DietPlans), "diet_orders", len(snap.DietOrders))
	return nil
}

// List returns the most recent backup records, newest first.
func (m *Manager) List(limit int) ([]model.Backup, error) {
	return m.backupStore.List(limit)
}

// Cleanup deletes backups older than the retention period.
func (m *Manager) Cleanup(ctx context.Context) error {
	m.mu.RLock()
	client := m.client
	bucket := m.cfg.S3.Bucket
	retention := m.cfg.RetentionDays
	m.mu.RUnlock()

	if client == nil || retention <= 0 {
		return nil
	}

	before := time.Now().UTC().AddDate(0, 0, -retention)
	keys, err := m.backupStore.DeleteOlderThan(before)
	if err != nil {
		return fmt.Errorf("delete old backups: %w", err)
	}

	for _, key := range keys {
		if _, err := client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(bucket),
			Key:    aws.String(key),
		}); err != nil {
			m.logger.Warn("failed to delete backup object", "key", key, "error", err)
		}
	}
	if len(keys) > 0 {
		m.logger.Info("old backups removed", "count", len(keys))
	}
	return nil
}
