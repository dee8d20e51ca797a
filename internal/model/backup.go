package model

import "time"

type BackupStatus string

const (
	BackupStatusPending   BackupStatus = "pending"
	BackupStatusUploading BackupStatus = "uploading"
	BackupStatusCompleted BackupStatus = "completed"
	BackupStatusFailed    BackupStatus = "failed"
)

// SnapshotCounts is how many records of each collection a snapshot holds.
type SnapshotCounts struct {
	FoodItems  int `json:"food_items"`
	DietPlans  int `json:"diet_plans"`
	DietOrders int `json:"diet_orders"`
}

// Backup is the local record of one encrypted snapshot in object storage.
// Counts and SizeBytes are filled in once the upload completes.
type Backup struct {
	ID           int64          `json:"id"`
	Filename     string         `json:"filename"`
	S3Key        string         `json:"s3_key"`
	SizeBytes    int64          `json:"size_bytes"`
	Counts       SnapshotCounts `json:"counts"`
	Status       BackupStatus   `json:"status"`
	ErrorMessage string         `json:"error_message,omitempty"`
	StartedAt    *time.Time     `json:"started_at,omitempty"`
	CompletedAt  *time.Time     `json:"completed_at,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}
