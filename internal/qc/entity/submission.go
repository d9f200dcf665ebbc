package entity

import (
	"time"

	"gorm.io/datatypes"
)

// Submission actions
const (
	ActionSubmit  = "submit"
	ActionApprove = "approve"
)

// SubmissionLog is the audit row written after a successful submit or
// approval.
type SubmissionLog struct {
	ID           string         `json:"id" gorm:"primaryKey;size:36"`
	SessionID    string         `json:"session_id" gorm:"size:36;index"`
	Kind         string         `json:"kind" gorm:"size:32;not null;index:idx_submission_trial"`
	TrialID      string         `json:"trial_id" gorm:"size:64;index:idx_submission_trial"`
	DepartmentID int            `json:"department_id"`
	NextDept     int            `json:"next_department_id"`
	Username     string         `json:"username" gorm:"size:100;not null;index"`
	Role         string         `json:"role" gorm:"size:32"`
	Action       string         `json:"action" gorm:"size:20;not null"` // submit/approve
	Payload      datatypes.JSON `json:"payload" gorm:"type:jsonb"`
	Warnings     datatypes.JSON `json:"warnings" gorm:"type:jsonb"`
	ClientIP     string         `json:"client_ip" gorm:"size:64"`
	PublicIP     string         `json:"public_ip" gorm:"size:64"`
	CreatedAt    time.Time      `json:"created_at"`
}

func (SubmissionLog) TableName() string {
	return "qc_submission_logs"
}

// PrintArchive points at the printable HTML stored for a submitted session.
type PrintArchive struct {
	ID          string    `json:"id" gorm:"primaryKey;size:36"`
	SessionID   string    `json:"session_id" gorm:"size:36;uniqueIndex"`
	TrialID     string    `json:"trial_id" gorm:"size:64;index"`
	Kind        string    `json:"kind" gorm:"size:32"`
	Bucket      string    `json:"bucket" gorm:"size:100"`
	ObjectKey   string    `json:"object_key" gorm:"size:500;not null"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type" gorm:"size:100"`
	CreatedBy   string    `json:"created_by" gorm:"size:100"`
	CreatedAt   time.Time `json:"created_at"`
}

func (PrintArchive) TableName() string {
	return "qc_print_archives"
}
