package repository

import (
	"errors"

	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("record not found")
)

// Repositories groups the relational stores.
type Repositories struct {
	SubmissionLog *SubmissionLogRepository
	PrintArchive  *PrintArchiveRepository
}

// NewRepositories builds the relational stores on db.
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		SubmissionLog: NewSubmissionLogRepository(db),
		PrintArchive:  NewPrintArchiveRepository(db),
	}
}
