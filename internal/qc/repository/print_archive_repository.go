package repository

import (
	"context"
	"errors"

	"github.com/bitfantasy/nimo-qc/internal/qc/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PrintArchiveRepository indexes archived printouts.
type PrintArchiveRepository struct {
	db *gorm.DB
}

func NewPrintArchiveRepository(db *gorm.DB) *PrintArchiveRepository {
	return &PrintArchiveRepository{db: db}
}

// Upsert stores the archive row, replacing an earlier one of the same session.
func (r *PrintArchiveRepository) Upsert(ctx context.Context, a *entity.PrintArchive) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"object_key", "size", "content_type", "bucket", "created_at"}),
	}).Create(a).Error
}

// FindBySession returns the archive of a session.
func (r *PrintArchiveRepository) FindBySession(ctx context.Context, sessionID string) (*entity.PrintArchive, error) {
	var a entity.PrintArchive
	err := r.db.WithContext(ctx).Where("session_id = ?", sessionID).First(&a).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

// ListByTrial returns all printouts archived for a trial, newest first.
func (r *PrintArchiveRepository) ListByTrial(ctx context.Context, trialID string) ([]entity.PrintArchive, error) {
	var out []entity.PrintArchive
	err := r.db.WithContext(ctx).Where("trial_id = ?", trialID).Order("created_at DESC").Find(&out).Error
	return out, err
}
