package repository

import (
	"context"

	"github.com/bitfantasy/nimo-qc/internal/qc/entity"
	"gorm.io/gorm"
)

// SubmissionLogRepository stores the submit/approve audit trail.
type SubmissionLogRepository struct {
	db *gorm.DB
}

func NewSubmissionLogRepository(db *gorm.DB) *SubmissionLogRepository {
	return &SubmissionLogRepository{db: db}
}

// Create inserts one audit row.
func (r *SubmissionLogRepository) Create(ctx context.Context, log *entity.SubmissionLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

// SubmissionFilter narrows List.
type SubmissionFilter struct {
	TrialID  string
	Kind     string
	Username string
	Page     int
	PageSize int
}

// List returns matching rows newest first with the total count.
func (r *SubmissionLogRepository) List(ctx context.Context, f SubmissionFilter) ([]entity.SubmissionLog, int64, error) {
	var logs []entity.SubmissionLog
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.SubmissionLog{})
	if f.TrialID != "" {
		query = query.Where("trial_id = ?", f.TrialID)
	}
	if f.Kind != "" {
		query = query.Where("kind = ?", f.Kind)
	}
	if f.Username != "" {
		query = query.Where("username = ?", f.Username)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page, size := f.Page, f.PageSize
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 200 {
		size = 20
	}
	err := query.Order("created_at DESC").Offset((page - 1) * size).Limit(size).Find(&logs).Error
	return logs, total, err
}
