package repository

import (
	"context"
	"errors"
	"time"

	ratedomain "github.com/tallyhq/tally/internal/rate/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() ratedomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, record *ratedomain.RateRecord) error {
	return db.WithContext(ctx).Create(record).Error
}

func (r *repo) FindEffective(ctx context.Context, db *gorm.DB, scope ratedomain.Scope, asOf time.Time) (*ratedomain.RateRecord, error) {
	var record ratedomain.RateRecord
	err := scoped(db.WithContext(ctx), scope).
		Where("effective_from <= ?", asOf).
		Where("effective_to IS NULL OR effective_to >= ?", asOf).
		Order("effective_from DESC").
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

func (r *repo) CloseActive(ctx context.Context, db *gorm.DB, scope ratedomain.Scope, at time.Time) error {
	return scoped(db.WithContext(ctx).Model(&ratedomain.RateRecord{}), scope).
		Where("effective_to IS NULL").
		Update("effective_to", at).Error
}

func (r *repo) ListHistory(ctx context.Context, db *gorm.DB, scope ratedomain.Scope, cursor *ratedomain.HistoryCursor, limit int) ([]ratedomain.RateRecord, error) {
	query := scoped(db.WithContext(ctx), scope)

	if cursor != nil {
		// Keyset on (effective_from, id) so pages stay stable while new
		// records land at the top.
		query = query.Where(
			"effective_from < ? OR (effective_from = ? AND id < ?)",
			cursor.EffectiveFrom, cursor.EffectiveFrom, cursor.ID,
		)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	var records []ratedomain.RateRecord
	err := query.
		Order("effective_from DESC, id DESC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *repo) CountOpen(ctx context.Context, db *gorm.DB, scope ratedomain.Scope) (int64, error) {
	var count int64
	err := scoped(db.WithContext(ctx).Model(&ratedomain.RateRecord{}), scope).
		Where("effective_to IS NULL").
		Count(&count).Error
	return count, err
}

// scoped pins every scope column: absent identifiers must match IS NULL so an
// employee rate never shadows an employee_project rate and vice versa.
func scoped(db *gorm.DB, scope ratedomain.Scope) *gorm.DB {
	db = db.
		Where("tenant_id = ?", scope.TenantID).
		Where("rate_type = ?", scope.RateType)

	if scope.EmployeeID != nil {
		db = db.Where("employee_id = ?", *scope.EmployeeID)
	} else {
		db = db.Where("employee_id IS NULL")
	}
	if scope.ProjectID != nil {
		db = db.Where("project_id = ?", *scope.ProjectID)
	} else {
		db = db.Where("project_id IS NULL")
	}
	if scope.ActivityCodeID != nil {
		db = db.Where("activity_code_id = ?", *scope.ActivityCodeID)
	} else {
		db = db.Where("activity_code_id IS NULL")
	}
	return db
}
