package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	permissiondomain "github.com/tallyhq/tally/internal/permission/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() permissiondomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, record *permissiondomain.PermissionRecord) error {
	return db.WithContext(ctx).Create(record).Error
}

func (r *repo) FindEffective(ctx context.Context, db *gorm.DB, tenantID, userID snowflake.ID, asOf time.Time) (*permissiondomain.PermissionRecord, error) {
	var record permissiondomain.PermissionRecord
	err := db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Where("user_id = ?", userID).
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

func (r *repo) CloseActive(ctx context.Context, db *gorm.DB, tenantID, userID snowflake.ID, at time.Time) error {
	return db.WithContext(ctx).Model(&permissiondomain.PermissionRecord{}).
		Where("tenant_id = ?", tenantID).
		Where("user_id = ?", userID).
		Where("effective_to IS NULL").
		Update("effective_to", at).Error
}

func (r *repo) ListHistory(ctx context.Context, db *gorm.DB, tenantID, userID snowflake.ID) ([]permissiondomain.PermissionRecord, error) {
	var records []permissiondomain.PermissionRecord
	err := db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Where("user_id = ?", userID).
		Order("effective_from DESC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}
