package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	settingsdomain "github.com/tallyhq/tally/internal/settings/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() settingsdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, settings *settingsdomain.TimesheetSettings) error {
	return db.WithContext(ctx).Create(settings).Error
}

func (r *repo) FindByTenant(ctx context.Context, db *gorm.DB, tenantID snowflake.ID) (*settingsdomain.TimesheetSettings, error) {
	var s settingsdomain.TimesheetSettings
	err := db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		First(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, settings *settingsdomain.TimesheetSettings) error {
	return db.WithContext(ctx).
		Where("tenant_id = ?", settings.TenantID).
		Save(settings).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, tenantID snowflake.ID) error {
	return db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Delete(&settingsdomain.TimesheetSettings{}).Error
}
