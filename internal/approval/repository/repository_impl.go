package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	approvaldomain "github.com/tallyhq/tally/internal/approval/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() approvaldomain.Repository {
	return &repo{}
}

func (r *repo) FindConfig(ctx context.Context, db *gorm.DB, tenantID snowflake.ID) (*approvaldomain.ApprovalConfig, error) {
	var config approvaldomain.ApprovalConfig
	err := db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		First(&config).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &config, nil
}

func (r *repo) SaveConfig(ctx context.Context, db *gorm.DB, config *approvaldomain.ApprovalConfig) error {
	return db.WithContext(ctx).Save(config).Error
}

func (r *repo) UpsertMapping(ctx context.Context, db *gorm.DB, mapping *approvaldomain.ManagerMapping) error {
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "tenant_id"}, {Name: "employee_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"manager_id", "manager_name", "manager_email", "department", "updated_at",
			}),
		}).
		Create(mapping).Error
}

func (r *repo) FindMapping(ctx context.Context, db *gorm.DB, tenantID, employeeID snowflake.ID) (*approvaldomain.ManagerMapping, error) {
	var mapping approvaldomain.ManagerMapping
	err := db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Where("employee_id = ?", employeeID).
		First(&mapping).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &mapping, nil
}

func (r *repo) DeleteMapping(ctx context.Context, db *gorm.DB, tenantID, employeeID snowflake.ID) error {
	return db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Where("employee_id = ?", employeeID).
		Delete(&approvaldomain.ManagerMapping{}).Error
}

func (r *repo) ListMappings(ctx context.Context, db *gorm.DB, tenantID snowflake.ID) ([]approvaldomain.ManagerMapping, error) {
	var mappings []approvaldomain.ManagerMapping
	err := db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("employee_id ASC").
		Find(&mappings).Error
	if err != nil {
		return nil, err
	}
	return mappings, nil
}

func (r *repo) ListReports(ctx context.Context, db *gorm.DB, tenantID, managerID snowflake.ID) ([]approvaldomain.ManagerMapping, error) {
	var mappings []approvaldomain.ManagerMapping
	err := db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Where("manager_id = ?", managerID).
		Order("employee_id ASC").
		Find(&mappings).Error
	if err != nil {
		return nil, err
	}
	return mappings, nil
}
