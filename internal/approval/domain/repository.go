package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	FindConfig(ctx context.Context, db *gorm.DB, tenantID snowflake.ID) (*ApprovalConfig, error)
	SaveConfig(ctx context.Context, db *gorm.DB, config *ApprovalConfig) error

	UpsertMapping(ctx context.Context, db *gorm.DB, mapping *ManagerMapping) error
	FindMapping(ctx context.Context, db *gorm.DB, tenantID, employeeID snowflake.ID) (*ManagerMapping, error)
	DeleteMapping(ctx context.Context, db *gorm.DB, tenantID, employeeID snowflake.ID) error
	ListMappings(ctx context.Context, db *gorm.DB, tenantID snowflake.ID) ([]ManagerMapping, error)
	ListReports(ctx context.Context, db *gorm.DB, tenantID, managerID snowflake.ID) ([]ManagerMapping, error)
}
