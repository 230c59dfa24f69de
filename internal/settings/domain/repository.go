package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, settings *TimesheetSettings) error
	FindByTenant(ctx context.Context, db *gorm.DB, tenantID snowflake.ID) (*TimesheetSettings, error)
	Update(ctx context.Context, db *gorm.DB, settings *TimesheetSettings) error
	Delete(ctx context.Context, db *gorm.DB, tenantID snowflake.ID) error
}
