package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, record *PermissionRecord) error
	FindEffective(ctx context.Context, db *gorm.DB, tenantID, userID snowflake.ID, asOf time.Time) (*PermissionRecord, error)
	CloseActive(ctx context.Context, db *gorm.DB, tenantID, userID snowflake.ID, at time.Time) error
	ListHistory(ctx context.Context, db *gorm.DB, tenantID, userID snowflake.ID) ([]PermissionRecord, error)
}
