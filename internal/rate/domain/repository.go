package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// HistoryCursor marks the last row of the previous page.
type HistoryCursor struct {
	ID            snowflake.ID
	EffectiveFrom time.Time
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, record *RateRecord) error
	// FindEffective returns the record active at asOf for the scope, picking
	// the latest effective_from among matches, or nil when none applies.
	FindEffective(ctx context.Context, db *gorm.DB, scope Scope, asOf time.Time) (*RateRecord, error)
	// CloseActive stamps effective_to on the currently open record for the
	// scope, if any.
	CloseActive(ctx context.Context, db *gorm.DB, scope Scope, at time.Time) error
	// ListHistory pages through the scope's records newest-first. A nil
	// cursor starts from the top; limit rows come back at most.
	ListHistory(ctx context.Context, db *gorm.DB, scope Scope, cursor *HistoryCursor, limit int) ([]RateRecord, error)
	CountOpen(ctx context.Context, db *gorm.DB, scope Scope) (int64, error)
}
