package domain

import (
	"context"
	"errors"

	ratedomain "github.com/tallyhq/tally/internal/rate/domain"
	settingsdomain "github.com/tallyhq/tally/internal/settings/domain"
)

type Service interface {
	// ValidateEntry never fails on rule violations; they come back in the
	// result so callers can show all of them at once.
	ValidateEntry(ctx context.Context, entry Entry) (*ValidationResult, error)
	// EstimateCost validates first and prices the entry with the resolved
	// rate, splitting overtime at the tenant's daily threshold.
	EstimateCost(ctx context.Context, entry Entry) (*CostEstimate, error)
}

type ValidationResult struct {
	Valid      bool                         `json:"valid"`
	Violations settingsdomain.ValidationErrors `json:"violations,omitempty"`
}

type CostEstimate struct {
	Hours         float64              `json:"hours"`
	RegularHours  float64              `json:"regular_hours"`
	OvertimeHours float64              `json:"overtime_hours"`
	Cost          *ratedomain.EntryCost `json:"cost"`
}

var (
	ErrInvalidTenant = errors.New("invalid_tenant")
	ErrInvalidEntry  = errors.New("invalid_entry")
)
