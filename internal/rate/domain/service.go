package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/tallyhq/tally/pkg/db/pagination"
)

type Service interface {
	SetDefaultRate(ctx context.Context, req SetRateRequest) (*Response, error)
	SetEmployeeRate(ctx context.Context, req SetRateRequest) (*Response, error)
	SetProjectRate(ctx context.Context, req SetRateRequest) (*Response, error)
	SetActivityRate(ctx context.Context, req SetRateRequest) (*Response, error)
	SetEmployeeProjectRate(ctx context.Context, req SetRateRequest) (*Response, error)
	GetActiveRate(ctx context.Context, req ScopeRequest) (*Response, error)
	ListHistory(ctx context.Context, req HistoryRequest) (*HistoryResponse, error)
	Resolve(ctx context.Context, req ResolveRequest) (*ResolvedRate, error)
	CalculateEntryCost(ctx context.Context, req EntryCostRequest) (*EntryCost, error)
}

type SetRateRequest struct {
	EmployeeID     string     `json:"employee_id"`
	ProjectID      string     `json:"project_id"`
	ActivityCodeID string     `json:"activity_code_id"`
	StandardRate   float64    `json:"standard_rate"`
	OvertimeRate   *float64   `json:"overtime_rate"`
	BillableRate   *float64   `json:"billable_rate"`
	Currency       string     `json:"currency"`
	EffectiveFrom  *time.Time `json:"effective_from"`
}

type ScopeRequest struct {
	RateType       RateType `form:"rate_type" json:"rate_type"`
	EmployeeID     string   `form:"employee_id" json:"employee_id"`
	ProjectID      string   `form:"project_id" json:"project_id"`
	ActivityCodeID string   `form:"activity_code_id" json:"activity_code_id"`
}

type HistoryRequest struct {
	ScopeRequest
	pagination.Pagination
}

type HistoryResponse struct {
	Rates    []Response          `json:"rates"`
	PageInfo pagination.PageInfo `json:"page_info"`
}

type ResolveRequest struct {
	EmployeeID     string     `form:"employee_id" json:"employee_id"`
	ProjectID      string     `form:"project_id" json:"project_id"`
	ActivityCodeID string     `form:"activity_code_id" json:"activity_code_id"`
	AsOf           *time.Time `form:"as_of" json:"as_of"`
}

type EntryCostRequest struct {
	EmployeeID     string     `json:"employee_id"`
	ProjectID      string     `json:"project_id"`
	ActivityCodeID string     `json:"activity_code_id"`
	Date           *time.Time `json:"date"`
	RegularHours   float64    `json:"regular_hours"`
	OvertimeHours  float64    `json:"overtime_hours"`
}

type Response struct {
	ID             snowflake.ID  `json:"id"`
	TenantID       snowflake.ID  `json:"tenant_id"`
	RateType       RateType      `json:"rate_type"`
	EmployeeID     *snowflake.ID `json:"employee_id,omitempty"`
	ProjectID      *snowflake.ID `json:"project_id,omitempty"`
	ActivityCodeID *snowflake.ID `json:"activity_code_id,omitempty"`
	StandardRate   float64       `json:"standard_rate"`
	OvertimeRate   *float64      `json:"overtime_rate,omitempty"`
	BillableRate   *float64      `json:"billable_rate,omitempty"`
	Currency       string        `json:"currency"`
	EffectiveFrom  time.Time     `json:"effective_from"`
	EffectiveTo    *time.Time    `json:"effective_to,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
}

// ResolvedRate is the effective rate for a work entry after walking the
// employee_project → employee → project → default priority chain.
type ResolvedRate struct {
	RateID       snowflake.ID `json:"rate_id"`
	StandardRate float64      `json:"standard_rate"`
	OvertimeRate float64      `json:"overtime_rate"`
	BillableRate float64      `json:"billable_rate"`
	Currency     string       `json:"currency"`
	Source       RateType     `json:"source"`
}

type EntryCost struct {
	RateID         snowflake.ID `json:"rate_id"`
	Source         RateType     `json:"source"`
	Currency       string       `json:"currency"`
	RegularHours   float64      `json:"regular_hours"`
	OvertimeHours  float64      `json:"overtime_hours"`
	RegularAmount  float64      `json:"regular_amount"`
	OvertimeAmount float64      `json:"overtime_amount"`
	TotalAmount    float64      `json:"total_amount"`
	BillableAmount float64      `json:"billable_amount"`
}

var (
	ErrInvalidTenant   = errors.New("invalid_tenant")
	ErrInvalidEmployee = errors.New("invalid_employee")
	ErrInvalidProject  = errors.New("invalid_project")
	ErrInvalidActivity = errors.New("invalid_activity")
	ErrInvalidRate     = errors.New("invalid_rate")
	ErrInvalidCurrency = errors.New("invalid_currency")
	ErrInvalidRateType = errors.New("invalid_rate_type")
	ErrInvalidHours    = errors.New("invalid_hours")
	// ErrNoDefaultRate means the tenant has never run SetDefaultRate; every
	// other lookup tier degrades to the next, this one is a hard prerequisite.
	ErrNoDefaultRate    = errors.New("no_default_rate")
	ErrNotFound         = errors.New("not_found")
	ErrInvalidPageToken = errors.New("invalid_page_token")
)
