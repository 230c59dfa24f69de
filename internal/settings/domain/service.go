package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	Get(ctx context.Context) (*Response, error)
	UpdatePeriod(ctx context.Context, req UpdatePeriodRequest) (*Response, error)
	UpdateOvertimeRules(ctx context.Context, req UpdateOvertimeRulesRequest) (*Response, error)
	UpdateValidationRules(ctx context.Context, req UpdateValidationRulesRequest) (*Response, error)
	UpdateApprovalWorkflow(ctx context.Context, req UpdateApprovalWorkflowRequest) (*Response, error)
	UpdateNotifications(ctx context.Context, req UpdateNotificationsRequest) (*Response, error)
	UpdateExportSettings(ctx context.Context, req UpdateExportSettingsRequest) (*Response, error)
	UpdateSecurity(ctx context.Context, req UpdateSecurityRequest) (*Response, error)
	Reset(ctx context.Context) (*Response, error)
}

// Update requests carry pointers so each call replaces only the fields it
// names, merged onto the previously persisted group.

type UpdatePeriodRequest struct {
	Type         *PeriodType `json:"type"`
	WeekStartDay *int        `json:"week_start_day"`
}

type UpdateOvertimeRulesRequest struct {
	Enabled         *bool    `json:"enabled"`
	DailyThreshold  *float64 `json:"daily_threshold"`
	WeeklyThreshold *float64 `json:"weekly_threshold"`
	Multiplier      *float64 `json:"multiplier"`
}

type UpdateValidationRulesRequest struct {
	MaxDailyHours             *float64 `json:"max_daily_hours"`
	MaxWeeklyHours            *float64 `json:"max_weekly_hours"`
	RequireDescription        *bool    `json:"require_description"`
	MinDescriptionLength      *int     `json:"min_description_length"`
	RequireProjectForBillable *bool    `json:"require_project_for_billable"`
	RequireActivityCode       *bool    `json:"require_activity_code"`
	AllowFutureEntries        *bool    `json:"allow_future_entries"`
	MaxFutureDays             *int     `json:"max_future_days"`
	AllowWeekendWork          *bool    `json:"allow_weekend_work"`
}

type UpdateApprovalWorkflowRequest struct {
	Enabled               *bool    `json:"enabled"`
	RequireApprovalForAll *bool    `json:"require_approval_for_all"`
	AutoApproveThreshold  *float64 `json:"auto_approve_threshold"`
	ApprovalLevels        *int     `json:"approval_levels"`
	EscalationDays        *int     `json:"escalation_days"`
}

type UpdateNotificationsRequest struct {
	RemindersEnabled   *bool   `json:"reminders_enabled"`
	ReminderDays       *[]int  `json:"reminder_days"`
	ReminderTime       *string `json:"reminder_time"`
	NotifyOnSubmission *bool   `json:"notify_on_submission"`
	NotifyOnDecision   *bool   `json:"notify_on_decision"`
}

type UpdateExportSettingsRequest struct {
	Format          *ExportFormat  `json:"format"`
	GroupBy         *ExportGroupBy `json:"group_by"`
	IncludeInactive *bool          `json:"include_inactive"`
}

type UpdateSecurityRequest struct {
	LockPeriodDays    *int  `json:"lock_period_days"`
	AllowSelfApproval *bool `json:"allow_self_approval"`
	AuditTrailEnabled *bool `json:"audit_trail_enabled"`
}

type Response struct {
	ID               snowflake.ID     `json:"id"`
	TenantID         snowflake.ID     `json:"tenant_id"`
	Version          int32            `json:"version"`
	Period           PeriodSettings   `json:"period"`
	OvertimeRules    OvertimeRules    `json:"overtime_rules"`
	ValidationRules  ValidationRules  `json:"validation_rules"`
	ApprovalWorkflow ApprovalWorkflow `json:"approval_workflow"`
	Notifications    Notifications    `json:"notifications"`
	ExportSettings   ExportSettings   `json:"export_settings"`
	Security         Security         `json:"security"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

var (
	ErrInvalidTenant = errors.New("invalid_tenant")
	ErrNotFound      = errors.New("not_found")
)

// FieldError is one declared-invariant violation on the aggregate.
type FieldError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ValidationErrors accumulates every violation; validation is all-or-nothing
// and never clamps silently.
type ValidationErrors struct {
	Errors []FieldError `json:"errors"`
}

func (e *ValidationErrors) Error() string { return "settings validation failed" }

func (e *ValidationErrors) Add(field, code, message string) {
	e.Errors = append(e.Errors, FieldError{Field: field, Code: code, Message: message})
}

func (e *ValidationErrors) OrNil() error {
	if len(e.Errors) == 0 {
		return nil
	}
	return e
}
