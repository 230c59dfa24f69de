package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type PeriodType string

var (
	Weekly      PeriodType = "WEEKLY"
	Biweekly    PeriodType = "BIWEEKLY"
	Semimonthly PeriodType = "SEMIMONTHLY"
	Monthly     PeriodType = "MONTHLY"
)

type ExportFormat string

var (
	CSV  ExportFormat = "CSV"
	XLSX ExportFormat = "XLSX"
	PDF  ExportFormat = "PDF"
	JSON ExportFormat = "JSON"
)

type ExportGroupBy string

var (
	ByEmployee ExportGroupBy = "EMPLOYEE"
	ByProject  ExportGroupBy = "PROJECT"
	ByDate     ExportGroupBy = "DATE"
	ByActivity ExportGroupBy = "ACTIVITY"
)

// PeriodSettings controls how timesheet periods are cut.
type PeriodSettings struct {
	Type         PeriodType `json:"type"`
	WeekStartDay int        `json:"week_start_day"`
}

// OvertimeRules parameterize the overtime calculator.
type OvertimeRules struct {
	Enabled         bool    `json:"enabled"`
	DailyThreshold  float64 `json:"daily_threshold"`
	WeeklyThreshold float64 `json:"weekly_threshold"`
	Multiplier      float64 `json:"multiplier"`
}

// ValidationRules parameterize time-entry validation.
type ValidationRules struct {
	MaxDailyHours             float64 `json:"max_daily_hours"`
	MaxWeeklyHours            float64 `json:"max_weekly_hours"`
	RequireDescription        bool    `json:"require_description"`
	MinDescriptionLength      int     `json:"min_description_length"`
	RequireProjectForBillable bool    `json:"require_project_for_billable"`
	RequireActivityCode       bool    `json:"require_activity_code"`
	AllowFutureEntries        bool    `json:"allow_future_entries"`
	MaxFutureDays             int     `json:"max_future_days"`
	AllowWeekendWork          bool    `json:"allow_weekend_work"`
}

// ApprovalWorkflow parameterizes the approval policy evaluator.
type ApprovalWorkflow struct {
	Enabled               bool    `json:"enabled"`
	RequireApprovalForAll bool    `json:"require_approval_for_all"`
	AutoApproveThreshold  float64 `json:"auto_approve_threshold"`
	ApprovalLevels        int     `json:"approval_levels"`
	EscalationDays        int     `json:"escalation_days"`
}

// Notifications controls reminder and decision notifications.
type Notifications struct {
	RemindersEnabled   bool   `json:"reminders_enabled"`
	ReminderDays       []int  `json:"reminder_days"`
	ReminderTime       string `json:"reminder_time"`
	NotifyOnSubmission bool   `json:"notify_on_submission"`
	NotifyOnDecision   bool   `json:"notify_on_decision"`
}

// ExportSettings controls timesheet export defaults.
type ExportSettings struct {
	Format          ExportFormat  `json:"format"`
	GroupBy         ExportGroupBy `json:"group_by"`
	IncludeInactive bool          `json:"include_inactive"`
}

// Security controls edit locking and audit behavior.
type Security struct {
	LockPeriodDays    int  `json:"lock_period_days"`
	AllowSelfApproval bool `json:"allow_self_approval"`
	AuditTrailEnabled bool `json:"audit_trail_enabled"`
}

// TimesheetSettings is the per-tenant configuration aggregate. Exactly one
// row exists per tenant; it is created lazily with defaults on first read.
type TimesheetSettings struct {
	ID               snowflake.ID     `json:"id" gorm:"primaryKey"`
	TenantID         snowflake.ID     `json:"tenant_id" gorm:"column:tenant_id;not null;uniqueIndex"`
	Version          int32            `json:"version" gorm:"not null;default:1"`
	Period           PeriodSettings   `json:"period" gorm:"type:jsonb;serializer:json"`
	OvertimeRules    OvertimeRules    `json:"overtime_rules" gorm:"type:jsonb;serializer:json"`
	ValidationRules  ValidationRules  `json:"validation_rules" gorm:"type:jsonb;serializer:json"`
	ApprovalWorkflow ApprovalWorkflow `json:"approval_workflow" gorm:"type:jsonb;serializer:json"`
	Notifications    Notifications    `json:"notifications" gorm:"type:jsonb;serializer:json"`
	ExportSettings   ExportSettings   `json:"export_settings" gorm:"type:jsonb;serializer:json"`
	Security         Security         `json:"security" gorm:"type:jsonb;serializer:json"`
	CreatedAt        time.Time        `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt        time.Time        `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (TimesheetSettings) TableName() string { return "timesheet_settings" }

// Defaults returns the aggregate a tenant starts with.
func Defaults(tenantID snowflake.ID) TimesheetSettings {
	return TimesheetSettings{
		TenantID: tenantID,
		Version:  1,
		Period: PeriodSettings{
			Type:         Weekly,
			WeekStartDay: 1,
		},
		OvertimeRules: OvertimeRules{
			Enabled:         true,
			DailyThreshold:  8,
			WeeklyThreshold: 40,
			Multiplier:      1.5,
		},
		ValidationRules: ValidationRules{
			MaxDailyHours:             12,
			MaxWeeklyHours:            60,
			RequireDescription:        true,
			MinDescriptionLength:      0,
			RequireProjectForBillable: true,
			RequireActivityCode:       false,
			AllowFutureEntries:        false,
			MaxFutureDays:             7,
			AllowWeekendWork:          true,
		},
		ApprovalWorkflow: ApprovalWorkflow{
			Enabled:               true,
			RequireApprovalForAll: false,
			AutoApproveThreshold:  40,
			ApprovalLevels:        1,
			EscalationDays:        3,
		},
		Notifications: Notifications{
			RemindersEnabled:   true,
			ReminderDays:       []int{5},
			ReminderTime:       "17:00",
			NotifyOnSubmission: true,
			NotifyOnDecision:   true,
		},
		ExportSettings: ExportSettings{
			Format:          CSV,
			GroupBy:         ByEmployee,
			IncludeInactive: false,
		},
		Security: Security{
			LockPeriodDays:    30,
			AllowSelfApproval: false,
			AuditTrailEnabled: true,
		},
	}
}
