package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	GetConfig(ctx context.Context) (*ConfigResponse, error)
	SetDefaultApprovers(ctx context.Context, req SetDefaultApproversRequest) (*ConfigResponse, error)
	SetEscalationRules(ctx context.Context, req SetEscalationRulesRequest) (*ConfigResponse, error)

	SetEmployeeManager(ctx context.Context, req SetManagerRequest) (*MappingResponse, error)
	RemoveEmployeeManager(ctx context.Context, employeeID string) error
	ImportHierarchy(ctx context.Context, req ImportHierarchyRequest) (*ImportResult, error)
	ListMappings(ctx context.Context) ([]MappingResponse, error)
	ListDirectReports(ctx context.Context, managerID string) ([]MappingResponse, error)

	// GetApproverForEmployee walks manager mapping, then the tenant default
	// chain. A nil approver with a nil error means nobody can approve.
	GetApproverForEmployee(ctx context.Context, employeeID string) (*Approver, error)
	GetEscalationTarget(ctx context.Context, employeeID string) (*Approver, error)
	IsApprovalRequired(ctx context.Context, req IsApprovalRequiredRequest) (bool, error)
}

type SetDefaultApproversRequest struct {
	PrimaryApproverID   string `json:"primary_approver_id"`
	SecondaryApproverID string `json:"secondary_approver_id"`
}

type SetEscalationRulesRequest struct {
	Enabled          bool   `json:"enabled"`
	EscalateToUserID string `json:"escalate_to_user_id"`
	AfterDays        int    `json:"after_days"`
}

type SetManagerRequest struct {
	EmployeeID   string  `json:"employee_id"`
	ManagerID    string  `json:"manager_id"`
	ManagerName  string  `json:"manager_name"`
	ManagerEmail string  `json:"manager_email"`
	Department   *string `json:"department"`
}

type ImportHierarchyRequest struct {
	Entries []SetManagerRequest `json:"entries"`
}

// ImportResult reports per-row outcomes. Rows are applied in order and a
// failing row never rolls back the rows before it.
type ImportResult struct {
	Imported int             `json:"imported"`
	Failed   []ImportFailure `json:"failed,omitempty"`
}

type ImportFailure struct {
	Index      int    `json:"index"`
	EmployeeID string `json:"employee_id"`
	Reason     string `json:"reason"`
}

type IsApprovalRequiredRequest struct {
	EmployeeID string  `json:"employee_id"`
	TotalHours float64 `json:"total_hours"`
}

type ApproverSource string

var (
	SourceManager          ApproverSource = "MANAGER"
	SourceDefaultPrimary   ApproverSource = "DEFAULT_PRIMARY"
	SourceDefaultSecondary ApproverSource = "DEFAULT_SECONDARY"
	SourceEscalation       ApproverSource = "ESCALATION"
)

type Approver struct {
	UserID snowflake.ID   `json:"user_id"`
	Name   string         `json:"name"`
	Email  string         `json:"email"`
	Source ApproverSource `json:"source"`
}

type ConfigResponse struct {
	ID                     snowflake.ID  `json:"id"`
	TenantID               snowflake.ID  `json:"tenant_id"`
	PrimaryApproverID      snowflake.ID  `json:"primary_approver_id"`
	PrimaryApproverName    string        `json:"primary_approver_name"`
	PrimaryApproverEmail   string        `json:"primary_approver_email"`
	SecondaryApproverID    *snowflake.ID `json:"secondary_approver_id,omitempty"`
	SecondaryApproverName  *string       `json:"secondary_approver_name,omitempty"`
	SecondaryApproverEmail *string       `json:"secondary_approver_email,omitempty"`
	EscalationEnabled      bool          `json:"escalation_enabled"`
	EscalateToUserID       *snowflake.ID `json:"escalate_to_user_id,omitempty"`
	EscalationAfterDays    int           `json:"escalation_after_days"`
	UpdatedAt              time.Time     `json:"updated_at"`
}

type MappingResponse struct {
	ID           snowflake.ID `json:"id"`
	TenantID     snowflake.ID `json:"tenant_id"`
	EmployeeID   snowflake.ID `json:"employee_id"`
	ManagerID    snowflake.ID `json:"manager_id"`
	ManagerName  string       `json:"manager_name"`
	ManagerEmail string       `json:"manager_email"`
	Department   *string      `json:"department,omitempty"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

var (
	ErrInvalidTenant         = errors.New("invalid_tenant")
	ErrInvalidEmployee       = errors.New("invalid_employee")
	ErrInvalidManager        = errors.New("invalid_manager")
	ErrInvalidApprover       = errors.New("invalid_approver")
	ErrInvalidEmail          = errors.New("invalid_email")
	ErrUnknownUser           = errors.New("unknown_user")
	ErrSelfManager           = errors.New("self_manager")
	ErrInvalidEscalationDays = errors.New("invalid_escalation_days")
	ErrNotFound              = errors.New("not_found")
)
