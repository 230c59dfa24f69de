package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// ApprovalConfig is the per-tenant fallback approver chain. At most one row
// exists per tenant.
type ApprovalConfig struct {
	ID                     snowflake.ID  `json:"id" gorm:"primaryKey"`
	TenantID               snowflake.ID  `json:"tenant_id" gorm:"column:tenant_id;not null;uniqueIndex"`
	PrimaryApproverID      snowflake.ID  `json:"primary_approver_id" gorm:"not null"`
	PrimaryApproverName    string        `json:"primary_approver_name" gorm:"type:text;not null"`
	PrimaryApproverEmail   string        `json:"primary_approver_email" gorm:"type:text;not null"`
	SecondaryApproverID    *snowflake.ID `json:"secondary_approver_id,omitempty"`
	SecondaryApproverName  *string       `json:"secondary_approver_name,omitempty" gorm:"type:text"`
	SecondaryApproverEmail *string       `json:"secondary_approver_email,omitempty" gorm:"type:text"`
	EscalationEnabled      bool          `json:"escalation_enabled" gorm:"not null;default:false"`
	EscalateToUserID       *snowflake.ID `json:"escalate_to_user_id,omitempty"`
	EscalationAfterDays    int           `json:"escalation_after_days" gorm:"not null;default:0"`
	CreatedAt              time.Time     `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt              time.Time     `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (ApprovalConfig) TableName() string { return "approval_configs" }

// ManagerMapping binds an employee to the manager who approves their
// timesheets. One mapping per employee per tenant.
type ManagerMapping struct {
	ID           snowflake.ID `json:"id" gorm:"primaryKey"`
	TenantID     snowflake.ID `json:"tenant_id" gorm:"column:tenant_id;not null;uniqueIndex:idx_manager_mappings_employee"`
	EmployeeID   snowflake.ID `json:"employee_id" gorm:"not null;uniqueIndex:idx_manager_mappings_employee"`
	ManagerID    snowflake.ID `json:"manager_id" gorm:"not null;index:idx_manager_mappings_manager"`
	ManagerName  string       `json:"manager_name" gorm:"type:text;not null"`
	ManagerEmail string       `json:"manager_email" gorm:"type:text;not null"`
	Department   *string      `json:"department,omitempty" gorm:"type:text"`
	CreatedAt    time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt    time.Time    `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (ManagerMapping) TableName() string { return "manager_mappings" }
