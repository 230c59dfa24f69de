package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type RateType string

var (
	Default          RateType = "DEFAULT"
	Employee         RateType = "EMPLOYEE"
	Project          RateType = "PROJECT"
	Activity         RateType = "ACTIVITY"
	EmployeeProject  RateType = "EMPLOYEE_PROJECT"
	EmployeeActivity RateType = "EMPLOYEE_ACTIVITY"
)

// RateRecord is one time-bounded rate in the append-only history. Records are
// never physically removed; superseding a rate closes the prior record by
// stamping effective_to.
type RateRecord struct {
	ID             snowflake.ID  `json:"id" gorm:"primaryKey"`
	TenantID       snowflake.ID  `json:"tenant_id" gorm:"column:tenant_id;not null;index"`
	RateType       RateType      `json:"rate_type" gorm:"type:text;not null"`
	EmployeeID     *snowflake.ID `json:"employee_id,omitempty"`
	ProjectID      *snowflake.ID `json:"project_id,omitempty"`
	ActivityCodeID *snowflake.ID `json:"activity_code_id,omitempty"`
	StandardRate   float64       `json:"standard_rate" gorm:"type:numeric;not null"`
	OvertimeRate   *float64      `json:"overtime_rate,omitempty" gorm:"type:numeric"`
	BillableRate   *float64      `json:"billable_rate,omitempty" gorm:"type:numeric"`
	Currency       string        `json:"currency" gorm:"type:text;not null"`
	EffectiveFrom  time.Time     `json:"effective_from" gorm:"not null"`
	EffectiveTo    *time.Time    `json:"effective_to,omitempty"`
	CreatedAt      time.Time     `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (RateRecord) TableName() string { return "rate_records" }

// Scope narrows a rate record's applicability. At most one record per scope
// may have a nil effective_to.
type Scope struct {
	TenantID       snowflake.ID
	RateType       RateType
	EmployeeID     *snowflake.ID
	ProjectID      *snowflake.ID
	ActivityCodeID *snowflake.ID
}
