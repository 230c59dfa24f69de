package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Grants are the capability switches a permission record carries.
type Grants struct {
	ViewOwn        bool `json:"view_own"`
	EditOwn        bool `json:"edit_own"`
	ViewTeam       bool `json:"view_team"`
	EditTeam       bool `json:"edit_team"`
	Approve        bool `json:"approve"`
	ManageRates    bool `json:"manage_rates"`
	ManageSettings bool `json:"manage_settings"`
	Export         bool `json:"export"`
}

// DefaultGrants is what a user holds when no record exists: access to their
// own timesheet and nothing else.
func DefaultGrants() Grants {
	return Grants{ViewOwn: true, EditOwn: true}
}

// Restrictions narrow a grant. Empty lists mean unrestricted.
type Restrictions struct {
	ProjectIDs     []snowflake.ID `json:"project_ids,omitempty"`
	EmployeeIDs    []snowflake.ID `json:"employee_ids,omitempty"`
	MaxHoursPerDay *float64       `json:"max_hours_per_day,omitempty"`
}

// PermissionRecord is one time-bounded permission set in the append-only
// history. Superseding a record closes the prior one via effective_to.
type PermissionRecord struct {
	ID             snowflake.ID                      `json:"id" gorm:"primaryKey"`
	TenantID       snowflake.ID                      `json:"tenant_id" gorm:"column:tenant_id;not null;index:idx_permission_records_user"`
	UserID         snowflake.ID                      `json:"user_id" gorm:"not null;index:idx_permission_records_user"`
	ViewOwn        bool                              `json:"view_own" gorm:"not null;default:true"`
	EditOwn        bool                              `json:"edit_own" gorm:"not null;default:true"`
	ViewTeam       bool                              `json:"view_team" gorm:"not null;default:false"`
	EditTeam       bool                              `json:"edit_team" gorm:"not null;default:false"`
	Approve        bool                              `json:"approve" gorm:"not null;default:false"`
	ManageRates    bool                              `json:"manage_rates" gorm:"not null;default:false"`
	ManageSettings bool                              `json:"manage_settings" gorm:"not null;default:false"`
	Export         bool                              `json:"export" gorm:"not null;default:false"`
	Restrictions   datatypes.JSONType[Restrictions]  `json:"restrictions" gorm:"type:jsonb"`
	EffectiveFrom  time.Time                         `json:"effective_from" gorm:"not null"`
	EffectiveTo    *time.Time                        `json:"effective_to,omitempty"`
	CreatedAt      time.Time                         `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (PermissionRecord) TableName() string { return "permission_records" }

// Grants flattens the record's switches.
func (r *PermissionRecord) Grants() Grants {
	return Grants{
		ViewOwn:        r.ViewOwn,
		EditOwn:        r.EditOwn,
		ViewTeam:       r.ViewTeam,
		EditTeam:       r.EditTeam,
		Approve:        r.Approve,
		ManageRates:    r.ManageRates,
		ManageSettings: r.ManageSettings,
		Export:         r.Export,
	}
}
