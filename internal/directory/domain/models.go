package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// User is a minimal directory row, enough to enrich approver and manager
// references with a name and email.
type User struct {
	ID          snowflake.ID `json:"id" gorm:"primaryKey"`
	TenantID    snowflake.ID `json:"tenant_id" gorm:"column:tenant_id;not null;uniqueIndex:idx_users_tenant_email"`
	Email       string       `json:"email" gorm:"type:text;not null;uniqueIndex:idx_users_tenant_email"`
	FirstName   string       `json:"first_name" gorm:"type:text"`
	LastName    string       `json:"last_name" gorm:"type:text"`
	DisplayName string       `json:"display_name" gorm:"type:text"`
	CreatedAt   time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (User) TableName() string { return "users" }

// Name prefers the display name over the first/last pair.
func (u User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	if u.FirstName == "" && u.LastName == "" {
		return u.Email
	}
	if u.FirstName == "" {
		return u.LastName
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
