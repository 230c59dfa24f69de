package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

// Capability names accepted by HasPermission.
type Capability string

var (
	ViewOwnTimesheet  Capability = "VIEW_OWN"
	EditOwnTimesheet  Capability = "EDIT_OWN"
	ViewTeamTimesheet Capability = "VIEW_TEAM"
	EditTeamTimesheet Capability = "EDIT_TEAM"
	ApproveTimesheet  Capability = "APPROVE"
	ManageRates       Capability = "MANAGE_RATES"
	ManageSettings    Capability = "MANAGE_SETTINGS"
	ExportTimesheet   Capability = "EXPORT"
)

type Service interface {
	SetUserPermissions(ctx context.Context, req SetPermissionsRequest) (*Response, error)
	// GetUserPermissions falls back to DefaultGrants when no record exists.
	GetUserPermissions(ctx context.Context, userID string) (*Response, error)
	ListHistory(ctx context.Context, userID string) ([]Response, error)

	// HasPermission denies unknown capabilities rather than erroring.
	HasPermission(ctx context.Context, userID string, capability Capability) (bool, error)
	CanAccessProject(ctx context.Context, req ProjectAccessRequest) (bool, error)
	CanApproveForUser(ctx context.Context, req ApprovalAccessRequest) (bool, error)
	CanEditTimeEntry(ctx context.Context, req EditAccessRequest) (bool, error)
}

type SetPermissionsRequest struct {
	UserID       string        `json:"user_id"`
	Grants       Grants        `json:"grants"`
	Restrictions *Restrictions `json:"restrictions"`
}

type ProjectAccessRequest struct {
	UserID    string `json:"user_id"`
	ProjectID string `json:"project_id"`
}

type ApprovalAccessRequest struct {
	ApproverID string `json:"approver_id"`
	EmployeeID string `json:"employee_id"`
}

type EditAccessRequest struct {
	UserID    string    `json:"user_id"`
	OwnerID   string    `json:"owner_id"`
	EntryDate time.Time `json:"entry_date"`
}

type Response struct {
	RecordID      *snowflake.ID `json:"record_id,omitempty"`
	UserID        snowflake.ID  `json:"user_id"`
	Grants        Grants        `json:"grants"`
	Restrictions  *Restrictions `json:"restrictions,omitempty"`
	EffectiveFrom *time.Time    `json:"effective_from,omitempty"`
	EffectiveTo   *time.Time    `json:"effective_to,omitempty"`
}

var (
	ErrInvalidTenant  = errors.New("invalid_tenant")
	ErrInvalidUser    = errors.New("invalid_user")
	ErrInvalidProject = errors.New("invalid_project")
)
