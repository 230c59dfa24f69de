package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tallyhq/tally/internal/clock"
	permissiondomain "github.com/tallyhq/tally/internal/permission/domain"
	permissionrepository "github.com/tallyhq/tally/internal/permission/repository"
	settingsdomain "github.com/tallyhq/tally/internal/settings/domain"
	settingsrepository "github.com/tallyhq/tally/internal/settings/repository"
	settingsservice "github.com/tallyhq/tally/internal/settings/service"
	"github.com/tallyhq/tally/pkg/tenantctx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	svc      permissiondomain.Service
	settings settingsdomain.Service
	db       *gorm.DB
	clk      *clock.FakeClock
	node     *snowflake.Node
	tenantID snowflake.ID
	ctx      context.Context
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&permissiondomain.PermissionRecord{},
		&settingsdomain.TimesheetSettings{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	logger := zap.NewNop()
	clk := clock.NewFakeClock(time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))

	settingsSvc := settingsservice.New(settingsservice.Params{
		DB:    db,
		Log:   logger,
		GenID: node,
		Clock: clk,
		Repo:  settingsrepository.Provide(),
	})

	svc := New(Params{
		DB:       db,
		Log:      logger,
		GenID:    node,
		Clock:    clk,
		Repo:     permissionrepository.Provide(),
		Settings: settingsSvc,
	})

	tenantID := node.Generate()
	return &fixture{
		svc:      svc,
		settings: settingsSvc,
		db:       db,
		clk:      clk,
		node:     node,
		tenantID: tenantID,
		ctx:      tenantctx.WithTenantID(context.Background(), tenantID),
	}
}

func TestGetUserPermissions_DefaultsWhenUnset(t *testing.T) {
	f := newFixture(t)
	userID := f.node.Generate().String()

	perms, err := f.svc.GetUserPermissions(f.ctx, userID)
	require.NoError(t, err)

	assert.Nil(t, perms.RecordID)
	assert.True(t, perms.Grants.ViewOwn)
	assert.True(t, perms.Grants.EditOwn)
	assert.False(t, perms.Grants.Approve)
	assert.False(t, perms.Grants.ManageRates)
}

func TestSetUserPermissions_DeactivatesPriorRecord(t *testing.T) {
	f := newFixture(t)
	userID := f.node.Generate().String()

	_, err := f.svc.SetUserPermissions(f.ctx, permissiondomain.SetPermissionsRequest{
		UserID: userID,
		Grants: permissiondomain.Grants{ViewOwn: true, EditOwn: true, Approve: true},
	})
	require.NoError(t, err)

	f.clk.Advance(time.Minute)

	perms, err := f.svc.SetUserPermissions(f.ctx, permissiondomain.SetPermissionsRequest{
		UserID: userID,
		Grants: permissiondomain.Grants{ViewOwn: true},
	})
	require.NoError(t, err)
	assert.False(t, perms.Grants.Approve)

	var open int64
	require.NoError(t, f.db.Model(&permissiondomain.PermissionRecord{}).
		Where("tenant_id = ? AND effective_to IS NULL", f.tenantID).
		Count(&open).Error)
	assert.Equal(t, int64(1), open)

	history, err := f.svc.ListHistory(f.ctx, userID)
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestHasPermission_FailsClosed(t *testing.T) {
	f := newFixture(t)
	userID := f.node.Generate().String()

	ok, err := f.svc.HasPermission(f.ctx, userID, permissiondomain.ViewOwnTimesheet)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.svc.HasPermission(f.ctx, userID, permissiondomain.ManageSettings)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = f.svc.HasPermission(f.ctx, userID, permissiondomain.Capability("DELETE_TENANT"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCanAccessProject_RestrictionList(t *testing.T) {
	f := newFixture(t)
	userID := f.node.Generate().String()
	allowed := f.node.Generate()
	denied := f.node.Generate()

	_, err := f.svc.SetUserPermissions(f.ctx, permissiondomain.SetPermissionsRequest{
		UserID: userID,
		Grants: permissiondomain.Grants{ViewOwn: true},
		Restrictions: &permissiondomain.Restrictions{
			ProjectIDs: []snowflake.ID{allowed},
		},
	})
	require.NoError(t, err)

	ok, err := f.svc.CanAccessProject(f.ctx, permissiondomain.ProjectAccessRequest{
		UserID: userID, ProjectID: allowed.String(),
	})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.svc.CanAccessProject(f.ctx, permissiondomain.ProjectAccessRequest{
		UserID: userID, ProjectID: denied.String(),
	})
	require.NoError(t, err)
	assert.False(t, ok)

	// No restriction list means every project is visible.
	other := f.node.Generate().String()
	ok, err = f.svc.CanAccessProject(f.ctx, permissiondomain.ProjectAccessRequest{
		UserID: other, ProjectID: denied.String(),
	})
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCanApproveForUser(t *testing.T) {
	f := newFixture(t)
	approver := f.node.Generate().String()
	employee := f.node.Generate().String()

	// Without the approve grant, denied.
	ok, err := f.svc.CanApproveForUser(f.ctx, permissiondomain.ApprovalAccessRequest{
		ApproverID: approver, EmployeeID: employee,
	})
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = f.svc.SetUserPermissions(f.ctx, permissiondomain.SetPermissionsRequest{
		UserID: approver,
		Grants: permissiondomain.Grants{ViewOwn: true, Approve: true},
	})
	require.NoError(t, err)

	ok, err = f.svc.CanApproveForUser(f.ctx, permissiondomain.ApprovalAccessRequest{
		ApproverID: approver, EmployeeID: employee,
	})
	require.NoError(t, err)
	assert.True(t, ok)

	// Self approval is blocked by the default security settings.
	ok, err = f.svc.CanApproveForUser(f.ctx, permissiondomain.ApprovalAccessRequest{
		ApproverID: approver, EmployeeID: approver,
	})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCanEditTimeEntry_LockPeriod(t *testing.T) {
	f := newFixture(t)
	userID := f.node.Generate().String()

	// Default lock period is 30 days.
	recent := f.clk.Now().AddDate(0, 0, -5)
	ok, err := f.svc.CanEditTimeEntry(f.ctx, permissiondomain.EditAccessRequest{
		UserID: userID, OwnerID: userID, EntryDate: recent,
	})
	require.NoError(t, err)
	assert.True(t, ok)

	stale := f.clk.Now().AddDate(0, 0, -45)
	ok, err = f.svc.CanEditTimeEntry(f.ctx, permissiondomain.EditAccessRequest{
		UserID: userID, OwnerID: userID, EntryDate: stale,
	})
	require.NoError(t, err)
	assert.False(t, ok)

	// Editing someone else's entry needs the team grant.
	other := f.node.Generate().String()
	ok, err = f.svc.CanEditTimeEntry(f.ctx, permissiondomain.EditAccessRequest{
		UserID: userID, OwnerID: other, EntryDate: recent,
	})
	require.NoError(t, err)
	assert.False(t, ok)
}
