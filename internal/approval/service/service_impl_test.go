package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	approvaldomain "github.com/tallyhq/tally/internal/approval/domain"
	approvalrepository "github.com/tallyhq/tally/internal/approval/repository"
	"github.com/tallyhq/tally/internal/clock"
	directorydomain "github.com/tallyhq/tally/internal/directory/domain"
	directoryrepository "github.com/tallyhq/tally/internal/directory/repository"
	directoryservice "github.com/tallyhq/tally/internal/directory/service"
	settingsdomain "github.com/tallyhq/tally/internal/settings/domain"
	settingsrepository "github.com/tallyhq/tally/internal/settings/repository"
	settingsservice "github.com/tallyhq/tally/internal/settings/service"
	"github.com/tallyhq/tally/pkg/tenantctx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	svc       approvaldomain.Service
	directory directorydomain.Service
	settings  settingsdomain.Service
	ctx       context.Context
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&approvaldomain.ApprovalConfig{},
		&approvaldomain.ManagerMapping{},
		&settingsdomain.TimesheetSettings{},
		&directorydomain.User{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	logger := zap.NewNop()
	clk := clock.NewFakeClock(time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))

	directorySvc := directoryservice.New(directoryservice.Params{
		DB:    db,
		Log:   logger,
		GenID: node,
		Clock: clk,
		Repo:  directoryrepository.Provide(),
	})
	settingsSvc := settingsservice.New(settingsservice.Params{
		DB:    db,
		Log:   logger,
		GenID: node,
		Clock: clk,
		Repo:  settingsrepository.Provide(),
	})

	svc := New(Params{
		DB:        db,
		Log:       logger,
		GenID:     node,
		Clock:     clk,
		Repo:      approvalrepository.Provide(),
		Directory: directorySvc,
		Settings:  settingsSvc,
	})

	ctx := tenantctx.WithTenantID(context.Background(), node.Generate())
	return &fixture{svc: svc, directory: directorySvc, settings: settingsSvc, ctx: ctx}
}

func (f *fixture) addUser(t *testing.T, email, displayName string) *directorydomain.Response {
	t.Helper()
	user, err := f.directory.CreateUser(f.ctx, directorydomain.CreateUserRequest{
		Email:       email,
		DisplayName: displayName,
	})
	require.NoError(t, err)
	return user
}

func TestIsApprovalRequired(t *testing.T) {
	f := newFixture(t)

	threshold := 35.0
	_, err := f.settings.UpdateApprovalWorkflow(f.ctx, settingsdomain.UpdateApprovalWorkflowRequest{
		AutoApproveThreshold: &threshold,
	})
	require.NoError(t, err)

	required, err := f.svc.IsApprovalRequired(f.ctx, approvaldomain.IsApprovalRequiredRequest{TotalHours: 40})
	require.NoError(t, err)
	assert.True(t, required)

	required, err = f.svc.IsApprovalRequired(f.ctx, approvaldomain.IsApprovalRequiredRequest{TotalHours: 30})
	require.NoError(t, err)
	assert.False(t, required)

	// At the threshold exactly, auto-approve wins.
	required, err = f.svc.IsApprovalRequired(f.ctx, approvaldomain.IsApprovalRequiredRequest{TotalHours: 35})
	require.NoError(t, err)
	assert.False(t, required)
}

func TestIsApprovalRequired_WorkflowToggles(t *testing.T) {
	f := newFixture(t)

	requireAll := true
	_, err := f.settings.UpdateApprovalWorkflow(f.ctx, settingsdomain.UpdateApprovalWorkflowRequest{
		RequireApprovalForAll: &requireAll,
	})
	require.NoError(t, err)

	required, err := f.svc.IsApprovalRequired(f.ctx, approvaldomain.IsApprovalRequiredRequest{TotalHours: 1})
	require.NoError(t, err)
	assert.True(t, required)

	disabled := false
	_, err = f.settings.UpdateApprovalWorkflow(f.ctx, settingsdomain.UpdateApprovalWorkflowRequest{
		Enabled: &disabled,
	})
	require.NoError(t, err)

	required, err = f.svc.IsApprovalRequired(f.ctx, approvaldomain.IsApprovalRequiredRequest{TotalHours: 500})
	require.NoError(t, err)
	assert.False(t, required)
}

func TestGetApproverForEmployee_ManagerBeatsDefault(t *testing.T) {
	f := newFixture(t)
	admin := f.addUser(t, "admin@acme.test", "Admin")
	manager := f.addUser(t, "manager@acme.test", "Manager")
	employee := f.addUser(t, "employee@acme.test", "Employee")

	_, err := f.svc.SetDefaultApprovers(f.ctx, approvaldomain.SetDefaultApproversRequest{
		PrimaryApproverID: admin.ID.String(),
	})
	require.NoError(t, err)

	_, err = f.svc.SetEmployeeManager(f.ctx, approvaldomain.SetManagerRequest{
		EmployeeID: employee.ID.String(),
		ManagerID:  manager.ID.String(),
	})
	require.NoError(t, err)

	approver, err := f.svc.GetApproverForEmployee(f.ctx, employee.ID.String())
	require.NoError(t, err)
	require.NotNil(t, approver)
	assert.Equal(t, manager.ID, approver.UserID)
	assert.Equal(t, "Manager", approver.Name)
	assert.Equal(t, "manager@acme.test", approver.Email)
	assert.Equal(t, approvaldomain.SourceManager, approver.Source)

	// Unmapped employees fall back to the tenant default.
	other := f.addUser(t, "other@acme.test", "Other")
	approver, err = f.svc.GetApproverForEmployee(f.ctx, other.ID.String())
	require.NoError(t, err)
	require.NotNil(t, approver)
	assert.Equal(t, admin.ID, approver.UserID)
	assert.Equal(t, approvaldomain.SourceDefaultPrimary, approver.Source)
}

func TestGetApproverForEmployee_NobodyConfigured(t *testing.T) {
	f := newFixture(t)
	employee := f.addUser(t, "employee@acme.test", "Employee")

	approver, err := f.svc.GetApproverForEmployee(f.ctx, employee.ID.String())
	require.NoError(t, err)
	assert.Nil(t, approver)
}

func TestGetApproverForEmployee_NoSelfApproval(t *testing.T) {
	f := newFixture(t)
	admin := f.addUser(t, "admin@acme.test", "Admin")
	backup := f.addUser(t, "backup@acme.test", "Backup")

	_, err := f.svc.SetDefaultApprovers(f.ctx, approvaldomain.SetDefaultApproversRequest{
		PrimaryApproverID:   admin.ID.String(),
		SecondaryApproverID: backup.ID.String(),
	})
	require.NoError(t, err)

	// The primary approver's own timesheet goes to the secondary.
	approver, err := f.svc.GetApproverForEmployee(f.ctx, admin.ID.String())
	require.NoError(t, err)
	require.NotNil(t, approver)
	assert.Equal(t, backup.ID, approver.UserID)
	assert.Equal(t, approvaldomain.SourceDefaultSecondary, approver.Source)
}

func TestGetApproverForEmployee_PrimaryWithoutSecondary(t *testing.T) {
	f := newFixture(t)
	admin := f.addUser(t, "admin@acme.test", "Admin")

	_, err := f.svc.SetDefaultApprovers(f.ctx, approvaldomain.SetDefaultApproversRequest{
		PrimaryApproverID: admin.ID.String(),
	})
	require.NoError(t, err)

	// No secondary to divert to: a configured default always yields an
	// approver, even for the primary's own timesheet.
	approver, err := f.svc.GetApproverForEmployee(f.ctx, admin.ID.String())
	require.NoError(t, err)
	require.NotNil(t, approver)
	assert.Equal(t, admin.ID, approver.UserID)
	assert.Equal(t, approvaldomain.SourceDefaultPrimary, approver.Source)
}

func TestGetEscalationTarget_DisabledReturnsNil(t *testing.T) {
	f := newFixture(t)
	admin := f.addUser(t, "admin@acme.test", "Admin")
	target := f.addUser(t, "cfo@acme.test", "CFO")
	employee := f.addUser(t, "employee@acme.test", "Employee")

	_, err := f.svc.SetDefaultApprovers(f.ctx, approvaldomain.SetDefaultApproversRequest{
		PrimaryApproverID: admin.ID.String(),
	})
	require.NoError(t, err)

	// An explicit target does not matter while escalation is off.
	_, err = f.svc.SetEscalationRules(f.ctx, approvaldomain.SetEscalationRulesRequest{
		Enabled:          false,
		EscalateToUserID: target.ID.String(),
		AfterDays:        3,
	})
	require.NoError(t, err)

	got, err := f.svc.GetEscalationTarget(f.ctx, employee.ID.String())
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestGetEscalationTarget_ExplicitTarget(t *testing.T) {
	f := newFixture(t)
	admin := f.addUser(t, "admin@acme.test", "Admin")
	target := f.addUser(t, "cfo@acme.test", "CFO")
	employee := f.addUser(t, "employee@acme.test", "Employee")

	_, err := f.svc.SetDefaultApprovers(f.ctx, approvaldomain.SetDefaultApproversRequest{
		PrimaryApproverID: admin.ID.String(),
	})
	require.NoError(t, err)
	_, err = f.svc.SetEscalationRules(f.ctx, approvaldomain.SetEscalationRulesRequest{
		Enabled:          true,
		EscalateToUserID: target.ID.String(),
		AfterDays:        3,
	})
	require.NoError(t, err)

	got, err := f.svc.GetEscalationTarget(f.ctx, employee.ID.String())
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, target.ID, got.UserID)
	assert.Equal(t, "CFO", got.Name)
	assert.Equal(t, approvaldomain.SourceEscalation, got.Source)
}

func TestGetEscalationTarget_ManagersManager(t *testing.T) {
	f := newFixture(t)
	admin := f.addUser(t, "admin@acme.test", "Admin")
	director := f.addUser(t, "director@acme.test", "Director")
	manager := f.addUser(t, "manager@acme.test", "Manager")
	employee := f.addUser(t, "employee@acme.test", "Employee")

	_, err := f.svc.SetDefaultApprovers(f.ctx, approvaldomain.SetDefaultApproversRequest{
		PrimaryApproverID: admin.ID.String(),
	})
	require.NoError(t, err)
	_, err = f.svc.SetEscalationRules(f.ctx, approvaldomain.SetEscalationRulesRequest{
		Enabled:   true,
		AfterDays: 5,
	})
	require.NoError(t, err)

	_, err = f.svc.SetEmployeeManager(f.ctx, approvaldomain.SetManagerRequest{
		EmployeeID: employee.ID.String(), ManagerID: manager.ID.String(),
	})
	require.NoError(t, err)
	_, err = f.svc.SetEmployeeManager(f.ctx, approvaldomain.SetManagerRequest{
		EmployeeID: manager.ID.String(), ManagerID: director.ID.String(),
	})
	require.NoError(t, err)

	got, err := f.svc.GetEscalationTarget(f.ctx, employee.ID.String())
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, director.ID, got.UserID)

	// Without a chain above the manager, fall back to the default approver.
	got, err = f.svc.GetEscalationTarget(f.ctx, manager.ID.String())
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, admin.ID, got.UserID)
}

func TestSetEmployeeManager_Validation(t *testing.T) {
	f := newFixture(t)
	employee := f.addUser(t, "employee@acme.test", "Employee")

	_, err := f.svc.SetEmployeeManager(f.ctx, approvaldomain.SetManagerRequest{
		EmployeeID: employee.ID.String(),
		ManagerID:  employee.ID.String(),
	})
	assert.ErrorIs(t, err, approvaldomain.ErrSelfManager)

	node, _ := snowflake.NewNode(2)
	_, err = f.svc.SetEmployeeManager(f.ctx, approvaldomain.SetManagerRequest{
		EmployeeID:   employee.ID.String(),
		ManagerID:    node.Generate().String(),
		ManagerName:  "Ghost",
		ManagerEmail: "not-an-email",
	})
	assert.ErrorIs(t, err, approvaldomain.ErrInvalidEmail)

	// A manager unknown to the directory cannot be enriched.
	_, err = f.svc.SetEmployeeManager(f.ctx, approvaldomain.SetManagerRequest{
		EmployeeID: employee.ID.String(),
		ManagerID:  node.Generate().String(),
	})
	assert.ErrorIs(t, err, approvaldomain.ErrUnknownUser)
}

func TestImportHierarchy_BadRowDoesNotRollBack(t *testing.T) {
	f := newFixture(t)
	manager := f.addUser(t, "manager@acme.test", "Manager")
	alice := f.addUser(t, "alice@acme.test", "Alice")
	bob := f.addUser(t, "bob@acme.test", "Bob")

	result, err := f.svc.ImportHierarchy(f.ctx, approvaldomain.ImportHierarchyRequest{
		Entries: []approvaldomain.SetManagerRequest{
			{EmployeeID: alice.ID.String(), ManagerID: manager.ID.String()},
			{EmployeeID: bob.ID.String(), ManagerID: bob.ID.String()}, // self-managed
			{EmployeeID: manager.ID.String(), ManagerID: alice.ID.String()},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Imported)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, 1, result.Failed[0].Index)
	assert.Equal(t, bob.ID.String(), result.Failed[0].EmployeeID)

	mappings, err := f.svc.ListMappings(f.ctx)
	require.NoError(t, err)
	assert.Len(t, mappings, 2)
}

func TestListDirectReports(t *testing.T) {
	f := newFixture(t)
	manager := f.addUser(t, "manager@acme.test", "Manager")
	alice := f.addUser(t, "alice@acme.test", "Alice")
	bob := f.addUser(t, "bob@acme.test", "Bob")
	outsider := f.addUser(t, "outsider@acme.test", "Outsider")

	for _, employee := range []string{alice.ID.String(), bob.ID.String()} {
		_, err := f.svc.SetEmployeeManager(f.ctx, approvaldomain.SetManagerRequest{
			EmployeeID: employee, ManagerID: manager.ID.String(),
		})
		require.NoError(t, err)
	}
	_, err := f.svc.SetEmployeeManager(f.ctx, approvaldomain.SetManagerRequest{
		EmployeeID: outsider.ID.String(), ManagerID: alice.ID.String(),
	})
	require.NoError(t, err)

	reports, err := f.svc.ListDirectReports(f.ctx, manager.ID.String())
	require.NoError(t, err)
	require.Len(t, reports, 2)
	for _, report := range reports {
		assert.Equal(t, manager.ID, report.ManagerID)
	}

	_, err = f.svc.ListDirectReports(f.ctx, "not-an-id")
	assert.ErrorIs(t, err, approvaldomain.ErrInvalidManager)
}

func TestSetEscalationRules_RequiresConfig(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.SetEscalationRules(f.ctx, approvaldomain.SetEscalationRulesRequest{
		Enabled: true, AfterDays: 3,
	})
	assert.ErrorIs(t, err, approvaldomain.ErrNotFound)

	admin := f.addUser(t, "admin@acme.test", "Admin")
	_, err = f.svc.SetDefaultApprovers(f.ctx, approvaldomain.SetDefaultApproversRequest{
		PrimaryApproverID: admin.ID.String(),
	})
	require.NoError(t, err)

	_, err = f.svc.SetEscalationRules(f.ctx, approvaldomain.SetEscalationRulesRequest{
		Enabled: true, AfterDays: 31,
	})
	assert.ErrorIs(t, err, approvaldomain.ErrInvalidEscalationDays)
}
