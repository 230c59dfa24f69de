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
	entrydomain "github.com/tallyhq/tally/internal/entry/domain"
	ratedomain "github.com/tallyhq/tally/internal/rate/domain"
	raterepository "github.com/tallyhq/tally/internal/rate/repository"
	rateservice "github.com/tallyhq/tally/internal/rate/service"
	settingsdomain "github.com/tallyhq/tally/internal/settings/domain"
	settingsrepository "github.com/tallyhq/tally/internal/settings/repository"
	settingsservice "github.com/tallyhq/tally/internal/settings/service"
	"github.com/tallyhq/tally/pkg/tenantctx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	svc      entrydomain.Service
	rates    ratedomain.Service
	settings settingsdomain.Service
	node     *snowflake.Node
	clk      *clock.FakeClock
	ctx      context.Context
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&ratedomain.RateRecord{},
		&settingsdomain.TimesheetSettings{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	logger := zap.NewNop()
	clk := clock.NewFakeClock(time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC))

	settingsSvc := settingsservice.New(settingsservice.Params{
		DB:    db,
		Log:   logger,
		GenID: node,
		Clock: clk,
		Repo:  settingsrepository.Provide(),
	})
	rateSvc := rateservice.New(rateservice.Params{
		DB:       db,
		Log:      logger,
		GenID:    node,
		Clock:    clk,
		Repo:     raterepository.Provide(),
		Settings: settingsSvc,
	})

	svc := New(Params{
		Log:      logger,
		Clock:    clk,
		Settings: settingsSvc,
		Rates:    rateSvc,
	})

	ctx := tenantctx.WithTenantID(context.Background(), node.Generate())
	return &fixture{svc: svc, rates: rateSvc, settings: settingsSvc, node: node, clk: clk, ctx: ctx}
}

func TestValidateEntry(t *testing.T) {
	f := newFixture(t)

	result, err := f.svc.ValidateEntry(f.ctx, entrydomain.Entry{
		EmployeeID:      f.node.Generate().String(),
		Date:            f.clk.Now().AddDate(0, 0, -1),
		DurationMinutes: 480,
		Description:     "maintenance",
	})
	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.Empty(t, result.Violations.Errors)

	result, err = f.svc.ValidateEntry(f.ctx, entrydomain.Entry{
		EmployeeID:      f.node.Generate().String(),
		Date:            f.clk.Now().AddDate(0, 0, -1),
		DurationMinutes: 16 * 60,
		Billable:        true,
	})
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Len(t, result.Violations.Errors, 3)
}

func TestEstimateCost_SplitsOvertimeAtDailyThreshold(t *testing.T) {
	f := newFixture(t)
	employeeID := f.node.Generate().String()

	_, err := f.rates.SetDefaultRate(f.ctx, ratedomain.SetRateRequest{
		StandardRate: 20, Currency: "USD",
	})
	require.NoError(t, err)

	estimate, err := f.svc.EstimateCost(f.ctx, entrydomain.Entry{
		EmployeeID:      employeeID,
		Date:            f.clk.Now().AddDate(0, 0, -1),
		DurationMinutes: 10 * 60,
		Description:     "deployment",
	})
	require.NoError(t, err)

	assert.Equal(t, 10.0, estimate.Hours)
	assert.Equal(t, 8.0, estimate.RegularHours)
	assert.Equal(t, 2.0, estimate.OvertimeHours)
	assert.Equal(t, 160.0, estimate.Cost.RegularAmount)
	assert.Equal(t, 60.0, estimate.Cost.OvertimeAmount) // 2h at 20 * 1.5
	assert.Equal(t, 220.0, estimate.Cost.TotalAmount)
}

func TestEstimateCost_RejectsInvalidEntry(t *testing.T) {
	f := newFixture(t)

	_, err := f.rates.SetDefaultRate(f.ctx, ratedomain.SetRateRequest{
		StandardRate: 20, Currency: "USD",
	})
	require.NoError(t, err)

	_, err = f.svc.EstimateCost(f.ctx, entrydomain.Entry{
		EmployeeID:      f.node.Generate().String(),
		Date:            f.clk.Now().AddDate(0, 0, -1),
		DurationMinutes: 0,
	})
	require.Error(t, err)

	var verrs *settingsdomain.ValidationErrors
	assert.ErrorAs(t, err, &verrs)
}

func TestEstimateCost_DisabledOvertimeIsAllRegular(t *testing.T) {
	f := newFixture(t)
	employeeID := f.node.Generate().String()

	_, err := f.rates.SetDefaultRate(f.ctx, ratedomain.SetRateRequest{
		StandardRate: 20, Currency: "USD",
	})
	require.NoError(t, err)

	disabled := false
	_, err = f.settings.UpdateOvertimeRules(f.ctx, settingsdomain.UpdateOvertimeRulesRequest{
		Enabled: &disabled,
	})
	require.NoError(t, err)

	estimate, err := f.svc.EstimateCost(f.ctx, entrydomain.Entry{
		EmployeeID:      employeeID,
		Date:            f.clk.Now().AddDate(0, 0, -1),
		DurationMinutes: 10 * 60,
		Description:     "deployment",
	})
	require.NoError(t, err)

	assert.Equal(t, 10.0, estimate.RegularHours)
	assert.Equal(t, 0.0, estimate.OvertimeHours)
	assert.Equal(t, 200.0, estimate.Cost.TotalAmount)
}
