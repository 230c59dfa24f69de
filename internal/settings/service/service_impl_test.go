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
	settingsdomain "github.com/tallyhq/tally/internal/settings/domain"
	settingsrepository "github.com/tallyhq/tally/internal/settings/repository"
	"github.com/tallyhq/tally/pkg/tenantctx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newService(t *testing.T) (settingsdomain.Service, context.Context, *clock.FakeClock) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&settingsdomain.TimesheetSettings{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	clk := clock.NewFakeClock(time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC))

	svc := New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clk,
		Repo:  settingsrepository.Provide(),
	})

	ctx := tenantctx.WithTenantID(context.Background(), node.Generate())
	return svc, ctx, clk
}

func TestGet_LazilyCreatesDefaults(t *testing.T) {
	svc, ctx, _ := newService(t)

	resp, err := svc.Get(ctx)
	require.NoError(t, err)

	assert.Equal(t, settingsdomain.Weekly, resp.Period.Type)
	assert.True(t, resp.OvertimeRules.Enabled)
	assert.Equal(t, 8.0, resp.OvertimeRules.DailyThreshold)
	assert.Equal(t, 40.0, resp.OvertimeRules.WeeklyThreshold)
	assert.Equal(t, 1.5, resp.OvertimeRules.Multiplier)

	// A second read returns the persisted row, not a fresh aggregate.
	again, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, resp.ID, again.ID)
}

func TestUpdate_PartialMergePreservesSiblings(t *testing.T) {
	svc, ctx, _ := newService(t)

	threshold := 10.0
	resp, err := svc.UpdateOvertimeRules(ctx, settingsdomain.UpdateOvertimeRulesRequest{
		DailyThreshold: &threshold,
	})
	require.NoError(t, err)

	assert.Equal(t, 10.0, resp.OvertimeRules.DailyThreshold)
	assert.Equal(t, 40.0, resp.OvertimeRules.WeeklyThreshold)
	assert.Equal(t, 1.5, resp.OvertimeRules.Multiplier)
	assert.True(t, resp.OvertimeRules.Enabled)
}

func TestUpdate_InvalidValueLeavesAggregateUntouched(t *testing.T) {
	svc, ctx, _ := newService(t)

	bad := 99.0
	good := 12.0
	_, err := svc.UpdateOvertimeRules(ctx, settingsdomain.UpdateOvertimeRulesRequest{
		DailyThreshold: &bad,
		Multiplier:     &good, // also invalid, must be reported together
	})
	require.Error(t, err)

	var verrs *settingsdomain.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Len(t, verrs.Errors, 2)

	resp, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 8.0, resp.OvertimeRules.DailyThreshold)
	assert.Equal(t, 1.5, resp.OvertimeRules.Multiplier)
}

func TestUpdate_BumpsVersion(t *testing.T) {
	svc, ctx, _ := newService(t)

	day := 1
	first, err := svc.UpdatePeriod(ctx, settingsdomain.UpdatePeriodRequest{WeekStartDay: &day})
	require.NoError(t, err)

	enabled := false
	second, err := svc.UpdateOvertimeRules(ctx, settingsdomain.UpdateOvertimeRulesRequest{Enabled: &enabled})
	require.NoError(t, err)

	assert.Equal(t, first.Version+1, second.Version)
}

func TestReset_RestoresDefaults(t *testing.T) {
	svc, ctx, _ := newService(t)

	day := 3
	_, err := svc.UpdatePeriod(ctx, settingsdomain.UpdatePeriodRequest{WeekStartDay: &day})
	require.NoError(t, err)

	resp, err := svc.Reset(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Period.WeekStartDay)
	assert.Equal(t, int32(1), resp.Version)
}

func TestUpdate_StampsUpdatedAtFromClock(t *testing.T) {
	svc, ctx, clk := newService(t)

	first, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, clk.Now().UTC(), first.UpdatedAt)

	clk.Advance(48 * time.Hour)
	day := 2
	updated, err := svc.UpdatePeriod(ctx, settingsdomain.UpdatePeriodRequest{WeekStartDay: &day})
	require.NoError(t, err)
	assert.Equal(t, clk.Now().UTC(), updated.UpdatedAt)

	clk.Advance(time.Hour)
	reset, err := svc.Reset(ctx)
	require.NoError(t, err)
	assert.Equal(t, clk.Now().UTC(), reset.CreatedAt)
}

func TestService_RequiresTenant(t *testing.T) {
	svc, _, _ := newService(t)

	_, err := svc.Get(context.Background())
	assert.ErrorIs(t, err, settingsdomain.ErrInvalidTenant)
}
