package overtime

import (
	"testing"

	settingsdomain "github.com/tallyhq/tally/internal/settings/domain"
	"github.com/stretchr/testify/assert"
)

func TestCompute_SplitsDailyAndWeekly(t *testing.T) {
	rules := settingsdomain.OvertimeRules{
		Enabled:         true,
		DailyThreshold:  8,
		WeeklyThreshold: 40,
		Multiplier:      1.5,
	}

	result := Compute(10, 45, rules)

	assert.Equal(t, 2.0, result.DailyOvertime)
	assert.Equal(t, 5.0, result.WeeklyOvertime)
	assert.Equal(t, 5.0, result.TotalOvertime)
}

func TestCompute_TotalIsMaxNotSum(t *testing.T) {
	rules := settingsdomain.OvertimeRules{
		Enabled:         true,
		DailyThreshold:  8,
		WeeklyThreshold: 40,
		Multiplier:      1.5,
	}

	result := Compute(12, 42, rules)

	assert.Equal(t, 4.0, result.DailyOvertime)
	assert.Equal(t, 2.0, result.WeeklyOvertime)
	assert.Equal(t, 4.0, result.TotalOvertime)
}

func TestCompute_UnderThresholds(t *testing.T) {
	rules := settingsdomain.OvertimeRules{
		Enabled:         true,
		DailyThreshold:  8,
		WeeklyThreshold: 40,
		Multiplier:      1.5,
	}

	result := Compute(7.5, 38, rules)

	assert.Zero(t, result.DailyOvertime)
	assert.Zero(t, result.WeeklyOvertime)
	assert.Zero(t, result.TotalOvertime)
}

func TestCompute_DisabledRulesYieldZero(t *testing.T) {
	rules := settingsdomain.OvertimeRules{
		Enabled:         false,
		DailyThreshold:  8,
		WeeklyThreshold: 40,
		Multiplier:      1.5,
	}

	result := Compute(16, 80, rules)

	assert.Zero(t, result.DailyOvertime)
	assert.Zero(t, result.WeeklyOvertime)
	assert.Zero(t, result.TotalOvertime)
}
