package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_DefaultsAreValid(t *testing.T) {
	settings := Defaults(1)
	assert.NoError(t, Validate(&settings))
}

func TestValidate_AccumulatesAllViolations(t *testing.T) {
	settings := Defaults(1)
	settings.Period.WeekStartDay = 7
	settings.OvertimeRules.DailyThreshold = 30
	settings.OvertimeRules.Multiplier = 9
	settings.ApprovalWorkflow.ApprovalLevels = 6

	err := Validate(&settings)
	require.Error(t, err)

	var verrs *ValidationErrors
	require.ErrorAs(t, err, &verrs)
	require.Len(t, verrs.Errors, 4)

	fields := make([]string, 0, len(verrs.Errors))
	for _, fe := range verrs.Errors {
		fields = append(fields, fe.Field)
	}
	assert.Contains(t, fields, "period.week_start_day")
	assert.Contains(t, fields, "overtime_rules.daily_threshold")
	assert.Contains(t, fields, "overtime_rules.multiplier")
	assert.Contains(t, fields, "approval_workflow.approval_levels")
}

func TestValidate_ReminderTime(t *testing.T) {
	for _, tc := range []struct {
		value string
		ok    bool
	}{
		{"00:00", true},
		{"17:00", true},
		{"23:59", true},
		{"24:00", false},
		{"9:00", false},
		{"17:60", false},
		{"late", false},
	} {
		settings := Defaults(1)
		settings.Notifications.ReminderTime = tc.value

		err := Validate(&settings)
		if tc.ok {
			assert.NoError(t, err, tc.value)
		} else {
			assert.Error(t, err, tc.value)
		}
	}
}

func TestValidate_Bounds(t *testing.T) {
	for name, mutate := range map[string]func(*TimesheetSettings){
		"period type":          func(s *TimesheetSettings) { s.Period.Type = "fortnightly" },
		"weekly threshold":     func(s *TimesheetSettings) { s.OvertimeRules.WeeklyThreshold = 200 },
		"max daily hours":      func(s *TimesheetSettings) { s.ValidationRules.MaxDailyHours = 25 },
		"max weekly hours":     func(s *TimesheetSettings) { s.ValidationRules.MaxWeeklyHours = 169 },
		"min description":      func(s *TimesheetSettings) { s.ValidationRules.MinDescriptionLength = -1 },
		"max future days":      func(s *TimesheetSettings) { s.ValidationRules.MaxFutureDays = -1 },
		"escalation days":      func(s *TimesheetSettings) { s.ApprovalWorkflow.EscalationDays = 31 },
		"auto approve":         func(s *TimesheetSettings) { s.ApprovalWorkflow.AutoApproveThreshold = -5 },
		"reminder day":         func(s *TimesheetSettings) { s.Notifications.ReminderDays = []int{9} },
		"export format":        func(s *TimesheetSettings) { s.ExportSettings.Format = "docx" },
		"export group":         func(s *TimesheetSettings) { s.ExportSettings.GroupBy = "by_mood" },
		"lock period":          func(s *TimesheetSettings) { s.Security.LockPeriodDays = 400 },
		"zero daily threshold": func(s *TimesheetSettings) { s.OvertimeRules.DailyThreshold = 0 },
	} {
		settings := Defaults(1)
		mutate(&settings)
		assert.Error(t, Validate(&settings), name)
	}
}
