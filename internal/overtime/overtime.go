// Package overtime derives daily and weekly overtime hours from the
// thresholds configured on a tenant's overtime rules.
package overtime

import (
	settingsdomain "github.com/tallyhq/tally/internal/settings/domain"
)

// Result is the overtime split for one entry's day and week totals.
type Result struct {
	DailyOvertime  float64 `json:"daily_overtime"`
	WeeklyOvertime float64 `json:"weekly_overtime"`
	TotalOvertime  float64 `json:"total_overtime"`
}

// Compute applies the configured thresholds. Total overtime is the max of the
// daily and weekly excess, not the sum: hours that breach both thresholds at
// once must not be counted twice.
func Compute(dailyHours, weeklyHours float64, rules settingsdomain.OvertimeRules) Result {
	if !rules.Enabled {
		return Result{}
	}

	daily := max(0, dailyHours-rules.DailyThreshold)
	weekly := max(0, weeklyHours-rules.WeeklyThreshold)

	return Result{
		DailyOvertime:  daily,
		WeeklyOvertime: weekly,
		TotalOvertime:  max(daily, weekly),
	}
}
