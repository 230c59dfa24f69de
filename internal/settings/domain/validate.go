package domain

import (
	"fmt"
	"regexp"
)

var reminderTimePattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// Validate checks every nested group and reports all violations at once.
// A violation never results in a partial apply.
func Validate(s *TimesheetSettings) error {
	verr := &ValidationErrors{}

	validatePeriod(verr, s.Period)
	validateOvertimeRules(verr, s.OvertimeRules)
	validateValidationRules(verr, s.ValidationRules)
	validateApprovalWorkflow(verr, s.ApprovalWorkflow)
	validateNotifications(verr, s.Notifications)
	validateExportSettings(verr, s.ExportSettings)
	validateSecurity(verr, s.Security)

	return verr.OrNil()
}

func validatePeriod(verr *ValidationErrors, p PeriodSettings) {
	switch p.Type {
	case Weekly, Biweekly, Semimonthly, Monthly:
	default:
		verr.Add("period.type", "invalid_enum", fmt.Sprintf("unknown period type %q", p.Type))
	}
	if p.WeekStartDay < 0 || p.WeekStartDay > 6 {
		verr.Add("period.week_start_day", "out_of_range", "week start day must be between 0 and 6")
	}
}

func validateOvertimeRules(verr *ValidationErrors, r OvertimeRules) {
	if r.DailyThreshold <= 0 || r.DailyThreshold > 24 {
		verr.Add("overtime_rules.daily_threshold", "out_of_range", "daily threshold must be in (0, 24]")
	}
	if r.WeeklyThreshold <= 0 || r.WeeklyThreshold > 168 {
		verr.Add("overtime_rules.weekly_threshold", "out_of_range", "weekly threshold must be in (0, 168]")
	}
	if r.Multiplier <= 0 || r.Multiplier > 5 {
		verr.Add("overtime_rules.multiplier", "out_of_range", "multiplier must be in (0, 5]")
	}
}

func validateValidationRules(verr *ValidationErrors, r ValidationRules) {
	if r.MaxDailyHours <= 0 || r.MaxDailyHours > 24 {
		verr.Add("validation_rules.max_daily_hours", "out_of_range", "max daily hours must be in (0, 24]")
	}
	if r.MaxWeeklyHours <= 0 || r.MaxWeeklyHours > 168 {
		verr.Add("validation_rules.max_weekly_hours", "out_of_range", "max weekly hours must be in (0, 168]")
	}
	if r.MinDescriptionLength < 0 || r.MinDescriptionLength > 1000 {
		verr.Add("validation_rules.min_description_length", "out_of_range", "min description length must be between 0 and 1000")
	}
	if r.MaxFutureDays < 0 {
		verr.Add("validation_rules.max_future_days", "out_of_range", "max future days must not be negative")
	}
}

func validateApprovalWorkflow(verr *ValidationErrors, w ApprovalWorkflow) {
	if w.ApprovalLevels < 1 || w.ApprovalLevels > 5 {
		verr.Add("approval_workflow.approval_levels", "out_of_range", "approval levels must be between 1 and 5")
	}
	if w.EscalationDays < 0 || w.EscalationDays > 30 {
		verr.Add("approval_workflow.escalation_days", "out_of_range", "escalation days must be between 0 and 30")
	}
	if w.AutoApproveThreshold < 0 {
		verr.Add("approval_workflow.auto_approve_threshold", "out_of_range", "auto approve threshold must not be negative")
	}
}

func validateNotifications(verr *ValidationErrors, n Notifications) {
	for _, day := range n.ReminderDays {
		if day < 0 || day > 6 {
			verr.Add("notifications.reminder_days", "out_of_range", fmt.Sprintf("reminder day %d must be between 0 and 6", day))
		}
	}
	if !reminderTimePattern.MatchString(n.ReminderTime) {
		verr.Add("notifications.reminder_time", "invalid_format", "reminder time must match 24-hour HH:MM")
	}
}

func validateExportSettings(verr *ValidationErrors, e ExportSettings) {
	switch e.Format {
	case CSV, XLSX, PDF, JSON:
	default:
		verr.Add("export_settings.format", "invalid_enum", fmt.Sprintf("unknown export format %q", e.Format))
	}
	switch e.GroupBy {
	case ByEmployee, ByProject, ByDate, ByActivity:
	default:
		verr.Add("export_settings.group_by", "invalid_enum", fmt.Sprintf("unknown export grouping %q", e.GroupBy))
	}
}

func validateSecurity(verr *ValidationErrors, s Security) {
	if s.LockPeriodDays < 0 || s.LockPeriodDays > 365 {
		verr.Add("security.lock_period_days", "out_of_range", "lock period days must be between 0 and 365")
	}
}
