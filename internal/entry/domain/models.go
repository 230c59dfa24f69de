package domain

import (
	"fmt"
	"strings"
	"time"

	settingsdomain "github.com/tallyhq/tally/internal/settings/domain"
)

// Entry is a candidate time entry. Entries are validated against the tenant's
// rules before the timesheet system of record accepts them.
type Entry struct {
	EmployeeID      string    `json:"employee_id"`
	ProjectID       string    `json:"project_id"`
	ActivityCodeID  string    `json:"activity_code_id"`
	Date            time.Time `json:"date"`
	DurationMinutes int       `json:"duration_minutes"`
	Description     string    `json:"description"`
	Billable        bool      `json:"billable"`
}

// Hours converts the stored minute duration.
func (e Entry) Hours() float64 {
	return float64(e.DurationMinutes) / 60
}

// Validate checks one entry against the tenant rules and reports every
// violation at once. The description checks only apply when descriptions are
// required, and they are mutually exclusive: an empty description is
// "required", a present but short one is "too_short".
func Validate(entry Entry, rules settingsdomain.ValidationRules, now time.Time) settingsdomain.ValidationErrors {
	verr := settingsdomain.ValidationErrors{}

	if entry.DurationMinutes <= 0 {
		verr.Add("duration_minutes", "out_of_range", "duration must be positive")
	} else if entry.Hours() > rules.MaxDailyHours {
		verr.Add("duration_minutes", "exceeds_daily_max",
			fmt.Sprintf("%.2f hours exceeds the daily maximum of %.2f", entry.Hours(), rules.MaxDailyHours))
	}

	description := strings.TrimSpace(entry.Description)
	if rules.RequireDescription && description == "" {
		verr.Add("description", "required", "a description is required")
	} else if rules.RequireDescription && len(description) < rules.MinDescriptionLength {
		verr.Add("description", "too_short",
			fmt.Sprintf("description must be at least %d characters", rules.MinDescriptionLength))
	}

	if entry.Billable && rules.RequireProjectForBillable && entry.ProjectID == "" {
		verr.Add("project_id", "required", "billable entries must reference a project")
	}
	if rules.RequireActivityCode && entry.ActivityCodeID == "" {
		verr.Add("activity_code_id", "required", "an activity code is required")
	}

	// Dates compare at day granularity: an entry later today is not "future".
	entryDay := midnight(entry.Date)
	today := midnight(now)
	if entryDay.After(today) {
		if !rules.AllowFutureEntries {
			verr.Add("date", "future_not_allowed", "future entries are not allowed")
		} else if entryDay.After(today.AddDate(0, 0, rules.MaxFutureDays)) {
			verr.Add("date", "too_far_ahead",
				fmt.Sprintf("entries may be at most %d days ahead", rules.MaxFutureDays))
		}
	}

	if !rules.AllowWeekendWork {
		switch entry.Date.Weekday() {
		case time.Saturday, time.Sunday:
			verr.Add("date", "weekend_not_allowed", "weekend entries are not allowed")
		}
	}

	return verr
}

func midnight(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
