package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	settingsdomain "github.com/tallyhq/tally/internal/settings/domain"
)

var now = time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC) // a Monday

func baseRules() settingsdomain.ValidationRules {
	return settingsdomain.Defaults(1).ValidationRules
}

func codes(verr settingsdomain.ValidationErrors) []string {
	out := make([]string, 0, len(verr.Errors))
	for _, fe := range verr.Errors {
		out = append(out, fe.Code)
	}
	return out
}

func TestValidate_CleanEntry(t *testing.T) {
	entry := Entry{
		EmployeeID:      "100",
		ProjectID:       "200",
		Date:            now.AddDate(0, 0, -1),
		DurationMinutes: 480,
		Description:     "sprint work",
		Billable:        true,
	}
	verr := Validate(entry, baseRules(), now)
	assert.Empty(t, verr.Errors)
}

func TestValidate_AccumulatesAllViolations(t *testing.T) {
	rules := baseRules()
	rules.RequireActivityCode = true

	entry := Entry{
		EmployeeID:      "100",
		Date:            now.AddDate(0, 0, -1),
		DurationMinutes: 16 * 60,
		Description:     "",
		Billable:        true,
	}
	verr := Validate(entry, rules, now)

	got := codes(verr)
	assert.Contains(t, got, "exceeds_daily_max")
	assert.Contains(t, got, "required") // description, project, activity code
	assert.Len(t, verr.Errors, 4)
}

func TestValidate_DescriptionChecksAreExclusive(t *testing.T) {
	rules := baseRules()
	rules.MinDescriptionLength = 10

	// Empty: only "required", never "too_short" on top.
	entry := Entry{EmployeeID: "100", Date: now, DurationMinutes: 60}
	verr := Validate(entry, rules, now)
	assert.Equal(t, []string{"required"}, codes(verr))

	// Present but short: only "too_short".
	entry.Description = "brief"
	verr = Validate(entry, rules, now)
	assert.Equal(t, []string{"too_short"}, codes(verr))
}

func TestValidate_DescriptionOptional(t *testing.T) {
	rules := baseRules()
	rules.RequireDescription = false
	rules.MinDescriptionLength = 10

	// Length is not policed when descriptions are optional.
	entry := Entry{EmployeeID: "100", Date: now, DurationMinutes: 60, Description: "brief"}
	verr := Validate(entry, rules, now)
	assert.Empty(t, verr.Errors)

	entry.Description = ""
	verr = Validate(entry, rules, now)
	assert.Empty(t, verr.Errors)
}

func TestValidate_FutureEntries(t *testing.T) {
	rules := baseRules() // future entries disallowed by default

	entry := Entry{
		EmployeeID:      "100",
		Date:            now.AddDate(0, 0, 1),
		DurationMinutes: 60,
		Description:     "planning",
	}
	verr := Validate(entry, rules, now)
	assert.Equal(t, []string{"future_not_allowed"}, codes(verr))

	rules.AllowFutureEntries = true
	verr = Validate(entry, rules, now)
	assert.Empty(t, verr.Errors)

	entry.Date = now.AddDate(0, 0, rules.MaxFutureDays+1)
	verr = Validate(entry, rules, now)
	assert.Equal(t, []string{"too_far_ahead"}, codes(verr))
}

func TestValidate_SameDayIsNotFuture(t *testing.T) {
	rules := baseRules() // future entries disallowed by default

	// Dated later today: still today, not a future entry.
	entry := Entry{
		EmployeeID:      "100",
		Date:            now.Add(6 * time.Hour),
		DurationMinutes: 60,
		Description:     "afternoon work",
	}
	verr := Validate(entry, rules, now)
	assert.Empty(t, verr.Errors)

	// The max-future-days window is also counted in whole days.
	rules.AllowFutureEntries = true
	entry.Date = now.AddDate(0, 0, rules.MaxFutureDays).Add(6 * time.Hour)
	verr = Validate(entry, rules, now)
	assert.Empty(t, verr.Errors)
}

func TestValidate_WeekendWork(t *testing.T) {
	rules := baseRules()
	rules.AllowWeekendWork = false

	saturday := time.Date(2026, 2, 28, 10, 0, 0, 0, time.UTC)
	entry := Entry{
		EmployeeID:      "100",
		Date:            saturday,
		DurationMinutes: 120,
		Description:     "release support",
	}
	verr := Validate(entry, rules, now)
	assert.Equal(t, []string{"weekend_not_allowed"}, codes(verr))

	rules.AllowWeekendWork = true
	verr = Validate(entry, rules, now)
	assert.Empty(t, verr.Errors)
}

func TestValidate_Duration(t *testing.T) {
	entry := Entry{EmployeeID: "100", Date: now, DurationMinutes: 0, Description: "x"}
	verr := Validate(entry, baseRules(), now)
	assert.Equal(t, []string{"out_of_range"}, codes(verr))
}
