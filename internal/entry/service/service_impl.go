package service

import (
	"context"

	"github.com/tallyhq/tally/internal/clock"
	entrydomain "github.com/tallyhq/tally/internal/entry/domain"
	"github.com/tallyhq/tally/internal/overtime"
	ratedomain "github.com/tallyhq/tally/internal/rate/domain"
	settingsdomain "github.com/tallyhq/tally/internal/settings/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log      *zap.Logger
	Clock    clock.Clock
	Settings settingsdomain.Service
	Rates    ratedomain.Service
}

type Service struct {
	log      *zap.Logger
	clock    clock.Clock
	settings settingsdomain.Service
	rates    ratedomain.Service
}

func New(p Params) entrydomain.Service {
	return &Service{
		log:      p.Log.Named("entry.service"),
		clock:    p.Clock,
		settings: p.Settings,
		rates:    p.Rates,
	}
}

func (s *Service) ValidateEntry(ctx context.Context, entry entrydomain.Entry) (*entrydomain.ValidationResult, error) {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}

	violations := entrydomain.Validate(entry, settings.ValidationRules, s.clock.Now())
	return &entrydomain.ValidationResult{
		Valid:      len(violations.Errors) == 0,
		Violations: violations,
	}, nil
}

func (s *Service) EstimateCost(ctx context.Context, entry entrydomain.Entry) (*entrydomain.CostEstimate, error) {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}

	violations := entrydomain.Validate(entry, settings.ValidationRules, s.clock.Now())
	if len(violations.Errors) > 0 {
		return nil, &violations
	}

	// A lone entry only sees the daily threshold; weekly overtime needs the
	// whole timesheet and is settled there.
	hours := entry.Hours()
	split := overtime.Compute(hours, 0, settings.OvertimeRules)
	regular := hours - split.TotalOvertime

	date := entry.Date
	cost, err := s.rates.CalculateEntryCost(ctx, ratedomain.EntryCostRequest{
		EmployeeID:     entry.EmployeeID,
		ProjectID:      entry.ProjectID,
		ActivityCodeID: entry.ActivityCodeID,
		Date:           &date,
		RegularHours:   regular,
		OvertimeHours:  split.TotalOvertime,
	})
	if err != nil {
		return nil, err
	}

	return &entrydomain.CostEstimate{
		Hours:         hours,
		RegularHours:  regular,
		OvertimeHours: split.TotalOvertime,
		Cost:          cost,
	}, nil
}
