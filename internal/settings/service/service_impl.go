package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/tallyhq/tally/internal/clock"
	settingsdomain "github.com/tallyhq/tally/internal/settings/domain"
	"github.com/tallyhq/tally/pkg/tenantctx"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  settingsdomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  settingsdomain.Repository
}

func New(p Params) settingsdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("settings.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Get(ctx context.Context) (*settingsdomain.Response, error) {
	entity, err := s.loadOrCreate(ctx)
	if err != nil {
		return nil, err
	}
	return toResponse(entity), nil
}

func (s *Service) UpdatePeriod(ctx context.Context, req settingsdomain.UpdatePeriodRequest) (*settingsdomain.Response, error) {
	return s.mutate(ctx, func(entity *settingsdomain.TimesheetSettings) {
		if req.Type != nil {
			entity.Period.Type = *req.Type
		}
		if req.WeekStartDay != nil {
			entity.Period.WeekStartDay = *req.WeekStartDay
		}
	})
}

func (s *Service) UpdateOvertimeRules(ctx context.Context, req settingsdomain.UpdateOvertimeRulesRequest) (*settingsdomain.Response, error) {
	return s.mutate(ctx, func(entity *settingsdomain.TimesheetSettings) {
		if req.Enabled != nil {
			entity.OvertimeRules.Enabled = *req.Enabled
		}
		if req.DailyThreshold != nil {
			entity.OvertimeRules.DailyThreshold = *req.DailyThreshold
		}
		if req.WeeklyThreshold != nil {
			entity.OvertimeRules.WeeklyThreshold = *req.WeeklyThreshold
		}
		if req.Multiplier != nil {
			entity.OvertimeRules.Multiplier = *req.Multiplier
		}
	})
}

func (s *Service) UpdateValidationRules(ctx context.Context, req settingsdomain.UpdateValidationRulesRequest) (*settingsdomain.Response, error) {
	return s.mutate(ctx, func(entity *settingsdomain.TimesheetSettings) {
		rules := &entity.ValidationRules
		if req.MaxDailyHours != nil {
			rules.MaxDailyHours = *req.MaxDailyHours
		}
		if req.MaxWeeklyHours != nil {
			rules.MaxWeeklyHours = *req.MaxWeeklyHours
		}
		if req.RequireDescription != nil {
			rules.RequireDescription = *req.RequireDescription
		}
		if req.MinDescriptionLength != nil {
			rules.MinDescriptionLength = *req.MinDescriptionLength
		}
		if req.RequireProjectForBillable != nil {
			rules.RequireProjectForBillable = *req.RequireProjectForBillable
		}
		if req.RequireActivityCode != nil {
			rules.RequireActivityCode = *req.RequireActivityCode
		}
		if req.AllowFutureEntries != nil {
			rules.AllowFutureEntries = *req.AllowFutureEntries
		}
		if req.MaxFutureDays != nil {
			rules.MaxFutureDays = *req.MaxFutureDays
		}
		if req.AllowWeekendWork != nil {
			rules.AllowWeekendWork = *req.AllowWeekendWork
		}
	})
}

func (s *Service) UpdateApprovalWorkflow(ctx context.Context, req settingsdomain.UpdateApprovalWorkflowRequest) (*settingsdomain.Response, error) {
	return s.mutate(ctx, func(entity *settingsdomain.TimesheetSettings) {
		workflow := &entity.ApprovalWorkflow
		if req.Enabled != nil {
			workflow.Enabled = *req.Enabled
		}
		if req.RequireApprovalForAll != nil {
			workflow.RequireApprovalForAll = *req.RequireApprovalForAll
		}
		if req.AutoApproveThreshold != nil {
			workflow.AutoApproveThreshold = *req.AutoApproveThreshold
		}
		if req.ApprovalLevels != nil {
			workflow.ApprovalLevels = *req.ApprovalLevels
		}
		if req.EscalationDays != nil {
			workflow.EscalationDays = *req.EscalationDays
		}
	})
}

func (s *Service) UpdateNotifications(ctx context.Context, req settingsdomain.UpdateNotificationsRequest) (*settingsdomain.Response, error) {
	return s.mutate(ctx, func(entity *settingsdomain.TimesheetSettings) {
		n := &entity.Notifications
		if req.RemindersEnabled != nil {
			n.RemindersEnabled = *req.RemindersEnabled
		}
		if req.ReminderDays != nil {
			n.ReminderDays = *req.ReminderDays
		}
		if req.ReminderTime != nil {
			n.ReminderTime = *req.ReminderTime
		}
		if req.NotifyOnSubmission != nil {
			n.NotifyOnSubmission = *req.NotifyOnSubmission
		}
		if req.NotifyOnDecision != nil {
			n.NotifyOnDecision = *req.NotifyOnDecision
		}
	})
}

func (s *Service) UpdateExportSettings(ctx context.Context, req settingsdomain.UpdateExportSettingsRequest) (*settingsdomain.Response, error) {
	return s.mutate(ctx, func(entity *settingsdomain.TimesheetSettings) {
		if req.Format != nil {
			entity.ExportSettings.Format = *req.Format
		}
		if req.GroupBy != nil {
			entity.ExportSettings.GroupBy = *req.GroupBy
		}
		if req.IncludeInactive != nil {
			entity.ExportSettings.IncludeInactive = *req.IncludeInactive
		}
	})
}

func (s *Service) UpdateSecurity(ctx context.Context, req settingsdomain.UpdateSecurityRequest) (*settingsdomain.Response, error) {
	return s.mutate(ctx, func(entity *settingsdomain.TimesheetSettings) {
		if req.LockPeriodDays != nil {
			entity.Security.LockPeriodDays = *req.LockPeriodDays
		}
		if req.AllowSelfApproval != nil {
			entity.Security.AllowSelfApproval = *req.AllowSelfApproval
		}
		if req.AuditTrailEnabled != nil {
			entity.Security.AuditTrailEnabled = *req.AuditTrailEnabled
		}
	})
}

func (s *Service) Reset(ctx context.Context) (*settingsdomain.Response, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return nil, settingsdomain.ErrInvalidTenant
	}

	fresh := settingsdomain.Defaults(tenantID)
	fresh.ID = s.genID.Generate()
	now := s.clock.Now().UTC()
	fresh.CreatedAt = now
	fresh.UpdatedAt = now

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Delete(ctx, tx, tenantID); err != nil {
			return err
		}
		return s.repo.Insert(ctx, tx, &fresh)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("settings reset to defaults", zap.String("tenant_id", tenantID.String()))
	return toResponse(&fresh), nil
}

// mutate loads (or lazily creates) the aggregate, applies the group change,
// validates the whole aggregate and persists it with a bumped version.
func (s *Service) mutate(ctx context.Context, apply func(*settingsdomain.TimesheetSettings)) (*settingsdomain.Response, error) {
	entity, err := s.loadOrCreate(ctx)
	if err != nil {
		return nil, err
	}

	apply(entity)

	if err := settingsdomain.Validate(entity); err != nil {
		return nil, err
	}

	entity.Version++
	entity.UpdatedAt = s.clock.Now().UTC()
	if err := s.repo.Update(ctx, s.db, entity); err != nil {
		return nil, err
	}

	return toResponse(entity), nil
}

func (s *Service) loadOrCreate(ctx context.Context) (*settingsdomain.TimesheetSettings, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return nil, settingsdomain.ErrInvalidTenant
	}

	entity, err := s.repo.FindByTenant(ctx, s.db, tenantID)
	if err != nil {
		return nil, err
	}
	if entity != nil {
		return entity, nil
	}

	fresh := settingsdomain.Defaults(tenantID)
	fresh.ID = s.genID.Generate()
	now := s.clock.Now().UTC()
	fresh.CreatedAt = now
	fresh.UpdatedAt = now
	if err := s.repo.Insert(ctx, s.db, &fresh); err != nil {
		return nil, err
	}
	return &fresh, nil
}

func toResponse(s *settingsdomain.TimesheetSettings) *settingsdomain.Response {
	return &settingsdomain.Response{
		ID:               s.ID,
		TenantID:         s.TenantID,
		Version:          s.Version,
		Period:           s.Period,
		OvertimeRules:    s.OvertimeRules,
		ValidationRules:  s.ValidationRules,
		ApprovalWorkflow: s.ApprovalWorkflow,
		Notifications:    s.Notifications,
		ExportSettings:   s.ExportSettings,
		Security:         s.Security,
		CreatedAt:        s.CreatedAt,
		UpdatedAt:        s.UpdatedAt,
	}
}
