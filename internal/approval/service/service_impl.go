package service

import (
	"context"
	"regexp"
	"strings"

	"github.com/bwmarrin/snowflake"
	approvaldomain "github.com/tallyhq/tally/internal/approval/domain"
	"github.com/tallyhq/tally/internal/clock"
	directorydomain "github.com/tallyhq/tally/internal/directory/domain"
	settingsdomain "github.com/tallyhq/tally/internal/settings/domain"
	"github.com/tallyhq/tally/pkg/tenantctx"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Clock     clock.Clock
	Repo      approvaldomain.Repository
	Directory directorydomain.Service
	Settings  settingsdomain.Service
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	clock     clock.Clock
	repo      approvaldomain.Repository
	directory directorydomain.Service
	settings  settingsdomain.Service
}

func New(p Params) approvaldomain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("approval.service"),
		genID:     p.GenID,
		clock:     p.Clock,
		repo:      p.Repo,
		directory: p.Directory,
		settings:  p.Settings,
	}
}

func (s *Service) GetConfig(ctx context.Context) (*approvaldomain.ConfigResponse, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return nil, approvaldomain.ErrInvalidTenant
	}

	config, err := s.repo.FindConfig(ctx, s.db, tenantID)
	if err != nil {
		return nil, err
	}
	if config == nil {
		return nil, approvaldomain.ErrNotFound
	}
	return toConfigResponse(config), nil
}

func (s *Service) SetDefaultApprovers(ctx context.Context, req approvaldomain.SetDefaultApproversRequest) (*approvaldomain.ConfigResponse, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return nil, approvaldomain.ErrInvalidTenant
	}

	primary, err := s.lookupUser(ctx, req.PrimaryApproverID)
	if err != nil {
		return nil, err
	}

	config, err := s.repo.FindConfig(ctx, s.db, tenantID)
	if err != nil {
		return nil, err
	}
	if config == nil {
		config = &approvaldomain.ApprovalConfig{
			ID:        s.genID.Generate(),
			TenantID:  tenantID,
			CreatedAt: s.clock.Now(),
		}
	}

	config.PrimaryApproverID = primary.ID
	config.PrimaryApproverName = primary.Name()
	config.PrimaryApproverEmail = primary.Email
	config.SecondaryApproverID = nil
	config.SecondaryApproverName = nil
	config.SecondaryApproverEmail = nil

	if req.SecondaryApproverID != "" {
		secondary, err := s.lookupUser(ctx, req.SecondaryApproverID)
		if err != nil {
			return nil, err
		}
		name := secondary.Name()
		config.SecondaryApproverID = &secondary.ID
		config.SecondaryApproverName = &name
		config.SecondaryApproverEmail = &secondary.Email
	}

	config.UpdatedAt = s.clock.Now()
	if err := s.repo.SaveConfig(ctx, s.db, config); err != nil {
		return nil, err
	}

	s.log.Info("default approvers updated",
		zap.String("tenant_id", tenantID.String()),
		zap.String("primary_approver_id", primary.ID.String()),
	)
	return toConfigResponse(config), nil
}

func (s *Service) SetEscalationRules(ctx context.Context, req approvaldomain.SetEscalationRulesRequest) (*approvaldomain.ConfigResponse, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return nil, approvaldomain.ErrInvalidTenant
	}
	if req.AfterDays < 0 || req.AfterDays > 30 {
		return nil, approvaldomain.ErrInvalidEscalationDays
	}

	config, err := s.repo.FindConfig(ctx, s.db, tenantID)
	if err != nil {
		return nil, err
	}
	if config == nil {
		// Escalation hangs off the default chain; approvers come first.
		return nil, approvaldomain.ErrNotFound
	}

	config.EscalationEnabled = req.Enabled
	config.EscalationAfterDays = req.AfterDays
	config.EscalateToUserID = nil
	if req.EscalateToUserID != "" {
		target, err := s.lookupUser(ctx, req.EscalateToUserID)
		if err != nil {
			return nil, err
		}
		config.EscalateToUserID = &target.ID
	}

	config.UpdatedAt = s.clock.Now()
	if err := s.repo.SaveConfig(ctx, s.db, config); err != nil {
		return nil, err
	}
	return toConfigResponse(config), nil
}

func (s *Service) SetEmployeeManager(ctx context.Context, req approvaldomain.SetManagerRequest) (*approvaldomain.MappingResponse, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return nil, approvaldomain.ErrInvalidTenant
	}

	employeeID, err := snowflake.ParseString(req.EmployeeID)
	if err != nil || employeeID == 0 {
		return nil, approvaldomain.ErrInvalidEmployee
	}
	managerID, err := snowflake.ParseString(req.ManagerID)
	if err != nil || managerID == 0 {
		return nil, approvaldomain.ErrInvalidManager
	}
	if employeeID == managerID {
		return nil, approvaldomain.ErrSelfManager
	}

	name := strings.TrimSpace(req.ManagerName)
	email := strings.ToLower(strings.TrimSpace(req.ManagerEmail))
	if name == "" || email == "" {
		// Fill the gaps from the directory when the caller only sends IDs.
		user, derr := s.directory.GetUserByID(ctx, req.ManagerID)
		if derr != nil {
			return nil, derr
		}
		if user == nil {
			return nil, approvaldomain.ErrUnknownUser
		}
		if name == "" {
			name = user.Name()
		}
		if email == "" {
			email = user.Email
		}
	}
	if !emailPattern.MatchString(email) {
		return nil, approvaldomain.ErrInvalidEmail
	}

	now := s.clock.Now()
	mapping := approvaldomain.ManagerMapping{
		ID:           s.genID.Generate(),
		TenantID:     tenantID,
		EmployeeID:   employeeID,
		ManagerID:    managerID,
		ManagerName:  name,
		ManagerEmail: email,
		Department:   req.Department,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.UpsertMapping(ctx, s.db, &mapping); err != nil {
		return nil, err
	}
	return toMappingResponse(&mapping), nil
}

func (s *Service) RemoveEmployeeManager(ctx context.Context, employeeID string) error {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return approvaldomain.ErrInvalidTenant
	}
	id, err := snowflake.ParseString(employeeID)
	if err != nil || id == 0 {
		return approvaldomain.ErrInvalidEmployee
	}
	return s.repo.DeleteMapping(ctx, s.db, tenantID, id)
}

// ImportHierarchy applies rows in order. A bad row is reported and skipped;
// rows already applied stay applied.
func (s *Service) ImportHierarchy(ctx context.Context, req approvaldomain.ImportHierarchyRequest) (*approvaldomain.ImportResult, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return nil, approvaldomain.ErrInvalidTenant
	}

	result := &approvaldomain.ImportResult{}
	for i, entry := range req.Entries {
		if _, err := s.SetEmployeeManager(ctx, entry); err != nil {
			result.Failed = append(result.Failed, approvaldomain.ImportFailure{
				Index:      i,
				EmployeeID: entry.EmployeeID,
				Reason:     err.Error(),
			})
			continue
		}
		result.Imported++
	}

	if len(result.Failed) > 0 {
		s.log.Warn("hierarchy import finished with failures",
			zap.String("tenant_id", tenantID.String()),
			zap.Int("imported", result.Imported),
			zap.Int("failed", len(result.Failed)),
		)
	}
	return result, nil
}

func (s *Service) ListMappings(ctx context.Context) ([]approvaldomain.MappingResponse, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return nil, approvaldomain.ErrInvalidTenant
	}

	mappings, err := s.repo.ListMappings(ctx, s.db, tenantID)
	if err != nil {
		return nil, err
	}
	out := make([]approvaldomain.MappingResponse, 0, len(mappings))
	for i := range mappings {
		out = append(out, *toMappingResponse(&mappings[i]))
	}
	return out, nil
}

// ListDirectReports returns the hierarchy entries naming managerID as manager.
func (s *Service) ListDirectReports(ctx context.Context, managerID string) ([]approvaldomain.MappingResponse, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return nil, approvaldomain.ErrInvalidTenant
	}
	id, err := snowflake.ParseString(managerID)
	if err != nil || id == 0 {
		return nil, approvaldomain.ErrInvalidManager
	}

	reports, err := s.repo.ListReports(ctx, s.db, tenantID, id)
	if err != nil {
		return nil, err
	}
	out := make([]approvaldomain.MappingResponse, 0, len(reports))
	for i := range reports {
		out = append(out, *toMappingResponse(&reports[i]))
	}
	return out, nil
}

func (s *Service) GetApproverForEmployee(ctx context.Context, employeeID string) (*approvaldomain.Approver, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return nil, approvaldomain.ErrInvalidTenant
	}
	id, err := snowflake.ParseString(employeeID)
	if err != nil || id == 0 {
		return nil, approvaldomain.ErrInvalidEmployee
	}

	allowSelf, err := s.allowSelfApproval(ctx)
	if err != nil {
		return nil, err
	}

	mapping, err := s.repo.FindMapping(ctx, s.db, tenantID, id)
	if err != nil {
		return nil, err
	}
	if mapping != nil {
		return &approvaldomain.Approver{
			UserID: mapping.ManagerID,
			Name:   mapping.ManagerName,
			Email:  mapping.ManagerEmail,
			Source: approvaldomain.SourceManager,
		}, nil
	}

	config, err := s.repo.FindConfig(ctx, s.db, tenantID)
	if err != nil {
		return nil, err
	}
	if config == nil {
		return nil, nil
	}

	// The primary approver's own timesheet goes to the secondary when the
	// tenant forbids self-approval and a distinct secondary exists. With no
	// secondary the primary still applies: a configured default always
	// yields an approver.
	if config.PrimaryApproverID == id && !allowSelf &&
		config.SecondaryApproverID != nil && *config.SecondaryApproverID != id {
		approver := &approvaldomain.Approver{
			UserID: *config.SecondaryApproverID,
			Source: approvaldomain.SourceDefaultSecondary,
		}
		if config.SecondaryApproverName != nil {
			approver.Name = *config.SecondaryApproverName
		}
		if config.SecondaryApproverEmail != nil {
			approver.Email = *config.SecondaryApproverEmail
		}
		return approver, nil
	}

	return &approvaldomain.Approver{
		UserID: config.PrimaryApproverID,
		Name:   config.PrimaryApproverName,
		Email:  config.PrimaryApproverEmail,
		Source: approvaldomain.SourceDefaultPrimary,
	}, nil
}

func (s *Service) GetEscalationTarget(ctx context.Context, employeeID string) (*approvaldomain.Approver, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return nil, approvaldomain.ErrInvalidTenant
	}
	id, err := snowflake.ParseString(employeeID)
	if err != nil || id == 0 {
		return nil, approvaldomain.ErrInvalidEmployee
	}

	config, err := s.repo.FindConfig(ctx, s.db, tenantID)
	if err != nil {
		return nil, err
	}
	// Escalation off means nobody is a target, even an explicit one.
	if config == nil || !config.EscalationEnabled {
		return nil, nil
	}

	if config.EscalateToUserID != nil {
		approver := &approvaldomain.Approver{
			UserID: *config.EscalateToUserID,
			Source: approvaldomain.SourceEscalation,
		}
		if user, derr := s.directory.GetUserByID(ctx, config.EscalateToUserID.String()); derr == nil && user != nil {
			approver.Name = user.Name()
			approver.Email = user.Email
		}
		return approver, nil
	}

	// No explicit target: escalate to the manager's manager.
	mapping, err := s.repo.FindMapping(ctx, s.db, tenantID, id)
	if err != nil {
		return nil, err
	}
	if mapping != nil {
		grand, err := s.repo.FindMapping(ctx, s.db, tenantID, mapping.ManagerID)
		if err != nil {
			return nil, err
		}
		if grand != nil {
			return &approvaldomain.Approver{
				UserID: grand.ManagerID,
				Name:   grand.ManagerName,
				Email:  grand.ManagerEmail,
				Source: approvaldomain.SourceEscalation,
			}, nil
		}
	}

	return &approvaldomain.Approver{
		UserID: config.PrimaryApproverID,
		Name:   config.PrimaryApproverName,
		Email:  config.PrimaryApproverEmail,
		Source: approvaldomain.SourceEscalation,
	}, nil
}

func (s *Service) IsApprovalRequired(ctx context.Context, req approvaldomain.IsApprovalRequiredRequest) (bool, error) {
	if _, ok := tenantctx.TenantIDFromContext(ctx); !ok {
		return false, approvaldomain.ErrInvalidTenant
	}

	settings, err := s.settings.Get(ctx)
	if err != nil {
		return false, err
	}

	workflow := settings.ApprovalWorkflow
	if !workflow.Enabled {
		return false, nil
	}
	if workflow.RequireApprovalForAll {
		return true, nil
	}
	return req.TotalHours > workflow.AutoApproveThreshold, nil
}

func (s *Service) allowSelfApproval(ctx context.Context) (bool, error) {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return false, err
	}
	return settings.Security.AllowSelfApproval, nil
}

func (s *Service) lookupUser(ctx context.Context, rawID string) (*directorydomain.User, error) {
	id, err := snowflake.ParseString(rawID)
	if err != nil || id == 0 {
		return nil, approvaldomain.ErrInvalidApprover
	}
	resp, err := s.directory.GetUserByID(ctx, rawID)
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, approvaldomain.ErrUnknownUser
	}
	return &directorydomain.User{
		ID:          resp.ID,
		TenantID:    resp.TenantID,
		Email:       resp.Email,
		FirstName:   resp.FirstName,
		LastName:    resp.LastName,
		DisplayName: resp.DisplayName,
	}, nil
}

func toConfigResponse(c *approvaldomain.ApprovalConfig) *approvaldomain.ConfigResponse {
	return &approvaldomain.ConfigResponse{
		ID:                     c.ID,
		TenantID:               c.TenantID,
		PrimaryApproverID:      c.PrimaryApproverID,
		PrimaryApproverName:    c.PrimaryApproverName,
		PrimaryApproverEmail:   c.PrimaryApproverEmail,
		SecondaryApproverID:    c.SecondaryApproverID,
		SecondaryApproverName:  c.SecondaryApproverName,
		SecondaryApproverEmail: c.SecondaryApproverEmail,
		EscalationEnabled:      c.EscalationEnabled,
		EscalateToUserID:       c.EscalateToUserID,
		EscalationAfterDays:    c.EscalationAfterDays,
		UpdatedAt:              c.UpdatedAt,
	}
}

func toMappingResponse(m *approvaldomain.ManagerMapping) *approvaldomain.MappingResponse {
	return &approvaldomain.MappingResponse{
		ID:           m.ID,
		TenantID:     m.TenantID,
		EmployeeID:   m.EmployeeID,
		ManagerID:    m.ManagerID,
		ManagerName:  m.ManagerName,
		ManagerEmail: m.ManagerEmail,
		Department:   m.Department,
		UpdatedAt:    m.UpdatedAt,
	}
}
