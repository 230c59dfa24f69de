package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/tallyhq/tally/internal/clock"
	permissiondomain "github.com/tallyhq/tally/internal/permission/domain"
	"github.com/tallyhq/tally/internal/ratelimit"
	settingsdomain "github.com/tallyhq/tally/internal/settings/domain"
	"github.com/tallyhq/tally/pkg/tenantctx"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const writeLockTTL = 5 * time.Second

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	Repo     permissiondomain.Repository
	Settings settingsdomain.Service
	Locker   *ratelimit.Locker `optional:"true"`
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	clock    clock.Clock
	repo     permissiondomain.Repository
	settings settingsdomain.Service
	locker   *ratelimit.Locker
}

func New(p Params) permissiondomain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("permission.service"),
		genID:    p.GenID,
		clock:    p.Clock,
		repo:     p.Repo,
		settings: p.Settings,
		locker:   p.Locker,
	}
}

func (s *Service) SetUserPermissions(ctx context.Context, req permissiondomain.SetPermissionsRequest) (*permissiondomain.Response, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return nil, permissiondomain.ErrInvalidTenant
	}
	userID, err := snowflake.ParseString(req.UserID)
	if err != nil || userID == 0 {
		return nil, permissiondomain.ErrInvalidUser
	}

	now := s.clock.Now()
	record := &permissiondomain.PermissionRecord{
		ID:             s.genID.Generate(),
		TenantID:       tenantID,
		UserID:         userID,
		ViewOwn:        req.Grants.ViewOwn,
		EditOwn:        req.Grants.EditOwn,
		ViewTeam:       req.Grants.ViewTeam,
		EditTeam:       req.Grants.EditTeam,
		Approve:        req.Grants.Approve,
		ManageRates:    req.Grants.ManageRates,
		ManageSettings: req.Grants.ManageSettings,
		Export:         req.Grants.Export,
		EffectiveFrom:  now,
		CreatedAt:      now,
	}
	if req.Restrictions != nil {
		record.Restrictions = datatypes.NewJSONType(*req.Restrictions)
	}

	unlock := s.acquireWriteLock(ctx, tenantID, userID)
	defer unlock()

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.repo.CloseActive(ctx, tx, tenantID, userID, now); err != nil {
			return err
		}
		return s.repo.Insert(ctx, tx, record)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("permissions updated",
		zap.String("tenant_id", tenantID.String()),
		zap.String("user_id", userID.String()),
	)
	return toResponse(record), nil
}

func (s *Service) GetUserPermissions(ctx context.Context, userID string) (*permissiondomain.Response, error) {
	record, id, err := s.findEffective(ctx, userID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return &permissiondomain.Response{
			UserID: id,
			Grants: permissiondomain.DefaultGrants(),
		}, nil
	}
	return toResponse(record), nil
}

func (s *Service) ListHistory(ctx context.Context, userID string) ([]permissiondomain.Response, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return nil, permissiondomain.ErrInvalidTenant
	}
	id, err := snowflake.ParseString(userID)
	if err != nil || id == 0 {
		return nil, permissiondomain.ErrInvalidUser
	}

	records, err := s.repo.ListHistory(ctx, s.db, tenantID, id)
	if err != nil {
		return nil, err
	}
	out := make([]permissiondomain.Response, 0, len(records))
	for i := range records {
		out = append(out, *toResponse(&records[i]))
	}
	return out, nil
}

func (s *Service) HasPermission(ctx context.Context, userID string, capability permissiondomain.Capability) (bool, error) {
	perms, err := s.GetUserPermissions(ctx, userID)
	if err != nil {
		return false, err
	}

	g := perms.Grants
	switch capability {
	case permissiondomain.ViewOwnTimesheet:
		return g.ViewOwn, nil
	case permissiondomain.EditOwnTimesheet:
		return g.EditOwn, nil
	case permissiondomain.ViewTeamTimesheet:
		return g.ViewTeam, nil
	case permissiondomain.EditTeamTimesheet:
		return g.EditTeam, nil
	case permissiondomain.ApproveTimesheet:
		return g.Approve, nil
	case permissiondomain.ManageRates:
		return g.ManageRates, nil
	case permissiondomain.ManageSettings:
		return g.ManageSettings, nil
	case permissiondomain.ExportTimesheet:
		return g.Export, nil
	}
	// Unknown capabilities are denied, not errors.
	return false, nil
}

func (s *Service) CanAccessProject(ctx context.Context, req permissiondomain.ProjectAccessRequest) (bool, error) {
	projectID, err := snowflake.ParseString(req.ProjectID)
	if err != nil || projectID == 0 {
		return false, permissiondomain.ErrInvalidProject
	}

	perms, err := s.GetUserPermissions(ctx, req.UserID)
	if err != nil {
		return false, err
	}
	if !perms.Grants.ViewOwn && !perms.Grants.ViewTeam {
		return false, nil
	}
	if perms.Restrictions == nil || len(perms.Restrictions.ProjectIDs) == 0 {
		return true, nil
	}
	for _, allowed := range perms.Restrictions.ProjectIDs {
		if allowed == projectID {
			return true, nil
		}
	}
	return false, nil
}

func (s *Service) CanApproveForUser(ctx context.Context, req permissiondomain.ApprovalAccessRequest) (bool, error) {
	employeeID, err := snowflake.ParseString(req.EmployeeID)
	if err != nil || employeeID == 0 {
		return false, permissiondomain.ErrInvalidUser
	}

	perms, err := s.GetUserPermissions(ctx, req.ApproverID)
	if err != nil {
		return false, err
	}
	if !perms.Grants.Approve {
		return false, nil
	}

	if perms.UserID == employeeID {
		settings, err := s.settings.Get(ctx)
		if err != nil {
			return false, err
		}
		if !settings.Security.AllowSelfApproval {
			return false, nil
		}
	}

	if perms.Restrictions != nil && len(perms.Restrictions.EmployeeIDs) > 0 {
		for _, allowed := range perms.Restrictions.EmployeeIDs {
			if allowed == employeeID {
				return true, nil
			}
		}
		return false, nil
	}
	return true, nil
}

func (s *Service) CanEditTimeEntry(ctx context.Context, req permissiondomain.EditAccessRequest) (bool, error) {
	ownerID, err := snowflake.ParseString(req.OwnerID)
	if err != nil || ownerID == 0 {
		return false, permissiondomain.ErrInvalidUser
	}

	perms, err := s.GetUserPermissions(ctx, req.UserID)
	if err != nil {
		return false, err
	}

	own := perms.UserID == ownerID
	if own && !perms.Grants.EditOwn {
		return false, nil
	}
	if !own && !perms.Grants.EditTeam {
		return false, nil
	}

	settings, err := s.settings.Get(ctx)
	if err != nil {
		return false, err
	}
	if lock := settings.Security.LockPeriodDays; lock > 0 {
		cutoff := s.clock.Now().AddDate(0, 0, -lock)
		if req.EntryDate.Before(cutoff) {
			return false, nil
		}
	}
	return true, nil
}

func (s *Service) findEffective(ctx context.Context, userID string) (*permissiondomain.PermissionRecord, snowflake.ID, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return nil, 0, permissiondomain.ErrInvalidTenant
	}
	id, err := snowflake.ParseString(userID)
	if err != nil || id == 0 {
		return nil, 0, permissiondomain.ErrInvalidUser
	}

	record, err := s.repo.FindEffective(ctx, s.db, tenantID, id, s.clock.Now())
	if err != nil {
		return nil, 0, err
	}
	return record, id, nil
}

func (s *Service) acquireWriteLock(ctx context.Context, tenantID, userID snowflake.ID) func() {
	if s.locker == nil {
		return func() {}
	}

	key := fmt.Sprintf("permission_write:%d:%d", tenantID, userID)
	token, ok, err := s.locker.TryLock(ctx, key, writeLockTTL)
	if err != nil || !ok {
		if err != nil {
			s.log.Warn("permission write lock unavailable", zap.Error(err))
		}
		return func() {}
	}
	return func() {
		if err := s.locker.Release(ctx, key, token); err != nil {
			s.log.Warn("permission write lock release failed", zap.Error(err))
		}
	}
}

func toResponse(r *permissiondomain.PermissionRecord) *permissiondomain.Response {
	resp := &permissiondomain.Response{
		RecordID:      &r.ID,
		UserID:        r.UserID,
		Grants:        r.Grants(),
		EffectiveFrom: &r.EffectiveFrom,
		EffectiveTo:   r.EffectiveTo,
	}
	restrictions := r.Restrictions.Data()
	if len(restrictions.ProjectIDs) > 0 || len(restrictions.EmployeeIDs) > 0 || restrictions.MaxHoursPerDay != nil {
		resp.Restrictions = &restrictions
	}
	return resp
}
