package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/tallyhq/tally/internal/cache"
	"github.com/tallyhq/tally/internal/clock"
	"github.com/tallyhq/tally/internal/observability/metrics"
	ratedomain "github.com/tallyhq/tally/internal/rate/domain"
	"github.com/tallyhq/tally/internal/ratelimit"
	settingsdomain "github.com/tallyhq/tally/internal/settings/domain"
	"github.com/tallyhq/tally/pkg/db/pagination"
	"github.com/tallyhq/tally/pkg/tenantctx"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	writeLockTTL  = 5 * time.Second
	rulesCacheTTL = 30 * time.Second

	defaultHistoryPageSize = 50
	maxHistoryPageSize     = 250
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	Repo     ratedomain.Repository
	Settings settingsdomain.Service
	Locker   *ratelimit.Locker        `optional:"true"`
	Metrics  *metrics.ResolverMetrics `optional:"true"`
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	clock    clock.Clock
	repo     ratedomain.Repository
	settings settingsdomain.Service
	locker   *ratelimit.Locker
	metrics  *metrics.ResolverMetrics
	rules    cache.Cache[int64, settingsdomain.OvertimeRules]
}

func New(p Params) ratedomain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("rate.service"),
		genID:    p.GenID,
		clock:    p.Clock,
		repo:     p.Repo,
		settings: p.Settings,
		locker:   p.Locker,
		metrics:  p.Metrics,
		rules:    cache.NewTTLCache[int64, settingsdomain.OvertimeRules](),
	}
}

func (s *Service) SetDefaultRate(ctx context.Context, req ratedomain.SetRateRequest) (*ratedomain.Response, error) {
	return s.setRate(ctx, ratedomain.Default, req)
}

func (s *Service) SetEmployeeRate(ctx context.Context, req ratedomain.SetRateRequest) (*ratedomain.Response, error) {
	return s.setRate(ctx, ratedomain.Employee, req)
}

func (s *Service) SetProjectRate(ctx context.Context, req ratedomain.SetRateRequest) (*ratedomain.Response, error) {
	return s.setRate(ctx, ratedomain.Project, req)
}

func (s *Service) SetActivityRate(ctx context.Context, req ratedomain.SetRateRequest) (*ratedomain.Response, error) {
	return s.setRate(ctx, ratedomain.Activity, req)
}

func (s *Service) SetEmployeeProjectRate(ctx context.Context, req ratedomain.SetRateRequest) (*ratedomain.Response, error) {
	return s.setRate(ctx, ratedomain.EmployeeProject, req)
}

func (s *Service) setRate(ctx context.Context, rateType ratedomain.RateType, req ratedomain.SetRateRequest) (*ratedomain.Response, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return nil, ratedomain.ErrInvalidTenant
	}

	scope, err := buildScope(tenantID, rateType, req.EmployeeID, req.ProjectID, req.ActivityCodeID)
	if err != nil {
		return nil, err
	}

	currency, err := parseCurrency(req.Currency)
	if err != nil {
		return nil, err
	}
	if req.StandardRate <= 0 {
		return nil, ratedomain.ErrInvalidRate
	}
	if req.OvertimeRate != nil && *req.OvertimeRate <= 0 {
		return nil, ratedomain.ErrInvalidRate
	}
	if req.BillableRate != nil && *req.BillableRate <= 0 {
		return nil, ratedomain.ErrInvalidRate
	}

	now := s.clock.Now()
	effectiveFrom := now
	if req.EffectiveFrom != nil {
		effectiveFrom = req.EffectiveFrom.UTC()
	}

	record := &ratedomain.RateRecord{
		ID:             s.genID.Generate(),
		TenantID:       tenantID,
		RateType:       rateType,
		EmployeeID:     scope.EmployeeID,
		ProjectID:      scope.ProjectID,
		ActivityCodeID: scope.ActivityCodeID,
		StandardRate:   req.StandardRate,
		OvertimeRate:   req.OvertimeRate,
		BillableRate:   req.BillableRate,
		Currency:       currency,
		EffectiveFrom:  effectiveFrom,
		CreatedAt:      now,
	}

	unlock := s.acquireWriteLock(ctx, scope)
	defer unlock()

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.repo.CloseActive(ctx, tx, scope, now); err != nil {
			return err
		}
		return s.repo.Insert(ctx, tx, record)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("rate updated",
		zap.String("tenant_id", tenantID.String()),
		zap.String("rate_type", string(rateType)),
		zap.Float64("standard_rate", record.StandardRate),
	)
	return toResponse(record), nil
}

func (s *Service) GetActiveRate(ctx context.Context, req ratedomain.ScopeRequest) (*ratedomain.Response, error) {
	scope, err := s.scopeFromRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	record, err := s.repo.FindEffective(ctx, s.db, scope, s.clock.Now())
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, ratedomain.ErrNotFound
	}
	return toResponse(record), nil
}

// ListHistory pages the scope's records newest-first behind an opaque keyset
// token, so concurrent rate changes never shift page boundaries.
func (s *Service) ListHistory(ctx context.Context, req ratedomain.HistoryRequest) (*ratedomain.HistoryResponse, error) {
	scope, err := s.scopeFromRequest(ctx, req.ScopeRequest)
	if err != nil {
		return nil, err
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = defaultHistoryPageSize
	}
	if pageSize > maxHistoryPageSize {
		pageSize = maxHistoryPageSize
	}

	cursor, err := decodeHistoryToken(req.PageToken)
	if err != nil {
		return nil, err
	}

	records, err := s.repo.ListHistory(ctx, s.db, scope, cursor, pageSize+1)
	if err != nil {
		return nil, err
	}

	hasMore := len(records) > pageSize
	if hasMore {
		records = records[:pageSize]
	}

	resp := &ratedomain.HistoryResponse{
		Rates: make([]ratedomain.Response, 0, len(records)),
	}
	for i := range records {
		resp.Rates = append(resp.Rates, *toResponse(&records[i]))
	}
	if hasMore {
		last := records[len(records)-1]
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:            last.ID.String(),
			EffectiveFrom: last.EffectiveFrom.UTC().Format(time.RFC3339Nano),
		})
		if err != nil {
			return nil, err
		}
		resp.PageInfo = pagination.PageInfo{NextPageToken: token, HasMore: true}
	}
	return resp, nil
}

func decodeHistoryToken(token string) (*ratedomain.HistoryCursor, error) {
	if token == "" {
		return nil, nil
	}

	decoded, err := pagination.DecodeCursor(token)
	if err != nil {
		return nil, ratedomain.ErrInvalidPageToken
	}
	id, err := snowflake.ParseString(decoded.ID)
	if err != nil {
		return nil, ratedomain.ErrInvalidPageToken
	}
	from, err := time.Parse(time.RFC3339Nano, decoded.EffectiveFrom)
	if err != nil {
		return nil, ratedomain.ErrInvalidPageToken
	}
	return &ratedomain.HistoryCursor{ID: id, EffectiveFrom: from}, nil
}

// Resolve walks the priority chain, first match wins:
// employee_project, employee, project, tenant default.
func (s *Service) Resolve(ctx context.Context, req ratedomain.ResolveRequest) (*ratedomain.ResolvedRate, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return nil, ratedomain.ErrInvalidTenant
	}

	employeeID, err := parseRequiredID(req.EmployeeID, ratedomain.ErrInvalidEmployee)
	if err != nil {
		return nil, err
	}
	projectID, err := parseOptionalID(req.ProjectID, ratedomain.ErrInvalidProject)
	if err != nil {
		return nil, err
	}

	asOf := s.clock.Now()
	if req.AsOf != nil {
		asOf = req.AsOf.UTC()
	}

	var candidates []ratedomain.Scope
	if projectID != nil {
		candidates = append(candidates, ratedomain.Scope{
			TenantID:   tenantID,
			RateType:   ratedomain.EmployeeProject,
			EmployeeID: &employeeID,
			ProjectID:  projectID,
		})
	}
	candidates = append(candidates, ratedomain.Scope{
		TenantID:   tenantID,
		RateType:   ratedomain.Employee,
		EmployeeID: &employeeID,
	})
	if projectID != nil {
		candidates = append(candidates, ratedomain.Scope{
			TenantID:  tenantID,
			RateType:  ratedomain.Project,
			ProjectID: projectID,
		})
	}
	candidates = append(candidates, ratedomain.Scope{
		TenantID: tenantID,
		RateType: ratedomain.Default,
	})

	for _, scope := range candidates {
		record, err := s.repo.FindEffective(ctx, s.db, scope, asOf)
		if err != nil {
			return nil, err
		}
		if record == nil {
			continue
		}
		resolved, err := s.finishResolution(ctx, tenantID, record)
		if err != nil {
			return nil, err
		}
		s.metrics.Resolved(string(record.RateType))
		return resolved, nil
	}

	// Reaching this point means no default rate exists at all, which is a
	// tenant misconfiguration rather than a soft miss.
	s.metrics.Missed()
	return nil, ratedomain.ErrNoDefaultRate
}

func (s *Service) CalculateEntryCost(ctx context.Context, req ratedomain.EntryCostRequest) (*ratedomain.EntryCost, error) {
	if req.RegularHours < 0 || req.OvertimeHours < 0 {
		return nil, ratedomain.ErrInvalidHours
	}

	resolved, err := s.Resolve(ctx, ratedomain.ResolveRequest{
		EmployeeID:     req.EmployeeID,
		ProjectID:      req.ProjectID,
		ActivityCodeID: req.ActivityCodeID,
		AsOf:           req.Date,
	})
	if err != nil {
		return nil, err
	}

	regularAmount := req.RegularHours * resolved.StandardRate
	overtimeAmount := req.OvertimeHours * resolved.OvertimeRate

	return &ratedomain.EntryCost{
		RateID:         resolved.RateID,
		Source:         resolved.Source,
		Currency:       resolved.Currency,
		RegularHours:   req.RegularHours,
		OvertimeHours:  req.OvertimeHours,
		RegularAmount:  regularAmount,
		OvertimeAmount: overtimeAmount,
		TotalAmount:    regularAmount + overtimeAmount,
		BillableAmount: (req.RegularHours + req.OvertimeHours) * resolved.BillableRate,
	}, nil
}

func (s *Service) finishResolution(ctx context.Context, tenantID snowflake.ID, record *ratedomain.RateRecord) (*ratedomain.ResolvedRate, error) {
	overtimeRate := 0.0
	if record.OvertimeRate != nil {
		overtimeRate = *record.OvertimeRate
	} else {
		rules, err := s.overtimeRules(ctx, tenantID)
		if err != nil {
			return nil, err
		}
		overtimeRate = record.StandardRate * rules.Multiplier
	}

	billableRate := record.StandardRate
	if record.BillableRate != nil {
		billableRate = *record.BillableRate
	}

	return &ratedomain.ResolvedRate{
		RateID:       record.ID,
		StandardRate: record.StandardRate,
		OvertimeRate: overtimeRate,
		BillableRate: billableRate,
		Currency:     record.Currency,
		Source:       record.RateType,
	}, nil
}

func (s *Service) overtimeRules(ctx context.Context, tenantID snowflake.ID) (settingsdomain.OvertimeRules, error) {
	if rules, ok := s.rules.Get(tenantID.Int64()); ok {
		return rules, nil
	}

	settings, err := s.settings.Get(ctx)
	if err != nil {
		return settingsdomain.OvertimeRules{}, err
	}

	s.rules.Set(tenantID.Int64(), settings.OvertimeRules, rulesCacheTTL)
	return settings.OvertimeRules, nil
}

func (s *Service) scopeFromRequest(ctx context.Context, req ratedomain.ScopeRequest) (ratedomain.Scope, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return ratedomain.Scope{}, ratedomain.ErrInvalidTenant
	}

	rateType, err := parseRateType(req.RateType)
	if err != nil {
		return ratedomain.Scope{}, err
	}
	return buildScope(tenantID, rateType, req.EmployeeID, req.ProjectID, req.ActivityCodeID)
}

// acquireWriteLock serializes concurrent writers on the same scope when redis
// is configured. Best effort: lock failures degrade to transaction-only.
func (s *Service) acquireWriteLock(ctx context.Context, scope ratedomain.Scope) func() {
	if s.locker == nil {
		return func() {}
	}

	key := lockKey(scope)
	token, ok, err := s.locker.TryLock(ctx, key, writeLockTTL)
	if err != nil || !ok {
		if err != nil {
			s.log.Warn("rate write lock unavailable", zap.Error(err))
		}
		return func() {}
	}
	return func() {
		if err := s.locker.Release(ctx, key, token); err != nil {
			s.log.Warn("rate write lock release failed", zap.Error(err))
		}
	}
}

func lockKey(scope ratedomain.Scope) string {
	return fmt.Sprintf("rate_write:%d:%s:%s:%s:%s",
		scope.TenantID,
		scope.RateType,
		idOrDash(scope.EmployeeID),
		idOrDash(scope.ProjectID),
		idOrDash(scope.ActivityCodeID),
	)
}

func idOrDash(id *snowflake.ID) string {
	if id == nil {
		return "-"
	}
	return id.String()
}

func buildScope(tenantID snowflake.ID, rateType ratedomain.RateType, employeeID, projectID, activityCodeID string) (ratedomain.Scope, error) {
	scope := ratedomain.Scope{TenantID: tenantID, RateType: rateType}

	switch rateType {
	case ratedomain.Default:
	case ratedomain.Employee:
		id, err := parseRequiredID(employeeID, ratedomain.ErrInvalidEmployee)
		if err != nil {
			return scope, err
		}
		scope.EmployeeID = &id
	case ratedomain.Project:
		id, err := parseRequiredID(projectID, ratedomain.ErrInvalidProject)
		if err != nil {
			return scope, err
		}
		scope.ProjectID = &id
	case ratedomain.Activity:
		id, err := parseRequiredID(activityCodeID, ratedomain.ErrInvalidActivity)
		if err != nil {
			return scope, err
		}
		scope.ActivityCodeID = &id
	case ratedomain.EmployeeProject:
		empID, err := parseRequiredID(employeeID, ratedomain.ErrInvalidEmployee)
		if err != nil {
			return scope, err
		}
		projID, err := parseRequiredID(projectID, ratedomain.ErrInvalidProject)
		if err != nil {
			return scope, err
		}
		scope.EmployeeID = &empID
		scope.ProjectID = &projID
	case ratedomain.EmployeeActivity:
		empID, err := parseRequiredID(employeeID, ratedomain.ErrInvalidEmployee)
		if err != nil {
			return scope, err
		}
		actID, err := parseRequiredID(activityCodeID, ratedomain.ErrInvalidActivity)
		if err != nil {
			return scope, err
		}
		scope.EmployeeID = &empID
		scope.ActivityCodeID = &actID
	default:
		return scope, ratedomain.ErrInvalidRateType
	}

	return scope, nil
}

func parseRateType(value ratedomain.RateType) (ratedomain.RateType, error) {
	switch ratedomain.RateType(strings.ToUpper(strings.TrimSpace(string(value)))) {
	case ratedomain.Default:
		return ratedomain.Default, nil
	case ratedomain.Employee:
		return ratedomain.Employee, nil
	case ratedomain.Project:
		return ratedomain.Project, nil
	case ratedomain.Activity:
		return ratedomain.Activity, nil
	case ratedomain.EmployeeProject:
		return ratedomain.EmployeeProject, nil
	case ratedomain.EmployeeActivity:
		return ratedomain.EmployeeActivity, nil
	default:
		return "", ratedomain.ErrInvalidRateType
	}
}

func parseCurrency(value string) (string, error) {
	currency := strings.ToUpper(strings.TrimSpace(value))
	if len(currency) != 3 {
		return "", ratedomain.ErrInvalidCurrency
	}
	return currency, nil
}

func parseRequiredID(value string, invalid error) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, invalid
	}
	return id, nil
}

func parseOptionalID(value string, invalid error) (*snowflake.ID, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	id, err := parseRequiredID(value, invalid)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func toResponse(r *ratedomain.RateRecord) *ratedomain.Response {
	return &ratedomain.Response{
		ID:             r.ID,
		TenantID:       r.TenantID,
		RateType:       r.RateType,
		EmployeeID:     r.EmployeeID,
		ProjectID:      r.ProjectID,
		ActivityCodeID: r.ActivityCodeID,
		StandardRate:   r.StandardRate,
		OvertimeRate:   r.OvertimeRate,
		BillableRate:   r.BillableRate,
		Currency:       r.Currency,
		EffectiveFrom:  r.EffectiveFrom,
		EffectiveTo:    r.EffectiveTo,
		CreatedAt:      r.CreatedAt,
	}
}
