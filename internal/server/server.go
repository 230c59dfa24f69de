package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tallyhq/tally/internal/approval"
	approvaldomain "github.com/tallyhq/tally/internal/approval/domain"
	"github.com/tallyhq/tally/internal/clock"
	"github.com/tallyhq/tally/internal/config"
	"github.com/tallyhq/tally/internal/directory"
	directorydomain "github.com/tallyhq/tally/internal/directory/domain"
	"github.com/tallyhq/tally/internal/entry"
	entrydomain "github.com/tallyhq/tally/internal/entry/domain"
	"github.com/tallyhq/tally/internal/migration"
	"github.com/tallyhq/tally/internal/observability"
	obsmiddleware "github.com/tallyhq/tally/internal/observability/logger"
	obsmetrics "github.com/tallyhq/tally/internal/observability/metrics"
	"github.com/tallyhq/tally/internal/observability/tracing"
	"github.com/tallyhq/tally/internal/permission"
	permissiondomain "github.com/tallyhq/tally/internal/permission/domain"
	"github.com/tallyhq/tally/internal/rate"
	ratedomain "github.com/tallyhq/tally/internal/rate/domain"
	"github.com/tallyhq/tally/internal/ratelimit"
	"github.com/tallyhq/tally/internal/settings"
	settingsdomain "github.com/tallyhq/tally/internal/settings/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	clock.Module,
	ratelimit.Module,
	migration.Module,
	directory.Module,
	settings.Module,
	rate.Module,
	approval.Module,
	permission.Module,
	entry.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(tracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine        *gin.Engine
	cfg           config.Config
	db            *gorm.DB
	genID         *snowflake.Node
	directorySvc  directorydomain.Service
	settingsSvc   settingsdomain.Service
	rateSvc       ratedomain.Service
	approvalSvc   approvaldomain.Service
	permissionSvc permissiondomain.Service
	entrySvc      entrydomain.Service
}

type ServerParams struct {
	fx.In

	Gin           *gin.Engine
	Cfg           config.Config
	DB            *gorm.DB
	GenID         *snowflake.Node
	DirectorySvc  directorydomain.Service
	SettingsSvc   settingsdomain.Service
	RateSvc       ratedomain.Service
	ApprovalSvc   approvaldomain.Service
	PermissionSvc permissiondomain.Service
	EntrySvc      entrydomain.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:        p.Gin,
		cfg:           p.Cfg,
		db:            p.DB,
		genID:         p.GenID,
		directorySvc:  p.DirectorySvc,
		settingsSvc:   p.SettingsSvc,
		rateSvc:       p.RateSvc,
		approvalSvc:   p.ApprovalSvc,
		permissionSvc: p.PermissionSvc,
		entrySvc:      p.EntrySvc,
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	v1 := s.engine.Group("/v1", s.TenantContext(), UserContext())

	users := v1.Group("/users")
	users.POST("", s.CreateUser)
	users.GET("", s.ListUsers)
	users.GET("/:id", s.GetUser)

	rates := v1.Group("/rates")
	rates.GET("/active", s.GetActiveRate)
	rates.GET("/history", s.ListRateHistory)
	rates.GET("/resolve", s.ResolveRate)
	rates.POST("/entry-cost", s.CalculateEntryCost)
	writes := rates.Group("", s.RequirePermission(permissiondomain.ManageRates))
	writes.POST("/default", s.SetDefaultRate)
	writes.POST("/employee", s.SetEmployeeRate)
	writes.POST("/project", s.SetProjectRate)
	writes.POST("/activity", s.SetActivityRate)
	writes.POST("/employee-project", s.SetEmployeeProjectRate)

	cfg := v1.Group("/settings")
	cfg.GET("", s.GetSettings)
	admin := cfg.Group("", s.RequirePermission(permissiondomain.ManageSettings))
	admin.PATCH("/period", s.UpdatePeriodSettings)
	admin.PATCH("/overtime", s.UpdateOvertimeRules)
	admin.PATCH("/validation", s.UpdateValidationRules)
	admin.PATCH("/approval", s.UpdateApprovalWorkflow)
	admin.PATCH("/notifications", s.UpdateNotifications)
	admin.PATCH("/export", s.UpdateExportSettings)
	admin.PATCH("/security", s.UpdateSecuritySettings)
	admin.POST("/reset", s.ResetSettings)

	approvals := v1.Group("/approvals")
	approvals.GET("/config", s.GetApprovalConfig)
	approvals.PUT("/approvers", s.SetDefaultApprovers)
	approvals.PUT("/escalation", s.SetEscalationRules)
	approvals.GET("/managers", s.ListManagerMappings)
	approvals.GET("/managers/:manager_id/reports", s.ListDirectReports)
	approvals.PUT("/managers", s.SetEmployeeManager)
	approvals.DELETE("/managers/:employee_id", s.RemoveEmployeeManager)
	approvals.POST("/managers/import", s.ImportHierarchy)
	approvals.GET("/approver/:employee_id", s.GetApproverForEmployee)
	approvals.GET("/escalation-target/:employee_id", s.GetEscalationTarget)
	approvals.GET("/required", s.IsApprovalRequired)

	perms := v1.Group("/permissions")
	perms.GET("/:user_id", s.GetUserPermissions)
	perms.PUT("/:user_id", s.SetUserPermissions)
	perms.GET("/:user_id/history", s.ListPermissionHistory)
	perms.GET("/:user_id/check", s.CheckPermission)
	perms.POST("/project-access", s.CheckProjectAccess)
	perms.POST("/approval-access", s.CheckApprovalAccess)
	perms.POST("/edit-access", s.CheckEditAccess)

	entries := v1.Group("/entries")
	entries.POST("/validate", s.ValidateEntry)
	entries.POST("/estimate-cost", s.EstimateEntryCost)
}
