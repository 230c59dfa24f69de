package migration

import (
	approvaldomain "github.com/tallyhq/tally/internal/approval/domain"
	"github.com/tallyhq/tally/internal/config"
	directorydomain "github.com/tallyhq/tally/internal/directory/domain"
	permissiondomain "github.com/tallyhq/tally/internal/permission/domain"
	ratedomain "github.com/tallyhq/tally/internal/rate/domain"
	settingsdomain "github.com/tallyhq/tally/internal/settings/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType != "postgres" {
			// sqlite/mysql dev environments rely on gorm's schema sync.
			return conn.AutoMigrate(
				&ratedomain.RateRecord{},
				&settingsdomain.TimesheetSettings{},
				&approvaldomain.ApprovalConfig{},
				&approvaldomain.ManagerMapping{},
				&permissiondomain.PermissionRecord{},
				&directorydomain.User{},
			)
		}

		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		return RunMigrations(sqlDB)
	}),
)
