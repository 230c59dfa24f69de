package permission

import (
	"github.com/tallyhq/tally/internal/permission/repository"
	"github.com/tallyhq/tally/internal/permission/service"
	"go.uber.org/fx"
)

var Module = fx.Module("permission.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
