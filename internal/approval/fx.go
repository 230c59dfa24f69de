package approval

import (
	"github.com/tallyhq/tally/internal/approval/repository"
	"github.com/tallyhq/tally/internal/approval/service"
	"go.uber.org/fx"
)

var Module = fx.Module("approval.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
