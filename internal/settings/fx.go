package settings

import (
	"github.com/tallyhq/tally/internal/settings/repository"
	"github.com/tallyhq/tally/internal/settings/service"
	"go.uber.org/fx"
)

var Module = fx.Module("settings.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
