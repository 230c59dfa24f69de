package directory

import (
	"github.com/tallyhq/tally/internal/directory/repository"
	"github.com/tallyhq/tally/internal/directory/service"
	"go.uber.org/fx"
)

var Module = fx.Module("directory.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
