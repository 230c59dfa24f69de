package rate

import (
	"github.com/tallyhq/tally/internal/rate/repository"
	"github.com/tallyhq/tally/internal/rate/service"
	"go.uber.org/fx"
)

var Module = fx.Module("rate.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
