package entry

import (
	"github.com/tallyhq/tally/internal/entry/service"
	"go.uber.org/fx"
)

var Module = fx.Module("entry.service",
	fx.Provide(service.New),
)
