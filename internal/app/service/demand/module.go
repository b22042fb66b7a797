package demand

import "go.uber.org/fx"

// Module exposes the daily demand aggregator via Fx.
var Module = fx.Options(
	fx.Provide(NewService),
)
