package diagnostics

import "go.uber.org/fx"

// Module exposes the diagnostics reporter via Fx.
var Module = fx.Options(
	fx.Provide(NewService),
)
