package statemachine

import "go.uber.org/fx"

// Module exposes the state machine service via Fx.
var Module = fx.Options(
	fx.Provide(NewService),
)
