package order

import "go.uber.org/fx"

// Module exposes the order ledger via Fx.
var Module = fx.Options(
	fx.Provide(NewService),
)
