package config

import "go.uber.org/fx"

// Module is the Fx module providing the application configuration.
var Module = fx.Options(
	fx.Provide(NewConfigProvider),
)
