// Package local provides the Fx module for the local storage adapter.
package local

import (
	"go.uber.org/fx"

	"github.com/tidewell/aisclean/internal/storage"
)

// Module provides the LocalProvider to the Fx application graph under the
// storage provider group.
var Module = fx.Options(
	fx.Provide(fx.Annotate(
		NewLocalProvider,
		fx.As(new(storage.Provider)),
		fx.ResultTags(`group:"storage_providers"`),
	)),
)
