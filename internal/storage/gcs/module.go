// Package gcs provides the Fx module for the GCS storage adapter.
package gcs

import (
	"go.uber.org/fx"

	"github.com/tidewell/aisclean/internal/storage"
)

// Module provides the GCSProvider to the Fx application graph under the
// storage provider group.
var Module = fx.Options(
	fx.Provide(fx.Annotate(
		NewGCSProvider,
		fx.As(new(storage.Provider)),
		fx.ResultTags(`group:"storage_providers"`),
	)),
)
