package storage

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"go.uber.org/fx"

	appconfig "github.com/tidewell/aisclean/internal/config"
	storageconfig "github.com/tidewell/aisclean/internal/storage/config"
	"github.com/tidewell/aisclean/internal/support/logger"
)

// ResolverParams collects all registered storage providers from the Fx
// graph.
type ResolverParams struct {
	fx.In
	Providers []Provider `group:"storage_providers"`
	Config    *appconfig.Config
}

// providerResolver dispatches connection names to the provider matching
// their configured type.
type providerResolver struct {
	providers map[string]Provider
	cfg       *appconfig.Config
}

// NewConnectionResolver creates a ConnectionResolver over the registered
// providers. All connections are closed when the application stops.
func NewConnectionResolver(lc fx.Lifecycle, p ResolverParams) ConnectionResolver {
	byType := make(map[string]Provider, len(p.Providers))
	for _, provider := range p.Providers {
		byType[provider.Type()] = provider
	}
	r := &providerResolver{providers: byType, cfg: p.Config}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			var multiErr error
			for _, provider := range byType {
				if err := provider.CloseAll(); err != nil {
					multiErr = multierror.Append(multiErr, err)
				}
			}
			return multiErr
		},
	})
	return r
}

// Resolve resolves the named connection by its configured adapter type.
func (r *providerResolver) Resolve(ctx context.Context, name string) (Connection, error) {
	cfg, err := storageconfig.Lookup(r.cfg, name)
	if err != nil {
		return nil, err
	}

	provider, ok := r.providers[cfg.Type]
	if !ok {
		return nil, fmt.Errorf("no storage provider found for type '%s' (connection '%s')", cfg.Type, name)
	}

	conn, err := provider.GetConnection(name)
	if err != nil {
		return nil, fmt.Errorf("failed to get storage connection '%s' from provider '%s': %w", name, cfg.Type, err)
	}
	logger.Debugf("Resolved storage connection '%s' (type '%s').", name, cfg.Type)
	return conn, nil
}

// Module is the Fx module providing the storage connection resolver.
var Module = fx.Options(
	fx.Provide(NewConnectionResolver),
)
