package ledger

import (
	"context"
	"fmt"

	"go.uber.org/fx"

	appconfig "github.com/tidewell/aisclean/internal/config"
	"github.com/tidewell/aisclean/internal/support/logger"
)

// newRepository wires the run ledger from configuration. When the
// ledger is disabled the pipeline still runs, it just leaves no record.
func newRepository(lc fx.Lifecycle, cfg *appconfig.Config) (Repository, error) {
	if !cfg.Aisclean.Ledger.IsEnabled() {
		logger.Infof("Run ledger is disabled; run records will not be persisted")
		return NewNoopRepository(), nil
	}

	dbConfig, err := LookupDatabaseConfig(cfg, cfg.Aisclean.Ledger.DBRef)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve ledger database '%s': %w", cfg.Aisclean.Ledger.DBRef, err)
	}

	db, err := OpenDB(dbConfig)
	if err != nil {
		return nil, err
	}
	if err := Migrate(db, dbConfig.Type); err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			logger.Debugf("Closing ledger DB connection")
			return sqlDB.Close()
		},
	})

	return NewRepository(db), nil
}

// Module exports the ledger repository for dependency injection.
var Module = fx.Options(
	fx.Provide(newRepository),
)
