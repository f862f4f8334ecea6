// Package backend opens the store selected by configuration.
package backend

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/DoyleJ11/ti-helper/internal/config"
	"github.com/DoyleJ11/ti-helper/internal/store"
	"github.com/DoyleJ11/ti-helper/internal/store/memory"
	"github.com/DoyleJ11/ti-helper/internal/store/postgres"
	"github.com/DoyleJ11/ti-helper/internal/store/sqlite"
)

func Open(ctx context.Context, cfg config.Config, log *zap.Logger) (store.Store, error) {
	switch cfg.StoreDriver {
	case config.DriverMemory:
		log.Warn("using in-memory store; data is lost on exit")
		return memory.New(), nil
	case config.DriverPostgres:
		s, err := postgres.Open(ctx, cfg.PostgresDSN, log)
		if err != nil {
			return nil, fmt.Errorf("open postgres store: %w", err)
		}
		return s, nil
	case config.DriverSQLite:
		s, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store %s: %w", cfg.SQLitePath, err)
		}
		log.Info("opened sqlite store", zap.String("path", cfg.SQLitePath))
		return s, nil
	default:
		return nil, fmt.Errorf("%w: unknown store %q", config.ErrInvalid, cfg.StoreDriver)
	}
}
