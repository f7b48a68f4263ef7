// Package store selects the snapshot store named in configuration.
package store

import (
	"fmt"
	"strings"

	"github.com/ErrorLSC/QMS/pkg/domain/repositories"
	"github.com/ErrorLSC/QMS/pkg/infrastructure/config"
	"github.com/ErrorLSC/QMS/pkg/infrastructure/store/postgres"
	"github.com/ErrorLSC/QMS/pkg/infrastructure/store/sqlite"
)

// Open returns the configured store, or nil for driver "none"
func Open(cfg config.StoreConfig) (repositories.RecommendationStore, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "sqlite":
		if cfg.DSN == "" {
			return nil, fmt.Errorf("sqlite store needs a dsn")
		}
		return sqlite.New(cfg.DSN)
	case "postgres", "postgresql":
		if cfg.DSN == "" {
			return nil, fmt.Errorf("postgres store needs a dsn")
		}
		return postgres.Open(cfg.DSN)
	case "", "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
