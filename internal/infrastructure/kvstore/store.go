package kvstore

import (
	"fmt"

	"github.com/eslsoft/myenglish/internal/infrastructure/config"
	"github.com/eslsoft/myenglish/internal/repository"
)

// NewStore builds the configured key-value store. The returned cleanup func
// releases driver resources and is safe to call once.
func NewStore(cfg *config.Config) (repository.KVStore, func(), error) {
	switch cfg.Store.Driver {
	case "", "file":
		store, err := NewFileStore(cfg.Store.Path)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {}, nil
	case "sqlite":
		return NewSqliteStore(cfg.Store.Path)
	case "postgres":
		return NewPostgresStore(cfg.Store.DSN)
	default:
		return nil, nil, fmt.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}
