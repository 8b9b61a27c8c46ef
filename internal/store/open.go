package store

import (
	"fmt"

	"github.com/dukerupert/foyer/internal/database"
)

type Config struct {
	Driver      string
	SQLitePath  string
	FilePath    string
	PostgresDSN string
}

// Open returns the gateway selected by cfg.Driver: "sqlite" (the default),
// "file", "postgres" or "memory".
func Open(cfg Config) (Gateway, error) {
	switch cfg.Driver {
	case "", "sqlite":
		db, err := database.Open(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return NewSQLiteGateway(db), nil
	case "postgres":
		db, err := database.OpenPostgres(cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		return NewPostgresGateway(db), nil
	case "file":
		return NewFileGateway(cfg.FilePath), nil
	case "memory":
		return NewMemoryGateway(), nil
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
}
