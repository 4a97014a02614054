// Package storageutils builds the configured history driver.
package storageutils

import (
	"context"
	"errors"
	"fmt"

	"github.com/papercomputeco/pilotlight/pkg/storage"
	"github.com/papercomputeco/pilotlight/pkg/storage/inmemory"
	"github.com/papercomputeco/pilotlight/pkg/storage/jsonfile"
	"github.com/papercomputeco/pilotlight/pkg/storage/postgres"
	"github.com/papercomputeco/pilotlight/pkg/storage/sqlite"
)

type NewDriverOpts struct {
	// DriverType is one of jsonfile (the default), sqlite, postgres, or inmemory.
	DriverType string

	// Path is the history directory for jsonfile and the database file for sqlite.
	Path string

	// DSN is the postgres connection string.
	DSN string
}

// NewDriver opens the driver named by o.DriverType.
func NewDriver(ctx context.Context, o *NewDriverOpts) (storage.Driver, error) {
	switch o.DriverType {
	case "", "jsonfile", "json":
		return jsonfile.NewDriver(o.Path)
	case "sqlite":
		if o.Path == "" {
			return nil, errors.New("sqlite history driver requires a database path")
		}
		return sqlite.NewDriver(ctx, o.Path)
	case "postgres":
		if o.DSN == "" {
			return nil, errors.New("postgres history driver requires a dsn")
		}
		return postgres.NewDriver(ctx, o.DSN)
	case "inmemory", "memory":
		return inmemory.NewDriver(), nil
	default:
		return nil, fmt.Errorf("unsupported history driver: %s", o.DriverType)
	}
}
