// Package store persists editor templates in a key-value backend.
//
// [KV] is the small get/set contract every backend satisfies: [Memory] for
// tests and single-process use, [Redis], [SQL] (sqlite or mysql) and
// [Postgres]. [Templates] encodes the template list as JSON text under one
// key on top of any of them.
package store

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// Sentinel errors returned by the package.
var (
	// ErrPersistenceDegraded wraps any failure to read, write or decode the
	// durable template list. Callers log it; in-memory state stays
	// authoritative.
	ErrPersistenceDegraded = errors.New("store: persistence degraded")

	// ErrUnknownDriver is returned by [Open] for an unsupported driver name.
	ErrUnknownDriver = errors.New("store: unknown driver")
)

// KV is an opaque string store. Get reports ok=false for a missing key.
type KV interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
}

// Backend is a KV that holds resources until closed.
type Backend interface {
	KV
	io.Closer
}

// Drivers accepted by [Open].
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

// Open connects to the backend named by driver. dsn is a file path for
// sqlite, a go-sql-driver DSN for mysql, a libpq URL or keyword string for
// postgres and host:port for redis. It is ignored for memory.
func Open(ctx context.Context, driver, dsn string) (Backend, error) {
	switch driver {
	case DriverMemory, "":
		return NewMemory(), nil
	case DriverSQLite:
		return OpenSQLite(ctx, dsn)
	case DriverMySQL:
		return OpenMySQL(ctx, dsn)
	case DriverPostgres:
		return OpenPostgres(ctx, dsn)
	case DriverRedis:
		return OpenRedis(ctx, RedisOptions{Addr: dsn})
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
}
