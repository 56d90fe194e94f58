package objectstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" database/sql driver
)

// MemoryLocation opens a private in-memory database.
const MemoryLocation = ":memory:"

// Driver opens the SQL connection a store runs on. Implementations must
// return a handle speaking the SQLite dialect.
type Driver interface {
	Open(ctx context.Context, location string) (*sql.DB, error)
}

// DriverFunc adapts a function to the Driver interface
type DriverFunc func(ctx context.Context, location string) (*sql.DB, error)

// Open implements Driver
func (f DriverFunc) Open(ctx context.Context, location string) (*sql.DB, error) {
	return f(ctx, location)
}

// SQLiteDriver opens databases through a database/sql SQLite driver. The zero
// value uses the pure Go modernc.org/sqlite driver.
type SQLiteDriver struct {
	// DriverName is the database/sql driver name (default "sqlite")
	DriverName string
	// BusyTimeout bounds how long a write waits on another connection's lock
	BusyTimeout time.Duration
}

// Open implements Driver
func (d SQLiteDriver) Open(ctx context.Context, location string) (*sql.DB, error) {
	name := d.DriverName
	if name == "" {
		name = "sqlite"
	}

	db, err := sql.Open(name, d.dsn(location))
	if err != nil {
		return nil, err
	}

	// A single connection keeps :memory: databases alive and serializes
	// access the way SQLite does anyway.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func (d SQLiteDriver) dsn(location string) string {
	if location == "" || location == MemoryLocation {
		return MemoryLocation
	}
	if d.BusyTimeout <= 0 {
		return location
	}

	pragma := fmt.Sprintf("busy_timeout(%d)", d.BusyTimeout.Milliseconds())
	if strings.HasPrefix(location, "file:") {
		sep := "?"
		if strings.Contains(location, "?") {
			sep = "&"
		}
		return location + sep + "_pragma=" + pragma
	}
	return "file:" + location + "?_pragma=" + pragma
}
