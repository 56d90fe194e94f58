package objectstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteDriver_DSN(t *testing.T) {
	tests := []struct {
		name     string
		driver   SQLiteDriver
		location string
		want     string
	}{
		{name: "memory", driver: SQLiteDriver{BusyTimeout: time.Second}, location: ":memory:", want: ":memory:"},
		{name: "empty is memory", location: "", want: ":memory:"},
		{name: "plain path", location: "/var/lib/objstore.db", want: "/var/lib/objstore.db"},
		{name: "busy timeout", driver: SQLiteDriver{BusyTimeout: 5 * time.Second}, location: "/tmp/a.db", want: "file:/tmp/a.db?_pragma=busy_timeout(5000)"},
		{name: "uri", driver: SQLiteDriver{BusyTimeout: time.Second}, location: "file:/tmp/a.db", want: "file:/tmp/a.db?_pragma=busy_timeout(1000)"},
		{name: "uri with query", driver: SQLiteDriver{BusyTimeout: time.Second}, location: "file:/tmp/a.db?mode=rwc", want: "file:/tmp/a.db?mode=rwc&_pragma=busy_timeout(1000)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.driver.dsn(tt.location))
		})
	}
}

func TestSQLiteDriver_OpenMemory(t *testing.T) {
	db, err := SQLiteDriver{}.Open(context.Background(), MemoryLocation)
	require.NoError(t, err)
	defer db.Close()

	assert.Equal(t, 1, db.Stats().MaxOpenConnections)
}

func TestSQLiteDriver_UnknownDriver(t *testing.T) {
	_, err := SQLiteDriver{DriverName: "no-such-driver"}.Open(context.Background(), MemoryLocation)
	assert.Error(t, err)
}
