// Package factory selects and initialises a storage backend by name.
package factory

import (
	"context"
	"fmt"

	"github.com/example/room-booking/internal/persistence"
	"github.com/example/room-booking/internal/persistence/memory"
	"github.com/example/room-booking/internal/persistence/sqlite"
)

// Backend names accepted by Open.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

// Store extends persistence.Store with schema management so main can migrate
// whichever backend it gets.
type Store interface {
	persistence.Store
	Migrate(ctx context.Context) error
}

// Open constructs the storage backend named by backend. The dsn is only used
// by the SQLite backend; an empty backend defaults to SQLite.
func Open(backend, dsn string) (Store, error) {
	switch backend {
	case BackendMemory:
		return memory.Open(), nil
	case BackendSQLite, "":
		return sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}
