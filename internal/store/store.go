// File path: internal/store/store.go
package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Store wraps a pooled sqlx.DB holding the census schema. It is safe for
// concurrent use; every operation draws a connection from the bounded pool
// and releases it on return.
type Store struct {
	db      *sqlx.DB
	driver  Driver
	timeout time.Duration
}

// Open constructs a Store from environment-derived configuration. The schema
// is migrated on first use.
func Open() (*Store, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	return OpenWithConfig(cfg)
}

// OpenWithConfig constructs a Store using the provided configuration.
func OpenWithConfig(cfg Config) (*Store, error) {
	cfg.applyDefaults()

	var driverName, dsn string
	switch cfg.Driver {
	case DriverSQLite:
		driverName = "sqlite"
		if strings.TrimSpace(cfg.DSN) != "" {
			dsn = cfg.DSN
			break
		}
		abs, err := filepath.Abs(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("resolve sqlite path: %w", err)
		}
		busy := int(cfg.BusyTimeout / time.Millisecond)
		if busy <= 0 {
			busy = 5000
		}
		dsn = fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)&_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)", abs, busy)
	case DriverPostgres:
		driverName = "pgx"
		if strings.TrimSpace(cfg.DSN) == "" {
			return nil, errors.New("postgres dsn required")
		}
		dsn = cfg.DSN
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}

	db, err := sqlx.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Driver, err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	pingTimeout := cfg.BusyTimeout
	if pingTimeout <= 0 {
		pingTimeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", cfg.Driver, err)
	}

	store := &Store{db: db, driver: cfg.Driver, timeout: cfg.QueryTimeout}
	if err := store.migrate(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// Close releases the underlying database resources.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Driver reports the configured database engine.
func (s *Store) Driver() Driver {
	if s == nil {
		return ""
	}
	return s.driver
}

var errNilStore = errors.New("store not initialised")

func (s *Store) ensureReady() error {
	if s == nil || s.db == nil {
		return errNilStore
	}
	return nil
}

// opCtx derives a deadline context for a single store operation. The deadline
// also covers waiting for a free pooled connection.
func (s *Store) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}

func (s *Store) rebind(query string) string {
	return s.db.Rebind(query)
}
