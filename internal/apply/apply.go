// Package apply executes a generated script against a live database inside
// a single transaction. Either every statement commits or none does.
package apply

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/JonMunkholm/ParkingImport/internal/logging"
	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Supported drivers.
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

// mysqlCollation forces a 4-byte UTF-8 session so accented labels and notes
// survive the round trip.
const mysqlCollation = "utf8mb4_unicode_ci"

// pingTimeout bounds the connectivity check in New.
const pingTimeout = 5 * time.Second

// ErrUnsupportedDriver is returned by New for an unknown driver name.
var ErrUnsupportedDriver = errors.New("unsupported database driver")

// Applier runs scripts against one database. Exactly one of db and pool is set.
type Applier struct {
	driver string
	db     *sql.DB
	pool   *pgxpool.Pool
	owned  bool
}

// New connects to the database at url using driver and verifies the
// connection. Close releases it.
func New(ctx context.Context, driver, url string) (*Applier, error) {
	switch driver {
	case DriverMySQL:
		cfg, err := MySQLConfig(url)
		if err != nil {
			return nil, err
		}
		connector, err := mysql.NewConnector(cfg)
		if err != nil {
			return nil, fmt.Errorf("mysql connector: %w", err)
		}
		db := sql.OpenDB(connector)

		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		defer cancel()
		if err := db.PingContext(pingCtx); err != nil {
			db.Close()
			return nil, fmt.Errorf("mysql ping: %w", err)
		}
		return &Applier{driver: driver, db: db, owned: true}, nil

	case DriverPostgres:
		pool, err := pgxpool.New(ctx, url)
		if err != nil {
			return nil, fmt.Errorf("postgres connect: %w", err)
		}

		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		defer cancel()
		if err := pool.Ping(pingCtx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("postgres ping: %w", err)
		}
		return &Applier{driver: driver, pool: pool, owned: true}, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, driver)
	}
}

// NewDB wraps an already open database/sql handle. The caller keeps
// ownership of db; Close is a no-op for it.
func NewDB(driver string, db *sql.DB) *Applier {
	return &Applier{driver: driver, db: db}
}

// MySQLConfig parses a go-sql-driver DSN (user:pass@tcp(host:3306)/db) and
// pins the session options the script relies on: utf8mb4 and one statement
// per Exec.
func MySQLConfig(dsn string) (*mysql.Config, error) {
	cfg, err := mysql.ParseDSN(strings.TrimPrefix(dsn, "mysql://"))
	if err != nil {
		return nil, fmt.Errorf("parse mysql dsn: %w", err)
	}
	cfg.Collation = mysqlCollation
	cfg.MultiStatements = false
	return cfg, nil
}

// Driver reports the driver name the Applier was built with.
func (a *Applier) Driver() string {
	return a.driver
}

// Apply executes stmts in order within one transaction and returns the
// number executed. Any failure rolls the whole script back.
func (a *Applier) Apply(ctx context.Context, stmts []string) (int, error) {
	log := logging.FromContext(ctx)
	start := time.Now()

	var (
		n   int
		err error
	)
	if a.pool != nil {
		n, err = a.applyPgx(ctx, stmts)
	} else {
		n, err = a.applySQL(ctx, stmts)
	}
	if err != nil {
		log.Error("apply rolled back", "driver", a.driver, "executed", n, "error", err)
		return 0, err
	}

	log.Info("script applied",
		"driver", a.driver,
		"statements", n,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return n, nil
}

func (a *Applier) applySQL(ctx context.Context, stmts []string) (int, error) {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() // No-op if already committed

	for i, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return i, fmt.Errorf("statement %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return len(stmts), fmt.Errorf("commit: %w", err)
	}
	return len(stmts), nil
}

func (a *Applier) applyPgx(ctx context.Context, stmts []string) (int, error) {
	tx, err := a.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) // No-op if already committed

	for i, stmt := range stmts {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return i, fmt.Errorf("statement %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return len(stmts), fmt.Errorf("commit: %w", err)
	}
	return len(stmts), nil
}

// Close releases connections opened by New.
func (a *Applier) Close() {
	if !a.owned {
		return
	}
	if a.pool != nil {
		a.pool.Close()
	}
	if a.db != nil {
		a.db.Close()
	}
}
