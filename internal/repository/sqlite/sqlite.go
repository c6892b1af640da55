// Package sqlite implements the repository interfaces on SQLite, using the
// pure-Go modernc.org/sqlite driver so builds need no C toolchain.
//
// One *DB implements every repository interface (themes, orders, users,
// reviews, stats) plus repository.Transactor. A transaction started by InTx
// travels in the context; every query goes through db.q(ctx), which returns
// the active *sql.Tx if there is one and the pool otherwise. That lets the
// service layer compose several repository calls atomically without the
// repositories knowing about each other.
package sqlite

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"

	sqlitedrv "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// DSN parameters applied to every connection in the pool.
//
// PRAGMA statements only affect the connection that runs them, so running
// "PRAGMA foreign_keys=ON" once after sql.Open would leave every other pooled
// connection without foreign keys. The driver applies _pragma parameters on
// each new connection instead.
const dsnParams = "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"

// DB wraps a sql.DB connection pool and provides repository methods.
type DB struct {
	conn *sql.DB
}

// querier is the subset of *sql.DB and *sql.Tx the repositories use.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type txKey struct{}

// foldFunc is the SQL name of the Unicode-aware lower-casing function.
// SQLite's built-in lower() only folds ASCII, so "CAFÉ" would never match
// "café" with it.
const foldFunc = "store_fold"

func init() {
	sqlitedrv.MustRegisterDeterministicScalarFunction(foldFunc, 1,
		func(_ *sqlitedrv.FunctionContext, args []driver.Value) (driver.Value, error) {
			switch v := args[0].(type) {
			case string:
				return fold(v), nil
			case []byte:
				return fold(string(v)), nil
			default:
				return v, nil
			}
		},
	)
}

// fold lower-cases s with full Unicode case mapping.
func fold(s string) string {
	return strings.ToLower(s)
}

// New creates a new SQLite database connection and runs migrations.
//
// dbPath examples:
//   - "data/themestore.db"  → file-based database (persistent)
//   - ":memory:"            → in-memory database (tests)
func New(dbPath string) (*DB, error) {
	sep := "?"
	if strings.Contains(dbPath, "?") {
		sep = "&"
	}

	conn, err := sql.Open("sqlite", dbPath+sep+dsnParams)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// Every connection to ":memory:" is a brand-new, empty database. Pinning
	// the pool to one connection keeps the whole test on the same data.
	if dbPath == ":memory:" {
		conn.SetMaxOpenConns(1)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL allows concurrent readers while a write is in progress. The journal
	// mode is stored in the database file, so once is enough.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping checks that the database is reachable. Used by the health endpoint.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// q returns the transaction carried by ctx, or the pool.
func (db *DB) q(ctx context.Context) querier {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return tx
	}
	return db.conn
}

// InTx runs fn in a transaction. Calls nested inside an existing transaction
// join it rather than starting a new one.
func (db *DB) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return fn(ctx)
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Join(err, fmt.Errorf("sqlite: rolling back: %w", rbErr))
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing transaction: %w", err)
	}
	return nil
}

// isUniqueViolation reports whether err is a UNIQUE constraint failure.
func isUniqueViolation(err error) bool {
	var se *sqlitedrv.Error
	return errors.As(err, &se) && se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
}

// Reset deletes every row from every table. It is the bulk administrative
// reset used by the seed command; nothing in the request path calls it.
func (db *DB) Reset(ctx context.Context) error {
	return db.InTx(ctx, func(ctx context.Context) error {
		for _, table := range []string{"reviews", "orders", "themes", "users"} {
			if _, err := db.q(ctx).ExecContext(ctx, "DELETE FROM "+table); err != nil {
				return fmt.Errorf("sqlite: clearing %s: %w", table, err)
			}
		}
		return nil
	})
}

// migrate creates the schema.
//
// CREATE TABLE IF NOT EXISTS is idempotent, so this runs on every start.
// Prices are integer cents: exact for SUM and ORDER BY, converted to
// decimal.Decimal at the repository boundary (see money.go).
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			name          TEXT NOT NULL DEFAULT '',
			email         TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL DEFAULT '',
			role          TEXT NOT NULL DEFAULT 'USER' CHECK (role IN ('USER', 'ADMIN')),
			image         TEXT NOT NULL DEFAULT '',
			github_id     INTEGER UNIQUE,
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	// google_id arrived after the first release. ALTER TABLE cannot add a
	// UNIQUE column, so uniqueness comes from the index.
	if err := db.addColumn("users", "google_id", "TEXT"); err != nil {
		return err
	}
	_, err = db.conn.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_users_google_id ON users(google_id)`)
	if err != nil {
		return fmt.Errorf("indexing users.google_id: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS themes (
			id               TEXT PRIMARY KEY,
			name             TEXT NOT NULL,
			description      TEXT NOT NULL DEFAULT '',
			long_description TEXT NOT NULL DEFAULT '',
			price_cents      INTEGER NOT NULL CHECK (price_cents >= 0),
			category         TEXT NOT NULL DEFAULT '',
			features         TEXT NOT NULL DEFAULT '[]',
			screenshots      TEXT NOT NULL DEFAULT '[]',
			image            TEXT NOT NULL DEFAULT '',
			demo_url         TEXT NOT NULL DEFAULT '',
			rating           REAL NOT NULL DEFAULT 0 CHECK (rating BETWEEN 0 AND 5),
			sales            INTEGER NOT NULL DEFAULT 0 CHECK (sales >= 0),
			created_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_themes_category ON themes(category);
		CREATE INDEX IF NOT EXISTS idx_themes_created_at ON themes(created_at);
	`)
	if err != nil {
		return fmt.Errorf("creating themes table: %w", err)
	}

	// Orders belong to their user; themes are only referenced, so deleting a
	// theme with orders against it fails instead of erasing purchase history.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS orders (
			id          TEXT PRIMARY KEY,
			user_id     TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			theme_id    TEXT NOT NULL REFERENCES themes(id),
			price_cents INTEGER NOT NULL CHECK (price_cents >= 0),
			status      TEXT NOT NULL DEFAULT 'PENDING'
			            CHECK (status IN ('PENDING', 'COMPLETED', 'CANCELLED', 'FAILED')),
			created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_orders_user_id ON orders(user_id);
		CREATE INDEX IF NOT EXISTS idx_orders_status ON orders(status);
		CREATE INDEX IF NOT EXISTS idx_orders_created_at ON orders(created_at);
	`)
	if err != nil {
		return fmt.Errorf("creating orders table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS reviews (
			id         TEXT PRIMARY KEY,
			user_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			theme_id   TEXT NOT NULL REFERENCES themes(id) ON DELETE CASCADE,
			rating     INTEGER NOT NULL CHECK (rating BETWEEN 1 AND 5),
			comment    TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_reviews_theme_id ON reviews(theme_id);
	`)
	if err != nil {
		return fmt.Errorf("creating reviews table: %w", err)
	}

	return nil
}

// addColumn adds a column to an existing table unless it is already there.
func (db *DB) addColumn(table, column, decl string) error {
	rows, err := db.conn.Query(`SELECT name FROM pragma_table_info(?)`, table)
	if err != nil {
		return fmt.Errorf("reading %s columns: %w", table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return fmt.Errorf("reading %s columns: %w", table, err)
		}
		if name == column {
			return nil
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("reading %s columns: %w", table, err)
	}
	rows.Close()

	if _, err := db.conn.Exec(`ALTER TABLE ` + table + ` ADD COLUMN ` + column + ` ` + decl); err != nil {
		return fmt.Errorf("adding %s.%s: %w", table, column, err)
	}
	return nil
}
