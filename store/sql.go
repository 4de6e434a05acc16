package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"     // registers "mysql"
	_ "github.com/ncruces/go-sqlite3/driver" // registers "sqlite3"
	_ "github.com/ncruces/go-sqlite3/embed"  // bundled sqlite build
)

// Dialect selects the SQL flavour a [SQL] store speaks.
type Dialect string

const (
	SQLite Dialect = "sqlite3"
	MySQL  Dialect = "mysql"
)

// TableName is the table holding the key-value pairs.
const TableName = "jsoncanvas_kv"

// SQL is a KV over a database/sql handle.
type SQL struct {
	db      *sql.DB
	dialect Dialect
}

var _ Backend = (*SQL)(nil)

// OpenSQLite opens (creating if needed) the sqlite database at path.
func OpenSQLite(ctx context.Context, path string) (*SQL, error) {
	if path == "" {
		path = "jsoncanvas.db"
	}
	dsn := fmt.Sprintf("file:%s?mode=rwc&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open(string(SQLite), dsn)
	if err != nil {
		return nil, fmt.Errorf("store: opening sqlite: %w", err)
	}
	// single writer
	db.SetMaxOpenConns(1)
	return newSQL(ctx, db, SQLite)
}

// OpenMySQL connects to MySQL using a go-sql-driver DSN such as
// "user:pw@tcp(host:3306)/db".
func OpenMySQL(ctx context.Context, dsn string) (*SQL, error) {
	db, err := sql.Open(string(MySQL), dsn)
	if err != nil {
		return nil, fmt.Errorf("store: opening mysql: %w", err)
	}
	db.SetConnMaxLifetime(3 * time.Minute)
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	return newSQL(ctx, db, MySQL)
}

// NewSQL wraps an open handle and creates the table if missing. The store
// takes ownership of db.
func NewSQL(ctx context.Context, db *sql.DB, d Dialect) (*SQL, error) {
	return newSQL(ctx, db, d)
}

func newSQL(ctx context.Context, db *sql.DB, d Dialect) (*SQL, error) {
	s := &SQL{db: db, dialect: d}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQL) migrate(ctx context.Context) error {
	var ddl string
	switch s.dialect {
	case SQLite:
		ddl = `CREATE TABLE IF NOT EXISTS ` + TableName + ` (k TEXT PRIMARY KEY, v TEXT NOT NULL)`
	case MySQL:
		ddl = `CREATE TABLE IF NOT EXISTS ` + TableName + ` (k VARCHAR(191) PRIMARY KEY, v LONGTEXT NOT NULL)`
	default:
		return fmt.Errorf("store: unsupported dialect %q", s.dialect)
	}
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("store: creating %s: %w", TableName, err)
	}
	return nil
}

func (s *SQL) Get(ctx context.Context, key string) (string, bool, error) {
	var v string
	err := s.db.QueryRowContext(ctx, `SELECT v FROM `+TableName+` WHERE k = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (s *SQL) Set(ctx context.Context, key, value string) error {
	q := `INSERT INTO ` + TableName + ` (k, v) VALUES (?, ?) ON CONFLICT(k) DO UPDATE SET v = excluded.v`
	if s.dialect == MySQL {
		q = `INSERT INTO ` + TableName + ` (k, v) VALUES (?, ?) ON DUPLICATE KEY UPDATE v = VALUES(v)`
	}
	_, err := s.db.ExecContext(ctx, q, key, value)
	return err
}

func (s *SQL) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
