package db

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQLite string

//go:embed schema_mysql.sql
var schemaMySQL string

var (
	ErrNotFound   = errors.New("not found")
	ErrEmailTaken = errors.New("email already registered")
)

const (
	DialectSQLite = "sqlite"
	DialectMySQL  = "mysql"
)

type DB struct {
	*sql.DB
	dialect string
}

// New opens the store. A DSN containing '@' is treated as MySQL
// (user:password@tcp(host:port)/dbname), anything else as a SQLite file
// path or URI.
func New(dsn string) (*DB, error) {
	dialect := DialectSQLite
	if strings.Contains(dsn, "@") {
		dialect = DialectMySQL
	}

	var (
		conn *sql.DB
		err  error
	)
	switch dialect {
	case DialectMySQL:
		conn, err = sql.Open("mysql", dsn)
	default:
		if dsn != ":memory:" && !strings.HasPrefix(dsn, "file:") {
			if err := os.MkdirAll(filepath.Dir(dsn), 0755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
		conn, err = sql.Open("sqlite", withPragmas(dsn))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if dialect == DialectSQLite {
		conn.SetMaxOpenConns(8)
	}

	if err := initSchema(conn, dialect); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &DB{DB: conn, dialect: dialect}, nil
}

// withPragmas appends the modernc.org/sqlite _pragma parameters so they apply
// to every pooled connection.
func withPragmas(dsn string) string {
	if strings.Contains(dsn, "?") {
		dsn += "&"
	} else {
		dsn += "?"
	}
	pragmas := []string{
		"_pragma=foreign_keys(1)",
		"_pragma=journal_mode(WAL)",
		"_pragma=busy_timeout(30000)",
		"_pragma=synchronous(NORMAL)",
	}
	return dsn + strings.Join(pragmas, "&")
}

func initSchema(conn *sql.DB, dialect string) error {
	schema := schemaSQLite
	if dialect == DialectMySQL {
		schema = schemaMySQL
	}

	for _, stmt := range strings.Split(schema, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := conn.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (db *DB) Dialect() string {
	return db.dialect
}

func (db *DB) WithTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	return tx.Commit()
}
