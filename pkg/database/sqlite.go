package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// sqliteConfig SQLite 열기 옵션
type sqliteConfig struct {
	busyTimeout int
	synchronous string
	mkdirAll    bool
	schemas     []string
}

// SQLiteOption OpenSQLite 옵션
type SQLiteOption func(*sqliteConfig)

// WithBusyTimeout PRAGMA busy_timeout (ms, 기본 10000)
func WithBusyTimeout(ms int) SQLiteOption {
	return func(c *sqliteConfig) { c.busyTimeout = ms }
}

// WithSynchronous PRAGMA synchronous (기본 NORMAL)
func WithSynchronous(mode string) SQLiteOption {
	return func(c *sqliteConfig) { c.synchronous = mode }
}

// WithMkdirAll 상위 디렉토리 생성
func WithMkdirAll() SQLiteOption {
	return func(c *sqliteConfig) { c.mkdirAll = true }
}

// WithSchema PRAGMA 적용 후 실행할 SQL
func WithSchema(s string) SQLiteOption {
	return func(c *sqliteConfig) { c.schemas = append(c.schemas, s) }
}

// OpenSQLite 점포별 SQLite 파일 열기
// ⭐ SSOT: SQLite 연결은 이 함수에서만 생성 (WAL, busy_timeout, foreign_keys)
func OpenSQLite(path string, opts ...SQLiteOption) (*sql.DB, error) {
	cfg := sqliteConfig{
		busyTimeout: 10_000,
		synchronous: "NORMAL",
	}
	for _, o := range opts {
		o(&cfg)
	}

	if cfg.mkdirAll && path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("sqlite mkdir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite open: %w", err)
	}
	// PRAGMA 는 연결 단위로 적용됨
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		fmt.Sprintf("PRAGMA busy_timeout = %d", cfg.busyTimeout),
		fmt.Sprintf("PRAGMA synchronous = %s", cfg.synchronous),
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("sqlite %s: %w", p, err)
		}
	}

	for _, s := range cfg.schemas {
		if _, err := db.Exec(s); err != nil {
			db.Close()
			return nil, fmt.Errorf("sqlite schema: %w", err)
		}
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite ping: %w", err)
	}

	return db, nil
}

// SQLitePath 점포 코드별 파일 경로 (dir/<store>.db)
func SQLitePath(dir, storeID string) string {
	return filepath.Join(dir, storeID+".db")
}
