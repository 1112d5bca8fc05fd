package db

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/coptimize/openinventory/internal/schema"
	"github.com/coptimize/openinventory/internal/sqlexec"
	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Mode identifies which physical schema the active store uses.
type Mode string

const (
	ModeSingleTenant Mode = "single_tenant"
	ModeMultiTenant  Mode = "multi_tenant"
)

// Store owns the handle to one physical SQLite store. Lifecycle is explicit:
// callers open it once at startup and close it on shutdown or before a mode
// migration; there is no lazy global connection.
type Store struct {
	Path string
	Mode Mode

	log *zap.Logger

	mu     sync.Mutex
	db     *gorm.DB
	closed bool
}

// Open opens (creating if needed) the store file at path and ensures its
// schema exists, running the mode's DDL script on first creation.
func Open(path string, mode Mode, log *zap.Logger) (*Store, error) {
	s := &Store{Path: path, Mode: mode, log: log.Named("db")}
	if err := s.open(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) open() error {
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	gdb, err := gorm.Open(sqlite.Open(DSN(s.Path)), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return fmt.Errorf("open store %s: %w", s.Path, err)
	}

	if err := ensureSchema(gdb, s.Mode, s.log); err != nil {
		if sqlDB, dbErr := gdb.DB(); dbErr == nil {
			_ = sqlDB.Close()
		}
		return err
	}

	s.mu.Lock()
	s.db = gdb
	s.closed = false
	s.mu.Unlock()
	s.log.Info("store opened", zap.String("path", s.Path), zap.String("mode", string(s.Mode)))
	return nil
}

// DSN builds the SQLite connection string with foreign keys enforced.
func DSN(path string) string {
	return path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

// DB returns the live handle. Callers must not retain it across Close.
func (s *Store) DB() *gorm.DB {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db
}

// Close force-closes the underlying connection pool. Safe to call twice.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	s.closed = true
	s.db = nil
	return sqlDB.Close()
}

// Reopen re-establishes the handle after a Close, e.g. when a failed
// migration must hand the single-tenant store back to its callers.
func (s *Store) Reopen() error {
	s.mu.Lock()
	if !s.closed && s.db != nil {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()
	return s.open()
}

func ensureSchema(gdb *gorm.DB, mode Mode, log *zap.Logger) error {
	var count int64
	err := gdb.Raw(
		`SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = 'products'`,
	).Scan(&count).Error
	if err != nil {
		return fmt.Errorf("inspect schema: %w", err)
	}
	if count > 0 {
		return nil
	}

	ddl := schema.SingleTenant()
	if mode == ModeMultiTenant {
		ddl = schema.MultiTenant() + "\n" + schema.OwnershipTriggers()
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return err
	}
	conn, err := sqlDB.Conn(context.Background())
	if err != nil {
		return fmt.Errorf("pin connection: %w", err)
	}
	defer conn.Close()

	if err := sqlexec.New(log).Exec(context.Background(), conn, ddl); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}
