// Package migration moves a single-tenant store into a fresh multi-tenant
// store in one atomic pass and flips the mode flag on success.
package migration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/coptimize/openinventory/internal/clock"
	"github.com/coptimize/openinventory/internal/config"
	"github.com/coptimize/openinventory/internal/metrics"
	"github.com/coptimize/openinventory/internal/prefs"
	"github.com/coptimize/openinventory/internal/schema"
	"github.com/coptimize/openinventory/internal/sqlexec"
	"github.com/coptimize/openinventory/pkg/db"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var (
	ErrMigrationFailed = errors.New("migration_failed")
	ErrAlreadyMigrated = errors.New("already_migrated")
)

// Engine performs the mode migration. Only one migration may run per
// process; concurrent calls serialize on the engine mutex and the loser
// observes the flipped flag.
type Engine struct {
	cfg     config.Config
	prefs   *prefs.Preferences
	store   *db.Store
	exec    *sqlexec.Executor
	clock   clock.Clock
	metrics *metrics.Metrics
	log     *zap.Logger

	mu sync.Mutex
}

func New(cfg config.Config, p *prefs.Preferences, store *db.Store, exec *sqlexec.Executor, clk clock.Clock, m *metrics.Metrics, log *zap.Logger) *Engine {
	return &Engine{
		cfg:     cfg,
		prefs:   p,
		store:   store,
		exec:    exec,
		clock:   clk,
		metrics: m,
		log:     log.Named("migration"),
	}
}

// Migrate builds the multi-tenant store next to the single-tenant one,
// copies every row across under a new superadmin owner, installs the
// ownership triggers and flips the mode flag. On any failure the target
// file is deleted and the single-tenant store is left untouched.
//
// hashedPassword must already be a bcrypt hash; the engine never sees the
// plaintext credential.
func (e *Engine) Migrate(ctx context.Context, username, hashedPassword string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.prefs.IsAuthModeEnabled() {
		return ErrAlreadyMigrated
	}
	if username == "" || hashedPassword == "" {
		return fmt.Errorf("%w: superadmin credentials required", ErrMigrationFailed)
	}

	oldPath := e.cfg.StorePath()
	if _, err := os.Stat(oldPath); err != nil {
		return fmt.Errorf("%w: source store unavailable: %v", ErrMigrationFailed, err)
	}

	newPath := e.cfg.AuthStorePath()
	// A partial file from an earlier failed attempt must never be reused.
	removeStoreFiles(newPath)

	if err := e.store.Close(); err != nil {
		return fmt.Errorf("%w: close source store: %v", ErrMigrationFailed, err)
	}

	err := e.run(ctx, newPath, oldPath, username, hashedPassword)
	if err != nil {
		removeStoreFiles(newPath)
		if reopenErr := e.store.Reopen(); reopenErr != nil {
			e.log.Error("reopen source store after failed migration", zap.Error(reopenErr))
		}
		e.metrics.MigrationAttempts.WithLabelValues("failure").Inc()
		e.log.Error("migration failed", zap.Error(err))
		return fmt.Errorf("%w: %v", ErrMigrationFailed, err)
	}

	if err := e.prefs.SetAuthModeEnabled(true); err != nil {
		removeStoreFiles(newPath)
		if reopenErr := e.store.Reopen(); reopenErr != nil {
			e.log.Error("reopen source store after failed migration", zap.Error(reopenErr))
		}
		e.metrics.MigrationAttempts.WithLabelValues("failure").Inc()
		return fmt.Errorf("%w: persist mode flag: %v", ErrMigrationFailed, err)
	}

	// In-flight work keeps the single-tenant handle until the process
	// restarts; the flag is only read at startup.
	if reopenErr := e.store.Reopen(); reopenErr != nil {
		e.log.Warn("reopen source store after migration", zap.Error(reopenErr))
	}

	e.metrics.MigrationAttempts.WithLabelValues("success").Inc()
	e.log.Info("migration completed", zap.String("target", newPath))
	return nil
}

func (e *Engine) run(ctx context.Context, newPath, oldPath, username, hashedPassword string) error {
	gdb, err := gorm.Open(sqlite.Open(db.DSN(newPath)), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return fmt.Errorf("open target store: %w", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	// ATTACH is per-connection state, so the whole migration runs on one
	// pinned connection.
	conn, err := sqlDB.Conn(ctx)
	if err != nil {
		return fmt.Errorf("pin connection: %w", err)
	}
	defer conn.Close()

	if err := e.exec.Exec(ctx, conn, schema.MultiTenant()); err != nil {
		return fmt.Errorf("create auth schema: %w", err)
	}

	// SQLite refuses ATTACH inside a transaction, so the source store is
	// attached first; atomicity is preserved by deleting the target file
	// whenever anything after this point fails.
	if _, err := conn.ExecContext(ctx, schema.AttachOldStore(oldPath)); err != nil {
		return fmt.Errorf("attach source store: %w", err)
	}

	if _, err := conn.ExecContext(ctx, "BEGIN IMMEDIATE"); err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	superadminID := uuid.NewString()
	now := e.clock.Now().UTC().Format(time.RFC3339)
	_, err = conn.ExecContext(ctx,
		`INSERT INTO users (id, username, password_hash, role, created_at, updated_at) VALUES (?, ?, ?, 'superadmin', ?, ?)`,
		superadminID, username, hashedPassword, now, now,
	)
	if err != nil {
		e.rollback(ctx, conn)
		return fmt.Errorf("insert superadmin: %w", err)
	}

	var readback string
	err = conn.QueryRowContext(ctx, `SELECT id FROM users WHERE username = ?`, username).Scan(&readback)
	if err != nil || readback != superadminID {
		e.rollback(ctx, conn)
		if err == nil {
			err = errors.New("id mismatch")
		}
		return fmt.Errorf("read back superadmin: %w", err)
	}

	// Exec rolls the transaction back itself on a statement failure.
	if err := e.exec.Exec(ctx, conn, schema.CopyData(superadminID)); err != nil {
		return fmt.Errorf("copy data: %w", err)
	}
	if err := e.exec.Exec(ctx, conn, schema.OwnershipTriggers()); err != nil {
		return fmt.Errorf("install ownership triggers: %w", err)
	}

	if _, err := conn.ExecContext(ctx, "COMMIT"); err != nil {
		e.rollback(ctx, conn)
		return fmt.Errorf("commit: %w", err)
	}

	if _, err := conn.ExecContext(ctx, "DETACH DATABASE old_db"); err != nil {
		e.log.Warn("detach source store", zap.Error(err))
	}
	return nil
}

func (e *Engine) rollback(ctx context.Context, conn *sql.Conn) {
	if _, err := conn.ExecContext(ctx, "ROLLBACK"); err != nil {
		e.log.Warn("rollback", zap.Error(err))
	}
}

func removeStoreFiles(path string) {
	for _, p := range []string{path, path + "-wal", path + "-shm"} {
		_ = os.Remove(p)
	}
}
