package sqlexec

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// Conn is the statement executor the script runner drives. Both *sql.Conn
// and *sql.Tx satisfy it.
type Conn interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Statements end at a semicolon followed by optional whitespace and then a
// newline or end of input. Semicolons mid-line (inside strings or comments)
// are not split points.
var statementEnd = regexp.MustCompile(`;\s*(?:\n|$)`)

// Trigger bodies carry their own statement terminators, so a naive split
// cuts a CREATE TRIGGER block apart. Fragments between the block opener and
// its closing END are re-joined into one statement.
var (
	triggerStart = regexp.MustCompile(`(?i)^CREATE\s+TRIGGER\b`)
	triggerEnd   = regexp.MustCompile(`(?i)\bEND$`)
)

// Split breaks a raw SQL script into discrete statements, dropping blanks.
func Split(script string) []string {
	parts := statementEnd.Split(script, -1)
	statements := make([]string, 0, len(parts))
	var trigger strings.Builder
	for _, part := range parts {
		stmt := strings.TrimSpace(part)
		if stmt == "" {
			continue
		}
		if trigger.Len() > 0 {
			trigger.WriteString(";\n")
			trigger.WriteString(stmt)
			if triggerEnd.MatchString(stmt) {
				statements = append(statements, trigger.String())
				trigger.Reset()
			}
			continue
		}
		if triggerStart.MatchString(stmt) && !triggerEnd.MatchString(stmt) {
			trigger.WriteString(stmt)
			continue
		}
		statements = append(statements, stmt)
	}
	if trigger.Len() > 0 {
		statements = append(statements, trigger.String())
	}
	return statements
}

// Executor runs SQL scripts statement by statement against a live connection.
type Executor struct {
	log *zap.Logger
}

func New(log *zap.Logger) *Executor {
	return &Executor{log: log.Named("sqlexec")}
}

// Exec executes every statement of script in order. On the first failing
// statement it issues an explicit ROLLBACK on the same connection, logs the
// failing statement, and returns the error. It never swallows a partial
// script.
func (e *Executor) Exec(ctx context.Context, conn Conn, script string) error {
	for i, stmt := range Split(script) {
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			e.log.Error("script statement failed, rolling back",
				zap.Int("statement_index", i),
				zap.String("statement", stmt),
				zap.Error(err),
			)
			if _, rbErr := conn.ExecContext(ctx, "ROLLBACK"); rbErr != nil {
				e.log.Warn("rollback after failed statement", zap.Error(rbErr))
			}
			return fmt.Errorf("execute statement %d: %w", i, err)
		}
	}
	return nil
}
