package sqlexec

import (
	"context"
	"database/sql"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestSplitOnSemicolonBeforeNewline(t *testing.T) {
	script := "CREATE TABLE a (id INTEGER);\nINSERT INTO a VALUES (1);\n\nINSERT INTO a VALUES (2);"
	statements := Split(script)
	require.Equal(t, []string{
		"CREATE TABLE a (id INTEGER)",
		"INSERT INTO a VALUES (1)",
		"INSERT INTO a VALUES (2)",
	}, statements)
}

func TestSplitKeepsMidLineSemicolons(t *testing.T) {
	script := "INSERT INTO a VALUES ('x;y'); INSERT INTO a VALUES ('z');\n"
	statements := Split(script)
	require.Len(t, statements, 1)
	require.Contains(t, statements[0], "'x;y'")
	require.Contains(t, statements[0], "'z'")
}

func TestSplitKeepsTriggerBodiesIntact(t *testing.T) {
	script := "CREATE TABLE audit (id INTEGER);\n" +
		"CREATE TRIGGER IF NOT EXISTS deny_inserts\n" +
		"BEFORE INSERT ON audit\n" +
		"BEGIN\n" +
		"    SELECT RAISE(FAIL, 'Permission denied: read only');\n" +
		"END;\n" +
		"CREATE TRIGGER IF NOT EXISTS deny_updates\n" +
		"BEFORE UPDATE ON audit\n" +
		"FOR EACH ROW\n" +
		"BEGIN\n" +
		"    SELECT RAISE(FAIL, 'Permission denied: read only');\n" +
		"END;\n" +
		"INSERT INTO other VALUES (1);\n"
	statements := Split(script)
	require.Len(t, statements, 4)
	for _, stmt := range statements[1:3] {
		require.Contains(t, stmt, "RAISE")
		require.Regexp(t, `END$`, stmt)
	}
	require.Equal(t, "INSERT INTO other VALUES (1)", statements[3])
}

func TestSplitDropsBlankStatements(t *testing.T) {
	require.Empty(t, Split("\n;\n  ;\n"))
	require.Empty(t, Split(""))
}

func openTestConn(t *testing.T) *sql.Conn {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	conn, err := sqlDB.Conn(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func countRows(t *testing.T, conn *sql.Conn, query string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, conn.QueryRowContext(context.Background(), query).Scan(&n))
	return n
}

func TestExecRunsStatementsInOrder(t *testing.T) {
	conn := openTestConn(t)
	exec := New(zap.NewNop())

	script := "CREATE TABLE items (id INTEGER PRIMARY KEY, name TEXT);\n" +
		"INSERT INTO items (name) VALUES ('first');\n" +
		"INSERT INTO items (name) VALUES ('second');\n"
	require.NoError(t, exec.Exec(context.Background(), conn, script))

	require.EqualValues(t, 2, countRows(t, conn, "SELECT count(*) FROM items"))
}

func TestExecCreatedTriggerFires(t *testing.T) {
	conn := openTestConn(t)
	exec := New(zap.NewNop())

	script := "CREATE TABLE items (id INTEGER PRIMARY KEY, name TEXT);\n" +
		"CREATE TRIGGER IF NOT EXISTS deny_items\n" +
		"BEFORE INSERT ON items\n" +
		"WHEN NEW.name = 'blocked'\n" +
		"BEGIN\n" +
		"    SELECT RAISE(FAIL, 'Permission denied: blocked name');\n" +
		"END;\n"
	require.NoError(t, exec.Exec(context.Background(), conn, script))

	_, err := conn.ExecContext(context.Background(), "INSERT INTO items (name) VALUES ('fine')")
	require.NoError(t, err)
	_, err = conn.ExecContext(context.Background(), "INSERT INTO items (name) VALUES ('blocked')")
	require.ErrorContains(t, err, "Permission denied")
}

func TestExecRollsBackOnFailure(t *testing.T) {
	conn := openTestConn(t)
	exec := New(zap.NewNop())

	_, err := conn.ExecContext(context.Background(), "CREATE TABLE items (id INTEGER PRIMARY KEY, name TEXT)")
	require.NoError(t, err)

	_, err = conn.ExecContext(context.Background(), "BEGIN IMMEDIATE")
	require.NoError(t, err)

	script := "INSERT INTO items (name) VALUES ('kept');\n" +
		"INSERT INTO missing_table (name) VALUES ('boom');\n"
	err = exec.Exec(context.Background(), conn, script)
	require.Error(t, err)

	// The explicit ROLLBACK must have undone the first insert.
	require.Zero(t, countRows(t, conn, "SELECT count(*) FROM items"))
}
