package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/coptimize/openinventory/internal/clock"
	"github.com/coptimize/openinventory/internal/product/domain"
	"github.com/coptimize/openinventory/internal/product/repository"
	"github.com/coptimize/openinventory/internal/schema"
	"github.com/coptimize/openinventory/internal/sqlexec"
	"github.com/coptimize/openinventory/pkg/db"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	superadminID = "user-super"
	staffID      = "user-staff"
)

func newService(t *testing.T, mode db.Mode) (domain.Service, *db.Store) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "store.db")
	if mode == db.ModeMultiTenant {
		seedAuthStore(t, path)
	}

	store, err := db.Open(path, mode, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	svc := New(Params{
		Store: store,
		Log:   zap.NewNop(),
		Clock: clock.NewFakeClock(time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)),
		Repo:  repository.Provide(mode),
	})
	return svc, store
}

// seedAuthStore builds a multi-tenant store the way migration does: schema,
// then users, then triggers. The trigger set makes the first user impossible
// to insert afterwards.
func seedAuthStore(t *testing.T, path string) {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(db.DSN(path)), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	defer sqlDB.Close()

	conn, err := sqlDB.Conn(context.Background())
	require.NoError(t, err)
	defer conn.Close()

	exec := sqlexec.New(zap.NewNop())
	require.NoError(t, exec.Exec(context.Background(), conn, schema.MultiTenant()))

	_, err = conn.ExecContext(context.Background(),
		`INSERT INTO users (id, username, password_hash, role, created_at) VALUES (?, 'root', 'x', 'superadmin', '2024-01-01T00:00:00Z')`,
		superadminID,
	)
	require.NoError(t, err)
	_, err = conn.ExecContext(context.Background(),
		`INSERT INTO users (id, username, password_hash, role, creator_user_id, created_at) VALUES (?, 'clerk', 'x', 'staff', ?, '2024-01-01T00:00:00Z')`,
		staffID, superadminID,
	)
	require.NoError(t, err)

	require.NoError(t, exec.Exec(context.Background(), conn, schema.OwnershipTriggers()))
}

func strptr(s string) *string { return &s }

func TestCreateAndGet(t *testing.T) {
	svc, _ := newService(t, db.ModeSingleTenant)
	ctx := context.Background()

	created, err := svc.Create(ctx, domain.CreateRequest{
		Name:     "Cola",
		Category: "drinks",
		Barcode:  strptr("111"),
		Price:    1.5,
		Quantity: 5,
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "Cola", got.Name)
	require.Equal(t, "drinks", got.Category)
	require.EqualValues(t, 5, got.Quantity)
}

func TestCreateValidation(t *testing.T) {
	svc, _ := newService(t, db.ModeSingleTenant)
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.CreateRequest{Name: "  "})
	require.ErrorIs(t, err, domain.ErrInvalidName)

	_, err = svc.Create(ctx, domain.CreateRequest{Name: "Cola", Price: -1})
	require.ErrorIs(t, err, domain.ErrInvalidPrice)

	_, err = svc.Create(ctx, domain.CreateRequest{Name: "Cola", Quantity: -1})
	require.ErrorIs(t, err, domain.ErrInvalidQuantity)
}

func TestCreateRejectsDuplicateBarcode(t *testing.T) {
	svc, _ := newService(t, db.ModeSingleTenant)
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.CreateRequest{Name: "Cola", Barcode: strptr("111")})
	require.NoError(t, err)

	_, err = svc.Create(ctx, domain.CreateRequest{Name: "Other", Barcode: strptr("111")})
	require.ErrorIs(t, err, domain.ErrBarcodeTaken)
}

func TestUpdateUnknownProduct(t *testing.T) {
	svc, _ := newService(t, db.ModeSingleTenant)

	_, err := svc.Update(context.Background(), domain.UpdateRequest{ID: "missing", Name: strptr("x")})
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSoftDeleteAndRestore(t *testing.T) {
	svc, _ := newService(t, db.ModeSingleTenant)
	ctx := context.Background()

	created, err := svc.Create(ctx, domain.CreateRequest{Name: "Cola"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID, nil))

	visible, err := svc.List(ctx, false)
	require.NoError(t, err)
	require.Empty(t, visible)

	all, err := svc.List(ctx, true)
	require.NoError(t, err)
	require.Len(t, all, 1)

	restored, err := svc.Restore(ctx, created.ID, nil)
	require.NoError(t, err)
	require.Nil(t, restored.DeletedAt)
}

func TestAddStockBumpsQuantity(t *testing.T) {
	svc, _ := newService(t, db.ModeSingleTenant)
	ctx := context.Background()

	created, err := svc.Create(ctx, domain.CreateRequest{Name: "Cola", Quantity: 5})
	require.NoError(t, err)

	_, err = svc.AddStock(ctx, domain.AddStockRequest{
		ProductID:     created.ID,
		Quantity:      10,
		UnitPrice:     1.5,
		PurchasePrice: 1.0,
	})
	require.NoError(t, err)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	require.EqualValues(t, 15, got.Quantity)

	stocks, err := svc.Stocks(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, stocks, 1)
}

func TestAddStockRejectsNonPositiveQuantity(t *testing.T) {
	svc, _ := newService(t, db.ModeSingleTenant)

	_, err := svc.AddStock(context.Background(), domain.AddStockRequest{ProductID: "p", Quantity: 0})
	require.ErrorIs(t, err, domain.ErrInvalidQuantity)
}

func TestAuthModeCreateIsRoleGated(t *testing.T) {
	svc, _ := newService(t, db.ModeMultiTenant)
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.CreateRequest{Name: "Cola", ActorID: strptr(staffID)})
	require.ErrorIs(t, err, domain.ErrPermissionDenied)

	created, err := svc.Create(ctx, domain.CreateRequest{Name: "Cola", ActorID: strptr(superadminID)})
	require.NoError(t, err)
	require.Equal(t, superadminID, *created.UserID)
}

func TestAuthModeStaffMayUpdateButNotStock(t *testing.T) {
	svc, _ := newService(t, db.ModeMultiTenant)
	ctx := context.Background()

	created, err := svc.Create(ctx, domain.CreateRequest{Name: "Cola", ActorID: strptr(superadminID)})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, domain.UpdateRequest{
		ID:      created.ID,
		Name:    strptr("Cola Zero"),
		ActorID: strptr(staffID),
	})
	require.NoError(t, err)
	require.Equal(t, "Cola Zero", updated.Name)

	_, err = svc.AddStock(ctx, domain.AddStockRequest{
		ProductID: created.ID,
		Quantity:  5,
		ActorID:   strptr(staffID),
	})
	require.ErrorIs(t, err, domain.ErrPermissionDenied)
}

func TestAuthModeRejectsUnknownActor(t *testing.T) {
	svc, _ := newService(t, db.ModeMultiTenant)

	_, err := svc.Create(context.Background(), domain.CreateRequest{Name: "Cola", ActorID: strptr("ghost")})
	require.ErrorIs(t, err, domain.ErrPermissionDenied)
}
