package repository

import (
	"context"

	"github.com/coptimize/openinventory/internal/product/domain"
	"github.com/coptimize/openinventory/pkg/db"
	"gorm.io/gorm"
)

// Provide picks the repository implementation for the store mode the
// process was started in. The two stores differ physically (the
// multi-tenant one carries an owner column on every row), so the split is
// made once at wiring time instead of branching per query.
func Provide(mode db.Mode) domain.Repository {
	if mode == db.ModeMultiTenant {
		return &authRepo{}
	}
	return &repo{}
}

type repo struct{}

func (r *repo) FindByID(ctx context.Context, gdb *gorm.DB, id string) (*domain.Product, error) {
	var p domain.Product
	err := gdb.WithContext(ctx).Raw(
		`SELECT * FROM products WHERE id = ?`, id,
	).Scan(&p).Error
	if err != nil {
		return nil, err
	}
	if p.ID == "" {
		return nil, nil
	}
	return &p, nil
}

func (r *repo) FindByBarcode(ctx context.Context, gdb *gorm.DB, barcode string) (*domain.Product, error) {
	var p domain.Product
	err := gdb.WithContext(ctx).Raw(
		`SELECT * FROM products WHERE barcode = ? AND deleted_at IS NULL`, barcode,
	).Scan(&p).Error
	if err != nil {
		return nil, err
	}
	if p.ID == "" {
		return nil, nil
	}
	return &p, nil
}

func (r *repo) FindAll(ctx context.Context, gdb *gorm.DB, includeDeleted bool) ([]domain.Product, error) {
	query := `SELECT * FROM products WHERE deleted_at IS NULL ORDER BY created_at ASC`
	if includeDeleted {
		query = `SELECT * FROM products ORDER BY created_at ASC`
	}
	var items []domain.Product
	if err := gdb.WithContext(ctx).Raw(query).Scan(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) Create(ctx context.Context, gdb *gorm.DB, p *domain.Product) error {
	return gdb.WithContext(ctx).Exec(
		`INSERT INTO products (id, name, category, manufacturer, barcode, price, tax, is_tax_flat_rate, quantity, image_path, section, shelf, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Category, p.Manufacturer, p.Barcode, p.Price, p.Tax,
		p.IsTaxFlatRate, p.Quantity, p.ImagePath, p.Section, p.Shelf,
		p.CreatedAt, p.UpdatedAt,
	).Error
}

func (r *repo) Update(ctx context.Context, gdb *gorm.DB, p *domain.Product) error {
	return gdb.WithContext(ctx).Exec(
		`UPDATE products
		 SET name = ?, category = ?, manufacturer = ?, barcode = ?, price = ?, tax = ?,
		     is_tax_flat_rate = ?, quantity = ?, image_path = ?, section = ?, shelf = ?, updated_at = ?
		 WHERE id = ?`,
		p.Name, p.Category, p.Manufacturer, p.Barcode, p.Price, p.Tax,
		p.IsTaxFlatRate, p.Quantity, p.ImagePath, p.Section, p.Shelf,
		p.UpdatedAt, p.ID,
	).Error
}

func (r *repo) SoftDelete(ctx context.Context, gdb *gorm.DB, id, deletedAt string, _ *string) error {
	return gdb.WithContext(ctx).Exec(
		`UPDATE products SET deleted_at = ?, updated_at = ? WHERE id = ?`,
		deletedAt, deletedAt, id,
	).Error
}

func (r *repo) Restore(ctx context.Context, gdb *gorm.DB, id, updatedAt string, _ *string) error {
	return gdb.WithContext(ctx).Exec(
		`UPDATE products SET deleted_at = NULL, updated_at = ? WHERE id = ?`,
		updatedAt, id,
	).Error
}

func (r *repo) AddStock(ctx context.Context, gdb *gorm.DB, s *domain.StockEvent) error {
	return gdb.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Exec(
			`INSERT INTO stocks (id, product_id, supplier, supplier_contact, unit_price, purchase_price, purchase_date, expiry_date, quantity, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			s.ID, s.ProductID, s.Supplier, s.SupplierContact, s.UnitPrice,
			s.PurchasePrice, s.PurchaseDate, s.ExpiryDate, s.Quantity,
			s.CreatedAt, s.UpdatedAt,
		).Error
		if err != nil {
			return err
		}
		return tx.Exec(
			`UPDATE products SET quantity = quantity + ?, updated_at = ? WHERE id = ?`,
			s.Quantity, s.CreatedAt, s.ProductID,
		).Error
	})
}

func (r *repo) FindStocks(ctx context.Context, gdb *gorm.DB, productID string) ([]domain.StockEvent, error) {
	var items []domain.StockEvent
	err := gdb.WithContext(ctx).Raw(
		`SELECT * FROM stocks WHERE product_id = ? AND deleted_at IS NULL ORDER BY created_at ASC`,
		productID,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) LatestStock(ctx context.Context, gdb *gorm.DB, productID string) (*domain.StockEvent, error) {
	var s domain.StockEvent
	err := gdb.WithContext(ctx).Raw(
		`SELECT * FROM stocks WHERE product_id = ? AND deleted_at IS NULL ORDER BY created_at DESC, id DESC LIMIT 1`,
		productID,
	).Scan(&s).Error
	if err != nil {
		return nil, err
	}
	if s.ID == "" {
		return nil, nil
	}
	return &s, nil
}

func (r *repo) ApplyMerge(ctx context.Context, gdb *gorm.DB, p *domain.Product, s *domain.StockEvent) error {
	return gdb.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.Update(ctx, tx, p); err != nil {
			return err
		}
		if s == nil {
			return nil
		}
		return tx.Exec(
			`UPDATE stocks SET supplier = ?, purchase_date = ?, expiry_date = ?, updated_at = ? WHERE id = ?`,
			s.Supplier, s.PurchaseDate, s.ExpiryDate, s.UpdatedAt, s.ID,
		).Error
	})
}

// authRepo is the multi-tenant variant. Every write carries the acting
// user in the owner column; the store's triggers refuse the statement when
// that user's role is not allowed to perform it.
type authRepo struct {
	repo
}

func (r *authRepo) Create(ctx context.Context, gdb *gorm.DB, p *domain.Product) error {
	return gdb.WithContext(ctx).Exec(
		`INSERT INTO products (id, name, category, manufacturer, barcode, price, tax, is_tax_flat_rate, quantity, image_path, section, shelf, created_at, updated_at, user_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Category, p.Manufacturer, p.Barcode, p.Price, p.Tax,
		p.IsTaxFlatRate, p.Quantity, p.ImagePath, p.Section, p.Shelf,
		p.CreatedAt, p.UpdatedAt, p.UserID,
	).Error
}

func (r *authRepo) Update(ctx context.Context, gdb *gorm.DB, p *domain.Product) error {
	return gdb.WithContext(ctx).Exec(
		`UPDATE products
		 SET name = ?, category = ?, manufacturer = ?, barcode = ?, price = ?, tax = ?,
		     is_tax_flat_rate = ?, quantity = ?, image_path = ?, section = ?, shelf = ?, updated_at = ?, user_id = ?
		 WHERE id = ?`,
		p.Name, p.Category, p.Manufacturer, p.Barcode, p.Price, p.Tax,
		p.IsTaxFlatRate, p.Quantity, p.ImagePath, p.Section, p.Shelf,
		p.UpdatedAt, p.UserID, p.ID,
	).Error
}

func (r *authRepo) SoftDelete(ctx context.Context, gdb *gorm.DB, id, deletedAt string, actorID *string) error {
	return gdb.WithContext(ctx).Exec(
		`UPDATE products SET deleted_at = ?, updated_at = ?, user_id = ? WHERE id = ?`,
		deletedAt, deletedAt, actorID, id,
	).Error
}

func (r *authRepo) Restore(ctx context.Context, gdb *gorm.DB, id, updatedAt string, actorID *string) error {
	return gdb.WithContext(ctx).Exec(
		`UPDATE products SET deleted_at = NULL, updated_at = ?, user_id = ? WHERE id = ?`,
		updatedAt, actorID, id,
	).Error
}

func (r *authRepo) AddStock(ctx context.Context, gdb *gorm.DB, s *domain.StockEvent) error {
	return gdb.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Exec(
			`INSERT INTO stocks (id, product_id, supplier, supplier_contact, unit_price, purchase_price, purchase_date, expiry_date, quantity, created_at, updated_at, user_id)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			s.ID, s.ProductID, s.Supplier, s.SupplierContact, s.UnitPrice,
			s.PurchasePrice, s.PurchaseDate, s.ExpiryDate, s.Quantity,
			s.CreatedAt, s.UpdatedAt, s.UserID,
		).Error
		if err != nil {
			return err
		}
		return tx.Exec(
			`UPDATE products SET quantity = quantity + ?, updated_at = ?, user_id = ? WHERE id = ?`,
			s.Quantity, s.CreatedAt, s.UserID, s.ProductID,
		).Error
	})
}

func (r *authRepo) ApplyMerge(ctx context.Context, gdb *gorm.DB, p *domain.Product, s *domain.StockEvent) error {
	return gdb.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.Update(ctx, tx, p); err != nil {
			return err
		}
		if s == nil {
			return nil
		}
		return tx.Exec(
			`UPDATE stocks SET supplier = ?, purchase_date = ?, expiry_date = ?, updated_at = ?, user_id = ? WHERE id = ?`,
			s.Supplier, s.PurchaseDate, s.ExpiryDate, s.UpdatedAt, s.UserID, s.ID,
		).Error
	})
}
