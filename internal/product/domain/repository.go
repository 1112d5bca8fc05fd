package domain

import (
	"context"

	"gorm.io/gorm"
)

// Repository has one implementation per store mode; the multi-tenant one
// carries the owning user through every write so the ownership triggers can
// gate it.
type Repository interface {
	Create(ctx context.Context, db *gorm.DB, product *Product) error
	FindByID(ctx context.Context, db *gorm.DB, id string) (*Product, error)
	FindByBarcode(ctx context.Context, db *gorm.DB, barcode string) (*Product, error)
	FindAll(ctx context.Context, db *gorm.DB, includeDeleted bool) ([]Product, error)
	Update(ctx context.Context, db *gorm.DB, product *Product) error
	SoftDelete(ctx context.Context, db *gorm.DB, id, deletedAt string, actorID *string) error
	Restore(ctx context.Context, db *gorm.DB, id, updatedAt string, actorID *string) error

	AddStock(ctx context.Context, db *gorm.DB, stock *StockEvent) error
	FindStocks(ctx context.Context, db *gorm.DB, productID string) ([]StockEvent, error)
	LatestStock(ctx context.Context, db *gorm.DB, productID string) (*StockEvent, error)

	// ApplyMerge updates a product and, when stock is non-nil, its stock
	// event in one transaction.
	ApplyMerge(ctx context.Context, db *gorm.DB, product *Product, stock *StockEvent) error
}
