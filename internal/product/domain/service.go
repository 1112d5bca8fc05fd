package domain

import (
	"context"
	"errors"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Product, error)
	Get(ctx context.Context, id string) (*Product, error)
	List(ctx context.Context, includeDeleted bool) ([]Product, error)
	Update(ctx context.Context, req UpdateRequest) (*Product, error)
	Delete(ctx context.Context, id string, actorID *string) error
	Restore(ctx context.Context, id string, actorID *string) (*Product, error)

	AddStock(ctx context.Context, req AddStockRequest) (*StockEvent, error)
	Stocks(ctx context.Context, productID string) ([]StockEvent, error)
}

type CreateRequest struct {
	Name          string   `json:"name"`
	Category      string   `json:"category"`
	Manufacturer  *string  `json:"manufacturer"`
	Barcode       *string  `json:"barcode"`
	Price         float64  `json:"price"`
	Tax           *float64 `json:"tax"`
	IsTaxFlatRate bool     `json:"is_tax_flat_rate"`
	Quantity      int64    `json:"quantity"`
	ImagePath     *string  `json:"image_path"`
	Section       *string  `json:"section"`
	Shelf         *string  `json:"shelf"`
	ActorID       *string  `json:"actor_id"`
}

type UpdateRequest struct {
	ID            string   `json:"-"`
	Name          *string  `json:"name"`
	Category      *string  `json:"category"`
	Manufacturer  *string  `json:"manufacturer"`
	Barcode       *string  `json:"barcode"`
	Price         *float64 `json:"price"`
	Tax           *float64 `json:"tax"`
	IsTaxFlatRate *bool    `json:"is_tax_flat_rate"`
	Quantity      *int64   `json:"quantity"`
	ImagePath     *string  `json:"image_path"`
	Section       *string  `json:"section"`
	Shelf         *string  `json:"shelf"`
	ActorID       *string  `json:"actor_id"`
}

type AddStockRequest struct {
	ProductID       string  `json:"-"`
	Supplier        *string `json:"supplier"`
	SupplierContact *string `json:"supplier_contact"`
	UnitPrice       float64 `json:"unit_price"`
	PurchasePrice   float64 `json:"purchase_price"`
	PurchaseDate    *string `json:"purchase_date"`
	ExpiryDate      *string `json:"expiry_date"`
	Quantity        int64   `json:"quantity"`
	ActorID         *string `json:"actor_id"`
}

var (
	ErrInvalidName      = errors.New("invalid_name")
	ErrInvalidPrice     = errors.New("invalid_price")
	ErrInvalidQuantity  = errors.New("invalid_quantity")
	ErrNotFound         = errors.New("not_found")
	ErrBarcodeTaken     = errors.New("barcode_taken")
	ErrPermissionDenied = errors.New("permission_denied")
)
