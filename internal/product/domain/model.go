package domain

// Product is a catalog row. Timestamps are stored as RFC 3339 text, the
// way the store files have always encoded them.
type Product struct {
	ID            string   `json:"id" gorm:"column:id"`
	Name          string   `json:"name"`
	Category      string   `json:"category"`
	Manufacturer  *string  `json:"manufacturer,omitempty"`
	Barcode       *string  `json:"barcode,omitempty"`
	Price         float64  `json:"price"`
	Tax           *float64 `json:"tax,omitempty"`
	IsTaxFlatRate bool     `json:"is_tax_flat_rate"`
	Quantity      int64    `json:"quantity"`
	ImagePath     *string  `json:"image_path,omitempty"`
	Section       *string  `json:"section,omitempty"`
	Shelf         *string  `json:"shelf,omitempty"`
	UserID        *string  `json:"user_id,omitempty"`
	CreatedAt     string   `json:"created_at"`
	UpdatedAt     *string  `json:"updated_at,omitempty"`
	DeletedAt     *string  `json:"deleted_at,omitempty"`
}

func (Product) TableName() string { return "products" }

// StockEvent is one append-only purchase/restock record. Product quantity
// is derived by applying events; events themselves are never rewritten by
// normal flows.
type StockEvent struct {
	ID              string  `json:"id" gorm:"column:id"`
	ProductID       string  `json:"product_id"`
	Supplier        *string `json:"supplier,omitempty"`
	SupplierContact *string `json:"supplier_contact,omitempty"`
	UnitPrice       float64 `json:"unit_price"`
	PurchasePrice   float64 `json:"purchase_price"`
	PurchaseDate    *string `json:"purchase_date,omitempty"`
	ExpiryDate      *string `json:"expiry_date,omitempty"`
	Quantity        int64   `json:"quantity"`
	UserID          *string `json:"user_id,omitempty"`
	CreatedAt       string  `json:"created_at"`
	UpdatedAt       *string `json:"updated_at,omitempty"`
	DeletedAt       *string `json:"deleted_at,omitempty"`
}

func (StockEvent) TableName() string { return "stocks" }
