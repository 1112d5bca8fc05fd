package merge

import (
	"testing"

	"github.com/coptimize/openinventory/internal/analysis"
	productdomain "github.com/coptimize/openinventory/internal/product/domain"
	"github.com/stretchr/testify/require"
)

func strptr(s string) *string { return &s }

func TestRequired(t *testing.T) {
	tests := []struct {
		name      string
		existing  string
		candidate *string
		want      string
	}{
		{"blank candidate keeps existing", "Cola", strptr("  "), "Cola"},
		{"nil candidate keeps existing", "Cola", nil, "Cola"},
		{"blank existing takes candidate", "", strptr("Sprite"), "Sprite"},
		{"placeholder existing takes candidate", "New Product", strptr("Sprite"), "Sprite"},
		{"placeholder is case-insensitive", "new product", strptr("Sprite"), "Sprite"},
		{"case-insensitive agreement keeps existing verbatim", "Fanta", strptr("FANTA"), "Fanta"},
		{"disagreement appends candidate", "Cola", strptr("Coca-Cola Classic"), "Cola [Coca-Cola Classic]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Required(tt.existing, tt.candidate))
		})
	}
}

func TestOptional(t *testing.T) {
	require.Nil(t, Optional(nil, nil))
	require.Equal(t, "acme", *Optional(nil, strptr("acme")))
	require.Equal(t, "acme", *Optional(strptr("acme"), nil))
	require.Equal(t, "acme", *Optional(strptr("acme"), strptr("ACME")))
	require.Equal(t, "acme [globex]", *Optional(strptr("acme"), strptr("globex")))
}

func TestApplyAllowList(t *testing.T) {
	p := &productdomain.Product{
		Name:     "New Product",
		Category: "",
		Price:    9.99,
		Quantity: 42,
	}
	s := &productdomain.StockEvent{
		PurchaseDate: strptr("2024-01-01"),
	}
	Apply(p, s, &analysis.Inference{
		Name:           strptr("Coca-Cola Classic"),
		Category:       strptr("drinks"),
		Manufacturer:   strptr("The Coca-Cola Company"),
		Barcode:        strptr("5449000000996"),
		ProductionDate: strptr("2023-12-01"),
		ExpiryDate:     strptr("2025-01-01"),
	})

	require.Equal(t, "Coca-Cola Classic", p.Name)
	require.Equal(t, "drinks", p.Category)
	require.Equal(t, "The Coca-Cola Company", *p.Manufacturer)
	require.Equal(t, "5449000000996", *p.Barcode)

	// Never touched by discovery.
	require.Equal(t, 9.99, p.Price)
	require.EqualValues(t, 42, p.Quantity)

	require.Equal(t, "2024-01-01 [2023-12-01]", *s.PurchaseDate)
	require.Equal(t, "2025-01-01", *s.ExpiryDate)
}

func TestApplyWithoutStock(t *testing.T) {
	p := &productdomain.Product{Name: "Cola"}
	Apply(p, nil, &analysis.Inference{Name: strptr("Cola")})
	require.Equal(t, "Cola", p.Name)
}

func TestApplyNilInference(t *testing.T) {
	p := &productdomain.Product{Name: "Cola"}
	Apply(p, nil, nil)
	require.Equal(t, "Cola", p.Name)
}
