// Package merge folds analysis results into user-entered product data
// without ever silently discarding what the user typed.
package merge

import (
	"fmt"
	"strings"

	"github.com/coptimize/openinventory/internal/analysis"
	productdomain "github.com/coptimize/openinventory/internal/product/domain"
)

// placeholder is the throwaway name quick-capture flows assign before the
// product is identified.
const placeholder = "New Product"

// Required merges a mandatory field. User text always survives: when the
// two sides disagree the candidate is appended in brackets rather than
// replacing anything.
func Required(existing string, candidate *string) string {
	if candidate == nil || strings.TrimSpace(*candidate) == "" {
		return existing
	}
	c := *candidate
	if strings.TrimSpace(existing) == "" || strings.EqualFold(existing, placeholder) {
		return c
	}
	if strings.EqualFold(existing, c) {
		return existing
	}
	return fmt.Sprintf("%s [%s]", existing, c)
}

// Optional merges a nullable field with the same disagreement rule.
func Optional(existing, candidate *string) *string {
	if candidate == nil || strings.TrimSpace(*candidate) == "" {
		return existing
	}
	if existing == nil || strings.TrimSpace(*existing) == "" {
		return candidate
	}
	if strings.EqualFold(*existing, *candidate) {
		return existing
	}
	merged := fmt.Sprintf("%s [%s]", *existing, *candidate)
	return &merged
}

// Apply folds an inference into the product and, when present, its stock
// event. Only identity-ish fields are touched: price and quantity stay
// user-controlled no matter what the analysis claims.
func Apply(p *productdomain.Product, s *productdomain.StockEvent, inf *analysis.Inference) {
	if inf == nil {
		return
	}
	p.Name = Required(p.Name, inf.Name)
	p.Category = Required(p.Category, inf.Category)
	p.Manufacturer = Optional(p.Manufacturer, inf.Manufacturer)
	p.Barcode = Optional(p.Barcode, inf.Barcode)

	if s != nil {
		s.PurchaseDate = Optional(s.PurchaseDate, inf.ProductionDate)
		s.ExpiryDate = Optional(s.ExpiryDate, inf.ExpiryDate)
	}
}
