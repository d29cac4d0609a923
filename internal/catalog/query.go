// Package catalog filters item snapshots for search.
package catalog

import (
	"strings"

	"github.com/shopspring/decimal"

	"sweetshop/internal/models"
)

// Predicate describes a search. Nil fields impose no constraint.
type Predicate struct {
	// Name matches as a case-insensitive substring of the item name.
	Name     *string
	Category *models.Category
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
}

func (p Predicate) Match(item models.Item) bool {
	if p.Name != nil && *p.Name != "" {
		if !strings.Contains(strings.ToLower(item.Name), strings.ToLower(*p.Name)) {
			return false
		}
	}
	if p.Category != nil && *p.Category != "" && item.Category != *p.Category {
		return false
	}
	if p.MinPrice != nil && item.Price.LessThan(*p.MinPrice) {
		return false
	}
	if p.MaxPrice != nil && item.Price.GreaterThan(*p.MaxPrice) {
		return false
	}
	return true
}

// Filter returns the items matching p, keeping their order.
func Filter(items []models.Item, p Predicate) []models.Item {
	out := make([]models.Item, 0, len(items))
	for _, item := range items {
		if p.Match(item) {
			out = append(out, item)
		}
	}
	return out
}
