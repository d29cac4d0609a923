package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Category string

const (
	CategoryChocolates  Category = "chocolates"
	CategoryCandies     Category = "candies"
	CategoryCookies     Category = "cookies"
	CategoryCakes       Category = "cakes"
	CategoryPastries    Category = "pastries"
	CategoryIceCream    Category = "ice-cream"
	CategoryTraditional Category = "traditional"
)

// Categories lists every category in display order.
var Categories = []Category{
	CategoryChocolates,
	CategoryCandies,
	CategoryCookies,
	CategoryCakes,
	CategoryPastries,
	CategoryIceCream,
	CategoryTraditional,
}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// LowStockThreshold is the highest positive quantity still reported as low stock.
const LowStockThreshold = 5

type Item struct {
	ID          string
	Name        string
	Category    Category
	Price       decimal.Decimal
	Quantity    int
	Description *string
	ImageRef    *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (i Item) InStock() bool {
	return i.Quantity > 0
}

// LowStock is true for items that still sell but are at or under threshold.
func (i Item) LowStock(threshold int) bool {
	return i.Quantity > 0 && i.Quantity <= threshold
}

// ItemSpec carries the fields of a new item.
type ItemSpec struct {
	Name        string
	Category    Category
	Price       decimal.Decimal
	Quantity    int
	Description *string
	ImageRef    *string
}

// ItemPatch carries a partial edit. Nil fields are left unchanged.
type ItemPatch struct {
	Name        *string
	Category    *Category
	Price       *decimal.Decimal
	Quantity    *int
	Description *string
	ImageRef    *string
}

func (p ItemPatch) Empty() bool {
	return p.Name == nil && p.Category == nil && p.Price == nil &&
		p.Quantity == nil && p.Description == nil && p.ImageRef == nil
}
