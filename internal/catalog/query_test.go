package catalog

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"sweetshop/internal/models"
)

func item(id, name string, cat models.Category, price string) models.Item {
	return models.Item{ID: id, Name: name, Category: cat, Price: decimal.RequireFromString(price), Quantity: 1}
}

var fixtures = []models.Item{
	item("1", "Belgian Dark Chocolate", models.CategoryChocolates, "12.99"),
	item("2", "Strawberry Macarons", models.CategoryPastries, "8.50"),
	item("3", "Caramel Fudge", models.CategoryCandies, "6.99"),
	item("4", "Vanilla Bean Cupcake", models.CategoryCakes, "4.50"),
	item("5", "Chocolate Chip Cookies", models.CategoryCookies, "5.00"),
	item("6", "Salted Caramel Truffles", models.CategoryChocolates, "10.00"),
}

func ids(items []models.Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func str(s string) *string { return &s }

func TestFilter_EmptyPredicateKeepsAll(t *testing.T) {
	assert.Equal(t, ids(fixtures), ids(Filter(fixtures, Predicate{})))
}

func TestFilter_PriceWindowInclusive(t *testing.T) {
	got := Filter(fixtures, Predicate{MinPrice: dec("5"), MaxPrice: dec("10")})
	assert.Equal(t, []string{"2", "3", "5", "6"}, ids(got))
}

func TestFilter_NameIsCaseInsensitiveSubstring(t *testing.T) {
	got := Filter(fixtures, Predicate{Name: str("CARAMEL")})
	assert.Equal(t, []string{"3", "6"}, ids(got))

	got = Filter(fixtures, Predicate{Name: str("chip")})
	assert.Equal(t, []string{"5"}, ids(got), "match is not anchored to the start")
}

func TestFilter_CategoryExact(t *testing.T) {
	c := models.CategoryChocolates
	got := Filter(fixtures, Predicate{Category: &c})
	assert.Equal(t, []string{"1", "6"}, ids(got))
}

func TestFilter_Combined(t *testing.T) {
	c := models.CategoryChocolates
	got := Filter(fixtures, Predicate{Name: str("choc"), Category: &c, MaxPrice: dec("12")})
	assert.Empty(t, got)

	got = Filter(fixtures, Predicate{Name: str("choc"), MinPrice: dec("5")})
	assert.Equal(t, []string{"1", "5"}, ids(got))
}

func TestFilter_DoesNotModifyInput(t *testing.T) {
	before := ids(fixtures)
	_ = Filter(fixtures, Predicate{MaxPrice: dec("1")})
	assert.Equal(t, before, ids(fixtures))
}
