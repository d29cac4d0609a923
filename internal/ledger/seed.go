package ledger

import (
	"github.com/shopspring/decimal"

	"sweetshop/internal/models"
)

func StarterCatalog() []models.ItemSpec {
	return []models.ItemSpec{
		starter("Belgian Dark Chocolate", models.CategoryChocolates, "12.99", 25, "Rich, velvety dark chocolate imported from Belgium"),
		starter("Strawberry Macarons", models.CategoryPastries, "8.50", 15, "Delicate French macarons with strawberry filling"),
		starter("Caramel Fudge", models.CategoryCandies, "6.99", 40, "Handmade buttery caramel fudge squares"),
		starter("Vanilla Bean Cupcake", models.CategoryCakes, "4.50", 0, "Fluffy vanilla cupcake with buttercream frosting"),
		starter("Chocolate Chip Cookies", models.CategoryCookies, "3.99", 50, "Classic homemade cookies with premium chocolate chips"),
		starter("Mango Sorbet", models.CategoryIceCream, "5.99", 20, "Refreshing tropical mango sorbet"),
		starter("Gulab Jamun", models.CategoryTraditional, "7.50", 30, "Classic Indian sweet dumplings in rose syrup"),
		starter("Salted Caramel Truffles", models.CategoryChocolates, "14.99", 3, "Luxurious truffles with sea salt caramel center"),
	}
}

func starter(name string, category models.Category, price string, qty int, desc string) models.ItemSpec {
	return models.ItemSpec{
		Name:        name,
		Category:    category,
		Price:       decimal.RequireFromString(price),
		Quantity:    qty,
		Description: &desc,
	}
}
