package domain

import "github.com/shopspring/decimal"

// Product categories match the two catalog screens of the mobile app.
const (
	CategoryPizzas = "pizzas"
	CategoryDrinks = "drinks"
)

type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	ImageRef    string          `json:"image_ref"`
	Category    string          `json:"category"`
}

// Key identifies a product within a cart. Carts merge lines by product
// name rather than by id, so the same pizza added from two screens still
// collapses into one line.
func (p Product) Key() string {
	return p.Name
}
