package domain

// Item is the plain product literal a page hands to the cart or wishlist.
// It is copied, never joined back to the catalog.
type Item struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Image string  `json:"image"`
}

// CartItem is one cart line. Price is the unit price at the time the line
// was first added; Quantity is never persisted below 1.
type CartItem struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Image    string  `json:"image"`
	Quantity int     `json:"quantity"`
}

func NewCartItem(item Item, quantity int) CartItem {
	return CartItem{
		ID:       item.ID,
		Name:     item.Name,
		Price:    item.Price,
		Image:    item.Image,
		Quantity: quantity,
	}
}

// Valid reports whether a decoded line satisfies the persisted invariants.
func (c CartItem) Valid() bool {
	return c.ID != "" && c.Quantity >= 1 && c.Price >= 0
}
