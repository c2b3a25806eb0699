// Package catalog serves the fixed product list shown by the shop pages.
package catalog

import (
	"errors"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

var ErrProductNotFound = errors.New("product not found")

type Product struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Image       string  `json:"image"`
}

// Item is the snapshot of p handed to the cart and wishlist.
func (p Product) Item() domain.Item {
	return domain.Item{ID: p.ID, Name: p.Name, Price: p.Price, Image: p.Image}
}

type Catalog struct {
	products []Product
	byID     map[string]int
}

func New(products []Product) *Catalog {
	c := &Catalog{byID: make(map[string]int, len(products))}
	for _, p := range products {
		if _, dup := c.byID[p.ID]; dup {
			continue
		}
		c.byID[p.ID] = len(c.products)
		c.products = append(c.products, p)
	}
	return c
}

// Default returns the catalog bundled with the storefront.
func Default() *Catalog {
	return New(defaultProducts)
}

func (c *Catalog) List() []Product {
	out := make([]Product, len(c.products))
	copy(out, c.products)
	return out
}

func (c *Catalog) Get(id string) (Product, error) {
	i, ok := c.byID[id]
	if !ok {
		return Product{}, ErrProductNotFound
	}
	return c.products[i], nil
}

var defaultProducts = []Product{
	{ID: "p1", Name: "Classic T-Shirt", Description: "Heavyweight cotton tee", Price: 19.99, Image: "/images/t-shirt.png"},
	{ID: "p2", Name: "Crew Socks", Description: "Pack of three", Price: 5.00, Image: "/images/socks.png"},
	{ID: "p3", Name: "Canvas Tote", Description: "Reinforced handles", Price: 14.50, Image: "/images/tote.png"},
	{ID: "p4", Name: "Ceramic Mug", Description: "350 ml, dishwasher safe", Price: 12.00, Image: "/images/mug.png"},
	{ID: "p5", Name: "Baseball Cap", Description: "Adjustable strap", Price: 22.75, Image: "/images/cap.png"},
	{ID: "p6", Name: "Hoodie", Description: "Brushed fleece lining", Price: 49.90, Image: "/images/hoodie.png"},
	{ID: "p7", Name: "Sticker Pack", Description: "Ten vinyl stickers", Price: 3.25, Image: "/images/stickers.png"},
	{ID: "p8", Name: "Water Bottle", Description: "Insulated steel, 750 ml", Price: 27.00, Image: "/images/bottle.png"},
}
