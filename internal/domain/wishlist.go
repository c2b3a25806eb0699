package domain

type WishlistItem struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Image string  `json:"image"`
}

func NewWishlistItem(item Item) WishlistItem {
	return WishlistItem{
		ID:    item.ID,
		Name:  item.Name,
		Price: item.Price,
		Image: item.Image,
	}
}

func (w WishlistItem) Valid() bool {
	return w.ID != ""
}
