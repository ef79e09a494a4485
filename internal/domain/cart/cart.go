package cart

import "errors"

var ErrInvalidQuantity = errors.New("cart: quantity must be greater than zero")

// Line is one purchased (product, quantity) pair, denormalised with the
// catalog name and unit price at the moment the cart was read so that the
// receipt stays stable after the cart is cleared or prices change.
type Line struct {
	ProductID  int64  `json:"product_id"`
	Name       string `json:"name"`
	PriceCents int64  `json:"price_cents"`
	Quantity   int    `json:"quantity"`
}

func (l Line) Validate() error {
	if l.Quantity <= 0 {
		return ErrInvalidQuantity
	}
	return nil
}
