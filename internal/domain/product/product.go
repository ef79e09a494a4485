package product

import (
	"errors"
	"strings"
)

var (
	ErrNotFound     = errors.New("product: not found")
	ErrInvalidName  = errors.New("product: name is required")
	ErrInvalidPrice = errors.New("product: price must be greater than zero")
)

// Product is a catalog entry. Stock is a non-negative counter mutated by two
// independent writers: the payment workflow (decrements per purchased line)
// and the admin console (manual adjustments). Both apply relative deltas in
// the database so that the counter never goes below zero.
type Product struct {
	ID         int64
	Name       string
	PriceCents int64
	Stock      int
	ImagePath  string
}

func New(name string, priceCents int64, imagePath string) (*Product, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidName
	}
	if priceCents <= 0 {
		return nil, ErrInvalidPrice
	}
	return &Product{
		Name:       name,
		PriceCents: priceCents,
		ImagePath:  imagePath,
	}, nil
}

// ClampDeduct returns the stock remaining after removing qty, floored at zero.
// Mirrors the GREATEST(stock - qty, 0) applied in SQL.
func ClampDeduct(stock, qty int) int {
	if qty >= stock {
		return 0
	}
	return stock - qty
}
