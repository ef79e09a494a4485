package admin

import (
	"context"
	"io"

	"github.com/craftline/backoffice/internal/domain/product"
)

// Account is a back-office operator. PasswordHash is a bcrypt digest.
type Account struct {
	ID           int64
	Email        string
	PasswordHash string
}

type AccountRepository interface {
	// Create fails with ErrEmailTaken when the email is already registered.
	Create(ctx context.Context, email, passwordHash string) error
	ByEmail(ctx context.Context, email string) (*Account, error)
}

type ProductRepository interface {
	List(ctx context.Context) ([]product.Product, error)
	Create(ctx context.Context, p *product.Product) (int64, error)
	// Delete removes the product together with its cart and order-item
	// references so the row can go without tripping foreign keys.
	Delete(ctx context.Context, id int64) error
	// AdjustStock applies a relative delta, floored at zero on the way down.
	AdjustStock(ctx context.Context, id int64, delta int) error
}

// SessionStore issues and resolves opaque admin session tokens.
type SessionStore interface {
	Create(ctx context.Context, email string) (token string, err error)
	Email(ctx context.Context, token string) (string, error)
	Delete(ctx context.Context, token string) error
}

// ImageStore persists uploaded product images and returns the public path
// stored on the product row.
type ImageStore interface {
	Save(originalName string, r io.Reader) (path string, err error)
}
