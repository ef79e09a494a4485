package admin

import (
	"context"
	"errors"
	"io"

	"github.com/craftline/backoffice/internal/domain/product"
	"github.com/craftline/backoffice/internal/pkg/logging"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEmailTaken         = errors.New("admin: email already registered")
	ErrInvalidCredentials = errors.New("admin: invalid email or password")
	ErrNoSession          = errors.New("admin: session not found")
	ErrAccountNotFound    = errors.New("admin: account not found")
	ErrMissingFields      = errors.New("admin: email and password are required")
	ErrMissingImage       = errors.New("admin: product image is required")
)

const bcryptCost = 10

// Service backs the admin console: operator accounts, sessions, and catalog
// management. Plain request/response plumbing; the transactional rigor lives
// in the fulfillment package.
type Service struct {
	accounts AccountRepository
	products ProductRepository
	sessions SessionStore
	images   ImageStore
	log      *zap.Logger
}

func NewService(
	accounts AccountRepository,
	products ProductRepository,
	sessions SessionStore,
	images ImageStore,
	logger *zap.Logger,
) *Service {
	return &Service{
		accounts: accounts,
		products: products,
		sessions: sessions,
		images:   images,
		log:      logger.With(zap.String("component", "admin")),
	}
}

func (s *Service) SignUp(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return ErrMissingFields
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return err
	}
	if err := s.accounts.Create(ctx, email, string(hash)); err != nil {
		return err
	}
	logging.FromContext(ctx).Info("admin_signed_up", zap.String("email", email))
	return nil
}

// LogIn validates credentials and issues a session token.
func (s *Service) LogIn(ctx context.Context, email, password string) (string, error) {
	account, err := s.accounts.ByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)) != nil {
		return "", ErrInvalidCredentials
	}
	token, err := s.sessions.Create(ctx, account.Email)
	if err != nil {
		return "", err
	}
	logging.FromContext(ctx).Info("admin_logged_in", zap.String("email", email))
	return token, nil
}

func (s *Service) LogOut(ctx context.Context, token string) error {
	return s.sessions.Delete(ctx, token)
}

// SessionEmail resolves a session token; used by the auth middleware.
func (s *Service) SessionEmail(ctx context.Context, token string) (string, error) {
	return s.sessions.Email(ctx, token)
}

func (s *Service) ListProducts(ctx context.Context) ([]product.Product, error) {
	return s.products.List(ctx)
}

func (s *Service) CreateProduct(ctx context.Context, name string, priceCents int64, imageName string, image io.Reader) (*product.Product, error) {
	if image == nil {
		return nil, ErrMissingImage
	}
	path, err := s.images.Save(imageName, image)
	if err != nil {
		return nil, err
	}
	p, err := product.New(name, priceCents, path)
	if err != nil {
		return nil, err
	}
	id, err := s.products.Create(ctx, p)
	if err != nil {
		return nil, err
	}
	p.ID = id
	logging.FromContext(ctx).Info("product_created",
		zap.Int64("product_id", id),
		zap.String("name", p.Name),
	)
	return p, nil
}

func (s *Service) DeleteProduct(ctx context.Context, id int64) error {
	if err := s.products.Delete(ctx, id); err != nil {
		return err
	}
	logging.FromContext(ctx).Info("product_deleted", zap.Int64("product_id", id))
	return nil
}

// AdjustStock applies a manual relative stock change. Decrements clamp at
// zero in the store, matching the payment workflow's policy.
func (s *Service) AdjustStock(ctx context.Context, id int64, delta int) error {
	if delta == 0 {
		return nil
	}
	if err := s.products.AdjustStock(ctx, id, delta); err != nil {
		return err
	}
	logging.FromContext(ctx).Info("stock_adjusted",
		zap.Int64("product_id", id),
		zap.Int("delta", delta),
	)
	return nil
}
