package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/craftline/backoffice/internal/application/admin"

	"github.com/lib/pq"
)

// AccountRepository implements admin.AccountRepository.
type AccountRepository struct {
	db *sql.DB
}

func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) Create(ctx context.Context, email, passwordHash string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO admin_users (email, password_hash) VALUES ($1, $2)`,
		email, passwordHash)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
		return admin.ErrEmailTaken
	}
	return err
}

func (r *AccountRepository) ByEmail(ctx context.Context, email string) (*admin.Account, error) {
	var a admin.Account
	err := r.db.QueryRowContext(ctx,
		`SELECT id, email, password_hash FROM admin_users WHERE email = $1`, email).
		Scan(&a.ID, &a.Email, &a.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, admin.ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}
