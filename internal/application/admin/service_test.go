package admin_test

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/craftline/backoffice/internal/application/admin"
	"github.com/craftline/backoffice/internal/domain/product"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type fakeAccounts struct {
	byEmail map[string]*admin.Account
}

func (f *fakeAccounts) Create(_ context.Context, email, hash string) error {
	if _, ok := f.byEmail[email]; ok {
		return admin.ErrEmailTaken
	}
	f.byEmail[email] = &admin.Account{ID: int64(len(f.byEmail) + 1), Email: email, PasswordHash: hash}
	return nil
}

func (f *fakeAccounts) ByEmail(_ context.Context, email string) (*admin.Account, error) {
	a, ok := f.byEmail[email]
	if !ok {
		return nil, admin.ErrAccountNotFound
	}
	return a, nil
}

type fakeProducts struct {
	byID   map[int64]*product.Product
	nextID int64
}

func (f *fakeProducts) List(_ context.Context) ([]product.Product, error) {
	var out []product.Product
	for _, p := range f.byID {
		out = append(out, *p)
	}
	return out, nil
}

func (f *fakeProducts) Create(_ context.Context, p *product.Product) (int64, error) {
	f.nextID++
	c := *p
	c.ID = f.nextID
	f.byID[f.nextID] = &c
	return f.nextID, nil
}

func (f *fakeProducts) Delete(_ context.Context, id int64) error {
	if _, ok := f.byID[id]; !ok {
		return product.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeProducts) AdjustStock(_ context.Context, id int64, delta int) error {
	p, ok := f.byID[id]
	if !ok {
		return product.ErrNotFound
	}
	p.Stock += delta
	if p.Stock < 0 {
		p.Stock = 0
	}
	return nil
}

type fakeSessions struct {
	byToken map[string]string
	next    int
}

func (f *fakeSessions) Create(_ context.Context, email string) (string, error) {
	f.next++
	token := strings.Repeat("t", f.next)
	f.byToken[token] = email
	return token, nil
}

func (f *fakeSessions) Email(_ context.Context, token string) (string, error) {
	email, ok := f.byToken[token]
	if !ok {
		return "", admin.ErrNoSession
	}
	return email, nil
}

func (f *fakeSessions) Delete(_ context.Context, token string) error {
	delete(f.byToken, token)
	return nil
}

type fakeImages struct {
	saved []string
}

func (f *fakeImages) Save(name string, _ io.Reader) (string, error) {
	f.saved = append(f.saved, name)
	return "/uploads/fixed.png", nil
}

func newService() (*admin.Service, *fakeAccounts, *fakeProducts, *fakeSessions, *fakeImages) {
	accounts := &fakeAccounts{byEmail: make(map[string]*admin.Account)}
	products := &fakeProducts{byID: make(map[int64]*product.Product)}
	sessions := &fakeSessions{byToken: make(map[string]string)}
	images := &fakeImages{}
	svc := admin.NewService(accounts, products, sessions, images, zap.NewNop())
	return svc, accounts, products, sessions, images
}

func TestService_SignUpAndLogIn(t *testing.T) {
	svc, accounts, _, sessions, _ := newService()
	ctx := context.Background()

	require.NoError(t, svc.SignUp(ctx, "ops@example.com", "hunter22"))

	stored := accounts.byEmail["ops@example.com"]
	require.NotNil(t, stored)
	assert.NotEqual(t, "hunter22", stored.PasswordHash, "password must be hashed")
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("hunter22")))

	token, err := svc.LogIn(ctx, "ops@example.com", "hunter22")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	email, err := svc.SessionEmail(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "ops@example.com", email)

	require.NoError(t, svc.LogOut(ctx, token))
	_, err = svc.SessionEmail(ctx, token)
	assert.ErrorIs(t, err, admin.ErrNoSession)
	_ = sessions
}

func TestService_SignUp_Validation(t *testing.T) {
	svc, _, _, _, _ := newService()
	ctx := context.Background()

	assert.ErrorIs(t, svc.SignUp(ctx, "", "pw"), admin.ErrMissingFields)
	assert.ErrorIs(t, svc.SignUp(ctx, "a@b.c", ""), admin.ErrMissingFields)

	require.NoError(t, svc.SignUp(ctx, "a@b.c", "pw123456"))
	assert.ErrorIs(t, svc.SignUp(ctx, "a@b.c", "other"), admin.ErrEmailTaken)
}

func TestService_LogIn_Rejections(t *testing.T) {
	svc, _, _, _, _ := newService()
	ctx := context.Background()
	require.NoError(t, svc.SignUp(ctx, "ops@example.com", "hunter22"))

	_, err := svc.LogIn(ctx, "nobody@example.com", "hunter22")
	assert.ErrorIs(t, err, admin.ErrInvalidCredentials, "unknown email")

	_, err = svc.LogIn(ctx, "ops@example.com", "wrong")
	assert.ErrorIs(t, err, admin.ErrInvalidCredentials, "wrong password")
}

func TestService_CreateProduct(t *testing.T) {
	svc, _, products, _, images := newService()
	ctx := context.Background()

	p, err := svc.CreateProduct(ctx, "Ceramic Mug", 500, "mug.png", strings.NewReader("png-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "/uploads/fixed.png", p.ImagePath)
	assert.Equal(t, []string{"mug.png"}, images.saved)
	assert.Contains(t, products.byID, p.ID)

	_, err = svc.CreateProduct(ctx, "", 500, "x.png", strings.NewReader("b"))
	assert.ErrorIs(t, err, product.ErrInvalidName)

	_, err = svc.CreateProduct(ctx, "Mug", 500, "x.png", nil)
	assert.ErrorIs(t, err, admin.ErrMissingImage)
}

func TestService_AdjustStock(t *testing.T) {
	svc, _, products, _, _ := newService()
	ctx := context.Background()
	products.byID[7] = &product.Product{ID: 7, Name: "Mug", PriceCents: 500, Stock: 1}

	require.NoError(t, svc.AdjustStock(ctx, 7, 3))
	assert.Equal(t, 4, products.byID[7].Stock)

	require.NoError(t, svc.AdjustStock(ctx, 7, -10))
	assert.Equal(t, 0, products.byID[7].Stock, "decrement clamps at zero")

	require.NoError(t, svc.AdjustStock(ctx, 7, 0), "zero delta is a no-op")
	assert.ErrorIs(t, svc.AdjustStock(ctx, 404, 1), product.ErrNotFound)
}
