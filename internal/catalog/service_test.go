package catalog_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loja-escolar/backend/internal/catalog"
)

type mockRepository struct {
	listFunc       func(ctx context.Context, filter catalog.ListFilter) ([]catalog.Product, error)
	getByIDFunc    func(ctx context.Context, id int64) (*catalog.Product, error)
	createFunc     func(ctx context.Context, p *catalog.Product) error
	updateFunc     func(ctx context.Context, p *catalog.Product) error
	deleteFunc     func(ctx context.Context, id int64) error
	categoriesFunc func(ctx context.Context) ([]string, error)
}

func (m *mockRepository) List(ctx context.Context, filter catalog.ListFilter) ([]catalog.Product, error) {
	return m.listFunc(ctx, filter)
}

func (m *mockRepository) GetByID(ctx context.Context, id int64) (*catalog.Product, error) {
	return m.getByIDFunc(ctx, id)
}

func (m *mockRepository) Create(ctx context.Context, p *catalog.Product) error {
	return m.createFunc(ctx, p)
}

func (m *mockRepository) Update(ctx context.Context, p *catalog.Product) error {
	return m.updateFunc(ctx, p)
}

func (m *mockRepository) Delete(ctx context.Context, id int64) error {
	return m.deleteFunc(ctx, id)
}

func (m *mockRepository) Categories(ctx context.Context) ([]string, error) {
	return m.categoriesFunc(ctx)
}

func validProduct() *catalog.Product {
	return &catalog.Product{
		Name:     "Caderno Universitário",
		Price:    decimal.RequireFromString("10.00"),
		Stock:    5,
		Category: "papelaria",
	}
}

func TestService_CreateProduct_Validation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(p *catalog.Product)
		wantErr bool
	}{
		{name: "valid", mutate: func(p *catalog.Product) {}, wantErr: false},
		{name: "name_too_short", mutate: func(p *catalog.Product) { p.Name = "ab" }, wantErr: true},
		{name: "name_too_long", mutate: func(p *catalog.Product) {
			long := make([]rune, 61)
			for i := range long {
				long[i] = 'a'
			}
			p.Name = string(long)
		}, wantErr: true},
		{name: "name_only_spaces", mutate: func(p *catalog.Product) { p.Name = "     " }, wantErr: true},
		{name: "name_trimmed_to_valid", mutate: func(p *catalog.Product) { p.Name = "  Caderno  " }, wantErr: false},
		{name: "zero_price", mutate: func(p *catalog.Product) { p.Price = decimal.Zero }, wantErr: true},
		{name: "negative_price", mutate: func(p *catalog.Product) { p.Price = decimal.RequireFromString("-1.00") }, wantErr: true},
		{name: "minimum_price", mutate: func(p *catalog.Product) { p.Price = decimal.RequireFromString("0.01") }, wantErr: false},
		{name: "negative_stock", mutate: func(p *catalog.Product) { p.Stock = -1 }, wantErr: true},
		{name: "zero_stock", mutate: func(p *catalog.Product) { p.Stock = 0 }, wantErr: false},
		{name: "empty_category", mutate: func(p *catalog.Product) { p.Category = "  " }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockRepository{
				createFunc: func(ctx context.Context, p *catalog.Product) error {
					p.ID = 1
					return nil
				},
			}
			svc := catalog.NewService(repo)

			p := validProduct()
			tt.mutate(p)

			err := svc.CreateProduct(context.Background(), p)
			if tt.wantErr {
				assert.ErrorIs(t, err, catalog.ErrInvalidProduct)
			} else {
				require.NoError(t, err)
				assert.Equal(t, int64(1), p.ID)
			}
		})
	}
}

func TestService_CreateProduct_TrimsAndRounds(t *testing.T) {
	var stored *catalog.Product
	repo := &mockRepository{
		createFunc: func(ctx context.Context, p *catalog.Product) error {
			stored = p
			return nil
		},
	}
	svc := catalog.NewService(repo)

	p := validProduct()
	p.Name = "  Caderno  "
	p.Category = "  papelaria  "
	p.Price = decimal.RequireFromString("10.005")

	require.NoError(t, svc.CreateProduct(context.Background(), p))
	require.NotNil(t, stored)
	assert.Equal(t, "Caderno", stored.Name)
	assert.Equal(t, "papelaria", stored.Category)
	assert.True(t, stored.Price.Equal(decimal.RequireFromString("10.01")), "price = %s", stored.Price)
}

func TestService_CreateProduct_SKUConflict(t *testing.T) {
	repo := &mockRepository{
		createFunc: func(ctx context.Context, p *catalog.Product) error {
			return catalog.ErrSKUExists
		},
	}
	svc := catalog.NewService(repo)

	err := svc.CreateProduct(context.Background(), validProduct())
	assert.ErrorIs(t, err, catalog.ErrSKUExists)
}

func TestService_GetProduct_NotFound(t *testing.T) {
	repo := &mockRepository{
		getByIDFunc: func(ctx context.Context, id int64) (*catalog.Product, error) {
			return nil, catalog.ErrNotFound
		},
	}
	svc := catalog.NewService(repo)

	_, err := svc.GetProduct(context.Background(), 99)
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestService_Categories(t *testing.T) {
	repo := &mockRepository{
		categoriesFunc: func(ctx context.Context) ([]string, error) {
			return []string{"escrita", "papelaria"}, nil
		},
	}
	svc := catalog.NewService(repo)

	categories, err := svc.Categories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"escrita", "papelaria"}, categories)
}
