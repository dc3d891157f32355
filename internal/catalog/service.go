package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// ErrInvalidProduct marks a product that failed validation. The wrapped
// message carries the field-level detail.
var ErrInvalidProduct = errors.New("invalid product")

var minPrice = decimal.New(1, -2) // 0.01

type Service interface {
	ListProducts(ctx context.Context, filter ListFilter) ([]Product, error)
	GetProduct(ctx context.Context, id int64) (*Product, error)
	CreateProduct(ctx context.Context, product *Product) error
	UpdateProduct(ctx context.Context, product *Product) error
	DeleteProduct(ctx context.Context, id int64) error
	Categories(ctx context.Context) ([]string, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) ListProducts(ctx context.Context, filter ListFilter) ([]Product, error) {
	products, err := s.repo.List(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to list products")
		return nil, fmt.Errorf("service: failed to list products: %w", err)
	}

	return products, nil
}

func (s *service) GetProduct(ctx context.Context, id int64) (*Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		log.Error().Err(err).Int64("product_id", id).Msg("service: failed to get product")
		return nil, fmt.Errorf("service: failed to get product by id: %w", err)
	}

	return product, nil
}

func (s *service) CreateProduct(ctx context.Context, product *Product) error {
	if err := normalizeAndValidate(product); err != nil {
		return err
	}

	if err := s.repo.Create(ctx, product); err != nil {
		if errors.Is(err, ErrSKUExists) {
			return ErrSKUExists
		}
		log.Error().Err(err).Msg("service: failed to create product")
		return fmt.Errorf("service: failed to create product: %w", err)
	}

	log.Info().Int64("product_id", product.ID).Str("nome", product.Name).Msg("service: product created")
	return nil
}

func (s *service) UpdateProduct(ctx context.Context, product *Product) error {
	if err := normalizeAndValidate(product); err != nil {
		return err
	}

	if err := s.repo.Update(ctx, product); err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrSKUExists) {
			return err
		}
		log.Error().Err(err).Int64("product_id", product.ID).Msg("service: failed to update product")
		return fmt.Errorf("service: failed to update product: %w", err)
	}

	log.Info().Int64("product_id", product.ID).Msg("service: product updated")
	return nil
}

func (s *service) DeleteProduct(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		log.Error().Err(err).Int64("product_id", id).Msg("service: failed to delete product")
		return fmt.Errorf("service: failed to delete product: %w", err)
	}

	log.Info().Int64("product_id", id).Msg("service: product deleted")
	return nil
}

func (s *service) Categories(ctx context.Context) ([]string, error) {
	categories, err := s.repo.Categories(ctx)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to list categories")
		return nil, fmt.Errorf("service: failed to list categories: %w", err)
	}

	return categories, nil
}

func normalizeAndValidate(p *Product) error {
	p.Name = strings.TrimSpace(p.Name)
	p.Category = strings.TrimSpace(p.Category)

	if n := utf8.RuneCountInString(p.Name); n < 3 || n > 60 {
		return fmt.Errorf("%w: nome must be between 3 and 60 characters", ErrInvalidProduct)
	}
	if p.Price.LessThan(minPrice) {
		return fmt.Errorf("%w: preco must be at least 0.01", ErrInvalidProduct)
	}
	if p.Stock < 0 {
		return fmt.Errorf("%w: estoque cannot be negative", ErrInvalidProduct)
	}
	if p.Category == "" {
		return fmt.Errorf("%w: categoria is required", ErrInvalidProduct)
	}

	p.Price = p.Price.Round(2)
	return nil
}
