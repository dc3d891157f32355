package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a catalog entry. Price is an exact decimal with two fractional
// digits; Stock never goes below zero.
type Product struct {
	ID            int64           `json:"id" db:"id"`
	Name          string          `json:"nome" db:"nome"`
	Description   *string         `json:"descricao,omitempty" db:"descricao"`
	Price         decimal.Decimal `json:"preco" db:"preco"`
	Stock         int             `json:"estoque" db:"estoque"`
	Category      string          `json:"categoria" db:"categoria"`
	SKU           *string         `json:"sku,omitempty" db:"sku"`
	ImageFilename *string         `json:"imagem_filename,omitempty" db:"imagem_filename"`
	CreatedAt     time.Time       `json:"criado_em" db:"criado_em"`
	UpdatedAt     time.Time       `json:"atualizado_em" db:"atualizado_em"`
}

// ListFilter narrows and orders a product listing. SortBy accepts "nome" or
// "preco"; SortOrder accepts "asc" or "desc". Unknown values fall back to
// sorting by name ascending.
type ListFilter struct {
	Search    string
	Category  string
	SortBy    string
	SortOrder string
}
