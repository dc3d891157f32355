package checkout

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartLine is one requested product/quantity pair. Carts are transient: they
// exist only for the duration of a confirmation request and are never stored.
type CartLine struct {
	ProductID int64
	Quantity  int
}

type Cart struct {
	Items  []CartLine
	Coupon string
}

// Order is the persisted result of a confirmed cart. Immutable once written.
type Order struct {
	ID         int64
	GrossTotal decimal.Decimal
	Discount   decimal.Decimal
	NetTotal   decimal.Decimal
	Coupon     *string
	CreatedAt  time.Time
}

// OrderLine snapshots one purchased product. Name and unit price are copied
// at confirmation time so later catalog edits do not rewrite history.
type OrderLine struct {
	ID          int64
	OrderID     int64
	ProductID   int64
	ProductName string
	UnitPrice   decimal.Decimal
	Quantity    int
	Subtotal    decimal.Decimal
}

// OrderSummary is the client-facing shape of a confirmed order.
type OrderSummary struct {
	ID         int64           `json:"id"`
	GrossTotal decimal.Decimal `json:"total_bruto"`
	Discount   decimal.Decimal `json:"desconto"`
	NetTotal   decimal.Decimal `json:"total_final"`
	Coupon     *string         `json:"cupom_usado"`
	Date       time.Time       `json:"data"`
	Items      []SummaryLine   `json:"itens"`
}

type SummaryLine struct {
	ProductID int64           `json:"produto_id"`
	Name      string          `json:"nome"`
	UnitPrice decimal.Decimal `json:"preco_unitario"`
	Quantity  int             `json:"quantidade"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}
