package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/loja-escolar/backend/internal/catalog"
)

// CouponCode is the single recognized discount code. Matching is
// case-insensitive; the applied code is always recorded in this exact form.
const CouponCode = "ALUNO10"

var discountRate = decimal.New(1, -1) // 10%

type Service interface {
	// ConfirmCart validates the cart against the catalog, computes totals
	// and the coupon discount, and persists the order, its line items and
	// the stock decrements as one atomic transaction. Either everything is
	// written or nothing is.
	ConfirmCart(ctx context.Context, cart Cart) (*OrderSummary, error)
}

type service struct {
	store Store
}

func NewService(store Store) Service {
	return &service{store: store}
}

type pricedLine struct {
	product  *catalog.Product
	quantity int
	subtotal decimal.Decimal
}

func (s *service) ConfirmCart(ctx context.Context, cart Cart) (summary *OrderSummary, err error) {
	if len(cart.Items) == 0 {
		return nil, ErrEmptyCart
	}
	for _, item := range cart.Items {
		if item.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
	}

	tx, err := s.store.Begin(ctx)
	if err != nil {
		log.Error().Err(err).Msg("checkout: failed to begin transaction")
		return nil, fmt.Errorf("checkout: failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				log.Error().Err(rbErr).Msg("checkout: failed to rollback transaction")
			}
		}
	}()

	// Validation phase. Every product row is read under a row lock, in cart
	// order, stopping at the first missing or under-stocked line. No write
	// happens until every line has passed.
	lines := make([]pricedLine, 0, len(cart.Items))
	gross := decimal.Zero

	for _, item := range cart.Items {
		product, lookupErr := tx.ProductForUpdate(ctx, item.ProductID)
		if lookupErr != nil {
			if errors.Is(lookupErr, catalog.ErrNotFound) {
				err = &ProductNotFoundError{ProductID: item.ProductID}
				return nil, err
			}
			log.Error().Err(lookupErr).Int64("product_id", item.ProductID).Msg("checkout: failed to read product")
			err = fmt.Errorf("checkout: failed to read product %d: %w", item.ProductID, lookupErr)
			return nil, err
		}

		if product.Stock < item.Quantity {
			err = &InsufficientStockError{
				ProductName: product.Name,
				Available:   product.Stock,
				Requested:   item.Quantity,
			}
			return nil, err
		}

		subtotal := product.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		gross = gross.Add(subtotal)
		lines = append(lines, pricedLine{product: product, quantity: item.Quantity, subtotal: subtotal})
	}

	discount := decimal.Zero
	var coupon *string
	if strings.EqualFold(strings.TrimSpace(cart.Coupon), CouponCode) {
		discount = gross.Mul(discountRate).Round(2)
		code := CouponCode
		coupon = &code
	}
	net := gross.Sub(discount)

	// Write phase.
	order := &Order{
		GrossTotal: gross,
		Discount:   discount,
		NetTotal:   net,
		Coupon:     coupon,
	}
	if err = tx.InsertOrder(ctx, order); err != nil {
		log.Error().Err(err).Msg("checkout: failed to insert order")
		return nil, err
	}

	summaryItems := make([]SummaryLine, 0, len(lines))
	for _, line := range lines {
		orderLine := &OrderLine{
			OrderID:     order.ID,
			ProductID:   line.product.ID,
			ProductName: line.product.Name,
			UnitPrice:   line.product.Price,
			Quantity:    line.quantity,
			Subtotal:    line.subtotal,
		}
		if err = tx.InsertOrderLine(ctx, orderLine); err != nil {
			log.Error().Err(err).Int64("order_id", order.ID).Msg("checkout: failed to insert order line")
			return nil, err
		}
		if err = tx.DecrementStock(ctx, line.product.ID, line.quantity); err != nil {
			log.Error().Err(err).Int64("order_id", order.ID).Msg("checkout: failed to decrement stock")
			return nil, err
		}

		summaryItems = append(summaryItems, SummaryLine{
			ProductID: line.product.ID,
			Name:      line.product.Name,
			UnitPrice: line.product.Price,
			Quantity:  line.quantity,
			Subtotal:  line.subtotal,
		})
	}

	if err = tx.Commit(ctx); err != nil {
		log.Error().Err(err).Int64("order_id", order.ID).Msg("checkout: failed to commit transaction")
		return nil, fmt.Errorf("checkout: failed to commit transaction: %w", err)
	}

	log.Info().
		Int64("order_id", order.ID).
		Str("total_final", net.StringFixed(2)).
		Msg("checkout: order confirmed")

	return &OrderSummary{
		ID:         order.ID,
		GrossTotal: gross,
		Discount:   discount,
		NetTotal:   net,
		Coupon:     coupon,
		Date:       order.CreatedAt,
		Items:      summaryItems,
	}, nil
}
