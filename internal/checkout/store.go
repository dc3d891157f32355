package checkout

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/loja-escolar/backend/internal/catalog"
)

// Store opens checkout transactions. Everything a confirmation reads or
// writes goes through one Tx so the whole operation commits or rolls back as
// a unit.
type Store interface {
	Begin(ctx context.Context) (Tx, error)
}

// Tx is the transactional surface the confirmation workflow needs from the
// catalog and order stores.
type Tx interface {
	// ProductForUpdate reads a product row and locks it until the
	// transaction ends, so concurrent confirmations for the same product
	// serialize on the stock check. Returns catalog.ErrNotFound when the
	// product does not exist.
	ProductForUpdate(ctx context.Context, id int64) (*catalog.Product, error)
	InsertOrder(ctx context.Context, order *Order) error
	InsertOrderLine(ctx context.Context, line *OrderLine) error
	DecrementStock(ctx context.Context, productID int64, quantity int) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

type pgxStore struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) Store {
	return &pgxStore{db: db}
}

func (s *pgxStore) Begin(ctx context.Context) (Tx, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("store: failed to begin transaction: %w", err)
	}
	return &pgxTx{tx: tx}, nil
}

type pgxTx struct {
	tx pgx.Tx
}

func (t *pgxTx) ProductForUpdate(ctx context.Context, id int64) (*catalog.Product, error) {
	query := `
		SELECT id, nome, descricao, preco, estoque, categoria, sku, imagem_filename, criado_em, atualizado_em
		FROM produtos
		WHERE id = $1
		FOR UPDATE
	`

	var p catalog.Product
	err := t.tx.QueryRow(ctx, query, id).Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.Price,
		&p.Stock,
		&p.Category,
		&p.SKU,
		&p.ImageFilename,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrNotFound
		}
		return nil, fmt.Errorf("store: failed to select product %d for update: %w", id, err)
	}

	return &p, nil
}

func (t *pgxTx) InsertOrder(ctx context.Context, order *Order) error {
	query := `
		INSERT INTO pedidos (total_bruto, desconto, total_final, cupom_usado)
		VALUES ($1, $2, $3, $4)
		RETURNING id, data
	`

	err := t.tx.QueryRow(ctx, query,
		order.GrossTotal,
		order.Discount,
		order.NetTotal,
		order.Coupon,
	).Scan(&order.ID, &order.CreatedAt)
	if err != nil {
		return fmt.Errorf("store: failed to insert order: %w", err)
	}

	return nil
}

func (t *pgxTx) InsertOrderLine(ctx context.Context, line *OrderLine) error {
	query := `
		INSERT INTO itens_pedido (pedido_id, produto_id, nome_produto, preco_unitario, quantidade, subtotal)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	err := t.tx.QueryRow(ctx, query,
		line.OrderID,
		line.ProductID,
		line.ProductName,
		line.UnitPrice,
		line.Quantity,
		line.Subtotal,
	).Scan(&line.ID)
	if err != nil {
		return fmt.Errorf("store: failed to insert order line for order %d: %w", line.OrderID, err)
	}

	return nil
}

func (t *pgxTx) DecrementStock(ctx context.Context, productID int64, quantity int) error {
	query := `
		UPDATE produtos
		SET estoque = estoque - $2, atualizado_em = now()
		WHERE id = $1
	`

	cmdTag, err := t.tx.Exec(ctx, query, productID, quantity)
	if err != nil {
		return fmt.Errorf("store: failed to decrement stock for product %d: %w", productID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("store: product %d disappeared during stock decrement", productID)
	}

	return nil
}

func (t *pgxTx) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

func (t *pgxTx) Rollback(ctx context.Context) error {
	return t.tx.Rollback(ctx)
}
