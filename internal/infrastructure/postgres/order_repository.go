package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Pedidos-api/internal/domain"
	"github.com/jhoicas/Pedidos-api/internal/domain/entity"
	"github.com/jhoicas/Pedidos-api/internal/domain/repository"
)

var _ repository.OrderRepository = (*OrderRepo)(nil)

// OrderRepo implementación de OrderRepository (cabecera en orders, líneas en order_lines).
type OrderRepo struct {
	q Querier
}

// NewOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewOrderRepository(q Querier) *OrderRepo {
	return &OrderRepo{q: q}
}

// Create persiste cabecera y líneas en un solo batch (transacción implícita fuera de TxRunner).
func (r *OrderRepo) Create(ctx context.Context, o *entity.Order) error {
	batch := &pgx.Batch{}
	batch.Queue(`
		INSERT INTO orders (id, seller_id, client_id, total, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		o.ID, o.SellerID, o.ClientID, o.Total, o.Status, o.CreatedAt,
	)
	for i, l := range o.Lines {
		batch.Queue(`
			INSERT INTO order_lines (order_id, position, product_id, quantity, unit_price)
			VALUES ($1, $2, $3, $4, $5)`,
			o.ID, i, l.ProductID, l.Quantity, l.UnitPrice,
		)
	}
	if err := r.q.SendBatch(ctx, batch).Close(); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyExists
		}
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

// GetByID obtiene un pedido con sus líneas.
func (r *OrderRepo) GetByID(ctx context.Context, id string) (*entity.Order, error) {
	var o entity.Order
	err := r.q.QueryRow(ctx,
		`SELECT id, seller_id, client_id, total, status, created_at FROM orders WHERE id = $1`, id,
	).Scan(&o.ID, &o.SellerID, &o.ClientID, &o.Total, &o.Status, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	byOrder, err := r.linesFor(ctx, []string{o.ID})
	if err != nil {
		return nil, err
	}
	o.Lines = byOrder[o.ID]
	return &o, nil
}

// ListBySeller lista pedidos de un vendedor, más recientes primero, con sus líneas.
func (r *OrderRepo) ListBySeller(ctx context.Context, sellerID string, limit, offset int) ([]*entity.Order, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, seller_id, client_id, total, status, created_at
		FROM orders WHERE seller_id = $1
		ORDER BY created_at DESC, id LIMIT $2 OFFSET $3`,
		sellerID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	var (
		list []*entity.Order
		ids  []string
	)
	for rows.Next() {
		var o entity.Order
		if err := rows.Scan(&o.ID, &o.SellerID, &o.ClientID, &o.Total, &o.Status, &o.CreatedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan order: %w", err)
		}
		list = append(list, &o)
		ids = append(ids, o.ID)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	if len(ids) == 0 {
		return list, nil
	}
	byOrder, err := r.linesFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, o := range list {
		o.Lines = byOrder[o.ID]
	}
	return list, nil
}

func (r *OrderRepo) linesFor(ctx context.Context, orderIDs []string) (map[string][]entity.OrderLine, error) {
	rows, err := r.q.Query(ctx, `
		SELECT order_id, product_id, quantity, unit_price
		FROM order_lines WHERE order_id = ANY($1)
		ORDER BY order_id, position`,
		orderIDs,
	)
	if err != nil {
		return nil, fmt.Errorf("list order lines: %w", err)
	}
	defer rows.Close()
	out := make(map[string][]entity.OrderLine, len(orderIDs))
	for rows.Next() {
		var (
			orderID string
			l       entity.OrderLine
		)
		if err := rows.Scan(&orderID, &l.ProductID, &l.Quantity, &l.UnitPrice); err != nil {
			return nil, fmt.Errorf("scan order line: %w", err)
		}
		out[orderID] = append(out[orderID], l)
	}
	return out, rows.Err()
}
