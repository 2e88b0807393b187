package memory

import (
	"context"

	"github.com/jhoicas/Pedidos-api/internal/domain/entity"
	"github.com/jhoicas/Pedidos-api/internal/domain/repository"
)

// TxRunner ejecuta callbacks como una transacción en memoria: serializa con txMu,
// registra el valor previo de cada producto modificado y lo restaura si fn falla.
// Los pedidos creados dentro de la transacción solo se escriben al confirmar.
type TxRunner struct {
	s *Store
}

// RunOrder ejecuta fn con repositorios atados a la transacción y hace commit o rollback.
func (r *TxRunner) RunOrder(ctx context.Context, fn func(
	productRepo repository.ProductRepository,
	orderRepo repository.OrderRepository,
) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.txMu.Lock()
	defer r.s.txMu.Unlock()

	products := &txProductRepo{ProductRepo: r.s.Products(), undo: make(map[string]entity.Product)}
	orders := &txOrderRepo{OrderRepo: r.s.Orders()}

	if err := fn(products, orders); err != nil {
		products.rollback()
		return err
	}
	for i := range orders.pending {
		if err := orders.OrderRepo.Create(ctx, &orders.pending[i]); err != nil {
			products.rollback()
			return err
		}
	}
	return nil
}

type txProductRepo struct {
	*ProductRepo
	undo map[string]entity.Product
}

func (r *txProductRepo) remember(ctx context.Context, id string) error {
	if _, seen := r.undo[id]; seen {
		return nil
	}
	p, err := r.ProductRepo.GetByID(ctx, id)
	if err != nil || p == nil {
		return err
	}
	r.undo[id] = *p
	return nil
}

func (r *txProductRepo) Update(ctx context.Context, product *entity.Product) error {
	if err := r.remember(ctx, product.ID); err != nil {
		return err
	}
	return r.ProductRepo.Update(ctx, product)
}

func (r *txProductRepo) UpdateStock(ctx context.Context, id string, stock int) error {
	if err := r.remember(ctx, id); err != nil {
		return err
	}
	return r.ProductRepo.UpdateStock(ctx, id, stock)
}

func (r *txProductRepo) rollback() {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, prev := range r.undo {
		r.s.products[id] = prev
	}
}

type txOrderRepo struct {
	*OrderRepo
	pending []entity.Order
}

func (r *txOrderRepo) Create(_ context.Context, order *entity.Order) error {
	o := *order
	o.Lines = copyLines(order.Lines)
	r.pending = append(r.pending, o)
	return nil
}

func (r *txOrderRepo) GetByID(ctx context.Context, id string) (*entity.Order, error) {
	for i := range r.pending {
		if r.pending[i].ID == id {
			o := r.pending[i]
			o.Lines = copyLines(o.Lines)
			return &o, nil
		}
	}
	return r.OrderRepo.GetByID(ctx, id)
}
