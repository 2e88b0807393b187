package memory

import (
	"context"
	"strings"
	"time"

	"github.com/jhoicas/Pedidos-api/internal/domain"
	"github.com/jhoicas/Pedidos-api/internal/domain/entity"
	"github.com/jhoicas/Pedidos-api/internal/domain/repository"
)

var (
	_ repository.UserRepository    = (*UserRepo)(nil)
	_ repository.ProductRepository = (*ProductRepo)(nil)
	_ repository.ClientRepository  = (*ClientRepo)(nil)
	_ repository.OrderRepository   = (*OrderRepo)(nil)
)

// ── Users ────────────────────────────────────────────────────────────────────

// UserRepo implementación en memoria de UserRepository.
type UserRepo struct{ s *Store }

func (r *UserRepo) Create(_ context.Context, user *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[user.ID]; ok {
		return domain.ErrAlreadyExists
	}
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, user.Email) {
			return domain.ErrAlreadyExists
		}
	}
	r.s.users[user.ID] = *user
	return nil
}

func (r *UserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *UserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, nil
}

// ── Products ─────────────────────────────────────────────────────────────────

// ProductRepo implementación en memoria de ProductRepository.
type ProductRepo struct{ s *Store }

func (r *ProductRepo) Create(_ context.Context, product *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.products[product.ID]; ok {
		return domain.ErrAlreadyExists
	}
	r.s.products[product.ID] = *product
	return nil
}

func (r *ProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

// GetByIDForUpdate sin transacción equivale a GetByID; el bloqueo lo da TxRunner.
func (r *ProductRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.GetByID(ctx, id)
}

func (r *ProductRepo) List(_ context.Context, limit, offset int) ([]*entity.Product, error) {
	r.s.mu.RLock()
	items := make([]entity.Product, 0, len(r.s.products))
	for _, p := range r.s.products {
		items = append(items, p)
	}
	r.s.mu.RUnlock()

	items = page(items,
		func(p entity.Product) time.Time { return p.CreatedAt },
		func(p entity.Product) string { return p.ID },
		limit, offset)
	out := make([]*entity.Product, 0, len(items))
	for i := range items {
		out = append(out, &items[i])
	}
	return out, nil
}

func (r *ProductRepo) Update(_ context.Context, product *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.products[product.ID]; !ok {
		return domain.NewNotFound(domain.EntityProduct, product.ID)
	}
	r.s.products[product.ID] = *product
	return nil
}

func (r *ProductRepo) UpdateStock(_ context.Context, id string, stock int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok {
		return domain.NewNotFound(domain.EntityProduct, id)
	}
	p.Stock = stock
	p.UpdatedAt = time.Now()
	r.s.products[id] = p
	return nil
}

func (r *ProductRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.products, id)
	return nil
}

// ── Clients ──────────────────────────────────────────────────────────────────

// ClientRepo implementación en memoria de ClientRepository.
type ClientRepo struct{ s *Store }

func (r *ClientRepo) Create(_ context.Context, client *entity.Client) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.clients[client.ID]; ok || r.emailTaken(client.Email, "") {
		return domain.ErrAlreadyExists
	}
	r.s.clients[client.ID] = *client
	return nil
}

// emailTaken requiere r.s.mu tomado.
func (r *ClientRepo) emailTaken(email, exceptID string) bool {
	for id, c := range r.s.clients {
		if id != exceptID && strings.EqualFold(c.Email, email) {
			return true
		}
	}
	return false
}

func (r *ClientRepo) GetByID(_ context.Context, id string) (*entity.Client, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.clients[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r *ClientRepo) GetByEmail(_ context.Context, email string) (*entity.Client, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, c := range r.s.clients {
		if strings.EqualFold(c.Email, email) {
			return &c, nil
		}
	}
	return nil, nil
}

func (r *ClientRepo) ListBySeller(_ context.Context, sellerID string, limit, offset int) ([]*entity.Client, error) {
	r.s.mu.RLock()
	var items []entity.Client
	for _, c := range r.s.clients {
		if c.SellerID == sellerID {
			items = append(items, c)
		}
	}
	r.s.mu.RUnlock()

	items = page(items,
		func(c entity.Client) time.Time { return c.CreatedAt },
		func(c entity.Client) string { return c.ID },
		limit, offset)
	out := make([]*entity.Client, 0, len(items))
	for i := range items {
		out = append(out, &items[i])
	}
	return out, nil
}

func (r *ClientRepo) Update(_ context.Context, client *entity.Client) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.clients[client.ID]; !ok {
		return domain.NewNotFound(domain.EntityClient, client.ID)
	}
	if r.emailTaken(client.Email, client.ID) {
		return domain.ErrAlreadyExists
	}
	r.s.clients[client.ID] = *client
	return nil
}

func (r *ClientRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.clients, id)
	return nil
}

// ── Orders ───────────────────────────────────────────────────────────────────

// OrderRepo implementación en memoria de OrderRepository.
type OrderRepo struct{ s *Store }

func (r *OrderRepo) Create(_ context.Context, order *entity.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.orders[order.ID]; ok {
		return domain.ErrAlreadyExists
	}
	o := *order
	o.Lines = copyLines(order.Lines)
	r.s.orders[order.ID] = o
	return nil
}

func (r *OrderRepo) GetByID(_ context.Context, id string) (*entity.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	o, ok := r.s.orders[id]
	if !ok {
		return nil, nil
	}
	o.Lines = copyLines(o.Lines)
	return &o, nil
}

func (r *OrderRepo) ListBySeller(_ context.Context, sellerID string, limit, offset int) ([]*entity.Order, error) {
	r.s.mu.RLock()
	var items []entity.Order
	for _, o := range r.s.orders {
		if o.SellerID == sellerID {
			o.Lines = copyLines(o.Lines)
			items = append(items, o)
		}
	}
	r.s.mu.RUnlock()

	items = page(items,
		func(o entity.Order) time.Time { return o.CreatedAt },
		func(o entity.Order) string { return o.ID },
		limit, offset)
	out := make([]*entity.Order, 0, len(items))
	for i := range items {
		out = append(out, &items[i])
	}
	return out, nil
}
