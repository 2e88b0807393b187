package repository

import (
	"context"

	"github.com/jhoicas/Pedidos-api/internal/domain/entity"
)

// OrderRepository define el puerto de persistencia para Order (cabecera + líneas).
// GetByID devuelve (nil, nil) si no existe.
type OrderRepository interface {
	Create(ctx context.Context, order *entity.Order) error
	GetByID(ctx context.Context, id string) (*entity.Order, error)
	ListBySeller(ctx context.Context, sellerID string, limit, offset int) ([]*entity.Order, error)
}
