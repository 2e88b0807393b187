// Package memory implementa los puertos de persistencia en memoria.
// Se usa con STORE_DRIVER=memory (desarrollo local) y en los tests de casos de uso.
package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/jhoicas/Pedidos-api/internal/domain/entity"
)

// Store guarda todas las entidades detrás de un único RWMutex.
// Los repositorios siempre devuelven copias: mutar un resultado no modifica el store.
type Store struct {
	mu       sync.RWMutex
	users    map[string]entity.User
	products map[string]entity.Product
	clients  map[string]entity.Client
	orders   map[string]entity.Order

	// txMu serializa las transacciones de pedidos (modo atomic).
	txMu sync.Mutex
}

// New crea un store vacío.
func New() *Store {
	return &Store{
		users:    make(map[string]entity.User),
		products: make(map[string]entity.Product),
		clients:  make(map[string]entity.Client),
		orders:   make(map[string]entity.Order),
	}
}

// Users repositorio de vendedores.
func (s *Store) Users() *UserRepo { return &UserRepo{s: s} }

// Products repositorio del catálogo.
func (s *Store) Products() *ProductRepo { return &ProductRepo{s: s} }

// Clients repositorio de clientes.
func (s *Store) Clients() *ClientRepo { return &ClientRepo{s: s} }

// Orders repositorio de pedidos.
func (s *Store) Orders() *OrderRepo { return &OrderRepo{s: s} }

// TxRunner runner transaccional para el modo atomic.
func (s *Store) TxRunner() *TxRunner { return &TxRunner{s: s} }

// page ordena por fecha de creación descendente (desempate por id) y aplica limit/offset.
func page[T any](items []T, createdAt func(T) time.Time, id func(T) string, limit, offset int) []T {
	sort.Slice(items, func(i, j int) bool {
		ci, cj := createdAt(items[i]), createdAt(items[j])
		if ci.Equal(cj) {
			return id(items[i]) < id(items[j])
		}
		return ci.After(cj)
	})
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

func copyLines(lines []entity.OrderLine) []entity.OrderLine {
	if lines == nil {
		return nil
	}
	out := make([]entity.OrderLine, len(lines))
	copy(out, lines)
	return out
}
