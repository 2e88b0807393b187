package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un artículo del catálogo global (sin dueño).
// Stock es la existencia disponible; nunca debe quedar negativa tras una mutación confirmada.
type Product struct {
	ID        string
	Name      string
	Price     decimal.Decimal // precio de venta
	Stock     int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasStock indica si hay existencia suficiente para la cantidad pedida.
func (p *Product) HasStock(quantity int) bool {
	return quantity <= p.Stock
}
