package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de un pedido. En este núcleo solo existe PENDING (no hay edición ni cancelación).
const (
	OrderStatusPending = "PENDING"
)

// OrderLine representa una línea del pedido: producto, cantidad y precio unitario al momento de validar.
type OrderLine struct {
	ProductID string
	Quantity  int
	UnitPrice decimal.Decimal
}

// Subtotal cantidad * precio unitario.
func (l OrderLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Order representa un pedido de un vendedor para uno de sus clientes. Inmutable tras crearse.
type Order struct {
	ID        string
	SellerID  string
	ClientID  string
	Lines     []OrderLine
	Total     decimal.Decimal
	Status    string
	CreatedAt time.Time
}

// OwnedBy indica si el pedido fue creado por el vendedor.
func (o *Order) OwnedBy(sellerID string) bool {
	return o.SellerID == sellerID
}

// ComputeTotal suma los subtotales de las líneas.
func ComputeTotal(lines []OrderLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Subtotal())
	}
	return total
}
