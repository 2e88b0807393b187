package order

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Pedidos-api/internal/domain/entity"
	"github.com/jhoicas/Pedidos-api/internal/domain/identity"
	"github.com/jhoicas/Pedidos-api/internal/domain/repository"
)

// Modos de aplicación del stock.
const (
	// ModeSequential descuenta y confirma cada línea antes de evaluar la siguiente.
	// Si la línea k falla, las líneas 1..k-1 quedan descontadas (sin rollback).
	ModeSequential = "sequential"
	// ModeAtomic corre todas las líneas y el alta del pedido dentro de TxRunner: todo o nada.
	ModeAtomic = "atomic"
)

// TxRunner ejecuta fn dentro de una transacción con repositorios atados a ella.
// Si fn devuelve error se hace rollback de todo lo escrito.
type TxRunner interface {
	RunOrder(ctx context.Context, fn func(
		productRepo repository.ProductRepository,
		orderRepo repository.OrderRepository,
	) error) error
}

// OrderPlacedEvent evento emitido después de persistir un pedido.
type OrderPlacedEvent struct {
	OrderID  string            `json:"order_id"`
	SellerID string            `json:"seller_id"`
	ClientID string            `json:"client_id"`
	Lines    []OrderPlacedLine `json:"lines"`
	Total    decimal.Decimal   `json:"total"`
	PlacedAt time.Time         `json:"placed_at"`
}

// OrderPlacedLine línea del evento.
type OrderPlacedLine struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// EventPublisher publica eventos de pedidos hacia un broker.
type EventPublisher interface {
	PublishOrderPlaced(ctx context.Context, event OrderPlacedEvent) error
}

// ReceiptLine línea del comprobante con el nombre del producto resuelto.
type ReceiptLine struct {
	ProductName string
	Quantity    int
	UnitPrice   decimal.Decimal
	Subtotal    decimal.Decimal
}

// ReceiptData datos necesarios para generar el comprobante de un pedido.
type ReceiptData struct {
	Order  *entity.Order
	Client *entity.Client
	Seller identity.Identity
	Lines  []ReceiptLine
}

// ReceiptGenerator genera el comprobante (PDF) de un pedido.
type ReceiptGenerator interface {
	GenerateOrderReceipt(ctx context.Context, data ReceiptData) ([]byte, error)
}

func newOrderPlacedEvent(o *entity.Order) OrderPlacedEvent {
	lines := make([]OrderPlacedLine, 0, len(o.Lines))
	for _, l := range o.Lines {
		lines = append(lines, OrderPlacedLine{ProductID: l.ProductID, Quantity: l.Quantity})
	}
	return OrderPlacedEvent{
		OrderID:  o.ID,
		SellerID: o.SellerID,
		ClientID: o.ClientID,
		Lines:    lines,
		Total:    o.Total,
		PlacedAt: o.CreatedAt,
	}
}
