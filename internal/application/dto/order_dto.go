package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderLineRequest línea del pedido: producto y cantidad (> 0).
type OrderLineRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// PlaceOrderRequest entrada para crear un pedido.
type PlaceOrderRequest struct {
	ClientID string             `json:"client_id"`
	Lines    []OrderLineRequest `json:"lines"`
}

// OrderLineResponse línea persistida.
type OrderLineResponse struct {
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// OrderResponse salida de un pedido.
type OrderResponse struct {
	ID        string              `json:"id"`
	SellerID  string              `json:"seller_id"`
	ClientID  string              `json:"client_id"`
	Lines     []OrderLineResponse `json:"lines"`
	Total     decimal.Decimal     `json:"total"`
	Status    string              `json:"status"`
	CreatedAt time.Time           `json:"created_at"`
}

// OrderListResponse lista paginada de pedidos del vendedor.
type OrderListResponse struct {
	Items []OrderResponse `json:"items"`
	Page  PageResponse    `json:"page"`
}
