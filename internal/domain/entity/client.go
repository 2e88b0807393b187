package entity

import "time"

// Client representa un contacto comercial. Pertenece exclusivamente al vendedor que lo creó (SellerID).
type Client struct {
	ID        string
	Name      string
	Surname   string
	Company   string
	Email     string // único
	Phone     string
	SellerID  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// OwnedBy indica si el cliente pertenece al vendedor.
func (c *Client) OwnedBy(sellerID string) bool {
	return c.SellerID == sellerID
}
