// Package identity define la identidad del vendedor autenticado y cómo viaja por
// context.Context hasta los casos de uso.
package identity

import "context"

// Identity vendedor resuelto a partir de un token válido.
type Identity struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Surname string `json:"surname"`
}

type ctxKey struct{}

// WithIdentity devuelve un ctx que transporta la identidad.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext devuelve la identidad del ctx; ok es false si no hay o si no tiene ID.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(Identity)
	if !ok || id.ID == "" {
		return Identity{}, false
	}
	return id, true
}
