package entity

import "time"

// User representa un vendedor registrado. Se crea por auto-registro y no se elimina en el flujo normal.
type User struct {
	ID           string
	Email        string // único, siempre en minúsculas
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	Name         string
	Surname      string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
