package usecase_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Pedidos-api/internal/application/dto"
	"github.com/jhoicas/Pedidos-api/internal/application/usecase"
	"github.com/jhoicas/Pedidos-api/internal/domain"
	"github.com/jhoicas/Pedidos-api/internal/domain/entity"
	"github.com/jhoicas/Pedidos-api/internal/domain/identity"
	"github.com/jhoicas/Pedidos-api/internal/infrastructure/memory"
)

func as(sellerID string) context.Context {
	return identity.WithIdentity(context.Background(), identity.Identity{ID: sellerID})
}

func ptr[T any](v T) *T { return &v }

// ──────────────────────────────────────────────────────────────────────────────
// Productos
// ──────────────────────────────────────────────────────────────────────────────

func TestProductUseCase_CRUD(t *testing.T) {
	ctx := context.Background()
	uc := usecase.NewProductUseCase(memory.New().Products())

	created, err := uc.Create(ctx, dto.CreateProductRequest{Name: "  Café  ", Price: decimal.RequireFromString("12.50"), Stock: 4})
	require.NoError(t, err)
	assert.Equal(t, "Café", created.Name)

	got, err := uc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, got.Stock)

	updated, err := uc.Update(ctx, created.ID, dto.UpdateProductRequest{Stock: ptr(10)})
	require.NoError(t, err)
	assert.Equal(t, 10, updated.Stock)
	assert.Equal(t, "Café", updated.Name, "los campos no enviados se conservan")

	list, err := uc.List(ctx, dto.PageRequest{Limit: 500})
	require.NoError(t, err)
	assert.Len(t, list.Items, 1)
	assert.Equal(t, 100, list.Page.Limit)

	require.NoError(t, uc.Delete(ctx, created.ID))
	_, err = uc.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, uc.Delete(ctx, created.ID), domain.ErrNotFound)
}

func TestProductUseCase_Validaciones(t *testing.T) {
	ctx := context.Background()
	uc := usecase.NewProductUseCase(memory.New().Products())

	_, err := uc.Create(ctx, dto.CreateProductRequest{Name: " ", Price: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Create(ctx, dto.CreateProductRequest{Name: "x", Price: decimal.NewFromInt(-1)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	p, err := uc.Create(ctx, dto.CreateProductRequest{Name: "x", Price: decimal.NewFromInt(1), Stock: 1})
	require.NoError(t, err)
	_, err = uc.Update(ctx, p.ID, dto.UpdateProductRequest{Stock: ptr(-3)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Update(ctx, "nope", dto.UpdateProductRequest{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Clientes
// ──────────────────────────────────────────────────────────────────────────────

func TestClientUseCase_CreaConDuenoDelToken(t *testing.T) {
	uc := usecase.NewClientUseCase(memory.New().Clients())

	c, err := uc.Create(as("S1"), dto.CreateClientRequest{Name: "Ana", Email: "ANA@Correo.com"})
	require.NoError(t, err)
	assert.Equal(t, "S1", c.SellerID)
	assert.Equal(t, "ana@correo.com", c.Email)

	_, err = uc.Create(as("S2"), dto.CreateClientRequest{Name: "Otra", Email: "ana@correo.com"})
	assert.ErrorIs(t, err, domain.ErrAlreadyExists, "el email de cliente es único global")

	_, err = uc.Create(context.Background(), dto.CreateClientRequest{Name: "x", Email: "x@y.com"})
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	_, err = uc.Create(as("S1"), dto.CreateClientRequest{Name: "x", Email: "no-es-email"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestClientUseCase_Propiedad(t *testing.T) {
	uc := usecase.NewClientUseCase(memory.New().Clients())
	c, err := uc.Create(as("S1"), dto.CreateClientRequest{Name: "Ana", Email: "ana@correo.com"})
	require.NoError(t, err)

	_, err = uc.GetByID(as("S2"), c.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = uc.Update(as("S2"), c.ID, dto.UpdateClientRequest{Phone: ptr("555")})
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.ErrorIs(t, uc.Delete(as("S2"), c.ID), domain.ErrForbidden)

	_, err = uc.GetByID(as("S2"), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound, "NotFound antes que Forbidden")

	updated, err := uc.Update(as("S1"), c.ID, dto.UpdateClientRequest{Phone: ptr("555")})
	require.NoError(t, err)
	assert.Equal(t, "555", updated.Phone)
	assert.Equal(t, "S1", updated.SellerID)

	require.NoError(t, uc.Delete(as("S1"), c.ID))
	_, err = uc.GetByID(as("S1"), c.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestClientUseCase_ListMine(t *testing.T) {
	uc := usecase.NewClientUseCase(memory.New().Clients())
	for _, email := range []string{"a@x.com", "b@x.com"} {
		_, err := uc.Create(as("S1"), dto.CreateClientRequest{Name: "c", Email: email})
		require.NoError(t, err)
	}
	_, err := uc.Create(as("S2"), dto.CreateClientRequest{Name: "c", Email: "z@x.com"})
	require.NoError(t, err)

	list, err := uc.ListMine(as("S1"), dto.PageRequest{})
	require.NoError(t, err)
	assert.Len(t, list.Items, 2)
	for _, c := range list.Items {
		assert.Equal(t, "S1", c.SellerID)
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Usuarios
// ──────────────────────────────────────────────────────────────────────────────

func TestUserUseCase_Me(t *testing.T) {
	s := memory.New()
	require.NoError(t, s.Users().Create(context.Background(), &entity.User{ID: "S1", Email: "s1@x.com", Name: "Sofía"}))
	uc := usecase.NewUserUseCase(s.Users())

	me, err := uc.Me(as("S1"))
	require.NoError(t, err)
	assert.Equal(t, "Sofía", me.Name)

	_, err = uc.Me(as("borrado"))
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = uc.Me(context.Background())
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}
