package postgres

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Pedidos-api/internal/domain"
	"github.com/jhoicas/Pedidos-api/internal/domain/entity"
	"github.com/jhoicas/Pedidos-api/internal/domain/repository"
	"github.com/jhoicas/Pedidos-api/pkg/config"
)

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.True(t, isUniqueViolation(fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, isUniqueViolation(errors.New("otro error")))
	assert.False(t, isUniqueViolation(nil))
}

func TestResolveIPv4(t *testing.T) {
	ip, err := resolveIPv4(context.Background(), "10.0.0.7")
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.7", ip)

	_, err = resolveIPv4(context.Background(), "::1")
	assert.Error(t, err)
}

func TestDatabaseURLWithIPv4(t *testing.T) {
	assert.Equal(t,
		"postgres://u:p@10.0.0.7:5432/pedidos?sslmode=disable",
		databaseURLWithIPv4("postgres://u:p@10.0.0.7/pedidos?sslmode=disable"),
	)
	// Sin IPv4 se deja la URL intacta.
	assert.Equal(t, "postgres://u:p@[::1]:6543/db", databaseURLWithIPv4("postgres://u:p@[::1]:6543/db"))
	assert.Equal(t, "%%no-es-url", databaseURLWithIPv4("%%no-es-url"))
}

func TestSchemaEmbebido(t *testing.T) {
	for _, table := range []string{"users", "products", "clients", "orders", "order_lines"} {
		assert.Contains(t, schemaSQL, "CREATE TABLE IF NOT EXISTS "+table)
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Integración: requiere PEDIDOS_TEST_DATABASE_URL apuntando a una base desechable.
// ──────────────────────────────────────────────────────────────────────────────

func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	url := os.Getenv("PEDIDOS_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("PEDIDOS_TEST_DATABASE_URL no definido")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	pool, err := NewPool(ctx, config.DBConfig{DatabaseURL: url})
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, EnsureSchema(ctx, pool))
	require.NoError(t, EnsureSchema(ctx, pool), "EnsureSchema debe ser idempotente")
	return pool
}

func seedSeller(t *testing.T, pool *pgxpool.Pool) *entity.User {
	t.Helper()
	id := uuid.New().String()
	u := &entity.User{ID: id, Email: id + "@ventas.com", PasswordHash: "x", Name: "Vendedor"}
	require.NoError(t, NewUserRepository(pool).Create(context.Background(), u))
	return u
}

func seedProduct(t *testing.T, pool *pgxpool.Pool, stock int) *entity.Product {
	t.Helper()
	p := &entity.Product{ID: uuid.New().String(), Name: "Producto", Price: decimal.RequireFromString("2.50"), Stock: stock}
	require.NoError(t, NewProductRepository(pool).Create(context.Background(), p))
	return p
}

func TestIntegration_UsuarioEmailDuplicado(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	u := seedSeller(t, pool)

	err := NewUserRepository(pool).Create(ctx, &entity.User{ID: uuid.New().String(), Email: u.Email, PasswordHash: "x", Name: "Otro"})
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)

	got, err := NewUserRepository(pool).GetByID(ctx, uuid.New().String())
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestIntegration_PedidoConLineasEnOrden(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	seller := seedSeller(t, pool)
	p1, p2 := seedProduct(t, pool, 5), seedProduct(t, pool, 5)
	repo := NewOrderRepository(pool)

	lines := []entity.OrderLine{
		{ProductID: p2.ID, Quantity: 1, UnitPrice: p2.Price},
		{ProductID: p1.ID, Quantity: 3, UnitPrice: p1.Price},
	}
	o := &entity.Order{
		ID: uuid.New().String(), SellerID: seller.ID, ClientID: "C1", Lines: lines,
		Total: entity.ComputeTotal(lines), Status: entity.OrderStatusPending, CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, repo.Create(ctx, o))

	got, err := repo.GetByID(ctx, o.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Len(t, got.Lines, 2)
	assert.Equal(t, p2.ID, got.Lines[0].ProductID)
	assert.Equal(t, p1.ID, got.Lines[1].ProductID)
	assert.True(t, got.Total.Equal(decimal.RequireFromString("10.00")))

	list, err := repo.ListBySeller(ctx, seller.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Len(t, list[0].Lines, 2)
}

func TestIntegration_TxRunnerRevierteStock(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	p := seedProduct(t, pool, 4)
	boom := errors.New("falla")

	err := NewTxRunner(pool).RunOrder(ctx, func(products repository.ProductRepository, _ repository.OrderRepository) error {
		locked, err := products.GetByIDForUpdate(ctx, p.ID)
		if err != nil {
			return err
		}
		if err := products.UpdateStock(ctx, p.ID, locked.Stock-3); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := NewProductRepository(pool).GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, got.Stock)
}

func TestIntegration_UpdateStockProductoInexistente(t *testing.T) {
	pool := testPool(t)
	err := NewProductRepository(pool).UpdateStock(context.Background(), uuid.New().String(), 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
