package order_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/jhoicas/Pedidos-api/internal/application/dto"
	"github.com/jhoicas/Pedidos-api/internal/application/order"
	"github.com/jhoicas/Pedidos-api/internal/domain"
	"github.com/jhoicas/Pedidos-api/internal/domain/entity"
	"github.com/jhoicas/Pedidos-api/internal/domain/identity"
	"github.com/jhoicas/Pedidos-api/internal/infrastructure/memory"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	sellerS1 = "S1"
	sellerS2 = "S2"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []order.OrderPlacedEvent
	err    error
}

func (p *recordingPublisher) PublishOrderPlaced(_ context.Context, ev order.OrderPlacedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

type fixture struct {
	store *memory.Store
	pub   *recordingPublisher
	uc    *order.PlaceOrderUseCase
}

func newFixture(t *testing.T, mode string) *fixture {
	t.Helper()
	s := memory.New()
	pub := &recordingPublisher{}
	uc := order.NewPlaceOrderUseCase(s.Clients(), s.Products(), s.Orders(), s.TxRunner(), pub, mode, zerolog.Nop())
	return &fixture{store: s, pub: pub, uc: uc}
}

func (f *fixture) client(t *testing.T, id, sellerID string) {
	t.Helper()
	require.NoError(t, f.store.Clients().Create(context.Background(), &entity.Client{
		ID: id, Name: "Cliente " + id, Email: id + "@correo.com", SellerID: sellerID,
	}))
}

func (f *fixture) product(t *testing.T, id string, price string, stock int) {
	t.Helper()
	require.NoError(t, f.store.Products().Create(context.Background(), &entity.Product{
		ID: id, Name: "Producto " + id, Price: decimal.RequireFromString(price), Stock: stock,
	}))
}

func (f *fixture) stockOf(t *testing.T, id string) int {
	t.Helper()
	p, err := f.store.Products().GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p.Stock
}

func (f *fixture) ordersOf(t *testing.T, sellerID string) []*entity.Order {
	t.Helper()
	list, err := f.store.Orders().ListBySeller(context.Background(), sellerID, 100, 0)
	require.NoError(t, err)
	return list
}

func as(sellerID string) context.Context {
	return identity.WithIdentity(context.Background(), identity.Identity{ID: sellerID, Email: sellerID + "@correo.com"})
}

func lines(pairs ...any) []dto.OrderLineRequest {
	out := make([]dto.OrderLineRequest, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, dto.OrderLineRequest{ProductID: pairs[i].(string), Quantity: pairs[i+1].(int)})
	}
	return out
}

// ──────────────────────────────────────────────────────────────────────────────
// Camino feliz
// ──────────────────────────────────────────────────────────────────────────────

func TestPlaceOrder_CreaPedidoYDescuentaStock(t *testing.T) {
	f := newFixture(t, order.ModeSequential)
	f.client(t, "C1", sellerS1)
	f.product(t, "P1", "2.50", 10)

	out, err := f.uc.PlaceOrder(as(sellerS1), dto.PlaceOrderRequest{ClientID: "C1", Lines: lines("P1", 3)})
	require.NoError(t, err)

	assert.NotEmpty(t, out.ID)
	assert.Equal(t, sellerS1, out.SellerID, "el vendedor sale de la identidad")
	assert.Equal(t, "C1", out.ClientID)
	assert.Equal(t, entity.OrderStatusPending, out.Status)
	assert.True(t, decimal.RequireFromString("7.50").Equal(out.Total), "total = 3 x 2.50")
	require.Len(t, out.Lines, 1)
	assert.True(t, decimal.RequireFromString("2.50").Equal(out.Lines[0].UnitPrice))

	assert.Equal(t, 7, f.stockOf(t, "P1"))
	require.Len(t, f.ordersOf(t, sellerS1), 1)

	require.Len(t, f.pub.events, 1)
	assert.Equal(t, out.ID, f.pub.events[0].OrderID)
	assert.Equal(t, []order.OrderPlacedLine{{ProductID: "P1", Quantity: 3}}, f.pub.events[0].Lines)
}

func TestPlaceOrder_VariasLineasConservaOrden(t *testing.T) {
	f := newFixture(t, order.ModeSequential)
	f.client(t, "C1", sellerS1)
	f.product(t, "P1", "1.00", 5)
	f.product(t, "P2", "4.00", 5)

	out, err := f.uc.PlaceOrder(as(sellerS1), dto.PlaceOrderRequest{ClientID: "C1", Lines: lines("P2", 1, "P1", 2)})
	require.NoError(t, err)

	require.Len(t, out.Lines, 2)
	assert.Equal(t, "P2", out.Lines[0].ProductID)
	assert.Equal(t, "P1", out.Lines[1].ProductID)
	assert.True(t, decimal.RequireFromString("6").Equal(out.Total))
	assert.Equal(t, 3, f.stockOf(t, "P1"))
	assert.Equal(t, 4, f.stockOf(t, "P2"))
}

func TestPlaceOrder_StockExactoQuedaEnCero(t *testing.T) {
	f := newFixture(t, order.ModeSequential)
	f.client(t, "C1", sellerS1)
	f.product(t, "P1", "1.00", 3)

	_, err := f.uc.PlaceOrder(as(sellerS1), dto.PlaceOrderRequest{ClientID: "C1", Lines: lines("P1", 3)})
	require.NoError(t, err)
	assert.Equal(t, 0, f.stockOf(t, "P1"))
}

func TestPlaceOrder_FalloAlPublicarNoFallaElPedido(t *testing.T) {
	f := newFixture(t, order.ModeSequential)
	f.pub.err = errors.New("broker caído")
	f.client(t, "C1", sellerS1)
	f.product(t, "P1", "1.00", 3)

	out, err := f.uc.PlaceOrder(as(sellerS1), dto.PlaceOrderRequest{ClientID: "C1", Lines: lines("P1", 1)})
	require.NoError(t, err)
	assert.NotEmpty(t, out.ID)
	assert.Len(t, f.ordersOf(t, sellerS1), 1)
}

// ──────────────────────────────────────────────────────────────────────────────
// Rechazos antes de mutar
// ──────────────────────────────────────────────────────────────────────────────

func TestPlaceOrder_SinIdentidad(t *testing.T) {
	f := newFixture(t, order.ModeSequential)
	f.client(t, "C1", sellerS1)
	f.product(t, "P1", "1.00", 3)

	_, err := f.uc.PlaceOrder(context.Background(), dto.PlaceOrderRequest{ClientID: "C1", Lines: lines("P1", 1)})
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	assert.Equal(t, 3, f.stockOf(t, "P1"))
}

func TestPlaceOrder_ClienteInexistente(t *testing.T) {
	f := newFixture(t, order.ModeSequential)
	f.product(t, "P1", "1.00", 3)

	_, err := f.uc.PlaceOrder(as(sellerS1), dto.PlaceOrderRequest{ClientID: "nope", Lines: lines("P1", 1)})
	require.ErrorIs(t, err, domain.ErrNotFound)
	var nf *domain.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, domain.EntityClient, nf.Entity)
}

func TestPlaceOrder_ClienteDeOtroVendedorNoTocaStock(t *testing.T) {
	f := newFixture(t, order.ModeSequential)
	f.client(t, "C1", sellerS1)
	f.product(t, "P1", "1.00", 10)

	_, err := f.uc.PlaceOrder(as(sellerS2), dto.PlaceOrderRequest{ClientID: "C1", Lines: lines("P1", 3)})
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.Equal(t, 10, f.stockOf(t, "P1"))
	assert.Empty(t, f.ordersOf(t, sellerS2))
	assert.Empty(t, f.pub.events)
}

func TestPlaceOrder_LineasInvalidas(t *testing.T) {
	f := newFixture(t, order.ModeSequential)
	f.client(t, "C1", sellerS1)
	f.product(t, "P1", "1.00", 10)

	cases := map[string][]dto.OrderLineRequest{
		"sin líneas":        nil,
		"cantidad cero":     lines("P1", 0),
		"cantidad negativa": lines("P1", 2, "P1", -1),
		"producto vacío":    lines("", 1),
	}
	for name, ls := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.uc.PlaceOrder(as(sellerS1), dto.PlaceOrderRequest{ClientID: "C1", Lines: ls})
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
			var ve *domain.ValidationError
			assert.ErrorAs(t, err, &ve)
		})
	}
	assert.Equal(t, 10, f.stockOf(t, "P1"))
}

func TestPlaceOrder_ProductoInexistenteNoTocaStock(t *testing.T) {
	f := newFixture(t, order.ModeSequential)
	f.client(t, "C1", sellerS1)
	f.product(t, "P1", "1.00", 10)

	_, err := f.uc.PlaceOrder(as(sellerS1), dto.PlaceOrderRequest{ClientID: "C1", Lines: lines("P1", 2, "P9", 1)})
	require.ErrorIs(t, err, domain.ErrNotFound)
	var nf *domain.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, domain.EntityProduct, nf.Entity)
	assert.Equal(t, "P9", nf.ID)
	assert.Equal(t, 10, f.stockOf(t, "P1"), "la verificación de existencia es previa a los descuentos")
}

// ──────────────────────────────────────────────────────────────────────────────
// Stock insuficiente: secuencial vs atómico
// ──────────────────────────────────────────────────────────────────────────────

func TestPlaceOrder_Secuencial_DescuentosPreviosQuedanAplicados(t *testing.T) {
	f := newFixture(t, order.ModeSequential)
	f.client(t, "C1", sellerS1)
	f.product(t, "P1", "1.00", 5)
	f.product(t, "P2", "1.00", 1)

	_, err := f.uc.PlaceOrder(as(sellerS1), dto.PlaceOrderRequest{ClientID: "C1", Lines: lines("P1", 2, "P2", 3)})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	var ise *domain.InsufficientStockError
	require.ErrorAs(t, err, &ise)
	assert.Equal(t, "P2", ise.ProductID)
	assert.Equal(t, "Producto P2", ise.ProductName)
	assert.Equal(t, 3, ise.Requested)
	assert.Equal(t, 1, ise.Available)

	assert.Equal(t, 3, f.stockOf(t, "P1"), "la línea 1 ya se descontó y no se revierte")
	assert.Equal(t, 1, f.stockOf(t, "P2"))
	assert.Empty(t, f.ordersOf(t, sellerS1))
	assert.Empty(t, f.pub.events)
}

func TestPlaceOrder_Secuencial_ProductoRepetidoVeDescuentoAnterior(t *testing.T) {
	f := newFixture(t, order.ModeSequential)
	f.client(t, "C1", sellerS1)
	f.product(t, "P1", "1.00", 5)

	_, err := f.uc.PlaceOrder(as(sellerS1), dto.PlaceOrderRequest{ClientID: "C1", Lines: lines("P1", 3, "P1", 3)})
	var ise *domain.InsufficientStockError
	require.ErrorAs(t, err, &ise)
	assert.Equal(t, 2, ise.Available, "la segunda línea relee el stock ya descontado")
	assert.Equal(t, 2, f.stockOf(t, "P1"))
}

func TestPlaceOrder_Atomico_RevierteTodo(t *testing.T) {
	f := newFixture(t, order.ModeAtomic)
	f.client(t, "C1", sellerS1)
	f.product(t, "P1", "1.00", 5)
	f.product(t, "P2", "1.00", 1)

	_, err := f.uc.PlaceOrder(as(sellerS1), dto.PlaceOrderRequest{ClientID: "C1", Lines: lines("P1", 2, "P2", 3)})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	assert.Equal(t, 5, f.stockOf(t, "P1"))
	assert.Equal(t, 1, f.stockOf(t, "P2"))
	assert.Empty(t, f.ordersOf(t, sellerS1))
}

func TestPlaceOrder_Atomico_CreaPedido(t *testing.T) {
	f := newFixture(t, order.ModeAtomic)
	f.client(t, "C1", sellerS1)
	f.product(t, "P1", "2.00", 5)

	out, err := f.uc.PlaceOrder(as(sellerS1), dto.PlaceOrderRequest{ClientID: "C1", Lines: lines("P1", 2)})
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("4").Equal(out.Total))
	assert.Equal(t, 3, f.stockOf(t, "P1"))
	require.Len(t, f.ordersOf(t, sellerS1), 1)
	assert.Len(t, f.pub.events, 1)
}

func TestPlaceOrder_Atomico_ConcurrenciaNoSobrevende(t *testing.T) {
	f := newFixture(t, order.ModeAtomic)
	f.client(t, "C1", sellerS1)
	f.product(t, "P1", "1.00", 5)

	const workers = 12
	var (
		wg sync.WaitGroup
		mu sync.Mutex
		ok int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.uc.PlaceOrder(as(sellerS1), dto.PlaceOrderRequest{ClientID: "C1", Lines: lines("P1", 1)})
			if err == nil {
				mu.Lock()
				ok++
				mu.Unlock()
				return
			}
			assert.ErrorIs(t, err, domain.ErrInsufficientStock)
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, ok)
	assert.Equal(t, 0, f.stockOf(t, "P1"))
	assert.Len(t, f.ordersOf(t, sellerS1), 5)
}

func TestPlaceOrder_Atomico_SinTxRunner(t *testing.T) {
	s := memory.New()
	uc := order.NewPlaceOrderUseCase(s.Clients(), s.Products(), s.Orders(), nil, nil, order.ModeAtomic, zerolog.Nop())
	require.NoError(t, s.Clients().Create(context.Background(), &entity.Client{ID: "C1", Email: "c1@x.com", SellerID: sellerS1}))
	require.NoError(t, s.Products().Create(context.Background(), &entity.Product{ID: "P1", Stock: 5}))

	_, err := uc.PlaceOrder(as(sellerS1), dto.PlaceOrderRequest{ClientID: "C1", Lines: lines("P1", 1)})
	assert.Error(t, err)
}

func TestNewPlaceOrderUseCase_ModoPorDefecto(t *testing.T) {
	s := memory.New()
	uc := order.NewPlaceOrderUseCase(s.Clients(), s.Products(), s.Orders(), nil, nil, "", zerolog.Nop())
	assert.Equal(t, order.ModeSequential, uc.Mode())
}
