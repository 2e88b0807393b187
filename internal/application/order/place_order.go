package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Pedidos-api/internal/application/dto"
	"github.com/jhoicas/Pedidos-api/internal/domain"
	"github.com/jhoicas/Pedidos-api/internal/domain/entity"
	"github.com/jhoicas/Pedidos-api/internal/domain/identity"
	"github.com/jhoicas/Pedidos-api/internal/domain/repository"
)

// Estados por los que pasa una solicitud de pedido (solo se usan en logs).
const (
	statePending    = "pending"
	stateValidating = "validating"
	stateRejected   = "rejected"
	stateAuthorized = "authorized"
	stateApplying   = "applying_stock_line"
	stateAllApplied = "all_applied"
	stateFailedLine = "failed_at_line"
	statePersisted  = "persisted"
	stateAborted    = "aborted"
)

// publishTimeout tiempo máximo para publicar el evento después de persistir.
const publishTimeout = 5 * time.Second

// PlaceOrderUseCase valida un pedido contra el inventario, descuenta stock línea por línea
// y persiste el pedido a nombre del vendedor autenticado.
//
// Orden de validación:
//
//	identidad → cliente existe → cliente del vendedor → líneas válidas → productos existen → stock por línea
//
// En ModeSequential cada descuento se escribe antes de evaluar la siguiente línea y no hay
// rollback: si la línea k no tiene stock, las líneas 1..k-1 quedan descontadas y el pedido
// no se guarda. Tampoco hay control de concurrencia entre pedidos simultáneos.
// ModeAtomic ejecuta el mismo ciclo dentro de TxRunner (filas bloqueadas, todo o nada).
type PlaceOrderUseCase struct {
	clientRepo  repository.ClientRepository
	productRepo repository.ProductRepository
	orderRepo   repository.OrderRepository
	txRunner    TxRunner
	publisher   EventPublisher
	mode        string
	log         zerolog.Logger
}

// NewPlaceOrderUseCase construye el caso de uso. txRunner solo se usa en ModeAtomic y publisher puede ser nil.
func NewPlaceOrderUseCase(
	clientRepo repository.ClientRepository,
	productRepo repository.ProductRepository,
	orderRepo repository.OrderRepository,
	txRunner TxRunner,
	publisher EventPublisher,
	mode string,
	log zerolog.Logger,
) *PlaceOrderUseCase {
	if mode == "" {
		mode = ModeSequential
	}
	return &PlaceOrderUseCase{
		clientRepo:  clientRepo,
		productRepo: productRepo,
		orderRepo:   orderRepo,
		txRunner:    txRunner,
		publisher:   publisher,
		mode:        mode,
		log:         log,
	}
}

// Mode devuelve el modo de aplicación de stock configurado.
func (uc *PlaceOrderUseCase) Mode() string { return uc.mode }

// PlaceOrder crea un pedido para el vendedor que viaja en ctx (identity.WithIdentity).
func (uc *PlaceOrderUseCase) PlaceOrder(ctx context.Context, in dto.PlaceOrderRequest) (*dto.OrderResponse, error) {
	caller, ok := identity.FromContext(ctx)
	if !ok {
		return nil, domain.ErrUnauthenticated
	}
	log := uc.log.With().
		Str("seller_id", caller.ID).
		Str("client_id", in.ClientID).
		Str("mode", uc.mode).
		Logger()
	log.Debug().Str("state", statePending).Int("lines", len(in.Lines)).Msg("pedido recibido")

	client, err := uc.authorize(ctx, caller, in, log)
	if err != nil {
		log.Info().Str("state", stateRejected).Err(err).Msg("pedido rechazado")
		return nil, err
	}
	log.Debug().Str("state", stateAuthorized).Msg("pedido autorizado")

	orderID := uuid.New().String()
	var order *entity.Order
	if uc.mode == ModeAtomic {
		order, err = uc.placeAtomic(ctx, orderID, caller, client, in.Lines, log)
	} else {
		order, err = uc.placeSequential(ctx, orderID, caller, client, in.Lines, log)
	}
	if err != nil {
		log.Warn().Str("state", stateAborted).Str("order_id", orderID).Err(err).Msg("pedido abortado")
		return nil, err
	}
	log.Info().
		Str("state", statePersisted).
		Str("order_id", order.ID).
		Str("total", order.Total.StringFixed(2)).
		Msg("pedido persistido")

	uc.publish(ctx, order, log)
	return ToOrderResponse(order), nil
}

// authorize ejecuta las validaciones previas a cualquier mutación de stock.
func (uc *PlaceOrderUseCase) authorize(ctx context.Context, caller identity.Identity, in dto.PlaceOrderRequest, log zerolog.Logger) (*entity.Client, error) {
	log.Debug().Str("state", stateValidating).Msg("validando pedido")

	if in.ClientID == "" {
		return nil, domain.NewValidation("client_id", "es requerido")
	}
	client, err := uc.clientRepo.GetByID(ctx, in.ClientID)
	if err != nil {
		return nil, fmt.Errorf("obtener cliente: %w", err)
	}
	if client == nil {
		return nil, domain.NewNotFound(domain.EntityClient, in.ClientID)
	}
	// La propiedad del cliente se verifica antes de tocar el stock, nunca después.
	if !client.OwnedBy(caller.ID) {
		return nil, domain.ErrForbidden
	}

	if err := validateLines(in.Lines); err != nil {
		return nil, err
	}
	for _, line := range in.Lines {
		p, err := uc.productRepo.GetByID(ctx, line.ProductID)
		if err != nil {
			return nil, fmt.Errorf("obtener producto: %w", err)
		}
		if p == nil {
			return nil, domain.NewNotFound(domain.EntityProduct, line.ProductID)
		}
	}
	return client, nil
}

func validateLines(lines []dto.OrderLineRequest) error {
	if len(lines) == 0 {
		return domain.NewValidation("lines", "el pedido debe tener al menos una línea")
	}
	for i, line := range lines {
		if line.ProductID == "" {
			return domain.NewValidation(fmt.Sprintf("lines[%d].product_id", i), "es requerido")
		}
		if line.Quantity <= 0 {
			return domain.NewValidation(fmt.Sprintf("lines[%d].quantity", i), "debe ser mayor a 0")
		}
	}
	return nil
}

// placeSequential descuenta con el repositorio directo (cada escritura queda confirmada) y luego guarda el pedido.
func (uc *PlaceOrderUseCase) placeSequential(
	ctx context.Context,
	orderID string,
	caller identity.Identity,
	client *entity.Client,
	lines []dto.OrderLineRequest,
	log zerolog.Logger,
) (*entity.Order, error) {
	applied, err := applyLines(ctx, uc.productRepo, lines, false, log)
	if err != nil {
		return nil, err
	}
	order := newOrder(orderID, caller.ID, client.ID, applied)
	if err := uc.orderRepo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("guardar pedido: %w", err)
	}
	return order, nil
}

// placeAtomic corre descuentos y alta del pedido en una sola transacción.
func (uc *PlaceOrderUseCase) placeAtomic(
	ctx context.Context,
	orderID string,
	caller identity.Identity,
	client *entity.Client,
	lines []dto.OrderLineRequest,
	log zerolog.Logger,
) (*entity.Order, error) {
	if uc.txRunner == nil {
		return nil, errors.New("modo atomic sin TxRunner configurado")
	}
	var order *entity.Order
	err := uc.txRunner.RunOrder(ctx, func(productRepo repository.ProductRepository, orderRepo repository.OrderRepository) error {
		applied, err := applyLines(ctx, productRepo, lines, true, log)
		if err != nil {
			return err
		}
		order = newOrder(orderID, caller.ID, client.ID, applied)
		if err := orderRepo.Create(ctx, order); err != nil {
			return fmt.Errorf("guardar pedido: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// applyLines recorre las líneas en el orden del caller: relee el producto, compara y escribe
// stock - cantidad antes de pasar a la siguiente. Nunca paraleliza: una línea puede repetir
// un producto ya descontado por una línea anterior.
func applyLines(
	ctx context.Context,
	products repository.ProductRepository,
	lines []dto.OrderLineRequest,
	lock bool,
	log zerolog.Logger,
) ([]entity.OrderLine, error) {
	applied := make([]entity.OrderLine, 0, len(lines))
	for i, line := range lines {
		lineNo := i + 1
		log.Debug().Str("state", stateApplying).Int("line", lineNo).Str("product_id", line.ProductID).Msg("aplicando línea")

		var (
			p   *entity.Product
			err error
		)
		if lock {
			p, err = products.GetByIDForUpdate(ctx, line.ProductID)
		} else {
			p, err = products.GetByID(ctx, line.ProductID)
		}
		if err != nil {
			return nil, fmt.Errorf("releer producto: %w", err)
		}
		if p == nil {
			return nil, domain.NewNotFound(domain.EntityProduct, line.ProductID)
		}
		if !p.HasStock(line.Quantity) {
			log.Warn().
				Str("state", stateFailedLine).
				Int("line", lineNo).
				Int("already_applied", len(applied)).
				Str("product_id", p.ID).
				Int("requested", line.Quantity).
				Int("available", p.Stock).
				Msg("stock insuficiente")
			return nil, &domain.InsufficientStockError{
				ProductID:   p.ID,
				ProductName: p.Name,
				Requested:   line.Quantity,
				Available:   p.Stock,
			}
		}
		if err := products.UpdateStock(ctx, p.ID, p.Stock-line.Quantity); err != nil {
			return nil, fmt.Errorf("descontar stock: %w", err)
		}
		applied = append(applied, entity.OrderLine{
			ProductID: p.ID,
			Quantity:  line.Quantity,
			UnitPrice: p.Price,
		})
	}
	log.Debug().Str("state", stateAllApplied).Int("lines", len(applied)).Msg("todas las líneas aplicadas")
	return applied, nil
}

func newOrder(id, sellerID, clientID string, lines []entity.OrderLine) *entity.Order {
	return &entity.Order{
		ID:        id,
		SellerID:  sellerID,
		ClientID:  clientID,
		Lines:     lines,
		Total:     entity.ComputeTotal(lines),
		Status:    entity.OrderStatusPending,
		CreatedAt: time.Now().UTC(),
	}
}

// publish notifica el pedido ya persistido. Un fallo aquí no deshace el pedido: se registra y sigue.
func (uc *PlaceOrderUseCase) publish(ctx context.Context, order *entity.Order, log zerolog.Logger) {
	if uc.publisher == nil {
		return
	}
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := uc.publisher.PublishOrderPlaced(pubCtx, newOrderPlacedEvent(order)); err != nil {
		log.Error().Err(err).Str("order_id", order.ID).Msg("publicar evento order.placed")
	}
}

// ToOrderResponse mapea la entidad a su DTO de salida.
func ToOrderResponse(o *entity.Order) *dto.OrderResponse {
	lines := make([]dto.OrderLineResponse, 0, len(o.Lines))
	for _, l := range o.Lines {
		lines = append(lines, dto.OrderLineResponse{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			Subtotal:  l.Subtotal(),
		})
	}
	return &dto.OrderResponse{
		ID:        o.ID,
		SellerID:  o.SellerID,
		ClientID:  o.ClientID,
		Lines:     lines,
		Total:     o.Total,
		Status:    o.Status,
		CreatedAt: o.CreatedAt,
	}
}
