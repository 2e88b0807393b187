package order

import (
	"context"
	"fmt"

	"github.com/jhoicas/Pedidos-api/internal/application/dto"
	"github.com/jhoicas/Pedidos-api/internal/domain"
	"github.com/jhoicas/Pedidos-api/internal/domain/entity"
	"github.com/jhoicas/Pedidos-api/internal/domain/identity"
	"github.com/jhoicas/Pedidos-api/internal/domain/repository"
)

// deletedProductName se muestra en el comprobante si el producto ya no existe.
const deletedProductName = "(producto eliminado)"

// QueryUseCase consultas de pedidos del vendedor autenticado.
type QueryUseCase struct {
	orderRepo   repository.OrderRepository
	clientRepo  repository.ClientRepository
	productRepo repository.ProductRepository
	receipts    ReceiptGenerator
}

// NewQueryUseCase crea el caso de uso. receipts puede ser nil si no se sirven comprobantes.
func NewQueryUseCase(
	orderRepo repository.OrderRepository,
	clientRepo repository.ClientRepository,
	productRepo repository.ProductRepository,
	receipts ReceiptGenerator,
) *QueryUseCase {
	return &QueryUseCase{
		orderRepo:   orderRepo,
		clientRepo:  clientRepo,
		productRepo: productRepo,
		receipts:    receipts,
	}
}

// GetByID devuelve un pedido del vendedor. NotFound si no existe, Forbidden si es de otro vendedor.
func (uc *QueryUseCase) GetByID(ctx context.Context, id string) (*dto.OrderResponse, error) {
	o, _, err := uc.ownedOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	return ToOrderResponse(o), nil
}

// List lista los pedidos del vendedor, más recientes primero.
func (uc *QueryUseCase) List(ctx context.Context, page dto.PageRequest) (*dto.OrderListResponse, error) {
	caller, ok := identity.FromContext(ctx)
	if !ok {
		return nil, domain.ErrUnauthenticated
	}
	page.Normalize()
	orders, err := uc.orderRepo.ListBySeller(ctx, caller.ID, page.Limit, page.Offset)
	if err != nil {
		return nil, fmt.Errorf("listar pedidos: %w", err)
	}
	items := make([]dto.OrderResponse, 0, len(orders))
	for _, o := range orders {
		items = append(items, *ToOrderResponse(o))
	}
	return &dto.OrderListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// Receipt genera el comprobante PDF de un pedido del vendedor.
func (uc *QueryUseCase) Receipt(ctx context.Context, id string) ([]byte, error) {
	if uc.receipts == nil {
		return nil, fmt.Errorf("generador de comprobantes no configurado")
	}
	o, caller, err := uc.ownedOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	client, err := uc.clientRepo.GetByID(ctx, o.ClientID)
	if err != nil {
		return nil, fmt.Errorf("obtener cliente: %w", err)
	}
	if client == nil {
		client = &entity.Client{ID: o.ClientID}
	}

	lines := make([]ReceiptLine, 0, len(o.Lines))
	for _, l := range o.Lines {
		name := deletedProductName
		p, err := uc.productRepo.GetByID(ctx, l.ProductID)
		if err != nil {
			return nil, fmt.Errorf("obtener producto: %w", err)
		}
		if p != nil {
			name = p.Name
		}
		lines = append(lines, ReceiptLine{
			ProductName: name,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			Subtotal:    l.Subtotal(),
		})
	}

	pdf, err := uc.receipts.GenerateOrderReceipt(ctx, ReceiptData{
		Order:  o,
		Client: client,
		Seller: caller,
		Lines:  lines,
	})
	if err != nil {
		return nil, fmt.Errorf("generar comprobante: %w", err)
	}
	return pdf, nil
}

func (uc *QueryUseCase) ownedOrder(ctx context.Context, id string) (*entity.Order, identity.Identity, error) {
	caller, ok := identity.FromContext(ctx)
	if !ok {
		return nil, identity.Identity{}, domain.ErrUnauthenticated
	}
	o, err := uc.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, caller, fmt.Errorf("obtener pedido: %w", err)
	}
	if o == nil {
		return nil, caller, domain.NewNotFound(domain.EntityOrder, id)
	}
	if !o.OwnedBy(caller.ID) {
		return nil, caller, domain.ErrForbidden
	}
	return o, caller, nil
}
