package usecase

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Pedidos-api/internal/application/dto"
	"github.com/jhoicas/Pedidos-api/internal/domain"
	"github.com/jhoicas/Pedidos-api/internal/domain/entity"
	"github.com/jhoicas/Pedidos-api/internal/domain/identity"
	"github.com/jhoicas/Pedidos-api/internal/domain/repository"
)

// ClientUseCase CRUD de clientes. Cada cliente pertenece al vendedor que lo creó
// y solo ese vendedor puede verlo, modificarlo o borrarlo.
type ClientUseCase struct {
	repo repository.ClientRepository
}

// NewClientUseCase construye el caso de uso.
func NewClientUseCase(repo repository.ClientRepository) *ClientUseCase {
	return &ClientUseCase{repo: repo}
}

// Create registra un cliente a nombre del vendedor autenticado.
func (uc *ClientUseCase) Create(ctx context.Context, in dto.CreateClientRequest) (*dto.ClientResponse, error) {
	caller, ok := identity.FromContext(ctx)
	if !ok {
		return nil, domain.ErrUnauthenticated
	}
	now := time.Now()
	client := &entity.Client{
		ID:        uuid.New().String(),
		Name:      strings.TrimSpace(in.Name),
		Surname:   strings.TrimSpace(in.Surname),
		Company:   strings.TrimSpace(in.Company),
		Email:     strings.ToLower(strings.TrimSpace(in.Email)),
		Phone:     strings.TrimSpace(in.Phone),
		SellerID:  caller.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := validateClient(client); err != nil {
		return nil, err
	}
	existing, err := uc.repo.GetByEmail(ctx, client.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrAlreadyExists
	}
	if err := uc.repo.Create(ctx, client); err != nil {
		return nil, err
	}
	return toClientResponse(client), nil
}

// GetByID devuelve un cliente propio.
func (uc *ClientUseCase) GetByID(ctx context.Context, id string) (*dto.ClientResponse, error) {
	client, err := uc.owned(ctx, id)
	if err != nil {
		return nil, err
	}
	return toClientResponse(client), nil
}

// Update actualiza los campos enviados de un cliente propio. El dueño no cambia.
func (uc *ClientUseCase) Update(ctx context.Context, id string, in dto.UpdateClientRequest) (*dto.ClientResponse, error) {
	client, err := uc.owned(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		client.Name = strings.TrimSpace(*in.Name)
	}
	if in.Surname != nil {
		client.Surname = strings.TrimSpace(*in.Surname)
	}
	if in.Company != nil {
		client.Company = strings.TrimSpace(*in.Company)
	}
	if in.Email != nil {
		client.Email = strings.ToLower(strings.TrimSpace(*in.Email))
	}
	if in.Phone != nil {
		client.Phone = strings.TrimSpace(*in.Phone)
	}
	if err := validateClient(client); err != nil {
		return nil, err
	}
	client.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, client); err != nil {
		return nil, err
	}
	return toClientResponse(client), nil
}

// Delete elimina un cliente propio.
func (uc *ClientUseCase) Delete(ctx context.Context, id string) error {
	if _, err := uc.owned(ctx, id); err != nil {
		return err
	}
	return uc.repo.Delete(ctx, id)
}

// ListMine lista los clientes del vendedor autenticado.
func (uc *ClientUseCase) ListMine(ctx context.Context, page dto.PageRequest) (*dto.ClientListResponse, error) {
	caller, ok := identity.FromContext(ctx)
	if !ok {
		return nil, domain.ErrUnauthenticated
	}
	page.Normalize()
	list, err := uc.repo.ListBySeller(ctx, caller.ID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ClientResponse, 0, len(list))
	for _, c := range list {
		items = append(items, *toClientResponse(c))
	}
	return &dto.ClientListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// owned carga el cliente y verifica que sea del vendedor: primero NotFound, luego Forbidden.
func (uc *ClientUseCase) owned(ctx context.Context, id string) (*entity.Client, error) {
	caller, ok := identity.FromContext(ctx)
	if !ok {
		return nil, domain.ErrUnauthenticated
	}
	client, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, domain.NewNotFound(domain.EntityClient, id)
	}
	if !client.OwnedBy(caller.ID) {
		return nil, domain.ErrForbidden
	}
	return client, nil
}

func validateClient(c *entity.Client) error {
	if c.Name == "" {
		return domain.NewValidation("name", "es requerido")
	}
	if c.Email == "" {
		return domain.NewValidation("email", "es requerido")
	}
	if _, err := mail.ParseAddress(c.Email); err != nil {
		return domain.NewValidation("email", "no es un email válido")
	}
	return nil
}

func toClientResponse(c *entity.Client) *dto.ClientResponse {
	return &dto.ClientResponse{
		ID:        c.ID,
		Name:      c.Name,
		Surname:   c.Surname,
		Company:   c.Company,
		Email:     c.Email,
		Phone:     c.Phone,
		SellerID:  c.SellerID,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}
