// seed carga datos de demostración: un vendedor, algunos clientes suyos y un catálogo de productos.
//
// Uso: go run ./cmd/seed [email] [password]
// Usa la misma configuración que la API (STORE_DRIVER, DATABASE_URL, JWT_SECRET...).
// Con STORE_DRIVER=memory solo sirve como prueba de humo: los datos se pierden al salir.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Pedidos-api/internal/application/auth"
	"github.com/jhoicas/Pedidos-api/internal/application/dto"
	"github.com/jhoicas/Pedidos-api/internal/application/usecase"
	"github.com/jhoicas/Pedidos-api/internal/domain"
	"github.com/jhoicas/Pedidos-api/internal/domain/identity"
	"github.com/jhoicas/Pedidos-api/internal/domain/repository"
	"github.com/jhoicas/Pedidos-api/internal/infrastructure/memory"
	"github.com/jhoicas/Pedidos-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Pedidos-api/pkg/config"
	"github.com/jhoicas/Pedidos-api/pkg/logger"
)

var demoProducts = []dto.CreateProductRequest{
	{Name: "Café molido 500g", Price: decimal.RequireFromString("18.90"), Stock: 40},
	{Name: "Azúcar 1kg", Price: decimal.RequireFromString("4.20"), Stock: 120},
	{Name: "Leche entera 1L", Price: decimal.RequireFromString("3.10"), Stock: 80},
	{Name: "Galletas surtidas", Price: decimal.RequireFromString("5.75"), Stock: 25},
}

var demoClients = []dto.CreateClientRequest{
	{Name: "Marta", Surname: "Gómez", Company: "Tienda La Esquina", Email: "marta@laesquina.com", Phone: "3001112233"},
	{Name: "Jorge", Surname: "Pérez", Company: "Minimercado El Sol", Email: "jorge@elsol.com", Phone: "3104445566"},
}

func main() {
	email, password := "vendedor@demo.com", "demo1234"
	if len(os.Args) > 1 {
		email = os.Args[1]
	}
	if len(os.Args) > 2 {
		password = os.Args[2]
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	users, products, clients, closeFn, err := open(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir persistencia: %v\n", err)
		os.Exit(1)
	}
	defer closeFn()

	authUC := auth.NewAuthUseCase(users, auth.JWTConfig{
		Secret: cfg.JWT.Secret,
		TTL:    time.Duration(cfg.JWT.Expiration) * time.Minute,
		Issuer: cfg.JWT.Issuer,
	})
	if _, err := authUC.RegisterUser(ctx, dto.RegisterRequest{
		Name: "Vendedor", Surname: "Demo", Email: email, Password: password,
	}); err != nil && !errors.Is(err, domain.ErrAlreadyExists) {
		fmt.Fprintf(os.Stderr, "Registrar vendedor: %v\n", err)
		os.Exit(1)
	}
	seller, err := authUC.Authenticate(ctx, email, password)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Autenticar vendedor %s: %v\n", email, err)
		os.Exit(1)
	}
	sellerCtx := identity.WithIdentity(ctx, identity.Identity{
		ID: seller.ID, Email: seller.Email, Name: seller.Name, Surname: seller.Surname,
	})

	productUC := usecase.NewProductUseCase(products)
	for _, p := range demoProducts {
		out, err := productUC.Create(sellerCtx, p)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Crear producto %q: %v\n", p.Name, err)
			os.Exit(1)
		}
		log.Info().Str("product_id", out.ID).Str("name", out.Name).Int("stock", out.Stock).Msg("producto creado")
	}

	clientUC := usecase.NewClientUseCase(clients)
	for _, c := range demoClients {
		out, err := clientUC.Create(sellerCtx, c)
		if errors.Is(err, domain.ErrAlreadyExists) {
			log.Warn().Str("email", c.Email).Msg("cliente ya existe, se omite")
			continue
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Crear cliente %q: %v\n", c.Email, err)
			os.Exit(1)
		}
		log.Info().Str("client_id", out.ID).Str("email", out.Email).Msg("cliente creado")
	}

	fmt.Printf("Vendedor: %s / %s (id %s)\n", email, password, seller.ID)
}

func open(ctx context.Context, cfg *config.Config) (
	repository.UserRepository, repository.ProductRepository, repository.ClientRepository, func(), error,
) {
	if cfg.Store.Driver == config.StoreDriverMemory {
		mem := memory.New()
		return mem.Users(), mem.Products(), mem.Clients(), func() {}, nil
	}
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	if err := postgres.EnsureSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, nil, nil, err
	}
	return postgres.NewUserRepository(pool), postgres.NewProductRepository(pool), postgres.NewClientRepository(pool), pool.Close, nil
}
