package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Pedidos-api/internal/application/dto"
	"github.com/jhoicas/Pedidos-api/internal/domain/identity"
)

// LocalIdentity key en c.Locals con la identity.Identity del vendedor.
const LocalIdentity = "identity"

// tokenResolver lo implementa *auth.AuthUseCase.
type tokenResolver interface {
	ResolveToken(token string) (identity.Identity, error)
}

// AuthMiddleware valida el Bearer Token y deja la identidad en c.Locals y en c.UserContext().
// Los casos de uso leen la identidad desde el context.Context que reciben.
func AuthMiddleware(resolver tokenResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: CodeUnauthenticated, Message: "Authorization header requerido"})
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: CodeInvalidToken, Message: "formato: Bearer <token>"})
		}
		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: CodeUnauthenticated, Message: "token vacío"})
		}
		id, err := resolver.ResolveToken(tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: CodeInvalidToken, Message: "token inválido o expirado"})
		}
		c.Locals(LocalIdentity, id)
		c.SetUserContext(identity.WithIdentity(c.UserContext(), id))
		return c.Next()
	}
}

// GetIdentity devuelve la identidad del vendedor (después del middleware de auth).
func GetIdentity(c *fiber.Ctx) (identity.Identity, bool) {
	id, ok := c.Locals(LocalIdentity).(identity.Identity)
	return id, ok && id.ID != ""
}
