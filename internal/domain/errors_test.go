package domain_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Pedidos-api/internal/domain"
)

func TestErroresTipados_IsYAs(t *testing.T) {
	err := fmt.Errorf("place order: %w", &domain.InsufficientStockError{
		ProductID: "p1", ProductName: "Café", Requested: 4, Available: 1,
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.NotErrorIs(t, err, domain.ErrNotFound)

	var stockErr *domain.InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, 4, stockErr.Requested)
	assert.Equal(t, 1, stockErr.Available)
	assert.Contains(t, err.Error(), "Café")

	nf := domain.NewNotFound(domain.EntityProduct, "p9")
	assert.ErrorIs(t, nf, domain.ErrNotFound)
	assert.Equal(t, `product "p9" no encontrado`, nf.Error())

	assert.ErrorIs(t, domain.NewValidation("lines", "vacío"), domain.ErrInvalidInput)
}

func TestCredencialesYTokenSonNoAutenticado(t *testing.T) {
	assert.ErrorIs(t, domain.ErrInvalidCredentials, domain.ErrUnauthenticated)
	assert.ErrorIs(t, domain.ErrInvalidToken, domain.ErrUnauthenticated)
	assert.NotErrorIs(t, domain.ErrInvalidToken, domain.ErrInvalidCredentials)
}
