package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/Pedidos-api/internal/application/auth"
	"github.com/jhoicas/Pedidos-api/internal/application/dto"
	"github.com/jhoicas/Pedidos-api/internal/domain"
	"github.com/jhoicas/Pedidos-api/internal/infrastructure/memory"
)

const testSecret = "test-secret-key-for-unit-tests"

func newAuth(t *testing.T) (*auth.AuthUseCase, *memory.Store) {
	t.Helper()
	s := memory.New()
	uc := auth.NewAuthUseCase(s.Users(), auth.JWTConfig{Secret: testSecret, TTL: time.Hour, Issuer: "pedidos-test"}).
		WithBcryptCost(bcrypt.MinCost)
	return uc, s
}

func register(t *testing.T, uc *auth.AuthUseCase) *dto.UserResponse {
	t.Helper()
	u, err := uc.RegisterUser(context.Background(), dto.RegisterRequest{
		Name: "Sofía", Surname: "Rojas", Email: " Sofia@Correo.com ", Password: "secreto1",
	})
	require.NoError(t, err)
	return u
}

func TestRegisterUser_GuardaHashYNormalizaEmail(t *testing.T) {
	uc, s := newAuth(t)
	u := register(t, uc)
	assert.Equal(t, "sofia@correo.com", u.Email)

	stored, err := s.Users().GetByID(context.Background(), u.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.NotEqual(t, "secreto1", stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("secreto1")))
}

func TestRegisterUser_EmailDuplicado(t *testing.T) {
	uc, _ := newAuth(t)
	register(t, uc)

	_, err := uc.RegisterUser(context.Background(), dto.RegisterRequest{Name: "Otra", Email: "SOFIA@correo.com", Password: "otroPass"})
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
}

func TestRegisterUser_Validaciones(t *testing.T) {
	uc, _ := newAuth(t)
	cases := map[string]dto.RegisterRequest{
		"sin nombre":     {Email: "a@b.com", Password: "123456"},
		"email inválido": {Name: "a", Email: "no-email", Password: "123456"},
		"password corto": {Name: "a", Email: "a@b.com", Password: "12345"},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := uc.RegisterUser(context.Background(), in)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestAuthenticate(t *testing.T) {
	uc, _ := newAuth(t)
	u := register(t, uc)

	got, err := uc.Authenticate(context.Background(), "sofia@correo.com", "secreto1")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = uc.Authenticate(context.Background(), "sofia@correo.com", "incorrecto")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	_, err = uc.Authenticate(context.Background(), "nadie@correo.com", "secreto1")
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestLoginYResolveToken(t *testing.T) {
	uc, _ := newAuth(t)
	u := register(t, uc)

	out, err := uc.Login(context.Background(), dto.LoginRequest{Email: "sofia@correo.com", Password: "secreto1"})
	require.NoError(t, err)
	assert.NotEmpty(t, out.Token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), out.ExpiresAt, time.Minute)

	id, err := uc.ResolveToken(out.Token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, id.ID)
	assert.Equal(t, "sofia@correo.com", id.Email)
	assert.Equal(t, "Sofía", id.Name)
	assert.Equal(t, "Rojas", id.Surname)
}

func TestResolveToken_Invalido(t *testing.T) {
	uc, s := newAuth(t)
	register(t, uc)
	user, err := uc.Authenticate(context.Background(), "sofia@correo.com", "secreto1")
	require.NoError(t, err)

	expired, err := uc.IssueToken(user, -time.Minute)
	require.NoError(t, err)
	_, err = uc.ResolveToken(expired)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)

	_, err = uc.ResolveToken("basura")
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	other := auth.NewAuthUseCase(s.Users(), auth.JWTConfig{Secret: "otro-secreto", TTL: time.Hour})
	tok, err := other.IssueToken(user, time.Hour)
	require.NoError(t, err)
	_, err = uc.ResolveToken(tok)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}
