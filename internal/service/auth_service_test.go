package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"arelyz/internal/config"
	"arelyz/internal/dto"
	"arelyz/internal/model"
	"arelyz/internal/service"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// ── In-memory Repository Stub ─────────────────────────────────────────────────

type stubUsuarioRepo struct {
	users map[string]*model.Usuario
}

func newStubRepo() *stubUsuarioRepo {
	return &stubUsuarioRepo{users: make(map[string]*model.Usuario)}
}

func (r *stubUsuarioRepo) FindByUsername(_ context.Context, username string) (*model.Usuario, error) {
	u, ok := r.users[username]
	if !ok || !u.Activo {
		return nil, errors.New("not found")
	}
	return u, nil
}

func (r *stubUsuarioRepo) Upsert(_ context.Context, u *model.Usuario) error {
	if prev, ok := r.users[u.Username]; ok {
		u.ID = prev.ID
	} else if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	r.users[u.Username] = u
	return nil
}

const testSecret = "test_jwt_secret_32_chars_minimum!"

func newTestCfg() *config.Config {
	return &config.Config{JWTSecret: testSecret, JWTExpirationHours: 8}
}

func seedUser(t *testing.T, repo *stubUsuarioRepo, username, password, rol string) *model.Usuario {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	u := &model.Usuario{
		ID: uuid.New(), Username: username, Nombre: "Ana López",
		PasswordHash: string(hash), Rol: rol, Activo: true,
	}
	repo.users[username] = u
	return u
}

// ── Login ─────────────────────────────────────────────────────────────────────

func TestLogin_Success(t *testing.T) {
	repo := newStubRepo()
	u := seedUser(t, repo, "ana", "password123", "recepcion")
	svc := service.NewAuthService(repo, newTestCfg())

	resp, err := svc.Login(context.Background(), dto.LoginRequest{Username: "ana", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, "bearer", resp.TokenType)
	assert.Equal(t, 8*3600, resp.ExpiresIn)
	assert.Equal(t, "recepcion", resp.User.Rol)

	claims := jwt.MapClaims{}
	_, err = jwt.ParseWithClaims(resp.AccessToken, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	require.NoError(t, err)
	assert.Equal(t, u.ID.String(), claims["user_id"])
	assert.Equal(t, "Ana López", claims["nombre"])

	exp, err := claims.GetExpirationTime()
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(8*time.Hour), exp.Time, time.Minute)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	repo := newStubRepo()
	seedUser(t, repo, "ana", "correctpass", "recepcion")
	svc := service.NewAuthService(repo, newTestCfg())

	_, err := svc.Login(context.Background(), dto.LoginRequest{Username: "ana", Password: "wrongpass"})
	assert.ErrorIs(t, err, service.ErrCredenciales)

	_, err = svc.Login(context.Background(), dto.LoginRequest{Username: "noexiste", Password: "anypass123"})
	assert.ErrorIs(t, err, service.ErrCredenciales)
}

func TestLogin_UsuarioInactivo(t *testing.T) {
	repo := newStubRepo()
	u := seedUser(t, repo, "ex", "pass1234", "recepcion")
	u.Activo = false
	svc := service.NewAuthService(repo, newTestCfg())

	_, err := svc.Login(context.Background(), dto.LoginRequest{Username: "ex", Password: "pass1234"})
	assert.ErrorIs(t, err, service.ErrCredenciales)
}

// ── GuardarUsuario ────────────────────────────────────────────────────────────

func TestGuardarUsuario_CreaYRefresca(t *testing.T) {
	repo := newStubRepo()
	svc := service.NewAuthService(repo, newTestCfg())
	ctx := context.Background()

	first, err := svc.GuardarUsuario(ctx, dto.UsuarioSeed{
		Username: "maria", Nombre: "María", Password: "secreto1", Rol: "recepcion",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)

	second, err := svc.GuardarUsuario(ctx, dto.UsuarioSeed{
		Username: "maria", Nombre: "María G.", Password: "secreto2", Rol: "administrador",
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "administrador", second.Rol)

	_, err = svc.Login(ctx, dto.LoginRequest{Username: "maria", Password: "secreto1"})
	assert.ErrorIs(t, err, service.ErrCredenciales)
	resp, err := svc.Login(ctx, dto.LoginRequest{Username: "maria", Password: "secreto2"})
	require.NoError(t, err)
	assert.Equal(t, "María G.", resp.User.Nombre)
}
