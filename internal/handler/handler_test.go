package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"arelyz/internal/calculo"
	"arelyz/internal/dto"
	"arelyz/internal/handler"
	"arelyz/internal/middleware"
	"arelyz/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── Stubs ─────────────────────────────────────────────────────────────────────

type stubAuth struct{ err error }

func (s *stubAuth) Login(_ context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &dto.LoginResponse{AccessToken: "tok", TokenType: "bearer", User: dto.UsuarioResponse{Username: req.Username}}, nil
}

func (s *stubAuth) GuardarUsuario(context.Context, dto.UsuarioSeed) (*dto.UsuarioResponse, error) {
	return nil, nil
}

// stubArqueo answers every call with err, or with a canned response.
type stubArqueo struct {
	err      error
	operador string
	contado  *decimal.Decimal
}

func (s *stubArqueo) borrador(id uuid.UUID) *dto.BorradorResponse {
	return &dto.BorradorResponse{ID: id.String(), Estado: service.EstadoEsperandoConteo}
}

func (s *stubArqueo) Iniciar(_ context.Context, operador string) (*dto.BorradorResponse, error) {
	s.operador = operador
	if s.err != nil {
		return nil, s.err
	}
	return s.borrador(uuid.New()), nil
}

func (s *stubArqueo) Obtener(_ context.Context, id uuid.UUID) (*dto.BorradorResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.borrador(id), nil
}

func (s *stubArqueo) ActualizarConteo(_ context.Context, id uuid.UUID, c *decimal.Decimal) (*dto.BorradorResponse, error) {
	s.contado = c
	if s.err != nil {
		return nil, s.err
	}
	return s.borrador(id), nil
}

func (s *stubArqueo) Confirmar(_ context.Context, id uuid.UUID) (*dto.ConfirmacionResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &dto.ConfirmacionResponse{BorradorID: id.String()}, nil
}

func (s *stubArqueo) Aceptar(_ context.Context, _ uuid.UUID, operador string) (*dto.ResultadoCierre, error) {
	s.operador = operador
	if s.err != nil {
		return nil, s.err
	}
	return &dto.ResultadoCierre{Success: true, ArqueoID: uuid.NewString()}, nil
}

func (s *stubArqueo) Cancelar(context.Context, uuid.UUID) error { return s.err }

type stubAgregador struct{ periodo calculo.Periodo }

func (s *stubAgregador) Agregar(_ context.Context, p calculo.Periodo) (*calculo.Totales, error) {
	if !p.Hasta.After(p.Desde) {
		return nil, service.ErrPeriodoInvalido
	}
	s.periodo = p
	return &calculo.Totales{EfectivoNeto: decimal.RequireFromString("475")}, nil
}

func (s *stubAgregador) Turno(now time.Time) calculo.Periodo {
	return calculo.Turno(now, time.UTC)
}

type stubHistorial struct{ err error }

func (s *stubHistorial) ListarRecientes(_ context.Context, limit int) ([]dto.ArqueoResponse, error) {
	return make([]dto.ArqueoResponse, limit), s.err
}

func (s *stubHistorial) Obtener(_ context.Context, id uuid.UUID) (*dto.ArqueoResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &dto.ArqueoResponse{ID: id.String()}, nil
}

func (s *stubHistorial) Resumen(context.Context, int) (*dto.ResumenHistorialResponse, error) {
	return &dto.ResumenHistorialResponse{}, s.err
}

func (s *stubHistorial) ReporteMensual(_ context.Context, anio, mes int) (*dto.ReporteMensualResponse, error) {
	if mes < 1 || mes > 12 {
		return nil, service.ErrPeriodoInvalido
	}
	return &dto.ReporteMensualResponse{Anio: anio, Mes: mes}, nil
}

func (s *stubHistorial) Exportar(_ context.Context, _ uuid.UUID, formato string) (*service.Documento, error) {
	if s.err != nil {
		return nil, s.err
	}
	if formato != service.FormatoXLSX && formato != service.FormatoPDF {
		return nil, service.ErrFormatoInvalido
	}
	return &service.Documento{Nombre: "arqueo_x." + formato, ContentType: "application/pdf", Contenido: []byte("%PDF-1.3")}, nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

// withClaims stands in for JWTAuth.
func withClaims(nombre string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ClaimsKey, &middleware.JWTClaims{Username: "recep1", Nombre: nombre, Rol: "recepcion"})
		c.Next()
	}
}

func newRouter(arq *stubArqueo, hist *stubHistorial, ag *stubAgregador) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/login", handler.NewAuthHandler(&stubAuth{err: service.ErrCredenciales}).Login)

	r.GET("/me", withClaims(""), handler.NewAuthHandler(&stubAuth{}).Me)

	g := r.Group("/v1/arqueos", withClaims("Ana López"))
	ah := handler.NewArqueoHandler(arq, ag)
	g.POST("/borradores", ah.Iniciar)
	g.GET("/borradores/:id", ah.Obtener)
	g.DELETE("/borradores/:id", ah.Cancelar)
	g.PUT("/borradores/:id/conteo", ah.ActualizarConteo)
	g.POST("/borradores/:id/confirmar", ah.Confirmar)
	g.POST("/borradores/:id/aceptar", ah.Aceptar)
	g.GET("/totales", ah.Totales)

	hh := handler.NewHistorialHandler(hist)
	g.GET("", hh.Listar)
	g.GET("/resumen", hh.Resumen)
	g.GET("/:id", hh.Obtener)
	g.GET("/:id/export", hh.Exportar)
	r.GET("/v1/reportes/mensual", hh.ReporteMensual)
	return r
}

func do(r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

// ── Auth ──────────────────────────────────────────────────────────────────────

func TestLogin_ValidacionYCredenciales(t *testing.T) {
	r := newRouter(&stubArqueo{}, &stubHistorial{}, &stubAgregador{})

	w := do(r, http.MethodPost, "/login", dto.LoginRequest{Username: "u", Password: "12"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), `"Password":"min=4"`)

	w = do(r, http.MethodPost, "/login", dto.LoginRequest{Username: "ana", Password: "wrongpass"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMe_SinNombreUsaUsername(t *testing.T) {
	w := do(newRouter(&stubArqueo{}, &stubHistorial{}, &stubAgregador{}), http.MethodGet, "/me", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var u dto.UsuarioResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &u))
	assert.Equal(t, "recep1", u.Nombre)
	assert.Equal(t, "recepcion", u.Rol)
}

// ── Arqueo flow ───────────────────────────────────────────────────────────────

func TestIniciar_UsaOperadorDelToken(t *testing.T) {
	arq := &stubArqueo{}
	w := do(newRouter(arq, &stubHistorial{}, &stubAgregador{}), http.MethodPost, "/v1/arqueos/borradores", nil)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Ana López", arq.operador)
}

func TestActualizarConteo_Body(t *testing.T) {
	arq := &stubArqueo{}
	r := newRouter(arq, &stubHistorial{}, &stubAgregador{})
	path := "/v1/arqueos/borradores/" + uuid.NewString() + "/conteo"

	w := do(r, http.MethodPut, path, map[string]string{"efectivo_contado": "512.50"})
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, arq.contado)
	assert.Equal(t, "512.5", arq.contado.String())

	w = do(r, http.MethodPut, path, map[string]interface{}{"efectivo_contado": nil})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, arq.contado)

	w = do(r, http.MethodPut, "/v1/arqueos/borradores/not-a-uuid/conteo", map[string]string{"efectivo_contado": "1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestArqueo_MapeoDeErrores(t *testing.T) {
	id := uuid.NewString()
	casos := []struct {
		err    error
		method string
		path   string
		status int
	}{
		{service.ErrConteoInvalido, http.MethodPost, "/confirmar", http.StatusUnprocessableEntity},
		{fmt.Errorf("%w: cerrado", service.ErrEstadoInvalido), http.MethodPost, "/aceptar", http.StatusConflict},
		{service.ErrBorradorNoEncontrado, http.MethodGet, "", http.StatusNotFound},
		{service.ErrResultadoDesconocido, http.MethodPost, "/aceptar", http.StatusGatewayTimeout},
		{fmt.Errorf("%w: %w", service.ErrAgregacion, fmt.Errorf("dial tcp: refused")), http.MethodGet, "", http.StatusInternalServerError},
		{fmt.Errorf("boom"), http.MethodDelete, "", http.StatusInternalServerError},
	}
	for _, c := range casos {
		t.Run(c.err.Error(), func(t *testing.T) {
			r := newRouter(&stubArqueo{err: c.err}, &stubHistorial{}, &stubAgregador{})
			w := do(r, c.method, "/v1/arqueos/borradores/"+id+c.path, nil)
			assert.Equal(t, c.status, w.Code)
			assert.NotContains(t, w.Body.String(), "dial tcp", "causes stay in the log")
		})
	}
}

func TestAceptar_FalloDevuelveResultado(t *testing.T) {
	arq := &stubArqueo{err: fmt.Errorf("%w: %s", service.ErrCierreFallido, "violates check constraint")}
	r := newRouter(arq, &stubHistorial{}, &stubAgregador{})

	w := do(r, http.MethodPost, "/v1/arqueos/borradores/"+uuid.NewString()+"/aceptar", nil)
	require.Equal(t, http.StatusInternalServerError, w.Code)

	var res dto.ResultadoCierre
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "violates check constraint")
	assert.Equal(t, "Ana López", arq.operador)
}

func TestCancelar_NoContent(t *testing.T) {
	w := do(newRouter(&stubArqueo{}, &stubHistorial{}, &stubAgregador{}), http.MethodDelete, "/v1/arqueos/borradores/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestTotales_Query(t *testing.T) {
	ag := &stubAgregador{}
	r := newRouter(&stubArqueo{}, &stubHistorial{}, ag)

	w := do(r, http.MethodGet, "/v1/arqueos/totales?desde=2026-03-10T00:00:00Z&hasta=2026-03-11T00:00:00Z", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), ag.periodo.Desde.UTC())
	assert.Equal(t, time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC), ag.periodo.Hasta.UTC())

	w = do(r, http.MethodGet, "/v1/arqueos/totales?desde=2026-03-11T00:00:00Z&hasta=2026-03-10T00:00:00Z", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodGet, "/v1/arqueos/totales?desde=ayer", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

// ── Historial ─────────────────────────────────────────────────────────────────

func TestListar_Limit(t *testing.T) {
	r := newRouter(&stubArqueo{}, &stubHistorial{}, &stubAgregador{})

	w := do(r, http.MethodGet, "/v1/arqueos?limit=3", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got []dto.ArqueoResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Len(t, got, 3)

	w = do(r, http.MethodGet, "/v1/arqueos?limit=-1", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodGet, "/v1/arqueos/resumen", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHistorial_ObtenerInexistente(t *testing.T) {
	r := newRouter(&stubArqueo{}, &stubHistorial{err: service.ErrArqueoNoEncontrado}, &stubAgregador{})
	w := do(r, http.MethodGet, "/v1/arqueos/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestExportar_Cabeceras(t *testing.T) {
	r := newRouter(&stubArqueo{}, &stubHistorial{}, &stubAgregador{})

	w := do(r, http.MethodGet, "/v1/arqueos/"+uuid.NewString()+"/export?formato=pdf", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="arqueo_x.pdf"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "%PDF-1.3", w.Body.String())

	w = do(r, http.MethodGet, "/v1/arqueos/"+uuid.NewString()+"/export?formato=csv", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReporteMensual_Parametros(t *testing.T) {
	r := newRouter(&stubArqueo{}, &stubHistorial{}, &stubAgregador{})

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/v1/reportes/mensual?anio=2026&mes=3", nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/v1/reportes/mensual?anio=2026", nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/v1/reportes/mensual?anio=2026&mes=13", nil).Code)
}
