package handler

import (
	"net/http"
	"time"

	"arelyz/internal/apierror"
	"arelyz/internal/dto"
	"arelyz/internal/middleware"
	"arelyz/internal/service"

	"github.com/gin-gonic/gin"
)

// ArqueoHandler exposes the reconciliation flow. Each step operates on a
// draft id returned by Iniciar.
type ArqueoHandler struct {
	svc       service.ArqueoService
	agregador service.AgregadorService
}

func NewArqueoHandler(svc service.ArqueoService, agregador service.AgregadorService) *ArqueoHandler {
	return &ArqueoHandler{svc: svc, agregador: agregador}
}

// Iniciar godoc
// @Summary Calcula el resumen del turno y abre un arqueo en curso
// @Tags arqueos
// @Produce json
// @Security BearerAuth
// @Success 201 {object} dto.BorradorResponse
// @Failure 500 {object} apierror.APIError
// @Router /v1/arqueos/borradores [post]
func (h *ArqueoHandler) Iniciar(c *gin.Context) {
	resp, err := h.svc.Iniciar(c.Request.Context(), middleware.Operador(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Obtener godoc
// @Summary Obtiene un arqueo en curso
// @Tags arqueos
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID del borrador"
// @Success 200 {object} dto.BorradorResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/arqueos/borradores/{id} [get]
func (h *ArqueoHandler) Obtener(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	resp, err := h.svc.Obtener(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ActualizarConteo godoc
// @Summary Registra el efectivo contado
// @Tags arqueos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID del borrador"
// @Param body body dto.ConteoRequest true "Efectivo contado"
// @Success 200 {object} dto.BorradorResponse
// @Failure 409 {object} apierror.APIError
// @Failure 422 {object} apierror.APIError
// @Router /v1/arqueos/borradores/{id}/conteo [put]
func (h *ArqueoHandler) ActualizarConteo(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.ConteoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.ActualizarConteo(c.Request.Context(), id, req.EfectivoContado)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Confirmar godoc
// @Summary Muestra el resumen a confirmar antes del cierre
// @Tags arqueos
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID del borrador"
// @Success 200 {object} dto.ConfirmacionResponse
// @Failure 409 {object} apierror.APIError
// @Failure 422 {object} apierror.APIError
// @Router /v1/arqueos/borradores/{id}/confirmar [post]
func (h *ArqueoHandler) Confirmar(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	resp, err := h.svc.Confirmar(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Aceptar godoc
// @Summary Cierra el arqueo (archiva y limpia el turno de forma atómica)
// @Tags arqueos
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID del borrador"
// @Success 200 {object} dto.ResultadoCierre
// @Failure 409 {object} apierror.APIError
// @Failure 500 {object} dto.ResultadoCierre
// @Failure 504 {object} apierror.APIError
// @Router /v1/arqueos/borradores/{id}/aceptar [post]
func (h *ArqueoHandler) Aceptar(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	resp, err := h.svc.Aceptar(c.Request.Context(), id, middleware.Operador(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Cancelar godoc
// @Summary Descarta un arqueo en curso sin escribir nada
// @Tags arqueos
// @Security BearerAuth
// @Param id path string true "ID del borrador"
// @Success 204
// @Failure 409 {object} apierror.APIError
// @Router /v1/arqueos/borradores/{id} [delete]
func (h *ArqueoHandler) Cancelar(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.svc.Cancelar(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Totales godoc
// @Summary Vista previa de los totales de un periodo (por defecto, el turno actual)
// @Tags arqueos
// @Produce json
// @Security BearerAuth
// @Param desde query string false "RFC3339, inicio incluido"
// @Param hasta query string false "RFC3339, fin excluido"
// @Success 200 {object} calculo.Totales
// @Failure 400 {object} apierror.APIError
// @Router /v1/arqueos/totales [get]
func (h *ArqueoHandler) Totales(c *gin.Context) {
	var q dto.TotalesQuery
	if !bindQuery(c, &q) {
		return
	}
	p := h.agregador.Turno(time.Now())
	if q.Desde != "" {
		t, err := time.Parse(time.RFC3339, q.Desde)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("desde invalido"))
			return
		}
		p.Desde = t
	}
	if q.Hasta != "" {
		t, err := time.Parse(time.RFC3339, q.Hasta)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("hasta invalido"))
			return
		}
		p.Hasta = t
	}

	totales, err := h.agregador.Agregar(c.Request.Context(), p)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, totales)
}
