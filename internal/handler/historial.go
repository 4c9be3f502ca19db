package handler

import (
	"net/http"
	"strconv"

	"arelyz/internal/apierror"
	"arelyz/internal/service"

	"github.com/gin-gonic/gin"
)

type HistorialHandler struct{ svc service.HistorialService }

func NewHistorialHandler(svc service.HistorialService) *HistorialHandler {
	return &HistorialHandler{svc: svc}
}

// queryLimit reads ?limit=; absent means the configured default.
func queryLimit(c *gin.Context) (int, bool) {
	raw := c.Query("limit")
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		c.JSON(http.StatusBadRequest, apierror.New("limit invalido"))
		return 0, false
	}
	return n, true
}

// Listar godoc
// @Summary Historial de arqueos, del más reciente al más antiguo
// @Tags historial
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Cantidad (por defecto 20, máximo 100)"
// @Success 200 {array} dto.ArqueoResponse
// @Router /v1/arqueos [get]
func (h *HistorialHandler) Listar(c *gin.Context) {
	limit, ok := queryLimit(c)
	if !ok {
		return
	}
	resp, err := h.svc.ListarRecientes(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Resumen godoc
// @Summary Estadísticas de los arqueos recientes
// @Tags historial
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Cantidad (por defecto 20, máximo 100)"
// @Success 200 {object} dto.ResumenHistorialResponse
// @Router /v1/arqueos/resumen [get]
func (h *HistorialHandler) Resumen(c *gin.Context) {
	limit, ok := queryLimit(c)
	if !ok {
		return
	}
	resp, err := h.svc.Resumen(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Obtener godoc
// @Summary Obtiene un arqueo cerrado
// @Tags historial
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID del arqueo"
// @Success 200 {object} dto.ArqueoResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/arqueos/{id} [get]
func (h *HistorialHandler) Obtener(c *gin.Context) {
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

// Exportar godoc
// @Summary Descarga un arqueo como XLSX o PDF
// @Tags historial
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet,application/pdf
// @Security BearerAuth
// @Param id path string true "ID del arqueo"
// @Param formato query string false "xlsx | pdf" default(xlsx)
// @Success 200 {file} file
// @Failure 400 {object} apierror.APIError
// @Failure 404 {object} apierror.APIError
// @Router /v1/arqueos/{id}/export [get]
func (h *HistorialHandler) Exportar(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	doc, err := h.svc.Exportar(c.Request.Context(), id, c.DefaultQuery("formato", service.FormatoXLSX))
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+doc.Nombre+`"`)
	c.Data(http.StatusOK, doc.ContentType, doc.Contenido)
}

// ReporteMensual godoc
// @Summary Totales de los arqueos de un mes
// @Tags reportes
// @Produce json
// @Security BearerAuth
// @Param anio query int true "Año"
// @Param mes query int true "Mes (1-12)"
// @Success 200 {object} dto.ReporteMensualResponse
// @Failure 400 {object} apierror.APIError
// @Router /v1/reportes/mensual [get]
func (h *HistorialHandler) ReporteMensual(c *gin.Context) {
	anio, err1 := strconv.Atoi(c.Query("anio"))
	mes, err2 := strconv.Atoi(c.Query("mes"))
	if err1 != nil || err2 != nil {
		c.JSON(http.StatusBadRequest, apierror.New("anio y mes son obligatorios"))
		return
	}
	resp, err := h.svc.ReporteMensual(c.Request.Context(), anio, mes)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
