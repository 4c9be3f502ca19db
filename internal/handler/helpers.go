package handler

import (
	"errors"
	"net/http"
	"reflect"

	"arelyz/internal/apierror"
	"arelyz/internal/dto"
	"arelyz/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails;
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("JSON invalido: "+err.Error()))
		return false
	}
	return runValidation(c, req)
}

// bindQuery is bindAndValidate for query-string parameters.
func bindQuery(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Parametros invalidos: "+err.Error()))
		return false
	}
	return runValidation(c, req)
}

func runValidation(c *gin.Context, req interface{}) bool {
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
			return false
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.FromValidation(verrs))
		return false
	}
	return true
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return uuid.Nil, false
	}
	return id, true
}

// respondError maps service sentinels to HTTP statuses. Anything unknown is
// logged and answered with a generic 500.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrConteoInvalido):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrPeriodoInvalido),
		errors.Is(err, service.ErrFormatoInvalido),
		errors.Is(err, service.ErrOperadorRequerido):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrCredenciales):
		status = http.StatusUnauthorized
	case errors.Is(err, service.ErrBorradorNoEncontrado),
		errors.Is(err, service.ErrArqueoNoEncontrado):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrEstadoInvalido):
		status = http.StatusConflict
	case errors.Is(err, service.ErrResultadoDesconocido):
		status = http.StatusGatewayTimeout
	case errors.Is(err, service.ErrCierreFallido):
		c.JSON(http.StatusInternalServerError, dto.ResultadoCierre{Success: false, Error: err.Error()})
		return
	case errors.Is(err, service.ErrAgregacion):
		// operator-facing message; the cause is in the log
		log.Error().Err(err).Str("path", c.FullPath()).Msg("aggregation failed")
		c.JSON(http.StatusInternalServerError, apierror.New(service.ErrAgregacion.Error()))
		return
	default:
		_ = c.Error(err)
		c.JSON(status, apierror.New("Error interno del servidor"))
		return
	}
	c.JSON(status, apierror.New(err.Error()))
}
