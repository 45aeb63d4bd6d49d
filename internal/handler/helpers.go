package handler

import (
	"errors"
	"net/http"
	"reflect"

	"kiosco/internal/apierror"
	"kiosco/internal/carrito"
	"kiosco/internal/service"

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
	return validar(c, req)
}

// bindQuery is bindAndValidate for query-string filters.
func bindQuery(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Parametros invalidos: "+err.Error()))
		return false
	}
	return validar(c, req)
}

func validar(c *gin.Context, req interface{}) bool {
	err := validate.Struct(req)
	if err == nil {
		return true
	}
	if ve, ok := apierror.FromValidator(err); ok {
		c.JSON(http.StatusUnprocessableEntity, ve)
	} else {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
	}
	return false
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return uuid.Nil, false
	}
	return id, true
}

// statusDe maps service and cart errors to HTTP status codes.
func statusDe(err error) int {
	switch {
	case errors.Is(err, service.ErrVentaNoEncontrada),
		errors.Is(err, service.ErrNoEncontrado):
		return http.StatusNotFound
	case errors.Is(err, service.ErrVentaYaAnulada),
		errors.Is(err, service.ErrCierreYaExiste),
		errors.Is(err, service.ErrSinVentasHoy),
		errors.Is(err, service.ErrStockInsuficienteCombo),
		errors.Is(err, carrito.ErrSinStock):
		return http.StatusConflict
	case errors.Is(err, service.ErrValidacion),
		errors.Is(err, service.ErrTasaNoConfigurada),
		errors.Is(err, carrito.ErrComboVacio),
		errors.Is(err, carrito.ErrPrecioInvalido),
		errors.Is(err, carrito.ErrMonsterNoAplica):
		return http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrResultadoIncierto):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// responderError writes the APIError envelope. Unexpected errors are logged
// and replaced by fallback so driver messages never reach the client.
func responderError(c *gin.Context, err error, fallback string) {
	status := statusDe(err)
	if status == http.StatusInternalServerError && !errors.Is(err, service.ErrLiquidacionParcial) {
		log.Error().Err(err).Str("path", c.FullPath()).Msg(fallback)
		c.JSON(status, apierror.New(fallback))
		return
	}
	c.JSON(status, apierror.New(err.Error()))
}
