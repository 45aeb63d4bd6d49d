package handler

import (
	"net/http"

	"kiosco/internal/dto"
	"kiosco/internal/service"

	"github.com/gin-gonic/gin"
)

type VentasHandler struct{ svc service.VentaService }

func NewVentasHandler(svc service.VentaService) *VentasHandler { return &VentasHandler{svc: svc} }

// RegistrarVenta godoc
// @Summary      Registrar una venta
// @Description  Arma el carrito con las líneas recibidas, expande combos y liquida la venta descontando stock. Reenviar la misma clave_idempotencia devuelve la venta ya registrada.
// @Tags         ventas
// @Accept       json
// @Produce      json
// @Param        body body dto.RegistrarVentaRequest true "Líneas del carrito y pago"
// @Success      201  {object} dto.VentaResponse
// @Failure      409  {object} apierror.APIError "Stock insuficiente para el combo"
// @Failure      422  {object} apierror.ValidationError
// @Failure      504  {object} apierror.APIError "Resultado incierto"
// @Router       /v1/ventas [post]
func (h *VentasHandler) RegistrarVenta(c *gin.Context) {
	var req dto.RegistrarVentaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.RegistrarVenta(c.Request.Context(), req)
	if err != nil {
		responderError(c, err, "Error al registrar la venta")
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// AnularVenta godoc
// @Summary      Anular venta
// @Description  Marca la venta como anulada y devuelve al stock las unidades vendidas. Una venta anulada no puede volver a anularse.
// @Tags         ventas
// @Produce      json
// @Param        id   path     string true "UUID de la venta"
// @Success      204
// @Failure      404  {object} apierror.APIError
// @Failure      409  {object} apierror.APIError
// @Router       /v1/ventas/{id}/anular [post]
func (h *VentasHandler) AnularVenta(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.svc.AnularVenta(c.Request.Context(), id); err != nil {
		responderError(c, err, "Error al anular la venta")
		return
	}
	c.Status(http.StatusNoContent)
}

// ListarVentas godoc
// @Summary      Listar ventas
// @Tags         ventas
// @Produce      json
// @Param        desde  query string false "YYYY-MM-DD (default: hoy)"
// @Param        hasta  query string false "YYYY-MM-DD inclusive"
// @Param        estado query string false "activa | anulada | all"
// @Param        page   query int    false "Página (default 1)"
// @Param        limit  query int    false "Registros por página (default 50)"
// @Success      200    {object} dto.VentaListResponse
// @Router       /v1/ventas [get]
func (h *VentasHandler) ListarVentas(c *gin.Context) {
	var filter dto.VentaFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.ListVentas(c.Request.Context(), filter)
	if err != nil {
		responderError(c, err, "Error al listar ventas")
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *VentasHandler) ObtenerVenta(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	resp, err := h.svc.ObtenerVenta(c.Request.Context(), id)
	if err != nil {
		responderError(c, err, "Error al obtener la venta")
		return
	}
	c.JSON(http.StatusOK, resp)
}
