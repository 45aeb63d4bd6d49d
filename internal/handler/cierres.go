package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"kiosco/internal/apierror"
	"kiosco/internal/dto"
	"kiosco/internal/service"

	"github.com/gin-gonic/gin"
)

type CierresHandler struct{ svc service.CierreService }

func NewCierresHandler(svc service.CierreService) *CierresHandler { return &CierresHandler{svc: svc} }

// Cerrar godoc
// @Summary      Cerrar la caja del día
// @Description  Agrupa las ventas del día por método de pago y registra el cierre. Solo se permite un cierre por día.
// @Tags         cierres
// @Accept       json
// @Produce      json
// @Param        body body dto.CerrarCajaRequest false "Notas y destinatario opcional del PDF"
// @Success      201  {object} dto.CierreResponse
// @Failure      409  {object} apierror.APIError "Ya existe un cierre o no hay ventas hoy"
// @Router       /v1/cierres [post]
func (h *CierresHandler) Cerrar(c *gin.Context) {
	var req dto.CerrarCajaRequest
	// Empty body is a valid closing request.
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, apierror.New("JSON invalido: "+err.Error()))
		return
	}
	if !validar(c, &req) {
		return
	}
	resp, err := h.svc.Cerrar(c.Request.Context(), req)
	if err != nil {
		responderError(c, err, "Error al cerrar la caja")
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *CierresHandler) Listar(c *gin.Context) {
	resp, err := h.svc.Listar(c.Request.Context())
	if err != nil {
		responderError(c, err, "Error al listar cierres")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Hoy returns today's closing or 404 when the till is still open.
func (h *CierresHandler) Hoy(c *gin.Context) {
	resp, err := h.svc.Hoy(c.Request.Context())
	if err != nil {
		responderError(c, err, "Error al obtener el cierre de hoy")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// PDF godoc
// @Summary      Descargar el PDF de un cierre
// @Tags         cierres
// @Produce      application/pdf
// @Param        id   path string true "UUID del cierre"
// @Success      200  {file} binary
// @Failure      404  {object} apierror.APIError
// @Router       /v1/cierres/{id}/pdf [get]
func (h *CierresHandler) PDF(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	pdf, err := h.svc.PDF(c.Request.Context(), id)
	if err != nil {
		responderError(c, err, "Error al generar el PDF del cierre")
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=cierre_%s.pdf", id))
	c.Data(http.StatusOK, "application/pdf", pdf)
}
