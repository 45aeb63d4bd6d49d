package handler

import (
	"net/http"

	"kiosco/internal/apierror"
	"kiosco/internal/dto"
	"kiosco/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ReposicionHandler struct{ svc service.ReposicionService }

func NewReposicionHandler(svc service.ReposicionService) *ReposicionHandler {
	return &ReposicionHandler{svc: svc}
}

func (h *ReposicionHandler) CrearFuente(c *gin.Context) {
	var req dto.CrearFuenteRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CrearFuente(c.Request.Context(), req)
	if err != nil {
		responderError(c, err, "Error al crear la fuente")
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ListarFuentes accepts an optional ?producto_id filter.
func (h *ReposicionHandler) ListarFuentes(c *gin.Context) {
	var productoID *uuid.UUID
	if raw := c.Query("producto_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("producto_id invalido"))
			return
		}
		productoID = &id
	}
	resp, err := h.svc.ListarFuentes(c.Request.Context(), productoID)
	if err != nil {
		responderError(c, err, "Error al listar fuentes")
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ReposicionHandler) EliminarFuente(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.svc.EliminarFuente(c.Request.Context(), id); err != nil {
		responderError(c, err, "Error al eliminar la fuente")
		return
	}
	c.Status(http.StatusNoContent)
}

// RegistrarCompra godoc
// @Summary      Registrar una compra de reposición
// @Description  Guarda la compra y suma la cantidad al stock del producto.
// @Tags         reposicion
// @Accept       json
// @Produce      json
// @Param        body body dto.RegistrarCompraRequest true "Compra"
// @Success      201  {object} dto.CompraResponse
// @Router       /v1/reposicion/compras [post]
func (h *ReposicionHandler) RegistrarCompra(c *gin.Context) {
	var req dto.RegistrarCompraRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.RegistrarCompra(c.Request.Context(), req)
	if err != nil {
		responderError(c, err, "Error al registrar la compra")
		return
	}
	c.JSON(http.StatusCreated, resp)
}
