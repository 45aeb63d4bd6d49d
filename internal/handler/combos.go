package handler

import (
	"net/http"

	"kiosco/internal/dto"
	"kiosco/internal/service"

	"github.com/gin-gonic/gin"
)

type CombosHandler struct{ svc service.ComboService }

func NewCombosHandler(svc service.ComboService) *CombosHandler { return &CombosHandler{svc: svc} }

func (h *CombosHandler) Crear(c *gin.Context) {
	var req dto.CrearComboRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Crear(c.Request.Context(), req)
	if err != nil {
		responderError(c, err, "Error al crear el combo")
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Listar returns active combos; ?todos=true includes inactive ones.
func (h *CombosHandler) Listar(c *gin.Context) {
	resp, err := h.svc.Listar(c.Request.Context(), c.Query("todos") == "true")
	if err != nil {
		responderError(c, err, "Error al listar combos")
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CombosHandler) Obtener(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	resp, err := h.svc.Obtener(c.Request.Context(), id)
	if err != nil {
		responderError(c, err, "Error al obtener el combo")
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CombosHandler) Actualizar(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.ActualizarComboRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Actualizar(c.Request.Context(), id, req)
	if err != nil {
		responderError(c, err, "Error al actualizar el combo")
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CombosHandler) Desactivar(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.svc.Desactivar(c.Request.Context(), id); err != nil {
		responderError(c, err, "Error al desactivar el combo")
		return
	}
	c.Status(http.StatusNoContent)
}
