package handler

import (
	"net/http"

	"kiosco/internal/dto"
	"kiosco/internal/service"

	"github.com/gin-gonic/gin"
)

type TasaCambioHandler struct{ svc service.TasaCambioService }

func NewTasaCambioHandler(svc service.TasaCambioService) *TasaCambioHandler {
	return &TasaCambioHandler{svc: svc}
}

func (h *TasaCambioHandler) Obtener(c *gin.Context) {
	resp, err := h.svc.Obtener(c.Request.Context())
	if err != nil {
		responderError(c, err, "Error al obtener la tasa de cambio")
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *TasaCambioHandler) Actualizar(c *gin.Context) {
	var req dto.TasaCambioRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Actualizar(c.Request.Context(), req)
	if err != nil {
		responderError(c, err, "Error al actualizar la tasa de cambio")
		return
	}
	c.JSON(http.StatusOK, resp)
}
