package handler

import (
	"net/http"

	"kiosco/internal/dto"
	"kiosco/internal/service"

	"github.com/gin-gonic/gin"
)

type ReportesHandler struct{ svc service.ReporteService }

func NewReportesHandler(svc service.ReporteService) *ReportesHandler {
	return &ReportesHandler{svc: svc}
}

func (h *ReportesHandler) Hoy(c *gin.Context) {
	h.responder(c)(h.svc.Hoy(c.Request.Context()))
}

func (h *ReportesHandler) Semana(c *gin.Context) {
	h.responder(c)(h.svc.Semana(c.Request.Context()))
}

func (h *ReportesHandler) Mes(c *gin.Context) {
	h.responder(c)(h.svc.Mes(c.Request.Context()))
}

// Rango godoc
// @Summary      Reporte de ventas por rango de fechas
// @Tags         reportes
// @Produce      json
// @Param        desde query string true "YYYY-MM-DD"
// @Param        hasta query string true "YYYY-MM-DD inclusive"
// @Success      200   {object} dto.ReporteResponse
// @Failure      422   {object} apierror.APIError
// @Router       /v1/reportes [get]
func (h *ReportesHandler) Rango(c *gin.Context) {
	var q dto.ReporteRangoQuery
	if !bindQuery(c, &q) {
		return
	}
	h.responder(c)(h.svc.Rango(c.Request.Context(), q))
}

func (h *ReportesHandler) responder(c *gin.Context) func(*dto.ReporteResponse, error) {
	return func(resp *dto.ReporteResponse, err error) {
		if err != nil {
			responderError(c, err, "Error al generar el reporte")
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}
