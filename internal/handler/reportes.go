package handler

import (
	"net/http"

	"taller/internal/service"

	"github.com/gin-gonic/gin"
)

type ReportesHandler struct{ svc service.ReporteService }

func NewReportesHandler(svc service.ReporteService) *ReportesHandler {
	return &ReportesHandler{svc: svc}
}

func (h *ReportesHandler) StockBajo(c *gin.Context) {
	resp, err := h.svc.StockBajo(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CajaDiaria godoc
// @Summary      Caja diaria
// @Description  Totales de órdenes de trabajo y ventas de mesón de un día local.
// @Tags         reportes
// @Security     BearerAuth
// @Param        fecha query string false "YYYY-MM-DD (default hoy)"
// @Success      200 {object} dto.CajaDiariaResponse
// @Failure      400 {object} apierror.APIError
// @Router       /v1/reportes/caja-diaria [get]
func (h *ReportesHandler) CajaDiaria(c *gin.Context) {
	resp, err := h.svc.CajaDiaria(c.Request.Context(), c.Query("fecha"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Buscar GET /v1/reportes/buscar?q=
func (h *ReportesHandler) Buscar(c *gin.Context) {
	resp, err := h.svc.Buscar(c.Request.Context(), c.Query("q"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
