package handler

import (
	"net/http"

	"taller/internal/dto"
	"taller/internal/middleware"
	"taller/internal/service"

	"github.com/gin-gonic/gin"
)

type VentasMesonHandler struct{ svc service.VentaMesonService }

func NewVentasMesonHandler(svc service.VentaMesonService) *VentasMesonHandler {
	return &VentasMesonHandler{svc: svc}
}

// Crear godoc
// @Summary      Registrar movimiento de mesón
// @Description  VENTA cobra con IVA; PERDIDA y USO_INTERNO solo descuentan stock.
// @Tags         ventas-meson
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body body     dto.CrearVentaMesonRequest true "Movimiento"
// @Success      201  {object} dto.CrearVentaMesonResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/ventas-meson [post]
func (h *VentasMesonHandler) Crear(c *gin.Context) {
	var req dto.CrearVentaMesonRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Crear(c.Request.Context(), middleware.NombreUsuario(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Listar GET /v1/ventas-meson?tipo_movimiento=VENTA
func (h *VentasMesonHandler) Listar(c *gin.Context) {
	var filter dto.VentaMesonFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
