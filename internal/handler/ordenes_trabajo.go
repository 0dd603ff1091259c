package handler

import (
	"fmt"
	"net/http"

	"taller/internal/dto"
	"taller/internal/middleware"
	"taller/internal/service"

	"github.com/gin-gonic/gin"
)

type OrdenesTrabajoHandler struct{ svc service.OrdenTrabajoService }

func NewOrdenesTrabajoHandler(svc service.OrdenTrabajoService) *OrdenesTrabajoHandler {
	return &OrdenesTrabajoHandler{svc: svc}
}

// Crear godoc
// @Summary      Registrar orden de trabajo
// @Description  Resuelve cliente y vehículo, descuenta stock de los repuestos y calcula neto, IVA y total.
// @Tags         ordenes-trabajo
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body body     dto.CrearOrdenTrabajoRequest true "Orden"
// @Success      201  {object} dto.CrearOrdenTrabajoResponse
// @Failure      400  {object} apierror.APIError
// @Failure      409  {object} apierror.APIError
// @Router       /v1/ordenes-trabajo [post]
func (h *OrdenesTrabajoHandler) Crear(c *gin.Context) {
	var req dto.CrearOrdenTrabajoRequest
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

func (h *OrdenesTrabajoHandler) Listar(c *gin.Context) {
	resp, err := h.svc.Listar(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *OrdenesTrabajoHandler) ObtenerPorID(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	resp, err := h.svc.ObtenerPorID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Actualizar PATCH /v1/ordenes-trabajo/:id edits header fields only.
func (h *OrdenesTrabajoHandler) Actualizar(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req dto.ActualizarOrdenTrabajoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Actualizar(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *OrdenesTrabajoHandler) CatalogoServicios(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"servicios": h.svc.CatalogoServicios()})
}

// DescargarPDF godoc
// @Summary      Ticket PDF de la orden
// @Tags         ordenes-trabajo
// @Security     BearerAuth
// @Produce      application/pdf
// @Param        id path string true "UUID de la orden"
// @Success      200 {file} binary
// @Failure      404 {object} apierror.APIError
// @Router       /v1/ordenes-trabajo/{id}/pdf [get]
func (h *OrdenesTrabajoHandler) DescargarPDF(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	pdf, numero, err := h.svc.GenerarPDF(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="orden-%d.pdf"`, numero))
	c.Data(http.StatusOK, "application/pdf", pdf)
}
