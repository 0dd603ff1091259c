package handler

import (
	"net/http"

	"taller/internal/dto"
	"taller/internal/service"

	"github.com/gin-gonic/gin"
)

type ModelosVehiculoHandler struct{ svc service.ModeloVehiculoService }

func NewModelosVehiculoHandler(svc service.ModeloVehiculoService) *ModelosVehiculoHandler {
	return &ModelosVehiculoHandler{svc: svc}
}

func (h *ModelosVehiculoHandler) Crear(c *gin.Context) {
	var req dto.CrearModeloVehiculoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Crear(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Listar GET /v1/modelos-vehiculo, or a text search when ?q= is present.
func (h *ModelosVehiculoHandler) Listar(c *gin.Context) {
	var (
		resp []dto.ModeloVehiculoResponse
		err  error
	)
	if q := c.Query("q"); q != "" {
		resp, err = h.svc.Buscar(c.Request.Context(), q)
	} else {
		resp, err = h.svc.Listar(c.Request.Context())
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ModelosVehiculoHandler) Marcas(c *gin.Context) {
	resp, err := h.svc.Marcas(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ModelosPorMarca GET /v1/modelos-vehiculo/marcas/:marca
func (h *ModelosVehiculoHandler) ModelosPorMarca(c *gin.Context) {
	resp, err := h.svc.ModelosPorMarca(c.Request.Context(), c.Param("marca"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ModelosVehiculoHandler) ObtenerPorID(c *gin.Context) {
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

func (h *ModelosVehiculoHandler) Actualizar(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req dto.ActualizarModeloVehiculoRequest
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

func (h *ModelosVehiculoHandler) Eliminar(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := h.svc.Eliminar(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
