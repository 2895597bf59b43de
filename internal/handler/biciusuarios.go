package handler

import (
	"net/http"

	"github.com/DavidJaure/CRUDapiDB/internal/apierror"
	"github.com/DavidJaure/CRUDapiDB/internal/dto"
	"github.com/DavidJaure/CRUDapiDB/internal/service"

	"github.com/gin-gonic/gin"
)

type BiciusuariosHandler struct{ svc service.PerfilService }

func NewBiciusuariosHandler(svc service.PerfilService) *BiciusuariosHandler {
	return &BiciusuariosHandler{svc: svc}
}

func (h *BiciusuariosHandler) Listar(c *gin.Context) {
	resp, err := h.svc.Listar(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *BiciusuariosHandler) ObtenerPorID(c *gin.Context) {
	id, ok := parseID(c, "id")
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

// Actualizar applies a partial patch. Ownership was already checked by
// middleware.RequireOwner.
func (h *BiciusuariosHandler) Actualizar(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.ActualizarPerfilRequest
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

func (h *BiciusuariosHandler) Eliminar(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	deleted, err := h.svc.Eliminar(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, apierror.New("biciusuario no encontrado"))
		return
	}
	c.JSON(http.StatusOK, dto.MensajeResponse{Message: "biciusuario eliminado"})
}
