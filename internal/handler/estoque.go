package handler

import (
	"net/http"
	"strconv"

	"github.com/jrrjunior25/PDV-master-sub000/internal/apierror"
	"github.com/jrrjunior25/PDV-master-sub000/internal/dto"
	"github.com/jrrjunior25/PDV-master-sub000/internal/middleware"
	"github.com/jrrjunior25/PDV-master-sub000/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type EstoqueHandler struct{ svc service.EstoqueService }

func NewEstoqueHandler(svc service.EstoqueService) *EstoqueHandler {
	return &EstoqueHandler{svc: svc}
}

// Ajustar godoc
// @Summary      Ajuste manual de estoque
// @Description  Aplica um delta com sinal ao estoque do produto e apensa o movimento no kardex.
// @Tags         estoque
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string                  true "UUID do produto"
// @Param        body body dto.AjusteEstoqueRequest true "Delta e motivo"
// @Success      201 {object} dto.MovimentoEstoqueResponse
// @Failure      400 {object} apierror.APIError
// @Router       /v1/produtos/{id}/ajuste [post]
func (h *EstoqueHandler) Ajustar(c *gin.Context) {
	produtoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	var req dto.AjusteEstoqueRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	usuarioID, _ := uuid.Parse(claims.UserID)

	resp, err := h.svc.Ajustar(c.Request.Context(), produtoID, usuarioID, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Historico lista o kardex, opcionalmente filtrado por produto (?produto_id=).
func (h *EstoqueHandler) Historico(c *gin.Context) {
	var produtoID *uuid.UUID
	if raw := c.Query("produto_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("produto_id inválido"))
			return
		}
		produtoID = &id
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	movs, err := h.svc.Historico(c.Request.Context(), produtoID, limit)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": movs})
}

// ConfirmarEntrada godoc
// @Summary      Confirmar entrada de mercadoria
// @Description  Consome o preview da NF do fornecedor: movimentos de entrada no kardex, custo atualizado e parcelas de despesa agendadas.
// @Tags         estoque
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.ConfirmarEntradaRequest true "Preview da entrada"
// @Success      201 {object} dto.ConfirmarEntradaResponse
// @Failure      400 {object} apierror.APIError
// @Router       /v1/estoque/entrada [post]
func (h *EstoqueHandler) ConfirmarEntrada(c *gin.Context) {
	var req dto.ConfirmarEntradaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	usuarioID, _ := uuid.Parse(claims.UserID)

	resp, err := h.svc.ConfirmarEntrada(c.Request.Context(), usuarioID, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}
