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

type CaixaHandler struct{ svc service.CaixaService }

func NewCaixaHandler(svc service.CaixaService) *CaixaHandler { return &CaixaHandler{svc: svc} }

// Abrir godoc
// @Summary      Abrir sessão de caixa
// @Description  Abre a sessão da loja. Falha com 409 se já houver sessão aberta.
// @Tags         caixa
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.AbrirCaixaRequest true "Saldo inicial da gaveta"
// @Success      201 {object} dto.SessaoCaixaResponse
// @Failure      409 {object} apierror.APIError
// @Router       /v1/caixa/abrir [post]
func (h *CaixaHandler) Abrir(c *gin.Context) {
	var req dto.AbrirCaixaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	usuarioID, _ := uuid.Parse(claims.UserID)

	resp, err := h.svc.Abrir(c.Request.Context(), usuarioID, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// SessaoAtual devolve a sessão aberta, 409 quando não há nenhuma.
func (h *CaixaHandler) SessaoAtual(c *gin.Context) {
	resp, err := h.svc.SessaoAtual(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Movimento godoc
// @Summary      Sangria ou suprimento
// @Tags         caixa
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.MovimentoCaixaRequest true "Movimento manual"
// @Success      204
// @Failure      409 {object} apierror.APIError
// @Router       /v1/caixa/movimento [post]
func (h *CaixaHandler) Movimento(c *gin.Context) {
	var req dto.MovimentoCaixaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	usuarioID, _ := uuid.Parse(claims.UserID)

	if err := h.svc.RegistrarMovimento(c.Request.Context(), usuarioID, req); err != nil {
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Fechar godoc
// @Summary      Fechar sessão de caixa
// @Description  Fecha a sessão aberta e devolve a conferência (saldo de sistema x contado).
// @Tags         caixa
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.FecharCaixaRequest true "Valor contado na gaveta"
// @Success      200 {object} dto.FechamentoResponse
// @Failure      409 {object} apierror.APIError
// @Router       /v1/caixa/fechar [post]
func (h *CaixaHandler) Fechar(c *gin.Context) {
	var req dto.FecharCaixaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Fechar(c.Request.Context(), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CaixaHandler) ObterSessao(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	resp, err := h.svc.ObterSessao(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CaixaHandler) ListarSessoes(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	sessoes, total, err := h.svc.ListarSessoes(c.Request.Context(), page, limit)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"data":  sessoes,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}
