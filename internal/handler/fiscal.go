package handler

import (
	"net/http"

	"github.com/jrrjunior25/PDV-master-sub000/internal/apierror"
	"github.com/jrrjunior25/PDV-master-sub000/internal/dto"
	"github.com/jrrjunior25/PDV-master-sub000/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type FiscalHandler struct{ svc service.FiscalService }

func NewFiscalHandler(svc service.FiscalService) *FiscalHandler { return &FiscalHandler{svc: svc} }

func (h *FiscalHandler) ObterNota(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	resp, err := h.svc.ObterNota(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// NotaPorVenda devolve a NFC-e emitida para uma venda.
func (h *FiscalHandler) NotaPorVenda(c *gin.Context) {
	vendaID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	resp, err := h.svc.ObterNotaPorVenda(c.Request.Context(), vendaID)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Retransmitir godoc
// @Summary      Reenviar nota à SEFAZ
// @Description  Enfileira o reenvio imediato de uma nota pendente ou rejeitada.
// @Tags         fiscal
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "UUID da nota"
// @Success      202
// @Failure      400 {object} apierror.APIError
// @Router       /v1/notas/{id}/retransmitir [post]
func (h *FiscalHandler) Retransmitir(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	if err := h.svc.Retransmitir(c.Request.Context(), id); err != nil {
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusAccepted)
}

// GerarPix godoc
// @Summary      Gerar payload PIX copia-e-cola
// @Description  Monta o TLV EMV com CRC16 a partir da chave configurada da loja. Funciona offline.
// @Tags         fiscal
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.GerarPixRequest true "Valor e txid"
// @Success      200 {object} dto.GerarPixResponse
// @Failure      422 {object} apierror.APIError
// @Router       /v1/pix [post]
func (h *FiscalHandler) GerarPix(c *gin.Context) {
	var req dto.GerarPixRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.GerarPix(c.Request.Context(), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
