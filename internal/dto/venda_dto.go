package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type ItemVendaRequest struct {
	ProdutoID  string          `json:"produto_id" validate:"required,uuid"`
	Quantidade decimal.Decimal `json:"quantidade" validate:"required"`
}

type RegistrarVendaRequest struct {
	Itens           []ItemVendaRequest `json:"itens"            validate:"required,min=1,dive"`
	MetodoPagamento string             `json:"metodo_pagamento" validate:"required,oneof=dinheiro credito debito pix"`
	ClienteID       *string            `json:"cliente_id"       validate:"omitempty,uuid"`
	// ResgatePontos vira desconto em reais (1 ponto = R$ 1). Sem validação
	// contra o saldo do cliente nesta camada — política permissiva documentada.
	ResgatePontos int64 `json:"resgate_pontos" validate:"min=0"`
	// EmailCliente: quando presente, um job assíncrono envia o resumo fiscal.
	EmailCliente *string `json:"email_cliente" validate:"omitempty,email"`
}

// VendaFilter é vinculado da query string de GET /v1/vendas.
type VendaFilter struct {
	Data   string `form:"data"`                     // YYYY-MM-DD; vazio = hoje
	Status string `form:"status,default=concluida"` // concluida | cancelada | all
	Page   int    `form:"page,default=1"   validate:"min=1"`
	Limit  int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ItemVendaResponse struct {
	Produto       string          `json:"produto"`
	Codigo        string          `json:"codigo"`
	Quantidade    decimal.Decimal `json:"quantidade"`
	PrecoAplicado decimal.Decimal `json:"preco_aplicado"`
	Atacado       bool            `json:"atacado"`
	TotalItem     decimal.Decimal `json:"total_item"`
}

type VendaResponse struct {
	ID               string              `json:"id"`
	Numero           int64               `json:"numero"`
	Itens            []ItemVendaResponse `json:"itens"`
	Subtotal         decimal.Decimal     `json:"subtotal"`
	Desconto         decimal.Decimal     `json:"desconto"`
	Total            decimal.Decimal     `json:"total"`
	MetodoPagamento  string              `json:"metodo_pagamento"`
	Status           string              `json:"status"`
	ChaveAcesso      string              `json:"chave_acesso"`
	Protocolo        *string             `json:"protocolo,omitempty"`
	Ambiente         string              `json:"ambiente"`
	PontosGanhos     int64               `json:"pontos_ganhos"`
	PontosResgatados int64               `json:"pontos_resgatados"`
	CreatedAt        string              `json:"created_at"`
}

type VendaListResponse struct {
	Data  []VendaResponse `json:"data"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}
