package dto

import "github.com/shopspring/decimal"

type ProdutoRequest struct {
	Codigo        string           `json:"codigo"          validate:"required"`
	Nome          string           `json:"nome"            validate:"required"`
	Descricao     *string          `json:"descricao"`
	Categoria     string           `json:"categoria"`
	PrecoCusto    decimal.Decimal  `json:"preco_custo"     validate:"required"`
	PrecoVenda    decimal.Decimal  `json:"preco_venda"     validate:"required"`
	PrecoAtacado  *decimal.Decimal `json:"preco_atacado"`
	QtdMinAtacado *decimal.Decimal `json:"qtd_min_atacado"`
	Estoque       decimal.Decimal  `json:"estoque"`
	EstoqueMinimo decimal.Decimal  `json:"estoque_minimo"`
	Unidade       string           `json:"unidade"`
}

type ProdutoFilter struct {
	Codigo    string `form:"codigo"`
	Nome      string `form:"nome"`
	Categoria string `form:"categoria"`
	Ativo     string `form:"ativo"`
	Page      int    `form:"page,default=1"   validate:"min=1"`
	Limit     int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type ProdutoResponse struct {
	ID            string           `json:"id"`
	Codigo        string           `json:"codigo"`
	Nome          string           `json:"nome"`
	Descricao     *string          `json:"descricao,omitempty"`
	Categoria     string           `json:"categoria"`
	PrecoCusto    decimal.Decimal  `json:"preco_custo"`
	PrecoVenda    decimal.Decimal  `json:"preco_venda"`
	PrecoAtacado  *decimal.Decimal `json:"preco_atacado,omitempty"`
	QtdMinAtacado *decimal.Decimal `json:"qtd_min_atacado,omitempty"`
	Estoque       decimal.Decimal  `json:"estoque"`
	EstoqueMinimo decimal.Decimal  `json:"estoque_minimo"`
	Unidade       string           `json:"unidade"`
	Ativo         bool             `json:"ativo"`
}

type ProdutoListResponse struct {
	Data  []ProdutoResponse `json:"data"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}

// PrecoResponse é a resposta do terminal de consulta de preço (com cache).
type PrecoResponse struct {
	Codigo     string          `json:"codigo"`
	Nome       string          `json:"nome"`
	PrecoVenda decimal.Decimal `json:"preco_venda"`
}
