package dto

import "github.com/shopspring/decimal"

// AjusteEstoqueRequest registra um movimento manual no kardex.
type AjusteEstoqueRequest struct {
	Tipo       string          `json:"tipo"       validate:"required,oneof=ajuste_manual perda devolucao"`
	Quantidade decimal.Decimal `json:"quantidade" validate:"required"`
	Descricao  string          `json:"descricao"  validate:"required,min=3"`
}

type MovimentoEstoqueResponse struct {
	ID              string          `json:"id"`
	ProdutoID       string          `json:"produto_id"`
	Tipo            string          `json:"tipo"`
	Quantidade      decimal.Decimal `json:"quantidade"`
	EstoqueAnterior decimal.Decimal `json:"estoque_anterior"`
	EstoqueNovo     decimal.Decimal `json:"estoque_novo"`
	CustoUnitario   decimal.Decimal `json:"custo_unitario"`
	Descricao       string          `json:"descricao"`
	CreatedAt       string          `json:"created_at"`
}

// ─── Entrada de mercadoria (preview já extraído da NF do fornecedor) ─────────

type EntradaItemRequest struct {
	ProdutoID     string          `json:"produto_id"     validate:"required,uuid"`
	Quantidade    decimal.Decimal `json:"quantidade"     validate:"required"`
	CustoUnitario decimal.Decimal `json:"custo_unitario" validate:"required"`
}

// ConfirmarEntradaRequest é o preview {fornecedor, transportadora, itens,
// condições financeiras} produzido pelo importador de XML (colaborador
// externo). A confirmação usa os MESMOS primitivos de estoque das vendas,
// marcando os movimentos como "entrada", e agenda N parcelas de despesa.
type ConfirmarEntradaRequest struct {
	Fornecedor         string               `json:"fornecedor"     validate:"required"`
	Transportadora     *string              `json:"transportadora"`
	Itens              []EntradaItemRequest `json:"itens"          validate:"required,min=1,dive"`
	Parcelas           int                  `json:"parcelas"       validate:"required,min=1"`
	PrimeiroVencimento string               `json:"primeiro_vencimento" validate:"required,datetime=2006-01-02"`
}

type ConfirmarEntradaResponse struct {
	ItensProcessados int             `json:"itens_processados"`
	ValorTotal       decimal.Decimal `json:"valor_total"`
	ParcelasGeradas  int             `json:"parcelas_geradas"`
}
