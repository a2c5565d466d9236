package dto

import "github.com/shopspring/decimal"

type AbrirCaixaRequest struct {
	SaldoInicial decimal.Decimal `json:"saldo_inicial" validate:"required"`
}

type MovimentoCaixaRequest struct {
	Tipo      string          `json:"tipo"      validate:"required,oneof=sangria suprimento"`
	Valor     decimal.Decimal `json:"valor"     validate:"required"`
	Descricao string          `json:"descricao" validate:"required,min=3"`
}

type FecharCaixaRequest struct {
	SaldoContado decimal.Decimal `json:"saldo_contado" validate:"required"`
}

type MovimentoCaixaResponse struct {
	ID        string          `json:"id"`
	Tipo      string          `json:"tipo"`
	Valor     decimal.Decimal `json:"valor"`
	Descricao string          `json:"descricao"`
	CreatedAt string          `json:"created_at"`
}

type SessaoCaixaResponse struct {
	ID           string                   `json:"id"`
	UsuarioID    string                   `json:"usuario_id"`
	SaldoInicial decimal.Decimal          `json:"saldo_inicial"`
	SaldoSistema *decimal.Decimal         `json:"saldo_sistema,omitempty"`
	SaldoFinal   *decimal.Decimal         `json:"saldo_final,omitempty"`
	Status       string                   `json:"status"`
	AbertaEm     string                   `json:"aberta_em"`
	FechadaEm    *string                  `json:"fechada_em,omitempty"`
	Movimentos   []MovimentoCaixaResponse `json:"movimentos,omitempty"`
}

// FechamentoResponse devolve a conferência do fechamento: saldo que o
// sistema esperava na gaveta e a diferença contra o valor contado.
type FechamentoResponse struct {
	SessaoCaixaID string          `json:"sessao_caixa_id"`
	SaldoSistema  decimal.Decimal `json:"saldo_sistema"`
	SaldoContado  decimal.Decimal `json:"saldo_contado"`
	Diferenca     decimal.Decimal `json:"diferenca"`
}
