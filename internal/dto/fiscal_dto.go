package dto

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

type NotaFiscalResponse struct {
	ID          string          `json:"id"`
	VendaID     string          `json:"venda_id"`
	Numero      int64           `json:"numero"`
	Serie       int             `json:"serie"`
	ChaveAcesso string          `json:"chave_acesso"`
	Ambiente    string          `json:"ambiente"`
	Status      string          `json:"status"`
	Protocolo   *string         `json:"protocolo,omitempty"`
	Motivo      *string         `json:"motivo,omitempty"`
	Documento   json.RawMessage `json:"documento"`
	CreatedAt   string          `json:"created_at"`
}

type GerarPixRequest struct {
	Valor decimal.Decimal `json:"valor" validate:"required"`
	TxID  string          `json:"txid"  validate:"omitempty,max=25"`
}

type GerarPixResponse struct {
	Payload string `json:"payload"`
}
