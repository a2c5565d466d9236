package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SessaoCaixa representa o ciclo de vida de uma gaveta de caixa.
// Status: "aberta" | "fechada". No máximo UMA sessão aberta existe na
// loja a qualquer momento (guarda em CaixaService.Abrir).
type SessaoCaixa struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UsuarioID    uuid.UUID       `gorm:"type:uuid;not null"`
	SaldoInicial decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// SaldoSistema é calculado no fechamento:
	// inicial + vendas em dinheiro desde a abertura + suprimentos − sangrias.
	SaldoSistema *decimal.Decimal `gorm:"type:decimal(12,2)"`
	// SaldoFinal é o valor contado na gaveta pelo operador.
	SaldoFinal *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Status     string           `gorm:"type:varchar(20);not null;default:'aberta'"`
	AbertaEm   time.Time
	FechadaEm  *time.Time

	Movimentos []MovimentoCaixa `gorm:"foreignKey:SessaoCaixaID"`
}

func (SessaoCaixa) TableName() string { return "sessoes_caixa" }

// MovimentoCaixa é um evento imutável da gaveta fora do fluxo de vendas.
// Tipo: "sangria" (retirada) | "suprimento" (aporte).
// Movimentos nunca são alterados ou removidos.
type MovimentoCaixa struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SessaoCaixaID uuid.UUID       `gorm:"type:uuid;index;not null"`
	Tipo          string          `gorm:"type:varchar(20);not null"`
	Valor         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Descricao     string          `gorm:"not null"`
	UsuarioID     uuid.UUID       `gorm:"type:uuid;not null"`
	CreatedAt     time.Time
}

func (MovimentoCaixa) TableName() string { return "movimentos_caixa" }
