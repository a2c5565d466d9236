package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RegistroFinanceiro é um lançamento append-only do caixa da loja.
// Tipo: "receita" | "despesa". Alimenta a conferência de fechamento de
// caixa e o contas a pagar das entradas de mercadoria.
type RegistroFinanceiro struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Tipo      string          `gorm:"type:varchar(10);not null"`
	Descricao string          `gorm:"not null"`
	Valor     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Data      time.Time       `gorm:"index;not null"`
	Categoria string          `gorm:"not null;default:'geral'"`
	CreatedAt time.Time
}

func (RegistroFinanceiro) TableName() string { return "registros_financeiros" }
