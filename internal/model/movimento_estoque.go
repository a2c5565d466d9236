package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MovimentoEstoque é o registro append-only do kardex: todo ajuste de
// estoque de um produto gera exatamente uma entrada aqui.
// Invariante: EstoqueNovo = EstoqueAnterior + Quantidade, e a reaplicação
// cronológica dos movimentos de um produto reconstrói seu estoque atual.
// Entradas nunca são alteradas nem removidas.
type MovimentoEstoque struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProdutoID uuid.UUID `gorm:"type:uuid;not null;index"`
	// Tipo: "venda" | "entrada" | "ajuste_manual" | "perda" | "devolucao"
	Tipo string `gorm:"type:varchar(20);not null"`
	// Quantidade com sinal: positiva = entrada, negativa = saída.
	Quantidade      decimal.Decimal `gorm:"type:decimal(12,3);not null"`
	EstoqueAnterior decimal.Decimal `gorm:"type:decimal(12,3);not null"`
	EstoqueNovo     decimal.Decimal `gorm:"type:decimal(12,3);not null"`
	CustoUnitario   decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	Descricao       string
	UsuarioID       uuid.UUID  `gorm:"type:uuid;not null"`
	ReferenciaID    *uuid.UUID `gorm:"type:uuid"`
	CreatedAt       time.Time

	Produto *Produto `gorm:"foreignKey:ProdutoID"`
}

func (MovimentoEstoque) TableName() string { return "movimentos_estoque" }
