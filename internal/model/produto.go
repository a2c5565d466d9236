package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Produto representa um item do catálogo vendável.
// Estoque é decimal para suportar unidades fracionadas (kg, m, l).
// O estoque NUNCA é alterado diretamente: toda mutação passa pelo
// registro de MovimentoEstoque (ver EstoqueService).
type Produto struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Codigo     string    `gorm:"uniqueIndex;not null"`
	Nome       string    `gorm:"index;not null"`
	Descricao  *string
	Categoria  string          `gorm:"not null;default:'geral'"`
	PrecoCusto decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	PrecoVenda decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	// PrecoAtacado + QtdMinAtacado habilitam o preço por atacado: quando
	// ambos estão preenchidos e a quantidade da linha atinge o mínimo, o
	// preço aplicado passa a ser o de atacado.
	PrecoAtacado  *decimal.Decimal `gorm:"type:decimal(10,2)"`
	QtdMinAtacado *decimal.Decimal `gorm:"type:decimal(12,3)"`
	Estoque       decimal.Decimal  `gorm:"type:decimal(12,3);not null;default:0"`
	EstoqueMinimo decimal.Decimal  `gorm:"type:decimal(12,3);not null;default:5"`
	Unidade       string           `gorm:"not null;default:'UN'"`
	Ativo         bool             `gorm:"not null;default:true"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (Produto) TableName() string { return "produtos" }
