package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Venda é o registro imutável de uma transação concluída.
// Invariantes: Subtotal = Σ TotalItem; Total = max(0, Subtotal − Desconto).
// O pipeline só produz Status "concluida"; "cancelada" e "pendente" são
// estados declarados sem transição produtora.
type Venda struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Numero        int64           `gorm:"uniqueIndex;not null"`
	SessaoCaixaID uuid.UUID       `gorm:"type:uuid;index;not null"`
	UsuarioID     uuid.UUID       `gorm:"type:uuid;not null"`
	ClienteID     *uuid.UUID      `gorm:"type:uuid;index"`
	Subtotal      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Desconto      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Total         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// MetodoPagamento: "dinheiro" | "credito" | "debito" | "pix"
	MetodoPagamento string `gorm:"type:varchar(20);not null"`
	Status          string `gorm:"type:varchar(20);not null;default:'concluida'"`
	// Resumo fiscal da venda; o documento completo fica em NotaFiscal.
	ChaveAcesso string  `gorm:"type:varchar(44);index"`
	Protocolo   *string `gorm:"type:varchar(30)"`
	Ambiente    string  `gorm:"type:varchar(15)"`
	// Fidelidade
	PontosGanhos     int64 `gorm:"not null;default:0"`
	PontosResgatados int64 `gorm:"not null;default:0"`
	CreatedAt        time.Time

	Itens   []VendaItem `gorm:"foreignKey:VendaID"`
	Cliente *Cliente    `gorm:"foreignKey:ClienteID"`
}

func (Venda) TableName() string { return "vendas" }

// VendaItem é o snapshot de uma linha do carrinho no momento da venda.
// Atacado indica que o preço aplicado veio da faixa de atacado.
type VendaItem struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	VendaID       uuid.UUID       `gorm:"type:uuid;index;not null"`
	ProdutoID     uuid.UUID       `gorm:"type:uuid;index;not null"`
	CodigoProduto string          `gorm:"not null"`
	NomeProduto   string          `gorm:"not null"`
	Quantidade    decimal.Decimal `gorm:"type:decimal(12,3);not null"`
	PrecoAplicado decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	TotalItem     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Atacado       bool            `gorm:"not null;default:false"`

	Produto *Produto `gorm:"foreignKey:ProdutoID"`
}

func (VendaItem) TableName() string { return "venda_itens" }
