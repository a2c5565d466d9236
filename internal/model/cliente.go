package model

import (
	"time"

	"github.com/google/uuid"
)

// Cliente guarda o cadastro e o saldo de pontos de fidelidade.
// O cliente padrão ("consumidor final") nunca acumula nem resgata pontos.
type Cliente struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nome     string    `gorm:"not null"`
	CPF      *string   `gorm:"type:varchar(14);uniqueIndex"`
	Telefone *string
	Email    *string
	Pontos   int64 `gorm:"not null;default:0"`
	// Padrao marca o cliente walk-in criado no seed — excluído da fidelidade.
	Padrao         bool `gorm:"not null;default:false"`
	UltimaCompraEm *time.Time
	Ativo          bool `gorm:"not null;default:true"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (Cliente) TableName() string { return "clientes" }
