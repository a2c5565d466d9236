package model

import (
	"time"

	"github.com/google/uuid"
)

// Usuario guarda os operadores do sistema com acesso por perfil.
// Perfil: "operador" | "supervisor" | "administrador"
type Usuario struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Username  string    `gorm:"uniqueIndex;not null"`
	Nome      string    `gorm:"not null"`
	Email     *string
	SenhaHash string `gorm:"not null"`
	Perfil    string `gorm:"type:varchar(20);not null"`
	Ativo     bool   `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Usuario) TableName() string { return "usuarios" }
