package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// NotaFiscal guarda o documento NFC-e completo e o estado da transmissão
// à SEFAZ. Status: "pendente" | "autorizada" | "rejeitada" | "erro".
// Os campos de retry alimentam o cron de retransmissão em contingência —
// a venda em si nunca é revisitada, apenas protocolo/status mudam.
type NotaFiscal struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	VendaID     uuid.UUID `gorm:"type:uuid;index;not null"`
	Numero      int64     `gorm:"not null"`
	Serie       int       `gorm:"not null"`
	ChaveAcesso string    `gorm:"type:varchar(44);uniqueIndex;not null"`
	Ambiente    string    `gorm:"type:varchar(15);not null"`
	// Documento é a NFC-e serializada (fiscal.Nota).
	Documento   json.RawMessage `gorm:"type:jsonb;not null"`
	Status      string          `gorm:"type:varchar(20);not null;default:'pendente'"`
	Protocolo   *string         `gorm:"type:varchar(30)"`
	Motivo      *string
	RetryCount  int        `gorm:"not null;default:0"`
	NextRetryAt *time.Time `gorm:"column:next_retry_at"`
	LastError   *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (NotaFiscal) TableName() string { return "notas_fiscais" }
