package model

import "time"

// Configuracao é a linha única de parâmetros da loja.
// ProximaNotaNumero é o contador monotônico de numeração fiscal:
// consumido e avançado exatamente uma vez por venda concluída, dentro da
// mesma transação que grava a venda.
type Configuracao struct {
	ID                uint   `gorm:"primaryKey"`
	CNPJ              string `gorm:"type:varchar(18);not null"`
	RazaoSocial       string `gorm:"not null"`
	NomeFantasia      string
	IE                string `gorm:"type:varchar(20)"`
	Endereco          string
	Municipio         string
	UF                string `gorm:"type:varchar(2);not null;default:'SP'"`
	SerieNFCe         int    `gorm:"not null;default:1"`
	ProximaNotaNumero int64  `gorm:"not null;default:1"`
	// Ambiente: "homologacao" | "producao"
	Ambiente string `gorm:"type:varchar(15);not null;default:'homologacao'"`
	// CertificadoPath aponta o material de assinatura; vazio = nota sem
	// assinatura (emitida com aviso).
	CertificadoPath *string
	// PIX
	PixChave         string
	PixNomeRecebedor string
	PixCidade        string
	UpdatedAt        time.Time
}

func (Configuracao) TableName() string { return "configuracoes" }
