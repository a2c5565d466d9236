package dto

type ClienteRequest struct {
	Nome     string  `json:"nome"     validate:"required,min=2"`
	CPF      *string `json:"cpf"      validate:"omitempty,len=11"`
	Telefone *string `json:"telefone"`
	Email    *string `json:"email"    validate:"omitempty,email"`
}

type ClienteResponse struct {
	ID             string  `json:"id"`
	Nome           string  `json:"nome"`
	CPF            *string `json:"cpf,omitempty"`
	Telefone       *string `json:"telefone,omitempty"`
	Email          *string `json:"email,omitempty"`
	Pontos         int64   `json:"pontos"`
	Padrao         bool    `json:"padrao"`
	UltimaCompraEm *string `json:"ultima_compra_em,omitempty"`
}
