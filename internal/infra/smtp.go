package infra

import (
	"fmt"
	"net/smtp"

	"github.com/jrrjunior25/PDV-master-sub000/internal/config"

	"github.com/jordan-wright/email"
)

// Mailer encapsula a configuração SMTP para o envio do resumo fiscal ao
// cliente após a venda.
type Mailer struct {
	host     string
	user     string
	password string
	addr     string
}

func NewMailer(cfg *config.Config) *Mailer {
	return &Mailer{
		host:     cfg.SMTPHost,
		user:     cfg.SMTPUser,
		password: cfg.SMTPPassword,
		addr:     fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
	}
}

// SendResumoFiscal envia o resumo em texto plano do cupom ao cliente.
func (m *Mailer) SendResumoFiscal(to, subject, body string) error {
	e := email.NewEmail()
	e.From = m.user
	e.To = []string{to}
	e.Subject = subject
	e.Text = []byte(body)

	auth := smtp.PlainAuth("", m.user, m.password, m.host)
	return e.Send(m.addr, auth)
}
