package worker

// email_worker.go
// Monta e envia por SMTP o resumo fiscal em texto plano de uma venda.

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jrrjunior25/PDV-master-sub000/internal/infra"
	"github.com/jrrjunior25/PDV-master-sub000/internal/model"
	"github.com/jrrjunior25/PDV-master-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type EmailWorker struct {
	mailer    *infra.Mailer
	vendaRepo repository.VendaRepository
}

func NewEmailWorker(mailer *infra.Mailer, vendaRepo repository.VendaRepository) *EmailWorker {
	return &EmailWorker{mailer: mailer, vendaRepo: vendaRepo}
}

func (w *EmailWorker) Process(ctx context.Context, raw json.RawMessage) {
	var payload EmailJob
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("email_worker: invalid payload")
		return
	}
	if payload.Destinatario == "" {
		log.Warn().Msg("email_worker: destinatário vazio, job descartado")
		return
	}
	vendaID, err := uuid.Parse(payload.VendaID)
	if err != nil {
		log.Error().Str("venda_id", payload.VendaID).Msg("email_worker: invalid venda_id")
		return
	}

	venda, err := w.vendaRepo.FindByID(ctx, vendaID)
	if err != nil {
		log.Error().Err(err).Str("venda_id", payload.VendaID).Msg("email_worker: venda not found")
		return
	}

	subject := fmt.Sprintf("Cupom fiscal — Venda #%d", venda.Numero)
	if err := w.mailer.SendResumoFiscal(payload.Destinatario, subject, resumoFiscal(venda)); err != nil {
		log.Error().Err(err).Str("to", payload.Destinatario).Msg("email_worker: failed to send email")
		return
	}
	log.Info().Str("to", payload.Destinatario).Int64("numero", venda.Numero).
		Msg("email_worker: resumo fiscal enviado")
}

func resumoFiscal(v *model.Venda) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Venda #%d\n", v.Numero)
	fmt.Fprintf(&b, "Data: %s\n\n", v.CreatedAt.Format("02/01/2006 15:04"))
	for _, item := range v.Itens {
		fmt.Fprintf(&b, "%s x%s  R$ %s\n", item.NomeProduto, item.Quantidade.String(), item.TotalItem.StringFixed(2))
	}
	fmt.Fprintf(&b, "\nSubtotal: R$ %s\n", v.Subtotal.StringFixed(2))
	if v.Desconto.IsPositive() {
		fmt.Fprintf(&b, "Desconto: R$ %s\n", v.Desconto.StringFixed(2))
	}
	fmt.Fprintf(&b, "Total: R$ %s\n", v.Total.StringFixed(2))
	fmt.Fprintf(&b, "Pagamento: %s\n\n", v.MetodoPagamento)
	fmt.Fprintf(&b, "Chave de acesso: %s\n", v.ChaveAcesso)
	if v.Protocolo != nil {
		fmt.Fprintf(&b, "Protocolo de autorização: %s\n", *v.Protocolo)
	}
	return b.String()
}
