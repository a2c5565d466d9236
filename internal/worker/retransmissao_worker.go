package worker

// retransmissao_worker.go
// Reenvia à SEFAZ notas que ficaram "pendente" (falha de transporte) ou
// "rejeitada" na tentativa síncrona da venda. A venda nunca é revisitada:
// apenas status, protocolo e campos de retry da nota mudam.

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jrrjunior25/PDV-master-sub000/internal/fiscal"
	"github.com/jrrjunior25/PDV-master-sub000/internal/infra"
	"github.com/jrrjunior25/PDV-master-sub000/internal/model"
	"github.com/jrrjunior25/PDV-master-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// MaxNotaRetries é o teto de reenvios antes de a nota ir para a DLQ.
const MaxNotaRetries = 5

// transmissor é o contrato mínimo com o cliente SEFAZ.
type transmissor interface {
	Enviar(ctx context.Context, envio infra.EnvioNFCe) (*infra.RetornoSefaz, error)
}

type RetransmissaoWorker struct {
	notaRepo repository.NotaFiscalRepository
	sefaz    transmissor
	cb       *infra.CircuitBreaker
	rdb      *redis.Client
}

func NewRetransmissaoWorker(
	notaRepo repository.NotaFiscalRepository,
	sefaz transmissor,
	cb *infra.CircuitBreaker,
	rdb *redis.Client,
) *RetransmissaoWorker {
	return &RetransmissaoWorker{notaRepo: notaRepo, sefaz: sefaz, cb: cb, rdb: rdb}
}

// Process handles a single retransmission job pulled from the queue.
func (w *RetransmissaoWorker) Process(ctx context.Context, raw json.RawMessage) {
	var payload RetransmissaoJob
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("retransmissao_worker: invalid payload")
		return
	}
	notaID, err := uuid.Parse(payload.NotaID)
	if err != nil {
		log.Error().Str("nota_id", payload.NotaID).Msg("retransmissao_worker: invalid nota_id")
		return
	}

	nota, err := w.notaRepo.FindByID(ctx, notaID)
	if err != nil {
		log.Error().Err(err).Str("nota_id", payload.NotaID).Msg("retransmissao_worker: nota not found")
		return
	}
	w.Retransmitir(ctx, nota)
}

// Retransmitir faz um reenvio através do circuit breaker e atualiza a
// nota conforme o resultado. Compartilhado entre a fila e o cron.
func (w *RetransmissaoWorker) Retransmitir(ctx context.Context, nota *model.NotaFiscal) {
	if nota.Status == "autorizada" {
		return
	}

	var doc fiscal.Nota
	if err := json.Unmarshal(nota.Documento, &doc); err != nil {
		msg := fmt.Sprintf("documento ilegível: %v", err)
		nota.Status = "erro"
		nota.LastError = &msg
		nota.NextRetryAt = nil
		_ = w.notaRepo.Update(ctx, nota)
		log.Error().Str("chave_acesso", nota.ChaveAcesso).Msg("retransmissao_worker: documento ilegível, nota em erro")
		return
	}

	var retorno *infra.RetornoSefaz
	cbErr := w.cb.Execute(func() error {
		resp, err := w.sefaz.Enviar(ctx, infra.EnvioNFCe{
			ChaveAcesso: nota.ChaveAcesso,
			Ambiente:    nota.Ambiente,
			Nota:        &doc,
		})
		if err != nil {
			return err
		}
		retorno = resp
		return nil
	})

	if cbErr != nil {
		w.agendarProximaTentativa(ctx, nota, cbErr.Error())
		return
	}

	if retorno.Autorizada() {
		nota.Status = "autorizada"
		protocolo := retorno.Protocolo
		nota.Protocolo = &protocolo
		nota.Motivo = nil
		nota.LastError = nil
		nota.NextRetryAt = nil
		_ = w.notaRepo.Update(ctx, nota)
		log.Info().Str("chave_acesso", nota.ChaveAcesso).
			Str("protocolo", protocolo).
			Int("total_retries", nota.RetryCount).
			Msg("retransmissao_worker: nota autorizada após reenvio")
		return
	}

	motivo := fmt.Sprintf("cStat %d: %s", retorno.CStat, retorno.XMotivo)
	nota.Status = "rejeitada"
	nota.Motivo = &motivo
	w.agendarProximaTentativa(ctx, nota, motivo)
}

func (w *RetransmissaoWorker) agendarProximaTentativa(ctx context.Context, nota *model.NotaFiscal, causa string) {
	nota.RetryCount++
	nota.LastError = &causa

	if nota.RetryCount >= MaxNotaRetries {
		nota.Status = "erro"
		nota.NextRetryAt = nil
		_ = w.notaRepo.Update(ctx, nota)

		log.Error().Str("chave_acesso", nota.ChaveAcesso).
			Int("retries", nota.RetryCount).
			Msg("retransmissao_worker: limite de reenvios atingido, nota na DLQ")

		payload := fmt.Sprintf(`{"nota_id":"%s","chave_acesso":"%s"}`, nota.ID, nota.ChaveAcesso)
		SendToDLQ(ctx, w.rdb, QueueRetransmissao, "retransmissao", []byte(payload),
			fmt.Sprintf("limite de reenvios (%d) atingido: %s", MaxNotaRetries, causa),
			nota.RetryCount)
		return
	}

	proxima := time.Now().Add(computeRetryBackoff(nota.RetryCount))
	nota.NextRetryAt = &proxima
	_ = w.notaRepo.Update(ctx, nota)

	log.Warn().Str("chave_acesso", nota.ChaveAcesso).
		Int("retry_count", nota.RetryCount).
		Time("next_retry_at", proxima).
		Msg("retransmissao_worker: reenvio falhou, próxima tentativa agendada")
}

// computeRetryBackoff: 2min, 4min, 8min … limitado a 1h.
func computeRetryBackoff(retryCount int) time.Duration {
	backoff := time.Duration(1<<uint(retryCount)) * time.Minute
	if backoff > time.Hour {
		return time.Hour
	}
	return backoff
}
