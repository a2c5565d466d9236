package worker

// retry_cron.go — varredura periódica das notas não autorizadas com
// next_retry_at vencido. O circuit breaker evita martelar uma SEFAZ
// fora do ar.

import (
	"context"
	"time"

	"github.com/jrrjunior25/PDV-master-sub000/internal/infra"
	"github.com/jrrjunior25/PDV-master-sub000/internal/repository"

	"github.com/rs/zerolog/log"
)

const (
	retryTickInterval = 30 * time.Second
	retryBatchSize    = 10
)

// StartRetryCron agenda a varredura de reenvio em background até o
// contexto ser cancelado.
func StartRetryCron(ctx context.Context, notaRepo repository.NotaFiscalRepository, w *RetransmissaoWorker, cb *infra.CircuitBreaker) {
	go func() {
		ticker := time.NewTicker(retryTickInterval)
		defer ticker.Stop()

		log.Info().Msg("retry_cron iniciado")
		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("retry_cron encerrado")
				return
			case <-ticker.C:
				varrerPendentes(ctx, notaRepo, w, cb)
			}
		}
	}()
}

func varrerPendentes(ctx context.Context, notaRepo repository.NotaFiscalRepository, w *RetransmissaoWorker, cb *infra.CircuitBreaker) {
	if cb.State() == infra.CBOpen {
		log.Debug().Msg("retry_cron: circuito aberto, varredura pulada")
		return
	}

	notas, err := notaRepo.ListPendingRetries(ctx, time.Now(), retryBatchSize)
	if err != nil {
		log.Error().Err(err).Msg("retry_cron: consulta de pendências")
		return
	}
	if len(notas) == 0 {
		return
	}

	log.Info().Int("count", len(notas)).Msg("retry_cron: reenviando notas pendentes")
	for i := range notas {
		// o circuito pode abrir no meio do lote
		if cb.State() == infra.CBOpen {
			return
		}
		w.Retransmitir(ctx, &notas[i])
	}
}
