package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueRetransmissao = "jobs:retransmissao"
	QueueEmail         = "jobs:email"
)

// brpopTimeout limita o bloqueio de cada BRPOP para que o worker perceba
// o cancelamento do contexto.
const brpopTimeout = 5 * time.Second

// Job é o envelope comum de todas as tarefas assíncronas.
type Job struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// RetransmissaoJob pede um novo envio de uma nota não autorizada.
type RetransmissaoJob struct {
	NotaID string `json:"nota_id"`
}

// EmailJob pede o envio do resumo fiscal de uma venda por email.
type EmailJob struct {
	Destinatario string `json:"destinatario"`
	VendaID      string `json:"venda_id"`
}

// Dispatcher publica jobs nas listas Redis consumidas pelo pool.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

func (d *Dispatcher) EnqueueRetransmissao(ctx context.Context, payload interface{}) error {
	return d.enqueue(ctx, QueueRetransmissao, "retransmissao", payload)
}

func (d *Dispatcher) EnqueueEmail(ctx context.Context, payload interface{}) error {
	return d.enqueue(ctx, QueueEmail, "email", payload)
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	encoded, err := json.Marshal(Job{Type: jobType, Payload: data})
	if err != nil {
		return err
	}
	return d.rdb.LPush(ctx, queue, encoded).Err()
}

// Handlers agrupa os processadores de job por fila.
type Handlers struct {
	Retransmissao *RetransmissaoWorker
	Email         *EmailWorker
}

func (h Handlers) dispatch(ctx context.Context, queue string, job Job) {
	switch queue {
	case QueueRetransmissao:
		if h.Retransmissao != nil {
			h.Retransmissao.Process(ctx, job.Payload)
		}
	case QueueEmail:
		if h.Email != nil {
			h.Email.Process(ctx, job.Payload)
		}
	default:
		log.Warn().Str("queue", queue).Str("type", job.Type).Msg("job de fila desconhecida descartado")
	}
}

// StartWorkerPool sobe numWorkers goroutines consumindo as duas filas por
// BRPOP. Ociosos não queimam CPU; o contexto encerra o pool.
func StartWorkerPool(ctx context.Context, rdb *redis.Client, numWorkers int, handlers Handlers) {
	for i := 0; i < numWorkers; i++ {
		go consumir(ctx, rdb, i, handlers)
	}
	log.Info().Int("workers", numWorkers).Msg("worker pool iniciado")
}

func consumir(ctx context.Context, rdb *redis.Client, id int, handlers Handlers) {
	filas := []string{QueueRetransmissao, QueueEmail}
	for ctx.Err() == nil {
		result, err := rdb.BRPop(ctx, brpopTimeout, filas...).Result()
		if err != nil || len(result) < 2 {
			// redis.Nil no timeout, ou contexto cancelado
			continue
		}
		var job Job
		if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
			log.Error().Str("queue", result[0]).Err(err).Msg("job ilegível descartado")
			continue
		}
		handlers.dispatch(ctx, result[0], job)
	}
	log.Info().Int("worker", id).Msg("worker encerrado")
}
