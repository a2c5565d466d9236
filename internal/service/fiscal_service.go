package service

import (
	"context"
	"fmt"
	"time"

	"github.com/jrrjunior25/PDV-master-sub000/internal/dto"
	"github.com/jrrjunior25/PDV-master-sub000/internal/fiscal"
	"github.com/jrrjunior25/PDV-master-sub000/internal/model"
	"github.com/jrrjunior25/PDV-master-sub000/internal/repository"
	"github.com/jrrjunior25/PDV-master-sub000/internal/worker"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type FiscalService interface {
	ObterNota(ctx context.Context, id uuid.UUID) (*dto.NotaFiscalResponse, error)
	ObterNotaPorVenda(ctx context.Context, vendaID uuid.UUID) (*dto.NotaFiscalResponse, error)
	// Retransmitir enfileira uma nota não autorizada para novo envio
	// imediato, fora da janela do cron.
	Retransmitir(ctx context.Context, id uuid.UUID) error
	GerarPix(ctx context.Context, req dto.GerarPixRequest) (*dto.GerarPixResponse, error)
}

type fiscalService struct {
	notaRepo   repository.NotaFiscalRepository
	configRepo repository.ConfiguracaoRepository
	dispatcher *worker.Dispatcher
}

func NewFiscalService(
	notaRepo repository.NotaFiscalRepository,
	configRepo repository.ConfiguracaoRepository,
	dispatcher *worker.Dispatcher,
) FiscalService {
	return &fiscalService{notaRepo: notaRepo, configRepo: configRepo, dispatcher: dispatcher}
}

func (s *fiscalService) ObterNota(ctx context.Context, id uuid.UUID) (*dto.NotaFiscalResponse, error) {
	nota, err := s.notaRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("nota fiscal %s não encontrada", id)
	}
	return notaToResponse(nota), nil
}

func (s *fiscalService) ObterNotaPorVenda(ctx context.Context, vendaID uuid.UUID) (*dto.NotaFiscalResponse, error) {
	nota, err := s.notaRepo.FindByVendaID(ctx, vendaID)
	if err != nil {
		return nil, fmt.Errorf("nota fiscal da venda %s não encontrada", vendaID)
	}
	return notaToResponse(nota), nil
}

func (s *fiscalService) Retransmitir(ctx context.Context, id uuid.UUID) error {
	nota, err := s.notaRepo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("nota fiscal %s não encontrada", id)
	}
	if nota.Status == "autorizada" {
		return fmt.Errorf("nota %s já autorizada", nota.ChaveAcesso)
	}
	if s.dispatcher == nil {
		return fmt.Errorf("fila de retransmissão indisponível")
	}
	return s.dispatcher.EnqueueRetransmissao(ctx, worker.RetransmissaoJob{NotaID: nota.ID.String()})
}

// GerarPix monta o payload copia-e-cola a partir da configuração da loja.
// O payload independe de conectividade: qualquer leitor compatível consome.
func (s *fiscalService) GerarPix(ctx context.Context, req dto.GerarPixRequest) (*dto.GerarPixResponse, error) {
	if req.Valor.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: valor deve ser positivo", ErrNotaInvalida)
	}

	cfg, err := s.configRepo.Get(ctx)
	if err != nil {
		return nil, err
	}
	if cfg.PixChave == "" {
		return nil, fmt.Errorf("%w: chave PIX não configurada", ErrNotaInvalida)
	}

	payload := fiscal.PixPayload(cfg.PixNomeRecebedor, cfg.PixCidade, cfg.PixChave, req.Valor, req.TxID)
	return &dto.GerarPixResponse{Payload: payload}, nil
}

func notaToResponse(n *model.NotaFiscal) *dto.NotaFiscalResponse {
	return &dto.NotaFiscalResponse{
		ID:          n.ID.String(),
		VendaID:     n.VendaID.String(),
		Numero:      n.Numero,
		Serie:       n.Serie,
		ChaveAcesso: n.ChaveAcesso,
		Ambiente:    n.Ambiente,
		Status:      n.Status,
		Protocolo:   n.Protocolo,
		Motivo:      n.Motivo,
		Documento:   n.Documento,
		CreatedAt:   n.CreatedAt.Format(time.RFC3339),
	}
}
