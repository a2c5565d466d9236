package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jrrjunior25/PDV-master-sub000/internal/dto"
	"github.com/jrrjunior25/PDV-master-sub000/internal/keymutex"
	"github.com/jrrjunior25/PDV-master-sub000/internal/model"
	"github.com/jrrjunior25/PDV-master-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type CaixaService interface {
	Abrir(ctx context.Context, usuarioID uuid.UUID, req dto.AbrirCaixaRequest) (*dto.SessaoCaixaResponse, error)
	// SessaoAberta devolve a sessão aberta da loja ou ErrSemCaixaAberto.
	// É a pré-condição de toda venda e de todo movimento manual.
	SessaoAberta(ctx context.Context) (*model.SessaoCaixa, error)
	SessaoAtual(ctx context.Context) (*dto.SessaoCaixaResponse, error)
	RegistrarMovimento(ctx context.Context, usuarioID uuid.UUID, req dto.MovimentoCaixaRequest) error
	Fechar(ctx context.Context, req dto.FecharCaixaRequest) (*dto.FechamentoResponse, error)
	ObterSessao(ctx context.Context, id uuid.UUID) (*dto.SessaoCaixaResponse, error)
	ListarSessoes(ctx context.Context, page, limit int) ([]dto.SessaoCaixaResponse, int64, error)
}

type caixaService struct {
	repo           repository.CaixaRepository
	vendaRepo      repository.VendaRepository
	financeiroRepo repository.FinanceiroRepository
	locks          *keymutex.Registry
}

func NewCaixaService(
	repo repository.CaixaRepository,
	vendaRepo repository.VendaRepository,
	financeiroRepo repository.FinanceiroRepository,
	locks *keymutex.Registry,
) CaixaService {
	return &caixaService{
		repo:           repo,
		vendaRepo:      vendaRepo,
		financeiroRepo: financeiroRepo,
		locks:          locks,
	}
}

// chave de lock do singleton abrir/fechar; movimentos usam a chave da sessão
const lockCaixa = "caixa"

func lockSessao(id uuid.UUID) string { return "sessao:" + id.String() }

// ── Abrir ────────────────────────────────────────────────────────────────────

func (s *caixaService) Abrir(ctx context.Context, usuarioID uuid.UUID, req dto.AbrirCaixaRequest) (*dto.SessaoCaixaResponse, error) {
	unlock := s.locks.Lock(lockCaixa)
	defer unlock()

	// Guarda: no máximo uma sessão aberta na loja
	if existing, err := s.repo.FindSessaoAberta(ctx); err == nil && existing != nil {
		return nil, ErrCaixaJaAberto
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	sessao := &model.SessaoCaixa{
		UsuarioID:    usuarioID,
		SaldoInicial: req.SaldoInicial,
		Status:       "aberta",
		AbertaEm:     time.Now(),
	}
	if err := s.repo.CreateSessao(ctx, sessao); err != nil {
		return nil, err
	}

	log.Info().Str("sessao_id", sessao.ID.String()).
		Str("saldo_inicial", req.SaldoInicial.String()).
		Msg("caixa aberto")

	return sessaoToResponse(sessao), nil
}

// ── SessaoAberta ─────────────────────────────────────────────────────────────

func (s *caixaService) SessaoAberta(ctx context.Context) (*model.SessaoCaixa, error) {
	sessao, err := s.repo.FindSessaoAberta(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSemCaixaAberto
		}
		return nil, err
	}
	return sessao, nil
}

func (s *caixaService) SessaoAtual(ctx context.Context) (*dto.SessaoCaixaResponse, error) {
	sessao, err := s.SessaoAberta(ctx)
	if err != nil {
		return nil, err
	}
	return s.ObterSessao(ctx, sessao.ID)
}

// ── RegistrarMovimento ───────────────────────────────────────────────────────
// Sangria (retirada) e suprimento (aporte). Movimentos são imutáveis.
// A sangria também lança uma despesa no financeiro — dinheiro que sai da
// gaveta sai da loja.

func (s *caixaService) RegistrarMovimento(ctx context.Context, usuarioID uuid.UUID, req dto.MovimentoCaixaRequest) error {
	sessao, err := s.SessaoAberta(ctx)
	if err != nil {
		return err
	}

	unlock := s.locks.Lock(lockSessao(sessao.ID))
	defer unlock()

	mov := &model.MovimentoCaixa{
		SessaoCaixaID: sessao.ID,
		Tipo:          req.Tipo,
		Valor:         req.Valor,
		Descricao:     req.Descricao,
		UsuarioID:     usuarioID,
	}
	if err := s.repo.CreateMovimento(ctx, mov); err != nil {
		return err
	}

	if req.Tipo == "sangria" {
		reg := &model.RegistroFinanceiro{
			Tipo:      "despesa",
			Descricao: fmt.Sprintf("Sangria: %s", req.Descricao),
			Valor:     req.Valor,
			Data:      time.Now(),
			Categoria: "Caixa",
		}
		if err := s.financeiroRepo.Create(ctx, reg); err != nil {
			return err
		}
	}

	log.Info().Str("sessao_id", sessao.ID.String()).
		Str("tipo", req.Tipo).
		Str("valor", req.Valor.String()).
		Msg("movimento de caixa registrado")
	return nil
}

// ── Fechar ───────────────────────────────────────────────────────────────────
// saldoSistema = saldoInicial + Σ vendas em dinheiro desde a abertura
//              + Σ suprimentos − Σ sangrias.
// Diferença = contado − sistema (negativa = falta na gaveta).

func (s *caixaService) Fechar(ctx context.Context, req dto.FecharCaixaRequest) (*dto.FechamentoResponse, error) {
	sessao, err := s.SessaoAberta(ctx)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(lockCaixa, lockSessao(sessao.ID))
	defer unlock()

	vendasDinheiro, err := s.vendaRepo.SumDinheiroDesde(ctx, sessao.AbertaEm)
	if err != nil {
		return nil, err
	}

	movimentos, err := s.repo.ListMovimentos(ctx, sessao.ID)
	if err != nil {
		return nil, err
	}

	saldoSistema := sessao.SaldoInicial.Add(vendasDinheiro)
	for _, m := range movimentos {
		switch m.Tipo {
		case "suprimento":
			saldoSistema = saldoSistema.Add(m.Valor)
		case "sangria":
			saldoSistema = saldoSistema.Sub(m.Valor)
		}
	}

	agora := time.Now()
	saldoContado := req.SaldoContado
	sessao.SaldoSistema = &saldoSistema
	sessao.SaldoFinal = &saldoContado
	sessao.Status = "fechada"
	sessao.FechadaEm = &agora

	if err := s.repo.UpdateSessao(ctx, sessao); err != nil {
		return nil, err
	}

	diferenca := saldoContado.Sub(saldoSistema)
	log.Info().Str("sessao_id", sessao.ID.String()).
		Str("saldo_sistema", saldoSistema.String()).
		Str("diferenca", diferenca.String()).
		Msg("caixa fechado")

	return &dto.FechamentoResponse{
		SessaoCaixaID: sessao.ID.String(),
		SaldoSistema:  saldoSistema,
		SaldoContado:  saldoContado,
		Diferenca:     diferenca,
	}, nil
}

// ── Consultas ────────────────────────────────────────────────────────────────

func (s *caixaService) ObterSessao(ctx context.Context, id uuid.UUID) (*dto.SessaoCaixaResponse, error) {
	sessao, err := s.repo.FindSessaoByID(ctx, id)
	if err != nil {
		return nil, errors.New("sessão de caixa não encontrada")
	}
	return sessaoToResponse(sessao), nil
}

func (s *caixaService) ListarSessoes(ctx context.Context, page, limit int) ([]dto.SessaoCaixaResponse, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	sessoes, total, err := s.repo.ListSessoes(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}
	out := make([]dto.SessaoCaixaResponse, 0, len(sessoes))
	for i := range sessoes {
		out = append(out, *sessaoToResponse(&sessoes[i]))
	}
	return out, total, nil
}

func sessaoToResponse(s *model.SessaoCaixa) *dto.SessaoCaixaResponse {
	resp := &dto.SessaoCaixaResponse{
		ID:           s.ID.String(),
		UsuarioID:    s.UsuarioID.String(),
		SaldoInicial: s.SaldoInicial,
		SaldoSistema: s.SaldoSistema,
		SaldoFinal:   s.SaldoFinal,
		Status:       s.Status,
		AbertaEm:     s.AbertaEm.Format(time.RFC3339),
	}
	if s.FechadaEm != nil {
		t := s.FechadaEm.Format(time.RFC3339)
		resp.FechadaEm = &t
	}
	for _, m := range s.Movimentos {
		resp.Movimentos = append(resp.Movimentos, dto.MovimentoCaixaResponse{
			ID:        m.ID.String(),
			Tipo:      m.Tipo,
			Valor:     m.Valor,
			Descricao: m.Descricao,
			CreatedAt: m.CreatedAt.Format(time.RFC3339),
		})
	}
	return resp
}
