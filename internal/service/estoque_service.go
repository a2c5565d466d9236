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
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// EstoqueService é o livro de estoque (kardex). Toda mutação de estoque
// passa por RegistrarTx: lê o saldo atual, aplica o delta, persiste o
// produto e apensa o movimento imutável na mesma transação. O estoque
// corrente pode ficar negativo — a política é permissiva e a auditoria
// fica no livro.
type EstoqueService interface {
	// RegistrarTx é o primitivo compartilhado por vendas, entradas e
	// ajustes. O chamador detém os locks de produto e a transação.
	RegistrarTx(tx *gorm.DB, produtoID uuid.UUID, tipo string, delta, custoUnitario decimal.Decimal,
		descricao string, usuarioID uuid.UUID, referenciaID *uuid.UUID) (*model.MovimentoEstoque, error)

	Ajustar(ctx context.Context, produtoID, usuarioID uuid.UUID, req dto.AjusteEstoqueRequest) (*dto.MovimentoEstoqueResponse, error)
	Historico(ctx context.Context, produtoID *uuid.UUID, limit int) ([]dto.MovimentoEstoqueResponse, error)
	ConfirmarEntrada(ctx context.Context, usuarioID uuid.UUID, req dto.ConfirmarEntradaRequest) (*dto.ConfirmarEntradaResponse, error)
}

type estoqueService struct {
	produtoRepo    repository.ProdutoRepository
	movimentoRepo  repository.MovimentoEstoqueRepository
	financeiroRepo repository.FinanceiroRepository
	locks          *keymutex.Registry
}

func NewEstoqueService(
	produtoRepo repository.ProdutoRepository,
	movimentoRepo repository.MovimentoEstoqueRepository,
	financeiroRepo repository.FinanceiroRepository,
	locks *keymutex.Registry,
) EstoqueService {
	return &estoqueService{
		produtoRepo:    produtoRepo,
		movimentoRepo:  movimentoRepo,
		financeiroRepo: financeiroRepo,
		locks:          locks,
	}
}

func lockProduto(id uuid.UUID) string { return "produto:" + id.String() }

// ── RegistrarTx ──────────────────────────────────────────────────────────────

func (s *estoqueService) RegistrarTx(tx *gorm.DB, produtoID uuid.UUID, tipo string, delta, custoUnitario decimal.Decimal,
	descricao string, usuarioID uuid.UUID, referenciaID *uuid.UUID) (*model.MovimentoEstoque, error) {

	produto, err := s.produtoRepo.FindByIDTx(tx, produtoID)
	if err != nil {
		return nil, fmt.Errorf("produto %s não encontrado", produtoID)
	}

	anterior := produto.Estoque
	novo := anterior.Add(delta)

	if err := s.produtoRepo.UpdateEstoqueTx(tx, produtoID, novo); err != nil {
		return nil, err
	}

	mov := &model.MovimentoEstoque{
		ProdutoID:       produtoID,
		Tipo:            tipo,
		Quantidade:      delta,
		EstoqueAnterior: anterior,
		EstoqueNovo:     novo,
		CustoUnitario:   custoUnitario,
		Descricao:       descricao,
		UsuarioID:       usuarioID,
		ReferenciaID:    referenciaID,
	}
	if err := s.movimentoRepo.CreateTx(tx, mov); err != nil {
		return nil, err
	}
	return mov, nil
}

// ── Ajustar ──────────────────────────────────────────────────────────────────
// Ajuste manual, perda ou devolução. Quantidade com sinal: o delta é
// aplicado como veio.

func (s *estoqueService) Ajustar(ctx context.Context, produtoID, usuarioID uuid.UUID, req dto.AjusteEstoqueRequest) (*dto.MovimentoEstoqueResponse, error) {
	if _, err := s.produtoRepo.FindByID(ctx, produtoID); err != nil {
		return nil, errors.New("produto não encontrado")
	}

	unlock := s.locks.Lock(lockProduto(produtoID))
	defer unlock()

	var mov *model.MovimentoEstoque
	txErr := runTx(ctx, s.produtoRepo.DB(), func(tx *gorm.DB) error {
		var err error
		mov, err = s.RegistrarTx(tx, produtoID, req.Tipo, req.Quantidade, decimal.Zero,
			req.Descricao, usuarioID, nil)
		return err
	})
	if txErr != nil {
		return nil, txErr
	}

	log.Info().Str("produto_id", produtoID.String()).
		Str("tipo", req.Tipo).
		Str("quantidade", req.Quantidade.String()).
		Msg("ajuste de estoque registrado")

	return movimentoToResponse(mov), nil
}

// ── Historico ────────────────────────────────────────────────────────────────

func (s *estoqueService) Historico(ctx context.Context, produtoID *uuid.UUID, limit int) ([]dto.MovimentoEstoqueResponse, error) {
	if limit < 1 {
		limit = 100
	}
	var movs []model.MovimentoEstoque
	var err error
	if produtoID != nil {
		movs, err = s.movimentoRepo.ListByProduto(ctx, *produtoID)
	} else {
		movs, err = s.movimentoRepo.List(ctx, limit)
	}
	if err != nil {
		return nil, err
	}
	out := make([]dto.MovimentoEstoqueResponse, 0, len(movs))
	for i := range movs {
		out = append(out, *movimentoToResponse(&movs[i]))
	}
	return out, nil
}

// ── ConfirmarEntrada ─────────────────────────────────────────────────────────
// Consome o preview extraído da NF do fornecedor: cada item vira um
// movimento "entrada" pelos mesmos primitivos das vendas, o custo do
// produto é atualizado, e o valor total é parcelado em N despesas com
// vencimentos a cada 30 dias.

func (s *estoqueService) ConfirmarEntrada(ctx context.Context, usuarioID uuid.UUID, req dto.ConfirmarEntradaRequest) (*dto.ConfirmarEntradaResponse, error) {
	primeiroVencimento, err := time.Parse("2006-01-02", req.PrimeiroVencimento)
	if err != nil {
		return nil, fmt.Errorf("primeiro_vencimento inválido: %w", err)
	}

	// Pré-voo: resolve os IDs fora da transação
	type entradaItem struct {
		produtoID uuid.UUID
		qtd       decimal.Decimal
		custo     decimal.Decimal
	}
	itens := make([]entradaItem, 0, len(req.Itens))
	chaves := make([]string, 0, len(req.Itens))
	valorTotal := decimal.Zero
	for _, it := range req.Itens {
		pid, err := uuid.Parse(it.ProdutoID)
		if err != nil {
			return nil, fmt.Errorf("produto_id inválido: %w", err)
		}
		if _, err := s.produtoRepo.FindByID(ctx, pid); err != nil {
			return nil, fmt.Errorf("produto %s não encontrado", it.ProdutoID)
		}
		itens = append(itens, entradaItem{produtoID: pid, qtd: it.Quantidade, custo: it.CustoUnitario})
		chaves = append(chaves, lockProduto(pid))
		valorTotal = valorTotal.Add(it.Quantidade.Mul(it.CustoUnitario))
	}

	unlock := s.locks.Lock(chaves...)
	defer unlock()

	descricao := fmt.Sprintf("Entrada de mercadoria: %s", req.Fornecedor)

	txErr := runTx(ctx, s.produtoRepo.DB(), func(tx *gorm.DB) error {
		for _, it := range itens {
			if _, err := s.RegistrarTx(tx, it.produtoID, "entrada", it.qtd, it.custo,
				descricao, usuarioID, nil); err != nil {
				return err
			}
			// Atualiza o custo de reposição com o da nota
			if err := s.produtoRepo.UpdateCustoTx(tx, it.produtoID, it.custo); err != nil {
				return err
			}
		}

		// N parcelas iguais; a última absorve o resíduo do arredondamento
		n := int64(req.Parcelas)
		parcela := valorTotal.Div(decimal.NewFromInt(n)).Round(2)
		acumulado := decimal.Zero
		for i := 0; i < req.Parcelas; i++ {
			valor := parcela
			if i == req.Parcelas-1 {
				valor = valorTotal.Sub(acumulado)
			}
			acumulado = acumulado.Add(valor)

			reg := &model.RegistroFinanceiro{
				Tipo:      "despesa",
				Descricao: fmt.Sprintf("%s — parcela %d/%d", descricao, i+1, req.Parcelas),
				Valor:     valor,
				Data:      primeiroVencimento.AddDate(0, 0, 30*i),
				Categoria: "Fornecedores",
			}
			if err := s.financeiroRepo.CreateTx(tx, reg); err != nil {
				return err
			}
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	log.Info().Str("fornecedor", req.Fornecedor).
		Int("itens", len(itens)).
		Str("valor_total", valorTotal.String()).
		Int("parcelas", req.Parcelas).
		Msg("entrada de mercadoria confirmada")

	return &dto.ConfirmarEntradaResponse{
		ItensProcessados: len(itens),
		ValorTotal:       valorTotal,
		ParcelasGeradas:  req.Parcelas,
	}, nil
}

func movimentoToResponse(m *model.MovimentoEstoque) *dto.MovimentoEstoqueResponse {
	return &dto.MovimentoEstoqueResponse{
		ID:              m.ID.String(),
		ProdutoID:       m.ProdutoID.String(),
		Tipo:            m.Tipo,
		Quantidade:      m.Quantidade,
		EstoqueAnterior: m.EstoqueAnterior,
		EstoqueNovo:     m.EstoqueNovo,
		CustoUnitario:   m.CustoUnitario,
		Descricao:       m.Descricao,
		CreatedAt:       m.CreatedAt.Format(time.RFC3339),
	}
}
