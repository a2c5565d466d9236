package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jrrjunior25/PDV-master-sub000/internal/dto"
	"github.com/jrrjunior25/PDV-master-sub000/internal/fiscal"
	"github.com/jrrjunior25/PDV-master-sub000/internal/infra"
	"github.com/jrrjunior25/PDV-master-sub000/internal/keymutex"
	"github.com/jrrjunior25/PDV-master-sub000/internal/model"
	"github.com/jrrjunior25/PDV-master-sub000/internal/repository"
	"github.com/jrrjunior25/PDV-master-sub000/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Transmissor envia a NFC-e à SEFAZ. Interface para permitir fake nos
// testes; a implementação real é infra.SefazClient.
type Transmissor interface {
	Enviar(ctx context.Context, envio infra.EnvioNFCe) (*infra.RetornoSefaz, error)
}

type VendaService interface {
	RegistrarVenda(ctx context.Context, usuarioID uuid.UUID, req dto.RegistrarVendaRequest) (*dto.VendaResponse, error)
	ObterVenda(ctx context.Context, id uuid.UUID) (*dto.VendaResponse, error)
	ListarVendas(ctx context.Context, filter dto.VendaFilter) (*dto.VendaListResponse, error)
}

type vendaService struct {
	repo        repository.VendaRepository
	produtoRepo repository.ProdutoRepository
	clienteRepo repository.ClienteRepository
	configRepo  repository.ConfiguracaoRepository
	notaRepo    repository.NotaFiscalRepository
	finRepo     repository.FinanceiroRepository
	caixa       CaixaService
	estoque     EstoqueService
	sefaz       Transmissor
	dispatcher  *worker.Dispatcher
	locks       *keymutex.Registry
	// bloqueiaRejeicao: quando true, rejeição/falha de transmissão aborta
	// a venda antes de qualquer gravação. O default (false) preserva o
	// comportamento de contingência: a venda conclui e a nota fica
	// pendente de retransmissão.
	bloqueiaRejeicao bool
}

func NewVendaService(
	repo repository.VendaRepository,
	produtoRepo repository.ProdutoRepository,
	clienteRepo repository.ClienteRepository,
	configRepo repository.ConfiguracaoRepository,
	notaRepo repository.NotaFiscalRepository,
	finRepo repository.FinanceiroRepository,
	caixa CaixaService,
	estoque EstoqueService,
	sefaz Transmissor,
	dispatcher *worker.Dispatcher,
	locks *keymutex.Registry,
	bloqueiaRejeicao bool,
) VendaService {
	return &vendaService{
		repo:             repo,
		produtoRepo:      produtoRepo,
		clienteRepo:      clienteRepo,
		configRepo:       configRepo,
		notaRepo:         notaRepo,
		finRepo:          finRepo,
		caixa:            caixa,
		estoque:          estoque,
		sefaz:            sefaz,
		dispatcher:       dispatcher,
		locks:            locks,
		bloqueiaRejeicao: bloqueiaRejeicao,
	}
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// ── RegistrarVenda ───────────────────────────────────────────────────────────
// Pipeline da venda:
//   1. exige sessão de caixa aberta
//   2. resolve produtos e preços (faixa de atacado por linha)
//   3. subtotal, desconto (= pontos resgatados), total = max(0, sub − desc)
//   4. reserva atômica do número da sequência fiscal; chave + NFC-e
//   5. UMA tentativa de transmissão à SEFAZ (nunca bloqueia, salvo flag)
//   6. transação: cliente/fidelidade, venda, estoque + kardex por linha,
//      receita no financeiro, nota fiscal
//   7. jobs assíncronos (recibo por email)
// Os locks de sessão e de produto cobrem a transação, nunca a chamada de
// rede.

func (s *vendaService) RegistrarVenda(ctx context.Context, usuarioID uuid.UUID, req dto.RegistrarVendaRequest) (*dto.VendaResponse, error) {
	// 1. Pré-condição: sessão aberta
	sessao, err := s.caixa.SessaoAberta(ctx)
	if err != nil {
		return nil, err
	}

	// 2. Resolve produtos e aplica a faixa de preço (pré-voo, fora da tx)
	type linhaResolvida struct {
		produtoID  uuid.UUID
		codigo     string
		nome       string
		precoCusto decimal.Decimal
		preco      decimal.Decimal
		qtd        decimal.Decimal
		atacado    bool
		totalLinha decimal.Decimal
	}

	linhas := make([]linhaResolvida, 0, len(req.Itens))
	subtotal := decimal.Zero
	for _, item := range req.Itens {
		pid, err := uuid.Parse(item.ProdutoID)
		if err != nil {
			return nil, fmt.Errorf("produto_id inválido: %w", err)
		}
		if item.Quantidade.LessThanOrEqual(decimal.Zero) {
			return nil, fmt.Errorf("%w: quantidade deve ser positiva", ErrNotaInvalida)
		}
		p, err := s.produtoRepo.FindByID(ctx, pid)
		if err != nil {
			return nil, fmt.Errorf("produto %s não encontrado", item.ProdutoID)
		}
		if !p.Ativo {
			return nil, fmt.Errorf("produto %s está inativo", p.Nome)
		}

		preco := p.PrecoVenda
		atacado := false
		if p.PrecoAtacado != nil && p.QtdMinAtacado != nil &&
			item.Quantidade.GreaterThanOrEqual(*p.QtdMinAtacado) {
			preco = *p.PrecoAtacado
			atacado = true
		}
		totalLinha := preco.Mul(item.Quantidade)
		subtotal = subtotal.Add(totalLinha)

		linhas = append(linhas, linhaResolvida{
			produtoID:  pid,
			codigo:     p.Codigo,
			nome:       p.Nome,
			precoCusto: p.PrecoCusto,
			preco:      preco,
			qtd:        item.Quantidade,
			atacado:    atacado,
			totalLinha: totalLinha,
		})
	}

	// 3. Desconto por resgate de pontos (1 ponto = R$ 1). Sem conferência
	// contra o saldo do cliente nem contra o subtotal — política
	// permissiva herdada, o total nunca fica negativo.
	desconto := decimal.Zero
	if req.ResgatePontos > 0 {
		desconto = decimal.NewFromInt(req.ResgatePontos)
	}
	total := subtotal.Sub(desconto)
	if total.IsNegative() {
		total = decimal.Zero
	}

	// 4. Sequência fiscal + chave + documento. A reserva do número é
	// atômica no repositório: vendas concorrentes recebem números
	// distintos mesmo transmitindo em paralelo. Uma venda abortada
	// depois deste ponto deixa lacuna na sequência, como uma NFC-e
	// inutilizada.
	cfg, numero, err := s.configRepo.ConsumirProximoNumero(ctx)
	if err != nil {
		return nil, err
	}

	emissao := time.Now()
	chave := fiscal.ChaveAcesso(cfg.UF, cfg.CNPJ, cfg.SerieNFCe, numero, emissao, fiscal.CodigoNumerico())

	itensNota := make([]fiscal.ItemNota, 0, len(linhas))
	for _, l := range linhas {
		itensNota = append(itensNota, fiscal.ItemNota{
			Codigo:        l.codigo,
			Descricao:     l.nome,
			Quantidade:    l.qtd,
			ValorUnitario: l.preco,
			ValorTotal:    l.totalLinha,
		})
	}
	temCertificado := cfg.CertificadoPath != nil && *cfg.CertificadoPath != ""
	nota := fiscal.MontarNota(fiscal.Emitente{
		CNPJ:         cfg.CNPJ,
		RazaoSocial:  cfg.RazaoSocial,
		NomeFantasia: cfg.NomeFantasia,
		IE:           cfg.IE,
		Endereco:     cfg.Endereco,
		Municipio:    cfg.Municipio,
		UF:           cfg.UF,
	}, itensNota, cfg.SerieNFCe, numero, cfg.Ambiente, subtotal, desconto, total,
		req.MetodoPagamento, chave, emissao, temCertificado)
	if !temCertificado {
		log.Warn().Str("chave_acesso", chave).Msg("nota emitida sem assinatura: certificado não configurado")
	}

	// 5. Transmissão — uma tentativa, resultado registrado, nunca lançado
	// pipeline adentro (salvo modo bloqueante explícito)
	statusNota := "pendente"
	var protocolo, motivo, lastError *string
	retorno, envioErr := s.sefaz.Enviar(ctx, infra.EnvioNFCe{
		ChaveAcesso: chave,
		Ambiente:    cfg.Ambiente,
		Nota:        nota,
	})
	switch {
	case envioErr != nil:
		msg := envioErr.Error()
		lastError = &msg
		log.Warn().Err(envioErr).Str("chave_acesso", chave).Msg("transmissão à SEFAZ falhou; nota pendente")
	case retorno.Autorizada():
		statusNota = "autorizada"
		protocolo = &retorno.Protocolo
	default:
		statusNota = "rejeitada"
		m := fmt.Sprintf("cStat %d: %s", retorno.CStat, retorno.XMotivo)
		motivo = &m
		log.Warn().Str("chave_acesso", chave).Str("motivo", m).Msg("NFC-e rejeitada pela SEFAZ")
	}
	if s.bloqueiaRejeicao && statusNota != "autorizada" {
		if motivo != nil {
			return nil, fmt.Errorf("%w: %s", ErrNotaInvalida, *motivo)
		}
		return nil, fmt.Errorf("%w: transmissão indisponível", ErrNotaInvalida)
	}

	// 6. Pontos de fidelidade
	pontosGanhos := total.Div(decimal.NewFromInt(10)).Floor().IntPart()

	// Locks: sessão + cada produto, em ordem estável. Adquiridos depois
	// da chamada de rede — nunca atravessam um ponto de suspensão.
	chavesLock := []string{lockSessao(sessao.ID)}
	for _, l := range linhas {
		chavesLock = append(chavesLock, lockProduto(l.produtoID))
	}
	unlock := s.locks.Lock(chavesLock...)
	defer unlock()

	var venda model.Venda
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		// Fidelidade: atualiza o cliente, exceto o consumidor padrão
		var clienteID *uuid.UUID
		if req.ClienteID != nil {
			cid, err := uuid.Parse(*req.ClienteID)
			if err != nil {
				return fmt.Errorf("cliente_id inválido: %w", err)
			}
			clienteID = &cid
			cliente, err := s.clienteRepo.FindByID(ctx, cid)
			if err != nil {
				return fmt.Errorf("cliente %s não encontrado", cid)
			}
			if !cliente.Padrao {
				cliente.Pontos = cliente.Pontos - req.ResgatePontos + pontosGanhos
				cliente.UltimaCompraEm = &emissao
				if err := s.clienteRepo.UpdateTx(tx, cliente); err != nil {
					return err
				}
			}
		}

		venda = model.Venda{
			Numero:           numero,
			SessaoCaixaID:    sessao.ID,
			UsuarioID:        usuarioID,
			ClienteID:        clienteID,
			Subtotal:         subtotal,
			Desconto:         desconto,
			Total:            total,
			MetodoPagamento:  req.MetodoPagamento,
			Status:           "concluida",
			ChaveAcesso:      chave,
			Protocolo:        protocolo,
			Ambiente:         cfg.Ambiente,
			PontosGanhos:     pontosGanhos,
			PontosResgatados: req.ResgatePontos,
		}
		for _, l := range linhas {
			venda.Itens = append(venda.Itens, model.VendaItem{
				ProdutoID:     l.produtoID,
				CodigoProduto: l.codigo,
				NomeProduto:   l.nome,
				Quantidade:    l.qtd,
				PrecoAplicado: l.preco,
				TotalItem:     l.totalLinha,
				Atacado:       l.atacado,
			})
		}
		if err := s.repo.CreateTx(tx, &venda); err != nil {
			return err
		}

		// Baixa de estoque + kardex, linha a linha
		for _, l := range linhas {
			ref := venda.ID
			if _, err := s.estoque.RegistrarTx(tx, l.produtoID, "venda", l.qtd.Neg(),
				l.precoCusto, fmt.Sprintf("Venda #%d", numero), usuarioID, &ref); err != nil {
				return err
			}
		}

		// Receita no financeiro
		if err := s.finRepo.CreateTx(tx, &model.RegistroFinanceiro{
			Tipo:      "receita",
			Descricao: fmt.Sprintf("Venda #%d", numero),
			Valor:     total,
			Data:      emissao,
			Categoria: "Vendas",
		}); err != nil {
			return err
		}

		// Nota fiscal com o resultado da transmissão
		documento, err := json.Marshal(nota)
		if err != nil {
			return err
		}
		nf := &model.NotaFiscal{
			VendaID:     venda.ID,
			Numero:      numero,
			Serie:       cfg.SerieNFCe,
			ChaveAcesso: chave,
			Ambiente:    cfg.Ambiente,
			Documento:   documento,
			Status:      statusNota,
			Protocolo:   protocolo,
			Motivo:      motivo,
			LastError:   lastError,
		}
		if nf.Status != "autorizada" {
			prox := emissao.Add(retryBackoffBase)
			nf.NextRetryAt = &prox
		}
		return s.notaRepo.CreateTx(tx, nf)
	})
	if txErr != nil {
		return nil, txErr
	}

	// 7. Recibo por email (best-effort)
	if s.dispatcher != nil && req.EmailCliente != nil && *req.EmailCliente != "" {
		_ = s.dispatcher.EnqueueEmail(ctx, worker.EmailJob{
			Destinatario: *req.EmailCliente,
			VendaID:      venda.ID.String(),
		})
	}

	log.Info().Int64("numero", numero).
		Str("venda_id", venda.ID.String()).
		Str("total", total.String()).
		Str("status_nota", statusNota).
		Msg("venda registrada")

	return vendaToResponse(&venda), nil
}

// retryBackoffBase é o primeiro intervalo de retransmissão de uma nota
// não autorizada.
const retryBackoffBase = 2 * time.Minute

// ── Consultas ────────────────────────────────────────────────────────────────

func (s *vendaService) ObterVenda(ctx context.Context, id uuid.UUID) (*dto.VendaResponse, error) {
	venda, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("venda %s não encontrada", id)
	}
	return vendaToResponse(venda), nil
}

func (s *vendaService) ListarVendas(ctx context.Context, filter dto.VendaFilter) (*dto.VendaListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	if filter.Status == "" {
		filter.Status = "concluida"
	}
	vendas, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.VendaResponse, 0, len(vendas))
	for i := range vendas {
		data = append(data, *vendaToResponse(&vendas[i]))
	}
	return &dto.VendaListResponse{
		Data:  data,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

func vendaToResponse(v *model.Venda) *dto.VendaResponse {
	itens := make([]dto.ItemVendaResponse, 0, len(v.Itens))
	for _, it := range v.Itens {
		itens = append(itens, dto.ItemVendaResponse{
			Produto:       it.NomeProduto,
			Codigo:        it.CodigoProduto,
			Quantidade:    it.Quantidade,
			PrecoAplicado: it.PrecoAplicado,
			Atacado:       it.Atacado,
			TotalItem:     it.TotalItem,
		})
	}
	return &dto.VendaResponse{
		ID:               v.ID.String(),
		Numero:           v.Numero,
		Itens:            itens,
		Subtotal:         v.Subtotal,
		Desconto:         v.Desconto,
		Total:            v.Total,
		MetodoPagamento:  v.MetodoPagamento,
		Status:           v.Status,
		ChaveAcesso:      v.ChaveAcesso,
		Protocolo:        v.Protocolo,
		Ambiente:         v.Ambiente,
		PontosGanhos:     v.PontosGanhos,
		PontosResgatados: v.PontosResgatados,
		CreatedAt:        v.CreatedAt.Format(time.RFC3339),
	}
}
