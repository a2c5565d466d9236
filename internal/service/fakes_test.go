package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jrrjunior25/PDV-master-sub000/internal/dto"
	"github.com/jrrjunior25/PDV-master-sub000/internal/infra"
	"github.com/jrrjunior25/PDV-master-sub000/internal/model"
	"github.com/jrrjunior25/PDV-master-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Fakes em memória dos repositórios. DB() devolve nil: runTx executa a
// função diretamente, sem transação real.

// ── CaixaRepository ──────────────────────────────────────────────────────────

type fakeCaixaRepo struct {
	sessoes    map[uuid.UUID]*model.SessaoCaixa
	movimentos []model.MovimentoCaixa
}

func newFakeCaixaRepo() *fakeCaixaRepo {
	return &fakeCaixaRepo{sessoes: make(map[uuid.UUID]*model.SessaoCaixa)}
}

func (r *fakeCaixaRepo) CreateSessao(_ context.Context, s *model.SessaoCaixa) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	r.sessoes[s.ID] = s
	return nil
}

func (r *fakeCaixaRepo) FindSessaoAberta(_ context.Context) (*model.SessaoCaixa, error) {
	for _, s := range r.sessoes {
		if s.Status == "aberta" {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeCaixaRepo) FindSessaoByID(_ context.Context, id uuid.UUID) (*model.SessaoCaixa, error) {
	s, ok := r.sessoes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	s.Movimentos = nil
	for _, m := range r.movimentos {
		if m.SessaoCaixaID == id {
			s.Movimentos = append(s.Movimentos, m)
		}
	}
	return s, nil
}

func (r *fakeCaixaRepo) UpdateSessao(_ context.Context, s *model.SessaoCaixa) error {
	r.sessoes[s.ID] = s
	return nil
}

func (r *fakeCaixaRepo) CreateMovimento(_ context.Context, m *model.MovimentoCaixa) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	m.CreatedAt = time.Now()
	r.movimentos = append(r.movimentos, *m)
	return nil
}

func (r *fakeCaixaRepo) ListMovimentos(_ context.Context, sessaoID uuid.UUID) ([]model.MovimentoCaixa, error) {
	var out []model.MovimentoCaixa
	for _, m := range r.movimentos {
		if m.SessaoCaixaID == sessaoID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeCaixaRepo) ListSessoes(_ context.Context, page, limit int) ([]model.SessaoCaixa, int64, error) {
	all := make([]model.SessaoCaixa, 0, len(r.sessoes))
	for _, s := range r.sessoes {
		all = append(all, *s)
	}
	return all, int64(len(all)), nil
}

var _ repository.CaixaRepository = (*fakeCaixaRepo)(nil)

// ── VendaRepository ──────────────────────────────────────────────────────────

type fakeVendaRepo struct {
	vendas         map[uuid.UUID]*model.Venda
	vendasDinheiro decimal.Decimal
}

func newFakeVendaRepo() *fakeVendaRepo {
	return &fakeVendaRepo{vendas: make(map[uuid.UUID]*model.Venda)}
}

func (r *fakeVendaRepo) CreateTx(_ *gorm.DB, v *model.Venda) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	v.CreatedAt = time.Now()
	for i := range v.Itens {
		if v.Itens[i].ID == uuid.Nil {
			v.Itens[i].ID = uuid.New()
		}
		v.Itens[i].VendaID = v.ID
	}
	r.vendas[v.ID] = v
	return nil
}

func (r *fakeVendaRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Venda, error) {
	v, ok := r.vendas[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return v, nil
}

func (r *fakeVendaRepo) List(_ context.Context, filter dto.VendaFilter) ([]model.Venda, int64, error) {
	out := make([]model.Venda, 0, len(r.vendas))
	for _, v := range r.vendas {
		out = append(out, *v)
	}
	return out, int64(len(out)), nil
}

func (r *fakeVendaRepo) SumDinheiroDesde(_ context.Context, _ time.Time) (decimal.Decimal, error) {
	return r.vendasDinheiro, nil
}

func (r *fakeVendaRepo) DB() *gorm.DB { return nil }

var _ repository.VendaRepository = (*fakeVendaRepo)(nil)

// ── ProdutoRepository ────────────────────────────────────────────────────────

// fakeProdutoRepo leva um mutex próprio: o pipeline da venda lê produtos
// fora dos locks de domínio, então testes concorrentes tocam o mapa em
// paralelo.
type fakeProdutoRepo struct {
	mu       sync.Mutex
	produtos map[uuid.UUID]*model.Produto
}

func newFakeProdutoRepo() *fakeProdutoRepo {
	return &fakeProdutoRepo{produtos: make(map[uuid.UUID]*model.Produto)}
}

func (r *fakeProdutoRepo) add(p *model.Produto) *model.Produto {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.produtos[p.ID] = p
	return p
}

func (r *fakeProdutoRepo) Create(_ context.Context, p *model.Produto) error {
	r.add(p)
	return nil
}

func (r *fakeProdutoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Produto, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.produtos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copia := *p
	return &copia, nil
}

func (r *fakeProdutoRepo) FindByCodigo(_ context.Context, codigo string) (*model.Produto, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.produtos {
		if p.Codigo == codigo && p.Ativo {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeProdutoRepo) List(_ context.Context, _ dto.ProdutoFilter) ([]model.Produto, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Produto, 0, len(r.produtos))
	for _, p := range r.produtos {
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (r *fakeProdutoRepo) Update(_ context.Context, p *model.Produto) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.produtos[p.ID] = p
	return nil
}

func (r *fakeProdutoRepo) Desativar(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.produtos[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Ativo = false
	return nil
}

func (r *fakeProdutoRepo) FindByIDTx(_ *gorm.DB, id uuid.UUID) (*model.Produto, error) {
	return r.FindByID(context.Background(), id)
}

func (r *fakeProdutoRepo) UpdateEstoqueTx(_ *gorm.DB, id uuid.UUID, novoEstoque decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.produtos[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Estoque = novoEstoque
	return nil
}

func (r *fakeProdutoRepo) UpdateCustoTx(_ *gorm.DB, id uuid.UUID, custo decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.produtos[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.PrecoCusto = custo
	return nil
}

func (r *fakeProdutoRepo) DB() *gorm.DB { return nil }

var _ repository.ProdutoRepository = (*fakeProdutoRepo)(nil)

// ── FinanceiroRepository ─────────────────────────────────────────────────────

type fakeFinanceiroRepo struct {
	registros []model.RegistroFinanceiro
}

func (r *fakeFinanceiroRepo) Create(_ context.Context, reg *model.RegistroFinanceiro) error {
	if reg.ID == uuid.Nil {
		reg.ID = uuid.New()
	}
	r.registros = append(r.registros, *reg)
	return nil
}

func (r *fakeFinanceiroRepo) CreateTx(_ *gorm.DB, reg *model.RegistroFinanceiro) error {
	return r.Create(context.Background(), reg)
}

func (r *fakeFinanceiroRepo) ListByPeriodo(_ context.Context, inicio, fim time.Time) ([]model.RegistroFinanceiro, error) {
	var out []model.RegistroFinanceiro
	for _, reg := range r.registros {
		if !reg.Data.Before(inicio) && !reg.Data.After(fim) {
			out = append(out, reg)
		}
	}
	return out, nil
}

var _ repository.FinanceiroRepository = (*fakeFinanceiroRepo)(nil)

// ── ClienteRepository ────────────────────────────────────────────────────────

type fakeClienteRepo struct {
	clientes map[uuid.UUID]*model.Cliente
}

func newFakeClienteRepo() *fakeClienteRepo {
	return &fakeClienteRepo{clientes: make(map[uuid.UUID]*model.Cliente)}
}

func (r *fakeClienteRepo) Create(_ context.Context, c *model.Cliente) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	r.clientes[c.ID] = c
	return nil
}

func (r *fakeClienteRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Cliente, error) {
	c, ok := r.clientes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (r *fakeClienteRepo) Update(_ context.Context, c *model.Cliente) error {
	r.clientes[c.ID] = c
	return nil
}

func (r *fakeClienteRepo) UpdateTx(_ *gorm.DB, c *model.Cliente) error {
	r.clientes[c.ID] = c
	return nil
}

func (r *fakeClienteRepo) List(_ context.Context, page, limit int) ([]model.Cliente, int64, error) {
	out := make([]model.Cliente, 0, len(r.clientes))
	for _, c := range r.clientes {
		out = append(out, *c)
	}
	return out, int64(len(out)), nil
}

var _ repository.ClienteRepository = (*fakeClienteRepo)(nil)

// ── ConfiguracaoRepository ───────────────────────────────────────────────────

type fakeConfigRepo struct {
	mu  sync.Mutex
	cfg *model.Configuracao
}

func (r *fakeConfigRepo) Get(_ context.Context) (*model.Configuracao, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cfg == nil {
		return nil, errors.New("configuração ausente")
	}
	return r.cfg, nil
}

func (r *fakeConfigRepo) Update(_ context.Context, cfg *model.Configuracao) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cfg = cfg
	return nil
}

func (r *fakeConfigRepo) ConsumirProximoNumero(_ context.Context) (*model.Configuracao, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cfg == nil {
		return nil, 0, errors.New("configuração ausente")
	}
	numero := r.cfg.ProximaNotaNumero
	if numero < 1 {
		numero = 1
	}
	r.cfg.ProximaNotaNumero = numero + 1
	snapshot := *r.cfg
	return &snapshot, numero, nil
}

var _ repository.ConfiguracaoRepository = (*fakeConfigRepo)(nil)

// ── NotaFiscalRepository ─────────────────────────────────────────────────────

type fakeNotaRepo struct {
	notas map[uuid.UUID]*model.NotaFiscal
}

func newFakeNotaRepo() *fakeNotaRepo {
	return &fakeNotaRepo{notas: make(map[uuid.UUID]*model.NotaFiscal)}
}

func (r *fakeNotaRepo) CreateTx(_ *gorm.DB, n *model.NotaFiscal) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	n.CreatedAt = time.Now()
	r.notas[n.ID] = n
	return nil
}

func (r *fakeNotaRepo) FindByID(_ context.Context, id uuid.UUID) (*model.NotaFiscal, error) {
	n, ok := r.notas[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return n, nil
}

func (r *fakeNotaRepo) FindByVendaID(_ context.Context, vendaID uuid.UUID) (*model.NotaFiscal, error) {
	for _, n := range r.notas {
		if n.VendaID == vendaID {
			return n, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeNotaRepo) Update(_ context.Context, n *model.NotaFiscal) error {
	r.notas[n.ID] = n
	return nil
}

func (r *fakeNotaRepo) ListPendingRetries(_ context.Context, antes time.Time, limit int) ([]model.NotaFiscal, error) {
	var out []model.NotaFiscal
	for _, n := range r.notas {
		if (n.Status == "pendente" || n.Status == "rejeitada") &&
			n.NextRetryAt != nil && !n.NextRetryAt.After(antes) {
			out = append(out, *n)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

var _ repository.NotaFiscalRepository = (*fakeNotaRepo)(nil)

// ── MovimentoEstoqueRepository ───────────────────────────────────────────────

type fakeMovimentoRepo struct {
	movimentos []model.MovimentoEstoque
}

func (r *fakeMovimentoRepo) CreateTx(_ *gorm.DB, m *model.MovimentoEstoque) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	m.CreatedAt = time.Now()
	r.movimentos = append(r.movimentos, *m)
	return nil
}

func (r *fakeMovimentoRepo) ListByProduto(_ context.Context, produtoID uuid.UUID) ([]model.MovimentoEstoque, error) {
	var out []model.MovimentoEstoque
	for _, m := range r.movimentos {
		if m.ProdutoID == produtoID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeMovimentoRepo) List(_ context.Context, limit int) ([]model.MovimentoEstoque, error) {
	if limit > len(r.movimentos) {
		limit = len(r.movimentos)
	}
	return r.movimentos[:limit], nil
}

var _ repository.MovimentoEstoqueRepository = (*fakeMovimentoRepo)(nil)

// ── BackupRepository ─────────────────────────────────────────────────────────

type fakeBackupRepo struct {
	exported *repository.Snapshot
	imported *repository.Snapshot
}

func (r *fakeBackupRepo) Export(_ context.Context) (*repository.Snapshot, error) {
	if r.exported == nil {
		return &repository.Snapshot{}, nil
	}
	return r.exported, nil
}

func (r *fakeBackupRepo) Import(_ context.Context, snap *repository.Snapshot) error {
	r.imported = snap
	return nil
}

var _ repository.BackupRepository = (*fakeBackupRepo)(nil)

// ── Transmissor ──────────────────────────────────────────────────────────────

type fakeTransmissor struct {
	retorno  *infra.RetornoSefaz
	err      error
	chamadas int
}

func (f *fakeTransmissor) Enviar(_ context.Context, _ infra.EnvioNFCe) (*infra.RetornoSefaz, error) {
	f.chamadas++
	if f.err != nil {
		return nil, f.err
	}
	return f.retorno, nil
}

var _ Transmissor = (*fakeTransmissor)(nil)

func mustUUID(t *testing.T, s string) uuid.UUID {
	t.Helper()
	id, err := uuid.Parse(s)
	if err != nil {
		t.Fatalf("uuid inválido %q: %v", s, err)
	}
	return id
}
