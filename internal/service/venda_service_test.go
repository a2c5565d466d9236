package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/jrrjunior25/PDV-master-sub000/internal/dto"
	"github.com/jrrjunior25/PDV-master-sub000/internal/infra"
	"github.com/jrrjunior25/PDV-master-sub000/internal/keymutex"
	"github.com/jrrjunior25/PDV-master-sub000/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// vendaFixture monta o serviço de vendas completo sobre fakes em memória,
// com caixa já aberto e a configuração mínima da loja.
type vendaFixture struct {
	svc         VendaService
	vendaRepo   *fakeVendaRepo
	produtoRepo *fakeProdutoRepo
	clienteRepo *fakeClienteRepo
	configRepo  *fakeConfigRepo
	notaRepo    *fakeNotaRepo
	finRepo     *fakeFinanceiroRepo
	movRepo     *fakeMovimentoRepo
	sefaz       *fakeTransmissor
}

func newVendaFixture(t *testing.T, sefaz *fakeTransmissor, bloqueiaRejeicao bool) *vendaFixture {
	t.Helper()

	f := &vendaFixture{
		vendaRepo:   newFakeVendaRepo(),
		produtoRepo: newFakeProdutoRepo(),
		clienteRepo: newFakeClienteRepo(),
		notaRepo:    newFakeNotaRepo(),
		finRepo:     &fakeFinanceiroRepo{},
		movRepo:     &fakeMovimentoRepo{},
		sefaz:       sefaz,
	}
	f.configRepo = &fakeConfigRepo{cfg: &model.Configuracao{
		ID:                1,
		CNPJ:              "12.345.678/0001-90",
		RazaoSocial:       "Loja Demo LTDA",
		UF:                "SP",
		SerieNFCe:         1,
		ProximaNotaNumero: 1,
		Ambiente:          "homologacao",
	}}

	locks := keymutex.New()
	caixaRepo := newFakeCaixaRepo()
	caixaSvc := NewCaixaService(caixaRepo, f.vendaRepo, f.finRepo, locks)
	estoqueSvc := NewEstoqueService(f.produtoRepo, f.movRepo, f.finRepo, locks)

	_, err := caixaSvc.Abrir(context.Background(), uuid.New(), dto.AbrirCaixaRequest{
		SaldoInicial: decimal.RequireFromString("100.00"),
	})
	require.NoError(t, err)

	f.svc = NewVendaService(f.vendaRepo, f.produtoRepo, f.clienteRepo, f.configRepo,
		f.notaRepo, f.finRepo, caixaSvc, estoqueSvc, sefaz, nil, locks, bloqueiaRejeicao)
	return f
}

func sefazAutoriza() *fakeTransmissor {
	return &fakeTransmissor{retorno: &infra.RetornoSefaz{
		CStat: 100, XMotivo: "Autorizado o uso da NF-e", Protocolo: "135260000000001",
	}}
}

func (f *vendaFixture) novoProduto(preco string, estoque int64) *model.Produto {
	return f.produtoRepo.add(&model.Produto{
		Codigo:     uuid.NewString()[:13],
		Nome:       "Café Torrado 500g",
		PrecoCusto: decimal.RequireFromString("15.00"),
		PrecoVenda: decimal.RequireFromString(preco),
		Estoque:    decimal.NewFromInt(estoque),
		Unidade:    "UN",
		Ativo:      true,
	})
}

func TestRegistrarVenda(t *testing.T) {
	f := newVendaFixture(t, sefazAutoriza(), false)
	p := f.novoProduto("24.90", 10)

	resp, err := f.svc.RegistrarVenda(context.Background(), uuid.New(), dto.RegistrarVendaRequest{
		Itens:           []dto.ItemVendaRequest{{ProdutoID: p.ID.String(), Quantidade: decimal.NewFromInt(2)}},
		MetodoPagamento: "dinheiro",
	})
	require.NoError(t, err)

	assert.Equal(t, int64(1), resp.Numero)
	assert.Equal(t, "49.80", resp.Subtotal.StringFixed(2))
	assert.Equal(t, "49.80", resp.Total.StringFixed(2))
	assert.Equal(t, "concluida", resp.Status)
	assert.Len(t, resp.ChaveAcesso, 44)
	require.NotNil(t, resp.Protocolo)
	assert.Equal(t, "135260000000001", *resp.Protocolo)

	// Baixa de estoque + kardex
	assert.Equal(t, "8", p.Estoque.String())
	require.Len(t, f.movRepo.movimentos, 1)
	mov := f.movRepo.movimentos[0]
	assert.Equal(t, "venda", mov.Tipo)
	assert.Equal(t, "-2", mov.Quantidade.String())
	assert.Equal(t, "10", mov.EstoqueAnterior.String())
	assert.Equal(t, "8", mov.EstoqueNovo.String())

	// Receita no financeiro
	require.Len(t, f.finRepo.registros, 1)
	assert.Equal(t, "receita", f.finRepo.registros[0].Tipo)
	assert.Equal(t, "Vendas", f.finRepo.registros[0].Categoria)
	assert.Equal(t, "49.80", f.finRepo.registros[0].Valor.StringFixed(2))

	// Sequência fiscal avança
	assert.Equal(t, int64(2), f.configRepo.cfg.ProximaNotaNumero)

	// Nota autorizada na primeira tentativa, sem retry agendado
	require.Len(t, f.notaRepo.notas, 1)
	for _, n := range f.notaRepo.notas {
		assert.Equal(t, "autorizada", n.Status)
		assert.Nil(t, n.NextRetryAt)
	}
	assert.Equal(t, 1, f.sefaz.chamadas, "uma única tentativa síncrona")
}

func TestRegistrarVendaPrecoAtacado(t *testing.T) {
	f := newVendaFixture(t, sefazAutoriza(), false)
	p := f.novoProduto("24.90", 50)
	atacado := decimal.RequireFromString("22.90")
	minimo := decimal.NewFromInt(6)
	p.PrecoAtacado = &atacado
	p.QtdMinAtacado = &minimo

	resp, err := f.svc.RegistrarVenda(context.Background(), uuid.New(), dto.RegistrarVendaRequest{
		Itens:           []dto.ItemVendaRequest{{ProdutoID: p.ID.String(), Quantidade: decimal.NewFromInt(6)}},
		MetodoPagamento: "pix",
	})
	require.NoError(t, err)

	require.Len(t, resp.Itens, 1)
	assert.True(t, resp.Itens[0].Atacado)
	assert.Equal(t, "22.90", resp.Itens[0].PrecoAplicado.StringFixed(2))
	assert.Equal(t, "137.40", resp.Total.StringFixed(2))
}

func TestRegistrarVendaAbaixoDoMinimoAtacado(t *testing.T) {
	f := newVendaFixture(t, sefazAutoriza(), false)
	p := f.novoProduto("24.90", 50)
	atacado := decimal.RequireFromString("22.90")
	minimo := decimal.NewFromInt(6)
	p.PrecoAtacado = &atacado
	p.QtdMinAtacado = &minimo

	resp, err := f.svc.RegistrarVenda(context.Background(), uuid.New(), dto.RegistrarVendaRequest{
		Itens:           []dto.ItemVendaRequest{{ProdutoID: p.ID.String(), Quantidade: decimal.NewFromInt(5)}},
		MetodoPagamento: "dinheiro",
	})
	require.NoError(t, err)
	assert.False(t, resp.Itens[0].Atacado)
	assert.Equal(t, "124.50", resp.Total.StringFixed(2))
}

func TestRegistrarVendaSemCaixaAberto(t *testing.T) {
	f := newVendaFixture(t, sefazAutoriza(), false)
	p := f.novoProduto("10.00", 5)

	// Serviço montado sobre um caixa sem sessão aberta
	locks := keymutex.New()
	caixaSvc := NewCaixaService(newFakeCaixaRepo(), f.vendaRepo, f.finRepo, locks)
	estoqueSvc := NewEstoqueService(f.produtoRepo, f.movRepo, f.finRepo, locks)
	svc := NewVendaService(f.vendaRepo, f.produtoRepo, f.clienteRepo, f.configRepo,
		f.notaRepo, f.finRepo, caixaSvc, estoqueSvc, f.sefaz, nil, locks, false)

	_, err := svc.RegistrarVenda(context.Background(), uuid.New(), dto.RegistrarVendaRequest{
		Itens:           []dto.ItemVendaRequest{{ProdutoID: p.ID.String(), Quantidade: decimal.NewFromInt(1)}},
		MetodoPagamento: "dinheiro",
	})
	assert.ErrorIs(t, err, ErrSemCaixaAberto)
	assert.Empty(t, f.vendaRepo.vendas, "nada gravado sem sessão")
	assert.Equal(t, "5", p.Estoque.String(), "estoque intocado")
}

func TestRegistrarVendaQuantidadeInvalida(t *testing.T) {
	f := newVendaFixture(t, sefazAutoriza(), false)
	p := f.novoProduto("10.00", 5)

	_, err := f.svc.RegistrarVenda(context.Background(), uuid.New(), dto.RegistrarVendaRequest{
		Itens:           []dto.ItemVendaRequest{{ProdutoID: p.ID.String(), Quantidade: decimal.Zero}},
		MetodoPagamento: "dinheiro",
	})
	assert.ErrorIs(t, err, ErrNotaInvalida)
}

func TestRegistrarVendaProdutoInativo(t *testing.T) {
	f := newVendaFixture(t, sefazAutoriza(), false)
	p := f.novoProduto("10.00", 5)
	p.Ativo = false

	_, err := f.svc.RegistrarVenda(context.Background(), uuid.New(), dto.RegistrarVendaRequest{
		Itens:           []dto.ItemVendaRequest{{ProdutoID: p.ID.String(), Quantidade: decimal.NewFromInt(1)}},
		MetodoPagamento: "dinheiro",
	})
	assert.ErrorContains(t, err, "inativo")
}

func TestRegistrarVendaSefazIndisponivel(t *testing.T) {
	// Contingência: a falha de rede não impede a venda; a nota fica
	// pendente com retry agendado.
	sefaz := &fakeTransmissor{err: errors.New("connection refused")}
	f := newVendaFixture(t, sefaz, false)
	p := f.novoProduto("24.90", 10)

	resp, err := f.svc.RegistrarVenda(context.Background(), uuid.New(), dto.RegistrarVendaRequest{
		Itens:           []dto.ItemVendaRequest{{ProdutoID: p.ID.String(), Quantidade: decimal.NewFromInt(1)}},
		MetodoPagamento: "dinheiro",
	})
	require.NoError(t, err)
	assert.Equal(t, "concluida", resp.Status)
	assert.Nil(t, resp.Protocolo)

	require.Len(t, f.notaRepo.notas, 1)
	for _, n := range f.notaRepo.notas {
		assert.Equal(t, "pendente", n.Status)
		require.NotNil(t, n.NextRetryAt)
		require.NotNil(t, n.LastError)
		assert.Contains(t, *n.LastError, "connection refused")
	}
}

func TestRegistrarVendaNotaRejeitada(t *testing.T) {
	sefaz := &fakeTransmissor{retorno: &infra.RetornoSefaz{CStat: 539, XMotivo: "Duplicidade de NF-e"}}
	f := newVendaFixture(t, sefaz, false)
	p := f.novoProduto("24.90", 10)

	_, err := f.svc.RegistrarVenda(context.Background(), uuid.New(), dto.RegistrarVendaRequest{
		Itens:           []dto.ItemVendaRequest{{ProdutoID: p.ID.String(), Quantidade: decimal.NewFromInt(1)}},
		MetodoPagamento: "credito",
	})
	require.NoError(t, err, "rejeição não bloqueia a venda por padrão")

	for _, n := range f.notaRepo.notas {
		assert.Equal(t, "rejeitada", n.Status)
		require.NotNil(t, n.Motivo)
		assert.Contains(t, *n.Motivo, "cStat 539")
		assert.NotNil(t, n.NextRetryAt)
	}
}

func TestRegistrarVendaModoBloqueante(t *testing.T) {
	sefaz := &fakeTransmissor{retorno: &infra.RetornoSefaz{CStat: 539, XMotivo: "Duplicidade de NF-e"}}
	f := newVendaFixture(t, sefaz, true)
	p := f.novoProduto("24.90", 10)

	_, err := f.svc.RegistrarVenda(context.Background(), uuid.New(), dto.RegistrarVendaRequest{
		Itens:           []dto.ItemVendaRequest{{ProdutoID: p.ID.String(), Quantidade: decimal.NewFromInt(1)}},
		MetodoPagamento: "dinheiro",
	})
	require.ErrorIs(t, err, ErrNotaInvalida)

	assert.Empty(t, f.vendaRepo.vendas, "modo bloqueante: nada gravado")
	assert.Empty(t, f.notaRepo.notas)
	assert.Equal(t, "10", p.Estoque.String())
	// O número reservado antes da transmissão fica inutilizado: a
	// sequência avança mesmo com a venda abortada.
	assert.Equal(t, int64(2), f.configRepo.cfg.ProximaNotaNumero)
}

func TestRegistrarVendaFidelidade(t *testing.T) {
	f := newVendaFixture(t, sefazAutoriza(), false)
	p := f.novoProduto("50.00", 10)

	cliente := &model.Cliente{Nome: "Maria", Pontos: 100, Ativo: true}
	require.NoError(t, f.clienteRepo.Create(context.Background(), cliente))
	cid := cliente.ID.String()

	resp, err := f.svc.RegistrarVenda(context.Background(), uuid.New(), dto.RegistrarVendaRequest{
		Itens:           []dto.ItemVendaRequest{{ProdutoID: p.ID.String(), Quantidade: decimal.NewFromInt(2)}},
		MetodoPagamento: "dinheiro",
		ClienteID:       &cid,
		ResgatePontos:   30,
	})
	require.NoError(t, err)

	// subtotal 100 − 30 de resgate = 70; ganhos = floor(70/10) = 7
	assert.Equal(t, "30.00", resp.Desconto.StringFixed(2))
	assert.Equal(t, "70.00", resp.Total.StringFixed(2))
	assert.Equal(t, int64(7), resp.PontosGanhos)
	assert.Equal(t, int64(30), resp.PontosResgatados)

	// Saldo do cliente: 100 − 30 + 7 = 77
	assert.Equal(t, int64(77), cliente.Pontos)
	assert.NotNil(t, cliente.UltimaCompraEm)
}

func TestRegistrarVendaClientePadraoSemPontos(t *testing.T) {
	f := newVendaFixture(t, sefazAutoriza(), false)
	p := f.novoProduto("50.00", 10)

	padrao := &model.Cliente{Nome: "Consumidor Final", Padrao: true, Ativo: true}
	require.NoError(t, f.clienteRepo.Create(context.Background(), padrao))
	cid := padrao.ID.String()

	resp, err := f.svc.RegistrarVenda(context.Background(), uuid.New(), dto.RegistrarVendaRequest{
		Itens:           []dto.ItemVendaRequest{{ProdutoID: p.ID.String(), Quantidade: decimal.NewFromInt(2)}},
		MetodoPagamento: "debito",
		ClienteID:       &cid,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(10), resp.PontosGanhos, "a venda calcula os pontos")
	assert.Equal(t, int64(0), padrao.Pontos, "mas o consumidor padrão nunca acumula")
	assert.Nil(t, padrao.UltimaCompraEm)
}

func TestRegistrarVendaTotalNuncaNegativo(t *testing.T) {
	f := newVendaFixture(t, sefazAutoriza(), false)
	p := f.novoProduto("10.00", 10)

	resp, err := f.svc.RegistrarVenda(context.Background(), uuid.New(), dto.RegistrarVendaRequest{
		Itens:           []dto.ItemVendaRequest{{ProdutoID: p.ID.String(), Quantidade: decimal.NewFromInt(1)}},
		MetodoPagamento: "dinheiro",
		ResgatePontos:   500,
	})
	require.NoError(t, err)
	assert.Equal(t, "0.00", resp.Total.StringFixed(2))
	assert.Equal(t, int64(0), resp.PontosGanhos)
}

func TestRegistrarVendasConcorrentesNumerosDistintos(t *testing.T) {
	// Duas vendas disparadas em paralelo: a reserva atômica do número
	// acontece antes da transmissão, então nenhuma dupla pode consumir
	// o mesmo número da sequência fiscal.
	f := newVendaFixture(t, sefazAutoriza(), false)
	p := f.novoProduto("10.00", 100)

	const vendas = 2
	numeros := make(chan int64, vendas)
	var wg sync.WaitGroup
	for i := 0; i < vendas; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := f.svc.RegistrarVenda(context.Background(), uuid.New(), dto.RegistrarVendaRequest{
				Itens:           []dto.ItemVendaRequest{{ProdutoID: p.ID.String(), Quantidade: decimal.NewFromInt(1)}},
				MetodoPagamento: "dinheiro",
			})
			assert.NoError(t, err)
			if resp != nil {
				numeros <- resp.Numero
			}
		}()
	}
	wg.Wait()
	close(numeros)

	vistos := make(map[int64]bool)
	for n := range numeros {
		require.False(t, vistos[n], "duas vendas concluídas não podem compartilhar o número fiscal")
		vistos[n] = true
	}
	assert.Len(t, vistos, vendas)
	assert.Equal(t, int64(vendas+1), f.configRepo.cfg.ProximaNotaNumero)
	assert.Equal(t, "98", p.Estoque.String())
}

func TestRegistrarVendasSequenciaMonotonica(t *testing.T) {
	f := newVendaFixture(t, sefazAutoriza(), false)
	p := f.novoProduto("5.00", 100)

	for esperado := int64(1); esperado <= 3; esperado++ {
		resp, err := f.svc.RegistrarVenda(context.Background(), uuid.New(), dto.RegistrarVendaRequest{
			Itens:           []dto.ItemVendaRequest{{ProdutoID: p.ID.String(), Quantidade: decimal.NewFromInt(1)}},
			MetodoPagamento: "dinheiro",
		})
		require.NoError(t, err)
		assert.Equal(t, esperado, resp.Numero)
	}
	assert.Equal(t, int64(4), f.configRepo.cfg.ProximaNotaNumero)
}
