package service

import (
	"context"
	"testing"

	"github.com/jrrjunior25/PDV-master-sub000/internal/dto"
	"github.com/jrrjunior25/PDV-master-sub000/internal/keymutex"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCaixaFixture() (*fakeCaixaRepo, *fakeVendaRepo, *fakeFinanceiroRepo, CaixaService) {
	caixaRepo := newFakeCaixaRepo()
	vendaRepo := newFakeVendaRepo()
	finRepo := &fakeFinanceiroRepo{}
	svc := NewCaixaService(caixaRepo, vendaRepo, finRepo, keymutex.New())
	return caixaRepo, vendaRepo, finRepo, svc
}

func TestAbrirCaixa(t *testing.T) {
	_, _, _, svc := newCaixaFixture()

	resp, err := svc.Abrir(context.Background(), uuid.New(), dto.AbrirCaixaRequest{
		SaldoInicial: decimal.RequireFromString("100.00"),
	})

	require.NoError(t, err)
	assert.Equal(t, "aberta", resp.Status)
	assert.Equal(t, "100.00", resp.SaldoInicial.StringFixed(2))
}

func TestAbrirCaixaDuplicado(t *testing.T) {
	_, _, _, svc := newCaixaFixture()

	_, err := svc.Abrir(context.Background(), uuid.New(), dto.AbrirCaixaRequest{
		SaldoInicial: decimal.NewFromInt(100),
	})
	require.NoError(t, err)

	_, err = svc.Abrir(context.Background(), uuid.New(), dto.AbrirCaixaRequest{
		SaldoInicial: decimal.NewFromInt(50),
	})
	assert.ErrorIs(t, err, ErrCaixaJaAberto)
}

func TestSessaoAtualSemCaixa(t *testing.T) {
	_, _, _, svc := newCaixaFixture()

	_, err := svc.SessaoAtual(context.Background())
	assert.ErrorIs(t, err, ErrSemCaixaAberto)
}

func TestSangriaLancaDespesa(t *testing.T) {
	caixaRepo, _, finRepo, svc := newCaixaFixture()

	_, err := svc.Abrir(context.Background(), uuid.New(), dto.AbrirCaixaRequest{
		SaldoInicial: decimal.NewFromInt(200),
	})
	require.NoError(t, err)

	err = svc.RegistrarMovimento(context.Background(), uuid.New(), dto.MovimentoCaixaRequest{
		Tipo:      "sangria",
		Valor:     decimal.RequireFromString("80.00"),
		Descricao: "Depósito no banco",
	})
	require.NoError(t, err)

	require.Len(t, caixaRepo.movimentos, 1)
	assert.Equal(t, "sangria", caixaRepo.movimentos[0].Tipo)

	require.Len(t, finRepo.registros, 1)
	assert.Equal(t, "despesa", finRepo.registros[0].Tipo)
	assert.Equal(t, "Caixa", finRepo.registros[0].Categoria)
	assert.Equal(t, "80.00", finRepo.registros[0].Valor.StringFixed(2))
}

func TestSuprimentoNaoLancaDespesa(t *testing.T) {
	_, _, finRepo, svc := newCaixaFixture()

	_, err := svc.Abrir(context.Background(), uuid.New(), dto.AbrirCaixaRequest{
		SaldoInicial: decimal.NewFromInt(100),
	})
	require.NoError(t, err)

	err = svc.RegistrarMovimento(context.Background(), uuid.New(), dto.MovimentoCaixaRequest{
		Tipo:      "suprimento",
		Valor:     decimal.NewFromInt(50),
		Descricao: "Troco adicional",
	})
	require.NoError(t, err)
	assert.Empty(t, finRepo.registros)
}

func TestFecharCaixaConferencia(t *testing.T) {
	// abertura 100 + vendas em dinheiro 50 + suprimento 0 − sangria 20 = 130
	_, vendaRepo, _, svc := newCaixaFixture()

	_, err := svc.Abrir(context.Background(), uuid.New(), dto.AbrirCaixaRequest{
		SaldoInicial: decimal.RequireFromString("100.00"),
	})
	require.NoError(t, err)

	vendaRepo.vendasDinheiro = decimal.RequireFromString("50.00")

	err = svc.RegistrarMovimento(context.Background(), uuid.New(), dto.MovimentoCaixaRequest{
		Tipo:      "sangria",
		Valor:     decimal.RequireFromString("20.00"),
		Descricao: "Retirada parcial",
	})
	require.NoError(t, err)

	resp, err := svc.Fechar(context.Background(), dto.FecharCaixaRequest{
		SaldoContado: decimal.RequireFromString("130.00"),
	})
	require.NoError(t, err)

	assert.Equal(t, "130.00", resp.SaldoSistema.StringFixed(2))
	assert.Equal(t, "0.00", resp.Diferenca.StringFixed(2))
}

func TestFecharCaixaComFalta(t *testing.T) {
	_, _, _, svc := newCaixaFixture()

	_, err := svc.Abrir(context.Background(), uuid.New(), dto.AbrirCaixaRequest{
		SaldoInicial: decimal.NewFromInt(100),
	})
	require.NoError(t, err)

	resp, err := svc.Fechar(context.Background(), dto.FecharCaixaRequest{
		SaldoContado: decimal.RequireFromString("90.00"),
	})
	require.NoError(t, err)
	assert.Equal(t, "-10.00", resp.Diferenca.StringFixed(2), "negativa = falta na gaveta")
}

func TestFecharPermiteNovaAbertura(t *testing.T) {
	_, _, _, svc := newCaixaFixture()

	_, err := svc.Abrir(context.Background(), uuid.New(), dto.AbrirCaixaRequest{
		SaldoInicial: decimal.NewFromInt(100),
	})
	require.NoError(t, err)

	_, err = svc.Fechar(context.Background(), dto.FecharCaixaRequest{
		SaldoContado: decimal.NewFromInt(100),
	})
	require.NoError(t, err)

	_, err = svc.Abrir(context.Background(), uuid.New(), dto.AbrirCaixaRequest{
		SaldoInicial: decimal.NewFromInt(150),
	})
	assert.NoError(t, err)
}
