package service

import (
	"context"
	"testing"

	"github.com/jrrjunior25/PDV-master-sub000/internal/dto"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCriarProduto(t *testing.T) {
	repo := newFakeProdutoRepo()
	svc := NewProdutoService(repo, nil)

	resp, err := svc.Criar(context.Background(), dto.ProdutoRequest{
		Codigo:     "7891000100103",
		Nome:       "Café Torrado 500g",
		PrecoCusto: decimal.RequireFromString("15.00"),
		PrecoVenda: decimal.RequireFromString("24.90"),
		Estoque:    decimal.NewFromInt(10),
	})
	require.NoError(t, err)
	assert.Equal(t, "7891000100103", resp.Codigo)
	assert.Equal(t, "UN", resp.Unidade, "unidade default")
	assert.True(t, resp.Ativo)
}

func TestCriarProdutoCodigoDuplicado(t *testing.T) {
	repo := newFakeProdutoRepo()
	svc := NewProdutoService(repo, nil)

	req := dto.ProdutoRequest{
		Codigo:     "123",
		Nome:       "Produto",
		PrecoCusto: decimal.NewFromInt(1),
		PrecoVenda: decimal.NewFromInt(2),
	}
	_, err := svc.Criar(context.Background(), req)
	require.NoError(t, err)

	_, err = svc.Criar(context.Background(), req)
	assert.ErrorContains(t, err, "já existe produto")
}

func TestAtualizarNaoTocaEstoque(t *testing.T) {
	repo := newFakeProdutoRepo()
	svc := NewProdutoService(repo, nil)

	criado, err := svc.Criar(context.Background(), dto.ProdutoRequest{
		Codigo:     "123",
		Nome:       "Produto",
		PrecoCusto: decimal.NewFromInt(1),
		PrecoVenda: decimal.NewFromInt(2),
		Estoque:    decimal.NewFromInt(10),
	})
	require.NoError(t, err)

	atualizado, err := svc.Atualizar(context.Background(), mustUUID(t, criado.ID), dto.ProdutoRequest{
		Codigo:     "123",
		Nome:       "Produto Renomeado",
		PrecoCusto: decimal.NewFromInt(1),
		PrecoVenda: decimal.RequireFromString("2.50"),
		Estoque:    decimal.NewFromInt(999),
	})
	require.NoError(t, err)

	assert.Equal(t, "Produto Renomeado", atualizado.Nome)
	assert.Equal(t, "2.50", atualizado.PrecoVenda.StringFixed(2))
	assert.Equal(t, "10", atualizado.Estoque.String(), "estoque só muda pelo kardex")
}

func TestDesativarProduto(t *testing.T) {
	repo := newFakeProdutoRepo()
	svc := NewProdutoService(repo, nil)

	criado, err := svc.Criar(context.Background(), dto.ProdutoRequest{
		Codigo:     "123",
		Nome:       "Produto",
		PrecoCusto: decimal.NewFromInt(1),
		PrecoVenda: decimal.NewFromInt(2),
	})
	require.NoError(t, err)

	require.NoError(t, svc.Desativar(context.Background(), mustUUID(t, criado.ID)))

	_, err = svc.ObterPorCodigo(context.Background(), "123")
	assert.ErrorContains(t, err, "não encontrado", "desativado some das buscas por código")
}

func TestConsultarPrecoSemCache(t *testing.T) {
	// Sem Redis o terminal consulta direto no banco.
	repo := newFakeProdutoRepo()
	svc := NewProdutoService(repo, nil)

	_, err := svc.Criar(context.Background(), dto.ProdutoRequest{
		Codigo:     "789",
		Nome:       "Leite Integral 1L",
		PrecoCusto: decimal.RequireFromString("4.00"),
		PrecoVenda: decimal.RequireFromString("6.50"),
	})
	require.NoError(t, err)

	preco, err := svc.ConsultarPreco(context.Background(), "789")
	require.NoError(t, err)
	assert.Equal(t, "Leite Integral 1L", preco.Nome)
	assert.Equal(t, "6.50", preco.PrecoVenda.StringFixed(2))
}

func TestConsultarPrecoInexistente(t *testing.T) {
	svc := NewProdutoService(newFakeProdutoRepo(), nil)

	_, err := svc.ConsultarPreco(context.Background(), "000")
	assert.ErrorContains(t, err, "não encontrado")
}
