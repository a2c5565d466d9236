package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jrrjunior25/PDV-master-sub000/internal/dto"
	"github.com/jrrjunior25/PDV-master-sub000/internal/model"
	"github.com/jrrjunior25/PDV-master-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

type ProdutoService interface {
	Criar(ctx context.Context, req dto.ProdutoRequest) (*dto.ProdutoResponse, error)
	ObterPorID(ctx context.Context, id uuid.UUID) (*dto.ProdutoResponse, error)
	ObterPorCodigo(ctx context.Context, codigo string) (*dto.ProdutoResponse, error)
	Listar(ctx context.Context, filter dto.ProdutoFilter) (*dto.ProdutoListResponse, error)
	Atualizar(ctx context.Context, id uuid.UUID, req dto.ProdutoRequest) (*dto.ProdutoResponse, error)
	Desativar(ctx context.Context, id uuid.UUID) error
	// ConsultarPreco atende o terminal de consulta de preço: leitura
	// quente com cache Redis de curta duração.
	ConsultarPreco(ctx context.Context, codigo string) (*dto.PrecoResponse, error)
}

type produtoService struct {
	repo repository.ProdutoRepository
	rdb  *redis.Client
}

func NewProdutoService(repo repository.ProdutoRepository, rdb *redis.Client) ProdutoService {
	return &produtoService{repo: repo, rdb: rdb}
}

const precoCacheTTL = 60 * time.Second

func (s *produtoService) Criar(ctx context.Context, req dto.ProdutoRequest) (*dto.ProdutoResponse, error) {
	if existing, err := s.repo.FindByCodigo(ctx, req.Codigo); err == nil && existing != nil {
		return nil, fmt.Errorf("já existe produto com o código %s", req.Codigo)
	}

	p := &model.Produto{
		Codigo:        req.Codigo,
		Nome:          req.Nome,
		Descricao:     req.Descricao,
		Categoria:     req.Categoria,
		PrecoCusto:    req.PrecoCusto,
		PrecoVenda:    req.PrecoVenda,
		PrecoAtacado:  req.PrecoAtacado,
		QtdMinAtacado: req.QtdMinAtacado,
		Estoque:       req.Estoque,
		EstoqueMinimo: req.EstoqueMinimo,
		Unidade:       req.Unidade,
		Ativo:         true,
	}
	if p.Unidade == "" {
		p.Unidade = "UN"
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return produtoToResponse(p), nil
}

func (s *produtoService) ObterPorID(ctx context.Context, id uuid.UUID) (*dto.ProdutoResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("produto não encontrado")
	}
	return produtoToResponse(p), nil
}

func (s *produtoService) ObterPorCodigo(ctx context.Context, codigo string) (*dto.ProdutoResponse, error) {
	p, err := s.repo.FindByCodigo(ctx, codigo)
	if err != nil {
		return nil, errors.New("produto não encontrado")
	}
	return produtoToResponse(p), nil
}

func (s *produtoService) Listar(ctx context.Context, filter dto.ProdutoFilter) (*dto.ProdutoListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	produtos, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.ProdutoResponse, 0, len(produtos))
	for i := range produtos {
		data = append(data, *produtoToResponse(&produtos[i]))
	}
	return &dto.ProdutoListResponse{
		Data:  data,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

func (s *produtoService) Atualizar(ctx context.Context, id uuid.UUID, req dto.ProdutoRequest) (*dto.ProdutoResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("produto não encontrado")
	}

	p.Codigo = req.Codigo
	p.Nome = req.Nome
	p.Descricao = req.Descricao
	p.Categoria = req.Categoria
	p.PrecoCusto = req.PrecoCusto
	p.PrecoVenda = req.PrecoVenda
	p.PrecoAtacado = req.PrecoAtacado
	p.QtdMinAtacado = req.QtdMinAtacado
	p.EstoqueMinimo = req.EstoqueMinimo
	if req.Unidade != "" {
		p.Unidade = req.Unidade
	}
	// Estoque não é editável por aqui: mutações passam pelo kardex.

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	s.invalidarPreco(ctx, p.Codigo)
	return produtoToResponse(p), nil
}

func (s *produtoService) Desativar(ctx context.Context, id uuid.UUID) error {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return errors.New("produto não encontrado")
	}
	if err := s.repo.Desativar(ctx, id); err != nil {
		return err
	}
	s.invalidarPreco(ctx, p.Codigo)
	return nil
}

// ── ConsultarPreco ───────────────────────────────────────────────────────────

func precoCacheKey(codigo string) string { return "preco:" + codigo }

func (s *produtoService) ConsultarPreco(ctx context.Context, codigo string) (*dto.PrecoResponse, error) {
	if s.rdb != nil {
		if raw, err := s.rdb.Get(ctx, precoCacheKey(codigo)).Result(); err == nil {
			var cached dto.PrecoResponse
			if json.Unmarshal([]byte(raw), &cached) == nil {
				return &cached, nil
			}
		}
	}

	p, err := s.repo.FindByCodigo(ctx, codigo)
	if err != nil {
		return nil, errors.New("produto não encontrado")
	}

	resp := &dto.PrecoResponse{
		Codigo:     p.Codigo,
		Nome:       p.Nome,
		PrecoVenda: p.PrecoVenda,
	}
	if s.rdb != nil {
		if raw, err := json.Marshal(resp); err == nil {
			if err := s.rdb.Set(ctx, precoCacheKey(codigo), raw, precoCacheTTL).Err(); err != nil {
				log.Debug().Err(err).Str("codigo", codigo).Msg("falha ao gravar cache de preço")
			}
		}
	}
	return resp, nil
}

func (s *produtoService) invalidarPreco(ctx context.Context, codigo string) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, precoCacheKey(codigo)).Err(); err != nil {
		log.Debug().Err(err).Str("codigo", codigo).Msg("falha ao invalidar cache de preço")
	}
}

func produtoToResponse(p *model.Produto) *dto.ProdutoResponse {
	return &dto.ProdutoResponse{
		ID:            p.ID.String(),
		Codigo:        p.Codigo,
		Nome:          p.Nome,
		Descricao:     p.Descricao,
		Categoria:     p.Categoria,
		PrecoCusto:    p.PrecoCusto,
		PrecoVenda:    p.PrecoVenda,
		PrecoAtacado:  p.PrecoAtacado,
		QtdMinAtacado: p.QtdMinAtacado,
		Estoque:       p.Estoque,
		EstoqueMinimo: p.EstoqueMinimo,
		Unidade:       p.Unidade,
		Ativo:         p.Ativo,
	}
}
