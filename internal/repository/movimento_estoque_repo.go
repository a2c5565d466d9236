package repository

import (
	"context"

	"github.com/jrrjunior25/PDV-master-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MovimentoEstoqueRepository é o apêndice do kardex. Só há criação e
// leitura: a interface não expõe Update nem Delete (garantia em tempo de
// compilação de que o livro é imutável).
type MovimentoEstoqueRepository interface {
	CreateTx(tx *gorm.DB, m *model.MovimentoEstoque) error
	ListByProduto(ctx context.Context, produtoID uuid.UUID) ([]model.MovimentoEstoque, error)
	List(ctx context.Context, limit int) ([]model.MovimentoEstoque, error)
}

type movimentoEstoqueRepo struct{ db *gorm.DB }

func NewMovimentoEstoqueRepository(db *gorm.DB) MovimentoEstoqueRepository {
	return &movimentoEstoqueRepo{db: db}
}

func (r *movimentoEstoqueRepo) CreateTx(tx *gorm.DB, m *model.MovimentoEstoque) error {
	return tx.Create(m).Error
}

func (r *movimentoEstoqueRepo) ListByProduto(ctx context.Context, produtoID uuid.UUID) ([]model.MovimentoEstoque, error) {
	var movs []model.MovimentoEstoque
	err := r.db.WithContext(ctx).
		Where("produto_id = ?", produtoID).
		Order("created_at DESC").
		Find(&movs).Error
	return movs, err
}

func (r *movimentoEstoqueRepo) List(ctx context.Context, limit int) ([]model.MovimentoEstoque, error) {
	var movs []model.MovimentoEstoque
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&movs).Error
	return movs, err
}
