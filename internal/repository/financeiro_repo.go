package repository

import (
	"context"
	"time"

	"github.com/jrrjunior25/PDV-master-sub000/internal/model"

	"gorm.io/gorm"
)

// FinanceiroRepository grava os lançamentos append-only de receita e
// despesa. Sem Update/Delete.
type FinanceiroRepository interface {
	Create(ctx context.Context, reg *model.RegistroFinanceiro) error
	CreateTx(tx *gorm.DB, reg *model.RegistroFinanceiro) error
	ListByPeriodo(ctx context.Context, inicio, fim time.Time) ([]model.RegistroFinanceiro, error)
}

type financeiroRepo struct{ db *gorm.DB }

func NewFinanceiroRepository(db *gorm.DB) FinanceiroRepository {
	return &financeiroRepo{db: db}
}

func (r *financeiroRepo) Create(ctx context.Context, reg *model.RegistroFinanceiro) error {
	return r.db.WithContext(ctx).Create(reg).Error
}

func (r *financeiroRepo) CreateTx(tx *gorm.DB, reg *model.RegistroFinanceiro) error {
	return tx.Create(reg).Error
}

func (r *financeiroRepo) ListByPeriodo(ctx context.Context, inicio, fim time.Time) ([]model.RegistroFinanceiro, error) {
	var regs []model.RegistroFinanceiro
	err := r.db.WithContext(ctx).
		Where("data >= ? AND data <= ?", inicio, fim).
		Order("data ASC").
		Find(&regs).Error
	return regs, err
}
