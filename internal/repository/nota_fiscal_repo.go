package repository

import (
	"context"
	"time"

	"github.com/jrrjunior25/PDV-master-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotaFiscalRepository interface {
	CreateTx(tx *gorm.DB, n *model.NotaFiscal) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.NotaFiscal, error)
	FindByVendaID(ctx context.Context, vendaID uuid.UUID) (*model.NotaFiscal, error)
	Update(ctx context.Context, n *model.NotaFiscal) error
	// ListPendingRetries devolve as notas pendentes com next_retry_at no
	// passado — fila de trabalho do cron de retransmissão.
	ListPendingRetries(ctx context.Context, antes time.Time, limit int) ([]model.NotaFiscal, error)
}

type notaFiscalRepo struct{ db *gorm.DB }

func NewNotaFiscalRepository(db *gorm.DB) NotaFiscalRepository { return &notaFiscalRepo{db: db} }

func (r *notaFiscalRepo) CreateTx(tx *gorm.DB, n *model.NotaFiscal) error {
	return tx.Create(n).Error
}

func (r *notaFiscalRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.NotaFiscal, error) {
	var n model.NotaFiscal
	err := r.db.WithContext(ctx).First(&n, id).Error
	return &n, err
}

func (r *notaFiscalRepo) FindByVendaID(ctx context.Context, vendaID uuid.UUID) (*model.NotaFiscal, error) {
	var n model.NotaFiscal
	err := r.db.WithContext(ctx).Where("venda_id = ?", vendaID).First(&n).Error
	return &n, err
}

func (r *notaFiscalRepo) Update(ctx context.Context, n *model.NotaFiscal) error {
	return r.db.WithContext(ctx).Save(n).Error
}

func (r *notaFiscalRepo) ListPendingRetries(ctx context.Context, antes time.Time, limit int) ([]model.NotaFiscal, error) {
	var notas []model.NotaFiscal
	err := r.db.WithContext(ctx).
		Where("status IN ('pendente', 'rejeitada') AND next_retry_at IS NOT NULL AND next_retry_at <= ?", antes).
		Order("next_retry_at ASC").
		Limit(limit).
		Find(&notas).Error
	return notas, err
}
