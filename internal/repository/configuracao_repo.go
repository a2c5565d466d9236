package repository

import (
	"context"
	"errors"

	"github.com/jrrjunior25/PDV-master-sub000/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ConfiguracaoRepository acessa a linha única de parâmetros da loja.
// O contador fiscal (ProximaNotaNumero) só é consumido via
// ConsumirProximoNumero: a reserva é atômica, então duas vendas
// concorrentes nunca recebem o mesmo número.
type ConfiguracaoRepository interface {
	Get(ctx context.Context) (*model.Configuracao, error)
	Update(ctx context.Context, cfg *model.Configuracao) error
	// ConsumirProximoNumero reserva e devolve o próximo número da
	// sequência fiscal, avançando o contador na mesma operação.
	ConsumirProximoNumero(ctx context.Context) (*model.Configuracao, int64, error)
}

type configuracaoRepo struct{ db *gorm.DB }

func NewConfiguracaoRepository(db *gorm.DB) ConfiguracaoRepository {
	return &configuracaoRepo{db: db}
}

// Get devolve a configuração, criando a linha default no primeiro acesso.
func (r *configuracaoRepo) Get(ctx context.Context) (*model.Configuracao, error) {
	var cfg model.Configuracao
	err := r.db.WithContext(ctx).First(&cfg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		cfg = model.Configuracao{ID: 1, UF: "SP", SerieNFCe: 1, ProximaNotaNumero: 1, Ambiente: "homologacao"}
		if err := r.db.WithContext(ctx).Create(&cfg).Error; err != nil {
			return nil, err
		}
		return &cfg, nil
	}
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (r *configuracaoRepo) Update(ctx context.Context, cfg *model.Configuracao) error {
	return r.db.WithContext(ctx).Save(cfg).Error
}

// ConsumirProximoNumero trava a linha de configuração (SELECT ... FOR
// UPDATE) em uma transação curta, local ao banco, e devolve o número
// reservado junto com o snapshot da configuração.
func (r *configuracaoRepo) ConsumirProximoNumero(ctx context.Context) (*model.Configuracao, int64, error) {
	var cfg model.Configuracao
	var numero int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&cfg).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			cfg = model.Configuracao{ID: 1, UF: "SP", SerieNFCe: 1, ProximaNotaNumero: 1, Ambiente: "homologacao"}
			if err := tx.Create(&cfg).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}
		numero = cfg.ProximaNotaNumero
		if numero < 1 {
			numero = 1
		}
		return tx.Model(&model.Configuracao{}).Where("id = ?", cfg.ID).
			Update("proxima_nota_numero", numero+1).Error
	})
	if err != nil {
		return nil, 0, err
	}
	cfg.ProximaNotaNumero = numero + 1
	return &cfg, numero, nil
}
