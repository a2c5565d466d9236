package repository

import (
	"context"
	"time"

	"github.com/jrrjunior25/PDV-master-sub000/internal/model"

	"gorm.io/gorm"
)

// SnapshotVersao identifica o formato do dump completo da loja.
const SnapshotVersao = 2

// Snapshot é o dump versionado de todas as coleções duráveis. As chaves
// JSON são os nomes das coleções — a restauração exige ao menos a chave
// "produtos" (validação no BackupService).
type Snapshot struct {
	Versao            int                        `json:"versao"`
	GeradoEm          time.Time                  `json:"gerado_em"`
	Produtos          []model.Produto            `json:"produtos"`
	Clientes          []model.Cliente            `json:"clientes"`
	Vendas            []model.Venda              `json:"vendas"`
	SessoesCaixa      []model.SessaoCaixa        `json:"sessoes_caixa"`
	MovimentosCaixa   []model.MovimentoCaixa     `json:"movimentos_caixa"`
	MovimentosEstoque []model.MovimentoEstoque   `json:"movimentos_estoque"`
	Financeiro        []model.RegistroFinanceiro `json:"registros_financeiros"`
	NotasFiscais      []model.NotaFiscal         `json:"notas_fiscais"`
	Configuracao      *model.Configuracao        `json:"configuracao,omitempty"`
}

type BackupRepository interface {
	Export(ctx context.Context) (*Snapshot, error)
	// Import substitui o conteúdo de todas as coleções numa única
	// transação — falha no meio não deixa a loja pela metade.
	Import(ctx context.Context, snap *Snapshot) error
}

type backupRepo struct{ db *gorm.DB }

func NewBackupRepository(db *gorm.DB) BackupRepository { return &backupRepo{db: db} }

func (r *backupRepo) Export(ctx context.Context) (*Snapshot, error) {
	snap := &Snapshot{Versao: SnapshotVersao, GeradoEm: time.Now().UTC()}
	db := r.db.WithContext(ctx)

	if err := db.Find(&snap.Produtos).Error; err != nil {
		return nil, err
	}
	if err := db.Find(&snap.Clientes).Error; err != nil {
		return nil, err
	}
	if err := db.Preload("Itens").Find(&snap.Vendas).Error; err != nil {
		return nil, err
	}
	if err := db.Find(&snap.SessoesCaixa).Error; err != nil {
		return nil, err
	}
	if err := db.Find(&snap.MovimentosCaixa).Error; err != nil {
		return nil, err
	}
	if err := db.Find(&snap.MovimentosEstoque).Error; err != nil {
		return nil, err
	}
	if err := db.Find(&snap.Financeiro).Error; err != nil {
		return nil, err
	}
	if err := db.Find(&snap.NotasFiscais).Error; err != nil {
		return nil, err
	}

	var cfg model.Configuracao
	if err := db.First(&cfg).Error; err == nil {
		snap.Configuracao = &cfg
	}

	return snap, nil
}

func (r *backupRepo) Import(ctx context.Context, snap *Snapshot) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Ordem respeita as FKs: filhos antes dos pais no truncate,
		// pais antes dos filhos no insert.
		for _, m := range []interface{}{
			&model.NotaFiscal{}, &model.VendaItem{}, &model.Venda{},
			&model.MovimentoEstoque{}, &model.MovimentoCaixa{}, &model.SessaoCaixa{},
			&model.RegistroFinanceiro{}, &model.Cliente{}, &model.Produto{},
		} {
			if err := tx.Where("1 = 1").Delete(m).Error; err != nil {
				return err
			}
		}

		if len(snap.Produtos) > 0 {
			if err := tx.Create(&snap.Produtos).Error; err != nil {
				return err
			}
		}
		if len(snap.Clientes) > 0 {
			if err := tx.Create(&snap.Clientes).Error; err != nil {
				return err
			}
		}
		if len(snap.SessoesCaixa) > 0 {
			if err := tx.Create(&snap.SessoesCaixa).Error; err != nil {
				return err
			}
		}
		if len(snap.MovimentosCaixa) > 0 {
			if err := tx.Create(&snap.MovimentosCaixa).Error; err != nil {
				return err
			}
		}
		if len(snap.Vendas) > 0 {
			if err := tx.Create(&snap.Vendas).Error; err != nil {
				return err
			}
		}
		if len(snap.MovimentosEstoque) > 0 {
			if err := tx.Create(&snap.MovimentosEstoque).Error; err != nil {
				return err
			}
		}
		if len(snap.Financeiro) > 0 {
			if err := tx.Create(&snap.Financeiro).Error; err != nil {
				return err
			}
		}
		if len(snap.NotasFiscais) > 0 {
			if err := tx.Create(&snap.NotasFiscais).Error; err != nil {
				return err
			}
		}
		if snap.Configuracao != nil {
			if err := tx.Save(snap.Configuracao).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
