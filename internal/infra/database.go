package infra

import (
	"fmt"

	"github.com/jrrjunior25/PDV-master-sub000/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase abre a conexão GORM sobre pgx, roda AutoMigrate para todas
// as tabelas e aplica os patches de DDL que o AutoMigrate não expressa
// (índice parcial de sessão aberta, sequência da numeração fiscal).
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := db.AutoMigrate(
		&model.Produto{},
		&model.Cliente{},
		&model.Usuario{},
		&model.SessaoCaixa{},
		&model.MovimentoCaixa{},
		&model.Venda{},
		&model.VendaItem{},
		&model.MovimentoEstoque{},
		&model.RegistroFinanceiro{},
		&model.NotaFiscal{},
		&model.Configuracao{},
	); err != nil {
		return nil, fmt.Errorf("AutoMigrate: %w", err)
	}

	if err := applySchemaPatches(db); err != nil {
		return nil, fmt.Errorf("schema patches: %w", err)
	}

	return db, nil
}

// applySchemaPatches roda DDL idempotente além do alcance do AutoMigrate.
// Cada statement usa IF NOT EXISTS, então re-executar é sempre seguro.
func applySchemaPatches(db *gorm.DB) error {
	patches := []string{
		// No máximo UMA sessão de caixa aberta na loja inteira — o índice
		// parcial único transforma a invariante em restrição do banco, não
		// só em checagem de aplicação.
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'uni_sessao_caixa_aberta') THEN
		    CREATE UNIQUE INDEX uni_sessao_caixa_aberta
		        ON sessoes_caixa ((status))
		        WHERE status = 'aberta';
		  END IF;
		END $$`,
		// Índice do cron de retransmissão fiscal.
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_notas_fiscais_pending_retry') THEN
		    CREATE INDEX idx_notas_fiscais_pending_retry
		        ON notas_fiscais (next_retry_at)
		        WHERE status IN ('pendente', 'rejeitada') AND next_retry_at IS NOT NULL;
		  END IF;
		END $$`,
		// Consulta do fechamento de caixa: vendas em dinheiro por período.
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_vendas_metodo_created') THEN
		    CREATE INDEX idx_vendas_metodo_created
		        ON vendas (metodo_pagamento, created_at);
		  END IF;
		END $$`,
	}

	for _, sql := range patches {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", sql[:min(len(sql), 60)], err)
		}
	}
	return nil
}
