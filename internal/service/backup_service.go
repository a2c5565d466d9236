package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jrrjunior25/PDV-master-sub000/internal/repository"

	"github.com/rs/zerolog/log"
)

// BackupService exporta e restaura o snapshot completo da loja.
// A restauração valida o payload antes de tocar o banco: sem a coleção
// "produtos" nada é gravado.
type BackupService interface {
	Exportar(ctx context.Context) (*repository.Snapshot, error)
	Importar(ctx context.Context, raw json.RawMessage) error
}

type backupService struct {
	repo repository.BackupRepository
}

func NewBackupService(repo repository.BackupRepository) BackupService {
	return &backupService{repo: repo}
}

func (s *backupService) Exportar(ctx context.Context) (*repository.Snapshot, error) {
	snap, err := s.repo.Export(ctx)
	if err != nil {
		return nil, err
	}
	snap.Versao = repository.SnapshotVersao
	snap.GeradoEm = time.Now()
	return snap, nil
}

func (s *backupService) Importar(ctx context.Context, raw json.RawMessage) error {
	// Validação rasa primeiro: a chave "produtos" precisa existir no
	// payload bruto, antes de qualquer parse tipado.
	var chaves map[string]json.RawMessage
	if err := json.Unmarshal(raw, &chaves); err != nil {
		return fmt.Errorf("%w: %v", ErrBackupInvalido, err)
	}
	if _, ok := chaves["produtos"]; !ok {
		return ErrBackupInvalido
	}

	var snap repository.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return fmt.Errorf("%w: %v", ErrBackupInvalido, err)
	}

	if err := s.repo.Import(ctx, &snap); err != nil {
		return err
	}

	log.Info().Int("versao", snap.Versao).
		Int("produtos", len(snap.Produtos)).
		Int("vendas", len(snap.Vendas)).
		Msg("backup restaurado")
	return nil
}
