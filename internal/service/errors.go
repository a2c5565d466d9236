package service

import "errors"

// Erros sentinela do domínio. Os handlers os mapeiam para 4xx; qualquer
// outro erro vira 500 genérico.
var (
	// ErrCaixaJaAberto: tentativa de abrir caixa com outra sessão aberta.
	ErrCaixaJaAberto = errors.New("já existe uma sessão de caixa aberta")

	// ErrSemCaixaAberto: operação que exige sessão aberta sem nenhuma.
	ErrSemCaixaAberto = errors.New("não há sessão de caixa aberta")

	// ErrBackupInvalido: snapshot de restauração sem a coleção "produtos".
	ErrBackupInvalido = errors.New("backup inválido: coleção de produtos ausente")

	// ErrNotaInvalida: entrada malformada na montagem de documento fiscal
	// ou de payload PIX. Fatal, propagado ao chamador.
	ErrNotaInvalida = errors.New("dados fiscais inválidos")
)
