// Package keymutex fornece locks exclusivos por chave lógica (sessão de
// caixa, produto). Múltiplos terminais compartilham o mesmo processo de
// backend; serializar por agregado garante que cada venda/ajuste seja
// observado atomicamente sem um lock global.
package keymutex

import (
	"sort"
	"sync"
)

type entry struct {
	mu   sync.Mutex
	refs int
}

// Registry mantém um mutex por chave, criado sob demanda e descartado
// quando ninguém mais o referencia.
type Registry struct {
	mu    sync.Mutex
	locks map[string]*entry
}

func New() *Registry {
	return &Registry{locks: make(map[string]*entry)}
}

// Lock adquire as chaves em ordem lexicográfica (deduplica repetidas) —
// ordem total evita deadlock entre chamadores que travam conjuntos
// sobrepostos. Devolve a função de unlock, que libera em ordem inversa.
func (r *Registry) Lock(keys ...string) func() {
	uniq := make([]string, 0, len(keys))
	seen := make(map[string]bool, len(keys))
	for _, k := range keys {
		if !seen[k] {
			seen[k] = true
			uniq = append(uniq, k)
		}
	}
	sort.Strings(uniq)

	entries := make([]*entry, len(uniq))
	for i, k := range uniq {
		entries[i] = r.acquire(k)
		entries[i].mu.Lock()
	}

	return func() {
		for i := len(entries) - 1; i >= 0; i-- {
			entries[i].mu.Unlock()
			r.release(uniq[i])
		}
	}
}

func (r *Registry) acquire(key string) *entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.locks[key]
	if !ok {
		e = &entry{}
		r.locks[key] = e
	}
	e.refs++
	return e
}

func (r *Registry) release(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.locks[key]
	if !ok {
		return
	}
	e.refs--
	if e.refs <= 0 {
		delete(r.locks, key)
	}
}
