package infra

import (
	"errors"
	"sync"
	"time"
)

// ErrCircuitOpen é devolvido por Execute enquanto o circuito está aberto.
var ErrCircuitOpen = errors.New("circuit breaker aberto")

// CBState é o estado corrente do disjuntor que protege o webservice da SEFAZ.
type CBState int

const (
	CBClosed CBState = iota
	CBOpen
	CBHalfOpen
)

func (s CBState) String() string {
	switch s {
	case CBClosed:
		return "closed"
	case CBOpen:
		return "open"
	case CBHalfOpen:
		return "half-open"
	}
	return "unknown"
}

type CircuitBreakerConfig struct {
	// FailureThreshold: falhas consecutivas até abrir.
	FailureThreshold int
	// SuccessThreshold: sucessos em half-open até fechar.
	SuccessThreshold int
	// OpenTimeout: tempo aberto antes de liberar uma sonda.
	OpenTimeout time.Duration
}

func DefaultCBConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		FailureThreshold: 5,
		SuccessThreshold: 2,
		OpenTimeout:      60 * time.Second,
	}
}

// CircuitBreaker implementa o padrão Closed → Open → Half-Open com
// transições protegidas por mutex.
type CircuitBreaker struct {
	cfg CircuitBreakerConfig

	mu          sync.Mutex
	state       CBState
	falhas      int
	sucessos    int
	ultimaFalha time.Time
}

func NewCircuitBreaker(cfg CircuitBreakerConfig) *CircuitBreaker {
	def := DefaultCBConfig()
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = def.FailureThreshold
	}
	if cfg.SuccessThreshold <= 0 {
		cfg.SuccessThreshold = def.SuccessThreshold
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = def.OpenTimeout
	}
	return &CircuitBreaker{cfg: cfg}
}

// State devolve o estado corrente, promovendo open → half-open quando o
// período de espera já passou.
func (cb *CircuitBreaker) State() CBState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if cb.state == CBOpen && time.Since(cb.ultimaFalha) >= cb.cfg.OpenTimeout {
		cb.state = CBHalfOpen
		cb.sucessos = 0
	}
	return cb.state
}

// Execute roda fn através do disjuntor. Com o circuito aberto devolve
// ErrCircuitOpen sem chamar fn.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	if cb.State() == CBOpen {
		return ErrCircuitOpen
	}

	err := fn()

	cb.mu.Lock()
	defer cb.mu.Unlock()

	if err != nil {
		cb.falhas++
		cb.ultimaFalha = time.Now()
		switch cb.state {
		case CBClosed:
			if cb.falhas >= cb.cfg.FailureThreshold {
				cb.state = CBOpen
				cb.sucessos = 0
			}
		case CBHalfOpen:
			// sonda falhou
			cb.state = CBOpen
			cb.falhas = 0
		}
		return err
	}

	switch cb.state {
	case CBClosed:
		cb.falhas = 0
	case CBHalfOpen:
		cb.sucessos++
		if cb.sucessos >= cb.cfg.SuccessThreshold {
			cb.state = CBClosed
			cb.falhas = 0
			cb.sucessos = 0
		}
	}
	return nil
}
