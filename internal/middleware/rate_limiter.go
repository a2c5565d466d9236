package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/jrrjunior25/PDV-master-sub000/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const purgeInterval = 5 * time.Minute

// ipWindow é uma janela deslizante de contagem por IP.
type ipWindow struct {
	mu       sync.Mutex
	count    int
	expiraEm time.Time
}

// limiter mantém uma janela por IP e descarta as expiradas periodicamente.
type limiter struct {
	mu      sync.Mutex
	janelas map[string]*ipWindow
	limite  int
	janela  time.Duration
}

func newLimiter(limite int, janela time.Duration) *limiter {
	l := &limiter{
		janelas: make(map[string]*ipWindow),
		limite:  limite,
		janela:  janela,
	}
	go l.purge()
	return l
}

// permitir incrementa a contagem do IP e informa se o limite foi excedido.
func (l *limiter) permitir(ip string) (bool, time.Time) {
	l.mu.Lock()
	w, ok := l.janelas[ip]
	if !ok {
		w = &ipWindow{}
		l.janelas[ip] = w
	}
	l.mu.Unlock()

	w.mu.Lock()
	defer w.mu.Unlock()

	now := time.Now()
	if now.After(w.expiraEm) {
		w.count = 0
		w.expiraEm = now.Add(l.janela)
	}
	w.count++
	return w.count <= l.limite, w.expiraEm
}

func (l *limiter) purge() {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()

	for range ticker.C {
		now := time.Now()
		removidas := 0

		l.mu.Lock()
		for ip, w := range l.janelas {
			w.mu.Lock()
			if now.After(w.expiraEm) {
				delete(l.janelas, ip)
				removidas++
			}
			w.mu.Unlock()
		}
		restantes := len(l.janelas)
		l.mu.Unlock()

		if removidas > 0 {
			log.Debug().
				Int("removidas", removidas).
				Int("restantes", restantes).
				Msg("janelas de rate limit expiradas removidas")
		}
	}
}

// RateLimiter aplica uma janela deslizante por IP a todas as rotas.
func RateLimiter(limite int, janela time.Duration) gin.HandlerFunc {
	l := newLimiter(limite, janela)
	return func(c *gin.Context) {
		ok, expiraEm := l.permitir(c.ClientIP())
		if !ok {
			c.Header("Retry-After", expiraEm.Format(time.RFC1123))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New("Muitas requisições. Tente novamente em instantes."))
			return
		}
		c.Next()
	}
}

// LoginRateLimiter restringe tentativas de login a 20 por minuto por IP.
func LoginRateLimiter() gin.HandlerFunc {
	l := newLimiter(20, time.Minute)
	return func(c *gin.Context) {
		ok, _ := l.permitir(c.ClientIP())
		if !ok {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New("Muitas tentativas de login. Tente novamente em 1 minuto."))
			return
		}
		c.Next()
	}
}
