package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/Totarae/PersonalAccount/internal/auth"
	"github.com/Totarae/PersonalAccount/internal/respond"
	"golang.org/x/time/rate"
)

const limiterIdleTTL = 10 * time.Minute

type keyedLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter ограничивает частоту запросов отдельно для каждого ключа.
// Каждый запрос расходует лимит адреса клиента и, если передан x-user-id,
// ещё и лимит этого пользователя. Лимитеры, к которым давно
// не обращались, удаляются фоновой горутиной до вызова Stop.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*keyedLimiter
	limit    rate.Limit
	burst    int
	now      func() time.Time

	done     chan struct{}
	stopped  chan struct{}
	stopOnce sync.Once
}

// NewRateLimiter создаёт лимитер на rps запросов в секунду с запасом burst.
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	rl := &RateLimiter{
		limiters: make(map[string]*keyedLimiter),
		limit:    rate.Limit(rps),
		burst:    burst,
		now:      time.Now,
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
	go rl.cleanup(limiterIdleTTL)
	return rl
}

// Allow сообщает, можно ли пропустить запрос с ключом key.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	entry, ok := rl.limiters[key]
	if !ok {
		entry = &keyedLimiter{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.limiters[key] = entry
	}
	entry.lastSeen = rl.now()
	rl.mu.Unlock()

	return entry.limiter.Allow()
}

// allowAll проверяет все ключи, не останавливаясь на первом отказе.
func (rl *RateLimiter) allowAll(keys []string) bool {
	allowed := true
	for _, key := range keys {
		if !rl.Allow(key) {
			allowed = false
		}
	}
	return allowed
}

// Middleware отвечает 429, если лимит ключа исчерпан.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.allowAll(clientKeys(r)) {
			w.Header().Set("Retry-After", "1")
			respond.Detail(w, http.StatusTooManyRequests, "Too many requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Stop останавливает очистку и ждёт завершения горутины.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() {
		close(rl.done)
	})
	<-rl.stopped
}

func (rl *RateLimiter) cleanup(idle time.Duration) {
	defer close(rl.stopped)

	ticker := time.NewTicker(idle / 2)
	defer ticker.Stop()

	for {
		select {
		case <-rl.done:
			return
		case <-ticker.C:
			rl.evict(idle)
		}
	}
}

func (rl *RateLimiter) evict(idle time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	deadline := rl.now().Add(-idle)
	for key, entry := range rl.limiters {
		if entry.lastSeen.Before(deadline) {
			delete(rl.limiters, key)
		}
	}
}

func (rl *RateLimiter) size() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.limiters)
}

// clientKeys возвращает ключ адреса и, при наличии x-user-id, ключ пользователя.
// Заголовок не проверяется, поэтому смена id не обходит лимит адреса.
func clientKeys(r *http.Request) []string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	keys := []string{"addr:" + host}
	if id := strings.TrimSpace(r.Header.Get(auth.HeaderUserID)); id != "" {
		keys = append(keys, "user:"+id)
	}
	return keys
}
