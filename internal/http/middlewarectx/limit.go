package middlewarectx

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/render"
	"golang.org/x/time/rate"

	"github.com/magabrotheeeer/todo-paywall/internal/http/response"
)

const (
	limitPerSecond = 1
	limitBurst     = 3
)

// userLimiters хранит лимитер на каждого пользователя.
// Записи не вычищаются: ключей столько же, сколько активных пользователей.
type userLimiters struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

func newUserLimiters() *userLimiters {
	return &userLimiters{limiters: make(map[string]*rate.Limiter)}
}

func (u *userLimiters) get(key string) *rate.Limiter {
	u.mu.Lock()
	defer u.mu.Unlock()
	limiter, ok := u.limiters[key]
	if !ok {
		limiter = rate.NewLimiter(limitPerSecond, limitBurst)
		u.limiters[key] = limiter
	}
	return limiter
}

// RateLimitMiddleware ограничивает частоту запросов отдельно для каждого
// пользователя. Ключ — uid из контекста (middleware стоит после JWTMiddleware);
// для запросов без uid используется адрес клиента.
func RateLimitMiddleware(log *slog.Logger) func(http.Handler) http.Handler {
	limiters := newUserLimiters()
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key, ok := r.Context().Value(UserUID).(string)
			if !ok || key == "" {
				key = r.RemoteAddr
			}
			if !limiters.get(key).Allow() {
				log.Error("too many requests", slog.String("key", key))
				w.WriteHeader(http.StatusTooManyRequests)
				render.JSON(w, r, response.Error("too many requests"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
