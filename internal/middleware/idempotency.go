package middleware

import (
	"context"
	"net/http"
	"strings"

	chimw "github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"
)

const IdempotencyHeader = "Idempotency-Key"

// IdempotencyChecker is satisfied by *idempotency.Store.
type IdempotencyChecker interface {
	Key(scope, requestKey string) string
	Seen(ctx context.Context, key string) (bool, error)
	Forget(ctx context.Context, key string) error
}

// Idempotent rejects a request whose Idempotency-Key was already used in
// scope. Requests without the header pass through. A failed request releases
// its key so the client can retry. When the checker is unreachable requests
// are let through.
func Idempotent(checker IdempotencyChecker, scope string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestKey := strings.TrimSpace(r.Header.Get(IdempotencyHeader))
			if requestKey == "" || checker == nil {
				next.ServeHTTP(w, r)
				return
			}

			key := checker.Key(scope, requestKey)
			seen, err := checker.Seen(r.Context(), key)
			if err != nil {
				log.WithError(err).WithField("scope", scope).Warn("idempotency check")
				next.ServeHTTP(w, r)
				return
			}
			if seen {
				writeJSON(w, http.StatusConflict, map[string]string{"error": "request already submitted"})
				return
			}

			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			if ww.Status() >= http.StatusBadRequest {
				if err := checker.Forget(context.WithoutCancel(r.Context()), key); err != nil {
					log.WithError(err).WithField("scope", scope).Warn("release idempotency key")
				}
			}
		})
	}
}
