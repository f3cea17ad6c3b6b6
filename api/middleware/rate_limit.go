package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/mariaquintana/insurecrm-backend/api/responses"
	pkgerrors "github.com/mariaquintana/insurecrm-backend/pkg/errors"
	"github.com/mariaquintana/insurecrm-backend/pkg/logger"
)

const (
	apiRateLimitWindow = time.Minute
	apiRateLimitCount  = 300
)

// RateLimit throttles authenticated traffic per actor. Requests without an
// actor in context (and any store failure) pass through; availability wins
// over strict enforcement here.
func RateLimit(store LimiterStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actorID := ActorIDFromContext(r.Context())
			if store == nil || actorID == "" {
				next.ServeHTTP(w, r)
				return
			}

			key := fmt.Sprintf("rl:actor:%s", actorID)
			count, err := store.IncrWithTTL(r.Context(), key, apiRateLimitWindow)
			if err != nil {
				if logg != nil {
					logg.Error(r.Context(), "rate limit counter unavailable", err)
				}
				next.ServeHTTP(w, r)
				return
			}
			if count > apiRateLimitCount {
				if logg != nil {
					limitCtx := logg.WithFields(r.Context(), map[string]any{
						"actor_id": actorID,
						"count":    count,
						"limit":    apiRateLimitCount,
					})
					logg.Info(limitCtx, "request rate limited")
				}
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeRateLimit, "rate limit exceeded"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
