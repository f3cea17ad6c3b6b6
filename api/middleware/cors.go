package middleware

import (
	"net/http"

	"github.com/go-chi/cors"

	"github.com/mariaquintana/insurecrm-backend/pkg/config"
)

// CORS returns middleware that applies the API's allowed origin policy.
func CORS(cfg config.CORSConfig) func(http.Handler) http.Handler {
	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-ICRM-Token", "Idempotency-Key", "X-Requested-With"},
		ExposedHeaders:   []string{"X-ICRM-Token"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler
}
